package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cukefmt/cukefmt/internal/config"
	"github.com/cukefmt/cukefmt/internal/db"
	"github.com/cukefmt/cukefmt/internal/gherkin"
	"github.com/cukefmt/cukefmt/internal/pretty"
	"github.com/cukefmt/cukefmt/internal/run"
	"github.com/cukefmt/cukefmt/internal/ui"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	resultsFlag     string
	outDirFlag      string
	sourceFlag      bool
	noMultilineFlag bool
	colorFlag       string
	noHistoryFlag   bool
)

var renderCmd = &cobra.Command{
	Use:   "render <file>...",
	Short: "Render feature files as formatted, status-colored text",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunRender(cmd.OutOrStdout(), args, RenderOptions{
			Results:     resultsFlag,
			OutDir:      outDirFlag,
			Source:      sourceFlag,
			NoMultiline: noMultilineFlag,
			Color:       colorFlag,
			NoHistory:   noHistoryFlag,
		})
	},
}

func init() {
	renderCmd.Flags().StringVar(&resultsFlag, "results", "", "YAML results overlay (single feature file only)")
	renderCmd.Flags().StringVar(&outDirFlag, "out-dir", "", "Write one file per input under this directory instead of stdout")
	renderCmd.Flags().BoolVar(&sourceFlag, "source", false, "Append # file:line comments")
	renderCmd.Flags().BoolVar(&noMultilineFlag, "no-multiline", false, "Suppress tables and doc strings")
	renderCmd.Flags().StringVar(&colorFlag, "color", "auto", "Color output: auto, always, never")
	renderCmd.Flags().BoolVar(&noHistoryFlag, "no-history", false, "Skip recording the run in history")
	rootCmd.AddCommand(renderCmd)
}

// RenderOptions are the render command's flags; config file values fill in
// defaults for the boolean switches.
type RenderOptions struct {
	Results     string
	OutDir      string
	Source      bool
	NoMultiline bool
	Color       string
	NoHistory   bool
}

func RunRender(w io.Writer, paths []string, o RenderOptions) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}
	prefixes, err := cfg.StatusPrefixes()
	if err != nil {
		return err
	}

	if o.Results != "" && len(paths) != 1 {
		return fmt.Errorf("--results applies to exactly one feature file")
	}

	features := make([]*run.Feature, 0, len(paths))
	for _, path := range paths {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		doc, parseErrors := gherkin.Parse(path, content)
		if len(parseErrors) > 0 {
			pe := parseErrors[0]
			return fmt.Errorf("parsing %s:%d: %s", path, pe.Line, pe.Message)
		}
		features = append(features, run.FromDocument(doc))
	}

	if o.Results != "" {
		results, err := run.LoadResults(o.Results)
		if err != nil {
			return err
		}
		if err := results.Apply(features[0]); err != nil {
			return fmt.Errorf("applying %s: %w", o.Results, err)
		}
	}

	opts := pretty.Options{
		ShowSource:     o.Source || cfg.Source,
		NoMultiline:    o.NoMultiline || cfg.NoMultiline,
		StatusPrefixes: prefixes,
		Batch:          o.OutDir != "",
	}

	summary := run.Summarize(features...)
	summary.Limits = cfg.TagLimits

	if o.OutDir != "" {
		for i, f := range features {
			if err := renderToFile(o.OutDir, paths[i], f, opts); err != nil {
				return err
			}
		}
	} else {
		r := pretty.New(w, ui.Detect(w, ui.ParseMode(o.Color)), opts)
		r.Summary = summary
		for _, f := range features {
			run.Walk(f, r)
		}
		r.Done()
	}

	if o.Results != "" && !o.NoHistory {
		if err := recordRun(features, summary); err != nil {
			return err
		}
	}

	return nil
}

// renderToFile writes one feature's plain-text rendering under outDir,
// mirroring the input's relative path. The destination is closed on every
// exit path, including write errors.
func renderToFile(outDir, path string, f *run.Feature, opts pretty.Options) (err error) {
	rel := filepath.Clean(path)
	if filepath.IsAbs(rel) {
		rel = filepath.Base(rel)
	}
	dest := filepath.Join(outDir, rel)
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating %s: %w", dest, err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing %s: %w", dest, cerr)
		}
	}()

	log.Debug().Str("src", path).Str("dest", dest).Msg("rendering to file")
	run.Walk(f, pretty.New(file, ui.Plain, opts))
	return nil
}

func recordRun(features []*run.Feature, summary *run.Summary) error {
	if err := os.MkdirAll(historyDir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", historyDir, err)
	}
	sqlDB, err := db.Open(historyPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer sqlDB.Close()

	sc := summary.ScenarioCount
	res, err := sqlDB.Exec(`
		INSERT INTO runs (features, scenarios, failed, skipped, undefined, pending, passed)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		len(features), total(sc),
		sc[run.Failed], sc[run.Skipped], sc[run.Undefined], sc[run.Pending], sc[run.Passed],
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	for _, f := range features {
		status := run.Summarize(f).Worst()
		_, err := sqlDB.Exec(`INSERT INTO run_features (run_id, file_path, status) VALUES (?, ?, ?)`,
			runID, f.Path, status.String())
		if err != nil {
			return fmt.Errorf("recording %s: %w", f.Path, err)
		}
	}

	log.Info().Int64("run", runID).Msg("run recorded")
	return nil
}

func total(counts map[run.Status]int) int {
	n := 0
	for _, c := range counts {
		n += c
	}
	return n
}
