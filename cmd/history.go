package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/cukefmt/cukefmt/internal/db"

	"github.com/spf13/cobra"
)

const historyDir = ".cukefmt"

func historyPath() string {
	return filepath.Join(historyDir, "history.db")
}

var limitFlag int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded render runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunHistory(cmd.OutOrStdout(), limitFlag)
	},
}

func init() {
	historyCmd.Flags().IntVar(&limitFlag, "limit", 10, "Number of runs to show")
	rootCmd.AddCommand(historyCmd)
}

func RunHistory(w io.Writer, limit int) error {
	if _, err := os.Stat(historyPath()); os.IsNotExist(err) {
		fmt.Fprintln(w, "no recorded runs")
		return nil
	}

	sqlDB, err := db.Open(historyPath())
	if err != nil {
		return fmt.Errorf("opening history: %w", err)
	}
	defer sqlDB.Close()

	rows, err := sqlDB.Query(`
		SELECT id, started_at, features, scenarios, failed, skipped, undefined, pending, passed
		FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var found bool
	for rows.Next() {
		var id, features, scenarios, failed, skipped, undefined, pending, passed int
		var startedAt string
		if err := rows.Scan(&id, &startedAt, &features, &scenarios, &failed, &skipped, &undefined, &pending, &passed); err != nil {
			return fmt.Errorf("scanning run: %w", err)
		}
		var parts []string
		for _, p := range []struct {
			n    int
			name string
		}{
			{failed, "failed"}, {skipped, "skipped"}, {undefined, "undefined"},
			{pending, "pending"}, {passed, "passed"},
		} {
			if p.n > 0 {
				parts = append(parts, fmt.Sprintf("%d %s", p.n, p.name))
			}
		}
		detail := ""
		if len(parts) > 0 {
			detail = " (" + strings.Join(parts, ", ") + ")"
		}
		fmt.Fprintf(w, "run %d  %s  %d features, %d scenarios%s\n",
			id, startedAt, features, scenarios, detail)
		found = true
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterating runs: %w", err)
	}

	if !found {
		fmt.Fprintln(w, "no recorded runs")
	}
	return nil
}
