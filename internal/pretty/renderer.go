// Package pretty renders an executed feature tree back into readable text:
// original structure, consistent indentation, aligned tables, and
// status-based styling. The Renderer is a run.Visitor driven entirely by
// run.Walk; it reacts to one node at a time with no lookahead and never
// re-orders output.
package pretty

import (
	"fmt"
	"io"
	"strings"

	"github.com/cukefmt/cukefmt/internal/run"
	"github.com/cukefmt/cukefmt/internal/ui"

	"github.com/mattn/go-runewidth"
)

// Options are the fixed rendering switches.
type Options struct {
	// ShowSource appends "# file:line" comments to scenario and step lines.
	ShowSource bool
	// NoMultiline suppresses step tables and doc strings.
	NoMultiline bool
	// StatusPrefixes maps a status to a glyph shown before table cells.
	StatusPrefixes map[run.Status]string
	// Batch skips the end-of-run summary (per-file output mode).
	Batch bool
}

// Stats prints aggregate end-of-run statistics. The renderer only triggers
// the call; it computes nothing itself.
type Stats interface {
	Print(w io.Writer, style ui.Styler)
}

// Renderer holds the mutable state of one render pass. A Renderer must not
// be shared between concurrent traversals; give each document walk its own
// instance, or reuse one sequentially.
type Renderer struct {
	w     io.Writer
	style ui.Styler
	opts  Options

	// Summary, when set, is printed by Done unless Batch is on.
	Summary Stats

	indent       int          // instantaneous indentation
	baseIndent   int          // scenario base indent; step/table lines hang off it
	element      *run.Element // element being rendered, for comment alignment
	inBackground bool       // rendering inside a Background block
	table        *run.Table // active table, nil outside row/cell visits
	colIndex     int
	status       run.Status     // current step's aggregate status
	printed      map[int64]bool // failure IDs already printed this feature
	firstExample bool
	hideStep     bool
	inStep       bool
	tagLineOpen  bool
}

// New returns a Renderer writing to w with the given styling function.
func New(w io.Writer, style ui.Styler, opts Options) *Renderer {
	return &Renderer{w: w, style: style, opts: opts}
}

var _ run.Visitor = (*Renderer)(nil)

func (r *Renderer) StartFeature(f *run.Feature) {
	r.printed = map[int64]bool{}
	r.indent = 0
}

// Tag prints one tag, continuing the current tag line if one is open. The
// line stays open until the next name callback terminates it.
func (r *Renderer) Tag(name string) {
	if r.tagLineOpen {
		fmt.Fprint(r.w, " ")
	} else {
		fmt.Fprint(r.w, pad(r.indent))
		r.tagLineOpen = true
	}
	fmt.Fprint(r.w, r.style(name, ui.Tag))
	r.indent = 1
}

func (r *Renderer) closeTagLine() {
	if r.tagLineOpen {
		fmt.Fprintln(r.w)
		r.tagLineOpen = false
	}
}

func (r *Renderer) FeatureName(keyword, name string) {
	r.closeTagLine()
	lines := strings.Split(name, "\n")
	fmt.Fprintln(r.w, keywordLine(keyword, lines[0]))
	for _, l := range lines[1:] {
		fmt.Fprintln(r.w, l)
	}
	fmt.Fprintln(r.w)
}

func (r *Renderer) StartElement(el *run.Element) {
	r.indent = 2
	r.baseIndent = 2
	r.element = el
	if el.Background {
		r.inBackground = true
	}
}

func (r *Renderer) ElementName(keyword, name string, loc run.Location) {
	r.closeTagLine()
	lines := strings.Split(name, "\n")
	line := pad(r.baseIndent) + keywordLine(keyword, lines[0])
	if r.opts.ShowSource {
		line += r.sourceComment(line, r.baseIndent+r.element.SourceIndent, loc)
	}
	fmt.Fprintln(r.w, line)
	for _, l := range lines[1:] {
		fmt.Fprintln(r.w, pad(r.baseIndent+2)+l)
	}
}

func (r *Renderer) EndElement(el *run.Element) {
	if el.Background {
		r.inBackground = false
	}
	r.inStep = false
	fmt.Fprintln(r.w)
}

func (r *Renderer) StartExamples(groups []*run.Examples) {
	r.indent = 4
	fmt.Fprintln(r.w)
	r.firstExample = true
}

// ExamplesName separates repeated example groups with blank lines and opens
// a deeper block: the group's rows and any per-row output render at 6.
func (r *Renderer) ExamplesName(keyword, name string) {
	if !r.firstExample {
		fmt.Fprintln(r.w)
	}
	r.firstExample = false
	lines := strings.Split(name, "\n")
	fmt.Fprintln(r.w, pad(4)+keywordLine(keyword, lines[0]))
	for _, l := range lines[1:] {
		fmt.Fprintln(r.w, pad(6)+l)
	}
	r.indent = 6
	r.baseIndent = 6
}

func (r *Renderer) StartOutlineTable(t *run.Table) {
	r.table = t
	r.indent = 6
}

func (r *Renderer) EndOutlineTable(t *run.Table) {
	r.table = nil
	r.indent = 4
}

func (r *Renderer) StartStep(s *run.Step) {
	r.indent = 6
	r.inStep = true
}

// StepResult decides visibility and prints the step name line.
//
// A failure already printed this feature means this step is a duplicate
// surfacing of a shared background failure: its whole output is hidden.
// A passing (or otherwise non-failed) step whose background origin differs
// from the ambient context is hidden too, so passing background steps show
// once under the Background block and never again under each scenario.
// The ambient status is recorded either way for later doc-string cells.
func (r *Renderer) StepResult(s *run.Step) {
	if !r.inStep {
		panic("pretty: step result delivered without a started step")
	}
	res := s.Result
	r.hideStep = false
	r.status = res.Status

	if res.Failure != nil {
		if r.printed[res.Failure.ID] {
			r.hideStep = true
			return
		}
		r.printed[res.Failure.ID] = true
	} else if res.Status != run.Failed && s.FromBackground != r.inBackground {
		r.hideStep = true
		return
	}

	status := run.Effective(res.Status, run.StatusNone)
	line := pad(r.baseIndent+2) + strings.TrimRight(s.Keyword+" "+s.Text, " ")
	styled := r.style(line, ui.Kind(status.String()))
	if r.opts.ShowSource {
		styled += r.sourceComment(line, r.baseIndent+s.SourceIndent, s.Location)
	}
	fmt.Fprintln(r.w, styled)
}

// Failure prints a step's failure text. Suppression follows the owning
// step; dedup bookkeeping already happened in StepResult.
func (r *Renderer) Failure(f *run.Failure) {
	if r.hideStep {
		return
	}
	r.printFailure(f)
}

func (r *Renderer) printFailure(f *run.Failure) {
	for _, line := range strings.Split(strings.TrimRight(f.Message, "\n"), "\n") {
		if strings.TrimSpace(line) == "" {
			fmt.Fprintln(r.w)
			continue
		}
		fmt.Fprintln(r.w, r.style(pad(r.indent)+line, ui.Failed))
	}
}

// DocString renders a step's multi-line text argument as a triple-quoted
// block. Lines that would be whitespace-only render empty so the output
// carries no trailing spaces.
func (r *Renderer) DocString(d *run.DocString) {
	if r.opts.NoMultiline || r.hideStep {
		return
	}
	status := run.Effective(r.status, run.StatusNone)
	block := "\"\"\"\n" + d.Content + "\n\"\"\""
	var lines []string
	for _, line := range strings.Split(block, "\n") {
		indented := pad(r.indent) + line
		if strings.TrimSpace(indented) == "" {
			indented = ""
		}
		lines = append(lines, indented)
	}
	fmt.Fprintln(r.w, r.style(strings.Join(lines, "\n"), ui.Kind(status.String())))
}

func (r *Renderer) StartTable(t *run.Table) {
	if r.opts.NoMultiline || r.hideStep {
		return
	}
	r.table = t
}

func (r *Renderer) EndTable(t *run.Table) {
	r.table = nil
}

func (r *Renderer) StartTableRow(row *run.Row) {
	if r.table == nil {
		return
	}
	r.colIndex = 0
	fmt.Fprint(r.w, pad(r.indent-2)+"  |")
}

// TableCell pads the cell to its column's display width. Padding counts
// visual width, so wide runes take fewer trailing spaces and the column
// separators stay aligned.
func (r *Renderer) TableCell(c *run.Cell) {
	if r.table == nil {
		return
	}
	width := r.table.ColWidth(r.colIndex)
	padding := strings.Repeat(" ", width-runewidth.StringWidth(c.Value))
	status := run.Effective(c.Status, r.status)
	prefix := r.opts.StatusPrefixes[status]
	fmt.Fprint(r.w, " "+r.style(prefix+c.Value+padding, ui.Kind(status.String()))+" |")
	r.colIndex++
}

func (r *Renderer) EndTableRow(row *run.Row) {
	if r.table == nil {
		return
	}
	fmt.Fprintln(r.w)
	if row.Failure != nil && !r.printed[row.Failure.ID] {
		r.printed[row.Failure.ID] = true
		r.printFailure(row.Failure)
	}
}

func (r *Renderer) EndFeature(f *run.Feature) {}

// Done finishes a full run: it triggers the external statistics component,
// unless running in batch file-output mode.
func (r *Renderer) Done() {
	if r.Summary != nil && !r.opts.Batch {
		r.Summary.Print(r.w, r.style)
	}
}

// sourceComment right-justifies a "# file:line" comment: padded so comments
// in one element share a column. line is the unstyled text already printed.
func (r *Renderer) sourceComment(line string, column int, loc run.Location) string {
	padding := column - runewidth.StringWidth(line)
	if padding < 1 {
		padding = 1
	}
	return pad(padding) + r.style(fmt.Sprintf("# %s:%d", loc.Path, loc.Line), ui.Comment)
}

func keywordLine(keyword, first string) string {
	if first == "" {
		return keyword + ":"
	}
	return keyword + ": " + first
}

func pad(n int) string {
	return strings.Repeat(" ", n)
}
