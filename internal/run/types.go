// Package run holds the executed-document tree the pretty renderer consumes:
// parsed structure plus per-step statuses, failures, and table metadata. The
// tree is built once (FromDocument, optionally overlaid by LoadResults) and
// is read-only from the renderer's point of view.
package run

import (
	"github.com/mattn/go-runewidth"
)

// Status is the execution outcome of a step or table cell. The zero value
// means "no status recorded"; Effective resolves it against the ambient
// step status, defaulting to Passed.
type Status int

const (
	StatusNone Status = iota
	Passed
	Failed
	Skipped
	Undefined
	Pending
)

// String returns a human-readable label for the status.
func (s Status) String() string {
	switch s {
	case Passed:
		return "passed"
	case Failed:
		return "failed"
	case Skipped:
		return "skipped"
	case Undefined:
		return "undefined"
	case Pending:
		return "pending"
	default:
		return "none"
	}
}

// Effective resolves a cell or doc string status against the ambient step
// status: own status wins, then the ambient one, then Passed.
func Effective(own, ambient Status) Status {
	if own != StatusNone {
		return own
	}
	if ambient != StatusNone {
		return ambient
	}
	return Passed
}

// Failure is a failed step's error, carried as data to render. ID is the
// stable identity used for deduplication: the same underlying failure
// surfacing through multiple steps (a shared background failure) carries
// the same ID.
type Failure struct {
	ID      int64
	Message string
}

// Location is a source position rendered as "# file:line" comments.
type Location struct {
	Path string
	Line int
}

// Feature is the root of one executed document.
type Feature struct {
	Path     string
	Keyword  string
	Name     string // may be multi-line
	Tags     []string
	Elements []*Element
}

// Element is a Background, Scenario, or Scenario Outline.
type Element struct {
	Keyword    string
	Name       string
	Location   Location
	Tags       []string
	Background bool
	Steps      []*Step
	Examples   []*Examples // outlines only

	// SourceIndent is the column, measured from the element's base indent,
	// where "# file:line" comments align: one past the element's widest
	// name or step line. Computed by the tree builder, never by the
	// renderer.
	SourceIndent int
}

// Step is one executed step occurrence. A background step appears once
// under the Background element and again, FromBackground=true, at the head
// of each scenario that inherits it; each occurrence has its own Result.
type Step struct {
	Keyword        string
	Text           string
	Location       Location
	FromBackground bool
	Result         Result
	Arg            *Arg

	// SourceIndent mirrors the owning element's value; step-result
	// callbacks carry it so the renderer needs no lookahead.
	SourceIndent int
}

// Result is the outcome attached to one step occurrence.
type Result struct {
	Status  Status
	Failure *Failure
}

// Arg is a step's multi-line argument: exactly one field is set.
type Arg struct {
	DocString *DocString
	Table     *Table
}

type DocString struct {
	Content string
}

// Examples is one example group of a Scenario Outline.
type Examples struct {
	Keyword string
	Name    string // may be multi-line, may be empty
	Table   *Table
}

// Table is a data table or an examples table. Column widths are display
// widths (Unicode-aware), computed once on first use and fixed for the
// lifetime of the table.
type Table struct {
	Rows []*Row

	widths []int
}

// Row may carry its own Failure for inline example-row errors.
type Row struct {
	Cells   []*Cell
	Failure *Failure
}

// Cell's Status is usually StatusNone; the renderer resolves it against
// the ambient step status via Effective.
type Cell struct {
	Value  string
	Status Status
}

// ColWidth returns the display width of column i: the maximum visual width
// of that column's cells across all rows.
func (t *Table) ColWidth(i int) int {
	if t.widths == nil {
		for _, row := range t.Rows {
			for c, cell := range row.Cells {
				w := runewidth.StringWidth(cell.Value)
				for len(t.widths) <= c {
					t.widths = append(t.widths, 0)
				}
				if w > t.widths[c] {
					t.widths[c] = w
				}
			}
		}
	}
	if i < len(t.widths) {
		return t.widths[i]
	}
	return 0
}
