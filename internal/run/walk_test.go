package run

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder logs callback names so traversal order can be asserted.
type recorder struct{ calls []string }

func (r *recorder) log(format string, args ...any) {
	r.calls = append(r.calls, fmt.Sprintf(format, args...))
}

func (r *recorder) StartFeature(f *Feature)                         { r.log("start-feature") }
func (r *recorder) Tag(name string)                                 { r.log("tag %s", name) }
func (r *recorder) FeatureName(keyword, name string)                { r.log("feature-name %s", name) }
func (r *recorder) StartElement(el *Element)                        { r.log("start-element %s", el.Keyword) }
func (r *recorder) ElementName(keyword, name string, loc Location)  { r.log("element-name %s", name) }
func (r *recorder) EndElement(el *Element)                          { r.log("end-element") }
func (r *recorder) StartExamples(groups []*Examples)                { r.log("start-examples") }
func (r *recorder) ExamplesName(keyword, name string)               { r.log("examples-name %s", name) }
func (r *recorder) StartOutlineTable(t *Table)                      { r.log("start-outline-table") }
func (r *recorder) EndOutlineTable(t *Table)                        { r.log("end-outline-table") }
func (r *recorder) StartStep(s *Step)                               { r.log("start-step") }
func (r *recorder) StepResult(s *Step)                              { r.log("step-result %s", s.Text) }
func (r *recorder) Failure(f *Failure)                              { r.log("failure %d", f.ID) }
func (r *recorder) DocString(d *DocString)                          { r.log("doc-string") }
func (r *recorder) StartTable(t *Table)                             { r.log("start-table") }
func (r *recorder) EndTable(t *Table)                               { r.log("end-table") }
func (r *recorder) StartTableRow(row *Row)                          { r.log("start-row") }
func (r *recorder) TableCell(c *Cell)                               { r.log("cell %s", c.Value) }
func (r *recorder) EndTableRow(row *Row)                            { r.log("end-row") }
func (r *recorder) EndFeature(f *Feature)                           { r.log("end-feature") }

func TestWalk_OrderIsDocumentOrder(t *testing.T) {
	failure := &Failure{ID: 3, Message: "boom"}
	f := &Feature{
		Keyword: "Feature",
		Name:    "Login",
		Tags:    []string{"@smoke"},
		Elements: []*Element{
			{
				Keyword: "Scenario",
				Name:    "One",
				Tags:    []string{"@wip"},
				Steps: []*Step{
					{
						Keyword: "Given", Text: "people",
						Result: Result{Status: Passed},
						Arg: &Arg{Table: &Table{Rows: []*Row{
							{Cells: []*Cell{{Value: "a"}, {Value: "b"}}},
						}}},
					},
					{
						Keyword: "When", Text: "it breaks",
						Result: Result{Status: Failed, Failure: failure},
					},
				},
			},
		},
	}

	rec := &recorder{}
	Walk(f, rec)

	assert.Equal(t, []string{
		"start-feature",
		"tag @smoke",
		"feature-name Login",
		"start-element Scenario",
		"tag @wip",
		"element-name One",
		"start-step",
		"step-result people",
		"start-table",
		"start-row",
		"cell a",
		"cell b",
		"end-row",
		"end-table",
		"start-step",
		"step-result it breaks",
		"failure 3",
		"end-element",
		"end-feature",
	}, rec.calls)
}

func TestWalk_OutlineExamplesOrder(t *testing.T) {
	f := &Feature{
		Keyword: "Feature",
		Name:    "Eating",
		Elements: []*Element{
			{
				Keyword: "Scenario Outline",
				Name:    "Eating",
				Steps:   []*Step{{Keyword: "Given", Text: "<start> cucumbers"}},
				Examples: []*Examples{
					{Keyword: "Examples", Name: "small", Table: &Table{Rows: []*Row{
						{Cells: []*Cell{{Value: "start"}}},
						{Cells: []*Cell{{Value: "12"}}},
					}}},
					{Keyword: "Examples", Name: "large"},
				},
			},
		},
	}

	rec := &recorder{}
	Walk(f, rec)

	require.Contains(t, rec.calls, "start-examples")
	assert.Equal(t, 1, count(rec.calls, "start-examples"))
	assert.Equal(t, []string{
		"examples-name small",
		"start-outline-table",
		"start-row",
		"cell start",
		"end-row",
		"start-row",
		"cell 12",
		"end-row",
		"end-outline-table",
		"examples-name large",
	}, between(rec.calls, "start-examples", "end-element"))
}

func count(calls []string, name string) int {
	n := 0
	for _, c := range calls {
		if c == name {
			n++
		}
	}
	return n
}

func between(calls []string, after, before string) []string {
	var out []string
	in := false
	for _, c := range calls {
		if c == after {
			in = true
			continue
		}
		if c == before {
			break
		}
		if in {
			out = append(out, c)
		}
	}
	return out
}
