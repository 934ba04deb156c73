package run

import (
	"strings"

	"github.com/cukefmt/cukefmt/internal/gherkin"

	"github.com/mattn/go-runewidth"
)

// FromDocument converts a parsed document into a run tree with no recorded
// statuses. Background steps are materialized twice, the way an execution
// engine runs them: once under the Background element itself and once, with
// FromBackground set, at the head of every scenario's step list.
func FromDocument(doc *gherkin.Document) *Feature {
	f := &Feature{
		Path:    doc.Path,
		Keyword: doc.Feature.Keyword,
		Name:    featureName(doc.Feature),
		Tags:    tagNames(doc.Feature.Tags),
	}

	src := doc.Feature
	if src.Background != nil {
		bg := &Element{
			Keyword:    src.Background.Keyword,
			Name:       withDescription(src.Background.Name, src.Background.Description),
			Location:   Location{Path: doc.Path, Line: src.Background.Line},
			Background: true,
		}
		for i := range src.Background.Steps {
			bg.Steps = append(bg.Steps, buildStep(doc.Path, &src.Background.Steps[i], true))
		}
		setSourceIndent(bg)
		f.Elements = append(f.Elements, bg)
	}

	for _, sd := range src.Scenarios {
		el := &Element{
			Keyword:  sd.Scenario.Keyword,
			Name:     withDescription(sd.Scenario.Name, sd.Scenario.Description),
			Location: Location{Path: doc.Path, Line: sd.Line},
			Tags:     tagNames(sd.Tags),
		}
		if src.Background != nil {
			for i := range src.Background.Steps {
				el.Steps = append(el.Steps, buildStep(doc.Path, &src.Background.Steps[i], true))
			}
		}
		for i := range sd.Scenario.Steps {
			el.Steps = append(el.Steps, buildStep(doc.Path, &sd.Scenario.Steps[i], false))
		}
		for _, ex := range sd.Scenario.Examples {
			el.Examples = append(el.Examples, &Examples{
				Keyword: ex.Keyword,
				Name:    ex.Name,
				Table:   buildTable(ex.Table),
			})
		}
		setSourceIndent(el)
		f.Elements = append(f.Elements, el)
	}

	return f
}

// setSourceIndent fixes the comment alignment column for el: one past the
// widest of the element's name line and its step lines, measured from the
// element's base indent (steps sit two columns deeper than the name).
func setSourceIndent(el *Element) {
	name, _, _ := strings.Cut(el.Name, "\n")
	w := runewidth.StringWidth(el.Keyword + ": " + name)
	for _, s := range el.Steps {
		if sw := 2 + runewidth.StringWidth(s.Keyword+" "+s.Text); sw > w {
			w = sw
		}
	}
	el.SourceIndent = w + 1
	for _, s := range el.Steps {
		s.SourceIndent = el.SourceIndent
	}
}

func buildStep(path string, s *gherkin.Step, fromBackground bool) *Step {
	step := &Step{
		Keyword:        s.Keyword,
		Text:           s.Text,
		Location:       Location{Path: path, Line: s.Line},
		FromBackground: fromBackground,
	}
	if s.Argument != nil {
		arg := &Arg{}
		if s.Argument.DocString != nil {
			arg.DocString = &DocString{Content: s.Argument.DocString.Content}
		}
		if s.Argument.DataTable != nil {
			arg.Table = buildTable(s.Argument.DataTable)
		}
		step.Arg = arg
	}
	return step
}

func buildTable(t *gherkin.DataTable) *Table {
	if t == nil {
		return nil
	}
	table := &Table{}
	for _, row := range t.Rows {
		r := &Row{}
		for _, value := range row {
			r.Cells = append(r.Cells, &Cell{Value: value})
		}
		table.Rows = append(table.Rows, r)
	}
	return table
}

func featureName(f *gherkin.Feature) string {
	return withDescription(f.Name, f.Description)
}

// withDescription folds description lines under the name; renderers print
// them as continuation lines.
func withDescription(name, description string) string {
	if description == "" {
		return name
	}
	return name + "\n" + description
}

func tagNames(tags []gherkin.Tag) []string {
	var names []string
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}
