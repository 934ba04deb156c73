package run

// Visitor receives one callback per node of a run tree, in document order.
// Walk drives the traversal; a visitor never re-enters or re-orders nodes.
type Visitor interface {
	StartFeature(f *Feature)
	Tag(name string)
	FeatureName(keyword, name string)

	StartElement(el *Element)
	ElementName(keyword, name string, loc Location)
	EndElement(el *Element)

	StartExamples(groups []*Examples)
	ExamplesName(keyword, name string)
	StartOutlineTable(t *Table)
	EndOutlineTable(t *Table)

	StartStep(s *Step)
	StepResult(s *Step)
	Failure(f *Failure)
	DocString(d *DocString)
	StartTable(t *Table)
	EndTable(t *Table)

	StartTableRow(r *Row)
	TableCell(c *Cell)
	EndTableRow(r *Row)

	EndFeature(f *Feature)
}

// Walk delivers f's nodes to v in pre-order: feature tags and name, then
// each element with its tags, name, steps and step arguments, then any
// examples blocks. Each callback runs to completion before the next fires.
func Walk(f *Feature, v Visitor) {
	v.StartFeature(f)
	for _, tag := range f.Tags {
		v.Tag(tag)
	}
	v.FeatureName(f.Keyword, f.Name)

	for _, el := range f.Elements {
		v.StartElement(el)
		for _, tag := range el.Tags {
			v.Tag(tag)
		}
		v.ElementName(el.Keyword, el.Name, el.Location)

		for _, s := range el.Steps {
			v.StartStep(s)
			v.StepResult(s)
			if s.Result.Failure != nil {
				v.Failure(s.Result.Failure)
			}
			if s.Arg != nil {
				if s.Arg.DocString != nil {
					v.DocString(s.Arg.DocString)
				}
				if s.Arg.Table != nil {
					v.StartTable(s.Arg.Table)
					walkTable(s.Arg.Table, v)
					v.EndTable(s.Arg.Table)
				}
			}
		}

		if len(el.Examples) > 0 {
			v.StartExamples(el.Examples)
			for _, ex := range el.Examples {
				v.ExamplesName(ex.Keyword, ex.Name)
				if ex.Table != nil {
					v.StartOutlineTable(ex.Table)
					walkTable(ex.Table, v)
					v.EndOutlineTable(ex.Table)
				}
			}
		}

		v.EndElement(el)
	}

	v.EndFeature(f)
}

func walkTable(t *Table, v Visitor) {
	for _, row := range t.Rows {
		v.StartTableRow(row)
		for _, cell := range row.Cells {
			v.TableCell(cell)
		}
		v.EndTableRow(row)
	}
}
