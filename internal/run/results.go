package run

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Results is the YAML overlay produced by an execution engine: statuses and
// error text for each step occurrence, matched by order. Scenario `steps`
// entries cover the scenario's own steps; inherited background occurrences
// take the feature-level `background` outcomes unless the scenario carries
// its own `background` override.
type Results struct {
	Feature    string            `yaml:"feature"`
	Background []StepOutcome     `yaml:"background"`
	Scenarios  []ScenarioOutcome `yaml:"scenarios"`
}

type StepOutcome struct {
	Status string `yaml:"status"`
	Error  string `yaml:"error"`
}

type ScenarioOutcome struct {
	Name       string        `yaml:"name"`
	Background []StepOutcome `yaml:"background"`
	Steps      []StepOutcome `yaml:"steps"`
	Rows       []RowOutcome  `yaml:"rows"`
}

// RowOutcome applies to one example-table row, in order, header excluded.
type RowOutcome struct {
	Status string `yaml:"status"`
	Error  string `yaml:"error"`
}

// LoadResults reads a results overlay file.
func LoadResults(path string) (*Results, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading results: %w", err)
	}
	var r Results
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing results %s: %w", path, err)
	}
	return &r, nil
}

// ParseStatus converts an overlay status label to a Status.
func ParseStatus(s string) (Status, error) {
	switch s {
	case "passed", "":
		return Passed, nil
	case "failed":
		return Failed, nil
	case "skipped":
		return Skipped, nil
	case "undefined":
		return Undefined, nil
	case "pending":
		return Pending, nil
	}
	return StatusNone, fmt.Errorf("unknown status %q", s)
}

// Apply assigns the overlay's outcomes onto f's step occurrences. Failure
// IDs are sequence numbers assigned here; a feature-level background
// failure is shared (one Failure, one ID) between the Background element's
// occurrence and every scenario's inherited occurrence.
func (r *Results) Apply(f *Feature) error {
	var seq int64
	newFailure := func(msg string) *Failure {
		seq++
		return &Failure{ID: seq, Message: msg}
	}

	var bg *Element
	var scenarios []*Element
	for _, el := range f.Elements {
		if el.Background {
			bg = el
		} else {
			scenarios = append(scenarios, el)
		}
	}

	// Feature-level background outcomes propagate to every occurrence.
	for i, out := range r.Background {
		res, err := outcomeResult(out, newFailure)
		if err != nil {
			return fmt.Errorf("background step %d: %w", i+1, err)
		}
		if bg == nil || i >= len(bg.Steps) {
			return fmt.Errorf("background step %d: no such step", i+1)
		}
		bg.Steps[i].Result = res
		for _, sc := range scenarios {
			if i < len(sc.Steps) && sc.Steps[i].FromBackground {
				sc.Steps[i].Result = res
			}
		}
	}

	for si, out := range r.Scenarios {
		if si >= len(scenarios) {
			return fmt.Errorf("scenario %d: no such scenario", si+1)
		}
		sc := scenarios[si]
		scName, _, _ := strings.Cut(sc.Name, "\n")
		if out.Name != "" && out.Name != scName {
			return fmt.Errorf("scenario %d: name %q does not match %q", si+1, out.Name, scName)
		}

		// Per-scenario override of inherited background occurrences.
		for i, so := range out.Background {
			res, err := outcomeResult(so, newFailure)
			if err != nil {
				return fmt.Errorf("scenario %d background step %d: %w", si+1, i+1, err)
			}
			if i >= len(sc.Steps) || !sc.Steps[i].FromBackground {
				return fmt.Errorf("scenario %d background step %d: no such step", si+1, i+1)
			}
			sc.Steps[i].Result = res
		}

		own := ownSteps(sc)
		for i, so := range out.Steps {
			res, err := outcomeResult(so, newFailure)
			if err != nil {
				return fmt.Errorf("scenario %d step %d: %w", si+1, i+1, err)
			}
			if i >= len(own) {
				return fmt.Errorf("scenario %d step %d: no such step", si+1, i+1)
			}
			own[i].Result = res
		}

		if len(out.Rows) > 0 {
			if len(sc.Examples) == 0 || sc.Examples[0].Table == nil {
				return fmt.Errorf("scenario %d: row outcomes without an examples table", si+1)
			}
			table := sc.Examples[0].Table
			for i, ro := range out.Rows {
				if i+1 >= len(table.Rows) {
					return fmt.Errorf("scenario %d row %d: no such example row", si+1, i+1)
				}
				status, err := ParseStatus(ro.Status)
				if err != nil {
					return fmt.Errorf("scenario %d row %d: %w", si+1, i+1, err)
				}
				row := table.Rows[i+1]
				for _, cell := range row.Cells {
					cell.Status = status
				}
				if ro.Error != "" {
					row.Failure = newFailure(ro.Error)
				}
			}
		}
	}

	return nil
}

func outcomeResult(out StepOutcome, newFailure func(string) *Failure) (Result, error) {
	status, err := ParseStatus(out.Status)
	if err != nil {
		return Result{}, err
	}
	res := Result{Status: status}
	if out.Error != "" {
		res.Failure = newFailure(out.Error)
	}
	return res, nil
}

func ownSteps(el *Element) []*Step {
	var own []*Step
	for _, s := range el.Steps {
		if !s.FromBackground {
			own = append(own, s)
		}
	}
	return own
}
