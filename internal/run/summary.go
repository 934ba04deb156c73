package run

import (
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"

	"github.com/cukefmt/cukefmt/internal/ui"
)

// Summary aggregates scenario and step counts across rendered features.
// The renderer never computes these; the CLI builds a Summary after loading
// results and prints it at the end of interactive runs.
type Summary struct {
	ScenarioCount map[Status]int
	StepCount     map[Status]int

	// Limits caps how many scenarios may carry a given tag; Print warns
	// about each tag over its limit.
	Limits map[string]int

	undefined []string       // "Keyword text", in first-seen order
	wip       []string       // names of @wip scenarios that passed
	tagCounts map[string]int // scenarios per tag
}

// Summarize walks the step occurrences of each scenario element. Background
// steps count once per scenario, the way an engine runs them; the Background
// element itself is not counted.
func Summarize(features ...*Feature) *Summary {
	s := &Summary{
		ScenarioCount: map[Status]int{},
		StepCount:     map[Status]int{},
		tagCounts:     map[string]int{},
	}
	seen := map[string]bool{}

	for _, f := range features {
		for _, el := range f.Elements {
			if el.Background {
				continue
			}
			worst := Passed
			for _, step := range el.Steps {
				status := Effective(step.Result.Status, StatusNone)
				s.StepCount[status]++
				if rank(status) > rank(worst) {
					worst = status
				}
				if status == Undefined {
					key := step.Keyword + " " + step.Text
					if !seen[key] {
						seen[key] = true
						s.undefined = append(s.undefined, key)
					}
				}
			}
			s.ScenarioCount[worst]++
			for _, tag := range el.Tags {
				s.tagCounts[tag]++
			}
			if worst == Passed && hasTag(el.Tags, "@wip") {
				s.wip = append(s.wip, el.Name)
			}
		}
	}

	return s
}

// rank orders statuses by severity for deriving a scenario's status.
func rank(s Status) int {
	switch s {
	case Failed:
		return 4
	case Undefined:
		return 3
	case Pending:
		return 2
	case Skipped:
		return 1
	}
	return 0
}

func hasTag(tags []string, name string) bool {
	for _, t := range tags {
		if t == name {
			return true
		}
	}
	return false
}

// Worst reports the most severe scenario status seen, Passed when nothing
// was counted.
func (s *Summary) Worst() Status {
	worst := Passed
	for status, c := range s.ScenarioCount {
		if c > 0 && rank(status) > rank(worst) {
			worst = status
		}
	}
	return worst
}

var summaryOrder = []Status{Failed, Skipped, Undefined, Pending, Passed}

// Print writes the aggregate counts, step definition snippets for undefined
// steps, and warnings for passing @wip scenarios.
func (s *Summary) Print(w io.Writer, style ui.Styler) {
	fmt.Fprintln(w, countLine("scenario", s.ScenarioCount, style))
	fmt.Fprintln(w, countLine("step", s.StepCount, style))

	if len(s.undefined) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "You can implement step definitions for undefined steps with these snippets:")
		fmt.Fprintln(w)
		for _, u := range s.undefined {
			keyword, text, _ := strings.Cut(u, " ")
			snippet := fmt.Sprintf("  %s(`^%s$`)", keyword, regexp.QuoteMeta(text))
			fmt.Fprintln(w, style(snippet, ui.Undefined))
		}
	}

	for _, name := range s.wip {
		fmt.Fprintln(w)
		fmt.Fprintln(w, style(fmt.Sprintf("The @wip scenario passed: %s", name), ui.Pending))
	}

	tags := make([]string, 0, len(s.Limits))
	for tag := range s.Limits {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		if c := s.tagCounts[tag]; c > s.Limits[tag] {
			fmt.Fprintln(w)
			fmt.Fprintln(w, style(fmt.Sprintf("%s occurred %d times, limit is %d", tag, c, s.Limits[tag]), ui.Failed))
		}
	}
}

func countLine(noun string, counts map[Status]int, style ui.Styler) string {
	total := 0
	for _, c := range counts {
		total += c
	}
	line := fmt.Sprintf("%d %s", total, noun)
	if total != 1 {
		line += "s"
	}
	var parts []string
	for _, status := range summaryOrder {
		if c := counts[status]; c > 0 {
			parts = append(parts, style(fmt.Sprintf("%d %s", c, status), ui.Kind(status.String())))
		}
	}
	if len(parts) > 0 {
		line += " (" + strings.Join(parts, ", ") + ")"
	}
	return line
}
