package gherkin

import (
	"path/filepath"
	"regexp"
	"strings"
)

var tagPattern = regexp.MustCompile(`@[^@\s]+`)

var stepKeywords = []string{"Given ", "When ", "Then ", "And ", "But ", "* "}

// Parse parses a .feature file and returns a Document AST and any parse errors.
func Parse(path string, content []byte) (*Document, []ParseError) {
	lines := strings.Split(string(content), "\n")
	var errors []ParseError

	doc := &Document{Path: path}
	feature := &Feature{Keyword: "Feature"}
	doc.Feature = feature

	i := 0

	// Skip leading blanks and comments
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}
		break
	}

	// Collect feature-level tags
	var featureTags []Tag
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if isTagLine(trimmed) {
			featureTags = append(featureTags, parseTags(trimmed)...)
			i++
			continue
		}
		break
	}
	feature.Tags = featureTags

	// Feature: line, or fall back to the file name
	if i < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i]), "Feature:") {
		trimmed := strings.TrimSpace(lines[i])
		feature.Name = strings.TrimSpace(strings.TrimPrefix(trimmed, "Feature:"))
		i++

		// Description lines until the next keyword or tag
		var descLines []string
		for i < len(lines) {
			trimmed := strings.TrimSpace(lines[i])
			if isKeyword(trimmed) || isTagLine(trimmed) {
				break
			}
			descLines = append(descLines, lines[i])
			i++
		}
		for len(descLines) > 0 && strings.TrimSpace(descLines[len(descLines)-1]) == "" {
			descLines = descLines[:len(descLines)-1]
		}
		if len(descLines) > 0 {
			feature.Description = strings.Join(descLines, "\n")
		}
	} else {
		feature.Name = filenameWithoutExt(path)
	}

	// Body loop
	var pendingTags []Tag
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}

		if isTagLine(trimmed) {
			pendingTags = append(pendingTags, parseTags(trimmed)...)
			i++
			continue
		}

		if strings.HasPrefix(trimmed, "Background:") {
			pendingTags = nil // Background doesn't get tags
			bg := &Background{
				Keyword: "Background",
				Name:    strings.TrimSpace(strings.TrimPrefix(trimmed, "Background:")),
				Line:    i + 1,
			}
			i++
			bg.Steps, bg.Description, i = parseSteps(lines, i, &errors)
			feature.Background = bg
			continue
		}

		if strings.HasPrefix(trimmed, "Scenario Outline:") || strings.HasPrefix(trimmed, "Scenario:") {
			keyword := "Scenario"
			rest := strings.TrimPrefix(trimmed, "Scenario:")
			if strings.HasPrefix(trimmed, "Scenario Outline:") {
				keyword = "Scenario Outline"
				rest = strings.TrimPrefix(trimmed, "Scenario Outline:")
			}
			sd := ScenarioDefinition{
				Tags: pendingTags,
				Scenario: Scenario{
					Keyword: keyword,
					Name:    strings.TrimSpace(rest),
				},
				Line: i + 1,
			}
			pendingTags = nil
			i++
			sd.Scenario.Steps, sd.Scenario.Description, i = parseSteps(lines, i, &errors)

			// Examples blocks belong to outlines only
			for i < len(lines) {
				t := strings.TrimSpace(lines[i])
				if t == "" || strings.HasPrefix(t, "#") {
					i++
					continue
				}
				if !strings.HasPrefix(t, "Examples:") {
					break
				}
				ex := Examples{
					Keyword: "Examples",
					Name:    strings.TrimSpace(strings.TrimPrefix(t, "Examples:")),
					Line:    i + 1,
				}
				i++
				ex.Table, i = parseTable(lines, i)
				if keyword == "Scenario Outline" {
					sd.Scenario.Examples = append(sd.Scenario.Examples, ex)
				} else {
					errors = append(errors, ParseError{Line: ex.Line, Message: "Examples outside a Scenario Outline"})
				}
			}

			feature.Scenarios = append(feature.Scenarios, sd)
			continue
		}

		if strings.HasPrefix(trimmed, "Rule:") {
			errors = append(errors, ParseError{Line: i + 1, Message: "Rule is not supported"})
			i++
			i = consumeBlock(lines, i)
			continue
		}

		if strings.HasPrefix(trimmed, "Examples:") {
			errors = append(errors, ParseError{Line: i + 1, Message: "Examples outside a Scenario Outline"})
			i++
			i = consumeBlock(lines, i)
			continue
		}

		// Stray content line, skip
		i++
	}

	return doc, errors
}

// parseSteps consumes step lines plus their table/doc-string arguments until
// the next keyword or tag line. Content lines before the first step form the
// description. Returns the steps, the description, and the next line index.
func parseSteps(lines []string, i int, errors *[]ParseError) ([]Step, string, int) {
	var steps []Step
	var desc []string

	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])

		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			i++
			continue
		}

		if kw, rest, ok := matchStepKeyword(trimmed); ok {
			steps = append(steps, Step{Keyword: kw, Text: rest, Line: i + 1})
			i++
			continue
		}

		if strings.HasPrefix(trimmed, "|") {
			if len(steps) == 0 {
				*errors = append(*errors, ParseError{Line: i + 1, Message: "table row without a step"})
				i++
				continue
			}
			var table *DataTable
			table, i = parseTable(lines, i)
			steps[len(steps)-1].Argument = &StepArgument{DataTable: table}
			continue
		}

		if isDocStringDelimiter(trimmed) {
			if len(steps) == 0 {
				*errors = append(*errors, ParseError{Line: i + 1, Message: "doc string without a step"})
				i = skipDocString(lines, i)
				continue
			}
			var ds *DocString
			ds, i = parseDocString(lines, i)
			steps[len(steps)-1].Argument = &StepArgument{DocString: ds}
			continue
		}

		if isKeyword(trimmed) || isTagLine(trimmed) {
			break
		}

		if len(steps) == 0 {
			desc = append(desc, trimmed)
		}
		i++
	}

	return steps, strings.Join(desc, "\n"), i
}

// parseTable consumes consecutive "|"-delimited rows starting at i.
func parseTable(lines []string, i int) (*DataTable, int) {
	table := &DataTable{}
	for i < len(lines) {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			// A blank or comment line ends the table only if no row follows
			if nextRowFollows(lines, i) {
				i++
				continue
			}
			break
		}
		if !strings.HasPrefix(trimmed, "|") {
			break
		}
		table.Rows = append(table.Rows, splitCells(trimmed))
		i++
	}
	return table, i
}

func nextRowFollows(lines []string, i int) bool {
	for j := i; j < len(lines); j++ {
		t := strings.TrimSpace(lines[j])
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		return strings.HasPrefix(t, "|")
	}
	return false
}

// splitCells splits a "| a | b |" row into its trimmed cell values.
func splitCells(trimmed string) []string {
	trimmed = strings.TrimPrefix(trimmed, "|")
	trimmed = strings.TrimSuffix(trimmed, "|")
	parts := strings.Split(trimmed, "|")
	cells := make([]string, len(parts))
	for i, p := range parts {
		cells[i] = strings.TrimSpace(p)
	}
	return cells
}

// parseDocString consumes a doc string block. i points at the opening delimiter.
func parseDocString(lines []string, i int) (*DocString, int) {
	opener := lines[i]
	trimmed := strings.TrimSpace(opener)
	delimiter := `"""`
	if strings.HasPrefix(trimmed, "```") {
		delimiter = "```"
	}
	indent := len(opener) - len(strings.TrimLeft(opener, " \t"))
	ds := &DocString{MediaType: strings.TrimSpace(strings.TrimPrefix(trimmed, delimiter))}

	i++
	var body []string
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == delimiter {
			i++
			break
		}
		line := lines[i]
		// Strip up to the opener's indentation
		for j := 0; j < indent && len(line) > 0 && (line[0] == ' ' || line[0] == '\t'); j++ {
			line = line[1:]
		}
		body = append(body, line)
		i++
	}
	ds.Content = strings.Join(body, "\n")
	return ds, i
}

func matchStepKeyword(trimmed string) (keyword, rest string, ok bool) {
	for _, kw := range stepKeywords {
		if strings.HasPrefix(trimmed, kw) {
			return strings.TrimSpace(kw), strings.TrimSpace(strings.TrimPrefix(trimmed, kw)), true
		}
	}
	return "", "", false
}

func parseTags(line string) []Tag {
	matches := tagPattern.FindAllString(line, -1)
	var tags []Tag
	for _, m := range matches {
		tags = append(tags, Tag{Name: m})
	}
	return tags
}

func isTagLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "@")
}

func isKeyword(trimmed string) bool {
	return strings.HasPrefix(trimmed, "Feature:") ||
		strings.HasPrefix(trimmed, "Background:") ||
		strings.HasPrefix(trimmed, "Scenario:") ||
		strings.HasPrefix(trimmed, "Scenario Outline:") ||
		strings.HasPrefix(trimmed, "Rule:") ||
		strings.HasPrefix(trimmed, "Examples:")
}

func isDocStringDelimiter(trimmed string) bool {
	return strings.HasPrefix(trimmed, `"""`) || strings.HasPrefix(trimmed, "```")
}

// skipDocString advances past a doc string block. i points at the opening delimiter.
func skipDocString(lines []string, i int) int {
	opener := strings.TrimSpace(lines[i])
	delimiter := `"""`
	if strings.HasPrefix(opener, "```") {
		delimiter = "```"
	}
	i++
	for i < len(lines) {
		if strings.TrimSpace(lines[i]) == delimiter {
			return i + 1
		}
		i++
	}
	return i
}

// consumeBlock advances past content lines, skipping over doc strings,
// until the next keyword, tag line, or EOF.
func consumeBlock(lines []string, i int) int {
	for i < len(lines) {
		t := strings.TrimSpace(lines[i])
		if isDocStringDelimiter(t) {
			i = skipDocString(lines, i)
			continue
		}
		if isKeyword(t) || isTagLine(t) {
			break
		}
		i++
	}
	return i
}

func filenameWithoutExt(path string) string {
	name := filepath.Base(path)
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	return name
}
