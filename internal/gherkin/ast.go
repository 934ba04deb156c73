package gherkin

// Layer 1: AST types produced by Parse.

type Document struct {
	Path    string
	Feature *Feature
}

type Feature struct {
	Tags        []Tag
	Keyword     string // "Feature"
	Name        string
	Description string
	Background  *Background
	Scenarios   []ScenarioDefinition
}

type Background struct {
	Keyword     string // "Background"
	Name        string
	Description string
	Line        int // 1-based line of the Background: line
	Steps       []Step
}

type ScenarioDefinition struct {
	Tags     []Tag
	Scenario Scenario
	Line     int // 1-based line number of the Scenario:/Scenario Outline: line
}

type Scenario struct {
	Keyword     string // "Scenario" or "Scenario Outline"
	Name        string
	Description string
	Steps       []Step
	Examples    []Examples // outlines only
}

type Examples struct {
	Keyword string // "Examples"
	Name    string
	Line    int
	Table   *DataTable
}

type Tag struct {
	Name string // e.g. "@smoke", "@wip"
}

type Step struct {
	Keyword  string // Given, When, Then, And, But, *
	Text     string
	Line     int // 1-based
	Argument *StepArgument
}

type StepArgument struct {
	DocString *DocString
	DataTable *DataTable
}

type DocString struct {
	MediaType string
	Content   string
}

type DataTable struct {
	Rows [][]string
}

type ParseError struct {
	Line    int
	Message string
}
