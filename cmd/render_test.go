package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cukefmt/cukefmt/internal/db"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const loginFeature = `Feature: Login

  Background:
    Given a setup

  Scenario: One
    When action one

  Scenario: Two
    When action two
`

func inTempDir(t *testing.T) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(orig))
	})
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestRender_FormatsFeatureFile(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/login.feature", loginFeature)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/login.feature"}, RenderOptions{}))

	want := `Feature: Login

  Background:
    Given a setup

  Scenario: One
    When action one

  Scenario: Two
    When action two

2 scenarios (2 passed)
4 steps (4 passed)
`
	assert.Equal(t, want, buf.String())
}

func TestRender_NormalizesRaggedInput(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/messy.feature", `Feature: Messy

  Scenario: Table
        Given people:
   | name | age |
   | Ann Smith | 7 |
   | Bo | 42 |
`)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/messy.feature"}, RenderOptions{}))

	assert.Contains(t, buf.String(), "    Given people:\n")
	assert.Contains(t, buf.String(), "      | Ann Smith | 7   |\n")
	assert.Contains(t, buf.String(), "      | Bo        | 42  |\n")
}

func TestRender_ResultsOverlayShowsFailure(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/login.feature", loginFeature)
	writeFile(t, "results.yaml", `
background:
  - status: passed
scenarios:
  - steps:
      - status: passed
  - steps:
      - status: failed
        error: "expected a result"
`)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/login.feature"},
		RenderOptions{Results: "results.yaml", NoHistory: true}))
	got := buf.String()

	assert.Contains(t, got, "      expected a result\n")
	assert.Contains(t, got, "2 scenarios (1 failed, 1 passed)")
	assert.Contains(t, got, "4 steps (1 failed, 3 passed)")
	assert.NoFileExists(t, historyPath())
}

func TestRender_ResultsRecordsHistory(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/login.feature", loginFeature)
	writeFile(t, "results.yaml", `
scenarios:
  - steps:
      - status: failed
        error: "boom"
`)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/login.feature"},
		RenderOptions{Results: "results.yaml"}))

	sqlDB, err := db.Open(historyPath())
	require.NoError(t, err)
	defer sqlDB.Close()

	var runs, failed int
	require.NoError(t, sqlDB.QueryRow(`SELECT COUNT(*), COALESCE(SUM(failed), 0) FROM runs`).Scan(&runs, &failed))
	assert.Equal(t, 1, runs)
	assert.Equal(t, 1, failed)

	var status string
	require.NoError(t, sqlDB.QueryRow(`SELECT status FROM run_features`).Scan(&status))
	assert.Equal(t, "failed", status)
}

func TestRender_ResultsRequiresSingleFile(t *testing.T) {
	inTempDir(t)
	writeFile(t, "a.feature", "Feature: A\n")
	writeFile(t, "b.feature", "Feature: B\n")

	var buf bytes.Buffer
	err := RunRender(&buf, []string{"a.feature", "b.feature"}, RenderOptions{Results: "r.yaml"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exactly one")
}

func TestRender_BatchWritesMirroredFiles(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/auth/login.feature", loginFeature)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/auth/login.feature"},
		RenderOptions{OutDir: "out"}))

	assert.Empty(t, buf.String())

	content, err := os.ReadFile(filepath.Join("out", "features", "auth", "login.feature"))
	require.NoError(t, err)
	got := string(content)
	assert.True(t, strings.HasPrefix(got, "Feature: Login\n"), got)
	assert.NotContains(t, got, "scenarios (") // no summary in batch files
}

func TestRender_MissingFileIsAnError(t *testing.T) {
	inTempDir(t)
	var buf bytes.Buffer
	err := RunRender(&buf, []string{"nope.feature"}, RenderOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nope.feature")
}

func TestRender_ConfigFileEnablesSourceComments(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/login.feature", loginFeature)
	writeFile(t, ".cukefmt.yaml", "source: true\n")

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/login.feature"}, RenderOptions{}))

	assert.Contains(t, buf.String(), "# features/login.feature:")
}

func TestRender_SourceFlagAlignsComments(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/login.feature", loginFeature)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/login.feature"},
		RenderOptions{Source: true}))

	col := func(substr string) int {
		for _, line := range strings.Split(buf.String(), "\n") {
			if strings.Contains(line, substr) {
				return strings.Index(line, "#")
			}
		}
		t.Fatalf("no line containing %q", substr)
		return -1
	}
	require.Positive(t, col("Scenario: One"))
	assert.Equal(t, col("Scenario: One"), col("When action one"))
	assert.Equal(t, col("Scenario: Two"), col("When action two"))
}

func TestRender_NoMultilineFlagSuppressesTables(t *testing.T) {
	inTempDir(t)
	writeFile(t, "features/t.feature", `Feature: T

  Scenario: S
    Given people:
      | name |
      | Ann  |
`)

	var buf bytes.Buffer
	require.NoError(t, RunRender(&buf, []string{"features/t.feature"},
		RenderOptions{NoMultiline: true}))

	assert.NotContains(t, buf.String(), "|")
}
