package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/harness"
)

const scenariosDir = "../harness/testdata/scenarios"

func TestTestCommandMissingArgs(t *testing.T) {
	_, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg")
}

func TestTestCommandNonExistentPath(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "does not exist")
}

func TestTestCommandEmptyDir(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found")
}

func TestTestCommandEmptyDirJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), t.TempDir())
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Data.Total)
	assert.Empty(t, resp.Data.Scenarios)
}

func TestTestCommandRunsScenarios(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenariosDir)
	require.NoError(t, err)

	assert.Contains(t, out, "✓ vip_moves_forward")
	assert.Contains(t, out, "✓ rejected_edits")
	assert.Contains(t, out, "Test Summary: 4 passed, 0 failed, 4 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommandFilterJSON(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenariosDir, "--filter", "vip")
	require.NoError(t, err)

	resp := decode[TestResult](t, out)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, "vip_moves_forward", resp.Data.Scenarios[0].Name)
	assert.Equal(t, harness.GoldenMatch, resp.Data.Scenarios[0].Golden)
	assert.Equal(t, 1, resp.Data.Passed)
}

// writeScenario writes a scenario next to a copy of the bistro floor.
func writeScenario(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	floor, err := os.ReadFile(bistroFloor)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bistro.yaml"), floor, 0644))

	scenarios := filepath.Join(dir, "scenarios")
	require.NoError(t, os.MkdirAll(scenarios, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(scenarios, "case.yaml"), []byte(body), 0644))
	return scenarios
}

func TestTestCommandUpdateThenMatch(t *testing.T) {
	scenarios := writeScenario(t, `name: timing_fix
floor: ../bistro.yaml
captain: cap-a
steps:
  - op: apply
    suggestion: timing
assertions:
  - type: sequence_equals
    sequence: [T1, T4, T2, T3]
`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), scenarios, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "timing_fix (golden updated)")
	assert.FileExists(t, filepath.Join(scenarios, "golden", "case.golden"))

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenarios)
	require.NoError(t, err)
	resp := decode[TestResult](t, out)
	require.Len(t, resp.Data.Scenarios, 1)
	assert.Equal(t, harness.GoldenMatch, resp.Data.Scenarios[0].Golden)
}

func TestTestCommandFailingScenario(t *testing.T) {
	scenarios := writeScenario(t, `name: wrong_expectation
floor: ../bistro.yaml
captain: cap-a
steps:
  - op: move
    unit: T1
    direction: up
assertions:
  - type: sequence_equals
    sequence: [T1, T2, T3, T4]
`)

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), scenarios)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	resp := decode[TestResult](t, out)
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeScenarioFailed, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Failed)
	assert.Equal(t, harness.GoldenMissing, resp.Data.Scenarios[0].Golden)
	require.NotEmpty(t, resp.Data.Scenarios[0].Errors)
	assert.Contains(t, resp.Data.Scenarios[0].Errors[0], "unexpected error")
}
