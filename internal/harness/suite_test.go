package harness

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscover(t *testing.T) {
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = filepath.Base(f)
	}
	assert.Equal(t, []string{
		"accessible_grouping.yaml",
		"bottleneck_spread.yaml",
		"rejected_edits.yaml",
		"vip_moves_forward.yaml",
	}, names)
}

func TestDiscover_Filter(t *testing.T) {
	files, err := Discover("testdata/scenarios", "vip")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "vip_moves_forward.yaml", filepath.Base(files[0]))
}

func TestDiscover_SingleFile(t *testing.T) {
	files, err := Discover("testdata/scenarios/rejected_edits.yaml", "ignored")
	require.NoError(t, err)
	assert.Equal(t, []string{"testdata/scenarios/rejected_edits.yaml"}, files)
}

func TestDiscover_Missing(t *testing.T) {
	_, err := Discover("testdata/nowhere", "")
	var notFound *ScenarioNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "testdata/nowhere", notFound.Path)
}

// copyScenario copies a scenario and the floors it needs into a temp tree
// shaped like testdata.
func copyScenario(t *testing.T, name string) string {
	t.Helper()
	root := t.TempDir()
	for _, rel := range []string{
		filepath.Join("floors", "dining.yaml"),
		filepath.Join("scenarios", name),
	} {
		data, err := os.ReadFile(filepath.Join("testdata", rel))
		require.NoError(t, err)
		dst := filepath.Join(root, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0755))
		require.NoError(t, os.WriteFile(dst, data, 0644))
	}
	return filepath.Join(root, "scenarios", name)
}

func TestRunFile_GoldenLifecycle(t *testing.T) {
	ctx := context.Background()
	file := copyScenario(t, "bottleneck_spread.yaml")

	out := RunFile(ctx, file, false)
	assert.True(t, out.Pass, out.Errors)
	assert.Equal(t, GoldenMissing, out.Golden)
	assert.Equal(t, "bottleneck_spread", out.Name)

	out = RunFile(ctx, file, true)
	assert.True(t, out.Pass, out.Errors)
	assert.Equal(t, GoldenUpdated, out.Golden)

	out = RunFile(ctx, file, false)
	assert.True(t, out.Pass, out.Errors)
	assert.Equal(t, GoldenMatch, out.Golden)

	require.NoError(t, os.WriteFile(GoldenPath(file), []byte(`{}`), 0644))
	out = RunFile(ctx, file, false)
	assert.False(t, out.Pass)
	assert.Equal(t, GoldenMismatch, out.Golden)
	assert.Contains(t, out.Errors, "trace does not match golden file")
}

func TestRunFile_MatchesCheckedInGolden(t *testing.T) {
	out := RunFile(context.Background(), "testdata/scenarios/rejected_edits.yaml", false)
	assert.True(t, out.Pass, out.Errors)
	assert.Equal(t, GoldenMatch, out.Golden)
}

func TestRunFile_LoadFailure(t *testing.T) {
	out := RunFile(context.Background(), "testdata/scenarios/nope.yaml", false)
	assert.False(t, out.Pass)
	assert.Equal(t, "nope.yaml", out.Name)
	require.Len(t, out.Errors, 1)
	assert.Contains(t, out.Errors[0], "failed to load scenario")
}
