package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGolden_Scenarios(t *testing.T) {
	files, err := Discover("testdata/scenarios", "")
	require.NoError(t, err)
	require.NotEmpty(t, files)

	for _, file := range files {
		t.Run(filepath.Base(file), func(t *testing.T) {
			result, err := RunWithGolden(t, file)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestGoldenPath(t *testing.T) {
	assert.Equal(t,
		filepath.Join("testdata", "scenarios", "golden", "vip_moves_forward.golden"),
		GoldenPath(filepath.Join("testdata", "scenarios", "vip_moves_forward.yaml")))
}

func TestSnapshot_Canonical(t *testing.T) {
	snap := TraceSnapshot{
		ScenarioName: "tiny",
		Captain:      "cap-a",
		Trace: []TraceEvent{
			{Step: 0, Op: OpMove, Args: map[string]any{"unit": "B", "direction": "up"}, Sequence: []string{"B", "A"}, Revision: 2},
			{Step: 1, Op: OpAnalyze, Sequence: []string{"B", "A"}, Suggestions: []SuggestionSummary{}, Revision: 2},
		},
	}

	data, err := snap.Marshal()
	require.NoError(t, err)
	assert.Equal(t,
		`{"captain":"cap-a","scenario_name":"tiny","trace":[`+
			`{"args":{"direction":"up","unit":"B"},"op":"move","revision":2,"sequence":["B","A"],"step":0},`+
			`{"op":"analyze","revision":2,"sequence":["B","A"],"step":1,"suggestions":[]}]}`,
		string(data))
}

func TestWriteAndCompareGolden(t *testing.T) {
	path := filepath.Join(t.TempDir(), "golden", "tiny.golden")
	snap := TraceSnapshot{ScenarioName: "tiny", Captain: "c", Trace: []TraceEvent{}}

	require.NoError(t, WriteGolden(path, snap))

	match, err := CompareGolden(path, snap)
	require.NoError(t, err)
	assert.True(t, match)

	snap.Captain = "d"
	match, err = CompareGolden(path, snap)
	require.NoError(t, err)
	assert.False(t, match)

	_, err = CompareGolden(filepath.Join(t.TempDir(), "none.golden"), snap)
	assert.Error(t, err)
	_, statErr := os.Stat(path)
	assert.NoError(t, statErr)
}
