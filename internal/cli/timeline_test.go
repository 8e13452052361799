package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/engine"
)

func TestTimelineDefaultCourses(t *testing.T) {
	out, err := execute(t, NewTimelineCommand(&RootOptions{Format: "json"}), bistroFloor, "--captain", "cap-a")
	require.NoError(t, err)

	resp := decode[TimelineResult](t, out)
	assert.Equal(t, "cap-a", resp.Data.CaptainID)
	assert.Equal(t, []engine.SlotEstimate{
		{Position: 0, UnitID: "T1", Minutes: 15},
		{Position: 1, UnitID: "T2", Minutes: 18},
		{Position: 2, UnitID: "T3", Minutes: 21},
		{Position: 3, UnitID: "T4", Minutes: 24},
	}, resp.Data.Estimates)

	require.Len(t, resp.Data.Courses, 3)
	starts := []int{resp.Data.Courses[0].StartMinute, resp.Data.Courses[1].StartMinute, resp.Data.Courses[2].StartMinute}
	assert.Equal(t, []int{0, 45, 90}, starts)
	assert.Equal(t, "APP", resp.Data.Courses[0].Code)
}

func TestTimelineFloorCourses(t *testing.T) {
	out, err := execute(t, NewTimelineCommand(&RootOptions{Format: "text"}), "testdata/merged.yaml")
	require.NoError(t, err)

	assert.Contains(t, out, "cap-a (Ana)")
	assert.Contains(t, out, "  5  T5           27 min")
	assert.Contains(t, out, "+45   ENT  Entree")
	assert.NotContains(t, out, "DES")
}

func TestTimelineFromDatabase(t *testing.T) {
	dbPath := importBistro(t)

	out, err := execute(t, NewTimelineCommand(&RootOptions{Format: "json"}), "--db", dbPath, "--captain", "cap-b")
	require.NoError(t, err)

	resp := decode[TimelineResult](t, out)
	assert.Equal(t, []engine.SlotEstimate{{Position: 0, UnitID: "T5", Minutes: 15}}, resp.Data.Estimates)
	assert.Len(t, resp.Data.Courses, 3)
}
