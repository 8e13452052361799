package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/testutil"
)

// plainFloor returns T1..Tn with neutral units, then lets mutate tweak them.
func plainFloor(n int, mutate map[string][]testutil.UnitOption) (ir.Sequence, ir.UnitIndex) {
	seq := testutil.SequenceIDs(n)
	units := make(ir.UnitIndex, n)
	for _, id := range seq {
		units[id] = testutil.NewUnit(id, mutate[id]...)
	}
	return seq, units
}

func TestAnalyzeEfficiency_LargeGap(t *testing.T) {
	units := testutil.Index(
		testutil.NewUnit("A", testutil.Proximity(9)),
		testutil.NewUnit("B", testutil.Proximity(2)),
	)

	got := AnalyzeEfficiency(ir.Sequence{"A", "B"}, units)

	require.Len(t, got, 1)
	assert.Equal(t, ir.SuggestionEfficiency, got[0].Type)
	assert.Equal(t, ir.SeverityMedium, got[0].Severity)
	assert.Equal(t, []string{"A", "B"}, got[0].TableIDs)
	assert.Equal(t, ActionGroupByProximity, got[0].SuggestedAction)
	assert.Equal(t, 14, got[0].Impact())
}

func TestAnalyzeEfficiency_Threshold(t *testing.T) {
	units := testutil.Index(
		testutil.NewUnit("A", testutil.Proximity(8)),
		testutil.NewUnit("B", testutil.Proximity(5)),
	)
	assert.Empty(t, AnalyzeEfficiency(ir.Sequence{"A", "B"}, units), "gap of exactly 3 is tolerated")
}

func TestAnalyzeEfficiency_OnePerPair(t *testing.T) {
	units := testutil.Index(
		testutil.NewUnit("A", testutil.Proximity(1)),
		testutil.NewUnit("B", testutil.Proximity(9)),
		testutil.NewUnit("C", testutil.Proximity(1)),
	)

	got := AnalyzeEfficiency(ir.Sequence{"A", "B", "C"}, units)

	require.Len(t, got, 2)
	assert.Equal(t, []string{"A", "B"}, got[0].TableIDs)
	assert.Equal(t, []string{"B", "C"}, got[1].TableIDs)
	assert.Equal(t, 16, got[1].Impact())
}

func TestAnalyzeEfficiency_SkipsUnknownUnits(t *testing.T) {
	units := testutil.Index(testutil.NewUnit("A", testutil.Proximity(9)))
	assert.Empty(t, AnalyzeEfficiency(ir.Sequence{"A", "ghost"}, units))
}

func TestAnalyzeBottleneck(t *testing.T) {
	high := []testutil.UnitOption{testutil.High()}

	tests := []struct {
		name  string
		highs []string
		want  []string
	}{
		{"contiguous middle run", []string{"T3", "T4", "T5"}, []string{"T3", "T4", "T5"}},
		{"contiguous pair at front", []string{"T1", "T2"}, []string{"T1", "T2"}},
		{"spread out", []string{"T1", "T4", "T6"}, nil},
		{"one gap", []string{"T2", "T3", "T5"}, nil},
		{"single high", []string{"T3"}, nil},
		{"none", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutate := map[string][]testutil.UnitOption{}
			for _, id := range tt.highs {
				mutate[id] = high
			}
			seq, units := plainFloor(6, mutate)

			got := AnalyzeBottleneck(seq, units)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, ir.SeverityHigh, got[0].Severity)
			assert.Equal(t, tt.want, got[0].TableIDs)
			assert.Equal(t, 15, got[0].Impact())
			assert.Equal(t, ActionDistributeComplex, got[0].SuggestedAction)
		})
	}
}

func TestAnalyzeTiming(t *testing.T) {
	tests := []struct {
		name string
		vip  string
		want int
	}{
		{"late VIP", "T7", 1},
		{"early VIP", "T4", 0},
		// position 5 is floor(10/2), not past it
		{"at midpoint", "T6", 0},
		{"last", "T10", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seq, units := plainFloor(10, map[string][]testutil.UnitOption{
				tt.vip: {testutil.VIP("gold")},
			})

			got := AnalyzeTiming(seq, units)
			require.Len(t, got, tt.want)
			if tt.want == 1 {
				assert.Equal(t, []string{tt.vip}, got[0].TableIDs)
				assert.Equal(t, ir.SeverityMedium, got[0].Severity)
				assert.Equal(t, 5, got[0].Impact())
			}
		})
	}
}

func TestAnalyzeTiming_StandardSeatIsNotVIP(t *testing.T) {
	seq, units := plainFloor(4, map[string][]testutil.UnitOption{
		"T4": {testutil.VIP(ir.VIPStatusStandard)},
	})
	assert.Empty(t, AnalyzeTiming(seq, units))
}

func TestAnalyzeTiming_OnePerVIP(t *testing.T) {
	seq, units := plainFloor(6, map[string][]testutil.UnitOption{
		"T5": {testutil.VIP("gold")},
		"T6": {testutil.VIP("platinum")},
	})

	got := AnalyzeTiming(seq, units)
	require.Len(t, got, 2)
	assert.Equal(t, []string{"T5"}, got[0].TableIDs)
	assert.Equal(t, []string{"T6"}, got[1].TableIDs)
}

func TestAnalyzeGrouping(t *testing.T) {
	tests := []struct {
		name       string
		accessible []string
		want       bool
	}{
		{"scattered three", []string{"T1", "T5", "T10"}, true}, // spread 9 > 6
		{"tight three", []string{"T1", "T2", "T3"}, false},
		{"pair at limit", []string{"T1", "T5"}, false}, // spread 4 == 2*2
		{"pair past limit", []string{"T1", "T6"}, true},
		{"single", []string{"T4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mutate := map[string][]testutil.UnitOption{}
			for _, id := range tt.accessible {
				mutate[id] = []testutil.UnitOption{testutil.Accessible()}
			}
			seq, units := plainFloor(10, mutate)

			got := AnalyzeGrouping(seq, units)
			if !tt.want {
				assert.Empty(t, got)
				return
			}
			require.Len(t, got, 1)
			assert.Equal(t, ir.SeverityLow, got[0].Severity)
			assert.Equal(t, tt.accessible, got[0].TableIDs)
			assert.Equal(t, 3, got[0].Impact())
		})
	}
}

func TestAnalyze_ConcatenatesInOrder(t *testing.T) {
	seq, units := plainFloor(10, map[string][]testutil.UnitOption{
		"T1":  {testutil.Accessible(), testutil.Proximity(9)},
		"T2":  {testutil.High(), testutil.Proximity(1)},
		"T3":  {testutil.High(), testutil.Proximity(3)},
		"T9":  {testutil.VIP("gold")},
		"T10": {testutil.Accessible()},
	})

	got := Analyze(seq, units)

	var types []ir.SuggestionType
	for _, s := range got {
		types = append(types, s.Type)
	}
	assert.Equal(t, []ir.SuggestionType{
		ir.SuggestionEfficiency,
		ir.SuggestionBottleneck,
		ir.SuggestionTiming,
		ir.SuggestionGrouping,
	}, types)
}

func TestAnalyze_EmptySequence(t *testing.T) {
	got := Analyze(nil, nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAnalyze_DoesNotModifyInput(t *testing.T) {
	seq, units := plainFloor(4, map[string][]testutil.UnitOption{
		"T3": {testutil.High()},
		"T4": {testutil.High(), testutil.VIP("gold")},
	})
	before := seq.Clone()

	Analyze(seq, units)
	assert.Equal(t, before, seq)
}

func TestAnalyzerFor(t *testing.T) {
	for _, st := range ir.SuggestionTypes {
		fn, ok := AnalyzerFor(st)
		assert.True(t, ok, st)
		assert.NotNil(t, fn)
	}

	_, ok := AnalyzerFor(ir.SuggestionType("seating"))
	assert.False(t, ok)
}
