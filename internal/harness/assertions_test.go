package harness

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

func resultWith(seq []string, types ...ir.SuggestionType) *Result {
	r := NewResult()
	r.Sequence = ir.Sequence(seq)
	for _, typ := range types {
		r.Suggestions = append(r.Suggestions, engine.RankedSuggestion{
			Suggestion: ir.Suggestion{Type: typ, Severity: ir.SeverityLow, TableIDs: seq[:1]},
		})
	}
	return r
}

func TestAssertSequenceEquals(t *testing.T) {
	r := resultWith([]string{"A", "B", "C"})

	errs := EvaluateAssertions(r, []Assertion{{Type: AssertSequenceEquals, Sequence: []string{"A", "B", "C"}}}, nil)
	assert.Empty(t, errs)

	errs = EvaluateAssertions(r, []Assertion{{Type: AssertSequenceEquals, Sequence: []string{"B", "A", "C"}}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "Assertion failed: sequence_equals")
	assert.Contains(t, errs[0], "Expected: [B A C]")
	assert.Contains(t, errs[0], "Actual: [A B C]")
}

func TestAssertSuggestionCount(t *testing.T) {
	r := resultWith([]string{"A", "B"}, ir.SuggestionEfficiency, ir.SuggestionEfficiency, ir.SuggestionTiming)

	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"two efficiency", Assertion{Type: AssertSuggestionCount, Suggestion: "efficiency", Count: 2}, true},
		{"wrong count", Assertion{Type: AssertSuggestionCount, Suggestion: "efficiency", Count: 1}, false},
		{"zero grouping", Assertion{Type: AssertSuggestionCount, Suggestion: "grouping"}, true},
		{"no bottleneck", Assertion{Type: AssertNoSuggestion, Suggestion: "bottleneck"}, true},
		{"timing present", Assertion{Type: AssertNoSuggestion, Suggestion: "timing"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(r, []Assertion{tt.a}, nil)
			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
			}
		})
	}
}

func TestAssertContiguousBlock(t *testing.T) {
	r := resultWith([]string{"A", "B", "C", "D"})
	one, two := 1, 2

	tests := []struct {
		name string
		a    Assertion
		ok   bool
	}{
		{"adjacent", Assertion{Type: AssertContiguousBlock, Tables: []string{"B", "C"}}, true},
		{"adjacent at start", Assertion{Type: AssertContiguousBlock, Tables: []string{"B", "C"}, Start: &one}, true},
		{"wrong start", Assertion{Type: AssertContiguousBlock, Tables: []string{"B", "C"}, Start: &two}, false},
		{"gap", Assertion{Type: AssertContiguousBlock, Tables: []string{"A", "C"}}, false},
		{"wrong order", Assertion{Type: AssertContiguousBlock, Tables: []string{"C", "B"}}, false},
		{"runs off the end", Assertion{Type: AssertContiguousBlock, Tables: []string{"D", "E"}}, false},
		{"absent", Assertion{Type: AssertContiguousBlock, Tables: []string{"Z"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := EvaluateAssertions(r, []Assertion{tt.a}, nil)
			if tt.ok {
				assert.Empty(t, errs)
			} else {
				assert.Len(t, errs, 1)
			}
		})
	}
}

func TestAssertStoredSequence_RequiresStore(t *testing.T) {
	errs := EvaluateAssertions(resultWith([]string{"A"}), []Assertion{{Type: AssertStoredSequence}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], "requires database context")
}

func TestAssertStoredSequence_RevisionMismatch(t *testing.T) {
	result, err := Run(diningScenario(
		[]Step{{Op: OpMove, Unit: "T2", Direction: "up"}},
		Assertion{Type: AssertStoredSequence, Revision: 5},
	))
	require.NoError(t, err)

	assert.False(t, result.Pass)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "Expected: revision 5")
	assert.Contains(t, result.Errors[0], "Actual: revision 2")
}

func TestAssertionError_IncludesTrace(t *testing.T) {
	e := &AssertionError{
		Type:     AssertSequenceEquals,
		Expected: "[A B]",
		Actual:   "[B A]",
		Trace: []TraceEvent{
			{Step: 0, Op: OpMove, Sequence: []string{"B", "A"}},
			{Step: 1, Op: OpMove, Sequence: []string{"B", "A"}, Error: "OUT_OF_BOUNDS"},
		},
	}

	msg := e.Error()
	assert.Contains(t, msg, "Full trace:")
	assert.Contains(t, msg, "[0] move [B A]")
	assert.Contains(t, msg, "[1] move [B A] OUT_OF_BOUNDS")
}

func TestEvaluateAssertions_UnknownType(t *testing.T) {
	errs := EvaluateAssertions(NewResult(), []Assertion{{Type: "final_state"}}, nil)
	require.Len(t, errs, 1)
	assert.Contains(t, errs[0], `unknown assertion type "final_state"`)
}
