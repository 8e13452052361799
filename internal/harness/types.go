package harness

import (
	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

// TraceEvent records one executed step and the state it left behind.
type TraceEvent struct {
	Step int    `json:"step"`
	Op   string `json:"op"`

	// Args echoes the step's inputs (unit, direction, suggestion, index, tables).
	Args map[string]any `json:"args,omitempty"`

	// Sequence is the captain's sequence after the step.
	Sequence []string `json:"sequence"`

	// Suggestions is set by analyze steps.
	Suggestions []SuggestionSummary `json:"suggestions,omitempty"`

	// Error is the error code the step failed with, if any.
	Error string `json:"error,omitempty"`

	// Revision is the store revision after the step.
	Revision int64 `json:"revision"`
}

// SuggestionSummary is the part of a suggestion that golden files pin.
// Descriptions are free text and stay out of the trace.
type SuggestionSummary struct {
	Type          ir.SuggestionType `json:"type"`
	Severity      ir.Severity       `json:"severity"`
	TableIDs      []string          `json:"table_ids"`
	ImpactMinutes int               `json:"impact_minutes"`
}

func summarize(ranked []engine.RankedSuggestion) []SuggestionSummary {
	out := make([]SuggestionSummary, len(ranked))
	for i, r := range ranked {
		out[i] = SuggestionSummary{
			Type:          r.Type,
			Severity:      r.Severity,
			TableIDs:      r.TableIDs,
			ImpactMinutes: r.Impact(),
		}
	}
	return out
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall success: every step behaved as expected and
	// every assertion held.
	Pass bool `json:"pass"`

	// Captain is the captain the steps acted on.
	Captain string `json:"captain"`

	// Trace contains one event per step, in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Sequence is the final in-memory sequence.
	Sequence ir.Sequence `json:"sequence"`

	// Suggestions is a fresh analysis of the final sequence.
	Suggestions []engine.RankedSuggestion `json:"suggestions"`

	// Revision is the final store revision.
	Revision int64 `json:"revision"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult() *Result {
	return &Result{
		Pass:        true,
		Trace:       []TraceEvent{},
		Errors:      []string{},
		Sequence:    ir.Sequence{},
		Suggestions: []engine.RankedSuggestion{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddTrace appends ev, numbering it after the events already recorded.
func (r *Result) AddTrace(ev TraceEvent) {
	ev.Step = len(r.Trace)
	r.Trace = append(r.Trace, ev)
}
