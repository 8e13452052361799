package harness

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/expo/internal/store"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Trace) > 0 {
		fmt.Fprintf(&buf, "\nFull trace:\n")
		for _, event := range e.Trace {
			line := fmt.Sprintf("  [%d] %s %v", event.Step, event.Op, event.Sequence)
			if event.Error != "" {
				line += " " + event.Error
			}
			fmt.Fprintln(&buf, line)
		}
	}

	return buf.String()
}

// AssertionContext provides store access for stored_sequence.
type AssertionContext struct {
	Store   *store.Store
	Ctx     context.Context
	Captain string
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion, actx *AssertionContext) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertSequenceEquals:
			err = assertSequenceEquals(result, assertion)
		case AssertSuggestionCount:
			err = assertSuggestionCount(result, assertion.Suggestion, assertion.Count)
		case AssertNoSuggestion:
			err = assertSuggestionCount(result, assertion.Suggestion, 0)
		case AssertContiguousBlock:
			err = assertContiguousBlock(result, assertion)
		case AssertStoredSequence:
			if actx == nil || actx.Store == nil {
				err = fmt.Errorf("assertion[%d]: stored_sequence requires database context", i)
			} else {
				err = assertStoredSequence(actx, result, assertion)
			}
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

func assertSequenceEquals(result *Result, a Assertion) error {
	if slices.Equal([]string(result.Sequence), a.Sequence) {
		return nil
	}
	return &AssertionError{
		Type:     AssertSequenceEquals,
		Expected: fmt.Sprintf("%v", a.Sequence),
		Actual:   fmt.Sprintf("%v", []string(result.Sequence)),
		Trace:    result.Trace,
	}
}

// assertSuggestionCount counts suggestions of type t in the final analysis.
func assertSuggestionCount(result *Result, t string, want int) error {
	count := 0
	for _, s := range result.Suggestions {
		if string(s.Type) == t {
			count++
		}
	}
	if count == want {
		return nil
	}

	typ := AssertSuggestionCount
	if want == 0 {
		typ = AssertNoSuggestion
	}
	return &AssertionError{
		Type:     typ,
		Expected: fmt.Sprintf("%d %s suggestions", want, t),
		Actual:   fmt.Sprintf("%d", count),
		Trace:    result.Trace,
	}
}

// assertContiguousBlock checks that the tables occupy consecutive slots in
// the given order, starting at Start when set.
func assertContiguousBlock(result *Result, a Assertion) error {
	first := result.Sequence.IndexOf(a.Tables[0])
	ok := first >= 0 && first+len(a.Tables) <= len(result.Sequence) &&
		slices.Equal([]string(result.Sequence[first:first+len(a.Tables)]), a.Tables)
	if ok && a.Start != nil {
		ok = first == *a.Start
	}
	if ok {
		return nil
	}

	expected := fmt.Sprintf("%v back to back", a.Tables)
	if a.Start != nil {
		expected += fmt.Sprintf(" from position %d", *a.Start)
	}
	return &AssertionError{
		Type:     AssertContiguousBlock,
		Expected: expected,
		Actual:   fmt.Sprintf("%v", []string(result.Sequence)),
		Trace:    result.Trace,
	}
}

// assertStoredSequence compares the persisted sequence with the final
// in-memory one (or with Sequence when given) and checks Revision when set.
func assertStoredSequence(actx *AssertionContext, result *Result, a Assertion) error {
	rec, err := actx.Store.ReadCaptain(actx.Ctx, actx.Captain)
	if err != nil {
		return fmt.Errorf("stored_sequence: %w", err)
	}

	want := []string(result.Sequence)
	if len(a.Sequence) > 0 {
		want = a.Sequence
	}
	if !slices.Equal(rec.FiringSequence, want) {
		return &AssertionError{
			Type:     AssertStoredSequence,
			Expected: fmt.Sprintf("%v", want),
			Actual:   fmt.Sprintf("%v", rec.FiringSequence),
			Trace:    result.Trace,
		}
	}
	if a.Revision != 0 && rec.Revision != a.Revision {
		return &AssertionError{
			Type:     AssertStoredSequence,
			Expected: fmt.Sprintf("revision %d", a.Revision),
			Actual:   fmt.Sprintf("revision %d", rec.Revision),
			Trace:    result.Trace,
		}
	}
	return nil
}
