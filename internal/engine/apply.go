package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/expo/internal/ir"
)

// Apply rewrites seq to remedy suggestion s and returns the new sequence.
//
// The strategy is chosen by s.Type. Every strategy splices one id at a time,
// recomputing indices after each step; the order-dependent result is part of
// the contract and must not be collapsed into a batch rewrite.
//
// Apply never modifies seq. Errors leave the caller's sequence as it was:
//   - STALE_SUGGESTION: s references no ids, repeats an id, or references ids
//     no longer in seq. Re-analyze before applying again.
//   - INVARIANT_VIOLATION: the rewrite would not be a permutation of seq.
//
// Units are consulted only by the efficiency strategy (for proximity); ids
// missing from units sort as proximity 0.
func Apply(seq ir.Sequence, s ir.Suggestion, units ir.UnitIndex) (ir.Sequence, error) {
	if err := checkFresh(seq, s); err != nil {
		return seq.Clone(), err
	}

	var out ir.Sequence
	switch s.Type {
	case ir.SuggestionTiming:
		out = applyTiming(seq.Clone(), s.TableIDs)
	case ir.SuggestionEfficiency:
		out = applyEfficiency(seq.Clone(), s.TableIDs, units)
	case ir.SuggestionBottleneck:
		out = applyBottleneck(seq.Clone(), s.TableIDs)
	case ir.SuggestionGrouping:
		out = applyGrouping(seq.Clone(), s.TableIDs)
	default:
		return seq.Clone(), NewInvariantViolationError(fmt.Sprintf("no strategy for suggestion type %q", s.Type))
	}

	if err := CheckPermutation(seq, out); err != nil {
		return seq.Clone(), err
	}
	return out, nil
}

// checkFresh rejects suggestions that cannot apply to seq.
func checkFresh(seq ir.Sequence, s ir.Suggestion) error {
	if len(s.TableIDs) == 0 {
		return NewStaleSuggestionError("suggestion references no tables", nil)
	}
	if hasDuplicates(s.TableIDs) {
		return NewStaleSuggestionError("suggestion references a table more than once", nil)
	}

	var missing []string
	for _, id := range s.TableIDs {
		if !seq.Contains(id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return NewStaleSuggestionError("suggestion references tables no longer in the sequence", missing)
	}
	return nil
}

// applyTiming moves each id (in suggestion order) that is not already first
// to floor(len/3), where len is measured after removing it and after every
// earlier id has been moved.
func applyTiming(seq ir.Sequence, ids []string) ir.Sequence {
	for _, id := range ids {
		if seq.IndexOf(id) <= 0 {
			continue
		}
		seq = removeID(seq, id)
		seq = insertAt(seq, len(seq)/3, id)
	}
	return seq
}

// applyEfficiency pulls the referenced tables to the front, closest to the
// kitchen first. Ties keep suggestion order.
func applyEfficiency(seq ir.Sequence, ids []string, units ir.UnitIndex) ir.Sequence {
	sorted := slices.Clone(ids)
	slices.SortStableFunc(sorted, func(a, b string) int {
		return units[b].ProximityToKitchen - units[a].ProximityToKitchen
	})

	for _, id := range ids {
		seq = removeID(seq, id)
	}
	for i, id := range sorted {
		seq = insertAt(seq, i, id)
	}
	return seq
}

// applyBottleneck removes the referenced tables and reinserts the i-th one at
// i*spacing of the growing sequence, spacing = floor(remaining/count).
func applyBottleneck(seq ir.Sequence, ids []string) ir.Sequence {
	for _, id := range ids {
		seq = removeID(seq, id)
	}

	spacing := len(seq) / len(ids)
	for i, id := range ids {
		seq = insertAt(seq, i*spacing, id)
	}
	return seq
}

// applyGrouping moves the referenced tables into one block at the front,
// keeping their relative order.
func applyGrouping(seq ir.Sequence, ids []string) ir.Sequence {
	for _, id := range ids {
		seq = removeID(seq, id)
	}
	for i, id := range ids {
		seq = insertAt(seq, i, id)
	}
	return seq
}
