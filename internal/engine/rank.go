package engine

import (
	"fmt"
	"slices"
	"strings"

	"github.com/roach88/expo/internal/ir"
)

// Rank orders suggestions by descending severity weight (high, medium, low).
//
// The sort is stable: suggestions of equal severity keep their input order.
// The input slice is not modified.
func Rank(suggestions []ir.Suggestion) []ir.Suggestion {
	out := slices.Clone(suggestions)
	if out == nil {
		out = []ir.Suggestion{}
	}
	slices.SortStableFunc(out, func(a, b ir.Suggestion) int {
		return b.Severity.Weight() - a.Severity.Weight()
	})
	return out
}

// RankedSuggestion pairs a suggestion with its content-addressed id.
type RankedSuggestion struct {
	ID string `json:"id"`
	ir.Suggestion
}

// WithIDs attaches ir.SuggestionID to each suggestion, preserving order.
func WithIDs(suggestions []ir.Suggestion) []RankedSuggestion {
	out := make([]RankedSuggestion, len(suggestions))
	for i, s := range suggestions {
		out[i] = RankedSuggestion{ID: ir.MustSuggestionID(s), Suggestion: s}
	}
	return out
}

// Suggest analyzes seq and returns the ranked suggestions with ids.
func Suggest(seq ir.Sequence, units ir.UnitIndex) []RankedSuggestion {
	return WithIDs(Rank(Analyze(seq, units)))
}

// FindSuggestion resolves a full id or unique id prefix against a ranked list.
// Ambiguous prefixes resolve to nothing.
func FindSuggestion(ranked []RankedSuggestion, idOrPrefix string) (RankedSuggestion, bool) {
	matches := MatchSuggestions(ranked, idOrPrefix)
	if len(matches) != 1 {
		return RankedSuggestion{}, false
	}
	return matches[0], true
}

// MatchSuggestions returns every suggestion whose id starts with idOrPrefix,
// in ranked order. An exact id match is returned alone.
func MatchSuggestions(ranked []RankedSuggestion, idOrPrefix string) []RankedSuggestion {
	var matches []RankedSuggestion
	for _, r := range ranked {
		if r.ID == idOrPrefix {
			return []RankedSuggestion{r}
		}
		if ir.MatchID(r.ID, idOrPrefix) {
			matches = append(matches, r)
		}
	}
	return matches
}

// resolveSuggestion is FindSuggestion for callers that need the reason a
// lookup failed. Both failures are STALE_SUGGESTION; an ambiguous prefix
// lists the short ids it matched under Details["matches"].
func resolveSuggestion(ranked []RankedSuggestion, idOrPrefix string) (RankedSuggestion, error) {
	matches := MatchSuggestions(ranked, idOrPrefix)
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		return RankedSuggestion{}, NewStaleSuggestionError(
			"suggestion "+ir.ShortID(idOrPrefix)+" is not produced by the current sequence", nil)
	}

	short := make([]string, len(matches))
	for i, m := range matches {
		short[i] = ir.ShortID(m.ID)
	}
	err := NewStaleSuggestionError(
		fmt.Sprintf("suggestion prefix %q matches %d suggestions; use a longer prefix", idOrPrefix, len(matches)), nil)
	err.Details = map[string]string{"matches": strings.Join(short, ",")}
	return RankedSuggestion{}, err
}
