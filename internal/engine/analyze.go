package engine

import (
	"fmt"

	"github.com/roach88/expo/internal/ir"
)

// Heuristic thresholds and impacts.
const (
	// ProximityGapThreshold is the largest tolerated proximity difference
	// between adjacent tables.
	ProximityGapThreshold = 3

	// ProximityImpactFactor converts a proximity gap into minutes.
	ProximityImpactFactor = 2

	// BottleneckImpactMinutes is the cost of firing complex tables back to back.
	BottleneckImpactMinutes = 15

	// VIPDelayImpactMinutes is the cost of one late VIP table.
	VIPDelayImpactMinutes = 5

	// AccessibleSpreadFactor bounds the spread of accessible tables: spread
	// must not exceed count*factor.
	AccessibleSpreadFactor = 2

	// AccessibleGroupingImpactMinutes is the cost of scattered accessible tables.
	AccessibleGroupingImpactMinutes = 3
)

// Suggested actions, one per heuristic.
const (
	ActionGroupByProximity  = "group by kitchen proximity"
	ActionDistributeComplex = "distribute complex tables throughout sequence"
	ActionMoveVIPEarlier    = "move VIP tables earlier"
	ActionGroupAccessible   = "group accessible tables together"
)

// Analyzer inspects a sequence and reports problems.
//
// Analyzers are pure: they do not modify their inputs, share no state and do
// not depend on each other, so they may run in any order or in isolation.
// Ids with no entry in units are skipped.
type Analyzer func(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion

// Analyzers lists every heuristic in evaluation order. Analyze concatenates
// their results in this order.
var Analyzers = []Analyzer{
	AnalyzeEfficiency,
	AnalyzeBottleneck,
	AnalyzeTiming,
	AnalyzeGrouping,
}

// AnalyzerFor returns the analyzer that produces suggestions of type t.
func AnalyzerFor(t ir.SuggestionType) (Analyzer, bool) {
	switch t {
	case ir.SuggestionEfficiency:
		return AnalyzeEfficiency, true
	case ir.SuggestionBottleneck:
		return AnalyzeBottleneck, true
	case ir.SuggestionTiming:
		return AnalyzeTiming, true
	case ir.SuggestionGrouping:
		return AnalyzeGrouping, true
	}
	return nil, false
}

// Analyze runs every analyzer and concatenates their output. The result is
// unranked; pass it through Rank before surfacing it.
func Analyze(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion {
	out := []ir.Suggestion{}
	for _, analyze := range Analyzers {
		out = append(out, analyze(seq, units)...)
	}
	return out
}

// AnalyzeEfficiency flags every adjacent pair whose kitchen proximity differs
// by more than ProximityGapThreshold. Each qualifying pair gets its own
// suggestion; pairs are never merged.
func AnalyzeEfficiency(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion {
	var out []ir.Suggestion
	for i := 0; i+1 < len(seq); i++ {
		a, okA := units[seq[i]]
		b, okB := units[seq[i+1]]
		if !okA || !okB {
			continue
		}

		diff := abs(a.ProximityToKitchen - b.ProximityToKitchen)
		if diff <= ProximityGapThreshold {
			continue
		}

		out = append(out, ir.Suggestion{
			Type:     ir.SuggestionEfficiency,
			Severity: ir.SeverityMedium,
			Description: fmt.Sprintf("Tables %s and %s fire back to back but sit far apart from the kitchen (proximity %d vs %d)",
				a.ID, b.ID, a.ProximityToKitchen, b.ProximityToKitchen),
			TableIDs:        []string{a.ID, b.ID},
			SuggestedAction: ActionGroupByProximity,
			ImpactMinutes:   ir.Minutes(diff * ProximityImpactFactor),
		})
	}
	return out
}

// AnalyzeBottleneck flags high-complexity tables that fire as one unbroken
// run. Two or more high tables with no other table between any of them
// produce exactly one suggestion covering all of them.
func AnalyzeBottleneck(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion {
	var ids []string
	first, last := -1, -1
	for pos, id := range seq {
		u, ok := units[id]
		if !ok || u.Complexity != ir.ComplexityHigh {
			continue
		}
		if first < 0 {
			first = pos
		}
		last = pos
		ids = append(ids, id)
	}

	// Positions are distinct and ascending, so the run is unbroken exactly
	// when it spans len(ids) slots.
	if len(ids) < 2 || last-first != len(ids)-1 {
		return nil
	}

	return []ir.Suggestion{{
		Type:            ir.SuggestionBottleneck,
		Severity:        ir.SeverityHigh,
		Description:     fmt.Sprintf("%d high-complexity tables fire consecutively at positions %d-%d", len(ids), first, last),
		TableIDs:        ids,
		SuggestedAction: ActionDistributeComplex,
		ImpactMinutes:   ir.Minutes(BottleneckImpactMinutes),
	}}
}

// AnalyzeTiming flags every VIP table sitting past the midpoint of the
// sequence (0-indexed position > floor(len/2)). One suggestion per table.
func AnalyzeTiming(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion {
	var out []ir.Suggestion
	midpoint := len(seq) / 2
	for pos, id := range seq {
		if pos <= midpoint {
			continue
		}
		u, ok := units[id]
		if !ok || !u.IsVIP() {
			continue
		}

		out = append(out, ir.Suggestion{
			Type:            ir.SuggestionTiming,
			Severity:        ir.SeverityMedium,
			Description:     fmt.Sprintf("VIP table %s fires late at position %d of %d", id, pos, len(seq)),
			TableIDs:        []string{id},
			SuggestedAction: ActionMoveVIPEarlier,
			ImpactMinutes:   ir.Minutes(VIPDelayImpactMinutes),
		})
	}
	return out
}

// AnalyzeGrouping flags accessibility-friendly tables spread too thin: with
// n > 1 such tables, a spread (last - first position) greater than
// n*AccessibleSpreadFactor produces one suggestion covering all of them.
func AnalyzeGrouping(seq ir.Sequence, units ir.UnitIndex) []ir.Suggestion {
	var ids []string
	first, last := -1, -1
	for pos, id := range seq {
		u, ok := units[id]
		if !ok || !u.AccessibilityFriendly {
			continue
		}
		if first < 0 {
			first = pos
		}
		last = pos
		ids = append(ids, id)
	}

	if len(ids) < 2 {
		return nil
	}
	spread := last - first
	if spread <= len(ids)*AccessibleSpreadFactor {
		return nil
	}

	return []ir.Suggestion{{
		Type:            ir.SuggestionGrouping,
		Severity:        ir.SeverityLow,
		Description:     fmt.Sprintf("%d accessible tables are spread over %d positions", len(ids), spread+1),
		TableIDs:        ids,
		SuggestedAction: ActionGroupAccessible,
		ImpactMinutes:   ir.Minutes(AccessibleGroupingImpactMinutes),
	}}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
