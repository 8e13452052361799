package ir

import (
	"fmt"
	"slices"
)

// Complexity grades how demanding a table is for the kitchen.
type Complexity string

const (
	ComplexityLow    Complexity = "low"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// Valid reports whether c is one of the known complexity grades.
func (c Complexity) Valid() bool {
	switch c {
	case ComplexityLow, ComplexityMedium, ComplexityHigh:
		return true
	}
	return false
}

// VIPStatusStandard is the seat status that does NOT make a table VIP.
const VIPStatusStandard = "standard"

// Seat is a single cover at a table.
// VIPStatus is optional; empty means no status was recorded.
type Seat struct {
	Number    int    `json:"number" yaml:"number"`
	VIPStatus string `json:"vip_status,omitempty" yaml:"vip_status,omitempty"`
}

// IsVIP reports whether the seat carries a status other than standard.
func (s Seat) IsVIP() bool {
	return s.VIPStatus != "" && s.VIPStatus != VIPStatusStandard
}

// Unit is a table: the schedulable entity that holds a position in a
// firing sequence. Attributes not listed here are ignored by the engine.
type Unit struct {
	ID                    string     `json:"id" yaml:"id"`
	CaptainID             string     `json:"captain_id,omitempty" yaml:"captain_id,omitempty"`
	Label                 string     `json:"label,omitempty" yaml:"label,omitempty"`
	Section               string     `json:"section,omitempty" yaml:"section,omitempty"`
	Complexity            Complexity `json:"complexity" yaml:"complexity"`
	ProximityToKitchen    int        `json:"proximity_to_kitchen" yaml:"proximity_to_kitchen"` // higher = closer
	AccessibilityFriendly bool       `json:"accessibility_friendly,omitempty" yaml:"accessibility_friendly,omitempty"`
	Seats                 []Seat     `json:"seats,omitempty" yaml:"seats,omitempty"`
}

// IsVIP reports whether any seat at the table is VIP.
func (u Unit) IsVIP() bool {
	for _, s := range u.Seats {
		if s.IsVIP() {
			return true
		}
	}
	return false
}

// Captain owns exactly one firing sequence over its assigned tables.
//
// INVARIANT: FiringSequence, when non-empty, is a permutation of TableIDs.
// An empty FiringSequence means "not persisted yet" and defaults to TableIDs.
type Captain struct {
	ID             string   `json:"id" yaml:"id"`
	Name           string   `json:"name,omitempty" yaml:"name,omitempty"`
	TableIDs       []string `json:"table_ids" yaml:"table_ids"`
	FiringSequence []string `json:"firing_sequence,omitempty" yaml:"firing_sequence,omitempty"`
}

// CoursePlan is a display-only timing template for the timeline preview.
// No heuristic reads it.
type CoursePlan struct {
	Code              string `json:"code" yaml:"code"`
	Label             string `json:"label" yaml:"label"`
	TargetDurationMin int    `json:"target_duration_min" yaml:"target_duration_min"`
	ToleranceMin      int    `json:"tolerance_min" yaml:"tolerance_min"`
}

// DefaultCoursePlans is used by the timeline when a floor defines none.
var DefaultCoursePlans = []CoursePlan{
	{Code: "APP", Label: "Appetizer", TargetDurationMin: 20, ToleranceMin: 5},
	{Code: "ENT", Label: "Entree", TargetDurationMin: 35, ToleranceMin: 10},
	{Code: "DES", Label: "Dessert", TargetDurationMin: 15, ToleranceMin: 5},
}

// Floor bundles everything a host hands to the engine: the unit registry,
// captain assignments and the course plan list.
type Floor struct {
	Units       []Unit       `json:"units" yaml:"units"`
	Captains    []Captain    `json:"captains" yaml:"captains"`
	CoursePlans []CoursePlan `json:"course_plans,omitempty" yaml:"course_plans,omitempty"`
}

// Captain returns the captain with the given id.
func (f *Floor) Captain(id string) (Captain, bool) {
	for _, c := range f.Captains {
		if c.ID == id {
			return c, true
		}
	}
	return Captain{}, false
}

// UnitIndex is the read-only unit registry keyed by unit id.
type UnitIndex map[string]Unit

// Index builds a UnitIndex from the floor's units.
func (f *Floor) Index() UnitIndex {
	return NewUnitIndex(f.Units)
}

// NewUnitIndex builds a UnitIndex. Later duplicates overwrite earlier ones;
// floor validation rejects duplicates before this point.
func NewUnitIndex(units []Unit) UnitIndex {
	idx := make(UnitIndex, len(units))
	for _, u := range units {
		idx[u.ID] = u
	}
	return idx
}

// Sequence is an ordered list of unit ids defining serving order.
type Sequence []string

// Clone returns an independent copy of the sequence.
func (s Sequence) Clone() Sequence {
	if s == nil {
		return Sequence{}
	}
	return slices.Clone(s)
}

// IndexOf returns the position of id, or -1 if absent.
func (s Sequence) IndexOf(id string) int {
	return slices.Index(s, id)
}

// Contains reports whether id is in the sequence.
func (s Sequence) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Direction is the way a single-step move swaps a unit.
type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection converts user input to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(s) {
	case DirectionUp, DirectionDown:
		return Direction(s), nil
	}
	return "", fmt.Errorf("invalid direction %q: must be up or down", s)
}

// Severity ranks how urgent a suggestion is.
type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

// Weight maps severity to its ranking weight: high=3, medium=2, low=1.
// Unknown severities weigh 0 and sort last.
func (s Severity) Weight() int {
	switch s {
	case SeverityHigh:
		return 3
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 1
	}
	return 0
}

// ParseSeverity converts user input to a Severity.
func ParseSeverity(s string) (Severity, error) {
	sev := Severity(s)
	if sev.Weight() == 0 {
		return "", fmt.Errorf("invalid severity %q: must be low, medium or high", s)
	}
	return sev, nil
}

// SuggestionType is the closed set of heuristics. The applier switches on it
// exhaustively.
type SuggestionType string

const (
	SuggestionEfficiency SuggestionType = "efficiency"
	SuggestionBottleneck SuggestionType = "bottleneck"
	SuggestionTiming     SuggestionType = "timing"
	SuggestionGrouping   SuggestionType = "grouping"
)

// SuggestionTypes lists every suggestion type in analyzer order.
var SuggestionTypes = []SuggestionType{
	SuggestionEfficiency,
	SuggestionBottleneck,
	SuggestionTiming,
	SuggestionGrouping,
}

// ParseSuggestionType converts user input to a SuggestionType.
func ParseSuggestionType(s string) (SuggestionType, error) {
	t := SuggestionType(s)
	if slices.Contains(SuggestionTypes, t) {
		return t, nil
	}
	return "", fmt.Errorf("invalid suggestion type %q", s)
}

// Suggestion is a detected sequencing problem with its remediation.
//
// TableIDs is a non-empty subset of the sequence it was computed against.
// ImpactMinutes is optional; nil means no estimate.
type Suggestion struct {
	Type            SuggestionType `json:"type" yaml:"type"`
	Severity        Severity       `json:"severity" yaml:"severity"`
	Description     string         `json:"description" yaml:"description"`
	TableIDs        []string       `json:"table_ids" yaml:"table_ids"`
	SuggestedAction string         `json:"suggested_action" yaml:"suggested_action"`
	ImpactMinutes   *int           `json:"impact_minutes,omitempty" yaml:"impact_minutes,omitempty"`
}

// Impact returns ImpactMinutes or 0 when unset.
func (s Suggestion) Impact() int {
	if s.ImpactMinutes == nil {
		return 0
	}
	return *s.ImpactMinutes
}

// Minutes returns a pointer to m, for populating ImpactMinutes.
func Minutes(m int) *int {
	return &m
}
