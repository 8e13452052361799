package engine

import (
	"fmt"
	"slices"

	"github.com/roach88/expo/internal/ir"
)

// Roster is the sequence store: it owns the current firing sequence of every
// assigned captain.
//
// INVARIANTS:
//   - each stored sequence is a permutation of its captain's tables
//   - Get returns copies; callers can never mutate stored state
//   - every mutation is computed on a copy and stored with one assignment,
//     so a partially rewritten sequence is never observable
//
// Roster is NOT safe for concurrent use. Hosts that accept edits from several
// actors must serialize writes per captain (see internal/server).
type Roster struct {
	clock     *Clock
	tables    map[string][]string
	sequences map[string]ir.Sequence
	revisions map[string]int64
	order     []string // captain ids in assignment order
}

// NewRoster creates an empty roster.
func NewRoster() *Roster {
	return NewRosterWithClock(NewClock())
}

// NewRosterWithClock creates an empty roster that stamps revisions from clock.
func NewRosterWithClock(clock *Clock) *Roster {
	return &Roster{
		clock:     clock,
		tables:    make(map[string][]string),
		sequences: make(map[string]ir.Sequence),
		revisions: make(map[string]int64),
	}
}

// Assign creates (or replaces) the captain's sequence.
//
// A persisted FiringSequence is reconciled against TableIDs: ids still
// assigned keep their persisted order, tables the persisted order has never
// seen are appended in TableIDs order, and ids no longer assigned are
// dropped. With no persisted order the sequence is TableIDs as supplied.
// Duplicate table ids are an INVARIANT_VIOLATION.
//
// Returns true when the persisted order had to be reconciled.
func (r *Roster) Assign(c ir.Captain) (reconciled bool, err error) {
	if hasDuplicates(c.TableIDs) {
		return false, withCaptain(NewInvariantViolationError("captain lists a table more than once"), c.ID)
	}

	seq := reconcile(c.TableIDs, c.FiringSequence)
	if len(c.FiringSequence) > 0 {
		reconciled = !slices.Equal(seq, c.FiringSequence)
	}
	if err := CheckPermutation(c.TableIDs, seq); err != nil {
		return false, withCaptain(err, c.ID)
	}

	if _, ok := r.tables[c.ID]; !ok {
		r.order = append(r.order, c.ID)
	}
	r.tables[c.ID] = slices.Clone(c.TableIDs)
	r.store(c.ID, seq)
	return reconciled, nil
}

// reconcile builds a permutation of tables that follows persisted where it can.
func reconcile(tables, persisted []string) ir.Sequence {
	if len(persisted) == 0 {
		return ir.Sequence(tables).Clone()
	}

	assigned := make(map[string]bool, len(tables))
	for _, id := range tables {
		assigned[id] = true
	}

	out := make(ir.Sequence, 0, len(tables))
	placed := make(map[string]bool, len(tables))
	for _, id := range persisted {
		if assigned[id] && !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	for _, id := range tables {
		if !placed[id] {
			out = append(out, id)
			placed[id] = true
		}
	}
	return out
}

// Captains returns the assigned captain ids in assignment order.
func (r *Roster) Captains() []string {
	return slices.Clone(r.order)
}

// Get returns a copy of the captain's current sequence.
func (r *Roster) Get(captainID string) (ir.Sequence, error) {
	seq, ok := r.sequences[captainID]
	if !ok {
		return nil, NewUnknownCaptainError(captainID)
	}
	return seq.Clone(), nil
}

// Revision returns the clock value stamped by the captain's last mutation.
func (r *Roster) Revision(captainID string) (int64, error) {
	rev, ok := r.revisions[captainID]
	if !ok {
		return 0, NewUnknownCaptainError(captainID)
	}
	return rev, nil
}

// Set replaces the captain's sequence wholesale. seq must be a permutation of
// the captain's tables; anything else is an INVARIANT_VIOLATION and leaves
// the stored sequence untouched.
func (r *Roster) Set(captainID string, seq ir.Sequence) error {
	tables, ok := r.tables[captainID]
	if !ok {
		return NewUnknownCaptainError(captainID)
	}
	if err := CheckPermutation(tables, seq); err != nil {
		return withCaptain(err, captainID)
	}
	r.store(captainID, seq.Clone())
	return nil
}

// MoveUnit swaps unitID with its neighbour in dir and stores the result.
// At either edge the move is a no-op returning OUT_OF_BOUNDS together with
// the unchanged sequence.
func (r *Roster) MoveUnit(captainID, unitID string, dir ir.Direction) (ir.Sequence, error) {
	current, ok := r.sequences[captainID]
	if !ok {
		return nil, NewUnknownCaptainError(captainID)
	}

	next, err := Move(current, unitID, dir)
	if err != nil {
		return next, withCaptain(err, captainID)
	}
	r.store(captainID, next)
	return next.Clone(), nil
}

// ApplySuggestion applies s to the captain's sequence and stores the result.
// On error the stored sequence is unchanged and returned as is.
func (r *Roster) ApplySuggestion(captainID string, s ir.Suggestion, units ir.UnitIndex) (ir.Sequence, error) {
	current, ok := r.sequences[captainID]
	if !ok {
		return nil, NewUnknownCaptainError(captainID)
	}

	next, err := Apply(current, s, units)
	if err != nil {
		return next, withCaptain(err, captainID)
	}
	r.store(captainID, next)
	return next.Clone(), nil
}

// store is the single write point for sequences.
func (r *Roster) store(captainID string, seq ir.Sequence) {
	r.sequences[captainID] = seq
	r.revisions[captainID] = r.clock.Next()
}

// String implements fmt.Stringer for debugging.
func (r *Roster) String() string {
	return fmt.Sprintf("Roster{captains=%d, revision=%d}", len(r.order), r.clock.Current())
}
