package store

import (
	"context"
	"fmt"
	"slices"
)

// SequenceDrift describes a captain whose stored firing sequence is no longer
// a permutation of its assigned tables.
type SequenceDrift struct {
	CaptainID string   `json:"captain_id"`
	Missing   []string `json:"missing"` // assigned tables with no slot
	Extra     []string `json:"extra"`   // slots for tables no longer assigned
}

// Audit checks every stored firing sequence against its captain's tables.
// Drift appears when a re-import moves a table between captains; loading the
// captain into the engine reconciles it.
//
// Results are ordered by captain id; ids within Missing and Extra are sorted.
func (s *Store) Audit(ctx context.Context) ([]SequenceDrift, error) {
	records, err := s.ListCaptains(ctx)
	if err != nil {
		return nil, fmt.Errorf("audit: %w", err)
	}

	drifts := []SequenceDrift{}
	for _, rec := range records {
		missing := difference(rec.TableIDs, rec.FiringSequence)
		extra := difference(rec.FiringSequence, rec.TableIDs)
		if len(missing) == 0 && len(extra) == 0 {
			continue
		}
		drifts = append(drifts, SequenceDrift{
			CaptainID: rec.ID,
			Missing:   missing,
			Extra:     extra,
		})
	}
	return drifts, nil
}

// difference returns the sorted ids of a that are not in b.
func difference(a, b []string) []string {
	in := make(map[string]bool, len(b))
	for _, id := range b {
		in[id] = true
	}
	out := []string{}
	for _, id := range a {
		if !in[id] {
			out = append(out, id)
		}
	}
	slices.Sort(out)
	return out
}
