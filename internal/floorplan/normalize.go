package floorplan

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/roach88/expo/internal/ir"
)

// IDGenerator mints ids for captains that arrive without one.
type IDGenerator interface {
	NewID() (string, error)
}

// UUIDGenerator mints UUIDv7 ids; they sort by creation time.
type UUIDGenerator struct{}

// NewID implements IDGenerator.
func (UUIDGenerator) NewID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generate captain id: %w", err)
	}
	return id.String(), nil
}

// Normalize fills in what a floor file may leave out, in place:
//   - captains without an id get one from gen
//   - units without a label are labelled with their id
//   - units without a captain_id take the id of the captain that lists them
//
// A captain_id that disagrees with ownership is left alone for Validate to
// report.
func Normalize(f *ir.Floor, gen IDGenerator) error {
	for i := range f.Captains {
		if f.Captains[i].ID != "" {
			continue
		}
		id, err := gen.NewID()
		if err != nil {
			return err
		}
		f.Captains[i].ID = id
	}

	owner := make(map[string]string)
	for _, c := range f.Captains {
		for _, tableID := range c.TableIDs {
			if _, ok := owner[tableID]; !ok {
				owner[tableID] = c.ID
			}
		}
	}

	for i := range f.Units {
		u := &f.Units[i]
		if u.Label == "" {
			u.Label = u.ID
		}
		if u.CaptainID == "" {
			u.CaptainID = owner[u.ID]
		}
	}
	return nil
}
