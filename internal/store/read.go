package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/roach88/expo/internal/ir"
)

// CaptainRecord is a stored captain together with its revision.
type CaptainRecord struct {
	ir.Captain
	Revision int64 `json:"revision"`
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ReadUnits returns every unit with its seats, ordered by id.
// Returns an empty slice (not nil) if no units exist.
func (s *Store) ReadUnits(ctx context.Context) ([]ir.Unit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, captain_id, label, section, complexity, proximity_to_kitchen, accessibility_friendly
		FROM units
		ORDER BY id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query units: %w", err)
	}
	defer rows.Close()

	units := []ir.Unit{}
	byID := make(map[string]int)
	for rows.Next() {
		var u ir.Unit
		var complexity string
		if err := rows.Scan(&u.ID, &u.CaptainID, &u.Label, &u.Section, &complexity,
			&u.ProximityToKitchen, &u.AccessibilityFriendly); err != nil {
			return nil, fmt.Errorf("scan unit: %w", err)
		}
		u.Complexity = ir.Complexity(complexity)
		byID[u.ID] = len(units)
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate units: %w", err)
	}

	seatRows, err := s.db.QueryContext(ctx, `
		SELECT unit_id, number, vip_status
		FROM seats
		ORDER BY unit_id COLLATE BINARY ASC, number ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query seats: %w", err)
	}
	defer seatRows.Close()

	for seatRows.Next() {
		var unitID string
		var seat ir.Seat
		if err := seatRows.Scan(&unitID, &seat.Number, &seat.VIPStatus); err != nil {
			return nil, fmt.Errorf("scan seat: %w", err)
		}
		if i, ok := byID[unitID]; ok {
			units[i].Seats = append(units[i].Seats, seat)
		}
	}
	if err := seatRows.Err(); err != nil {
		return nil, fmt.Errorf("iterate seats: %w", err)
	}

	return units, nil
}

// ReadCaptain retrieves a captain with its tables and firing sequence.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadCaptain(ctx context.Context, id string) (CaptainRecord, error) {
	var rec CaptainRecord
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, revision FROM captains WHERE id = ?
	`, id).Scan(&rec.ID, &rec.Name, &rec.Revision)
	if err != nil {
		return CaptainRecord{}, err
	}

	rec.TableIDs, err = readColumn(ctx, s.db, `
		SELECT unit_id FROM captain_tables
		WHERE captain_id = ?
		ORDER BY position ASC, unit_id COLLATE BINARY ASC
	`, id)
	if err != nil {
		return CaptainRecord{}, fmt.Errorf("read captain %s: %w", id, err)
	}

	rec.FiringSequence, err = readColumn(ctx, s.db, `
		SELECT unit_id FROM firing_sequences
		WHERE captain_id = ?
		ORDER BY position ASC
	`, id)
	if err != nil {
		return CaptainRecord{}, fmt.Errorf("read captain %s: %w", id, err)
	}

	return rec, nil
}

// ListCaptains returns every captain ordered by id.
func (s *Store) ListCaptains(ctx context.Context) ([]CaptainRecord, error) {
	ids, err := readColumn(ctx, s.db, `SELECT id FROM captains ORDER BY id COLLATE BINARY ASC`)
	if err != nil {
		return nil, fmt.Errorf("list captains: %w", err)
	}

	out := make([]CaptainRecord, 0, len(ids))
	for _, id := range ids {
		rec, err := s.ReadCaptain(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("list captains: %w", err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// ReadCoursePlans returns the course plans in display order.
// Returns an empty slice (not nil) if none are stored.
func (s *Store) ReadCoursePlans(ctx context.Context) ([]ir.CoursePlan, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, label, target_duration_min, tolerance_min
		FROM course_plans
		ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query course plans: %w", err)
	}
	defer rows.Close()

	plans := []ir.CoursePlan{}
	for rows.Next() {
		var p ir.CoursePlan
		if err := rows.Scan(&p.Code, &p.Label, &p.TargetDurationMin, &p.ToleranceMin); err != nil {
			return nil, fmt.Errorf("scan course plan: %w", err)
		}
		plans = append(plans, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate course plans: %w", err)
	}
	return plans, nil
}

// ReadFloor assembles the whole stored floor.
func (s *Store) ReadFloor(ctx context.Context) (*ir.Floor, error) {
	units, err := s.ReadUnits(ctx)
	if err != nil {
		return nil, fmt.Errorf("read floor: %w", err)
	}
	records, err := s.ListCaptains(ctx)
	if err != nil {
		return nil, fmt.Errorf("read floor: %w", err)
	}
	plans, err := s.ReadCoursePlans(ctx)
	if err != nil {
		return nil, fmt.Errorf("read floor: %w", err)
	}

	f := &ir.Floor{Units: units, CoursePlans: plans}
	for _, rec := range records {
		f.Captains = append(f.Captains, rec.Captain)
	}
	return f, nil
}

// readColumn runs a single-column string query. Returns an empty slice (not nil).
func readColumn(ctx context.Context, q queryer, query string, args ...any) ([]string, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate: %w", err)
	}
	return out, nil
}
