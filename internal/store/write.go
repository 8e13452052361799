package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

var (
	// ErrRevisionConflict means the captain was written by someone else since
	// the caller read it. Re-read and retry.
	ErrRevisionConflict = errors.New("revision conflict")

	// ErrInvalidSequence means a firing sequence is not a permutation of the
	// captain's tables.
	ErrInvalidSequence = errors.New("firing sequence is not a permutation of the captain's tables")
)

// SaveFloor upserts every unit, captain and course plan of f in one
// transaction.
//
// Each captain's assigned tables are replaced by f's, and its firing sequence
// by FiringSequence (or TableIDs when FiringSequence is empty). A unit that
// moves to another captain is released from its previous owner first; that
// owner's stored sequence then drifts and is reported by Audit. Captains that
// already exist get their revision bumped. Course plans are replaced only
// when f defines some.
func (s *Store) SaveFloor(ctx context.Context, f *ir.Floor) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save floor: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	for _, u := range f.Units {
		if err := upsertUnit(ctx, tx, u); err != nil {
			return fmt.Errorf("save floor: %w", err)
		}
	}

	for _, c := range f.Captains {
		seq := c.FiringSequence
		if len(seq) == 0 {
			seq = c.TableIDs
		}
		if err := engine.CheckPermutation(c.TableIDs, seq); err != nil {
			return fmt.Errorf("save floor: captain %s: %w: %v", c.ID, ErrInvalidSequence, err)
		}
		if err := upsertCaptain(ctx, tx, c, seq); err != nil {
			return fmt.Errorf("save floor: captain %s: %w", c.ID, err)
		}
	}

	if len(f.CoursePlans) > 0 {
		if err := replaceCoursePlans(ctx, tx, f.CoursePlans); err != nil {
			return fmt.Errorf("save floor: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save floor: commit: %w", err)
	}
	return nil
}

func upsertUnit(ctx context.Context, tx *sql.Tx, u ir.Unit) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO units
		(id, captain_id, label, section, complexity, proximity_to_kitchen, accessibility_friendly)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			captain_id = excluded.captain_id,
			label = excluded.label,
			section = excluded.section,
			complexity = excluded.complexity,
			proximity_to_kitchen = excluded.proximity_to_kitchen,
			accessibility_friendly = excluded.accessibility_friendly
	`,
		u.ID,
		u.CaptainID,
		u.Label,
		u.Section,
		string(u.Complexity),
		u.ProximityToKitchen,
		u.AccessibilityFriendly,
	)
	if err != nil {
		return fmt.Errorf("unit %s: %w", u.ID, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM seats WHERE unit_id = ?`, u.ID); err != nil {
		return fmt.Errorf("unit %s: clear seats: %w", u.ID, err)
	}
	for _, seat := range u.Seats {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO seats (unit_id, number, vip_status)
			VALUES (?, ?, ?)
		`, u.ID, seat.Number, seat.VIPStatus)
		if err != nil {
			return fmt.Errorf("unit %s: seat %d: %w", u.ID, seat.Number, err)
		}
	}
	return nil
}

func upsertCaptain(ctx context.Context, tx *sql.Tx, c ir.Captain, seq []string) error {
	_, err := tx.ExecContext(ctx, `
		INSERT INTO captains (id, name, revision)
		VALUES (?, ?, 1)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			revision = captains.revision + 1
	`, c.ID, c.Name)
	if err != nil {
		return fmt.Errorf("upsert: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM captain_tables WHERE captain_id = ?`, c.ID); err != nil {
		return fmt.Errorf("clear tables: %w", err)
	}
	for pos, unitID := range c.TableIDs {
		// Release the unit from any previous owner. Losing a table is a
		// write to that owner's tables, so its revision moves too.
		_, err := tx.ExecContext(ctx, `
			UPDATE captains SET revision = revision + 1
			WHERE id IN (SELECT captain_id FROM captain_tables WHERE unit_id = ? AND captain_id <> ?)
		`, unitID, c.ID)
		if err != nil {
			return fmt.Errorf("release table %s: bump previous owner: %w", unitID, err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM captain_tables WHERE unit_id = ?`, unitID); err != nil {
			return fmt.Errorf("release table %s: %w", unitID, err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO captain_tables (captain_id, unit_id, position)
			VALUES (?, ?, ?)
		`, c.ID, unitID, pos)
		if err != nil {
			return fmt.Errorf("assign table %s: %w", unitID, err)
		}
	}

	return replaceSequence(ctx, tx, c.ID, seq)
}

func replaceSequence(ctx context.Context, tx *sql.Tx, captainID string, seq []string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM firing_sequences WHERE captain_id = ?`, captainID); err != nil {
		return fmt.Errorf("clear sequence: %w", err)
	}
	for pos, unitID := range seq {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO firing_sequences (captain_id, position, unit_id)
			VALUES (?, ?, ?)
		`, captainID, pos, unitID)
		if err != nil {
			return fmt.Errorf("sequence slot %d: %w", pos, err)
		}
	}
	return nil
}

func replaceCoursePlans(ctx context.Context, tx *sql.Tx, plans []ir.CoursePlan) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM course_plans`); err != nil {
		return fmt.Errorf("clear course plans: %w", err)
	}
	for pos, p := range plans {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO course_plans (position, code, label, target_duration_min, tolerance_min)
			VALUES (?, ?, ?, ?, ?)
		`, pos, p.Code, p.Label, p.TargetDurationMin, p.ToleranceMin)
		if err != nil {
			return fmt.Errorf("course plan %s: %w", p.Code, err)
		}
	}
	return nil
}

// WriteSequence replaces the captain's firing sequence if the stored revision
// still equals expectedRevision, and returns the new revision.
//
// Errors:
//   - sql.ErrNoRows (wrapped): unknown captain
//   - ErrRevisionConflict (wrapped): the revision moved on; the returned
//     revision is the current one
//   - ErrInvalidSequence (wrapped): seq is not a permutation of the
//     captain's tables
//
// Nothing is written on error.
func (s *Store) WriteSequence(ctx context.Context, captainID string, seq []string, expectedRevision int64) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("write sequence: begin tx: %w", err)
	}
	defer tx.Rollback()

	var current int64
	err = tx.QueryRowContext(ctx, `SELECT revision FROM captains WHERE id = ?`, captainID).Scan(&current)
	if err != nil {
		return 0, fmt.Errorf("write sequence: captain %s: %w", captainID, err)
	}
	if current != expectedRevision {
		return current, fmt.Errorf("write sequence: captain %s at revision %d, expected %d: %w",
			captainID, current, expectedRevision, ErrRevisionConflict)
	}

	tables, err := readColumn(ctx, tx, `
		SELECT unit_id FROM captain_tables
		WHERE captain_id = ?
		ORDER BY position ASC, unit_id COLLATE BINARY ASC
	`, captainID)
	if err != nil {
		return current, fmt.Errorf("write sequence: %w", err)
	}
	if err := engine.CheckPermutation(tables, seq); err != nil {
		return current, fmt.Errorf("write sequence: captain %s: %w: %v", captainID, ErrInvalidSequence, err)
	}

	if err := replaceSequence(ctx, tx, captainID, seq); err != nil {
		return current, fmt.Errorf("write sequence: %w", err)
	}

	// Compare-and-set; guards against a writer on another connection.
	result, err := tx.ExecContext(ctx, `
		UPDATE captains SET revision = revision + 1
		WHERE id = ? AND revision = ?
	`, captainID, expectedRevision)
	if err != nil {
		return current, fmt.Errorf("write sequence: bump revision: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return current, fmt.Errorf("write sequence: rows affected: %w", err)
	}
	if n == 0 {
		return current, fmt.Errorf("write sequence: captain %s: %w", captainID, ErrRevisionConflict)
	}

	if err := tx.Commit(); err != nil {
		return current, fmt.Errorf("write sequence: commit: %w", err)
	}
	return expectedRevision + 1, nil
}
