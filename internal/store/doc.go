// Package store provides SQLite-backed durable storage for floors and
// firing sequences.
//
// The store holds:
//   - Units and their seats
//   - Captains with their assigned tables and a revision counter
//   - One firing sequence per captain (position-indexed rows)
//   - Course plans, in display order
//
// # Critical Patterns
//
// Permutation on write:
//   - WriteSequence and SaveFloor reject a firing sequence that is not a
//     permutation of the captain's tables (ErrInvalidSequence)
//   - Audit reports stored sequences that drifted from their tables
//
// Optimistic revisions:
//   - Every captain row carries a revision
//   - WriteSequence is compare-and-set against the revision the caller read;
//     a mismatch is ErrRevisionConflict and nothing is written
//
// Deterministic query results:
//   - Every multi-row query has an explicit ORDER BY (position, then id
//     COLLATE BINARY)
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
