// Package engine implements the expo firing-order sequencing engine.
//
// Given the tables a captain owns, the engine keeps an explicit firing
// sequence, detects sequencing problems with independent heuristics, and
// rewrites the sequence when a caller applies one of the suggestions.
//
// ARCHITECTURE:
//
// Pure core:
// Analyzers, Rank, Apply, Move and Estimator are pure functions over an
// ir.Sequence and an ir.UnitIndex. They perform no I/O, start no goroutines
// and never block, so none of them takes a context.
//
// Flow:
// 1. Roster.Assign creates a captain's sequence (TableIDs order by default)
// 2. Analyze runs every Analyzer and concatenates the suggestions
// 3. Rank stable-sorts them by severity (high, medium, low)
// 4. Apply rewrites the sequence with the strategy for the suggestion type
// 5. Roster stores the result as one replacement
//
// CRITICAL PATTERNS:
//
// Permutation Invariant:
// Every sequence a captain holds is a permutation of its tables. Move and
// Apply check their output with CheckPermutation and return
// INVARIANT_VIOLATION rather than store a corrupt sequence.
//
// Sequential Splicing:
// Apply strategies remove and reinsert one id at a time, recomputing indices
// after each step. The resulting order is part of the contract.
//
// Host Serialization:
// Nothing here locks. A host accepting concurrent edits serializes writes
// per captain; the engine only guarantees that a single call leaves the
// invariant intact.
package engine
