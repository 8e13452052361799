// Package harness runs sequencing scenarios end to end.
//
// A scenario names a floor file, a captain and a list of steps. The harness
// loads the floor through internal/floorplan, persists it to an in-memory
// store, drives internal/engine through the steps and writes every accepted
// rewrite back with a revision check. Each step leaves one TraceEvent; the
// trace is what golden files capture.
//
// # Scenario Format
//
//	name: vip_moves_forward
//	description: "A late VIP table is pulled toward the front"
//	floor: ../floors/dining.yaml
//	captain: cap-a
//	steps:
//	  - op: analyze
//	  - op: apply
//	    suggestion: timing
//	  - op: move
//	    unit: T1
//	    direction: up
//	    expect_error: OUT_OF_BOUNDS
//	assertions:
//	  - type: sequence_equals
//	    sequence: [T1, T6, T2, T3, T4, T5]
//	  - type: suggestion_count
//	    suggestion: bottleneck
//	    count: 1
//
// The floor path is resolved relative to the scenario file.
//
// # Steps
//
//   - analyze: rank the current suggestions and record them
//   - move: swap unit one slot in direction
//   - apply: apply the first ranked suggestion of a type, or the one at
//     index; with tables set, a suggestion is built from the given ids
//     instead, which is how stale suggestions are exercised
//
// A step that fails must name the error code in expect_error; a step that
// names one must fail with exactly that code.
//
// # Assertions
//
//   - sequence_equals: final in-memory sequence
//   - suggestion_count: number of suggestions of a type after the last step
//   - no_suggestion: shorthand for a zero count
//   - contiguous_block: tables occupy consecutive slots, optionally from start
//   - stored_sequence: the store agrees with memory, optionally at revision
//
// # Golden Files
//
// Golden files live in a golden/ directory next to the scenarios and hold the
// canonical JSON of the trace. Regenerate them with:
//
//	go test ./internal/harness -update
//	expo test --update testdata/scenarios
package harness
