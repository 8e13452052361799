// Package ir provides the canonical floor types for expo.
//
// This package contains type definitions and identity helpers only. All other
// internal packages import ir; ir imports nothing internal. This keeps the
// floor model the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - NO float types anywhere - proximity, minutes and counts are int
//   - A Sequence is a plain ordered list of unit ids; it never carries attributes
//   - All JSON tags use snake_case (YAML and CUE floor files share them)
//   - Suggestion identity is content-addressed (see hash.go), never random
package ir
