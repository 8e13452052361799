// Package floorplan loads floor files into ir.Floor values.
//
// A floor file lists units (tables with their seats and attributes), captains
// with their assigned tables and optional persisted firing order, and course
// plans. Two encodings are accepted:
//
//   - .yaml / .yml: decoded strictly; unknown fields are errors
//   - .cue: unified with the embedded #Floor schema and validated concrete
//
// Open runs the whole pipeline: Load, Normalize (captain ids, unit
// ownership) and Validate. Validation never stops at the first problem; all
// findings are returned together with stable E2xx codes.
package floorplan
