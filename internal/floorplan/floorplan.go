package floorplan

import "github.com/roach88/expo/internal/ir"

// Open loads, normalizes and validates the floor file at path.
//
// Decoding problems are returned as *LoadError; rule violations as
// *InvalidFloorError carrying every finding.
func Open(path string, gen IDGenerator) (*ir.Floor, error) {
	f, err := Load(path)
	if err != nil {
		return nil, err
	}
	if err := Normalize(f, gen); err != nil {
		return nil, err
	}
	if errs := Validate(f); len(errs) > 0 {
		return nil, &InvalidFloorError{Errors: errs}
	}
	return f, nil
}
