package floorplan

import (
	"fmt"
	"strings"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

// Validation error codes (E201-E209)
const (
	ErrDuplicateID        = "E201" // unit, captain or course code defined twice
	ErrUnknownTable       = "E202" // captain lists a table that is not a unit
	ErrTableOwnership     = "E203" // table assigned twice (same or different captain)
	ErrBadFiringSequence  = "E204" // firing sequence is not a permutation of table_ids
	ErrCaptainMismatch    = "E205" // unit captain_id disagrees with ownership
	ErrInvalidComplexity  = "E206" // complexity not low, medium or high
	ErrEmptyID            = "E207" // empty unit id, captain id, table id or course code
	ErrNegativeProximity  = "E208" // proximity_to_kitchen below zero
	ErrNegativeCourseTime = "E209" // negative course duration or tolerance
)

// ValidationError represents one problem found in a floor.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// InvalidFloorError wraps every validation finding for a floor.
type InvalidFloorError struct {
	Errors []ValidationError
}

func (e *InvalidFloorError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ve := range e.Errors {
		msgs[i] = ve.Error()
	}
	return fmt.Sprintf("invalid floor: %d problem(s): %s", len(e.Errors), strings.Join(msgs, "; "))
}

// Validate checks a floor against the structural rules the engine relies on.
// Returns all errors found (does not fail-fast), ordered units first, then
// captains, then course plans.
func Validate(f *ir.Floor) []ValidationError {
	var errs []ValidationError
	errs = append(errs, validateUnits(f.Units)...)
	errs = append(errs, validateCaptains(f)...)
	errs = append(errs, validateCoursePlans(f.CoursePlans)...)
	return errs
}

func validateUnits(units []ir.Unit) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]int)

	for i, u := range units {
		field := fmt.Sprintf("units[%d]", i)

		if strings.TrimSpace(u.ID) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "unit id is required",
				Code:    ErrEmptyID,
			})
		} else if first, dup := seen[u.ID]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("unit %q already defined at units[%d]", u.ID, first),
				Code:    ErrDuplicateID,
			})
		} else {
			seen[u.ID] = i
		}

		if !u.Complexity.Valid() {
			errs = append(errs, ValidationError{
				Field:   field + ".complexity",
				Message: fmt.Sprintf("complexity %q must be low, medium or high", u.Complexity),
				Code:    ErrInvalidComplexity,
			})
		}

		if u.ProximityToKitchen < 0 {
			errs = append(errs, ValidationError{
				Field:   field + ".proximity_to_kitchen",
				Message: fmt.Sprintf("proximity %d must not be negative", u.ProximityToKitchen),
				Code:    ErrNegativeProximity,
			})
		}
	}
	return errs
}

func validateCaptains(f *ir.Floor) []ValidationError {
	var errs []ValidationError

	units := make(map[string]ir.Unit, len(f.Units))
	for _, u := range f.Units {
		if _, ok := units[u.ID]; !ok {
			units[u.ID] = u
		}
	}

	captainSeen := make(map[string]int)
	owner := make(map[string]string)

	for i, c := range f.Captains {
		field := fmt.Sprintf("captains[%d]", i)

		if strings.TrimSpace(c.ID) == "" {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: "captain id is required",
				Code:    ErrEmptyID,
			})
		} else if first, dup := captainSeen[c.ID]; dup {
			errs = append(errs, ValidationError{
				Field:   field + ".id",
				Message: fmt.Sprintf("captain %q already defined at captains[%d]", c.ID, first),
				Code:    ErrDuplicateID,
			})
		} else {
			captainSeen[c.ID] = i
		}

		for j, tableID := range c.TableIDs {
			tableField := fmt.Sprintf("%s.table_ids[%d]", field, j)

			if strings.TrimSpace(tableID) == "" {
				errs = append(errs, ValidationError{
					Field:   tableField,
					Message: "table id is required",
					Code:    ErrEmptyID,
				})
				continue
			}

			u, known := units[tableID]
			if !known {
				errs = append(errs, ValidationError{
					Field:   tableField,
					Message: fmt.Sprintf("table %q is not a defined unit", tableID),
					Code:    ErrUnknownTable,
				})
			}

			if prev, taken := owner[tableID]; taken {
				msg := fmt.Sprintf("table %q is already assigned to captain %q", tableID, prev)
				if prev == c.ID {
					msg = fmt.Sprintf("table %q is listed twice", tableID)
				}
				errs = append(errs, ValidationError{Field: tableField, Message: msg, Code: ErrTableOwnership})
				continue
			}
			owner[tableID] = c.ID

			if known && u.CaptainID != "" && u.CaptainID != c.ID {
				errs = append(errs, ValidationError{
					Field:   tableField,
					Message: fmt.Sprintf("unit %q names captain %q but is assigned to %q", tableID, u.CaptainID, c.ID),
					Code:    ErrCaptainMismatch,
				})
			}
		}

		if len(c.FiringSequence) > 0 && engine.CheckPermutation(c.TableIDs, c.FiringSequence) != nil {
			errs = append(errs, ValidationError{
				Field:   field + ".firing_sequence",
				Message: "firing_sequence must list every table in table_ids exactly once",
				Code:    ErrBadFiringSequence,
			})
		}
	}

	// Units claiming a captain that never lists them.
	for i, u := range f.Units {
		if u.CaptainID == "" || u.ID == "" {
			continue
		}
		if _, assigned := owner[u.ID]; !assigned {
			errs = append(errs, ValidationError{
				Field:   fmt.Sprintf("units[%d].captain_id", i),
				Message: fmt.Sprintf("unit %q names captain %q, which does not list it", u.ID, u.CaptainID),
				Code:    ErrCaptainMismatch,
			})
		}
	}

	return errs
}

func validateCoursePlans(plans []ir.CoursePlan) []ValidationError {
	var errs []ValidationError
	seen := make(map[string]bool)

	for i, p := range plans {
		field := fmt.Sprintf("course_plans[%d]", i)

		switch {
		case strings.TrimSpace(p.Code) == "":
			errs = append(errs, ValidationError{Field: field + ".code", Message: "course code is required", Code: ErrEmptyID})
		case seen[p.Code]:
			errs = append(errs, ValidationError{
				Field:   field + ".code",
				Message: fmt.Sprintf("course %q defined twice", p.Code),
				Code:    ErrDuplicateID,
			})
		default:
			seen[p.Code] = true
		}

		if p.TargetDurationMin < 0 || p.ToleranceMin < 0 {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: "durations must not be negative",
				Code:    ErrNegativeCourseTime,
			})
		}
	}
	return errs
}
