package engine

import "github.com/roach88/expo/internal/ir"

// Estimator defaults.
const (
	DefaultBaseServiceMinutes = 15
	DefaultFireSpacingMinutes = 3
	DefaultInterCourseMinutes = 45
)

// Estimator projects service times from sequence positions.
//
// Estimate is pure and total. It is monotonically non-decreasing in position
// whenever FireSpacingMinutes >= 0; config validation rejects negative spacing.
type Estimator struct {
	BaseServiceMinutes int
	FireSpacingMinutes int

	// InterCourseMinutes drives CourseStart, which only feeds the timeline
	// preview. No analyzer reads it.
	InterCourseMinutes int
}

// DefaultEstimator returns the 15 + 3n estimator with 45 minute course spacing.
func DefaultEstimator() Estimator {
	return Estimator{
		BaseServiceMinutes: DefaultBaseServiceMinutes,
		FireSpacingMinutes: DefaultFireSpacingMinutes,
		InterCourseMinutes: DefaultInterCourseMinutes,
	}
}

// Estimate returns the projected service minute for a 0-indexed position.
func (e Estimator) Estimate(position int) int {
	return e.BaseServiceMinutes + position*e.FireSpacingMinutes
}

// CourseStart returns the minute at which course courseIndex begins.
func (e Estimator) CourseStart(courseIndex int) int {
	return courseIndex * e.InterCourseMinutes
}

// SlotEstimate is one annotated position of a firing sequence.
type SlotEstimate struct {
	Position int    `json:"position"`
	UnitID   string `json:"unit_id"`
	Minutes  int    `json:"minutes"`
}

// Annotate estimates every slot of seq.
func (e Estimator) Annotate(seq ir.Sequence) []SlotEstimate {
	out := make([]SlotEstimate, len(seq))
	for i, id := range seq {
		out[i] = SlotEstimate{Position: i, UnitID: id, Minutes: e.Estimate(i)}
	}
	return out
}

// CourseSlot is one entry of the course timeline preview.
type CourseSlot struct {
	Code              string `json:"code"`
	Label             string `json:"label"`
	StartMinute       int    `json:"start_minute"`
	TargetDurationMin int    `json:"target_duration_min"`
	ToleranceMin      int    `json:"tolerance_min"`
}

// Timeline lays the course plans out at CourseStart offsets, in order.
// An empty plan list falls back to ir.DefaultCoursePlans.
func (e Estimator) Timeline(plans []ir.CoursePlan) []CourseSlot {
	if len(plans) == 0 {
		plans = ir.DefaultCoursePlans
	}
	out := make([]CourseSlot, len(plans))
	for i, p := range plans {
		out[i] = CourseSlot{
			Code:              p.Code,
			Label:             p.Label,
			StartMinute:       e.CourseStart(i),
			TargetDurationMin: p.TargetDurationMin,
			ToleranceMin:      p.ToleranceMin,
		}
	}
	return out
}
