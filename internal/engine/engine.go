package engine

import (
	"context"
	"log/slog"

	"github.com/roach88/expo/internal/ir"
)

// Engine bundles the roster, unit registry and estimator behind the call
// surface a host uses: read a sequence, list ranked suggestions, move a
// unit, apply a suggestion and estimate service times.
//
// Engine adds logging and registry checks on top of the pure functions in
// this package; it holds no locks and starts no goroutines. Like Roster it is
// NOT safe for concurrent use.
type Engine struct {
	roster    *Roster
	units     ir.UnitIndex
	estimator Estimator
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithEstimator replaces the default 15 + 3n estimator.
func WithEstimator(est Estimator) Option {
	return func(e *Engine) {
		e.estimator = est
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithClock stamps roster revisions from clock instead of a fresh one.
func WithClock(clock *Clock) Option {
	return func(e *Engine) {
		e.roster = NewRosterWithClock(clock)
	}
}

// New creates an Engine over the given unit registry with no captains.
// The registry is copied so later changes by the caller are not observed.
func New(units ir.UnitIndex, opts ...Option) *Engine {
	unitsCopy := make(ir.UnitIndex, len(units))
	for id, u := range units {
		unitsCopy[id] = u
	}

	e := &Engine{
		roster:    NewRoster(),
		units:     unitsCopy,
		estimator: DefaultEstimator(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromFloor creates an Engine for a floor and assigns every captain.
func NewFromFloor(f *ir.Floor, opts ...Option) (*Engine, error) {
	e := New(f.Index(), opts...)
	for _, c := range f.Captains {
		if err := e.Assign(c); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// Assign hands the captain's tables to the roster.
func (e *Engine) Assign(c ir.Captain) error {
	reconciled, err := e.roster.Assign(c)
	if err != nil {
		e.logger.Warn("captain assignment rejected", "captain", c.ID, "code", CodeOf(err), "error", err)
		return err
	}
	if reconciled {
		e.logger.Warn("persisted firing sequence reconciled with table assignment",
			"captain", c.ID, "tables", len(c.TableIDs), "persisted", len(c.FiringSequence))
	}
	e.logger.Debug("captain assigned", "captain", c.ID, "tables", len(c.TableIDs))
	return nil
}

// Roster exposes the underlying sequence store.
func (e *Engine) Roster() *Roster {
	return e.roster
}

// Units returns the unit registry.
func (e *Engine) Units() ir.UnitIndex {
	return e.units
}

// Estimator returns the configured estimator.
func (e *Engine) Estimator() Estimator {
	return e.estimator
}

// Sequence returns a copy of the captain's current sequence.
func (e *Engine) Sequence(captainID string) (ir.Sequence, error) {
	return e.roster.Get(captainID)
}

// Suggestions analyzes the captain's sequence and returns ranked suggestions.
// Every id in the sequence must be in the registry; the first one that is
// not yields UNKNOWN_UNIT.
func (e *Engine) Suggestions(captainID string) ([]RankedSuggestion, error) {
	seq, err := e.roster.Get(captainID)
	if err != nil {
		return nil, err
	}
	for _, id := range seq {
		if _, ok := e.units[id]; !ok {
			err := withCaptain(NewUnknownUnitError(id), captainID)
			e.logger.Warn("sequence references unregistered unit", "captain", captainID, "unit", id)
			return nil, err
		}
	}

	ranked := Suggest(seq, e.units)
	e.logger.Debug("sequence analyzed", "captain", captainID, "suggestions", len(ranked))
	return ranked, nil
}

// Move swaps a unit with its neighbour and stores the result.
func (e *Engine) Move(captainID, unitID string, dir ir.Direction) (ir.Sequence, error) {
	seq, err := e.roster.MoveUnit(captainID, unitID, dir)
	if err != nil {
		e.logger.Warn("move rejected", "captain", captainID, "unit", unitID,
			"direction", dir, "code", CodeOf(err))
		return seq, err
	}
	e.logger.Debug("unit moved", "captain", captainID, "unit", unitID, "direction", dir)
	return seq, nil
}

// Apply applies s to the captain's sequence and stores the result.
func (e *Engine) Apply(captainID string, s ir.Suggestion) (ir.Sequence, error) {
	seq, err := e.roster.ApplySuggestion(captainID, s, e.units)
	if err != nil {
		level := slog.LevelWarn
		if IsInvariantViolation(err) {
			level = slog.LevelError
		}
		e.logger.Log(context.Background(), level, "suggestion rejected", "captain", captainID,
			"type", s.Type, "code", CodeOf(err), "error", err)
		return seq, err
	}
	e.logger.Debug("suggestion applied", "captain", captainID, "type", s.Type, "tables", len(s.TableIDs))
	return seq, nil
}

// ApplyByID re-analyzes the captain's current sequence, resolves id (or a
// unique id prefix) against the fresh suggestions and applies the match.
// An id that no longer resolves, or a prefix shared by several suggestions,
// is STALE_SUGGESTION.
func (e *Engine) ApplyByID(captainID, id string) (ir.Sequence, ir.Suggestion, error) {
	ranked, err := e.Suggestions(captainID)
	if err != nil {
		return nil, ir.Suggestion{}, err
	}

	match, err := resolveSuggestion(ranked, id)
	if err != nil {
		seq, _ := e.roster.Get(captainID)
		err = withCaptain(err, captainID)
		e.logger.Warn("suggestion rejected", "captain", captainID, "suggestion", ir.ShortID(id), "code", CodeOf(err))
		return seq, ir.Suggestion{}, err
	}

	seq, err := e.Apply(captainID, match.Suggestion)
	return seq, match.Suggestion, err
}

// Estimates annotates every slot of the captain's sequence with a projected
// service minute.
func (e *Engine) Estimates(captainID string) ([]SlotEstimate, error) {
	seq, err := e.roster.Get(captainID)
	if err != nil {
		return nil, err
	}
	return e.estimator.Annotate(seq), nil
}

// Timeline lays out the course plans for the preview.
func (e *Engine) Timeline(plans []ir.CoursePlan) []CourseSlot {
	return e.estimator.Timeline(plans)
}
