package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/floorplan"
	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/store"
	"github.com/roach88/expo/internal/testutil"
)

// ErrNoSuggestion is the code recorded when an apply step asks for a
// suggestion the analyzers did not produce.
const ErrNoSuggestion = "NO_SUGGESTION"

var errNoSuggestion = errors.New("no matching suggestion")

// Harness is the test execution engine for one scenario.
type Harness struct {
	store    *store.Store
	engine   *engine.Engine
	captain  string
	revision int64
	logger   *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation. Captains
// that arrive without an id get predictable ones, so reruns produce
// byte-identical traces.
//
// Execution flow:
// 1. Load, normalize and validate the floor
// 2. Save it to a fresh in-memory store
// 3. Build an engine over the floor
// 4. Execute steps, writing each accepted rewrite back to the store
// 5. Evaluate assertions against the final state
//
// A returned error means the scenario could not run at all; step and
// assertion failures are reported in Result.Errors.
func Run(scenario *Scenario) (*Result, error) {
	return RunContext(context.Background(), scenario)
}

// RunContext is Run with a caller-supplied context for store access.
func RunContext(ctx context.Context, scenario *Scenario) (*Result, error) {
	floor, err := floorplan.Open(scenario.Floor, testutil.NewFixedIDGenerator("captain"))
	if err != nil {
		return nil, fmt.Errorf("failed to open floor: %w", err)
	}

	captainID, err := selectCaptain(floor, scenario.Captain)
	if err != nil {
		return nil, err
	}

	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if err := st.SaveFloor(ctx, floor); err != nil {
		return nil, fmt.Errorf("failed to save floor: %w", err)
	}
	rec, err := st.ReadCaptain(ctx, captainID)
	if err != nil {
		return nil, fmt.Errorf("failed to read captain %s: %w", captainID, err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests
	eng, err := engine.NewFromFloor(floor, engine.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build engine: %w", err)
	}

	h := &Harness{
		store:    st,
		engine:   eng,
		captain:  captainID,
		revision: rec.Revision,
		logger:   logger,
	}

	result := NewResult()
	result.Captain = captainID
	for i, step := range scenario.Steps {
		if err := h.executeStep(ctx, i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	if err := h.finish(result); err != nil {
		return nil, err
	}

	actx := &AssertionContext{
		Store:   st,
		Ctx:     ctx,
		Captain: captainID,
	}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}

	return result, nil
}

// selectCaptain returns want, or the only captain when want is empty.
func selectCaptain(f *ir.Floor, want string) (string, error) {
	if want != "" {
		if _, ok := f.Captain(want); !ok {
			return "", fmt.Errorf("captain %q is not on the floor", want)
		}
		return want, nil
	}
	if len(f.Captains) != 1 {
		return "", fmt.Errorf("floor has %d captains; scenario must name one", len(f.Captains))
	}
	return f.Captains[0].ID, nil
}

// executeStep runs one step and records its trace event.
//
// Engine errors are expected outcomes and are checked against ExpectError.
// The returned error is reserved for infrastructure failures.
func (h *Harness) executeStep(ctx context.Context, index int, step Step, result *Result) error {
	ev := TraceEvent{Op: step.Op, Args: stepArgs(step)}

	var stepErr error
	mutated := false

	switch step.Op {
	case OpAnalyze:
		ranked, err := h.engine.Suggestions(h.captain)
		stepErr = err
		if err == nil {
			ev.Suggestions = summarize(ranked)
		}
	case OpMove:
		_, stepErr = h.engine.Move(h.captain, step.Unit, ir.Direction(step.Direction))
		mutated = stepErr == nil
	case OpApply:
		stepErr = h.apply(step)
		mutated = stepErr == nil
	default:
		return fmt.Errorf("unknown op %q", step.Op)
	}

	if mutated {
		if err := h.persist(ctx); err != nil {
			return err
		}
	}

	seq, err := h.engine.Sequence(h.captain)
	if err != nil {
		return err
	}
	ev.Sequence = seq
	ev.Revision = h.revision
	ev.Error = errorCode(stepErr)

	switch {
	case step.ExpectError == "" && stepErr != nil:
		result.AddError(fmt.Sprintf("steps[%d] %s: unexpected error: %v", index, step.Op, stepErr))
	case step.ExpectError != "" && ev.Error != step.ExpectError:
		actual := ev.Error
		if actual == "" {
			actual = "success"
		}
		result.AddError(fmt.Sprintf("steps[%d] %s: expected %s, got %s", index, step.Op, step.ExpectError, actual))
	}

	h.logger.Info("step completed", "step", index, "op", step.Op, "error", ev.Error)
	result.AddTrace(ev)
	return nil
}

// apply resolves the step's suggestion and applies it.
func (h *Harness) apply(step Step) error {
	if len(step.Tables) > 0 {
		s := ir.Suggestion{
			Type:     ir.SuggestionType(step.Suggestion),
			Severity: ir.SeverityLow,
			TableIDs: step.Tables,
		}
		_, err := h.engine.Apply(h.captain, s)
		return err
	}

	ranked, err := h.engine.Suggestions(h.captain)
	if err != nil {
		return err
	}

	var pick *engine.RankedSuggestion
	if step.Index != nil {
		i := *step.Index
		if i < len(ranked) && (step.Suggestion == "" || string(ranked[i].Type) == step.Suggestion) {
			pick = &ranked[i]
		}
	} else {
		for i := range ranked {
			if string(ranked[i].Type) == step.Suggestion {
				pick = &ranked[i]
				break
			}
		}
	}
	if pick == nil {
		return errNoSuggestion
	}

	_, _, err = h.engine.ApplyByID(h.captain, pick.ID)
	return err
}

// persist writes the engine's sequence to the store under the revision the
// harness last saw.
func (h *Harness) persist(ctx context.Context) error {
	seq, err := h.engine.Sequence(h.captain)
	if err != nil {
		return err
	}
	rev, err := h.store.WriteSequence(ctx, h.captain, seq, h.revision)
	if err != nil {
		return fmt.Errorf("failed to persist sequence: %w", err)
	}
	h.revision = rev
	return nil
}

// finish records the final sequence and a fresh analysis.
func (h *Harness) finish(result *Result) error {
	seq, err := h.engine.Sequence(h.captain)
	if err != nil {
		return err
	}
	result.Sequence = seq
	result.Revision = h.revision

	ranked, err := h.engine.Suggestions(h.captain)
	if err != nil {
		return fmt.Errorf("failed to analyze final sequence: %w", err)
	}
	result.Suggestions = ranked
	return nil
}

func errorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, errNoSuggestion):
		return ErrNoSuggestion
	}
	if code := engine.CodeOf(err); code != "" {
		return string(code)
	}
	return "ERROR"
}

func stepArgs(step Step) map[string]any {
	args := map[string]any{}
	if step.Unit != "" {
		args["unit"] = step.Unit
	}
	if step.Direction != "" {
		args["direction"] = step.Direction
	}
	if step.Suggestion != "" {
		args["suggestion"] = step.Suggestion
	}
	if step.Index != nil {
		args["index"] = *step.Index
	}
	if len(step.Tables) > 0 {
		args["tables"] = step.Tables
	}
	if len(args) == 0 {
		return nil
	}
	return args
}
