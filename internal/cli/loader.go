package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/floorplan"
	"github.com/roach88/expo/internal/ir"
	"github.com/roach88/expo/internal/store"
)

// Error code constants for CLI-level problems. Floor files report the
// floorplan codes (E201-E213) unchanged.
const (
	ErrCodeGeneric          = "E001" // Generic/unknown error
	ErrCodeCaptain          = "E002" // Captain unknown, missing or ambiguous
	ErrCodeScenarioFailed   = "E003" // One or more harness scenarios failed
	ErrCodeDatabase         = "E004" // Database cannot be opened or read
	ErrCodeNotFound         = "E005" // Path not found
	ErrCodeRejected         = "E006" // Engine rejected the edit; details carry the engine code
	ErrCodeRevisionConflict = "E007" // Stored sequence changed during the command
	ErrCodeUsage            = "E008" // Invalid flag or argument combination
)

// SourceOptions are the flags shared by commands that act on one captain.
type SourceOptions struct {
	Database string
	Captain  string
}

func (s *SourceOptions) bind(cmd *cobra.Command) {
	cmd.Flags().StringVar(&s.Database, "db", "", "read and write the captain in this SQLite database instead of a floor file")
	cmd.Flags().StringVar(&s.Captain, "captain", "", "captain id (optional when the floor has one captain)")
}

// workspace is one captain loaded into a fresh engine, either from a floor
// file or from the store.
type workspace struct {
	eng      *engine.Engine
	captain  ir.Captain
	plans    []ir.CoursePlan
	store    *store.Store // nil when working from a floor file
	revision int64
	source   string
}

// openWorkspace loads the captain named by src from the floor file in args,
// or from the database when no floor is given. The database path falls back
// to the configured one.
func openWorkspace(ctx context.Context, opts *RootOptions, src *SourceOptions, args []string) (*workspace, error) {
	dbPath := src.Database
	if len(args) > 0 {
		if dbPath != "" {
			return nil, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: "give a floor file or --db, not both"}
		}
		return openFloorWorkspace(opts, args[0], src.Captain)
	}

	if dbPath == "" {
		dbPath = opts.config().Database.Path
	}
	if dbPath == "" {
		return nil, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: "a floor file or --db is required"}
	}
	return openStoreWorkspace(ctx, opts, dbPath, src.Captain)
}

func openFloorWorkspace(opts *RootOptions, path, captainID string) (*workspace, error) {
	floor, err := openFloor(opts, path)
	if err != nil {
		return nil, err
	}

	captain, err := selectCaptain(floor.Captains, captainID)
	if err != nil {
		return nil, err
	}

	eng := engine.New(floor.Index(),
		engine.WithEstimator(opts.config().Estimator.Engine()),
		engine.WithLogger(opts.logger()),
	)
	if err := eng.Assign(captain); err != nil {
		return nil, err
	}
	return &workspace{
		eng:     eng,
		captain: captain,
		plans:   floor.CoursePlans,
		source:  path,
	}, nil
}

func openStoreWorkspace(ctx context.Context, opts *RootOptions, dbPath, captainID string) (*workspace, error) {
	st, err := openStore(dbPath)
	if err != nil {
		return nil, err
	}

	ws, err := loadFromStore(ctx, opts, st, captainID)
	if err != nil {
		st.Close()
		return nil, err
	}
	ws.source = dbPath
	return ws, nil
}

func loadFromStore(ctx context.Context, opts *RootOptions, st *store.Store, captainID string) (*workspace, error) {
	records, err := st.ListCaptains(ctx)
	if err != nil {
		return nil, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to list captains", Err: err}
	}
	captains := make([]ir.Captain, len(records))
	for i, r := range records {
		captains[i] = r.Captain
	}
	captain, err := selectCaptain(captains, captainID)
	if err != nil {
		return nil, err
	}

	rec, err := st.ReadCaptain(ctx, captain.ID)
	if err != nil {
		return nil, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to read captain", Err: err}
	}
	units, err := st.ReadUnits(ctx)
	if err != nil {
		return nil, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to read units", Err: err}
	}
	plans, err := st.ReadCoursePlans(ctx)
	if err != nil {
		return nil, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to read course plans", Err: err}
	}

	eng := engine.New(ir.NewUnitIndex(units),
		engine.WithEstimator(opts.config().Estimator.Engine()),
		engine.WithLogger(opts.logger()),
	)
	if err := eng.Assign(rec.Captain); err != nil {
		return nil, err
	}
	return &workspace{
		eng:      eng,
		captain:  rec.Captain,
		plans:    plans,
		store:    st,
		revision: rec.Revision,
	}, nil
}

// persist writes the engine's sequence back under the revision the
// workspace was loaded at. Floor-file workspaces have nothing to persist.
func (w *workspace) persist(ctx context.Context) error {
	if w.store == nil {
		return nil
	}
	seq, err := w.eng.Sequence(w.captain.ID)
	if err != nil {
		return err
	}
	rev, err := w.store.WriteSequence(ctx, w.captain.ID, seq, w.revision)
	if err != nil {
		return err
	}
	w.revision = rev
	return nil
}

func (w *workspace) close() {
	if w.store != nil {
		w.store.Close()
	}
}

func (w *workspace) sequence() ir.Sequence {
	seq, _ := w.eng.Sequence(w.captain.ID)
	return seq
}

// openFloor loads, normalizes and validates a floor file.
func openFloor(opts *RootOptions, path string) (*ir.Floor, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &cliError{Code: ErrCodeNotFound, Exit: ExitCommandError, Message: fmt.Sprintf("floor file not found: %s", path)}
	}
	return floorplan.Open(path, opts.idGenerator())
}

// openStore opens an existing database. A missing file is an error rather
// than a fresh empty database.
func openStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &cliError{Code: ErrCodeNotFound, Exit: ExitCommandError, Message: fmt.Sprintf("database not found: %s", path)}
	}
	st, err := store.Open(path)
	if err != nil {
		return nil, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to open database", Err: err}
	}
	return st, nil
}

// selectCaptain returns the captain with id want, or the only captain when
// want is empty.
func selectCaptain(captains []ir.Captain, want string) (ir.Captain, error) {
	if want == "" {
		if len(captains) != 1 {
			return ir.Captain{}, &cliError{
				Code:    ErrCodeCaptain,
				Exit:    ExitCommandError,
				Message: fmt.Sprintf("%d captains found; choose one with --captain", len(captains)),
				Details: captainIDs(captains),
			}
		}
		return captains[0], nil
	}
	for _, c := range captains {
		if c.ID == want {
			return c, nil
		}
	}
	return ir.Captain{}, &cliError{
		Code:    ErrCodeCaptain,
		Exit:    ExitCommandError,
		Message: fmt.Sprintf("unknown captain %q", want),
		Details: captainIDs(captains),
	}
}

func captainIDs(captains []ir.Captain) []string {
	ids := make([]string, len(captains))
	for i, c := range captains {
		ids[i] = c.ID
	}
	return ids
}

// cliError is a failure with its output code and exit code already decided.
type cliError struct {
	Code    string
	Exit    int
	Message string
	Details any
	Err     error
}

func (e *cliError) Error() string {
	if e.Err != nil && e.Err.Error() != e.Message {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *cliError) Unwrap() error {
	return e.Err
}

// classify maps any error a command meets onto a cliError.
func classify(err error) *cliError {
	var ce *cliError
	if errors.As(err, &ce) {
		return ce
	}

	var loadErr *floorplan.LoadError
	if errors.As(err, &loadErr) {
		return &cliError{Code: loadErr.Code, Exit: ExitCommandError, Message: loadErr.Message, Err: err}
	}
	var invalid *floorplan.InvalidFloorError
	if errors.As(err, &invalid) {
		return &cliError{
			Code:    invalid.Errors[0].Code,
			Exit:    ExitFailure,
			Message: fmt.Sprintf("invalid floor: %d problem(s)", len(invalid.Errors)),
			Details: invalid.Errors,
			Err:     err,
		}
	}

	if code := engine.CodeOf(err); code != "" {
		return &cliError{
			Code:    ErrCodeRejected,
			Exit:    ExitFailure,
			Message: err.Error(),
			Details: map[string]string{"code": string(code)},
			Err:     err,
		}
	}

	switch {
	case errors.Is(err, store.ErrRevisionConflict):
		return &cliError{Code: ErrCodeRevisionConflict, Exit: ExitFailure, Message: "captain changed while the command ran; retry", Err: err}
	case errors.Is(err, store.ErrInvalidSequence), errors.Is(err, sql.ErrNoRows):
		return &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "stored floor is inconsistent", Err: err}
	}
	return &cliError{Code: ErrCodeGeneric, Exit: ExitFailure, Message: err.Error(), Err: err}
}

// fail reports err through the formatter and returns the matching ExitError.
func fail(f *OutputFormatter, err error) error {
	ce := classify(err)
	_ = f.Error(ce.Code, ce.Message, ce.Details)
	return WrapExitError(ce.Exit, ce.Code, ce)
}
