package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/store"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Database string
}

// ImportResult is the import command's payload.
type ImportResult struct {
	Database    string                `json:"database"`
	Units       int                   `json:"units"`
	Captains    []string              `json:"captains"`
	CoursePlans int                   `json:"course_plans"`
	Drift       []store.SequenceDrift `json:"drift"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import <floor> --db <path>",
		Short: "Store a floor file in a SQLite database",
		Long: `Validate a floor file and upsert its units, captains and course plans
into the database, creating it if needed. Captains that already exist get
their tables and sequence replaced and their revision bumped.

A table that moves to another captain leaves its previous owner's stored
sequence out of step with that captain's tables. Such drift is listed after
the import; the next command that loads the captain repairs it.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (default: database.path from config)")

	return cmd
}

func runImport(opts *ImportOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)
	logger := opts.logger()

	dbPath := opts.Database
	if dbPath == "" {
		dbPath = opts.config().Database.Path
	}
	if dbPath == "" {
		return fail(formatter, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: "--db is required"})
	}

	floor, err := openFloor(opts.RootOptions, path)
	if err != nil {
		return fail(formatter, err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return fail(formatter, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to open database", Err: err})
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()

	if err := st.SaveFloor(ctx, floor); err != nil {
		return fail(formatter, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to save floor", Err: err})
	}
	logger.Info("floor imported", "db", dbPath, "units", len(floor.Units), "captains", len(floor.Captains))

	drift, err := st.Audit(ctx)
	if err != nil {
		return fail(formatter, &cliError{Code: ErrCodeDatabase, Exit: ExitCommandError, Message: "failed to audit sequences", Err: err})
	}
	for _, d := range drift {
		logger.Warn("stored sequence drifted", "captain", d.CaptainID, "missing", d.Missing, "extra", d.Extra)
	}

	result := ImportResult{
		Database:    dbPath,
		Units:       len(floor.Units),
		Captains:    captainIDs(floor.Captains),
		CoursePlans: len(floor.CoursePlans),
		Drift:       drift,
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, formatter.Check(true, fmt.Sprintf("Imported %s into %s", path, dbPath)))
	fmt.Fprintf(formatter.Writer, "  %d unit(s), %d course plan(s)\n", result.Units, result.CoursePlans)
	fmt.Fprintf(formatter.Writer, "  captains: %s\n", strings.Join(result.Captains, ", "))
	if len(drift) > 0 {
		fmt.Fprintln(formatter.Writer)
		fmt.Fprintf(formatter.Writer, "%s %d captain(s) with drifted sequences:\n", formatter.Severity("warn"), len(drift))
		for _, d := range drift {
			fmt.Fprintf(formatter.Writer, "  %s missing [%s] extra [%s]\n",
				d.CaptainID, strings.Join(d.Missing, " "), strings.Join(d.Extra, " "))
		}
	}
	return nil
}
