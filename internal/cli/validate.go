package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/floorplan"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid       bool                        `json:"valid"`
	Units       int                         `json:"units"`
	Captains    int                         `json:"captains"`
	CoursePlans int                         `json:"course_plans"`
	Errors      []floorplan.ValidationError `json:"errors,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <floor>",
		Short: "Validate a floor file",
		Long: `Load a YAML or CUE floor file and check it against the rules the
engine relies on: unique ids, known tables, single ownership, firing
sequences that are permutations of each captain's tables.

Every problem is reported, not just the first.

Exit codes:
  0 - Floor is valid
  1 - Floor has rule violations
  2 - Floor cannot be read or decoded`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	floor, err := openFloor(opts, path)
	var invalid *floorplan.InvalidFloorError
	if errors.As(err, &invalid) {
		return outputValidationErrors(formatter, invalid.Errors)
	}
	if err != nil {
		return fail(formatter, err)
	}

	formatter.VerboseLog("Loaded %d unit(s), %d captain(s) from %s", len(floor.Units), len(floor.Captains), path)

	result := ValidationResult{
		Valid:       true,
		Units:       len(floor.Units),
		Captains:    len(floor.Captains),
		CoursePlans: len(floor.CoursePlans),
	}
	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintln(formatter.Writer, formatter.Check(true, "Floor valid"))
	fmt.Fprintf(formatter.Writer, "  %d unit(s), %d captain(s), %d course plan(s)\n",
		result.Units, result.Captains, result.CoursePlans)
	return nil
}

// outputValidationErrors outputs multiple validation errors.
func outputValidationErrors(formatter *OutputFormatter, errs []floorplan.ValidationError) error {
	// Validation failures = exit code 1 (test/validation failure)
	exitErr := NewExitError(ExitFailure, fmt.Sprintf("validation failed with %d error(s)", len(errs)))

	if formatter.Format == "json" {
		result := ValidationResult{Valid: false, Errors: errs}
		if err := formatter.Failure(errs[0].Code, errs[0].Message, result); err != nil {
			return err
		}
		return exitErr
	}

	fmt.Fprintln(formatter.Writer, formatter.Check(false, "Validation failed"))
	fmt.Fprintln(formatter.Writer)
	for _, err := range errs {
		fmt.Fprintf(formatter.Writer, "  %s %s: %s\n", err.Code, formatter.Dim(err.Field), err.Message)
	}

	return exitErr
}
