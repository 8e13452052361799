package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/harness"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // keep scenario files whose name contains this
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []harness.Outcome `json:"scenarios"`
	Passed    int               `json:"passed"`
	Failed    int               `json:"failed"`
	Total     int               `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test <scenarios>",
		Short: "Run harness scenarios",
		Long: `Run YAML scenarios against their floors, checking each scenario's
assertions and comparing its trace with the golden file in golden/ beside
it. Scenarios without a golden file are judged on assertions alone.

<scenarios> is a directory (searched recursively) or a single file.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  expo test ./scenarios
  expo test ./scenarios --filter vip
  expo test ./scenarios --update
  expo test ./scenarios --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTests(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "only run scenario files whose name contains this")

	return cmd
}

func runTests(opts *TestOptions, root string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	files, err := harness.Discover(root, opts.Filter)
	var notFound *harness.ScenarioNotFoundError
	if errors.As(err, &notFound) {
		return fail(formatter, &cliError{Code: ErrCodeNotFound, Exit: ExitCommandError, Message: notFound.Error()})
	}
	if err != nil {
		return fail(formatter, fmt.Errorf("failed to find scenarios: %w", err))
	}

	result := TestResult{
		Scenarios: make([]harness.Outcome, 0, len(files)),
		Total:     len(files),
	}
	if len(files) == 0 {
		if formatter.Format == "json" {
			return formatter.Success(result)
		}
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	for _, file := range files {
		formatter.VerboseLog("Running %s", file)
		out := harness.RunFile(ctx, file, opts.Update)
		result.Scenarios = append(result.Scenarios, out)
		if out.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
		if formatter.Format != "json" {
			outputOutcomeText(formatter, out)
		}
	}

	if formatter.Format == "json" {
		return outputTestJSON(formatter, result)
	}
	return outputTestText(formatter, result)
}

func outputOutcomeText(f *OutputFormatter, out harness.Outcome) {
	line := out.Name
	switch out.Golden {
	case harness.GoldenUpdated:
		line += " (golden updated)"
	case harness.GoldenMissing:
		line += f.Dim(" (no golden file)")
	case harness.GoldenMismatch:
		line += " (golden mismatch; run with --update to regenerate)"
	}
	fmt.Fprintln(f.Writer, f.Check(out.Pass, line))
	if !out.Pass {
		for _, e := range out.Errors {
			fmt.Fprintf(f.Writer, "  %s\n", e)
		}
	}
}

// outputTestJSON outputs the test result as JSON.
func outputTestJSON(f *OutputFormatter, result TestResult) error {
	if result.Failed == 0 {
		return f.Success(result)
	}

	msg := fmt.Sprintf("%d scenario(s) failed", result.Failed)
	if err := f.Failure(ErrCodeScenarioFailed, msg, result); err != nil {
		return err
	}
	// Test failures = exit code 1
	return NewExitError(ExitFailure, msg)
}

// outputTestText outputs the test result as text.
func outputTestText(f *OutputFormatter, result TestResult) error {
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "Test Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)

	if result.Failed > 0 {
		// Test failures = exit code 1
		return NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	fmt.Fprintln(f.Writer, f.Check(true, "All scenarios passed"))
	return nil
}
