package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

// AnalyzeOptions holds flags for the analyze command.
type AnalyzeOptions struct {
	*RootOptions
	SourceOptions
	FailOn string // lowest severity that fails the command
}

// AnalyzeResult is the analyze command's payload.
type AnalyzeResult struct {
	CaptainID    string                    `json:"captain_id"`
	Sequence     []string                  `json:"sequence"`
	SequenceHash string                    `json:"sequence_hash"`
	Revision     int64                     `json:"revision,omitempty"`
	Suggestions  []engine.RankedSuggestion `json:"suggestions"`
}

// NewAnalyzeCommand creates the analyze command.
func NewAnalyzeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &AnalyzeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "analyze [floor]",
		Short: "List ranked suggestions for a captain's sequence",
		Long: `Run every heuristic over a captain's firing sequence and print the
suggestions, most severe first. Each suggestion has an id; pass it (or a
unique prefix) to "expo apply".

Exit codes:
  0 - Analysis ran (and nothing reached --fail-on)
  1 - A suggestion at or above --fail-on was found
  2 - Command error

Examples:
  expo analyze floor.yaml --captain cap-a
  expo analyze --db expo.db --captain cap-a --fail-on high`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(opts, args, cmd)
		},
	}

	opts.SourceOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "exit 1 when a suggestion of this severity or higher exists (low|medium|high)")

	return cmd
}

func runAnalyze(opts *AnalyzeOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	var threshold ir.Severity
	if opts.FailOn != "" {
		sev, err := ir.ParseSeverity(opts.FailOn)
		if err != nil {
			return fail(formatter, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: err.Error()})
		}
		threshold = sev
	}

	ws, err := openWorkspace(commandContext(cmd), opts.RootOptions, &opts.SourceOptions, args)
	if err != nil {
		return fail(formatter, err)
	}
	defer ws.close()

	ranked, err := ws.eng.Suggestions(ws.captain.ID)
	if err != nil {
		return fail(formatter, err)
	}
	formatter.VerboseLog("Analyzed captain %s from %s", ws.captain.ID, ws.source)

	seq := ws.sequence()
	result := AnalyzeResult{
		CaptainID:    ws.captain.ID,
		Sequence:     seq,
		SequenceHash: ir.SequenceHash(seq),
		Revision:     ws.revision,
		Suggestions:  ranked,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(result); err != nil {
			return err
		}
	} else {
		outputAnalyzeText(formatter, ws.captain, result)
	}

	if threshold != "" {
		for _, r := range ranked {
			if r.Severity.Weight() >= threshold.Weight() {
				return NewExitError(ExitFailure, fmt.Sprintf("found %s suggestion %s", r.Severity, ir.ShortID(r.ID)))
			}
		}
	}
	return nil
}

func outputAnalyzeText(f *OutputFormatter, c ir.Captain, result AnalyzeResult) {
	fmt.Fprintf(f.Writer, "%s %s\n", f.Label("Captain"), captainName(c))
	fmt.Fprintf(f.Writer, "  sequence: %s\n\n", strings.Join(result.Sequence, " "))

	if len(result.Suggestions) == 0 {
		fmt.Fprintln(f.Writer, f.Check(true, "No sequencing issues"))
		return
	}

	fmt.Fprintf(f.Writer, "%d suggestion(s):\n\n", len(result.Suggestions))
	for _, r := range result.Suggestions {
		writeSuggestion(f, r)
	}
}

// writeSuggestion prints one suggestion as a short block.
func writeSuggestion(f *OutputFormatter, r engine.RankedSuggestion) {
	fmt.Fprintf(f.Writer, "  %s %s %s  %s",
		f.Dim(ir.ShortID(r.ID)), f.Severity(r.Severity), r.Type, strings.Join(r.TableIDs, ", "))
	if r.ImpactMinutes != nil {
		fmt.Fprintf(f.Writer, "  ~%d min", *r.ImpactMinutes)
	}
	fmt.Fprintln(f.Writer)
	fmt.Fprintf(f.Writer, "      %s\n", r.Description)
	fmt.Fprintf(f.Writer, "      -> %s\n\n", r.SuggestedAction)
}

func captainName(c ir.Captain) string {
	if c.Name == "" {
		return c.ID
	}
	return fmt.Sprintf("%s (%s)", c.ID, c.Name)
}
