package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/engine"
	"github.com/roach88/expo/internal/ir"
)

// ApplyOptions holds flags for the apply command.
type ApplyOptions struct {
	*RootOptions
	SourceOptions
	Suggestion string // id or unique id prefix
}

// EditResult is the payload of the commands that rewrite a sequence.
type EditResult struct {
	CaptainID    string                   `json:"captain_id"`
	Before       []string                 `json:"before"`
	Sequence     []string                 `json:"sequence"`
	SequenceHash string                   `json:"sequence_hash"`
	Persisted    bool                     `json:"persisted"`
	Revision     int64                    `json:"revision,omitempty"`
	Applied      *engine.RankedSuggestion `json:"applied,omitempty"`
}

// NewApplyCommand creates the apply command.
func NewApplyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ApplyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "apply [floor] --suggestion <id>",
		Short: "Apply a suggestion to a captain's sequence",
		Long: `Re-analyze the captain's sequence, resolve the suggestion id (or a
unique prefix of it) and rewrite the sequence with that suggestion's fix.

With a floor file the new sequence is printed only. With --db the result is
written back to the database; the write fails if the captain changed since
it was read.

Examples:
  expo apply floor.yaml --captain cap-a --suggestion 3f9a
  expo apply --db expo.db --captain cap-a --suggestion 3f9a`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runApply(opts, args, cmd)
		},
	}

	opts.SourceOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.Suggestion, "suggestion", "", "suggestion id or unique id prefix (required)")
	_ = cmd.MarkFlagRequired("suggestion")

	return cmd
}

func runApply(opts *ApplyOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	ws, err := openWorkspace(ctx, opts.RootOptions, &opts.SourceOptions, args)
	if err != nil {
		return fail(formatter, err)
	}
	defer ws.close()

	before := ws.sequence()
	seq, applied, err := ws.eng.ApplyByID(ws.captain.ID, opts.Suggestion)
	if err != nil {
		return fail(formatter, err)
	}
	if err := ws.persist(ctx); err != nil {
		return fail(formatter, err)
	}

	result := newEditResult(ws, before, seq)
	result.Applied = &engine.RankedSuggestion{ID: ir.MustSuggestionID(applied), Suggestion: applied}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, formatter.Check(true, fmt.Sprintf("Applied %s suggestion %s",
		applied.Type, ir.ShortID(result.Applied.ID))))
	outputEditText(formatter, result)
	return nil
}

func newEditResult(ws *workspace, before, after ir.Sequence) EditResult {
	return EditResult{
		CaptainID:    ws.captain.ID,
		Before:       before,
		Sequence:     after,
		SequenceHash: ir.SequenceHash(after),
		Persisted:    ws.store != nil,
		Revision:     ws.revision,
	}
}

func outputEditText(f *OutputFormatter, result EditResult) {
	fmt.Fprintf(f.Writer, "  before: %s\n", strings.Join(result.Before, " "))
	fmt.Fprintf(f.Writer, "  after:  %s\n", strings.Join(result.Sequence, " "))
	if result.Persisted {
		fmt.Fprintf(f.Writer, "  %s\n", f.Dim(fmt.Sprintf("saved at revision %d", result.Revision)))
	}
}
