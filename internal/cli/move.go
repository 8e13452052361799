package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/ir"
)

// MoveOptions holds flags for the move command.
type MoveOptions struct {
	*RootOptions
	SourceOptions
	Unit      string
	Direction string
}

// NewMoveCommand creates the move command.
func NewMoveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &MoveOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "move [floor] --unit <id> --direction up|down",
		Short: "Swap a table with its neighbour in the firing sequence",
		Long: `Move one table a single slot earlier (up) or later (down).

Moving the first table up or the last table down is rejected with
OUT_OF_BOUNDS and leaves the sequence unchanged. With --db the result is
written back to the database.

Examples:
  expo move floor.yaml --captain cap-a --unit T4 --direction up
  expo move --db expo.db --captain cap-a --unit T4 --direction down`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMove(opts, args, cmd)
		},
	}

	opts.SourceOptions.bind(cmd)
	cmd.Flags().StringVar(&opts.Unit, "unit", "", "table to move (required)")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "up or down (required)")
	_ = cmd.MarkFlagRequired("unit")
	_ = cmd.MarkFlagRequired("direction")

	return cmd
}

func runMove(opts *MoveOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)
	ctx := commandContext(cmd)

	dir, err := ir.ParseDirection(opts.Direction)
	if err != nil {
		return fail(formatter, &cliError{Code: ErrCodeUsage, Exit: ExitCommandError, Message: err.Error()})
	}

	ws, err := openWorkspace(ctx, opts.RootOptions, &opts.SourceOptions, args)
	if err != nil {
		return fail(formatter, err)
	}
	defer ws.close()

	before := ws.sequence()
	seq, err := ws.eng.Move(ws.captain.ID, opts.Unit, dir)
	if err != nil {
		return fail(formatter, err)
	}
	if err := ws.persist(ctx); err != nil {
		return fail(formatter, err)
	}

	result := newEditResult(ws, before, seq)
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	fmt.Fprintln(formatter.Writer, formatter.Check(true, fmt.Sprintf("Moved %s %s", opts.Unit, dir)))
	outputEditText(formatter, result)
	return nil
}
