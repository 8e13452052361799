package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/expo/internal/engine"
)

// TimelineOptions holds flags for the timeline command.
type TimelineOptions struct {
	*RootOptions
	SourceOptions
}

// TimelineResult is the timeline command's payload.
type TimelineResult struct {
	CaptainID string                `json:"captain_id"`
	Estimates []engine.SlotEstimate `json:"estimates"`
	Courses   []engine.CourseSlot   `json:"courses"`
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TimelineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "timeline [floor]",
		Short: "Show projected service minutes and course starts",
		Long: `Print the projected service minute of every slot in the captain's
firing sequence, followed by the course plan laid out at its start offsets.
Floors without course plans use appetizer, entree and dessert.

The estimator constants come from the config file (estimator section).`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(opts, args, cmd)
		},
	}

	opts.SourceOptions.bind(cmd)

	return cmd
}

func runTimeline(opts *TimelineOptions, args []string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	ws, err := openWorkspace(commandContext(cmd), opts.RootOptions, &opts.SourceOptions, args)
	if err != nil {
		return fail(formatter, err)
	}
	defer ws.close()

	est, err := ws.eng.Estimates(ws.captain.ID)
	if err != nil {
		return fail(formatter, err)
	}
	result := TimelineResult{
		CaptainID: ws.captain.ID,
		Estimates: est,
		Courses:   ws.eng.Timeline(ws.plans),
	}

	if formatter.Format == "json" {
		return formatter.Success(result)
	}

	fmt.Fprintf(formatter.Writer, "%s %s\n", formatter.Label("Captain"), captainName(ws.captain))
	for _, e := range result.Estimates {
		fmt.Fprintf(formatter.Writer, "  %3d  %-10s %4d min\n", e.Position+1, e.UnitID, e.Minutes)
	}
	fmt.Fprintln(formatter.Writer)
	fmt.Fprintln(formatter.Writer, formatter.Label("Courses"))
	for _, c := range result.Courses {
		fmt.Fprintf(formatter.Writer, "  +%-4d %-4s %-12s %s\n", c.StartMinute, c.Code, c.Label,
			formatter.Dim(fmt.Sprintf("%d min ±%d", c.TargetDurationMin, c.ToleranceMin)))
	}
	return nil
}
