package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/output"
)

// TimelineOptions holds command-line options for the timeline command.
type TimelineOptions struct {
	ViewOptions
	Steps  int
	Height int
}

// NewTimelineCommand creates the timeline command.
func NewTimelineCommand() *cobra.Command {
	opts := &TimelineOptions{}

	cmd := &cobra.Command{
		Use:   "timeline <config-file>",
		Short: "Show how log activity is spread over time",
		Long: `Bucket the visible, dated lines of the merged view into equal time
intervals and print one histogram bar per interval.

Example:
  logweave timeline logweave.yaml
  logweave timeline --steps 50 --filter error logweave.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTimeline(cmd, args, opts)
		},
	}

	addViewFlags(cmd, &opts.ViewOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.Steps, "steps", 0, "Number of intervals (default from config)")
	cmd.Flags().IntVar(&opts.Height, "height", 0, "Timeline height in pixels (default from config)")

	return cmd
}

func runTimeline(cmd *cobra.Command, args []string, opts *TimelineOptions) error {
	configPath := args[0]
	ctx := contextOf(cmd.Context())

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{TimelineOnly: true})
	if err != nil {
		return err
	}

	s, err := loadSession(cmd, configPath, &opts.ViewOptions)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	if cmd.Flags().Changed("steps") {
		if opts.Steps <= 0 {
			return fmt.Errorf("--steps must be positive, got %d", opts.Steps)
		}
		s.cfg.Timeline.Steps = opts.Steps
	}
	if cmd.Flags().Changed("height") {
		if opts.Height <= 0 {
			return fmt.Errorf("--height must be positive, got %d", opts.Height)
		}
		s.cfg.Timeline.Height = opts.Height
	}

	report, err := s.render(ctx, configPath)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}
	return nil
}
