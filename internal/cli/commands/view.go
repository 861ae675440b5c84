package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/config"
	"github.com/ccollicutt/logweave/pkg/output"
)

// ViewOptions holds command-line options for the view command.
type ViewOptions struct {
	Output           string
	Sort             string
	Direction        string
	HideUnmatched    bool
	ShowOriginalDate bool
	DisplayTimezone  int
	Filters          []string
	Start            string
	End              string
	Timezones        []string
	MetricsFile      string
	Verbose          bool
	Quiet            bool
}

// NewViewCommand creates the view command.
func NewViewCommand() *cobra.Command {
	opts := &ViewOptions{}

	cmd := &cobra.Command{
		Use:   "view <config-file>",
		Short: "Merge, sort and filter the configured log files",
		Long: `Merge the log files listed in the configuration into one stream.

Lines are deduplicated by content, sorted by date or by file, and run through
the filter list. Flags override the matching configuration values.

Exit codes:
  0 - View rendered
  2 - Configuration or runtime error

Example:
  logweave view logweave.yaml
  logweave view --sort file --direction asc logweave.yaml
  logweave view --filter error --hide-unmatched --timezone-file app.log=-5 logweave.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runView(cmd, args, opts)
		},
	}

	addViewFlags(cmd, opts)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no lines")

	return cmd
}

// addViewFlags registers the flags shared by every command that builds a view.
func addViewFlags(cmd *cobra.Command, opts *ViewOptions) {
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "Sort by date or file")
	cmd.Flags().StringVar(&opts.Direction, "direction", "", "Sort direction (asc|desc)")
	cmd.Flags().BoolVar(&opts.HideUnmatched, "hide-unmatched", false, "Hide lines no filter matches")
	cmd.Flags().BoolVar(&opts.ShowOriginalDate, "show-original-date", false, "Print lines as written instead of normalized dates")
	cmd.Flags().IntVar(&opts.DisplayTimezone, "display-timezone", 0, "Whole-hour offset used to print dates")
	cmd.Flags().StringArrayVar(&opts.Filters, "filter", nil, "Add a filter (can be repeated)")
	cmd.Flags().StringVar(&opts.Start, "start", "", "Hide lines before this RFC3339 time")
	cmd.Flags().StringVar(&opts.End, "end", "", "Hide lines after this RFC3339 time")
	cmd.Flags().StringArrayVar(&opts.Timezones, "timezone-file", nil, "Read a file in a timezone, as name=hours (can be repeated)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
}

// applyViewFlags copies changed flags onto cfg and validates the result.
func applyViewFlags(cmd *cobra.Command, cfg *config.Config, opts *ViewOptions) error {
	flags := cmd.Flags()
	if flags.Changed("sort") {
		cfg.View.SortBy = opts.Sort
	}
	if flags.Changed("direction") {
		cfg.View.SortDirection = opts.Direction
	}
	if flags.Changed("hide-unmatched") {
		cfg.View.HideUnfiltered = opts.HideUnmatched
	}
	if flags.Changed("show-original-date") {
		cfg.View.ShowOriginalDate = opts.ShowOriginalDate
	}
	if flags.Changed("display-timezone") {
		cfg.View.DisplayTimezone = opts.DisplayTimezone
	}
	if flags.Changed("start") {
		cfg.View.Start = opts.Start
	}
	if flags.Changed("end") {
		cfg.View.End = opts.End
	}
	if flags.Changed("metrics-file") {
		cfg.MetricsFile = opts.MetricsFile
	}
	for _, pattern := range opts.Filters {
		cfg.Filters = append(cfg.Filters, config.FilterConfig{Pattern: pattern})
	}

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	return nil
}

// loadSession loads the config, applies the view flags and opens the workspace.
func loadSession(cmd *cobra.Command, configPath string, opts *ViewOptions) (*session, error) {
	ctx := contextOf(cmd.Context())

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if err := applyViewFlags(cmd, cfg, opts); err != nil {
		return nil, err
	}

	zones, err := parseZones(opts.Timezones)
	if err != nil {
		return nil, err
	}

	return openSession(ctx, cfg, zones)
}

func runView(cmd *cobra.Command, args []string, opts *ViewOptions) error {
	configPath := args[0]
	ctx := contextOf(cmd.Context())

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	s, err := loadSession(cmd, configPath, opts)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	report, err := s.render(ctx, configPath)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	return nil
}
