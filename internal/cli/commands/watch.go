package commands

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/internal/logger"
	"github.com/ccollicutt/logweave/internal/watcher"
	"github.com/ccollicutt/logweave/pkg/output"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	ViewOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch <config-file>",
		Short: "Re-render the view whenever a log file or the config changes",
		Long: `Render the view once, then again each time one of the configured log
files or the configuration itself is written. Bursts of writes are collapsed
into one refresh. Stop with Ctrl-C.

Example:
  logweave watch logweave.yaml
  logweave watch --debounce 2s --quiet logweave.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	addViewFlags(cmd, &opts.ViewOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show per-file statistics")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no lines")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watcher.DefaultDebounce, "Quiet period before refreshing")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	configPath := args[0]

	ctx, stop := signal.NotifyContext(contextOf(cmd.Context()), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	formatter, err := output.NewFormatter(opts.Output, output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	})
	if err != nil {
		return err
	}

	refresh := func(ctx context.Context) ([]string, error) {
		s, err := loadSession(cmd, configPath, &opts.ViewOptions)
		if err != nil {
			return nil, err
		}
		defer func() { _ = s.logger.Sync() }()

		report, err := s.render(ctx, configPath)
		if err != nil {
			return nil, err
		}
		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			return nil, fmt.Errorf("formatting output: %w", err)
		}
		return s.paths, nil
	}

	paths, err := refresh(ctx)
	if err != nil {
		return err
	}

	w, err := watcher.New(append(paths, configPath),
		watcher.WithDebounce(opts.Debounce),
		watcher.WithLogger(logger.Get(ctx)),
	)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d files, press Ctrl-C to stop\n", len(paths))
	return w.Run(ctx, func(ctx context.Context) error {
		_, err := refresh(ctx)
		return err
	})
}
