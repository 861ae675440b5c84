// Package cli provides the command-line interface for logweave.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/internal/cli/commands"
	"github.com/ccollicutt/logweave/internal/logger"
)

// Execute runs the root command and returns the exit code.
func Execute() int {
	defer func() { _ = logger.Sync() }()

	if err := NewRootCommand().Execute(); err != nil {
		// Print error to stderr (SilenceErrors prevents Cobra from doing this)
		_, _ = fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2 // Configuration or runtime error
	}
	return commands.ExitCode
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "logweave",
		Short: "Merge, sort and filter log files from many sources",
		Long: `logweave reads log files written in different date formats and timezones
and weaves them into one stream.

It:
  - Recognizes common timestamp formats and joins multi-line entries
  - Drops entries that appear in more than one file
  - Sorts by date or by file, newest or oldest first
  - Colors and hides lines with prioritized substring filters
  - Charts activity over time

Filters can be shared with TextAnalysisTool.NET through .tat project files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Add subcommands
	rootCmd.AddCommand(commands.NewViewCommand())
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(commands.NewTimelineCommand())
	rootCmd.AddCommand(commands.NewFiltersCommand())
	rootCmd.AddCommand(commands.NewScenariosCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
