package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/config"
	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/parser"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <config-file>",
		Short: "Validate a configuration file",
		Long: `Validate a logweave configuration file without building a view.

Checks:
  - YAML syntax
  - Required fields
  - Sort settings, timezones and the date range
  - Timeline size
  - Project file parseability
  - Log file existence (warning only)`,
		Args: cobra.ExactArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	configPath := args[0]
	ctx := contextOf(cmd.Context())
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "Validating %s...\n", configPath)

	cfg, err := config.Load(ctx, configPath)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	filters, err := loadFilters(cfg)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(out, "\nConfiguration valid!\n")
	fmt.Fprintf(out, "  Files:    %d pattern(s)\n", len(cfg.Files))
	fmt.Fprintf(out, "  Filters:  %d\n", len(filters))
	fmt.Fprintf(out, "  Sort:     %s %s\n", cfg.View.SortMode(), cfg.View.Direction())
	fmt.Fprintf(out, "  Display:  %s\n", dates.ZoneName(cfg.View.DisplayTimezone))

	fmt.Fprintf(out, "\nFiles:\n")
	for _, fc := range cfg.Files {
		matches, err := parser.ExpandGlobs([]string{fc.Path})
		switch {
		case err != nil:
			fmt.Fprintf(out, "  - %s\n    Warning: %v\n", fc.Path, err)
		case len(matches) == 1 && matches[0] == fc.Path && !fileExists(fc.Path):
			fmt.Fprintf(out, "  - %s (%s)\n    Warning: no file matches\n", fc.Path, dates.ZoneName(fc.Timezone))
		default:
			fmt.Fprintf(out, "  - %s (%s): %d file(s)\n", fc.Path, dates.ZoneName(fc.Timezone), len(matches))
		}
	}

	return nil
}
