package commands

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/config"
	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/project"
)

// FilterAddOptions holds command-line options for filters add.
type FilterAddOptions struct {
	Color       string
	Excluding   bool
	Disabled    bool
	Description string
}

// NewFiltersCommand creates the filters command and its subcommands.
func NewFiltersCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filters",
		Short: "Manage filter project files",
		Long: `Read and edit TextAnalysisTool.NET project files (.tat).

Filters are evaluated in list order; the first enabled filter matching a line
decides its color and visibility. Positions are 1-based.`,
	}

	cmd.AddCommand(newFiltersListCommand())
	cmd.AddCommand(newFiltersExportCommand())
	cmd.AddCommand(newFiltersAddCommand())
	cmd.AddCommand(newFiltersRemoveCommand())
	cmd.AddCommand(newFiltersMoveCommand())
	cmd.AddCommand(newFiltersToggleCommand("enable", false))
	cmd.AddCommand(newFiltersToggleCommand("disable", true))

	return cmd
}

func newFiltersListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list <project-file>",
		Short: "List the filters of a project file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			printFilters(cmd.OutOrStdout(), p)
			return nil
		},
	}
}

func newFiltersExportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export <config-file> <project-file>",
		Short: "Write the filters and view settings of a config to a project file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(contextOf(cmd.Context()), args[0])
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			filters, err := loadFilters(cfg)
			if err != nil {
				return err
			}

			p := &project.Project{
				Settings: project.Settings{
					Name:             strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0])),
					SortBy:           cfg.View.SortMode(),
					SortDirection:    cfg.View.Direction(),
					ShowOriginalDate: cfg.View.ShowOriginalDate,
					HideUnfiltered:   cfg.View.HideUnfiltered,
					DisplayTimezone:  cfg.View.DisplayTimezone,
				},
				Filters: filters,
			}
			if err := project.Save(args[1], p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d filters to %s\n", len(filters), args[1])
			return nil
		},
	}
}

func newFiltersAddCommand() *cobra.Command {
	opts := &FilterAddOptions{}

	cmd := &cobra.Command{
		Use:   "add <project-file> <pattern>",
		Short: "Append a filter, creating the project file if needed",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadOrCreateProject(args[0])
			if err != nil {
				return err
			}
			p.Filters = filter.Append(p.Filters, filter.New(args[1],
				filter.WithColor(opts.Color),
				filter.WithExcluding(opts.Excluding),
				filter.WithDisabled(opts.Disabled),
				filter.WithDescription(opts.Description),
			))
			return saveAndList(cmd.OutOrStdout(), args[0], p)
		},
	}

	cmd.Flags().StringVar(&opts.Color, "color", project.DefaultFilterColor, "Filter color (#rrggbb)")
	cmd.Flags().BoolVar(&opts.Excluding, "excluding", false, "Hide matching lines instead of showing them")
	cmd.Flags().BoolVar(&opts.Disabled, "disabled", false, "Add the filter disabled")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Free-text description")

	return cmd
}

func newFiltersRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <project-file> <position>",
		Short: "Remove the filter at a position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			i, err := position(args[1], len(p.Filters))
			if err != nil {
				return err
			}
			p.Filters = filter.Remove(p.Filters, p.Filters[i].ID)
			return saveAndList(cmd.OutOrStdout(), args[0], p)
		},
	}
}

func newFiltersMoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "move <project-file> <from> <to>",
		Short: "Move a filter to another priority",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			from, err := position(args[1], len(p.Filters))
			if err != nil {
				return err
			}
			to, err := position(args[2], len(p.Filters))
			if err != nil {
				return err
			}
			p.Filters = filter.Move(p.Filters, p.Filters[from].ID, to-from)
			return saveAndList(cmd.OutOrStdout(), args[0], p)
		},
	}
}

func newFiltersToggleCommand(name string, disabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   name + " <project-file> <pattern>",
		Short: strings.ToUpper(name[:1]) + name[1:] + " the first filter with this pattern",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := project.Load(args[0])
			if err != nil {
				return err
			}
			if !hasPattern(p.Filters, args[1]) {
				return fmt.Errorf("no filter with pattern %q", args[1])
			}
			p.Filters = filter.SetDisabled(p.Filters, args[1], disabled)
			return saveAndList(cmd.OutOrStdout(), args[0], p)
		},
	}
}

func hasPattern(filters []model.Filter, pattern string) bool {
	return slices.ContainsFunc(filters, func(f model.Filter) bool { return f.Pattern == pattern })
}

// position converts a 1-based position argument into an index.
func position(arg string, n int) (int, error) {
	pos, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid position %q: %w", arg, err)
	}
	if pos < 1 || pos > n {
		return 0, fmt.Errorf("position %d out of range (1-%d)", pos, n)
	}
	return pos - 1, nil
}

func loadOrCreateProject(path string) (*project.Project, error) {
	p, err := project.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &project.Project{Settings: project.DefaultSettings()}, nil
	}
	return p, err
}

func saveAndList(w io.Writer, path string, p *project.Project) error {
	if err := project.Save(path, p); err != nil {
		return err
	}
	printFilters(w, p)
	return nil
}

func printFilters(w io.Writer, p *project.Project) {
	if len(p.Filters) == 0 {
		fmt.Fprintln(w, "No filters.")
		return
	}
	for i, f := range p.Filters {
		var flags []string
		if f.Disabled {
			flags = append(flags, "disabled")
		}
		if f.Excluding {
			flags = append(flags, "excluding")
		}
		suffix := ""
		if len(flags) > 0 {
			suffix = " (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Fprintf(w, "%d. %q %s%s\n", i+1, f.Pattern, f.Color, suffix)
		if f.Description != "" {
			fmt.Fprintf(w, "   %s\n", f.Description)
		}
	}
}
