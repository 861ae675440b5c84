package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/scenario"
)

// ScenariosOptions holds command-line options for the scenarios command.
type ScenariosOptions struct {
	ViewOptions
}

// NewScenariosCommand creates the scenarios command.
func NewScenariosCommand() *cobra.Command {
	opts := &ScenariosOptions{}

	cmd := &cobra.Command{
		Use:   "scenarios <config-file> [query]",
		Short: "List or search test scenarios found in the logs",
		Long: `List the scenarios marked in the merged view with [Scenario]<name>.

Each scenario is reported once, at the first line that mentions it. A query
fuzzy-matches scenario names, best match first.

Example:
  logweave scenarios logweave.yaml
  logweave scenarios logweave.yaml login`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenarios(cmd, args, opts)
		},
	}

	addViewFlags(cmd, &opts.ViewOptions)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")

	return cmd
}

func runScenarios(cmd *cobra.Command, args []string, opts *ScenariosOptions) error {
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	ctx := contextOf(cmd.Context())
	s, err := loadSession(cmd, args[0], &opts.ViewOptions)
	if err != nil {
		return err
	}
	defer func() { _ = s.logger.Sync() }()

	view, err := s.workspace.Run(ctx, request(s.cfg))
	if err != nil {
		return fmt.Errorf("building view: %w", err)
	}

	query := ""
	if len(args) > 1 {
		query = args[1]
	}
	steps := scenario.NewIndex(view.Lines).Search(query)
	if steps == nil {
		steps = []scenario.Step{}
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(steps)
	}

	if len(steps) == 0 {
		fmt.Fprintln(out, "No scenarios found.")
		return nil
	}
	for _, st := range steps {
		when := "no date"
		if !st.Timestamp.IsZero() {
			when = dates.FormatAt(st.Timestamp, s.cfg.View.DisplayTimezone)
		}
		fmt.Fprintf(out, "%s  %s", when, st.Name)
		if st.Step != "" {
			fmt.Fprintf(out, "  step %d: %s", st.StepNumber, st.Step)
		}
		fmt.Fprintln(out)
	}
	return nil
}
