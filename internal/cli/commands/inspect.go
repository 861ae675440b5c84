package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/parser"
	"github.com/ccollicutt/logweave/pkg/pipeline"
)

// InspectOptions holds command-line options for the inspect command.
type InspectOptions struct {
	Output      string
	Timezone    int
	WriteConfig string
}

// FileReport is what inspect learned about one log file.
type FileReport struct {
	Path             string           `json:"path"`
	Format           string           `json:"format,omitempty"`
	Layout           string           `json:"layout,omitempty"`
	Sample           string           `json:"sample,omitempty"`
	Lines            int              `json:"lines"`
	LinesWithoutDate int              `json:"lines_without_date"`
	Sortedness       model.Sortedness `json:"sortedness"`
	NativeTimezone   bool             `json:"native_timezone"`
	Fallback         bool             `json:"fallback"`
	First            string           `json:"first,omitempty"`
	Last             string           `json:"last,omitempty"`
}

// NewInspectCommand creates the inspect command.
func NewInspectCommand() *cobra.Command {
	opts := &InspectOptions{}

	cmd := &cobra.Command{
		Use:   "inspect <log-file>...",
		Short: "Show how log files are read",
		Long: `Read log files the way view does and report, per file, the recognized
date format, how many entries were found, how many have no date, and whether
the file is written oldest-first or newest-first.

Optionally generates a starter config file with --write-config.

Recognized formats:
  - ISO 8601 with milliseconds and Z
  - US dates with a 12-hour clock
  - ETL traces
  - Bracketed datetimes
  - JavaScript Date strings
  - Year-first 12-hour, DD/MM/YYYY and DD-MM-YYYY dates

Example:
  logweave inspect /var/log/app.log
  logweave inspect --timezone -5 client.log server.log
  logweave inspect -w logweave.yaml logs/*.log`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVar(&opts.Timezone, "timezone", 0, "Whole-hour offset for dates without a zone")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string, opts *InspectOptions) error {
	if opts.Timezone < dates.MinOffset || opts.Timezone > dates.MaxOffset {
		return fmt.Errorf("--timezone must be between %d and %d", dates.MinOffset, dates.MaxOffset)
	}
	if opts.Output != "text" && opts.Output != "json" {
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}

	paths, err := parser.ExpandGlobs(args)
	if err != nil {
		return fmt.Errorf("expanding arguments: %w", err)
	}

	p := parser.New()
	reports := make([]FileReport, 0, len(paths))
	for _, path := range paths {
		f, err := pipeline.OpenFile(path, parser.WithTimezone(opts.Timezone))
		if err != nil {
			return err
		}
		reports = append(reports, inspectFile(path, p.Analyze(f), opts.Timezone))
	}

	if opts.WriteConfig != "" {
		if err := writeStarterConfig(cmd.ErrOrStderr(), paths, opts); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	if opts.Output == "json" {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(reports)
	}

	outputInspectText(out, reports)
	return nil
}

func inspectFile(path string, a *parser.FileAnalysis, tz int) FileReport {
	r := FileReport{
		Path:             path,
		Lines:            len(a.Lines),
		LinesWithoutDate: a.LinesWithoutDate,
		Sortedness:       a.Sortedness,
		NativeTimezone:   a.NativeTimezone,
		Fallback:         a.Fallback,
	}

	var first, last *model.Line
	for i := range a.Lines {
		if !a.Lines[i].HasTimestamp() {
			continue
		}
		if first == nil {
			first = &a.Lines[i]
		}
		last = &a.Lines[i]
	}
	if first == nil {
		return r
	}

	if rec, ok := dates.Default().Recognize(first.Text); ok {
		r.Format = rec.Name
		r.Layout = rec.Layout
	}
	r.Sample, _, _ = strings.Cut(first.Text, "\n")
	r.First = dates.FormatAt(first.Timestamp, tz)
	r.Last = dates.FormatAt(last.Timestamp, tz)
	return r
}

func outputInspectText(w io.Writer, reports []FileReport) {
	fmt.Fprintln(w, "=== Log File Inspection ===")
	for _, r := range reports {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "File: %s\n", r.Path)
		fmt.Fprintf(w, "Entries: %d (%d without date)\n", r.Lines, r.LinesWithoutDate)

		if r.Format == "" {
			fmt.Fprintln(w, "No date format recognized.")
			fmt.Fprintln(w, "Tip: sort by file to view this log; date sorting will omit every line.")
			continue
		}

		fmt.Fprintf(w, "Format: %s (layout %q)\n", r.Format, r.Layout)
		fmt.Fprintf(w, "Sample: %s\n", r.Sample)
		fmt.Fprintf(w, "Range: %s to %s\n", r.First, r.Last)
		fmt.Fprintf(w, "Order: %s\n", r.Sortedness)
		if r.NativeTimezone {
			fmt.Fprintln(w, "Timezone: taken from the log, --timezone has no effect")
		}
		if r.Fallback {
			fmt.Fprintln(w, "Note: too few lines start with a date; entries were kept as physical lines.")
		}
	}
}

// writeStarterConfig generates a starter config file listing the inspected files.
func writeStarterConfig(w io.Writer, paths []string, opts *InspectOptions) error {
	if _, err := os.Stat(opts.WriteConfig); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", opts.WriteConfig)
	}

	content := generateStarterConfig(paths, opts.Timezone)

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(opts.WriteConfig, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n", opts.WriteConfig)
	return nil
}

// generateStarterConfig creates a YAML config template.
func generateStarterConfig(paths []string, tz int) string {
	var files strings.Builder
	for _, p := range paths {
		abs := p
		if a, err := filepath.Abs(p); err == nil {
			abs = a
		}
		fmt.Fprintf(&files, "  - path: %q\n    timezone: %d\n", abs, tz)
	}

	return fmt.Sprintf(`# logweave configuration
# Generated by: logweave inspect

files:
%s  # Add more files or use globs:
  # - path: /var/log/myapp/**/*.log

filters:
  # Lines matching the first enabled filter take its color.
  # - pattern: error
  #   color: "#ff0000"
  # - pattern: heartbeat
  #   excluding: true

view:
  sort_by: date
  sort_direction: desc
  hide_unfiltered: false
  show_original_date: false
  display_timezone: 0

timeline:
  steps: 20
  height: 40
`, files.String())
}
