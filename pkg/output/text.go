package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ccollicutt/logweave/pkg/dates"
)

// histogramWidth is the width in cells of the longest histogram bar.
const histogramWidth = 40

// TextFormatter formats reports as human-readable, colored text.
type TextFormatter struct {
	opts FormatOptions
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	return &TextFormatter{opts: opts}
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text. Colors are dropped when w is not a terminal.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	switch {
	case f.opts.Quiet:
		return f.formatQuiet(report, w)
	case f.opts.TimelineOnly:
		if report.Timeline == nil {
			_, err := io.WriteString(w, "No dated lines to chart\n")
			return err
		}
		var b strings.Builder
		formatTimeline(&b, lipgloss.NewRenderer(w), report.Timeline, &report.Metadata)
		_, err := io.WriteString(w, b.String())
		return err
	}
	return f.formatFull(report, lipgloss.NewRenderer(w), w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "logweave: %d lines shown from %d files, %d duplicates dropped, %d dateless lines dropped\n",
		report.Summary.LinesShown,
		report.Summary.VisibleFiles,
		report.Summary.Duplicates,
		report.Summary.DatelessDropped)
	return err
}

func (f *TextFormatter) formatFull(report *Report, r *lipgloss.Renderer, w io.Writer) error {
	var b strings.Builder

	for i := range report.Lines {
		f.formatLine(&b, r, &report.Lines[i], report.Metadata.ShowOriginalDate)
	}

	b.WriteString("---\n")
	fmt.Fprintf(&b, "Summary: %d lines shown from %d of %d files, %d duplicates dropped\n",
		report.Summary.LinesShown,
		report.Summary.VisibleFiles,
		report.Summary.Files,
		report.Summary.Duplicates)

	if len(report.Filters) > 0 {
		b.WriteString("\nFilters:\n")
		for _, flt := range report.Filters {
			state := ""
			switch {
			case flt.Disabled:
				state = " (disabled)"
			case flt.Excluding:
				state = " (excluding)"
			}
			pattern := paint(r.NewStyle().Foreground(lipgloss.Color(flt.Color)), flt.Pattern)
			fmt.Fprintf(&b, "  %s%s: %d hits\n", pattern, state, flt.HitCount)
		}
	}

	if f.opts.Verbose {
		b.WriteString("\nFiles:\n")
		for _, file := range report.Files {
			fmt.Fprintf(&b, "  %s: %d lines, %d without date, %s, zone %s",
				paint(r.NewStyle().Foreground(lipgloss.Color(file.Color)), file.Name),
				file.Lines,
				file.LinesWithoutDate,
				file.Sortedness,
				dates.ZoneName(file.TimezoneOffset))
			if !file.Visible {
				b.WriteString(", hidden")
			}
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}

	warn := r.NewStyle().Foreground(lipgloss.Color("#ffb020"))
	if report.Summary.DatelessDropped > 0 {
		fmt.Fprintf(&b, "\n%s\n", paint(warn, fmt.Sprintf(
			"Warning: %d lines without a date were omitted from the date sort", report.Summary.DatelessDropped)))
	}
	if report.Summary.SuggestFileSort {
		fmt.Fprintf(&b, "%s\n", paint(warn, "Hint: no line of the visible file has a recognized date, sort by file to see it"))
	}

	if report.Timeline != nil {
		b.WriteString("\n")
		formatTimeline(&b, r, report.Timeline, &report.Metadata)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (f *TextFormatter) formatLine(b *strings.Builder, r *lipgloss.Renderer, l *Line, original bool) {
	tag := paint(r.NewStyle().Foreground(lipgloss.Color(l.FileColor)), "["+l.File+"]")

	text := l.Text
	if !original && l.Instant != "" {
		text = l.Instant + " " + strings.TrimLeft(l.TextWithoutTimestamp, " ")
	}
	if l.Color != "" {
		text = paint(r.NewStyle().Background(lipgloss.Color(l.Color)), text)
	}

	fmt.Fprintf(b, "%s %s\n", tag, text)
}

func formatTimeline(b *strings.Builder, r *lipgloss.Renderer, tl *Timeline, meta *Metadata) {
	fmt.Fprintf(b, "Activity (%s):\n", meta.DisplayTimezone)

	bar := r.NewStyle().Foreground(lipgloss.Color("#89cff0"))
	for _, iv := range tl.Activity.Intervals {
		width := 0
		if tl.Activity.MaxCount > 0 {
			width = iv.LineCount * histogramWidth / tl.Activity.MaxCount
		}
		if iv.LineCount > 0 && width == 0 {
			width = 1
		}
		fmt.Fprintf(b, "  %s |%s %d\n",
			dates.FormatAt(iv.Start, meta.DisplayOffset),
			paint(bar, strings.Repeat("#", width)),
			iv.LineCount)
	}
}

// paint styles each physical line separately so multi-line entries keep
// their own widths and tabs.
func paint(style lipgloss.Style, s string) string {
	if s == "" {
		return s
	}
	style = style.TabWidth(lipgloss.NoTabConversion)
	parts := strings.Split(s, "\n")
	for i, p := range parts {
		parts[i] = style.Render(p)
	}
	return strings.Join(parts, "\n")
}
