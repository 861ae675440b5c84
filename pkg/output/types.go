// Package output provides formatting and output generation for merged log views.
package output

import (
	"time"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/pipeline"
	"github.com/ccollicutt/logweave/pkg/timeline"
)

// Report is the complete view output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Files describes every file of the workspace.
	Files []pipeline.FileStats `json:"files"`

	// Filters carries the hit counts of the run.
	Filters []model.Filter `json:"filters"`

	// Lines are the visible lines in display order.
	Lines []Line `json:"lines"`

	// Timeline is the activity histogram, nil when no line has a date.
	Timeline *Timeline `json:"timeline,omitempty"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	Files           int  `json:"files"`
	VisibleFiles    int  `json:"visible_files"`
	LinesShown      int  `json:"lines_shown"`
	Duplicates      int  `json:"duplicates"`
	DatelessDropped int  `json:"dateless_dropped"`
	SuggestFileSort bool `json:"suggest_file_sort"`
}

// Line is one rendered log line.
type Line struct {
	File      string     `json:"file"`
	FileColor string     `json:"file_color,omitempty"`
	Sequence  int        `json:"sequence"`
	Hash      string     `json:"hash"`
	Timestamp *time.Time `json:"timestamp,omitempty"`

	// Instant is the timestamp rendered at the display timezone.
	Instant string `json:"instant,omitempty"`

	Text                 string `json:"text"`
	TextWithoutTimestamp string `json:"text_without_timestamp"`

	// Filter and Color describe the filter that decided the line, if any.
	Filter string `json:"filter,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Timeline is the bucketed activity of the visible lines.
type Timeline struct {
	Start    time.Time         `json:"start"`
	End      time.Time         `json:"end"`
	Height   int               `json:"height"`
	Markers  []timeline.Marker `json:"markers"`
	Activity timeline.Activity `json:"activity"`
}

// Metadata provides context about the run.
type Metadata struct {
	ConfigFile       string          `json:"config_file,omitempty"`
	SortBy           model.SortMode  `json:"sort_by"`
	Direction        model.Direction `json:"direction"`
	DisplayTimezone  string          `json:"display_timezone"`
	DisplayOffset    int             `json:"display_offset"`
	ShowOriginalDate bool            `json:"show_original_date"`
	GeneratedAt      time.Time       `json:"generated_at"`
	Duration         time.Duration   `json:"duration"`
}

// ReportOptions controls how a view becomes a report.
type ReportOptions struct {
	ConfigFile       string
	SortBy           model.SortMode
	Direction        model.Direction
	DisplayTimezone  int
	ShowOriginalDate bool

	// Steps and Height size the timeline; zero steps skips it.
	Steps  int
	Height int

	Duration time.Duration
}

// NewReport creates a Report from a pipeline view.
func NewReport(view *pipeline.View, opts ReportOptions) *Report {
	report := &Report{
		Files:   view.Files,
		Filters: view.Filters,
		Lines:   make([]Line, 0, len(view.Lines)),
		Metadata: Metadata{
			ConfigFile:       opts.ConfigFile,
			SortBy:           opts.SortBy,
			Direction:        opts.Direction,
			DisplayTimezone:  dates.ZoneName(opts.DisplayTimezone),
			DisplayOffset:    opts.DisplayTimezone,
			ShowOriginalDate: opts.ShowOriginalDate,
			GeneratedAt:      time.Now().UTC(),
			Duration:         opts.Duration,
		},
		Summary: Summary{
			Files:           len(view.Files),
			LinesShown:      len(view.Lines),
			Duplicates:      view.Duplicates,
			DatelessDropped: view.DatelessDropped,
			SuggestFileSort: view.SuggestFileSort,
		},
	}

	for _, f := range view.Files {
		if f.Visible {
			report.Summary.VisibleFiles++
		}
	}

	for i := range view.Lines {
		report.Lines = append(report.Lines, newLine(&view.Lines[i], opts.DisplayTimezone))
	}

	if opts.Steps > 0 {
		if tl := view.Timeline(opts.Height); tl != nil {
			report.Timeline = &Timeline{
				Start:    tl.Start,
				End:      tl.End,
				Height:   tl.Height,
				Markers:  tl.Markers(opts.Steps),
				Activity: tl.Bucket(view.Lines, opts.Steps),
			}
		}
	}

	return report
}

func newLine(l *model.Line, displayTimezone int) Line {
	out := Line{
		File:                 l.FileName,
		FileColor:            l.FileColor,
		Sequence:             l.Sequence,
		Hash:                 l.Hash,
		Text:                 l.Text,
		TextWithoutTimestamp: l.TextWithoutTimestamp,
	}
	if l.HasTimestamp() {
		ts := l.Timestamp
		out.Timestamp = &ts
		out.Instant = dates.FormatAt(ts, displayTimezone)
	}
	if l.MatchedFilter != nil {
		out.Filter = l.MatchedFilter.Pattern
		out.Color = l.MatchedFilter.Color
	}
	return out
}
