// Package config provides workspace configuration loading and validation for logweave.
package config

import (
	"time"

	"github.com/ccollicutt/logweave/internal/logger"
	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/model"
)

// Config is the root configuration structure loaded from YAML.
type Config struct {
	Files       []FileConfig   `yaml:"files"`
	Project     string         `yaml:"project,omitempty"`
	Filters     []FilterConfig `yaml:"filters,omitempty"`
	View        ViewConfig     `yaml:"view"`
	Timeline    TimelineConfig `yaml:"timeline"`
	Workers     int            `yaml:"workers"`
	Logging     logger.Config  `yaml:"logging"`
	MetricsFile string         `yaml:"metrics_file,omitempty"`
}

// FileConfig selects one or more log files.
type FileConfig struct {
	// Path is a file path or glob; ** matches any number of directories.
	Path string `yaml:"path"`

	// Timezone is the whole-hour UTC offset of timestamps without a zone.
	Timezone int `yaml:"timezone,omitempty"`

	// Visible defaults to true when omitted.
	Visible *bool `yaml:"visible,omitempty"`

	// Color overrides the palette color.
	Color string `yaml:"color,omitempty"`
}

// IsVisible reports whether the files take part in merging.
func (f *FileConfig) IsVisible() bool {
	return f.Visible == nil || *f.Visible
}

// FilterConfig is an inline filter.
type FilterConfig struct {
	Pattern     string `yaml:"pattern"`
	Color       string `yaml:"color,omitempty"`
	Excluding   bool   `yaml:"excluding,omitempty"`
	Disabled    bool   `yaml:"disabled,omitempty"`
	Description string `yaml:"description,omitempty"`
}

// ToFilter converts the inline filter into a model filter with a fresh ID.
func (f *FilterConfig) ToFilter() model.Filter {
	return filter.New(f.Pattern,
		filter.WithColor(f.Color),
		filter.WithExcluding(f.Excluding),
		filter.WithDisabled(f.Disabled),
		filter.WithDescription(f.Description),
	)
}

// ViewConfig controls ordering, filtering and display.
type ViewConfig struct {
	SortBy           string `yaml:"sort_by"`
	SortDirection    string `yaml:"sort_direction"`
	HideUnfiltered   bool   `yaml:"hide_unfiltered"`
	ShowOriginalDate bool   `yaml:"show_original_date"`
	DisplayTimezone  int    `yaml:"display_timezone"`

	// Start and End bound the visible date range (RFC3339, optional).
	Start string `yaml:"start,omitempty"`
	End   string `yaml:"end,omitempty"`

	// parsed during validation
	start time.Time
	end   time.Time
}

// SortMode returns the validated sort mode.
func (v *ViewConfig) SortMode() model.SortMode {
	return model.SortMode(v.SortBy)
}

// Direction returns the validated sort direction.
func (v *ViewConfig) Direction() model.Direction {
	return model.Direction(v.SortDirection)
}

// StartTime returns the parsed start bound, zero when open.
func (v *ViewConfig) StartTime() time.Time {
	return v.start
}

// EndTime returns the parsed end bound, zero when open.
func (v *ViewConfig) EndTime() time.Time {
	return v.end
}

// TimelineConfig sizes the activity histogram.
type TimelineConfig struct {
	Steps  int `yaml:"steps"`
	Height int `yaml:"height"`
}
