package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/model"
)

// Load reads and validates a configuration file.
// Relative file, project and metrics paths are resolved against the config file's directory.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := cfg.applyEnvironmentOverrides(); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}

	cfg.resolvePaths(filepath.Dir(path))

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Validate checks a configuration for errors and parses the view date range.
func Validate(cfg *Config) error {
	if len(cfg.Files) == 0 {
		return errors.New("files: at least one file is required")
	}

	for i := range cfg.Files {
		if err := validateFile(&cfg.Files[i]); err != nil {
			return fmt.Errorf("files[%d] (%s): %w", i, cfg.Files[i].Path, err)
		}
	}

	for i := range cfg.Filters {
		if cfg.Filters[i].Pattern == "" {
			return fmt.Errorf("filters[%d]: pattern is required", i)
		}
	}

	if err := validateView(&cfg.View); err != nil {
		return fmt.Errorf("view: %w", err)
	}

	if cfg.Timeline.Steps <= 0 {
		return fmt.Errorf("timeline: steps must be positive, got %d", cfg.Timeline.Steps)
	}
	if cfg.Timeline.Height <= 0 {
		return fmt.Errorf("timeline: height must be positive, got %d", cfg.Timeline.Height)
	}

	if cfg.Workers < 0 {
		return fmt.Errorf("workers: must not be negative, got %d", cfg.Workers)
	}

	if _, err := zapcore.ParseLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("logging: %w", err)
	}

	return nil
}

func validateFile(f *FileConfig) error {
	if f.Path == "" {
		return errors.New("path is required")
	}
	return validateOffset(f.Timezone)
}

func validateView(v *ViewConfig) error {
	mode, err := model.ParseSortMode(v.SortBy)
	if err != nil {
		return fmt.Errorf("sort_by: %w", err)
	}
	v.SortBy = string(mode)

	dir, err := model.ParseDirection(v.SortDirection)
	if err != nil {
		return fmt.Errorf("sort_direction: %w", err)
	}
	v.SortDirection = string(dir)

	if err := validateOffset(v.DisplayTimezone); err != nil {
		return fmt.Errorf("display_timezone: %w", err)
	}

	if v.start, err = parseBound(v.Start); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if v.end, err = parseBound(v.End); err != nil {
		return fmt.Errorf("end: %w", err)
	}

	if !v.start.IsZero() && !v.end.IsZero() && v.start.After(v.end) {
		return fmt.Errorf("start %s is after end %s", v.Start, v.End)
	}

	return nil
}

func validateOffset(hours int) error {
	if hours < dates.MinOffset || hours > dates.MaxOffset {
		return fmt.Errorf("timezone offset %d is outside [%d, %d]", hours, dates.MinOffset, dates.MaxOffset)
	}
	return nil
}

func parseBound(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid RFC3339 time: %w", err)
	}
	return t, nil
}

func (c *Config) resolvePaths(dir string) {
	for i := range c.Files {
		c.Files[i].Path = resolve(dir, c.Files[i].Path)
	}
	c.Project = resolve(dir, c.Project)
	c.MetricsFile = resolve(dir, c.MetricsFile)
}

func resolve(dir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dir, path)
}
