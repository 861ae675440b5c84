package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/ccollicutt/logweave/internal/logger"
	"github.com/ccollicutt/logweave/pkg/model"
)

// Default values for configuration.
const (
	DefaultSteps         = 20
	DefaultHeight        = 40
	DefaultWorkers       = 4
	DefaultLogLevel      = "info"
	DefaultLogMaxSize    = 10
	DefaultLogMaxBackups = 3
	DefaultLogMaxAge     = 7
	DefaultSortBy        = string(model.SortByDate)
	DefaultSortDirection = string(model.Desc)
)

// Environment variable names.
const (
	EnvLogLevel        = "LOGWEAVE_LOG_LEVEL"
	EnvWorkers         = "LOGWEAVE_WORKERS"
	EnvDisplayTimezone = "LOGWEAVE_DISPLAY_TIMEZONE"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Files:   []FileConfig{},
		Filters: []FilterConfig{},
		View: ViewConfig{
			SortBy:        DefaultSortBy,
			SortDirection: DefaultSortDirection,
		},
		Timeline: TimelineConfig{
			Steps:  DefaultSteps,
			Height: DefaultHeight,
		},
		Workers: DefaultWorkers,
		Logging: logger.Config{
			Level:      DefaultLogLevel,
			MaxSize:    DefaultLogMaxSize,
			MaxBackups: DefaultLogMaxBackups,
			MaxAge:     DefaultLogMaxAge,
		},
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() error {
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Logging.Level = level
	}

	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvWorkers, v)
		}
		c.Workers = n
	}

	if v := os.Getenv(EnvDisplayTimezone); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %q is not an integer", EnvDisplayTimezone, v)
		}
		c.View.DisplayTimezone = n
	}

	return nil
}
