package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ccollicutt/logweave/internal/logger"
	"github.com/ccollicutt/logweave/pkg/config"
	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/metrics"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/output"
	"github.com/ccollicutt/logweave/pkg/parser"
	"github.com/ccollicutt/logweave/pkg/pipeline"
	"github.com/ccollicutt/logweave/pkg/project"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// session is a loaded workspace ready to run.
type session struct {
	cfg       *config.Config
	workspace *pipeline.Workspace
	metrics   *metrics.Recorder
	logger    *zap.SugaredLogger

	// paths are the expanded log files in load order.
	paths []string
}

// openSession loads the config, expands the file globs, reads every file and
// installs the project and inline filters. zones overrides file timezones by
// base name.
func openSession(ctx context.Context, cfg *config.Config, zones map[string]int) (*session, error) {
	log := logger.Init(cfg.Logging)
	rec := metrics.NewRecorder()

	ws := pipeline.New(
		pipeline.WithParser(parser.New(parser.WithLogger(log), parser.WithWorkers(cfg.Workers))),
		pipeline.WithMetrics(rec),
		pipeline.WithLogger(log),
	)

	s := &session{cfg: cfg, workspace: ws, metrics: rec, logger: log}
	seen := make(map[string]struct{})

	for _, fc := range cfg.Files {
		paths, err := parser.ExpandGlobs([]string{fc.Path})
		if err != nil {
			return nil, fmt.Errorf("expanding %s: %w", fc.Path, err)
		}
		for _, path := range paths {
			if _, dup := seen[path]; dup {
				continue
			}
			seen[path] = struct{}{}

			tz := fc.Timezone
			if override, ok := zones[filepath.Base(path)]; ok {
				tz = override
			}

			f, err := pipeline.OpenFile(path,
				parser.WithTimezone(tz),
				parser.WithVisible(fc.IsVisible()),
				parser.WithColor(fc.Color),
			)
			if err != nil {
				return nil, err
			}
			ws.AddFile(f)
			s.paths = append(s.paths, path)
		}
	}

	filters, err := loadFilters(cfg)
	if err != nil {
		return nil, err
	}
	ws.SetFilters(filters)

	log.Debugw("session opened", "files", len(s.paths), "filters", len(filters))

	if err := ws.Analyze(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// loadFilters returns the project filters followed by the inline filters.
func loadFilters(cfg *config.Config) ([]model.Filter, error) {
	var filters []model.Filter
	if cfg.Project != "" {
		p, err := project.Load(cfg.Project)
		if err != nil {
			return nil, fmt.Errorf("loading project: %w", err)
		}
		filters = append(filters, p.Filters...)
	}
	for i := range cfg.Filters {
		filters = append(filters, cfg.Filters[i].ToFilter())
	}
	return filters, nil
}

// request builds the pipeline request from the validated view settings.
func request(cfg *config.Config) pipeline.Request {
	return pipeline.Request{
		SortBy:        cfg.View.SortMode(),
		Direction:     cfg.View.Direction(),
		HideUnmatched: cfg.View.HideUnfiltered,
		DateRange: &filter.DateRange{
			Start: cfg.View.StartTime(),
			End:   cfg.View.EndTime(),
		},
	}
}

// render runs the pipeline once and builds the report.
func (s *session) render(ctx context.Context, configPath string) (*output.Report, error) {
	start := time.Now()
	view, err := s.workspace.Run(ctx, request(s.cfg))
	if err != nil {
		return nil, fmt.Errorf("building view: %w", err)
	}

	report := output.NewReport(view, output.ReportOptions{
		ConfigFile:       configPath,
		SortBy:           s.cfg.View.SortMode(),
		Direction:        s.cfg.View.Direction(),
		DisplayTimezone:  s.cfg.View.DisplayTimezone,
		ShowOriginalDate: s.cfg.View.ShowOriginalDate,
		Steps:            s.cfg.Timeline.Steps,
		Height:           s.cfg.Timeline.Height,
		Duration:         time.Since(start),
	})

	if s.cfg.MetricsFile != "" {
		if err := s.metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
			return nil, err
		}
	}

	return report, nil
}

// parseZones parses repeated name=hours flags.
func parseZones(values []string) (map[string]int, error) {
	zones := make(map[string]int, len(values))
	for _, v := range values {
		name, hours, ok := strings.Cut(v, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid timezone %q (use name=hours)", v)
		}
		n, err := strconv.Atoi(strings.TrimPrefix(hours, "+"))
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", v, err)
		}
		if n < dates.MinOffset || n > dates.MaxOffset {
			return nil, fmt.Errorf("invalid timezone %q: offset must be between %d and %d", v, dates.MinOffset, dates.MaxOffset)
		}
		zones[name] = n
	}
	return zones, nil
}

func contextOf(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
