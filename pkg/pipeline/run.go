package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/metrics"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/parser"
	"github.com/ccollicutt/logweave/pkg/project"
	"github.com/ccollicutt/logweave/pkg/sorter"
	"github.com/ccollicutt/logweave/pkg/timeline"
)

// Request selects how a view is built.
type Request struct {
	SortBy        model.SortMode
	Direction     model.Direction
	HideUnmatched bool
	DateRange     *filter.DateRange
}

// RequestFromSettings builds a request from persisted project settings.
func RequestFromSettings(s project.Settings) Request {
	return Request{
		SortBy:        s.SortBy,
		Direction:     s.SortDirection,
		HideUnmatched: s.HideUnfiltered,
	}
}

// FileStats summarizes one file of the workspace.
type FileStats struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Color            string           `json:"color"`
	Visible          bool             `json:"visible"`
	TimezoneOffset   int              `json:"timezone_offset"`
	Lines            int              `json:"lines"`
	LinesWithoutDate int              `json:"lines_without_date"`
	Sortedness       model.Sortedness `json:"sortedness"`
	NativeTimezone   bool             `json:"native_timezone"`
	Fallback         bool             `json:"fallback"`
}

// View is the result of one pipeline run.
type View struct {
	// Lines are the visible lines in display order.
	Lines []model.Line

	// Filters carries the hit counts of this run.
	Filters []model.Filter

	// Files describes every file, hidden ones included.
	Files []FileStats

	// Duplicates is the number of lines merge dropped.
	Duplicates int

	// DatelessDropped is the number of lines a date sort dropped.
	DatelessDropped int

	// SuggestFileSort is set when a date sort emptied a lone dateless file.
	SuggestFileSort bool
}

// Run analyzes pending files, then merges, sorts and filters them.
func (w *Workspace) Run(ctx context.Context, req Request) (*View, error) {
	mode, err := model.ParseSortMode(string(req.SortBy))
	if err != nil {
		return nil, err
	}
	dir, err := model.ParseDirection(string(req.Direction))
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.analyzePending(ctx); err != nil {
		return nil, err
	}

	analyses := make([]*parser.FileAnalysis, 0, len(w.files))
	infos := make([]model.FileInfo, 0, len(w.files))
	view := &View{Files: make([]FileStats, 0, len(w.files))}
	visible := 0
	datedVisible := 0

	for _, f := range w.files {
		a := w.analyses[f.ID]
		analyses = append(analyses, a)
		infos = append(infos, a.Info())
		view.Files = append(view.Files, statsOf(a))
		if f.Visible {
			visible++
			datedVisible += a.LinesWithDate()
		}
	}

	start := time.Now()
	merged := parser.Merge(analyses)
	w.metrics.ObserveStage(metrics.StageMerge, time.Since(start))
	w.metrics.Duplicates(merged.Duplicates)
	view.Duplicates = merged.Duplicates

	start = time.Now()
	sorted := sorter.Sort(mode, dir, merged.Lines, infos, sorter.WithLogger(w.logger))
	w.metrics.ObserveStage(metrics.StageSort, time.Since(start))
	w.metrics.DatelessDropped(sorted.Dateless)
	view.DatelessDropped = sorted.Dateless

	start = time.Now()
	filtered := filter.Apply(sorted.Lines, w.filters, req.HideUnmatched, req.DateRange)
	w.metrics.ObserveStage(metrics.StageFilter, time.Since(start))
	for _, f := range filtered.Filters {
		w.metrics.FilterHits(f.Pattern, f.HitCount)
	}

	view.Lines = filtered.Lines
	view.Filters = filtered.Filters
	view.SuggestFileSort = mode == model.SortByDate && visible == 1 && datedVisible == 0

	w.logger.Debugw("pipeline run",
		"sort_by", mode,
		"direction", dir,
		"merged", len(merged.Lines),
		"duplicates", merged.Duplicates,
		"dateless_dropped", sorted.Dateless,
		"visible", len(view.Lines),
	)

	if view.SuggestFileSort {
		w.logger.Warnw("no dated lines in the only visible file, sort by file to see them",
			"file", firstVisible(w.files))
	}

	return view, nil
}

// Timeline spans the view from its earliest to its latest dated line.
// It is nil when no visible line has a date.
func (v *View) Timeline(height int) *timeline.Timeline {
	var lo, hi time.Time
	for i := range v.Lines {
		ts := v.Lines[i].Timestamp
		if ts.IsZero() {
			continue
		}
		if lo.IsZero() || ts.Before(lo) {
			lo = ts
		}
		if hi.IsZero() || ts.After(hi) {
			hi = ts
		}
	}
	if lo.IsZero() {
		return nil
	}
	return timeline.New(lo, hi, height)
}

// Activity buckets the view's dated lines into steps intervals.
func (v *View) Activity(height, steps int) timeline.Activity {
	tl := v.Timeline(height)
	if tl == nil {
		return timeline.Activity{Intervals: []model.ActivityInterval{}}
	}
	return tl.Bucket(v.Lines, steps)
}

// File returns the stats of the file with id.
func (v *View) File(id string) (FileStats, error) {
	for _, f := range v.Files {
		if f.ID == id {
			return f, nil
		}
	}
	return FileStats{}, fmt.Errorf("%w: %s", ErrFileNotFound, id)
}

func statsOf(a *parser.FileAnalysis) FileStats {
	return FileStats{
		ID:               a.File.ID,
		Name:             a.File.Name,
		Color:            a.File.Color,
		Visible:          a.File.Visible,
		TimezoneOffset:   a.File.TimezoneOffset,
		Lines:            len(a.Lines),
		LinesWithoutDate: a.LinesWithoutDate,
		Sortedness:       a.Sortedness,
		NativeTimezone:   a.NativeTimezone,
		Fallback:         a.Fallback,
	}
}

func firstVisible(files []*parser.File) string {
	for _, f := range files {
		if f.Visible {
			return f.Name
		}
	}
	return ""
}
