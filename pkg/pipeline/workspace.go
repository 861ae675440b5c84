// Package pipeline wires parsing, merging, sorting and filtering into one
// pass over a workspace of log files.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/metrics"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/parser"
)

var (
	// ErrFileNotFound is returned when a file ID is not part of the workspace.
	ErrFileNotFound = errors.New("file not found in workspace")

	// ErrInvalidTimezone is returned for offsets outside the supported range.
	ErrInvalidTimezone = errors.New("invalid timezone offset")
)

// Workspace owns the loaded files, their analyses and the filter list.
// It is safe for concurrent use.
type Workspace struct {
	mu sync.Mutex

	parser  *parser.Parser
	metrics *metrics.Recorder
	logger  *zap.SugaredLogger

	files    []*parser.File
	analyses map[string]*parser.FileAnalysis
	filters  []model.Filter
}

// Option configures a Workspace.
type Option func(*Workspace)

// WithParser sets the parser used to analyze files.
func WithParser(p *parser.Parser) Option {
	return func(w *Workspace) {
		w.parser = p
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(r *metrics.Recorder) Option {
	return func(w *Workspace) {
		w.metrics = r
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(w *Workspace) {
		w.logger = l
	}
}

// New creates an empty workspace.
func New(opts ...Option) *Workspace {
	w := &Workspace{
		logger:   zap.NewNop().Sugar(),
		analyses: make(map[string]*parser.FileAnalysis),
		filters:  []model.Filter{},
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.parser == nil {
		w.parser = parser.New(parser.WithLogger(w.logger))
	}
	return w
}

// OpenFile reads a log file from disk. The file is named after its base name.
func OpenFile(path string, opts ...parser.FileOption) (*parser.File, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided log path is expected
	if err != nil {
		return nil, fmt.Errorf("reading log file: %w", err)
	}
	return parser.NewFile(filepath.Base(path), string(data), opts...), nil
}

// AddFile adds a file. It is analyzed on the next Analyze or Run.
func (w *Workspace) AddFile(f *parser.File) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.files = append(w.files, f)
	w.logger.Debugw("file added", "file", f.Name, "id", f.ID)
}

// RemoveFile drops a file and its analysis.
func (w *Workspace) RemoveFile(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}
	w.files = slices.Delete(w.files, i, i+1)
	delete(w.analyses, id)
	return nil
}

// SetVisible toggles whether a file takes part in merging.
func (w *Workspace) SetVisible(id string, visible bool) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}

	// Files are shared with analyses, so visibility is changed on a copy.
	f := *w.files[i]
	f.Visible = visible
	w.files[i] = &f
	if a, ok := w.analyses[id]; ok {
		shifted := *a
		shifted.File = &f
		w.analyses[id] = &shifted
	}
	return nil
}

// SetTimezone re-reads one file's dates at a new whole-hour offset. Other
// files keep their analyses.
func (w *Workspace) SetTimezone(id string, hours int) error {
	if hours < dates.MinOffset || hours > dates.MaxOffset {
		return fmt.Errorf("%w: %d is outside [%d, %d]", ErrInvalidTimezone, hours, dates.MinOffset, dates.MaxOffset)
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	i := w.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrFileNotFound, id)
	}

	f, a := w.parser.WithTimezone(w.files[i], hours)
	w.files[i] = f
	w.analyses[id] = a
	w.metrics.FileParsed(f.Name, len(a.Lines), a.LinesWithoutDate)

	w.logger.Infow("file timezone changed", "file", f.Name, "zone", dates.ZoneName(hours))
	return nil
}

// SetFilters replaces the filter list. Position is priority.
func (w *Workspace) SetFilters(filters []model.Filter) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.filters = slices.Clone(filters)
	if w.filters == nil {
		w.filters = []model.Filter{}
	}
}

// Filters returns a copy of the filter list.
func (w *Workspace) Filters() []model.Filter {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.filters)
}

// Files returns the files in the order they were added.
func (w *Workspace) Files() []*parser.File {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.files)
}

// Analysis returns the current analysis of a file, if it has been analyzed.
func (w *Workspace) Analysis(id string) (*parser.FileAnalysis, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	a, ok := w.analyses[id]
	return a, ok
}

// Analyze parses every file that has no analysis yet.
func (w *Workspace) Analyze(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.analyzePending(ctx)
}

func (w *Workspace) analyzePending(ctx context.Context) error {
	var pending []*parser.File
	for _, f := range w.files {
		if _, ok := w.analyses[f.ID]; !ok {
			pending = append(pending, f)
		}
	}
	if len(pending) == 0 {
		return nil
	}

	done := w.metrics.Time(metrics.StageParse)
	results, err := w.parser.AnalyzeAll(ctx, pending)
	done()
	if err != nil {
		return fmt.Errorf("analyzing files: %w", err)
	}

	for _, a := range results {
		w.analyses[a.File.ID] = a
		w.metrics.FileParsed(a.File.Name, len(a.Lines), a.LinesWithoutDate)
	}

	w.logger.Debugw("files analyzed", "count", len(results))
	return nil
}

func (w *Workspace) indexOf(id string) int {
	return slices.IndexFunc(w.files, func(f *parser.File) bool { return f.ID == id })
}
