// Package metrics records pipeline counters on a private Prometheus registry.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Stage names used for the duration histogram.
const (
	StageParse  = "parse"
	StageMerge  = "merge"
	StageSort   = "sort"
	StageFilter = "filter"
)

// Recorder collects pipeline metrics. A nil *Recorder discards everything.
type Recorder struct {
	registry *prometheus.Registry

	linesParsed      *prometheus.CounterVec
	linesWithoutDate *prometheus.CounterVec
	duplicates       prometheus.Counter
	datelessDropped  prometheus.Counter
	filterHits       *prometheus.GaugeVec
	stageDuration    *prometheus.HistogramVec
}

// NewRecorder creates a recorder with its own registry.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		linesParsed: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logweave_lines_parsed_total",
			Help: "Log entries produced by segmentation, by file",
		}, []string{"file"}),
		linesWithoutDate: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "logweave_lines_without_date_total",
			Help: "Log entries with no recognized timestamp, by file",
		}, []string{"file"}),
		duplicates: factory.NewCounter(prometheus.CounterOpts{
			Name: "logweave_duplicates_dropped_total",
			Help: "Entries dropped by merge because their content hash was already seen",
		}),
		datelessDropped: factory.NewCounter(prometheus.CounterOpts{
			Name: "logweave_dateless_dropped_total",
			Help: "Entries dropped by a date sort because they have no timestamp",
		}),
		filterHits: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "logweave_filter_hits",
			Help: "Hit count of each filter on the last filter pass",
		}, []string{"filter"}),
		stageDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "logweave_stage_duration_seconds",
			Help:    "Duration of each pipeline stage",
			Buckets: prometheus.ExponentialBuckets(0.0005, 4, 8),
		}, []string{"stage"}),
	}
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

// FileParsed records the outcome of analyzing one file.
func (r *Recorder) FileParsed(file string, lines, withoutDate int) {
	if r == nil {
		return
	}
	r.linesParsed.WithLabelValues(file).Add(float64(lines))
	r.linesWithoutDate.WithLabelValues(file).Add(float64(withoutDate))
}

// Duplicates records lines dropped by merge.
func (r *Recorder) Duplicates(n int) {
	if r == nil {
		return
	}
	r.duplicates.Add(float64(n))
}

// DatelessDropped records lines dropped by a date sort.
func (r *Recorder) DatelessDropped(n int) {
	if r == nil {
		return
	}
	r.datelessDropped.Add(float64(n))
}

// FilterHits sets the hit count of a filter.
func (r *Recorder) FilterHits(pattern string, hits int) {
	if r == nil {
		return
	}
	r.filterHits.WithLabelValues(pattern).Set(float64(hits))
}

// ObserveStage records how long a stage took.
func (r *Recorder) ObserveStage(stage string, d time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

// Time starts a stage timer; call the returned func when the stage ends.
func (r *Recorder) Time(stage string) func() {
	start := time.Now()
	return func() {
		r.ObserveStage(stage, time.Since(start))
	}
}

// WriteTextfile writes every metric to path in the node_exporter textfile format.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
