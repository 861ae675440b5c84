// Package filter applies a prioritized list of substring filters to log lines,
// counting hits and deciding which lines stay visible.
package filter

import (
	"time"

	"github.com/ccollicutt/logweave/pkg/model"
)

// DateRange keeps lines whose instant lies within [Start, End]. A zero bound
// is open.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// IsZero reports whether both bounds are open.
func (r *DateRange) IsZero() bool {
	return r == nil || (r.Start.IsZero() && r.End.IsZero())
}

// Contains reports whether l passes the range. Lines without a date always pass.
func (r *DateRange) Contains(l *model.Line) bool {
	if r.IsZero() || !l.HasTimestamp() {
		return true
	}
	if !r.Start.IsZero() && l.Timestamp.Before(r.Start) {
		return false
	}
	if !r.End.IsZero() && l.Timestamp.After(r.End) {
		return false
	}
	return true
}

// Result is the outcome of a filter pass.
type Result struct {
	// Lines holds the visible lines in input order.
	Lines []model.Line

	// Filters is a fresh copy of the filter list with hit counts for this pass.
	Filters []model.Filter
}

// Apply runs one filter pass over lines. Neither lines nor filters are
// modified; the returned lines carry the pass's Visible and MatchedFilter.
//
// Every filter matching a line counts a hit, disabled filters included. The
// first enabled matching filter decides the line: a normal filter shows it,
// an excluding filter hides it. Lines no enabled filter matches are shown
// unless hideUnmatched is set. When every filter is disabled all lines stay
// visible.
func Apply(lines []model.Line, filters []model.Filter, hideUnmatched bool, dateRange *DateRange) Result {
	if len(filters) == 0 {
		out := make([]model.Line, 0, len(lines))
		for _, l := range lines {
			if !dateRange.Contains(&l) {
				continue
			}
			l.Visible = true
			l.MatchedFilter = nil
			out = append(out, l)
		}
		return Result{Lines: out, Filters: []model.Filter{}}
	}

	counted := make([]model.Filter, len(filters))
	copy(counted, filters)
	for i := range counted {
		counted[i].HitCount = 0
	}

	anyEnabled := false
	for _, f := range counted {
		if !f.Disabled {
			anyEnabled = true
			break
		}
	}
	hide := hideUnmatched && anyEnabled

	// MatchedFilter points into a per-pass snapshot so later edits to
	// counted cannot leak into lines already returned.
	decided := make([]model.Filter, len(filters))
	copy(decided, filters)

	out := make([]model.Line, 0, len(lines))
	for _, l := range lines {
		if !dateRange.Contains(&l) {
			continue
		}

		l.Visible = !hide
		l.MatchedFilter = nil
		matched := false

		for i := range counted {
			if !counted[i].Matches(l.Text) {
				continue
			}
			counted[i].HitCount++
			if counted[i].Disabled || matched {
				continue
			}
			matched = true
			l.MatchedFilter = &decided[i]
			l.Visible = !counted[i].Excluding
		}

		if l.Visible {
			out = append(out, l)
		}
	}

	for i := range decided {
		decided[i].HitCount = counted[i].HitCount
	}

	return Result{Lines: out, Filters: counted}
}

// ColorFor returns the color of the first enabled filter matching text.
func ColorFor(text string, filters []model.Filter) (string, bool) {
	for i := range filters {
		if !filters[i].Disabled && filters[i].Matches(text) {
			return filters[i].Color, true
		}
	}
	return "", false
}
