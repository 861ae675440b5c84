// Package timeline maps instants onto a fixed-height strip and buckets lines
// into activity intervals.
package timeline

import (
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/ccollicutt/logweave/pkg/model"
)

// RelativePosition returns the pixel of instant on a strip of height pixels
// spanning start to end. start may be later than end for a newest-first strip.
func RelativePosition(start, end, instant time.Time, height int) int {
	total := end.Sub(start)
	if total == 0 {
		return 0
	}
	rel := instant.Sub(start)
	return int(math.Floor(float64(rel) / float64(total) * float64(height)))
}

// InstantAt is the inverse of RelativePosition.
func InstantAt(start, end time.Time, px float64, height int) time.Time {
	if height == 0 {
		return start
	}
	total := end.Sub(start)
	return start.Add(time.Duration(math.Round(px / float64(height) * float64(total))))
}

// Marker is an instant together with its pixel.
type Marker struct {
	Instant  time.Time `json:"instant"`
	Position int       `json:"position"`
}

// Window is the part of the strip covered by the visible lines.
type Window struct {
	Start  Marker `json:"start"`
	End    Marker `json:"end"`
	Height int    `json:"height"`
}

// Activity is the bucketed line count of a timeline.
type Activity struct {
	MaxCount  int                      `json:"max_count"`
	Intervals []model.ActivityInterval `json:"intervals"`
}

// Highlight is a user placed marker on the timeline.
type Highlight struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	Color   string    `json:"color"`
	Instant time.Time `json:"instant"`
}

// Timeline is a strip of Height pixels from Start to End.
type Timeline struct {
	Start  time.Time
	End    time.Time
	Height int
}

// New creates a timeline.
func New(start, end time.Time, height int) *Timeline {
	return &Timeline{Start: start, End: end, Height: height}
}

// RelativePosition returns the pixel of instant.
func (t *Timeline) RelativePosition(instant time.Time) int {
	return RelativePosition(t.Start, t.End, instant, t.Height)
}

// InstantAt returns the instant under pixel px.
func (t *Timeline) InstantAt(px float64) time.Time {
	return InstantAt(t.Start, t.End, px, t.Height)
}

// Markers returns steps evenly spaced ticks, the first at Start.
func (t *Timeline) Markers(steps int) []Marker {
	if steps <= 0 {
		return nil
	}
	total := t.End.Sub(t.Start)
	markers := make([]Marker, steps)
	for i := range markers {
		instant := t.Start.Add(time.Duration(float64(total) * float64(i) / float64(steps)))
		markers[i] = Marker{Instant: instant, Position: t.RelativePosition(instant)}
	}
	return markers
}

// VisibleWindow returns the span between the first and last visible lines.
func (t *Timeline) VisibleWindow(first, last time.Time) Window {
	start := Marker{Instant: first, Position: t.RelativePosition(first)}
	end := Marker{Instant: last, Position: t.RelativePosition(last)}
	return Window{Start: start, End: end, Height: end.Position - start.Position}
}

// Bucket counts dated lines into steps intervals of equal duration, ordered
// from the earlier bound of the timeline. Instants outside the range land in
// the first or last interval.
func (t *Timeline) Bucket(lines []model.Line, steps int) Activity {
	if steps <= 0 {
		return Activity{Intervals: []model.ActivityInterval{}}
	}

	lo, hi := t.Start, t.End
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	duration := hi.Sub(lo) / time.Duration(steps)

	intervals := make([]model.ActivityInterval, steps)
	for i := range intervals {
		start := lo.Add(duration * time.Duration(i))
		end := start.Add(duration)
		if i == steps-1 {
			end = hi
		}
		intervals[i] = model.ActivityInterval{
			ID:               i,
			Start:            start,
			End:              end,
			RelativePosition: t.RelativePosition(start),
		}
	}

	for i := range lines {
		if !lines[i].HasTimestamp() {
			continue
		}
		idx := 0
		if duration > 0 {
			idx = int(lines[i].Timestamp.Sub(lo) / duration)
		}
		idx = max(0, min(idx, steps-1))
		intervals[idx].LineCount++
	}

	activity := Activity{Intervals: intervals}
	for _, iv := range intervals {
		activity.MaxCount = max(activity.MaxCount, iv.LineCount)
	}
	return activity
}

// Highlight converts a click at pixel px into a named marker.
func (t *Timeline) Highlight(px float64, name, color string) Highlight {
	return Highlight{
		ID:      uuid.NewString(),
		Name:    name,
		Color:   color,
		Instant: t.InstantAt(px),
	}
}
