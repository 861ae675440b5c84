package timeline

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logweave/pkg/model"
)

func hour(h int) time.Time {
	return time.Date(2021, 1, 1, h, 0, 0, 0, time.UTC)
}

func dated(hours ...int) []model.Line {
	out := make([]model.Line, len(hours))
	for i, h := range hours {
		out[i] = model.Line{Sequence: i + 1, Timestamp: hour(h)}
	}
	return out
}

func counts(a Activity) []int {
	out := make([]int, len(a.Intervals))
	for i, iv := range a.Intervals {
		out[i] = iv.LineCount
	}
	return out
}

func TestRelativePosition(t *testing.T) {
	start := hour(0)
	end := start.Add(24 * time.Hour)

	assert.Equal(t, 100/24, RelativePosition(start, end, hour(1), 100))
	assert.Equal(t, 0, RelativePosition(start, end, start, 100))
	assert.Equal(t, 100, RelativePosition(start, end, end, 100))
	assert.Equal(t, 0, RelativePosition(start, start, hour(5), 100))
}

func TestInstantAt(t *testing.T) {
	start := hour(0)
	end := start.Add(24 * time.Hour)

	got := InstantAt(start, end, 100.0/24.0, 100)
	assert.True(t, hour(1).Equal(got), "InstantAt() = %v, want %v", got, hour(1))
	assert.True(t, start.Equal(InstantAt(start, end, 5, 0)))
}

func TestBucket_Ascending(t *testing.T) {
	tl := New(hour(1), hour(6), 100)

	a := tl.Bucket(dated(1, 2, 3, 3, 3, 4, 5, 6), 6)
	require.Len(t, a.Intervals, 6)
	assert.Equal(t, []int{1, 1, 3, 1, 1, 1}, counts(a))
	assert.Equal(t, 3, a.MaxCount)
}

func TestBucket_Descending(t *testing.T) {
	tl := New(hour(6), hour(1), 100)

	a := tl.Bucket(dated(6, 5, 4, 3, 3, 3, 2, 1), 6)
	require.Len(t, a.Intervals, 6)
	assert.Equal(t, []int{1, 1, 3, 1, 1, 1}, counts(a))
	assert.Equal(t, 3, a.MaxCount)

	// intervals run from the earlier bound
	assert.True(t, hour(1).Equal(a.Intervals[0].Start))
	assert.True(t, hour(6).Equal(a.Intervals[5].End))
	assert.Equal(t, 100, a.Intervals[0].RelativePosition)
}

func TestBucket_IntervalsContiguous(t *testing.T) {
	tl := New(hour(0), hour(10), 50)
	a := tl.Bucket(nil, 4)

	require.Len(t, a.Intervals, 4)
	for i := 1; i < len(a.Intervals); i++ {
		assert.True(t, a.Intervals[i-1].End.Equal(a.Intervals[i].Start))
		assert.Equal(t, i, a.Intervals[i].ID)
	}
	assert.Equal(t, 0, a.MaxCount)
}

func TestBucket_IgnoresDatelessAndClamps(t *testing.T) {
	tl := New(hour(2), hour(4), 100)
	lines := append(dated(0, 3, 9), model.Line{Text: "no date"})

	a := tl.Bucket(lines, 2)
	assert.Equal(t, []int{1, 2}, counts(a))
}

func TestBucket_ZeroSteps(t *testing.T) {
	a := New(hour(0), hour(1), 10).Bucket(dated(0), 0)
	assert.Empty(t, a.Intervals)
	assert.Equal(t, 0, a.MaxCount)
}

func TestBucket_ZeroLengthRange(t *testing.T) {
	a := New(hour(3), hour(3), 10).Bucket(dated(3, 3), 3)
	assert.Equal(t, []int{2, 0, 0}, counts(a))
}

func TestMarkers(t *testing.T) {
	tl := New(hour(0), hour(10), 100)
	m := tl.Markers(5)

	require.Len(t, m, 5)
	assert.True(t, hour(0).Equal(m[0].Instant))
	assert.True(t, hour(8).Equal(m[4].Instant))
	assert.Equal(t, []int{0, 20, 40, 60, 80}, []int{m[0].Position, m[1].Position, m[2].Position, m[3].Position, m[4].Position})
	assert.Nil(t, tl.Markers(0))
}

func TestVisibleWindow(t *testing.T) {
	tl := New(hour(0), hour(10), 100)
	w := tl.VisibleWindow(hour(2), hour(5))

	assert.Equal(t, 20, w.Start.Position)
	assert.Equal(t, 50, w.End.Position)
	assert.Equal(t, 30, w.Height)
}

func TestHighlight(t *testing.T) {
	tl := New(hour(0), hour(10), 100)
	h := tl.Highlight(30, "deploy", "#ff0000")

	assert.NotEmpty(t, h.ID)
	assert.Equal(t, "deploy", h.Name)
	assert.Equal(t, "#ff0000", h.Color)
	assert.True(t, hour(3).Equal(h.Instant))
}
