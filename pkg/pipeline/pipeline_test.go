package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/metrics"
	"github.com/ccollicutt/logweave/pkg/model"
	"github.com/ccollicutt/logweave/pkg/parser"
	"github.com/ccollicutt/logweave/pkg/project"
)

const nineLines = `Wed Sep 28 2022 12:59:57 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log
Wed Sep 28 2022 13:00:27 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log target
Wed Sep 28 2022 13:00:55 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log 1
Wed Sep 28 2022 13:00:55 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log 2
Wed Sep 28 2022 13:00:55 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log 3
Wed Sep 28 2022 13:00:55 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log TARGET 4
Wed Sep 28 2022 13:00:55 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log 5
Wed Sep 28 2022 13:00:57 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log
Wed Sep 28 2022 13:01:27 GMT-0700 (Pacific Daylight Time) <912> -- info -- ...log`

const ascLog = `2022-09-28T20:00:00.000Z a one
2022-09-28T20:01:00.000Z a two
2022-09-28T20:01:00.000Z a three`

const descLog = `2022-09-28T20:01:00.000Z b one
2022-09-28T20:01:00.000Z b two
2022-09-28T20:00:00.000Z b three`

const usLog = `9/12/2022 11:15:00 PM,INFO,first
9/12/2022 11:16:00 PM,INFO,second`

const noDateLog = `<7200> -- info -- first
<7201> -- info -- second`

func texts(lines []model.Line) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = strings.TrimSpace(l.TextWithoutTimestamp)
	}
	return out
}

func dateDesc() Request {
	return Request{SortBy: model.SortByDate, Direction: model.Desc}
}

func TestRun_TargetFilter(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("desktop.log", nineLines))
	w.SetFilters([]model.Filter{filter.New("target")})

	view, err := w.Run(context.Background(), Request{
		SortBy:        model.SortByDate,
		Direction:     model.Asc,
		HideUnmatched: true,
	})
	require.NoError(t, err)

	require.Len(t, view.Lines, 2)
	assert.Contains(t, view.Lines[0].Text, "...log target")
	assert.Contains(t, view.Lines[1].Text, "TARGET 4")
	require.Len(t, view.Filters, 1)
	assert.Equal(t, 2, view.Filters[0].HitCount)

	// The workspace filter list keeps its own counts.
	assert.Equal(t, 0, w.Filters()[0].HitCount)
}

func TestRun_TwoFileTies(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("a.log", ascLog))
	w.AddFile(parser.NewFile("b.log", descLog))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a three", "a two", "b one", "b two", "a one", "b three",
	}, texts(view.Lines))

	require.Len(t, view.Files, 2)
	assert.Equal(t, model.Ascending, view.Files[0].Sortedness)
	assert.Equal(t, model.Descending, view.Files[1].Sortedness)
	assert.True(t, view.Files[0].NativeTimezone)
}

func TestRun_ByFile(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("b.log", descLog))
	w.AddFile(parser.NewFile("a.log", ascLog))

	view, err := w.Run(context.Background(), Request{SortBy: model.SortByFile, Direction: model.Asc})
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a one", "a two", "a three", "b one", "b two", "b three",
	}, texts(view.Lines))
}

func TestRun_DuplicatesAcrossFiles(t *testing.T) {
	rec := metrics.NewRecorder()
	w := New(WithMetrics(rec))
	w.AddFile(parser.NewFile("a.log", ascLog))
	w.AddFile(parser.NewFile("a-copy.log", ascLog))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)

	assert.Len(t, view.Lines, 3)
	assert.Equal(t, 3, view.Duplicates)

	count, err := testutil.GatherAndCount(rec.Registry(), "logweave_stage_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestRun_Idempotent(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("a.log", ascLog))
	w.AddFile(parser.NewFile("b.log", descLog))

	first, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)
	second, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)

	assert.Equal(t, first.Lines, second.Lines)
}

func TestRun_SuggestFileSort(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("nodate.log", noDateLog))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)
	assert.Empty(t, view.Lines)
	assert.Equal(t, 2, view.DatelessDropped)
	assert.True(t, view.SuggestFileSort)

	view, err = w.Run(context.Background(), Request{SortBy: model.SortByFile, Direction: model.Desc})
	require.NoError(t, err)
	assert.Len(t, view.Lines, 2)
	assert.False(t, view.SuggestFileSort)
}

func TestRun_SuggestFileSortOnlyForLoneFile(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("nodate.log", noDateLog))
	w.AddFile(parser.NewFile("a.log", ascLog))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)
	assert.Len(t, view.Lines, 3)
	assert.False(t, view.SuggestFileSort)
}

func TestRun_DateRange(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("a.log", ascLog))

	view, err := w.Run(context.Background(), Request{
		SortBy:    model.SortByDate,
		Direction: model.Asc,
		DateRange: &filter.DateRange{Start: time.Date(2022, 9, 28, 20, 0, 30, 0, time.UTC)},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a two", "a three"}, texts(view.Lines))
}

func TestRun_InvalidRequest(t *testing.T) {
	w := New()

	_, err := w.Run(context.Background(), Request{SortBy: "size", Direction: model.Asc})
	assert.ErrorIs(t, err, model.ErrInvalidSortMode)

	_, err = w.Run(context.Background(), Request{SortBy: model.SortByDate, Direction: "up"})
	assert.ErrorIs(t, err, model.ErrInvalidDirection)
}

func TestRun_Canceled(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("a.log", ascLog))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := w.Run(ctx, dateDesc())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSetVisible(t *testing.T) {
	w := New()
	a := parser.NewFile("a.log", ascLog)
	b := parser.NewFile("b.log", descLog)
	w.AddFile(a)
	w.AddFile(b)

	require.NoError(t, w.Analyze(context.Background()))
	require.NoError(t, w.SetVisible(b.ID, false))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)
	assert.Equal(t, []string{"a three", "a two", "a one"}, texts(view.Lines))

	stats, err := view.File(b.ID)
	require.NoError(t, err)
	assert.False(t, stats.Visible)
	assert.True(t, b.Visible, "caller's file must not change")

	assert.ErrorIs(t, w.SetVisible("missing", true), ErrFileNotFound)
}

func TestSetTimezone(t *testing.T) {
	w := New()
	us := parser.NewFile("us.log", usLog)
	iso := parser.NewFile("a.log", ascLog)
	w.AddFile(us)
	w.AddFile(iso)

	require.NoError(t, w.Analyze(context.Background()))
	before, ok := w.Analysis(us.ID)
	require.True(t, ok)
	isoBefore, _ := w.Analysis(iso.ID)

	require.NoError(t, w.SetTimezone(us.ID, 10))

	after, ok := w.Analysis(us.ID)
	require.True(t, ok)
	require.Len(t, after.Lines, len(before.Lines))
	for i := range before.Lines {
		assert.Equal(t, before.Lines[i].Hash, after.Lines[i].Hash)
		assert.Equal(t, before.Lines[i].ID, after.Lines[i].ID)
		assert.Equal(t, -10*time.Hour, after.Lines[i].Timestamp.Sub(before.Lines[i].Timestamp))
	}

	isoAfter, _ := w.Analysis(iso.ID)
	assert.Same(t, isoBefore, isoAfter, "other files keep their analysis")

	assert.ErrorIs(t, w.SetTimezone(us.ID, 15), ErrInvalidTimezone)
	assert.ErrorIs(t, w.SetTimezone("missing", 1), ErrFileNotFound)
}

func TestRemoveFile(t *testing.T) {
	w := New()
	a := parser.NewFile("a.log", ascLog)
	w.AddFile(a)
	w.AddFile(parser.NewFile("b.log", descLog))

	require.NoError(t, w.RemoveFile(a.ID))
	assert.Len(t, w.Files(), 1)
	_, ok := w.Analysis(a.ID)
	assert.False(t, ok)

	assert.ErrorIs(t, w.RemoveFile(a.ID), ErrFileNotFound)
}

func TestView_Activity(t *testing.T) {
	w := New()
	w.AddFile(parser.NewFile("a.log", ascLog))
	w.AddFile(parser.NewFile("b.log", descLog))

	view, err := w.Run(context.Background(), dateDesc())
	require.NoError(t, err)

	act := view.Activity(40, 2)
	require.Len(t, act.Intervals, 2)
	assert.Equal(t, 2, act.Intervals[0].LineCount)
	assert.Equal(t, 4, act.Intervals[1].LineCount)
	assert.Equal(t, 4, act.MaxCount)

	empty := (&View{}).Activity(40, 2)
	assert.Empty(t, empty.Intervals)
	assert.Nil(t, (&View{}).Timeline(40))
}

func TestRequestFromSettings(t *testing.T) {
	s := project.DefaultSettings()
	s.HideUnfiltered = true

	req := RequestFromSettings(s)
	assert.Equal(t, model.SortByDate, req.SortBy)
	assert.Equal(t, model.Desc, req.Direction)
	assert.True(t, req.HideUnmatched)
	assert.Nil(t, req.DateRange)
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	require.NoError(t, os.WriteFile(path, []byte(ascLog), 0o600))

	f, err := OpenFile(path, parser.WithTimezone(3))
	require.NoError(t, err)
	assert.Equal(t, "app.log", f.Name)
	assert.Equal(t, 3, f.TimezoneOffset)
	assert.Equal(t, ascLog, f.Text)

	_, err = OpenFile(filepath.Join(t.TempDir(), "missing.log"))
	assert.Error(t, err)
}
