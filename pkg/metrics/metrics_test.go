package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_Counters(t *testing.T) {
	r := NewRecorder()

	r.FileParsed("a.log", 10, 2)
	r.FileParsed("a.log", 5, 1)
	r.Duplicates(3)
	r.DatelessDropped(4)
	r.FilterHits("error", 7)
	r.FilterHits("error", 2)

	assert.Equal(t, 15.0, testutil.ToFloat64(r.linesParsed.WithLabelValues("a.log")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.linesWithoutDate.WithLabelValues("a.log")))
	assert.Equal(t, 3.0, testutil.ToFloat64(r.duplicates))
	assert.Equal(t, 4.0, testutil.ToFloat64(r.datelessDropped))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.filterHits.WithLabelValues("error")))
}

func TestRecorder_Stages(t *testing.T) {
	r := NewRecorder()
	r.ObserveStage(StageSort, 2*time.Millisecond)
	r.Time(StageMerge)()

	assert.Equal(t, 2, testutil.CollectAndCount(r.stageDuration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.FileParsed("a", 1, 1)
		r.Duplicates(1)
		r.DatelessDropped(1)
		r.FilterHits("x", 1)
		r.Time(StageFilter)()
	})
	assert.Nil(t, r.Registry())
	assert.NoError(t, r.WriteTextfile(filepath.Join(t.TempDir(), "never.prom")))
}

func TestWriteTextfile(t *testing.T) {
	r := NewRecorder()
	r.Duplicates(2)

	path := filepath.Join(t.TempDir(), "logweave.prom")
	require.NoError(t, r.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "logweave_duplicates_dropped_total 2")
}
