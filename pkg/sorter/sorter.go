// Package sorter orders a merged line stream by date or by file.
package sorter

import (
	"cmp"
	"slices"

	"go.uber.org/zap"

	"github.com/ccollicutt/logweave/pkg/model"
)

// Result is the ordered stream.
type Result struct {
	// Lines is a new slice; the input is never reordered.
	Lines []model.Line

	// Dateless is the number of lines dropped by a date sort.
	Dateless int
}

type options struct {
	logger *zap.SugaredLogger
}

// Option configures a sort.
type Option func(*options)

// WithLogger sets the logger used to report dropped dateless lines.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(o *options) {
		o.logger = l
	}
}

// Sort orders lines by mode and direction. files supplies each file's name
// and on-disk sortedness; lines of unknown files are treated as unsorted.
//
// In date mode lines without a timestamp are dropped and counted. Lines with
// equal instants from different files keep their merge order. Lines with
// equal instants from one file follow the file's own order when the
// direction matches how the file was written, and the reverse order when it
// does not.
func Sort(mode model.SortMode, dir model.Direction, lines []model.Line, files []model.FileInfo, opts ...Option) Result {
	o := options{logger: zap.NewNop().Sugar()}
	for _, opt := range opts {
		opt(&o)
	}

	info := make(map[string]model.FileInfo, len(files))
	for _, f := range files {
		info[f.ID] = f
	}

	if mode == model.SortByFile {
		return Result{Lines: byFile(dir, lines, info)}
	}

	dated := make([]model.Line, 0, len(lines))
	for _, l := range lines {
		if l.HasTimestamp() {
			dated = append(dated, l)
		}
	}

	dateless := len(lines) - len(dated)
	if dateless > 0 {
		o.logger.Warnw("lines without a date omitted from date sort", "count", dateless)
	}

	byDate(dir, dated, info)
	return Result{Lines: dated, Dateless: dateless}
}

func byFile(dir model.Direction, lines []model.Line, info map[string]model.FileInfo) []model.Line {
	out := slices.Clone(lines)
	slices.SortStableFunc(out, func(a, b model.Line) int {
		if c := cmp.Compare(fileName(a, info), fileName(b, info)); c != 0 {
			return c
		}
		if c := cmp.Compare(a.FileID, b.FileID); c != 0 {
			return c
		}
		if dir == model.Desc {
			return cmp.Compare(b.Sequence, a.Sequence)
		}
		return cmp.Compare(a.Sequence, b.Sequence)
	})
	return out
}

func fileName(l model.Line, info map[string]model.FileInfo) string {
	if f, ok := info[l.FileID]; ok && f.Name != "" {
		return f.Name
	}
	return l.FileName
}

// byDate sorts lines in place.
func byDate(dir model.Direction, lines []model.Line, info map[string]model.FileInfo) {
	slices.SortStableFunc(lines, func(a, b model.Line) int {
		if dir == model.Desc {
			return b.Timestamp.Compare(a.Timestamp)
		}
		return a.Timestamp.Compare(b.Timestamp)
	})

	for start := 0; start < len(lines); {
		end := start + 1
		for end < len(lines) && lines[end].Timestamp.Equal(lines[start].Timestamp) {
			end++
		}
		if end-start > 1 {
			relayTies(dir, lines[start:end], info)
		}
		start = end
	}
}

// relayTies reorders each file's lines within a run of equal instants while
// leaving every file in the slots it already occupies.
func relayTies(dir model.Direction, run []model.Line, info map[string]model.FileInfo) {
	slots := make(map[string][]int)
	var order []string
	for i, l := range run {
		if _, ok := slots[l.FileID]; !ok {
			order = append(order, l.FileID)
		}
		slots[l.FileID] = append(slots[l.FileID], i)
	}

	for _, id := range order {
		idx := slots[id]
		if len(idx) < 2 {
			continue
		}

		group := make([]model.Line, len(idx))
		for j, i := range idx {
			group[j] = run[i]
		}

		s := info[id].Sortedness
		reverse := (s == model.Ascending || s == model.Descending) && !dir.Matches(s)
		slices.SortFunc(group, func(a, b model.Line) int {
			if reverse {
				return cmp.Compare(b.Sequence, a.Sequence)
			}
			return cmp.Compare(a.Sequence, b.Sequence)
		})

		for j, i := range idx {
			run[i] = group[j]
		}
	}
}
