package parser

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/model"
)

// HashNamespace is the UUID namespace of line content hashes. Changing it
// changes every hash, so persisted hashes would no longer match.
var HashNamespace = uuid.MustParse("1b671a64-40d5-491e-99b0-da01ff1f3341")

// Hash returns the content hash of an entry's raw text.
func Hash(text string) string {
	return uuid.NewSHA1(HashNamespace, []byte(text)).String()
}

// LineID returns the stable identifier of the entry at sequence in a file.
func LineID(fileID string, sequence int) string {
	return uuid.NewSHA1(HashNamespace, []byte(fileID+"/"+strconv.Itoa(sequence))).String()
}

// Parser analyzes files. It holds no per-file state and is safe for
// concurrent use.
type Parser struct {
	extractor *dates.Extractor
	logger    *zap.SugaredLogger
	workers   int
}

// Option configures a Parser.
type Option func(*Parser)

// WithExtractor sets the date extractor.
func WithExtractor(e *dates.Extractor) Option {
	return func(p *Parser) {
		p.extractor = e
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Parser) {
		p.logger = l
	}
}

// WithWorkers limits how many files AnalyzeAll parses at once.
// Zero or less means one worker per file.
func WithWorkers(n int) Option {
	return func(p *Parser) {
		p.workers = n
	}
}

// New creates a parser.
func New(opts ...Option) *Parser {
	p := &Parser{
		extractor: dates.Default(),
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Analyze segments the file, extracts dates at the file's offset and
// derives its sortedness.
func (p *Parser) Analyze(f *File) *FileAnalysis {
	entries, fallback := Segment(f.Text, p.extractor)
	if fallback {
		p.logger.Debugw("segmentation fell back to physical lines",
			"file", f.Name,
			"lines", len(entries),
		)
	}

	a := &FileAnalysis{
		File:       f,
		Lines:      make([]model.Line, 0, len(entries)),
		Sortedness: model.SortednessUnknown,
		Fallback:   fallback,
	}

	first, last := -1, -1
	for i, text := range entries {
		seq := i + 1
		line := model.Line{
			ID:                   LineID(f.ID, seq),
			FileID:               f.ID,
			FileName:             f.Name,
			FileColor:            f.Color,
			Sequence:             seq,
			Hash:                 Hash(text),
			Text:                 text,
			TextWithoutTimestamp: p.extractor.StripTimestamp(text),
		}

		if ts, ok := p.extractor.Extract(text, f.TimezoneOffset); ok {
			line.Timestamp = ts
			if first < 0 {
				first = i
				a.NativeTimezone = p.extractor.HasTimezoneInfo(text)
			}
			last = i
		} else {
			a.LinesWithoutDate++
		}

		a.Lines = append(a.Lines, line)
	}

	if first >= 0 && first != last {
		if a.Lines[first].Timestamp.Before(a.Lines[last].Timestamp) {
			a.Sortedness = model.Ascending
		} else {
			a.Sortedness = model.Descending
		}
	}

	p.logger.Debugw("analyzed file",
		"file", f.Name,
		"lines", len(a.Lines),
		"without_date", a.LinesWithoutDate,
		"sortedness", a.Sortedness,
	)

	return a
}

// WithTimezone returns a copy of f at the new offset together with its fresh
// analysis. Sequences, hashes and line IDs are unchanged; only instants move.
func (p *Parser) WithTimezone(f *File, hours int) (*File, *FileAnalysis) {
	shifted := *f
	shifted.TimezoneOffset = hours
	return &shifted, p.Analyze(&shifted)
}
