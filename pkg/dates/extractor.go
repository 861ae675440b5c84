// Package dates recognizes and parses the timestamp formats found at the
// start of log entries.
package dates

import (
	"time"
)

// Extractor tries an ordered table of recognizers against a line.
// An Extractor is immutable after construction and safe for concurrent use.
type Extractor struct {
	recognizers []*Recognizer
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithRecognizers replaces the default recognizer table.
func WithRecognizers(recognizers ...*Recognizer) Option {
	return func(e *Extractor) {
		e.recognizers = recognizers
	}
}

// NewExtractor creates an extractor using the default recognizer table
// unless overridden.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{recognizers: DefaultRecognizers()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Recognizers returns the recognizer table in evaluation order.
func (e *Extractor) Recognizers() []*Recognizer {
	return e.recognizers
}

// match finds the first recognizer whose pattern matches line and whose
// composed date parses. Formats without an embedded offset are read in the
// fixed zone UTC+offsetHours.
func (e *Extractor) match(line string, offsetHours int) (*Recognizer, []int, time.Time, bool) {
	for _, r := range e.recognizers {
		loc := r.Pattern.FindStringSubmatchIndex(line)
		if loc == nil {
			continue
		}
		m := make([]string, len(loc)/2)
		for i := range m {
			if loc[2*i] >= 0 {
				m[i] = line[loc[2*i]:loc[2*i+1]]
			}
		}

		var (
			ts  time.Time
			err error
		)
		s := r.dateString(m)
		if r.NativeTimezone {
			ts, err = time.Parse(r.Layout, s)
		} else {
			ts, err = time.ParseInLocation(r.Layout, s, Zone(offsetHours))
		}
		if err != nil {
			// Pattern matched but the value is not a real date, e.g. 31/02.
			continue
		}

		return r, loc[:2], ts.UTC(), true
	}
	return nil, nil, time.Time{}, false
}

// Extract returns the instant of the line's leading timestamp. The bool is
// false when no recognizer both matches and parses.
func (e *Extractor) Extract(line string, offsetHours int) (time.Time, bool) {
	_, _, ts, ok := e.match(line, offsetHours)
	return ts, ok
}

// Recognize returns the recognizer that wins for line.
func (e *Extractor) Recognize(line string) (*Recognizer, bool) {
	r, _, _, ok := e.match(line, 0)
	return r, ok
}

// HasTimezoneInfo reports whether the winning recognizer carries its own
// UTC offset, in which case the file's configured offset has no effect.
func (e *Extractor) HasTimezoneInfo(line string) bool {
	r, _, _, ok := e.match(line, 0)
	return ok && r.NativeTimezone
}

// StripTimestamp removes the winning recognizer's full match from line.
// The line is returned unchanged when nothing wins.
func (e *Extractor) StripTimestamp(line string) string {
	_, loc, _, ok := e.match(line, 0)
	if !ok {
		return line
	}
	return line[:loc[0]] + line[loc[1]:]
}

var defaultExtractor = NewExtractor()

// Default returns the shared extractor built from DefaultRecognizers.
func Default() *Extractor {
	return defaultExtractor
}

// Extract uses the default extractor.
func Extract(line string, offsetHours int) (time.Time, bool) {
	return defaultExtractor.Extract(line, offsetHours)
}

// HasTimezoneInfo uses the default extractor.
func HasTimezoneInfo(line string) bool {
	return defaultExtractor.HasTimezoneInfo(line)
}

// StripTimestamp uses the default extractor.
func StripTimestamp(line string) string {
	return defaultExtractor.StripTimestamp(line)
}
