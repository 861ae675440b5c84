package parser

import (
	"regexp"
	"strings"

	"github.com/ccollicutt/logweave/pkg/dates"
)

// MinSegmentedRatio is the share of physical lines that must either start an
// entry or be blank for segmentation to be trusted.
const MinSegmentedRatio = 0.5

var lineBreak = regexp.MustCompile(`\r?\n`)

// SplitLines splits text on \n or \r\n.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Segment groups physical lines into logical entries. A line starts a new
// entry when a date is recognized on it; anything else is a continuation of
// the previous entry. When too few lines could be explained this way the
// physical lines are returned unchanged and fallback is true.
func Segment(text string, extractor *dates.Extractor) (entries []string, fallback bool) {
	if extractor == nil {
		extractor = dates.Default()
	}

	raw := SplitLines(text)
	entries = make([]string, 0, len(raw))
	qualifying := 0

	for _, line := range raw {
		if _, ok := extractor.Extract(line, 0); ok {
			entries = append(entries, line)
			qualifying++
			continue
		}

		if strings.TrimSpace(line) == "" {
			qualifying++
		}
		if n := len(entries); n > 0 {
			entries[n-1] += "\n" + line
		} else {
			entries = append(entries, line)
		}
	}

	if float64(qualifying)/float64(len(raw)) < MinSegmentedRatio {
		return raw, true
	}
	return entries, false
}
