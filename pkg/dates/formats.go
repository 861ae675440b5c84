package dates

import (
	"regexp"
	"strings"
)

// Recognizer is one known timestamp format.
type Recognizer struct {
	Name           string         // Human-readable name
	Pattern        *regexp.Regexp // Compiled regex (set by DefaultRecognizers)
	PatternStr     string         // Pattern string, the full match is what StripTimestamp removes
	Layout         string         // Go time layout applied to the composed date string
	NativeTimezone bool           // True if the format carries its own UTC offset
	Examples       []string       // Example line prefixes

	// compose builds the string handed to time.Parse from the submatches.
	// Defaults to the first capture group with whitespace collapsed.
	compose func(m []string) string
}

func (r *Recognizer) dateString(m []string) string {
	if r.compose != nil {
		return r.compose(m)
	}
	return collapseSpaces(m[1])
}

// collapseSpaces turns any whitespace run into a single space so a tab
// separated date still fits a space separated layout.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// DefaultRecognizers returns the built-in formats in evaluation order.
// Order matters: the first recognizer that matches and parses wins.
func DefaultRecognizers() []*Recognizer {
	recognizers := []*Recognizer{
		{
			Name:           "ISO 8601 with milliseconds and Z",
			PatternStr:     `^(\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}\.\d{3}Z)`,
			Layout:         "2006-01-02T15:04:05.000Z07:00",
			NativeTimezone: true,
			Examples:       []string{"2022-09-26T21:01:15.972Z"},
		},
		{
			Name:       "US date with 12-hour clock",
			PatternStr: `^(\d{1,2}/\d{1,2}/\d{4}\s\d{1,2}:\d{2}:\d{2}\s(?:AM|PM))`,
			Layout:     "1/2/2006 3:04:05 PM",
			Examples:   []string{"8/13/2021 2:01:35 PM", "9/12/2022 11:15:00 PM"},
		},
		{
			// ETL traces carry a 10 character thread prefix before the date.
			Name:       "ETL trace",
			PatternStr: `(.{10})(\d{1,2}/\d{1,2}/\d{4}-\d{2}:\d{2}:\d{2}\.\d{3})`,
			Layout:     "1/2/2006-15:04:05.000",
			Examples:   []string{"36E0.2C50,09/15/2022-09:34:47.156"},
			compose:    func(m []string) string { return m[2] },
		},
		{
			Name:       "Bracketed datetime with milliseconds",
			PatternStr: `^\[(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\.\d{3})`,
			Layout:     "2006-01-02 15:04:05.000",
			Examples:   []string{"[2022-09-27 11:06:00.000]"},
		},
		{
			Name:           "JavaScript Date string",
			PatternStr:     `^([A-Z][a-z]{2}) ([A-Z][a-z]{2} \d{2} \d{4} \d{2}:\d{2}:\d{2}) GMT([+-]\d{4})`,
			Layout:         "Jan 02 2006 15:04:05 -0700",
			NativeTimezone: true,
			Examples:       []string{"Fri Sep 16 2022 07:58:16 GMT+1000 (Australian Eastern Standard Time)"},
			compose:        func(m []string) string { return m[2] + " " + m[3] },
		},
		{
			Name:       "Year first with 12-hour clock",
			PatternStr: `^(\d{4}-\d{2}-\d{2}\s\d{2}:\d{2}:\d{2}\s(?:AM|PM))`,
			Layout:     "2006-01-02 03:04:05 PM",
			Examples:   []string{"2022-11-15 12:31:13 PM"},
		},
		{
			Name:       "Day first (DD/MM/YYYY)",
			PatternStr: `^(\d{2}/\d{2}/\d{4}\s\d{2}:\d{2}:\d{2})`,
			Layout:     "02/01/2006 15:04:05",
			Examples:   []string{"17/11/2022 10:00:38"},
		},
		{
			Name:       "Day first dashed (DD-MM-YYYY)",
			PatternStr: `^(\d{2}-\d{2}-\d{4}\s\d{2}:\d{2}:\d{2})`,
			Layout:     "02-01-2006 15:04:05",
			Examples:   []string{"23-11-2022 10:54:07"},
		},
	}

	for _, r := range recognizers {
		r.Pattern = regexp.MustCompile(r.PatternStr)
	}

	return recognizers
}
