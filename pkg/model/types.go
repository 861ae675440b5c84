// Package model holds the value types shared by every stage of the log pipeline.
package model

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Line is a single logical log entry after segmentation and date extraction.
type Line struct {
	// ID is an opaque identifier, unique across the workspace.
	ID string `json:"id"`

	// FileID is the owning file's identifier.
	FileID string `json:"file_id"`

	// FileName is the owning file's display name.
	FileName string `json:"file_name"`

	// FileColor is the owning file's display color.
	FileColor string `json:"file_color,omitempty"`

	// Sequence is the 1-based position of the entry within its source file.
	Sequence int `json:"sequence"`

	// Hash identifies the entry by its raw text. Identical text in two files
	// yields the same hash.
	Hash string `json:"hash"`

	// Timestamp is the parsed instant, zero when no date was recognized.
	Timestamp time.Time `json:"timestamp,omitzero"`

	// Text is the raw entry text, continuation lines included.
	Text string `json:"text"`

	// TextWithoutTimestamp is Text with the recognized date removed.
	TextWithoutTimestamp string `json:"text_without_timestamp"`

	// MatchedFilter is the filter that decided this line's visibility on the
	// last filter pass, if any.
	MatchedFilter *Filter `json:"-"`

	// Visible is the outcome of the last filter pass.
	Visible bool `json:"-"`
}

// HasTimestamp reports whether a date was recognized for the line.
func (l *Line) HasTimestamp() bool {
	return !l.Timestamp.IsZero()
}

// Filter is a case-insensitive substring filter. Its priority is its position
// in the filter list.
type Filter struct {
	ID          string `json:"id" yaml:"id,omitempty"`
	Pattern     string `json:"pattern" yaml:"pattern"`
	Color       string `json:"color" yaml:"color,omitempty"`
	Disabled    bool   `json:"disabled" yaml:"disabled,omitempty"`
	Excluding   bool   `json:"excluding" yaml:"excluding,omitempty"`
	HitCount    int    `json:"hit_count" yaml:"-"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Kind        string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

// Matches reports whether text contains the filter pattern, ignoring case.
func (f *Filter) Matches(text string) bool {
	return strings.Contains(strings.ToLower(text), strings.ToLower(f.Pattern))
}

// Sortedness describes the on-disk order of a file's dated entries.
type Sortedness string

const (
	SortednessUnknown Sortedness = "unknown"
	Ascending         Sortedness = "asc"
	Descending        Sortedness = "desc"
)

// SortMode selects the ordering strategy of the merged stream.
type SortMode string

const (
	SortByDate SortMode = "date"
	SortByFile SortMode = "file"
)

// Direction is the requested global sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

var (
	// ErrInvalidSortMode is returned when a sort mode is not date or file.
	ErrInvalidSortMode = errors.New("invalid sort mode")

	// ErrInvalidDirection is returned when a direction is not asc or desc.
	ErrInvalidDirection = errors.New("invalid sort direction")
)

// ParseSortMode converts a user supplied string into a SortMode.
func ParseSortMode(s string) (SortMode, error) {
	switch SortMode(strings.ToLower(strings.TrimSpace(s))) {
	case SortByDate:
		return SortByDate, nil
	case SortByFile:
		return SortByFile, nil
	default:
		return "", fmt.Errorf("%w %q (must be date or file)", ErrInvalidSortMode, s)
	}
}

// ParseDirection converts a user supplied string into a Direction.
func ParseDirection(s string) (Direction, error) {
	switch Direction(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	default:
		return "", fmt.Errorf("%w %q (must be asc or desc)", ErrInvalidDirection, s)
	}
}

// Matches reports whether a file written in sortedness s is already in the
// order requested by d.
func (d Direction) Matches(s Sortedness) bool {
	return (d == Asc && s == Ascending) || (d == Desc && s == Descending)
}

// FileInfo is the per-file information the sort stage needs.
type FileInfo struct {
	ID         string
	Name       string
	Sortedness Sortedness
}

// ActivityInterval is one fixed-duration bucket of a timeline.
type ActivityInterval struct {
	ID               int       `json:"id"`
	Start            time.Time `json:"start"`
	End              time.Time `json:"end"`
	RelativePosition int       `json:"relative_position"`
	LineCount        int       `json:"line_count"`
}
