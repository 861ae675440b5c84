// Package parser turns raw log text into decorated, hashable log lines and
// merges the lines of several files into one deduplicated stream.
package parser

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/ccollicutt/logweave/pkg/model"
)

// Palette is the set of colors handed out to files that do not pick one.
var Palette = []string{
	"#836953",
	"#b2fba5",
	"#89cff0",
	"#fdfd96",
	"#ff694f",
	"#ff9899",
	"#ffb7ce",
	"#ca9bf7",
	"#77dd77",
	"#ff7f00",
	"#ffff00",
	"#00ff00",
	"#4b0082",
	"#9400d3",
}

var paletteNext atomic.Uint32

func nextColor() string {
	i := paletteNext.Add(1) - 1
	return Palette[int(i)%len(Palette)]
}

// File is a loaded log file. The text is kept so the file can be re-analyzed
// when its timezone changes.
type File struct {
	// ID is the opaque, workspace-unique file identifier.
	ID string

	// Name is the display name, usually the base name of the path.
	Name string

	// Color is the display color of the file's lines.
	Color string

	// Text is the raw file content.
	Text string

	// TimezoneOffset is the whole-hour offset used for formats without zone.
	TimezoneOffset int

	// Visible controls whether the file takes part in merging.
	Visible bool
}

// FileOption configures a File.
type FileOption func(*File)

// WithTimezone sets the file's timezone offset in hours.
func WithTimezone(hours int) FileOption {
	return func(f *File) {
		f.TimezoneOffset = hours
	}
}

// WithVisible sets the file's initial visibility.
func WithVisible(visible bool) FileOption {
	return func(f *File) {
		f.Visible = visible
	}
}

// WithColor overrides the palette color.
func WithColor(color string) FileOption {
	return func(f *File) {
		if color != "" {
			f.Color = color
		}
	}
}

// WithID sets a caller chosen identifier.
func WithID(id string) FileOption {
	return func(f *File) {
		if id != "" {
			f.ID = id
		}
	}
}

// NewFile creates a visible file at offset 0 with a fresh ID and a palette color.
func NewFile(name, text string, opts ...FileOption) *File {
	f := &File{
		ID:      uuid.NewString(),
		Name:    name,
		Text:    text,
		Visible: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.Color == "" {
		f.Color = nextColor()
	}
	return f
}

// FileAnalysis is the derived, read-only view of a File at one timezone offset.
// It is never edited in place; a timezone change produces a new analysis.
type FileAnalysis struct {
	// File is the file this analysis was derived from.
	File *File

	// Lines holds every entry in file order, dated or not.
	Lines []model.Line

	// LinesWithoutDate counts entries with no recognized date.
	LinesWithoutDate int

	// Sortedness is the on-disk order of the dated entries.
	Sortedness model.Sortedness

	// NativeTimezone is true when the first dated entry carries its own offset.
	NativeTimezone bool

	// Fallback is true when segmentation gave up and kept physical lines.
	Fallback bool
}

// Info returns what the sort stage needs to know about the file.
func (a *FileAnalysis) Info() model.FileInfo {
	return model.FileInfo{
		ID:         a.File.ID,
		Name:       a.File.Name,
		Sortedness: a.Sortedness,
	}
}

// LinesWithDate counts entries with a recognized date.
func (a *FileAnalysis) LinesWithDate() int {
	return len(a.Lines) - a.LinesWithoutDate
}
