// Package project reads and writes filter projects in the TextAnalysisTool.NET
// XML format.
package project

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/ccollicutt/logweave/pkg/dates"
	"github.com/ccollicutt/logweave/pkg/filter"
	"github.com/ccollicutt/logweave/pkg/model"
)

// FormatVersion is written into the root element.
const FormatVersion = "2020-12-17"

// DefaultFilterColor is used for filters persisted without a backColor.
const DefaultFilterColor = filter.DefaultColor

var (
	// ErrMalformed wraps XML syntax errors.
	ErrMalformed = errors.New("malformed project XML")

	// ErrInvalidAttribute wraps attribute values outside their allowed set.
	ErrInvalidAttribute = errors.New("invalid project attribute")
)

// ParseError lists every problem found while parsing a project.
type ParseError struct {
	Errs []error
}

func (e *ParseError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("parsing project: %s", strings.Join(msgs, "; "))
}

// Unwrap exposes the individual problems to errors.Is and errors.As.
func (e *ParseError) Unwrap() []error {
	return e.Errs
}

// Settings are the view settings stored alongside the filters.
type Settings struct {
	Name             string          `json:"name"`
	SortBy           model.SortMode  `json:"sort_by"`
	SortDirection    model.Direction `json:"sort_direction"`
	ShowOriginalDate bool            `json:"show_original_date"`
	HideUnfiltered   bool            `json:"hide_unfiltered"`
	DisplayTimezone  int             `json:"display_timezone"`
}

// DefaultSettings returns date sort, newest first, with every toggle off.
func DefaultSettings() Settings {
	return Settings{
		SortBy:        model.SortByDate,
		SortDirection: model.Desc,
	}
}

// Project is a filter list plus view settings.
type Project struct {
	Settings Settings
	Filters  []model.Filter
}

type document struct {
	XMLName               xml.Name        `xml:"TextAnalysisTool.NET"`
	Version               string          `xml:"version,attr"`
	ShowOnlyFilteredLines string          `xml:"showOnlyFilteredLines,attr"`
	Project               *projectElement `xml:"project"`
	Filters               []filterElement `xml:"filters>filter"`
}

type projectElement struct {
	Name            string `xml:"name,attr"`
	SortBy          string `xml:"sortBy,attr"`
	SortDirection   string `xml:"sortDirection,attr"`
	ShowOGDate      string `xml:"showOGDate,attr"`
	HideUnfiltered  string `xml:"hideUnfiltered,attr"`
	DisplayTimezone string `xml:"displayTimezone,attr"`
}

type filterElement struct {
	Enabled       string `xml:"enabled,attr"`
	Excluding     string `xml:"excluding,attr"`
	Description   string `xml:"description,attr"`
	BackColor     string `xml:"backColor,attr"`
	Type          string `xml:"type,attr"`
	CaseSensitive string `xml:"case_sensitive,attr"`
	Regex         string `xml:"regex,attr"`
	Text          string `xml:"text,attr"`
}

// Parse decodes a project. On any problem it returns a *ParseError and no
// project.
func Parse(data []byte) (*Project, error) {
	data = bytes.TrimPrefix(bytes.TrimSpace(data), []byte("\xef\xbb\xbf"))

	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{Errs: []error{fmt.Errorf("%w: %w", ErrMalformed, err)}}
	}

	var errs []error
	settings := DefaultSettings()

	if doc.Project == nil {
		settings.HideUnfiltered = strings.EqualFold(doc.ShowOnlyFilteredLines, "true")
	} else {
		p := doc.Project
		settings.Name = p.Name

		if p.SortBy != "" {
			mode, err := model.ParseSortMode(p.SortBy)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w sortBy: %w", ErrInvalidAttribute, err))
			}
			settings.SortBy = mode
		}
		if p.SortDirection != "" {
			dir, err := model.ParseDirection(p.SortDirection)
			if err != nil {
				errs = append(errs, fmt.Errorf("%w sortDirection: %w", ErrInvalidAttribute, err))
			}
			settings.SortDirection = dir
		}

		var err error
		if settings.ShowOriginalDate, err = parseFlag("showOGDate", p.ShowOGDate); err != nil {
			errs = append(errs, err)
		}
		if settings.HideUnfiltered, err = parseFlag("hideUnfiltered", p.HideUnfiltered); err != nil {
			errs = append(errs, err)
		}

		if p.DisplayTimezone != "" {
			tz, err := strconv.Atoi(p.DisplayTimezone)
			switch {
			case err != nil:
				errs = append(errs, fmt.Errorf("%w displayTimezone %q: not an integer", ErrInvalidAttribute, p.DisplayTimezone))
			case tz < dates.MinOffset || tz > dates.MaxOffset:
				errs = append(errs, fmt.Errorf("%w displayTimezone %d: must be between %d and %d", ErrInvalidAttribute, tz, dates.MinOffset, dates.MaxOffset))
			default:
				settings.DisplayTimezone = tz
			}
		}
	}

	if len(errs) > 0 {
		return nil, &ParseError{Errs: errs}
	}

	filters := make([]model.Filter, 0, len(doc.Filters))
	for _, fe := range doc.Filters {
		color := DefaultFilterColor
		if fe.BackColor != "" {
			color = "#" + strings.TrimPrefix(fe.BackColor, "#")
		}
		f := filter.New(fe.Text,
			filter.WithColor(color),
			filter.WithDisabled(fe.Enabled != "y"),
			filter.WithExcluding(fe.Excluding == "y"),
			filter.WithDescription(fe.Description),
		)
		if fe.Type != "" {
			f.Kind = fe.Type
		}
		filters = append(filters, f)
	}

	return &Project{Settings: settings, Filters: filters}, nil
}

func parseFlag(name, value string) (bool, error) {
	switch value {
	case "y":
		return true, nil
	case "n", "":
		return false, nil
	default:
		return false, fmt.Errorf("%w %s %q: must be y or n", ErrInvalidAttribute, name, value)
	}
}

func yn(b bool) string {
	if b {
		return "y"
	}
	return "n"
}

func escape(s string) string {
	var buf bytes.Buffer
	// EscapeText only fails when the writer does.
	_ = xml.EscapeText(&buf, []byte(s))
	return buf.String()
}

// Marshal encodes a project with a fixed attribute order and CRLF line endings.
func Marshal(p *Project) []byte {
	const eol = "\r\n"
	s := p.Settings

	showOnly := "False"
	if s.HideUnfiltered {
		showOnly = "True"
	}

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8" standalone="yes"?>` + eol)
	fmt.Fprintf(&b, `<TextAnalysisTool.NET version="%s" showOnlyFilteredLines="%s">`+eol, FormatVersion, showOnly)
	fmt.Fprintf(&b, `  <project name="%s" sortBy="%s" sortDirection="%s" showOGDate="%s" hideUnfiltered="%s" displayTimezone="%d" />`+eol,
		escape(s.Name), escape(string(s.SortBy)), escape(string(s.SortDirection)),
		yn(s.ShowOriginalDate), yn(s.HideUnfiltered), s.DisplayTimezone)
	b.WriteString("  <filters>" + eol)
	for _, f := range p.Filters {
		kind := f.Kind
		if kind == "" {
			kind = filter.KindMatchesText
		}
		fmt.Fprintf(&b, `    <filter enabled="%s" excluding="%s" description="%s" backColor="%s" type="%s" case_sensitive="n" regex="n" text="%s" />`+eol,
			yn(!f.Disabled), yn(f.Excluding), escape(f.Description),
			escape(strings.TrimPrefix(f.Color, "#")), escape(kind), escape(f.Pattern))
	}
	b.WriteString("  </filters>" + eol)
	b.WriteString("</TextAnalysisTool.NET>" + eol)

	return []byte(b.String())
}

// Load reads and parses a project file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided paths are expected
	if err != nil {
		return nil, fmt.Errorf("reading project %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading project %s: %w", path, err)
	}
	return p, nil
}

// Save writes p to path.
func Save(path string, p *Project) error {
	if err := os.WriteFile(path, Marshal(p), 0o644); err != nil { // #nosec G306 -- project files are not secret
		return fmt.Errorf("writing project %s: %w", path, err)
	}
	return nil
}
