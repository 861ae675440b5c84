package filter

import (
	"slices"

	"github.com/google/uuid"

	"github.com/ccollicutt/logweave/pkg/model"
)

// DefaultColor is used when a filter is created without a color.
const DefaultColor = "#f08080"

// KindMatchesText is the only filter kind evaluated today.
const KindMatchesText = "matches_text"

// Option configures a new filter.
type Option func(*model.Filter)

// WithID sets the filter ID instead of generating one.
func WithID(id string) Option {
	return func(f *model.Filter) {
		f.ID = id
	}
}

// WithColor sets the display color.
func WithColor(color string) Option {
	return func(f *model.Filter) {
		f.Color = color
	}
}

// WithExcluding marks the filter as hiding the lines it matches.
func WithExcluding(excluding bool) Option {
	return func(f *model.Filter) {
		f.Excluding = excluding
	}
}

// WithDisabled creates the filter disabled.
func WithDisabled(disabled bool) Option {
	return func(f *model.Filter) {
		f.Disabled = disabled
	}
}

// WithDescription sets a free-text description.
func WithDescription(description string) Option {
	return func(f *model.Filter) {
		f.Description = description
	}
}

// New creates an enabled, non-excluding filter with a fresh ID.
func New(pattern string, opts ...Option) model.Filter {
	f := model.Filter{
		ID:      uuid.NewString(),
		Pattern: pattern,
		Color:   DefaultColor,
		Kind:    KindMatchesText,
	}
	for _, opt := range opts {
		opt(&f)
	}
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	if f.Color == "" {
		f.Color = DefaultColor
	}
	return f
}

// Find returns the index of the filter with id, or -1.
func Find(filters []model.Filter, id string) int {
	return slices.IndexFunc(filters, func(f model.Filter) bool { return f.ID == id })
}

// Reorder moves the filter at from to position to. Out of range positions
// are clamped.
func Reorder(filters []model.Filter, from, to int) []model.Filter {
	out := slices.Clone(filters)
	if from < 0 || from >= len(out) {
		return out
	}
	f := out[from]
	out = slices.Delete(out, from, from+1)
	to = max(0, min(to, len(out)))
	return slices.Insert(out, to, f)
}

// Move shifts the filter with id by delta positions; negative raises its
// priority. Unknown IDs leave the list unchanged.
func Move(filters []model.Filter, id string, delta int) []model.Filter {
	i := Find(filters, id)
	if i < 0 {
		return slices.Clone(filters)
	}
	return Reorder(filters, i, i+delta)
}

// Upsert replaces the filter with the same ID or appends f.
func Upsert(filters []model.Filter, f model.Filter) []model.Filter {
	out := slices.Clone(filters)
	if i := Find(out, f.ID); i >= 0 {
		out[i] = f
		return out
	}
	return append(out, f)
}

// Update replaces the filter with the same ID. Unknown IDs leave the list
// unchanged.
func Update(filters []model.Filter, f model.Filter) []model.Filter {
	out := slices.Clone(filters)
	if i := Find(out, f.ID); i >= 0 {
		out[i] = f
	}
	return out
}

// Append adds filters at the lowest priority.
func Append(filters []model.Filter, more ...model.Filter) []model.Filter {
	out := make([]model.Filter, 0, len(filters)+len(more))
	out = append(out, filters...)
	return append(out, more...)
}

// Remove drops the filter with id.
func Remove(filters []model.Filter, id string) []model.Filter {
	return slices.DeleteFunc(slices.Clone(filters), func(f model.Filter) bool { return f.ID == id })
}

// SetDisabled enables or disables the first filter whose pattern equals pattern.
func SetDisabled(filters []model.Filter, pattern string, disabled bool) []model.Filter {
	out := slices.Clone(filters)
	if i := slices.IndexFunc(out, func(f model.Filter) bool { return f.Pattern == pattern }); i >= 0 {
		out[i].Disabled = disabled
	}
	return out
}
