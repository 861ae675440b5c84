package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSegment(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		want         []string
		wantFallback bool
	}{
		{
			name: "empty text is one empty entry",
			text: "",
			want: []string{""},
		},
		{
			name: "crlf split",
			text: "[2022-09-27 11:06:00.000] a\r\n[2022-09-27 11:06:01.000] b",
			want: []string{"[2022-09-27 11:06:00.000] a", "[2022-09-27 11:06:01.000] b"},
		},
		{
			name: "continuation joined",
			text: "[2022-09-27 11:06:00.000] a\n  at x\n[2022-09-27 11:06:01.000] b",
			want: []string{"[2022-09-27 11:06:00.000] a\n  at x", "[2022-09-27 11:06:01.000] b"},
		},
		{
			name: "leading undated line is its own entry",
			text: "header\n[2022-09-27 11:06:00.000] a\n[2022-09-27 11:06:01.000] b",
			want: []string{"header", "[2022-09-27 11:06:00.000] a", "[2022-09-27 11:06:01.000] b"},
		},
		{
			name: "blank continuation lines count toward the threshold",
			text: "[2022-09-27 11:06:00.000] a\n\n\nx",
			want: []string{"[2022-09-27 11:06:00.000] a\n\n\nx"},
		},
		{
			name:         "mostly undated falls back to physical lines",
			text:         "[2022-09-27 11:06:00.000] a\nx\ny\nz",
			want:         []string{"[2022-09-27 11:06:00.000] a", "x", "y", "z"},
			wantFallback: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, fallback := Segment(tt.text, nil)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantFallback, fallback)
		})
	}
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", ""}, SplitLines("a\nb\r\nc\n"))
}
