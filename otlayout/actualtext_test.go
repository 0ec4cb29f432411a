package otlayout

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

func text(s string) *string { return &s }

func TestActualTextWithoutOverlay(t *testing.T) {
	line := NewGlyphLineWindow([]Glyph{testGlyph(1), testGlyph(2), testGlyph(3)}, 1, 3)
	parts := slices.Collect(line.ActualTextParts())
	assert.Equal(t, []GlyphLinePart{{Start: 1, End: 3}}, parts)
	empty := NewGlyphLine(nil)
	assert.Empty(t, slices.Collect(empty.ActualTextParts()))
}

func TestActualTextParts(t *testing.T) {
	noUnicode := NewGlyph(20, 500, NoUnicode)
	tests := []struct {
		name   string
		glyphs []Glyph
		runs   [][2]int
		texts  []string
		parts  []GlyphLinePart
	}{
		{
			name:   "text recoverable from glyphs",
			glyphs: []Glyph{testGlyph(1), testGlyph(2), testGlyph(3)},
			runs:   [][2]int{{0, 2}},
			texts:  []string{"AB"},
			parts:  []GlyphLinePart{{Start: 0, End: 3}},
		},
		{
			name:   "glyph without Unicode",
			glyphs: []Glyph{testGlyph(1), noUnicode, testGlyph(3)},
			runs:   [][2]int{{1, 2}},
			texts:  []string{"fi"},
			parts: []GlyphLinePart{
				{Start: 0, End: 1},
				{Start: 1, End: 2, ActualText: text("fi")},
				{Start: 2, End: 3},
			},
		},
		{
			name:   "text differs",
			glyphs: []Glyph{testGlyph(1), testGlyph(2)},
			runs:   [][2]int{{0, 2}},
			texts:  []string{"x"},
			parts:  []GlyphLinePart{{Start: 0, End: 2, ActualText: text("x")}},
		},
		{
			name:   "adjacent runs",
			glyphs: []Glyph{testGlyph(1), testGlyph(2), testGlyph(3), testGlyph(4)},
			runs:   [][2]int{{0, 1}, {1, 2}, {2, 4}},
			texts:  []string{"y", "B", "z"},
			parts: []GlyphLinePart{
				{Start: 0, End: 1, ActualText: text("y")},
				{Start: 1, End: 2},
				{Start: 2, End: 4, ActualText: text("z")},
			},
		},
	}
	for _, tt := range tests {
		line := NewGlyphLine(tt.glyphs)
		for i, r := range tt.runs {
			line.SetActualText(r[0], r[1], tt.texts[i])
		}
		parts := slices.Collect(line.ActualTextParts())
		if diff := cmp.Diff(tt.parts, parts); diff != "" {
			t.Errorf("%s: unexpected parts (-want +got):\n%s", tt.name, diff)
		}
	}
}

func TestActualTextIteratorReset(t *testing.T) {
	line := testLine(1, 2)
	line.SetActualText(0, 1, "x")
	it := NewActualTextIterator(line)
	first, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, "x", *first.ActualText)
	second, ok := it.Next()
	assert.True(t, ok)
	assert.Nil(t, second.ActualText)
	assert.Equal(t, 1, second.Len())
	_, ok = it.Next()
	assert.False(t, ok)
	it.Reset()
	again, ok := it.Next()
	assert.True(t, ok)
	assert.Equal(t, first, again)
}
