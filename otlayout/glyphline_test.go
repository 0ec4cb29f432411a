package otlayout

import (
	"testing"

	"github.com/npillmayer/otshaping/ot"
	"github.com/stretchr/testify/assert"
)

func TestGlyphLineInvariant(t *testing.T) {
	glyphs := []Glyph{testGlyph(1), testGlyph(2), testGlyph(3)}
	assert.Panics(t, func() { NewGlyphLineWindow(glyphs, 2, 1) })
	assert.Panics(t, func() { NewGlyphLineWindow(glyphs, -1, 1) })
	assert.Panics(t, func() { NewGlyphLineWindow(glyphs, 0, 4) })
	line := NewGlyphLineWindow(glyphs, 1, 2)
	assert.Equal(t, 1, line.Index())
	assert.Panics(t, func() { line.SetIndex(0) })
	assert.Panics(t, func() { line.SetIndex(3) })
	assert.NotPanics(t, func() { line.SetIndex(2) })
	assert.Panics(t, func() { line.SetWindow(0, 5) })
	line.SetWindow(0, 1)
	assert.Equal(t, 1, line.Index(), "index is clamped into the window")
	line.SetWindow(2, 3)
	assert.Equal(t, 2, line.Index())
}

func TestGlyphLineAdd(t *testing.T) {
	line := NewGlyphLine(nil)
	line.Add(testGlyph(1))
	line.Add(testGlyph(2))
	assert.Equal(t, 2, line.End())
	line.SetWindow(0, 1)
	line.Add(testGlyph(3))
	assert.Equal(t, 1, line.End(), "window does not reach the end of the line")
	assert.Equal(t, 3, line.Len())
}

func TestGlyphLineEqual(t *testing.T) {
	a := testLine(1, 2, 3)
	b := testLine(1, 2, 3)
	b.SetIndex(2)
	assert.True(t, a.Equal(b), "index is not compared")
	b.SetActualText(0, 2, "AB")
	assert.False(t, a.Equal(b))
	a.SetActualText(0, 1, "AB")
	a.SetActualText(1, 2, "AB")
	assert.False(t, a.Equal(b), "two runs differ from one run")
	a.SetActualText(0, 2, "AB")
	assert.True(t, a.Equal(b))
	c := testLine(1, 2, 4)
	assert.False(t, testLine(1, 2, 3).Equal(c))
	var nilLine *GlyphLine
	assert.False(t, c.Equal(nilLine))
}

func TestGlyphLineCopy(t *testing.T) {
	line := testLine(1, 2, 3, 4)
	line.SetActualText(1, 3, "xy")
	c := line.Copy(1, 4)
	assert.Equal(t, []ot.GlyphIndex{2, 3, 4}, codes(c))
	assert.Equal(t, 0, c.Start())
	assert.Equal(t, 3, c.End())
	text, ok := c.ActualText(1)
	assert.True(t, ok)
	assert.Equal(t, "xy", text)
	_, ok = c.ActualText(2)
	assert.False(t, ok)
	g := c.Get(0)
	g.Chars[0] = 'z'
	assert.Equal(t, "B", line.Get(1).Text(), "copies do not share characters")
}

func TestGlyphLineRemoveAndInsert(t *testing.T) {
	line := NewGlyphLineWindow([]Glyph{testGlyph(1), testGlyph(2), testGlyph(3), testGlyph(4), testGlyph(5)}, 1, 4)
	line.SetIndex(3)
	line.RemoveAt(2)
	assert.Equal(t, []ot.GlyphIndex{1, 2, 4, 5}, codes(line))
	assert.Equal(t, 1, line.Start())
	assert.Equal(t, 3, line.End())
	assert.Equal(t, 2, line.Index())
	line.RemoveAt(0)
	assert.Equal(t, 0, line.Start())
	assert.Equal(t, 2, line.End())
	assert.Equal(t, 1, line.Index())
	line.InsertAt(1, testGlyph(7), testGlyph(8))
	assert.Equal(t, []ot.GlyphIndex{2, 7, 8, 4, 5}, codes(line))
	assert.Equal(t, 4, line.End())
	assert.Equal(t, 1, line.Index(), "glyphs are inserted at the current position")
	line.ReplaceRange(1, 3, testGlyph(9))
	assert.Equal(t, []ot.GlyphIndex{2, 9, 4, 5}, codes(line))
	assert.Equal(t, 3, line.End())
	assert.Panics(t, func() { line.ReplaceRange(3, 2) })
}

func TestGlyphLineInsertIntoRun(t *testing.T) {
	line := testLine(1, 2, 3)
	line.SetActualText(0, 2, "fi")
	line.InsertAt(1, testGlyph(5))
	a, ok := line.ActualText(1)
	assert.True(t, ok)
	assert.Equal(t, "fi", a)
	line.InsertAt(3, testGlyph(6)) // at the end of the run
	_, ok = line.ActualText(3)
	assert.False(t, ok)
	assert.Equal(t, "fiFC", line.String())
}

func TestGlyphLineText(t *testing.T) {
	line := testLine(1, 2, 3)
	assert.Equal(t, "ABC", line.String())
	assert.Equal(t, "B", line.ToUnicodeString(1, 2))
	line.SetActualText(1, 3, "xyz")
	assert.Equal(t, "Axyz", line.String())
	assert.Panics(t, func() { line.ToUnicodeString(2, 1) })
}

func TestGlyphPredicates(t *testing.T) {
	g := NewGlyph(3, 500, NoUnicode)
	assert.False(t, g.HasValidUnicode())
	assert.Empty(t, g.Text())
	assert.Nil(t, g.Chars)
	g.XPlacement = 20
	assert.False(t, g.HasPlacement(), "plain placement is not an attachment")
	assert.False(t, g.HasOffsets())
	g.AnchorDelta = -1
	assert.True(t, g.HasOffsets())
	assert.False(t, g.HasAdvance())
	g.YAdvance = 1
	assert.True(t, g.HasAdvance())
	h := g
	h.Chars = []rune{'x'}
	assert.False(t, g.Equal(h))
	assert.Equal(t, "[3 pl=(20,0) adv=(0,1) ⚓-1]", g.String())
}
