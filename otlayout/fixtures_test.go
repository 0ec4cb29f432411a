package otlayout

import (
	"testing"

	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/otshaping/ot"
	"github.com/stretchr/testify/require"
)

// Glyph classes of the test GDEF:
//
//	1..3  base glyphs
//	4     ligature
//	5..8  marks
const (
	baseA, baseB, baseC ot.GlyphIndex = 1, 2, 3
	ligature            ot.GlyphIndex = 4
	mark1, mark2        ot.GlyphIndex = 5, 6
)

func testGDef(t *testing.T) *ot.GDef {
	t.Helper()
	gdef, err := ot.ParseGDef(otbuild.GDEF(otbuild.ClassDef1(1, 1, 1, 1, 2, 3, 3, 3, 3), nil).Bytes())
	require.NoError(t, err)
	return gdef
}

func gposReader(t *testing.T, gdef *ot.GDef, lookups ...*otbuild.Node) *TableReader {
	t.Helper()
	r, err := NewGPosReader(otbuild.Layout{Lookups: lookups}.Bytes(), gdef, nil)
	require.NoError(t, err)
	return r
}

func gsubReader(t *testing.T, gdef *ot.GDef, glyphs GlyphSource, lookups ...*otbuild.Node) *TableReader {
	t.Helper()
	r, err := NewGSubReader(otbuild.Layout{Lookups: lookups}.Bytes(), gdef, glyphs)
	require.NoError(t, err)
	return r
}

// testGlyph creates a glyph with a Unicode value derived from its code.
func testGlyph(code ot.GlyphIndex) Glyph {
	return NewGlyph(code, 500, '@'+rune(code%64))
}

func testLine(codes ...ot.GlyphIndex) *GlyphLine {
	glyphs := make([]Glyph, len(codes))
	for i, c := range codes {
		glyphs[i] = testGlyph(c)
	}
	return NewGlyphLine(glyphs)
}

func codes(line *GlyphLine) []ot.GlyphIndex {
	r := make([]ot.GlyphIndex, line.Len())
	for i := range r {
		r[i] = line.Get(i).Code
	}
	return r
}

type glyphMap map[ot.GlyphIndex]Glyph

func (m glyphMap) Glyph(code ot.GlyphIndex) (Glyph, bool) {
	g, ok := m[code]
	return g, ok
}
