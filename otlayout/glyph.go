package otlayout

import (
	"fmt"
	"slices"
	"strings"

	"github.com/npillmayer/otshaping/ot"
)

// NoUnicode is the Unicode value of glyphs without a direct character mapping.
const NoUnicode rune = -1

// Glyph is a glyph of a font together with the characters it represents and the
// positioning adjustments collected while applying GPOS lookups. Values are in
// font design units.
//
// Glyphs are values. A GlyphLine owns its glyphs, lookups modify them in place.
type Glyph struct {
	Code    ot.GlyphIndex // glyph ID
	Width   int           // advance width as found in the font
	Unicode rune          // primary code point, or NoUnicode
	Chars   []rune        // characters represented; may be more than one for ligatures

	XPlacement, YPlacement int
	XAdvance, YAdvance     int
	// AnchorDelta is the offset of a mark's base glyph, relative to the mark's position
	// in a glyph line. It is 0 for glyphs which are not attached by an anchor.
	AnchorDelta int
	// LigComponent is the ligature component (1-based) a mark has been found to follow
	// when the ligature was formed. 0 means unknown.
	LigComponent int
}

// NewGlyph creates a glyph for glyph ID code, mapped from code point r
// (NoUnicode for none).
func NewGlyph(code ot.GlyphIndex, width int, r rune) Glyph {
	g := Glyph{Code: code, Width: width, Unicode: r}
	if r >= 0 {
		g.Chars = []rune{r}
	}
	return g
}

// HasValidUnicode is true if the glyph maps to a code point.
func (g Glyph) HasValidUnicode() bool {
	return g.Unicode >= 0
}

// HasPlacement is true for glyphs attached to another glyph by an anchor.
// Plain placement adjustments, e.g. from kerning, do not count.
func (g Glyph) HasPlacement() bool {
	return g.AnchorDelta != 0
}

// HasOffsets is true for glyphs attached to another glyph by an anchor.
func (g Glyph) HasOffsets() bool {
	return g.HasPlacement()
}

// HasAdvance is true if the glyph's advance has been adjusted.
func (g Glyph) HasAdvance() bool {
	return g.XAdvance != 0 || g.YAdvance != 0
}

// Text returns the characters the glyph represents. If Chars is empty, the glyph's
// Unicode value is used.
func (g Glyph) Text() string {
	if len(g.Chars) > 0 {
		return string(g.Chars)
	}
	if g.HasValidUnicode() {
		return string(g.Unicode)
	}
	return ""
}

// Equal compares two glyphs field by field.
func (g Glyph) Equal(other Glyph) bool {
	return g.Code == other.Code && g.Width == other.Width && g.Unicode == other.Unicode &&
		slices.Equal(g.Chars, other.Chars) &&
		g.XPlacement == other.XPlacement && g.YPlacement == other.YPlacement &&
		g.XAdvance == other.XAdvance && g.YAdvance == other.YAdvance &&
		g.AnchorDelta == other.AnchorDelta && g.LigComponent == other.LigComponent
}

func (g Glyph) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d", g.Code)
	if txt := g.Text(); txt != "" {
		fmt.Fprintf(&b, " %q", txt)
	}
	if g.XPlacement != 0 || g.YPlacement != 0 {
		fmt.Fprintf(&b, " pl=(%d,%d)", g.XPlacement, g.YPlacement)
	}
	if g.HasAdvance() {
		fmt.Fprintf(&b, " adv=(%d,%d)", g.XAdvance, g.YAdvance)
	}
	if g.AnchorDelta != 0 {
		fmt.Fprintf(&b, " ⚓%d", g.AnchorDelta)
	}
	b.WriteByte(']')
	return b.String()
}
