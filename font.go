/*
Package otshaping shapes text with the OpenType layout tables of a font.

There is a certain confusion with the nomenclature of typesetting. We will
stick to the following definitions:

▪︎ A "typeface" is a family of fonts. An example is "Helvetica".
This corresponds to a TrueType "collection" (*.ttc).

▪︎ A "scalable font" is a font, i.e. a variant of a typeface with a
certain weight, slant, etc.  An example is "Helvetica regular".

Please note that Go (Golang) does use the terms "font" and "face"
differently–actually more or less in an opposite manner.

This package is a thin facade over the packages ot and otlayout. It loads a
font, extracts the layout tables GSUB, GPOS and GDEF, maps runes to glyphs and
applies the features for a script and language to a line of glyphs:

	otf, err := otshaping.LoadOpenTypeFont("MyFont.otf")
	line, err := otf.Shape("office", otshaping.ShapeOptions{})

Clients needing finer control over the selection and ordering of features
should work with the table readers returned by Layout.

# Status

Does not yet contain methods for font collections (*.ttc), e.g.,
/System/Library/Fonts/Helvetica.ttc on Mac OS.

# Links

OpenType explained:
https://docs.microsoft.com/en-us/typography/opentype/

______________________________________________________________________

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otshaping

import (
	"bytes"
	"os"
	"sync"

	gtot "github.com/go-text/typesetting/font/opentype"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
)

// tracer writes to trace with key 'font.shaping'
func tracer() tracing.Trace {
	return tracing.Select("font.shaping")
}

// ScalableFont is an internal representation of an outline-font of type
// TTF of OTF.
//
// A ScalableFont is safe for concurrent use.
type ScalableFont struct {
	Fontname string
	Filepath string     // file path
	Binary   []byte     // raw data
	SFNT     *sfnt.Font // the font's container

	once   sync.Once
	layout layoutTables
	tables tableDirectory
}

// tableDirectory reads raw tables. The go-text loader parses the font's table
// directory once and then seeks in Binary, so reads are serialized.
type tableDirectory struct {
	once   sync.Once
	mx     sync.Mutex
	loader *gtot.Loader
}

// layoutTables are decoded once, on first access.
type layoutTables struct {
	gdef       *ot.GDef
	gsub, gpos *otlayout.TableReader
	err        error
}

// LoadOpenTypeFont loads an OpenType font (TTF or OTF) from a file.
func LoadOpenTypeFont(fontfile string) (*ScalableFont, error) {
	bytez, err := os.ReadFile(fontfile)
	if err != nil {
		return nil, err
	}
	f, err := ParseOpenTypeFont(bytez)
	if err != nil {
		return nil, err
	}
	f.Filepath = fontfile
	return f, nil
}

// ParseOpenTypeFont loads an OpenType font (TTF or OTF) from memory.
func ParseOpenTypeFont(fbytes []byte) (f *ScalableFont, err error) {
	f = &ScalableFont{Binary: fbytes}
	f.SFNT, err = sfnt.Parse(f.Binary)
	if err != nil {
		return nil, err
	}
	if f.Fontname, err = f.SFNT.Name(nil, sfnt.NameIDFull); err == nil {
		tracer().Debugf("loaded and parsed SFNT %s", f.Fontname)
	}
	return f, nil
}

// RawTable returns the bytes of the font table with the given tag, or nil if the
// font does not contain such a table.
func (f *ScalableFont) RawTable(tag ot.Tag) []byte {
	td := &f.tables
	td.once.Do(func() {
		ld, err := gtot.NewLoader(bytes.NewReader(f.Binary))
		if err != nil {
			tracer().Errorf("cannot read table directory of %s: %v", f.Fontname, err)
			return
		}
		td.loader = ld
	})
	if td.loader == nil {
		return nil
	}
	td.mx.Lock()
	defer td.mx.Unlock()
	raw, err := td.loader.RawTable(gtot.Tag(tag))
	if err != nil {
		tracer().Debugf("font %s has no table %s", f.Fontname, tag)
		return nil
	}
	return raw
}

// Layout returns readers for the GSUB and the GPOS table of the font. Either of them
// is nil if the font does not contain the table. Tables are decoded on first call;
// an error is returned if a table present in the font cannot be decoded.
func (f *ScalableFont) Layout() (gsub, gpos *otlayout.TableReader, err error) {
	f.once.Do(f.loadLayout)
	return f.layout.gsub, f.layout.gpos, f.layout.err
}

// GDef returns the decoded GDEF table of the font, or nil.
func (f *ScalableFont) GDef() *ot.GDef {
	f.once.Do(f.loadLayout)
	return f.layout.gdef
}

func (f *ScalableFont) loadLayout() {
	lt := &f.layout
	if raw := f.RawTable(ot.GDEF); raw != nil {
		if lt.gdef, lt.err = ot.ParseGDef(raw); lt.err != nil {
			return
		}
	}
	if raw := f.RawTable(ot.GSUB); raw != nil {
		if lt.gsub, lt.err = otlayout.NewGSubReader(raw, lt.gdef, f); lt.err != nil {
			return
		}
	}
	if raw := f.RawTable(ot.GPOS); raw != nil {
		if lt.gpos, lt.err = otlayout.NewGPosReader(raw, lt.gdef, f); lt.err != nil {
			return
		}
	}
	tracer().Infof("layout tables of %s: GDEF=%t GSUB=%t GPOS=%t", f.Fontname,
		lt.gdef != nil, lt.gsub != nil, lt.gpos != nil)
}

// --- Glyphs ----------------------------------------------------------------

// GlyphIndex returns the glyph index for a code-point. If the font has no glyph
// for r, 0 (".notdef") is returned.
func (f *ScalableFont) GlyphIndex(r rune) ot.GlyphIndex {
	gid, err := f.SFNT.GlyphIndex(nil, r)
	if err != nil {
		return 0
	}
	return ot.GlyphIndex(gid)
}

// GlyphFor creates the glyph for a code-point, with its advance width in font units.
func (f *ScalableFont) GlyphFor(r rune) otlayout.Glyph {
	gid := f.GlyphIndex(r)
	return otlayout.NewGlyph(gid, f.advance(gid), r)
}

// Glyph makes a ScalableFont an otlayout.GlyphSource. Glyphs created from a glyph
// index alone do not carry a Unicode code-point.
func (f *ScalableFont) Glyph(code ot.GlyphIndex) (otlayout.Glyph, bool) {
	if int(code) >= f.SFNT.NumGlyphs() {
		return otlayout.Glyph{}, false
	}
	return otlayout.NewGlyph(code, f.advance(code), otlayout.NoUnicode), true
}

// advance is the advance width of a glyph in font units.
func (f *ScalableFont) advance(gid ot.GlyphIndex) int {
	adv, err := f.SFNT.GlyphAdvance(nil, sfnt.GlyphIndex(gid), f.unitsPerEm(), font.HintingNone)
	if err != nil {
		tracer().Debugf("no advance for glyph %d: %v", gid, err)
		return 0
	}
	return adv.Round()
}

// unitsPerEm is used as a size for sfnt queries, which then will return values in
// font units.
func (f *ScalableFont) unitsPerEm() fixed.Int26_6 {
	return fixed.I(int(f.SFNT.UnitsPerEm()))
}
