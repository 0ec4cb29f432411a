package otlayout

import (
	"sync"

	"github.com/npillmayer/otshaping/ot"
)

// GlyphSource provides glyphs for glyph IDs. Ligature substitution needs it to
// create the glyph for a ligature, together with its advance width and Unicode
// mapping, if any.
type GlyphSource interface {
	Glyph(code ot.GlyphIndex) (Glyph, bool)
}

// TableReader applies the lookups of a GSUB or GPOS table. It wraps the decoded
// table together with the font's GDEF table (which may be nil) and a glyph source
// (which may be nil as well).
//
// A TableReader is safe for concurrent use, provided that each goroutine works on
// a glyph line of its own.
type TableReader struct {
	table    *ot.LayoutTable
	gdef     *ot.GDef
	glyphs   GlyphSource
	reported sync.Map // lookup index → struct{}, for lookups with errors
}

// NewGSubReader parses a GSUB table and creates a reader for it.
func NewGSubReader(gsub []byte, gdef *ot.GDef, glyphs GlyphSource) (*TableReader, error) {
	table, err := ot.ParseGSub(gsub)
	if err != nil {
		return nil, err
	}
	return NewTableReader(table, gdef, glyphs), nil
}

// NewGPosReader parses a GPOS table and creates a reader for it.
func NewGPosReader(gpos []byte, gdef *ot.GDef, glyphs GlyphSource) (*TableReader, error) {
	table, err := ot.ParseGPos(gpos)
	if err != nil {
		return nil, err
	}
	return NewTableReader(table, gdef, glyphs), nil
}

// NewTableReader creates a reader for an already decoded layout table.
func NewTableReader(table *ot.LayoutTable, gdef *ot.GDef, glyphs GlyphSource) *TableReader {
	if table == nil {
		panic("otlayout: table reader needs a layout table")
	}
	return &TableReader{table: table, gdef: gdef, glyphs: glyphs}
}

// Table returns the underlying layout table.
func (r *TableReader) Table() *ot.LayoutTable { return r.table }

// GDef returns the GDEF table the reader uses for glyph classes. May be nil.
func (r *TableReader) GDef() *ot.GDef { return r.gdef }

// LookupCount is the number of lookups in the table's lookup list.
func (r *TableReader) LookupCount() int {
	return r.table.LookupCount()
}

// LookupTable returns lookup number i, or nil if i is out of range.
// Decoding of lookups is cached by the underlying table.
func (r *TableReader) LookupTable(i int) *Lookup {
	l := r.table.LookupTable(i)
	if l == nil {
		return nil
	}
	return &Lookup{Lookup: l, reader: r}
}

// Features returns the features for the first of scripts found in the table and for
// language lang (0 for the default language system). See ot.LayoutTable.Features.
func (r *TableReader) Features(scripts []ot.Tag, lang ot.Tag) []*ot.Feature {
	return r.table.Features(scripts, lang)
}

// RequiredFeature returns the required feature for scripts and lang, if any.
func (r *TableReader) RequiredFeature(scripts []ot.Tag, lang ot.Tag) *ot.Feature {
	return r.table.RequiredFeature(scripts, lang)
}

// LanguageRecord returns the language system for script and lang, or nil.
func (r *TableReader) LanguageRecord(script, lang ot.Tag) *ot.LangSys {
	return r.table.LanguageRecord(script, lang)
}

// SpecificFeatures filters features by tag. With tags == nil all candidates pass.
func (r *TableReader) SpecificFeatures(candidates []*ot.Feature, tags []ot.Tag) []*ot.Feature {
	return r.table.SpecificFeatures(candidates, tags)
}

// IsSkip tells whether a lookup with flag will skip glyph g.
func (r *TableReader) IsSkip(g ot.GlyphIndex, flag ot.LookupFlag) bool {
	return r.gdef.IsSkip(g, flag)
}

// Glyph returns the glyph for glyph ID code from the reader's glyph source.
// Without a source, or for unknown glyph IDs, a bare glyph with no Unicode
// mapping is returned.
func (r *TableReader) Glyph(code ot.GlyphIndex) Glyph {
	if r.glyphs != nil {
		if g, ok := r.glyphs.Glyph(code); ok {
			g.Code = code
			return g
		}
	}
	return Glyph{Code: code, Unicode: NoUnicode}
}

func (r *TableReader) glyphClass(g ot.GlyphIndex) ot.GlyphClass {
	return r.gdef.GlyphClass(g)
}

// reportOnce traces the errors of a lookup the first time it is applied.
func (r *TableReader) reportOnce(l *Lookup, err error) {
	if _, seen := r.reported.LoadOrStore(l.Index, struct{}{}); !seen {
		tracer().Errorf("%s lookup #%d: %v", r.table.Tag, l.Index, err)
	}
}
