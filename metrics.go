package otshaping

import (
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
	"golang.org/x/image/font"
	"golang.org/x/image/font/sfnt"
)

// --- Font Information -------------------------------------------------

// FontMetricsInfo contains selected metric information for a font.
type FontMetricsInfo struct {
	UnitsPerEm         sfnt.Units // ad-hoc units per em
	Ascent, Descent    sfnt.Units // ascender and descender; descent is negative
	LineGap            sfnt.Units // typographic line gap
	XHeight, CapHeight sfnt.Units
}

// GlyphMetricsInfo contains all metric information for a glyph.
type GlyphMetricsInfo struct {
	Advance  sfnt.Units  // advance width
	LSB, RSB sfnt.Units  // side bearings
	BBox     BoundingBox // bounding box
}

// BoundingBox describes the bounding box of a glyph, with y growing upwards.
type BoundingBox struct {
	MinX, MinY sfnt.Units
	MaxX, MaxY sfnt.Units
}

// IsEmpty reports whether this box has zero area.
func (bbox BoundingBox) IsEmpty() bool {
	return bbox.MaxX-bbox.MinX == 0 || bbox.MaxY-bbox.MinY == 0
}

// Dx returns the horizontal extent of this box.
func (bbox BoundingBox) Dx() sfnt.Units {
	return bbox.MaxX - bbox.MinX
}

// Dy returns the vertical extent of this box.
func (bbox BoundingBox) Dy() sfnt.Units {
	return bbox.MaxY - bbox.MinY
}

// FamilyName extracts family and subfamily names from a font's `name` table.
// Returned values are empty if no matching records exist.
func (f *ScalableFont) FamilyName() (family, subfamily string) {
	family, _ = f.SFNT.Name(nil, sfnt.NameIDFamily)
	subfamily, _ = f.SFNT.Name(nil, sfnt.NameIDSubfamily)
	return
}

// FontMetrics retrieves selected metrics of a font, in font units.
func (f *ScalableFont) FontMetrics() FontMetricsInfo {
	metrics := FontMetricsInfo{UnitsPerEm: f.SFNT.UnitsPerEm()}
	m, err := f.SFNT.Metrics(nil, f.unitsPerEm(), font.HintingNone)
	if err != nil {
		tracer().Errorf("cannot read metrics of %s: %v", f.Fontname, err)
		return metrics
	}
	// sfnt measures descent downwards
	metrics.Ascent = sfnt.Units(m.Ascent.Round())
	metrics.Descent = -sfnt.Units(m.Descent.Round())
	metrics.LineGap = sfnt.Units((m.Height - m.Ascent - m.Descent).Round())
	metrics.XHeight = sfnt.Units(m.XHeight.Round())
	metrics.CapHeight = sfnt.Units(m.CapHeight.Round())
	return metrics
}

// GlyphMetrics retrieves metrics for a given glyph, in font units.
func (f *ScalableFont) GlyphMetrics(gid ot.GlyphIndex) GlyphMetricsInfo {
	metrics := GlyphMetricsInfo{}
	bounds, adv, err := f.SFNT.GlyphBounds(nil, sfnt.GlyphIndex(gid), f.unitsPerEm(), font.HintingNone)
	if err != nil {
		tracer().Debugf("no bounds for glyph %d: %v", gid, err)
		return metrics
	}
	metrics.Advance = sfnt.Units(adv.Round())
	metrics.BBox = BoundingBox{
		MinX: sfnt.Units(bounds.Min.X.Round()),
		MinY: -sfnt.Units(bounds.Max.Y.Round()),
		MaxX: sfnt.Units(bounds.Max.X.Round()),
		MaxY: -sfnt.Units(bounds.Min.Y.Round()),
	}
	// If a glyph has no contours, xMax/xMin are not defined and side bearings
	// are left at zero.
	if !metrics.BBox.IsEmpty() {
		metrics.LSB = metrics.BBox.MinX
		metrics.RSB = metrics.Advance - (metrics.LSB + metrics.BBox.Dx())
	}
	return metrics
}

// SupportsScript returns a tuple (script-tag, language-tag) for a given input
// of a script tag and a language tag. If the language has no special support in the
// font, 0 (the default language system) will be returned. If the script has no
// support in the font, DFLT will be returned for the script.
func (f *ScalableFont) SupportsScript(scr, lang ot.Tag) (ot.Tag, ot.Tag) {
	gsub, gpos, _ := f.Layout()
	for _, r := range []*otlayout.TableReader{gsub, gpos} {
		if r == nil || r.LanguageRecord(scr, 0) == nil {
			continue
		}
		tracer().Debugf("script %s is supported by font %s", scr, f.Fontname)
		if lang != 0 && r.LanguageRecord(scr, lang) != nil {
			return scr, lang
		}
		return scr, 0
	}
	tracer().Infof("cannot find script %s in font", scr)
	return ot.DFLT, 0
}
