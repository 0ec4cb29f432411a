package otshaping

import (
	"slices"

	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
)

// ShapeOptions select the script, language and features to shape with.
type ShapeOptions struct {
	Script   []ot.Tag // script tags in order of preference; nil to derive them from the text
	Language ot.Tag   // language system tag; 0 for the default language system
	Features []ot.Tag // features to apply; nil for the default features
}

// Default features, if not set otherwise in ShapeOptions.
var (
	DefaultGSubFeatures = []ot.Tag{
		ot.T("ccmp"), ot.T("locl"), ot.T("rlig"), ot.T("liga"), ot.T("clig"), ot.T("calt"),
	}
	DefaultGPosFeatures = []ot.Tag{
		ot.T("kern"), ot.T("mark"), ot.T("mkmk"),
	}
)

// Shape maps text to glyphs and applies first the GSUB and then the GPOS features
// for the script and language given by opts. Required features of the language
// system are always applied.
//
// Positioning adjustments are in font units. Lookups the font's tables do not decode
// correctly are applied as far as possible; errors are traced but not returned.
// An error is returned if the font's layout tables cannot be decoded at all, together
// with the unshaped glyph line.
func (f *ScalableFont) Shape(text string, opts ShapeOptions) (*otlayout.GlyphLine, error) {
	glyphs := make([]otlayout.Glyph, 0, len(text))
	for _, r := range text {
		glyphs = append(glyphs, f.GlyphFor(r))
	}
	line := otlayout.NewGlyphLine(glyphs)
	gsub, gpos, err := f.Layout()
	if err != nil {
		return line, err
	}
	scripts := opts.Script
	if scripts == nil {
		scripts = ScriptTagsFor(text)
	}
	tracer().Debugf("shaping %q with scripts %v, language '%s'", text, scripts, opts.Language)
	if gsub != nil {
		features := selectFeatures(gsub, scripts, opts.Language, opts.Features, DefaultGSubFeatures)
		applyFeatures(gsub, line, features)
	}
	if gpos != nil {
		features := selectFeatures(gpos, scripts, opts.Language, opts.Features, DefaultGPosFeatures)
		applyFeatures(gpos, line, features)
	}
	return line, nil
}

// selectFeatures returns the required feature, if any, followed by the features
// of tags (or of defaults, if tags is nil).
func selectFeatures(r *otlayout.TableReader, scripts []ot.Tag, lang ot.Tag, tags, defaults []ot.Tag) []*ot.Feature {
	if tags == nil {
		tags = defaults
	}
	features := r.SpecificFeatures(r.Features(scripts, lang), tags)
	if req := r.RequiredFeature(scripts, lang); req != nil && !slices.Contains(features, req) {
		features = append([]*ot.Feature{req}, features...)
	}
	return features
}

func applyFeatures(r *otlayout.TableReader, line *otlayout.GlyphLine, features []*ot.Feature) {
	if len(features) == 0 {
		return
	}
	line.SetIndex(line.Start())
	if err := r.ApplyFeatures(line, features); err != nil {
		// details have already been traced per lookup
		tracer().Debugf("%s: some lookups are not applicable", r.Table().Tag)
	}
}
