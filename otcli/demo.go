package main

import (
	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
	"github.com/pterm/pterm"
)

// Glyphs of the demo tables.
const (
	demoF, demoI, demoFi, demoAcute = 1, 2, 3, 4
)

type demoGlyphs map[ot.GlyphIndex]otlayout.Glyph

func (m demoGlyphs) Glyph(code ot.GlyphIndex) (otlayout.Glyph, bool) {
	g, ok := m[code]
	return g, ok
}

// demoOp shapes "fí" with synthetic layout tables: a 'liga' feature forming
// the ligature "fi" and a 'mark' feature attaching an acute accent to it.
func demoOp(intp *Intp, op *Op) (err error, stop bool) {
	latn := []otbuild.Script{{Tag: "latn", Default: &otbuild.LangSys{Features: []uint16{0}}}}
	gdef, err := ot.ParseGDef(otbuild.GDEF(otbuild.ClassDef1(demoF, 1, 1, 2, 3), nil).Bytes())
	if err != nil {
		return err, false
	}
	glyphs := demoGlyphs{demoFi: otlayout.NewGlyph(demoFi, 550, otlayout.NoUnicode)}
	gsub, err := otlayout.NewGSubReader(otbuild.Layout{
		Scripts:  latn,
		Features: []otbuild.Feature{{Tag: "liga", Lookups: []uint16{0}}},
		Lookups: []*otbuild.Node{
			otbuild.Lookup(4, uint16(ot.LOOKUP_FLAG_IGNORE_MARKS), otbuild.LigatureSubst(otbuild.Coverage1(demoF),
				[]otbuild.Ligature{{Glyph: demoFi, Components: []uint16{demoI}}})),
		},
	}.Bytes(), gdef, glyphs)
	if err != nil {
		return err, false
	}
	gpos, err := otlayout.NewGPosReader(otbuild.Layout{
		Scripts:  latn,
		Features: []otbuild.Feature{{Tag: "mark", Lookups: []uint16{0}}},
		Lookups: []*otbuild.Node{
			otbuild.Lookup(5, 0, otbuild.MarkLigPos(otbuild.Coverage1(demoAcute), otbuild.Coverage1(demoFi), 1,
				[]otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(100, 0)}},
				[][][]*otbuild.Node{{{otbuild.Anchor(150, 700)}, {otbuild.Anchor(420, 700)}}})),
		},
	}.Bytes(), gdef, glyphs)
	if err != nil {
		return err, false
	}
	line := otlayout.NewGlyphLine([]otlayout.Glyph{
		otlayout.NewGlyph(demoF, 300, 'f'),
		otlayout.NewGlyph(demoI, 250, 'i'),
		otlayout.NewGlyph(demoAcute, 0, '\u0301'),
	})
	scripts := []ot.Tag{ot.T("latn")}
	for _, r := range []*otlayout.TableReader{gsub, gpos} {
		pterm.Info.Printf("applying %s features\n", r.Table().Tag)
		if err := r.ApplyFeatures(line, r.Features(scripts, 0)); err != nil {
			return err, false
		}
		printGlyphLine(line)
	}
	return nil, false
}
