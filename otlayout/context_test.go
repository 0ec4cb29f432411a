package otlayout

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cov(glyphs ...uint16) []*otbuild.Node {
	var r []*otbuild.Node
	for _, g := range glyphs {
		r = append(r, otbuild.Coverage1(g))
	}
	return r
}

// chainedLigature builds a GSUB table: lookup 0 forms ligature 233+233 → 234,
// but only after glyph 1 and before glyph 3. Lookup 1 is the ligature lookup.
func chainedLigature(t *testing.T) *TableReader {
	chain := otbuild.ChainedContext3(cov(1), cov(233, 233), cov(3), otbuild.LookupRecord{Index: 0, Lookup: 1})
	lig := otbuild.LigatureSubst(otbuild.Coverage1(233), []otbuild.Ligature{{Glyph: 234, Components: []uint16{233}}})
	return gsubReader(t, nil, nil, otbuild.Lookup(6, 0, chain), otbuild.Lookup(4, 0, lig))
}

func TestChainedContextSubstitution(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gsub := chainedLigature(t)
	lookup := gsub.LookupTable(0)
	line := testLine(1, 233, 233, 3)
	line.SetIndex(1)
	assert.True(t, lookup.TransformOne(line))
	assert.Equal(t, []ot.GlyphIndex{1, 234, 3}, codes(line))
	assert.Equal(t, 0, line.Start(), "window start is restored")
	assert.Equal(t, 3, line.End(), "window end shrinks by the glyphs consumed")
	assert.Equal(t, 2, line.Index(), "position is after the input sequence")
}

func TestChainedContextAppliedByFeature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	lyt := otbuild.Layout{
		Scripts:  []otbuild.Script{{Tag: "latn", Default: &otbuild.LangSys{Features: []uint16{0}}}},
		Features: []otbuild.Feature{{Tag: "calt", Lookups: []uint16{0}}},
		Lookups: []*otbuild.Node{
			otbuild.Lookup(6, 0, otbuild.ChainedContext3(cov(1), cov(233, 233), cov(3),
				otbuild.LookupRecord{Index: 0, Lookup: 1})),
			otbuild.Lookup(4, 0, otbuild.LigatureSubst(otbuild.Coverage1(233),
				[]otbuild.Ligature{{Glyph: 234, Components: []uint16{233}}})),
		},
	}
	gsub, err := NewGSubReader(lyt.Bytes(), nil, glyphMap{234: NewGlyph(234, 700, NoUnicode)})
	require.NoError(t, err)
	assert.Equal(t, ot.GSubChainedContextFmt3, gsub.LookupTable(0).Subtables[0].Kind)
	line := testLine(1, 233, 233, 3)
	require.NoError(t, gsub.ApplyFeatures(line, gsub.Features([]ot.Tag{ot.T("latn")}, 0)))
	if diff := cmp.Diff([]ot.GlyphIndex{1, 234, 3}, codes(line)); diff != "" {
		t.Errorf("unexpected glyphs after chained substitution (-want +got):\n%s", diff)
	}
	assert.Equal(t, 700, line.Get(1).Width)
	assert.Equal(t, "ii", line.Get(1).Text(), "ligature carries the chars of its components")
	assert.Equal(t, "AiiC", line.String())
	assert.Equal(t, 3, line.End())
}

func TestChainedContextNoMatch(t *testing.T) {
	gsub := chainedLigature(t)
	lookup := gsub.LookupTable(0)
	for _, input := range [][]ot.GlyphIndex{
		{2, 233, 233, 3}, // backtrack
		{1, 233, 233, 2}, // lookahead
		{1, 233, 2, 3},   // input
	} {
		line := testLine(input...)
		line.SetIndex(1)
		if lookup.TransformOne(line) {
			t.Errorf("expected no match for %v", input)
		}
		if line.Index() != 2 || line.Len() != 4 {
			t.Errorf("unexpected state after failed match: idx=%d, len=%d", line.Index(), line.Len())
		}
	}
	// lookahead beyond window
	line := NewGlyphLineWindow([]Glyph{testGlyph(1), testGlyph(233), testGlyph(233), testGlyph(3)}, 0, 3)
	line.SetIndex(1)
	assert.False(t, lookup.TransformOne(line))
}

func TestChainedContextLine(t *testing.T) {
	gsub := chainedLigature(t)
	line := testLine(1, 233, 233, 3, 233, 233, 3)
	assert.True(t, gsub.LookupTable(0).TransformLine(line))
	assert.Equal(t, []ot.GlyphIndex{1, 234, 3, 233, 233, 3}, codes(line))
	assert.Equal(t, 6, line.End())
	assert.Equal(t, 6, line.Index())
}

func TestChainedContextByGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	rule := otbuild.Rule{
		Backtrack: []uint16{2, 1},
		Input:     []uint16{4},
		Lookahead: []uint16{5},
		Records:   []otbuild.LookupRecord{{Index: 1, Lookup: 1}},
	}
	chain := otbuild.ChainedContext1(otbuild.Coverage1(3), []otbuild.Rule{rule})
	single := otbuild.SinglePos1(otbuild.Coverage1(4, 5), otbuild.YPlacement, 50)
	gpos := gposReader(t, nil, otbuild.Lookup(8, 0, chain), otbuild.Lookup(1, 0, single))
	line := testLine(1, 2, 3, 4, 5)
	assert.True(t, gpos.LookupTable(0).TransformLine(line))
	assert.Equal(t, 50, line.Get(3).YPlacement)
	assert.Equal(t, 0, line.Get(4).YPlacement, "lookahead is outside of the input sequence")
	// backtrack is matched closest glyph first
	line = testLine(2, 1, 3, 4, 5)
	assert.False(t, gpos.LookupTable(0).TransformLine(line))
}

func TestContextByClasses(t *testing.T) {
	rule := otbuild.Rule{Input: []uint16{2}, Records: []otbuild.LookupRecord{{Index: 1, Lookup: 1}}}
	ctx := otbuild.Context2(otbuild.Coverage1(3), otbuild.ClassDef1(3, 1, 2), nil, []otbuild.Rule{rule})
	single := otbuild.SinglePos1(otbuild.Coverage1(4), otbuild.XAdvance, -15)
	gpos := gposReader(t, nil, otbuild.Lookup(7, 0, ctx), otbuild.Lookup(1, 0, single))
	line := testLine(3, 4, 3, 4, 4)
	assert.True(t, gpos.LookupTable(0).TransformLine(line))
	assert.Equal(t, []int{0, -15, 0, -15, 0}, []int{
		line.Get(0).XAdvance, line.Get(1).XAdvance, line.Get(2).XAdvance,
		line.Get(3).XAdvance, line.Get(4).XAdvance,
	})
}

func TestContextSkipsMarks(t *testing.T) {
	rule := otbuild.Rule{Input: []uint16{uint16(baseB)}, Records: []otbuild.LookupRecord{{Index: 1, Lookup: 1}}}
	ctx := otbuild.Context1(otbuild.Coverage1(uint16(baseA)), []otbuild.Rule{rule})
	single := otbuild.SinglePos1(otbuild.Coverage1(uint16(baseB)), otbuild.XAdvance, 25)
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(7, 0x0008, ctx), otbuild.Lookup(1, 0, single))
	line := testLine(baseA, mark1, baseB)
	assert.True(t, gpos.LookupTable(0).TransformLine(line))
	assert.Equal(t, 25, line.Get(2).XAdvance, "sequence index counts glyphs not skipped")
	assert.Equal(t, 3, line.Index())
}

func TestContextMissingNestedLookup(t *testing.T) {
	ctx := otbuild.Context3(cov(3), otbuild.LookupRecord{Index: 0, Lookup: 99})
	gpos := gposReader(t, nil, otbuild.Lookup(7, 0, ctx))
	line := testLine(3, 3)
	assert.True(t, gpos.LookupTable(0).TransformLine(line), "context matched")
	assert.Equal(t, 2, line.Index())
	assert.False(t, line.Get(0).HasAdvance())
}

func TestContextRecursionTerminates(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	ctx := otbuild.Context3(cov(3), otbuild.LookupRecord{Index: 0, Lookup: 0})
	gpos := gposReader(t, nil, otbuild.Lookup(7, 0, ctx))
	line := testLine(3, 3)
	assert.True(t, gpos.LookupTable(0).TransformLine(line))
	assert.Equal(t, 2, line.Index())
	assert.Equal(t, 0, line.Start())
	assert.Equal(t, 2, line.End())
}
