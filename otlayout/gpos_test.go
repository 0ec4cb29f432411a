package otlayout

import (
	"testing"

	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSinglePositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gpos := gposReader(t, nil, otbuild.Lookup(1, 0, otbuild.SinglePos1(otbuild.Coverage1(3), otbuild.XAdvance, 219)))
	lookup := gpos.LookupTable(0)
	require.NotNil(t, lookup)
	line := testLine(3, 1)
	assert.True(t, lookup.TransformOne(line))
	assert.Equal(t, 219, line.Get(0).XAdvance)
	assert.Equal(t, 1, line.Index())
	assert.False(t, lookup.TransformOne(line), "glyph 1 is not covered")
	assert.Equal(t, 0, line.Get(1).XAdvance)
	assert.Equal(t, 2, line.Index())
	assert.False(t, lookup.TransformOne(line), "at end of window")
	assert.Equal(t, 2, line.Index())
}

func TestSinglePositioningAccumulates(t *testing.T) {
	gpos := gposReader(t, nil,
		otbuild.Lookup(1, 0, otbuild.SinglePos2(otbuild.Coverage1(3, 4), otbuild.XPlacement|otbuild.XAdvance,
			[]int16{5, 10}, []int16{-5, 20})))
	lookup := gpos.LookupTable(0)
	line := testLine(3, 4, 3)
	assert.True(t, lookup.TransformLine(line))
	assert.True(t, lookup.TransformLine(line))
	assert.Equal(t, 20, line.Get(0).XAdvance)
	assert.Equal(t, 10, line.Get(0).XPlacement)
	assert.Equal(t, 40, line.Get(1).XAdvance)
	assert.Equal(t, -10, line.Get(1).XPlacement)
	assert.Equal(t, line.End(), line.Index())
}

func TestPairPositioning(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	pair := otbuild.PairPos1(otbuild.Coverage1(10), otbuild.XAdvance, 0,
		[]otbuild.PairValue{{Second: 11, Value1: []int16{-50}}})
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(2, 0x0008, pair))
	lookup := gpos.LookupTable(0)
	// a mark between the pair is skipped
	line := testLine(10, mark1, 11)
	assert.True(t, lookup.TransformOne(line))
	assert.Equal(t, -50, line.Get(0).XAdvance)
	assert.Equal(t, 0, line.Get(2).XAdvance)
	assert.Equal(t, 2, line.Index(), "position moves to the second glyph")
	// no second glyph within the window
	line = NewGlyphLineWindow([]Glyph{testGlyph(10), testGlyph(11)}, 0, 1)
	assert.False(t, lookup.TransformOne(line))
	assert.Equal(t, 1, line.Index())
	// nothing happens at the end of the window
	line = testLine(10, 11)
	line.SetIndex(2)
	assert.False(t, lookup.TransformOne(line))
	assert.Equal(t, 2, line.Index())
}

func TestPairPositioningWithoutSkipping(t *testing.T) {
	pair := otbuild.PairPos1(otbuild.Coverage1(10), otbuild.XAdvance, 0,
		[]otbuild.PairValue{{Second: 11, Value1: []int16{-50}}})
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(2, 0, pair))
	line := testLine(10, mark1, 11)
	assert.False(t, gpos.LookupTable(0).TransformOne(line))
	assert.Equal(t, 1, line.Index())
	assert.Equal(t, 0, line.Get(0).XAdvance)
}

func TestPairPositioningByClass(t *testing.T) {
	records := [][]otbuild.ClassValue{
		{{Value1: []int16{0}, Value2: []int16{0}}, {Value1: []int16{0}, Value2: []int16{0}}},
		{{Value1: []int16{0}, Value2: []int16{0}}, {Value1: []int16{-30}, Value2: []int16{7}}},
	}
	pair := otbuild.PairPos2(otbuild.Coverage1(10), otbuild.XAdvance, otbuild.XPlacement,
		otbuild.ClassDef1(10, 1), otbuild.ClassDef1(11, 1), records)
	gpos := gposReader(t, nil, otbuild.Lookup(2, 0, pair))
	lookup := gpos.LookupTable(0)
	line := testLine(10, 11, 10, 12)
	assert.True(t, lookup.TransformLine(line))
	assert.Equal(t, -30, line.Get(0).XAdvance)
	assert.Equal(t, 7, line.Get(1).XPlacement)
	assert.Equal(t, 0, line.Get(2).XAdvance, "class pair (1,0) has a zero record")
}

func markToBaseLookup() *otbuild.Node {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(100, 0)}}
	bases := [][]*otbuild.Node{{otbuild.Anchor(856, 700)}}
	return otbuild.Lookup(4, 0, otbuild.MarkBasePos(otbuild.Coverage1(uint16(mark1)),
		otbuild.Coverage1(uint16(baseA)), 1, marks, bases))
}

func TestMarkToBase(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gpos := gposReader(t, testGDef(t), markToBaseLookup())
	lookup := gpos.LookupTable(0)
	line := testLine(baseA, mark1)
	line.SetIndex(1)
	assert.True(t, lookup.TransformOne(line))
	g := line.Get(1)
	assert.Equal(t, 756, g.XPlacement)
	assert.Equal(t, 700, g.YPlacement)
	assert.Equal(t, -1, g.AnchorDelta)
	assert.True(t, g.HasPlacement())
	assert.Equal(t, 2, line.Index())
	// other marks between base and mark are stepped over
	line = testLine(baseA, mark2, mark1)
	line.SetIndex(2)
	assert.True(t, lookup.TransformOne(line))
	assert.Equal(t, -2, line.Get(2).AnchorDelta)
	assert.Equal(t, 756, line.Get(2).XPlacement)
}

func TestMarkToBaseNoBase(t *testing.T) {
	gpos := gposReader(t, testGDef(t), markToBaseLookup())
	lookup := gpos.LookupTable(0)
	line := testLine(baseB, mark1) // baseB is not covered
	line.SetIndex(1)
	assert.False(t, lookup.TransformOne(line))
	assert.Equal(t, 2, line.Index())
	assert.False(t, line.Get(1).HasPlacement())
	line = testLine(mark1) // no base at all
	assert.False(t, lookup.TransformOne(line))
	assert.Equal(t, 1, line.Index())
	// the base has to be inside the window
	line = NewGlyphLineWindow([]Glyph{testGlyph(baseA), testGlyph(mark1)}, 1, 2)
	assert.False(t, lookup.TransformOne(line))
}

func TestMarkToBaseNullAnchor(t *testing.T) {
	marks := []otbuild.MarkRecord{{Class: 1, Anchor: otbuild.Anchor(100, 0)}}
	bases := [][]*otbuild.Node{{otbuild.Anchor(856, 700), nil}}
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(4, 0, otbuild.MarkBasePos(otbuild.Coverage1(uint16(mark1)),
		otbuild.Coverage1(uint16(baseA)), 2, marks, bases)))
	line := testLine(baseA, mark1)
	line.SetIndex(1)
	assert.False(t, gpos.LookupTable(0).TransformOne(line), "base has no anchor for the mark's class")
	assert.Equal(t, testGlyph(mark1), line.Get(1))
	assert.Equal(t, 2, line.Index())
}

func TestMarkToLigature(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(36, 0)}}
	ligs := [][][]*otbuild.Node{{{nil}, {otbuild.Anchor(400, 0)}}}
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(5, 0,
		otbuild.MarkLigPos(otbuild.Coverage1(uint16(mark1)), otbuild.Coverage1(uint16(ligature)), 1, marks, ligs)))
	lookup := gpos.LookupTable(0)
	line := testLine(ligature, mark2, mark1)
	line.SetIndex(2)
	assert.True(t, lookup.TransformOne(line))
	g := line.Get(2)
	assert.Equal(t, -2, g.AnchorDelta)
	assert.Equal(t, 364, g.XPlacement, "first component without anchor is passed over")
	assert.Equal(t, 0, g.XAdvance)
}

func TestMarkToLigatureComponent(t *testing.T) {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(36, 0)}}
	ligs := [][][]*otbuild.Node{{{otbuild.Anchor(100, 0)}, {otbuild.Anchor(400, 0)}}}
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(5, 0,
		otbuild.MarkLigPos(otbuild.Coverage1(uint16(mark1)), otbuild.Coverage1(uint16(ligature)), 1, marks, ligs)))
	lookup := gpos.LookupTable(0)
	tests := []struct {
		component int
		x         int
	}{
		{0, 64},
		{1, 64},
		{2, 364},
		{3, 64}, // invalid component
	}
	for _, tt := range tests {
		line := testLine(ligature, mark1)
		m := line.Get(1)
		m.LigComponent = tt.component
		line.Set(1, m)
		line.SetIndex(1)
		if !lookup.TransformOne(line) {
			t.Errorf("component %d: expected mark to be attached", tt.component)
			continue
		}
		if x := line.Get(1).XPlacement; x != tt.x {
			t.Errorf("component %d: expected x placement %d, got %d", tt.component, tt.x, x)
		}
	}
}

func markToMarkLookup() *otbuild.Node {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(0, 10)}}
	mark2s := [][]*otbuild.Node{{otbuild.Anchor(0, 300)}}
	return otbuild.Lookup(6, 0, otbuild.MarkMarkPos(otbuild.Coverage1(uint16(mark1)),
		otbuild.Coverage1(uint16(mark2)), 1, marks, mark2s))
}

func TestMarkToMark(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.layout")
	defer teardown()
	//
	gpos := gposReader(t, testGDef(t), markToMarkLookup())
	lookup := gpos.LookupTable(0)
	line := testLine(baseA, mark2, mark1)
	line.SetIndex(2)
	assert.True(t, lookup.TransformOne(line))
	assert.Equal(t, 290, line.Get(2).YPlacement)
	assert.Equal(t, -1, line.Get(2).AnchorDelta)
	assert.Equal(t, 3, line.Index())
}

func TestMarkToMarkAcrossBase(t *testing.T) {
	gpos := gposReader(t, testGDef(t), markToMarkLookup())
	lookup := gpos.LookupTable(0)
	line := testLine(mark2, baseA, mark1)
	line.SetIndex(2)
	assert.False(t, lookup.TransformOne(line), "marks of different clusters do not attach")
	assert.Equal(t, 3, line.Index())
	// at end of window
	line = testLine(mark2, mark1)
	line.SetIndex(2)
	assert.False(t, lookup.TransformOne(line))
	assert.Equal(t, 2, line.Index())
}

func TestUnsupportedLookupAdvances(t *testing.T) {
	gpos := gposReader(t, nil, otbuild.Lookup(3, 0, otbuild.New().U16(1, 0, 0)))
	lookup := gpos.LookupTable(0)
	require.Error(t, lookup.Err())
	line := testLine(1, 2)
	assert.False(t, lookup.TransformLine(line))
	assert.Equal(t, 2, line.Index())
}

func TestSkippedGlyphAdvances(t *testing.T) {
	gpos := gposReader(t, testGDef(t), otbuild.Lookup(1, 0x0008,
		otbuild.SinglePos1(otbuild.Coverage1(uint16(mark1)), otbuild.XAdvance, 10)))
	line := testLine(mark1)
	assert.False(t, gpos.LookupTable(0).TransformOne(line), "marks are ignored")
	assert.Equal(t, 1, line.Index())
	assert.Equal(t, 0, line.Get(0).XAdvance)
	assert.True(t, gpos.IsSkip(mark1, ot.LOOKUP_FLAG_IGNORE_MARKS))
}
