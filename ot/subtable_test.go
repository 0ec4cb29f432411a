package ot

import (
	"errors"
	"testing"

	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func singleSubtable(t *testing.T, gpos bool, lookupType uint16, sub *otbuild.Node) Subtable {
	t.Helper()
	data := otbuild.Layout{Lookups: []*otbuild.Node{otbuild.Lookup(lookupType, 0, sub)}}.Bytes()
	var lyt *LayoutTable
	var err error
	if gpos {
		lyt, err = ParseGPos(data)
	} else {
		lyt, err = ParseGSub(data)
	}
	require.NoError(t, err)
	l := lyt.LookupTable(0)
	require.NotNil(t, l)
	require.Len(t, l.Subtables, 1)
	require.NoError(t, l.Subtables[0].Err)
	return l.Subtables[0]
}

func TestSinglePosFormat2(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	vf := otbuild.XPlacement | otbuild.XAdvance | 0x0040 // plus a device offset
	st := singleSubtable(t, true, 1, otbuild.SinglePos2(otbuild.Coverage1(4, 5), vf,
		[]int16{10, 100, 0}, []int16{-10, 200, 0}))
	assert.Equal(t, GPosSingleFmt2, st.Kind)
	require.Len(t, st.Single.Values, 2)
	assert.Equal(t, ValueRecord{XPlacement: -10, XAdvance: 200}, st.Single.Values[1])
	assert.Equal(t, 6, st.Single.ValueFormat.Size())
}

func TestPairPosFormat2(t *testing.T) {
	cd1 := otbuild.ClassDef1(10, 1)
	cd2 := otbuild.ClassDef1(20, 1, 2)
	records := [][]otbuild.ClassValue{
		{{Value1: []int16{0}}, {Value1: []int16{0}}, {Value1: []int16{0}}},
		{{Value1: []int16{0}}, {Value1: []int16{-30}}, {Value1: []int16{-60}}},
	}
	st := singleSubtable(t, true, 2, otbuild.PairPos2(otbuild.Coverage1(10), otbuild.XAdvance, 0, cd1, cd2, records))
	assert.Equal(t, GPosPairFmt2, st.Kind)
	pp := st.Pair
	assert.Equal(t, uint16(2), pp.Class1Count)
	assert.Equal(t, uint16(3), pp.Class2Count)
	v1, _, ok := pp.ClassPair(pp.ClassDef1.Class(10), pp.ClassDef2.Class(21))
	assert.True(t, ok)
	assert.Equal(t, int16(-60), v1.XAdvance)
	_, _, ok = pp.ClassPair(2, 0)
	assert.False(t, ok)
}

func TestMarkToBaseDecoding(t *testing.T) {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(100, 0)}, {Class: 1, Anchor: otbuild.Anchor(50, -20)}}
	bases := [][]*otbuild.Node{{otbuild.Anchor(856, 700), nil}}
	st := singleSubtable(t, true, 4, otbuild.MarkBasePos(otbuild.Coverage1(7, 8), otbuild.Coverage1(1), 2, marks, bases))
	assert.Equal(t, GPosMarkToBase, st.Kind)
	ma := st.Marks
	assert.Equal(t, uint16(2), ma.ClassCount)
	require.Len(t, ma.Marks, 2)
	assert.Equal(t, &Anchor{X: 50, Y: -20}, ma.Marks[1].Anchor)
	assert.Equal(t, &Anchor{X: 856, Y: 700}, ma.Bases[0][0])
	assert.Nil(t, ma.Bases[0][1])
	assert.True(t, st.Coverage.Contains(8), "primary coverage is the mark coverage")
	assert.True(t, ma.BaseCoverage.Contains(1))
}

func TestMarkToLigatureDecoding(t *testing.T) {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(0, 0)}}
	ligs := [][][]*otbuild.Node{{{nil}, {otbuild.Anchor(400, 0)}}}
	st := singleSubtable(t, true, 5, otbuild.MarkLigPos(otbuild.Coverage1(7), otbuild.Coverage1(4), 1, marks, ligs))
	assert.Equal(t, GPosMarkToLigature, st.Kind)
	require.Len(t, st.Marks.Ligatures, 1)
	require.Len(t, st.Marks.Ligatures[0], 2)
	assert.Nil(t, st.Marks.Ligatures[0][0][0])
	assert.Equal(t, int16(400), st.Marks.Ligatures[0][1][0].X)
}

func TestMarkToMarkDecoding(t *testing.T) {
	marks := []otbuild.MarkRecord{{Class: 0, Anchor: otbuild.Anchor(0, 10)}}
	mark2 := [][]*otbuild.Node{{otbuild.Anchor(0, 300)}}
	st := singleSubtable(t, true, 6, otbuild.MarkMarkPos(otbuild.Coverage1(7), otbuild.Coverage1(8), 1, marks, mark2))
	assert.Equal(t, GPosMarkToMark, st.Kind)
	assert.Equal(t, int16(300), st.Marks.Bases[0][0].Y)
}

func TestLigatureSubstDecoding(t *testing.T) {
	st := singleSubtable(t, false, 4, otbuild.LigatureSubst(otbuild.Coverage1(233),
		[]otbuild.Ligature{{Glyph: 234, Components: []uint16{233, 233}}, {Glyph: 235, Components: []uint16{233}}}))
	assert.Equal(t, GSubLigature, st.Kind)
	require.Len(t, st.Ligature.LigatureSets, 1)
	assert.Equal(t, []Ligature{
		{Glyph: 234, Components: []GlyphIndex{233, 233}},
		{Glyph: 235, Components: []GlyphIndex{233}},
	}, st.Ligature.LigatureSets[0])
}

func TestChainedContextDecoding(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	rule := otbuild.Rule{
		Backtrack: []uint16{2, 1},
		Input:     []uint16{4},
		Lookahead: []uint16{5},
		Records:   []otbuild.LookupRecord{{Index: 1, Lookup: 3}},
	}
	st := singleSubtable(t, false, 6, otbuild.ChainedContext1(otbuild.Coverage1(3), []otbuild.Rule{rule}))
	assert.Equal(t, GSubChainedContextFmt1, st.Kind)
	sc := st.Context
	assert.True(t, sc.Chained)
	require.Len(t, sc.RuleSets, 1)
	assert.Equal(t, SequenceRule{
		Backtrack: []uint16{2, 1},
		Input:     []uint16{4},
		Lookahead: []uint16{5},
		Records:   []SequenceLookupRecord{{SequenceIndex: 1, LookupListIndex: 3}},
	}, sc.RuleSets[0][0])
	//
	cd := otbuild.ClassDef1(1, 1, 2, 3)
	st = singleSubtable(t, true, 8, otbuild.ChainedContext2(otbuild.Coverage1(2), nil, cd, nil,
		nil, nil, []otbuild.Rule{{Input: []uint16{3}}}))
	assert.Equal(t, GPosChainedContextFmt2, st.Kind)
	assert.Len(t, st.Context.RuleSets, 3)
	assert.Nil(t, st.Context.RuleSets[0])
	assert.Equal(t, uint16(2), st.Context.InputClassDef.Class(2))
	assert.Equal(t, uint16(0), st.Context.BacktrackClassDef.Format())
	//
	st = singleSubtable(t, false, 6, otbuild.ChainedContext3(
		[]*otbuild.Node{otbuild.Coverage1(1)},
		[]*otbuild.Node{otbuild.Coverage1(2), otbuild.Coverage1(3)},
		nil,
		otbuild.LookupRecord{Index: 0, Lookup: 1}))
	assert.Equal(t, GSubChainedContextFmt3, st.Kind)
	assert.Len(t, st.Context.BacktrackCoverage, 1)
	assert.Len(t, st.Context.InputCoverage, 2)
	assert.Empty(t, st.Context.LookaheadCoverage)
	assert.True(t, st.Coverage.Contains(2))
}

func TestContextSubtablesAreApplicable(t *testing.T) {
	chain := otbuild.ChainedContext3(
		[]*otbuild.Node{otbuild.Coverage1(1)},
		[]*otbuild.Node{otbuild.Coverage1(233), otbuild.Coverage1(233)},
		[]*otbuild.Node{otbuild.Coverage1(3)},
		otbuild.LookupRecord{Index: 0, Lookup: 1})
	st := singleSubtable(t, false, 6, chain)
	assert.Equal(t, GSubChainedContextFmt3, st.Kind)
	require.NotNil(t, st.Context)
	assert.Equal(t, uint16(3), st.Context.Format)
	//
	st = singleSubtable(t, true, 7, otbuild.Context3([]*otbuild.Node{otbuild.Coverage1(3)}))
	assert.Equal(t, GPosContextFmt3, st.Kind)
	st = singleSubtable(t, true, 8, otbuild.ChainedContext3(nil, []*otbuild.Node{otbuild.Coverage1(3)}, nil))
	assert.Equal(t, GPosChainedContextFmt3, st.Kind)
	// wrapped into an extension lookup
	data := otbuild.Layout{Lookups: []*otbuild.Node{otbuild.Lookup(7, 0, otbuild.Extension(6, chain))}}.Bytes()
	gsub, err := ParseGSub(data)
	require.NoError(t, err)
	l := gsub.LookupTable(0)
	assert.True(t, l.Extension)
	assert.Equal(t, uint16(6), l.Type)
	assert.Equal(t, GSubChainedContextFmt3, l.Subtables[0].Kind)
	assert.NoError(t, l.Err())
}

func TestUnknownContextFormatIsUnsupported(t *testing.T) {
	data := otbuild.Layout{Lookups: []*otbuild.Node{
		otbuild.Lookup(6, 0, otbuild.New().U16(4, 0)),
	}}.Bytes()
	gsub, err := ParseGSub(data)
	require.NoError(t, err)
	st := gsub.LookupTable(0).Subtables[0]
	assert.Equal(t, SubtableUnsupported, st.Kind)
	assert.Nil(t, st.Context)
	assert.True(t, errors.Is(st.Err, ErrUnsupportedFormat), "unknown formats are reported")
}

func TestContextDecoding(t *testing.T) {
	st := singleSubtable(t, true, 7, otbuild.Context1(otbuild.Coverage1(3),
		[]otbuild.Rule{{Input: []uint16{4, 5}, Records: []otbuild.LookupRecord{{Index: 2, Lookup: 0}}}}))
	assert.Equal(t, GPosContextFmt1, st.Kind)
	assert.False(t, st.Context.Chained)
	assert.Equal(t, []uint16{4, 5}, st.Context.RuleSets[0][0].Input)
	//
	st = singleSubtable(t, true, 7, otbuild.Context2(otbuild.Coverage1(3), otbuild.ClassDef1(3, 1),
		nil, []otbuild.Rule{{Input: nil, Records: []otbuild.LookupRecord{{Index: 0, Lookup: 0}}}}))
	assert.Equal(t, GPosContextFmt2, st.Kind)
	assert.Len(t, st.Context.RuleSets[1], 1)
}

func TestUnsupportedGSubTypes(t *testing.T) {
	data := otbuild.Layout{Lookups: []*otbuild.Node{
		otbuild.Lookup(1, 0, otbuild.New().U16(1).Off16(otbuild.Coverage1(1)).I16(1)),
	}}.Bytes()
	gsub, err := ParseGSub(data)
	require.NoError(t, err)
	assert.Equal(t, SubtableUnsupported, gsub.LookupTable(0).Subtables[0].Kind)
	assert.Equal(t, "Unsupported", SubtableUnsupported.String())
	assert.Equal(t, "GSUB-Ligature", GSubLigature.String())
}
