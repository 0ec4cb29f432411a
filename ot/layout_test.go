package ot

import (
	"errors"
	"sync"
	"testing"

	"github.com/npillmayer/otshaping/internal/otbuild"
	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testGPos builds a GPOS table with
//
//	features: 0 kern→[0], 1 liga→[1], 2 kern→[2], 3 mark→[3,4]
//	scripts:  DFLT default→{0}; latn default→{2,0,0}, DEU →{1} required 3
//	lookups:  0 single, 1 pair (extension), 2 cursive, 3 malformed, 4 context
func testGPos(t *testing.T) *LayoutTable {
	badSingle := otbuild.New().U16(1, 0xFFF0, uint16(otbuild.XAdvance), 10)
	lyt := otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "DFLT", Default: &otbuild.LangSys{Features: []uint16{0}}},
			{Tag: "latn", Default: &otbuild.LangSys{Features: []uint16{2, 0, 0}},
				Langs: []otbuild.LangSys{{Tag: "DEU", Features: []uint16{1}, Required: 3, HasRequired: true}}},
		},
		Features: []otbuild.Feature{
			{Tag: "kern", Lookups: []uint16{0}},
			{Tag: "liga", Lookups: []uint16{1}},
			{Tag: "kern", Lookups: []uint16{2}},
			{Tag: "mark", Lookups: []uint16{3, 4}},
		},
		Lookups: []*otbuild.Node{
			otbuild.Lookup(1, 0, otbuild.SinglePos1(otbuild.Coverage1(3), otbuild.XAdvance, 219)),
			otbuild.Lookup(9, 0, otbuild.Extension(2, otbuild.PairPos1(otbuild.Coverage1(10), otbuild.XAdvance, 0,
				[]otbuild.PairValue{{Second: 11, Value1: []int16{-50}}}))),
			otbuild.Lookup(3, 0, otbuild.New().U16(1, 0, 0)),
			otbuild.Lookup(1, 0, badSingle),
			otbuild.Lookup(7, 0, otbuild.Context3([]*otbuild.Node{otbuild.Coverage1(3)},
				otbuild.LookupRecord{Index: 0, Lookup: 0})),
		},
	}
	gpos, err := ParseGPos(lyt.Bytes())
	require.NoError(t, err)
	return gpos
}

func featureIndices(features []*Feature) []int {
	var r []int
	for _, f := range features {
		r = append(r, f.Index())
	}
	return r
}

func TestLayoutScriptsAndFeatures(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gpos := testGPos(t)
	assert.True(t, gpos.IsGPos())
	assert.Equal(t, 2, gpos.ScriptList.Len())
	assert.Equal(t, 4, gpos.FeatureList.Len())
	assert.Len(t, gpos.FeatureList.All(T("kern")), 2)
	latn := T("latn")
	// first resolvable script wins, zero and unknown tags are skipped
	features := gpos.Features([]Tag{T("xxxx"), 0, latn}, 0)
	assert.Equal(t, []int{0, 2}, featureIndices(features), "duplicates removed, sorted by index")
	features = gpos.Features([]Tag{latn}, T("DEU"))
	assert.Equal(t, []int{1}, featureIndices(features))
	assert.Equal(t, 3, gpos.RequiredFeature([]Tag{latn}, T("DEU")).Index())
	assert.Nil(t, gpos.RequiredFeature([]Tag{latn}, 0))
	// unknown language falls back to default language system
	features = gpos.Features([]Tag{latn}, T("FRA"))
	assert.Equal(t, []int{0, 2}, featureIndices(features))
	// unknown script falls back to DFLT
	features = gpos.Features([]Tag{T("grek")}, 0)
	assert.Equal(t, []int{0}, featureIndices(features))
	features = gpos.Features(nil, 0)
	assert.Equal(t, []int{0}, featureIndices(features))
}

func TestLayoutDuplicateRequestedScripts(t *testing.T) {
	gpos := testGPos(t)
	latn, dflt := T("latn"), T("DFLT")
	for _, lang := range []Tag{0, T("DEU"), T("FRA")} {
		once := gpos.Features([]Tag{latn, dflt}, lang)
		twice := gpos.Features([]Tag{latn, latn, dflt}, lang)
		assert.Equal(t, featureIndices(once), featureIndices(twice), "lang %s", lang)
		assert.Equal(t, gpos.RequiredFeature([]Tag{latn, dflt}, lang),
			gpos.RequiredFeature([]Tag{latn, latn, dflt}, lang))
	}
	// an unresolvable tag in front of DFLT does not change the result
	assert.Equal(t, []int{0}, featureIndices(gpos.Features([]Tag{T("xxxx"), dflt}, 0)))
	assert.Equal(t, featureIndices(gpos.Features([]Tag{dflt}, 0)),
		featureIndices(gpos.Features([]Tag{T("xxxx"), dflt, dflt}, 0)))
}

func TestLayoutLanguageRecord(t *testing.T) {
	gpos := testGPos(t)
	latn := T("latn")
	assert.NotNil(t, gpos.LanguageRecord(latn, 0))
	assert.NotNil(t, gpos.LanguageRecord(latn, T("DEU")))
	assert.Nil(t, gpos.LanguageRecord(latn, T("FRA")))
	assert.Nil(t, gpos.LanguageRecord(T("grek"), 0))
	assert.Equal(t, T("DEU"), gpos.LanguageRecord(latn, T("DEU")).Tag)
}

func TestLayoutSpecificFeatures(t *testing.T) {
	gpos := testGPos(t)
	all := gpos.Features([]Tag{T("latn")}, 0)
	assert.Equal(t, all, gpos.SpecificFeatures(all, nil))
	assert.Empty(t, gpos.SpecificFeatures(all, []Tag{T("liga")}))
	kern := gpos.SpecificFeatures(all, []Tag{T("kern"), T("liga")})
	assert.Equal(t, []int{0, 2}, featureIndices(kern))
}

func TestLayoutNoDefaultScript(t *testing.T) {
	lyt := otbuild.Layout{
		Scripts:  []otbuild.Script{{Tag: "latn", Default: &otbuild.LangSys{}}},
		Features: nil,
		Lookups:  nil,
	}
	gsub, err := ParseGSub(lyt.Bytes())
	require.NoError(t, err)
	assert.Nil(t, gsub.Features([]Tag{T("arab")}, 0), "no script resolves")
	features := gsub.Features([]Tag{T("latn")}, 0)
	assert.NotNil(t, features)
	assert.Empty(t, features)
	assert.Equal(t, 0, gsub.LookupCount())
	assert.Nil(t, gsub.LookupTable(0))
}

func TestLayoutDuplicateScriptRecords(t *testing.T) {
	lyt := otbuild.Layout{
		Scripts: []otbuild.Script{
			{Tag: "latn", Default: &otbuild.LangSys{Features: []uint16{0}}},
			{Tag: "latn", Default: &otbuild.LangSys{Features: []uint16{1}}},
		},
		Features: []otbuild.Feature{{Tag: "liga"}, {Tag: "kern"}},
	}
	gsub, err := ParseGSub(lyt.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, gsub.ScriptList.Len())
	assert.Equal(t, []int{0}, featureIndices(gsub.Features([]Tag{T("latn")}, 0)))
	assert.Len(t, gsub.Warnings(), 1)
}

func TestLayoutLookups(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "font.opentype")
	defer teardown()
	//
	gpos := testGPos(t)
	require.Equal(t, 5, gpos.LookupCount())
	assert.Nil(t, gpos.LookupTable(-1))
	assert.Nil(t, gpos.LookupTable(5))
	assert.Nil(t, gpos.LookupTable(100))
	//
	single := gpos.LookupTable(0)
	require.NotNil(t, single)
	assert.Equal(t, uint16(1), single.Type)
	require.Len(t, single.Subtables, 1)
	assert.Equal(t, GPosSingleFmt1, single.Subtables[0].Kind)
	assert.Equal(t, int16(219), single.Subtables[0].Single.Value.XAdvance)
	assert.NoError(t, single.Err())
	assert.Same(t, single, gpos.LookupTable(0), "lookups are cached")
	//
	pair := gpos.LookupTable(1)
	assert.True(t, pair.Extension)
	assert.Equal(t, uint16(2), pair.Type)
	assert.Equal(t, GPosPairFmt1, pair.Subtables[0].Kind)
	assert.Equal(t, int16(-50), pair.Subtables[0].Pair.PairSets[0][0].Value1.XAdvance)
	//
	cursive := gpos.LookupTable(2)
	assert.Equal(t, SubtableUnsupported, cursive.Subtables[0].Kind)
	assert.True(t, errors.Is(cursive.Err(), ErrUnsupportedFormat))
	var ue *UnsupportedFormatError
	require.True(t, errors.As(cursive.Err(), &ue))
	assert.Equal(t, GPOS, ue.Table)
	assert.Equal(t, uint16(3), ue.LookupType)
	//
	bad := gpos.LookupTable(3)
	assert.Equal(t, SubtableMalformed, bad.Subtables[0].Kind)
	assert.True(t, errors.Is(bad.Err(), ErrFontFormat))
	assert.NotEmpty(t, gpos.Errors())
	//
	ctx := gpos.LookupTable(4)
	assert.Equal(t, GPosContextFmt3, ctx.Subtables[0].Kind)
	assert.Equal(t, []SequenceLookupRecord{{0, 0}}, ctx.Subtables[0].Context.Records)
}

func TestLayoutLookupsConcurrently(t *testing.T) {
	gpos := testGPos(t)
	const readers = 16
	results := make([][]*Lookup, readers)
	var wg sync.WaitGroup
	for r := range readers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range gpos.LookupCount() {
				results[r] = append(results[r], gpos.LookupTable(i))
			}
		}()
	}
	wg.Wait()
	for r := 1; r < readers; r++ {
		for i := range results[r] {
			if results[r][i] != results[0][i] {
				t.Errorf("reader %d got a different instance of lookup %d", r, i)
			}
		}
	}
}

func TestLayoutLookupsIterator(t *testing.T) {
	gpos := testGPos(t)
	n := 0
	for i, l := range gpos.Lookups() {
		assert.Equal(t, i, l.Index)
		n++
	}
	assert.Equal(t, 5, n)
}

func TestLayoutHeaderErrors(t *testing.T) {
	_, err := ParseGSub([]byte{0, 1, 0, 0})
	assert.True(t, errors.Is(err, ErrFontFormat))
	_, err = ParseGPos(otbuild.New().U16(2, 0, 0, 0, 0).Bytes())
	assert.True(t, errors.Is(err, ErrFontFormat))
}

func TestNestedExtensionIsMalformed(t *testing.T) {
	inner := otbuild.Extension(7, otbuild.LigatureSubst(otbuild.Coverage1(1),
		[]otbuild.Ligature{{Glyph: 9, Components: []uint16{2}}}))
	lyt := otbuild.Layout{Lookups: []*otbuild.Node{otbuild.Lookup(7, 0, otbuild.Extension(7, inner))}}
	gsub, err := ParseGSub(lyt.Bytes())
	require.NoError(t, err)
	l := gsub.LookupTable(0)
	require.NotNil(t, l)
	assert.True(t, l.Extension)
	assert.Equal(t, SubtableMalformed, l.Subtables[0].Kind)
	assert.True(t, errors.Is(l.Err(), ErrFontFormat))
	assert.NotEmpty(t, gsub.Errors())
}
