package ot

import (
	"errors"
	"fmt"
)

// Lookup is a decoded lookup table. Lookups of type Extension are resolved to the
// lookup type they wrap; Extension is set for them.
type Lookup struct {
	Index            int        // position in the lookup list
	Type             uint16     // lookup type, meaning depends on GSUB/GPOS
	Flag             LookupFlag // lookup qualifiers
	MarkFilteringSet uint16     // index into GDEF mark glyph sets, if Flag says so
	Extension        bool       // lookup has been wrapped in extension subtables
	Subtables        []Subtable

	err error
}

// Err returns an error if the lookup itself is unusable, or if some of its subtables
// are malformed or of an unsupported format. Clients should skip those subtables, but
// may still apply the rest of the lookup.
func (l *Lookup) Err() error {
	if l == nil {
		return nil
	}
	errs := []error{l.err}
	for _, st := range l.Subtables {
		errs = append(errs, st.Err)
	}
	return errors.Join(errs...)
}

// SubtableKind identifies a lookup subtable variant, i.e. a combination of table
// (GSUB or GPOS), lookup type and subtable format.
type SubtableKind uint8

// The closed set of subtable variants.
const (
	SubtableUnsupported SubtableKind = iota // lookup type or format not implemented
	SubtableMalformed                       // subtable could not be decoded
	GPosSingleFmt1                          // GPOS 1/1: one value record for all covered glyphs
	GPosSingleFmt2                          // GPOS 1/2: one value record per covered glyph
	GPosPairFmt1                            // GPOS 2/1: kerning of glyph pairs
	GPosPairFmt2                            // GPOS 2/2: kerning of class pairs
	GPosMarkToBase                          // GPOS 4/1
	GPosMarkToLigature                      // GPOS 5/1
	GPosMarkToMark                          // GPOS 6/1
	GPosContextFmt1                         // GPOS 7/1: glyph sequences
	GPosContextFmt2                         // GPOS 7/2: class sequences
	GPosContextFmt3                         // GPOS 7/3: coverage sequences
	GPosChainedContextFmt1                  // GPOS 8/1
	GPosChainedContextFmt2                  // GPOS 8/2
	GPosChainedContextFmt3                  // GPOS 8/3
	GSubLigature                            // GSUB 4/1
	GSubChainedContextFmt1                  // GSUB 6/1
	GSubChainedContextFmt2                  // GSUB 6/2
	GSubChainedContextFmt3                  // GSUB 6/3
)

var subtableKindNames = [...]string{
	"Unsupported", "Malformed",
	"GPOS-Single/1", "GPOS-Single/2", "GPOS-Pair/1", "GPOS-Pair/2",
	"GPOS-MarkToBase", "GPOS-MarkToLigature", "GPOS-MarkToMark",
	"GPOS-Context/1", "GPOS-Context/2", "GPOS-Context/3",
	"GPOS-ChainedContext/1", "GPOS-ChainedContext/2", "GPOS-ChainedContext/3",
	"GSUB-Ligature", "GSUB-ChainedContext/1", "GSUB-ChainedContext/2", "GSUB-ChainedContext/3",
}

func (k SubtableKind) String() string {
	if int(k) < len(subtableKindNames) {
		return subtableKindNames[k]
	}
	return fmt.Sprintf("SubtableKind(%d)", k)
}

// Subtable is a decoded lookup subtable. Exactly one of the payload fields is set,
// depending on Kind:
//
//	GPosSingleFmt1/2                 → Single
//	GPosPairFmt1/2                   → Pair
//	GPosMarkToBase/Ligature/Mark     → Marks
//	GPosContext…, G…ChainedContext…  → Context
//	GSubLigature                     → Ligature
//	SubtableUnsupported/Malformed    → Err
type Subtable struct {
	Kind       SubtableKind
	LookupType uint16
	Format     uint16
	Coverage   Coverage // primary coverage, if any

	Single   *SinglePos
	Pair     *PairPos
	Marks    *MarkAttachment
	Context  *SequenceContext
	Ligature *LigatureSubst

	Err error
}

func unsupported(lookupType, format uint16) Subtable {
	return Subtable{
		Kind:       SubtableUnsupported,
		LookupType: lookupType,
		Format:     format,
		Err:        &UnsupportedFormatError{LookupType: lookupType, Format: format},
	}
}

func malformed(lookupType uint16, err error) Subtable {
	return Subtable{Kind: SubtableMalformed, LookupType: lookupType, Err: err}
}

// --- GPOS payloads ---------------------------------------------------------

// ValueFormat is a bitmask telling which fields are present in a ValueRecord.
type ValueFormat uint16

// Value format flags.
const (
	ValueFormatXPlacement       ValueFormat = 0x0001
	ValueFormatYPlacement       ValueFormat = 0x0002
	ValueFormatXAdvance         ValueFormat = 0x0004
	ValueFormatYAdvance         ValueFormat = 0x0008
	ValueFormatXPlacementDevice ValueFormat = 0x0010
	ValueFormatYPlacementDevice ValueFormat = 0x0020
	ValueFormatXAdvanceDevice   ValueFormat = 0x0040
	ValueFormatYAdvanceDevice   ValueFormat = 0x0080
)

// Size returns the number of bytes of a value record in this format.
func (vf ValueFormat) Size() int {
	n := 0
	for f := vf & 0xFF; f != 0; f >>= 1 {
		n += int(f & 1)
	}
	return 2 * n
}

// ValueRecord holds positioning adjustments in design units. Device tables (and
// variation indices) are not decoded.
type ValueRecord struct {
	XPlacement, YPlacement int16
	XAdvance, YAdvance     int16
}

// IsZero is true if the record will not change a glyph position.
func (vr ValueRecord) IsZero() bool {
	return vr == ValueRecord{}
}

// Anchor is an attachment point in design units. Anchor formats 2 and 3 are
// decoded as format 1, as contour points and device tables are of no concern to
// the layout engine.
type Anchor struct {
	X, Y int16
}

// SinglePos is the payload of GPOS lookup type 1.
type SinglePos struct {
	ValueFormat ValueFormat
	Value       ValueRecord   // format 1
	Values      []ValueRecord // format 2, indexed by coverage index
}

// PairPos is the payload of GPOS lookup type 2.
type PairPos struct {
	ValueFormat1, ValueFormat2 ValueFormat
	PairSets                   [][]PairValue // format 1, indexed by coverage index of the first glyph
	ClassDef1, ClassDef2       ClassDef      // format 2
	Class1Count, Class2Count   uint16        // format 2
	ClassValues                [][2]ValueRecord
}

// PairValue is a record of a PairSet: a second glyph and adjustments for both glyphs.
type PairValue struct {
	SecondGlyph    GlyphIndex
	Value1, Value2 ValueRecord
}

// ClassPair returns the value records for a pair of classes (format 2).
func (pp *PairPos) ClassPair(class1, class2 uint16) (ValueRecord, ValueRecord, bool) {
	if class1 >= pp.Class1Count || class2 >= pp.Class2Count {
		return ValueRecord{}, ValueRecord{}, false
	}
	v := pp.ClassValues[int(class1)*int(pp.Class2Count)+int(class2)]
	return v[0], v[1], true
}

// MarkRecord is an entry of a MarkArray: the mark's class and its anchor.
type MarkRecord struct {
	Class  uint16
	Anchor *Anchor
}

// MarkAttachment is the payload of GPOS lookup types 4, 5 and 6. The subtable's
// primary coverage is the mark coverage. For mark-to-base and mark-to-mark, Bases
// holds anchors indexed by [base coverage index][mark class]. For mark-to-ligature,
// Ligatures holds anchors indexed by [ligature coverage index][component][mark class].
// Anchors may be nil.
type MarkAttachment struct {
	MarkCoverage Coverage
	BaseCoverage Coverage // base, ligature or mark2 coverage
	ClassCount   uint16
	Marks        []MarkRecord
	Bases        [][]*Anchor
	Ligatures    [][][]*Anchor
}

// --- Contextual payloads ---------------------------------------------------

// SequenceLookupRecord tells which nested lookup to apply at which position of a
// matched input sequence.
type SequenceLookupRecord struct {
	SequenceIndex   uint16
	LookupListIndex uint16
}

// SequenceRule is a rule of a (chained) sequence context of format 1 or 2. Values
// are glyph IDs for format 1 and class values for format 2. Input does not contain
// the first input glyph, which is matched by coverage (and class). Backtrack is kept
// in font order, i.e. Backtrack[0] is the glyph immediately preceding the input.
type SequenceRule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Records   []SequenceLookupRecord
}

// SequenceContext is the payload of GPOS 7 and 8 and of GSUB 6.
//
// Format 1 rule sets are indexed by coverage index of the first glyph, format 2
// rule sets by the input class of the first glyph. Format 3 has coverage sequences
// and a single set of lookup records.
type SequenceContext struct {
	Chained bool
	Format  uint16

	RuleSets [][]SequenceRule // formats 1 and 2

	BacktrackClassDef ClassDef // format 2
	InputClassDef     ClassDef // format 2
	LookaheadClassDef ClassDef // format 2

	BacktrackCoverage []Coverage             // format 3, closest glyph first
	InputCoverage     []Coverage             // format 3
	LookaheadCoverage []Coverage             // format 3
	Records           []SequenceLookupRecord // format 3
}

// --- GSUB payloads ---------------------------------------------------------

// LigatureSubst is the payload of GSUB lookup type 4. LigatureSets are indexed by
// coverage index of the first component.
type LigatureSubst struct {
	LigatureSets [][]Ligature
}

// Ligature is a ligature glyph with its components, excluding the first one.
type Ligature struct {
	Glyph      GlyphIndex
	Components []GlyphIndex
}
