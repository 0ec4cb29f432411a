package ot

import "fmt"

// GPOS lookup types.
const (
	GPosLookupTypeSingle            uint16 = 1
	GPosLookupTypePair              uint16 = 2
	GPosLookupTypeCursive           uint16 = 3
	GPosLookupTypeMarkToBase        uint16 = 4
	GPosLookupTypeMarkToLigature    uint16 = 5
	GPosLookupTypeMarkToMark        uint16 = 6
	GPosLookupTypeContextPos        uint16 = 7
	GPosLookupTypeChainedContextPos uint16 = 8
	GPosLookupTypeExtensionPos      uint16 = 9
)

// parseGPosSubtable is the subtable factory for GPOS tables.
func parseGPosSubtable(lookupType uint16, b binarySegm) Subtable {
	if len(b) < 4 {
		return malformed(lookupType, errFontFormat("GPOS subtable too small"))
	}
	format := b.U16(0)
	st := Subtable{LookupType: lookupType, Format: format}
	var err error
	switch lookupType {
	case GPosLookupTypeSingle:
		err = parseSinglePos(&st, b)
	case GPosLookupTypePair:
		err = parsePairPos(&st, b)
	case GPosLookupTypeMarkToBase, GPosLookupTypeMarkToLigature, GPosLookupTypeMarkToMark:
		err = parseMarkAttachment(&st, b)
	case GPosLookupTypeContextPos, GPosLookupTypeChainedContextPos:
		chained := lookupType == GPosLookupTypeChainedContextPos
		err = parseSequenceContext(&st, b, chained)
		if err == nil && st.Context != nil {
			st.Kind = gposContextKind(chained, format)
		}
	default:
		// cursive attachment and unknown types
		return unsupported(lookupType, format)
	}
	if err != nil {
		tracer().Errorf("GPOS lookup type %d/%d: %v", lookupType, format, err)
		return malformed(lookupType, err)
	}
	return st
}

func gposContextKind(chained bool, format uint16) SubtableKind {
	if chained {
		return GPosChainedContextFmt1 + SubtableKind(format-1)
	}
	return GPosContextFmt1 + SubtableKind(format-1)
}

// readCoverageLink reads an Offset16 to a coverage table at byte index i of b.
func readCoverageLink(b binarySegm, i int) (Coverage, error) {
	link, err := b.link16(i)
	if err != nil {
		return Coverage{}, errFontFormat("coverage offset out of bounds")
	}
	return parseCoverage(link)
}

// readClassDefLink reads an Offset16 to a class definition table at byte index i
// of b. A NULL offset results in an empty class definition.
func readClassDefLink(b binarySegm, i int) (ClassDef, error) {
	off, err := b.u16(i)
	if err != nil {
		return ClassDef{}, errFontFormat("class definition offset missing")
	}
	if off == 0 {
		return ClassDef{}, nil
	}
	link, err := b.at(int(off))
	if err != nil {
		return ClassDef{}, errFontFormat("class definition offset out of bounds")
	}
	return parseClassDef(link)
}

// readValueRecord reads a value record of format vf at byte index i and returns
// it together with its size in bytes. Device table offsets are skipped.
func readValueRecord(b binarySegm, i int, vf ValueFormat) (ValueRecord, int, error) {
	size := vf.Size()
	if size == 0 {
		return ValueRecord{}, 0, nil
	}
	buf, err := b.view(i, size)
	if err != nil {
		return ValueRecord{}, 0, err
	}
	var vr ValueRecord
	fields := []*int16{&vr.XPlacement, &vr.YPlacement, &vr.XAdvance, &vr.YAdvance}
	pos := 0
	for bit, field := range fields {
		if vf&(1<<bit) != 0 {
			*field = int16(u16(buf[pos:]))
			pos += 2
		}
	}
	return vr, size, nil
}

// readAnchor reads an anchor table at offset from b. A NULL offset yields a nil anchor.
//
//	uint16  anchorFormat    1, 2 or 3
//	int16   xCoordinate
//	int16   yCoordinate
//	...     format specific
func readAnchor(b binarySegm, offset uint16) (*Anchor, error) {
	if offset == 0 {
		return nil, nil
	}
	a, err := b.at(int(offset))
	if err != nil || len(a) < 6 {
		return nil, errFontFormat("anchor offset out of bounds")
	}
	if f := a.U16(0); f < 1 || f > 3 {
		return nil, errFontFormat(fmt.Sprintf("unknown anchor format %d", f))
	}
	return &Anchor{X: int16(a.U16(2)), Y: int16(a.U16(4))}, nil
}

// SinglePos subtable:
//
//	uint16       posFormat
//	Offset16     coverageOffset
//	uint16       valueFormat
//	ValueRecord  valueRecord                  format 1
//	uint16       valueCount                   format 2
//	ValueRecord  valueRecords[valueCount]     format 2
func parseSinglePos(st *Subtable, b binarySegm) error {
	var err error
	if st.Coverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	sp := &SinglePos{ValueFormat: ValueFormat(b.U16(4))}
	switch st.Format {
	case 1:
		st.Kind = GPosSingleFmt1
		if sp.Value, _, err = readValueRecord(b, 6, sp.ValueFormat); err != nil {
			return errFontFormat("GPOS 1/1 value record truncated")
		}
	case 2:
		st.Kind = GPosSingleFmt2
		count := int(b.U16(6))
		sp.Values = make([]ValueRecord, count)
		pos := 8
		for i := range count {
			vr, n, err := readValueRecord(b, pos, sp.ValueFormat)
			if err != nil {
				return errFontFormat("GPOS 1/2 value records truncated")
			}
			sp.Values[i] = vr
			pos += n
		}
	default:
		*st = unsupported(st.LookupType, st.Format)
		return nil
	}
	st.Single = sp
	return nil
}

// PairPos subtable, format 1:
//
//	uint16    posFormat
//	Offset16  coverageOffset
//	uint16    valueFormat1
//	uint16    valueFormat2
//	uint16    pairSetCount
//	Offset16  pairSetOffsets[pairSetCount]
//
// Format 2:
//
//	uint16         posFormat
//	Offset16       coverageOffset
//	uint16         valueFormat1
//	uint16         valueFormat2
//	Offset16       classDef1Offset
//	Offset16       classDef2Offset
//	uint16         class1Count
//	uint16         class2Count
//	Class1Record   class1Records[class1Count]   { Class2Record[class2Count] { vr1, vr2 } }
func parsePairPos(st *Subtable, b binarySegm) error {
	var err error
	if st.Coverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	pp := &PairPos{ValueFormat1: ValueFormat(b.U16(4)), ValueFormat2: ValueFormat(b.U16(6))}
	switch st.Format {
	case 1:
		st.Kind = GPosPairFmt1
		offsets, err := b.u16Array(10, int(b.U16(8)))
		if err != nil {
			return errFontFormat("GPOS 2/1 pair set offsets truncated")
		}
		pp.PairSets = make([][]PairValue, len(offsets))
		for i, off := range offsets {
			set, err := b.at(int(off))
			if err != nil {
				return errFontFormat(fmt.Sprintf("GPOS 2/1 pair set offset out of bounds: %d", off))
			}
			if pp.PairSets[i], err = parsePairSet(set, pp.ValueFormat1, pp.ValueFormat2); err != nil {
				return err
			}
		}
	case 2:
		st.Kind = GPosPairFmt2
		if pp.ClassDef1, err = readClassDefLink(b, 8); err != nil {
			return err
		}
		if pp.ClassDef2, err = readClassDefLink(b, 10); err != nil {
			return err
		}
		pp.Class1Count, pp.Class2Count = b.U16(12), b.U16(14)
		n := int(pp.Class1Count) * int(pp.Class2Count)
		pp.ClassValues = make([][2]ValueRecord, n)
		pos := 16
		for i := range n {
			v1, n1, err1 := readValueRecord(b, pos, pp.ValueFormat1)
			v2, n2, err2 := readValueRecord(b, pos+n1, pp.ValueFormat2)
			if err1 != nil || err2 != nil {
				return errFontFormat("GPOS 2/2 class records truncated")
			}
			pp.ClassValues[i] = [2]ValueRecord{v1, v2}
			pos += n1 + n2
		}
	default:
		*st = unsupported(st.LookupType, st.Format)
		return nil
	}
	st.Pair = pp
	return nil
}

// PairSet table:
//
//	uint16           pairValueCount
//	PairValueRecord  pairValueRecords[pairValueCount]   { secondGlyph, vr1, vr2 }
func parsePairSet(b binarySegm, vf1, vf2 ValueFormat) ([]PairValue, error) {
	count := int(b.U16(0))
	recsize := 2 + vf1.Size() + vf2.Size()
	if _, err := b.view(2, count*recsize); count > 0 && err != nil {
		return nil, errFontFormat("GPOS 2/1 pair set truncated")
	}
	pairs := make([]PairValue, count)
	pos := 2
	for i := range count {
		pairs[i].SecondGlyph = GlyphIndex(b.U16(pos))
		v1, n1, _ := readValueRecord(b, pos+2, vf1)
		v2, n2, _ := readValueRecord(b, pos+2+n1, vf2)
		pairs[i].Value1, pairs[i].Value2 = v1, v2
		pos += 2 + n1 + n2
	}
	return pairs, nil
}

// Mark attachment subtables share a common layout:
//
//	uint16    posFormat              = 1
//	Offset16  markCoverageOffset     (mark1 for mark-to-mark)
//	Offset16  baseCoverageOffset     (ligature resp. mark2 coverage)
//	uint16    markClassCount
//	Offset16  markArrayOffset
//	Offset16  baseArrayOffset        (ligature resp. mark2 array)
func parseMarkAttachment(st *Subtable, b binarySegm) error {
	if st.Format != 1 {
		*st = unsupported(st.LookupType, st.Format)
		return nil
	}
	switch st.LookupType {
	case GPosLookupTypeMarkToBase:
		st.Kind = GPosMarkToBase
	case GPosLookupTypeMarkToLigature:
		st.Kind = GPosMarkToLigature
	default:
		st.Kind = GPosMarkToMark
	}
	var err error
	ma := &MarkAttachment{ClassCount: b.U16(6)}
	if ma.MarkCoverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	if ma.BaseCoverage, err = readCoverageLink(b, 4); err != nil {
		return err
	}
	st.Coverage = ma.MarkCoverage
	markArray, err := b.link16(8)
	if err != nil {
		return errFontFormat("mark array offset out of bounds")
	}
	if ma.Marks, err = parseMarkArray(markArray); err != nil {
		return err
	}
	baseArray, err := b.link16(10)
	if err != nil {
		return errFontFormat("base array offset out of bounds")
	}
	if st.Kind == GPosMarkToLigature {
		ma.Ligatures, err = parseLigatureArray(baseArray, int(ma.ClassCount))
	} else {
		ma.Bases, err = parseAnchorMatrix(baseArray, 0, int(ma.ClassCount))
	}
	if err != nil {
		return err
	}
	st.Marks = ma
	return nil
}

// MarkArray table:
//
//	uint16      markCount
//	MarkRecord  markRecords[markCount]   { uint16 markClass, Offset16 markAnchorOffset }
func parseMarkArray(b binarySegm) ([]MarkRecord, error) {
	count := int(b.U16(0))
	raw, err := b.u16Array(2, 2*count)
	if err != nil {
		return nil, errFontFormat("mark array truncated")
	}
	marks := make([]MarkRecord, count)
	for i := range count {
		marks[i].Class = raw[2*i]
		if marks[i].Anchor, err = readAnchor(b, raw[2*i+1]); err != nil {
			return nil, err
		}
	}
	return marks, nil
}

// parseAnchorMatrix reads a BaseArray, Mark2Array or the component records of a
// LigatureAttach table, starting with a count at byte index i of b. Anchor offsets
// are relative to b.
//
//	uint16    count
//	Offset16  anchorOffsets[count][classCount]
func parseAnchorMatrix(b binarySegm, i int, classCount int) ([][]*Anchor, error) {
	count := int(b.U16(i))
	raw, err := b.u16Array(i+2, count*classCount)
	if err != nil {
		return nil, errFontFormat("anchor records truncated")
	}
	rows := make([][]*Anchor, count)
	for r := range count {
		rows[r] = make([]*Anchor, classCount)
		for c := range classCount {
			if rows[r][c], err = readAnchor(b, raw[r*classCount+c]); err != nil {
				return nil, err
			}
		}
	}
	return rows, nil
}

// LigatureArray table:
//
//	uint16    ligatureCount
//	Offset16  ligatureAttachOffsets[ligatureCount]
func parseLigatureArray(b binarySegm, classCount int) ([][][]*Anchor, error) {
	offsets, err := b.u16Array(2, int(b.U16(0)))
	if err != nil {
		return nil, errFontFormat("ligature array truncated")
	}
	ligs := make([][][]*Anchor, len(offsets))
	for i, off := range offsets {
		if off == 0 {
			continue
		}
		attach, err := b.at(int(off))
		if err != nil {
			return nil, errFontFormat("ligature attach offset out of bounds")
		}
		if ligs[i], err = parseAnchorMatrix(attach, 0, classCount); err != nil {
			return nil, err
		}
	}
	return ligs, nil
}
