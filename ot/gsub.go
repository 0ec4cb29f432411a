package ot

// GSUB lookup types.
const (
	GSubLookupTypeSingle          uint16 = 1
	GSubLookupTypeMultiple        uint16 = 2
	GSubLookupTypeAlternate       uint16 = 3
	GSubLookupTypeLigature        uint16 = 4
	GSubLookupTypeContext         uint16 = 5
	GSubLookupTypeChainingContext uint16 = 6
	GSubLookupTypeExtensionSubs   uint16 = 7
	GSubLookupTypeReverseChaining uint16 = 8
)

// parseGSubSubtable is the subtable factory for GSUB tables. Only ligature
// substitution and chained contextual substitution are decoded.
func parseGSubSubtable(lookupType uint16, b binarySegm) Subtable {
	if len(b) < 4 {
		return malformed(lookupType, errFontFormat("GSUB subtable too small"))
	}
	format := b.U16(0)
	st := Subtable{LookupType: lookupType, Format: format}
	var err error
	switch lookupType {
	case GSubLookupTypeLigature:
		err = parseLigatureSubst(&st, b)
	case GSubLookupTypeChainingContext:
		err = parseSequenceContext(&st, b, true)
		if err == nil && st.Context != nil {
			st.Kind = GSubChainedContextFmt1 + SubtableKind(format-1)
		}
	default:
		return unsupported(lookupType, format)
	}
	if err != nil {
		tracer().Errorf("GSUB lookup type %d/%d: %v", lookupType, format, err)
		return malformed(lookupType, err)
	}
	return st
}

// LigatureSubst subtable:
//
//	uint16    substFormat          = 1
//	Offset16  coverageOffset
//	uint16    ligatureSetCount
//	Offset16  ligatureSetOffsets[ligatureSetCount]
//
// LigatureSet table:
//
//	uint16    ligatureCount
//	Offset16  ligatureOffsets[ligatureCount]    ordered by preference
//
// Ligature table:
//
//	uint16    ligatureGlyph
//	uint16    componentCount
//	uint16    componentGlyphIDs[componentCount - 1]
func parseLigatureSubst(st *Subtable, b binarySegm) error {
	if st.Format != 1 {
		*st = unsupported(st.LookupType, st.Format)
		return nil
	}
	st.Kind = GSubLigature
	var err error
	if st.Coverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	offsets, err := b.u16Array(6, int(b.U16(4)))
	if err != nil {
		return errFontFormat("ligature set offsets truncated")
	}
	ls := &LigatureSubst{LigatureSets: make([][]Ligature, len(offsets))}
	for i, off := range offsets {
		set, err := b.at(int(off))
		if err != nil {
			return errFontFormat("ligature set offset out of bounds")
		}
		ligOffsets, err := set.u16Array(2, int(set.U16(0)))
		if err != nil {
			return errFontFormat("ligature offsets truncated")
		}
		for _, loff := range ligOffsets {
			lig, err := set.at(int(loff))
			if err != nil || len(lig) < 4 {
				return errFontFormat("ligature offset out of bounds")
			}
			n := int(lig.U16(2))
			if n == 0 {
				return errFontFormat("ligature without components")
			}
			comps, err := lig.glyphArray(4, n-1)
			if err != nil {
				return errFontFormat("ligature components truncated")
			}
			ls.LigatureSets[i] = append(ls.LigatureSets[i], Ligature{
				Glyph:      GlyphIndex(lig.U16(0)),
				Components: comps,
			})
		}
	}
	st.Ligature = ls
	return nil
}
