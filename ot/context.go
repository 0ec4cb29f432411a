package ot

import "fmt"

// parseSequenceContext decodes the (chained) sequence context subtables shared by
// GSUB 6, GPOS 7 and GPOS 8. The subtable kind is set by the caller.
func parseSequenceContext(st *Subtable, b binarySegm, chained bool) error {
	sc := &SequenceContext{Chained: chained, Format: st.Format}
	var err error
	switch st.Format {
	case 1:
		err = parseContextFmt1(st, sc, b)
	case 2:
		err = parseContextFmt2(st, sc, b)
	case 3:
		if chained {
			err = parseChainedContextFmt3(st, sc, b)
		} else {
			err = parseContextFmt3(st, sc, b)
		}
	default:
		*st = unsupported(st.LookupType, st.Format)
		return nil
	}
	if err != nil {
		return err
	}
	st.Context = sc
	return nil
}

// Format 1:
//
//	uint16    format                   = 1
//	Offset16  coverageOffset
//	uint16    seqRuleSetCount
//	Offset16  seqRuleSetOffsets[seqRuleSetCount]
func parseContextFmt1(st *Subtable, sc *SequenceContext, b binarySegm) error {
	var err error
	if st.Coverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	sc.RuleSets, err = parseRuleSets(b, 4, sc.Chained)
	return err
}

// Format 2 (plain):
//
//	uint16    format                   = 2
//	Offset16  coverageOffset
//	Offset16  classDefOffset
//	uint16    classSeqRuleSetCount
//	Offset16  classSeqRuleSetOffsets[classSeqRuleSetCount]
//
// Format 2 (chained):
//
//	uint16    format                   = 2
//	Offset16  coverageOffset
//	Offset16  backtrackClassDefOffset
//	Offset16  inputClassDefOffset
//	Offset16  lookaheadClassDefOffset
//	uint16    chainedClassSeqRuleSetCount
//	Offset16  chainedClassSeqRuleSetOffsets[chainedClassSeqRuleSetCount]
func parseContextFmt2(st *Subtable, sc *SequenceContext, b binarySegm) error {
	var err error
	if st.Coverage, err = readCoverageLink(b, 2); err != nil {
		return err
	}
	if !sc.Chained {
		if sc.InputClassDef, err = readClassDefLink(b, 4); err != nil {
			return err
		}
		sc.RuleSets, err = parseRuleSets(b, 6, false)
		return err
	}
	if sc.BacktrackClassDef, err = readClassDefLink(b, 4); err != nil {
		return err
	}
	if sc.InputClassDef, err = readClassDefLink(b, 6); err != nil {
		return err
	}
	if sc.LookaheadClassDef, err = readClassDefLink(b, 8); err != nil {
		return err
	}
	sc.RuleSets, err = parseRuleSets(b, 10, true)
	return err
}

// parseRuleSets reads a count of rule sets at byte index i, followed by offsets to
// rule sets. NULL offsets denote empty rule sets.
//
//	uint16    seqRuleCount
//	Offset16  seqRuleOffsets[seqRuleCount]
func parseRuleSets(b binarySegm, i int, chained bool) ([][]SequenceRule, error) {
	offsets, err := b.u16Array(i+2, int(b.U16(i)))
	if err != nil {
		return nil, errFontFormat("rule set offsets truncated")
	}
	sets := make([][]SequenceRule, len(offsets))
	for s, off := range offsets {
		if off == 0 {
			continue
		}
		set, err := b.at(int(off))
		if err != nil {
			return nil, errFontFormat(fmt.Sprintf("rule set offset out of bounds: %d", off))
		}
		ruleOffsets, err := set.u16Array(2, int(set.U16(0)))
		if err != nil {
			return nil, errFontFormat("rule offsets truncated")
		}
		for _, roff := range ruleOffsets {
			r, err := set.at(int(roff))
			if err != nil {
				return nil, errFontFormat(fmt.Sprintf("rule offset out of bounds: %d", roff))
			}
			var rule SequenceRule
			if chained {
				rule, err = parseChainedRule(r)
			} else {
				rule, err = parsePlainRule(r)
			}
			if err != nil {
				return nil, err
			}
			sets[s] = append(sets[s], rule)
		}
	}
	return sets, nil
}

// SequenceRule table:
//
//	uint16                glyphCount
//	uint16                seqLookupCount
//	uint16                inputSequence[glyphCount - 1]
//	SequenceLookupRecord  seqLookupRecords[seqLookupCount]
func parsePlainRule(b binarySegm) (SequenceRule, error) {
	var rule SequenceRule
	glyphCount, lookupCount := int(b.U16(0)), int(b.U16(2))
	if glyphCount == 0 {
		return rule, errFontFormat("sequence rule with empty input")
	}
	var err error
	if rule.Input, err = b.u16Array(4, glyphCount-1); err != nil {
		return rule, errFontFormat("sequence rule input truncated")
	}
	rule.Records, err = parseLookupRecords(b, 4+2*(glyphCount-1), lookupCount)
	return rule, err
}

// ChainedSequenceRule table:
//
//	uint16                backtrackGlyphCount
//	uint16                backtrackSequence[backtrackGlyphCount]
//	uint16                inputGlyphCount
//	uint16                inputSequence[inputGlyphCount - 1]
//	uint16                lookaheadGlyphCount
//	uint16                lookaheadSequence[lookaheadGlyphCount]
//	uint16                seqLookupCount
//	SequenceLookupRecord  seqLookupRecords[seqLookupCount]
func parseChainedRule(b binarySegm) (SequenceRule, error) {
	var rule SequenceRule
	var err error
	pos := 0
	n := int(b.U16(pos))
	if rule.Backtrack, err = b.u16Array(pos+2, n); err != nil {
		return rule, errFontFormat("chained rule backtrack truncated")
	}
	pos += 2 + 2*n
	n = int(b.U16(pos))
	if n == 0 {
		return rule, errFontFormat("chained rule with empty input")
	}
	if rule.Input, err = b.u16Array(pos+2, n-1); err != nil {
		return rule, errFontFormat("chained rule input truncated")
	}
	pos += 2 + 2*(n-1)
	n = int(b.U16(pos))
	if rule.Lookahead, err = b.u16Array(pos+2, n); err != nil {
		return rule, errFontFormat("chained rule lookahead truncated")
	}
	pos += 2 + 2*n
	rule.Records, err = parseLookupRecords(b, pos+2, int(b.U16(pos)))
	return rule, err
}

// SequenceLookupRecord:
//
//	uint16  sequenceIndex     index (zero-based) into the input glyph sequence
//	uint16  lookupListIndex   index (zero-based) into the LookupList
func parseLookupRecords(b binarySegm, i int, count int) ([]SequenceLookupRecord, error) {
	raw, err := b.u16Array(i, 2*count)
	if err != nil {
		return nil, errFontFormat("sequence lookup records truncated")
	}
	records := make([]SequenceLookupRecord, count)
	for r := range count {
		records[r] = SequenceLookupRecord{SequenceIndex: raw[2*r], LookupListIndex: raw[2*r+1]}
	}
	return records, nil
}

// parseCoverages reads count Offset16 links to coverage tables at byte index i.
func parseCoverages(b binarySegm, i int, count int) ([]Coverage, error) {
	if count == 0 {
		return nil, nil
	}
	if _, err := b.view(i, 2*count); err != nil {
		return nil, errFontFormat("coverage offsets truncated")
	}
	covs := make([]Coverage, count)
	for c := range count {
		var err error
		if covs[c], err = readCoverageLink(b, i+2*c); err != nil {
			return nil, err
		}
	}
	return covs, nil
}

// Format 3 (plain):
//
//	uint16                format            = 3
//	uint16                glyphCount
//	uint16                seqLookupCount
//	Offset16              coverageOffsets[glyphCount]
//	SequenceLookupRecord  seqLookupRecords[seqLookupCount]
func parseContextFmt3(st *Subtable, sc *SequenceContext, b binarySegm) error {
	glyphCount, lookupCount := int(b.U16(2)), int(b.U16(4))
	if glyphCount == 0 {
		return errFontFormat("context format 3 with empty input")
	}
	var err error
	if sc.InputCoverage, err = parseCoverages(b, 6, glyphCount); err != nil {
		return err
	}
	st.Coverage = sc.InputCoverage[0]
	sc.Records, err = parseLookupRecords(b, 6+2*glyphCount, lookupCount)
	return err
}

// Format 3 (chained):
//
//	uint16                format            = 3
//	uint16                backtrackGlyphCount
//	Offset16              backtrackCoverageOffsets[backtrackGlyphCount]
//	uint16                inputGlyphCount
//	Offset16              inputCoverageOffsets[inputGlyphCount]
//	uint16                lookaheadGlyphCount
//	Offset16              lookaheadCoverageOffsets[lookaheadGlyphCount]
//	uint16                seqLookupCount
//	SequenceLookupRecord  seqLookupRecords[seqLookupCount]
func parseChainedContextFmt3(st *Subtable, sc *SequenceContext, b binarySegm) error {
	var err error
	pos := 2
	n := int(b.U16(pos))
	if sc.BacktrackCoverage, err = parseCoverages(b, pos+2, n); err != nil {
		return err
	}
	pos += 2 + 2*n
	n = int(b.U16(pos))
	if n == 0 {
		return errFontFormat("chained context format 3 with empty input")
	}
	if sc.InputCoverage, err = parseCoverages(b, pos+2, n); err != nil {
		return err
	}
	st.Coverage = sc.InputCoverage[0]
	pos += 2 + 2*n
	n = int(b.U16(pos))
	if sc.LookaheadCoverage, err = parseCoverages(b, pos+2, n); err != nil {
		return err
	}
	pos += 2 + 2*n
	sc.Records, err = parseLookupRecords(b, pos+2, int(b.U16(pos)))
	return err
}
