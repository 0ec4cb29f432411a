package otlayout

import (
	"github.com/npillmayer/otshaping/ot"
)

// Contextual lookups (GPOS 7 and 8, GSUB 6) match a sequence of glyphs at the
// current position and apply nested lookups to positions within the sequence.
// The sequence consists of input glyphs, starting at the current position, and
// optionally of backtrack and lookahead glyphs before and after the input.

type seqPart uint8

const (
	backtrackPart seqPart = iota
	inputPart
	lookaheadPart
)

// sequence describes a rule to match. Element j of the backtrack part is the j-th
// glyph before the input, counting outwards. Element 0 of the input part is the
// glyph at the current position and has already been matched by the subtable's coverage.
type sequence struct {
	backtrack, input, lookahead int
	match                       func(part seqPart, j int, g ot.GlyphIndex) bool
}

// matchSequence matches seq at the current position of line, stepping over skipped
// glyphs. It returns the position of the last input glyph.
func (l *Lookup) matchSequence(line *GlyphLine, seq sequence) (int, bool) {
	last := line.idx
	for j := 1; j < seq.input; j++ {
		if last = l.nextMatchable(line, last); last < 0 || !seq.match(inputPart, j, line.glyphs[last].Code) {
			return -1, false
		}
	}
	p := last
	for j := range seq.lookahead {
		if p = l.nextMatchable(line, p); p < 0 || !seq.match(lookaheadPart, j, line.glyphs[p].Code) {
			return -1, false
		}
	}
	p = line.idx
	for j := range seq.backtrack {
		if p = l.prevMatchable(line, p); p < 0 || !seq.match(backtrackPart, j, line.glyphs[p].Code) {
			return -1, false
		}
	}
	return last, true
}

func ruleSequence(rule *ot.SequenceRule, match func(part seqPart, value uint16, g ot.GlyphIndex) bool) sequence {
	return sequence{
		backtrack: len(rule.Backtrack),
		input:     len(rule.Input) + 1,
		lookahead: len(rule.Lookahead),
		match: func(part seqPart, j int, g ot.GlyphIndex) bool {
			switch part {
			case backtrackPart:
				return match(part, rule.Backtrack[j], g)
			case inputPart:
				return match(part, rule.Input[j-1], g)
			}
			return match(part, rule.Lookahead[j], g)
		},
	}
}

// matchContext tries the rules of a contextual subtable at the current position.
// It returns the position of the last input glyph and the lookup records of the
// matching rule.
func (l *Lookup) matchContext(st *ot.Subtable, line *GlyphLine) (int, []ot.SequenceLookupRecord, bool) {
	sc := st.Context
	first := line.glyphs[line.idx].Code
	inx, ok := st.Coverage.Index(first)
	if !ok {
		return -1, nil, false
	}
	switch sc.Format {
	case 1:
		if inx >= len(sc.RuleSets) {
			break
		}
		byGlyph := func(_ seqPart, value uint16, g ot.GlyphIndex) bool {
			return ot.GlyphIndex(value) == g
		}
		for r := range sc.RuleSets[inx] {
			rule := &sc.RuleSets[inx][r]
			if last, ok := l.matchSequence(line, ruleSequence(rule, byGlyph)); ok {
				return last, rule.Records, true
			}
		}
	case 2:
		class := sc.InputClassDef.Class(first)
		if int(class) >= len(sc.RuleSets) {
			break
		}
		byClass := func(part seqPart, value uint16, g ot.GlyphIndex) bool {
			switch part {
			case backtrackPart:
				return sc.BacktrackClassDef.Class(g) == value
			case lookaheadPart:
				return sc.LookaheadClassDef.Class(g) == value
			}
			return sc.InputClassDef.Class(g) == value
		}
		for r := range sc.RuleSets[class] {
			rule := &sc.RuleSets[class][r]
			if last, ok := l.matchSequence(line, ruleSequence(rule, byClass)); ok {
				return last, rule.Records, true
			}
		}
	case 3:
		if len(sc.InputCoverage) == 0 {
			break
		}
		seq := sequence{
			backtrack: len(sc.BacktrackCoverage),
			input:     len(sc.InputCoverage),
			lookahead: len(sc.LookaheadCoverage),
			match: func(part seqPart, j int, g ot.GlyphIndex) bool {
				switch part {
				case backtrackPart:
					return sc.BacktrackCoverage[j].Contains(g)
				case lookaheadPart:
					return sc.LookaheadCoverage[j].Contains(g)
				}
				return sc.InputCoverage[j].Contains(g)
			},
		}
		if last, ok := l.matchSequence(line, seq); ok {
			return last, sc.Records, true
		}
	}
	return -1, nil, false
}

// applyContext applies a contextual lookup at the current position. If a rule
// matches, the line's window is narrowed to the input sequence while the nested
// lookups are applied. Afterwards the position is set to the end of the (possibly
// shrunk) input sequence.
func (l *Lookup) applyContext(line *GlyphLine, depth int) bool {
	for i := range l.Subtables {
		st := &l.Subtables[i]
		if st.Context == nil {
			continue
		}
		if last, records, ok := l.matchContext(st, line); ok {
			tracer().Debugf("lookup #%d: context [%d,%d] matched", l.Index, line.idx, last)
			l.applySequenceLookupRecords(line, last, records, depth)
			return true
		}
	}
	line.idx++
	return false
}

func (l *Lookup) applySequenceLookupRecords(line *GlyphLine, last int, records []ot.SequenceLookupRecord, depth int) {
	oldStart, oldEnd := line.start, line.end
	initial := line.idx
	line.start, line.end = initial, last+1
	endBefore := line.end
	for _, rec := range records {
		pos := initial
		for i := 0; i < int(rec.SequenceIndex) && pos >= 0; i++ {
			pos = l.nextMatchable(line, pos)
		}
		if pos < 0 {
			continue // sequence index beyond the (shrunk) input
		}
		nested := l.nested(rec.LookupListIndex)
		if nested == nil {
			tracer().Infof("lookup #%d: nested lookup %d not found", l.Index, rec.LookupListIndex)
			continue
		}
		if depth+1 >= ot.MaxNestingDepth {
			tracer().Errorf("lookup #%d: nesting of contextual lookups too deep", l.Index)
			continue
		}
		line.idx = pos
		nested.transformOne(line, depth+1)
	}
	line.idx = line.end
	line.start = oldStart
	line.end = oldEnd - (endBefore - line.end)
}
