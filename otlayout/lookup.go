package otlayout

import (
	"github.com/npillmayer/otshaping/ot"
)

// Lookup is a lookup of a GSUB or GPOS table, bound to the reader it has been
// retrieved from.
type Lookup struct {
	*ot.Lookup
	reader *TableReader
}

// TransformOne applies the lookup at the current position of line.
//
// If the position is at or beyond the end of the line's window, nothing happens.
// Glyphs skipped due to the lookup flag are stepped over. Otherwise the subtables
// are tried in order until one of them applies. The line's position is advanced in
// every case, by an amount depending on the lookup type.
//
// TransformOne returns true if the lookup applied.
func (l *Lookup) TransformOne(line *GlyphLine) bool {
	return l.transformOne(line, 0)
}

// TransformLine applies the lookup to every position of the active window of line,
// starting at the window's start. It returns true if the lookup applied at least once.
func (l *Lookup) TransformLine(line *GlyphLine) bool {
	changed := false
	line.idx = line.start
	for line.idx < line.end {
		pos := line.idx
		changed = l.transformOne(line, 0) || changed
		if line.idx <= pos { // guarantee progress
			line.idx = min(pos+1, line.end)
		}
	}
	return changed
}

func (l *Lookup) transformOne(line *GlyphLine, depth int) bool {
	if line.idx >= line.end {
		return false
	}
	if l.skip(line.glyphs[line.idx].Code) {
		line.idx++
		return false
	}
	tracer().Debugf("apply lookup #%d (type %d) at %d", l.Index, l.Type, line.idx)
	switch l.kind() {
	case ot.GPosSingleFmt1:
		return l.applySinglePos(line)
	case ot.GPosPairFmt1:
		return l.applyPairPos(line)
	case ot.GPosMarkToBase:
		return l.applyMarkToBase(line)
	case ot.GPosMarkToLigature:
		return l.applyMarkToLigature(line)
	case ot.GPosMarkToMark:
		return l.applyMarkToMark(line)
	case ot.GPosContextFmt1, ot.GSubChainedContextFmt1:
		return l.applyContext(line, depth)
	case ot.GSubLigature:
		return l.applyLigature(line)
	}
	line.idx++
	return false
}

// kind classifies a lookup by its first usable subtable. Subtables of a lookup all
// share the lookup type, so the subtable format does not matter here: the variants
// are folded onto the first format of each lookup type.
func (l *Lookup) kind() ot.SubtableKind {
	for i := range l.Subtables {
		switch k := l.Subtables[i].Kind; k {
		case ot.SubtableUnsupported, ot.SubtableMalformed:
			continue
		case ot.GPosSingleFmt1, ot.GPosSingleFmt2:
			return ot.GPosSingleFmt1
		case ot.GPosPairFmt1, ot.GPosPairFmt2:
			return ot.GPosPairFmt1
		case ot.GPosContextFmt1, ot.GPosContextFmt2, ot.GPosContextFmt3,
			ot.GPosChainedContextFmt1, ot.GPosChainedContextFmt2, ot.GPosChainedContextFmt3:
			return ot.GPosContextFmt1
		case ot.GSubChainedContextFmt1, ot.GSubChainedContextFmt2, ot.GSubChainedContextFmt3:
			return ot.GSubChainedContextFmt1
		default:
			return k
		}
	}
	return ot.SubtableUnsupported
}

// --- Glyph matching ---------------------------------------------------------

// skip applies the lookup flag to decide whether to skip a glyph while matching.
func (l *Lookup) skip(g ot.GlyphIndex) bool {
	return l.reader.gdef.IsSkipFiltered(g, l.Flag, l.MarkFilteringSet)
}

// nextMatchable finds the first glyph after pos which is not skipped, within the
// window of line. It returns -1 if there is none.
func (l *Lookup) nextMatchable(line *GlyphLine, pos int) int {
	for i := pos + 1; i < line.end; i++ {
		if !l.skip(line.glyphs[i].Code) {
			return i
		}
	}
	return -1
}

// prevMatchable finds the first glyph before pos which is not skipped, within the
// window of line. It returns -1 if there is none.
func (l *Lookup) prevMatchable(line *GlyphLine, pos int) int {
	for i := pos - 1; i >= line.start; i-- {
		if !l.skip(line.glyphs[i].Code) {
			return i
		}
	}
	return -1
}

// nested returns lookup number i of the same table, or nil.
func (l *Lookup) nested(i uint16) *Lookup {
	return l.reader.LookupTable(int(i))
}
