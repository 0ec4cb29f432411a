package otlayout

import (
	"github.com/npillmayer/otshaping/ot"
)

// addValue accumulates a value record onto a glyph's positioning.
func addValue(g *Glyph, v ot.ValueRecord) {
	g.XPlacement += int(v.XPlacement)
	g.YPlacement += int(v.YPlacement)
	g.XAdvance += int(v.XAdvance)
	g.YAdvance += int(v.YAdvance)
}

// attach positions a mark relative to the glyph it is attached to. The glyph is
// found at offset delta from the mark.
func attach(mark *Glyph, anchor, markAnchor *ot.Anchor, delta int) {
	x, y := int(anchor.X), int(anchor.Y)
	if markAnchor != nil {
		x -= int(markAnchor.X)
		y -= int(markAnchor.Y)
	}
	mark.XPlacement, mark.YPlacement = x, y
	mark.XAdvance, mark.YAdvance = 0, 0
	mark.AnchorDelta = delta
}

// --- GPOS lookup type 1: single adjustment ------------------------------------

func (l *Lookup) applySinglePos(line *GlyphLine) bool {
	g := &line.glyphs[line.idx]
	line.idx++
	for i := range l.Subtables {
		if v, ok := singleValue(&l.Subtables[i], g.Code); ok {
			addValue(g, v)
			return true
		}
	}
	return false
}

func singleValue(st *ot.Subtable, g ot.GlyphIndex) (ot.ValueRecord, bool) {
	if st.Single == nil {
		return ot.ValueRecord{}, false
	}
	inx, ok := st.Coverage.Index(g)
	if !ok {
		return ot.ValueRecord{}, false
	}
	switch st.Kind {
	case ot.GPosSingleFmt1:
		return st.Single.Value, true
	case ot.GPosSingleFmt2:
		if inx < len(st.Single.Values) {
			return st.Single.Values[inx], true
		}
	}
	return ot.ValueRecord{}, false
}

// --- GPOS lookup type 2: pair adjustment --------------------------------------

// applyPairPos adjusts the glyph at the current position and the next glyph not
// skipped. After a match the position is moved to the second glyph, or past it if
// the second glyph's value format is non-empty.
func (l *Lookup) applyPairPos(line *GlyphLine) bool {
	first := line.idx
	second := l.nextMatchable(line, first)
	if second < 0 {
		line.idx++
		return false
	}
	g1, g2 := line.glyphs[first].Code, line.glyphs[second].Code
	for i := range l.Subtables {
		st := &l.Subtables[i]
		v1, v2, ok := pairValues(st, g1, g2)
		if !ok {
			continue
		}
		tracer().Debugf("pair positioning of glyphs %d/%d at %d", g1, g2, first)
		addValue(&line.glyphs[first], v1)
		addValue(&line.glyphs[second], v2)
		line.idx = second
		if st.Pair.ValueFormat2 != 0 {
			line.idx++
		}
		return true
	}
	line.idx++
	return false
}

func pairValues(st *ot.Subtable, g1, g2 ot.GlyphIndex) (ot.ValueRecord, ot.ValueRecord, bool) {
	if st.Pair == nil {
		return ot.ValueRecord{}, ot.ValueRecord{}, false
	}
	inx, ok := st.Coverage.Index(g1)
	if !ok {
		return ot.ValueRecord{}, ot.ValueRecord{}, false
	}
	switch st.Kind {
	case ot.GPosPairFmt1:
		if inx >= len(st.Pair.PairSets) {
			break
		}
		for _, pv := range st.Pair.PairSets[inx] {
			if pv.SecondGlyph == g2 {
				return pv.Value1, pv.Value2, true
			}
		}
	case ot.GPosPairFmt2:
		return st.Pair.ClassPair(st.Pair.ClassDef1.Class(g1), st.Pair.ClassDef2.Class(g2))
	}
	return ot.ValueRecord{}, ot.ValueRecord{}, false
}

// --- GPOS lookup types 4, 5, 6: mark attachment -------------------------------

// markRecord finds the mark record for glyph g in a mark attachment subtable.
func markRecord(st *ot.Subtable, kind ot.SubtableKind, g ot.GlyphIndex) (ot.MarkRecord, bool) {
	if st.Kind != kind || st.Marks == nil {
		return ot.MarkRecord{}, false
	}
	inx, ok := st.Coverage.Index(g)
	if !ok || inx >= len(st.Marks.Marks) {
		return ot.MarkRecord{}, false
	}
	return st.Marks.Marks[inx], true
}

func classAnchor(anchors []*ot.Anchor, class uint16) *ot.Anchor {
	if int(class) >= len(anchors) {
		return nil
	}
	return anchors[class]
}

// findBase walks back from a mark to the first preceding glyph which is not
// skipped and is not a mark. It returns -1 if there is none within the window.
func (l *Lookup) findBase(line *GlyphLine, mark int) int {
	for p := l.prevMatchable(line, mark); p >= 0; p = l.prevMatchable(line, p) {
		if l.reader.glyphClass(line.glyphs[p].Code) != ot.MarkGlyph {
			return p
		}
	}
	return -1
}

func (l *Lookup) applyMarkToBase(line *GlyphLine) bool {
	mark := line.idx
	line.idx++
	code := line.glyphs[mark].Code
	base := -2 // not yet searched
	for i := range l.Subtables {
		st := &l.Subtables[i]
		rec, ok := markRecord(st, ot.GPosMarkToBase, code)
		if !ok {
			continue
		}
		if base == -2 {
			base = l.findBase(line, mark)
		}
		if base < 0 {
			return false
		}
		bi, ok := st.Marks.BaseCoverage.Index(line.glyphs[base].Code)
		if !ok || bi >= len(st.Marks.Bases) {
			continue
		}
		anchor := classAnchor(st.Marks.Bases[bi], rec.Class)
		if anchor == nil {
			continue
		}
		attach(&line.glyphs[mark], anchor, rec.Anchor, base-mark)
		return true
	}
	return false
}

// applyMarkToLigature attaches a mark to a ligature. The ligature component is
// taken from the mark's LigComponent, if known and if the component has an anchor
// for the mark's class. Otherwise the first component with such an anchor is used.
func (l *Lookup) applyMarkToLigature(line *GlyphLine) bool {
	mark := line.idx
	line.idx++
	g := &line.glyphs[mark]
	lig := -2
	for i := range l.Subtables {
		st := &l.Subtables[i]
		rec, ok := markRecord(st, ot.GPosMarkToLigature, g.Code)
		if !ok {
			continue
		}
		if lig == -2 {
			lig = l.findBase(line, mark)
		}
		if lig < 0 {
			return false
		}
		li, ok := st.Marks.BaseCoverage.Index(line.glyphs[lig].Code)
		if !ok || li >= len(st.Marks.Ligatures) {
			continue
		}
		components := st.Marks.Ligatures[li]
		var anchor *ot.Anchor
		if k := g.LigComponent; k >= 1 && k <= len(components) {
			anchor = classAnchor(components[k-1], rec.Class)
		}
		for c := 0; anchor == nil && c < len(components); c++ {
			anchor = classAnchor(components[c], rec.Class)
		}
		if anchor == nil {
			continue
		}
		attach(g, anchor, rec.Anchor, lig-mark)
		return true
	}
	return false
}

// findMark2 walks back from a mark to a preceding mark in coverage cov. The search
// stops at base glyphs: a mark will not attach to a mark of another cluster.
func (l *Lookup) findMark2(line *GlyphLine, mark int, cov ot.Coverage) int {
	classified := l.reader.gdef.HasGlyphClasses()
	for prev, p := mark, l.prevMatchable(line, mark); p >= 0; prev, p = p, l.prevMatchable(line, p) {
		for i := p; i < prev; i++ {
			if l.reader.glyphClass(line.glyphs[i].Code) == ot.BaseGlyph {
				return -1
			}
		}
		code := line.glyphs[p].Code
		if cov.Contains(code) {
			return p
		}
		if classified && l.reader.glyphClass(code) != ot.MarkGlyph {
			return -1
		}
	}
	return -1
}

func (l *Lookup) applyMarkToMark(line *GlyphLine) bool {
	mark := line.idx
	line.idx++
	code := line.glyphs[mark].Code
	for i := range l.Subtables {
		st := &l.Subtables[i]
		rec, ok := markRecord(st, ot.GPosMarkToMark, code)
		if !ok {
			continue
		}
		mark2 := l.findMark2(line, mark, st.Marks.BaseCoverage)
		if mark2 < 0 {
			continue
		}
		mi, _ := st.Marks.BaseCoverage.Index(line.glyphs[mark2].Code)
		if mi >= len(st.Marks.Bases) {
			continue
		}
		anchor := classAnchor(st.Marks.Bases[mi], rec.Class)
		if anchor == nil {
			continue
		}
		attach(&line.glyphs[mark], anchor, rec.Anchor, mark2-mark)
		return true
	}
	return false
}
