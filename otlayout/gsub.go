package otlayout

import (
	"github.com/npillmayer/otshaping/ot"
)

// --- GSUB lookup type 4: ligature substitution --------------------------------

// applyLigature replaces a sequence of component glyphs by a ligature glyph.
// Glyphs skipped between the components stay in place, following the ligature.
// Marks among them remember the component they followed (see Glyph.LigComponent).
func (l *Lookup) applyLigature(line *GlyphLine) bool {
	first := line.idx
	code := line.glyphs[first].Code
	for i := range l.Subtables {
		st := &l.Subtables[i]
		if st.Kind != ot.GSubLigature || st.Ligature == nil {
			continue
		}
		inx, ok := st.Coverage.Index(code)
		if !ok || inx >= len(st.Ligature.LigatureSets) {
			continue
		}
		for _, lig := range st.Ligature.LigatureSets[inx] {
			if positions, ok := l.matchComponents(line, lig.Components); ok {
				l.substituteLigature(line, positions, lig.Glyph)
				line.idx = first + 1
				return true
			}
		}
	}
	line.idx++
	return false
}

// matchComponents matches the components following the glyph at the current
// position. It returns the positions of all the ligature's glyphs.
func (l *Lookup) matchComponents(line *GlyphLine, components []ot.GlyphIndex) ([]int, bool) {
	positions := make([]int, 1, len(components)+1)
	positions[0] = line.idx
	pos := line.idx
	for _, c := range components {
		if pos = l.nextMatchable(line, pos); pos < 0 || line.glyphs[pos].Code != c {
			return nil, false
		}
		positions = append(positions, pos)
	}
	return positions, true
}

func (l *Lookup) substituteLigature(line *GlyphLine, positions []int, code ot.GlyphIndex) {
	var chars []rune
	for _, p := range positions {
		chars = append(chars, []rune(line.glyphs[p].Text())...)
	}
	for k := 1; k < len(positions); k++ {
		for i := positions[k-1] + 1; i < positions[k]; i++ {
			if l.reader.glyphClass(line.glyphs[i].Code) == ot.MarkGlyph {
				line.glyphs[i].LigComponent = k
			}
		}
	}
	first := positions[0]
	tracer().Debugf("ligature %d replaces %d glyphs at %d", code, len(positions), first)
	lig := l.reader.Glyph(code)
	lig.Chars = chars
	line.glyphs[first] = lig
	for k := len(positions) - 1; k > 0; k-- {
		line.RemoveAt(positions[k])
	}
}
