package otlayout

import (
	"iter"
	"strings"
)

// GlyphLinePart is a run of glyphs [Start, End) of a glyph line.
//
// ActualText is set if the run needs its actual text for text extraction, i.e. if
// the text cannot be recovered from the glyphs' Unicode values. It is nil otherwise.
type GlyphLinePart struct {
	Start, End int
	ActualText *string
	Reversed   bool // run is in reversed order; set by bidi reordering, not by this package
}

// Len is the number of glyphs in the run.
func (p GlyphLinePart) Len() int {
	return p.End - p.Start
}

// ActualTextIterator splits the active window of a glyph line into parts.
// Consecutive parts which do not need an actual text are merged into one.
// For a line without any actual text, there is a single part for the whole window.
//
// The iterator reads the line at the time Next is called; the line should not be
// modified while iterating.
type ActualTextIterator struct {
	line     *GlyphLine
	from, to int
	pos      int
}

// NewActualTextIterator creates an iterator over the active window of line.
func NewActualTextIterator(line *GlyphLine) *ActualTextIterator {
	return newActualTextIterator(line, line.start, line.end)
}

func newActualTextIterator(line *GlyphLine, from, to int) *ActualTextIterator {
	checkWindow(from, to, line.Len())
	return &ActualTextIterator{line: line, from: from, to: to, pos: from}
}

// Reset moves the iterator back to the first part.
func (it *ActualTextIterator) Reset() {
	it.pos = it.from
}

// Next returns the next part. It returns false if there are no more parts.
func (it *ActualTextIterator) Next() (GlyphLinePart, bool) {
	if it.pos >= it.to {
		return GlyphLinePart{}, false
	}
	if it.line.actual == nil {
		part := GlyphLinePart{Start: it.pos, End: it.to}
		it.pos = it.to
		return part, true
	}
	part := it.nextRun(it.pos)
	it.pos = part.End
	if !it.needsActualText(part) {
		part.ActualText = nil
		for it.pos < it.to {
			next := it.nextRun(it.pos)
			if it.needsActualText(next) {
				break
			}
			part.End = next.End
			it.pos = next.End
		}
	}
	return part, true
}

// nextRun collects glyphs sharing the same actual text entry, starting at pos.
func (it *ActualTextIterator) nextRun(pos int) GlyphLinePart {
	at := it.line.actual[pos]
	start := pos
	for pos < it.to && it.line.actual[pos] == at {
		pos++
	}
	part := GlyphLinePart{Start: start, End: pos}
	if at != nil {
		text := at.value
		part.ActualText = &text
	}
	return part
}

// needsActualText is false for runs without actual text, and for runs whose
// glyphs all map to Unicode values which, concatenated, equal the actual text.
func (it *ActualTextIterator) needsActualText(part GlyphLinePart) bool {
	if part.ActualText == nil {
		return false
	}
	var b strings.Builder
	for i := part.Start; i < part.End; i++ {
		g := it.line.glyphs[i]
		if !g.HasValidUnicode() {
			return true
		}
		b.WriteRune(g.Unicode)
	}
	return b.String() != *part.ActualText
}

// ActualTextParts iterates over the parts of the active window, see ActualTextIterator.
func (l *GlyphLine) ActualTextParts() iter.Seq[GlyphLinePart] {
	return func(yield func(GlyphLinePart) bool) {
		it := NewActualTextIterator(l)
		for part, ok := it.Next(); ok; part, ok = it.Next() {
			if !yield(part) {
				return
			}
		}
	}
}
