package otlayout

import (
	"fmt"
	"slices"
	"strings"
)

// GlyphLine is a sequence of glyphs under shaping, with a processing cursor.
//
// The line has an active window [start, end) and a processing index idx. Lookups
// read and advance idx and may narrow the window temporarily (for nested lookups of
// contextual rules). The invariant
//
//	0 <= start <= idx <= end <= Len()
//
// is enforced by all operations; operations which would violate it panic.
//
// Optionally, ranges of glyphs may carry an actual text, i.e. a Unicode string to be
// used for text extraction instead of the glyphs' characters (see SetActualText).
//
// A GlyphLine is owned by a single shaping operation and is not safe for concurrent use.
type GlyphLine struct {
	glyphs          []Glyph
	actual          []*actualText // nil, or parallel to glyphs
	start, end, idx int
}

// actualText entries are shared by all glyphs of a run; runs are identified by
// pointer identity.
type actualText struct {
	value string
}

// NewGlyphLine creates a glyph line for glyphs, with the window spanning all glyphs.
// The line takes ownership of the slice.
func NewGlyphLine(glyphs []Glyph) *GlyphLine {
	return &GlyphLine{glyphs: glyphs, end: len(glyphs)}
}

// NewGlyphLineWindow creates a glyph line with an active window [start, end).
// It panics if 0 <= start <= end <= len(glyphs) does not hold.
func NewGlyphLineWindow(glyphs []Glyph, start, end int) *GlyphLine {
	checkWindow(start, end, len(glyphs))
	return &GlyphLine{glyphs: glyphs, start: start, end: end, idx: start}
}

func checkWindow(start, end, n int) {
	if start < 0 || start > end || end > n {
		panic(fmt.Sprintf("glyph line window [%d,%d) invalid for line of length %d", start, end, n))
	}
}

// Start is the start of the active window.
func (l *GlyphLine) Start() int { return l.start }

// End is the (exclusive) end of the active window.
func (l *GlyphLine) End() int { return l.end }

// Index is the current processing position.
func (l *GlyphLine) Index() int { return l.idx }

// Len is the number of glyphs in the line.
func (l *GlyphLine) Len() int { return len(l.glyphs) }

// SetIndex sets the processing position. It panics if i is outside [Start, End].
func (l *GlyphLine) SetIndex(i int) {
	if i < l.start || i > l.end {
		panic(fmt.Sprintf("glyph line index %d outside of window [%d,%d]", i, l.start, l.end))
	}
	l.idx = i
}

// SetWindow sets the active window. It panics if 0 <= start <= end <= Len() does not
// hold. The processing position is moved into the window if necessary.
func (l *GlyphLine) SetWindow(start, end int) {
	checkWindow(start, end, len(l.glyphs))
	l.start, l.end = start, end
	l.idx = min(max(l.idx, start), end)
}

// Get returns the glyph at position i.
func (l *GlyphLine) Get(i int) Glyph {
	return l.glyphs[i]
}

// Set replaces the glyph at position i and returns the previous one.
func (l *GlyphLine) Set(i int, g Glyph) Glyph {
	prev := l.glyphs[i]
	l.glyphs[i] = g
	return prev
}

// Glyphs returns a copy of all glyphs of the line.
func (l *GlyphLine) Glyphs() []Glyph {
	return slices.Clone(l.glyphs)
}

// Add appends a glyph. If the active window reaches up to the end of the line, it is
// extended to include the new glyph.
func (l *GlyphLine) Add(g Glyph) {
	extend := l.end == len(l.glyphs)
	l.glyphs = append(l.glyphs, g)
	if l.actual != nil {
		l.actual = append(l.actual, nil)
	}
	if extend {
		l.end++
	}
}

// Copy returns a new line with the glyphs [from, to), including their actual text.
// The window of the new line spans all of its glyphs.
func (l *GlyphLine) Copy(from, to int) *GlyphLine {
	checkWindow(from, to, len(l.glyphs))
	c := NewGlyphLine(slices.Clone(l.glyphs[from:to]))
	for i := range c.glyphs {
		c.glyphs[i].Chars = slices.Clone(c.glyphs[i].Chars)
	}
	if l.actual != nil {
		c.actual = slices.Clone(l.actual[from:to])
	}
	return c
}

// SetActualText sets text as the actual text for glyphs [from, to), replacing any
// previous actual text of these glyphs.
func (l *GlyphLine) SetActualText(from, to int, text string) {
	checkWindow(from, to, len(l.glyphs))
	if l.actual == nil {
		l.actual = make([]*actualText, len(l.glyphs))
	}
	at := &actualText{value: text}
	for i := from; i < to; i++ {
		l.actual[i] = at
	}
}

// ActualText returns the actual text of the run glyph i belongs to, if any.
func (l *GlyphLine) ActualText(i int) (string, bool) {
	if l.actual == nil || l.actual[i] == nil {
		return "", false
	}
	return l.actual[i].value, true
}

func (l *GlyphLine) actualAt(i int) *actualText {
	if l.actual == nil {
		return nil
	}
	return l.actual[i]
}

// Equal compares glyphs, actual text runs and the active window. The processing
// position is not taken into account.
func (l *GlyphLine) Equal(other *GlyphLine) bool {
	if l == nil || other == nil {
		return l == other
	}
	if l.start != other.start || l.end != other.end || len(l.glyphs) != len(other.glyphs) {
		return false
	}
	for i := range l.glyphs {
		if !l.glyphs[i].Equal(other.glyphs[i]) {
			return false
		}
		a, b := l.actualAt(i), other.actualAt(i)
		if (a == nil) != (b == nil) || (a != nil && a.value != b.value) {
			return false
		}
		if i > 0 && (a == l.actualAt(i-1)) != (b == other.actualAt(i-1)) {
			return false // run boundaries differ
		}
	}
	return true
}

// String returns the text of the active window, see ToUnicodeString.
func (l *GlyphLine) String() string {
	return l.ToUnicodeString(l.start, l.end)
}

// ToUnicodeString returns the text represented by glyphs [from, to). Actual text is
// used where present.
func (l *GlyphLine) ToUnicodeString(from, to int) string {
	var b strings.Builder
	it := newActualTextIterator(l, from, to)
	for part, ok := it.Next(); ok; part, ok = it.Next() {
		if part.ActualText != nil {
			b.WriteString(*part.ActualText)
			continue
		}
		for i := part.Start; i < part.End; i++ {
			b.WriteString(l.glyphs[i].Text())
		}
	}
	return b.String()
}

// --- Substitution primitives -----------------------------------------------

// adjust moves a cursor position after the range [from, to) has been replaced by
// n glyphs. A sticky position stays in front of glyphs inserted at it.
func adjust(pos, from, to, n int, sticky bool) int {
	switch {
	case pos > to, pos == to && (from < to || !sticky):
		return pos + n - (to - from)
	case pos > from:
		return min(pos, from+n)
	}
	return pos
}

// ReplaceRange replaces glyphs [from, to) with repl. Replacement glyphs inherit the
// actual text of glyph from; glyphs inserted into a run of actual text join the run.
// Window and processing position are adjusted to the change in length. Glyphs
// inserted at the processing position will be processed next.
func (l *GlyphLine) ReplaceRange(from, to int, repl ...Glyph) {
	checkWindow(from, to, len(l.glyphs))
	if l.actual != nil {
		var at *actualText
		if from < to {
			at = l.actual[from]
		} else if from > 0 && from < len(l.actual) && l.actual[from-1] == l.actual[from] {
			at = l.actual[from]
		}
		fill := make([]*actualText, len(repl))
		for i := range fill {
			fill[i] = at
		}
		l.actual = slices.Replace(l.actual, from, to, fill...)
	}
	l.glyphs = slices.Replace(l.glyphs, from, to, repl...)
	n := len(repl)
	l.start = adjust(l.start, from, to, n, true)
	l.end = adjust(l.end, from, to, n, false)
	l.idx = adjust(l.idx, from, to, n, true)
}

// InsertAt inserts glyphs before position i.
func (l *GlyphLine) InsertAt(i int, glyphs ...Glyph) {
	l.ReplaceRange(i, i, glyphs...)
}

// RemoveAt removes the glyph at position i, together with its actual text entry.
func (l *GlyphLine) RemoveAt(i int) {
	l.ReplaceRange(i, i+1)
}
