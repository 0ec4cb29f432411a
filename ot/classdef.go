package ot

import (
	"fmt"
	"sort"
)

// ClassDef is a total function from glyph IDs to small integer classes.
// Glyphs not mentioned in the table are of class 0.
//
// The ClassDef table can have either of two formats: one that assigns a range of
// consecutive glyph indices to different classes, or one that puts groups of consecutive
// glyph indices into the same class.
//
// The zero value maps every glyph to class 0.
type ClassDef struct {
	format     uint16
	startGlyph GlyphIndex   // format 1
	classes    []uint16     // format 1
	ranges     []classRange // format 2
	sorted     bool
}

type classRange struct {
	from, to GlyphIndex
	class    uint16
}

// ReadClassDef reads a class definition table of format 1 or 2 at offset within b.
// A negative offset is a programming error and will panic.
func ReadClassDef(b []byte, offset int) (ClassDef, error) {
	if offset < 0 {
		panic(fmt.Sprintf("class definition table read at negative offset %d", offset))
	}
	if offset >= len(b) {
		return ClassDef{}, errFontFormat("ClassDef offset beyond table")
	}
	return parseClassDef(binarySegm(b[offset:]))
}

func parseClassDef(b binarySegm) (ClassDef, error) {
	format, err := b.u16(0)
	if err != nil {
		return ClassDef{}, errFontFormat("ClassDef table too small")
	}
	cdef := ClassDef{format: format, sorted: true}
	switch format {
	case 1:
		start, err1 := b.u16(2)
		n, err2 := b.u16(4) // number of glyph IDs in table
		if err1 != nil || err2 != nil {
			return ClassDef{}, errFontFormat("ClassDef format 1 header incomplete")
		}
		cdef.startGlyph = GlyphIndex(start)
		if cdef.classes, err = b.u16Array(6, int(n)); err != nil {
			return ClassDef{}, errFontFormat(fmt.Sprintf("ClassDef format 1 array extends beyond bounds: need %d bytes, have %d",
				6+int(n)*2, len(b)))
		}
	case 2:
		n, err := b.u16(2) // number of glyph ID ranges in table
		if err != nil {
			return ClassDef{}, errFontFormat("ClassDef format 2 header incomplete")
		}
		raw, err := b.u16Array(4, int(n)*3)
		if err != nil {
			return ClassDef{}, errFontFormat(fmt.Sprintf("ClassDef format 2 array extends beyond bounds: need %d bytes, have %d",
				4+int(n)*6, len(b)))
		}
		cdef.ranges = make([]classRange, n)
		for i := range cdef.ranges {
			cdef.ranges[i] = classRange{
				from:  GlyphIndex(raw[3*i]),
				to:    GlyphIndex(raw[3*i+1]),
				class: raw[3*i+2],
			}
			if i > 0 && cdef.ranges[i].from <= cdef.ranges[i-1].to {
				cdef.sorted = false
			}
		}
	default:
		return ClassDef{}, errFontFormat(fmt.Sprintf("unknown ClassDef format %d", format))
	}
	return cdef, nil
}

// Format returns the table format (1 or 2), or 0 for an empty class definition.
func (cdef ClassDef) Format() uint16 {
	return cdef.format
}

// Class returns the class of glyph g. Glyphs not covered by the table are
// of class 0.
func (cdef ClassDef) Class(g GlyphIndex) uint16 {
	switch cdef.format {
	case 1:
		if g < cdef.startGlyph {
			return 0
		}
		if i := int(g - cdef.startGlyph); i < len(cdef.classes) {
			return cdef.classes[i]
		}
	case 2:
		if cdef.sorted {
			i := sort.Search(len(cdef.ranges), func(i int) bool { return cdef.ranges[i].to >= g })
			if i < len(cdef.ranges) && cdef.ranges[i].from <= g {
				return cdef.ranges[i].class
			}
			return 0
		}
		for _, r := range cdef.ranges {
			if r.from <= g && g <= r.to {
				return r.class
			}
		}
	}
	return 0
}

// MaxClass returns the highest class value used in the table.
func (cdef ClassDef) MaxClass() uint16 {
	var m uint16
	for _, c := range cdef.classes {
		m = max(m, c)
	}
	for _, r := range cdef.ranges {
		m = max(m, r.class)
	}
	return m
}
