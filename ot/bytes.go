package ot

import (
	"errors"
)

// Reading bytes from a font's binary representation

var errBufferBounds = errors.New("internal inconsistency: buffer bounds error")

func u16(b []byte) uint16 {
	_ = b[1] // Bounds check hint to compiler
	return uint16(b[0])<<8 | uint16(b[1])<<0
}

func u32(b []byte) uint32 {
	_ = b[3] // Bounds check hint to compiler
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])<<0
}

// ---Locations, i.e. byte segments/slices -----------------------------------

// binarySegm is a segment of byte data.
// We use it throughout this module to navigate the font's binary data.
// All accessors are relative to the start of the segment, which usually is the
// start of the (sub-)table the segment represents. OpenType offsets are relative
// to the start of the table containing them, thus sub-tables are reached by
// re-slicing with at().
type binarySegm []byte

func (b binarySegm) Size() int {
	return len(b)
}

// U16 returns the uint16 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U16(i int) uint16 {
	n, err := b.u16(i)
	if err != nil {
		return 0
	}
	return n
}

// U32 returns the uint32 at byte index i, or 0 if i is out of bounds.
func (b binarySegm) U32(i int) uint32 {
	n, err := b.u32(i)
	if err != nil {
		return 0
	}
	return n
}

// view returns n bytes at the given offset.
// The byte segment returned is a sub-slice of b.
func (b binarySegm) view(offset, n int) (binarySegm, error) {
	if offset < 0 || n <= 0 || offset+n > len(b) {
		return nil, errBufferBounds
	}
	return b[offset : offset+n], nil
}

// u16 returns the uint16 in b at the relative offset i.
func (b binarySegm) u16(i int) (uint16, error) {
	buf, err := b.view(i, 2)
	if err != nil {
		return 0, err
	}
	return u16(buf), nil
}

// i16 returns the int16 in b at the relative offset i.
func (b binarySegm) i16(i int) (int16, error) {
	n, err := b.u16(i)
	return int16(n), err
}

// u32 returns the uint32 in b at the relative offset i.
func (b binarySegm) u32(i int) (uint32, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return u32(buf), nil
}

// at returns the sub-segment starting at offset, i.e. follows a link to a
// sub-table. A zero offset is a NULL link in OpenType and yields errBufferBounds.
func (b binarySegm) at(offset int) (binarySegm, error) {
	if offset <= 0 || offset >= len(b) {
		return nil, errBufferBounds
	}
	return b[offset:], nil
}

// link16 reads an Offset16 at byte index i and follows it.
func (b binarySegm) link16(i int) (binarySegm, error) {
	off, err := b.u16(i)
	if err != nil {
		return nil, err
	}
	return b.at(int(off))
}

// u16Array reads n consecutive uint16 values starting at byte index i.
func (b binarySegm) u16Array(i, n int) ([]uint16, error) {
	if n == 0 {
		return nil, nil
	}
	buf, err := b.view(i, 2*n)
	if err != nil {
		return nil, err
	}
	r := make([]uint16, n)
	for j := range n {
		r[j] = u16(buf[2*j:])
	}
	return r, nil
}

// glyphArray reads n consecutive glyph IDs starting at byte index i.
func (b binarySegm) glyphArray(i, n int) ([]GlyphIndex, error) {
	if n == 0 {
		return nil, nil
	}
	buf, err := b.view(i, 2*n)
	if err != nil {
		return nil, err
	}
	r := make([]GlyphIndex, n)
	for j := range n {
		r[j] = GlyphIndex(u16(buf[2*j:]))
	}
	return r, nil
}

// tagAt reads a 4-byte tag at byte index i.
func (b binarySegm) tagAt(i int) (Tag, error) {
	buf, err := b.view(i, 4)
	if err != nil {
		return 0, err
	}
	return MakeTag(buf), nil
}
