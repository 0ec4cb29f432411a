package ot

import (
	"fmt"
	"slices"
	"sort"
)

// Maximum reasonable counts for OpenType table structures.
// These limits prevent malicious fonts from claiming unreasonably large counts
// that could lead to excessive memory allocation or out-of-bounds reads.
const (
	MaxScriptCount   = 200   // Scripts: typically < 10
	MaxLangSysCount  = 500   // Language systems per script
	MaxFeatureCount  = 1000  // Features: typically < 200
	MaxLookupCount   = 5000  // Lookups: typically < 100
)

// Maximum recursion/nesting depths to prevent stack overflow.
const (
	MaxExtensionDepth = 1 // Extension lookups must not point to extension lookups
	MaxNestingDepth   = 8 // Nested lookups of contextual lookups
)

// --- Coverage --------------------------------------------------------------

// Coverage is a set of glyph IDs, each associated with a coverage index.
// From the OpenType specification:
//
// “Each subtable (except an Extension LookupType subtable) in a lookup references a Coverage
// table (Coverage), which specifies all the glyphs affected by a substitution or positioning
// operation described in the subtable. [...] The Coverage Index is used to locate the
// corresponding value or rule in a parallel array.”
//
// Format 1 lists glyph IDs individually, format 2 lists ranges of consecutive glyph IDs.
// The zero value is an empty coverage.
type Coverage struct {
	format uint16
	glyphs []GlyphIndex    // format 1
	ranges []coverageRange // format 2
	sorted bool            // glyphs resp. ranges are in ascending order
	size   int             // number of glyphs covered
}

type coverageRange struct {
	from, to   GlyphIndex
	startIndex uint16
}

// ParseCoverage reads a coverage table of format 1 or 2, located at offset within b.
// A negative offset is a programming error and will panic. Malformed data results
// in an error wrapping ErrFontFormat.
func ParseCoverage(b []byte, offset int) (Coverage, error) {
	if offset < 0 {
		panic(fmt.Sprintf("coverage table read at negative offset %d", offset))
	}
	if offset >= len(b) {
		return Coverage{}, errFontFormat("coverage offset beyond table")
	}
	return parseCoverage(binarySegm(b[offset:]))
}

// ReadCoverageFormat reads a coverage table of format 1 or 2 at offset within b and
// returns the covered glyphs in coverage-index order.
func ReadCoverageFormat(b []byte, offset int) ([]GlyphIndex, error) {
	cov, err := ParseCoverage(b, offset)
	if err != nil {
		return nil, err
	}
	return cov.Glyphs(), nil
}

func parseCoverage(b binarySegm) (Coverage, error) {
	format, err := b.u16(0)
	if err != nil {
		return Coverage{}, errFontFormat("coverage table header truncated")
	}
	count, err := b.u16(2)
	if err != nil {
		return Coverage{}, errFontFormat("coverage table header truncated")
	}
	cov := Coverage{format: format, sorted: true}
	switch format {
	case 1:
		// Format 1: array of glyph IDs (2 bytes each)
		if cov.glyphs, err = b.glyphArray(4, int(count)); err != nil {
			tracer().Errorf("coverage format 1 extends beyond bounds: need %d, have %d",
				4+int(count)*2, len(b))
			return Coverage{}, errFontFormat("coverage format 1 array truncated")
		}
		for i := 1; i < len(cov.glyphs); i++ {
			if cov.glyphs[i] <= cov.glyphs[i-1] {
				cov.sorted = false
				break
			}
		}
		cov.size = len(cov.glyphs)
	case 2:
		// Format 2: array of range records (6 bytes each: start, end, startCoverageIndex)
		raw, err := b.u16Array(4, int(count)*3)
		if err != nil {
			tracer().Errorf("coverage format 2 extends beyond bounds: need %d, have %d",
				4+int(count)*6, len(b))
			return Coverage{}, errFontFormat("coverage format 2 array truncated")
		}
		cov.ranges = make([]coverageRange, count)
		for i := range cov.ranges {
			r := coverageRange{
				from:       GlyphIndex(raw[3*i]),
				to:         GlyphIndex(raw[3*i+1]),
				startIndex: raw[3*i+2],
			}
			cov.ranges[i] = r
			if r.to >= r.from {
				cov.size += int(r.to-r.from) + 1
			} else {
				cov.sorted = false // binary search would stumble over it
			}
			if i > 0 && r.from <= cov.ranges[i-1].to {
				cov.sorted = false
			}
		}
	default:
		tracer().Errorf("unknown coverage format %d", format)
		return Coverage{}, errFontFormat(fmt.Sprintf("unknown coverage format %d", format))
	}
	tracer().Debugf("coverage format %d covers %d glyphs", format, cov.size)
	return cov, nil
}

// Format returns the coverage format (1 or 2), or 0 for an empty coverage.
func (c Coverage) Format() uint16 {
	return c.format
}

// Len returns the number of glyphs covered.
func (c Coverage) Len() int {
	return c.size
}

// Contains is true if glyph g is covered.
func (c Coverage) Contains(g GlyphIndex) bool {
	_, ok := c.Index(g)
	return ok
}

// Index returns the coverage index of glyph g, if g is covered.
// 0 is a valid coverage index.
func (c Coverage) Index(g GlyphIndex) (int, bool) {
	switch c.format {
	case 1:
		if c.sorted {
			i := sort.Search(len(c.glyphs), func(i int) bool { return c.glyphs[i] >= g })
			if i < len(c.glyphs) && c.glyphs[i] == g {
				return i, true
			}
			return 0, false
		}
		if i := slices.Index(c.glyphs, g); i >= 0 {
			return i, true
		}
	case 2:
		if c.sorted {
			i := sort.Search(len(c.ranges), func(i int) bool { return c.ranges[i].to >= g })
			if i < len(c.ranges) && c.ranges[i].from <= g && g <= c.ranges[i].to {
				return int(c.ranges[i].startIndex) + int(g-c.ranges[i].from), true
			}
			return 0, false
		}
		for _, r := range c.ranges {
			if r.from <= g && g <= r.to {
				return int(r.startIndex) + int(g-r.from), true
			}
		}
	}
	return 0, false
}

// Glyphs returns the covered glyphs, ordered by coverage index.
// Ranges with an end glyph below their start glyph are treated as empty.
func (c Coverage) Glyphs() []GlyphIndex {
	switch c.format {
	case 1:
		return slices.Clone(c.glyphs)
	case 2:
		ranges := slices.Clone(c.ranges)
		slices.SortStableFunc(ranges, func(a, b coverageRange) int {
			return int(a.startIndex) - int(b.startIndex)
		})
		glyphs := make([]GlyphIndex, 0, c.size)
		for _, r := range ranges {
			if r.to < r.from {
				continue
			}
			for g := int(r.from); g <= int(r.to); g++ {
				glyphs = append(glyphs, GlyphIndex(g))
			}
		}
		return glyphs
	}
	return nil
}
