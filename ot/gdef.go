package ot

import (
	"fmt"
)

// GlyphClass is the GDEF class of a glyph.
type GlyphClass uint16

// Glyph classes as defined by the GDEF glyph class definition table.
const (
	Unclassified   GlyphClass = 0 // glyph not mentioned in the class definition
	BaseGlyph      GlyphClass = 1 // single character, spacing glyph
	LigatureGlyph  GlyphClass = 2 // multiple character, spacing glyph
	MarkGlyph      GlyphClass = 3 // non-spacing combining glyph
	ComponentGlyph GlyphClass = 4 // part of single character, spacing glyph
)

func (c GlyphClass) String() string {
	switch c {
	case BaseGlyph:
		return "Base"
	case LigatureGlyph:
		return "Ligature"
	case MarkGlyph:
		return "Mark"
	case ComponentGlyph:
		return "Component"
	}
	return "Unclassified"
}

// LookupFlag is the lookup qualifier of a lookup table. From the OpenType specification:
//
// “The LookupFlag uses two bytes of data: Each of the first four bits can be set in order to
// specify additional instructions for applying a lookup to a glyph string. The LookUpFlag bit
// enumeration lists the meaning of each bit. The high-order byte is set to specify the type of
// mark attachment.”
type LookupFlag uint16

// Lookup flag bits.
const (
	LOOKUP_FLAG_RIGHT_TO_LEFT             LookupFlag = 0x0001 // relevant for cursive attachment only
	LOOKUP_FLAG_IGNORE_BASE_GLYPHS        LookupFlag = 0x0002 // skip over base glyphs
	LOOKUP_FLAG_IGNORE_LIGATURES          LookupFlag = 0x0004 // skip over ligatures
	LOOKUP_FLAG_IGNORE_MARKS              LookupFlag = 0x0008 // skip over all combining marks
	LOOKUP_FLAG_USE_MARK_FILTERING_SET    LookupFlag = 0x0010 // lookup table structure contains the markFilteringSet field
	LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK LookupFlag = 0xFF00 // skip over all marks not of the given attachment class
)

// MarkAttachmentType returns the mark attachment class required by a flag, or 0.
func (flag LookupFlag) MarkAttachmentType() uint16 {
	return uint16(flag&LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK) >> 8
}

// --- GDEF table ------------------------------------------------------------

// GDef represents the GDEF table, holding glyph classes, mark attachment classes
// and mark glyph sets. The attachment point list, the ligature caret list and the
// item variation store are not decoded.
//
// A nil *GDef is valid and behaves as if the font had no GDEF table: all glyphs are
// unclassified and no glyph is ever skipped.
type GDef struct {
	Major, Minor     uint16
	glyphClassDef    ClassDef
	hasGlyphClassDef bool
	markAttachDef    ClassDef
	markGlyphSets    []Coverage
	errors           []FontError
}

// ParseGDef parses the bytes of a GDEF table.
//
// The GDEF table begins with a header that starts with a version number. Three
// versions are defined. Version 1.0 contains an offset to a Glyph Class Definition
// table (GlyphClassDef), an offset to an Attachment List table (AttachList), an offset
// to a Ligature Caret List table (LigCaretList), and an offset to a Mark Attachment
// Class Definition table (MarkAttachClassDef). Version 1.2 also includes an offset to
// a Mark Glyph Sets Definition table (MarkGlyphSetsDef). Version 1.3 also includes an
// offset to an Item Variation Store table.
func ParseGDef(data []byte) (*GDef, error) {
	b := binarySegm(data)
	ec := &errorCollector{}
	if len(b) < 12 {
		ec.addError(GDEF, "Header", fmt.Sprintf("GDEF header too small: %d bytes (need 12)", len(b)), SeverityCritical, 0)
		return nil, errFontFormat("GDEF table header too small")
	}
	gdef := &GDef{Major: b.U16(0), Minor: b.U16(2)}
	if gdef.Major != 1 || gdef.Minor > 3 {
		return nil, errFontFormat(fmt.Sprintf("unsupported GDEF version %d.%d", gdef.Major, gdef.Minor))
	}
	if off := int(b.U16(4)); off != 0 {
		cdef, err := ReadClassDef(b, off)
		if err != nil {
			ec.addError(GDEF, "GlyphClassDef", err.Error(), SeverityMajor, uint32(off))
		} else {
			gdef.glyphClassDef, gdef.hasGlyphClassDef = cdef, true
		}
	}
	// We do not parse the Attachment Point List nor the Ligature Caret List Table
	// (used for text editing/cursor positioning).
	if off := int(b.U16(10)); off != 0 {
		cdef, err := ReadClassDef(b, off)
		if err != nil {
			ec.addError(GDEF, "MarkAttachClassDef", err.Error(), SeverityMajor, uint32(off))
		} else {
			gdef.markAttachDef = cdef
		}
	}
	if gdef.Minor >= 2 {
		off, err := b.u16(12)
		if err != nil {
			ec.addError(GDEF, "Header", "GDEF v1.2+ header incomplete", SeverityCritical, 0)
			return nil, errFontFormat("GDEF v1.2+ header incomplete")
		}
		if off != 0 {
			gdef.markGlyphSets = parseMarkGlyphSets(b, int(off), ec)
		}
	}
	// We do not parse the Item Variation Store (GDEF v1.3, variable fonts only).
	gdef.errors = ec.errors
	tracer().Debugf("GDEF table has version %d.%d", gdef.Major, gdef.Minor)
	return gdef, nil
}

// Mark glyph sets are defined in a MarkGlyphSets table, which contains offsets to
// individual sets each represented by a standard Coverage table.
//
//	uint16    format                          Format identifier == 1
//	uint16    markGlyphSetCount               Number of mark glyph sets defined
//	Offset32  coverageOffsets[markGlyphSetCount]
func parseMarkGlyphSets(b binarySegm, offset int, ec *errorCollector) []Coverage {
	sets, err := b.at(offset)
	if err != nil || sets.U16(0) != 1 {
		ec.addError(GDEF, "MarkGlyphSets", "invalid mark glyph sets table", SeverityMajor, uint32(offset))
		return nil
	}
	count := int(sets.U16(2))
	covs := make([]Coverage, 0, count)
	for i := range count {
		off, err := sets.u32(4 + 4*i)
		if err != nil {
			ec.addError(GDEF, "MarkGlyphSets", "mark glyph set offsets truncated", SeverityMajor, uint32(offset))
			break
		}
		var cov Coverage
		if int64(off) < int64(len(sets)) {
			cov, err = parseCoverage(sets[off:])
		}
		if err != nil {
			ec.addError(GDEF, "MarkGlyphSets", err.Error(), SeverityMinor, uint32(offset)+off)
		}
		covs = append(covs, cov)
	}
	return covs
}

// Errors returns the (non-fatal) errors encountered during parsing.
func (gdef *GDef) Errors() []FontError {
	if gdef == nil {
		return nil
	}
	return gdef.errors
}

// GlyphClass returns the GDEF class of glyph g.
func (gdef *GDef) GlyphClass(g GlyphIndex) GlyphClass {
	if gdef == nil || !gdef.hasGlyphClassDef {
		return Unclassified
	}
	return GlyphClass(gdef.glyphClassDef.Class(g))
}

// HasGlyphClasses is true if the GDEF table contains a glyph class definition table.
func (gdef *GDef) HasGlyphClasses() bool {
	return gdef != nil && gdef.hasGlyphClassDef
}

// MarkAttachClass returns the mark attachment class of glyph g, or 0.
func (gdef *GDef) MarkAttachClass(g GlyphIndex) uint16 {
	if gdef == nil {
		return 0
	}
	return gdef.markAttachDef.Class(g)
}

// InMarkGlyphSet is true if glyph g is a member of mark glyph set number set.
func (gdef *GDef) InMarkGlyphSet(set uint16, g GlyphIndex) bool {
	if gdef == nil || int(set) >= len(gdef.markGlyphSets) {
		return false
	}
	return gdef.markGlyphSets[set].Contains(g)
}

// IsSkip is the lookup-flag skip predicate: it tells if glyph g has to be ignored
// by a lookup with flag `flag`.
//
// A glyph is skipped if its class is one the flag says to ignore (base glyphs, ligatures
// or marks). Moreover, if the flag requires a mark attachment type, marks of a different
// mark attachment class are skipped. Base glyphs are never skipped because of a mark
// attachment type. Without a glyph class definition no glyph will be skipped.
func (gdef *GDef) IsSkip(g GlyphIndex, flag LookupFlag) bool {
	if !gdef.HasGlyphClasses() {
		return false
	}
	class := gdef.GlyphClass(g)
	switch {
	case class == BaseGlyph && flag&LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0:
		return true
	case class == LigatureGlyph && flag&LOOKUP_FLAG_IGNORE_LIGATURES != 0:
		return true
	case class == MarkGlyph && flag&LOOKUP_FLAG_IGNORE_MARKS != 0:
		return true
	}
	if matype := flag.MarkAttachmentType(); matype != 0 {
		return class == MarkGlyph && gdef.MarkAttachClass(g) != matype
	}
	return false
}

// IsSkipFiltered extends IsSkip with respect to mark filtering sets: if flag contains
// LOOKUP_FLAG_USE_MARK_FILTERING_SET, marks not in mark glyph set `markSet` are skipped.
func (gdef *GDef) IsSkipFiltered(g GlyphIndex, flag LookupFlag, markSet uint16) bool {
	if gdef.IsSkip(g, flag) {
		return true
	}
	if flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 && gdef.GlyphClass(g) == MarkGlyph {
		return !gdef.InMarkGlyphSet(markSet, g)
	}
	return false
}
