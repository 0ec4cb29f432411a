package otbuild

// --- Common tables ---------------------------------------------------------

// Coverage1 creates a coverage table of format 1.
func Coverage1(glyphs ...uint16) *Node {
	return New().U16(1, uint16(len(glyphs))).U16(glyphs...)
}

// Range is a range record of a coverage or class definition table. Value is the
// start coverage index resp. the class.
type Range struct {
	From, To, Value uint16
}

// Coverage2 creates a coverage table of format 2.
func Coverage2(ranges ...Range) *Node {
	n := New().U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		n.U16(r.From, r.To, r.Value)
	}
	return n
}

// ClassDef1 creates a class definition table of format 1.
func ClassDef1(start uint16, classes ...uint16) *Node {
	return New().U16(1, start, uint16(len(classes))).U16(classes...)
}

// ClassDef2 creates a class definition table of format 2.
func ClassDef2(ranges ...Range) *Node {
	n := New().U16(2, uint16(len(ranges)))
	for _, r := range ranges {
		n.U16(r.From, r.To, r.Value)
	}
	return n
}

// Anchor creates an anchor table of format 1.
func Anchor(x, y int16) *Node {
	return New().U16(1).I16(x, y)
}

// --- Layout table header and lists -----------------------------------------

// Layout describes a GSUB or GPOS table.
type Layout struct {
	Minor    uint16
	Scripts  []Script
	Features []Feature
	Lookups  []*Node
}

// Script is a script record with its language systems.
type Script struct {
	Tag     string
	Default *LangSys
	Langs   []LangSys
}

// LangSys is a language system record. Required is the index of the required
// feature and only valid if HasRequired is set.
type LangSys struct {
	Tag         string
	Features    []uint16
	Required    uint16
	HasRequired bool
}

// Feature is a feature record.
type Feature struct {
	Tag     string
	Lookups []uint16
}

// Node creates the table tree for a layout table.
func (lyt Layout) Node() *Node {
	scripts := New().U16(uint16(len(lyt.Scripts)))
	for _, s := range lyt.Scripts {
		script := New().Off16(langSysNode(s.Default)).U16(uint16(len(s.Langs)))
		for i := range s.Langs {
			script.Tag(s.Langs[i].Tag).Off16(langSysNode(&s.Langs[i]))
		}
		scripts.Tag(s.Tag).Off16(script)
	}
	features := New().U16(uint16(len(lyt.Features)))
	for _, f := range lyt.Features {
		feature := New().U16(0, uint16(len(f.Lookups))).U16(f.Lookups...)
		features.Tag(f.Tag).Off16(feature)
	}
	lookups := New().U16(uint16(len(lyt.Lookups)))
	for _, l := range lyt.Lookups {
		lookups.Off16(l)
	}
	root := New().U16(1, lyt.Minor).Off16(scripts).Off16(features).Off16(lookups)
	if lyt.Minor == 1 {
		root.U32(0) // no feature variations
	}
	return root
}

// Bytes serializes the layout table.
func (lyt Layout) Bytes() []byte {
	return lyt.Node().Bytes()
}

func langSysNode(ls *LangSys) *Node {
	if ls == nil {
		return nil
	}
	required := uint16(0xFFFF)
	if ls.HasRequired {
		required = ls.Required
	}
	return New().U16(0, required, uint16(len(ls.Features))).U16(ls.Features...)
}

// Lookup creates a lookup table.
func Lookup(lookupType, flag uint16, subtables ...*Node) *Node {
	n := New().U16(lookupType, flag, uint16(len(subtables)))
	for _, st := range subtables {
		n.Off16(st)
	}
	return n
}

// FilteredLookup creates a lookup table using a mark filtering set. The flag
// USE_MARK_FILTERING_SET is set automatically.
func FilteredLookup(lookupType, flag, markSet uint16, subtables ...*Node) *Node {
	return Lookup(lookupType, flag|0x0010, subtables...).U16(markSet)
}

// Extension wraps a subtable in an extension subtable (GSUB 7, GPOS 9).
func Extension(lookupType uint16, subtable *Node) *Node {
	return New().U16(1, lookupType).Off32(subtable)
}

// --- GDEF ------------------------------------------------------------------

// GDEF creates a GDEF table. glyphClasses and markAttach are class definition
// tables and may be nil. If mark glyph sets are given, the table has version 1.2,
// otherwise 1.0.
func GDEF(glyphClasses, markAttach *Node, markSets ...*Node) *Node {
	minor := uint16(0)
	if len(markSets) > 0 {
		minor = 2
	}
	n := New().U16(1, minor).Off16(glyphClasses).U16(0, 0).Off16(markAttach)
	if minor == 2 {
		sets := New().U16(1, uint16(len(markSets)))
		for _, s := range markSets {
			sets.Off32(s)
		}
		n.Off16(sets)
	}
	return n
}
