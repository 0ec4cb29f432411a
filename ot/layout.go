package ot

import (
	"fmt"
	"iter"
	"slices"
	"sync"
)

// LayoutTable is the part of GSUB and GPOS common to both tables: a script list,
// a feature list and a lookup list. GSUB and GPOS differ only in the way lookup
// subtables are interpreted, which is expressed by a subtable factory.
//
// Script list and feature list are parsed when the table is created. Lookups are
// decoded lazily and cached; the cache is filled at most once per lookup and is
// safe for concurrent readers.
type LayoutTable struct {
	Tag          Tag // GSUB or GPOS
	Major, Minor uint16
	ScriptList   *ScriptList
	FeatureList  *FeatureList

	kind    layoutKind
	lookups lookupList
	mx      sync.Mutex // guards error collection during lazy decoding
	ec      errorCollector
	raw     binarySegm
}

// layoutKind is the strategy which makes a LayoutTable a GSUB or a GPOS table.
type layoutKind struct {
	tag           Tag
	extensionType uint16 // lookup type of extension lookups
	factory       func(lookupType uint16, b binarySegm) Subtable
}

var gsubKind = layoutKind{tag: GSUB, extensionType: 7, factory: parseGSubSubtable}
var gposKind = layoutKind{tag: GPOS, extensionType: 9, factory: parseGPosSubtable}

// ParseGSub parses the bytes of a GSUB table.
func ParseGSub(b []byte) (*LayoutTable, error) {
	return parseLayoutTable(b, gsubKind)
}

// ParseGPos parses the bytes of a GPOS table.
func ParseGPos(b []byte) (*LayoutTable, error) {
	return parseLayoutTable(b, gposKind)
}

// IsGPos is true for a GPOS table, false for a GSUB table.
func (lyt *LayoutTable) IsGPos() bool {
	return lyt.kind.tag == GPOS
}

// Errors returns non-fatal errors encountered during parsing and lookup decoding
// so far.
func (lyt *LayoutTable) Errors() []FontError {
	lyt.mx.Lock()
	defer lyt.mx.Unlock()
	return slices.Clone(lyt.ec.errors)
}

// Warnings returns issues found during parsing which do not affect shaping.
func (lyt *LayoutTable) Warnings() []FontWarning {
	lyt.mx.Lock()
	defer lyt.mx.Unlock()
	return slices.Clone(lyt.ec.warnings)
}

func (lyt *LayoutTable) addError(section, issue string, severity ErrorSeverity, offset int) {
	lyt.mx.Lock()
	defer lyt.mx.Unlock()
	lyt.ec.addError(lyt.Tag, section, issue, severity, uint32(offset))
}

// parseLayoutTable parses the header and the lists of a GSUB or GPOS table.
//
//	uint16    majorVersion
//	uint16    minorVersion
//	Offset16  scriptListOffset
//	Offset16  featureListOffset
//	Offset16  lookupListOffset
//	Offset32  featureVariationsOffset   (version 1.1 only)
func parseLayoutTable(data []byte, kind layoutKind) (*LayoutTable, error) {
	b := binarySegm(data)
	lyt := &LayoutTable{Tag: kind.tag, kind: kind, raw: b}
	if len(b) < 10 {
		lyt.ec.addError(kind.tag, "Header", fmt.Sprintf("header too small: %d bytes", len(b)), SeverityCritical, 0)
		return nil, errFontFormat("layout table header too small")
	}
	lyt.Major, lyt.Minor = b.U16(0), b.U16(2)
	if lyt.Major != 1 || lyt.Minor > 1 {
		return nil, errFontFormat(fmt.Sprintf("unsupported layout version (major: %d, minor: %d)",
			lyt.Major, lyt.Minor))
	}
	// Feature variations (version 1.1) are not supported, as variable fonts are out of scope.
	lyt.FeatureList = parseFeatureList(b, int(b.U16(6)), &lyt.ec, kind.tag)
	lyt.ScriptList = parseScriptList(b, int(b.U16(4)), lyt.FeatureList, &lyt.ec, kind.tag)
	lyt.lookups = parseLookupList(b, int(b.U16(8)), &lyt.ec, kind.tag)
	if lyt.ec.hasCriticalErrors() {
		tracer().Errorf("%s table has critical errors, layout will be incomplete", kind.tag)
	}
	tracer().Infof("%s table: %d scripts, %d features, %d lookups", kind.tag,
		lyt.ScriptList.Len(), lyt.FeatureList.Len(), lyt.lookups.Len())
	return lyt, nil
}

// --- Script list -----------------------------------------------------------

// ScriptList holds the scripts of a GSUB or GPOS table, keyed by script tag.
//
// A ScriptList table consists of a count of the scripts represented by the glyphs in the
// font (ScriptCount) and an array of records (ScriptRecord), one for each script for which
// the font defines script-specific features (a script without script-specific features
// does not need a ScriptRecord). Each ScriptRecord consists of a ScriptTag that identifies
// a script, and an offset to a Script table. The ScriptRecord array is stored in
// alphabetic order of the script tags.
type ScriptList struct {
	scriptOrder []Tag
	scriptByTag map[Tag]*Script
}

// Script holds the language systems of one script. Every script has a default
// language system, which is empty if the font does not define one.
type Script struct {
	Tag            Tag
	langOrder      []Tag
	langByTag      map[Tag]*LangSys
	defaultLangSys *LangSys
}

// LangSys is one language system of a script: the set of features enabled for a
// language, plus an optional required feature. The default language system of a
// script has Tag 0.
type LangSys struct {
	Tag             Tag
	requiredFeature *Feature
	features        []*Feature
}

func parseScriptList(b binarySegm, offset int, fl *FeatureList, ec *errorCollector, table Tag) *ScriptList {
	sl := &ScriptList{scriptByTag: make(map[Tag]*Script)}
	if offset == 0 {
		return sl
	}
	scripts, err := b.at(offset)
	if err != nil {
		ec.addError(table, "ScriptList", "offset out of bounds", SeverityCritical, uint32(offset))
		return sl
	}
	count := int(scripts.U16(0))
	if count > MaxScriptCount {
		ec.addError(table, "ScriptList", fmt.Sprintf("count %d exceeds maximum %d", count, MaxScriptCount),
			SeverityCritical, uint32(offset))
		return sl
	}
	for i := range count {
		rec := 2 + i*6
		tag, err := scripts.tagAt(rec)
		if err != nil {
			ec.addError(table, "ScriptList", "script records truncated", SeverityCritical, uint32(offset))
			break
		}
		script, err := scripts.link16(rec + 4)
		if err != nil {
			ec.addError(table, "ScriptList", fmt.Sprintf("script %s has invalid offset", tag),
				SeverityMajor, uint32(offset+rec))
			continue
		}
		if _, dup := sl.scriptByTag[tag]; dup {
			ec.addWarning(table, fmt.Sprintf("duplicate script record %s ignored", tag), uint32(offset+rec))
			continue
		}
		sl.scriptOrder = append(sl.scriptOrder, tag)
		sl.scriptByTag[tag] = parseScript(tag, script, fl, ec, table)
	}
	return sl
}

// Script table:
//
//	Offset16        defaultLangSysOffset
//	uint16          langSysCount
//	LangSysRecord   langSysRecords[langSysCount]   { Tag, Offset16 }
func parseScript(tag Tag, b binarySegm, fl *FeatureList, ec *errorCollector, table Tag) *Script {
	s := &Script{Tag: tag, langByTag: make(map[Tag]*LangSys)}
	if off := int(b.U16(0)); off != 0 {
		s.defaultLangSys = parseLangSys(0, b, off, fl, ec, table)
	}
	if s.defaultLangSys == nil {
		s.defaultLangSys = &LangSys{}
	}
	count := int(b.U16(2))
	if count > MaxLangSysCount {
		ec.addError(table, "Script "+tag.String(), "too many language systems", SeverityMajor, 0)
		return s
	}
	for i := range count {
		rec := 4 + i*6
		ltag, err := b.tagAt(rec)
		if err != nil {
			ec.addError(table, "Script "+tag.String(), "language system records truncated", SeverityMajor, 0)
			break
		}
		if _, dup := s.langByTag[ltag]; dup {
			continue
		}
		if lsys := parseLangSys(ltag, b, int(b.U16(rec+4)), fl, ec, table); lsys != nil {
			s.langOrder = append(s.langOrder, ltag)
			s.langByTag[ltag] = lsys
		}
	}
	return s
}

// LangSys table:
//
//	Offset16  lookupOrderOffset                  = NULL (reserved)
//	uint16    requiredFeatureIndex               Index of a feature required for this language system; 0xFFFF if none
//	uint16    featureIndexCount                  Number of feature index values for this language system
//	uint16    featureIndices[featureIndexCount]  Array of indices into the FeatureList, in arbitrary order
func parseLangSys(tag Tag, script binarySegm, offset int, fl *FeatureList, ec *errorCollector, table Tag) *LangSys {
	b, err := script.at(offset)
	if err != nil || len(b) < 6 {
		ec.addError(table, "LangSys "+tag.String(), "invalid LangSys offset", SeverityMajor, uint32(offset))
		return nil
	}
	lsys := &LangSys{Tag: tag}
	if req := b.U16(2); req != 0xFFFF {
		lsys.requiredFeature = fl.At(int(req))
	}
	indices, err := b.u16Array(6, int(b.U16(4)))
	if err != nil {
		ec.addError(table, "LangSys "+tag.String(), "feature indices truncated", SeverityMajor, uint32(offset))
		return lsys
	}
	for _, inx := range indices {
		if f := fl.At(int(inx)); f != nil {
			lsys.features = append(lsys.features, f)
		}
	}
	tracer().Debugf("LangSys %q points to %d features", tag, len(lsys.features))
	return lsys
}

// Len returns the number of scripts in the list.
func (sl *ScriptList) Len() int {
	if sl == nil {
		return 0
	}
	return len(sl.scriptOrder)
}

// Script returns a script by tag, or nil.
func (sl *ScriptList) Script(tag Tag) *Script {
	if sl == nil || tag == 0 {
		return nil
	}
	return sl.scriptByTag[tag]
}

// Range iterates scripts in declaration order.
func (sl *ScriptList) Range() iter.Seq2[Tag, *Script] {
	return func(yield func(Tag, *Script) bool) {
		if sl == nil {
			return
		}
		for _, tag := range sl.scriptOrder {
			if !yield(tag, sl.scriptByTag[tag]) {
				return
			}
		}
	}
}

// DefaultLangSys returns the default language system of a script.
func (s *Script) DefaultLangSys() *LangSys {
	if s == nil {
		return nil
	}
	return s.defaultLangSys
}

// LangSys returns a language system by tag. Tag 0 selects the default language system.
func (s *Script) LangSys(tag Tag) *LangSys {
	if s == nil {
		return nil
	}
	if tag == 0 {
		return s.defaultLangSys
	}
	return s.langByTag[tag]
}

// Range iterates the tagged language systems in declaration order.
func (s *Script) Range() iter.Seq2[Tag, *LangSys] {
	return func(yield func(Tag, *LangSys) bool) {
		if s == nil {
			return
		}
		for _, tag := range s.langOrder {
			if !yield(tag, s.langByTag[tag]) {
				return
			}
		}
	}
}

// RequiredFeature returns the required feature of a language system, or nil.
func (ls *LangSys) RequiredFeature() *Feature {
	if ls == nil {
		return nil
	}
	return ls.requiredFeature
}

// Features returns the (non-required) features of a language system.
func (ls *LangSys) Features() []*Feature {
	if ls == nil || len(ls.features) == 0 {
		return nil
	}
	return slices.Clone(ls.features)
}

// --- Feature list ----------------------------------------------------------

// FeatureList holds all features of a GSUB or GPOS table in declaration order.
// Duplicate feature tags are common (one feature record per script/language
// combination) and are preserved.
//
// The FeatureList table enumerates features in an array of records (FeatureRecord) and
// specifies the total number of features (FeatureCount). Every feature must have a
// FeatureRecord, which consists of a FeatureTag that identifies the feature and an offset
// to a Feature table.
type FeatureList struct {
	features     []*Feature
	indicesByTag map[Tag][]int
}

// Feature is a feature record: a feature tag together with the indices of the
// lookups implementing the feature.
type Feature struct {
	tag           Tag
	index         int
	lookupIndices []uint16
}

func parseFeatureList(b binarySegm, offset int, ec *errorCollector, table Tag) *FeatureList {
	fl := &FeatureList{indicesByTag: make(map[Tag][]int)}
	if offset == 0 {
		return fl
	}
	features, err := b.at(offset)
	if err != nil {
		ec.addError(table, "FeatureList", "offset out of bounds", SeverityCritical, uint32(offset))
		return fl
	}
	count := int(features.U16(0))
	if count > MaxFeatureCount {
		ec.addError(table, "FeatureList", fmt.Sprintf("count %d exceeds maximum %d", count, MaxFeatureCount),
			SeverityCritical, uint32(offset))
		return fl
	}
	for i := range count {
		rec := 2 + i*6
		tag, err := features.tagAt(rec)
		if err != nil {
			ec.addError(table, "FeatureList", "feature records truncated", SeverityCritical, uint32(offset))
			break
		}
		f := &Feature{tag: tag, index: i}
		// Feature table:
		// Offset16  featureParamsOffset
		// uint16    lookupIndexCount
		// uint16    lookupListIndices[lookupIndexCount]
		if ftable, err := features.link16(rec + 4); err != nil {
			ec.addError(table, "Feature "+tag.String(), "invalid offset", SeverityMajor, uint32(offset+rec))
		} else if f.lookupIndices, err = ftable.u16Array(4, int(ftable.U16(2))); err != nil {
			ec.addError(table, "Feature "+tag.String(), "lookup indices truncated", SeverityMajor, uint32(offset+rec))
		}
		fl.features = append(fl.features, f)
		fl.indicesByTag[tag] = append(fl.indicesByTag[tag], i)
	}
	return fl
}

// Len returns the number of features in the feature list.
func (fl *FeatureList) Len() int {
	if fl == nil {
		return 0
	}
	return len(fl.features)
}

// At returns the feature at index i of the feature list, or nil.
func (fl *FeatureList) At(i int) *Feature {
	if fl == nil || i < 0 || i >= len(fl.features) {
		return nil
	}
	return fl.features[i]
}

// Range iterates features in declaration order and preserves duplicate tags.
func (fl *FeatureList) Range() iter.Seq2[Tag, *Feature] {
	return func(yield func(Tag, *Feature) bool) {
		if fl == nil {
			return
		}
		for _, f := range fl.features {
			if !yield(f.tag, f) {
				return
			}
		}
	}
}

// All returns all features matching a feature tag.
func (fl *FeatureList) All(tag Tag) []*Feature {
	if fl == nil {
		return nil
	}
	var out []*Feature
	for _, i := range fl.indicesByTag[tag] {
		out = append(out, fl.features[i])
	}
	return out
}

// Tag returns the feature tag, e.g. 'liga'.
func (f *Feature) Tag() Tag {
	if f == nil {
		return 0
	}
	return f.tag
}

// Index returns the position of the feature in the feature list.
func (f *Feature) Index() int {
	if f == nil {
		return -1
	}
	return f.index
}

// LookupCount returns the number of linked lookups.
func (f *Feature) LookupCount() int {
	if f == nil {
		return 0
	}
	return len(f.lookupIndices)
}

// LookupIndex returns the index of lookup #i, or -1.
func (f *Feature) LookupIndex(i int) int {
	if f == nil || i < 0 || i >= len(f.lookupIndices) {
		return -1
	}
	return int(f.lookupIndices[i])
}

// LookupIndices returns the lookup list indices of a feature, in the order given by
// the font.
func (f *Feature) LookupIndices() []int {
	if f == nil {
		return nil
	}
	r := make([]int, len(f.lookupIndices))
	for i, inx := range f.lookupIndices {
		r[i] = int(inx)
	}
	return r
}

func (f *Feature) String() string {
	if f == nil {
		return "<nil feature>"
	}
	return fmt.Sprintf("%s#%d%v", f.tag, f.index, f.lookupIndices)
}

// --- Feature resolution ----------------------------------------------------

// resolveScript finds the first script of scripts the table knows about. Zero tags
// and unknown tags are skipped. If none of the scripts is present, the table's
// DFLT script is used, if any.
func (lyt *LayoutTable) resolveScript(scripts []Tag) *Script {
	for _, tag := range scripts {
		if s := lyt.ScriptList.Script(tag); s != nil {
			return s
		}
	}
	return lyt.ScriptList.Script(DFLT)
}

// LanguageRecord returns the language system for a script and a language. A
// language tag of 0 selects the script's default language system. If either the
// script or the language is unknown, nil is returned.
func (lyt *LayoutTable) LanguageRecord(script, lang Tag) *LangSys {
	if lyt == nil {
		return nil
	}
	return lyt.ScriptList.Script(script).LangSys(lang)
}

// langSysFor resolves scripts and language. Unknown languages fall back to the
// default language system of the script resolved.
func (lyt *LayoutTable) langSysFor(scripts []Tag, lang Tag) *LangSys {
	if lyt == nil {
		return nil
	}
	script := lyt.resolveScript(scripts)
	if script == nil {
		return nil
	}
	if lsys := script.LangSys(lang); lsys != nil {
		return lsys
	}
	return script.DefaultLangSys()
}

// Features returns all features enabled for the first resolvable script of `scripts`
// and language `lang`. The required feature is not included (see RequiredFeature).
// Features are returned in the order of the feature list, each feature at most once.
//
// Features returns nil if no script resolves (including 'DFLT'), and a possibly empty,
// non-nil slice otherwise.
func (lyt *LayoutTable) Features(scripts []Tag, lang Tag) []*Feature {
	lsys := lyt.langSysFor(scripts, lang)
	if lsys == nil {
		return nil
	}
	features := make([]*Feature, 0, len(lsys.features))
	for _, f := range lsys.features {
		if !slices.Contains(features, f) {
			features = append(features, f)
		}
	}
	slices.SortFunc(features, func(a, b *Feature) int { return a.index - b.index })
	return features
}

// RequiredFeature returns the required feature for the first resolvable script and
// language `lang`, or nil.
func (lyt *LayoutTable) RequiredFeature(scripts []Tag, lang Tag) *Feature {
	return lyt.langSysFor(scripts, lang).RequiredFeature()
}

// SpecificFeatures filters candidates by feature tags. If tags is nil, candidates
// are returned unchanged.
func (lyt *LayoutTable) SpecificFeatures(candidates []*Feature, tags []Tag) []*Feature {
	if tags == nil {
		return candidates
	}
	var r []*Feature
	for _, f := range candidates {
		if slices.Contains(tags, f.Tag()) {
			r = append(r, f)
		}
	}
	return r
}

// --- Lookup list -----------------------------------------------------------

// lookupList holds the offsets of all lookups and a cache of decoded lookups.
// Every slot of the cache is filled at most once.
type lookupList struct {
	raw     binarySegm
	offsets []uint16
	once    []sync.Once
	lookups []*Lookup
}

// LookupList table:
//
//	uint16    lookupCount
//	Offset16  lookupOffsets[lookupCount]
func parseLookupList(b binarySegm, offset int, ec *errorCollector, table Tag) lookupList {
	ll := lookupList{}
	if offset == 0 {
		return ll
	}
	lookups, err := b.at(offset)
	if err != nil {
		ec.addError(table, "LookupList", "offset out of bounds", SeverityCritical, uint32(offset))
		return ll
	}
	count := int(lookups.U16(0))
	if count > MaxLookupCount {
		ec.addError(table, "LookupList", fmt.Sprintf("count %d exceeds maximum %d", count, MaxLookupCount),
			SeverityCritical, uint32(offset))
		return ll
	}
	if ll.offsets, err = lookups.u16Array(2, count); err != nil {
		ec.addError(table, "LookupList", "lookup offsets truncated", SeverityCritical, uint32(offset))
		ll.offsets = nil
		return ll
	}
	ll.raw = lookups
	ll.once = make([]sync.Once, count)
	ll.lookups = make([]*Lookup, count)
	return ll
}

// Len returns the number of lookups.
func (ll *lookupList) Len() int {
	return len(ll.offsets)
}

// LookupCount returns the number of lookups in the lookup list.
func (lyt *LayoutTable) LookupCount() int {
	if lyt == nil {
		return 0
	}
	return lyt.lookups.Len()
}

// LookupTable returns lookup number i, decoding it on first access. For a negative or
// out-of-range index, nil is returned.
func (lyt *LayoutTable) LookupTable(i int) *Lookup {
	if lyt == nil || i < 0 || i >= lyt.lookups.Len() {
		return nil
	}
	lyt.lookups.once[i].Do(func() {
		lyt.lookups.lookups[i] = lyt.parseLookup(i)
	})
	return lyt.lookups.lookups[i]
}

// Lookups iterates over all lookups, decoding them as necessary.
func (lyt *LayoutTable) Lookups() iter.Seq2[int, *Lookup] {
	return func(yield func(int, *Lookup) bool) {
		for i := range lyt.LookupCount() {
			if !yield(i, lyt.LookupTable(i)) {
				return
			}
		}
	}
}

// Lookup table:
//
//	uint16    lookupType
//	uint16    lookupFlag
//	uint16    subTableCount
//	Offset16  subtableOffsets[subTableCount]
//	uint16    markFilteringSet   (if lookupFlag & USE_MARK_FILTERING_SET)
func (lyt *LayoutTable) parseLookup(i int) *Lookup {
	section := fmt.Sprintf("Lookup %d", i)
	lookup := &Lookup{Index: i}
	b, err := lyt.lookups.raw.at(int(lyt.lookups.offsets[i]))
	if err != nil || len(b) < 6 {
		lyt.addError(section, "invalid lookup offset", SeverityMajor, int(lyt.lookups.offsets[i]))
		lookup.err = errFontFormat("invalid lookup offset")
		return lookup
	}
	lookup.Type = b.U16(0)
	lookup.Flag = LookupFlag(b.U16(2))
	offsets, err := b.u16Array(6, int(b.U16(4)))
	if err != nil {
		lyt.addError(section, "subtable offsets truncated", SeverityMajor, 0)
		lookup.err = errFontFormat("lookup subtable offsets truncated")
		return lookup
	}
	if lookup.Flag&LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		lookup.MarkFilteringSet = b.U16(6 + 2*len(offsets))
	}
	for _, off := range offsets {
		sub, err := b.at(int(off))
		if err != nil {
			lyt.addError(section, "invalid subtable offset", SeverityMajor, int(off))
			lookup.Subtables = append(lookup.Subtables, malformed(lookup.Type, errFontFormat("invalid subtable offset")))
			continue
		}
		if lookup.Type == lyt.kind.extensionType {
			lookup.Extension = true
		}
		lookupType, sub, err := lyt.resolveExtension(lookup.Type, sub)
		if err != nil {
			lyt.addError(section, err.Error(), SeverityMajor, int(off))
			lookup.Subtables = append(lookup.Subtables, malformed(lookupType, err))
			continue
		}
		st := lyt.kind.factory(lookupType, sub)
		switch st.Kind {
		case SubtableMalformed:
			lyt.addError(section, st.Err.Error(), SeverityMinor, int(off))
		case SubtableUnsupported:
			if ue, ok := st.Err.(*UnsupportedFormatError); ok {
				ue.Table = lyt.Tag
			}
		}
		lookup.Subtables = append(lookup.Subtables, st)
	}
	if lookup.Extension && len(lookup.Subtables) > 0 {
		// the effective type is the one of the wrapped subtables
		lookup.Type = lookup.Subtables[0].LookupType
	}
	tracer().Debugf("decoded %s lookup %d: type %d, flag 0x%04x, %d subtables", lyt.Tag, i,
		lookup.Type, lookup.Flag, len(lookup.Subtables))
	return lookup
}

// resolveExtension follows extension subtables to the subtable they wrap, for at
// most MaxExtensionDepth levels.
func (lyt *LayoutTable) resolveExtension(lookupType uint16, sub binarySegm) (uint16, binarySegm, error) {
	for depth := 0; lookupType == lyt.kind.extensionType; depth++ {
		if depth >= MaxExtensionDepth {
			return lookupType, nil, errFontFormat("nested extension lookup")
		}
		var err error
		if lookupType, sub, err = extensionSubtable(sub); err != nil {
			return lyt.kind.extensionType, nil, err
		}
	}
	return lookupType, sub, nil
}

// Extension subtable:
//
//	uint16    substFormat / posFormat   = 1
//	uint16    extensionLookupType
//	Offset32  extensionOffset           from the beginning of the extension subtable
func extensionSubtable(b binarySegm) (uint16, binarySegm, error) {
	if b.U16(0) != 1 || len(b) < 8 {
		return 0, nil, errFontFormat("invalid extension subtable")
	}
	off := b.U32(4)
	if off == 0 || int64(off) >= int64(len(b)) {
		return 0, nil, errFontFormat("extension offset out of bounds")
	}
	return b.U16(2), b[off:], nil
}
