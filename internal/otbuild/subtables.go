package otbuild

// Value formats (bitmask of ValueRecord fields) used by the GPOS builders.
const (
	XPlacement uint16 = 0x0001
	YPlacement uint16 = 0x0002
	XAdvance   uint16 = 0x0004
	YAdvance   uint16 = 0x0008
)

// --- GPOS ------------------------------------------------------------------

// SinglePos1 creates a GPOS 1/1 subtable. values must match valueFormat.
func SinglePos1(cov *Node, valueFormat uint16, values ...int16) *Node {
	return New().U16(1).Off16(cov).U16(valueFormat).I16(values...)
}

// SinglePos2 creates a GPOS 1/2 subtable with one value record per covered glyph.
func SinglePos2(cov *Node, valueFormat uint16, records ...[]int16) *Node {
	n := New().U16(2).Off16(cov).U16(valueFormat, uint16(len(records)))
	for _, r := range records {
		n.I16(r...)
	}
	return n
}

// PairValue is a record of a PairSet.
type PairValue struct {
	Second         uint16
	Value1, Value2 []int16
}

// PairPos1 creates a GPOS 2/1 subtable with pair sets in coverage order.
func PairPos1(cov *Node, vf1, vf2 uint16, sets ...[]PairValue) *Node {
	n := New().U16(1).Off16(cov).U16(vf1, vf2, uint16(len(sets)))
	for _, set := range sets {
		ps := New().U16(uint16(len(set)))
		for _, pv := range set {
			ps.U16(pv.Second).I16(pv.Value1...).I16(pv.Value2...)
		}
		n.Off16(ps)
	}
	return n
}

// ClassValue holds the value records of a class pair.
type ClassValue struct {
	Value1, Value2 []int16
}

// PairPos2 creates a GPOS 2/2 subtable. records is indexed by [class1][class2].
func PairPos2(cov *Node, vf1, vf2 uint16, cd1, cd2 *Node, records [][]ClassValue) *Node {
	class2Count := 0
	if len(records) > 0 {
		class2Count = len(records[0])
	}
	n := New().U16(2).Off16(cov).U16(vf1, vf2).Off16(cd1).Off16(cd2).
		U16(uint16(len(records)), uint16(class2Count))
	for _, row := range records {
		for _, cv := range row {
			n.I16(cv.Value1...).I16(cv.Value2...)
		}
	}
	return n
}

// MarkRecord is an entry of a mark array.
type MarkRecord struct {
	Class  uint16
	Anchor *Node
}

func markArray(marks []MarkRecord) *Node {
	n := New().U16(uint16(len(marks)))
	for _, m := range marks {
		n.U16(m.Class).Off16(m.Anchor)
	}
	return n
}

func anchorMatrix(rows [][]*Node) *Node {
	n := New().U16(uint16(len(rows)))
	for _, row := range rows {
		for _, a := range row {
			n.Off16(a)
		}
	}
	return n
}

// MarkBasePos creates a GPOS 4 subtable. bases is indexed by [base coverage index][mark class],
// nil anchors are allowed.
func MarkBasePos(markCov, baseCov *Node, classCount uint16, marks []MarkRecord, bases [][]*Node) *Node {
	return New().U16(1).Off16(markCov).Off16(baseCov).U16(classCount).
		Off16(markArray(marks)).Off16(anchorMatrix(bases))
}

// MarkMarkPos creates a GPOS 6 subtable. mark2 is indexed by [mark2 coverage index][mark class].
func MarkMarkPos(mark1Cov, mark2Cov *Node, classCount uint16, marks []MarkRecord, mark2 [][]*Node) *Node {
	return MarkBasePos(mark1Cov, mark2Cov, classCount, marks, mark2)
}

// MarkLigPos creates a GPOS 5 subtable. ligs is indexed by
// [ligature coverage index][component][mark class].
func MarkLigPos(markCov, ligCov *Node, classCount uint16, marks []MarkRecord, ligs [][][]*Node) *Node {
	ligArray := New().U16(uint16(len(ligs)))
	for _, components := range ligs {
		ligArray.Off16(anchorMatrix(components))
	}
	return New().U16(1).Off16(markCov).Off16(ligCov).U16(classCount).
		Off16(markArray(marks)).Off16(ligArray)
}

// --- GSUB ------------------------------------------------------------------

// Ligature is a ligature glyph with its components, excluding the first one.
type Ligature struct {
	Glyph      uint16
	Components []uint16
}

// LigatureSubst creates a GSUB 4 subtable with ligature sets in coverage order.
func LigatureSubst(cov *Node, sets ...[]Ligature) *Node {
	n := New().U16(1).Off16(cov).U16(uint16(len(sets)))
	for _, set := range sets {
		ls := New().U16(uint16(len(set)))
		for _, lig := range set {
			ls.Off16(New().U16(lig.Glyph, uint16(len(lig.Components)+1)).U16(lig.Components...))
		}
		n.Off16(ls)
	}
	return n
}

// --- Contexts --------------------------------------------------------------

// LookupRecord is a sequence lookup record: apply lookup Lookup at input position Index.
type LookupRecord struct {
	Index, Lookup uint16
}

// Rule is a (chained) sequence rule for formats 1 and 2. Input excludes the first
// input glyph. Backtrack is in font order, closest glyph first.
type Rule struct {
	Backtrack []uint16
	Input     []uint16
	Lookahead []uint16
	Records   []LookupRecord
}

func lookupRecords(n *Node, records []LookupRecord) *Node {
	for _, r := range records {
		n.U16(r.Index, r.Lookup)
	}
	return n
}

func ruleSets(n *Node, chained bool, sets [][]Rule) *Node {
	n.U16(uint16(len(sets)))
	for _, set := range sets {
		if set == nil {
			n.Off16(nil)
			continue
		}
		rs := New().U16(uint16(len(set)))
		for _, rule := range set {
			var r *Node
			if chained {
				r = New().U16(uint16(len(rule.Backtrack))).U16(rule.Backtrack...).
					U16(uint16(len(rule.Input) + 1)).U16(rule.Input...).
					U16(uint16(len(rule.Lookahead))).U16(rule.Lookahead...).
					U16(uint16(len(rule.Records)))
			} else {
				r = New().U16(uint16(len(rule.Input)+1), uint16(len(rule.Records))).U16(rule.Input...)
			}
			rs.Off16(lookupRecords(r, rule.Records))
		}
		n.Off16(rs)
	}
	return n
}

// Context1 creates a sequence context subtable of format 1 (GPOS 7).
func Context1(cov *Node, sets ...[]Rule) *Node {
	return ruleSets(New().U16(1).Off16(cov), false, sets)
}

// Context2 creates a sequence context subtable of format 2 (GPOS 7). sets are indexed
// by input class; nil sets are written as NULL offsets.
func Context2(cov, classDef *Node, sets ...[]Rule) *Node {
	return ruleSets(New().U16(2).Off16(cov).Off16(classDef), false, sets)
}

// Context3 creates a sequence context subtable of format 3 (GPOS 7).
func Context3(input []*Node, records ...LookupRecord) *Node {
	n := New().U16(3, uint16(len(input)), uint16(len(records)))
	for _, cov := range input {
		n.Off16(cov)
	}
	return lookupRecords(n, records)
}

// ChainedContext1 creates a chained sequence context subtable of format 1
// (GSUB 6, GPOS 8).
func ChainedContext1(cov *Node, sets ...[]Rule) *Node {
	return ruleSets(New().U16(1).Off16(cov), true, sets)
}

// ChainedContext2 creates a chained sequence context subtable of format 2.
func ChainedContext2(cov, backtrack, input, lookahead *Node, sets ...[]Rule) *Node {
	return ruleSets(New().U16(2).Off16(cov).Off16(backtrack).Off16(input).Off16(lookahead), true, sets)
}

// ChainedContext3 creates a chained sequence context subtable of format 3.
// backtrack is in font order, closest glyph first.
func ChainedContext3(backtrack, input, lookahead []*Node, records ...LookupRecord) *Node {
	n := New().U16(3)
	for _, seq := range [][]*Node{backtrack, input, lookahead} {
		n.U16(uint16(len(seq)))
		for _, cov := range seq {
			n.Off16(cov)
		}
	}
	return lookupRecords(n.U16(uint16(len(records))), records)
}
