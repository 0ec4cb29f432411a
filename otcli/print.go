package main

import (
	"fmt"
	"strings"

	"github.com/npillmayer/otshaping"
	"github.com/npillmayer/otshaping/ot"
	"github.com/npillmayer/otshaping/otlayout"
	"github.com/pterm/pterm"
)

func shapeOp(intp *Intp, op *Op) (err error, stop bool) {
	opts := otshaping.ShapeOptions{
		Script:   intp.scripts(),
		Language: intp.lang,
		Features: intp.features,
	}
	line, err := intp.font.Shape(op.arg, opts)
	if err != nil {
		return err, false
	}
	printGlyphLine(line)
	return nil, false
}

func printGlyphLine(line *otlayout.GlyphLine) {
	pterm.Printf("%d glyphs, text = %q\n", line.Len(), line.String())
	data := [][]string{
		{"Pos", "Glyph", "Text", "Width", "Placement", "Advance", "Anchor", "Component"},
	}
	for i := range line.Len() {
		g := line.Get(i)
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			fmt.Sprintf("%d", g.Code),
			g.Text(),
			fmt.Sprintf("%d", g.Width),
			fmt.Sprintf("(%d,%d)", g.XPlacement, g.YPlacement),
			fmt.Sprintf("(%d,%d)", g.XAdvance, g.YAdvance),
			formatNonZero(g.AnchorDelta),
			formatNonZero(g.LigComponent),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	for part := range line.ActualTextParts() {
		if part.ActualText != nil {
			pterm.Printf("glyphs [%d,%d) have actual text %q\n", part.Start, part.End, *part.ActualText)
		}
	}
}

func formatNonZero(n int) string {
	if n == 0 {
		return "-"
	}
	return fmt.Sprintf("%d", n)
}

func printLookupList(table *otlayout.TableReader) {
	if table == nil {
		pterm.Error.Println("table is nil")
		return
	}
	count := table.LookupCount()
	tag := table.Table().Tag
	pterm.Printf("%s LookupList has %d entries\n", tag, count)
	if count == 0 {
		return
	}
	data := [][]string{
		{"Index", "Type", "Subtables", "Flags"},
	}
	for i := range count {
		lookup := table.LookupTable(i)
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			formatLookupType(tag, lookup.Type),
			fmt.Sprintf("%d", len(lookup.Subtables)),
			formatLookupFlags(lookup.Flag),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func printLookup(table *otlayout.TableReader, index int) {
	if table == nil {
		pterm.Error.Println("table is nil")
		return
	}
	lookup := table.LookupTable(index)
	if lookup == nil {
		pterm.Error.Printf("Lookup index out of range: %d\n", index)
		return
	}
	tag := table.Table().Tag
	pterm.Printf("Lookup %d: type=%s flags=%s subtables=%d extension=%t\n",
		index,
		formatLookupType(tag, lookup.Type),
		formatLookupFlags(lookup.Flag),
		len(lookup.Subtables),
		lookup.Extension,
	)
	data := [][]string{
		{"Sub", "Kind", "Format", "Coverage", "Details"},
	}
	for i, sub := range lookup.Subtables {
		data = append(data, []string{
			fmt.Sprintf("%d", i),
			sub.Kind.String(),
			fmt.Sprintf("%d", sub.Format),
			formatCoverageSummary(sub.Coverage),
			formatSubtableDetails(&sub),
		})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

var gsubLookupTypes = []string{"", "Single", "Multiple", "Alternate", "Ligature",
	"Context", "ChainingContext", "Extension", "ReverseChaining"}
var gposLookupTypes = []string{"", "Single", "Pair", "Cursive", "MarkToBase",
	"MarkToLigature", "MarkToMark", "Context", "ChainedContext", "Extension"}

func formatLookupType(table ot.Tag, ltype uint16) string {
	names := gsubLookupTypes
	if table == ot.GPOS {
		names = gposLookupTypes
	}
	if ltype == 0 || int(ltype) >= len(names) {
		return fmt.Sprintf("Unknown(%d)", ltype)
	}
	return names[ltype]
}

func formatLookupFlags(flag ot.LookupFlag) string {
	if flag == 0 {
		return "-"
	}
	parts := make([]string, 0, 6)
	if flag&ot.LOOKUP_FLAG_RIGHT_TO_LEFT != 0 {
		parts = append(parts, "RightToLeft")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_BASE_GLYPHS != 0 {
		parts = append(parts, "IgnoreBase")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_LIGATURES != 0 {
		parts = append(parts, "IgnoreLigatures")
	}
	if flag&ot.LOOKUP_FLAG_IGNORE_MARKS != 0 {
		parts = append(parts, "IgnoreMarks")
	}
	if flag&ot.LOOKUP_FLAG_USE_MARK_FILTERING_SET != 0 {
		parts = append(parts, "UseMarkFilteringSet")
	}
	if flag&ot.LOOKUP_FLAG_MARK_ATTACHMENT_TYPE_MASK != 0 {
		parts = append(parts, fmt.Sprintf("MarkAttachType=%d", flag.MarkAttachmentType()))
	}
	return strings.Join(parts, "|")
}

func formatCoverageSummary(cov ot.Coverage) string {
	if cov.Len() == 0 {
		return "-"
	}
	return fmt.Sprintf("fmt=%d count=%d", cov.Format(), cov.Len())
}

func formatSubtableDetails(sub *ot.Subtable) string {
	switch {
	case sub.Err != nil:
		return sub.Err.Error()
	case sub.Single != nil:
		return fmt.Sprintf("values=0x%02x", uint16(sub.Single.ValueFormat))
	case sub.Pair != nil:
		return fmt.Sprintf("values=0x%02x/0x%02x", uint16(sub.Pair.ValueFormat1), uint16(sub.Pair.ValueFormat2))
	case sub.Marks != nil:
		return fmt.Sprintf("classes=%d marks=%d", sub.Marks.ClassCount, len(sub.Marks.Marks))
	case sub.Ligature != nil:
		n := 0
		for _, set := range sub.Ligature.LigatureSets {
			n += len(set)
		}
		return fmt.Sprintf("ligatures=%d", n)
	case sub.Context != nil:
		return formatSequenceContextSummary(sub.Context)
	}
	return "-"
}

func formatSequenceContextSummary(ctx *ot.SequenceContext) string {
	if ctx.Format == 3 {
		return fmt.Sprintf("seqctx back=%d in=%d look=%d",
			len(ctx.BacktrackCoverage),
			len(ctx.InputCoverage),
			len(ctx.LookaheadCoverage),
		)
	}
	rules := 0
	for _, set := range ctx.RuleSets {
		rules += len(set)
	}
	return fmt.Sprintf("seqctx rulesets=%d rules=%d", len(ctx.RuleSets), rules)
}
