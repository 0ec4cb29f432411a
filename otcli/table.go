package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/npillmayer/otshaping"
	"github.com/npillmayer/otshaping/ot"
	"github.com/pterm/pterm"
)

func tableOp(intp *Intp, op *Op) (error, bool) {
	gsub, gpos, err := intp.font.Layout()
	if err != nil {
		return err, false
	}
	switch tag := strings.ToUpper(op.arg); tag {
	case "GSUB":
		intp.table = gsub
	case "GPOS":
		intp.table = gpos
	default:
		return fmt.Errorf("not a layout table: %q", op.arg), false
	}
	if intp.table == nil {
		return errors.New("table not found in font"), false
	}
	tracer().Infof("setting table: %v", intp.table.Table().Tag)
	return nil, false
}

func scriptsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	sl := intp.table.Table().ScriptList
	if op.noArg() {
		var tags []string
		for tag := range sl.Range() {
			tags = append(tags, tag.String())
		}
		pterm.Printf("ScriptList keys: %v\n", tags)
		return
	}
	tag := ot.T(op.arg)
	script := sl.Script(tag)
	if script == nil {
		return fmt.Errorf("script lookup [%s] returns null", tag), false
	}
	intp.script, intp.lang = tag, 0
	var langs []string
	for lt := range script.Range() {
		langs = append(langs, lt.String())
	}
	pterm.Printf("Script %s has language systems: %v (and a default)\n", tag, langs)
	return
}

// langOp sets the language system, either from an OpenType tag or from a
// BCP 47 language, e.g. "lang:TRK" or "lang:tr".
func langOp(intp *Intp, op *Op) (err error, stop bool) {
	if op.noArg() {
		intp.lang = 0
		return
	}
	if len(op.arg) > 2 && op.arg == strings.ToUpper(op.arg) {
		intp.lang = ot.T(op.arg)
	} else if intp.lang = otshaping.LanguageTag(op.arg); intp.lang == 0 {
		return fmt.Errorf("unknown language %q", op.arg), false
	}
	if intp.table != nil && intp.table.LanguageRecord(intp.script, intp.lang) == nil {
		pterm.Info.Printf("language system %s not present for script %s, will use default\n",
			intp.lang, intp.script)
	}
	return
}

func featuresOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	features := intp.table.Features(intp.scripts(), intp.lang)
	required := intp.table.RequiredFeature(intp.scripts(), intp.lang)
	if op.noArg() {
		data := [][]string{{"Index", "Tag", "Lookups"}}
		if required != nil {
			data = append(data, []string{fmt.Sprintf("%d (required)", required.Index()),
				required.Tag().String(), fmt.Sprintf("%v", required.LookupIndices())})
		}
		for _, f := range features {
			data = append(data, []string{fmt.Sprintf("%d", f.Index()), f.Tag().String(),
				fmt.Sprintf("%v", f.LookupIndices())})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
		return
	}
	selected := intp.table.SpecificFeatures(features, []ot.Tag{ot.T(op.arg)})
	if len(selected) == 0 {
		return fmt.Errorf("feature %s not active for script %s", ot.T(op.arg), intp.script), false
	}
	for _, f := range selected {
		pterm.Printf("%s\n", f)
	}
	return
}

// useOp sets the features for shaping, e.g. "use:liga,kern". Without an argument
// the default features will be used.
func useOp(intp *Intp, op *Op) (err error, stop bool) {
	if op.noArg() {
		intp.features = nil
		return
	}
	intp.features = []ot.Tag{}
	for _, t := range strings.Split(op.arg, ",") {
		if t = strings.TrimSpace(t); t != "" {
			intp.features = append(intp.features, ot.T(t))
		}
	}
	return
}

func lookupsOp(intp *Intp, op *Op) (err error, stop bool) {
	if err = intp.checkTable(); err != nil {
		return
	}
	if op.noArg() {
		printLookupList(intp.table)
	} else if i, err := strconv.Atoi(op.arg); err == nil {
		printLookup(intp.table, i)
	} else {
		tracer().Errorf("Lookup index not numeric: %v\n", op.arg)
		return errors.New("invalid lookup index"), false
	}
	return
}

// gdefOp prints the GDEF classes of a glyph, given either as a glyph index or as
// a character, e.g. "gdef:36" or "gdef:A".
func gdefOp(intp *Intp, op *Op) (err error, stop bool) {
	gdef := intp.font.GDef()
	if gdef == nil {
		return errors.New("font has no GDEF table"), false
	}
	arg, ok := op.hasArg()
	if !ok {
		pterm.Printf("GDEF version %d.%d, glyph classes: %t\n", gdef.Major, gdef.Minor, gdef.HasGlyphClasses())
		return
	}
	var gid ot.GlyphIndex
	if n, err := strconv.Atoi(arg); err == nil {
		gid = ot.GlyphIndex(n)
	} else {
		r, _ := utf8.DecodeRuneInString(arg)
		gid = intp.font.GlyphIndex(r)
	}
	pterm.Printf("glyph %d: class=%s, mark attachment class=%d\n", gid,
		gdef.GlyphClass(gid), gdef.MarkAttachClass(gid))
	return
}
