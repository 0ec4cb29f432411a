package main

import (
	"strings"

	"github.com/pterm/pterm"
)

func helpOp(intp *Intp, op *Op) (error, bool) {
	help(op.arg)
	return nil, false
}

func help(topic string) {
	tracer().Infof("help %v", topic)
	t := strings.ToLower(topic)
	switch t {
	case "script", "scripts", "scriptList":
		pterm.Info.Println("ScriptList / Script")
		pterm.Println(`
	ScriptList is a property of GSUB and GPOS.
	It consists of ScriptRecords:
	+------------+----------------+
	| Script Tag | Link to Script |
	+------------+----------------+
	ScriptList behaves as a map.

	A Script table links to a default LangSys entry, and contains a list of LangSys records:
	+--------------------------------+
	| Link to LangSys record         |
	+--------------+-----------------+
	| Language Tag | Link to LangSys |
	+--------------+-----------------+
	Script behaves as a map, with entry 0 as the default link

	Usage: scripts          list the scripts of the current table
	       scripts:latn     select a script and list its language systems
	`)
	case "lang", "langsys", "langs", "language":
		pterm.Info.Println("LangSys")
		pterm.Println(`
	LangSys is pointed to from a Script Record.
	It links a language with features to activate. It does so using an index into the feature table.
	+-----------------------------------+
	| Index of required feature or null |
	+-----------------------------------+
	| Index of feature 1                |
	+-----------------------------------+
	| Index of feature 2                |
	+-----------------------------------+
	| ...                               |
	+-----------------------------------+
	LangSys behaves as a list.

	Usage: lang:TRK         select a language system by OpenType tag
	       lang:tr-TR       select a language system by BCP 47 language
	       lang             select the default language system
	`)
	case "feature", "features", "use":
		pterm.Info.Println("Features")
		pterm.Println(`
	Features are activated per language system and reference lookups by index.
	Lookups of a set of features are applied in lookup list order.

	Usage: features         list the features for the current script and language
	       features:liga    print a feature
	       use:liga,kern    shape with these features only
	       use              shape with the default features
	`)
	case "lookup", "lookups":
		pterm.Info.Println("Lookups")
		pterm.Println(`
	A lookup has a type, flags and a list of subtables. Subtables are decoded
	into one of a closed set of kinds; kinds which cannot be applied show up
	as Unsupported or Malformed.

	Usage: lookups          list all lookups of the current table
	       lookups:3        print lookup #3 with its subtables
	`)
	default:
		pterm.Info.Println("Commands")
		pterm.Println(`
	table:GSUB|GPOS     select a layout table
	scripts[:tag]       list scripts, or select one
	lang[:tag]          select a language system
	features[:tag]      list features
	use[:tag,...]       select features for shaping
	lookups[:n]         list lookups, or print one
	gdef[:glyph]        print GDEF glyph classes
	shape:text          shape text with the current settings
	render:text         shape text and write it to a PNG file (flag -png)
	demo                shape with built-in tables
	help[:topic]        help on scripts, lang, features, lookups
	quit                leave (or <ctrl>D)

	Commands may be chained, separated by blanks: "table:GPOS scripts:latn features"
	`)
	}
}
