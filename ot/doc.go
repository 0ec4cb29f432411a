/*
Package ot reads the OpenType layout tables GSUB, GPOS and GDEF.

Intended audience for this package are text shapers which need structured
access to the substitution and positioning rules of a font. Package `ot` will
not apply any rule to a sequence of glyphs; this is homed in the sister
package `otlayout`. From this point of view, `ot` is a low-level package.

Clients hand in the raw bytes of a layout table, as extracted from a font's
table directory (which is not the concern of this package):

	gdef, err := ot.ParseGDef(gdefBytes)
	gsub, err := ot.ParseGSub(gsubBytes)
	features := gsub.Features([]ot.Tag{ot.T("mymr")}, 0)

OpenType layout tables are a graph of offset-linked sub-tables. This package
parses the script list and the feature list eagerly, while lookups are
decoded lazily on first access and cached afterwards. Lookup subtables are
decoded into a closed set of variants (see SubtableKind), one per
combination of lookup type and subtable format.

▪︎ Format versions: coverage tables, class definition tables and most lookup
subtables come in different formats. Package `ot` hides the concrete format
behind a common API (e.g., Coverage.Index and ClassDef.Class).

▪︎ Bugs in fonts: many fonts in the wild contain entries that, strictly speaking, infringe
upon the OT specification. An application using them should not fail because of
recoverable errors. Package `ot` degrades gracefully: malformed subtables are
flagged and skipped, but will not tear down the rest of a table.

# Status

No variable fonts are supported, and neither are the lookup types not needed
for the layout engine (GSUB 1, 2, 3, 5, 8 and GPOS 3). Those are reported as
unsupported.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package ot

// Valuable resource:
// http://opentypecookbook.com/

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.opentype'
func tracer() tracing.Trace {
	return tracing.Select("font.opentype")
}
