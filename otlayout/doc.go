/*
Package otlayout applies OpenType layout lookups to lines of glyphs.

Package ot decodes GSUB, GPOS and GDEF tables; this package puts them to work.
Clients create a TableReader for either GSUB or GPOS, select features and apply
the lookups of these features to a GlyphLine:

	gsub, err := otlayout.NewGSubReader(gsubBytes, gdef, glyphs)
	features := gsub.Features([]ot.Tag{ot.T("latn")}, 0)
	err = gsub.ApplyFeatures(line, features)

A GlyphLine carries a processing cursor and an active window. Lookups advance
the cursor, and substitutions adjust the window as glyphs are merged. Glyphs
carry their positioning adjustments, which GPOS lookups accumulate.

Supported are ligature substitution (GSUB 4) and chained contextual substitution
(GSUB 6), as well as GPOS lookup types 1, 2, 4, 5, 6, 7 and 8. Other lookup types
are decoded as unsupported and will not change a glyph line.

Glyph lines may carry an "actual text" overlay, used to reconstruct the text
of a run of glyphs for text extraction (see ActualTextIterator).

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package otlayout

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer writes to trace with key 'font.layout'
func tracer() tracing.Trace {
	return tracing.Select("font.layout")
}
