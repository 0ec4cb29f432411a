package main

import (
	"os"

	"github.com/npillmayer/otshaping"
	"github.com/pterm/pterm"
)

// renderOp shapes text and writes it as a PNG image to the file given by
// flag -png.
func renderOp(intp *Intp, op *Op) (err error, stop bool) {
	line, err := intp.font.Shape(op.arg, otshaping.ShapeOptions{
		Script:   intp.scripts(),
		Language: intp.lang,
		Features: intp.features,
	})
	if err != nil {
		return err, false
	}
	out, err := os.Create(intp.pngfile)
	if err != nil {
		return err, false
	}
	defer out.Close()
	opts := otshaping.RenderOptions{Width: 1000, Height: 240, PPEM: 96}
	if err = intp.font.RenderPNG(out, line, opts); err != nil {
		return err, false
	}
	pterm.Info.Printf("rendered %d glyphs to %s\n", line.Len(), intp.pngfile)
	return nil, false
}
