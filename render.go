package otshaping

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"

	"github.com/npillmayer/otshaping/otlayout"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"golang.org/x/image/vector"
)

// RenderOptions control rendering of a shaped glyph line.
type RenderOptions struct {
	Width, Height int  // image size in pixels
	PPEM          int  // pixels per em
	ShowBoxes     bool // outline the bounding box of every glyph
}

type glyphPath struct {
	segs   sfnt.Segments
	dx, dy float32
	box    fixed.Rectangle26_6
}

// RenderPNG renders the glyphs of line as a PNG image, centered on a white
// background. Positioning adjustments of the glyphs are honoured: marks attached
// to a base glyph are placed relative to the origin of their base and do not
// advance the pen.
func (f *ScalableFont) RenderPNG(w io.Writer, line *otlayout.GlyphLine, opts RenderOptions) error {
	if line.Len() == 0 {
		return errors.New("empty glyph line")
	}
	upem := float32(f.SFNT.UnitsPerEm())
	if upem <= 0 {
		return errors.New("invalid units-per-em")
	}
	scale := float32(opts.PPEM) / upem
	paths := make([]glyphPath, 0, line.Len())
	origins := make([][2]float32, line.Len())
	var (
		penX, penY float32
		bounds     fixed.Rectangle26_6
		buf        sfnt.Buffer
	)
	for i := range line.Len() {
		g := line.Get(i)
		ox, oy := penX, penY
		if g.AnchorDelta != 0 && i+g.AnchorDelta >= 0 {
			ox, oy = origins[i+g.AnchorDelta][0], origins[i+g.AnchorDelta][1]
		} else {
			penX += float32(g.Width) * scale
		}
		origins[i] = [2]float32{ox, oy}
		penX += float32(g.XAdvance) * scale
		penY -= float32(g.YAdvance) * scale
		segs, err := f.SFNT.LoadGlyph(&buf, sfnt.GlyphIndex(g.Code), fixed.I(opts.PPEM), nil)
		if err != nil {
			tracer().Debugf("cannot load outline of glyph %d: %v", g.Code, err)
			continue
		}
		// segments become invalid once the buffer is re-used
		segs = append(sfnt.Segments(nil), segs...)
		p := glyphPath{
			segs: segs,
			dx:   ox + float32(g.XPlacement)*scale,
			dy:   oy - float32(g.YPlacement)*scale,
			box:  segs.Bounds(),
		}
		paths = append(paths, p)
		bounds = bounds.Union(p.box.Add(fixed.Point26_6{X: toFixed(p.dx), Y: toFixed(p.dy)}))
	}
	if len(paths) == 0 {
		return errors.New("no drawable glyph paths found")
	}
	shiftX := (float32(opts.Width)-fromFixed(bounds.Max.X-bounds.Min.X))/2 - fromFixed(bounds.Min.X)
	shiftY := (float32(opts.Height)-fromFixed(bounds.Max.Y-bounds.Min.Y))/2 - fromFixed(bounds.Min.Y)

	img := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{255, 255, 255, 255}), image.Point{}, draw.Src)
	rast := vector.NewRasterizer(opts.Width, opts.Height)
	rast.DrawOp = draw.Over
	for _, p := range paths {
		x, y := shiftX+p.dx, shiftY+p.dy
		for _, seg := range p.segs {
			a := seg.Args
			switch seg.Op {
			case sfnt.SegmentOpMoveTo:
				rast.MoveTo(x+fromFixed(a[0].X), y+fromFixed(a[0].Y))
			case sfnt.SegmentOpLineTo:
				rast.LineTo(x+fromFixed(a[0].X), y+fromFixed(a[0].Y))
			case sfnt.SegmentOpQuadTo:
				rast.QuadTo(x+fromFixed(a[0].X), y+fromFixed(a[0].Y),
					x+fromFixed(a[1].X), y+fromFixed(a[1].Y))
			case sfnt.SegmentOpCubeTo:
				rast.CubeTo(x+fromFixed(a[0].X), y+fromFixed(a[0].Y),
					x+fromFixed(a[1].X), y+fromFixed(a[1].Y),
					x+fromFixed(a[2].X), y+fromFixed(a[2].Y))
			}
		}
	}
	rast.Draw(img, img.Bounds(), image.Black, image.Point{})
	if opts.ShowBoxes {
		for _, p := range paths {
			x, y := int(shiftX+p.dx), int(shiftY+p.dy)
			drawRectOutline(img, p.box.Min.X.Floor()+x, p.box.Min.Y.Floor()+y,
				p.box.Max.X.Ceil()+x, p.box.Max.Y.Ceil()+y, color.RGBA{255, 0, 0, 255})
		}
	}
	return png.Encode(w, img)
}

func toFixed(x float32) fixed.Int26_6 { return fixed.Int26_6(x * 64) }

func fromFixed(x fixed.Int26_6) float32 { return float32(x) / 64 }

func drawRectOutline(img *image.RGBA, minX, minY, maxX, maxY int, c color.RGBA) {
	r := image.Rect(minX, minY, maxX, maxY).Intersect(img.Bounds())
	if r.Empty() {
		return
	}
	for x := r.Min.X; x < r.Max.X; x++ {
		img.SetRGBA(x, r.Min.Y, c)
		img.SetRGBA(x, r.Max.Y-1, c)
	}
	for y := r.Min.Y; y < r.Max.Y; y++ {
		img.SetRGBA(r.Min.X, y, c)
		img.SetRGBA(r.Max.X-1, y, c)
	}
}
