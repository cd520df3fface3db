package hud

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Text layout constants, in unscaled pixels.
const (
	padding     = 4
	lineSpacing = 2
)

// Colours of the overlay.
var (
	TextColor       = color.RGBA{R: 0xe6, G: 0xe6, B: 0xe6, A: 0xff}
	BackgroundColor = color.RGBA{R: 0x00, G: 0x00, B: 0x00, A: 0x99}
)

// Rasterize renders lines with the built-in 7×13 face onto a translucent
// panel and scales it by an integer factor. It returns nil for no lines.
func Rasterize(lines []string, scale int) *image.RGBA {
	if len(lines) == 0 {
		return nil
	}
	if scale < 1 {
		scale = 1
	}

	face := basicfont.Face7x13
	metrics := face.Metrics()
	lineHeight := metrics.Height.Ceil() + lineSpacing

	width := 0
	for _, l := range lines {
		if w := font.MeasureString(face, l).Ceil(); w > width {
			width = w
		}
	}
	width += padding * 2
	height := len(lines)*lineHeight + padding*2 - lineSpacing

	src := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(src, src.Bounds(), image.NewUniform(BackgroundColor), image.Point{}, draw.Src)

	d := &font.Drawer{
		Dst:  src,
		Src:  image.NewUniform(TextColor),
		Face: face,
	}
	for i, l := range lines {
		d.Dot = fixed.P(padding, padding+i*lineHeight+metrics.Ascent.Ceil())
		d.DrawString(l)
	}

	if scale == 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, width*scale, height*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}
