package charts

import (
	"image"
	"image/color"
	"image/draw"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// stampFooter draws a small caption near the bottom-left of a rendered chart
// so every generated image names the dataset it came from.
func stampFooter(img image.Image, text string) image.Image {
	if img == nil || strings.TrimSpace(text) == "" {
		return img
	}
	b := img.Bounds()
	rgba := image.NewRGBA(b)
	draw.Draw(rgba, b, img, b.Min, draw.Src)

	face := basicfont.Face7x13
	textCol := image.NewUniform(color.RGBA{R: 90, G: 90, B: 90, A: 255})
	dr := &font.Drawer{Dst: rgba, Src: textCol, Face: face}
	tw := dr.MeasureString(text).Ceil()

	pad := 4
	x := b.Min.X + 10
	y := b.Max.Y - 8
	// light background so the caption stays readable over grid lines
	bg := image.NewUniform(color.RGBA{R: 255, G: 255, B: 255, A: 220})
	rect := image.Rect(x-pad, y-face.Metrics().Ascent.Ceil()-pad, x+tw+pad, y+pad)
	draw.Draw(rgba, rect, bg, image.Point{}, draw.Over)

	dr.Dot = fixed.Point26_6{X: fixed.I(x), Y: fixed.I(y)}
	dr.DrawString(text)
	return rgba
}
