package decode

import (
	"image"
	"image/color"
)

// RGB24 is an in-memory image of packed 24-bit pixels without alpha. Webcams
// deliver both R, G, B (RGB3) and B, G, R (BGR3) byte orders.
type RGB24 struct {
	// Pix holds the image's pixels, three bytes each. The pixel at (x, y)
	// starts at Pix[(y-Rect.Min.Y)*Stride + (x-Rect.Min.X)*3].
	Pix    []uint8
	Stride int
	Rect   image.Rectangle
	// BGR is set when the first byte of every pixel is blue.
	BGR bool
}

var _ image.Image = &RGB24{}

func (p *RGB24) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB24) Bounds() image.Rectangle { return p.Rect }

func (p *RGB24) At(x, y int) color.Color {
	return p.RGBAAt(x, y)
}

func (p *RGB24) RGBAAt(x, y int) color.RGBA {
	if !(image.Point{x, y}.In(p.Rect)) {
		return color.RGBA{}
	}
	i := (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*3
	s := p.Pix[i : i+3 : i+3]
	if p.BGR {
		return color.RGBA{s[2], s[1], s[0], 0xff}
	}
	return color.RGBA{s[0], s[1], s[2], 0xff}
}

// Opaque reports that the image has no transparent pixels.
func (p *RGB24) Opaque() bool { return true }
