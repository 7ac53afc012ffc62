package quads

import (
	"image"
	"image/color"
	"image/png"
	"os"
)

// Pixmap is a rectangular render target. Pixels are stored as
// premultiplied-alpha float64 components so repeated source-over blends
// accumulate without quantization.
type Pixmap struct {
	width  int
	height int
	data   []float64 // RGBA, 4 components per pixel, premultiplied
}

// NewPixmap creates a transparent pixmap with the given dimensions.
func NewPixmap(width, height int) *Pixmap {
	return &Pixmap{
		width:  width,
		height: height,
		data:   make([]float64, width*height*4),
	}
}

// Width returns the width of the pixmap.
func (p *Pixmap) Width() int {
	return p.width
}

// Height returns the height of the pixmap.
func (p *Pixmap) Height() int {
	return p.height
}

// SetPixel stores a premultiplied color at a single pixel.
func (p *Pixmap) SetPixel(x, y int, c RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	p.data[i+0] = c.R
	p.data[i+1] = c.G
	p.data[i+2] = c.B
	p.data[i+3] = c.A
}

// GetPixel returns the premultiplied color of a single pixel.
func (p *Pixmap) GetPixel(x, y int) RGBA {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return Transparent
	}
	i := (y*p.width + x) * 4
	return RGBA{
		R: p.data[i+0],
		G: p.data[i+1],
		B: p.data[i+2],
		A: p.data[i+3],
	}
}

// BlendPixel composites a premultiplied source color over the pixel.
func (p *Pixmap) BlendPixel(x, y int, src RGBA) {
	if x < 0 || x >= p.width || y < 0 || y >= p.height {
		return
	}
	i := (y*p.width + x) * 4
	inv := 1 - src.A
	p.data[i+0] = src.R + p.data[i+0]*inv
	p.data[i+1] = src.G + p.data[i+1]*inv
	p.data[i+2] = src.B + p.data[i+2]*inv
	p.data[i+3] = src.A + p.data[i+3]*inv
}

// Clear fills the entire pixmap with a straight-alpha color.
func (p *Pixmap) Clear(c RGBA) {
	r := c.R * c.A
	g := c.G * c.A
	b := c.B * c.A
	for i := 0; i < len(p.data); i += 4 {
		p.data[i+0] = r
		p.data[i+1] = g
		p.data[i+2] = b
		p.data[i+3] = c.A
	}
}

// ToImage converts the pixmap to an image.RGBA, which shares its
// premultiplied representation.
func (p *Pixmap) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.width, p.height))
	for i := 0; i < len(p.data); i++ {
		img.Pix[i] = uint8(clamp255(p.data[i] * 255))
	}
	return img
}

// SavePNG saves the pixmap to a PNG file.
func (p *Pixmap) SavePNG(path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	return png.Encode(f, p.ToImage())
}

// At implements the image.Image interface.
func (p *Pixmap) At(x, y int) color.Color {
	c := p.GetPixel(x, y)
	return color.RGBA{
		R: uint8(clamp255(c.R * 255)),
		G: uint8(clamp255(c.G * 255)),
		B: uint8(clamp255(c.B * 255)),
		A: uint8(clamp255(c.A * 255)),
	}
}

// Bounds implements the image.Image interface.
func (p *Pixmap) Bounds() image.Rectangle {
	return image.Rect(0, 0, p.width, p.height)
}

// ColorModel implements the image.Image interface.
func (p *Pixmap) ColorModel() color.Model {
	return color.RGBAModel
}
