package quads

import (
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"
)

// TextureFormat specifies the texel layout of a Texture.
type TextureFormat uint32

const (
	// FormatRGBA8 is 8-bit RGBA, straight alpha. Required by the color
	// (ShapeIDFill) shading mode.
	FormatRGBA8 TextureFormat = iota + 1

	// FormatA8 is a single 8-bit coverage channel. Required by the mask
	// (ShapeIDFillMask) shading mode.
	FormatA8
)

// Texture is an immutable sampled image bound to a draw call. One texture
// is bound per draw; the shading mode implied by each quad's shape ID must
// match the format (RGBA for color mode, single channel for mask mode);
// the renderer does not verify that pairing.
type Texture struct {
	format TextureFormat
	width  int
	height int
	// RGBA8: 4 bytes per texel. A8: 1 byte per texel.
	texels []uint8
}

// NewTexture creates a texture from raw texel data. len(texels) must be
// width*height*4 for FormatRGBA8 or width*height for FormatA8.
func NewTexture(format TextureFormat, width, height int, texels []uint8) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("quads: invalid texture size %dx%d", width, height)
	}
	bpp := 4
	if format == FormatA8 {
		bpp = 1
	}
	if len(texels) != width*height*bpp {
		return nil, fmt.Errorf("quads: texel data is %d bytes, want %d", len(texels), width*height*bpp)
	}
	return &Texture{format: format, width: width, height: height, texels: texels}, nil
}

// NewTextureFromImage converts any image.Image into an RGBA8 texture.
// Non-NRGBA sources are converted through golang.org/x/image/draw.
func NewTextureFromImage(img image.Image) *Texture {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	xdraw.Draw(dst, dst.Bounds(), img, bounds.Min, xdraw.Src)
	return &Texture{
		format: FormatRGBA8,
		width:  dst.Bounds().Dx(),
		height: dst.Bounds().Dy(),
		texels: dst.Pix,
	}
}

// NewTextureFromImageScaled converts an image into an RGBA8 texture of the
// given size, resampling with a bilinear kernel.
func NewTextureFromImageScaled(img image.Image, width, height int) *Texture {
	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return &Texture{
		format: FormatRGBA8,
		width:  width,
		height: height,
		texels: dst.Pix,
	}
}

// NewMaskTexture wraps an image.Alpha coverage mask as an A8 texture.
func NewMaskTexture(mask *image.Alpha) *Texture {
	bounds := mask.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	texels := make([]uint8, w*h)
	for y := 0; y < h; y++ {
		copy(texels[y*w:(y+1)*w], mask.Pix[y*mask.Stride:y*mask.Stride+w])
	}
	return &Texture{format: FormatA8, width: w, height: h, texels: texels}
}

// WhiteTexture returns a 1x1 opaque white RGBA8 texture, the conventional
// binding for draw calls that only use the analytic shape mode.
func WhiteTexture() *Texture {
	return &Texture{
		format: FormatRGBA8,
		width:  1,
		height: 1,
		texels: []uint8{0xFF, 0xFF, 0xFF, 0xFF},
	}
}

// Format returns the texel format.
func (t *Texture) Format() TextureFormat { return t.format }

// Width returns the texture width in texels.
func (t *Texture) Width() int { return t.width }

// Height returns the texture height in texels.
func (t *Texture) Height() int { return t.height }

// Texels returns the raw texel data.
func (t *Texture) Texels() []uint8 { return t.texels }

// Sample returns the bilinearly filtered texel at normalized coordinates
// (u, v) with clamp-to-edge addressing. Single-channel textures sample as
// (c, 0, 0, 1), matching how GPUs expand an R8 texture read.
func (t *Texture) Sample(u, v float64) RGBA {
	// Texel centers sit at (i+0.5)/width.
	x := u*float64(t.width) - 0.5
	y := v*float64(t.height) - 0.5

	x0 := int(math.Floor(x))
	y0 := int(math.Floor(y))
	fx := x - float64(x0)
	fy := y - float64(y0)

	c00 := t.texelAt(x0, y0)
	c10 := t.texelAt(x0+1, y0)
	c01 := t.texelAt(x0, y0+1)
	c11 := t.texelAt(x0+1, y0+1)

	top := c00.Lerp(c10, fx)
	bottom := c01.Lerp(c11, fx)
	return top.Lerp(bottom, fy)
}

// texelAt fetches one texel with clamp-to-edge addressing.
func (t *Texture) texelAt(x, y int) RGBA {
	if x < 0 {
		x = 0
	} else if x >= t.width {
		x = t.width - 1
	}
	if y < 0 {
		y = 0
	} else if y >= t.height {
		y = t.height - 1
	}

	if t.format == FormatA8 {
		return RGBA{R: float64(t.texels[y*t.width+x]) / 255, A: 1}
	}
	i := (y*t.width + x) * 4
	return RGBA{
		R: float64(t.texels[i+0]) / 255,
		G: float64(t.texels[i+1]) / 255,
		B: float64(t.texels[i+2]) / 255,
		A: float64(t.texels[i+3]) / 255,
	}
}
