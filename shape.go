package quads

import (
	"errors"
	"fmt"
)

// MaxShapesPerDraw is the number of shape records a single draw call can
// reference. The GPU backend stores the records in a uniform buffer whose
// size is bounded by the hardware interface, so the capacity is fixed;
// the Batcher splits into multiple draw calls when it is exceeded.
const MaxShapesPerDraw = 128

// Reserved shape IDs. These two values never index the shape-record array;
// they select the texture-only shading modes instead.
const (
	// ShapeIDFill samples the bound texture as RGBA and modulates it by
	// the vertex color. Used for images and other pre-rasterized content.
	ShapeIDFill uint32 = 0xFFFFFFFF

	// ShapeIDFillMask samples the bound texture's single channel as
	// coverage and multiplies the vertex color by it. Used for glyph
	// masks.
	ShapeIDFillMask uint32 = 0xFFFFFFFE
)

// epsilon is the threshold below which border widths and shadow alphas are
// treated as disabled. Comparing against it avoids float-equality bugs for
// near-zero values.
const epsilon = 0.001

// ErrInvalidShape reports a shape record that violates the renderer's
// contract (negative radii, widths, or blur/spread values).
var ErrInvalidShape = errors.New("quads: invalid shape record")

// ErrTooManyShapes reports a draw list that would exceed MaxShapesPerDraw
// without batch splitting.
var ErrTooManyShapes = errors.New("quads: too many shape records for one draw call")

// CornerRadii holds one radius per corner of a rounded rectangle,
// selected per pixel by quadrant.
type CornerRadii struct {
	TopLeft     float64
	TopRight    float64
	BottomRight float64
	BottomLeft  float64
}

// NewCornerRadii creates per-corner radii in top-left, top-right,
// bottom-right, bottom-left order.
func NewCornerRadii(tl, tr, br, bl float64) CornerRadii {
	return CornerRadii{TopLeft: tl, TopRight: tr, BottomRight: br, BottomLeft: bl}
}

// UniformRadii creates equal radii for all four corners.
func UniformRadii(r float64) CornerRadii {
	return CornerRadii{TopLeft: r, TopRight: r, BottomRight: r, BottomLeft: r}
}

// IsZero returns true if all four radii are zero.
func (r CornerRadii) IsZero() bool {
	return r == CornerRadii{}
}

// selectQuadrant returns the radius for the quadrant containing p, where p
// is relative to the shape center with y growing downward.
func (r CornerRadii) selectQuadrant(p Vec2) float64 {
	if p.X < 0 {
		if p.Y < 0 {
			return r.TopLeft
		}
		return r.BottomLeft
	}
	if p.Y < 0 {
		return r.TopRight
	}
	return r.BottomRight
}

// Border describes an inset border drawn as an annulus between the shape
// boundary and the boundary shifted inward by Width. Corner radii are
// shared with the fill, so borders appear concentric.
type Border struct {
	Color RGBA
	Width float64
}

// Shadow describes a drop shadow behind the shape. Zero BlurRadius with a
// visible color produces a hard-edged offset duplicate of the shape;
// BlurRadius of one pixel or more switches to an analytic Gaussian
// approximation whose cost is independent of the radius.
type Shadow struct {
	Color        RGBA
	Offset       Vec2
	BlurRadius   float64
	SpreadRadius float64
}

// Shape is one renderable rounded-rectangle record. Records are uploaded
// per draw call as a read-only fixed-capacity array; the shading kernel
// dereferences them by the per-vertex shape ID.
//
// All geometric parameters must be non-negative. The kernel has no
// error-reporting channel, so Validate must be called where records are
// constructed, not per pixel.
type Shape struct {
	CornerRadii        CornerRadii
	BorderColor        RGBA
	ShadowColor        RGBA
	ShadowOffset       Vec2
	Size               Vec2
	BorderWidth        float64
	ShadowBlurRadius   float64
	ShadowSpreadRadius float64
}

// Validate checks the shape record invariants: non-negative size, radii,
// border width, and shadow blur/spread.
func (s *Shape) Validate() error {
	if s.Size.X < 0 || s.Size.Y < 0 {
		return fmt.Errorf("%w: negative size %gx%g", ErrInvalidShape, s.Size.X, s.Size.Y)
	}
	r := s.CornerRadii
	for _, v := range [4]float64{r.TopLeft, r.TopRight, r.BottomRight, r.BottomLeft} {
		if v < 0 {
			return fmt.Errorf("%w: negative corner radius %g", ErrInvalidShape, v)
		}
	}
	if s.BorderWidth < 0 {
		return fmt.Errorf("%w: negative border width %g", ErrInvalidShape, s.BorderWidth)
	}
	if s.ShadowBlurRadius < 0 {
		return fmt.Errorf("%w: negative shadow blur radius %g", ErrInvalidShape, s.ShadowBlurRadius)
	}
	if s.ShadowSpreadRadius < 0 {
		return fmt.Errorf("%w: negative shadow spread radius %g", ErrInvalidShape, s.ShadowSpreadRadius)
	}
	return nil
}

// hasBorder reports whether the border is enabled.
func (s *Shape) hasBorder() bool {
	return s.BorderWidth > epsilon
}

// hasShadow reports whether the shadow is enabled.
func (s *Shape) hasShadow() bool {
	return s.ShadowColor.A > epsilon
}
