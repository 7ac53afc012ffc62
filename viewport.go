package quads

// Viewport holds the render-target resolution for one frame. It is passed
// explicitly into the geometry stage rather than kept as ambient global
// state, and is replaced wholesale between frames, never mutated mid-draw.
type Viewport struct {
	Width, Height float64
}

// NDC maps a pixel-space position to normalized device coordinates.
// Pixel space has its origin at the top-left with y growing downward;
// device space runs [-1,1] with y growing upward, so the vertical axis is
// flipped. Positions outside the viewport are legal and simply clip.
func (v Viewport) NDC(p Vec2) Vec2 {
	return Vec2{
		X: p.X/v.Width*2 - 1,
		Y: 1 - p.Y/v.Height*2,
	}
}
