package quads

import "math"

// SoftwareRenderer rasterizes batcher output on the CPU, running the same
// per-pixel shading kernel the GPU pipeline runs per fragment. Batches
// composite in submission order with premultiplied source-over blending.
//
// It exists both as a reference for the GPU path and as a fallback when no
// adapter is available. A SoftwareRenderer may be reused across frames; it
// holds no per-frame state.
type SoftwareRenderer struct {
	white *Texture
}

// NewSoftwareRenderer creates a software renderer.
func NewSoftwareRenderer() *SoftwareRenderer {
	return &SoftwareRenderer{white: WhiteTexture()}
}

// Render draws the batcher's accumulated geometry into the pixmap.
// Pending geometry is flushed first, so no explicit Finish call is needed.
func (r *SoftwareRenderer) Render(pm *Pixmap, b *Batcher) {
	batches := b.Finish()
	verts := b.Vertices()
	indices := b.Indices()

	logger := Logger()
	logger.Debug("software render",
		"batches", len(batches),
		"vertices", len(verts),
		"shapes", len(b.Shapes()))

	for _, batch := range batches {
		tex := batch.Texture
		if tex == nil {
			tex = r.white
		}
		shapes := b.ShapeBuffer(batch.ShapeBufferID)
		end := batch.FirstIndex + batch.IndexCount
		for i := batch.FirstIndex; i+2 < end; i += 3 {
			r.shadeTriangle(pm, tex, shapes,
				verts[indices[i]], verts[indices[i+1]], verts[indices[i+2]])
		}
	}
}

// edgeFunc is the signed parallelogram area of (b-a) x (p-a). Positive
// when p is to the interior side for a positively oriented triangle.
func edgeFunc(a, b, p Vec2) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// topLeftEdge reports whether the edge a->b owns pixels that land exactly
// on it. Shared edges between adjacent triangles are drawn exactly once,
// which matters because translucent pixels would otherwise blend twice.
func topLeftEdge(a, b Vec2) bool {
	dx, dy := b.X-a.X, b.Y-a.Y
	return dy < 0 || (dy == 0 && dx > 0)
}

func (r *SoftwareRenderer) shadeTriangle(pm *Pixmap, tex *Texture, shapes []Shape, v0, v1, v2 Vertex) {
	area := edgeFunc(v0.Pos, v1.Pos, v2.Pos)
	if area == 0 {
		return
	}
	if area < 0 {
		v1, v2 = v2, v1
		area = -area
	}

	// The local position varies affinely over the triangle, so its
	// screen-space derivatives are constant. These feed the kernel's
	// antialiasing width the way fwidth does on the GPU.
	d1 := v1.Pos.Sub(v0.Pos)
	d2 := v2.Pos.Sub(v0.Pos)
	l1 := v1.Local.Sub(v0.Local)
	l2 := v2.Local.Sub(v0.Local)
	ddx := l1.Mul(d2.Y / area).Add(l2.Mul(-d1.Y / area))
	ddy := l1.Mul(-d2.X / area).Add(l2.Mul(d1.X / area))

	minX := int(math.Floor(min3(v0.Pos.X, v1.Pos.X, v2.Pos.X)))
	minY := int(math.Floor(min3(v0.Pos.Y, v1.Pos.Y, v2.Pos.Y)))
	maxX := int(math.Ceil(max3(v0.Pos.X, v1.Pos.X, v2.Pos.X)))
	maxY := int(math.Ceil(max3(v0.Pos.Y, v1.Pos.Y, v2.Pos.Y)))
	if minX < 0 {
		minX = 0
	}
	if minY < 0 {
		minY = 0
	}
	if maxX > pm.Width() {
		maxX = pm.Width()
	}
	if maxY > pm.Height() {
		maxY = pm.Height()
	}

	own0 := topLeftEdge(v1.Pos, v2.Pos)
	own1 := topLeftEdge(v2.Pos, v0.Pos)
	own2 := topLeftEdge(v0.Pos, v1.Pos)

	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			p := V2(float64(x)+0.5, float64(y)+0.5)

			e0 := edgeFunc(v1.Pos, v2.Pos, p)
			e1 := edgeFunc(v2.Pos, v0.Pos, p)
			e2 := edgeFunc(v0.Pos, v1.Pos, p)
			if !covered(e0, own0) || !covered(e1, own1) || !covered(e2, own2) {
				continue
			}

			w1 := e1 / area
			w2 := e2 / area
			w0 := 1 - w1 - w2

			local := v0.Local.Add(l1.Mul(w1)).Add(l2.Mul(w2))
			tc := v0.Tex.
				Add(v1.Tex.Sub(v0.Tex).Mul(w1)).
				Add(v2.Tex.Sub(v0.Tex).Mul(w2))
			vc := RGBA{
				R: v0.Color.R*w0 + v1.Color.R*w1 + v2.Color.R*w2,
				G: v0.Color.G*w0 + v1.Color.G*w1 + v2.Color.G*w2,
				B: v0.Color.B*w0 + v1.Color.B*w1 + v2.Color.B*w2,
				A: v0.Color.A*w0 + v1.Color.A*w1 + v2.Color.A*w2,
			}

			texColor := tex.Sample(tc.X, tc.Y).Premul()
			out := shadePixel(shapes, v0.ShapeID, local, texColor, vc.Premul(), ddx, ddy)
			pm.BlendPixel(x, y, out)
		}
	}
}

// covered reports whether an edge value admits the pixel, counting the
// e == 0 boundary only for edges that own it.
func covered(e float64, owns bool) bool {
	if e > 0 {
		return true
	}
	return e == 0 && owns
}

func min3(a, b, c float64) float64 {
	return math.Min(a, math.Min(b, c))
}

func max3(a, b, c float64) float64 {
	return math.Max(a, math.Max(b, c))
}
