package quads

import "math"

// minAAHalfWidth is the floor for the anti-aliasing half-width. Degenerate
// derivatives (zero-area quads, extreme minification) would otherwise
// collapse the smoothstep band to nothing and divide by zero.
const minAAHalfWidth = 1e-4

// roundedRectDistance computes the signed distance from p to a rounded
// rectangle centered at the origin with half-extents b and corner radius r
// for the quadrant containing p. Negative inside, zero on the boundary,
// positive outside. Continuous at radius 0, where it degenerates to the
// plain rectangle distance.
func roundedRectDistance(p, b Vec2, r float64) float64 {
	qx := math.Abs(p.X) - b.X + r
	qy := math.Abs(p.Y) - b.Y + r

	outside := math.Sqrt(math.Max(qx, 0)*math.Max(qx, 0) + math.Max(qy, 0)*math.Max(qy, 0))
	inside := math.Min(math.Max(qx, qy), 0)

	return inside + outside - r
}

// smoothCoverage converts a signed distance to an anti-aliased coverage
// value in [0, 1]: exactly 1 at dist <= -halfWidth, exactly 0 at
// dist >= halfWidth, and a Hermite smoothstep ramp in between. halfWidth
// is half the screen-space rate of change of the distance field, so the
// ramp spans roughly one pixel.
func smoothCoverage(dist, halfWidth float64) float64 {
	if halfWidth < minAAHalfWidth {
		halfWidth = minAAHalfWidth
	}
	return 1 - smoothstep(-halfWidth, halfWidth, dist)
}

// smoothstep is the Hermite interpolation 3t^2 - 2t^3 of x clamped to
// [e0, e1], matching the WGSL builtin.
func smoothstep(e0, e1, x float64) float64 {
	t := (x - e0) / (e1 - e0)
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return t * t * (3 - 2*t)
}

// distanceAAHalfWidth estimates half the screen-space derivative of the
// rounded-rect distance field at p by finite differences along the local
// position's per-pixel steps ddx and ddy. This mirrors fwidth(dist) * 0.5
// in the GPU shading stage.
func distanceAAHalfWidth(p, b Vec2, r float64, ddx, ddy Vec2) float64 {
	d := roundedRectDistance(p, b, r)
	dx := roundedRectDistance(p.Add(ddx), b, r) - d
	dy := roundedRectDistance(p.Add(ddy), b, r) - d
	return 0.5 * (math.Abs(dx) + math.Abs(dy))
}
