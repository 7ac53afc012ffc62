package quads

import "math"

// shadePixel is the per-pixel shading kernel. It is a pure function of the
// shape records, the interpolated vertex attributes, and the screen-space
// steps of the local position (ddx, ddy); no state carries across pixels.
//
// The shape ID dispatches one of three modes before any shape-record read:
// plain texture modulation (ShapeIDFill), single-channel mask coverage
// (ShapeIDFillMask), or analytic shape evaluation. texColor is the bound
// texture sampled at the pixel's texture coordinate.
//
// texColor and vertexColor must already be premultiplied. The result is
// premultiplied too, with every channel scaled by the computed coverage,
// ready for source-over compositing.
func shadePixel(shapes []Shape, shapeID uint32, local Vec2, texColor, vertexColor RGBA, ddx, ddy Vec2) RGBA {
	switch shapeID {
	case ShapeIDFill:
		return texColor.Mul(vertexColor)
	case ShapeIDFillMask:
		return vertexColor.Scale(texColor.R)
	}
	return shadeShape(&shapes[shapeID], local, texColor, vertexColor, ddx, ddy)
}

// shadeShape evaluates the analytic rounded-rectangle mode: fill coverage
// from the signed distance field, an optional border annulus, and an
// optional drop shadow composited under the fill.
func shadeShape(s *Shape, local Vec2, texColor, vertexColor RGBA, ddx, ddy Vec2) RGBA {
	half := s.Size.Mul(0.5)
	p := local.Sub(half)

	r := s.CornerRadii.selectQuadrant(p)
	dist := roundedRectDistance(p, half, r)
	aa := distanceAAHalfWidth(p, half, r, ddx, ddy)
	fillMask := smoothCoverage(dist, aa)

	fill := texColor.Mul(vertexColor)
	if s.hasBorder() {
		// The border boundary is the fill SDF shifted outward by the
		// border width; shifting by a constant leaves the gradient, and
		// therefore the AA width, unchanged.
		borderMask := smoothCoverage(dist+s.BorderWidth, aa)
		fill = s.BorderColor.Premul().Lerp(fill, borderMask)
	}

	var shadow RGBA
	if s.hasShadow() {
		shadow = s.ShadowColor.Premul().Scale(shadowValue(s, p, ddx, ddy))
	}

	// Where the fill mask is 1 the fill wins; where it is 0 only the
	// shadow remains. With no shadow this reduces to fill * fillMask.
	return shadow.Lerp(fill, fillMask)
}

// shadowValue computes the shadow coverage at p (shape-center-relative).
// The shadow shape is the fill shape grown by the spread radius and moved
// by the shadow offset. Blur below one pixel keeps a hard SDF edge;
// anything larger switches to the analytic Gaussian approximation.
func shadowValue(s *Shape, p Vec2, ddx, ddy Vec2) float64 {
	sp := p.Sub(s.ShadowOffset)
	half := s.Size.Mul(0.5).Add(Splat(s.ShadowSpreadRadius))

	r := s.CornerRadii.selectQuadrant(sp)
	// Spread preserves sharp corners: a zero radius stays zero.
	if r > 0 {
		r += s.ShadowSpreadRadius
	}

	if s.ShadowBlurRadius < 1 {
		dist := roundedRectDistance(sp, half, r)
		return smoothCoverage(dist, distanceAAHalfWidth(sp, half, r, ddx, ddy))
	}
	return blurredShadowValue(sp, half, r, 0.5*s.ShadowBlurRadius)
}

// blurredShadowValue approximates a rounded rectangle convolved with a
// Gaussian of width sigma, in closed form. The corner is modeled as a
// superellipse whose exponent widens with sigma, and the combined distance
// is mapped through the error function, so the cost per pixel is constant
// regardless of the blur radius.
func blurredShadowValue(p, b Vec2, radius, sigma float64) float64 {
	if sigma < epsilon {
		sigma = epsilon
	}

	r0 := math.Hypot(radius, 1.15*sigma)
	r1 := math.Hypot(radius, 2.0*sigma)
	exponent := 2 * r1 / r0

	qx := math.Abs(p.X) - b.X + r1
	qy := math.Abs(p.Y) - b.Y + r1

	outside := math.Pow(
		math.Pow(math.Max(qx, 0), exponent)+math.Pow(math.Max(qy, 0), exponent),
		1/exponent,
	)
	inside := math.Min(math.Max(qx, qy), 0)
	d := inside + outside - r1

	return 0.5 - 0.5*erfApprox(d/sigma-0.5)
}
