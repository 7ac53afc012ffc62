package quads

// Vertex is one corner of a rendered quad. Pos is in pixel space; Local is
// the shape-local position interpolated for the shading kernel; Tex is the
// normalized texture coordinate; ShapeID is either an index into the
// current draw call's shape records or one of the ShapeIDFill /
// ShapeIDFillMask sentinels.
//
// ShapeID indexes a discrete array and must be carried to the shading
// stage without linear interpolation (flat, in GPU terms).
type Vertex struct {
	Pos     Vec2
	Local   Vec2
	Tex     Vec2
	Color   RGBA
	ShapeID uint32
}

// quad is the axis-aligned source of four vertices. local/tex coordinates
// interpolate from min to max across the quad.
type quad struct {
	min, max           Vec2
	localMin, localMax Vec2
	texMin, texMax     Vec2
	color              RGBA
	shapeID            uint32
}
