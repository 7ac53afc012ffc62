package quads

import "fmt"

// Batch describes one draw call: a contiguous index range that shares a
// single texture source and a single shape-record buffer. Batches are
// composited in order with source-over blending (painter's algorithm).
type Batch struct {
	// Texture is the bound texture source. nil means the 1x1 opaque
	// white texture.
	Texture *Texture

	// FirstIndex and IndexCount select this batch's range of the
	// batcher's index slice.
	FirstIndex int
	IndexCount int

	// ShapeBufferID selects which MaxShapesPerDraw-sized chunk of the
	// batcher's shape records this batch references.
	ShapeBufferID int
}

// Rect describes one rounded-rectangle draw operation.
type Rect struct {
	// Pos is the top-left corner in pixel space; Size is the full
	// width/height.
	Pos  Vec2
	Size Vec2

	// Fill is the fill color. When Texture is set it acts as a tint on
	// the sampled texture instead.
	Fill RGBA

	// Texture optionally fills the rectangle with an RGBA texture.
	// TexMin/TexMax select a normalized sub-region; leaving both zero
	// uses the whole texture.
	Texture        *Texture
	TexMin, TexMax Vec2

	CornerRadii CornerRadii
	Border      *Border
	Shadow      *Shadow
}

// Batcher accumulates draw operations into the vertex, index, and
// shape-record buffers consumed by the renderers. A zero-value Batcher is
// not usable; create one with NewBatcher.
//
// Batcher is not safe for concurrent use.
type Batcher struct {
	vertices []Vertex
	indices  []uint32
	shapes   []Shape
	batches  []Batch

	transformStack []Matrix

	curTexture  *Texture
	curBufferID int
	lastIndex   int
}

// NewBatcher creates an empty batcher.
func NewBatcher() *Batcher {
	return &Batcher{}
}

// Reset clears all accumulated geometry, retaining allocated capacity for
// reuse across frames.
func (b *Batcher) Reset() {
	b.vertices = b.vertices[:0]
	b.indices = b.indices[:0]
	b.shapes = b.shapes[:0]
	b.batches = b.batches[:0]
	b.transformStack = b.transformStack[:0]
	b.curTexture = nil
	b.curBufferID = 0
	b.lastIndex = 0
}

// Vertices returns the accumulated vertices.
func (b *Batcher) Vertices() []Vertex { return b.vertices }

// Indices returns the accumulated triangle indices.
func (b *Batcher) Indices() []uint32 { return b.indices }

// Shapes returns all accumulated shape records across every shape buffer.
func (b *Batcher) Shapes() []Shape { return b.shapes }

// ShapeBuffer returns the chunk of shape records for the given buffer ID.
// Each chunk holds at most MaxShapesPerDraw records; vertex shape IDs
// index within their batch's chunk.
func (b *Batcher) ShapeBuffer(id int) []Shape {
	start := id * MaxShapesPerDraw
	if start >= len(b.shapes) {
		return nil
	}
	end := start + MaxShapesPerDraw
	if end > len(b.shapes) {
		end = len(b.shapes)
	}
	return b.shapes[start:end]
}

// Finish flushes any pending geometry into a final batch and returns the
// batch list. Drawing may continue afterwards; Finish can be called again.
func (b *Batcher) Finish() []Batch {
	b.flush()
	return b.batches
}

// PushTransform composes an affine transform onto the stack. Transforms
// apply to vertex positions only; shape-local and texture coordinates are
// unaffected.
func (b *Batcher) PushTransform(m Matrix) {
	if n := len(b.transformStack); n > 0 {
		m = b.transformStack[n-1].Multiply(m)
	}
	b.transformStack = append(b.transformStack, m)
}

// PopTransform removes the most recently pushed transform.
func (b *Batcher) PopTransform() {
	if n := len(b.transformStack); n > 0 {
		b.transformStack = b.transformStack[:n-1]
	}
}

// DrawRect draws a rounded rectangle with optional texture fill, border,
// and shadow. Plain untextured sharp rectangles with no border or shadow
// take a fast path that allocates no shape record.
//
// Geometric parameters are validated here, at the host boundary, because
// the per-pixel kernel has no error-reporting channel.
func (b *Batcher) DrawRect(r Rect) error {
	if r.Size.X < 0 || r.Size.Y < 0 {
		return fmt.Errorf("%w: negative size %gx%g", ErrInvalidShape, r.Size.X, r.Size.Y)
	}

	texMin, texMax := r.TexMin, r.TexMax
	if r.Texture != nil && texMin == texMax {
		texMin, texMax = Vec2{}, Vec2{X: 1, Y: 1}
	}
	b.setSource(r.Texture)

	if r.Border == nil && r.Shadow == nil && r.CornerRadii.IsZero() {
		b.addQuad(quad{
			min:      r.Pos,
			max:      r.Pos.Add(r.Size),
			texMin:   texMin,
			texMax:   texMax,
			color:    r.Fill,
			shapeID:  ShapeIDFill,
			localMin: Vec2{},
			localMax: Vec2{},
		})
		return nil
	}

	shape := Shape{
		CornerRadii: r.CornerRadii,
		Size:        r.Size,
	}
	if r.Border != nil {
		shape.BorderColor = r.Border.Color
		shape.BorderWidth = r.Border.Width
	}
	if r.Shadow != nil {
		shape.ShadowColor = r.Shadow.Color
		shape.ShadowOffset = r.Shadow.Offset
		shape.ShadowBlurRadius = r.Shadow.BlurRadius
		shape.ShadowSpreadRadius = r.Shadow.SpreadRadius
	}
	if err := shape.Validate(); err != nil {
		return err
	}
	id := b.addShape(shape)

	rectMin := r.Pos
	rectMax := r.Pos.Add(r.Size)

	// Expand the quad so the shadow never clips against its own
	// geometry.
	shadowReach := Splat(shape.ShadowBlurRadius + shape.ShadowSpreadRadius)
	shadowMin := rectMin.Sub(shadowReach).Add(shape.ShadowOffset)
	shadowMax := rectMax.Add(shadowReach).Add(shape.ShadowOffset)

	min := shadowMin.Min(rectMin)
	max := shadowMax.Max(rectMax)

	// Extrapolate texture coordinates so the sampled region stays
	// aligned with the un-expanded rectangle.
	texSize := texMax.Sub(texMin)
	if r.Size.X > 0 {
		texMin.X -= (rectMin.X - min.X) * texSize.X / r.Size.X
		texMax.X += (max.X - rectMax.X) * texSize.X / r.Size.X
	}
	if r.Size.Y > 0 {
		texMin.Y -= (rectMin.Y - min.Y) * texSize.Y / r.Size.Y
		texMax.Y += (max.Y - rectMax.Y) * texSize.Y / r.Size.Y
	}

	b.addQuad(quad{
		min:      min,
		max:      max,
		localMin: min.Sub(r.Pos),
		localMax: max.Sub(r.Pos),
		texMin:   texMin,
		texMax:   texMax,
		color:    r.Fill,
		shapeID:  id,
	})
	return nil
}

// DrawImage draws the whole texture into the given pixel rectangle,
// modulated by tint. This is the color (ShapeIDFill) mode.
func (b *Batcher) DrawImage(tex *Texture, pos, size Vec2, tint RGBA) error {
	return b.DrawImageRegion(tex, pos, size, tint, Vec2{}, Vec2{X: 1, Y: 1})
}

// DrawImageRegion draws a normalized sub-region of the texture into the
// given pixel rectangle, modulated by tint.
func (b *Batcher) DrawImageRegion(tex *Texture, pos, size Vec2, tint RGBA, texMin, texMax Vec2) error {
	if tex == nil {
		return fmt.Errorf("quads: DrawImage requires a texture")
	}
	b.setSource(tex)
	b.addQuad(quad{
		min:     pos,
		max:     pos.Add(size),
		texMin:  texMin,
		texMax:  texMax,
		color:   tint,
		shapeID: ShapeIDFill,
	})
	return nil
}

// DrawMask draws a normalized sub-region of a single-channel coverage
// texture as a solid color, typically a glyph from a mask atlas. This is
// the mask (ShapeIDFillMask) mode.
func (b *Batcher) DrawMask(tex *Texture, pos, size Vec2, color RGBA, texMin, texMax Vec2) error {
	if tex == nil {
		return fmt.Errorf("quads: DrawMask requires a texture")
	}
	b.setSource(tex)
	b.addQuad(quad{
		min:     pos,
		max:     pos.Add(size),
		texMin:  texMin,
		texMax:  texMax,
		color:   color,
		shapeID: ShapeIDFillMask,
	})
	return nil
}

// flush closes the pending index range into a batch.
func (b *Batcher) flush() {
	if b.lastIndex == len(b.indices) {
		return
	}
	b.batches = append(b.batches, Batch{
		Texture:       b.curTexture,
		FirstIndex:    b.lastIndex,
		IndexCount:    len(b.indices) - b.lastIndex,
		ShapeBufferID: b.curBufferID,
	})
	b.lastIndex = len(b.indices)
}

// setSource switches the bound texture, flushing the pending batch when it
// changes.
func (b *Batcher) setSource(tex *Texture) {
	if b.curTexture != tex {
		b.flush()
	}
	b.curTexture = tex
}

// addShape appends a shape record, rolling over to a fresh shape buffer
// when the current one reaches MaxShapesPerDraw. The returned ID indexes
// within the record's buffer, so the kernel never sees an index >=
// MaxShapesPerDraw.
func (b *Batcher) addShape(s Shape) uint32 {
	if len(b.shapes) > 0 && len(b.shapes)%MaxShapesPerDraw == 0 {
		b.flush()
		b.curBufferID = len(b.shapes) / MaxShapesPerDraw
	}
	id := uint32(len(b.shapes) - b.curBufferID*MaxShapesPerDraw)
	b.shapes = append(b.shapes, s)
	return id
}

// addVertex appends one vertex, applying the current transform to its
// position.
func (b *Batcher) addVertex(v Vertex) uint32 {
	if n := len(b.transformStack); n > 0 {
		v.Pos = b.transformStack[n-1].Transform(v.Pos)
	}
	idx := uint32(len(b.vertices))
	b.vertices = append(b.vertices, v)
	return idx
}

// addQuad expands an axis-aligned quad into four vertices and two
// triangles.
func (b *Batcher) addQuad(q quad) {
	a := b.addVertex(Vertex{
		Pos:     Vec2{X: q.min.X, Y: q.min.Y},
		Local:   Vec2{X: q.localMin.X, Y: q.localMin.Y},
		Tex:     Vec2{X: q.texMin.X, Y: q.texMin.Y},
		Color:   q.color,
		ShapeID: q.shapeID,
	})
	c := b.addVertex(Vertex{
		Pos:     Vec2{X: q.max.X, Y: q.min.Y},
		Local:   Vec2{X: q.localMax.X, Y: q.localMin.Y},
		Tex:     Vec2{X: q.texMax.X, Y: q.texMin.Y},
		Color:   q.color,
		ShapeID: q.shapeID,
	})
	d := b.addVertex(Vertex{
		Pos:     Vec2{X: q.max.X, Y: q.max.Y},
		Local:   Vec2{X: q.localMax.X, Y: q.localMax.Y},
		Tex:     Vec2{X: q.texMax.X, Y: q.texMax.Y},
		Color:   q.color,
		ShapeID: q.shapeID,
	})
	e := b.addVertex(Vertex{
		Pos:     Vec2{X: q.min.X, Y: q.max.Y},
		Local:   Vec2{X: q.localMin.X, Y: q.localMax.Y},
		Tex:     Vec2{X: q.texMin.X, Y: q.texMax.Y},
		Color:   q.color,
		ShapeID: q.shapeID,
	})
	b.indices = append(b.indices, a, c, d, d, e, a)
}
