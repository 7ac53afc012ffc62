package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/quads"
)

// vertexStride is the byte stride per vertex in the uber pipeline.
// Layout per vertex:
//
//	position (vec2<f32>) = 8 bytes  (location 0)
//	local    (vec2<f32>) = 8 bytes  (location 1)
//	tex      (vec2<f32>) = 8 bytes  (location 2)
//	color    (vec4<f32>) = 16 bytes (location 3)
//	shape_id (u32)       = 4 bytes  (location 4)
//
// Total = 44 bytes per vertex.
const vertexStride = 44

// shapeStride is the byte size of one shape record, matching the Shape
// struct in uber.wgsl. 80 bytes keeps the uniform array stride a multiple
// of 16 as std140 layout requires.
const shapeStride = 80

// shapeBufferSize is the fixed size of the shape uniform buffer: a full
// array of MaxShapesPerDraw records, zero-padded past the live ones.
const shapeBufferSize = shapeStride * quads.MaxShapesPerDraw

// globalsSize is the byte size of the globals uniform.
// Layout: resolution (vec2<f32>) + padding (vec2<f32>) = 16 bytes.
const globalsSize = 16

func putF32(buf []byte, f float64) {
	binary.LittleEndian.PutUint32(buf, math.Float32bits(float32(f)))
}

// packVertices serializes vertices for GPU upload. Vertex colors are
// premultiplied here; the fragment shader consumes them as-is.
func packVertices(verts []quads.Vertex) []byte {
	buf := make([]byte, len(verts)*vertexStride)
	off := 0
	for i := range verts {
		v := &verts[i]
		c := v.Color.Premul()
		putF32(buf[off+0:], v.Pos.X)
		putF32(buf[off+4:], v.Pos.Y)
		putF32(buf[off+8:], v.Local.X)
		putF32(buf[off+12:], v.Local.Y)
		putF32(buf[off+16:], v.Tex.X)
		putF32(buf[off+20:], v.Tex.Y)
		putF32(buf[off+24:], c.R)
		putF32(buf[off+28:], c.G)
		putF32(buf[off+32:], c.B)
		putF32(buf[off+36:], c.A)
		binary.LittleEndian.PutUint32(buf[off+40:], v.ShapeID)
		off += vertexStride
	}
	return buf
}

// packIndices serializes triangle indices as little-endian u32.
func packIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*4)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*4:], idx)
	}
	return buf
}

// packShapes serializes one shape buffer chunk into a fixed-size uniform
// payload. Record colors stay straight alpha; the shader premultiplies
// border and shadow colors when it composites. Chunks larger than the
// uniform array would overrun the buffer, so the capacity invariant is
// rechecked at this boundary.
func packShapes(shapes []quads.Shape) ([]byte, error) {
	if len(shapes) > quads.MaxShapesPerDraw {
		return nil, fmt.Errorf("%w: %d records", quads.ErrTooManyShapes, len(shapes))
	}
	buf := make([]byte, shapeBufferSize)
	for i := range shapes {
		s := &shapes[i]
		off := i * shapeStride
		putF32(buf[off+0:], s.CornerRadii.TopLeft)
		putF32(buf[off+4:], s.CornerRadii.TopRight)
		putF32(buf[off+8:], s.CornerRadii.BottomRight)
		putF32(buf[off+12:], s.CornerRadii.BottomLeft)
		packColor(buf[off+16:], s.BorderColor)
		packColor(buf[off+32:], s.ShadowColor)
		putF32(buf[off+48:], s.ShadowOffset.X)
		putF32(buf[off+52:], s.ShadowOffset.Y)
		putF32(buf[off+56:], s.Size.X)
		putF32(buf[off+60:], s.Size.Y)
		putF32(buf[off+64:], s.BorderWidth)
		putF32(buf[off+68:], s.ShadowBlurRadius)
		putF32(buf[off+72:], s.ShadowSpreadRadius)
		// Bytes 76..79 stay zero (padding).
	}
	return buf, nil
}

func packColor(buf []byte, c quads.RGBA) {
	putF32(buf[0:], c.R)
	putF32(buf[4:], c.G)
	putF32(buf[8:], c.B)
	putF32(buf[12:], c.A)
}

// packGlobals creates the 16-byte globals uniform. The vertex shader
// applies the Viewport.NDC mapping from this resolution.
func packGlobals(vp quads.Viewport) []byte {
	buf := make([]byte, globalsSize)
	putF32(buf[0:], vp.Width)
	putF32(buf[4:], vp.Height)
	// Padding bytes 8..15 remain zero.
	return buf
}
