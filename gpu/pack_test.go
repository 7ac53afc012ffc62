package gpu

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/gogpu/quads"
)

func f32At(t *testing.T, buf []byte, offset int) float32 {
	t.Helper()
	if offset+4 > len(buf) {
		t.Fatalf("offset %d out of range (len %d)", offset, len(buf))
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[offset:]))
}

func u32At(t *testing.T, buf []byte, offset int) uint32 {
	t.Helper()
	if offset+4 > len(buf) {
		t.Fatalf("offset %d out of range (len %d)", offset, len(buf))
	}
	return binary.LittleEndian.Uint32(buf[offset:])
}

func TestPackVerticesLayout(t *testing.T) {
	verts := []quads.Vertex{
		{
			Pos:     quads.V2(10, 20),
			Local:   quads.V2(-5, 5),
			Tex:     quads.V2(0.25, 0.75),
			Color:   quads.RGBA{R: 1, G: 0.5, B: 0.25, A: 1},
			ShapeID: 7,
		},
		{
			Pos:     quads.V2(30, 40),
			ShapeID: quads.ShapeIDFill,
		},
	}

	buf := packVertices(verts)
	if len(buf) != 2*vertexStride {
		t.Fatalf("len = %d, want %d", len(buf), 2*vertexStride)
	}

	// First vertex, field by field.
	if got := f32At(t, buf, 0); got != 10 {
		t.Errorf("pos.x = %v, want 10", got)
	}
	if got := f32At(t, buf, 4); got != 20 {
		t.Errorf("pos.y = %v, want 20", got)
	}
	if got := f32At(t, buf, 8); got != -5 {
		t.Errorf("local.x = %v, want -5", got)
	}
	if got := f32At(t, buf, 16); got != 0.25 {
		t.Errorf("tex.u = %v, want 0.25", got)
	}
	if got := u32At(t, buf, 40); got != 7 {
		t.Errorf("shape_id = %d, want 7", got)
	}

	// Second vertex starts at one stride.
	if got := f32At(t, buf, vertexStride); got != 30 {
		t.Errorf("second pos.x = %v, want 30", got)
	}
	if got := u32At(t, buf, vertexStride+40); got != quads.ShapeIDFill {
		t.Errorf("second shape_id = %#x, want %#x", got, uint32(quads.ShapeIDFill))
	}
}

func TestPackVerticesPremultipliesColor(t *testing.T) {
	verts := []quads.Vertex{{
		Color: quads.RGBA{R: 1, G: 0.5, B: 0, A: 0.5},
	}}
	buf := packVertices(verts)

	// Color sits at offset 24. RGB channels are scaled by alpha.
	if got := f32At(t, buf, 24); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("r = %v, want 0.5", got)
	}
	if got := f32At(t, buf, 28); math.Abs(float64(got)-0.25) > 1e-6 {
		t.Errorf("g = %v, want 0.25", got)
	}
	if got := f32At(t, buf, 32); got != 0 {
		t.Errorf("b = %v, want 0", got)
	}
	if got := f32At(t, buf, 36); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("a = %v, want 0.5", got)
	}
}

func TestPackIndices(t *testing.T) {
	buf := packIndices([]uint32{0, 2, 3, 0xFFFF0001})
	if len(buf) != 16 {
		t.Fatalf("len = %d, want 16", len(buf))
	}
	if got := u32At(t, buf, 8); got != 3 {
		t.Errorf("index 2 = %d, want 3", got)
	}
	if got := u32At(t, buf, 12); got != 0xFFFF0001 {
		t.Errorf("index 3 = %#x, want 0xFFFF0001", got)
	}
}

func TestPackShapesLayout(t *testing.T) {
	shapes := []quads.Shape{{
		Size:               quads.V2(100, 50),
		CornerRadii:        quads.CornerRadii{TopLeft: 1, TopRight: 2, BottomRight: 3, BottomLeft: 4},
		BorderColor:        quads.RGBA{R: 0.1, G: 0.2, B: 0.3, A: 1},
		BorderWidth:        2,
		ShadowColor:        quads.RGBA{R: 0, G: 0, B: 0, A: 0.5},
		ShadowOffset:       quads.V2(3, 4),
		ShadowBlurRadius:   8,
		ShadowSpreadRadius: 1.5,
	}}

	buf, err := packShapes(shapes)
	if err != nil {
		t.Fatalf("packShapes: %v", err)
	}
	if len(buf) != shapeBufferSize {
		t.Fatalf("len = %d, want %d", len(buf), shapeBufferSize)
	}

	// Radii order matches the shader: TL, TR, BR, BL.
	for i, want := range []float32{1, 2, 3, 4} {
		if got := f32At(t, buf, i*4); got != want {
			t.Errorf("radius[%d] = %v, want %v", i, got, want)
		}
	}
	if got := f32At(t, buf, 16); math.Abs(float64(got)-0.1) > 1e-6 {
		t.Errorf("border r = %v, want 0.1", got)
	}
	if got := f32At(t, buf, 44); math.Abs(float64(got)-0.5) > 1e-6 {
		t.Errorf("shadow a = %v, want 0.5", got)
	}
	if got := f32At(t, buf, 48); got != 3 {
		t.Errorf("shadow offset x = %v, want 3", got)
	}
	if got := f32At(t, buf, 56); got != 100 {
		t.Errorf("size x = %v, want 100", got)
	}
	if got := f32At(t, buf, 64); got != 2 {
		t.Errorf("border width = %v, want 2", got)
	}
	if got := f32At(t, buf, 68); got != 8 {
		t.Errorf("blur radius = %v, want 8", got)
	}
	if got := f32At(t, buf, 72); got != 1.5 {
		t.Errorf("spread radius = %v, want 1.5", got)
	}
}

func TestPackShapesZeroPadsUnusedSlots(t *testing.T) {
	buf, err := packShapes([]quads.Shape{{Size: quads.V2(1, 1)}})
	if err != nil {
		t.Fatalf("packShapes: %v", err)
	}

	// Slots beyond the first record must be zero so a stray ID reads an
	// inert record.
	for i := shapeStride; i < len(buf); i++ {
		if buf[i] != 0 {
			t.Fatalf("byte %d = %d, want 0", i, buf[i])
		}
	}
}

func TestPackShapesCapacity(t *testing.T) {
	shapes := make([]quads.Shape, quads.MaxShapesPerDraw)
	for i := range shapes {
		shapes[i].BorderWidth = float64(i)
	}
	buf, err := packShapes(shapes)
	if err != nil {
		t.Fatalf("packShapes: %v", err)
	}
	if len(buf) != shapeBufferSize {
		t.Fatalf("len = %d, want %d", len(buf), shapeBufferSize)
	}
	last := (quads.MaxShapesPerDraw - 1) * shapeStride
	if got := f32At(t, buf, last+64); got != float32(quads.MaxShapesPerDraw-1) {
		t.Errorf("last border width = %v, want %v", got, quads.MaxShapesPerDraw-1)
	}

	over := make([]quads.Shape, quads.MaxShapesPerDraw+1)
	if _, err := packShapes(over); !errors.Is(err, quads.ErrTooManyShapes) {
		t.Errorf("over-capacity err = %v, want ErrTooManyShapes", err)
	}
}

func TestPackGlobals(t *testing.T) {
	buf := packGlobals(quads.Viewport{Width: 800, Height: 600})
	if len(buf) != globalsSize {
		t.Fatalf("len = %d, want %d", len(buf), globalsSize)
	}
	if got := f32At(t, buf, 0); got != 800 {
		t.Errorf("width = %v, want 800", got)
	}
	if got := f32At(t, buf, 4); got != 600 {
		t.Errorf("height = %v, want 600", got)
	}
}
