package quads

import "testing"

func TestDrawRectFastPath(t *testing.T) {
	b := NewBatcher()
	err := b.DrawRect(Rect{
		Pos:  V2(10, 20),
		Size: V2(30, 40),
		Fill: RGB(1, 0, 0),
	})
	if err != nil {
		t.Fatalf("DrawRect: %v", err)
	}

	if got := len(b.Shapes()); got != 0 {
		t.Errorf("fast path allocated %d shape records, want 0", got)
	}
	if got := len(b.Vertices()); got != 4 {
		t.Fatalf("got %d vertices, want 4", got)
	}
	if got := len(b.Indices()); got != 6 {
		t.Fatalf("got %d indices, want 6", got)
	}
	for i, v := range b.Vertices() {
		if v.ShapeID != ShapeIDFill {
			t.Errorf("vertex %d: ShapeID = %#x, want ShapeIDFill", i, v.ShapeID)
		}
	}

	batches := b.Finish()
	if len(batches) != 1 {
		t.Fatalf("got %d batches, want 1", len(batches))
	}
	if batches[0].Texture != nil {
		t.Errorf("untextured rect bound texture %v, want nil", batches[0].Texture)
	}
	if batches[0].FirstIndex != 0 || batches[0].IndexCount != 6 {
		t.Errorf("batch range = (%d, %d), want (0, 6)",
			batches[0].FirstIndex, batches[0].IndexCount)
	}
}

func TestDrawRectShapeRecord(t *testing.T) {
	b := NewBatcher()
	err := b.DrawRect(Rect{
		Pos:         V2(0, 0),
		Size:        V2(100, 100),
		Fill:        White,
		CornerRadii: UniformRadii(10),
	})
	if err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	if got := len(b.Shapes()); got != 1 {
		t.Fatalf("got %d shape records, want 1", got)
	}
	for i, v := range b.Vertices() {
		if v.ShapeID != 0 {
			t.Errorf("vertex %d: ShapeID = %d, want 0", i, v.ShapeID)
		}
	}
	s := b.Shapes()[0]
	if s.Size != V2(100, 100) || s.CornerRadii != UniformRadii(10) {
		t.Errorf("unexpected shape record %+v", s)
	}
}

func TestDrawRectValidation(t *testing.T) {
	tests := []struct {
		name string
		rect Rect
	}{
		{"negative size", Rect{Size: V2(-1, 10)}},
		{"negative radius", Rect{Size: V2(10, 10), CornerRadii: UniformRadii(-2)}},
		{"negative border", Rect{Size: V2(10, 10), Border: &Border{Width: -1}}},
		{"negative blur", Rect{Size: V2(10, 10), Shadow: &Shadow{BlurRadius: -3}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBatcher()
			if err := b.DrawRect(tt.rect); err == nil {
				t.Error("DrawRect accepted invalid geometry")
			}
			if len(b.Vertices()) != 0 {
				t.Error("rejected draw still emitted vertices")
			}
		})
	}
}

func TestShadowExpandsQuad(t *testing.T) {
	b := NewBatcher()
	err := b.DrawRect(Rect{
		Pos:  V2(50, 50),
		Size: V2(20, 20),
		Fill: Black,
		Shadow: &Shadow{
			Color:      Black,
			Offset:     V2(4, 4),
			BlurRadius: 6,
		},
	})
	if err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	vs := b.Vertices()
	min, max := vs[0].Pos, vs[0].Pos
	for _, v := range vs[1:] {
		min = min.Min(v.Pos)
		max = max.Max(v.Pos)
	}
	// Reach is blur+spread = 6; the quad must cover both the rect and
	// the offset-shifted shadow extent.
	if min != V2(48, 48) {
		t.Errorf("quad min = %v, want (48, 48)", min)
	}
	if max != V2(80, 80) {
		t.Errorf("quad max = %v, want (80, 80)", max)
	}
	// Local coordinates track the expansion relative to the rect origin.
	if got := vs[0].Local; got != V2(-2, -2) {
		t.Errorf("local min = %v, want (-2, -2)", got)
	}
}

func TestShapeBufferRollover(t *testing.T) {
	b := NewBatcher()
	const n = MaxShapesPerDraw + 3
	for i := 0; i < n; i++ {
		err := b.DrawRect(Rect{
			Size:        V2(10, 10),
			Fill:        White,
			CornerRadii: UniformRadii(2),
		})
		if err != nil {
			t.Fatalf("DrawRect %d: %v", i, err)
		}
	}

	batches := b.Finish()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].ShapeBufferID != 0 || batches[1].ShapeBufferID != 1 {
		t.Errorf("shape buffer IDs = (%d, %d), want (0, 1)",
			batches[0].ShapeBufferID, batches[1].ShapeBufferID)
	}
	if got := len(b.ShapeBuffer(0)); got != MaxShapesPerDraw {
		t.Errorf("buffer 0 holds %d records, want %d", got, MaxShapesPerDraw)
	}
	if got := len(b.ShapeBuffer(1)); got != 3 {
		t.Errorf("buffer 1 holds %d records, want 3", got)
	}

	// Shape IDs restart from zero in the second buffer.
	first := b.Vertices()[MaxShapesPerDraw*4].ShapeID
	if first != 0 {
		t.Errorf("first vertex of second buffer has ShapeID %d, want 0", first)
	}
	for _, v := range b.Vertices() {
		if v.ShapeID >= MaxShapesPerDraw {
			t.Fatalf("vertex ShapeID %d exceeds per-draw capacity", v.ShapeID)
		}
	}
}

func TestTextureSwitchFlushes(t *testing.T) {
	texA := WhiteTexture()
	texB := WhiteTexture()

	b := NewBatcher()
	if err := b.DrawImage(texA, V2(0, 0), V2(10, 10), White); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawImage(texA, V2(10, 0), V2(10, 10), White); err != nil {
		t.Fatal(err)
	}
	if err := b.DrawImage(texB, V2(20, 0), V2(10, 10), White); err != nil {
		t.Fatal(err)
	}

	batches := b.Finish()
	if len(batches) != 2 {
		t.Fatalf("got %d batches, want 2", len(batches))
	}
	if batches[0].Texture != texA || batches[0].IndexCount != 12 {
		t.Errorf("batch 0 = %+v, want texA with 12 indices", batches[0])
	}
	if batches[1].Texture != texB || batches[1].IndexCount != 6 {
		t.Errorf("batch 1 = %+v, want texB with 6 indices", batches[1])
	}
}

func TestTransformAppliesToPositionsOnly(t *testing.T) {
	b := NewBatcher()
	b.PushTransform(Translate(100, 0).Multiply(Scale(2, 2)))
	err := b.DrawRect(Rect{
		Pos:         V2(1, 1),
		Size:        V2(10, 10),
		Fill:        White,
		CornerRadii: UniformRadii(3),
	})
	if err != nil {
		t.Fatalf("DrawRect: %v", err)
	}
	b.PopTransform()

	v := b.Vertices()[0]
	if v.Pos != V2(102, 2) {
		t.Errorf("transformed pos = %v, want (102, 2)", v.Pos)
	}
	// Local coordinates are untouched so the SDF still works in the
	// shape's own pixel space.
	if v.Local != V2(0, 0) {
		t.Errorf("local = %v, want (0, 0)", v.Local)
	}

	// After the pop, draws land untransformed.
	if err := b.DrawRect(Rect{Pos: V2(1, 1), Size: V2(10, 10), Fill: White}); err != nil {
		t.Fatal(err)
	}
	if got := b.Vertices()[4].Pos; got != V2(1, 1) {
		t.Errorf("pos after pop = %v, want (1, 1)", got)
	}
}

func TestBatcherReset(t *testing.T) {
	b := NewBatcher()
	if err := b.DrawRect(Rect{Size: V2(5, 5), Fill: White, CornerRadii: UniformRadii(1)}); err != nil {
		t.Fatal(err)
	}
	b.Finish()
	b.Reset()

	if len(b.Vertices()) != 0 || len(b.Indices()) != 0 || len(b.Shapes()) != 0 {
		t.Error("Reset left geometry behind")
	}
	if got := b.Finish(); len(got) != 0 {
		t.Errorf("Finish after Reset returned %d batches", len(got))
	}
}
