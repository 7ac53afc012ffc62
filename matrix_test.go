package quads

import (
	"math"
	"testing"
)

func TestMatrixIdentity(t *testing.T) {
	m := Identity()
	if !m.IsIdentity() {
		t.Error("Identity() not reported as identity")
	}
	if got := m.Transform(V2(3, 4)); got != V2(3, 4) {
		t.Errorf("identity transform = %v", got)
	}
	if Translate(1, 0).IsIdentity() {
		t.Error("translation reported as identity")
	}
}

func TestMatrixTranslateScale(t *testing.T) {
	if got := Translate(10, -5).Transform(V2(1, 2)); got != V2(11, -3) {
		t.Errorf("translate = %v", got)
	}
	if got := Scale(2, 3).Transform(V2(1, 2)); got != V2(2, 6) {
		t.Errorf("scale = %v", got)
	}
}

func TestMatrixRotate(t *testing.T) {
	// Quarter turn maps +x to +y (y grows downward).
	got := Rotate(math.Pi / 2).Transform(V2(1, 0))
	if !got.Approx(V2(0, 1), 1e-12) {
		t.Errorf("quarter turn = %v, want (0, 1)", got)
	}
}

func TestMatrixMultiplyOrder(t *testing.T) {
	// Translate-then-scale differs from scale-then-translate.
	ts := Translate(10, 0).Multiply(Scale(2, 2))
	if got := ts.Transform(V2(1, 1)); got != V2(12, 2) {
		t.Errorf("translate∘scale = %v, want (12, 2)", got)
	}
	st := Scale(2, 2).Multiply(Translate(10, 0))
	if got := st.Transform(V2(1, 1)); got != V2(22, 2) {
		t.Errorf("scale∘translate = %v, want (22, 2)", got)
	}
}
