package quads

import (
	"errors"
	"testing"
)

func TestShapeValidate(t *testing.T) {
	valid := Shape{
		Size:        V2(100, 50),
		CornerRadii: NewCornerRadii(1, 2, 3, 4),
		BorderWidth: 2,
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid shape rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Shape)
	}{
		{"negative width", func(s *Shape) { s.Size.X = -1 }},
		{"negative height", func(s *Shape) { s.Size.Y = -1 }},
		{"negative top-left radius", func(s *Shape) { s.CornerRadii.TopLeft = -1 }},
		{"negative bottom-right radius", func(s *Shape) { s.CornerRadii.BottomRight = -1 }},
		{"negative border width", func(s *Shape) { s.BorderWidth = -0.5 }},
		{"negative blur radius", func(s *Shape) { s.ShadowBlurRadius = -2 }},
		{"negative spread radius", func(s *Shape) { s.ShadowSpreadRadius = -2 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := valid
			tt.mutate(&s)
			err := s.Validate()
			if err == nil {
				t.Fatal("invalid shape accepted")
			}
			if !errors.Is(err, ErrInvalidShape) {
				t.Errorf("error %v does not wrap ErrInvalidShape", err)
			}
		})
	}
}

func TestShapeSentinelsOutsideCapacity(t *testing.T) {
	// The sentinel IDs must never collide with a valid record index.
	if ShapeIDFill < MaxShapesPerDraw {
		t.Error("ShapeIDFill collides with record indices")
	}
	if ShapeIDFillMask < MaxShapesPerDraw {
		t.Error("ShapeIDFillMask collides with record indices")
	}
	if ShapeIDFill == ShapeIDFillMask {
		t.Error("sentinels must be distinct")
	}
}

func TestShapeFeatureThresholds(t *testing.T) {
	s := Shape{Size: V2(10, 10)}
	if s.hasBorder() || s.hasShadow() {
		t.Error("zero shape reports border or shadow")
	}

	s.BorderWidth = epsilon / 2
	if s.hasBorder() {
		t.Error("sub-epsilon border width should be treated as absent")
	}
	s.BorderWidth = 1
	if !s.hasBorder() {
		t.Error("border width 1 not detected")
	}

	s.ShadowColor = Black
	if !s.hasShadow() {
		t.Error("opaque shadow color not detected")
	}
	s.ShadowColor = Transparent
	if s.hasShadow() {
		t.Error("fully transparent shadow should be skipped")
	}
}

func TestUniformRadii(t *testing.T) {
	r := UniformRadii(7)
	if r.TopLeft != 7 || r.TopRight != 7 || r.BottomRight != 7 || r.BottomLeft != 7 {
		t.Errorf("UniformRadii(7) = %+v", r)
	}
	if !UniformRadii(0).IsZero() {
		t.Error("zero radii not reported as zero")
	}
	if NewCornerRadii(0, 0, 1, 0).IsZero() {
		t.Error("nonzero radii reported as zero")
	}
}
