// Command quadsdemo renders a sample scene exercising all quad modes:
// rounded rectangles with borders and shadows, image fills, and glyph
// masks. Output is a PNG.
package main

import (
	"flag"
	"image"
	"image/color"
	"log"
	"math"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/gogpu/quads"
	"github.com/gogpu/quads/gpu"
)

func main() {
	var (
		width  = flag.Int("width", 800, "image width")
		height = flag.Int("height", 600, "image height")
		output = flag.String("output", "quads.png", "output file")
		useGPU = flag.Bool("gpu", false, "render on the GPU instead of the CPU")
	)
	flag.Parse()

	pm := quads.NewPixmap(*width, *height)
	pm.Clear(quads.RGBA{R: 0.086, G: 0.129, B: 0.243, A: 1})

	b := quads.NewBatcher()
	drawCards(b)
	drawShadowRow(b)
	drawImageCard(b)
	if err := drawLabel(b, "quads", 60, 560, 48); err != nil {
		log.Fatalf("Failed to rasterize label: %v", err)
	}

	if *useGPU {
		r, err := gpu.NewRenderer()
		if err != nil {
			log.Fatalf("Failed to create GPU renderer: %v", err)
		}
		defer r.Close()
		if err := r.Render(pm, b); err != nil {
			log.Fatalf("GPU render failed: %v", err)
		}
	} else {
		quads.NewSoftwareRenderer().Render(pm, b)
	}

	if err := pm.SavePNG(*output); err != nil {
		log.Fatalf("Failed to save: %v", err)
	}
	log.Printf("Demo saved to %s (%dx%d)\n", *output, *width, *height)
}

// drawCards draws a row of rounded rectangles with varying radii and
// borders.
func drawCards(b *quads.Batcher) {
	colors := []quads.RGBA{
		{R: 0.9, G: 0.2, B: 0.2, A: 1},
		{R: 0.2, G: 0.8, B: 0.3, A: 1},
		{R: 0.2, G: 0.4, B: 0.9, A: 1},
		{R: 0.9, G: 0.6, B: 0.1, A: 1},
	}
	for i, c := range colors {
		x := 60 + float64(i)*180
		r := float64(i) * 12
		must(b.DrawRect(quads.Rect{
			Pos:         quads.V2(x, 60),
			Size:        quads.V2(140, 100),
			Fill:        c,
			CornerRadii: quads.UniformRadii(r),
			Border: &quads.Border{
				Color: quads.RGBA{R: 1, G: 1, B: 1, A: 0.9},
				Width: float64(1 + i),
			},
		}))
	}

	// Per-corner radii.
	must(b.DrawRect(quads.Rect{
		Pos:  quads.V2(60, 200),
		Size: quads.V2(300, 80),
		Fill: quads.RGBA{R: 0.55, G: 0.35, B: 0.85, A: 1},
		CornerRadii: quads.CornerRadii{
			TopLeft: 40, TopRight: 8, BottomRight: 40, BottomLeft: 8,
		},
	}))
}

// drawShadowRow draws shadowed rects covering both shadow regimes: blur
// below one pixel stays a hard silhouette, larger blurs go soft.
func drawShadowRow(b *quads.Batcher) {
	blurs := []float64{0.5, 4, 12, 24}
	for i, blur := range blurs {
		x := 60 + float64(i)*180
		must(b.DrawRect(quads.Rect{
			Pos:         quads.V2(x, 330),
			Size:        quads.V2(140, 100),
			Fill:        quads.RGBA{R: 0.95, G: 0.95, B: 0.95, A: 1},
			CornerRadii: quads.UniformRadii(12),
			Shadow: &quads.Shadow{
				Color:        quads.RGBA{R: 0, G: 0, B: 0, A: 0.6},
				Offset:       quads.V2(6, 8),
				BlurRadius:   blur,
				SpreadRadius: 2,
			},
		}))
	}
}

// drawImageCard draws a procedurally generated image through the color
// shading mode, tinted and rotated via the transform stack.
func drawImageCard(b *quads.Batcher) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			d := math.Hypot(float64(x)-32, float64(y)-32) / 32
			v := uint8(255 * clamp01(1-d))
			img.SetRGBA(x, y, color.RGBA{R: v, G: uint8(4 * x), B: uint8(4 * y), A: 255})
		}
	}
	tex := quads.NewTextureFromImage(img)

	b.PushTransform(quads.Translate(640, 380).Multiply(quads.Rotate(math.Pi / 12)))
	must(b.DrawImage(tex, quads.V2(-60, -60), quads.V2(120, 120), quads.RGBA{R: 1, G: 1, B: 1, A: 1}))
	b.PopTransform()
}

// drawLabel rasterizes text into an alpha mask and draws it as a
// mask-mode quad.
func drawLabel(b *quads.Batcher, text string, x, y, size float64) error {
	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return err
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return err
	}
	defer func() { _ = face.Close() }()

	bounds, _ := font.BoundString(face, text)
	w := (bounds.Max.X - bounds.Min.X).Ceil() + 2
	h := (bounds.Max.Y - bounds.Min.Y).Ceil() + 2

	mask := image.NewAlpha(image.Rect(0, 0, w, h))
	d := &font.Drawer{
		Dst:  mask,
		Src:  image.NewUniform(color.Alpha{A: 255}),
		Face: face,
		Dot:  fixed.Point26_6{X: -bounds.Min.X + 64, Y: -bounds.Min.Y + 64},
	}
	d.DrawString(text)

	tex := quads.NewMaskTexture(mask)
	return b.DrawMask(tex, quads.V2(x, y), quads.V2(float64(w), float64(h)),
		quads.RGBA{R: 1, G: 1, B: 1, A: 1}, quads.V2(0, 0), quads.V2(1, 1))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func must(err error) {
	if err != nil {
		log.Fatalf("draw failed: %v", err)
	}
}
