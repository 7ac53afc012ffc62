// Package quads is a batched 2D renderer for axis-aligned rounded
// rectangles with per-corner radii, inset borders, and soft drop shadows.
//
// All drawing funnels through a single shading kernel that handles three
// modes per pixel: analytic shape evaluation (signed distance fields with
// derivative-based anti-aliasing), single-channel coverage masks (glyphs),
// and plain color-texture sampling (images). The mode is selected by a
// per-vertex shape ID: two reserved sentinel values pick the texture-only
// modes, everything else indexes a fixed-capacity array of shape records.
//
// The package provides two interchangeable executions of the kernel:
//
//   - SoftwareRenderer evaluates the kernel per pixel on the CPU and writes
//     into a Pixmap. It is the reference implementation and needs no GPU.
//   - The gpu subpackage runs the same kernel as a WGSL vertex+fragment
//     pipeline on a WebGPU device via github.com/gogpu/wgpu.
//
// A Batcher turns draw calls into vertex/index/shape-record buffers shared
// by both backends. Shape records live in a bounded per-draw array of
// MaxShapesPerDraw entries (a uniform-buffer limit of the GPU backend);
// the batcher splits draws automatically when the bound is reached.
//
// Basic usage:
//
//	b := quads.NewBatcher()
//	b.DrawRect(quads.Rect{
//		Pos:         quads.V2(20, 20),
//		Size:        quads.V2(160, 100),
//		Fill:        quads.RGB(0.2, 0.5, 0.9),
//		CornerRadii: quads.UniformRadii(12),
//		Shadow:      &quads.Shadow{BlurRadius: 8, Color: quads.RGBA2(0, 0, 0, 0.5)},
//	})
//	pm := quads.NewPixmap(200, 140)
//	quads.NewSoftwareRenderer().Render(pm, b)
//	_ = pm.SavePNG("out.png")
package quads
