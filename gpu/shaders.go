// Package gpu renders batched quad geometry through wgpu/hal. It runs the
// same shading kernel as the software renderer, per fragment, with the
// shape records bound as a fixed-capacity uniform array.
package gpu

import _ "embed"

// Embedded WGSL shader source, compiled at pipeline creation.
//
//go:embed shaders/uber.wgsl
var uberShaderSource string
