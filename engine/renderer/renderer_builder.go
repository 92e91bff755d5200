package renderer

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultClearColor is the background the render pass clears to.
var DefaultClearColor = wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0}

// RendererBuilderOption configures a renderer before NewRenderer requests the GPU device.
type RendererBuilderOption func(*renderer)

// WithPresentMode sets the initial present mode. Modes the surface lacks fall back to VSync.
func WithPresentMode(mode PresentMode) RendererBuilderOption {
	return func(r *renderer) {
		r.presentMode = &mode
	}
}

// WithMSAA sets the sample count of the render pass. MSAA4x is the default and MSAAOff
// renders straight into the surface image. NewRenderer rejects other counts.
func WithMSAA(count MSAASampleCount) RendererBuilderOption {
	return func(r *renderer) {
		r.msaa = count
	}
}

// WithClearColor sets the color every frame starts from.
func WithClearColor(c wgpu.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
	}
}

// WithForceSoftwareRenderer requests the fallback (CPU) adapter. This needs a software Vulkan
// driver such as lavapipe or SwiftShader on the host.
//
// Parameters:
//   - force: true for the fallback adapter
//
// Returns:
//   - RendererBuilderOption: the option
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
