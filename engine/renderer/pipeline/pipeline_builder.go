package pipeline

import (
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// PipelineBuilderOption configures a pipeline in NewPipeline.
type PipelineBuilderOption func(*pipeline)

// WithVertexShader sets the vertex stage. Its vertex input structs become the pipeline's
// vertex buffer layouts.
func WithVertexShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.vertexShader = s
	}
}

// WithFragmentShader sets the fragment stage.
func WithFragmentShader(s shader.Shader) PipelineBuilderOption {
	return func(p *pipeline) {
		p.fragmentShader = s
	}
}

// WithPrimitive replaces the whole primitive state.
//
// Parameters:
//   - topology: how vertices are assembled, e.g. wgpu.PrimitiveTopologyTriangleList
//   - frontFace: the winding that faces the viewer
//   - cull: which faces are discarded
//
// Returns:
//   - PipelineBuilderOption: the option
func WithPrimitive(topology wgpu.PrimitiveTopology, frontFace wgpu.FrontFace, cull wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.primitive = wgpu.PrimitiveState{Topology: topology, FrontFace: frontFace, CullMode: cull}
	}
}

// WithCullMode sets only the cull mode.
func WithCullMode(mode wgpu.CullMode) PipelineBuilderOption {
	return func(p *pipeline) {
		p.primitive.CullMode = mode
	}
}

// WithBlend enables blending with the given state. A nil state turns blending off.
func WithBlend(state *wgpu.BlendState) PipelineBuilderOption {
	return func(p *pipeline) {
		p.blend = state
	}
}

// WithAlphaBlending enables blending with a copy of AlphaBlending.
func WithAlphaBlending() PipelineBuilderOption {
	return func(p *pipeline) {
		state := AlphaBlending
		p.blend = &state
	}
}

// WithWriteMask limits which color channels the pipeline writes.
func WithWriteMask(mask wgpu.ColorWriteMask) PipelineBuilderOption {
	return func(p *pipeline) {
		p.writeMask = mask
	}
}
