package pipeline

import (
	"errors"

	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrMissingShader is returned by Validate when the vertex or fragment stage is not set.
var ErrMissingShader = errors.New("pipeline: vertex and fragment shaders are required")

// AlphaBlending is the straight-alpha "over" blend used by WithAlphaBlending.
var AlphaBlending = wgpu.BlendState{
	Color: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorSrcAlpha,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
	Alpha: wgpu.BlendComponent{
		SrcFactor: wgpu.BlendFactorOne,
		DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
		Operation: wgpu.BlendOperationAdd,
	},
}

// Pipeline describes a render pipeline before and after the Renderer creates it: the two
// shader stages, the primitive state and the color target state. The scene is flat, so there
// is no depth state.
type Pipeline interface {
	// PipelineKey returns the key the Renderer registers the pipeline under.
	PipelineKey() string

	// Shader returns the stage of the given type, or nil if it is not set.
	//
	// Parameters:
	//   - shaderType: vertex or fragment
	//
	// Returns:
	//   - shader.Shader: the stage, or nil
	Shader(shaderType shader.ShaderType) shader.Shader

	// Primitive returns the topology, winding and culling used to assemble primitives.
	Primitive() wgpu.PrimitiveState

	// ColorTarget returns the color target state for a surface format. Blending is attached only
	// when the pipeline was built with a blend state.
	ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState

	// Validate returns ErrMissingShader unless both stages are set.
	Validate() error

	// RenderPipeline returns the GPU object, or nil before registration.
	RenderPipeline() *wgpu.RenderPipeline

	// SetRenderPipeline stores the GPU object once the Renderer has created it.
	SetRenderPipeline(p *wgpu.RenderPipeline)
}

var _ Pipeline = &pipeline{}

type pipeline struct {
	key string

	vertexShader, fragmentShader shader.Shader

	primitive wgpu.PrimitiveState
	// blend is nil when blending is off
	blend     *wgpu.BlendState
	writeMask wgpu.ColorWriteMask

	renderPipeline *wgpu.RenderPipeline
}

// NewPipeline creates a pipeline description. Without options it assembles a counter-clockwise
// triangle list with no culling and writes every channel with blending off.
//
// Parameters:
//   - pipelineKey: the registry key
//   - opts: functional options applied in order
//
// Returns:
//   - Pipeline: the unregistered pipeline
func NewPipeline(pipelineKey string, opts ...PipelineBuilderOption) Pipeline {
	p := &pipeline{
		key: pipelineKey,
		primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		writeMask: wgpu.ColorWriteMaskAll,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *pipeline) PipelineKey() string                  { return p.key }
func (p *pipeline) Primitive() wgpu.PrimitiveState       { return p.primitive }
func (p *pipeline) RenderPipeline() *wgpu.RenderPipeline { return p.renderPipeline }

func (p *pipeline) SetRenderPipeline(rp *wgpu.RenderPipeline) {
	p.renderPipeline = rp
}

func (p *pipeline) Shader(shaderType shader.ShaderType) shader.Shader {
	switch shaderType {
	case shader.ShaderTypeVertex:
		return p.vertexShader
	case shader.ShaderTypeFragment:
		return p.fragmentShader
	default:
		return nil
	}
}

func (p *pipeline) ColorTarget(format wgpu.TextureFormat) wgpu.ColorTargetState {
	return wgpu.ColorTargetState{
		Format:    format,
		Blend:     p.blend,
		WriteMask: p.writeMask,
	}
}

func (p *pipeline) Validate() error {
	if p.vertexShader == nil || p.fragmentShader == nil {
		return ErrMissingShader
	}
	return nil
}
