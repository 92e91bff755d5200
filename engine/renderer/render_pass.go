package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderPass records draw commands for the frame opened by BeginFrame.
// It is only valid until the matching EndFrame.
type RenderPass interface {
	model.RenderPass

	// SetPipeline selects a registered render pipeline for subsequent draws.
	//
	// Parameters:
	//   - key: the pipeline key used at registration
	//
	// Returns:
	//   - error: ErrPipelineNotFound if the key is not registered
	SetPipeline(key string) error
}

// wgpuRenderPass adapts a wgpu render pass encoder to the RenderPass interface.
type wgpuRenderPass struct {
	encoder *wgpu.RenderPassEncoder
	lookup  func(key string) pipeline.Pipeline
}

var _ RenderPass = &wgpuRenderPass{}

func (p *wgpuRenderPass) SetPipeline(key string) error {
	pl := p.lookup(key)
	if pl == nil || pl.RenderPipeline() == nil {
		return fmt.Errorf("%w: %q", ErrPipelineNotFound, key)
	}
	p.encoder.SetPipeline(pl.RenderPipeline())
	return nil
}

func (p *wgpuRenderPass) SetVertexBuffer(slot uint32, provider bind_group_provider.BindGroupProvider) {
	p.encoder.SetVertexBuffer(slot, provider.VertexBuffer(), 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetIndexBuffer(provider bind_group_provider.BindGroupProvider) {
	p.encoder.SetIndexBuffer(provider.IndexBuffer(), wgpu.IndexFormatUint32, 0, wgpu.WholeSize)
}

func (p *wgpuRenderPass) SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider) {
	p.encoder.SetBindGroup(group, provider.BindGroup(), nil)
}

func (p *wgpuRenderPass) DrawIndexed(indexCount uint32, instances model.InstanceRange) {
	if indexCount == 0 || instances.Count() == 0 {
		return
	}
	p.encoder.DrawIndexed(indexCount, instances.Count(), 0, 0, instances.Start)
}
