package renderer

import (
	"fmt"
	"maps"
	"sync"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// SurfaceSource hands the Renderer a presentation surface and its initial size.
// window.Window satisfies it.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// Renderer owns the GPU device and the window surface. Scene state allocates its buffers and
// bind groups through it, pipelines are registered on it by key, and every frame records a
// single render pass:
//
//	pass, err := r.BeginFrame()
//	// draws on pass
//	err = r.EndFrame()
//	r.Present()
type Renderer interface {
	// Pipeline returns the registered pipeline for key, or nil.
	Pipeline(key string) pipeline.Pipeline

	// Pipelines returns a snapshot of the registry.
	Pipelines() map[string]pipeline.Pipeline

	// RegisterPipelines validates and creates each pipeline on the GPU, then registers it under
	// its PipelineKey. Keys that already hold a created pipeline are left untouched.
	//
	// Parameters:
	//   - pipelines: the pipelines to create
	//
	// Returns:
	//   - error: the first validation or creation failure, naming the pipeline key
	RegisterPipelines(pipelines ...pipeline.Pipeline) error

	// Resize reconfigures the surface. The size is kept even if configuration fails, so
	// reconfiguring after a lost surface uses the latest size.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: ErrZeroSize for a zero dimension, or the configuration failure
	Resize(width, height int) error

	// Size returns the last size passed to Resize.
	Size() (width, height int)

	// SetPresentMode changes the present mode from the next Resize on.
	SetPresentMode(mode PresentMode)

	// InitMeshBuffers uploads static vertex and index data and stores the buffers on provider.
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer gives provider a zeroed vertex buffer of size bytes that WriteBuffers fills.
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// InitBindGroup allocates the buffers and bind group described by descriptor on provider.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the bind group layout, typically from PipelineBindGroupLayout
	//   - bufferUsageOverrides: usage flags ORed into the derived usage, keyed by binding; may be nil
	//   - bufferSizeOverrides: sizes replacing MinBindingSize, keyed by binding; may be nil
	//
	// Returns:
	//   - error: the allocation failure
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues the writes. They land before any command buffer submitted afterwards.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the next surface image and opens the frame's render pass.
	//
	// Returns:
	//   - RenderPass: the pass to draw into
	//   - error: ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrOutOfMemory,
	//     ErrDeviceLost or an unclassified failure
	BeginFrame() (RenderPass, error)

	// EndFrame closes the pass and submits it without presenting. Returns ErrNoFrame when
	// BeginFrame did not succeed.
	EndFrame() error

	// Present shows the submitted image. It does nothing when no image is held.
	Present()

	// Release frees the registered pipelines and the backend.
	Release()
}

var _ Renderer = &renderer{}

type renderer struct {
	mu sync.Mutex

	backend   RendererBackend
	pipelines map[string]pipeline.Pipeline

	width, height int

	// construction settings, read once by NewRenderer
	forceFallbackAdapter bool
	presentMode          *PresentMode
	msaa                 MSAASampleCount
	clearColor           wgpu.Color
}

// NewRenderer opens a GPU device for source's surface and configures the surface at the
// source's current size.
//
// Parameters:
//   - backendType: the GPU backend, currently only BackendTypeWGPU
//   - source: the surface provider, usually the window
//   - options: functional options applied before the device is requested
//
// Returns:
//   - Renderer: the ready renderer
//   - error: an unsupported backend or MSAA count, or an adapter, device or surface failure
func NewRenderer(backendType RendererBackendType, source SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	if source == nil {
		panic("renderer: NewRenderer requires a SurfaceSource")
	}
	r := &renderer{
		pipelines:  make(map[string]pipeline.Pipeline),
		msaa:       MSAA4x,
		clearColor: DefaultClearColor,
	}
	for _, opt := range options {
		opt(r)
	}
	if !r.msaa.Valid() {
		return nil, fmt.Errorf("renderer: unsupported MSAA sample count %d", r.msaa)
	}

	if backendType != BackendTypeWGPU {
		return nil, fmt.Errorf("renderer: unsupported backend type %d", backendType)
	}
	backend, err := newWGPURendererBackend(source.SurfaceDescriptor(), r.forceFallbackAdapter, r.msaa, r.clearColor)
	if err != nil {
		return nil, err
	}
	r.backend = backend
	if r.presentMode != nil {
		r.backend.SetPresentMode(*r.presentMode)
	}

	if err := r.Resize(source.Width(), source.Height()); err != nil {
		r.backend.Release()
		return nil, err
	}
	return r, nil
}

func (r *renderer) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return ErrZeroSize
	}
	r.mu.Lock()
	r.width, r.height = width, height
	r.mu.Unlock()

	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return fmt.Errorf("configure surface %dx%d: %w", width, height, err)
	}
	common.Logger().Info("surface configured", "width", width, "height", height)
	return nil
}

func (r *renderer) Size() (int, int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) Pipeline(key string) pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines[key]
}

func (r *renderer) Pipelines() map[string]pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()
	return maps.Clone(r.pipelines)
}

func (r *renderer) RegisterPipelines(pipelines ...pipeline.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range pipelines {
		key := p.PipelineKey()
		if have, ok := r.pipelines[key]; ok && have.RenderPipeline() != nil {
			continue
		}
		if err := p.Validate(); err != nil {
			return fmt.Errorf("pipeline %q: %w", key, err)
		}
		if err := r.backend.RegisterRenderPipeline(p); err != nil {
			return fmt.Errorf("pipeline %q: %w", key, err)
		}
		r.pipelines[key] = p
		common.Logger().Debug("render pipeline registered", "key", key)
	}
	return nil
}

func (r *renderer) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return r.backend.InitMeshBuffers(provider, vertexData, indexData, indexCount)
}

func (r *renderer) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	return r.backend.InitVertexBuffer(provider, size)
}

func (r *renderer) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	return r.backend.InitBindGroup(provider, descriptor, bufferUsageOverrides, bufferSizeOverrides)
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	if len(writes) > 0 {
		r.backend.WriteBuffers(writes)
	}
}

func (r *renderer) BeginFrame() (RenderPass, error) {
	encoder, err := r.backend.BeginFrame()
	if err != nil {
		return nil, err
	}
	return &wgpuRenderPass{encoder: encoder, lookup: r.Pipeline}, nil
}

func (r *renderer) EndFrame() error {
	return r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	for _, p := range r.pipelines {
		if rp := p.RenderPipeline(); rp != nil {
			rp.Release()
			p.SetRenderPipeline(nil)
		}
	}
	r.mu.Unlock()
	r.backend.Release()
}
