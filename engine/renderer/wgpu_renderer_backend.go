package renderer

import (
	"errors"
	"fmt"
	"maps"
	"runtime"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuRendererBackend drives a single window surface with one device and queue. Every method
// serializes on the backend mutex.
type wgpuRendererBackend interface {
	// ConfigureSurface (re)configures the swapchain for the given size and rebuilds the MSAA
	// target. Called on startup, on resize and after the surface is lost.
	//
	// Parameters:
	//   - width: surface width in pixels
	//   - height: surface height in pixels
	//
	// Returns:
	//   - error: an error if the surface has no usable format or the MSAA target failed
	ConfigureSurface(width, height int) error

	// SetPresentMode selects the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// RegisterRenderPipeline compiles both shader stages of p, derives the pipeline layout from
	// their bind group declarations and hands the render pipeline back through SetRenderPipeline.
	// The surface must already be configured so the color target format is known.
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// InitMeshBuffers uploads static vertex and index data onto provider. Empty data skips
	// the matching buffer.
	//
	// Parameters:
	//   - provider: receives the buffers and index count
	//   - vertexData: packed vertex bytes
	//   - indexData: packed uint32 indices
	//   - indexCount: number of indices in indexData
	//
	// Returns:
	//   - error: the first buffer creation failure
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error

	// InitVertexBuffer allocates a writable vertex buffer of size bytes on provider.
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error

	// InitBindGroup allocates one buffer per layout entry, sized from MinBindingSize, then
	// creates the bind group. Buffers and the layout already held by provider are reused.
	//
	// Parameters:
	//   - provider: receives the layout, buffers and bind group
	//   - descriptor: the layout every entry is created from
	//   - bufferUsageOverrides: extra usage flags keyed by binding
	//   - bufferSizeOverrides: buffer sizes keyed by binding, replacing MinBindingSize
	//
	// Returns:
	//   - error: an error if an entry is not a buffer binding or a GPU object failed
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error

	// WriteBuffers queues every write. Writes whose target buffer is missing are logged and dropped.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain image and opens the frame's only render pass, cleared
	// to the configured color.
	//
	// Returns:
	//   - *wgpu.RenderPassEncoder: the open pass
	//   - error: a surface sentinel from classifySurfaceError, or ErrFrameInProgress
	BeginFrame() (*wgpu.RenderPassEncoder, error)

	// EndFrame closes the pass and submits the recorded commands. The image stays held until Present.
	EndFrame() error

	// Present shows the held image and releases it. Without a held image it does nothing.
	Present()

	// Release frees the frame, the MSAA target and the device chain down to the instance.
	Release()
}

var _ RendererBackend = &wgpuRendererBackendImpl{}

type wgpuRendererBackendImpl struct {
	mu sync.Mutex

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	presentMode wgpu.PresentMode
	sampleCount MSAASampleCount
	clearColor  wgpu.Color

	// format is nil until the first ConfigureSurface.
	format *wgpu.TextureFormat
	msaa   msaaTarget
	frame  frameTarget
}

// msaaTarget is the multisampled color texture the pass renders into before resolving onto
// the swapchain image.
type msaaTarget struct {
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (m *msaaTarget) release() {
	if m.view != nil {
		m.view.Release()
	}
	if m.texture != nil {
		m.texture.Release()
	}
	*m = msaaTarget{}
}

// frameTarget holds what one frame acquires between BeginFrame and Present.
type frameTarget struct {
	encoder *wgpu.CommandEncoder
	pass    *wgpu.RenderPassEncoder
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (f *frameTarget) recording() bool {
	return f.pass != nil && f.encoder != nil
}

func (f *frameTarget) release() {
	if f.pass != nil {
		f.pass.Release()
	}
	if f.encoder != nil {
		f.encoder.Release()
	}
	if f.view != nil {
		f.view.Release()
	}
	if f.texture != nil {
		f.texture.Release()
	}
	*f = frameTarget{}
}

func newWGPURendererBackend(surfaceDescriptor *wgpu.SurfaceDescriptor, forceFallbackAdapter bool, sampleCount MSAASampleCount, clearColor wgpu.Color) (wgpuRendererBackend, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("renderer: nil surface descriptor")
	}
	// wgpu-native and the windowing system expect calls from the thread that made the surface
	runtime.LockOSThread()

	b := &wgpuRendererBackendImpl{
		instance:    wgpu.CreateInstance(nil),
		presentMode: wgpu.PresentModeFifo,
		sampleCount: sampleCount,
		clearColor:  clearColor,
	}
	b.surface = b.instance.CreateSurface(surfaceDescriptor)

	adapter, err := b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: forceFallbackAdapter,
		CompatibleSurface:    b.surface,
	})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	b.adapter = adapter
	common.Logger().Info("adapter acquired", "fallback", forceFallbackAdapter, "msaa", uint32(sampleCount))

	device, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "plat4rs device"})
	if err != nil {
		b.Release()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.device = device
	b.queue = device.GetQueue()
	return b, nil
}

func (b *wgpuRendererBackendImpl) ConfigureSurface(width, height int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	caps := b.surface.GetCapabilities(b.adapter)
	if len(caps.Formats) == 0 || len(caps.AlphaModes) == 0 {
		return errors.New("surface reports no supported formats")
	}
	format := caps.Formats[0]
	b.format = &format

	mode := b.presentMode
	if !slices.Contains(caps.PresentModes, mode) {
		common.Logger().Warn("present mode unsupported, using fifo", "mode", uint32(mode))
		mode = wgpu.PresentModeFifo
	}
	b.surface.Configure(b.adapter, b.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      format,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: mode,
		AlphaMode:   caps.AlphaModes[0],
	})

	b.msaa.release()
	if b.sampleCount <= MSAAOff {
		return nil
	}
	texture, err := b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "plat4rs msaa target",
		Size:          wgpu.Extent3D{Width: uint32(width), Height: uint32(height), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   uint32(b.sampleCount),
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         wgpu.TextureUsageRenderAttachment,
	})
	if err != nil {
		return fmt.Errorf("create MSAA texture: %w", err)
	}
	view, err := texture.CreateView(nil)
	if err != nil {
		texture.Release()
		return fmt.Errorf("create MSAA view: %w", err)
	}
	b.msaa = msaaTarget{texture: texture, view: view}
	return nil
}

func (b *wgpuRendererBackendImpl) SetPresentMode(mode PresentMode) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch mode {
	case PresentModeUncapped:
		b.presentMode = wgpu.PresentModeImmediate
	case PresentModeMailbox:
		b.presentMode = wgpu.PresentModeMailbox
	default:
		b.presentMode = wgpu.PresentModeFifo
	}
}

func (b *wgpuRendererBackendImpl) RegisterRenderPipeline(p pipeline.Pipeline) error {
	vsDesc := p.Shader(shader.ShaderTypeVertex)
	fsDesc := p.Shader(shader.ShaderTypeFragment)
	if vsDesc == nil || fsDesc == nil {
		return pipeline.ErrMissingShader
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.format == nil {
		return errors.New("surface must be configured before creating render pipelines")
	}

	vs, err := b.device.CreateShaderModule(vsDesc.Module())
	if err != nil {
		return fmt.Errorf("vertex module %q: %w", vsDesc.Key(), err)
	}
	defer vs.Release()
	fs, err := b.device.CreateShaderModule(fsDesc.Module())
	if err != nil {
		return fmt.Errorf("fragment module %q: %w", fsDesc.Key(), err)
	}
	defer fs.Release()

	groups, err := b.createGroupLayouts(mergeBindGroupLayouts(vsDesc.BindGroupLayoutDescriptors(), fsDesc.BindGroupLayoutDescriptors()))
	if err != nil {
		return err
	}
	// the render pipeline keeps its own references to the layouts
	defer releaseAll(groups)
	layout, err := b.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.PipelineKey(),
		BindGroupLayouts: groups,
	})
	if err != nil {
		return fmt.Errorf("pipeline %q layout: %w", p.PipelineKey(), err)
	}
	defer layout.Release()

	rp, err := b.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.PipelineKey(),
		Layout: layout,
		Vertex: wgpu.VertexState{
			Module:     vs,
			EntryPoint: vsDesc.EntryPoint(),
			Buffers:    vsDesc.VertexLayouts(),
		},
		Fragment: &wgpu.FragmentState{
			Module:     fs,
			EntryPoint: fsDesc.EntryPoint(),
			Targets:    []wgpu.ColorTargetState{p.ColorTarget(*b.format)},
		},
		Primitive: p.Primitive(),
		Multisample: wgpu.MultisampleState{
			Count: uint32(b.sampleCount),
			Mask:  ^uint32(0),
		},
	})
	if err != nil {
		return fmt.Errorf("pipeline %q: %w", p.PipelineKey(), err)
	}
	p.SetRenderPipeline(rp)
	return nil
}

// createGroupLayouts creates one layout per group index up to the highest declared group.
// Gaps get an empty layout since the pipeline layout is indexed by group.
func (b *wgpuRendererBackendImpl) createGroupLayouts(descs map[int]wgpu.BindGroupLayoutDescriptor) ([]*wgpu.BindGroupLayout, error) {
	if len(descs) == 0 {
		return nil, nil
	}
	layouts := make([]*wgpu.BindGroupLayout, slices.Max(slices.Collect(maps.Keys(descs)))+1)
	for g := range layouts {
		desc := descs[g]
		layout, err := b.device.CreateBindGroupLayout(&desc)
		if err != nil {
			releaseAll(layouts[:g])
			return nil, fmt.Errorf("bind group layout %d: %w", g, err)
		}
		layouts[g] = layout
	}
	return layouts, nil
}

// releaseAll frees every non-nil object in objs.
func releaseAll[T any, P interface {
	*T
	Release()
}](objs []P) {
	for _, o := range objs {
		if o != nil {
			o.Release()
		}
	}
}

// createBuffer must be called with the mutex held.
func (b *wgpuRendererBackendImpl) createBuffer(label string, size uint64, usage wgpu.BufferUsage, contents []byte) (*wgpu.Buffer, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{Label: label, Size: size, Usage: usage})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", label, err)
	}
	if len(contents) > 0 {
		b.queue.WriteBuffer(buf, 0, contents)
	}
	return buf, nil
}

func (b *wgpuRendererBackendImpl) InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(vertexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" vertices", uint64(len(vertexData)), wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, vertexData)
		if err != nil {
			return err
		}
		provider.SetVertexBuffer(buf)
	}
	if len(indexData) > 0 {
		buf, err := b.createBuffer(provider.Label()+" indices", uint64(len(indexData)), wgpu.BufferUsageIndex|wgpu.BufferUsageCopyDst, indexData)
		if err != nil {
			return err
		}
		provider.SetIndexBuffer(buf)
	}
	provider.SetIndexCount(indexCount)
	common.Logger().Debug("mesh buffers created", "label", provider.Label(), "vertex_bytes", len(vertexData), "indices", indexCount)
	return nil
}

func (b *wgpuRendererBackendImpl) InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	buf, err := b.createBuffer(provider.Label()+" vertices", size, wgpu.BufferUsageVertex|wgpu.BufferUsageCopyDst, nil)
	if err != nil {
		return err
	}
	provider.SetVertexBuffer(buf)
	common.Logger().Debug("vertex buffer created", "label", provider.Label(), "bytes", size)
	return nil
}

// bindingUsage returns the buffer usage a layout entry needs, or false for non-buffer bindings.
func bindingUsage(entry wgpu.BindGroupLayoutEntry) (wgpu.BufferUsage, bool) {
	switch entry.Buffer.Type {
	case wgpu.BufferBindingTypeUniform:
		return wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst, true
	case wgpu.BufferBindingTypeStorage, wgpu.BufferBindingTypeReadOnlyStorage:
		return wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst, true
	default:
		return 0, false
	}
}

func (b *wgpuRendererBackendImpl) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(descriptor.Entries) == 0 {
		return nil
	}

	if provider.BindGroupLayout() == nil {
		layout, err := b.device.CreateBindGroupLayout(&descriptor)
		if err != nil {
			return fmt.Errorf("%s layout: %w", provider.Label(), err)
		}
		provider.SetBindGroupLayout(layout)
	}

	entries := make([]wgpu.BindGroupEntry, 0, len(descriptor.Entries))
	for _, e := range descriptor.Entries {
		binding := int(e.Binding)
		usage, ok := bindingUsage(e)
		if !ok {
			return fmt.Errorf("binding %d is not a buffer binding", binding)
		}

		buf := provider.Buffer(binding)
		if buf == nil {
			size := e.Buffer.MinBindingSize
			if s, ok := bufferSizeOverrides[binding]; ok {
				size = s
			}
			var err error
			buf, err = b.createBuffer(fmt.Sprintf("%s binding %d", provider.Label(), binding), size, usage|bufferUsageOverrides[binding], nil)
			if err != nil {
				return err
			}
			provider.SetBuffer(binding, buf)
		}
		entries = append(entries, wgpu.BindGroupEntry{Binding: e.Binding, Buffer: buf, Size: wgpu.WholeSize})
	}

	bg, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   provider.Label(),
		Layout:  provider.BindGroupLayout(),
		Entries: entries,
	})
	if err != nil {
		return fmt.Errorf("%s bind group: %w", provider.Label(), err)
	}
	provider.SetBindGroup(bg)
	common.Logger().Debug("bind group created", "label", provider.Label(), "entries", len(entries))
	return nil
}

func (b *wgpuRendererBackendImpl) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, w := range writes {
		if buf := w.Provider.Buffer(w.Binding); buf != nil {
			b.queue.WriteBuffer(buf, w.Offset, w.Data)
			continue
		}
		common.Logger().Warn("buffer write dropped, no buffer", "label", w.Provider.Label(), "binding", w.Binding)
	}
}

func (b *wgpuRendererBackendImpl) BeginFrame() (*wgpu.RenderPassEncoder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	// a held swapchain image must be presented before another is acquired
	if b.frame.texture != nil {
		return nil, ErrFrameInProgress
	}
	if b.format == nil {
		return nil, ErrSurfaceLost
	}

	texture, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, classifySurfaceError(err)
	}
	b.frame.texture = texture
	if b.frame.view, err = texture.CreateView(nil); err != nil {
		b.frame.release()
		return nil, err
	}
	if b.frame.encoder, err = b.device.CreateCommandEncoder(nil); err != nil {
		b.frame.release()
		return nil, classifySurfaceError(err)
	}

	// with MSAA the pass renders into the multisampled texture and resolves onto the image,
	// which makes storing the samples unnecessary
	attachment := wgpu.RenderPassColorAttachment{
		View:       b.frame.view,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: b.clearColor,
	}
	if b.msaa.view != nil {
		attachment.View = b.msaa.view
		attachment.ResolveTarget = b.frame.view
		attachment.StoreOp = wgpu.StoreOpDiscard
	}
	b.frame.pass = b.frame.encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{attachment},
	})
	return b.frame.pass, nil
}

func (b *wgpuRendererBackendImpl) EndFrame() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.frame.recording() {
		return ErrNoFrame
	}

	b.frame.pass.End()
	b.frame.pass.Release()
	b.frame.pass = nil

	commands, err := b.frame.encoder.Finish(nil)
	b.frame.encoder.Release()
	b.frame.encoder = nil
	if err != nil {
		b.frame.release()
		return classifySurfaceError(err)
	}
	b.queue.Submit(commands)
	commands.Release()
	return nil
}

func (b *wgpuRendererBackendImpl) Present() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.frame.texture == nil {
		return
	}
	b.surface.Present()
	b.frame.release()
}

func (b *wgpuRendererBackendImpl) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.frame.release()
	b.msaa.release()
	if b.queue != nil {
		b.queue.Release()
		b.queue = nil
	}
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
}

// mergeBindGroupLayouts combines the bind group declarations of each shader stage into the
// layouts a pipeline is built from. A binding declared by several stages keeps the first
// declaration with the stage visibilities ORed together. Entries come out sorted by binding
// and each group keeps the label of its first declaring stage.
//
// Parameters:
//   - stages: per-stage descriptors keyed by group index
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: merged descriptors keyed by group index
func mergeBindGroupLayouts(stages ...map[int]wgpu.BindGroupLayoutDescriptor) map[int]wgpu.BindGroupLayoutDescriptor {
	merged := make(map[int]wgpu.BindGroupLayoutDescriptor)
	for _, stage := range stages {
		for g, desc := range stage {
			out, seen := merged[g]
			if !seen {
				out.Label = desc.Label
			}
			for _, e := range desc.Entries {
				i := slices.IndexFunc(out.Entries, func(x wgpu.BindGroupLayoutEntry) bool { return x.Binding == e.Binding })
				if i < 0 {
					out.Entries = append(out.Entries, e)
					continue
				}
				out.Entries[i].Visibility |= e.Visibility
			}
			merged[g] = out
		}
	}
	for g, desc := range merged {
		slices.SortFunc(desc.Entries, func(a, b wgpu.BindGroupLayoutEntry) int { return int(a.Binding) - int(b.Binding) })
		merged[g] = desc
	}
	return merged
}

// PipelineBindGroupLayout returns the merged layout p expects at a group index. Bind groups
// bound while p is selected must be created from it.
//
// Parameters:
//   - p: the pipeline to inspect
//   - group: the bind group index
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the merged layout
//   - bool: false if neither stage declares the group
func PipelineBindGroupLayout(p pipeline.Pipeline, group int) (wgpu.BindGroupLayoutDescriptor, bool) {
	var stages []map[int]wgpu.BindGroupLayoutDescriptor
	for _, t := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment} {
		if s := p.Shader(t); s != nil {
			stages = append(stages, s.BindGroupLayoutDescriptors())
		}
	}
	desc, ok := mergeBindGroupLayouts(stages...)[group]
	return desc, ok
}
