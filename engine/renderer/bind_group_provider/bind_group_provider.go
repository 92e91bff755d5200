package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// GPUResources is the read side of a provider, used by render passes to bind and draw.
// Every getter returns nil (or zero) until the Renderer has initialized the provider.
type GPUResources interface {
	// Label returns the debug label shared by the provider's GPU objects.
	Label() string

	// BindGroup returns the bind group to set on a render pass.
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created from.
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer at a bind group binding index. VertexBufferBinding
	// addresses the vertex buffer instead.
	//
	// Parameters:
	//   - binding: the binding index, or VertexBufferBinding
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer, or nil when nothing is bound there
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns the bind group buffers keyed by binding index. The vertex and index
	// buffers are not included.
	Buffers() map[int]*wgpu.Buffer

	// VertexBuffer returns the per-vertex buffer of a mesh or the per-instance buffer of an instance.
	VertexBuffer() *wgpu.Buffer

	// IndexBuffer returns the uint32 index buffer of a mesh.
	IndexBuffer() *wgpu.Buffer

	// IndexCount returns how many indices a draw call consumes.
	IndexCount() int
}

// BindGroupProvider owns the GPU objects behind one scene component: the uniform buffer and
// bind group of the camera, the vertex and index buffers of a mesh, or the vertex buffer of the
// instance transform. The Renderer allocates them through the setters, buffer writes and render
// passes read them back, and Release frees whatever was allocated.
type BindGroupProvider interface {
	GPUResources

	// SetBindGroup stores the bind group created for this provider.
	SetBindGroup(bg *wgpu.BindGroup)

	// SetBindGroupLayout stores the layout the bind group was created from.
	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer stores a bind group buffer, or the vertex buffer for VertexBufferBinding.
	//
	// Parameters:
	//   - binding: the binding index, or VertexBufferBinding
	//   - buf: the allocated buffer
	SetBuffer(binding int, buf *wgpu.Buffer)

	SetVertexBuffer(buf *wgpu.Buffer)
	SetIndexBuffer(buf *wgpu.Buffer)
	SetIndexCount(count int)

	// Release frees every GPU object the provider holds. The provider can be initialized again
	// afterwards.
	Release()
}

var _ BindGroupProvider = &bindGroupProvider{}

type bindGroupProvider struct {
	label string

	bindGroup       *wgpu.BindGroup
	bindGroupLayout *wgpu.BindGroupLayout
	// buffers backs the bind group entries, keyed by binding index.
	buffers map[int]*wgpu.Buffer

	vertexBuffer *wgpu.Buffer
	indexBuffer  *wgpu.Buffer
	indexCount   int
}

// NewBindGroupProvider creates a provider with no GPU objects allocated yet.
//
// Parameters:
//   - label: debug label for the provider and its GPU objects
//   - options: functional options applied in order
//
// Returns:
//   - BindGroupProvider: the uninitialized provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:   label,
		buffers: make(map[int]*wgpu.Buffer),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string                          { return p.label }
func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup             { return p.bindGroup }
func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout { return p.bindGroupLayout }
func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer          { return p.buffers }
func (p *bindGroupProvider) VertexBuffer() *wgpu.Buffer             { return p.vertexBuffer }
func (p *bindGroupProvider) IndexBuffer() *wgpu.Buffer              { return p.indexBuffer }
func (p *bindGroupProvider) IndexCount() int                        { return p.indexCount }

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	if binding == VertexBufferBinding {
		return p.vertexBuffer
	}
	return p.buffers[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup)              { p.bindGroup = bg }
func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) { p.bindGroupLayout = bgl }
func (p *bindGroupProvider) SetVertexBuffer(buf *wgpu.Buffer)             { p.vertexBuffer = buf }
func (p *bindGroupProvider) SetIndexBuffer(buf *wgpu.Buffer)              { p.indexBuffer = buf }
func (p *bindGroupProvider) SetIndexCount(count int)                      { p.indexCount = count }

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	if binding == VertexBufferBinding {
		p.vertexBuffer = buf
		return
	}
	if p.buffers == nil {
		p.buffers = make(map[int]*wgpu.Buffer)
	}
	p.buffers[binding] = buf
}

func (p *bindGroupProvider) Release() {
	// the bind group references the layout and buffers, so it goes first
	release(&p.bindGroup)
	for binding, buf := range p.buffers {
		release(&buf)
		delete(p.buffers, binding)
	}
	release(&p.bindGroupLayout)
	release(&p.vertexBuffer)
	release(&p.indexBuffer)
}

// release frees a GPU object and clears the reference to it. A nil reference is left alone.
func release[T any, P interface {
	*T
	Release()
}](ref *P) {
	if *ref == nil {
		return
	}
	(*ref).Release()
	*ref = nil
}
