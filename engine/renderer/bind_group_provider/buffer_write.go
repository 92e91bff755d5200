package bind_group_provider

// VertexBufferBinding is the Binding value that addresses a provider's vertex buffer
// instead of one of its bind group buffers. Instance transforms are written through it.
const VertexBufferBinding = -1

// BufferWrite describes a single GPU buffer write operation targeting a specific binding
// on a BindGroupProvider at a given byte offset.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
