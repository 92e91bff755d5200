package bind_group_provider

import "testing"

func TestNewBindGroupProviderKeepsLabel(t *testing.T) {
	p := NewBindGroupProvider("camera", WithIndexCount(3))
	if p.Label() != "camera" {
		t.Fatalf("Label = %q, want camera", p.Label())
	}
	if p.IndexCount() != 3 {
		t.Fatalf("IndexCount = %d, want 3", p.IndexCount())
	}
	if p.BindGroup() != nil || p.VertexBuffer() != nil || p.IndexBuffer() != nil {
		t.Fatalf("fresh provider should hold no GPU resources")
	}
	if len(p.Buffers()) != 0 {
		t.Fatalf("fresh provider has %d buffers", len(p.Buffers()))
	}
}

func TestVertexBufferBindingResolvesToVertexBuffer(t *testing.T) {
	p := NewBindGroupProvider("instance")
	p.SetBuffer(VertexBufferBinding, nil)
	if _, ok := p.Buffers()[VertexBufferBinding]; ok {
		t.Fatalf("vertex buffer binding leaked into the bind group buffer map")
	}
	if p.Buffer(VertexBufferBinding) != p.VertexBuffer() {
		t.Fatalf("Buffer(VertexBufferBinding) does not return the vertex buffer")
	}
}

func TestReleaseOnEmptyProvider(t *testing.T) {
	p := NewBindGroupProvider("empty")
	p.SetBuffer(0, nil)
	p.Release()
	if len(p.Buffers()) != 0 {
		t.Fatalf("Release left %d buffer entries", len(p.Buffers()))
	}
}
