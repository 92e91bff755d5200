package model

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
)

type call struct {
	op        string
	slot      uint32
	provider  string
	count     uint32
	instances InstanceRange
}

type recordingPass struct {
	calls []call
}

func (p *recordingPass) SetVertexBuffer(slot uint32, provider bind_group_provider.BindGroupProvider) {
	p.calls = append(p.calls, call{op: "vertex", slot: slot, provider: provider.Label()})
}

func (p *recordingPass) SetIndexBuffer(provider bind_group_provider.BindGroupProvider) {
	p.calls = append(p.calls, call{op: "index", provider: provider.Label()})
}

func (p *recordingPass) SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider) {
	p.calls = append(p.calls, call{op: "bind", slot: group, provider: provider.Label()})
}

func (p *recordingPass) DrawIndexed(indexCount uint32, instances InstanceRange) {
	p.calls = append(p.calls, call{op: "draw", count: indexCount, instances: instances})
}

func (p *recordingPass) draws() []call {
	var out []call
	for _, c := range p.calls {
		if c.op == "draw" {
			out = append(out, c)
		}
	}
	return out
}

func quad(name string) Mesh {
	return NewMesh(name, []GPUVertex{
		{Position: [3]float32{0, 0, 0}},
		{Position: [3]float32{1, 0, 0}},
		{Position: [3]float32{1, 1, 0}},
		{Position: [3]float32{0, 1, 0}},
	}, []uint32{0, 1, 2, 0, 2, 3})
}

func TestGPUVertexLayout(t *testing.T) {
	v := GPUVertex{Position: [3]float32{1, 2, 3}, Color: [3]float32{0.25, 0.5, 1}}
	if v.Size() != 24 {
		t.Fatalf("Size = %d, want 24", v.Size())
	}
	buf := v.Marshal()
	if len(buf) != 24 {
		t.Fatalf("len(Marshal) = %d, want 24", len(buf))
	}
	want := []float32{1, 2, 3, 0.25, 0.5, 1}
	for i, w := range want {
		got := math.Float32frombits(binary.LittleEndian.Uint32(buf[i*4:]))
		if got != w {
			t.Errorf("float %d = %v, want %v", i, got, w)
		}
	}
}

func TestMeshSerializesVerticesAndIndices(t *testing.T) {
	m := Triangle()
	if m.IndexCount() != 3 || len(m.Indices()) != 3 {
		t.Fatalf("IndexCount = %d, len(Indices) = %d, want 3", m.IndexCount(), len(m.Indices()))
	}
	if len(m.VertexData()) != 3*24 {
		t.Fatalf("len(VertexData) = %d, want %d", len(m.VertexData()), 3*24)
	}
	if !bytes.Equal(m.VertexData()[24:48], m.Vertices()[1].Marshal()) {
		t.Fatalf("VertexData second vertex does not match Marshal")
	}
	idx := m.IndexData()
	if len(idx) != 12 {
		t.Fatalf("len(IndexData) = %d, want 12", len(idx))
	}
	for i, want := range m.Indices() {
		if got := binary.LittleEndian.Uint32(idx[i*4:]); got != want {
			t.Errorf("index %d = %d, want %d", i, got, want)
		}
	}
	if m.MeshProvider().IndexCount() != 3 {
		t.Fatalf("provider IndexCount = %d, want 3", m.MeshProvider().IndexCount())
	}
}

func TestMeshCopiesInput(t *testing.T) {
	verts := []GPUVertex{{}, {}, {}}
	indices := []uint32{0, 1, 2}
	m := NewMesh("copy", verts, indices)
	verts[0].Position[0] = 9
	indices[0] = 2
	if m.Vertices()[0].Position[0] != 0 || m.Indices()[0] != 0 {
		t.Fatalf("mesh aliases caller slices")
	}
}

func TestNewMeshPanics(t *testing.T) {
	cases := []struct {
		name     string
		vertices []GPUVertex
		indices  []uint32
	}{
		{"no vertices", nil, []uint32{0}},
		{"no indices", []GPUVertex{{}}, nil},
		{"index out of range", []GPUVertex{{}, {}}, []uint32{0, 1, 2}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatalf("NewMesh did not panic")
				}
			}()
			NewMesh(tc.name, tc.vertices, tc.indices)
		})
	}
}

func TestNewModelPanicsWithoutMeshes(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewModel did not panic")
		}
	}()
	NewModel("empty")
}

func TestDrawMeshInstancedBindsThenDraws(t *testing.T) {
	camera := bind_group_provider.NewBindGroupProvider("camera")
	pass := &recordingPass{}
	DrawMeshInstanced(pass, Triangle(), InstanceRange{Start: 0, End: 1}, camera)

	want := []call{
		{op: "vertex", slot: MeshVertexSlot, provider: "triangle"},
		{op: "index", provider: "triangle"},
		{op: "bind", slot: CameraBindGroup, provider: "camera"},
		{op: "draw", count: 3, instances: InstanceRange{Start: 0, End: 1}},
	}
	if len(pass.calls) != len(want) {
		t.Fatalf("recorded %d calls, want %d: %+v", len(pass.calls), len(want), pass.calls)
	}
	for i := range want {
		if pass.calls[i] != want[i] {
			t.Errorf("call %d = %+v, want %+v", i, pass.calls[i], want[i])
		}
	}
}

func TestDrawModelInstancedDrawsEachMeshInOrder(t *testing.T) {
	camera := bind_group_provider.NewBindGroupProvider("camera")
	mdl := NewModel("pair", Triangle(), quad("quad"))
	pass := &recordingPass{}
	r := InstanceRange{Start: 2, End: 5}
	DrawModelInstanced(pass, mdl, r, camera)

	draws := pass.draws()
	if len(draws) != 2 {
		t.Fatalf("issued %d draws, want 2", len(draws))
	}
	if draws[0].count != 3 || draws[1].count != 6 {
		t.Fatalf("index counts = %d, %d, want 3, 6", draws[0].count, draws[1].count)
	}
	for _, d := range draws {
		if d.instances != r {
			t.Errorf("instances = %+v, want %+v", d.instances, r)
		}
	}
	if pass.calls[0].provider != "triangle" || pass.calls[4].provider != "quad" {
		t.Fatalf("meshes bound out of order: %+v", pass.calls)
	}
}

func TestDrawModelSingleMeshSingleDraw(t *testing.T) {
	pass := &recordingPass{}
	DrawModel(pass, NewModel("tri", Triangle()), bind_group_provider.NewBindGroupProvider("camera"))
	draws := pass.draws()
	if len(draws) != 1 || draws[0].count != 3 || draws[0].instances != SingleInstance {
		t.Fatalf("draws = %+v, want one draw of 3 indices for one instance", draws)
	}
}

func TestInstanceRangeCount(t *testing.T) {
	if (InstanceRange{Start: 1, End: 4}).Count() != 3 {
		t.Fatalf("Count of [1,4) != 3")
	}
	if (InstanceRange{Start: 4, End: 1}).Count() != 0 {
		t.Fatalf("Count of inverted range != 0")
	}
}
