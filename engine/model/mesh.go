package model

import (
	"fmt"
	"slices"

	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
)

// mesh is the implementation of the Mesh interface.
type mesh struct {
	name     string
	vertices []GPUVertex
	indices  []uint32
	provider bind_group_provider.BindGroupProvider
}

// Mesh is immutable indexed triangle geometry. Its vertex and index buffers live on
// MeshProvider and are created once by the Renderer.
type Mesh interface {
	// Name returns the mesh identifier.
	//
	// Returns:
	//   - string: the mesh name
	Name() string

	// Vertices returns a copy of the vertex list.
	//
	// Returns:
	//   - []GPUVertex: the vertices
	Vertices() []GPUVertex

	// Indices returns a copy of the index list.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// IndexCount returns the number of indices, always equal to len(Indices()).
	//
	// Returns:
	//   - uint32: the index count
	IndexCount() uint32

	// VertexData returns the vertex list serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the vertex bytes
	VertexData() []byte

	// IndexData returns the index list serialized for GPU upload.
	//
	// Returns:
	//   - []byte: the index bytes
	IndexData() []byte

	// MeshProvider returns the provider that owns this mesh's GPU buffers.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the mesh provider
	MeshProvider() bind_group_provider.BindGroupProvider
}

var _ Mesh = &mesh{}

// NewMesh creates a Mesh from a vertex list and an index list. Both lists are copied.
// It panics if either list is empty or if an index points past the vertex list.
//
// Parameters:
//   - name: the mesh identifier, also used as the GPU buffer label
//   - vertices: the vertex list
//   - indices: the triangle-list indices
//
// Returns:
//   - Mesh: the new mesh
func NewMesh(name string, vertices []GPUVertex, indices []uint32) Mesh {
	if len(vertices) == 0 || len(indices) == 0 {
		panic(fmt.Sprintf("model: NewMesh %q requires vertices and indices", name))
	}
	for _, idx := range indices {
		if int(idx) >= len(vertices) {
			panic(fmt.Sprintf("model: NewMesh %q index %d out of range for %d vertices", name, idx, len(vertices)))
		}
	}
	return &mesh{
		name:     name,
		vertices: slices.Clone(vertices),
		indices:  slices.Clone(indices),
		provider: bind_group_provider.NewBindGroupProvider(name, bind_group_provider.WithIndexCount(len(indices))),
	}
}

func (m *mesh) Name() string {
	return m.name
}

func (m *mesh) Vertices() []GPUVertex {
	return slices.Clone(m.vertices)
}

func (m *mesh) Indices() []uint32 {
	return slices.Clone(m.indices)
}

func (m *mesh) IndexCount() uint32 {
	return uint32(len(m.indices))
}

func (m *mesh) VertexData() []byte {
	return MarshalVertices(m.vertices)
}

func (m *mesh) IndexData() []byte {
	return MarshalIndices(m.indices)
}

func (m *mesh) MeshProvider() bind_group_provider.BindGroupProvider {
	return m.provider
}

// Triangle returns the default scene geometry: a unit right triangle with red, green and
// blue corners. The index order faces the viewer in the y-down screen space.
//
// Returns:
//   - Mesh: the triangle mesh
func Triangle() Mesh {
	return NewMesh("triangle", []GPUVertex{
		{Position: [3]float32{0, 0, 0}, Color: [3]float32{1, 0, 0}},
		{Position: [3]float32{1, 0, 0}, Color: [3]float32{0, 1, 0}},
		{Position: [3]float32{1, 1, 0}, Color: [3]float32{0, 0, 1}},
	}, []uint32{0, 2, 1})
}
