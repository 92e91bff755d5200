package model

import "github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"

// MeshVertexSlot is the vertex buffer slot mesh vertices are bound to.
const MeshVertexSlot uint32 = 0

// CameraBindGroup is the bind group index the camera uniform is bound to.
const CameraBindGroup uint32 = 0

// InstanceRange is the half-open range [Start, End) of instances drawn by one call.
type InstanceRange struct {
	Start uint32
	End   uint32
}

// Count returns the number of instances in the range.
func (r InstanceRange) Count() uint32 {
	if r.End <= r.Start {
		return 0
	}
	return r.End - r.Start
}

// SingleInstance draws only the first instance.
var SingleInstance = InstanceRange{Start: 0, End: 1}

// RenderPass is the subset of a render pass recorder the draw functions need.
type RenderPass interface {
	// SetVertexBuffer binds provider.VertexBuffer() to a vertex buffer slot.
	SetVertexBuffer(slot uint32, provider bind_group_provider.BindGroupProvider)

	// SetIndexBuffer binds provider.IndexBuffer() as a Uint32 index buffer.
	SetIndexBuffer(provider bind_group_provider.BindGroupProvider)

	// SetBindGroup binds provider.BindGroup() at a bind group index.
	SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider)

	// DrawIndexed draws indices [0, indexCount) for every instance in the range.
	DrawIndexed(indexCount uint32, instances InstanceRange)
}

// DrawMeshInstanced binds the mesh's vertex buffer at slot 0, its Uint32 index buffer and the
// camera bind group at group 0, then draws every index of the mesh for the instance range.
//
// Parameters:
//   - pass: the render pass to record into
//   - m: the mesh to draw
//   - instances: the instances to draw
//   - camera: the provider holding the camera bind group
func DrawMeshInstanced(pass RenderPass, m Mesh, instances InstanceRange, camera bind_group_provider.BindGroupProvider) {
	provider := m.MeshProvider()
	pass.SetVertexBuffer(MeshVertexSlot, provider)
	pass.SetIndexBuffer(provider)
	pass.SetBindGroup(CameraBindGroup, camera)
	pass.DrawIndexed(m.IndexCount(), instances)
}

// DrawMesh draws a single instance of the mesh.
//
// Parameters:
//   - pass: the render pass to record into
//   - m: the mesh to draw
//   - camera: the provider holding the camera bind group
func DrawMesh(pass RenderPass, m Mesh, camera bind_group_provider.BindGroupProvider) {
	DrawMeshInstanced(pass, m, SingleInstance, camera)
}

// DrawModelInstanced issues one DrawMeshInstanced per mesh, in the model's mesh order,
// sharing the instance range and camera binding.
//
// Parameters:
//   - pass: the render pass to record into
//   - mdl: the model to draw
//   - instances: the instances to draw
//   - camera: the provider holding the camera bind group
func DrawModelInstanced(pass RenderPass, mdl Model, instances InstanceRange, camera bind_group_provider.BindGroupProvider) {
	for _, m := range mdl.Meshes() {
		DrawMeshInstanced(pass, m, instances, camera)
	}
}

// DrawModel draws a single instance of every mesh in the model.
//
// Parameters:
//   - pass: the render pass to record into
//   - mdl: the model to draw
//   - camera: the provider holding the camera bind group
func DrawModel(pass RenderPass, mdl Model, camera bind_group_provider.BindGroupProvider) {
	DrawModelInstanced(pass, mdl, SingleInstance, camera)
}
