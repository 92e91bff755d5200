package camera

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/plat4rs-go/common"
)

// GPUCameraUniformSource is the canonical WGSL definition of the CameraUniform struct.
// Matches GPUCameraUniform layout exactly (64 bytes).
//
//go:embed assets/camera_uniform.wgsl
var GPUCameraUniformSource string

// GPUCameraUniform is the GPU-aligned representation of the camera uniform buffer.
// Matches the WGSL CameraUniform struct layout exactly (see GPUCameraUniformSource).
// Size: 64 bytes.
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset 0: combined view-projection matrix (mat4x4<f32>), column-major
}

// NewGPUCameraUniform returns a uniform holding the identity matrix.
//
// Returns:
//   - *GPUCameraUniform: the identity uniform
func NewGPUCameraUniform() *GPUCameraUniform {
	return &GPUCameraUniform{ViewProj: [16]float32{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}}
}

// Refresh recomputes ViewProj from the camera for the given viewport, overwriting the
// previous matrix. A zero viewport dimension leaves the matrix untouched.
// The caller uploads Marshal() to the GPU afterwards.
//
// Parameters:
//   - c: the camera to project
//   - width, height: viewport dimensions in pixels
func (g *GPUCameraUniform) Refresh(c Camera, width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	g.ViewProj = c.Project(width, height)
}

// Size returns the size of the GPUCameraUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUCameraUniform struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf, g.ViewProj)
	return buf
}
