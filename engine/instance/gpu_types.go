package instance

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/plat4rs-go/common"
)

// GPUInstanceRawSource is the canonical WGSL definition of the InstanceInput struct.
// The model matrix travels as four vec4 columns at locations 2 through 5 because WGSL
// vertex inputs cannot be matrices.
//
//go:embed assets/instance_raw.wgsl
var GPUInstanceRawSource string

// GPUInstanceRaw is the GPU-aligned per-instance vertex data.
// Matches the WGSL InstanceInput struct layout exactly (see GPUInstanceRawSource).
// Size: 64 bytes.
type GPUInstanceRaw struct {
	Model [16]float32 // offset 0: world transform, column-major, one vec4 per column
}

// Size returns the size of the GPUInstanceRaw struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (64)
func (g *GPUInstanceRaw) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUInstanceRaw struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUInstanceRaw) Marshal() []byte {
	buf := make([]byte, g.Size())
	common.PutMat4(buf, g.Model)
	return buf
}
