package common

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// OrthoZO builds a right-handed orthographic projection that maps depth into the
// WebGPU clip range [0, 1]. mgl32.Ortho targets the GL range [-1, 1] instead.
// Passing top < bottom flips the vertical axis, which gives a y-down screen space.
//
// Parameters:
//   - left, right: horizontal bounds of the view volume
//   - bottom, top: vertical bounds of the view volume
//   - near, far: depth bounds of the view volume
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func OrthoZO(left, right, bottom, top, near, far float32) mgl32.Mat4 {
	rw := 1 / (right - left)
	rh := 1 / (top - bottom)
	r := 1 / (near - far)
	return mgl32.Mat4{
		2 * rw, 0, 0, 0,
		0, 2 * rh, 0, 0,
		0, 0, r, 0,
		-(left + right) * rw, -(top + bottom) * rh, r * near, 1,
	}
}

// ScaleAbout builds a uniform XY scale of factor s centred on the point (cx, cy).
//
// Parameters:
//   - cx, cy: the fixed point of the scale
//   - s: the scale factor
//
// Returns:
//   - mgl32.Mat4: the column-major transform
func ScaleAbout(cx, cy, s float32) mgl32.Mat4 {
	return mgl32.Translate3D(cx, cy, 0).
		Mul4(mgl32.Scale3D(s, s, 1)).
		Mul4(mgl32.Translate3D(-cx, -cy, 0))
}

// PutMat4 writes a column-major 4x4 matrix into buf as 16 little-endian float32 values.
//
// Parameters:
//   - buf: destination buffer (must be at least 64 bytes)
//   - m: the matrix to write
func PutMat4(buf []byte, m [16]float32) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
}

// TransformPoint applies m to the point (x, y, z, 1) and returns the resulting XY coordinates
// after the perspective divide.
//
// Parameters:
//   - m: the transform to apply
//   - x, y, z: the point to transform
//
// Returns:
//   - mgl32.Vec2: the transformed XY coordinates
func TransformPoint(m mgl32.Mat4, x, y, z float32) mgl32.Vec2 {
	v := m.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if v.W() != 0 && v.W() != 1 {
		return mgl32.Vec2{v.X() / v.W(), v.Y() / v.W()}
	}
	return mgl32.Vec2{v.X(), v.Y()}
}
