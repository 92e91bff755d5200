package instance

import (
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

type instance struct {
	mu *sync.Mutex

	position mgl32.Vec2
	rotation float32
	scale    float32
}

// Instance defines the interface for the single tracked game object in the scene.
// It holds a 2D position, a rotation about the view axis, and a uniform scale, and
// produces the world transform applied to a unit-sized mesh.
type Instance interface {
	// Position returns the world-space position.
	//
	// Returns:
	//   - mgl32.Vec2: the position
	Position() mgl32.Vec2

	// Rotation returns the rotation about the view axis in radians.
	//
	// Returns:
	//   - float32: the rotation in radians
	Rotation() float32

	// Scale returns the uniform scale factor.
	//
	// Returns:
	//   - float32: the scale
	Scale() float32

	// SetPosition sets the world-space position.
	//
	// Parameters:
	//   - position: the new position
	SetPosition(position mgl32.Vec2)

	// SetRotation sets the rotation about the view axis.
	//
	// Parameters:
	//   - radians: the new rotation in radians
	SetRotation(radians float32)

	// SetScale sets the uniform scale factor.
	//
	// Parameters:
	//   - scale: the new scale
	SetScale(scale float32)

	// Update moves the position by direction * speed * dt. The direction is expected to be
	// a unit vector or zero.
	//
	// Parameters:
	//   - direction: the movement direction
	//   - dt: elapsed time in seconds
	//   - speed: movement speed in world units per second
	Update(direction mgl32.Vec2, dt, speed float32)

	// Matrix composes Translate(position) x RotateZ(rotation) x Scale(scale).
	// Scale is applied first and translation last.
	//
	// Returns:
	//   - mgl32.Mat4: the column-major world transform
	Matrix() mgl32.Mat4

	// ToRaw snapshots Matrix() into its GPU-transferable form.
	//
	// Returns:
	//   - GPUInstanceRaw: the per-instance vertex data
	ToRaw() GPUInstanceRaw
}

var _ Instance = &instance{}

// NewInstance creates a new Instance at the origin with no rotation and a scale of 1.
//
// Parameters:
//   - options: functional options to configure the instance
//
// Returns:
//   - Instance: the newly created instance
func NewInstance(options ...InstanceBuilderOption) Instance {
	i := &instance{
		mu:    &sync.Mutex{},
		scale: 1,
	}
	for _, option := range options {
		option(i)
	}
	return i
}

func (i *instance) Position() mgl32.Vec2 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.position
}

func (i *instance) Rotation() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.rotation
}

func (i *instance) Scale() float32 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.scale
}

func (i *instance) SetPosition(position mgl32.Vec2) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.position = position
}

func (i *instance) SetRotation(radians float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.rotation = radians
}

func (i *instance) SetScale(scale float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.scale = scale
}

func (i *instance) Update(direction mgl32.Vec2, dt, speed float32) {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.position = i.position.Add(direction.Mul(speed * dt))
}

func (i *instance) Matrix() mgl32.Mat4 {
	i.mu.Lock()
	defer i.mu.Unlock()
	return mgl32.Translate3D(i.position.X(), i.position.Y(), 0).
		Mul4(mgl32.HomogRotate3DZ(i.rotation)).
		Mul4(mgl32.Scale3D(i.scale, i.scale, 1))
}

func (i *instance) ToRaw() GPUInstanceRaw {
	return GPUInstanceRaw{Model: i.Matrix()}
}
