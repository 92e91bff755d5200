package instance

import "github.com/go-gl/mathgl/mgl32"

type InstanceBuilderOption func(*instance)

// WithPosition sets the instance's initial world-space position.
//
// Parameters:
//   - x, y: position components
//
// Returns:
//   - InstanceBuilderOption: a function that sets the instance's position
func WithPosition(x, y float32) InstanceBuilderOption {
	return func(i *instance) {
		i.position = mgl32.Vec2{x, y}
	}
}

// WithRotation sets the instance's initial rotation about the view axis.
//
// Parameters:
//   - radians: rotation in radians
//
// Returns:
//   - InstanceBuilderOption: a function that sets the instance's rotation
func WithRotation(radians float32) InstanceBuilderOption {
	return func(i *instance) {
		i.rotation = radians
	}
}

// WithScale sets the instance's initial uniform scale.
//
// Parameters:
//   - scale: the scale factor
//
// Returns:
//   - InstanceBuilderOption: a function that sets the instance's scale
func WithScale(scale float32) InstanceBuilderOption {
	return func(i *instance) {
		i.scale = scale
	}
}
