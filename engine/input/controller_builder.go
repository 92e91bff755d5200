package input

import "maps"

type ControllerBuilderOption func(*controller)

// WithSpeed sets the movement speed in world units per second.
//
// Parameters:
//   - speed: the speed
//
// Returns:
//   - ControllerBuilderOption: a function that sets the controller's speed
func WithSpeed(speed float32) ControllerBuilderOption {
	return func(c *controller) {
		c.speed = speed
	}
}

// WithTarget selects whether the controller drives the instance or the camera.
//
// Parameters:
//   - target: the controller target
//
// Returns:
//   - ControllerBuilderOption: a function that sets the controller's target
func WithTarget(target Target) ControllerBuilderOption {
	return func(c *controller) {
		c.target = target
	}
}

// WithBindings replaces the key bindings.
//
// Parameters:
//   - bindings: key code to direction mapping
//
// Returns:
//   - ControllerBuilderOption: a function that sets the controller's key bindings
func WithBindings(bindings map[uint32]Direction) ControllerBuilderOption {
	return func(c *controller) {
		c.bindings = maps.Clone(bindings)
	}
}
