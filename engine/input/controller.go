package input

import (
	"maps"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSpeed is the controller speed in world units per second.
const DefaultSpeed float32 = 100

// Mover is anything a Controller can drive. Both instance.Instance and camera.Camera satisfy it.
type Mover interface {
	Update(direction mgl32.Vec2, dt, speed float32)
}

type controller struct {
	mu *sync.Mutex

	speed     float32
	target    Target
	bindings  map[uint32]Direction
	direction Direction
}

// Controller translates the set of held keys into a per-tick displacement of its target.
type Controller interface {
	// Speed returns the fixed movement speed.
	//
	// Returns:
	//   - float32: the speed in world units per second
	Speed() float32

	// Target returns what the controller drives.
	//
	// Returns:
	//   - Target: TargetInstance or TargetCamera
	Target() Target

	// Direction returns the direction chosen by the last SetDirection call.
	//
	// Returns:
	//   - Direction: the current logical direction
	Direction() Direction

	// Vector returns the unit (or zero) movement vector for the current direction and target.
	//
	// Returns:
	//   - mgl32.Vec2: the movement vector
	Vector() mgl32.Vec2

	// SetDirection chooses the movement direction from the held keys. Keys are walked in press
	// order and every bound key overwrites the choice, so the most recently pressed bound key
	// wins when opposing keys are held. Unbound keys are ignored. With no bound key held the
	// direction is DirectionNone.
	//
	// Parameters:
	//   - keys: the currently held keys
	SetDirection(keys *PressedKeys)

	// Apply moves m by Vector() * speed * dt.
	//
	// Parameters:
	//   - m: the mover to drive
	//   - dt: elapsed time in seconds
	Apply(m Mover, dt float32)
}

var _ Controller = &controller{}

// NewController creates a Controller driving the instance at DefaultSpeed with DefaultBindings.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created controller
func NewController(options ...ControllerBuilderOption) Controller {
	c := &controller{
		mu:       &sync.Mutex{},
		speed:    DefaultSpeed,
		target:   TargetInstance,
		bindings: maps.Clone(DefaultBindings),
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// NewCameraController creates a Controller that drives the camera.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the newly created camera controller
func NewCameraController(options ...ControllerBuilderOption) Controller {
	return NewController(append([]ControllerBuilderOption{WithTarget(TargetCamera)}, options...)...)
}

func (c *controller) Speed() float32 {
	return c.speed
}

func (c *controller) Target() Target {
	return c.target
}

func (c *controller) Direction() Direction {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.direction
}

func (c *controller) Vector() mgl32.Vec2 {
	return c.Direction().Vector(c.target)
}

func (c *controller) SetDirection(keys *PressedKeys) {
	dir := DirectionNone
	if keys != nil {
		for _, k := range keys.keys {
			if d, ok := c.bindings[k]; ok {
				dir = d
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.direction = dir
}

func (c *controller) Apply(m Mover, dt float32) {
	m.Update(c.Vector(), dt, c.speed)
}
