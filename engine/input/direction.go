package input

import (
	"fmt"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Direction is one of the four logical movement directions, or DirectionNone.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
)

func (d Direction) String() string {
	switch d {
	case DirectionNone:
		return "none"
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	case DirectionLeft:
		return "left"
	case DirectionRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Target selects what a Controller drives.
type Target int

const (
	// TargetInstance moves the scene instance in screen space (y-down).
	TargetInstance Target = iota

	// TargetCamera moves the camera focus opposite to the key, so the scene appears
	// to be dragged in the key's direction.
	TargetCamera
)

func (t Target) String() string {
	switch t {
	case TargetInstance:
		return "instance"
	case TargetCamera:
		return "camera"
	default:
		return fmt.Sprintf("Target(%d)", int(t))
	}
}

// ParseTarget converts a configuration string into a Target.
//
// Parameters:
//   - s: "instance" or "camera"
//
// Returns:
//   - Target: the parsed target
//   - error: an error if s names no known target
func ParseTarget(s string) (Target, error) {
	switch s {
	case "instance", "model":
		return TargetInstance, nil
	case "camera":
		return TargetCamera, nil
	default:
		return 0, fmt.Errorf("input: unknown controller target %q", s)
	}
}

// DefaultBindings maps W/Up, S/Down, A/Left and D/Right to the four directions.
var DefaultBindings = map[uint32]Direction{
	common.KeyW:     DirectionUp,
	common.KeyUp:    DirectionUp,
	common.KeyS:     DirectionDown,
	common.KeyDown:  DirectionDown,
	common.KeyA:     DirectionLeft,
	common.KeyLeft:  DirectionLeft,
	common.KeyD:     DirectionRight,
	common.KeyRight: DirectionRight,
}

var instanceVectors = map[Direction]mgl32.Vec2{
	DirectionUp:    {0, -1},
	DirectionDown:  {0, 1},
	DirectionLeft:  {-1, 0},
	DirectionRight: {1, 0},
}

var cameraVectors = map[Direction]mgl32.Vec2{
	DirectionUp:    {0, 1},
	DirectionDown:  {0, -1},
	DirectionLeft:  {1, 0},
	DirectionRight: {-1, 0},
}

// Vector returns the unit vector a direction moves the given target along.
// DirectionNone yields the zero vector.
//
// Parameters:
//   - target: the controller target
//
// Returns:
//   - mgl32.Vec2: the movement vector
func (d Direction) Vector(target Target) mgl32.Vec2 {
	if target == TargetCamera {
		return cameraVectors[d]
	}
	return instanceVectors[d]
}
