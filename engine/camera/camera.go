package camera

import (
	"errors"
	"math"
	"sync"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// DefaultZoom is the zoom factor applied when no WithZoom option is given.
	DefaultZoom float32 = 2.0

	// DefaultViewportWidth is the initial viewport width in pixels.
	DefaultViewportWidth uint32 = 800

	// DefaultViewportHeight is the initial viewport height in pixels.
	DefaultViewportHeight uint32 = 600

	// near and far bound the depth range of the 2D projection.
	near float32 = 0
	far  float32 = 1
)

// ErrInvalidZoom is returned when a zoom factor that is not a finite positive number is requested.
var ErrInvalidZoom = errors.New("camera: zoom must be finite and greater than zero")

// validZoom rejects NaN along with zero, negative and infinite factors.
func validZoom(zoom float32) bool {
	return zoom > 0 && !math.IsInf(float64(zoom), 1)
}

// DefaultFocusPosition is the world-space point the camera looks at by default.
var DefaultFocusPosition = mgl32.Vec2{100, 0}

type cameraImpl struct {
	mu *sync.Mutex

	focus    mgl32.Vec2
	zoom     float32
	viewport [2]uint32
}

// Camera defines the interface for the 2D orthographic camera.
// One world unit maps to one pixel at a zoom of 1. The screen is y-down:
// increasing world y moves toward the bottom of the viewport.
type Camera interface {
	// FocusPosition returns the world-space point at the centre of the viewport.
	//
	// Returns:
	//   - mgl32.Vec2: the focus position
	FocusPosition() mgl32.Vec2

	// Zoom returns the current zoom factor.
	//
	// Returns:
	//   - float32: the zoom factor, always greater than zero
	Zoom() float32

	// ViewportSize returns the viewport dimensions the camera was last sized to.
	//
	// Returns:
	//   - width, height: viewport dimensions in pixels
	ViewportSize() (width, height uint32)

	// AspectRatio returns the viewport width divided by its height.
	//
	// Returns:
	//   - float32: the aspect ratio, or 0 when the viewport height is zero
	AspectRatio() float32

	// Project builds the view-projection matrix for the given viewport size. The bounds are
	// focus ± viewport/2 on each axis, and the result is scaled by the zoom about the focus,
	// so the visible world region is focus ± viewport/(2 * zoom). Depth maps into [0, 1].
	// Project is a pure function of the camera state and its arguments.
	//
	// Parameters:
	//   - width, height: viewport dimensions in pixels, both greater than zero
	//
	// Returns:
	//   - mgl32.Mat4: the column-major view-projection matrix
	Project(width, height uint32) mgl32.Mat4

	// Update moves the focus position by direction * speed * dt.
	//
	// Parameters:
	//   - direction: a unit or zero direction vector
	//   - dt: elapsed time in seconds
	//   - speed: movement speed in world units per second
	Update(direction mgl32.Vec2, dt, speed float32)

	// SetFocusPosition moves the camera to look at the given world-space point.
	//
	// Parameters:
	//   - focus: the new focus position
	SetFocusPosition(focus mgl32.Vec2)

	// SetZoom sets the zoom factor.
	//
	// Parameters:
	//   - zoom: the new zoom factor
	//
	// Returns:
	//   - error: ErrInvalidZoom if zoom is NaN, infinite or not greater than zero, leaving the zoom unchanged
	SetZoom(zoom float32) error

	// SetViewportSize records new viewport dimensions. Zero dimensions are ignored so a
	// minimised window never produces a degenerate projection.
	//
	// Parameters:
	//   - width, height: viewport dimensions in pixels
	SetViewportSize(width, height uint32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera focused on DefaultFocusPosition with DefaultZoom
// and a DefaultViewportWidth x DefaultViewportHeight viewport.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the newly created camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:       &sync.Mutex{},
		focus:    DefaultFocusPosition,
		zoom:     DefaultZoom,
		viewport: [2]uint32{DefaultViewportWidth, DefaultViewportHeight},
	}
	for _, option := range options {
		option(c)
	}
	if !validZoom(c.zoom) {
		panic("camera: NewCamera requires a finite zoom greater than zero")
	}
	return c
}

func (c *cameraImpl) FocusPosition() mgl32.Vec2 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

func (c *cameraImpl) Zoom() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zoom
}

func (c *cameraImpl) ViewportSize() (width, height uint32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewport[0], c.viewport[1]
}

func (c *cameraImpl) AspectRatio() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.viewport[1] == 0 {
		return 0
	}
	return float32(c.viewport[0]) / float32(c.viewport[1])
}

func (c *cameraImpl) Project(width, height uint32) mgl32.Mat4 {
	c.mu.Lock()
	focus, zoom := c.focus, c.zoom
	c.mu.Unlock()

	halfW := float32(width) / 2
	halfH := float32(height) / 2

	// top sits above bottom in world y, which flips the vertical axis into screen space
	proj := common.OrthoZO(
		focus.X()-halfW, focus.X()+halfW,
		focus.Y()+halfH, focus.Y()-halfH,
		near, far,
	)
	return proj.Mul4(common.ScaleAbout(focus.X(), focus.Y(), zoom))
}

func (c *cameraImpl) Update(direction mgl32.Vec2, dt, speed float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = c.focus.Add(direction.Mul(speed * dt))
}

func (c *cameraImpl) SetFocusPosition(focus mgl32.Vec2) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.focus = focus
}

func (c *cameraImpl) SetZoom(zoom float32) error {
	if !validZoom(zoom) {
		return ErrInvalidZoom
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.zoom = zoom
	return nil
}

func (c *cameraImpl) SetViewportSize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.viewport = [2]uint32{width, height}
}
