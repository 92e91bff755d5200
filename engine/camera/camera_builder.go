package camera

import "github.com/go-gl/mathgl/mgl32"

type CameraBuilderOption func(*cameraImpl)

// WithFocusPosition sets the world-space point the camera is centred on.
//
// Parameters:
//   - x, y: focus position components
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's focus position
func WithFocusPosition(x, y float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.focus = mgl32.Vec2{x, y}
	}
}

// WithZoom sets the camera's zoom factor. NewCamera panics unless the factor is finite and greater than zero.
//
// Parameters:
//   - zoom: the zoom factor
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's zoom
func WithZoom(zoom float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.zoom = zoom
	}
}

// WithViewportSize sets the initial viewport dimensions. Zero dimensions are ignored.
//
// Parameters:
//   - width, height: viewport dimensions in pixels
//
// Returns:
//   - CameraBuilderOption: a function that sets the camera's viewport size
func WithViewportSize(width, height uint32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if width == 0 || height == 0 {
			return
		}
		c.viewport = [2]uint32{width, height}
	}
}
