package renderer

import (
	"errors"
	"fmt"
	"strings"
)

// Frame acquisition outcomes. BeginFrame wraps backend failures in one of these so callers
// can branch with errors.Is.
var (
	// ErrSurfaceLost means the surface must be reconfigured before the next frame.
	ErrSurfaceLost = errors.New("renderer: surface lost")

	// ErrSurfaceOutdated means the surface no longer matches the window; the frame is skipped.
	ErrSurfaceOutdated = errors.New("renderer: surface outdated")

	// ErrSurfaceTimeout means no swapchain image became available in time; the frame is skipped.
	ErrSurfaceTimeout = errors.New("renderer: surface acquire timed out")

	// ErrOutOfMemory means the GPU or host ran out of memory. Fatal.
	ErrOutOfMemory = errors.New("renderer: out of memory")

	// ErrDeviceLost means the GPU device is gone. Fatal.
	ErrDeviceLost = errors.New("renderer: device lost")
)

var (
	// ErrPipelineNotFound is returned when a render pass selects an unregistered pipeline.
	ErrPipelineNotFound = errors.New("renderer: pipeline not found")

	// ErrFrameInProgress is returned by BeginFrame while the previous frame is unpresented.
	ErrFrameInProgress = errors.New("renderer: previous frame not yet presented")

	// ErrNoFrame is returned by EndFrame when BeginFrame did not succeed.
	ErrNoFrame = errors.New("renderer: no frame in progress")

	// ErrZeroSize is returned by Resize for a zero width or height.
	ErrZeroSize = errors.New("renderer: surface size must be non-zero")
)

var surfaceErrors = []error{ErrSurfaceLost, ErrSurfaceOutdated, ErrSurfaceTimeout, ErrOutOfMemory, ErrDeviceLost}

// classifySurfaceError maps a surface-acquire failure onto the frame outcome sentinels.
// The wgpu binding reports acquire status only through the error text, so the message is inspected.
// Errors that match nothing are returned unchanged and treated as transient by callers.
func classifySurfaceError(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range surfaceErrors {
		if errors.Is(err, sentinel) {
			return err
		}
	}

	msg := strings.ToLower(err.Error())
	var sentinel error
	switch {
	case strings.Contains(msg, "device") && strings.Contains(msg, "lost"):
		sentinel = ErrDeviceLost
	case strings.Contains(msg, "lost"):
		sentinel = ErrSurfaceLost
	case strings.Contains(msg, "memory"):
		sentinel = ErrOutOfMemory
	case strings.Contains(msg, "outdated"):
		sentinel = ErrSurfaceOutdated
	case strings.Contains(msg, "timeout"), strings.Contains(msg, "timed out"):
		sentinel = ErrSurfaceTimeout
	default:
		return err
	}
	return fmt.Errorf("%w: %v", sentinel, err)
}

// IsFatal reports whether a frame error should stop the loop.
//
// Parameters:
//   - err: the error returned by a frame operation
//
// Returns:
//   - bool: true for out-of-memory and device loss
func IsFatal(err error) bool {
	return errors.Is(err, ErrOutOfMemory) || errors.Is(err, ErrDeviceLost)
}
