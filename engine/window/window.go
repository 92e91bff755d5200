package window

import (
	"runtime"

	"github.com/pkg/errors"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrNotInitialized is returned when an operation needs the platform window before it exists.
var ErrNotInitialized = errors.New("window is not initialized")

// Window is the platform window the engine renders into. It owns the message loop and reports
// keyboard, resize and close events through callbacks, all on the loop's goroutine.
type Window interface {
	// SetUpdateCallback sets the function run once per loop iteration after events are polled.
	SetUpdateCallback(callback func())

	// SetResizeCallback sets the function run when the framebuffer size changes, whether from a
	// resize or from moving to a display with another scale factor. Sizes are in pixels.
	SetResizeCallback(callback func(width, height int))

	// SetKeyDownCallback sets the function run on a key press. Held keys do not repeat.
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the function run on a key release.
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetCloseCallback sets the function run when the user asks to close the window.
	SetCloseCallback(callback func())

	// SurfaceDescriptor returns the native surface handle for WebGPU, or nil before the
	// platform window exists.
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the loop would run another iteration.
	IsRunning() bool

	// RequestClose makes the loop stop after the current iteration.
	RequestClose()

	// Close destroys the platform window.
	//
	// Returns:
	//   - error: ErrNotInitialized if there is no platform window
	Close() error

	// ProcessMessages polls events and runs the update callback until the window stops running.
	// It must be called from the goroutine that created the window.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

var _ Window = &engineWindow{}

type engineWindow struct {
	title string

	// size limits, zero leaves a bound open
	minWidth, minHeight int
	maxWidth, maxHeight int

	// framebuffer size in pixels
	width, height int

	// native is nil until newPlatformWindow succeeds and after Close
	native *glfwWindow

	onUpdate  func()
	onResize  func(width, height int)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onClose   func()
}

// NewWindow opens and shows a window. Unless overridden it is titled "Plat4rs", opens at
// 800x600 and cannot shrink below 320x240.
//
// Parameters:
//   - options: functional options applied over the defaults
//
// Returns:
//   - Window: the open window
//   - error: an invalid size, or the platform failure
func NewWindow(options ...WindowBuilderOption) (Window, error) {
	w := &engineWindow{
		title:     "Plat4rs",
		width:     800,
		height:    600,
		minWidth:  320,
		minHeight: 240,
	}
	for _, opt := range options {
		opt(w)
	}
	if w.width <= 0 || w.height <= 0 {
		return nil, errors.Errorf("invalid window size %dx%d", w.width, w.height)
	}
	if err := newPlatformWindow(w); err != nil {
		return nil, errors.Wrap(err, "failed to create platform window")
	}
	return w, nil
}

func (w *engineWindow) SetUpdateCallback(callback func())                  { w.onUpdate = callback }
func (w *engineWindow) SetResizeCallback(callback func(width, height int)) { w.onResize = callback }
func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32))   { w.onKeyDown = callback }
func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32))     { w.onKeyUp = callback }
func (w *engineWindow) SetCloseCallback(callback func())                   { w.onClose = callback }

func (w *engineWindow) Width() int  { return w.width }
func (w *engineWindow) Height() int { return w.height }

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return w.native.surfaceDescriptor()
}

func (w *engineWindow) IsRunning() bool {
	return w.native.alive()
}

func (w *engineWindow) RequestClose() {
	w.native.stop()
}

func (w *engineWindow) Close() error {
	if w.native == nil {
		return ErrNotInitialized
	}
	w.native.destroy()
	w.native = nil
	return nil
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !w.native.poll() {
			return
		}
		if w.onUpdate != nil {
			w.onUpdate()
		}
		runtime.Gosched()
	}
}

// resized records a new framebuffer size and forwards it unless it is unchanged.
func (w *engineWindow) resized(width, height int) {
	if width == w.width && height == w.height {
		return
	}
	w.width, w.height = width, height
	if w.onResize != nil {
		w.onResize(width, height)
	}
}

// keyChanged forwards a key transition to the down or up callback.
func (w *engineWindow) keyChanged(key uint32, pressed bool) {
	cb := w.onKeyUp
	if pressed {
		cb = w.onKeyDown
	}
	if cb != nil {
		cb(key)
	}
}
