package window

import (
	"runtime"
	"sync/atomic"

	"github.com/pkg/errors"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"
)

// glfwWindow is the GLFW side of an engineWindow. Its methods accept a nil receiver so an
// engineWindow without a platform window behaves as a closed one. stop may be called from any
// goroutine; every other method belongs to the thread that created the window.
type glfwWindow struct {
	window  *glfw.Window
	running atomic.Bool
}

// sizeLimit maps an unset bound to GLFW's "no limit" value.
func sizeLimit(v int) int {
	if v <= 0 {
		return glfw.DontCare
	}
	return v
}

// newPlatformWindow creates the GLFW window for w and routes its callbacks into w. GLFW must
// be driven from the main OS thread, so the calling goroutine is locked to it.
//
// Reference: https://www.glfw.org/docs/latest/window_guide.html
func newPlatformWindow(w *engineWindow) error {
	runtime.LockOSThread()

	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "failed to initialize GLFW")
	}
	// the surface comes from WebGPU, not an OpenGL context
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)

	win, err := glfw.CreateWindow(w.width, w.height, w.title, nil, nil)
	if err != nil {
		glfw.Terminate()
		return errors.Wrap(err, "failed to create GLFW window")
	}
	win.SetSizeLimits(sizeLimit(w.minWidth), sizeLimit(w.minHeight), sizeLimit(w.maxWidth), sizeLimit(w.maxHeight))

	win.SetKeyCallback(func(_ *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
		if key == glfw.KeyUnknown || action == glfw.Repeat {
			return
		}
		w.keyChanged(uint32(key), action == glfw.Press)
	})
	// framebuffer sizes are in pixels, which differ from window coordinates on high-DPI displays
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.resized(width, height)
	})
	win.SetContentScaleCallback(func(win *glfw.Window, x, y float32) {
		common.Logger().Debug("content scale changed", "x", x, "y", y)
		w.resized(win.GetFramebufferSize())
	})
	win.SetCloseCallback(func(_ *glfw.Window) {
		if w.onClose != nil {
			w.onClose()
		}
	})

	w.native = &glfwWindow{window: win}
	w.native.running.Store(true)
	w.width, w.height = win.GetFramebufferSize()
	common.Logger().Info("window created", "title", w.title, "width", w.width, "height", w.height)
	return nil
}

func (g *glfwWindow) alive() bool {
	return g != nil && g.running.Load() && !g.window.ShouldClose()
}

// poll dispatches pending events without blocking and reports whether the window survived them.
func (g *glfwWindow) poll() bool {
	glfw.PollEvents()
	return g.alive()
}

func (g *glfwWindow) stop() {
	if g == nil {
		return
	}
	// glfwSetWindowShouldClose is safe from any thread
	if g.running.Swap(false) {
		g.window.SetShouldClose(true)
	}
}

// destroy closes the window and shuts GLFW down.
func (g *glfwWindow) destroy() {
	g.stop()
	g.window.Destroy()
	glfw.Terminate()
}

// surfaceDescriptor builds the per-platform (Win32, X11, Wayland, Metal) surface handle.
func (g *glfwWindow) surfaceDescriptor() *wgpu.SurfaceDescriptor {
	if g == nil {
		return nil
	}
	return wgpuglfw.GetSurfaceDescriptor(g.window)
}
