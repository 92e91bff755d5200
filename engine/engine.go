package engine

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/Carmen-Shannon/plat4rs-go/engine/profiler"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/plat4rs-go/engine/scene"
	"github.com/Carmen-Shannon/plat4rs-go/engine/window"
)

// DefaultPipelineKey is the pipeline selected for the scene draw unless WithPipelineKey overrides it.
const DefaultPipelineKey = "scene"

// ErrNoWindow is returned by Run when the engine was built without a window.
var ErrNoWindow = errors.New("engine has no window")

// FrameRenderer is the slice of renderer.Renderer the engine drives each frame.
type FrameRenderer interface {
	Resize(width, height int) error
	Size() (int, int)
	WriteBuffers(writes []bind_group_provider.BufferWrite)
	BeginFrame() (renderer.RenderPass, error)
	EndFrame() error
	Present()
}

var _ FrameRenderer = renderer.Renderer(nil)

// engine implements the Engine interface.
// Everything runs on the window thread: the window dispatches events, then the engine runs one frame.
type engine struct {
	mu *sync.Mutex

	renderer FrameRenderer
	scene    scene.SceneState
	window   window.Window

	pipelineKey string
	keys        input.PressedKeys

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once
	fatalErr    error

	profiler         *profiler.Profiler
	profilingEnabled bool

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	now              func() time.Time
}

// Engine owns the per-frame state machine: resize, update, render, and input dispatch.
type Engine interface {
	// Window returns the underlying window, or nil when the engine is driven manually.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Scene returns the scene being rendered.
	//
	// Returns:
	//   - scene.SceneState: the scene state
	Scene() scene.SceneState

	// PressedKeys returns the held keys in press order.
	//
	// Returns:
	//   - []uint32: a copy of the held key codes
	PressedKeys() []uint32

	// Input records a key transition in the held key set.
	// Unconsumed Escape presses request exit.
	//
	// Parameters:
	//   - ev: the key event
	//
	// Returns:
	//   - bool: whether the event was consumed; always false
	Input(ev input.KeyEvent) bool

	// Resize reconfigures the surface and the camera for a new drawable size and uploads the
	// refreshed camera uniform. Zero dimensions (a minimized window) are ignored.
	//
	// Parameters:
	//   - width: new width in pixels
	//   - height: new height in pixels
	//
	// Returns:
	//   - error: error if the surface could not be reconfigured
	Resize(width, height int) error

	// Update advances the scene by dt seconds and uploads the staged buffer writes.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	Update(dt float32)

	// Render records and presents one frame.
	//
	// Returns:
	//   - error: a classified surface error, or a pipeline error
	Render() error

	// Frame runs Update then Render and handles render errors.
	// A lost surface is reconfigured at the current size; out-of-memory, device loss, a missing
	// pipeline, or a failed reconfigure stop the loop; anything else skips the frame.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//
	// Returns:
	//   - bool: true if the loop should continue
	Frame(dt float32) bool

	// Stats returns the frame outcome counters.
	//
	// Returns:
	//   - profiler.Stats: the counters
	Stats() profiler.Stats

	// EnableProfiler enables periodic frame statistics in the log.
	EnableProfiler()

	// DisableProfiler disables periodic frame statistics.
	DisableProfiler()

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run wires the window callbacks and blocks in the window loop until exit is requested.
	//
	// Returns:
	//   - error: ErrNoWindow, or the error that stopped the loop (nil on a normal exit)
	Run() error

	// Quit requests exit. Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Done returns a channel closed once exit has been requested.
	//
	// Returns:
	//   - <-chan struct{}: the quit channel
	Done() <-chan struct{}
}

var _ Engine = &engine{}

// NewEngine creates a new Engine for a renderer and the scene it draws.
// Panics if either is nil.
//
// Parameters:
//   - r: the renderer (renderer.Renderer or a compatible implementation)
//   - s: the scene state whose GPU resources were allocated on r
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the configured engine
func NewEngine(r FrameRenderer, s scene.SceneState, options ...EngineBuilderOption) Engine {
	if r == nil {
		panic("engine: nil renderer")
	}
	if s == nil {
		panic("engine: nil scene")
	}
	e := &engine{
		mu:          &sync.Mutex{},
		renderer:    r,
		scene:       s,
		pipelineKey: DefaultPipelineKey,
		quitChannel: make(chan struct{}),
		now:         time.Now,
	}
	for _, opt := range options {
		opt(e)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler(profiler.WithClock(e.now))
	}
	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.SceneState {
	return e.scene
}

func (e *engine) PressedKeys() []uint32 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.keys.Keys()
}

func (e *engine) Input(ev input.KeyEvent) bool {
	e.mu.Lock()
	e.keys.Apply(ev)
	e.mu.Unlock()

	if ev.Pressed && ev.Key == common.KeyEsc {
		common.Logger().Info("exit requested", "reason", "escape")
		e.Quit()
	}
	return false
}

func (e *engine) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		common.Logger().Debug("resize ignored", "width", width, "height", height)
		return nil
	}
	if err := e.renderer.Resize(width, height); err != nil {
		return fmt.Errorf("resize to %dx%d: %w", width, height, err)
	}
	e.scene.Resize(uint32(width), uint32(height))
	e.renderer.WriteBuffers(e.scene.Writes())
	return nil
}

func (e *engine) Update(dt float32) {
	e.mu.Lock()
	e.scene.Update(dt, &e.keys)
	e.mu.Unlock()
	e.renderer.WriteBuffers(e.scene.Writes())
}

func (e *engine) Render() error {
	pass, err := e.renderer.BeginFrame()
	if err != nil {
		return err
	}
	if err := pass.SetPipeline(e.pipelineKey); err != nil {
		// The open pass still has to be closed for the next BeginFrame.
		if endErr := e.renderer.EndFrame(); endErr != nil {
			common.Logger().Warn("failed to end aborted frame", "error", endErr)
		}
		e.renderer.Present()
		return err
	}

	pass.SetVertexBuffer(scene.InstanceVertexSlot, e.scene.InstanceProvider())
	model.DrawModelInstanced(pass, e.scene.Model(), model.SingleInstance, e.scene.CameraProvider())

	if err := e.renderer.EndFrame(); err != nil {
		return err
	}
	e.renderer.Present()
	return nil
}

func (e *engine) Frame(dt float32) bool {
	select {
	case <-e.quitChannel:
		return false
	default:
	}

	e.Update(dt)
	err := e.Render()
	switch {
	case err == nil:
		e.profiler.Record(profiler.FrameRendered)
		return true

	case errors.Is(err, renderer.ErrSurfaceLost):
		width, height := e.renderer.Size()
		common.Logger().Warn("surface lost, reconfiguring", "width", width, "height", height)
		if rerr := e.renderer.Resize(width, height); rerr != nil {
			e.fail(fmt.Errorf("reconfigure after surface loss: %w", rerr))
			return false
		}
		e.profiler.Record(profiler.FrameReconfigured)
		return true

	case renderer.IsFatal(err), errors.Is(err, renderer.ErrPipelineNotFound):
		e.fail(err)
		return false

	default:
		common.Logger().Warn("frame skipped", "error", err)
		e.profiler.Record(profiler.FrameSkipped)
		return true
	}
}

// fail records the error that stopped the loop and requests exit.
func (e *engine) fail(err error) {
	common.Logger().Error("render loop stopped", "error", err)
	e.mu.Lock()
	if e.fatalErr == nil {
		e.fatalErr = err
	}
	e.mu.Unlock()
	e.Quit()
}

func (e *engine) Stats() profiler.Stats {
	return e.profiler.Stats()
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) Run() error {
	if e.window == nil {
		return ErrNoWindow
	}

	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.Input(input.KeyEvent{Key: keyCode, Pressed: true})
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		e.Input(input.KeyEvent{Key: keyCode, Pressed: false})
	})
	e.window.SetResizeCallback(func(width, height int) {
		if err := e.Resize(width, height); err != nil {
			common.Logger().Warn("resize failed", "error", err)
		}
	})
	e.window.SetCloseCallback(func() {
		common.Logger().Info("exit requested", "reason", "window closed")
		e.Quit()
	})

	lastFrame := e.now()
	e.window.SetUpdateCallback(func() {
		frameStart := e.now()
		dt := float32(frameStart.Sub(lastFrame).Seconds())
		lastFrame = frameStart

		if !e.Frame(dt) {
			e.window.RequestClose()
			return
		}
		if e.profilingEnabled {
			e.profiler.Tick()
		}

		if e.renderFrameLimit > 0 {
			if remaining := e.renderFrameLimit - e.now().Sub(frameStart); remaining > 0 {
				time.Sleep(remaining)
			}
		}
	})

	common.Logger().Info("engine running", "pipeline", e.pipelineKey)
	e.window.ProcessMessages()
	e.Quit()

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.fatalErr
}

// Quit closes the quit channel and asks the window to stop.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}
