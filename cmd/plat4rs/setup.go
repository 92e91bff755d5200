package main

import (
	"sync"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/pkg/errors"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine"
	"github.com/Carmen-Shannon/plat4rs-go/engine/camera"
	"github.com/Carmen-Shannon/plat4rs-go/engine/config"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/instance"
	"github.com/Carmen-Shannon/plat4rs-go/engine/loader"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/Carmen-Shannon/plat4rs-go/engine/profiler"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/plat4rs-go/engine/scene"
	"github.com/Carmen-Shannon/plat4rs-go/engine/window"
)

// app holds everything setup created, in creation order.
type app struct {
	window   window.Window
	renderer renderer.Renderer
	loader   loader.Loader
	scene    scene.SceneState
	engine   engine.Engine

	// released is closed once release has freed everything.
	released    chan struct{}
	releaseOnce sync.Once
	// interruptWait bounds how long interrupt waits for the main goroutine to release.
	interruptWait time.Duration
}

// setup builds the window, renderer, resources, pipeline, scene and engine. On error the returned
// app holds whatever was created so release can free it.
func setup(cfg config.Config) (*app, error) {
	a := &app{released: make(chan struct{}), interruptWait: 2 * time.Second}

	w, err := window.NewWindow(
		window.WithTitle(cfg.Window.Title),
		window.WithSize(cfg.Window.Width, cfg.Window.Height),
		window.WithMinSize(cfg.Window.MinWidth, cfg.Window.MinHeight),
		window.WithMaxSize(cfg.Window.MaxWidth, cfg.Window.MaxHeight),
	)
	if err != nil {
		return a, err
	}
	a.window = w

	mode, err := cfg.PresentMode()
	if err != nil {
		return a, err
	}
	cc := cfg.Renderer.ClearColor
	r, err := renderer.NewRenderer(renderer.BackendTypeWGPU, w,
		renderer.WithPresentMode(mode),
		renderer.WithMSAA(renderer.MSAASampleCount(cfg.Renderer.MSAA)),
		renderer.WithClearColor(wgpu.Color{R: cc[0], G: cc[1], B: cc[2], A: cc[3]}),
		renderer.WithForceSoftwareRenderer(cfg.Renderer.ForceSoftware),
	)
	if err != nil {
		return a, errors.Wrap(err, "create renderer")
	}
	a.renderer = r

	var loaderOpts []loader.LoaderBuilderOption
	if len(cfg.Resources.Roots) > 0 {
		loaderOpts = append(loaderOpts, loader.WithRoots(cfg.Resources.Roots...))
	}
	l, err := loader.NewLoader(loaderOpts...)
	if err != nil {
		return a, err
	}
	a.loader = l
	if len(cfg.Resources.Preload) > 0 {
		if err := l.Preload(cfg.Resources.Preload...); err != nil {
			common.Logger().Warn("preload incomplete", "error", err)
		}
	}

	p, err := buildPipeline(l, cfg)
	if err != nil {
		return a, err
	}
	if err := r.RegisterPipelines(p); err != nil {
		return a, errors.Wrap(err, "register pipeline")
	}

	width, height := r.Size()
	s, err := scene.NewSceneState(r, uint32(width), uint32(height), sceneOptions(cfg, p)...)
	if err != nil {
		return a, errors.Wrap(err, "create scene")
	}
	a.scene = s
	r.WriteBuffers(s.Writes())

	a.engine = engine.NewEngine(r, s,
		engine.WithWindow(w),
		engine.WithPipelineKey(cfg.Engine.Pipeline),
		engine.WithRenderFrameLimit(cfg.Engine.FrameLimit),
		engine.WithProfiling(cfg.Engine.Profiling),
		engine.WithProfiler(profiler.NewProfiler(profiler.WithInterval(cfg.Engine.ProfileInterval))),
	)
	return a, nil
}

// buildPipeline reads the scene shader and builds the render pipeline for both of its stages.
func buildPipeline(l loader.Loader, cfg config.Config) (pipeline.Pipeline, error) {
	src, err := l.LoadString(cfg.Resources.Shader)
	if err != nil {
		return nil, errors.Wrap(err, "load scene shader")
	}
	vs, err := shader.NewShader(cfg.Engine.Pipeline+"_vert", shader.ShaderTypeVertex, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse vertex shader")
	}
	fs, err := shader.NewShader(cfg.Engine.Pipeline+"_frag", shader.ShaderTypeFragment, src)
	if err != nil {
		return nil, errors.Wrap(err, "parse fragment shader")
	}
	return pipeline.NewPipeline(cfg.Engine.Pipeline,
		pipeline.WithVertexShader(vs),
		pipeline.WithFragmentShader(fs),
	), nil
}

// sceneOptions maps the camera, instance and controller sections to scene options.
func sceneOptions(cfg config.Config, p pipeline.Pipeline) []scene.SceneStateBuilderOption {
	target, _ := cfg.ControllerTarget()
	ctrl := input.NewController(input.WithSpeed(cfg.Controller.Speed))
	if target == input.TargetCamera {
		ctrl = input.NewCameraController(input.WithSpeed(cfg.Controller.Speed))
	}

	opts := []scene.SceneStateBuilderOption{
		scene.WithCamera(camera.NewCamera(
			camera.WithFocusPosition(cfg.Camera.Focus[0], cfg.Camera.Focus[1]),
			camera.WithZoom(cfg.Camera.Zoom),
		)),
		scene.WithInstance(instance.NewInstance(
			instance.WithPosition(cfg.Instance.Position[0], cfg.Instance.Position[1]),
			instance.WithRotation(cfg.Instance.Rotation),
			instance.WithScale(cfg.Instance.Scale),
		)),
		scene.WithController(ctrl),
	}
	// The camera bind group has to match the layout the pipeline was built with.
	if layout, ok := renderer.PipelineBindGroupLayout(p, int(model.CameraBindGroup)); ok {
		opts = append(opts, scene.WithCameraLayout(layout))
	}
	return opts
}

// run blocks in the window loop.
func (a *app) run() error {
	return a.engine.Run()
}

// interrupt is the signal hook. It only asks the loop to stop, then waits for the main goroutine
// to release, since GLFW and the wgpu objects must be freed on the thread that created them.
func (a *app) interrupt() {
	if a.engine != nil {
		a.engine.Quit()
	}
	select {
	case <-a.released:
	case <-time.After(a.interruptWait):
		common.Logger().Warn("shutdown did not finish in time")
	}
}

// release frees everything in reverse creation order. It must run on the main goroutine after
// run has returned, or after setup failed.
func (a *app) release() {
	a.releaseOnce.Do(func() {
		defer close(a.released)
		if a.scene != nil {
			a.scene.Release()
		}
		if a.loader != nil {
			a.loader.Close()
		}
		if a.renderer != nil {
			a.renderer.Release()
		}
		if a.window != nil {
			if err := a.window.Close(); err != nil {
				common.Logger().Warn("failed to close window", "error", err)
			}
		}
		common.Logger().Info("shutdown complete")
	})
}
