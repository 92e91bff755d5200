// Package config loads the YAML startup configuration of the plat4rs binary.
package config

import (
	"bytes"
	"io"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer"
)

// DefaultTitle is the window title used when none is configured.
const DefaultTitle = "Plat4rs"

// Config is the full startup configuration.
type Config struct {
	Window     WindowConfig     `yaml:"window"`
	Renderer   RendererConfig   `yaml:"renderer"`
	Camera     CameraConfig     `yaml:"camera"`
	Instance   InstanceConfig   `yaml:"instance"`
	Controller ControllerConfig `yaml:"controller"`
	Engine     EngineConfig     `yaml:"engine"`
	Resources  ResourcesConfig  `yaml:"resources"`
}

// WindowConfig configures the platform window. A zero size limit leaves that bound open.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	MinWidth  int    `yaml:"min_width"`
	MinHeight int    `yaml:"min_height"`
	MaxWidth  int    `yaml:"max_width"`
	MaxHeight int    `yaml:"max_height"`
}

// RendererConfig configures the surface and render targets.
type RendererConfig struct {
	// PresentMode is one of vsync, mailbox, immediate.
	PresentMode   string     `yaml:"present_mode"`
	MSAA          int        `yaml:"msaa"`
	ClearColor    [4]float64 `yaml:"clear_color"`
	ForceSoftware bool       `yaml:"force_software"`
}

// CameraConfig sets the initial camera.
type CameraConfig struct {
	Focus [2]float32 `yaml:"focus"`
	Zoom  float32    `yaml:"zoom"`
}

// InstanceConfig sets the initial transform of the drawn instance.
type InstanceConfig struct {
	Position [2]float32 `yaml:"position"`
	Rotation float32    `yaml:"rotation"`
	Scale    float32    `yaml:"scale"`
}

// ControllerConfig selects what the arrow keys move and how fast.
type ControllerConfig struct {
	// Target is "instance" (or "model") or "camera".
	Target string  `yaml:"target"`
	Speed  float32 `yaml:"speed"`
}

// EngineConfig configures the frame loop.
type EngineConfig struct {
	// FrameLimit caps frames per second; 0 is uncapped.
	FrameLimit      float64       `yaml:"frame_limit"`
	Profiling       bool          `yaml:"profiling"`
	ProfileInterval time.Duration `yaml:"profile_interval"`
	Pipeline        string        `yaml:"pipeline"`
}

// ResourcesConfig locates shaders and other resources.
type ResourcesConfig struct {
	// Roots replaces the default resource directories when set.
	Roots   []string `yaml:"roots"`
	Shader  string   `yaml:"shader"`
	Preload []string `yaml:"preload"`
}

// Default returns the configuration used when no file is given.
//
// Returns:
//   - Config: the defaults
func Default() Config {
	return Config{
		Window: WindowConfig{
			Title:     DefaultTitle,
			Width:     800,
			Height:    600,
			MinWidth:  320,
			MinHeight: 240,
		},
		Renderer: RendererConfig{
			PresentMode: "vsync",
			MSAA:        int(renderer.MSAA4x),
			ClearColor:  [4]float64{0.1, 0.1, 0.1, 1},
		},
		Camera: CameraConfig{
			Focus: [2]float32{100, 0},
			Zoom:  2,
		},
		Instance: InstanceConfig{
			Scale: 100,
		},
		Controller: ControllerConfig{
			Target: "instance",
			Speed:  100,
		},
		Engine: EngineConfig{
			ProfileInterval: time.Second,
			Pipeline:        "scene",
		},
		Resources: ResourcesConfig{
			Shader: "shaders/scene.wgsl",
		},
	}
}

// Load reads and parses a configuration file.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - Config: the defaults overlaid with the file contents
//   - error: error if the file cannot be read, parsed, or validated
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "read config %s", path)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config %s", path)
	}
	return cfg, nil
}

// Parse decodes YAML over the defaults. Unknown keys are rejected.
// An empty document yields the defaults.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - Config: the parsed configuration
//   - error: error if decoding or validation fails
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, errors.Wrap(err, "decode")
	}

	def := Default()
	cfg.Window.Title = common.Coalesce(cfg.Window.Title, def.Window.Title)
	cfg.Renderer.PresentMode = common.Coalesce(cfg.Renderer.PresentMode, def.Renderer.PresentMode)
	cfg.Controller.Target = common.Coalesce(cfg.Controller.Target, def.Controller.Target)
	cfg.Resources.Shader = common.Coalesce(cfg.Resources.Shader, def.Resources.Shader)
	cfg.Engine.Pipeline = common.Coalesce(cfg.Engine.Pipeline, def.Engine.Pipeline)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every field against the range the engine accepts.
//
// Returns:
//   - error: the first invalid field, or nil
func (c Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return errors.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.MinWidth < 0 || c.Window.MinHeight < 0 {
		return errors.Errorf("window minimum size %dx%d must not be negative", c.Window.MinWidth, c.Window.MinHeight)
	}
	if c.Window.MaxWidth < 0 || c.Window.MaxHeight < 0 {
		return errors.Errorf("window maximum size %dx%d must not be negative", c.Window.MaxWidth, c.Window.MaxHeight)
	}
	if (c.Window.MaxWidth > 0 && c.Window.MaxWidth < c.Window.MinWidth) || (c.Window.MaxHeight > 0 && c.Window.MaxHeight < c.Window.MinHeight) {
		return errors.Errorf("window maximum size %dx%d is below the minimum %dx%d", c.Window.MaxWidth, c.Window.MaxHeight, c.Window.MinWidth, c.Window.MinHeight)
	}
	if _, err := c.PresentMode(); err != nil {
		return errors.Wrap(err, "renderer.present_mode")
	}
	if !renderer.MSAASampleCount(c.Renderer.MSAA).Valid() {
		return errors.Errorf("renderer.msaa %d must be 1 or 4", c.Renderer.MSAA)
	}
	for i, v := range c.Renderer.ClearColor {
		if v < 0 || v > 1 || math.IsNaN(v) {
			return errors.Errorf("renderer.clear_color[%d] %v must be within [0, 1]", i, v)
		}
	}
	if !(c.Camera.Zoom > 0) {
		return errors.Errorf("camera.zoom %v must be positive", c.Camera.Zoom)
	}
	if !(c.Instance.Scale > 0) {
		return errors.Errorf("instance.scale %v must be positive", c.Instance.Scale)
	}
	if _, err := c.ControllerTarget(); err != nil {
		return errors.Wrap(err, "controller.target")
	}
	if c.Controller.Speed < 0 {
		return errors.Errorf("controller.speed %v must not be negative", c.Controller.Speed)
	}
	if c.Engine.FrameLimit < 0 {
		return errors.Errorf("engine.frame_limit %v must not be negative", c.Engine.FrameLimit)
	}
	if c.Engine.ProfileInterval < 0 {
		return errors.Errorf("engine.profile_interval %v must not be negative", c.Engine.ProfileInterval)
	}
	return nil
}

// PresentMode returns the parsed renderer present mode.
func (c Config) PresentMode() (renderer.PresentMode, error) {
	return renderer.ParsePresentMode(c.Renderer.PresentMode)
}

// ControllerTarget returns the parsed controller target.
func (c Config) ControllerTarget() (input.Target, error) {
	return input.ParseTarget(c.Controller.Target)
}
