package scene

import (
	"github.com/Carmen-Shannon/plat4rs-go/engine/camera"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/instance"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/cogentcore/webgpu/wgpu"
)

// DefaultScale is the instance scale of the default scene, sizing the unit triangle to 100 pixels at zoom 1.
const DefaultScale float32 = 100

// SceneStateBuilderOption is a functional option for configuring a SceneState.
// Use the With* functions to create options.
type SceneStateBuilderOption func(s *sceneState)

// WithCamera sets the scene camera.
//
// Parameters:
//   - c: the camera
//
// Returns:
//   - SceneStateBuilderOption: option function to apply
func WithCamera(c camera.Camera) SceneStateBuilderOption {
	return func(s *sceneState) {
		s.camera = c
	}
}

// WithInstance sets the tracked instance.
//
// Parameters:
//   - i: the instance
//
// Returns:
//   - SceneStateBuilderOption: option function to apply
func WithInstance(i instance.Instance) SceneStateBuilderOption {
	return func(s *sceneState) {
		s.instance = i
	}
}

// WithModel sets the model drawn for the instance.
//
// Parameters:
//   - m: the model
//
// Returns:
//   - SceneStateBuilderOption: option function to apply
func WithModel(m model.Model) SceneStateBuilderOption {
	return func(s *sceneState) {
		s.model = m
	}
}

// WithController sets the input controller. Use input.NewCameraController to move the camera
// instead of the instance.
//
// Parameters:
//   - c: the controller
//
// Returns:
//   - SceneStateBuilderOption: option function to apply
func WithController(c input.Controller) SceneStateBuilderOption {
	return func(s *sceneState) {
		s.controller = c
	}
}

// WithCameraLayout sets the bind group layout used for the camera uniform. It must match the
// layout the render pipeline declares at group 0 (see renderer.PipelineBindGroupLayout).
//
// Parameters:
//   - desc: the layout descriptor
//
// Returns:
//   - SceneStateBuilderOption: option function to apply
func WithCameraLayout(desc wgpu.BindGroupLayoutDescriptor) SceneStateBuilderOption {
	return func(s *sceneState) {
		s.cameraLayout = desc
	}
}
