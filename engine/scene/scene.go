package scene

import (
	"fmt"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/camera"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/instance"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/cogentcore/webgpu/wgpu"
)

// CameraBinding is the binding index of the camera uniform inside its bind group.
const CameraBinding = 0

// InstanceVertexSlot is the vertex buffer slot the instance transforms are bound to.
const InstanceVertexSlot uint32 = 1

// Allocator creates the GPU resources a SceneState owns. renderer.Renderer satisfies it.
type Allocator interface {
	InitMeshBuffers(provider bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error
	InitVertexBuffer(provider bind_group_provider.BindGroupProvider, size uint64) error
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor, bufferUsageOverrides map[int]wgpu.BufferUsage, bufferSizeOverrides map[int]uint64) error
}

type sceneState struct {
	mu *sync.Mutex

	camera        camera.Camera
	cameraUniform *camera.GPUCameraUniform
	cameraLayout  wgpu.BindGroupLayoutDescriptor

	instance   instance.Instance
	model      model.Model
	controller input.Controller

	cameraProvider   bind_group_provider.BindGroupProvider
	instanceProvider bind_group_provider.BindGroupProvider

	pending []bind_group_provider.BufferWrite
}

// SceneState is the GPU-resident scene: one camera, one model and one tracked instance.
// Every GPU buffer is created by NewSceneState; afterwards the scene only stages byte
// writes, which the caller uploads before recording draws that read them.
type SceneState interface {
	// Camera returns the scene camera.
	Camera() camera.Camera

	// CameraUniform returns a snapshot of the camera uniform as last refreshed.
	CameraUniform() camera.GPUCameraUniform

	// CameraProvider returns the provider holding the camera uniform buffer and bind group.
	CameraProvider() bind_group_provider.BindGroupProvider

	// Instance returns the tracked instance.
	Instance() instance.Instance

	// InstanceProvider returns the provider holding the per-instance vertex buffer.
	InstanceProvider() bind_group_provider.BindGroupProvider

	// Model returns the static model drawn for the instance.
	Model() model.Model

	// Controller returns the input controller driving the instance or the camera.
	Controller() input.Controller

	// Update advances the scene by dt seconds: the controller picks a direction from the held
	// keys and moves its target, then the instance transform (and the camera uniform when the
	// camera moved) is staged for upload.
	//
	// Parameters:
	//   - dt: elapsed time in seconds
	//   - keys: the currently held keys, nil for none
	Update(dt float32, keys *input.PressedKeys)

	// Resize sizes the camera viewport, refreshes the uniform and stages its upload. A zero
	// dimension is ignored.
	//
	// Parameters:
	//   - width, height: the new viewport size in pixels
	Resize(width, height uint32)

	// Writes returns the staged buffer writes in staging order and clears the queue.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: the writes to upload
	Writes() []bind_group_provider.BufferWrite

	// Release frees every GPU resource owned by the scene.
	Release()
}

var _ SceneState = &sceneState{}

// NewSceneState builds the scene and allocates all of its GPU resources: the camera uniform
// buffer and bind group, the instance vertex buffer and the vertex/index buffers of every mesh.
// The initial camera and instance contents are staged, so the first Writes call returns them.
//
// Without options the scene is a DefaultScale unit triangle at the origin, viewed by a default
// camera and driven by an instance controller.
//
// Parameters:
//   - alloc: creates the GPU resources
//   - width, height: the initial viewport size in pixels
//   - options: functional options to configure the scene
//
// Returns:
//   - SceneState: the scene
//   - error: the first allocation failure
func NewSceneState(alloc Allocator, width, height uint32, options ...SceneStateBuilderOption) (SceneState, error) {
	if alloc == nil {
		panic("scene: NewSceneState requires an Allocator")
	}
	s := &sceneState{
		mu:            &sync.Mutex{},
		cameraUniform: camera.NewGPUCameraUniform(),
		cameraLayout:  CameraBindGroupLayout(),
	}
	for _, option := range options {
		option(s)
	}
	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.instance == nil {
		s.instance = instance.NewInstance(instance.WithScale(DefaultScale))
	}
	if s.model == nil {
		s.model = model.NewModel("triangle", model.Triangle())
	}
	if s.controller == nil {
		s.controller = input.NewController()
	}

	s.cameraProvider = bind_group_provider.NewBindGroupProvider("camera")
	if err := alloc.InitBindGroup(s.cameraProvider, s.cameraLayout, nil, map[int]uint64{
		CameraBinding: uint64(s.cameraUniform.Size()),
	}); err != nil {
		return nil, fmt.Errorf("camera bind group: %w", err)
	}

	raw := s.instance.ToRaw()
	s.instanceProvider = bind_group_provider.NewBindGroupProvider("instance")
	if err := alloc.InitVertexBuffer(s.instanceProvider, uint64(raw.Size())); err != nil {
		return nil, fmt.Errorf("instance buffer: %w", err)
	}

	for _, m := range s.model.Meshes() {
		if err := alloc.InitMeshBuffers(m.MeshProvider(), m.VertexData(), m.IndexData(), int(m.IndexCount())); err != nil {
			return nil, fmt.Errorf("mesh %q: %w", m.Name(), err)
		}
	}

	if width > 0 && height > 0 {
		s.camera.SetViewportSize(width, height)
	}
	w, h := s.camera.ViewportSize()
	s.cameraUniform.Refresh(s.camera, w, h)
	s.stageCamera()
	s.stageInstance()

	common.Logger().Debug("scene allocated", "meshes", len(s.model.Meshes()), "width", w, "height", h, "target", s.controller.Target().String())
	return s, nil
}

// CameraBindGroupLayout is the default layout of the camera bind group: one 64 byte uniform at
// binding 0, visible to both stages of the scene shader.
//
// Returns:
//   - wgpu.BindGroupLayoutDescriptor: the layout descriptor
func CameraBindGroupLayout() wgpu.BindGroupLayoutDescriptor {
	return wgpu.BindGroupLayoutDescriptor{
		Label: "camera",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    CameraBinding,
				Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
				Buffer: wgpu.BufferBindingLayout{
					Type:           wgpu.BufferBindingTypeUniform,
					MinBindingSize: 64,
				},
			},
		},
	}
}

func (s *sceneState) Camera() camera.Camera {
	return s.camera
}

func (s *sceneState) CameraUniform() camera.GPUCameraUniform {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.cameraUniform
}

func (s *sceneState) CameraProvider() bind_group_provider.BindGroupProvider {
	return s.cameraProvider
}

func (s *sceneState) Instance() instance.Instance {
	return s.instance
}

func (s *sceneState) InstanceProvider() bind_group_provider.BindGroupProvider {
	return s.instanceProvider
}

func (s *sceneState) Model() model.Model {
	return s.model
}

func (s *sceneState) Controller() input.Controller {
	return s.controller
}

func (s *sceneState) Update(dt float32, keys *input.PressedKeys) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.controller.SetDirection(keys)
	switch s.controller.Target() {
	case input.TargetCamera:
		if s.controller.Direction() != input.DirectionNone {
			s.controller.Apply(s.camera, dt)
			w, h := s.camera.ViewportSize()
			s.cameraUniform.Refresh(s.camera, w, h)
			s.stageCamera()
		}
	default:
		s.controller.Apply(s.instance, dt)
	}
	s.stageInstance()
}

func (s *sceneState) Resize(width, height uint32) {
	if width == 0 || height == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.camera.SetViewportSize(width, height)
	s.cameraUniform.Refresh(s.camera, width, height)
	s.stageCamera()
}

func (s *sceneState) Writes() []bind_group_provider.BufferWrite {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := slices.Clone(s.pending)
	s.pending = s.pending[:0]
	return out
}

func (s *sceneState) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.model.Meshes() {
		m.MeshProvider().Release()
	}
	s.instanceProvider.Release()
	s.cameraProvider.Release()
	s.pending = nil
}

// stageCamera queues the current uniform. Callers hold s.mu.
func (s *sceneState) stageCamera() {
	s.stage(bind_group_provider.BufferWrite{
		Provider: s.cameraProvider,
		Binding:  CameraBinding,
		Data:     s.cameraUniform.Marshal(),
	})
}

// stageInstance queues the instance transform into the instance vertex buffer. Callers hold s.mu.
func (s *sceneState) stageInstance() {
	raw := s.instance.ToRaw()
	s.stage(bind_group_provider.BufferWrite{
		Provider: s.instanceProvider,
		Binding:  bind_group_provider.VertexBufferBinding,
		Data:     raw.Marshal(),
	})
}

// stage queues w, replacing a pending write to the same provider, binding and offset.
func (s *sceneState) stage(w bind_group_provider.BufferWrite) {
	for i, p := range s.pending {
		if p.Provider == w.Provider && p.Binding == w.Binding && p.Offset == w.Offset {
			s.pending[i] = w
			return
		}
	}
	s.pending = append(s.pending, w)
}
