package engine

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/Carmen-Shannon/plat4rs-go/engine/input"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer"
	"github.com/Carmen-Shannon/plat4rs-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/plat4rs-go/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeRenderer records every call in order. beginErrs are returned by successive BeginFrame calls.
type fakeRenderer struct {
	events    []string
	writes    []bind_group_provider.BufferWrite
	beginErrs []error
	resizeErr error
	width     int
	height    int
	pass      *fakePass
}

func newFakeRenderer() *fakeRenderer {
	r := &fakeRenderer{width: 800, height: 600}
	r.pass = &fakePass{r: r}
	return r
}

func (r *fakeRenderer) log(format string, args ...any) {
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *fakeRenderer) InitMeshBuffers(p bind_group_provider.BindGroupProvider, vertexData, indexData []byte, indexCount int) error {
	return nil
}

func (r *fakeRenderer) InitVertexBuffer(p bind_group_provider.BindGroupProvider, size uint64) error {
	return nil
}

func (r *fakeRenderer) InitBindGroup(p bind_group_provider.BindGroupProvider, d wgpu.BindGroupLayoutDescriptor, usage map[int]wgpu.BufferUsage, sizes map[int]uint64) error {
	return nil
}

func (r *fakeRenderer) Resize(width, height int) error {
	r.log("resize %dx%d", width, height)
	if r.resizeErr != nil {
		return r.resizeErr
	}
	r.width, r.height = width, height
	return nil
}

func (r *fakeRenderer) Size() (int, int) {
	return r.width, r.height
}

func (r *fakeRenderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	for _, w := range writes {
		r.log("write %s", w.Provider.Label())
	}
	r.writes = append(r.writes, writes...)
}

func (r *fakeRenderer) BeginFrame() (renderer.RenderPass, error) {
	r.log("begin")
	if len(r.beginErrs) > 0 {
		err := r.beginErrs[0]
		r.beginErrs = r.beginErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return r.pass, nil
}

func (r *fakeRenderer) EndFrame() error {
	r.log("end")
	return nil
}

func (r *fakeRenderer) Present() {
	r.log("present")
}

func (r *fakeRenderer) count(event string) int {
	n := 0
	for _, e := range r.events {
		if e == event {
			n++
		}
	}
	return n
}

type fakePass struct {
	r           *fakeRenderer
	pipelineErr error
}

var _ renderer.RenderPass = &fakePass{}

func (p *fakePass) SetPipeline(key string) error {
	p.r.log("pipeline %s", key)
	return p.pipelineErr
}

func (p *fakePass) SetVertexBuffer(slot uint32, provider bind_group_provider.BindGroupProvider) {
	p.r.log("vertex %d %s", slot, provider.Label())
}

func (p *fakePass) SetIndexBuffer(provider bind_group_provider.BindGroupProvider) {
	p.r.log("index %s", provider.Label())
}

func (p *fakePass) SetBindGroup(group uint32, provider bind_group_provider.BindGroupProvider) {
	p.r.log("bind %d %s", group, provider.Label())
}

func (p *fakePass) DrawIndexed(indexCount uint32, instances model.InstanceRange) {
	p.r.log("draw %d [%d,%d)", indexCount, instances.Start, instances.End)
}

func newTestEngine(t *testing.T, options ...EngineBuilderOption) (Engine, *fakeRenderer) {
	t.Helper()
	r := newFakeRenderer()
	s, err := scene.NewSceneState(r, 800, 600)
	if err != nil {
		t.Fatalf("NewSceneState: %v", err)
	}
	e := NewEngine(r, s, options...)
	// Drop the writes staged at construction so tests see only their own.
	s.Writes()
	return e, r
}

func TestRenderRecordsSceneDraw(t *testing.T) {
	e, r := newTestEngine(t)
	if err := e.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{
		"begin",
		"pipeline scene",
		"vertex 1 instance",
		"vertex 0 triangle",
		"index triangle",
		"bind 0 camera",
		"draw 3 [0,1)",
		"end",
		"present",
	}
	if len(r.events) != len(want) {
		t.Fatalf("events = %q, want %q", r.events, want)
	}
	for i := range want {
		if r.events[i] != want[i] {
			t.Fatalf("event %d = %q, want %q (all: %q)", i, r.events[i], want[i], r.events)
		}
	}
}

func TestFrameUpdatesBeforeRender(t *testing.T) {
	e, r := newTestEngine(t)
	if !e.Frame(0.016) {
		t.Fatalf("Frame returned false")
	}
	if len(r.events) < 2 || r.events[0] != "write instance" || r.events[1] != "begin" {
		t.Fatalf("events = %q, want the instance upload before begin", r.events)
	}
	if got := e.Stats().Rendered; got != 1 {
		t.Fatalf("Rendered = %d, want 1", got)
	}
}

func TestResizeUploadsCameraBeforeNextRender(t *testing.T) {
	e, r := newTestEngine(t)
	if err := e.Resize(1024, 768); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if err := e.Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if len(r.events) < 3 || r.events[0] != "resize 1024x768" || r.events[1] != "write camera" || r.events[2] != "begin" {
		t.Fatalf("events = %q, want resize, camera write, then begin", r.events)
	}
	uniform := e.Scene().CameraUniform()
	if !bytes.Equal(r.writes[0].Data, uniform.Marshal()) {
		t.Fatalf("uploaded camera bytes differ from the refreshed uniform")
	}
	if w, h := e.Scene().Camera().ViewportSize(); w != 1024 || h != 768 {
		t.Fatalf("camera viewport = %dx%d, want 1024x768", w, h)
	}
}

func TestResizeIgnoresZeroDimensions(t *testing.T) {
	e, r := newTestEngine(t)
	for _, size := range [][2]int{{0, 600}, {800, 0}, {0, 0}} {
		if err := e.Resize(size[0], size[1]); err != nil {
			t.Fatalf("Resize(%d, %d) = %v, want nil", size[0], size[1], err)
		}
	}
	if len(r.events) != 0 {
		t.Fatalf("zero-size resize produced events %q", r.events)
	}
}

func TestResizeFailureSkipsSceneUpdate(t *testing.T) {
	e, r := newTestEngine(t)
	r.resizeErr = errors.New("configure failed")
	if err := e.Resize(640, 480); !errors.Is(err, r.resizeErr) {
		t.Fatalf("Resize = %v, want wrapped configure error", err)
	}
	if r.count("write camera") != 0 {
		t.Fatalf("camera uploaded after a failed reconfigure")
	}
}

func TestFrameReconfiguresLostSurface(t *testing.T) {
	e, r := newTestEngine(t)
	r.beginErrs = []error{fmt.Errorf("%w: acquire", renderer.ErrSurfaceLost)}

	if !e.Frame(0.016) {
		t.Fatalf("Frame stopped on a lost surface")
	}
	if r.count("resize 800x600") != 1 {
		t.Fatalf("expected one reconfigure at the current size, events %q", r.events)
	}
	if !e.Frame(0.016) {
		t.Fatalf("Frame after reconfigure returned false")
	}
	if r.count("present") != 1 {
		t.Fatalf("frame after reconfigure was not presented, events %q", r.events)
	}

	stats := e.Stats()
	if stats.Reconfigured != 1 || stats.Rendered != 1 {
		t.Fatalf("Stats = %+v, want 1 reconfigured and 1 rendered", stats)
	}
}

func TestFrameStopsWhenReconfigureFails(t *testing.T) {
	e, r := newTestEngine(t)
	r.beginErrs = []error{renderer.ErrSurfaceLost}
	r.resizeErr = errors.New("configure failed")

	if e.Frame(0.016) {
		t.Fatalf("Frame continued after a failed reconfigure")
	}
	select {
	case <-e.Done():
	default:
		t.Fatalf("failed reconfigure did not request exit")
	}
}

func TestFrameErrorTaxonomy(t *testing.T) {
	tests := []struct {
		name string
		err  error
		cont bool
	}{
		{"out of memory stops", renderer.ErrOutOfMemory, false},
		{"device lost stops", renderer.ErrDeviceLost, false},
		{"outdated skips", renderer.ErrSurfaceOutdated, true},
		{"timeout skips", renderer.ErrSurfaceTimeout, true},
		{"unknown skips", errors.New("something odd"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, r := newTestEngine(t)
			r.beginErrs = []error{fmt.Errorf("%w: acquire", tt.err)}

			if got := e.Frame(0.016); got != tt.cont {
				t.Fatalf("Frame = %v, want %v", got, tt.cont)
			}
			if r.count("resize 800x600") != 0 {
				t.Fatalf("surface reconfigured for %v", tt.err)
			}
			if tt.cont {
				if got := e.Stats().Skipped; got != 1 {
					t.Fatalf("Skipped = %d, want 1", got)
				}
				if !e.Frame(0.016) {
					t.Fatalf("next frame after a skip returned false")
				}
			}
		})
	}
}

func TestFrameStopsOnMissingPipeline(t *testing.T) {
	e, r := newTestEngine(t, WithPipelineKey("missing"))
	r.pass.pipelineErr = fmt.Errorf("%w: %q", renderer.ErrPipelineNotFound, "missing")

	if e.Frame(0.016) {
		t.Fatalf("Frame continued without a pipeline")
	}
	if r.count("end") != 1 || r.count("draw 3 [0,1)") != 0 {
		t.Fatalf("aborted frame not closed cleanly, events %q", r.events)
	}
}

func TestInputIsNeverConsumed(t *testing.T) {
	e, _ := newTestEngine(t)
	events := []input.KeyEvent{
		{Key: common.KeyW, Pressed: true},
		{Key: common.KeyRight, Pressed: true},
		{Key: common.KeyW, Pressed: false},
	}
	for _, ev := range events {
		if e.Input(ev) {
			t.Fatalf("Input(%+v) reported consumed", ev)
		}
	}
	keys := e.PressedKeys()
	if len(keys) != 1 || keys[0] != common.KeyRight {
		t.Fatalf("PressedKeys = %v, want [KeyRight]", keys)
	}
	select {
	case <-e.Done():
		t.Fatalf("movement keys requested exit")
	default:
	}
}

func TestEscapeRequestsExit(t *testing.T) {
	e, _ := newTestEngine(t)
	if e.Input(input.KeyEvent{Key: common.KeyEsc, Pressed: true}) {
		t.Fatalf("Escape reported consumed")
	}
	select {
	case <-e.Done():
	default:
		t.Fatalf("Escape did not request exit")
	}
	if e.Frame(0.016) {
		t.Fatalf("Frame continued after exit was requested")
	}
	e.Quit()
}

func TestHeldKeyMovesInstanceThroughFrame(t *testing.T) {
	e, r := newTestEngine(t)
	e.Input(input.KeyEvent{Key: common.KeyD, Pressed: true})
	e.Frame(0.5)

	pos := e.Scene().Instance().Position()
	if pos.X() != 50 || pos.Y() != 0 {
		t.Fatalf("instance position = %v, want (50, 0)", pos)
	}
	if r.count("write instance") != 1 {
		t.Fatalf("instance write count = %d, want 1", r.count("write instance"))
	}
}

func TestRunRequiresWindow(t *testing.T) {
	e, _ := newTestEngine(t)
	if err := e.Run(); !errors.Is(err, ErrNoWindow) {
		t.Fatalf("Run = %v, want ErrNoWindow", err)
	}
}

func TestSetRenderFrameLimit(t *testing.T) {
	e, _ := newTestEngine(t, WithRenderFrameLimit(120))
	impl := e.(*engine)
	if impl.renderFrameLimit <= 0 {
		t.Fatalf("frame limit not applied")
	}
	e.SetRenderFrameLimit(0)
	if impl.renderFrameLimit != 0 {
		t.Fatalf("frame limit = %v, want uncapped", impl.renderFrameLimit)
	}
}

func TestNewEnginePanicsOnNilCollaborators(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("NewEngine(nil, nil) did not panic")
		}
	}()
	NewEngine(nil, nil)
}

// fakeWindow runs the update callback until RequestClose, pressing Escape on the third iteration.
type fakeWindow struct {
	running  bool
	onUpdate func()
	onResize func(width, height int)
	onDown   func(uint32)
	onUp     func(uint32)
	onClose  func()
	loops    int
}

func (w *fakeWindow) SetUpdateCallback(cb func())                  { w.onUpdate = cb }
func (w *fakeWindow) SetResizeCallback(cb func(width, height int)) { w.onResize = cb }
func (w *fakeWindow) SetKeyDownCallback(cb func(uint32))           { w.onDown = cb }
func (w *fakeWindow) SetKeyUpCallback(cb func(uint32))             { w.onUp = cb }
func (w *fakeWindow) SetCloseCallback(cb func())                   { w.onClose = cb }
func (w *fakeWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor   { return nil }
func (w *fakeWindow) IsRunning() bool                              { return w.running }
func (w *fakeWindow) RequestClose()                                { w.running = false }
func (w *fakeWindow) Close() error                                 { return nil }
func (w *fakeWindow) Width() int                                   { return 800 }
func (w *fakeWindow) Height() int                                  { return 600 }

func (w *fakeWindow) ProcessMessages() {
	for w.running && w.loops < 100 {
		w.loops++
		switch w.loops {
		case 1:
			w.onResize(1024, 768)
		case 3:
			w.onDown(common.KeyEsc)
		}
		if w.running {
			w.onUpdate()
		}
	}
}

func TestRunDispatchesWindowEvents(t *testing.T) {
	w := &fakeWindow{running: true}
	e, r := newTestEngine(t, WithWindow(w))

	if err := e.Run(); err != nil {
		t.Fatalf("Run = %v, want nil", err)
	}
	if w.loops != 3 {
		t.Fatalf("window loops = %d, want 3", w.loops)
	}
	if r.count("present") != 2 {
		t.Fatalf("presented %d frames, want 2", r.count("present"))
	}
	if r.count("resize 1024x768") != 1 {
		t.Fatalf("window resize not forwarded, events %q", r.events)
	}
}

func TestRunReturnsFatalError(t *testing.T) {
	w := &fakeWindow{running: true}
	e, r := newTestEngine(t, WithWindow(w))
	r.beginErrs = []error{renderer.ErrOutOfMemory}

	if err := e.Run(); !errors.Is(err, renderer.ErrOutOfMemory) {
		t.Fatalf("Run = %v, want ErrOutOfMemory", err)
	}
	if w.running {
		t.Fatalf("window still running after a fatal frame")
	}
}
