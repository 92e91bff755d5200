package shader

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

func loadSceneSource(t *testing.T) string {
	t.Helper()
	data, err := os.ReadFile("../../../resources/shaders/scene.wgsl")
	if err != nil {
		t.Fatalf("failed to read scene shader: %v", err)
	}
	return string(data)
}

func TestNewShaderVertexLayouts(t *testing.T) {
	s, err := NewShader("scene_vs", ShaderTypeVertex, loadSceneSource(t))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if got := s.EntryPoint(); got != "vs_main" {
		t.Fatalf("EntryPoint = %q, want vs_main", got)
	}

	layouts := s.VertexLayouts()
	if len(layouts) != 2 {
		t.Fatalf("got %d vertex layouts, want 2", len(layouts))
	}

	vertex := layouts[0]
	if vertex.StepMode != wgpu.VertexStepModeVertex {
		t.Errorf("slot 0 step mode = %v, want vertex", vertex.StepMode)
	}
	if vertex.ArrayStride != 24 {
		t.Errorf("slot 0 stride = %d, want 24", vertex.ArrayStride)
	}
	wantVertexAttrs := []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	}
	if len(vertex.Attributes) != len(wantVertexAttrs) {
		t.Fatalf("slot 0 has %d attributes, want %d", len(vertex.Attributes), len(wantVertexAttrs))
	}
	for i, want := range wantVertexAttrs {
		if vertex.Attributes[i] != want {
			t.Errorf("slot 0 attribute %d = %+v, want %+v", i, vertex.Attributes[i], want)
		}
	}

	inst := layouts[1]
	if inst.StepMode != wgpu.VertexStepModeInstance {
		t.Errorf("slot 1 step mode = %v, want instance", inst.StepMode)
	}
	if inst.ArrayStride != 64 {
		t.Errorf("slot 1 stride = %d, want 64", inst.ArrayStride)
	}
	for i, attr := range inst.Attributes {
		if attr.Format != wgpu.VertexFormatFloat32x4 {
			t.Errorf("slot 1 attribute %d format = %v, want Float32x4", i, attr.Format)
		}
		if attr.ShaderLocation != uint32(2+i) {
			t.Errorf("slot 1 attribute %d location = %d, want %d", i, attr.ShaderLocation, 2+i)
		}
		if attr.Offset != uint64(16*i) {
			t.Errorf("slot 1 attribute %d offset = %d, want %d", i, attr.Offset, 16*i)
		}
	}
}

func TestNewShaderCameraBindGroup(t *testing.T) {
	s, err := NewShader("scene_vs", ShaderTypeVertex, loadSceneSource(t))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}

	desc := s.BindGroupLayoutDescriptor(0)
	if len(desc.Entries) != 1 {
		t.Fatalf("group 0 has %d entries, want 1", len(desc.Entries))
	}
	entry := desc.Entries[0]
	if entry.Binding != 0 {
		t.Errorf("binding = %d, want 0", entry.Binding)
	}
	if entry.Buffer.Type != wgpu.BufferBindingTypeUniform {
		t.Errorf("buffer type = %v, want uniform", entry.Buffer.Type)
	}
	if entry.Buffer.MinBindingSize != 64 {
		t.Errorf("MinBindingSize = %d, want 64", entry.Buffer.MinBindingSize)
	}
	if entry.Visibility != wgpu.ShaderStageVertex {
		t.Errorf("visibility = %v, want vertex", entry.Visibility)
	}
	if got := s.BindGroupVarName(0, 0); got != "camera" {
		t.Errorf("BindGroupVarName(0, 0) = %q, want camera", got)
	}

	decls := s.Declarations()
	if len(decls) != 1 || *decls[0].Group != 0 || *decls[0].Binding != 0 {
		t.Fatalf("unexpected declarations %+v", decls)
	}
}

func TestNewShaderFragment(t *testing.T) {
	s, err := NewShader("scene_fs", ShaderTypeFragment, loadSceneSource(t))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if got := s.EntryPoint(); got != "fs_main" {
		t.Fatalf("EntryPoint = %q, want fs_main", got)
	}
	if s.VertexLayouts() != nil {
		t.Fatalf("fragment shader should not carry vertex layouts")
	}
	if s.Module() == nil || s.Module().WGSLDescriptor.Code != s.Source() {
		t.Fatalf("module descriptor does not carry the processed source")
	}
}

func TestNewShaderErrors(t *testing.T) {
	cases := []struct {
		name   string
		typ    ShaderType
		source string
		want   string
	}{
		{"empty source", ShaderTypeVertex, "", "empty source"},
		{"unknown include", ShaderTypeVertex, "//@plat4rs:include lights\n@vertex fn vs_main() {}", "unknown struct type"},
		{"bad group arity", ShaderTypeVertex, "//@plat4rs:group 0 0 storage_uniform camera\n@vertex fn vs_main() {}", "exactly five arguments"},
		{"bad address space", ShaderTypeVertex, "//@plat4rs:group 0 0 private camera camera\n@vertex fn vs_main() {}", "unknown address space"},
		{"missing entry point", ShaderTypeFragment, "@vertex fn vs_main() {}", "no @fragment entry point"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewShader("broken", tc.typ, tc.source)
			if err == nil {
				t.Fatalf("NewShader succeeded, want error containing %q", tc.want)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not contain %q", err, tc.want)
			}
		})
	}

	_, err := NewShader("broken", ShaderTypeVertex, "")
	if !errors.Is(err, errEmptySource) {
		t.Fatalf("empty source error should wrap errEmptySource, got %v", err)
	}
}

func TestPreProcessorIncludesOnce(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@plat4rs:include camera\n//@plat4rs:include camera\n")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if n := strings.Count(out, "struct CameraUniform"); n != 1 {
		t.Fatalf("CameraUniform injected %d times, want 1", n)
	}
}

func TestPreProcessorGroupDeclaration(t *testing.T) {
	pp := NewPreProcessor()
	out, err := pp.Process("//@plat4rs:group 1 2 storage_read transforms array<instance>")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	want := "@group(1) @binding(2) var<storage, read> transforms: array<InstanceInput>;"
	if out != want {
		t.Fatalf("Process = %q, want %q", out, want)
	}
	if len(pp.Declarations()) != 1 {
		t.Fatalf("got %d declarations, want 1", len(pp.Declarations()))
	}
}

func TestPreProcessorIgnoresDirectiveOutsideComments(t *testing.T) {
	pp := NewPreProcessor()
	src := "let tag = \"@plat4rs:include camera\";"
	out, err := pp.Process(src)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if out != src {
		t.Fatalf("non-comment line was rewritten: %q", out)
	}
}
