package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ShaderType is the pipeline stage a Shader is built for.
type ShaderType int

const (
	ShaderTypeVertex ShaderType = iota
	ShaderTypeFragment
)

// String returns the WGSL stage attribute name, "vertex" or "fragment".
func (t ShaderType) String() string {
	switch t {
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	}
	return fmt.Sprintf("ShaderType(%d)", int(t))
}

func (t ShaderType) visibility() (wgpu.ShaderStage, bool) {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex, true
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment, true
	}
	return 0, false
}

// Shader is one stage of a WGSL program after directive expansion, with the layouts a render
// pipeline needs read from the source.
type Shader interface {
	// Key is the unique name the shader is registered under.
	Key() string

	// ShaderType returns the stage the shader was built for.
	ShaderType() ShaderType

	// Source returns the WGSL after directive expansion.
	Source() string

	// EntryPoint returns the name of the stage's entry function, e.g. "vs_main".
	EntryPoint() string

	// Module returns the descriptor used to compile the source on a device.
	Module() *wgpu.ShaderModuleDescriptor

	// VertexLayouts returns the vertex buffer layouts by slot, per-vertex inputs before
	// per-instance inputs. It is nil for fragment shaders.
	VertexLayouts() []wgpu.VertexBufferLayout

	// BindGroupLayoutDescriptor returns the layout declared for a group, or a zero descriptor.
	//
	// Parameters:
	//   - group: the @group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: entries sorted by binding
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every declared layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable declared at group and binding, or "".
	BindGroupVarName(group, binding int) string

	// Declarations returns the group directives of the source in order.
	Declarations() []Declaration
}

var _ Shader = &shader{}

type shader struct {
	key        string
	shaderType ShaderType
	module     *wgpu.ShaderModuleDescriptor
	entryPoint string

	vertexLayouts []wgpu.VertexBufferLayout
	groups        map[int]wgpu.BindGroupLayoutDescriptor
	varNames      map[int]map[int]string
	decls         []Declaration
}

var errEmptySource = errors.New("empty source")

// NewShader expands the directives in source and reads the entry point and layouts of the given
// stage. A vertex and a fragment Shader can share one source file.
//
// Parameters:
//   - key: the name the shader is registered under
//   - shaderType: ShaderTypeVertex or ShaderTypeFragment
//   - source: raw WGSL, usually read through the loader
//
// Returns:
//   - Shader: the parsed shader
//   - error: empty source, a malformed directive, or a missing entry point
func NewShader(key string, shaderType ShaderType, source string) (Shader, error) {
	s, err := parseShader(key, shaderType, source)
	if err != nil {
		return nil, fmt.Errorf("shader %s: %w", key, err)
	}
	return s, nil
}

func parseShader(key string, shaderType ShaderType, source string) (*shader, error) {
	if source == "" {
		return nil, errEmptySource
	}
	visibility, ok := shaderType.visibility()
	if !ok {
		return nil, fmt.Errorf("unsupported shader type %s", shaderType)
	}

	pp := NewPreProcessor()
	code, err := pp.Process(source)
	if err != nil {
		return nil, fmt.Errorf("pre-process: %w", err)
	}

	src := scanWGSL(code)
	s := &shader{
		key:        key,
		shaderType: shaderType,
		module: &wgpu.ShaderModuleDescriptor{
			Label:          key,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: code},
		},
		entryPoint: src.entryPoint(shaderType),
		decls:      pp.Declarations(),
	}
	if s.entryPoint == "" {
		return nil, fmt.Errorf("no @%s entry point found", shaderType)
	}
	if shaderType == ShaderTypeVertex {
		s.vertexLayouts = src.vertexLayouts()
	}
	s.groups, s.varNames = src.bindGroups(visibility)
	return s, nil
}

func (s *shader) Key() string                                { return s.key }
func (s *shader) ShaderType() ShaderType                     { return s.shaderType }
func (s *shader) Source() string                             { return s.module.WGSLDescriptor.Code }
func (s *shader) EntryPoint() string                         { return s.entryPoint }
func (s *shader) Module() *wgpu.ShaderModuleDescriptor       { return s.module }
func (s *shader) VertexLayouts() []wgpu.VertexBufferLayout   { return s.vertexLayouts }
func (s *shader) Declarations() []Declaration                { return s.decls }
func (s *shader) BindGroupVarName(group, binding int) string { return s.varNames[group][binding] }

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.groups[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.groups
}
