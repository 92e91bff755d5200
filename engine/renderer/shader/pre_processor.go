package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/plat4rs-go/engine/camera"
	"github.com/Carmen-Shannon/plat4rs-go/engine/instance"
	"github.com/Carmen-Shannon/plat4rs-go/engine/model"
)

// structSource is the WGSL definition of an engine struct and the type name it declares.
type structSource struct {
	code     string
	typeName string
}

var engineStructs = map[StructType]structSource{
	StructCamera:   {code: camera.GPUCameraUniformSource, typeName: "CameraUniform"},
	StructVertex:   {code: model.GPUVertexSource, typeName: "VertexInput"},
	StructInstance: {code: instance.GPUInstanceRawSource, typeName: "InstanceInput"},
}

// PreProcessor expands //@plat4rs: directives in WGSL source. An include directive is replaced
// by the definition of an engine struct, and a group directive by the matching
// @group/@binding variable.
type PreProcessor interface {
	// Process expands the directives in source. Each struct is included at most once, however
	// many times it is requested.
	//
	// Parameters:
	//   - source: WGSL source carrying directives
	//
	// Returns:
	//   - string: the expanded source
	//   - error: the first malformed directive
	Process(source string) (string, error)

	// Declarations returns the group directives of the last Process call in source order.
	Declarations() []Declaration
}

var _ PreProcessor = &preProcessor{}

type preProcessor struct {
	decls []Declaration
}

// NewPreProcessor returns a PreProcessor that knows the camera, vertex and instance structs.
func NewPreProcessor() PreProcessor {
	return &preProcessor{}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.decls = nil
	seen := make(map[StructType]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))
	for i, line := range lines {
		d, ok, err := parseDirective(line, i+1)
		if err != nil {
			return "", err
		}

		var expanded string
		switch {
		case !ok:
			expanded = line
		case d.decl != nil:
			expanded = d.decl.wgsl()
			p.decls = append(p.decls, *d.decl)
		case seen[d.include]:
			continue
		default:
			seen[d.include] = true
			expanded = strings.TrimRight(engineStructs[d.include].code, "\n")
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Declaration {
	return p.decls
}

// wgsl renders the declaration as a module-scope variable.
func (d Declaration) wgsl() string {
	typeName := engineStructs[d.Struct].typeName
	if d.Array {
		typeName = "array<" + typeName + ">"
	}
	return fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *d.Group, *d.Binding, addressSpaceDecls[d.AddressSpace], d.Name, typeName)
}
