package shader

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	structBlockRegex  = regexp.MustCompile(`struct\s+(\w+)\s*\{([^}]*)\}`)
	attributeRegex    = regexp.MustCompile(`@(\w+)(?:\(([^)]*)\))?`)
	entryPointRegex   = regexp.MustCompile(`(?s)@(vertex|fragment)\b.*?\bfn\s+(\w+)`)
	resourceDeclRegex = regexp.MustCompile(`@group\((\d+)\)\s*@binding\((\d+)\)\s*var(?:<([^>]*)>)?\s+(\w+)\s*:\s*([^;]+?)\s*;`)
)

// wgslField is one member of a WGSL struct. location is -1 when the member has no @location.
type wgslField struct {
	name     string
	typeName string
	location int
	builtin  bool
}

type wgslStruct struct {
	name   string
	fields []wgslField
}

// vertexInput reports whether the struct feeds a vertex buffer: at least one @location member
// and no @builtin member, which rules out stage outputs carrying @builtin(position).
func (s wgslStruct) vertexInput() bool {
	located := false
	for _, f := range s.fields {
		if f.builtin {
			return false
		}
		if f.location >= 0 {
			located = true
		}
	}
	return located
}

// stepMode reports how the buffer bound to this input advances. Structs named Instance*
// advance once per instance.
func (s wgslStruct) stepMode() wgpu.VertexStepMode {
	if strings.HasPrefix(s.name, "Instance") {
		return wgpu.VertexStepModeInstance
	}
	return wgpu.VertexStepModeVertex
}

// wgslSource is pre-processed WGSL with comments removed and struct blocks parsed once, so
// entry point, vertex and binding queries share a single scan.
type wgslSource struct {
	code    string
	structs []wgslStruct
	byName  map[string]wgslStruct
	sizes   map[string]typeLayout
}

// scanWGSL strips comments from code and indexes its struct declarations.
//
// Parameters:
//   - code: pre-processed WGSL source
//
// Returns:
//   - *wgslSource: the scanned source
func scanWGSL(code string) *wgslSource {
	src := &wgslSource{
		code:   stripComments(code),
		byName: make(map[string]wgslStruct),
		sizes:  make(map[string]typeLayout),
	}
	for _, m := range structBlockRegex.FindAllStringSubmatch(src.code, -1) {
		st := wgslStruct{name: m[1], fields: parseFields(m[2])}
		src.structs = append(src.structs, st)
		src.byName[st.name] = st
	}
	return src
}

// entryPoint returns the name of the first function annotated for the given stage, or an empty
// string when the source declares none.
func (w *wgslSource) entryPoint(stage ShaderType) string {
	for _, m := range entryPointRegex.FindAllStringSubmatch(w.code, -1) {
		if m[1] == stage.String() {
			return m[2]
		}
	}
	return ""
}

// vertexLayouts builds one buffer layout per vertex input struct. Per-vertex inputs take the
// low slots in declaration order and per-instance inputs follow. A struct with a member that has
// no vertex format is left out.
//
// Returns:
//   - []wgpu.VertexBufferLayout: layouts indexed by vertex buffer slot
func (w *wgslSource) vertexLayouts() []wgpu.VertexBufferLayout {
	var vertex, instance []wgpu.VertexBufferLayout
	for _, st := range w.structs {
		if !st.vertexInput() {
			continue
		}
		layout, ok := bufferLayout(st)
		if !ok {
			continue
		}
		if layout.StepMode == wgpu.VertexStepModeInstance {
			instance = append(instance, layout)
		} else {
			vertex = append(vertex, layout)
		}
	}
	return append(vertex, instance...)
}

func bufferLayout(st wgslStruct) (wgpu.VertexBufferLayout, bool) {
	layout := wgpu.VertexBufferLayout{StepMode: st.stepMode()}
	for _, f := range st.fields {
		t, ok := parseType(f.typeName)
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		format, ok := t.vertexFormat()
		if !ok {
			return wgpu.VertexBufferLayout{}, false
		}
		layout.Attributes = append(layout.Attributes, wgpu.VertexAttribute{
			Format:         format,
			Offset:         layout.ArrayStride,
			ShaderLocation: uint32(f.location),
		})
		layout.ArrayStride += t.size()
	}
	return layout, true
}

// bindGroups collects every @group/@binding declaration into layout descriptors keyed by group,
// with entries sorted by binding. Buffer entries carry the byte size of their bound type as
// MinBindingSize so buffers can be allocated straight from the layout.
//
// Parameters:
//   - visibility: the stage flag applied to every entry
//
// Returns:
//   - map[int]wgpu.BindGroupLayoutDescriptor: descriptors keyed by group index
//   - map[int]map[int]string: declared variable names keyed by group then binding
func (w *wgslSource) bindGroups(visibility wgpu.ShaderStage) (map[int]wgpu.BindGroupLayoutDescriptor, map[int]map[int]string) {
	entries := make(map[int][]wgpu.BindGroupLayoutEntry)
	names := make(map[int]map[int]string)

	for _, m := range resourceDeclRegex.FindAllStringSubmatch(w.code, -1) {
		group, _ := strconv.Atoi(m[1])
		binding, _ := strconv.Atoi(m[2])

		entry := wgpu.BindGroupLayoutEntry{Binding: uint32(binding), Visibility: visibility}
		entry.Buffer.Type = bufferBindingType(strings.TrimSpace(m[3]))
		if entry.Buffer.Type != wgpu.BufferBindingTypeUndefined {
			if l, ok := w.layoutOf(strings.TrimSpace(m[5]), nil); ok {
				entry.Buffer.MinBindingSize = l.size
			}
		}
		entries[group] = append(entries[group], entry)

		if names[group] == nil {
			names[group] = make(map[int]string)
		}
		names[group][binding] = m[4]
	}

	descs := make(map[int]wgpu.BindGroupLayoutDescriptor, len(entries))
	for g, list := range entries {
		sort.Slice(list, func(i, j int) bool { return list[i].Binding < list[j].Binding })
		descs[g] = wgpu.BindGroupLayoutDescriptor{Entries: list}
	}
	return descs, names
}

// bufferBindingType maps a var<...> address space to a buffer binding type. Handle types such as
// textures and samplers have no address space and stay undefined, which the renderer rejects.
func bufferBindingType(space string) wgpu.BufferBindingType {
	switch {
	case space == "uniform":
		return wgpu.BufferBindingTypeUniform
	case strings.HasPrefix(space, "storage") && strings.Contains(space, "read_write"):
		return wgpu.BufferBindingTypeStorage
	case strings.HasPrefix(space, "storage"):
		return wgpu.BufferBindingTypeReadOnlyStorage
	default:
		return wgpu.BufferBindingTypeUndefined
	}
}

// parseFields splits a struct body into members. Commas inside angle brackets belong to the
// member type, as in array<vec4<f32>, 4>.
func parseFields(body string) []wgslField {
	var fields []wgslField
	for _, part := range splitTopLevel(body) {
		f := wgslField{location: -1}
		for _, attr := range attributeRegex.FindAllStringSubmatch(part, -1) {
			switch attr[1] {
			case "builtin":
				f.builtin = true
			case "location":
				if loc, err := strconv.Atoi(strings.TrimSpace(attr[2])); err == nil {
					f.location = loc
				}
			}
		}
		decl := strings.TrimSpace(attributeRegex.ReplaceAllString(part, ""))
		name, typeName, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		f.name = strings.TrimSpace(name)
		f.typeName = strings.TrimSpace(typeName)
		if f.name == "" || f.typeName == "" {
			continue
		}
		fields = append(fields, f)
	}
	return fields
}

func splitTopLevel(s string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '<':
			depth++
		case '>':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// stripComments removes line comments and nested block comments. Line breaks are kept so
// declarations on separate lines stay separate.
func stripComments(src string) string {
	var sb strings.Builder
	sb.Grow(len(src))
	depth := 0
	for i := 0; i < len(src); i++ {
		var next byte
		if i+1 < len(src) {
			next = src[i+1]
		}
		switch c := src[i]; {
		case c == '/' && next == '*':
			depth++
			i++
		case depth > 0 && c == '*' && next == '/':
			depth--
			i++
		case depth > 0:
		case c == '/' && next == '/':
			for i < len(src) && src[i] != '\n' {
				i++
			}
			if i < len(src) {
				sb.WriteByte('\n')
			}
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
