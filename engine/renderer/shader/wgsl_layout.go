package shader

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cogentcore/webgpu/wgpu"
)

var (
	vectorTypeRegex = regexp.MustCompile(`^vec([234])(?:<(\w+)>|([fiuh]))$`)
	matrixTypeRegex = regexp.MustCompile(`^mat([234])x([234])(?:<(\w+)>|([fh]))$`)
)

var scalarSuffix = map[string]string{"f": "f32", "i": "i32", "u": "u32", "h": "f16"}

var vertexFormats = map[string][4]wgpu.VertexFormat{
	"f32": {wgpu.VertexFormatFloat32, wgpu.VertexFormatFloat32x2, wgpu.VertexFormatFloat32x3, wgpu.VertexFormatFloat32x4},
	"i32": {wgpu.VertexFormatSint32, wgpu.VertexFormatSint32x2, wgpu.VertexFormatSint32x3, wgpu.VertexFormatSint32x4},
	"u32": {wgpu.VertexFormatUint32, wgpu.VertexFormatUint32x2, wgpu.VertexFormatUint32x3, wgpu.VertexFormatUint32x4},
}

// typeLayout is the host-shareable byte size and alignment of a WGSL type.
type typeLayout struct {
	size  uint64
	align uint64
}

// numericType is a scalar, vector or matrix type. Scalars and vectors have cols == 1, and a
// scalar has rows == 1.
type numericType struct {
	scalar string
	cols   int
	rows   int
}

// parseType recognizes scalar, vector, matrix and atomic type names in both the generic form
// (vec3<f32>) and the suffixed alias form (vec3f).
func parseType(name string) (numericType, bool) {
	name = strings.ReplaceAll(name, " ", "")
	switch name {
	case "f32", "i32", "u32", "f16", "bool":
		return numericType{scalar: name, cols: 1, rows: 1}, true
	case "atomic<u32>", "atomic<i32>":
		return numericType{scalar: name[7:10], cols: 1, rows: 1}, true
	}
	if m := vectorTypeRegex.FindStringSubmatch(name); m != nil {
		n, _ := strconv.Atoi(m[1])
		return numericType{scalar: scalarName(m[2], m[3]), cols: 1, rows: n}, true
	}
	if m := matrixTypeRegex.FindStringSubmatch(name); m != nil {
		c, _ := strconv.Atoi(m[1])
		r, _ := strconv.Atoi(m[2])
		return numericType{scalar: scalarName(m[3], m[4]), cols: c, rows: r}, true
	}
	return numericType{}, false
}

func scalarName(generic, suffix string) string {
	if generic != "" {
		return generic
	}
	return scalarSuffix[suffix]
}

func (t numericType) scalarBytes() uint64 {
	if t.scalar == "f16" {
		return 2
	}
	return 4
}

// vertexFormat maps a 32-bit scalar or vector to its vertex attribute format.
func (t numericType) vertexFormat() (wgpu.VertexFormat, bool) {
	formats, ok := vertexFormats[t.scalar]
	if !ok || t.cols != 1 {
		return 0, false
	}
	return formats[t.rows-1], true
}

// size is the packed attribute size used for vertex buffer offsets.
func (t numericType) size() uint64 {
	return uint64(t.cols*t.rows) * t.scalarBytes()
}

// layout applies the WGSL alignment rules: vec2 aligns to two components, vec3 and vec4 to four,
// and a matrix is an array of its column vectors.
func (t numericType) layout() typeLayout {
	s := t.scalarBytes()
	column := typeLayout{size: uint64(t.rows) * s, align: s}
	switch t.rows {
	case 2:
		column.align = 2 * s
	case 3, 4:
		column.align = 4 * s
	}
	if t.cols == 1 {
		return column
	}
	stride := alignUp(column.align, column.size)
	return typeLayout{size: uint64(t.cols) * stride, align: column.align}
}

// alignUp rounds value up to a multiple of align, which must be a power of two.
func alignUp(align, value uint64) uint64 {
	if align == 0 {
		return value
	}
	return (value + align - 1) &^ (align - 1)
}

// layoutOf resolves the size and alignment of a type declared in or built into the source.
// A runtime-sized array counts as one element, the smallest binding that can be useful.
// Struct layouts are cached. Self-referencing or unknown types fail to resolve.
//
// Parameters:
//   - name: the WGSL type name, e.g. "CameraUniform" or "array<vec4<f32>, 4>"
//   - visiting: structs currently being resolved, nil at the top level
//
// Returns:
//   - typeLayout: the resolved layout
//   - bool: whether the type could be resolved
func (w *wgslSource) layoutOf(name string, visiting map[string]bool) (typeLayout, bool) {
	name = strings.TrimSpace(name)
	if t, ok := parseType(name); ok {
		return t.layout(), true
	}

	if inner, ok := strings.CutPrefix(name, "array<"); ok && strings.HasSuffix(inner, ">") {
		parts := splitTopLevel(inner[:len(inner)-1])
		elem, ok := w.layoutOf(parts[0], visiting)
		if !ok {
			return typeLayout{}, false
		}
		count := uint64(1)
		if len(parts) == 2 {
			n, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
			if err != nil {
				return typeLayout{}, false
			}
			count = n
		}
		return typeLayout{size: count * alignUp(elem.align, elem.size), align: elem.align}, true
	}

	if l, ok := w.sizes[name]; ok {
		return l, true
	}
	st, ok := w.byName[name]
	if !ok || visiting[name] {
		return typeLayout{}, false
	}
	if visiting == nil {
		visiting = make(map[string]bool)
	}
	visiting[name] = true
	defer delete(visiting, name)

	var offset uint64
	maxAlign := uint64(1)
	for _, f := range st.fields {
		if f.builtin {
			continue
		}
		fl, ok := w.layoutOf(f.typeName, visiting)
		if !ok {
			return typeLayout{}, false
		}
		offset = alignUp(fl.align, offset) + fl.size
		maxAlign = max(maxAlign, fl.align)
	}
	l := typeLayout{size: alignUp(maxAlign, offset), align: maxAlign}
	w.sizes[name] = l
	return l, true
}
