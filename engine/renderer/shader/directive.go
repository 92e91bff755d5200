package shader

import (
	"fmt"
	"strconv"
	"strings"
)

// directivePrefix marks a pre-processor directive inside a WGSL line comment, as in
// "//@plat4rs:include camera".
const directivePrefix = "@plat4rs:"

// StructType names an engine struct whose WGSL definition the pre-processor can inject.
type StructType string

const (
	StructCamera   StructType = "camera"
	StructVertex   StructType = "vertex"
	StructInstance StructType = "instance"
)

// AddressSpace is the storage class requested by a group directive.
type AddressSpace string

const (
	AddressUniform          AddressSpace = "storage_uniform"
	AddressStorageRead      AddressSpace = "storage_read"
	AddressStorageReadWrite AddressSpace = "storage_read_write"
)

var addressSpaceDecls = map[AddressSpace]string{
	AddressUniform:          "var<uniform>",
	AddressStorageRead:      "var<storage, read>",
	AddressStorageReadWrite: "var<storage, read_write>",
}

// Declaration is a bind group variable requested with
//
//	//@plat4rs:group <group> <binding> <address_space> <var_name> <struct_type>
//
// where struct_type may be wrapped as array<struct_type>.
type Declaration struct {
	Group   *int
	Binding *int

	AddressSpace AddressSpace
	Name         string
	Struct       StructType
	Array        bool

	// Line is the 1-based source line of the directive.
	Line int
}

// directive is one parsed comment line. Exactly one of include or decl is set.
type directive struct {
	include StructType
	decl    *Declaration
}

// parseDirective reads a directive from a WGSL line. Lines that are not comments, and comments
// without the prefix, report ok == false.
//
// Parameters:
//   - line: the raw source line
//   - lineNum: the 1-based line number used in errors
//
// Returns:
//   - directive: the parsed directive
//   - bool: whether the line held a directive
//   - error: a malformed directive or an unknown argument
func parseDirective(line string, lineNum int) (directive, bool, error) {
	comment, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return directive{}, false, nil
	}
	_, body, ok := strings.Cut(comment, directivePrefix)
	if !ok {
		return directive{}, false, nil
	}

	fields := strings.Fields(body)
	if len(fields) == 0 {
		return directive{}, false, fmt.Errorf("line %d: empty directive", lineNum)
	}
	kind, args := fields[0], fields[1:]

	switch kind {
	case "include":
		if len(args) != 1 {
			return directive{}, false, fmt.Errorf("line %d: include takes exactly one argument, got %d", lineNum, len(args))
		}
		st, err := structType(args[0])
		if err != nil {
			return directive{}, false, fmt.Errorf("line %d: include: %w", lineNum, err)
		}
		return directive{include: st}, true, nil
	case "group":
		d, err := parseDeclaration(args)
		if err != nil {
			return directive{}, false, fmt.Errorf("line %d: group: %w", lineNum, err)
		}
		d.Line = lineNum
		return directive{decl: d}, true, nil
	}
	return directive{}, false, fmt.Errorf("line %d: unknown directive %q", lineNum, kind)
}

func parseDeclaration(args []string) (*Declaration, error) {
	if len(args) != 5 {
		return nil, fmt.Errorf("want exactly five arguments (group, binding, address space, name, struct type), got %d", len(args))
	}
	group, err := strconv.Atoi(args[0])
	if err != nil {
		return nil, fmt.Errorf("group index %q: %w", args[0], err)
	}
	binding, err := strconv.Atoi(args[1])
	if err != nil {
		return nil, fmt.Errorf("binding index %q: %w", args[1], err)
	}
	space := AddressSpace(args[2])
	if _, ok := addressSpaceDecls[space]; !ok {
		return nil, fmt.Errorf("unknown address space %q", args[2])
	}

	typeArg, isArray := strings.CutPrefix(args[4], "array<")
	if isArray {
		typeArg = strings.TrimSuffix(typeArg, ">")
	}
	st, err := structType(typeArg)
	if err != nil {
		return nil, err
	}
	return &Declaration{
		Group:        &group,
		Binding:      &binding,
		AddressSpace: space,
		Name:         args[3],
		Struct:       st,
		Array:        isArray,
	}, nil
}

func structType(arg string) (StructType, error) {
	switch st := StructType(arg); st {
	case StructCamera, StructVertex, StructInstance:
		return st, nil
	}
	return "", fmt.Errorf("unknown struct type %q", arg)
}
