package shader

import "testing"

func TestParseDirective(t *testing.T) {
	d, ok, err := parseDirective("  // @plat4rs:group 2 3 storage_read_write particles array<vertex>", 7)
	if err != nil || !ok {
		t.Fatalf("parseDirective: ok=%v err=%v", ok, err)
	}
	decl := d.decl
	if decl == nil || *decl.Group != 2 || *decl.Binding != 3 || decl.Line != 7 {
		t.Fatalf("decl = %+v", decl)
	}
	if decl.AddressSpace != AddressStorageReadWrite || decl.Struct != StructVertex || !decl.Array || decl.Name != "particles" {
		t.Fatalf("decl = %+v", decl)
	}
	if got, want := decl.wgsl(), "@group(2) @binding(3) var<storage, read_write> particles: array<VertexInput>;"; got != want {
		t.Fatalf("wgsl = %q, want %q", got, want)
	}

	d, ok, err = parseDirective("//@plat4rs:include instance", 1)
	if err != nil || !ok || d.include != StructInstance || d.decl != nil {
		t.Fatalf("include = %+v ok=%v err=%v", d, ok, err)
	}

	for _, line := range []string{"// plain comment", "fn main() {}", ""} {
		if _, ok, err := parseDirective(line, 1); ok || err != nil {
			t.Errorf("parseDirective(%q) ok=%v err=%v, want no directive", line, ok, err)
		}
	}

	for _, line := range []string{"//@plat4rs:", "//@plat4rs:define X", "//@plat4rs:include", "//@plat4rs:group x 0 storage_read a camera"} {
		if _, _, err := parseDirective(line, 1); err == nil {
			t.Errorf("parseDirective(%q) succeeded, want error", line)
		}
	}
}
