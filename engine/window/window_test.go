package window

import "testing"

func TestResizedForwardsOnlyChanges(t *testing.T) {
	w := &engineWindow{width: 800, height: 600}
	var calls [][2]int
	w.SetResizeCallback(func(width, height int) {
		calls = append(calls, [2]int{width, height})
	})

	w.resized(800, 600)
	w.resized(1024, 768)
	w.resized(1024, 768)

	if len(calls) != 1 || calls[0] != [2]int{1024, 768} {
		t.Fatalf("resize calls = %v, want one call with 1024x768", calls)
	}
	if w.Width() != 1024 || w.Height() != 768 {
		t.Fatalf("size = %dx%d, want 1024x768", w.Width(), w.Height())
	}
}

func TestKeyChangedRoutesPressAndRelease(t *testing.T) {
	w := &engineWindow{}
	var down, up []uint32
	w.SetKeyDownCallback(func(k uint32) { down = append(down, k) })
	w.SetKeyUpCallback(func(k uint32) { up = append(up, k) })

	w.keyChanged(87, true)
	w.keyChanged(87, false)
	w.keyChanged(256, true)

	if len(down) != 2 || down[0] != 87 || down[1] != 256 {
		t.Fatalf("down = %v, want [87 256]", down)
	}
	if len(up) != 1 || up[0] != 87 {
		t.Fatalf("up = %v, want [87]", up)
	}
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{}
	if w.IsRunning() {
		t.Fatalf("uninitialized window reports running")
	}
	if w.SurfaceDescriptor() != nil {
		t.Fatalf("uninitialized window returned a surface descriptor")
	}
	if err := w.Close(); err != ErrNotInitialized {
		t.Fatalf("Close = %v, want ErrNotInitialized", err)
	}
	w.RequestClose()
	w.keyChanged(1, true)
}
