package common

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestOrthoZOMapsBoundsToClipSpace(t *testing.T) {
	m := OrthoZO(-400, 400, 300, -300, 0, 1)

	cases := []struct {
		name  string
		x, y  float32
		wantX float32
		wantY float32
	}{
		{"top left", -400, -300, -1, 1},
		{"top right", 400, -300, 1, 1},
		{"bottom left", -400, 300, -1, -1},
		{"bottom right", 400, 300, 1, -1},
		{"centre", 0, 0, 0, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := TransformPoint(m, tc.x, tc.y, 0)
			if !mgl32.FloatEqualThreshold(got.X(), tc.wantX, 1e-6) || !mgl32.FloatEqualThreshold(got.Y(), tc.wantY, 1e-6) {
				t.Fatalf("TransformPoint(%v, %v) = %v, want (%v, %v)", tc.x, tc.y, got, tc.wantX, tc.wantY)
			}
		})
	}
}

func TestOrthoZODepthRange(t *testing.T) {
	m := OrthoZO(-1, 1, -1, 1, 0, 1)
	near := m.Mul4x1(mgl32.Vec4{0, 0, 0, 1})
	far := m.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	if near.Z() != 0 {
		t.Errorf("near plane depth = %v, want 0", near.Z())
	}
	if far.Z() != 1 {
		t.Errorf("far plane depth = %v, want 1", far.Z())
	}
}

func TestScaleAboutKeepsCentreFixed(t *testing.T) {
	m := ScaleAbout(100, 50, 2)
	if got := TransformPoint(m, 100, 50, 0); got != (mgl32.Vec2{100, 50}) {
		t.Fatalf("centre moved to %v", got)
	}
	if got := TransformPoint(m, 101, 50, 0); got != (mgl32.Vec2{102, 50}) {
		t.Fatalf("offset point = %v, want (102, 50)", got)
	}
}

func TestPutMat4ColumnMajorLittleEndian(t *testing.T) {
	buf := make([]byte, 64)
	m := mgl32.Translate3D(3, 0, 0)
	PutMat4(buf, m)

	// translation x is element 12 in column-major order
	want := []byte{0x00, 0x00, 0x40, 0x40}
	for i, b := range want {
		if buf[48+i] != b {
			t.Fatalf("byte %d = %#x, want %#x", 48+i, buf[48+i], b)
		}
	}
}
