package input

import (
	"testing"

	"github.com/Carmen-Shannon/plat4rs-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

type point struct{ pos mgl32.Vec2 }

func (p *point) Update(direction mgl32.Vec2, dt, speed float32) {
	p.pos = p.pos.Add(direction.Mul(speed * dt))
}

func press(keys *PressedKeys, codes ...uint32) {
	for _, k := range codes {
		keys.Apply(KeyEvent{Key: k, Pressed: true})
	}
}

func TestNoKeysProducesNoDisplacement(t *testing.T) {
	c := NewController(WithSpeed(50))
	var keys PressedKeys

	for _, dt := range []float32{0, 0.016, 1, 30} {
		p := &point{}
		c.SetDirection(&keys)
		c.Apply(p, dt)
		if p.pos != (mgl32.Vec2{}) {
			t.Fatalf("dt=%v moved the target to %v", dt, p.pos)
		}
	}
}

func TestRightHeldMovesSpeedTimesDt(t *testing.T) {
	const speed = 120
	for _, key := range []uint32{common.KeyD, common.KeyRight} {
		for _, dt := range []float32{0, 0.5, 0.016, 2} {
			c := NewController(WithSpeed(speed))
			var keys PressedKeys
			press(&keys, key)

			p := &point{}
			c.SetDirection(&keys)
			c.Apply(p, dt)

			if want := (mgl32.Vec2{speed * dt, 0}); p.pos != want {
				t.Fatalf("key %d dt=%v moved to %v, want %v", key, dt, p.pos, want)
			}
		}
	}
}

func TestBindingsAndTargets(t *testing.T) {
	cases := []struct {
		key    uint32
		target Target
		want   mgl32.Vec2
	}{
		{common.KeyW, TargetInstance, mgl32.Vec2{0, -1}},
		{common.KeyUp, TargetInstance, mgl32.Vec2{0, -1}},
		{common.KeyS, TargetInstance, mgl32.Vec2{0, 1}},
		{common.KeyDown, TargetInstance, mgl32.Vec2{0, 1}},
		{common.KeyA, TargetInstance, mgl32.Vec2{-1, 0}},
		{common.KeyLeft, TargetInstance, mgl32.Vec2{-1, 0}},
		{common.KeyD, TargetInstance, mgl32.Vec2{1, 0}},
		{common.KeyRight, TargetInstance, mgl32.Vec2{1, 0}},
		{common.KeyW, TargetCamera, mgl32.Vec2{0, 1}},
		{common.KeyS, TargetCamera, mgl32.Vec2{0, -1}},
		{common.KeyA, TargetCamera, mgl32.Vec2{1, 0}},
		{common.KeyD, TargetCamera, mgl32.Vec2{-1, 0}},
		{common.KeySpace, TargetInstance, mgl32.Vec2{}},
	}

	for _, tc := range cases {
		c := NewController(WithTarget(tc.target))
		var keys PressedKeys
		press(&keys, tc.key)
		c.SetDirection(&keys)
		if got := c.Vector(); got != tc.want {
			t.Errorf("key %d target %s vector = %v, want %v", tc.key, tc.target, got, tc.want)
		}
	}
}

func TestLastPressedWins(t *testing.T) {
	c := NewController()
	var keys PressedKeys

	press(&keys, common.KeyA, common.KeyD)
	c.SetDirection(&keys)
	if got := c.Direction(); got != DirectionRight {
		t.Fatalf("A then D: direction = %s, want right", got)
	}

	// releasing the newest key hands control back to the older one
	keys.Apply(KeyEvent{Key: common.KeyD, Pressed: false})
	c.SetDirection(&keys)
	if got := c.Direction(); got != DirectionLeft {
		t.Fatalf("after releasing D: direction = %s, want left", got)
	}

	// unbound keys pressed later do not override
	press(&keys, common.KeySpace)
	c.SetDirection(&keys)
	if got := c.Direction(); got != DirectionLeft {
		t.Fatalf("after Space: direction = %s, want left", got)
	}

	// a diagonal is not summed
	press(&keys, common.KeyW)
	c.SetDirection(&keys)
	if got := c.Vector(); got != (mgl32.Vec2{0, -1}) {
		t.Fatalf("A then W: vector = %v, want (0, -1)", got)
	}
}

func TestPressedKeysRepeatKeepsOrder(t *testing.T) {
	var keys PressedKeys
	press(&keys, common.KeyA, common.KeyD, common.KeyA)

	got := keys.Keys()
	if len(got) != 2 || got[0] != common.KeyA || got[1] != common.KeyD {
		t.Fatalf("Keys = %v, want [A D]", got)
	}
	if !keys.Held(common.KeyA) || keys.Held(common.KeyW) {
		t.Fatalf("Held reports the wrong keys")
	}

	keys.Apply(KeyEvent{Key: common.KeyW, Pressed: false})
	if keys.Len() != 2 {
		t.Fatalf("releasing an unheld key changed the set")
	}

	keys.Reset()
	if keys.Len() != 0 {
		t.Fatalf("Reset left %d keys", keys.Len())
	}
}

func TestCameraControllerAndCustomBindings(t *testing.T) {
	c := NewCameraController(WithSpeed(2), WithBindings(map[uint32]Direction{common.KeySpace: DirectionUp}))
	if c.Target() != TargetCamera || c.Speed() != 2 {
		t.Fatalf("unexpected controller %s speed %v", c.Target(), c.Speed())
	}
	var keys PressedKeys
	press(&keys, common.KeyW, common.KeySpace)
	c.SetDirection(&keys)
	if c.Direction() != DirectionUp {
		t.Fatalf("custom binding ignored, direction = %s", c.Direction())
	}

	c.SetDirection(nil)
	if c.Direction() != DirectionNone {
		t.Fatalf("nil keys should clear the direction")
	}
}

func TestParseTarget(t *testing.T) {
	for in, want := range map[string]Target{"instance": TargetInstance, "model": TargetInstance, "camera": TargetCamera} {
		got, err := ParseTarget(in)
		if err != nil || got != want {
			t.Errorf("ParseTarget(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseTarget("player"); err == nil {
		t.Errorf("ParseTarget accepted an unknown target")
	}
}
