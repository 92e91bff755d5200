package input

import "slices"

// KeyEvent is a single key transition delivered by the window.
type KeyEvent struct {
	// Key is the GLFW key code (see the common package constants).
	Key uint32
	// Pressed is true for a key press and false for a release.
	Pressed bool
}

// PressedKeys is the set of keys currently held down, kept in the order they were pressed.
// The zero value is an empty set ready to use. It is owned by the engine and only mutated
// through its input entry point; controllers read it.
type PressedKeys struct {
	keys []uint32
}

// Apply records a key transition. Pressing a key that is already held keeps its original
// position in the press order, so key repeat does not change which key was pressed last.
//
// Parameters:
//   - ev: the key event to record
func (p *PressedKeys) Apply(ev KeyEvent) {
	idx := slices.Index(p.keys, ev.Key)
	switch {
	case ev.Pressed && idx < 0:
		p.keys = append(p.keys, ev.Key)
	case !ev.Pressed && idx >= 0:
		p.keys = slices.Delete(p.keys, idx, idx+1)
	}
}

// Held reports whether key is currently held.
//
// Parameters:
//   - key: the key code to check
//
// Returns:
//   - bool: true if the key is held
func (p *PressedKeys) Held(key uint32) bool {
	return slices.Contains(p.keys, key)
}

// Keys returns the held keys in press order, oldest first.
//
// Returns:
//   - []uint32: a copy of the held keys
func (p *PressedKeys) Keys() []uint32 {
	return slices.Clone(p.keys)
}

// Len returns the number of held keys.
func (p *PressedKeys) Len() int {
	return len(p.keys)
}

// Reset releases every key, e.g. when the window loses focus.
func (p *PressedKeys) Reset() {
	p.keys = p.keys[:0]
}
