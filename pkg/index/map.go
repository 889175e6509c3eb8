package index

import (
	"maps"
	"slices"
)

// Map is a bidirectional map between global indices and compact local
// positions, with support for allocation.
//
// Local positions are handed out in allocation order starting from 0.
type Map struct {
	locals  map[int]int
	globals []int
}

// NewMap returns a new, empty index map.
func NewMap() *Map {
	return &Map{locals: make(map[int]int)}
}

// MapWithGlobals returns a new map initialized with the given global
// indices, sequentially assigning local positions to them.
func MapWithGlobals(globals ...int) *Map {
	m := NewMap()
	for _, global := range globals {
		_ = m.Allocate(global)
	}
	return m
}

// Allocate returns the local position for the given global index,
// allocating one if needed.
func (m *Map) Allocate(global int) (local int) {
	local, ok := m.locals[global]
	if !ok {
		local = len(m.globals)
		m.globals = append(m.globals, global)
		m.locals[global] = local
	}
	return
}

// Local returns the local position of the given global index.
func (m *Map) Local(global int) (local int, ok bool) {
	local, ok = m.locals[global]
	return
}

// Global returns the global index at the given local position.
func (m *Map) Global(local int) (global int, ok bool) {
	if ok = local >= 0 && local < len(m.globals); ok {
		global = m.globals[local]
	}
	return
}

// Len returns the number of allocated indices.
func (m *Map) Len() int { return len(m.globals) }

// Clear clears the map.  Subsequent allocation starts from 0 again.
func (m *Map) Clear() {
	clear(m.locals)
	m.globals = nil
}

// Globals returns (a copy of) the local-to-global array.
func (m *Map) Globals() []int {
	return slices.Clone(m.globals)
}

// Locals returns (a copy of) the global-to-local map.
func (m *Map) Locals() map[int]int {
	return maps.Clone(m.locals)
}
