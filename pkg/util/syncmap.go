package util

import "sync"

// SyncMap is a type-safe wrapper around sync.Map.
type SyncMap[K comparable, V any] struct {
	mapping sync.Map
}

func (m *SyncMap[K, V]) Load(key K) (value V, ok bool) {
	v, ok := m.mapping.Load(key)
	if ok {
		value = v.(V)
	}
	return
}

func (m *SyncMap[K, V]) LoadOrStore(key K, value V) (actual V, loaded bool) {
	v, loaded := m.mapping.LoadOrStore(key, value)
	return v.(V), loaded
}

func (m *SyncMap[K, V]) LoadAndDelete(key K) (value V, loaded bool) {
	v, loaded := m.mapping.LoadAndDelete(key)
	if loaded {
		value = v.(V)
	}
	return
}
