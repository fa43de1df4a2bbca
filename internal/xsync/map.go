// Copyright 2025 Buf Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package xsync contains typed wrappers over package sync.
package xsync

import (
	"iter"
	"sync"
)

// Map is a [sync.Map] with keys of type K and values of type V.
type Map[K comparable, V any] struct {
	impl sync.Map
}

// Load forwards to [sync.Map.Load].
func (m *Map[K, V]) Load(k K) (V, bool) {
	v, ok := m.impl.Load(k)
	if !ok {
		var z V
		return z, false
	}
	return v.(V), true //nolint:errcheck
}

// LoadOrStore loads the value for k, or, if there is none, constructs one
// with make and stores it.
//
// make may be called even if its result ends up being discarded because
// another goroutine stored a value first.
func (m *Map[K, V]) LoadOrStore(k K, make func() V) (actual V, loaded bool) {
	if v, ok := m.Load(k); ok {
		return v, true
	}
	v, loaded := m.impl.LoadOrStore(k, make())
	return v.(V), loaded //nolint:errcheck
}

// All returns an iterator over the entries in this map, in no particular
// order.
func (m *Map[K, V]) All() iter.Seq2[K, V] {
	return func(yield func(K, V) bool) {
		m.impl.Range(func(k, v any) bool {
			return yield(k.(K), v.(V)) //nolint:errcheck
		})
	}
}
