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

package dynamic

import (
	"sync"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
)

// Shared is state that is shared by all messages in a particular tree of
// messages: the arena everything is allocated from.
//
// A zero Shared is ready to use.
type Shared struct {
	_ xunsafe.NoCopy

	arena    arena.Arena
	messages arena.Slab[Message]
	words    arena.Slab[uint64]
	bytes    arena.Slab[[]byte]
	msgs     arena.Slab[*Message]
	lists    arena.Slab[List]

	// Serializes decodes and allocations of new root messages.
	Lock sync.Mutex
}

// Arena returns the byte arena for this message tree.
func (s *Shared) Arena() *arena.Arena {
	return &s.arena
}

// New allocates a new, empty message of the given type.
//
// Panics with [arena.ErrExhausted] if the arena's limit is reached.
func (s *Shared) New(ty *tdp.Type) *Message {
	m := &s.messages.Alloc(&s.arena, 1)[0]
	m.Shared = s
	m.Type = ty
	m.Words = s.words.Alloc(&s.arena, ty.Words)
	m.Bytes = s.bytes.Alloc(&s.arena, ty.Bytes)
	m.Msgs = s.msgs.Alloc(&s.arena, ty.Msgs)
	m.Lists = s.lists.Alloc(&s.arena, ty.Lists)

	debug.Log([]any{"%p", s}, "new", "%p %v", m, ty.Descriptor.FullName())
	return m
}

// Free releases every allocation made for this message tree, allowing the
// memory to be re-used.
//
// Any messages previously allocated using this value must not be used
// afterwards.
func (s *Shared) Free() {
	s.arena.Free()
	s.messages.Free()
	s.words.Free()
	s.bytes.Free()
	s.msgs.Free()
	s.lists.Free()
}
