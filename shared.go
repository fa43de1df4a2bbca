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

package minipb

import (
	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/xunsafe"
)

// Shared is state that is shared by all messages in a particular tree of
// messages: the arena they are allocated on.
//
// The zero value is ready to use: construct it with new(Shared).
type Shared struct {
	impl dynamic.Shared
}

// NewMessage allocates a new message using this value's resources. Every
// field of the new message is set to its default.
//
// Returns nil if this value's limit (see [Shared.SetLimit]) would be
// exceeded.
func (s *Shared) NewMessage(ty *MessageType) *Message {
	if s == nil {
		s = new(Shared)
	}

	var m *dynamic.Message
	if err := s.locked(func() { m = s.impl.New(&ty.impl) }); err != nil {
		return nil
	}
	return wrapMessage(m)
}

// SetLimit sets the maximum number of bytes this value will allocate for
// messages until the next call to [Shared.Free]. Zero means no limit.
//
// Once the limit is reached, operations that need to allocate fail with
// [ErrAllocation].
func (s *Shared) SetLimit(bytes int) {
	s.impl.Arena().SetLimit(bytes)
}

// Used returns the number of bytes allocated since the last call to
// [Shared.Free].
func (s *Shared) Used() int {
	return s.impl.Arena().Used()
}

// CopyBytes copies b onto this value's arena, so that it lives exactly as
// long as the messages allocated here.
//
// Returns nil if b is empty, or if the limit would be exceeded.
func (s *Shared) CopyBytes(b []byte) []byte {
	var out []byte
	if err := s.locked(func() { out = s.impl.Arena().Copy(b) }); err != nil {
		return nil
	}
	return out
}

// CopyString is like [Shared.CopyBytes], but for strings.
func (s *Shared) CopyString(str string) string {
	return xunsafe.StringOf(s.CopyBytes(xunsafe.BytesOf(str)))
}

// Free releases any resources held by this value, allowing them to be re-used.
//
// Any messages previously allocated using this value must not be reused.
func (s *Shared) Free() { s.impl.Free() }

// locked runs f with this value's lock held, converting arena exhaustion
// into [ErrAllocation].
func (s *Shared) locked(f func()) (err error) {
	s.impl.Lock.Lock()
	defer s.impl.Lock.Unlock()
	defer arena.Catch(&err)

	f()
	return nil
}

// mustLocked is like [Shared.locked], but panics with [ErrAllocation]. It is
// used where the caller's signature has no room for an error.
func (s *Shared) mustLocked(f func()) {
	if err := s.locked(f); err != nil {
		panic(err)
	}
}

// alloc allocates a new message of type ty, panicking with [ErrAllocation] if
// the limit would be exceeded.
func (s *Shared) alloc(ty *tdp.Type) *dynamic.Message {
	var m *dynamic.Message
	s.mustLocked(func() { m = s.impl.New(ty) })
	return m
}

// wrapShared wraps an internal Shared pointer.
func wrapShared(s *dynamic.Shared) *Shared {
	return xunsafe.Cast[Shared](s)
}
