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

// Package arena provides region allocation for message trees.
//
// # Design
//
// An [Arena] hands out byte buffers carved from power-of-two chunks, and a
// [Slab] does the same for values of any type T, so that an arena can hold
// pointers without hiding them from the garbage collector. Nothing allocated
// from an arena is released individually: [Arena.Free] (and [Slab.Free])
// zero every chunk and keep it around for the next round of allocations.
//
// An arena may be given a byte limit. Once the limit would be exceeded, the
// allocation panics with [ErrExhausted]; entry points convert that back into
// an error with [Catch]. This keeps allocation on hot paths free of error
// plumbing.
package arena

import (
	"errors"
	"math/bits"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/xunsafe"
)

// ErrExhausted is the value an allocation panics with when an [Arena]'s limit
// would be exceeded.
var ErrExhausted = errors.New("minipb: arena limit exceeded")

// Arena is an allocator for byte buffers, and the accounting point for every
// [Slab] allocating on its behalf.
//
// A zero Arena is empty and ready to use.
type Arena struct {
	_ xunsafe.NoCopy

	bytes Slab[byte]

	used  int // Bytes charged since the last call to Free.
	limit int // Zero means no limit.
}

// SetLimit sets the maximum number of bytes this arena will hand out before
// the next call to [Arena.Free]. Zero or negative means no limit.
func (a *Arena) SetLimit(n int) {
	a.limit = max(n, 0)
}

// Used returns the number of bytes charged to this arena since the last call
// to [Arena.Free].
func (a *Arena) Used() int {
	return a.used
}

// Alloc allocates a zeroed buffer of n bytes.
//
// The returned slice has no spare capacity, so appending to it never writes
// into memory owned by another allocation.
func (a *Arena) Alloc(n int) []byte {
	return a.bytes.Alloc(a, n)
}

// Copy copies b onto the arena.
func (a *Arena) Copy(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := a.Alloc(len(b))
	copy(out, b)
	return out
}

// Append is like the built-in append, but reallocates onto the arena.
func (a *Arena) Append(buf []byte, data ...byte) []byte {
	buf = Grow(&a.bytes, a, buf, len(data))
	return append(buf, data...)
}

// Free releases every allocation made by this arena, allowing the memory to
// be re-used.
//
// Any slices previously returned by this arena must not be used afterwards.
func (a *Arena) Free() {
	a.log("free", "%d bytes", a.used)
	a.bytes.Free()
	a.used = 0
}

// Catch recovers an [ErrExhausted] panic and stores it in *err. Any other
// panic is propagated. It must be called with defer.
func Catch(err *error) {
	r := recover()
	if r == nil {
		return
	}
	if !IsExhausted(r) {
		panic(r)
	}
	*err = ErrExhausted
}

// IsExhausted returns whether a recovered panic value is [ErrExhausted].
func IsExhausted(r any) bool {
	err, ok := r.(error)
	return ok && err == ErrExhausted //nolint:errorlint
}

// charge records n bytes against the limit.
func (a *Arena) charge(n int) {
	if a.limit > 0 && a.used+n > a.limit {
		a.log("exhausted", "%d+%d > %d", a.used, n, a.limit)
		panic(ErrExhausted)
	}
	a.used += n
}

func (a *Arena) log(op, format string, args ...any) {
	debug.Log([]any{"%p", a}, op, format, args...)
}

// suggestSizeLog returns the log of the power of two chunk size to use for an
// allocation of n elements.
func suggestSizeLog(n int) uint {
	return max(6, uint(bits.Len(uint(n)-1)))
}
