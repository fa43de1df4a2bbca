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

package arena

import "unsafe"

// Slab is an allocator for slices of T, whose memory is charged to some
// [Arena].
//
// Chunks grow geometrically and are indexed by the log of their size, so a
// slab that is repeatedly filled and freed settles on a fixed set of chunks.
//
// A zero Slab is empty and ready to use.
type Slab[T any] struct {
	chunks [][]T // Indexed by log2 of their length.
	free   []T   // Unused tail of the current chunk.
	log    uint  // Log2 of the current chunk's length.
}

// Alloc allocates n zeroed values of type T, charging them to a.
//
// Like [Arena.Alloc], the result has no spare capacity.
func (s *Slab[T]) Alloc(a *Arena, n int) []T {
	if n <= 0 {
		return nil
	}

	var z T
	a.charge(n * int(unsafe.Sizeof(z)))

	if n > len(s.free) {
		s.grow(n)
	}
	p := s.free[:n:n]
	s.free = s.free[n:]
	return p
}

// Free zeroes every chunk in this slab and makes it available for re-use.
//
// Any slices previously returned by this slab must not be used afterwards.
func (s *Slab[T]) Free() {
	for _, chunk := range s.chunks {
		clear(chunk)
	}
	s.free = nil
	s.log = 0
}

// grow switches to a new chunk that can hold at least n values.
func (s *Slab[T]) grow(n int) {
	log := suggestSizeLog(n)
	if s.free != nil || s.log > 0 {
		log = max(log, s.log+1)
	}

	if int(log) >= len(s.chunks) {
		s.chunks = append(s.chunks, make([][]T, int(log)+1-len(s.chunks))...)
	}
	if s.chunks[log] == nil {
		s.chunks[log] = make([]T, 1<<log)
	}

	s.free = s.chunks[log]
	s.log = log
}

// Grow returns buf with room for at least extra more elements, reallocating
// it from slab if it does not already have the capacity.
func Grow[T any](slab *Slab[T], a *Arena, buf []T, extra int) []T {
	if len(buf)+extra <= cap(buf) {
		return buf
	}

	n := max(2*cap(buf), len(buf)+extra, 4)
	out := slab.Alloc(a, n)[:len(buf)]
	copy(out, buf)
	return out
}
