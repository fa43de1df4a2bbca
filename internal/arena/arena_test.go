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

package arena_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"buf.build/go/minipb/internal/arena"
)

func TestAlloc(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	var bufs [][]byte
	for i := range 100 {
		b := a.Alloc(i + 1)
		require.Len(t, b, i+1)
		assert.Equal(t, i+1, cap(b), "allocation has spare capacity")
		for j := range b {
			assert.Zero(t, b[j])
			b[j] = byte(i)
		}
		bufs = append(bufs, b)
	}

	// No allocation may overlap another.
	for i, b := range bufs {
		for _, c := range b {
			assert.Equal(t, byte(i), c)
		}
	}
	assert.Equal(t, 100*101/2, a.Used())
}

func TestFree(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	b := a.Alloc(32)
	copy(b, "hello")
	a.Free()
	assert.Zero(t, a.Used())

	c := a.Alloc(32)
	assert.Equal(t, make([]byte, 32), c, "memory was not zeroed by Free")
}

func TestLimit(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	a.SetLimit(64)

	alloc := func(n int) (err error) {
		defer arena.Catch(&err)
		a.Alloc(n)
		return nil
	}

	require.NoError(t, alloc(60))
	require.ErrorIs(t, alloc(8), arena.ErrExhausted)
	require.NoError(t, alloc(4))

	a.Free()
	require.NoError(t, alloc(64))

	a.SetLimit(0)
	require.NoError(t, alloc(1<<16))
}

func TestCatchPropagates(t *testing.T) {
	t.Parallel()

	assert.PanicsWithValue(t, "boom", func() {
		var err error
		defer arena.Catch(&err)
		panic("boom")
	})
}

func TestSlab(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	var slab arena.Slab[*int]

	x := 42
	ptrs := slab.Alloc(a, 3)
	require.Len(t, ptrs, 3)
	ptrs[1] = &x
	assert.Equal(t, 3*8, a.Used())

	big := slab.Alloc(a, 1000)
	assert.Len(t, big, 1000)
	assert.Same(t, &x, ptrs[1])

	slab.Free()
	again := slab.Alloc(a, 3)
	assert.Equal(t, []*int{nil, nil, nil}, again)
}

func TestGrow(t *testing.T) {
	t.Parallel()

	a := new(arena.Arena)
	var slab arena.Slab[uint64]

	var s []uint64
	for i := range 50 {
		s = arena.Grow(&slab, a, s, 1)
		s = append(s, uint64(i))
	}
	require.Len(t, s, 50)
	for i, v := range s {
		assert.Equal(t, uint64(i), v)
	}

	var b []byte
	b = a.Append(b, []byte("hello, ")...)
	b = a.Append(b, []byte("world")...)
	assert.Equal(t, "hello, world", string(b))
}
