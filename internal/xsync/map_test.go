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

package xsync_test

import (
	"maps"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"buf.build/go/minipb/internal/xsync"
)

func TestMap(t *testing.T) {
	t.Parallel()

	var m xsync.Map[int, string]
	_, ok := m.Load(1)
	assert.False(t, ok)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, _ := m.LoadOrStore(1, func() string { return "one" })
			assert.Equal(t, "one", v)
		}()
	}
	wg.Wait()

	v, loaded := m.LoadOrStore(2, func() string { return "two" })
	assert.False(t, loaded)
	assert.Equal(t, "two", v)

	assert.Equal(t, map[int]string{1: "one", 2: "two"}, maps.Collect(m.All()))
}
