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

package debug_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"buf.build/go/minipb/internal/debug"
)

type lines []string

func (l *lines) Log(args ...any) { *l = append(*l, fmt.Sprint(args...)) }

func TestStack(t *testing.T) {
	t.Parallel()

	stack := debug.Stack(1)
	first, _, _ := strings.Cut(stack, "\n")
	assert.Contains(t, first, "debug_test.TestStack()")
	assert.Contains(t, first, "debug_test.go")
}

func TestWithTesting(t *testing.T) {
	t.Parallel()

	var logs lines
	undo := debug.WithTesting(&logs)
	debug.Log(nil, "check", "%d", 42)
	undo()

	if debug.Enabled {
		assert.Len(t, logs, 1)
		assert.Contains(t, logs[0], "check: 42")
	} else {
		assert.Empty(t, logs)
	}
}

func TestAssert(t *testing.T) {
	t.Parallel()

	assert.NotPanics(t, func() { debug.Assert(true, "unreachable") })
	if !debug.Enabled {
		assert.NotPanics(t, func() { debug.Assert(false, "ignored") })
		return
	}

	defer func() {
		msg := fmt.Sprint(recover())
		assert.Contains(t, msg, "internal assertion failed: x = 1")
		assert.Contains(t, msg, "debug_test.TestAssert")
	}()
	debug.Assert(false, "x = %d", 1)
}
