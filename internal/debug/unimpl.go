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

package debug

import (
	"errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrUnsupported is the value that errors returned by [Unsupported] match
// with [errors.Is].
var ErrUnsupported = errors.New("minipb: unsupported operation")

// Unsupported returns an "unsupported" error naming the calling function.
//
// This is intended to be passed to panic().
func Unsupported() error {
	pc, _, _, _ := runtime.Caller(1)
	return &unsupported{pc}
}

type unsupported struct{ pc uintptr }

func (e *unsupported) Is(err error) bool { return err == ErrUnsupported }

func (e *unsupported) Error() string {
	fn := runtime.FuncForPC(e.pc)
	if fn == nil || fn.Name() == "" {
		return ErrUnsupported.Error()
	}

	name := fn.Name()
	name = name[strings.LastIndexByte(name, '/')+1:]
	return fmt.Sprintf("minipb: %s() is not supported", name)
}
