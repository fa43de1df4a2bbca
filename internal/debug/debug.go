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

//go:build debug

// Package debug includes debugging helpers.
//
// Building with -tags debug turns on trace logging and internal assertions.
package debug

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/timandy/routine"
)

// Enabled is true if minipb is being built with the debug tag.
const Enabled = true

var (
	filter    *regexp.Regexp
	nocapture = flag.Bool("minipb.nocapture", false, "disables capturing debug logs as test logs")

	// The test, if any, that owns the current goroutine.
	owner = routine.NewInheritableThreadLocal[Logger]()
)

func init() {
	flag.Func("minipb.filter", "regexp to filter debug logs by", func(s string) (err error) {
		filter, err = regexp.Compile(s)
		return err
	})
}

// Log prints debugging information to stderr, or to the log of the test
// registered with [WithTesting].
//
// context is optional args for `fmt.Printf` that are printed before
// operation, so that related operations can be grouped when reading a trace.
func Log(context []any, operation string, format string, args ...any) {
	skip := 1
again:
	pc, file, line, _ := runtime.Caller(skip)

	fn := runtime.FuncForPC(pc)
	name := fn.Name()
	name = name[strings.LastIndex(name, ".")+1:]
	if strings.HasPrefix(name, "log") || strings.Contains(name, "Log") {
		skip++
		goto again
	}

	pkg := fn.Name()
	pkg = strings.TrimPrefix(pkg, "buf.build/go/")
	pkg = strings.TrimPrefix(pkg, "minipb/internal/")
	if i := strings.Index(pkg, "."); i >= 0 {
		pkg = pkg[:i]
	}

	buf := new(strings.Builder)
	_, _ = fmt.Fprintf(buf, "%s/%s:%d [g%04d", pkg, filepath.Base(file), line, routine.Goid())
	if len(context) >= 1 {
		_, _ = fmt.Fprintf(buf, ", "+context[0].(string), context[1:]...)
	}
	_, _ = fmt.Fprintf(buf, "] %s: ", operation)
	_, _ = fmt.Fprintf(buf, format, args...)

	if filter != nil && !filter.MatchString(buf.String()) {
		return
	}

	if t := owner.Get(); !*nocapture && t != nil {
		t.Log(buf.String())
		return
	}

	buf.WriteByte('\n')
	_, _ = os.Stderr.WriteString(buf.String())
}

// WithTesting routes logs from the current goroutine (and goroutines it
// spawns) to t. Call the returned function to undo this.
func WithTesting(t Logger) func() {
	prev := owner.Get()
	owner.Set(t)
	return func() { owner.Set(prev) }
}

// Assert panics if cond is false, but only in debug mode.
func Assert(cond bool, format string, args ...any) {
	if !cond {
		err := fmt.Errorf("minipb: internal assertion failed: "+format, args...)
		panic(fmt.Errorf("%w\n%s", err, Stack(2)))
	}
}
