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

// Package dbg contains formatting helpers for debug output and test failure
// messages.
package dbg

import (
	"fmt"
)

// Formatter is a [fmt.Formatter] that defers to a function.
type Formatter func(s fmt.State)

// Format implements [fmt.Formatter].
func (f Formatter) Format(s fmt.State, verb rune) {
	if verb != 'v' && verb != 's' {
		fmt.Fprintf(s, "%%!%c(dbg.Formatter)", verb)
		return
	}
	f(s)
}

// String implements [fmt.Stringer].
func (f Formatter) String() string { return fmt.Sprint(f) }

// Fprintf is like [fmt.Sprintf], but formatting is delayed until the returned
// value is itself formatted.
func Fprintf(format string, args ...any) Formatter {
	return func(s fmt.State) { fmt.Fprintf(s, format, args...) }
}

// Dict formats key-value pairs as a dictionary with an optional prefix.
// Pairs whose value is nil are skipped.
func Dict(prefix any, kv ...any) Formatter {
	if len(kv)%2 != 0 {
		panic("dbg: odd number of arguments to Dict")
	}

	return func(s fmt.State) {
		if prefix != nil {
			fmt.Fprint(s, prefix)
		}
		fmt.Fprint(s, "{")
		first := true
		for i := 0; i < len(kv); i += 2 {
			if kv[i+1] == nil {
				continue
			}
			if !first {
				fmt.Fprint(s, ", ")
			}
			first = false
			fmt.Fprintf(s, "%v: %v", kv[i], kv[i+1])
		}
		fmt.Fprint(s, "}")
	}
}
