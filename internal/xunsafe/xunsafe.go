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

// Package xunsafe contains the small amount of unsafe pointer manipulation
// that minipb needs.
package xunsafe

import (
	"sync"
	"unsafe"
)

// NoCopy is a type that go vet will complain about having been moved.
//
// It does so by implementing [sync.Locker].
type NoCopy [0]sync.Mutex

// Cast casts one pointer type to another.
//
// This is only sound when To is a struct whose sole field is a From, which is
// how the public wrapper types are defined.
func Cast[To, From any](p *From) *To {
	return (*To)(unsafe.Pointer(p))
}

// StringOf returns a string that aliases b.
//
// b must not be mutated while the string is in use.
func StringOf(b []byte) string {
	return unsafe.String(unsafe.SliceData(b), len(b))
}

// BytesOf returns a slice that aliases s. The slice must not be written to.
func BytesOf(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
