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

// Package prototest contains helpers for comparing messages in tests.
package prototest

import (
	"bytes"
	"fmt"
	"math"
	"reflect"
	"strings"
	"testing"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/minipb/internal/dbg"
)

// Equal validates that two Protobuf messages have the same observable value,
// as seen through reflection.
//
// Unlike [proto.Equal], this distinguishes floating point values by their
// bits, compares presence for every field, and reports the path to each
// difference.
func Equal(t testing.TB, expect, got proto.Message) {
	t.Helper()
	e := &equal{TB: t}

	panicked := true
	defer func() {
		if panicked {
			t.Errorf("panicked at %s", e.formatPath())
		}
	}()

	e.message(expect.ProtoReflect(), got.ProtoReflect())
	panicked = false
}

type equal struct {
	testing.TB
	path []any
}

func (e *equal) any(v1, v2 protoreflect.Value) {
	e.Helper()

	switch a := v1.Interface().(type) {
	case []byte:
		b, ok := v2.Interface().([]byte)
		switch {
		case !ok:
			e.wrongType(a, v2.Interface())
		case !bytes.Equal(a, b):
			e.fail("expected %q:`%x`, got %q:`%x`", a, a, b, b)
		}

	case protoreflect.Message:
		b, ok := v2.Interface().(protoreflect.Message)
		if !ok {
			e.wrongType(a, v2.Interface())
			return
		}
		e.message(a, b)

	case protoreflect.List:
		b, ok := v2.Interface().(protoreflect.List)
		if !ok {
			e.wrongType(a, v2.Interface())
			return
		}
		e.list(a, b)

	case protoreflect.Map:
		b, ok := v2.Interface().(protoreflect.Map)
		if !ok {
			e.wrongType(a, v2.Interface())
			return
		}
		e.map_(a, b)

	case float32:
		b, ok := v2.Interface().(float32)
		if !ok || math.Float32bits(a) != math.Float32bits(b) {
			e.fail("expected %v:%#x, got %v", a, math.Float32bits(a), v2.Interface())
		}

	case float64:
		b, ok := v2.Interface().(float64)
		if !ok || math.Float64bits(a) != math.Float64bits(b) {
			e.fail("expected %v:%#x, got %v", a, math.Float64bits(a), v2.Interface())
		}

	default:
		b := v2.Interface()
		if reflect.TypeOf(a) != reflect.TypeOf(b) {
			e.wrongType(a, b)
			return
		}
		if a != b {
			e.fail("expected %v, got %v (%T)", a, b, b)
		}
	}
}

func (e *equal) message(a, b protoreflect.Message) {
	e.Helper()

	if a.Descriptor() != b.Descriptor() {
		e.fail("expected %p:%v, got %p:%v",
			a.Descriptor(), a.Descriptor().FullName(),
			b.Descriptor(), b.Descriptor().FullName())
		return
	}

	if a.IsValid() != b.IsValid() {
		e.fail("unequal IsValid: want %v, got %v", a.IsValid(), b.IsValid())
	}
	if !a.IsValid() && !b.IsValid() {
		return
	}

	// Unknown fields are compared after a round trip through a message with
	// no fields, since protobuf-go may re-encode them.
	transcode := func(b []byte) []byte {
		empty := new(emptypb.Empty)
		_ = proto.Unmarshal(b, empty)
		return empty.ProtoReflect().GetUnknown()
	}
	if !bytes.Equal(transcode(a.GetUnknown()), transcode(b.GetUnknown())) {
		e.fail("unequal unknown fields: want `%x`, got `%x`", a.GetUnknown(), b.GetUnknown())
	}

	d := a.Descriptor()
	fds := d.Fields()
	for i := range fds.Len() {
		e.field(a, b, fds.Get(i))
	}

	// Extensions only show up in Range.
	exts := make(map[protoreflect.FullName]protoreflect.FieldDescriptor)
	collect := func(fd protoreflect.FieldDescriptor, _ protoreflect.Value) bool {
		if fd.IsExtension() {
			exts[fd.FullName()] = fd
		}
		return true
	}
	a.Range(collect)
	b.Range(collect)
	for _, fd := range exts {
		e.field(a, b, fd)
	}

	ods := d.Oneofs()
	for i := range ods.Len() {
		od := ods.Get(i)
		e.push(od.Name(), func() {
			e.Helper()
			if a.WhichOneof(od) != b.WhichOneof(od) {
				e.fail("unequal which: want %v, got %v", a.WhichOneof(od), b.WhichOneof(od))
			}
		})
	}
}

func (e *equal) field(a, b protoreflect.Message, fd protoreflect.FieldDescriptor) {
	e.Helper()

	name := any(fd.Name())
	if fd.IsExtension() {
		name = fd.FullName()
	}
	e.push(name, func() {
		e.Helper()
		if a.Has(fd) != b.Has(fd) {
			e.fail("unequal has: want %v, got %v", a.Has(fd), b.Has(fd))
		}
		e.any(a.Get(fd), b.Get(fd))
	})
}

func (e *equal) list(a, b protoreflect.List) {
	e.Helper()
	for i := range min(a.Len(), b.Len()) {
		e.push(i, func() {
			e.Helper()
			e.any(a.Get(i), b.Get(i))
		})
	}

	if a.Len() != b.Len() {
		e.fail("unequal lengths: want %d, got %d", a.Len(), b.Len())
	}
}

func (e *equal) map_(a, b protoreflect.Map) {
	e.Helper()
	if a.Len() != b.Len() {
		e.fail("unequal lengths: want %d, got %d", a.Len(), b.Len())
	}

	a.Range(func(k protoreflect.MapKey, v protoreflect.Value) bool {
		e.push(k.Interface(), func() {
			e.Helper()
			if !b.Has(k) {
				e.fail("missing key")
				return
			}
			e.any(v, b.Get(k))
		})
		return true
	})
}

func (e *equal) push(v any, f func()) {
	e.Helper()
	e.path = append(e.path, v)
	f()
	e.path = e.path[:len(e.path)-1]
}

func (e *equal) wrongType(a, b any) {
	e.Helper()
	e.fail("expected %T, got %T", a, b)
}

func (e *equal) fail(format string, args ...any) {
	e.Helper()
	e.Errorf("failure at %s: %v", e.formatPath(), dbg.Fprintf(format, args...))
}

func (e *equal) formatPath() string {
	if len(e.path) == 0 {
		return "."
	}

	buf := new(strings.Builder)
	for _, e := range e.path {
		switch e := e.(type) {
		case protoreflect.Name:
			fmt.Fprintf(buf, ".%v", e)
		case protoreflect.FullName:
			fmt.Fprintf(buf, ".[%v]", e)
		case string:
			fmt.Fprintf(buf, "[%q]", e)
		default:
			fmt.Fprintf(buf, "[%v]", e)
		}
	}

	return buf.String()
}
