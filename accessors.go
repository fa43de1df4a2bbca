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

package minipb

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/xunsafe"
)

// Scalar is any Go type that a non-message field can be accessed as.
//
// Each kind of field has exactly one matching Go type, as in protobuf-go's
// generated code, except that []byte may also be used for string fields.
type Scalar interface {
	bool |
		int32 | int64 | uint32 | uint64 |
		float32 | float64 |
		protoreflect.EnumNumber |
		string | []byte
}

// Get returns the value of the singular field numbered n, or its default if
// it is unset.
//
// Strings and bytes alias the message's storage.
func Get[T Scalar](m *Message, n protoreflect.FieldNumber) T {
	f := scalarField[T](m, n, false)
	if f.Storage == tdp.InBytes {
		return fromBytes[T](m.impl.GetBytes(f))
	}
	return fromWord[T](m.impl.GetWord(f))
}

// Set sets the value of the singular field numbered n.
//
// Set does not copy: a []byte value is stored as-is, and a string value's
// bytes are stored without copying.
func Set[T Scalar](m *Message, n protoreflect.FieldNumber, v T) {
	f := scalarField[T](m, n, false)
	if f.Storage == tdp.InBytes {
		m.impl.SetBytes(f, toBytes(v))
		return
	}
	m.impl.SetWord(f, toWord(v))
}

// Len returns the number of elements in the repeated field numbered n.
func Len(m *Message, n protoreflect.FieldNumber) int {
	f := m.field(n)
	if !f.Repeated {
		panic(fmt.Errorf("minipb: %v is not a repeated field", f.Desc.FullName()))
	}
	return m.impl.List(f).Len()
}

// Index returns the ith element of the repeated field numbered n. Panics if
// i is out of range.
func Index[T Scalar](m *Message, n protoreflect.FieldNumber, i int) T {
	f := scalarField[T](m, n, true)
	l := m.impl.List(f)
	if isBytes(f) {
		return fromBytes[T](l.Bytes[i])
	}
	return fromWord[T](l.Words[i])
}

// Append appends v to the repeated field numbered n. Like [Set], it does not
// copy v.
//
// Returns [ErrAllocation] if the [Shared]'s limit would be exceeded.
func Append[T Scalar](m *Message, n protoreflect.FieldNumber, v T) error {
	f := scalarField[T](m, n, true)
	l := m.impl.List(f)
	s := m.impl.Shared
	if isBytes(f) {
		return m.Shared().locked(func() { l.AppendBytes(s, toBytes(v)) })
	}
	return m.Shared().locked(func() { l.AppendWord(s, toWord(v)) })
}

// scalarField returns the field numbered n, or panics if it cannot be
// accessed as a T with the given cardinality.
func scalarField[T Scalar](m *Message, n protoreflect.FieldNumber, repeated bool) *tdp.Field {
	f := m.field(n)
	if f.Repeated != repeated || !accepts[T](f.Kind) {
		var z T
		panic(fmt.Errorf("minipb: cannot access %s %v field %v as %T",
			cardinality(f.Repeated), f.Kind, f.Desc.FullName(), z))
	}
	return f
}

func isBytes(f *tdp.Field) bool {
	return f.Kind == protoreflect.StringKind || f.Kind == protoreflect.BytesKind
}

// accepts returns whether fields of kind k can be accessed as a T.
func accepts[T Scalar](k protoreflect.Kind) bool {
	var z T
	switch any(z).(type) {
	case bool:
		return k == protoreflect.BoolKind
	case int32:
		return k == protoreflect.Int32Kind || k == protoreflect.Sint32Kind || k == protoreflect.Sfixed32Kind
	case int64:
		return k == protoreflect.Int64Kind || k == protoreflect.Sint64Kind || k == protoreflect.Sfixed64Kind
	case uint32:
		return k == protoreflect.Uint32Kind || k == protoreflect.Fixed32Kind
	case uint64:
		return k == protoreflect.Uint64Kind || k == protoreflect.Fixed64Kind
	case float32:
		return k == protoreflect.FloatKind
	case float64:
		return k == protoreflect.DoubleKind
	case protoreflect.EnumNumber:
		return k == protoreflect.EnumKind
	case string:
		return k == protoreflect.StringKind
	case []byte:
		return k == protoreflect.StringKind || k == protoreflect.BytesKind
	default:
		return false
	}
}

func fromWord[T Scalar](w uint64) T {
	var z T
	switch p := any(&z).(type) {
	case *bool:
		*p = w != 0
	case *int32:
		*p = int32(w)
	case *int64:
		*p = int64(w)
	case *uint32:
		*p = uint32(w)
	case *uint64:
		*p = w
	case *float32:
		*p = math.Float32frombits(uint32(w))
	case *float64:
		*p = math.Float64frombits(w)
	case *protoreflect.EnumNumber:
		*p = protoreflect.EnumNumber(int32(w))
	}
	return z
}

func toWord[T Scalar](v T) uint64 {
	switch v := any(v).(type) {
	case bool:
		if v {
			return 1
		}
		return 0
	case int32:
		return uint64(uint32(v))
	case int64:
		return uint64(v)
	case uint32:
		return uint64(v)
	case uint64:
		return v
	case float32:
		return uint64(math.Float32bits(v))
	case float64:
		return math.Float64bits(v)
	case protoreflect.EnumNumber:
		return uint64(uint32(v))
	default:
		return 0
	}
}

func fromBytes[T Scalar](b []byte) T {
	var z T
	switch p := any(&z).(type) {
	case *string:
		*p = xunsafe.StringOf(b)
	case *[]byte:
		*p = b
	}
	return z
}

func toBytes[T Scalar](v T) []byte {
	switch v := any(v).(type) {
	case string:
		return xunsafe.BytesOf(v)
	case []byte:
		return v
	default:
		return nil
	}
}
