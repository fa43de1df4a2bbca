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

package tdp

import (
	"math"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/xunsafe"
)

// Scalar values are stored in 64-bit words: 32-bit integers are zero-extended
// from their two's complement representation, floating point values are
// stored as their IEEE 754 bits, and bools are 0 or 1.

// EncodeWord converts a scalar value of kind k into its word representation.
func EncodeWord(k protoreflect.Kind, v protoreflect.Value) uint64 {
	switch k {
	case protoreflect.BoolKind:
		if v.Bool() {
			return 1
		}
		return 0
	case protoreflect.EnumKind:
		return uint64(uint32(v.Enum()))
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return uint64(uint32(v.Int()))
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return uint64(uint32(v.Uint()))
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return uint64(v.Int())
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return v.Uint()
	case protoreflect.FloatKind:
		return uint64(math.Float32bits(float32(v.Float())))
	case protoreflect.DoubleKind:
		return math.Float64bits(v.Float())
	default:
		return 0
	}
}

// DecodeWord converts a word back into a scalar value of kind k.
func DecodeWord(k protoreflect.Kind, w uint64) protoreflect.Value {
	switch k {
	case protoreflect.BoolKind:
		return protoreflect.ValueOfBool(w != 0)
	case protoreflect.EnumKind:
		return protoreflect.ValueOfEnum(protoreflect.EnumNumber(int32(w)))
	case protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Sfixed32Kind:
		return protoreflect.ValueOfInt32(int32(w))
	case protoreflect.Uint32Kind, protoreflect.Fixed32Kind:
		return protoreflect.ValueOfUint32(uint32(w))
	case protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Sfixed64Kind:
		return protoreflect.ValueOfInt64(int64(w))
	case protoreflect.Uint64Kind, protoreflect.Fixed64Kind:
		return protoreflect.ValueOfUint64(w)
	case protoreflect.FloatKind:
		return protoreflect.ValueOfFloat32(math.Float32frombits(uint32(w)))
	case protoreflect.DoubleKind:
		return protoreflect.ValueOfFloat64(math.Float64frombits(w))
	default:
		return protoreflect.Value{}
	}
}

// EncodeBytes returns the bytes of a string or bytes value.
//
// The result aliases v. For strings, it must not be written to.
func EncodeBytes(v protoreflect.Value) []byte {
	switch x := v.Interface().(type) {
	case string:
		return xunsafe.BytesOf(x)
	case []byte:
		return x
	default:
		return nil
	}
}

// DecodeBytes converts stored bytes into a value of kind k. The value
// aliases b.
func DecodeBytes(k protoreflect.Kind, b []byte) protoreflect.Value {
	if k == protoreflect.StringKind {
		return protoreflect.ValueOfString(xunsafe.StringOf(b))
	}
	return protoreflect.ValueOfBytes(b)
}
