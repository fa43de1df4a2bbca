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

// Package empty provides read-only empty values for unset fields.
package empty

import (
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoiface"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/compiler"
)

// WrapType constructs the [protoreflect.MessageType] for a type. It is set by
// the root package.
var WrapType func(*tdp.Type) protoreflect.MessageType

// Message is an empty, read-only message of any [tdp.Type].
type Message struct{ ty *tdp.Type }

var (
	_ proto.Message        = Message{}
	_ protoreflect.Message = Message{}
)

// NewMessage returns the empty message of the given type.
func NewMessage(ty *tdp.Type) Message {
	return Message{ty}
}

// ProtoReflect implements [proto.Message].
func (e Message) ProtoReflect() protoreflect.Message { return e }

// Descriptor implements [protoreflect.Message].
func (e Message) Descriptor() protoreflect.MessageDescriptor { return e.ty.Descriptor }

// Type implements [protoreflect.Message].
func (e Message) Type() protoreflect.MessageType { return WrapType(e.ty) }

// New implements [protoreflect.Message].
func (e Message) New() protoreflect.Message { return e.Type().New() }

// Interface implements [protoreflect.Message].
func (e Message) Interface() protoreflect.ProtoMessage { return e }

// Range implements [protoreflect.Message].
func (e Message) Range(func(protoreflect.FieldDescriptor, protoreflect.Value) bool) {}

// Has implements [protoreflect.Message].
func (e Message) Has(protoreflect.FieldDescriptor) bool { return false }

// Clear implements [protoreflect.Message].
func (e Message) Clear(protoreflect.FieldDescriptor) {}

// Get implements [protoreflect.Message].
func (e Message) Get(fd protoreflect.FieldDescriptor) protoreflect.Value {
	return Value(e.ty, fd)
}

// Set implements [protoreflect.Message].
//
// Panics when called.
func (e Message) Set(protoreflect.FieldDescriptor, protoreflect.Value) {
	panic(debug.Unsupported())
}

// Mutable implements [protoreflect.Message].
//
// Panics when called.
func (e Message) Mutable(protoreflect.FieldDescriptor) protoreflect.Value {
	panic(debug.Unsupported())
}

// NewField implements [protoreflect.Message].
//
// Panics when called.
func (e Message) NewField(protoreflect.FieldDescriptor) protoreflect.Value {
	panic(debug.Unsupported())
}

// GetUnknown implements [protoreflect.Message].
func (e Message) GetUnknown() protoreflect.RawFields { return nil }

// SetUnknown implements [protoreflect.Message].
//
// Panics when called with a non-empty value.
func (e Message) SetUnknown(raw protoreflect.RawFields) {
	if len(raw) == 0 {
		return
	}
	panic(debug.Unsupported())
}

// WhichOneof implements [protoreflect.Message].
func (e Message) WhichOneof(protoreflect.OneofDescriptor) protoreflect.FieldDescriptor {
	return nil
}

// IsValid implements [protoreflect.Message].
func (e Message) IsValid() bool { return false }

// ProtoMethods implements [protoreflect.Message].
//
// Empty messages use the reflection-based paths in package proto.
func (e Message) ProtoMethods() *protoiface.Methods { return nil }

// Value returns the value of an unset field fd of a message of type ty.
func Value(ty *tdp.Type, fd protoreflect.FieldDescriptor) protoreflect.Value {
	switch {
	case fd.IsMap():
		return protoreflect.ValueOfMap(Map{})
	case fd.IsList():
		return protoreflect.ValueOfList(List{})
	case fd.Message() != nil:
		if f := ty.ByDescriptor(fd); f != nil {
			return protoreflect.ValueOfMessage(Message{f.Message})
		}
		// Extensions and groups may not have been compiled yet.
		return protoreflect.ValueOfMessage(Message{compiler.Lazy(ty.Library, fd.Message())})
	default:
		return fd.Default()
	}
}
