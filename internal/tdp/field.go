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
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/dbg"
)

// Storage is where a message keeps the value of a field.
type Storage uint8

const (
	InWords    Storage = iota // Message.Words; all non-string scalars.
	InBytes                   // Message.Bytes; strings and bytes.
	InMessages                // Message.Msgs; singular submessages.
	InLists                   // Message.Lists; every repeated field.
)

// Presence is how a message tracks whether a field is set.
type Presence uint8

const (
	// Set iff the stored value is not the zero value. Such fields are
	// omitted from the wire when they are zero.
	Implicit Presence = iota
	// Set iff the field's bit in the presence words is set.
	Hasbit
	// Set iff the case word of the field's oneof holds the field's number.
	Oneof
	// Set iff the submessage pointer is non-nil.
	Pointer
	// Set iff the list is non-empty.
	NonEmpty
)

// Field is a compiled field of a [Type].
type Field struct {
	Desc protoreflect.FieldDescriptor

	Number   protowire.Number
	Kind     protoreflect.Kind
	Tag      Tag // Tag for a single value, with the kind's natural wire type.
	Repeated bool
	Packed   bool // Whether a repeated field is encoded packed.
	Required bool
	UTF8     bool // Whether strings must be validated when decoding.

	Storage  Storage
	Presence Presence
	Slot     int    // Index into the storage given by Storage.
	Hasbit   uint32 // Bit index into the presence words, if Presence == Hasbit.
	Case     int    // Word index of the oneof case, or -1.

	// The default value, encoded the same way as the field's storage.
	Default      uint64
	DefaultBytes []byte

	// Set for message-typed fields.
	Message *Type
	// Set for fields of closed enum type. Values outside the enum are kept
	// as unknown fields when decoding.
	Enum protoreflect.EnumDescriptor
}

// WireType returns the wire type a single value of this field is encoded
// with.
func (f *Field) WireType() protowire.Type {
	return WireType(f.Kind)
}

// Packable returns whether this field may appear in packed form.
func (f *Field) Packable() bool {
	return f.Repeated && f.WireType() != protowire.BytesType
}

// Accepts returns whether a record with wire type t can be decoded into this
// field. Records that are not accepted are treated as unknown fields.
func (f *Field) Accepts(t protowire.Type) bool {
	return t == f.WireType() || (t == protowire.BytesType && f.Packable())
}

// Format implements [fmt.Formatter].
func (f *Field) Format(s fmt.State, verb rune) {
	var msg any
	if f.Message != nil {
		msg = f.Message.Descriptor.FullName()
	}
	dbg.Dict(f.Desc.Name(),
		"number", f.Number,
		"kind", f.Kind,
		"storage", f.Storage,
		"presence", f.Presence,
		"slot", f.Slot,
		"message", msg,
	).Format(s, verb)
}

// WireType returns the wire type that values of kind k are encoded with.
func WireType(k protoreflect.Kind) protowire.Type {
	switch k {
	case protoreflect.BoolKind, protoreflect.EnumKind,
		protoreflect.Int32Kind, protoreflect.Sint32Kind, protoreflect.Uint32Kind,
		protoreflect.Int64Kind, protoreflect.Sint64Kind, protoreflect.Uint64Kind:
		return protowire.VarintType
	case protoreflect.Fixed32Kind, protoreflect.Sfixed32Kind, protoreflect.FloatKind:
		return protowire.Fixed32Type
	case protoreflect.Fixed64Kind, protoreflect.Sfixed64Kind, protoreflect.DoubleKind:
		return protowire.Fixed64Type
	case protoreflect.GroupKind:
		return protowire.StartGroupType
	default:
		return protowire.BytesType
	}
}

// String implements [fmt.Stringer].
func (s Storage) String() string {
	switch s {
	case InWords:
		return "words"
	case InBytes:
		return "bytes"
	case InMessages:
		return "messages"
	case InLists:
		return "lists"
	default:
		return fmt.Sprintf("Storage(%d)", int(s))
	}
}

// String implements [fmt.Stringer].
func (p Presence) String() string {
	switch p {
	case Implicit:
		return "implicit"
	case Hasbit:
		return "hasbit"
	case Oneof:
		return "oneof"
	case Pointer:
		return "pointer"
	case NonEmpty:
		return "non-empty"
	default:
		return fmt.Sprintf("Presence(%d)", int(p))
	}
}
