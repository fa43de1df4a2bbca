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
	"slices"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoiface"

	"buf.build/go/minipb/internal/dbg"
	"buf.build/go/minipb/internal/xunsafe"
)

// Type is a compiled message type.
type Type struct {
	_ xunsafe.NoCopy

	Library    *Library
	Descriptor protoreflect.MessageDescriptor
	Methods    protoiface.Methods

	// Bound fields, sorted by number.
	Fields []Field
	// Dense[n-1] is one plus the index in Fields of the field numbered n,
	// or zero if there is no such field. Numbers past the end of Dense are
	// binary searched.
	Dense []int32
	// ByIndex maps a field descriptor's Index() to an index in Fields, or
	// -1 if the field is not bound (map and group fields).
	ByIndex []int32

	// Number of slots of each kind a message of this type needs. The first
	// HasbitWords words hold presence bits, and the next Oneofs words hold
	// oneof case numbers.
	Words, Bytes, Msgs, Lists int
	HasbitWords, Oneofs       int

	// Extensions bound at compile time, as holder types sorted by number.
	Extensions []*Type
	// Set on holder types: the extension this single-field type holds.
	Extension protoreflect.ExtensionType

	// Whether a message of this type can contain an unset required field,
	// directly or in some submessage.
	HasRequired bool
}

// ByNumber returns the bound field with the given number, or nil.
func (t *Type) ByNumber(n protowire.Number) *Field {
	if n > 0 && int(n) <= len(t.Dense) {
		i := t.Dense[n-1]
		if i == 0 {
			return nil
		}
		return &t.Fields[i-1]
	}

	i, ok := slices.BinarySearchFunc(t.Fields, n, func(f Field, n protowire.Number) int {
		return int(f.Number - n)
	})
	if !ok {
		return nil
	}
	return &t.Fields[i]
}

// ByDescriptor returns the bound field for a non-extension field descriptor,
// or nil if fd does not belong to this type or is not bound.
func (t *Type) ByDescriptor(fd protoreflect.FieldDescriptor) *Field {
	if fd.IsExtension() || fd.ContainingMessage() != t.Descriptor {
		return nil
	}
	i := t.ByIndex[fd.Index()]
	if i < 0 {
		return nil
	}
	return &t.Fields[i]
}

// BoundExtension returns the compile-time extension holder for the given
// number, or nil.
func (t *Type) BoundExtension(n protowire.Number) *Type {
	i, ok := slices.BinarySearchFunc(t.Extensions, n, func(h *Type, n protowire.Number) int {
		return int(h.Fields[0].Number - n)
	})
	if !ok {
		return nil
	}
	return t.Extensions[i]
}

// IsExtendable returns whether records with number n may be extensions.
func (t *Type) IsExtendable(n protowire.Number) bool {
	return t.Descriptor.ExtensionRanges().Has(n)
}

// Format implements [fmt.Formatter].
func (t *Type) Format(s fmt.State, verb rune) {
	dbg.Dict(
		dbg.Fprintf("%p", t),
		"name", t.Descriptor.FullName(),
		"fields", len(t.Fields),
		"words", t.Words,
		"bytes", t.Bytes,
		"msgs", t.Msgs,
		"lists", t.Lists,
	).Format(s, verb)
}
