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

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/tdp/encoder"
	"buf.build/go/minipb/internal/tdp/vm"
	"buf.build/go/minipb/internal/xunsafe"
)

// Message is a message value constructed with this package.
//
// *Message implements [proto.Message] and [protoreflect.Message]. Its
// Type() method returns a *[MessageType].
type Message struct {
	impl dynamic.Message
}

// NewMessage allocates a new message of the given type, on a fresh [Shared].
//
// See [Shared.NewMessage].
func NewMessage(ty *MessageType) *Message {
	return new(Shared).NewMessage(ty)
}

// Unmarshal allocates a new message of the given type on shared, and decodes
// data into it. If shared is nil, a fresh [Shared] is used.
//
// On failure, the returned message is nil.
func Unmarshal(data []byte, ty *MessageType, shared *Shared, options ...UnmarshalOption) (*Message, error) {
	if shared == nil {
		shared = new(Shared)
	}
	m := shared.NewMessage(ty)
	if m == nil {
		return nil, ErrAllocation
	}
	if err := m.Unmarshal(data, options...); err != nil {
		return nil, err
	}
	return m, nil
}

// Unmarshal decodes data into this message, merging with its current
// contents. This is like [proto.UnmarshalOptions.Merge], but permits
// minipb-specific options to be set.
//
// Decoding is all-or-nothing: on error, the message is reset to empty. The
// error is either a *[ParseError] or [ErrAllocation].
func (m *Message) Unmarshal(data []byte, options ...UnmarshalOption) error {
	return vm.Unmarshal(&m.impl, data, unmarshalOptions(options))
}

// Marshal encodes this message. The returned buffer is allocated on this
// message's [Shared] and is valid until it is freed.
//
// Fields are written in ascending field number order, followed by
// extensions, followed by unknown fields.
func (m *Message) Marshal(options ...MarshalOption) ([]byte, error) {
	return encoder.Marshal(&m.impl, marshalOptions(options))
}

// MarshalAppend is like [Message.Marshal], but appends to b, which is grown
// on the heap as necessary.
func (m *Message) MarshalAppend(b []byte, options ...MarshalOption) ([]byte, error) {
	return encoder.Append(b, &m.impl, marshalOptions(options))
}

// Size returns the number of bytes [Message.Marshal] would produce with the
// same options.
func (m *Message) Size(options ...MarshalOption) int {
	return encoder.Size(&m.impl, marshalOptions(options))
}

// Shared returns state shared by this message and its submessages.
func (m *Message) Shared() *Shared {
	return wrapShared(m.impl.Shared)
}

// MessageType returns this message's type.
func (m *Message) MessageType() *MessageType {
	return wrapType(m.impl.Type)
}

// HasField returns whether the field numbered n is set. For fields without
// explicit presence, this is whether the field has a non-default value.
func (m *Message) HasField(n protoreflect.FieldNumber) bool {
	return m.impl.Has(m.field(n))
}

// ClearField resets the field numbered n to its default.
func (m *Message) ClearField(n protoreflect.FieldNumber) {
	m.impl.Clear(m.field(n))
}

// GetMessage returns the value of the singular message field numbered n, or
// nil if it is unset.
func (m *Message) GetMessage(n protoreflect.FieldNumber) *Message {
	f := m.messageField(n, false)
	return wrapMessage(m.impl.GetMessage(f))
}

// MutableMessage returns the value of the singular message field numbered n,
// setting it to an empty message first if it is unset.
//
// Returns nil if the [Shared]'s limit would be exceeded.
func (m *Message) MutableMessage(n protoreflect.FieldNumber) *Message {
	f := m.messageField(n, false)

	var sub *dynamic.Message
	if err := m.Shared().locked(func() { sub = m.impl.MutableMessage(f) }); err != nil {
		return nil
	}
	return wrapMessage(sub)
}

// AppendMessage appends an empty message to the repeated message field
// numbered n, and returns it.
//
// Returns nil if the [Shared]'s limit would be exceeded.
func (m *Message) AppendMessage(n protoreflect.FieldNumber) *Message {
	f := m.messageField(n, true)

	var sub *dynamic.Message
	if err := m.Shared().locked(func() { sub = m.impl.AppendMessage(f) }); err != nil {
		return nil
	}
	return wrapMessage(sub)
}

// MessageAt returns the ith element of the repeated message field numbered
// n. Panics if i is out of range.
func (m *Message) MessageAt(n protoreflect.FieldNumber, i int) *Message {
	f := m.messageField(n, true)
	return wrapMessage(m.impl.List(f).Msgs[i])
}

// Dump returns a human-readable description of this message's storage, for
// debugging.
func (m *Message) Dump() string {
	return m.impl.Dump()
}

// field returns the bound field numbered n, or panics.
func (m *Message) field(n protoreflect.FieldNumber) *tdp.Field {
	f := m.impl.Type.ByNumber(n)
	if f == nil {
		panic(fmt.Errorf("minipb: %s has no field numbered %d", m.impl.Type.Descriptor.FullName(), n))
	}
	return f
}

// messageField returns the message field numbered n, or panics if it is not
// a message field with the given cardinality.
func (m *Message) messageField(n protoreflect.FieldNumber, repeated bool) *tdp.Field {
	f := m.field(n)
	if f.Kind != protoreflect.MessageKind || f.Repeated != repeated {
		panic(fmt.Errorf("minipb: cannot access %v as a %s message field", f.Desc.FullName(), cardinality(repeated)))
	}
	return f
}

func cardinality(repeated bool) string {
	if repeated {
		return "repeated"
	}
	return "singular"
}

// wrapMessage wraps an internal Message pointer. Returns nil for nil.
func wrapMessage(m *dynamic.Message) *Message {
	return xunsafe.Cast[Message](m)
}
