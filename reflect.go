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

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoiface"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/compiler"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/tdp/empty"
)

var (
	_ proto.Message        = (*Message)(nil)
	_ protoreflect.Message = (*Message)(nil)
)

// ProtoReflect implements [proto.Message].
func (m *Message) ProtoReflect() protoreflect.Message {
	return m
}

// Descriptor implements [protoreflect.Message].
func (m *Message) Descriptor() protoreflect.MessageDescriptor {
	return m.impl.Type.Descriptor
}

// Type implements [protoreflect.Message].
//
// Always returns *[MessageType].
func (m *Message) Type() protoreflect.MessageType {
	return m.MessageType()
}

// New implements [protoreflect.Message].
//
// The new message is allocated on a fresh [Shared].
func (m *Message) New() protoreflect.Message {
	return m.MessageType().New()
}

// Interface implements [protoreflect.Message].
func (m *Message) Interface() protoreflect.ProtoMessage {
	return m
}

// Range implements [protoreflect.Message].
//
// Fields are visited in field number order, followed by extensions.
func (m *Message) Range(yield func(protoreflect.FieldDescriptor, protoreflect.Value) bool) {
	if !m.IsValid() {
		return
	}

	for i := range m.impl.Type.Fields {
		f := &m.impl.Type.Fields[i]
		if m.impl.Has(f) && !yield(f.Desc, value(&m.impl, f)) {
			return
		}
	}
	for _, h := range m.impl.Exts {
		f := &h.Type.Fields[0]
		if h.Has(f) && !yield(h.Type.Extension.TypeDescriptor(), value(h, f)) {
			return
		}
	}
}

// Has implements [protoreflect.Message].
func (m *Message) Has(fd protoreflect.FieldDescriptor) bool {
	if !m.IsValid() {
		return false
	}
	dm, f := m.lookup(fd)
	return f != nil && dm.Has(f)
}

// Get implements [protoreflect.Message].
func (m *Message) Get(fd protoreflect.FieldDescriptor) protoreflect.Value {
	if !m.IsValid() {
		panic("minipb: called Get on nil *Message")
	}

	dm, f := m.lookup(fd)
	if f == nil {
		if !fd.IsExtension() && fd.ContainingMessage() != m.Descriptor() {
			panic(fmt.Errorf("minipb: %s is not a field of %s", fd.FullName(), m.Descriptor().FullName()))
		}
		return empty.Value(m.impl.Type, fd)
	}
	return value(dm, f)
}

// Set implements [protoreflect.Message].
//
// Like [Set], this does not copy strings or bytes. Messages and lists that
// were not obtained from this message's [Shared] are copied onto it.
func (m *Message) Set(fd protoreflect.FieldDescriptor, v protoreflect.Value) {
	dm, f := m.mutable(fd)
	switch f.Storage {
	case tdp.InWords:
		dm.SetWord(f, tdp.EncodeWord(f.Kind, v))
	case tdp.InBytes:
		dm.SetBytes(f, tdp.EncodeBytes(v))
	case tdp.InMessages:
		dm.SetMessage(f, m.adopt(f.Message, v.Message()))
	case tdp.InLists:
		dst := dm.List(f)
		if l, ok := v.List().(*List); ok && l.shared == dm.Shared && l.f.Kind == f.Kind {
			*dst = *l.impl
			return
		}

		src := v.List()
		*dst = dynamic.List{}
		out := &List{shared: dm.Shared, f: f, impl: dst}
		for i := range src.Len() {
			out.Append(src.Get(i))
		}
	}
}

// Clear implements [protoreflect.Message].
func (m *Message) Clear(fd protoreflect.FieldDescriptor) {
	if fd.IsExtension() {
		m.impl.ClearExtension(fd.Number())
		return
	}
	if f := m.impl.Type.ByDescriptor(fd); f != nil {
		m.impl.Clear(f)
	}
}

// Reset clears every field of this message. This speeds up [proto.Reset].
func (m *Message) Reset() {
	m.impl.Reset()
}

// Mutable implements [protoreflect.Message].
//
// Panics for scalar fields and map fields.
func (m *Message) Mutable(fd protoreflect.FieldDescriptor) protoreflect.Value {
	dm, f := m.mutable(fd)
	switch f.Storage {
	case tdp.InMessages:
		var sub *dynamic.Message
		m.Shared().mustLocked(func() { sub = dm.MutableMessage(f) })
		return protoreflect.ValueOfMessage(wrapMessage(sub))
	case tdp.InLists:
		return protoreflect.ValueOfList(&List{shared: dm.Shared, f: f, impl: dm.List(f)})
	default:
		panic(fmt.Errorf("minipb: Mutable called on scalar field %s", fd.FullName()))
	}
}

// NewField implements [protoreflect.Message].
//
// New messages and lists are allocated on this message's [Shared].
func (m *Message) NewField(fd protoreflect.FieldDescriptor) protoreflect.Value {
	var f *tdp.Field
	if fd.IsExtension() {
		f = &compiler.Holder(m.impl.Type.Library, compiler.ExtensionType(fd)).Fields[0]
	} else if f = m.impl.Type.ByDescriptor(fd); f == nil {
		if fd.IsMap() {
			return protoreflect.ValueOfMap(empty.Map{})
		}
		panic(debug.Unsupported())
	}

	switch f.Storage {
	case tdp.InMessages:
		return protoreflect.ValueOfMessage(wrapMessage(m.Shared().alloc(f.Message)))
	case tdp.InLists:
		return protoreflect.ValueOfList(&List{shared: m.impl.Shared, f: f, impl: new(dynamic.List)})
	default:
		return fd.Default()
	}
}

// GetUnknown implements [protoreflect.Message].
func (m *Message) GetUnknown() protoreflect.RawFields {
	if !m.IsValid() {
		return nil
	}
	return m.impl.Unknown
}

// SetUnknown implements [protoreflect.Message].
//
// raw is not copied.
func (m *Message) SetUnknown(raw protoreflect.RawFields) {
	m.impl.Unknown = raw
}

// WhichOneof implements [protoreflect.Message].
func (m *Message) WhichOneof(od protoreflect.OneofDescriptor) protoreflect.FieldDescriptor {
	if !m.IsValid() || od.Fields().Len() == 0 {
		return nil
	}

	if od.IsSynthetic() {
		fd := od.Fields().Get(0)
		if !m.Has(fd) {
			return nil
		}
		return fd
	}

	f := m.impl.Type.ByDescriptor(od.Fields().Get(0))
	if f == nil || f.Case < 0 {
		return nil
	}
	which := m.impl.Words[f.Case]
	if which == 0 {
		return nil
	}
	return m.Descriptor().Fields().ByNumber(protoreflect.FieldNumber(which))
}

// IsValid implements [protoreflect.Message].
func (m *Message) IsValid() bool {
	return m != nil
}

// ProtoMethods implements [protoreflect.Message].
func (m *Message) ProtoMethods() *protoiface.Methods {
	return &m.impl.Type.Methods
}

// lookup returns the storage for fd, which is either this message or an
// extension holder. Returns a nil field if fd is not bound or is an unset
// extension.
func (m *Message) lookup(fd protoreflect.FieldDescriptor) (*dynamic.Message, *tdp.Field) {
	if fd.IsExtension() {
		h := m.impl.Extension(fd.Number())
		if h == nil || h.Type.Extension.TypeDescriptor().FullName() != fd.FullName() {
			return nil, nil
		}
		return h, &h.Type.Fields[0]
	}
	return &m.impl, m.impl.Type.ByDescriptor(fd)
}

// mutable is like lookup, but allocates extension holders as necessary, and
// panics for fields that are not bound.
func (m *Message) mutable(fd protoreflect.FieldDescriptor) (*dynamic.Message, *tdp.Field) {
	if fd.IsExtension() {
		if !m.impl.Type.IsExtendable(fd.Number()) || fd.ContainingMessage().FullName() != m.Descriptor().FullName() {
			panic(fmt.Errorf("minipb: %s does not extend %s", fd.FullName(), m.Descriptor().FullName()))
		}

		h := m.impl.Extension(fd.Number())
		if h == nil || h.Type.Extension.TypeDescriptor().FullName() != fd.FullName() {
			holder := compiler.Holder(m.impl.Type.Library, compiler.ExtensionType(fd))
			m.impl.ClearExtension(fd.Number())
			m.Shared().mustLocked(func() { h = m.impl.MutableExtension(holder) })
		}
		return h, &h.Type.Fields[0]
	}

	f := m.impl.Type.ByDescriptor(fd)
	if f == nil {
		panic(debug.Unsupported())
	}
	return &m.impl, f
}

// adopt returns the storage for a message value being stored into this
// message, copying it onto this message's [Shared] if necessary.
func (m *Message) adopt(ty *tdp.Type, v protoreflect.Message) *dynamic.Message {
	if sub, ok := v.Interface().(*Message); ok && sub.impl.Shared == m.impl.Shared && sub.impl.Type == ty {
		return &sub.impl
	}

	sub := m.Shared().alloc(ty)
	mergeInto(sub, v)
	return sub
}

// mergeInto copies v into a freshly allocated message.
func mergeInto(dst *dynamic.Message, v protoreflect.Message) {
	if v.IsValid() {
		proto.Merge(wrapMessage(dst), v.Interface())
	}
}

// value returns the value of a bound field f of m.
func value(m *dynamic.Message, f *tdp.Field) protoreflect.Value {
	switch f.Storage {
	case tdp.InWords:
		return tdp.DecodeWord(f.Kind, m.GetWord(f))
	case tdp.InBytes:
		return tdp.DecodeBytes(f.Kind, m.GetBytes(f))
	case tdp.InMessages:
		if sub := m.GetMessage(f); sub != nil {
			return protoreflect.ValueOfMessage(wrapMessage(sub))
		}
		return protoreflect.ValueOfMessage(empty.NewMessage(f.Message))
	default:
		return protoreflect.ValueOfList(&List{shared: m.Shared, f: f, impl: m.List(f)})
	}
}
