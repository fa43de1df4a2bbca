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

// Package encoder contains minipb's wire encoder.
//
// Encoding is two passes over the message tree. The first computes the size
// of every submessage, in pre-order, and the second appends records using
// those sizes for length prefixes. Fields are written in ascending field
// number order, then extensions in ascending number order, then unknown
// fields.
package encoder

import (
	"errors"
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/sync2"
	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/zigzag"
)

// ErrMissingRequired is returned when a required field is not set.
var ErrMissingRequired = errors.New("minipb: required field not set")

// Options is configuration for the encoder.
type Options struct {
	// If set, unknown fields are not written.
	SkipUnknown bool

	// If set, encoding fails if any required field in the tree is unset.
	CheckRequired bool
}

var encoders = sync2.Pool[encoder]{
	Reset: func(e *encoder) {
		e.Options = Options{}
		e.sizes = e.sizes[:0]
		e.next = 0
	},
}

// encoder is the state for a single encoding operation.
type encoder struct {
	Options
	sizes []int // Sizes of submessages, in pre-order.
	next  int   // Index of the next entry of sizes to use.
}

// Size returns the encoded size of m.
func Size(m *dynamic.Message, options Options) int {
	e, drop := encoders.Get()
	defer drop()
	e.Options = options
	return e.size(m)
}

// Append appends the encoding of m to b.
//
// b is grown with the built-in append, so this never allocates on m's arena.
func Append(b []byte, m *dynamic.Message, options Options) ([]byte, error) {
	if options.CheckRequired {
		if err := CheckRequired(m); err != nil {
			return b, err
		}
	}

	e, drop := encoders.Get()
	defer drop()
	e.Options = options

	n := e.size(m)
	if cap(b)-len(b) < n {
		b = append(make([]byte, 0, len(b)+n), b...)
	}
	return e.encode(b, m, n), nil
}

// Marshal encodes m into a buffer allocated on m's arena.
//
// Returns [arena.ErrExhausted] if the arena's limit would be exceeded.
func Marshal(m *dynamic.Message, options Options) (out []byte, err error) {
	defer arena.Catch(&err)

	if options.CheckRequired {
		if err := CheckRequired(m); err != nil {
			return nil, err
		}
	}

	e, drop := encoders.Get()
	defer drop()
	e.Options = options

	n := e.size(m)
	return e.encode(alloc(m.Shared, n)[:0], m, n), nil
}

func alloc(s *dynamic.Shared, n int) []byte {
	s.Lock.Lock()
	defer s.Lock.Unlock()
	return s.Arena().Alloc(n)
}

// encode appends m to b, once sizes have been computed.
func (e *encoder) encode(b []byte, m *dynamic.Message, n int) []byte {
	start := len(b)
	b = e.append(b, m)
	debug.Assert(len(b)-start == n, "encoded %d bytes, expected %d", len(b)-start, n)
	debug.Log([]any{"%p", e}, "encode", "%v, %d bytes", m.Type, n)
	return b
}

// CheckRequired returns an error if any required field in m's tree is unset.
func CheckRequired(m *dynamic.Message) error {
	ty := m.Type
	if ty.HasRequired {
		for i := range ty.Fields {
			f := &ty.Fields[i]
			if f.Required && !m.Has(f) {
				return fmt.Errorf("%w: %s", ErrMissingRequired, f.Desc.FullName())
			}
			if f.Message == nil || !f.Message.HasRequired || !m.Has(f) {
				continue
			}

			if !f.Repeated {
				if err := CheckRequired(m.Msgs[f.Slot]); err != nil {
					return err
				}
				continue
			}
			for _, sub := range m.List(f).Msgs {
				if err := CheckRequired(sub); err != nil {
					return err
				}
			}
		}
	}

	// Extensions resolved while decoding are not reflected in HasRequired.
	for _, h := range m.Exts {
		if err := CheckRequired(h); err != nil {
			return err
		}
	}
	return nil
}

// size computes the encoded size of m, recording the sizes of its
// submessages.
func (e *encoder) size(m *dynamic.Message) int {
	var n int
	for i := range m.Type.Fields {
		if f := &m.Type.Fields[i]; m.Has(f) {
			n += e.sizeField(m, f)
		}
	}
	for _, h := range m.Exts {
		if f := &h.Type.Fields[0]; h.Has(f) {
			n += e.sizeField(h, f)
		}
	}
	if !e.SkipUnknown {
		n += len(m.Unknown)
	}
	return n
}

func (e *encoder) sizeField(m *dynamic.Message, f *tdp.Field) int {
	tag := f.Tag.Len()
	switch f.Storage {
	case tdp.InWords:
		return tag + scalarSize(f, m.Words[f.Slot])
	case tdp.InBytes:
		return tag + protowire.SizeBytes(len(m.Bytes[f.Slot]))
	case tdp.InMessages:
		return tag + e.sizeMessage(m.Msgs[f.Slot])
	}

	var n int
	l := m.List(f)
	switch {
	case f.Kind == protoreflect.MessageKind:
		for _, sub := range l.Msgs {
			n += tag + e.sizeMessage(sub)
		}
	case len(l.Bytes) > 0:
		for _, b := range l.Bytes {
			n += tag + protowire.SizeBytes(len(b))
		}
	case f.Packed:
		n = tag + protowire.SizeBytes(packedSize(f, l.Words))
	default:
		for _, w := range l.Words {
			n += tag + scalarSize(f, w)
		}
	}
	return n
}

// sizeMessage returns the size of a length-prefixed submessage.
func (e *encoder) sizeMessage(sub *dynamic.Message) int {
	i := len(e.sizes)
	e.sizes = append(e.sizes, 0)
	n := e.size(sub)
	e.sizes[i] = n
	return protowire.SizeBytes(n)
}

// append appends the encoding of m to b. The sizes of m's submessages must
// have been recorded with [encoder.size] first.
func (e *encoder) append(b []byte, m *dynamic.Message) []byte {
	for i := range m.Type.Fields {
		if f := &m.Type.Fields[i]; m.Has(f) {
			b = e.appendField(b, m, f)
		}
	}
	for _, h := range m.Exts {
		if f := &h.Type.Fields[0]; h.Has(f) {
			b = e.appendField(b, h, f)
		}
	}
	if !e.SkipUnknown {
		b = append(b, m.Unknown...)
	}
	return b
}

func (e *encoder) appendField(b []byte, m *dynamic.Message, f *tdp.Field) []byte {
	switch f.Storage {
	case tdp.InWords:
		b = f.Tag.Append(b)
		return appendScalar(b, f, m.Words[f.Slot])
	case tdp.InBytes:
		b = f.Tag.Append(b)
		return protowire.AppendBytes(b, m.Bytes[f.Slot])
	case tdp.InMessages:
		b = f.Tag.Append(b)
		return e.appendMessage(b, m.Msgs[f.Slot])
	}

	l := m.List(f)
	switch {
	case f.Kind == protoreflect.MessageKind:
		for _, sub := range l.Msgs {
			b = f.Tag.Append(b)
			b = e.appendMessage(b, sub)
		}
	case len(l.Bytes) > 0:
		for _, v := range l.Bytes {
			b = f.Tag.Append(b)
			b = protowire.AppendBytes(b, v)
		}
	case f.Packed:
		b = protowire.AppendTag(b, f.Number, protowire.BytesType)
		b = protowire.AppendVarint(b, uint64(packedSize(f, l.Words)))
		for _, w := range l.Words {
			b = appendScalar(b, f, w)
		}
	default:
		for _, w := range l.Words {
			b = f.Tag.Append(b)
			b = appendScalar(b, f, w)
		}
	}
	return b
}

func (e *encoder) appendMessage(b []byte, sub *dynamic.Message) []byte {
	n := e.sizes[e.next]
	e.next++
	b = protowire.AppendVarint(b, uint64(n))
	return e.append(b, sub)
}

func packedSize(f *tdp.Field, words []uint64) int {
	switch f.WireType() {
	case protowire.Fixed32Type:
		return 4 * len(words)
	case protowire.Fixed64Type:
		return 8 * len(words)
	}
	var n int
	for _, w := range words {
		n += protowire.SizeVarint(varint(f, w))
	}
	return n
}

func scalarSize(f *tdp.Field, w uint64) int {
	switch f.WireType() {
	case protowire.Fixed32Type:
		return 4
	case protowire.Fixed64Type:
		return 8
	}
	return protowire.SizeVarint(varint(f, w))
}

func appendScalar(b []byte, f *tdp.Field, w uint64) []byte {
	switch f.WireType() {
	case protowire.Fixed32Type:
		return protowire.AppendFixed32(b, uint32(w))
	case protowire.Fixed64Type:
		return protowire.AppendFixed64(b, w)
	}
	return protowire.AppendVarint(b, varint(f, w))
}

// varint converts a word into the value that goes on the wire.
func varint(f *tdp.Field, w uint64) uint64 {
	switch f.Kind {
	case protoreflect.Int32Kind, protoreflect.EnumKind:
		return uint64(int64(int32(w)))
	case protoreflect.Sint32Kind:
		return zigzag.Encode(int32(w))
	case protoreflect.Sint64Kind:
		return zigzag.Encode(int64(w))
	}
	return w
}
