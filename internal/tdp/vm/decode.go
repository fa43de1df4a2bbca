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

package vm

import (
	"unicode/utf8"

	"google.golang.org/protobuf/encoding/protowire"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/compiler"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/zigzag"
)

// decoder is the state for a single call to [Unmarshal].
//
// Every buffer the decoder looks at is a subslice of src obtained without
// three-index slicing, so cap(src)-cap(b) is the offset of b in src.
type decoder struct {
	Options
	src []byte
}

// message decodes the records in b into m.
func (d *decoder) message(m *dynamic.Message, b []byte, depth int) {
	if depth > d.MaxDepth {
		d.fail(ErrorRecursionDepth, b)
	}

	for len(b) > 0 {
		record := b
		num, wt, n := protowire.ConsumeTag(b)
		if n < 0 {
			d.fail(ErrorCode(-n), b)
		}
		if num > protowire.MaxValidNumber {
			d.fail(ErrorFieldNumber, b)
		}
		b = b[n:]

		if f, holder := d.lookup(m, num); f != nil && f.Accepts(wt) {
			target := m
			if holder != nil {
				target = m.MutableExtension(holder)
			}
			b = d.field(m, target, f, wt, record, b, depth)
			continue
		}

		n = protowire.ConsumeFieldValue(num, wt, b)
		if n < 0 {
			d.fail(ErrorCode(-n), b)
		}
		b = b[n:]

		d.unknown(m, record[:len(record)-len(b)])
	}
}

// unknown appends an unknown record to m.
func (d *decoder) unknown(m *dynamic.Message, raw []byte) {
	if !d.DiscardUnknown {
		m.Unknown = m.Shared.Arena().Append(m.Unknown, raw...)
	}
}

// lookup finds the field that records numbered num should be decoded into.
// If it is an extension, this also returns the type of its holder.
func (d *decoder) lookup(m *dynamic.Message, num protowire.Number) (*tdp.Field, *tdp.Type) {
	ty := m.Type
	if f := ty.ByNumber(num); f != nil {
		return f, nil
	}
	if ty.Extension != nil || !ty.IsExtendable(num) {
		return nil, nil
	}

	holder := ty.BoundExtension(num)
	if h := m.Extension(num); h != nil {
		holder = h.Type
	}
	if holder == nil {
		if d.Extensions == nil {
			return nil, nil
		}
		xt, err := d.Extensions.FindExtensionByNumber(ty.Descriptor.FullName(), num)
		if err != nil || xt.TypeDescriptor().Kind() == protoreflect.GroupKind {
			return nil, nil
		}
		holder = compiler.Holder(ty.Library, xt)
	}
	return &holder.Fields[0], holder
}

// field decodes a single record for f into m, whose tag has already been
// consumed. record starts at the tag.
//
// Unknown values of closed enums are appended to owner's unknown fields,
// which is m except when m is an extension holder.
func (d *decoder) field(owner, m *dynamic.Message, f *tdp.Field, wt protowire.Type, record, b []byte, depth int) []byte {
	if wt != protowire.BytesType {
		v, n := d.scalar(f, b)
		switch {
		case !known(f, v):
			d.unknown(owner, record[:len(record)-len(b)+n])
		case f.Repeated:
			m.AppendWord(f, v)
		default:
			m.SetWord(f, v)
		}
		return b[n:]
	}

	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		d.fail(ErrorCode(-n), b)
	}

	switch {
	case f.Packable():
		for len(v) > 0 {
			w, k := d.scalar(f, v)
			if known(f, w) {
				m.AppendWord(f, w)
			} else if !d.DiscardUnknown {
				// Closed enums are always varints; keep the bytes as written.
				raw := append(f.Tag.Append(nil), v[:k]...)
				owner.Unknown = owner.Shared.Arena().Append(owner.Unknown, raw...)
			}
			v = v[k:]
		}

	case f.Kind == protoreflect.MessageKind:
		var sub *dynamic.Message
		if f.Repeated {
			sub = m.AppendMessage(f)
		} else {
			sub = m.MutableMessage(f)
		}
		d.message(sub, v, depth+1)

	default:
		if f.UTF8 && !d.AllowInvalidUTF8 && !utf8.Valid(v) {
			d.fail(ErrorUTF8, b)
		}
		v = v[:len(v):len(v)]
		if f.Repeated {
			m.AppendBytes(f, v)
		} else {
			m.SetBytes(f, v)
		}
	}

	return b[n:]
}

// scalar decodes a single non-length-prefixed value for f, returning it in
// word form along with the number of bytes consumed.
func (d *decoder) scalar(f *tdp.Field, b []byte) (uint64, int) {
	switch f.WireType() {
	case protowire.Fixed32Type:
		v, n := protowire.ConsumeFixed32(b)
		if n < 0 {
			d.fail(ErrorCode(-n), b)
		}
		return uint64(v), n

	case protowire.Fixed64Type:
		v, n := protowire.ConsumeFixed64(b)
		if n < 0 {
			d.fail(ErrorCode(-n), b)
		}
		return v, n
	}

	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		d.fail(ErrorCode(-n), b)
	}

	switch f.Kind {
	case protoreflect.BoolKind:
		if v != 0 {
			v = 1
		}
	case protoreflect.Int32Kind, protoreflect.Uint32Kind, protoreflect.EnumKind:
		v = uint64(uint32(v))
	case protoreflect.Sint32Kind:
		v = uint64(uint32(zigzag.Decode(int32(v))))
	case protoreflect.Sint64Kind:
		v = uint64(zigzag.Decode(int64(v)))
	}
	return v, n
}

// known returns whether v is a value f may hold. Only closed enums reject
// values.
func known(f *tdp.Field, v uint64) bool {
	return f.Enum == nil || f.Enum.Values().ByNumber(protoreflect.EnumNumber(int32(v))) != nil
}

// fail aborts decoding with an error at the start of b.
func (d *decoder) fail(code ErrorCode, b []byte) {
	panic(&ParseError{code: code, offset: cap(d.src) - cap(b)})
}
