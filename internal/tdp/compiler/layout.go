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

package compiler

import (
	"cmp"
	"slices"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
)

// maxDense is the largest field number that is looked up by direct index
// rather than by binary search.
const maxDense = 64

// layout assigns storage to every bound field of ty.
func layout(ty *tdp.Type) {
	md := ty.Descriptor
	fields := md.Fields()

	// Presence words come first, then oneof case words, so count those
	// before handing out any scalar slots.
	var hasbits int
	cases := make(map[protoreflect.OneofDescriptor]int)
	for i := range fields.Len() {
		fd := fields.Get(i)
		switch {
		case !bound(fd):
		case isRealOneof(fd):
			od := fd.ContainingOneof()
			if _, ok := cases[od]; !ok {
				cases[od] = len(cases)
			}
		case !fd.IsList() && fd.Message() == nil && fd.HasPresence():
			hasbits++
		}
	}
	ty.HasbitWords = (hasbits + 63) / 64
	ty.Oneofs = len(cases)
	ty.Words = ty.HasbitWords + ty.Oneofs

	var hasbit uint32
	ty.ByIndex = make([]int32, fields.Len())
	for i := range fields.Len() {
		fd := fields.Get(i)
		ty.ByIndex[i] = -1
		if !bound(fd) {
			continue
		}

		f := newField(ty, fd)
		switch f.Presence {
		case tdp.Hasbit:
			f.Hasbit = hasbit
			hasbit++
		case tdp.Oneof:
			f.Case = ty.HasbitWords + cases[fd.ContainingOneof()]
		}
		ty.Fields = append(ty.Fields, f)
	}

	slices.SortFunc(ty.Fields, func(a, b tdp.Field) int {
		return cmp.Compare(a.Number, b.Number)
	})

	var dense int
	for i := range ty.Fields {
		f := &ty.Fields[i]
		ty.ByIndex[f.Desc.Index()] = int32(i)
		if f.Number <= maxDense {
			dense = int(f.Number)
		}
	}
	ty.Dense = make([]int32, dense)
	for i := range ty.Fields {
		f := &ty.Fields[i]
		if int(f.Number) <= dense {
			ty.Dense[f.Number-1] = int32(i + 1)
		}
	}
}

// newField builds the field for fd, allocating a slot for it in ty. Presence
// bits and oneof case words are assigned by the caller.
func newField(ty *tdp.Type, fd protoreflect.FieldDescriptor) tdp.Field {
	f := tdp.Field{
		Desc:     fd,
		Number:   fd.Number(),
		Kind:     fd.Kind(),
		Tag:      tdp.EncodeTag(fd.Number(), tdp.WireType(fd.Kind())),
		Repeated: fd.IsList(),
		Required: fd.Cardinality() == protoreflect.Required,
		UTF8:     fd.Kind() == protoreflect.StringKind && enforceUTF8(fd),
		Case:     -1,
	}
	if ed := fd.Enum(); ed != nil && ed.IsClosed() {
		f.Enum = ed
	}

	switch {
	case fd.IsList():
		f.Storage = tdp.InLists
		f.Presence = tdp.NonEmpty
		f.Packed = fd.IsPacked()
		f.Slot = ty.Lists
		ty.Lists++
		return f

	case fd.Message() != nil:
		f.Storage = tdp.InMessages
		f.Presence = tdp.Pointer
		f.Slot = ty.Msgs
		ty.Msgs++

	case f.Kind == protoreflect.StringKind || f.Kind == protoreflect.BytesKind:
		f.Storage = tdp.InBytes
		f.Slot = ty.Bytes
		ty.Bytes++
		f.DefaultBytes = tdp.EncodeBytes(fd.Default())

	default:
		f.Storage = tdp.InWords
		f.Slot = ty.Words
		ty.Words++
		f.Default = tdp.EncodeWord(f.Kind, fd.Default())
	}

	switch {
	case isRealOneof(fd):
		f.Presence = tdp.Oneof
	case f.Storage == tdp.InMessages:
	case fd.HasPresence():
		f.Presence = tdp.Hasbit
	default:
		f.Presence = tdp.Implicit
	}
	return f
}

// bound returns whether fd gets storage in its message. Records for unbound
// fields are kept as unknown fields.
func bound(fd protoreflect.FieldDescriptor) bool {
	return !fd.IsMap() && !fd.IsWeak() && fd.Kind() != protoreflect.GroupKind
}

func isRealOneof(fd protoreflect.FieldDescriptor) bool {
	od := fd.ContainingOneof()
	return od != nil && !od.IsSynthetic()
}

// enforceUTF8 returns whether string field fd must hold valid UTF-8.
func enforceUTF8(fd protoreflect.FieldDescriptor) bool {
	if fd.Syntax() == protoreflect.Proto3 {
		return true
	}
	fd2, ok := fd.(interface{ EnforceUTF8() bool })
	return ok && fd2.EnforceUTF8()
}
