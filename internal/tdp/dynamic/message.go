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

// Package dynamic contains the storage for minipb's messages, and the
// primitive field operations that every other component is written in terms
// of.
package dynamic

import (
	"fmt"
	"slices"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/tdp"
)

// Message is a dynamic message value.
//
// Every slice in a Message, and every submessage, is allocated on the
// message's [Shared]. Field values are addressed by the slots the compiler
// assigned in [tdp.Field].
type Message struct {
	Shared *Shared
	Type   *tdp.Type

	Words []uint64 // Presence bits, oneof cases, then scalar values.
	Bytes [][]byte
	Msgs  []*Message
	Lists []List

	Unknown []byte     // Unknown fields, in wire order.
	Exts    []*Message // Extension holders, sorted by number.
}

// List is the storage for a repeated field. Only the slice matching the
// field's kind is used.
type List struct {
	Words []uint64
	Bytes [][]byte
	Msgs  []*Message
}

// Len returns the number of elements in this list.
func (l *List) Len() int {
	return len(l.Words) + len(l.Bytes) + len(l.Msgs)
}

// Has returns whether f is set.
func (m *Message) Has(f *tdp.Field) bool {
	switch f.Presence {
	case tdp.Implicit:
		if f.Storage == tdp.InBytes {
			return len(m.Bytes[f.Slot]) > 0
		}
		return m.Words[f.Slot] != 0
	case tdp.Hasbit:
		return m.Words[f.Hasbit/64]&(1<<(f.Hasbit%64)) != 0
	case tdp.Oneof:
		return m.Words[f.Case] == uint64(f.Number)
	case tdp.Pointer:
		return m.Msgs[f.Slot] != nil
	default:
		return m.Lists[f.Slot].Len() > 0
	}
}

// GetWord returns the value of a scalar field, or its default if it is unset.
func (m *Message) GetWord(f *tdp.Field) uint64 {
	if f.Presence != tdp.Implicit && !m.Has(f) {
		return f.Default
	}
	return m.Words[f.Slot]
}

// SetWord sets the value of a scalar field, marking it as present.
func (m *Message) SetWord(f *tdp.Field, v uint64) {
	m.mark(f)
	m.Words[f.Slot] = v
}

// GetBytes returns the value of a string or bytes field, or its default if it
// is unset.
func (m *Message) GetBytes(f *tdp.Field) []byte {
	if f.Presence != tdp.Implicit && !m.Has(f) {
		return f.DefaultBytes
	}
	return m.Bytes[f.Slot]
}

// SetBytes sets the value of a string or bytes field, marking it as present.
//
// b is stored as-is: the message aliases it from now on.
func (m *Message) SetBytes(f *tdp.Field, b []byte) {
	m.mark(f)
	m.Bytes[f.Slot] = b
}

// GetMessage returns the value of a singular message field, or nil if it is
// unset.
func (m *Message) GetMessage(f *tdp.Field) *Message {
	if f.Presence == tdp.Oneof && !m.Has(f) {
		return nil
	}
	return m.Msgs[f.Slot]
}

// MutableMessage returns the value of a singular message field, allocating
// an empty one if it is unset.
func (m *Message) MutableMessage(f *tdp.Field) *Message {
	m.mark(f)
	sub := m.Msgs[f.Slot]
	if sub == nil {
		sub = m.Shared.New(f.Message)
		m.Msgs[f.Slot] = sub
	}
	return sub
}

// SetMessage sets the value of a singular message field. sub must have been
// allocated on this message's [Shared]. A nil sub clears the field.
func (m *Message) SetMessage(f *tdp.Field, sub *Message) {
	if sub == nil {
		m.Clear(f)
		return
	}
	m.mark(f)
	m.Msgs[f.Slot] = sub
}

// Clear resets f to its default value. Clearing an unset field is a no-op.
func (m *Message) Clear(f *tdp.Field) {
	switch f.Presence {
	case tdp.Hasbit:
		m.Words[f.Hasbit/64] &^= 1 << (f.Hasbit % 64)
	case tdp.Oneof:
		if !m.Has(f) {
			// The storage may belong to the member that is set.
			return
		}
		m.Words[f.Case] = 0
	}
	m.wipe(f)
}

// List returns the storage for a repeated field.
func (m *Message) List(f *tdp.Field) *List {
	return &m.Lists[f.Slot]
}

// AppendWord appends a scalar value to a repeated field.
func (m *Message) AppendWord(f *tdp.Field, v uint64) {
	m.Lists[f.Slot].AppendWord(m.Shared, v)
}

// AppendBytes appends a string or bytes value to a repeated field. b is
// stored as-is.
func (m *Message) AppendBytes(f *tdp.Field, b []byte) {
	m.Lists[f.Slot].AppendBytes(m.Shared, b)
}

// AppendMessage appends a new, empty message to a repeated field and
// returns it.
func (m *Message) AppendMessage(f *tdp.Field) *Message {
	sub := m.Shared.New(f.Message)
	m.Lists[f.Slot].AppendMessage(m.Shared, sub)
	return sub
}

// AppendWord appends a scalar value, growing the list on s.
func (l *List) AppendWord(s *Shared, v uint64) {
	l.Words = append(arena.Grow(&s.words, &s.arena, l.Words, 1), v)
}

// AppendBytes appends a string or bytes value, growing the list on s.
func (l *List) AppendBytes(s *Shared, b []byte) {
	l.Bytes = append(arena.Grow(&s.bytes, &s.arena, l.Bytes, 1), b)
}

// AppendMessage appends an existing message, growing the list on s. sub must
// have been allocated on s.
func (l *List) AppendMessage(s *Shared, sub *Message) {
	l.Msgs = append(arena.Grow(&s.msgs, &s.arena, l.Msgs, 1), sub)
}

// Truncate shortens the list to n elements.
func (l *List) Truncate(n int) {
	switch {
	case l.Words != nil:
		l.Words = l.Words[:n]
	case l.Bytes != nil:
		l.Bytes = l.Bytes[:n]
	default:
		l.Msgs = l.Msgs[:n]
	}
}

// Extension returns the holder for the extension with the given number, or
// nil if it is not set.
func (m *Message) Extension(n protowire.Number) *Message {
	i, ok := m.findExtension(n)
	if !ok {
		return nil
	}
	return m.Exts[i]
}

// MutableExtension returns the holder for the extension held by holder,
// allocating it if necessary.
func (m *Message) MutableExtension(holder *tdp.Type) *Message {
	n := holder.Fields[0].Number
	i, ok := m.findExtension(n)
	if ok {
		return m.Exts[i]
	}

	h := m.Shared.New(holder)
	s := m.Shared
	m.Exts = slices.Insert(arena.Grow(&s.msgs, &s.arena, m.Exts, 1), i, h)
	return h
}

// ClearExtension removes the extension with the given number.
func (m *Message) ClearExtension(n protowire.Number) {
	if i, ok := m.findExtension(n); ok {
		m.Exts = slices.Delete(m.Exts, i, i+1)
	}
}

// Reset clears every field of this message, including unknown fields and
// extensions.
func (m *Message) Reset() {
	clear(m.Words)
	clear(m.Bytes)
	clear(m.Msgs)
	clear(m.Lists)
	m.Unknown = nil
	m.Exts = nil
}

// Dump returns a human-readable dump of this message's storage.
func (m *Message) Dump() string {
	buf := new(strings.Builder)
	fmt.Fprintf(buf, "type:  %v\n", m.Type)
	fmt.Fprintf(buf, "words: %#x\n", m.Words)
	for i := range m.Type.Fields {
		f := &m.Type.Fields[i]
		fmt.Fprintf(buf, "  %v", f)
		switch {
		case !m.Has(f):
			fmt.Fprint(buf, " unset")
		case f.Storage == tdp.InWords:
			fmt.Fprintf(buf, " = %#x", m.Words[f.Slot])
		case f.Storage == tdp.InBytes:
			fmt.Fprintf(buf, " = %q", m.Bytes[f.Slot])
		case f.Storage == tdp.InMessages:
			fmt.Fprintf(buf, " = %p", m.Msgs[f.Slot])
		default:
			fmt.Fprintf(buf, " = [%d]", m.Lists[f.Slot].Len())
		}
		fmt.Fprintln(buf)
	}
	for _, h := range m.Exts {
		fmt.Fprintf(buf, "  [%v]\n", h.Type.Extension.TypeDescriptor().FullName())
	}
	if len(m.Unknown) > 0 {
		fmt.Fprintf(buf, "unknown: %x\n", m.Unknown)
	}
	return buf.String()
}

// mark records that f has been set.
func (m *Message) mark(f *tdp.Field) {
	switch f.Presence {
	case tdp.Hasbit:
		m.Words[f.Hasbit/64] |= 1 << (f.Hasbit % 64)
	case tdp.Oneof:
		which := m.Words[f.Case]
		if which == uint64(f.Number) {
			return
		}
		if which != 0 {
			if g := m.Type.ByNumber(protowire.Number(which)); g != nil {
				m.wipe(g)
			}
		}
		m.Words[f.Case] = uint64(f.Number)
	}
}

// wipe zeroes the storage for f, without touching its presence.
func (m *Message) wipe(f *tdp.Field) {
	switch f.Storage {
	case tdp.InWords:
		m.Words[f.Slot] = 0
	case tdp.InBytes:
		m.Bytes[f.Slot] = nil
	case tdp.InMessages:
		m.Msgs[f.Slot] = nil
	case tdp.InLists:
		m.Lists[f.Slot] = List{}
	}
}

func (m *Message) findExtension(n protowire.Number) (int, bool) {
	return slices.BinarySearchFunc(m.Exts, n, func(h *Message, n protowire.Number) int {
		return int(h.Type.Fields[0].Number - n)
	})
}
