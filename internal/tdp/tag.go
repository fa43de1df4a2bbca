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

	"buf.build/go/minipb/internal/dbg"
)

// Tag is a field tag, pre-encoded in its wire form.
type Tag struct {
	buf [5]byte
	len uint8
}

// EncodeTag encodes the tag for the given field number and wire type.
func EncodeTag(n protowire.Number, t protowire.Type) Tag {
	var tag Tag
	tag.len = uint8(len(protowire.AppendTag(tag.buf[:0], n, t)))
	return tag
}

// Len returns the encoded length of this tag.
func (t Tag) Len() int {
	return int(t.len)
}

// Append appends this tag to b.
func (t Tag) Append(b []byte) []byte {
	return append(b, t.buf[:t.len]...)
}

// Decode decodes this tag back into a number and a wire type.
func (t Tag) Decode() (protowire.Number, protowire.Type) {
	n, ty, _ := protowire.ConsumeTag(t.buf[:t.len])
	return n, ty
}

// Format implements [fmt.Formatter].
func (t Tag) Format(s fmt.State, verb rune) {
	n, ty := t.Decode()
	dbg.Fprintf("%x:%d:%d", t.buf[:t.len], n, ty).Format(s, verb)
}
