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
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/tdp"
	"buf.build/go/minipb/internal/tdp/dynamic"
)

// List is the [protoreflect.List] for a repeated field of a [Message].
type List struct {
	shared *dynamic.Shared
	f      *tdp.Field
	impl   *dynamic.List
}

var _ protoreflect.List = (*List)(nil)

// IsValid implements [protoreflect.List].
func (l *List) IsValid() bool {
	return l != nil
}

// Len implements [protoreflect.List].
func (l *List) Len() int {
	return l.impl.Len()
}

// Get implements [protoreflect.List].
func (l *List) Get(i int) protoreflect.Value {
	switch {
	case l.f.Kind == protoreflect.MessageKind:
		return protoreflect.ValueOfMessage(wrapMessage(l.impl.Msgs[i]))
	case isBytes(l.f):
		return tdp.DecodeBytes(l.f.Kind, l.impl.Bytes[i])
	default:
		return tdp.DecodeWord(l.f.Kind, l.impl.Words[i])
	}
}

// Set implements [protoreflect.List].
func (l *List) Set(i int, v protoreflect.Value) {
	switch {
	case l.f.Kind == protoreflect.MessageKind:
		l.impl.Msgs[i] = l.adopt(v.Message())
	case isBytes(l.f):
		l.impl.Bytes[i] = tdp.EncodeBytes(v)
	default:
		l.impl.Words[i] = tdp.EncodeWord(l.f.Kind, v)
	}
}

// Append implements [protoreflect.List].
func (l *List) Append(v protoreflect.Value) {
	var sub *dynamic.Message
	if l.f.Kind == protoreflect.MessageKind {
		sub = l.adopt(v.Message())
	}

	wrapShared(l.shared).mustLocked(func() {
		switch {
		case sub != nil:
			l.impl.AppendMessage(l.shared, sub)
		case isBytes(l.f):
			l.impl.AppendBytes(l.shared, tdp.EncodeBytes(v))
		default:
			l.impl.AppendWord(l.shared, tdp.EncodeWord(l.f.Kind, v))
		}
	})
}

// AppendMutable implements [protoreflect.List].
func (l *List) AppendMutable() protoreflect.Value {
	v := l.NewElement()
	l.Append(v)
	return v
}

// Truncate implements [protoreflect.List].
func (l *List) Truncate(n int) {
	l.impl.Truncate(n)
}

// NewElement implements [protoreflect.List].
func (l *List) NewElement() protoreflect.Value {
	if l.f.Kind == protoreflect.MessageKind {
		return protoreflect.ValueOfMessage(wrapMessage(wrapShared(l.shared).alloc(l.f.Message)))
	}
	return l.f.Desc.Default()
}

// adopt is like [Message.adopt], for list elements.
func (l *List) adopt(v protoreflect.Message) *dynamic.Message {
	if sub, ok := v.Interface().(*Message); ok && sub.impl.Shared == l.shared && sub.impl.Type == l.f.Message {
		return &sub.impl
	}
	sub := wrapShared(l.shared).alloc(l.f.Message)
	mergeInto(sub, v)
	return sub
}
