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
	"buf.build/go/minipb/internal/tdp/empty"
	"buf.build/go/minipb/internal/xunsafe"
)

// MessageType implements [protoreflect.MessageType].
//
// To obtain a [MessageType], use any of the Compile* functions.
type MessageType struct {
	impl tdp.Type
}

var _ protoreflect.MessageType = (*MessageType)(nil)

// Descriptor returns the message descriptor.
//
// Descriptor implements [protoreflect.MessageType].
func (t *MessageType) Descriptor() protoreflect.MessageDescriptor {
	if t == nil {
		return nil
	}
	return t.impl.Descriptor
}

// New returns a newly allocated empty message, on a fresh [Shared].
//
// New implements [protoreflect.MessageType].
func (t *MessageType) New() protoreflect.Message {
	return new(Shared).NewMessage(t)
}

// Zero returns an empty, read-only message.
//
// Zero implements [protoreflect.MessageType].
func (t *MessageType) Zero() protoreflect.Message {
	return empty.NewMessage(&t.impl)
}

// Format implements [fmt.Formatter].
func (t *MessageType) Format(f fmt.State, verb rune) {
	if f.Flag('#') {
		fmt.Fprintf(f, fmt.FormatString(f, verb), t.Descriptor())
	} else {
		fmt.Fprint(f, t.Descriptor().FullName())
	}
}

// wrapType wraps an internal Type pointer.
func wrapType(t *tdp.Type) *MessageType {
	return xunsafe.Cast[MessageType](t)
}

func init() {
	empty.WrapType = func(t *tdp.Type) protoreflect.MessageType {
		return wrapType(t)
	}
}
