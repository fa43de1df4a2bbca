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
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/xsync"
)

// Library is the output of one compilation: the [Type]s for a root message
// and every message type reachable from it.
type Library struct {
	Types map[protoreflect.MessageDescriptor]*Type

	// Holder types for extensions resolved while decoding, and types for the
	// message-typed extensions among them that are not in Types.
	Holders xsync.Map[protoreflect.ExtensionType, *Type]
	Lazy    xsync.Map[protoreflect.MessageDescriptor, *Type]

	// Compilation settings, so that lazily compiled types match. Actually a
	// compiler.Options.
	Metadata any
}

// Type returns the [Type] for the given descriptor in this library.
func (l *Library) Type(md protoreflect.MessageDescriptor) (*Type, bool) {
	if t, ok := l.Types[md]; ok {
		return t, true
	}
	return l.Lazy.Load(md)
}
