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
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/dynamicpb"

	"buf.build/go/minipb/internal/tdp"
)

// ExtensionResolver provides a mechanism for retrieving the extensions
// associated with some message.
//
// This functionality is provided by [protoregistry.Types.RangeExtensionsByMessage],
// but there is no standard interface for this.
type ExtensionResolver interface {
	// FindExtensionsByMessage looks up all known extensions for the message
	// with the given name.
	FindExtensionsByMessage(name protoreflect.FullName) []protoreflect.ExtensionDescriptor
}

// ExtensionsFromRegistry wraps a [protoregistry.Types] to implement
// [ExtensionResolver].
type ExtensionsFromRegistry protoregistry.Types

// FindExtensionsByMessage implements [ExtensionResolver].
func (e *ExtensionsFromRegistry) FindExtensionsByMessage(
	name protoreflect.FullName,
) []protoreflect.ExtensionDescriptor {
	r := (*protoregistry.Types)(e)
	out := make([]protoreflect.ExtensionDescriptor, 0, r.NumExtensionsByMessage(name))
	r.RangeExtensionsByMessage(name, func(xt protoreflect.ExtensionType) bool {
		// Keep the ExtensionTypeDescriptor, so that the original Go type of
		// the extension can be recovered.
		out = append(out, xt.TypeDescriptor())
		return true
	})
	return out
}

// ExtensionsFromFiles returns an [ExtensionResolver] for every extension
// declared in a file registry.
func ExtensionsFromFiles(files *protoregistry.Files) ExtensionResolver {
	return filesResolver{files}
}

type filesResolver struct{ files *protoregistry.Files }

// FindExtensionsByMessage implements [ExtensionResolver].
func (r filesResolver) FindExtensionsByMessage(
	name protoreflect.FullName,
) []protoreflect.ExtensionDescriptor {
	var out []protoreflect.ExtensionDescriptor
	var walk func(exts protoreflect.ExtensionDescriptors, msgs protoreflect.MessageDescriptors)
	walk = func(exts protoreflect.ExtensionDescriptors, msgs protoreflect.MessageDescriptors) {
		for i := range exts.Len() {
			if xd := exts.Get(i); xd.ContainingMessage().FullName() == name {
				out = append(out, xd)
			}
		}
		for i := range msgs.Len() {
			md := msgs.Get(i)
			walk(md.Extensions(), md.Messages())
		}
	}

	r.files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		walk(fd.Extensions(), fd.Messages())
		return true
	})
	return out
}

// Holder returns the holder type for an extension: a synthetic single-field
// type whose only field stores the extension's value.
//
// Holders are cached on lib, so this is cheap to call while decoding.
func Holder(lib *tdp.Library, xt protoreflect.ExtensionType) *tdp.Type {
	h, _ := lib.Holders.LoadOrStore(xt, func() *tdp.Type {
		return newHolder(lib, xt)
	})
	return h
}

func newHolder(lib *tdp.Library, xt protoreflect.ExtensionType) *tdp.Type {
	xd := xt.TypeDescriptor()
	h := &tdp.Type{
		Library:    lib,
		Descriptor: xd.ContainingMessage(),
		Extension:  xt,
	}

	f := newField(h, xd)
	if f.Presence == tdp.Implicit || f.Presence == tdp.Oneof {
		// Extensions always have explicit presence.
		f.Presence = tdp.Hasbit
		f.Case = -1
	}
	if f.Presence == tdp.Hasbit {
		h.HasbitWords = 1
		h.Words++
		if f.Storage == tdp.InWords {
			f.Slot++
		}
	}

	if md := xd.Message(); md != nil {
		f.Message = Lazy(lib, md)
		h.HasRequired = f.Message.HasRequired
	}

	h.Fields = []tdp.Field{f}
	return h
}

// Lazy returns the type for md in lib, compiling it into a fresh library if
// it was not reachable when lib was compiled.
func Lazy(lib *tdp.Library, md protoreflect.MessageDescriptor) *tdp.Type {
	if ty, ok := lib.Type(md); ok {
		return ty
	}
	ty, _ := lib.Lazy.LoadOrStore(md, func() *tdp.Type {
		opts, _ := lib.Metadata.(Options)
		return Compile(md, opts)
	})
	return ty
}

// ExtensionType returns the [protoreflect.ExtensionType] for xd, making a
// dynamic one if xd did not come from one.
func ExtensionType(xd protoreflect.ExtensionDescriptor) protoreflect.ExtensionType {
	if xtd, ok := xd.(protoreflect.ExtensionTypeDescriptor); ok {
		return xtd.Type()
	}
	return dynamicpb.NewExtensionType(xd)
}
