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
	"math"

	"google.golang.org/protobuf/reflect/protoregistry"

	"buf.build/go/minipb/internal/tdp/compiler"
	"buf.build/go/minipb/internal/tdp/encoder"
	"buf.build/go/minipb/internal/tdp/vm"
)

// The below are not interfaces so that the With*() functions can be inlined
// and do not allocate. The zero value of each is a no-op.

// CompileOption is a configuration setting for [CompileMessageDescriptor].
type CompileOption struct{ apply func(*compiler.Options) }

// WithExtensions provides an extension resolver for a compiler.
//
// Extensions found this way are bound into the compiled types. Extensions
// that are not bound can still be decoded with [WithExtensionRegistry].
func WithExtensions(resolver compiler.ExtensionResolver) CompileOption {
	return CompileOption{func(c *compiler.Options) { c.Extensions = resolver }}
}

// WithExtensionsFromTypes uses a type registry to provide extension information
// about a message type.
func WithExtensionsFromTypes(types *protoregistry.Types) CompileOption {
	return CompileOption{func(c *compiler.Options) { c.Extensions = (*compiler.ExtensionsFromRegistry)(types) }}
}

// WithExtensionsFromFiles uses a file registry to provide extension information
// about a message type.
func WithExtensionsFromFiles(files *protoregistry.Files) CompileOption {
	return CompileOption{func(c *compiler.Options) { c.Extensions = compiler.ExtensionsFromFiles(files) }}
}

// UnmarshalOption is a configuration setting for [Message.Unmarshal].
type UnmarshalOption struct{ apply func(*vm.Options) }

// WithMaxDepth sets the maximum recursion depth for the parser. The default
// is 100.
//
// Setting a large value enables potential DoS vectors.
func WithMaxDepth(depth int) UnmarshalOption {
	return UnmarshalOption{func(opts *vm.Options) { opts.MaxDepth = min(depth, math.MaxUint32) }}
}

// WithDiscardUnknown sets whether unknown fields should be discarded while
// parsing. Analogous to [proto.UnmarshalOptions].
//
// Setting this option will break round-tripping.
func WithDiscardUnknown(discard bool) UnmarshalOption {
	return UnmarshalOption{func(opts *vm.Options) { opts.DiscardUnknown = discard }}
}

// WithAllowInvalidUTF8 sets whether UTF-8 is validated when parsing string
// fields originating from non-proto2 files.
func WithAllowInvalidUTF8(allow bool) UnmarshalOption {
	return UnmarshalOption{func(opts *vm.Options) { opts.AllowInvalidUTF8 = allow }}
}

// WithAllowAlias sets whether aliasing the input buffer is allowed. This avoids
// copying the input onto the arena at the start of parsing, but the input
// must then outlive the message and must not be modified.
func WithAllowAlias(allow bool) UnmarshalOption {
	return UnmarshalOption{func(opts *vm.Options) { opts.AllowAlias = allow }}
}

// WithExtensionRegistry sets a registry used to resolve extensions that were
// not bound at compile time. Unresolved extensions are kept as unknown fields.
func WithExtensionRegistry(types protoregistry.ExtensionTypeResolver) UnmarshalOption {
	return UnmarshalOption{func(opts *vm.Options) { opts.Extensions = types }}
}

// MarshalOption is a configuration setting for [Message.Marshal].
type MarshalOption struct{ apply func(*encoder.Options) }

// WithSkipUnknown sets whether unknown fields are left out of the output.
func WithSkipUnknown(skip bool) MarshalOption {
	return MarshalOption{func(opts *encoder.Options) { opts.SkipUnknown = skip }}
}

// WithCheckRequired sets whether marshaling fails with [ErrMissingRequired]
// if a required field anywhere in the message is unset.
func WithCheckRequired(check bool) MarshalOption {
	return MarshalOption{func(opts *encoder.Options) { opts.CheckRequired = check }}
}

func unmarshalOptions(options []UnmarshalOption) vm.Options {
	opts := vm.NewOptions()
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}
	return opts
}

func marshalOptions(options []MarshalOption) encoder.Options {
	var opts encoder.Options
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}
	return opts
}
