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

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/runtime/protoiface"
	"google.golang.org/protobuf/types/descriptorpb"

	"buf.build/go/minipb/internal/tdp/compiler"
)

// CompileMessageDescriptor compiles a descriptor into a [MessageType].
//
// Every message type reachable from md is compiled along with it.
func CompileMessageDescriptor(md protoreflect.MessageDescriptor, options ...CompileOption) *MessageType {
	opts := compiler.Options{
		Backend: backend{},
	}
	for _, opt := range options {
		if opt.apply != nil {
			opt.apply(&opts)
		}
	}

	return wrapType(compiler.Compile(md, opts))
}

// CompileForMessage is a helper for calling [CompileMessageDescriptor] using
// the descriptor of a message type compiled into the binary.
//
// Extensions registered in [protoregistry.GlobalTypes] are bound, unless an
// option says otherwise.
func CompileForMessage[M proto.Message](options ...CompileOption) *MessageType {
	// Allow the caller to override the extension registry by placing our
	// default registry first.
	options = append([]CompileOption{WithExtensionsFromTypes(protoregistry.GlobalTypes)}, options...)

	var m M
	return CompileMessageDescriptor(m.ProtoReflect().Descriptor(), options...)
}

// CompileFileDescriptorSet builds the files in fds, looks up a message with
// the given name, and compiles a type for it.
//
// Extensions declared in fds are bound, unless an option says otherwise.
func CompileFileDescriptorSet(
	fds *descriptorpb.FileDescriptorSet,
	name protoreflect.FullName,
	options ...CompileOption,
) (*MessageType, error) {
	files, err := protodesc.NewFiles(fds)
	if err != nil {
		return nil, fmt.Errorf("minipb: %w", err)
	}
	desc, err := files.FindDescriptorByName(name)
	if err != nil {
		return nil, fmt.Errorf("minipb: looking up %q: %w", name, err)
	}
	md, ok := desc.(protoreflect.MessageDescriptor)
	if !ok {
		return nil, fmt.Errorf("minipb: %q is not a message: %w", name, protoregistry.NotFound)
	}

	options = append([]CompileOption{WithExtensionsFromFiles(files)}, options...)
	return CompileMessageDescriptor(md, options...), nil
}

// CompileFromBytes is like [CompileFileDescriptorSet], but takes an encoded
// google.protobuf.FileDescriptorSet.
func CompileFromBytes(schema []byte, name protoreflect.FullName, options ...CompileOption) (*MessageType, error) {
	fds := new(descriptorpb.FileDescriptorSet)
	if err := proto.Unmarshal(schema, fds); err != nil {
		return nil, fmt.Errorf("minipb: %w", err)
	}
	return CompileFileDescriptorSet(fds, name, options...)
}

// backend implements the compiler backend interface.
type backend struct{}

func (backend) PopulateMethods(methods *protoiface.Methods) {
	methods.Flags = protoiface.SupportMarshalDeterministic | protoiface.SupportUnmarshalDiscardUnknown
	methods.Size = sizeShim
	methods.Marshal = marshalShim
	methods.Unmarshal = unmarshalShim
	methods.CheckInitialized = requiredShim
}
