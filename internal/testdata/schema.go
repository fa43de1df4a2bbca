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

package testdata

import (
	"context"
	"io/fs"
	"path"
	"sync"
	"testing"

	"github.com/bufbuild/protocompile"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/dynamicpb"
)

// schema is every file under proto/, compiled once per test binary.
var schema = sync.OnceValues(func() (*Registry, error) {
	sources := make(map[string]string)
	var paths []string
	err := fs.WalkDir(testdata, "proto", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(p) != ".proto" {
			return err
		}
		data, err := fs.ReadFile(testdata, p)
		if err != nil {
			return err
		}
		name := p[len("proto/"):]
		sources[name] = string(data)
		paths = append(paths, name)
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := protocompile.Compiler{
		Resolver: protocompile.WithStandardImports(&protocompile.SourceResolver{
			Accessor: protocompile.SourceAccessorFromMap(sources),
		}),
	}
	files, err := c.Compile(context.Background(), paths...)
	if err != nil {
		return nil, err
	}

	r := &Registry{Files: new(protoregistry.Files), Types: new(protoregistry.Types)}
	for _, f := range files {
		if err := r.Files.RegisterFile(f); err != nil {
			return nil, err
		}
		if err := r.register(f.Enums(), f.Messages(), f.Extensions()); err != nil {
			return nil, err
		}
	}
	return r, nil
})

// Registry is the compiled test schema. Message and extension types are
// dynamicpb types, which serve as the reference implementation.
type Registry struct {
	Files *protoregistry.Files
	Types *protoregistry.Types
}

// Schema returns the compiled test schema.
//
// This will call t.FailNow() if the schema does not compile.
func Schema(t testing.TB) *Registry {
	t.Helper()
	r, err := schema()
	require.NoError(t, err, "compiling test schema")
	return r
}

// Message returns the reference type for the message with the given name.
func Message(t testing.TB, name protoreflect.FullName) protoreflect.MessageType {
	t.Helper()
	ty, err := Schema(t).Types.FindMessageByName(name)
	require.NoError(t, err, "loading type %q", name)
	return ty
}

// Extension returns the reference type for the extension with the given name.
func Extension(t testing.TB, name protoreflect.FullName) protoreflect.ExtensionType {
	t.Helper()
	xt, err := Schema(t).Types.FindExtensionByName(name)
	require.NoError(t, err, "loading extension %q", name)
	return xt
}

// DescriptorSet returns the test schema as a serialized-ready descriptor set.
func DescriptorSet(t testing.TB) *descriptorpb.FileDescriptorSet {
	t.Helper()
	fds := new(descriptorpb.FileDescriptorSet)
	Schema(t).Files.RangeFiles(func(fd protoreflect.FileDescriptor) bool {
		fds.File = append(fds.File, protodesc.ToFileDescriptorProto(fd))
		return true
	})
	return fds
}

func (r *Registry) register(
	enums protoreflect.EnumDescriptors,
	msgs protoreflect.MessageDescriptors,
	exts protoreflect.ExtensionDescriptors,
) error {
	for i := range enums.Len() {
		if err := r.Types.RegisterEnum(dynamicpb.NewEnumType(enums.Get(i))); err != nil {
			return err
		}
	}
	for i := range exts.Len() {
		if err := r.Types.RegisterExtension(dynamicpb.NewExtensionType(exts.Get(i))); err != nil {
			return err
		}
	}
	for i := range msgs.Len() {
		md := msgs.Get(i)
		if md.IsMapEntry() {
			continue
		}
		if err := r.Types.RegisterMessage(dynamicpb.NewMessageType(md)); err != nil {
			return err
		}
		if err := r.register(md.Enums(), md.Messages(), md.Extensions()); err != nil {
			return err
		}
	}
	return nil
}
