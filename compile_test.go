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

package minipb_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoregistry"
	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/minipb"
	"buf.build/go/minipb/internal/testdata"
)

func TestCompileFileDescriptorSet(t *testing.T) {
	t.Parallel()

	fds := testdata.DescriptorSet(t)
	ty, err := minipb.CompileFileDescriptorSet(fds, "minipb.test.Extendable")
	require.NoError(t, err)
	assert.Equal(t, "minipb.test.Extendable", fmt.Sprint(ty))

	// Extensions declared in the set are bound.
	m, err := minipb.Unmarshal(scope(t, `101: {"ext"}`), ty, nil)
	require.NoError(t, err)
	assert.Empty(t, m.GetUnknown())

	// Unless asked otherwise.
	ty, err = minipb.CompileFileDescriptorSet(fds, "minipb.test.Extendable", minipb.WithExtensions(nil))
	require.NoError(t, err)
	m, err = minipb.Unmarshal(scope(t, `101: {"ext"}`), ty, nil)
	require.NoError(t, err)
	assert.Equal(t, scope(t, `101: {"ext"}`), []byte(m.GetUnknown()))

	_, err = minipb.CompileFileDescriptorSet(fds, "minipb.test.Missing")
	require.ErrorIs(t, err, protoregistry.NotFound)
	_, err = minipb.CompileFileDescriptorSet(fds, "minipb.test.Color")
	require.ErrorIs(t, err, protoregistry.NotFound)
}

func TestCompileFromBytes(t *testing.T) {
	t.Parallel()

	schema, err := proto.Marshal(testdata.DescriptorSet(t))
	require.NoError(t, err)

	ty, err := minipb.CompileFromBytes(schema, "minipb.test3.Scalars3")
	require.NoError(t, err)
	assert.Equal(t, 19, ty.Descriptor().Fields().Len())

	_, err = minipb.CompileFromBytes([]byte{0xff}, "minipb.test3.Scalars3")
	require.Error(t, err)
}

func TestCompileForMessage(t *testing.T) {
	t.Parallel()

	ty := minipb.CompileForMessage[*emptypb.Empty]()
	assert.Equal(t, (*emptypb.Empty)(nil).ProtoReflect().Descriptor(), ty.Descriptor())

	m, err := minipb.Unmarshal(scope(t, "1: 1"), ty, nil)
	require.NoError(t, err)
	assert.Equal(t, scope(t, "1: 1"), []byte(m.GetUnknown()))
}

func TestRecursiveType(t *testing.T) {
	t.Parallel()

	ty := compile(t, "minipb.test.Tree")
	m := minipb.NewMessage(ty)
	left := m.MutableMessage(2)
	require.NotNil(t, left)
	assert.Same(t, ty, left.MessageType())
}

func TestShared(t *testing.T) {
	t.Parallel()

	shared := new(minipb.Shared)
	assert.Nil(t, shared.CopyBytes(nil))
	assert.Empty(t, shared.CopyString(""))

	s := shared.CopyString("hello")
	assert.Equal(t, "hello", s)
	assert.Equal(t, 5, shared.Used())

	m := shared.NewMessage(compile(t, "minipb.test3.Scalars3"))
	require.NotNil(t, m)
	assert.Same(t, shared, m.Shared())
}
