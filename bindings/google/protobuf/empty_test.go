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

package protobuf_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/minipb"
	"buf.build/go/minipb/bindings/google/protobuf"
)

func TestEmpty(t *testing.T) {
	t.Parallel()

	shared := new(minipb.Shared)
	defer shared.Free()

	m := protobuf.NewEmpty(shared)
	require.NotNil(t, m)
	out, err := m.Serialize()
	require.NoError(t, err)
	assert.Empty(t, out)

	m, err = protobuf.ParseEmpty(nil, shared)
	require.NoError(t, err)
	assert.Zero(t, m.Message().Size())
	assert.True(t, proto.Equal(new(emptypb.Empty), m.Message()))
}

func TestEmptyUnknown(t *testing.T) {
	t.Parallel()

	shared := new(minipb.Shared)
	defer shared.Free()

	data := []byte{0x08, 0x01, 0x12, 0x02, 'h', 'i'}
	m, err := protobuf.ParseEmpty(data, shared)
	require.NoError(t, err)

	out, err := m.Serialize()
	require.NoError(t, err)
	assert.Equal(t, data, out)
	assert.Equal(t, data, []byte(m.Message().ProtoReflect().GetUnknown()))

	out, err = m.Serialize(minipb.WithSkipUnknown(true))
	require.NoError(t, err)
	assert.Empty(t, out)

	m, err = protobuf.ParseEmpty(data, shared, minipb.WithDiscardUnknown(true))
	require.NoError(t, err)
	assert.Zero(t, m.Message().Size())
}

func TestEmptyErrors(t *testing.T) {
	t.Parallel()

	shared := new(minipb.Shared)
	defer shared.Free()

	for _, data := range [][]byte{
		{0x08},       // Truncated varint.
		{0x0f},       // Reserved wire type.
		{0x00, 0x00}, // Field number zero.
		{0x0c},       // Unmatched end group.
	} {
		m, err := protobuf.ParseEmpty(data, shared)
		assert.Nil(t, m, "%x", data)
		var pe *minipb.ParseError
		assert.ErrorAs(t, err, &pe, "%x", data)
	}
}
