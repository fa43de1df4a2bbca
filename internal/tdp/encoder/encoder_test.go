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

package encoder_test

import (
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/tdp/compiler"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/tdp/encoder"
	"buf.build/go/minipb/internal/tdp/vm"
	"buf.build/go/minipb/internal/testdata"
)

// decode decodes a protoscope program into a new message.
func decode(t *testing.T, name protoreflect.FullName, src string) *dynamic.Message {
	t.Helper()
	ty := compiler.Compile(testdata.Message(t, name).Descriptor(), compiler.Options{
		Extensions: (*compiler.ExtensionsFromRegistry)(testdata.Schema(t).Types),
	})
	m := new(dynamic.Shared).New(ty)
	require.NoError(t, vm.Unmarshal(m, scope(t, src), vm.NewOptions()))
	return m
}

func scope(t *testing.T, src string) []byte {
	t.Helper()
	b, err := protoscope.NewScanner(src).Exec()
	require.NoError(t, err)
	return b
}

func TestOrder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		ty         protoreflect.FullName
		input, out string
	}{
		{
			name:  "fields",
			ty:    "minipb.test.Scalars2",
			input: `16: 1 14: {"x"} 1: 1 99: 1 8: 8i64`,
			out:   `1: 1 8: 8i64 14: {"x"} 16: 1 99: 1`,
		},
		{
			name:  "extensions",
			ty:    "minipb.test.Extendable",
			input: `103: {1: 1} 150: 1 100: 2 1: 3`,
			out:   `1: 3 100: 2 103: {1: 1} 150: 1`,
		},
		{
			name:  "packed",
			ty:    "minipb.test.Repeated2",
			input: `2: 1z 1: 1 2: {2z} 3: 3i32 1: 2`,
			out:   `1: 1 1: 2 2: {1z 2z} 3: {3i32}`,
		},
		{
			name:  "nested",
			ty:    "minipb.test.Tree",
			input: `4: {4: {1: 1} 1: 2} 2: {3: {}} 4: {}`,
			out:   `2: {3: {}} 4: {1: 2 4: {1: 1}} 4: {}`,
		},
		{
			name:  "implicit",
			ty:    "minipb.test3.Scalars3",
			input: `1: 0 14: {""} 17: {1: 0} 18: 0`,
			out:   `17: {} 18: 0`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			m := decode(t, tt.ty, tt.input)
			want := scope(t, tt.out)

			assert.Equal(t, len(want), encoder.Size(m, encoder.Options{}))
			got, err := encoder.Append(nil, m, encoder.Options{})
			require.NoError(t, err)
			assert.Equal(t, want, got)

			got, err = encoder.Marshal(m, encoder.Options{})
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestAppend(t *testing.T) {
	t.Parallel()

	m := decode(t, "minipb.test.Tree", `1: 1`)
	prefix := []byte("prefix")
	got, err := encoder.Append(prefix, m, encoder.Options{})
	require.NoError(t, err)
	assert.Equal(t, append([]byte("prefix"), scope(t, `1: 1`)...), got)
}

func TestSkipUnknown(t *testing.T) {
	t.Parallel()

	m := decode(t, "minipb.test.Tree", `1: 1 2: {99: 1} 99: 2`)
	opts := encoder.Options{SkipUnknown: true}
	got, err := encoder.Append(nil, m, opts)
	require.NoError(t, err)
	assert.Equal(t, scope(t, `1: 1 2: {}`), got)
	assert.Equal(t, len(got), encoder.Size(m, opts))
}

func TestCheckRequired(t *testing.T) {
	t.Parallel()

	m := decode(t, "minipb.test.HasRequired", `1: {1: 1} 2: {1: 2} 2: {2: {"x"}}`)
	err := encoder.CheckRequired(m)
	require.ErrorIs(t, err, encoder.ErrMissingRequired)
	assert.Contains(t, err.Error(), "minipb.test.Required.id")

	_, err = encoder.Append(nil, m, encoder.Options{CheckRequired: true})
	require.ErrorIs(t, err, encoder.ErrMissingRequired)
	_, err = encoder.Append(nil, m, encoder.Options{})
	require.NoError(t, err)

	m = decode(t, "minipb.test.HasRequired", `2: {1: 2}`)
	require.NoError(t, encoder.CheckRequired(m))
}

func TestMarshalLimit(t *testing.T) {
	t.Parallel()

	m := decode(t, "minipb.test.Tree", `1: 1 2: {1: 2}`)
	a := m.Shared.Arena()
	a.SetLimit(a.Used() + 1)

	_, err := encoder.Marshal(m, encoder.Options{})
	require.ErrorIs(t, err, arena.ErrExhausted)
	assert.True(t, m.Shared.Lock.TryLock())
	m.Shared.Lock.Unlock()

	got, err := encoder.Append(nil, m, encoder.Options{})
	require.NoError(t, err)
	assert.Equal(t, scope(t, `1: 1 2: {1: 2}`), got)
}
