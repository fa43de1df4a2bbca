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

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"

	"buf.build/go/minipb"
	"buf.build/go/minipb/internal/testdata"
)

func descriptors(t *testing.T) string {
	t.Helper()
	data, err := proto.Marshal(testdata.DescriptorSet(t))
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "set.binpb")
	require.NoError(t, os.WriteFile(path, data, 0o600))
	return path
}

func TestDecode(t *testing.T) {
	t.Parallel()

	in, err := protoscope.NewScanner(`1: 5 2: {"leaf"} 99: 1`).Exec()
	require.NoError(t, err)

	cmd := &cmdDecode{schemaConfig: schemaConfig{
		Descriptors: descriptors(t),
		Type:        "minipb.test3.Nested",
	}, Output: "text", MaxDepth: 100}

	var out bytes.Buffer
	require.NoError(t, cmd.run(bytes.NewReader(in), &out))
	assert.Contains(t, out.String(), "x: 5")
	assert.Contains(t, out.String(), `label: "leaf"`)

	cmd.Output = "json"
	out.Reset()
	require.NoError(t, cmd.run(bytes.NewReader(in), &out))
	assert.JSONEq(t, `{"x": 5, "label": "leaf"}`, out.String())
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	path := descriptors(t)
	cmd := &cmdDecode{schemaConfig: schemaConfig{
		Descriptors: path,
		Type:        "minipb.test3.Nested",
	}, MaxDepth: 100}
	err := cmd.run(bytes.NewReader([]byte{0x08}), new(bytes.Buffer))
	var pe *minipb.ParseError
	require.ErrorAs(t, err, &pe)
	assert.Contains(t, err.Error(), "decoding minipb.test3.Nested")

	cmd.Type = "minipb.test3.Missing"
	require.Error(t, cmd.run(bytes.NewReader(nil), new(bytes.Buffer)))

	cmd.Descriptors = filepath.Join(t.TempDir(), "missing.binpb")
	err = cmd.run(bytes.NewReader(nil), new(bytes.Buffer))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestEncode(t *testing.T) {
	t.Parallel()

	path := descriptors(t)
	cmd := &cmdEncode{schemaConfig: schemaConfig{
		Descriptors: path,
		Type:        "minipb.test3.Repeated3",
	}, Input: "text"}

	var out bytes.Buffer
	require.NoError(t, cmd.run(bytes.NewBufferString(`i32: [1, 2] str: "a" msgs { x: 3 }`), &out))

	want, err := protoscope.NewScanner(`1: {1 2} 6: {"a"} 8: {1: 3}`).Exec()
	require.NoError(t, err)
	assert.Equal(t, want, out.Bytes())

	cmd.Input = "json"
	out.Reset()
	require.NoError(t, cmd.run(bytes.NewBufferString(`{"i32": [1, 2], "str": ["a"], "msgs": [{"x": 3}]}`), &out))
	assert.Equal(t, want, out.Bytes())
}

func TestEncodeRequired(t *testing.T) {
	t.Parallel()

	cmd := &cmdEncode{schemaConfig: schemaConfig{
		Descriptors: descriptors(t),
		Type:        "minipb.test.Required",
	}, Input: "text", CheckRequired: true}

	err := cmd.run(bytes.NewBufferString(`name: "x"`), new(bytes.Buffer))
	require.ErrorIs(t, err, minipb.ErrMissingRequired)

	var out bytes.Buffer
	require.NoError(t, cmd.run(bytes.NewBufferString(`id: 1`), &out))
	assert.Equal(t, []byte{0x08, 0x01}, out.Bytes())
}

func TestRoundTrip(t *testing.T) {
	t.Parallel()

	path := descriptors(t)
	enc := &cmdEncode{schemaConfig: schemaConfig{Descriptors: path, Type: "minipb.test.Tree"}, Input: "text"}
	dec := &cmdDecode{schemaConfig: schemaConfig{Descriptors: path, Type: "minipb.test.Tree"}, Output: "text", MaxDepth: 100}

	var bin, text bytes.Buffer
	require.NoError(t, enc.run(bytes.NewBufferString(`value: 1 left { value: 2 } children { value: 3 }`), &bin))
	require.NoError(t, dec.run(&bin, &text))

	var again bytes.Buffer
	require.NoError(t, enc.run(&text, &again))

	bin.Reset()
	require.NoError(t, enc.run(bytes.NewBufferString(`value: 1 left { value: 2 } children { value: 3 }`), &bin))
	assert.Equal(t, bin.Bytes(), again.Bytes())
}
