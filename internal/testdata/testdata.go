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

// Package testdata contains the minipb test corpus: a test schema, and a
// collection of YAML test cases that are decoded and re-encoded by both
// minipb and protobuf-go's dynamicpb.
package testdata

import (
	"bytes"
	"embed"
	"encoding/hex"
	"io/fs"
	"path"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/protocolbuffers/protoscope"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/encoding/prototext"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protoreflect"
	"gopkg.in/yaml.v3"

	"buf.build/go/minipb"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/prototest"
	"buf.build/go/minipb/internal/tdp/dynamic"
	"buf.build/go/minipb/internal/xunsafe"
)

//go:embed proto cases
var testdata embed.FS

// Harness is a generalization of [testing.TB] that also includes the
// [testing.T.Run] method. It must be generic because the signature of this
// function varies across [testing.T] and [testing.B].
type Harness[T any] interface {
	testing.TB
	Run(string, func(T)) bool
}

// TestCase is a test case from the test corpus.
type TestCase struct {
	Name string `yaml:"-"`

	TypeName string `yaml:"type"`
	Type     struct {
		Reference protoreflect.MessageType
		Fast      *minipb.MessageType
	} `yaml:"-"`

	// If false, the bytes minipb produces need only decode to an equal
	// message, rather than match protobuf-go's deterministic output exactly.
	// Defaults to true.
	Canonical *bool `yaml:"canonical"`

	// Set if the type has fields minipb does not bind, so that they cannot
	// be compared field by field.
	Unbound bool `yaml:"unbound"`

	// If set, extensions are not bound at compile time, and are resolved
	// while decoding instead.
	LateExtensions bool `yaml:"late_extensions"`

	// Three ways to encode the test: hex, textproto, and protoscope
	Hex        []string `yaml:"hex"`
	TextProto  []string `yaml:"textproto"`
	Protoscope []string `yaml:"protoscope"`

	Specimens [][]byte `yaml:"-"`
}

// RunAll runs all of the test cases against the given harness.
func RunAll[T Harness[T]](t T, f func(T, *TestCase)) {
	t.Helper()

	var failed atomic.Bool
	err := fs.WalkDir(testdata, "cases", func(p string, d fs.DirEntry, err error) error {
		require.NoError(t, err, "loading test %q", p)

		if d.IsDir() || path.Ext(p) != ".yaml" {
			return nil
		}

		t.Run(strings.TrimPrefix(p, "cases/"), func(t T) {
			if t, ok := any(t).(*testing.T); ok {
				t.Parallel()
			}

			defer failed.CompareAndSwap(false, t.Failed())

			data, err := fs.ReadFile(testdata, p)
			require.NoError(t, err, "loading test %q", p)

			test := parseTestCase(t, p, data)
			if test != nil {
				f(t, test)
			}
		})

		return nil
	})
	require.NoError(t, err)
}

// Run executes a single test case.
//
// Each specimen is decoded by both implementations on a fresh [minipb.Shared];
// then minipb's encoding is checked against protobuf-go's.
func (test *TestCase) Run(t *testing.T, verbose bool) {
	t.Helper()

	types := Schema(t).Types
	decode := proto.UnmarshalOptions{Resolver: types}

	run := func(t *testing.T, specimen []byte) {
		t.Helper()
		defer debug.WithTesting(t)()

		m1 := test.Type.Reference.New().Interface()
		err1 := decode.Unmarshal(specimen, m1)

		m2 := new(minipb.Shared).NewMessage(test.Type.Fast)
		err2 := decode.Unmarshal(specimen, m2)

		if verbose {
			t.Logf("theirs: %v, ours: %v", err1, err2)
		}

		// Make sure that we didn't leave the message locked by mistake.
		impl := xunsafe.Cast[dynamic.Shared](m2.Shared())
		require.True(t, impl.Lock.TryLock(), "internal arena lock was not released")
		impl.Lock.Unlock()

		if err1 != nil {
			require.Error(t, err2, "reference error: %v", err1)
			return
		}
		require.NoError(t, err2)

		if !test.Unbound {
			prototest.Equal(t, m1, m2)
		}

		if verbose {
			options := protojson.MarshalOptions{
				Multiline:     true,
				Indent:        "  ",
				UseProtoNames: true,
				Resolver:      types,
			}
			b1, _ := options.Marshal(m1)
			b2, _ := options.Marshal(m2)
			t.Logf("theirs: %s", b1)
			t.Logf("ours: %s", b2)
		}

		ours, err := m2.Marshal()
		require.NoError(t, err)
		assert.Equal(t, m2.Size(), len(ours))

		m3 := test.Type.Reference.New().Interface()
		require.NoError(t, decode.Unmarshal(ours, m3))
		assert.True(t, proto.Equal(m1, m3), "re-encoded message differs:\nwant: %v\ngot:  %v", m1, m3)

		if test.Canonical == nil || *test.Canonical {
			theirs, err := proto.MarshalOptions{Deterministic: true}.Marshal(m1)
			require.NoError(t, err)
			assert.Equal(t, hex.EncodeToString(theirs), hex.EncodeToString(ours))
		}

		// Encoding must be a fixed point.
		m4, err := minipb.Unmarshal(ours, test.Type.Fast, nil, minipb.WithExtensionRegistry(types))
		require.NoError(t, err)
		again, err := m4.Marshal()
		require.NoError(t, err)
		assert.Equal(t, hex.EncodeToString(ours), hex.EncodeToString(again))
	}

	if len(test.Specimens) == 1 {
		run(t, test.Specimens[0])
		return
	}

	for _, specimen := range test.Specimens {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			run(t, specimen)
		})
	}
}

// parseTestCase parses a single test case from the given data.
//
// This will call t.FailNow() if loading fails.
func parseTestCase(t testing.TB, p string, file []byte) *TestCase {
	t.Helper()
	defer debug.WithTesting(t)()

	require.True(t, bytes.HasSuffix(file, []byte("\n")), "missing trailing newline in %q", p)

	test := new(TestCase)
	dec := yaml.NewDecoder(bytes.NewReader(file))
	dec.KnownFields(true)
	err := dec.Decode(&test)
	require.NoError(t, err, "loading test %q", p)

	reg := Schema(t)
	test.Name = strings.TrimPrefix(p, "cases/")
	test.Type.Reference = Message(t, protoreflect.FullName(test.TypeName))

	var opts []minipb.CompileOption
	if test.LateExtensions {
		opts = append(opts, minipb.WithExtensions(nil))
	} else {
		opts = append(opts, minipb.WithExtensionsFromTypes(reg.Types))
	}
	test.Type.Fast = minipb.CompileMessageDescriptor(test.Type.Reference.Descriptor(), opts...)

	for _, raw := range test.Hex {
		r := strings.NewReplacer(" ", "", "\t", "", "\n", "", "\r", "")
		b, err := hex.DecodeString(r.Replace(raw))
		require.NoError(t, err, "loading test %q", p)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.TextProto {
		m := test.Type.Reference.New().Interface()
		err = prototext.UnmarshalOptions{Resolver: reg.Types}.Unmarshal([]byte(raw), m)
		require.NoError(t, err, "loading test %q", p)

		b, err := proto.MarshalOptions{Deterministic: true}.Marshal(m)
		require.NoError(t, err, "loading test %q", p)

		test.Specimens = append(test.Specimens, b)
	}

	for _, raw := range test.Protoscope {
		s := protoscope.NewScanner(raw)
		b, err := s.Exec()
		require.NoError(t, err, "loading test %q", p)

		test.Specimens = append(test.Specimens, b)
	}

	return test
}
