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
	"testing"

	matcherv3 "github.com/envoyproxy/go-control-plane/envoy/type/matcher/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/descriptorpb"
	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/minipb"
	"buf.build/go/minipb/internal/prototest"
	"buf.build/go/minipb/internal/sync2"
	"buf.build/go/minipb/internal/testdata"
)

var shareds = sync2.Pool[minipb.Shared]{Reset: (*minipb.Shared).Free}

// protobuf-go keeps unknown closed enum values in the field, so proto2
// schemas like descriptor.proto cannot be compared against it here. See
// TestDescriptorClosedEnum for how those inputs decode.
func FuzzValueMatcher(f *testing.F) {
	seed, err := proto.Marshal(&matcherv3.ValueMatcher{
		MatchPattern: &matcherv3.ValueMatcher_OrMatch{OrMatch: &matcherv3.OrMatcher{
			ValueMatchers: []*matcherv3.ValueMatcher{
				{MatchPattern: &matcherv3.ValueMatcher_BoolMatch{BoolMatch: true}},
				{MatchPattern: &matcherv3.ValueMatcher_StringMatch{StringMatch: &matcherv3.StringMatcher{
					MatchPattern: &matcherv3.StringMatcher_Prefix{Prefix: "/api"},
					IgnoreCase:   true,
				}}},
				{MatchPattern: &matcherv3.ValueMatcher_ListMatch{ListMatch: &matcherv3.ListMatcher{
					MatchPattern: &matcherv3.ListMatcher_OneOf{OneOf: &matcherv3.ValueMatcher{
						MatchPattern: &matcherv3.ValueMatcher_PresentMatch{PresentMatch: true},
					}},
				}}},
			},
		}},
	})
	require.NoError(f, err)
	f.Add(seed)
	f.Add([]byte("p0"))

	fuzz(f, (*matcherv3.ValueMatcher)(nil).ProtoReflect().Type(), minipb.CompileForMessage[*matcherv3.ValueMatcher]())
}

// TestDescriptorClosedEnum checks that an out-of-range edition lands in the
// unknown fields and survives a round trip.
func TestDescriptorClosedEnum(t *testing.T) {
	t.Parallel()

	ty := minipb.CompileForMessage[*descriptorpb.FileDescriptorProto]()
	shared := new(minipb.Shared)
	defer shared.Free()

	m := shared.NewMessage(ty)
	b := []byte("p0") // 14: 48
	require.NoError(t, proto.Unmarshal(b, m))

	edition := m.ProtoReflect().Descriptor().Fields().ByName("edition")
	assert.False(t, m.ProtoReflect().Has(edition))
	assert.Equal(t, b, []byte(m.ProtoReflect().GetUnknown()))

	out, err := m.Marshal()
	require.NoError(t, err)
	assert.Equal(t, b, out)

	seed, err := proto.Marshal(protodesc.ToFileDescriptorProto(descriptorpb.File_google_protobuf_descriptor_proto))
	require.NoError(t, err)
	m = shared.NewMessage(ty)
	require.NoError(t, proto.Unmarshal(seed, m))
	out, err = m.Marshal()
	require.NoError(t, err)
	ref := new(descriptorpb.FileDescriptorProto)
	require.NoError(t, proto.Unmarshal(out, ref))
	assert.True(t, proto.Equal(protodesc.ToFileDescriptorProto(descriptorpb.File_google_protobuf_descriptor_proto), ref))
}

func FuzzEmpty(f *testing.F) {
	f.Add([]byte{0x08, 0x01})
	fuzz(f, (*emptypb.Empty)(nil).ProtoReflect().Type(), minipb.CompileForMessage[*emptypb.Empty]())
}

func FuzzScalars(f *testing.F) {
	f.Add(scope(f, `1: -1 12: 1.5 14: {"x"} 17: {1: 1} 18: 0 99: 1`))
	fuzzSchema(f, "minipb.test3.Scalars3")
}

func FuzzOneof(f *testing.F) {
	f.Add(scope(f, `1: 1 4: {2: {"a"}} 2: 5 6: 1`))
	fuzzSchema(f, "minipb.test3.Oneofs")
}

func FuzzRepeated(f *testing.F) {
	f.Add(scope(f, `1: {1 2 3} 6: {"a"} 8: {1: 1} 9: 1z 9: {2z}`))
	fuzzSchema(f, "minipb.test3.Repeated3")
}

func fuzzSchema(f *testing.F, name protoreflect.FullName) {
	f.Helper()
	ref := testdata.Message(f, name)
	fuzz(f, ref, compile(f, name))
}

// fuzz checks that minipb agrees with protobuf-go on arbitrary input.
func fuzz(f *testing.F, ref protoreflect.MessageType, ty *minipb.MessageType) {
	f.Helper()

	f.Fuzz(func(t *testing.T, b []byte) {
		shared, drop := shareds.Get()
		defer drop()

		m1 := ref.New().Interface()
		err1 := proto.Unmarshal(b, m1)

		m2 := shared.NewMessage(ty)
		require.NotNil(t, m2)
		err2 := proto.Unmarshal(b, m2)

		if err1 != nil {
			require.Error(t, err2, "reference error: %v", err1)
			return
		}
		require.NoError(t, err2)
		prototest.Equal(t, m1, m2)

		out, err := m2.Marshal()
		require.NoError(t, err)
		assert.Len(t, out, m2.Size())

		m3 := ref.New().Interface()
		require.NoError(t, proto.Unmarshal(out, m3))
		assert.True(t, proto.Equal(m1, m3))
	})
}
