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

// Package protobuf provides typed views over minipb messages for the
// well-known types in google.protobuf.
package protobuf

import (
	"sync"

	"google.golang.org/protobuf/types/known/emptypb"

	"buf.build/go/minipb"
)

var emptyType = sync.OnceValue(func() *minipb.MessageType {
	return minipb.CompileForMessage[*emptypb.Empty]()
})

// Empty is a view of a google.protobuf.Empty message. It has no fields, but
// keeps any unknown fields it was decoded with.
type Empty struct{ msg *minipb.Message }

// NewEmpty allocates an empty message on shared.
//
// Returns nil if shared's limit would be exceeded.
func NewEmpty(shared *minipb.Shared) *Empty {
	m := shared.NewMessage(emptyType())
	if m == nil {
		return nil
	}
	return &Empty{m}
}

// ParseEmpty decodes data into a new message on shared.
func ParseEmpty(data []byte, shared *minipb.Shared, options ...minipb.UnmarshalOption) (*Empty, error) {
	m, err := minipb.Unmarshal(data, emptyType(), shared, options...)
	if err != nil {
		return nil, err
	}
	return &Empty{m}, nil
}

// Serialize encodes this message on its arena. See [minipb.Message.Marshal].
func (e *Empty) Serialize(options ...minipb.MarshalOption) ([]byte, error) {
	return e.msg.Marshal(options...)
}

// Message returns the underlying message.
func (e *Empty) Message() *minipb.Message { return e.msg }
