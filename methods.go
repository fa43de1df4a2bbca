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
	"google.golang.org/protobuf/runtime/protoiface"

	"buf.build/go/minipb/internal/tdp/encoder"
	"buf.build/go/minipb/internal/tdp/vm"
)

// Fast paths for package proto, installed on every compiled type by
// [backend.PopulateMethods].

// sizeShim implements [protoiface.Methods].Size.
func sizeShim(in protoiface.SizeInput) protoiface.SizeOutput {
	m := in.Message.(*Message) //nolint:errcheck // Only called on *Message values.
	return protoiface.SizeOutput{Size: encoder.Size(&m.impl, encoder.Options{})}
}

// marshalShim implements [protoiface.Methods].Marshal.
//
// Output is always deterministic.
func marshalShim(in protoiface.MarshalInput) (out protoiface.MarshalOutput, err error) {
	m := in.Message.(*Message) //nolint:errcheck // Only called on *Message values.
	out.Buf, err = encoder.Append(in.Buf, &m.impl, encoder.Options{})
	return out, err
}

// unmarshalShim implements [protoiface.Methods].Unmarshal.
func unmarshalShim(in protoiface.UnmarshalInput) (out protoiface.UnmarshalOutput, err error) {
	m := in.Message.(*Message) //nolint:errcheck // Only called on *Message values.

	opts := vm.NewOptions()
	opts.DiscardUnknown = in.Flags&protoiface.UnmarshalDiscardUnknown != 0
	if in.Resolver != nil {
		opts.Extensions = in.Resolver
	}
	if in.Depth > 0 {
		opts.MaxDepth = in.Depth
	}

	return out, vm.Unmarshal(&m.impl, in.Buf, opts)
}

// requiredShim implements [protoiface.Methods].CheckInitialized.
func requiredShim(in protoiface.CheckInitializedInput) (out protoiface.CheckInitializedOutput, err error) {
	m := in.Message.(*Message) //nolint:errcheck // Only called on *Message values.
	return out, encoder.CheckRequired(&m.impl)
}
