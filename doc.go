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

// Package minipb is a typed binding layer for Protobuf messages, driven by a
// compiled table per message type rather than by generated code.
//
// To use this package, compile a [MessageType] using one of the Compile*
// functions. This is a one-time cost. The resulting value implements
// [protoreflect.MessageType], and its messages implement [proto.Message].
//
// Messages are allocated on a [Shared], an arena that owns every message,
// submessage, list, and string in a message tree. Nothing is released
// individually; [Shared.Free] releases everything at once.
//
//	ty := minipb.CompileForMessage[*matcherv3.HttpRequestHeaderMatchInput]()
//	shared := new(minipb.Shared)
//	defer shared.Free()
//
//	m, err := minipb.Unmarshal(data, ty, shared)
//	if err != nil {
//		return err
//	}
//	name := minipb.Get[string](m, 1)
//
// # Field Access
//
// Fields are addressed by number through the generic accessors [Get], [Set],
// [Len], [Index] and [Append], and the methods on [Message] for submessages.
// Getters never fail: an unset field reads as its default value. Using the
// wrong Go type for a field's kind, or a field number the message does not
// have, panics.
//
// Setters do not copy. A []byte passed to [Set] is stored as-is, so mutating
// it afterwards changes the message. Use [Shared.CopyBytes] to detach a value
// from a buffer the caller will reuse. Decoded strings and bytes alias the
// decoder's copy of the input, or the input itself with [WithAllowAlias].
//
// # Support Status
//
// Map fields and group fields are not bound. Their records are kept as
// unknown fields and round-trip unchanged; through reflection, map fields
// read as empty, read-only maps.
package minipb
