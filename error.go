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
	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/tdp/encoder"
	"buf.build/go/minipb/internal/tdp/vm"
)

// ParseError is the error returned when decoding fails because the input is
// malformed. Use [errors.As] to recover it from an error.
//
// Its Unwrap method returns one of the Err* values of [ErrorCode].
type ParseError = vm.ParseError

// ErrorCode is the kind of a [ParseError].
type ErrorCode = vm.ErrorCode

const (
	ErrorTruncated      = vm.ErrorTruncated      // Input ended in the middle of a field.
	ErrorFieldNumber    = vm.ErrorFieldNumber    // A tag had field number zero or out of range.
	ErrorOverflow       = vm.ErrorOverflow       // A varint was longer than ten bytes.
	ErrorReserved       = vm.ErrorReserved       // A tag used wire type 6 or 7.
	ErrorEndGroup       = vm.ErrorEndGroup       // An end-group tag did not match a group.
	ErrorRecursionDepth = vm.ErrorRecursionDepth // Submessages were nested too deeply.
	ErrorUTF8           = vm.ErrorUTF8           // A string field that must be UTF-8 was not.
	ErrorTooBig         = vm.ErrorTooBig         // The input was larger than 4GB.
)

var (
	// ErrAllocation is returned when an operation would exceed the limit set
	// with [Shared.SetLimit].
	ErrAllocation = arena.ErrExhausted

	// ErrMissingRequired is returned by [Message.Marshal] with
	// [WithCheckRequired], and by proto.Marshal, when a required field is
	// not set. The returned error wraps it with the field's name.
	ErrMissingRequired = encoder.ErrMissingRequired
)
