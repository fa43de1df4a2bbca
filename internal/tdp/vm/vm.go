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

// Package vm contains minipb's table-driven decoder.
//
// The decoder walks the input record by record, looks each field number up
// in the message's [tdp.Type], and stores values directly into the message's
// slots. Records it cannot place are kept as unknown fields.
package vm

import (
	"math"

	"google.golang.org/protobuf/reflect/protoregistry"

	"buf.build/go/minipb/internal/arena"
	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/sync2"
	"buf.build/go/minipb/internal/tdp/dynamic"
)

// DefaultMaxDepth is the default nesting limit for submessages.
const DefaultMaxDepth = 100

// Options is configuration for [Unmarshal].
type Options struct {
	// Maximum submessage nesting depth.
	MaxDepth int

	// If set, unknown fields are discarded.
	DiscardUnknown bool

	// If set, strings are not validated as UTF-8, even in files that
	// require it.
	AllowInvalidUTF8 bool

	// If set, the input data will not be copied before the parse begins, and
	// decoded strings and unknown fields alias it.
	AllowAlias bool

	// Resolves extensions that were not bound at compile time. May be nil.
	Extensions protoregistry.ExtensionTypeResolver
}

// NewOptions returns the default settings for [Options].
func NewOptions() Options {
	return Options{MaxDepth: DefaultMaxDepth}
}

var decoders = sync2.Pool[decoder]{
	Reset: func(d *decoder) { *d = decoder{} },
}

// Unmarshal decodes data into m, merging it with m's current contents.
//
// Decoding is all-or-nothing: on error, m is reset to empty. The error is
// either a *[ParseError] or [arena.ErrExhausted].
func Unmarshal(m *dynamic.Message, data []byte, options Options) (err error) {
	s := m.Shared
	s.Lock.Lock()
	defer s.Lock.Unlock()

	if uint64(len(data)) > math.MaxUint32 {
		m.Reset()
		return &ParseError{code: ErrorTooBig}
	}

	d, drop := decoders.Get()
	defer drop()
	d.Options = options

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		m.Reset()
		if arena.IsExhausted(r) {
			err = arena.ErrExhausted
			return
		}
		pe, ok := r.(*ParseError)
		if !ok {
			panic(r)
		}
		err = pe
		d.log("fail", "%v", err)
	}()

	if !options.AllowAlias {
		data = s.Arena().Copy(data)
	}
	d.src = data
	d.log("start", "%v, %d bytes", m.Type, len(data))
	d.message(m, data, 0)
	return nil
}

func (d *decoder) log(op, format string, args ...any) {
	debug.Log([]any{"%p", d}, op, format, args...)
}
