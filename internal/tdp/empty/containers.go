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

package empty

import (
	"fmt"

	"google.golang.org/protobuf/reflect/protoreflect"

	"buf.build/go/minipb/internal/debug"
)

// List is the value of an unset repeated field: empty and read-only.
type List struct{}

// Map is the value of a map field. Map fields are not bound, so this is
// always empty and read-only.
type Map struct{}

var (
	_ protoreflect.List = List{}
	_ protoreflect.Map  = Map{}
)

func (List) IsValid() bool { return false }
func (List) Len() int      { return 0 }
func (List) Get(n int) protoreflect.Value {
	panic(fmt.Sprintf("minipb: index %d out of range for empty list", n))
}

func (List) Truncate(n int) {
	if n != 0 {
		panic(debug.Unsupported())
	}
}

func (List) Append(protoreflect.Value)         { panic(debug.Unsupported()) }
func (List) AppendMutable() protoreflect.Value { panic(debug.Unsupported()) }
func (List) NewElement() protoreflect.Value    { panic(debug.Unsupported()) }
func (List) Set(int, protoreflect.Value)       { panic(debug.Unsupported()) }

func (Map) IsValid() bool                                            { return false }
func (Map) Len() int                                                 { return 0 }
func (Map) Has(protoreflect.MapKey) bool                             { return false }
func (Map) Get(protoreflect.MapKey) protoreflect.Value               { return protoreflect.Value{} }
func (Map) Range(func(protoreflect.MapKey, protoreflect.Value) bool) {}
func (Map) Clear(protoreflect.MapKey)                                {}

func (Map) Set(protoreflect.MapKey, protoreflect.Value)    { panic(debug.Unsupported()) }
func (Map) Mutable(protoreflect.MapKey) protoreflect.Value { panic(debug.Unsupported()) }
func (Map) NewValue() protoreflect.Value                   { panic(debug.Unsupported()) }
