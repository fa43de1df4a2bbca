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

// Package tdp contains the compiled schema tables ("mini-tables") that drive
// minipb's decoder, encoder, and field accessors. "TDP" stands for
// "table-driven protobuf".
//
// A [Type] describes the storage layout of one message type: which slots hold
// which fields, which presence bits and oneof case words exist, and what the
// defaults are. Subpackages contain the compiler that builds these tables and
// the components that interpret them.
//
// All fields in this package are exported because they are assembled and
// accessed by other internal packages. None of the types in this package
// should ever be exposed to users.
package tdp
