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

// Package compiler converts message descriptors into [tdp.Type]s.
package compiler

import (
	"cmp"
	"iter"
	"slices"

	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/runtime/protoiface"

	"buf.build/go/minipb/internal/debug"
	"buf.build/go/minipb/internal/scc"
	"buf.build/go/minipb/internal/tdp"
)

// Options is configuration for [Compile].
type Options struct {
	// Extensions to bind at compile time. May be nil.
	Extensions ExtensionResolver

	// Backend connects the compiler with configuration defined in another
	// package. This type mostly exists to break a circular dependency.
	Backend interface {
		// PopulateMethods gives the backend an opportunity to populate the
		// fast-path methods of a compiled type.
		PopulateMethods(*protoiface.Methods)
	}
}

// Compile compiles md and every message type reachable from it into a new
// [tdp.Library], and returns the [tdp.Type] for md.
func Compile(md protoreflect.MessageDescriptor, options Options) *tdp.Type {
	c := &compiler{
		Options: options,
		lib: &tdp.Library{
			Types:    make(map[protoreflect.MessageDescriptor]*tdp.Type),
			Metadata: options,
		},
		edges: make(map[protoreflect.MessageDescriptor][]protoreflect.MessageDescriptor),
		exts:  make(map[protoreflect.MessageDescriptor][]protoreflect.ExtensionType),
	}
	return c.compile(md)
}

// compiler is the state for a single call to [Compile].
type compiler struct {
	Options
	lib *tdp.Library

	order []protoreflect.MessageDescriptor // In discovery order.
	edges map[protoreflect.MessageDescriptor][]protoreflect.MessageDescriptor
	exts  map[protoreflect.MessageDescriptor][]protoreflect.ExtensionType
}

func (c *compiler) compile(root protoreflect.MessageDescriptor) *tdp.Type {
	c.discover(root)

	for _, md := range c.order {
		c.lib.Types[md] = &tdp.Type{Library: c.lib, Descriptor: md}
	}
	for _, md := range c.order {
		ty := c.lib.Types[md]
		layout(ty)
		for i := range ty.Fields {
			f := &ty.Fields[i]
			if f.Storage == tdp.InMessages || (f.Storage == tdp.InLists && f.Kind == protoreflect.MessageKind) {
				f.Message = c.lib.Types[f.Desc.Message()]
			}
		}
		if c.Backend != nil {
			c.Backend.PopulateMethods(&ty.Methods)
		}
	}

	c.findRequired(root)

	// Extension holders point at types that must already know whether they
	// contain required fields, so these go last.
	for _, md := range c.order {
		ty := c.lib.Types[md]
		for _, xt := range c.exts[md] {
			h := Holder(c.lib, xt)
			ty.Extensions = append(ty.Extensions, h)
			ty.HasRequired = ty.HasRequired || h.HasRequired
		}
		slices.SortFunc(ty.Extensions, func(a, b *tdp.Type) int {
			return cmp.Compare(a.Fields[0].Number, b.Fields[0].Number)
		})
		ty.Extensions = slices.CompactFunc(ty.Extensions, func(a, b *tdp.Type) bool {
			return a.Fields[0].Number == b.Fields[0].Number
		})
		c.log("type", "%v", ty)
	}

	return c.lib.Types[root]
}

// discover walks every message type reachable from md through bound fields
// and compile-time extensions.
func (c *compiler) discover(md protoreflect.MessageDescriptor) {
	if _, ok := c.edges[md]; ok {
		return
	}
	c.edges[md] = nil
	c.order = append(c.order, md)

	var deps []protoreflect.MessageDescriptor
	fields := md.Fields()
	for i := range fields.Len() {
		fd := fields.Get(i)
		if bound(fd) && fd.Message() != nil {
			deps = append(deps, fd.Message())
		}
	}

	if c.Extensions != nil && md.ExtensionRanges().Len() > 0 {
		for _, xd := range c.Extensions.FindExtensionsByMessage(md.FullName()) {
			if !bound(xd) || !md.ExtensionRanges().Has(xd.Number()) {
				continue
			}
			c.exts[md] = append(c.exts[md], ExtensionType(xd))
			if xd.Message() != nil {
				deps = append(deps, xd.Message())
			}
		}
	}

	c.edges[md] = deps
	for _, dep := range deps {
		c.discover(dep)
	}
}

// findRequired marks every type that can contain a required field.
//
// Recursive types make this a fixpoint problem; sorting the type graph into
// strongly connected components turns it into a single pass in topological
// order, because every type in a cycle has the same answer.
func (c *compiler) findRequired(root protoreflect.MessageDescriptor) {
	dag := scc.Sort(root, func(md protoreflect.MessageDescriptor) iter.Seq[protoreflect.MessageDescriptor] {
		return slices.Values(c.edges[md])
	})

	required := make([]bool, dag.Len())
	for comp := range dag.Topological() {
		has := false
		for dep := range comp.Deps() {
			has = has || required[dep.Index()]
		}
		for _, md := range comp.Members() {
			for _, f := range c.lib.Types[md].Fields {
				has = has || f.Required
			}
		}
		required[comp.Index()] = has

		for _, md := range comp.Members() {
			c.lib.Types[md].HasRequired = has
		}
	}
}

func (c *compiler) log(op, format string, args ...any) {
	debug.Log([]any{"%p", c}, op, format, args...)
}
