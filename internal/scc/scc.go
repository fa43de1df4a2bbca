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

// Package scc contains an implementation of Tarjan's algorithm, which converts
// a directed graph into a DAG of strongly-connected components (subgraphs
// such that every node is reachable from every other node).
//
// The compiler uses this to answer questions about recursive message types,
// such as "can a message of this type contain a required field".
package scc

import (
	"iter"
	"slices"

	"buf.build/go/minipb/internal/debug"
)

// Graph is a "local" representation of a directed graph, which exposes the
// outgoing edges (i.e., dependencies) from some node.
type Graph[Node any] func(Node) iter.Seq[Node]

// DAG is the strongly connected component DAG of some directed graph.
type DAG[Node comparable] struct {
	index      map[Node]int      // Component index for each node.
	components []Component[Node] // Topologically sorted: dependencies first.
}

// Component is a strongly connected component.
type Component[Node comparable] struct {
	dag     *DAG[Node]
	idx     int
	members []Node
	deps    []int
}

// Sort computes the strongly connected components of the subgraph of graph
// reachable from root.
func Sort[Node comparable](root Node, graph Graph[Node]) *DAG[Node] {
	dag := &DAG[Node]{index: make(map[Node]int)}
	t := &tarjan[Node]{
		graph: graph,
		dag:   dag,
		state: make(map[Node]*visit),
	}
	t.visit(root)
	return dag
}

// Len returns the number of components.
func (d *DAG[Node]) Len() int {
	return len(d.components)
}

// ForNode returns the component for some node, or nil if that node was not
// reachable from the root.
func (d *DAG[Node]) ForNode(node Node) *Component[Node] {
	i, ok := d.index[node]
	if !ok {
		return nil
	}
	return &d.components[i]
}

// Topological ranges over the components such that every component is
// yielded after the components it depends on.
func (d *DAG[Node]) Topological() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for i := range d.components {
			if !yield(&d.components[i]) {
				return
			}
		}
	}
}

// Index returns this component's position in topological order.
func (c *Component[Node]) Index() int {
	return c.idx
}

// Members returns the members of this component.
func (c *Component[Node]) Members() []Node {
	return c.members
}

// Deps ranges over the components this component has an edge to, not
// including itself.
func (c *Component[Node]) Deps() iter.Seq[*Component[Node]] {
	return func(yield func(*Component[Node]) bool) {
		for _, i := range c.deps {
			if !yield(&c.dag.components[i]) {
				return
			}
		}
	}
}

// tarjan is the state for one run of Tarjan's algorithm.
//
// See https://en.wikipedia.org/wiki/Tarjan%27s_strongly_connected_components_algorithm
type tarjan[Node comparable] struct {
	graph Graph[Node]
	dag   *DAG[Node]

	next  int
	stack []Node
	state map[Node]*visit
}

type visit struct {
	index, low int
	onStack    bool
}

func (t *tarjan[Node]) visit(node Node) *visit {
	v := &visit{index: t.next, low: t.next, onStack: true}
	t.state[node] = v
	t.next++
	base := len(t.stack)
	t.stack = append(t.stack, node)
	debug.Log(nil, "visit", "%v, index: %d", node, v.index)

	for dep := range t.graph(node) {
		w := t.state[dep]
		switch {
		case w == nil:
			w = t.visit(dep)
			v.low = min(v.low, w.low)
		case w.onStack:
			v.low = min(v.low, w.index)
		}
	}

	if v.low == v.index {
		t.pop(base)
	}
	return v
}

// pop pops the nodes above base off of the stack as a new component.
func (t *tarjan[Node]) pop(base int) {
	idx := len(t.dag.components)
	c := Component[Node]{
		dag:     t.dag,
		idx:     idx,
		members: slices.Clone(t.stack[base:]),
	}
	t.stack = t.stack[:base]

	for _, node := range c.members {
		t.state[node].onStack = false
		t.dag.index[node] = idx
	}

	// Only once every member has been assigned can edges within the
	// component be told apart from edges out of it.
	for _, node := range c.members {
		for dep := range t.graph(node) {
			if i := t.dag.index[dep]; i != idx {
				c.deps = append(c.deps, i)
			}
		}
	}
	slices.Sort(c.deps)
	c.deps = slices.Compact(c.deps)

	debug.Log(nil, "component", "%d: %v -> %v", idx, c.members, c.deps)
	t.dag.components = append(t.dag.components, c)
}
