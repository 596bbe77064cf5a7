// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// Package graph provides a directed multi-graph of diagram nodes and relation lines.
//
// It is the abstract graph handed to a layout algorithm: one box per node, one line per relation.
// Nodes carry their pixel size, lines carry the relation they came from.
// The graph can also be exported in Graphviz DOT format.
package graph

import (
	"fmt"

	"github.com/archcanvas/archcanvas/pkg/model"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/multi"
)

// Graph is a directed multigraph with [Node] nodes and [Line] lines.
// Nodes and lines carry attributes for rendering by GraphViz.
//
// Concurrency: Graph is mutable, normal concurrency rules apply regarding read/write operations.
type Graph struct {
	*multi.DirectedGraph
	GraphAttrs, NodeAttrs, EdgeAttrs Attrs

	nodes map[string]*Node
	order []*Node // Insertion order, graph iterators are unordered.
	lines int64
}

// New empty graph.
func New(name string) *Graph {
	return &Graph{
		DirectedGraph: multi.NewDirectedGraph(),
		GraphAttrs: Attrs{
			"name":    name,
			"rankdir": "TB",
			"splines": "true",
			"layout":  "dot",
		},
		NodeAttrs: Attrs{
			"fontname": "Helvetica",
			"fontsize": "12",
			"shape":    "box",
		},
		EdgeAttrs: Attrs{
			"fontname": "Helvetica",
			"fontsize": "10",
		},
		nodes: map[string]*Node{},
	}
}

// Add a node with a fixed pixel size. Adding an existing ID returns the existing node.
func (g *Graph) Add(n model.Node, width, height float64, external bool) *Node {
	if existing := g.nodes[n.ID]; existing != nil {
		return existing
	}
	node := &Node{Node: n, id: int64(len(g.order)), Width: width, Height: height, External: external}
	g.AddNode(node)
	g.nodes[n.ID] = node
	g.order = append(g.order, node)
	return node
}

// Connect adds a line for relation r, index is the position of r in the view's relation list.
// Returns nil if either end is not in the graph, or for a self-relation.
func (g *Graph) Connect(r model.Relation, index int) *Line {
	start, goal := g.nodes[r.SourceID], g.nodes[r.TargetID]
	if start == nil || goal == nil || start == goal {
		return nil
	}
	l := &Line{start: start, goal: goal, id: g.lines, Index: index, Relation: r}
	g.lines++
	g.SetLine(l)
	return l
}

// NodeFor returns the node for a model node ID, or nil.
func (g *Graph) NodeFor(id string) *Node { return g.nodes[id] }

// NodeForErr is like NodeFor but returns an error if not found.
func (g *Graph) NodeForErr(id string) (*Node, error) {
	if n := g.NodeFor(id); n != nil {
		return n, nil
	}
	return nil, fmt.Errorf("node not found in graph: %v", id)
}

// NodeList returns nodes in the order they were added.
func (g *Graph) NodeList() []*Node { return g.order }

// Len is the number of nodes.
func (g *Graph) Len() int { return len(g.order) }

// EachNode calls visit for each node in insertion order.
func (g *Graph) EachNode(visit func(*Node)) {
	for _, n := range g.order {
		visit(n)
	}
}

// EachLine calls visit for each line in the graph.
func (g *Graph) EachLine(visit func(*Line)) {
	for _, n := range g.order {
		g.EachLineFrom(n, visit)
	}
}

// EachLineFrom calls visit(l) for each line from start.
func (g *Graph) EachLineFrom(start *Node, visit func(*Line)) {
	goals := g.From(start.ID())
	for goals.Next() {
		// NOTE: do not use embedded [multi.Edge.Lines] iterator, it modifies the edge, concurrent unsafe.
		lines := g.Lines(start.ID(), goals.Node().ID())
		for lines.Next() {
			visit(lines.Line().(*Line))
		}
	}
}

// Successors of n in insertion order, without duplicates.
func (g *Graph) Successors(n *Node) []*Node { return g.sorted(g.From(n.ID())) }

// Predecessors of n in insertion order, without duplicates.
func (g *Graph) Predecessors(n *Node) []*Node { return g.sorted(g.To(n.ID())) }

func (g *Graph) sorted(it graph.Nodes) []*Node {
	seen := make([]bool, len(g.order))
	for it.Next() {
		seen[it.Node().ID()] = true
	}
	var nodes []*Node
	for i, ok := range seen {
		if ok {
			nodes = append(nodes, g.order[i])
		}
	}
	return nodes
}

func (g *Graph) DOTID() string { return g.GraphAttrs["name"] }
func (g *Graph) DOTAttributers() (graph, node, edge encoding.Attributer) {
	attrs := Attrs{}
	for k, v := range g.GraphAttrs {
		if k != "name" {
			attrs[k] = v
		}
	}
	return attrs, g.NodeAttrs, g.EdgeAttrs
}

// DOT returns the graph in Graphviz DOT format.
func (g *Graph) DOT() ([]byte, error) { return dot.MarshalMulti(g, "", "", "  ") }

// Node is a graph node wrapping a model node.
type Node struct {
	model.Node
	id            int64
	Width, Height float64
	External      bool
}

func (n *Node) ID() int64      { return n.id }
func (n *Node) DOTID() string  { return n.Node.ID }
func (n *Node) String() string { return n.Node.ID }
func (n *Node) Attributes() []encoding.Attribute {
	attrs := Attrs{
		"label":  fmt.Sprintf(`%s\n[%s]`, n.Name, n.Type.Title()),
		"width":  fmt.Sprintf("%.2f", n.Width/72),
		"height": fmt.Sprintf("%.2f", n.Height/72),
	}
	switch n.Type {
	case model.Person:
		attrs["shape"] = "egg"
	case model.Database:
		attrs["shape"] = "cylinder"
	case model.Component:
		attrs["shape"] = "component"
	}
	if n.External {
		attrs["style"] = "dashed"
	}
	return attrs.Attributes()
}

// Line is a graph line for one relation.
type Line struct {
	start, goal *Node
	id          int64
	Index       int // Index of the relation in the view.
	Relation    model.Relation
}

func (l *Line) From() graph.Node  { return l.start }
func (l *Line) To() graph.Node    { return l.goal }
func (l *Line) Start() *Node      { return l.start }
func (l *Line) Goal() *Node       { return l.goal }
func (l *Line) ID() int64         { return l.id }
func (l *Line) ReversedLine() graph.Line {
	return &Line{start: l.goal, goal: l.start, id: l.id, Index: l.Index, Relation: l.Relation}
}
func (l *Line) Attributes() []encoding.Attribute {
	attrs := Attrs{}
	if l.Relation.Description != "" {
		attrs["label"] = l.Relation.Description
	}
	return attrs.Attributes()
}
