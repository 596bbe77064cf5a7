// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package layout turns the nodes and relations of a view into renderable nodes and edges.
//
// Nodes are placed at their persisted positions when every node has one,
// otherwise all nodes are placed by a [Layouter].
// Edges are floating: their end points are computed from live node positions when drawn,
// never at layout time.
package layout

import (
	"fmt"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/pkg/geometry"
	"github.com/archcanvas/archcanvas/pkg/graph"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/archcanvas/archcanvas/pkg/shape"
)

var log = logging.Log()

const (
	// GroupWrapperID is the ID of the synthetic node drawn behind internal nodes.
	GroupWrapperID = "group-wrapper"
	// GroupKind is the Type of the group wrapper node.
	GroupKind = "group"
	// EdgeType of all edges.
	EdgeType = "floating"
	// ArrowMarker at the target end of all edges.
	ArrowMarker = "arrowclosed"
	// DefaultGroupMargin around internal nodes.
	DefaultGroupMargin = 40
)

// Layouter computes node positions for a layout graph.
// Returned points are node centers, keyed by model node ID.
type Layouter interface {
	Layout(g *graph.Graph) (map[string]model.Point, error)
}

// Node is a renderable node.
type Node struct {
	ID         string      `json:"id"`
	Type       string      `json:"type"`     // Node type wire name, or [GroupKind].
	Position   model.Point `json:"position"` // Top-left corner.
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	Data       *model.Node `json:"data,omitempty"` // Nil for the group wrapper.
	External   bool        `json:"external,omitempty"`
	Draggable  bool        `json:"draggable"`
	Selectable bool        `json:"selectable"`
	ZIndex     int         `json:"zIndex"`
}

// Box is the bounding box of the node.
func (n Node) Box() geometry.Box {
	return geometry.Box{X: n.Position.X, Y: n.Position.Y, Width: n.Width, Height: n.Height}
}

// IsGroup is true for the group wrapper.
func (n Node) IsGroup() bool { return n.Type == GroupKind }

// Edge is a renderable directed edge for one relation.
type Edge struct {
	ID              string `json:"id"`
	Source          string `json:"source"`
	Target          string `json:"target"`
	Label           string `json:"label,omitempty"`
	Technology      string `json:"technology,omitempty"`
	Type            string `json:"type"`
	Marker          string `json:"markerEnd"`
	LabelBackground bool   `json:"labelBackground"`
}

// EdgeID for the relation at index in the relation list.
// Parallel relations between the same nodes differ only by index.
func EdgeID(source, target string, index int) string {
	return fmt.Sprintf("edge-%s-%s-%d", source, target, index)
}

// Result of a layout.
type Result struct {
	Nodes []Node `json:"nodes"` // Internal nodes first, then external nodes.
	Edges []Edge `json:"edges"`
	Auto  bool   `json:"auto"` // Auto is true if the layouter was used.
}

// Options for a single layout call.
type Options struct {
	// Force automatic layout even if every node has a stored position.
	Force bool
}

// Engine lays out views.
type Engine struct {
	Layouter    Layouter
	GroupMargin float64
}

// New engine using layouter, with the default group margin.
func New(layouter Layouter) *Engine {
	return &Engine{Layouter: layouter, GroupMargin: DefaultGroupMargin}
}

// LayoutView is Layout for the nodes and relations of v.
func (e *Engine) LayoutView(v *model.View, opts Options) (*Result, error) {
	return e.Layout(v.Nodes, v.ExternalNodes, v.Relations, opts)
}

// Layout internal and external nodes connected by relations.
// An empty node set gives an empty result, not an error.
func (e *Engine) Layout(internal, external []model.Node, relations []model.Relation, opts Options) (*Result, error) {
	r := &Result{Nodes: []Node{}, Edges: Edges(relations)}
	if len(internal)+len(external) == 0 {
		return r, nil
	}
	var centers map[string]model.Point
	scope := &model.View{Nodes: internal, ExternalNodes: external}
	if opts.Force || !scope.Positioned() {
		g := Graph("layout", internal, external, relations)
		var err error
		if centers, err = e.Layouter.Layout(g); err != nil {
			return nil, fmt.Errorf("auto-layout failed: %w", err)
		}
		r.Auto = true
	}
	add := func(nodes []model.Node, external bool) {
		for i := range nodes {
			n := nodes[i] // Copy, results must not alias the input.
			size := shape.Size(n.Type)
			var pos model.Point
			if r.Auto {
				c := centers[n.ID]
				pos = model.Point{X: c.X - size.Width/2, Y: c.Y - size.Height/2}
			} else {
				pos = *n.Position
			}
			r.Nodes = append(r.Nodes, Node{
				ID:         n.ID,
				Type:       n.Type.String(),
				Position:   pos,
				Width:      size.Width,
				Height:     size.Height,
				Data:       &n,
				External:   external,
				Draggable:  true,
				Selectable: true,
			})
		}
	}
	add(internal, false)
	add(external, true)
	log.V(3).Info("layout", "nodes", len(r.Nodes), "edges", len(r.Edges), "auto", r.Auto)
	return r, nil
}

// Edges builds one edge per relation, including relations with dangling references.
func Edges(relations []model.Relation) []Edge {
	edges := make([]Edge, 0, len(relations))
	for i, rel := range relations {
		edges = append(edges, Edge{
			ID:              EdgeID(rel.SourceID, rel.TargetID, i),
			Source:          rel.SourceID,
			Target:          rel.TargetID,
			Label:           rel.Description,
			Technology:      rel.Technology,
			Type:            EdgeType,
			Marker:          ArrowMarker,
			LabelBackground: true,
		})
	}
	return edges
}

// Graph builds the layout graph for a set of nodes and relations.
// Node boxes are sized from the shape size table.
func Graph(name string, internal, external []model.Node, relations []model.Relation) *graph.Graph {
	g := graph.New(name)
	for _, x := range []struct {
		nodes    []model.Node
		external bool
	}{{internal, false}, {external, true}} {
		for _, n := range x.nodes {
			size := shape.Size(n.Type)
			g.Add(n, size.Width, size.Height, x.external)
		}
	}
	for i, r := range relations {
		g.Connect(r, i)
	}
	return g
}
