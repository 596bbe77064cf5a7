// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package layout

import (
	"github.com/archcanvas/archcanvas/pkg/geometry"
)

// GroupWrapper computes the group wrapper around the internal nodes in nodes.
// External nodes and any existing wrapper are ignored.
// Every call is a full scan of current positions, so the result is correct after any sequence of drags.
// Returns false if there are no internal nodes.
func GroupWrapper(nodes []Node, margin float64) (Node, bool) {
	var boxes []geometry.Box
	for i := range nodes {
		if n := &nodes[i]; !n.External && !n.IsGroup() {
			boxes = append(boxes, n.Box())
		}
	}
	bounds, ok := geometry.Bounds(boxes...)
	if !ok {
		return Node{}, false
	}
	bounds = bounds.Expand(margin)
	return Node{
		ID:       GroupWrapperID,
		Type:     GroupKind,
		Position: geometry.Point{X: bounds.X, Y: bounds.Y},
		Width:    bounds.Width,
		Height:   bounds.Height,
		ZIndex:   -1,
	}, true
}

// WithGroupWrapper returns nodes with the group wrapper first, so it is drawn beneath all others.
// Any previous wrapper in nodes is replaced.
func WithGroupWrapper(nodes []Node, margin float64) []Node {
	out := make([]Node, 0, len(nodes)+1)
	if w, ok := GroupWrapper(nodes, margin); ok {
		out = append(out, w)
	}
	for _, n := range nodes {
		if !n.IsGroup() {
			out = append(out, n)
		}
	}
	return out
}
