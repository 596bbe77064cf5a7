// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package rest

import (
	"github.com/archcanvas/archcanvas/pkg/canvas"
	"github.com/archcanvas/archcanvas/pkg/layout"
)

// Canvas is a canvas snapshot with the notices raised since the last response.
type Canvas struct {
	canvas.Snapshot
	// Notices for the user, oldest first.
	Notices []canvas.Notice `json:"notices,omitempty"`
	// Location is the bookmarkable URL query of the canvas, e.g. "view=v1".
	Location string `json:"location,omitempty"`
}

// SelectView request body.
type SelectView struct {
	View string `json:"view" binding:"required"`
}

// Select node request body. An empty node clears the selection.
type Select struct {
	Node string `json:"node"`
}

// Position request body for node move and drop.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Wrapper is the response to a node move.
type Wrapper struct {
	// Wrapper is the recomputed group wrapper, absent if there are no internal nodes.
	Wrapper *layout.Node `json:"wrapper,omitempty"`
}

// CreateKey request body.
type CreateKey struct {
	TargetMemberID string `json:"targetMemberId" binding:"required"`
}

// Options for SVG rendering.
type SVGOptions struct {
	Theme string `form:"theme"`
}
