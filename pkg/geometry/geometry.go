// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package geometry computes where floating edges touch the nodes they connect.
//
// Every node is treated as an axis-aligned rectangle, whatever shape it is drawn with.
package geometry

import (
	"math"

	"github.com/archcanvas/archcanvas/pkg/model"
)

// Point is an alias for the model point so results can be stored directly on nodes.
type Point = model.Point

// Tolerance in pixels when deciding which side of a box a point lies on.
const Tolerance = 1.0

// MinSize is the smallest width or height used in intersection math.
const MinSize = 1.0

// Side of a box.
type Side string

const (
	Top    Side = "top"
	Bottom Side = "bottom"
	Left   Side = "left"
	Right  Side = "right"
)

// Box is an axis-aligned rectangle with X, Y at the top-left corner.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (b Box) Center() Point { return Point{X: b.X + b.Width/2, Y: b.Y + b.Height/2} }
func (b Box) Right() float64 { return b.X + b.Width }
func (b Box) Bottom() float64 { return b.Y + b.Height }

// Expand grows the box by margin on every side.
func (b Box) Expand(margin float64) Box {
	return Box{X: b.X - margin, Y: b.Y - margin, Width: b.Width + 2*margin, Height: b.Height + 2*margin}
}

// Union is the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	x, y := math.Min(b.X, o.X), math.Min(b.Y, o.Y)
	return Box{X: x, Y: y, Width: math.Max(b.Right(), o.Right()) - x, Height: math.Max(b.Bottom(), o.Bottom()) - y}
}

// Contains is true if o lies entirely inside b, edges included.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.Right() <= b.Right() && o.Bottom() <= b.Bottom()
}

// Bounds returns the union of boxes, ok is false if there are none.
func Bounds(boxes ...Box) (bounds Box, ok bool) {
	for i, b := range boxes {
		if i == 0 {
			bounds = b
		} else {
			bounds = bounds.Union(b)
		}
	}
	return bounds, len(boxes) > 0
}

// clamp enforces MinSize so the intersection formula never divides by zero.
func (b Box) clamp() Box {
	b.Width = math.Max(b.Width, MinSize)
	b.Height = math.Max(b.Height, MinSize)
	return b
}

// Anchors are the points and sides where an edge touches its source and target.
type Anchors struct {
	SourcePoint Point `json:"sourcePoint"`
	TargetPoint Point `json:"targetPoint"`
	SourceSide  Side  `json:"sourceSide"`
	TargetSide  Side  `json:"targetSide"`
}

// EdgeAnchors computes the floating edge end points between two boxes.
// Each end point is where the line between the box centers crosses that box's border.
func EdgeAnchors(source, target Box) Anchors {
	source, target = source.clamp(), target.clamp()
	sp := Intersection(source, target)
	tp := Intersection(target, source)
	return Anchors{
		SourcePoint: sp,
		TargetPoint: tp,
		SourceSide:  SideOf(source, sp),
		TargetSide:  SideOf(target, tp),
	}
}

// Intersection returns the point where the line from the center of b towards the center of other
// crosses the border of b.
//
// Concentric boxes have no such line, the top-center of b is returned.
func Intersection(b, other Box) Point {
	b, other = b.clamp(), other.clamp()
	w, h := b.Width/2, b.Height/2
	c, oc := b.Center(), other.Center()
	// Rotate into a space where the box is the unit diamond |u|+|v| = 1.
	u := (oc.X-c.X)/(2*w) - (oc.Y-c.Y)/(2*h)
	v := (oc.X-c.X)/(2*w) + (oc.Y-c.Y)/(2*h)
	sum := math.Abs(u) + math.Abs(v)
	if sum == 0 {
		return Point{X: c.X, Y: b.Y}
	}
	a := 1 / sum
	u, v = a*u, a*v
	return Point{X: w*(u+v) + c.X, Y: h*(-u+v) + c.Y}
}

// SideOf classifies a border point of b. Checks left, right, top, bottom in that order,
// a point matching none of them is classified as top.
func SideOf(b Box, p Point) Side {
	switch {
	case p.X <= b.X+Tolerance:
		return Left
	case p.X >= b.Right()-Tolerance:
		return Right
	case p.Y <= b.Y+Tolerance:
		return Top
	case p.Y >= b.Bottom()-Tolerance:
		return Bottom
	default:
		return Top
	}
}
