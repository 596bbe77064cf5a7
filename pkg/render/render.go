// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package render draws a laid-out diagram as an SVG document.
package render

import (
	"bytes"
	"fmt"
	"io"
	"math"

	svg "github.com/ajstarks/svgo"
	"github.com/archcanvas/archcanvas/pkg/geometry"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/shape"
)

// Margin around the drawing, in pixels.
const Margin = 20

// Approximate width of one label character, used to size label backgrounds.
const charWidth = 6.5

type colors struct {
	Background, Edge, Label, LabelBackground, Group string
}

var themeColors = map[shape.Theme]colors{
	shape.Light: {Background: "#ffffff", Edge: "#707070", Label: "#333333", LabelBackground: "#ffffff", Group: "#9aa7b4"},
	shape.Dark:  {Background: "#1b1f24", Edge: "#a0a8b0", Label: "#e0e4e8", LabelBackground: "#1b1f24", Group: "#5c6773"},
}

// Diagram is a set of renderable nodes and edges.
type Diagram struct {
	Title string
	Nodes []layout.Node
	Edges []layout.Edge
}

// SVG writes the diagram to w as a standalone SVG document.
// Edges are drawn as floating edges between the current node boxes,
// edges with a missing source or target are not drawn.
func SVG(w io.Writer, d Diagram, theme shape.Theme) error {
	col, ok := themeColors[theme]
	if !ok {
		col = themeColors[shape.Light]
	}
	boxes := map[string]geometry.Box{}
	var all []geometry.Box
	for i := range d.Nodes {
		b := d.Nodes[i].Box()
		all = append(all, b)
		if !d.Nodes[i].IsGroup() {
			boxes[d.Nodes[i].ID] = b
		}
	}
	bounds, _ := geometry.Bounds(all...)
	bounds = bounds.Expand(Margin)

	buf := &bytes.Buffer{}
	c := svg.New(buf)
	c.Start(px(bounds.Width), px(bounds.Height))
	if d.Title != "" {
		c.Title(d.Title)
	}
	c.Def()
	c.Marker(layout.ArrowMarker, 10, 5, 10, 10, `orient="auto"`, `markerUnits="strokeWidth"`, `viewBox="0 0 10 10"`)
	c.Path("M 0 0 L 10 5 L 0 10 z", "fill:"+col.Edge)
	c.MarkerEnd()
	c.DefEnd()
	c.Rect(0, 0, px(bounds.Width), px(bounds.Height), "fill:"+col.Background)
	c.Gtransform(fmt.Sprintf("translate(%d,%d)", px(-bounds.X), px(-bounds.Y)))

	for i := range d.Nodes {
		if n := &d.Nodes[i]; n.IsGroup() {
			b := n.Box()
			c.Roundrect(px(b.X), px(b.Y), px(b.Width), px(b.Height), 12, 12,
				`id="`+n.ID+`"`, fmt.Sprintf("fill:none;stroke:%s;stroke-width:2;stroke-dasharray:8,6", col.Group))
		}
	}
	for _, e := range d.Edges {
		source, ok1 := boxes[e.Source]
		target, ok2 := boxes[e.Target]
		if !ok1 || !ok2 {
			continue
		}
		drawEdge(c, e, geometry.EdgeAnchors(source, target), col)
	}
	for i := range d.Nodes {
		if n := &d.Nodes[i]; !n.IsGroup() && n.Data != nil {
			shape.Draw(c, n.Data, n.Position, theme)
		}
	}
	c.Gend()
	c.End()
	_, err := w.Write(buf.Bytes())
	return err
}

func drawEdge(c *svg.SVG, e layout.Edge, a geometry.Anchors, col colors) {
	c.Gid(e.ID)
	c.Line(px(a.SourcePoint.X), px(a.SourcePoint.Y), px(a.TargetPoint.X), px(a.TargetPoint.Y),
		fmt.Sprintf(`marker-end="url(#%s)"`, e.Marker), fmt.Sprintf("stroke:%s;stroke-width:1.5", col.Edge))
	if label := Label(e); label != "" {
		mx, my := (a.SourcePoint.X+a.TargetPoint.X)/2, (a.SourcePoint.Y+a.TargetPoint.Y)/2
		if e.LabelBackground {
			w := math.Ceil(float64(len([]rune(label)))*charWidth) + 8
			c.Rect(px(mx-w/2), px(my-10), px(w), 18, "fill:"+col.LabelBackground+";fill-opacity:0.9")
		}
		c.Text(px(mx), px(my+3), label, fmt.Sprintf("fill:%s;font-family:sans-serif;font-size:11px;text-anchor:middle", col.Label))
	}
	c.Gend()
}

// Label of an edge: the description, with the technology in brackets when present.
func Label(e layout.Edge) string {
	switch {
	case e.Technology == "":
		return e.Label
	case e.Label == "":
		return "[" + e.Technology + "]"
	default:
		return e.Label + " [" + e.Technology + "]"
	}
}

func px(f float64) int { return int(math.Round(f)) }
