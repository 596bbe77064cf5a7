// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package shape draws diagram nodes as SVG.
//
// Each [model.NodeType] has a fixed size, a shape and a palette per [Theme].
// The theme is always passed explicitly, there is no global theme state.
package shape

import (
	"fmt"
	"io"

	svg "github.com/ajstarks/svgo"
	"github.com/archcanvas/archcanvas/pkg/geometry"
	"github.com/archcanvas/archcanvas/pkg/model"
)

// Theme selects the light or dark palette.
type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// ParseTheme accepts "light", "dark" or "" (light).
func ParseTheme(s string) (Theme, error) {
	switch Theme(s) {
	case Light, "":
		return Light, nil
	case Dark:
		return Dark, nil
	default:
		return "", fmt.Errorf("invalid theme: %q", s)
	}
}

// Dimensions of a node in pixels.
type Dimensions struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

var sizes = [model.NumNodeTypes]Dimensions{
	model.Person:         {Width: 160, Height: 180},
	model.SoftwareSystem: {Width: 240, Height: 140},
	model.ExternalSystem: {Width: 240, Height: 140},
	model.Database:       {Width: 220, Height: 150},
	model.WebApplication: {Width: 240, Height: 160},
	model.Container:      {Width: 240, Height: 140},
	model.Component:      {Width: 220, Height: 130},
}

// Size of a node of type t. Invalid types get the container size.
func Size(t model.NodeType) Dimensions {
	if !t.Valid() {
		return sizes[model.Container]
	}
	return sizes[t]
}

// Palette of colors for one node type and theme.
type Palette struct {
	Fill   string `json:"fill"`
	Stroke string `json:"stroke"`
	Text   string `json:"text"`
	Muted  string `json:"muted"` // Muted text for annotation and description.
}

var palettes = map[Theme][model.NumNodeTypes]Palette{
	Light: {
		model.Person:         {Fill: "#08427b", Stroke: "#073b6f", Text: "#ffffff", Muted: "#dbe7f3"},
		model.SoftwareSystem: {Fill: "#1168bd", Stroke: "#0b4884", Text: "#ffffff", Muted: "#dde9f6"},
		model.ExternalSystem: {Fill: "#999999", Stroke: "#8a8a8a", Text: "#ffffff", Muted: "#f0f0f0"},
		model.Database:       {Fill: "#438dd5", Stroke: "#3c7fc0", Text: "#ffffff", Muted: "#e6f0fa"},
		model.WebApplication: {Fill: "#438dd5", Stroke: "#3c7fc0", Text: "#ffffff", Muted: "#e6f0fa"},
		model.Container:      {Fill: "#438dd5", Stroke: "#3c7fc0", Text: "#ffffff", Muted: "#e6f0fa"},
		model.Component:      {Fill: "#85bbf0", Stroke: "#78a8d8", Text: "#000000", Muted: "#1f3b57"},
	},
	Dark: {
		model.Person:         {Fill: "#0b3a66", Stroke: "#5a8fc4", Text: "#e8eef5", Muted: "#a9bfd6"},
		model.SoftwareSystem: {Fill: "#0d4f8f", Stroke: "#5c9ad6", Text: "#e8eef5", Muted: "#b0c8e0"},
		model.ExternalSystem: {Fill: "#4a4a4a", Stroke: "#7a7a7a", Text: "#e6e6e6", Muted: "#b8b8b8"},
		model.Database:       {Fill: "#2d6aa3", Stroke: "#6aa5dc", Text: "#eef4fa", Muted: "#c2d8ec"},
		model.WebApplication: {Fill: "#2d6aa3", Stroke: "#6aa5dc", Text: "#eef4fa", Muted: "#c2d8ec"},
		model.Container:      {Fill: "#2d6aa3", Stroke: "#6aa5dc", Text: "#eef4fa", Muted: "#c2d8ec"},
		model.Component:      {Fill: "#3e6f9e", Stroke: "#8cb9e3", Text: "#f2f7fc", Muted: "#cfe0f0"},
	},
}

// PaletteFor looks up the colors of type t in theme.
func PaletteFor(t model.NodeType, theme Theme) Palette {
	p, ok := palettes[theme]
	if !ok {
		p = palettes[Light]
	}
	if !t.Valid() {
		t = model.Container
	}
	return p[t]
}

// Shape draws the outline of a node inside its bounding box.
type Shape interface {
	// Name of the shape, for debugging and DOT export.
	Name() string
	// Draw the outline.
	Draw(c *svg.SVG, box geometry.Box, p Palette)
	// TextTop is the offset from the top of the box where the text block starts.
	TextTop(box geometry.Box) float64
}

var shapes = [model.NumNodeTypes]Shape{
	model.Person:         person{},
	model.SoftwareSystem: roundedBox{},
	model.ExternalSystem: roundedBox{},
	model.Database:       cylinder{},
	model.WebApplication: browser{},
	model.Container:      roundedBox{},
	model.Component:      component{},
}

// For returns the shape for node type t, nil for an invalid type.
func For(t model.NodeType) Shape {
	if !t.Valid() {
		return nil
	}
	return shapes[t]
}

// HandleType is the direction of a connection handle.
type HandleType string

const (
	Target HandleType = "target" // Inbound edges.
	Source HandleType = "source" // Outbound edges.
)

// Handle is a connection point on a node.
// Edges are floating and anchor with [geometry.EdgeAnchors], handles are informational.
type Handle struct {
	ID       string        `json:"id"`
	Type     HandleType    `json:"type"`
	Side     geometry.Side `json:"side"`
	Position model.Point   `json:"position"`
}

// Handles of a node box: top for inbound, bottom for outbound.
func Handles(box geometry.Box) []Handle {
	c := box.Center()
	return []Handle{
		{ID: "top", Type: Target, Side: geometry.Top, Position: model.Point{X: c.X, Y: box.Y}},
		{ID: "bottom", Type: Source, Side: geometry.Bottom, Position: model.Point{X: c.X, Y: box.Bottom()}},
	}
}

// Draw node n with its top-left corner at pos.
func Draw(c *svg.SVG, n *model.Node, pos model.Point, theme Theme) {
	t := n.Type
	if !t.Valid() {
		t = model.Container
	}
	size := Size(t)
	box := geometry.Box{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}
	p := PaletteFor(t, theme)
	s := For(t)
	c.Gid(n.ID)
	c.Title(n.Name)
	s.Draw(c, box, p)
	drawText(c, TextBlockFor(n), box, s.TextTop(box), p)
	c.Gend()
}

// SVG writes a standalone SVG document containing a single node.
func SVG(w io.Writer, n *model.Node, theme Theme) {
	size := Size(n.Type)
	c := svg.New(w)
	c.Start(px(size.Width)+2, px(size.Height)+2)
	Draw(c, n, model.Point{X: 1, Y: 1}, theme)
	c.End()
}

// px rounds a float coordinate to the integer pixel grid used by svgo.
func px(f float64) int {
	if f < 0 {
		return int(f - 0.5)
	}
	return int(f + 0.5)
}
