// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package shape

import (
	"fmt"

	svg "github.com/ajstarks/svgo"
	"github.com/archcanvas/archcanvas/pkg/geometry"
)

const (
	cornerRadius = 10
	strokeWidth  = 2
	chromeHeight = 24 // Height of the web application browser bar.
	tabWidth     = 24 // Component notation tabs.
	tabHeight    = 14
)

func style(p Palette) string {
	return fmt.Sprintf("fill:%s;stroke:%s;stroke-width:%d", p.Fill, p.Stroke, strokeWidth)
}

// roundedBox is used for systems and containers.
type roundedBox struct{}

func (roundedBox) Name() string { return "rounded-box" }
func (roundedBox) Draw(c *svg.SVG, b geometry.Box, p Palette) {
	c.Roundrect(px(b.X), px(b.Y), px(b.Width), px(b.Height), cornerRadius, cornerRadius, style(p))
}
func (roundedBox) TextTop(b geometry.Box) float64 { return b.Y + 28 }

// person is a circular head over a rounded body.
type person struct{}

func (person) Name() string { return "person" }

// parts returns the head radius and the body box.
func (person) parts(b geometry.Box) (r float64, body geometry.Box) {
	r = b.Width * 0.2
	top := b.Y + 2*r - r/3 // Body overlaps the bottom of the head.
	return r, geometry.Box{X: b.X, Y: top, Width: b.Width, Height: b.Bottom() - top}
}

func (s person) Draw(c *svg.SVG, b geometry.Box, p Palette) {
	r, body := s.parts(b)
	c.Roundrect(px(body.X), px(body.Y), px(body.Width), px(body.Height), cornerRadius*2, cornerRadius*2, style(p))
	c.Circle(px(b.Center().X), px(b.Y+r), px(r), style(p))
}
func (s person) TextTop(b geometry.Box) float64 {
	r, body := s.parts(b)
	return body.Y + r/2 + 16
}

// cylinder is the database shape: a body with an elliptical top cap.
type cylinder struct{}

func (cylinder) Name() string { return "cylinder" }
func (cylinder) capRadius(b geometry.Box) float64 { return b.Height * 0.1 }
func (s cylinder) Draw(c *svg.SVG, b geometry.Box, p Palette) {
	rx, ry := b.Width/2, s.capRadius(b)
	top, bottom := b.Y+ry, b.Bottom()-ry
	c.Path(fmt.Sprintf("M %d %d L %d %d A %d %d 0 0 0 %d %d L %d %d Z",
		px(b.X), px(top), px(b.X), px(bottom),
		px(rx), px(ry), px(b.Right()), px(bottom),
		px(b.Right()), px(top)), style(p))
	c.Ellipse(px(b.Center().X), px(top), px(rx), px(ry), style(p))
}
func (s cylinder) TextTop(b geometry.Box) float64 { return b.Y + 2*s.capRadius(b) + 20 }

// browser is the web application shape: a box with a browser chrome bar.
type browser struct{}

func (browser) Name() string { return "browser" }
func (browser) Draw(c *svg.SVG, b geometry.Box, p Palette) {
	c.Roundrect(px(b.X), px(b.Y), px(b.Width), px(b.Height), cornerRadius, cornerRadius, style(p))
	c.Rect(px(b.X)+strokeWidth/2, px(b.Y)+strokeWidth/2, px(b.Width)-strokeWidth, chromeHeight, "fill:"+p.Stroke)
	for i := 0; i < 3; i++ { // Window buttons.
		c.Circle(px(b.X)+14+12*i, px(b.Y)+chromeHeight/2, 4, "fill:"+p.Muted)
	}
	c.Roundrect(px(b.X)+52, px(b.Y)+6, px(b.Width)-64, chromeHeight-12, 4, 4, "fill:"+p.Muted+";fill-opacity:0.6")
}
func (browser) TextTop(b geometry.Box) float64 { return b.Y + chromeHeight + 24 }

// component is a box with two tabs protruding from the left edge (UML component notation).
type component struct{}

func (component) Name() string { return "component" }
func (component) Draw(c *svg.SVG, b geometry.Box, p Palette) {
	off := tabWidth / 2
	c.Roundrect(px(b.X)+off, px(b.Y), px(b.Width)-off, px(b.Height), cornerRadius, cornerRadius, style(p))
	for _, y := range []int{px(b.Y) + 24, px(b.Y) + 24 + 2*tabHeight} {
		c.Rect(px(b.X), y, tabWidth, tabHeight, style(p))
	}
}
func (component) TextTop(b geometry.Box) float64 { return b.Y + 28 }
