// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package shape

import (
	"fmt"
	"strings"
	"unicode/utf8"

	svg "github.com/ajstarks/svgo"
	"github.com/archcanvas/archcanvas/pkg/geometry"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/mitchellh/go-wordwrap"
)

const (
	// DescriptionColumns is the wrap width of descriptions, in characters.
	DescriptionColumns = 30
	// DescriptionLines is the maximum number of description lines shown.
	DescriptionLines = 2
	ellipsis         = "…"
)

// TextBlock is the text drawn inside every shape.
type TextBlock struct {
	Name        string   `json:"name"`
	Annotation  string   `json:"annotation"`            // Annotation is the bracketed type and technology.
	Description []string `json:"description,omitempty"` // Description lines, clamped.
}

// TextBlockFor computes the text block of a node.
func TextBlockFor(n *model.Node) TextBlock {
	return TextBlock{
		Name:        n.Name,
		Annotation:  Annotation(n),
		Description: Clamp(n.Description, DescriptionColumns, DescriptionLines),
	}
}

// Annotation is "[Type]" or "[Type: Technology]".
// Person and system types never show a technology.
func Annotation(n *model.Node) string {
	if n.Type.ShowsTechnology() && n.Technology != "" {
		return fmt.Sprintf("[%s: %s]", n.Type.Title(), n.Technology)
	}
	return fmt.Sprintf("[%s]", n.Type.Title())
}

// Clamp wraps s at columns and keeps at most maxLines lines.
// A clamped result ends with an ellipsis.
func Clamp(s string, columns, maxLines int) []string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return nil
	}
	var lines []string
	for _, line := range strings.Split(wordwrap.WrapString(s, uint(columns)), "\n") {
		// wordwrap never breaks words, hard-break anything still too long.
		for utf8.RuneCountInString(line) > columns {
			r := []rune(line)
			lines = append(lines, string(r[:columns]))
			line = string(r[columns:])
		}
		lines = append(lines, line)
	}
	if len(lines) <= maxLines {
		return lines
	}
	lines = lines[:maxLines]
	last := []rune(lines[maxLines-1])
	if len(last) >= columns {
		last = last[:columns-1]
	}
	lines[maxLines-1] = strings.TrimRight(string(last), " ") + ellipsis
	return lines
}

const (
	nameSize       = 14
	annotationSize = 11
	lineGap        = 4
)

func drawText(c *svg.SVG, t TextBlock, b geometry.Box, top float64, p Palette) {
	x := px(b.Center().X)
	y := px(top)
	c.Text(x, y, t.Name, fmt.Sprintf("font-family:Helvetica,sans-serif;font-size:%dpx;font-weight:bold;text-anchor:middle;fill:%s", nameSize, p.Text))
	y += annotationSize + lineGap + 2
	muted := fmt.Sprintf("font-family:Helvetica,sans-serif;font-size:%dpx;text-anchor:middle;fill:%s", annotationSize, p.Muted)
	c.Text(x, y, t.Annotation, muted)
	y += lineGap
	for _, line := range t.Description {
		y += annotationSize + lineGap
		c.Text(x, y, line, muted)
	}
}
