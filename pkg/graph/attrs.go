// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package graph

import (
	"slices"

	"gonum.org/v1/gonum/graph/encoding"
)

// Attributes for nodes and lines rendered by Graphviz.
type Attrs map[string]string

var (
	_ encoding.Attributer = Attrs{}
	_ encoding.Attributer = &Node{}
	_ encoding.Attributer = &Line{}
)

// Attributes sorted by key so DOT output is stable.
func (a Attrs) Attributes() (enc []encoding.Attribute) {
	for k, v := range a {
		enc = append(enc, encoding.Attribute{Key: k, Value: v})
	}
	slices.SortFunc(enc, func(x, y encoding.Attribute) int {
		if x.Key < y.Key {
			return -1
		} else if x.Key > y.Key {
			return 1
		}
		return 0
	})
	return enc
}
