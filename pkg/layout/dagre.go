// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package layout

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"

	"github.com/archcanvas/archcanvas/pkg/graph"
	"github.com/archcanvas/archcanvas/pkg/model"

	"oss.terrastruct.com/d2/d2graph"
	"oss.terrastruct.com/d2/d2layouts/d2dagrelayout"
	"oss.terrastruct.com/d2/d2lib"
	"oss.terrastruct.com/d2/d2renderers/d2svg"
	"oss.terrastruct.com/d2/lib/textmeasure"
)

// Default spacing for [Dagre], in pixels.
const (
	DefaultNodeSep = 80
	DefaultEdgeSep = 40
	DefaultMargin  = 40
)

const dagreEngine = "dagre"

// Dagre is a top-down hierarchical layouter using the dagre layout engine of D2.
//
// Multi-rank edges get dummy nodes and edge labels reserve space, so long edges
// are kept clear of the nodes they skip over.
// The drawing is shifted so its top-left corner is at (Margin, Margin).
type Dagre struct {
	NodeSep float64 // NodeSep is the gap between nodes in a rank.
	EdgeSep float64 // EdgeSep is the gap between edges in a rank.
	Margin  float64 // Margin around the whole drawing.

	mu    sync.Mutex // Serializes use of the ruler.
	ruler *textmeasure.Ruler
}

// NewDagre returns a dagre layouter with default spacing.
func NewDagre() *Dagre {
	return &Dagre{NodeSep: DefaultNodeSep, EdgeSep: DefaultEdgeSep, Margin: DefaultMargin}
}

var _ Layouter = &Dagre{}

// Layout returns node centers.
func (d *Dagre) Layout(g *graph.Graph) (map[string]model.Point, error) {
	nodes := g.NodeList()
	centers := make(map[string]model.Point, len(nodes))
	if len(nodes) == 0 {
		return centers, nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.ruler == nil {
		ruler, err := textmeasure.NewRuler()
		if err != nil {
			return nil, fmt.Errorf("dagre layout: %w", err)
		}
		d.ruler = ruler
	}
	opts := &d2dagrelayout.ConfigurableOpts{NodeSep: int(math.Round(d.NodeSep)), EdgeSep: int(math.Round(d.EdgeSep))}
	engine := dagreEngine
	diagram, _, err := d2lib.Compile(context.Background(), Script(g), &d2lib.CompileOptions{
		Ruler:  d.ruler,
		Layout: &engine,
		LayoutResolver: func(string) (d2graph.LayoutGraph, error) {
			return func(ctx context.Context, g *d2graph.Graph) error { return d2dagrelayout.Layout(ctx, g, opts) }, nil
		},
	}, &d2svg.RenderOpts{})
	if err != nil {
		return nil, fmt.Errorf("dagre layout: %w", err)
	}
	boxes := make(map[string]model.Point, len(diagram.Shapes))
	minX, minY := math.Inf(1), math.Inf(1)
	for _, s := range diagram.Shapes {
		p := model.Point{X: float64(s.Pos.X), Y: float64(s.Pos.Y)}
		boxes[s.ID] = p
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
	}
	for _, n := range nodes {
		p, ok := boxes[key(n)]
		if !ok {
			return nil, fmt.Errorf("dagre layout: node not placed: %v", n.Node.ID)
		}
		centers[n.Node.ID] = model.Point{
			X: p.X - minX + d.Margin + n.Width/2,
			Y: p.Y - minY + d.Margin + n.Height/2,
		}
	}
	return centers, nil
}

// Script returns g as a D2 script with fixed size, unlabeled shapes and labeled connections.
// Shapes are keyed by graph node ID so model IDs never need quoting.
func Script(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("direction: down\n")
	g.EachNode(func(n *graph.Node) {
		fmt.Fprintf(&b, "%v: {\n  label: \"\"\n  width: %v\n  height: %v\n}\n",
			key(n), int(math.Ceil(n.Width)), int(math.Ceil(n.Height)))
	})
	var lines []*graph.Line
	g.EachLine(func(l *graph.Line) { lines = append(lines, l) })
	slices.SortFunc(lines, func(a, b *graph.Line) int { return cmp.Compare(a.ID(), b.ID()) })
	for _, l := range lines {
		fmt.Fprintf(&b, "%v -> %v", key(l.Start()), key(l.Goal()))
		if label := l.Relation.Description; label != "" {
			fmt.Fprintf(&b, ": %v", quote(label))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func key(n *graph.Node) string { return fmt.Sprintf("n%d", n.ID()) }

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", " ", "\r", " ")

func quote(s string) string { return `"` + quoter.Replace(s) + `"` }
