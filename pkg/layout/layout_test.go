// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package layout

import (
	"errors"
	"fmt"
	"math/rand"
	"testing"

	"github.com/archcanvas/archcanvas/pkg/graph"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/archcanvas/archcanvas/pkg/shape"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingLayouter records calls and delegates to a real layouter.
type countingLayouter struct {
	Layouter
	calls int
	nodes []string
}

func (c *countingLayouter) Layout(g *graph.Graph) (map[string]model.Point, error) {
	c.calls++
	c.nodes = nil
	g.EachNode(func(n *graph.Node) { c.nodes = append(c.nodes, n.Node.ID) })
	return c.Layouter.Layout(g)
}

type failingLayouter struct{}

func (failingLayouter) Layout(*graph.Graph) (map[string]model.Point, error) {
	return nil, errors.New("boom")
}

func at(x, y float64) *model.Point { return &model.Point{X: x, Y: y} }

func TestLayout_StoredPositions(t *testing.T) {
	cl := &countingLayouter{Layouter: NewDagre()}
	e := New(cl)
	internal := []model.Node{
		{ID: "a", Type: model.Person, Position: at(10, 20)},
		{ID: "b", Type: model.Container, Position: at(300, 400)},
	}
	external := []model.Node{{ID: "x", Type: model.ExternalSystem, Position: at(-50, 7)}}
	r, err := e.Layout(internal, external, nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, 0, cl.calls)
	assert.False(t, r.Auto)
	require.Len(t, r.Nodes, 3)
	for i, want := range []model.Point{{X: 10, Y: 20}, {X: 300, Y: 400}, {X: -50, Y: 7}} {
		assert.Equal(t, want, r.Nodes[i].Position)
	}
	assert.False(t, r.Nodes[0].External)
	assert.True(t, r.Nodes[2].External)
	assert.Equal(t, shape.Size(model.Person).Width, r.Nodes[0].Width)
	assert.Equal(t, "PERSON", r.Nodes[0].Type)
}

func TestLayout_MissingPosition(t *testing.T) {
	for name, missing := range map[string]*model.Point{"nil": nil, "zero": at(0, 0)} {
		t.Run(name, func(t *testing.T) {
			cl := &countingLayouter{Layouter: NewDagre()}
			internal := []model.Node{
				{ID: "a", Type: model.Person, Position: at(10, 20)},
				{ID: "b", Type: model.Container, Position: missing},
			}
			r, err := New(cl).Layout(internal, []model.Node{{ID: "x", Type: model.ExternalSystem, Position: at(5, 5)}}, nil, Options{})
			require.NoError(t, err)
			assert.Equal(t, 1, cl.calls)
			assert.Equal(t, []string{"a", "b", "x"}, cl.nodes, "every node is laid out")
			assert.True(t, r.Auto)
			assert.NotEqual(t, model.Point{X: 10, Y: 20}, r.Nodes[0].Position)
		})
	}
}

func TestLayout_Force(t *testing.T) {
	cl := &countingLayouter{Layouter: NewDagre()}
	_, err := New(cl).Layout([]model.Node{{ID: "a", Type: model.Person, Position: at(10, 20)}}, nil, nil, Options{Force: true})
	require.NoError(t, err)
	assert.Equal(t, 1, cl.calls)
}

func TestLayout_Empty(t *testing.T) {
	cl := &countingLayouter{Layouter: NewDagre()}
	r, err := New(cl).Layout(nil, nil, nil, Options{})
	require.NoError(t, err)
	assert.Empty(t, r.Nodes)
	assert.Empty(t, r.Edges)
	assert.Equal(t, 0, cl.calls)
}

func TestLayout_Error(t *testing.T) {
	_, err := New(failingLayouter{}).Layout([]model.Node{{ID: "a", Type: model.Person}}, nil, nil, Options{})
	assert.ErrorContains(t, err, "boom")
}

func TestLayout_PersonUsesSystem(t *testing.T) {
	v := &model.View{
		ID:   "v",
		Type: model.ContextView,
		Nodes: []model.Node{
			{ID: "u1", Type: model.Person, Position: at(0, 0)},
			{ID: "s1", Type: model.SoftwareSystem, Position: at(0, 0)},
		},
		Relations: []model.Relation{{SourceID: "u1", TargetID: "s1", Description: "Uses"}},
	}
	r, err := New(NewDagre()).LayoutView(v, Options{})
	require.NoError(t, err)
	require.Len(t, r.Nodes, 2)
	for _, n := range r.Nodes {
		assert.False(t, n.Position.IsZero(), "%v at origin", n.ID)
	}
	u1, s1 := r.Nodes[0], r.Nodes[1]
	assert.Less(t, u1.Box().Bottom(), s1.Position.Y, "top-down: user above system")
	require.Len(t, r.Edges, 1)
	assert.Equal(t, Edge{
		ID:              "edge-u1-s1-0",
		Source:          "u1",
		Target:          "s1",
		Label:           "Uses",
		Type:            EdgeType,
		Marker:          ArrowMarker,
		LabelBackground: true,
	}, r.Edges[0])
}

func TestEdges_ParallelAndDangling(t *testing.T) {
	edges := Edges([]model.Relation{
		{SourceID: "a", TargetID: "b", Description: "reads"},
		{SourceID: "a", TargetID: "b", Description: "writes"},
		{SourceID: "a", TargetID: "gone"},
	})
	require.Len(t, edges, 3)
	assert.Equal(t, "edge-a-b-0", edges[0].ID)
	assert.Equal(t, "edge-a-b-1", edges[1].ID)
	assert.Equal(t, "edge-a-gone-2", edges[2].ID)
}

func TestDagre_NoOverlap(t *testing.T) {
	var nodes []model.Node
	var rels []model.Relation
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		nodes = append(nodes, model.Node{ID: id, Type: model.Container})
	}
	for _, p := range [][2]string{{"a", "b"}, {"a", "c"}, {"b", "d"}, {"c", "d"}, {"d", "a"}, {"e", "f"}, {"a", "b"}} {
		rels = append(rels, model.Relation{SourceID: p[0], TargetID: p[1]})
	}
	r, err := New(NewDagre()).Layout(nodes, nil, rels, Options{})
	require.NoError(t, err)
	for i := range r.Nodes {
		for j := i + 1; j < len(r.Nodes); j++ {
			a, b := r.Nodes[i].Box(), r.Nodes[j].Box()
			overlap := a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
			assert.False(t, overlap, "%v overlaps %v", r.Nodes[i].ID, r.Nodes[j].ID)
		}
		assert.GreaterOrEqual(t, r.Nodes[i].Position.X, float64(DefaultMargin))
		assert.GreaterOrEqual(t, r.Nodes[i].Position.Y, float64(DefaultMargin))
	}
	// Deterministic.
	r2, err := New(NewDagre()).Layout(nodes, nil, rels, Options{})
	require.NoError(t, err)
	assert.Equal(t, r, r2)
}

func TestGroupWrapper(t *testing.T) {
	_, ok := GroupWrapper(nil, 10)
	assert.False(t, ok)
	_, ok = GroupWrapper([]Node{{ID: "x", External: true, Width: 10, Height: 10}}, 10)
	assert.False(t, ok, "external nodes only")

	nodes := []Node{
		{ID: "a", Position: model.Point{X: 0, Y: 0}, Width: 100, Height: 50},
		{ID: "b", Position: model.Point{X: 200, Y: 100}, Width: 100, Height: 50},
		{ID: "x", Position: model.Point{X: 1000, Y: 1000}, Width: 100, Height: 50, External: true},
	}
	w, ok := GroupWrapper(nodes, 10)
	require.True(t, ok)
	assert.Equal(t, Node{ID: GroupWrapperID, Type: GroupKind, Position: model.Point{X: -10, Y: -10}, Width: 320, Height: 170, ZIndex: -1}, w)
	assert.False(t, w.Draggable || w.Selectable)
}

func TestDagre_LongEdge(t *testing.T) {
	nodes := []model.Node{{ID: "a", Type: model.Container}, {ID: "b", Type: model.Container}, {ID: "c", Type: model.Database}}
	rels := []model.Relation{
		{SourceID: "a", TargetID: "b", Description: "Calls"},
		{SourceID: "b", TargetID: "c", Description: "Writes"},
		{SourceID: "a", TargetID: "c", Description: "Reads"},
	}
	r, err := New(NewDagre()).Layout(nodes, nil, rels, Options{})
	require.NoError(t, err)
	require.True(t, r.Auto)
	a, b, c := r.Nodes[0].Box(), r.Nodes[1].Box(), r.Nodes[2].Box()
	assert.Less(t, a.Bottom(), b.Y, "a above b")
	assert.Less(t, b.Bottom(), c.Y, "b above c")
	// The a->c edge takes a dummy node in b's rank, so b is not in line with both ends.
	ca, cb, cc := a.Center(), b.Center(), c.Center()
	assert.False(t, ca.X == cb.X && cb.X == cc.X, "a, b, c in one column: %v %v %v", ca, cb, cc)
}

func TestScript(t *testing.T) {
	g := Graph("v",
		[]model.Node{{ID: "a", Type: model.Person}, {ID: "b", Type: model.Container}},
		[]model.Node{{ID: "x", Type: model.ExternalSystem}},
		[]model.Relation{
			{SourceID: "a", TargetID: "b", Description: `say "hi"` + "\nnow"},
			{SourceID: "b", TargetID: "x"},
			{SourceID: "b", TargetID: "gone"},
		})
	s := Script(g)
	size := shape.Size(model.Person)
	assert.Contains(t, s, "direction: down\n")
	assert.Contains(t, s, fmt.Sprintf("n0: {\n  label: \"\"\n  width: %v\n  height: %v\n}\n", size.Width, size.Height))
	assert.Contains(t, s, "n2: {")
	assert.Contains(t, s, `n0 -> n1: "say \"hi\" now"`+"\n")
	assert.Contains(t, s, "n1 -> n2\n")
	assert.NotContains(t, s, "gone")
}

// The wrapper contains every internal node after any sequence of moves.
func TestGroupWrapper_Containment(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	nodes := []Node{
		{ID: "a", Width: 160, Height: 180},
		{ID: "b", Width: 240, Height: 140},
		{ID: "c", Width: 220, Height: 150},
		{ID: "x", Width: 240, Height: 140, External: true},
	}
	for step := 0; step < 500; step++ {
		i := r.Intn(len(nodes))
		nodes[i].Position = model.Point{X: r.Float64()*4000 - 2000, Y: r.Float64()*4000 - 2000}
		nodes = WithGroupWrapper(nodes, DefaultGroupMargin)
		require.True(t, nodes[0].IsGroup())
		wrapper := nodes[0].Box()
		for _, n := range nodes[1:] {
			require.False(t, n.IsGroup())
			if !n.External {
				require.True(t, wrapper.Contains(n.Box()), "step %v: %+v outside %+v", step, n.Box(), wrapper)
			}
		}
		nodes = nodes[1:]
	}
}
