// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package canvas holds the interactive state of a diagram canvas for one project.
//
// A [Canvas] loads views from a [backend.ModelService], lays them out with a [layout.Engine],
// applies drag events and writes node positions back to the backend.
//
// # States
//
// A canvas starts Idle, is Loading while a view is fetched or re-laid out, and Ready when it
// shows a view. A failed fetch returns to the previous state.
//
// # Concurrency
//
// All methods are safe for concurrent use. No lock is held during backend calls.
// Each view fetch and relayout takes a request token, a response is applied only if no
// newer request was made meanwhile, otherwise it is discarded.
//
// Position writes after a drag are debounced per node: a burst of drops on the same node
// results in one write with the last position.
package canvas

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/metrics"
	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/debounce"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"golang.org/x/sync/errgroup"
	"k8s.io/utils/clock"
)

var log = logging.Log()

// Status of the canvas.
type Status string

const (
	Idle    Status = "idle"
	Loading Status = "loading"
	Ready   Status = "ready"
)

// EmptyState explains why there is nothing to show.
type EmptyState string

const (
	ModelNotFound EmptyState = "model-not-found"
	NoViews       EmptyState = "no-views"
)

// ViewQuery is the Location query parameter holding the active view ID.
const ViewQuery = "view"

// Defaults for Options.
const (
	DefaultDebounce           = 600 * time.Millisecond
	DefaultPersistConcurrency = 8
)

var (
	ErrNoView       = errors.New("no view is selected")
	ErrNodeNotFound = errors.New("node not found")
	ErrClosed       = errors.New("canvas is closed")
)

// Options to create a canvas.
type Options struct {
	ProjectID      string
	OrganizationID string
	UserID         string

	Model   *model.Info         // Model of the project, nil if the project has none.
	Views   []model.ViewSummary // Views of the project.
	APIKeys []model.APIKey      // APIKeys visible to the user.

	Models   backend.ModelService // Required.
	Engine   *layout.Engine       // Default: dagre layout.
	Notifier Notifier             // Default: notices are only logged.
	Location Location             // Default: location is not recorded.

	Clock              clock.WithDelayedExecution // Default: real clock.
	Debounce           time.Duration              // Default: DefaultDebounce.
	PersistConcurrency int                        // Maximum concurrent writes on relayout. Default: DefaultPersistConcurrency.
	Metrics            *metrics.Metrics           // Default: unregistered metrics.
}

// Snapshot is a copy of the canvas state.
type Snapshot struct {
	ProjectID  string              `json:"projectId"`
	Status     Status              `json:"status"`
	EmptyState EmptyState          `json:"emptyState,omitempty"`
	Model      *model.Info         `json:"model,omitempty"`
	Views      []model.ViewSummary `json:"views"`
	View       *model.ViewSummary  `json:"view,omitempty"` // Active view.
	Nodes      []layout.Node       `json:"nodes"`          // Group wrapper first, if there are internal nodes.
	Edges      []layout.Edge       `json:"edges"`
	Selected   string              `json:"selected,omitempty"`
	Auto       bool                `json:"auto"` // Auto is true if the active view was laid out automatically.
	APIKeys    []model.APIKey      `json:"apiKeys,omitempty"`
}

// Canvas is the state of the diagram canvas of one project.
type Canvas struct {
	opts     Options
	debounce *debounce.Keyed[nodeKey]

	m        sync.Mutex
	status   Status
	views    []model.ViewSummary
	view     *model.View   // Active view.
	nodes    []layout.Node // Without group wrapper.
	edges    []layout.Edge
	auto     bool
	selected string
	token    uint64 // Incremented by every fetch or relayout.
	closed   bool
}

// nodeKey identifies a node for debouncing.
type nodeKey struct{ view, node string }

// New canvas in the Idle state.
func New(opts Options) (*Canvas, error) {
	if opts.Models == nil {
		return nil, errors.New("canvas: model service is required")
	}
	if opts.Engine == nil {
		opts.Engine = layout.New(layout.NewDagre())
	}
	if opts.Notifier == nil {
		opts.Notifier = logNotifier{}
	}
	if opts.Location == nil {
		opts.Location = &Query{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.PersistConcurrency <= 0 {
		opts.PersistConcurrency = DefaultPersistConcurrency
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	c := &Canvas{
		opts:     opts,
		debounce: debounce.New[nodeKey](opts.Clock, opts.Debounce),
		status:   Idle,
		views:    slices.Clone(opts.Views),
	}
	return c, nil
}

// Open selects viewID, or the first view if viewID is empty.
// Does nothing if there is no model or no view.
func (c *Canvas) Open(ctx context.Context, viewID string) error {
	c.m.Lock()
	if viewID == "" && c.opts.Model != nil && len(c.views) > 0 {
		viewID = c.views[0].ID
	}
	c.m.Unlock()
	if viewID == "" {
		return nil
	}
	return c.SelectView(ctx, viewID)
}

// SelectView fetches and lays out a view, replacing the nodes and edges on the canvas.
//
// Stored positions are used if every node has one, otherwise the view is laid out automatically.
// On failure the user is notified, the previous state is kept and the error is returned.
// If a newer SelectView or RelayoutAll starts before this one completes, the result is discarded.
func (c *Canvas) SelectView(ctx context.Context, viewID string) error {
	token, restore, err := c.begin()
	if err != nil {
		return err
	}
	log := log.WithValues("project", c.opts.ProjectID, "view", viewID)
	log.V(2).Info("Select view")

	v, err := c.opts.Models.GetView(ctx, c.opts.ProjectID, viewID)
	c.opts.Metrics.ViewFetches.WithLabelValues(metrics.Result(err)).Inc()
	var r *layout.Result
	if err == nil {
		r, err = c.opts.Engine.LayoutView(v, layout.Options{})
	}

	c.m.Lock()
	if token != c.token {
		c.m.Unlock()
		c.opts.Metrics.StaleResponses.Inc()
		log.V(2).Info("Discarded stale view response")
		return nil
	}
	if err != nil {
		c.status = restore
		c.m.Unlock()
		c.notify(Error, fmt.Sprintf("Failed to load view %q: %v", viewID, err))
		return err
	}
	c.apply(v, r)
	c.selected = ""
	// Under the lock, so the query always names the view that won.
	c.opts.Location.SetQuery(ViewQuery, viewID)
	c.m.Unlock()

	c.opts.Metrics.Layouts.WithLabelValues(mode(r.Auto)).Inc()
	log.V(2).Info("View ready", "nodes", len(r.Nodes), "edges", len(r.Edges), "auto", r.Auto)
	return nil
}

// begin a request: take a token, move to Loading, return the status to restore on failure.
func (c *Canvas) begin() (token uint64, restore Status, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	if c.closed {
		return 0, "", ErrClosed
	}
	c.token++
	restore = Idle
	if c.view != nil {
		restore = Ready
	}
	c.status = Loading
	return c.token, restore, nil
}

// apply a layout result for v, caller must hold the lock.
func (c *Canvas) apply(v *model.View, r *layout.Result) {
	c.view = v
	c.nodes = r.Nodes
	c.edges = r.Edges
	c.auto = r.Auto
	c.status = Ready
}

// RelayoutAll lays out the active view automatically, ignoring stored positions,
// then writes the new position of every internal node to the backend.
// Writes run concurrently, write failures are logged and do not fail the relayout.
func (c *Canvas) RelayoutAll(ctx context.Context) error {
	c.m.Lock()
	v := c.view
	c.m.Unlock()
	if v == nil {
		return ErrNoView
	}
	token, restore, err := c.begin()
	if err != nil {
		return err
	}
	log := log.WithValues("project", c.opts.ProjectID, "view", v.ID)
	log.V(2).Info("Relayout")

	r, err := c.opts.Engine.LayoutView(v, layout.Options{Force: true})

	c.m.Lock()
	if token != c.token {
		c.m.Unlock()
		c.opts.Metrics.StaleResponses.Inc()
		log.V(2).Info("Discarded stale relayout")
		return nil
	}
	if err != nil {
		c.status = restore
		c.m.Unlock()
		c.notify(Error, fmt.Sprintf("Failed to lay out view %q: %v", v.ID, err))
		return err
	}
	c.apply(v, r)
	type write struct {
		node string
		p    model.Point
	}
	var writes []write
	for _, n := range r.Nodes {
		if !n.External {
			writes = append(writes, write{node: n.ID, p: round(n.Position)})
		}
	}
	c.m.Unlock()
	c.opts.Metrics.Layouts.WithLabelValues(metrics.ModeAuto).Inc()

	// Newer positions replace pending drag writes.
	for _, w := range writes {
		c.debounce.Cancel(nodeKey{view: v.ID, node: w.node})
	}
	ctx = context.WithoutCancel(ctx)
	g := errgroup.Group{}
	g.SetLimit(c.opts.PersistConcurrency)
	for _, w := range writes {
		g.Go(func() error {
			c.write(ctx, metrics.TriggerRelayout, v.ID, w.node, w.p)
			return nil // Best effort, failures are logged by write.
		})
	}
	_ = g.Wait()
	return nil
}

// DragMove moves a node while it is being dragged and returns the new group wrapper.
// There are no backend calls and no layout. ok is false if there are no internal nodes.
func (c *Canvas) DragMove(nodeID string, p model.Point) (wrapper layout.Node, ok bool, err error) {
	c.m.Lock()
	defer c.m.Unlock()
	if err := c.move(nodeID, p); err != nil {
		return layout.Node{}, false, err
	}
	wrapper, ok = layout.GroupWrapper(c.nodes, c.opts.Engine.GroupMargin)
	return wrapper, ok, nil
}

// DragEnd moves a node to its final position and schedules a debounced write of the
// rounded position. A later DragEnd for the same node within the debounce period replaces
// the pending write. Write failures are logged, the canvas keeps the new position.
//
// The write uses the values of ctx, but not its cancellation or deadline.
func (c *Canvas) DragEnd(ctx context.Context, nodeID string, p model.Point) error {
	c.m.Lock()
	if err := c.move(nodeID, p); err != nil {
		c.m.Unlock()
		return err
	}
	viewID := c.view.ID
	c.m.Unlock()

	ctx = context.WithoutCancel(ctx)
	p = round(p)
	c.debounce.Schedule(nodeKey{view: viewID, node: nodeID}, func() {
		c.write(ctx, metrics.TriggerDrag, viewID, nodeID, p)
	})
	return nil
}

// move a node, caller must hold the lock.
func (c *Canvas) move(nodeID string, p model.Point) error {
	if c.closed {
		return ErrClosed
	}
	if c.view == nil {
		return ErrNoView
	}
	i := slices.IndexFunc(c.nodes, func(n layout.Node) bool { return n.ID == nodeID })
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, nodeID)
	}
	c.nodes[i].Position = p
	return nil
}

// write a node position to the backend, failures are only logged.
func (c *Canvas) write(ctx context.Context, trigger, viewID, nodeID string, p model.Point) {
	_, err := c.opts.Models.UpdateNodePosition(ctx, c.opts.ProjectID, viewID, nodeID, p)
	c.opts.Metrics.PositionWrites.WithLabelValues(trigger, metrics.Result(err)).Inc()
	if err != nil {
		log.Error(err, "Failed to save node position", "project", c.opts.ProjectID, "view", viewID, "node", nodeID)
	} else {
		log.V(3).Info("Saved node position", "view", viewID, "node", nodeID, "position", p)
	}
}

// Select a node, or clear the selection if nodeID is empty.
func (c *Canvas) Select(nodeID string) error {
	c.m.Lock()
	defer c.m.Unlock()
	if nodeID != "" && !slices.ContainsFunc(c.nodes, func(n layout.Node) bool { return n.ID == nodeID }) {
		return fmt.Errorf("%w: %q", ErrNodeNotFound, nodeID)
	}
	c.selected = nodeID
	return nil
}

// RefreshViews re-fetches the view list of the project.
// On failure the user is notified and the previous list is kept.
func (c *Canvas) RefreshViews(ctx context.Context) error {
	views, err := c.opts.Models.GetViewSummaries(ctx, c.opts.ProjectID)
	if err != nil {
		c.notify(Error, fmt.Sprintf("Failed to load views: %v", err))
		return err
	}
	c.m.Lock()
	c.views = views
	c.m.Unlock()
	return nil
}

// Snapshot returns a copy of the current state.
func (c *Canvas) Snapshot() Snapshot {
	c.m.Lock()
	defer c.m.Unlock()
	s := Snapshot{
		ProjectID:  c.opts.ProjectID,
		Status:     c.status,
		EmptyState: c.emptyState(),
		Model:      c.opts.Model,
		Views:      slices.Clone(c.views),
		Nodes:      layout.WithGroupWrapper(c.nodes, c.opts.Engine.GroupMargin),
		Edges:      slices.Clone(c.edges),
		Selected:   c.selected,
		Auto:       c.auto,
		APIKeys:    slices.Clone(c.opts.APIKeys),
	}
	if s.Views == nil {
		s.Views = []model.ViewSummary{}
	}
	if s.Edges == nil {
		s.Edges = []layout.Edge{}
	}
	if c.view != nil {
		summary := c.view.Summary()
		s.View = &summary
	}
	return s
}

func (c *Canvas) emptyState() EmptyState {
	switch {
	case c.opts.Model == nil:
		return ModelNotFound
	case len(c.views) == 0:
		return NoViews
	default:
		return ""
	}
}

// ProjectID of the canvas.
func (c *Canvas) ProjectID() string { return c.opts.ProjectID }

// PendingWrites is the number of nodes with a debounced write pending.
func (c *Canvas) PendingWrites() int { return c.debounce.Pending() }

// Close the canvas, pending debounced writes are cancelled.
func (c *Canvas) Close() {
	c.m.Lock()
	c.closed = true
	c.m.Unlock()
	c.debounce.Stop()
}

func (c *Canvas) notify(level Level, msg string) {
	c.opts.Notifier.Notify(Notice{Level: level, Message: msg, Time: c.opts.Clock.Now()})
}

type logNotifier struct{}

func (logNotifier) Notify(n Notice) { log.Info("Notice", "level", n.Level, "message", n.Message) }

func mode(auto bool) string {
	if auto {
		return metrics.ModeAuto
	}
	return metrics.ModeStored
}

func round(p model.Point) model.Point {
	return model.Point{X: math.Round(p.X), Y: math.Round(p.Y)}
}
