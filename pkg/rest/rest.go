// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// Package rest implements the REST API of the archcanvas server.
//
// Each user has one canvas session per project. Canvas endpoints correspond to the
// interactive canvas events: select a view, move and drop nodes, select a node, relayout.
// The user is identified by the [UserHeader] header, authentication is done elsewhere.
// An Authorization header is forwarded to the backend.
package rest

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/internal/pkg/metrics"
	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/backend/auth"
	"github.com/archcanvas/archcanvas/pkg/canvas"
	"github.com/archcanvas/archcanvas/pkg/config"
	"github.com/archcanvas/archcanvas/pkg/graph"
	"github.com/archcanvas/archcanvas/pkg/keys"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/archcanvas/archcanvas/pkg/render"
	"github.com/archcanvas/archcanvas/pkg/shape"
	"github.com/gin-gonic/gin"
	"k8s.io/utils/clock"
)

var log = logging.Log()

// BasePath is the versioned base path of the REST API.
const BasePath = "/api/v1"

// UserHeader identifies the user making a request.
const UserHeader = "X-User-Id"

type API struct {
	Backend backend.Backend
	Config  *config.Config
	Keys    *keys.Panel
	Metrics *metrics.Metrics

	sessions *sessions
}

// Options for New, zero values use defaults.
type Options struct {
	Config  *config.Config
	Metrics *metrics.Metrics
	Clock   clock.WithDelayedExecution
}

// New API instance, registers handlers with a gin Engine.
func New(b backend.Backend, opts Options, r *gin.Engine) (*API, error) {
	if b == nil {
		return nil, errors.New("rest: backend is required")
	}
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Metrics == nil {
		opts.Metrics = metrics.New(nil)
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	a := &API{
		Backend: b,
		Config:  opts.Config,
		Keys:    &keys.Panel{Keys: b, Members: b},
		Metrics: opts.Metrics,
	}
	a.sessions = newSessions(b, a.Keys, func() canvas.Options {
		return canvas.Options{
			Engine:             a.Config.Engine(),
			Clock:              opts.Clock,
			Debounce:           a.Config.DebounceOrDefault(),
			PersistConcurrency: a.Config.Canvas.PersistConcurrency,
			Metrics:            a.Metrics,
		}
	})
	r.Use(a.logger)
	v := r.Group(BasePath)
	v.GET("/projects/:project/views", a.Views)
	p := v.Group("/projects/:project/canvas")
	p.GET("", a.GetCanvas)
	p.POST("/view", a.SelectView)
	p.POST("/relayout", a.Relayout)
	p.POST("/select", a.Select)
	p.POST("/nodes/:node/move", a.Move)
	p.POST("/nodes/:node/drop", a.Drop)
	p.GET("/svg", a.SVG)
	p.GET("/dot", a.DOT)
	k := v.Group("/organizations/:org/projects/:project/keys")
	k.GET("", a.ListKeys)
	k.GET("/members", a.KeyMembers)
	k.POST("", a.CreateKey)
	k.DELETE("/:key", a.RevokeKey)
	return a, nil
}

// Close all canvas sessions, pending position writes are cancelled.
func (a *API) Close() { a.sessions.close() }

// Views lists the views of a project.
func (a *API) Views(c *gin.Context) {
	views, err := a.Backend.GetViewSummaries(auth.Context(c.Request), c.Param("project"))
	if !checkErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, views)
}

// OrgQuery is the canvas query parameter naming the organization of the project.
// A new session loads the API keys visible to the user in that organization.
const OrgQuery = "org"

// session gets the canvas session for the request.
// A new session opens the view in the "view" query parameter, or the first view.
// An existing session switches to the "view" query parameter if it names a different view.
func (a *API) session(c *gin.Context) *session {
	ss, _ := a.sessionFor(c, c.Query(canvas.ViewQuery), false)
	return ss
}

// sessionFor gets the canvas session for the request and makes view active.
// An existing session fetches view again if reselect is true, even if it is already active.
// Failure to open the view is reported as a notice and returned, the session is still usable.
func (a *API) sessionFor(c *gin.Context, view string, reselect bool) (*session, error) {
	ctx := auth.Context(c.Request)
	o, created, err := a.sessions.get(ctx, sessionRequest{
		sessionKey: sessionKey{user: c.GetHeader(UserHeader), project: c.Param("project")},
		org:        c.Query(OrgQuery),
		view:       view,
	})
	if !checkErr(c, err) {
		return nil, err
	}
	if !created && view != "" && (reselect || !isActive(o.Snapshot(), view)) {
		o.err = o.SelectView(ctx, view)
	}
	return o.session, o.err
}

func isActive(s canvas.Snapshot, view string) bool { return s.View != nil && s.View.ID == view }

// GetCanvas returns the canvas state.
func (a *API) GetCanvas(c *gin.Context) {
	if ss := a.session(c); ss != nil {
		c.JSON(http.StatusOK, ss.response())
	}
}

// SelectView switches the canvas to a view.
func (a *API) SelectView(c *gin.Context) {
	var req SelectView
	if !check(c, http.StatusBadRequest, c.BindJSON(&req)) {
		return
	}
	ss, err := a.sessionFor(c, req.View, true)
	if ss == nil || !checkErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, ss.response())
}

// Relayout lays out the active view automatically and saves the new positions.
func (a *API) Relayout(c *gin.Context) {
	ss := a.session(c)
	if ss == nil || !checkErr(c, ss.RelayoutAll(auth.Context(c.Request))) {
		return
	}
	c.JSON(http.StatusOK, ss.response())
}

// Select a node.
func (a *API) Select(c *gin.Context) {
	var req Select
	if !check(c, http.StatusBadRequest, c.BindJSON(&req)) {
		return
	}
	ss := a.session(c)
	if ss == nil || !checkErr(c, ss.Select(req.Node)) {
		return
	}
	c.JSON(http.StatusOK, ss.response())
}

// Move a node during a drag, returns the group wrapper.
func (a *API) Move(c *gin.Context) {
	var req Position
	if !check(c, http.StatusBadRequest, c.BindJSON(&req)) {
		return
	}
	ss := a.session(c)
	if ss == nil {
		return
	}
	w, ok, err := ss.DragMove(c.Param("node"), model.Point{X: req.X, Y: req.Y})
	if !checkErr(c, err) {
		return
	}
	var resp Wrapper
	if ok {
		resp.Wrapper = &w
	}
	c.JSON(http.StatusOK, resp)
}

// Drop a node at the end of a drag, the position is saved after a delay.
func (a *API) Drop(c *gin.Context) {
	var req Position
	if !check(c, http.StatusBadRequest, c.BindJSON(&req)) {
		return
	}
	ss := a.session(c)
	if ss == nil {
		return
	}
	err := ss.DragEnd(auth.Context(c.Request), c.Param("node"), model.Point{X: req.X, Y: req.Y})
	if !checkErr(c, err) {
		return
	}
	c.Status(http.StatusAccepted)
}

// SVG renders the canvas.
func (a *API) SVG(c *gin.Context) {
	var opts SVGOptions
	if !check(c, http.StatusBadRequest, c.BindQuery(&opts)) {
		return
	}
	theme := a.Config.Theme()
	if opts.Theme != "" {
		var err error
		if theme, err = shape.ParseTheme(opts.Theme); !check(c, http.StatusBadRequest, err) {
			return
		}
	}
	ss := a.session(c)
	if ss == nil {
		return
	}
	s := ss.Snapshot()
	d := render.Diagram{Nodes: s.Nodes, Edges: s.Edges}
	if s.View != nil {
		d.Title = s.View.Name
	}
	var b bytes.Buffer
	if !check(c, http.StatusInternalServerError, render.SVG(&b, d, theme)) {
		return
	}
	c.Data(http.StatusOK, "image/svg+xml", b.Bytes())
}

// DOT exports the active view as a Graphviz graph.
func (a *API) DOT(c *gin.Context) {
	ss := a.session(c)
	if ss == nil {
		return
	}
	s := ss.Snapshot()
	if s.View == nil {
		check(c, http.StatusConflict, canvas.ErrNoView)
		return
	}
	b, err := Graph(s).DOT()
	if !check(c, http.StatusInternalServerError, err) {
		return
	}
	c.Data(http.StatusOK, "text/vnd.graphviz", b)
}

func (a *API) viewer(c *gin.Context) (keys.Viewer, bool) {
	v := keys.Viewer{OrganizationID: c.Param("org"), ProjectID: c.Param("project"), UserID: c.GetHeader(UserHeader)}
	if v.UserID == "" {
		check(c, http.StatusUnauthorized, fmt.Errorf("missing %v header", UserHeader))
		return v, false
	}
	return v, true
}

// ListKeys lists the API keys visible to the user.
func (a *API) ListKeys(c *gin.Context) {
	v, ok := a.viewer(c)
	if !ok {
		return
	}
	state, err := a.Keys.List(auth.Context(c.Request), v)
	if !checkErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, state)
}

// KeyMembers lists the members the user may create keys for.
func (a *API) KeyMembers(c *gin.Context) {
	v, ok := a.viewer(c)
	if !ok {
		return
	}
	members, err := a.Keys.AvailableMembers(auth.Context(c.Request), v)
	if !checkErr(c, err) {
		return
	}
	c.JSON(http.StatusOK, members)
}

// CreateKey creates an API key, the response contains the secret.
func (a *API) CreateKey(c *gin.Context) {
	var req CreateKey
	if !check(c, http.StatusBadRequest, c.BindJSON(&req)) {
		return
	}
	v, ok := a.viewer(c)
	if !ok {
		return
	}
	k, err := a.Keys.Create(auth.Context(c.Request), v, req.TargetMemberID)
	if !checkErr(c, err) {
		return
	}
	c.JSON(http.StatusCreated, k)
}

// RevokeKey revokes an API key.
func (a *API) RevokeKey(c *gin.Context) {
	v, ok := a.viewer(c)
	if !ok {
		return
	}
	if !checkErr(c, a.Keys.Revoke(auth.Context(c.Request), v, c.Param("key"))) {
		return
	}
	c.Status(http.StatusNoContent)
}

// Graph builds the layout graph of a canvas snapshot, using current node positions.
func Graph(s canvas.Snapshot) *graph.Graph {
	var internal, external []model.Node
	for _, n := range s.Nodes {
		if n.IsGroup() || n.Data == nil {
			continue
		}
		mn := *n.Data
		mn.Position = &n.Position
		if n.External {
			external = append(external, mn)
		} else {
			internal = append(internal, mn)
		}
	}
	relations := make([]model.Relation, 0, len(s.Edges))
	for _, e := range s.Edges {
		relations = append(relations, model.Relation{SourceID: e.Source, TargetID: e.Target, Description: e.Label, Technology: e.Technology})
	}
	name := "canvas"
	if s.View != nil {
		name = s.View.ID
	}
	return layout.Graph(name, internal, external, relations)
}

// errorCode maps an error to an HTTP status code.
func errorCode(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, backend.ErrNotFound), errors.Is(err, canvas.ErrNodeNotFound):
		return http.StatusNotFound
	case errors.Is(err, keys.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, canvas.ErrNoView):
		return http.StatusConflict
	case errors.Is(err, canvas.ErrClosed):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadGateway
	}
}

// checkErr is check with the status code for err.
func checkErr(c *gin.Context, err error) bool { return check(c, errorCode(err), err) }

func check(c *gin.Context, code int, err error, format ...any) (ok bool) {
	if err != nil && !c.IsAborted() {
		if len(format) > 0 {
			err = fmt.Errorf("%v: %w", fmt.Sprintf(format[0].(string), format[1:]...), err)
		}
		c.AbortWithStatusJSON(code, c.Error(err).JSON())
		log.V(1).Info("Abort request", "url", c.Request.URL, "code", code, "error", err.Error())
	}
	return err == nil && !c.IsAborted()
}

// logger is a Gin handler to log requests.
func (a *API) logger(c *gin.Context) {
	start := time.Now()
	defer func() {
		log := log.WithValues(
			"method", c.Request.Method,
			"url", c.Request.URL,
			"from", c.Request.RemoteAddr,
			"status", c.Writer.Status(),
			"latency", time.Since(start))
		if len(c.Errors) > 0 {
			log = log.WithValues("errors", c.Errors.Errors())
		}
		if len(c.Errors) > 0 || c.Writer.Status() >= 500 {
			log.V(1).Info("Request failed")
		} else {
			log.V(2).Info("Request OK")
		}
	}()
	c.Next()
}
