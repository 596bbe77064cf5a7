// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/archcanvas/archcanvas/internal/pkg/metrics"
	"github.com/archcanvas/archcanvas/internal/pkg/test"
	"github.com/archcanvas/archcanvas/pkg/backend/memory"
	"github.com/archcanvas/archcanvas/pkg/canvas"
	"github.com/archcanvas/archcanvas/pkg/keys"
	"github.com/archcanvas/archcanvas/pkg/layout"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func TestAPI_Views(t *testing.T) {
	a := newTestAPI(t)
	want, err := a.store.GetViewSummaries(context.Background(), "p1")
	require.NoError(t, err)
	assertDo(t, a, "GET", "/api/v1/projects/p1/views", nil, 200, want)
	assertDo(t, a, "GET", "/api/v1/projects/empty/views", nil, 200, []model.ViewSummary{})
}

func TestAPI_GetCanvas_firstView(t *testing.T) {
	a := newTestAPI(t)
	got := getCanvas(t, a, "/api/v1/projects/p1/canvas")
	assert.Equal(t, canvas.Ready, got.Status)
	require.NotNil(t, got.View)
	assert.Equal(t, "context", got.View.ID)
	assert.True(t, got.Auto, "context view has no stored positions")
	assert.Equal(t, "view=context", got.Location)
	assert.Len(t, got.Views, 2)
	require.NotEmpty(t, got.Nodes)
	assert.Equal(t, layout.GroupWrapperID, got.Nodes[0].ID)
	assert.Len(t, got.Edges, 2)
}

func TestAPI_GetCanvas_viewQuery(t *testing.T) {
	a := newTestAPI(t)
	got := getCanvas(t, a, "/api/v1/projects/p1/canvas?view=containers")
	require.NotNil(t, got.View)
	assert.Equal(t, "containers", got.View.ID)
	assert.False(t, got.Auto)
	assert.Equal(t, model.Point{X: 100, Y: 100}, node(t, got, "web").Position)
	assert.Len(t, got.Edges, 3, "dangling relations are kept")

	// Same session switches view.
	got = getCanvas(t, a, "/api/v1/projects/p1/canvas?view=context")
	assert.Equal(t, "context", got.View.ID)
	got = getCanvas(t, a, "/api/v1/projects/p1/canvas")
	assert.Equal(t, "context", got.View.ID, "no query keeps the active view")
}

func TestAPI_GetCanvas_emptyStates(t *testing.T) {
	a := newTestAPI(t)
	got := getCanvas(t, a, "/api/v1/projects/nope/canvas")
	assert.Equal(t, canvas.ModelNotFound, got.EmptyState)
	assert.Nil(t, got.View)
	got = getCanvas(t, a, "/api/v1/projects/empty/canvas")
	assert.Equal(t, canvas.NoViews, got.EmptyState)
	assert.Equal(t, "Nothing yet", got.Model.Name)
}

func TestAPI_GetCanvas_unknownViewNotice(t *testing.T) {
	a := newTestAPI(t)
	got := getCanvas(t, a, "/api/v1/projects/p1/canvas?view=nope")
	assert.Nil(t, got.View)
	require.Len(t, got.Notices, 1)
	assert.Equal(t, canvas.Error, got.Notices[0].Level)
	// Notices are delivered once.
	got = getCanvas(t, a, "/api/v1/projects/p1/canvas")
	assert.Empty(t, got.Notices)
}

func TestAPI_SelectView(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "POST", "/api/v1/projects/p1/canvas/view", SelectView{View: "containers"})
	require.Equal(t, 200, w.Code, w.Body.String())
	var got Canvas
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "containers", got.View.ID)
	assert.Equal(t, "view=containers", got.Location)

	w = do(t, a, "POST", "/api/v1/projects/p1/canvas/view", SelectView{View: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
	w = do(t, a, "POST", "/api/v1/projects/p1/canvas/view", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestAPI_Select(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "POST", "/api/v1/projects/p1/canvas/select", Select{Node: "u1"})
	require.Equal(t, 200, w.Code, w.Body.String())
	var got Canvas
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "u1", got.Selected)

	w = do(t, a, "POST", "/api/v1/projects/p1/canvas/select", Select{Node: "nope"})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestAPI_MoveDrop(t *testing.T) {
	a := newTestAPI(t)
	_ = getCanvas(t, a, "/api/v1/projects/p1/canvas?view=containers")

	w := do(t, a, "POST", "/api/v1/projects/p1/canvas/nodes/web/move", Position{X: 20.4, Y: 130.6})
	require.Equal(t, 200, w.Code, w.Body.String())
	var moved Wrapper
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &moved))
	require.NotNil(t, moved.Wrapper)
	assert.Equal(t, layout.GroupWrapperID, moved.Wrapper.ID)
	assert.Equal(t, 20.4-layout.DefaultGroupMargin, moved.Wrapper.Position.X, "web is the leftmost node")

	w = do(t, a, "POST", "/api/v1/projects/p1/canvas/nodes/web/drop", Position{X: 20.4, Y: 130.6})
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	assert.Equal(t, model.Point{X: 20.4, Y: 130.6}, node(t, getCanvas(t, a, "/api/v1/projects/p1/canvas"), "web").Position)

	stored := func() model.Point {
		v, err := a.store.GetView(context.Background(), "p1", "containers")
		require.NoError(t, err)
		return *v.Node("web").Position
	}
	assert.Equal(t, model.Point{X: 100, Y: 100}, stored(), "not written before the debounce delay")
	a.clock.Step(canvas.DefaultDebounce)
	assert.Eventually(t, func() bool { return stored() == model.Point{X: 20, Y: 131} }, time.Second, time.Millisecond)

	w = do(t, a, "POST", "/api/v1/projects/p1/canvas/nodes/nope/drop", Position{X: 1, Y: 1})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())
}

func TestAPI_Move_noView(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "POST", "/api/v1/projects/empty/canvas/nodes/x/move", Position{X: 1, Y: 1})
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestAPI_Relayout(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "POST", "/api/v1/projects/p1/canvas/relayout?view=containers", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var got Canvas
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.True(t, got.Auto)
	v, err := a.store.GetView(context.Background(), "p1", "containers")
	require.NoError(t, err)
	for _, n := range v.Nodes {
		p := node(t, got, n.ID).Position
		assert.Equal(t, model.Point{X: math.Round(p.X), Y: math.Round(p.Y)}, *n.Position, "node %v", n.ID)
	}
}

func TestAPI_SVG(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "GET", "/api/v1/projects/p1/canvas/svg?view=containers&theme=dark", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Equal(t, "image/svg+xml", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Body.String(), "<svg")
	assert.Contains(t, w.Body.String(), "Storefront")

	w = do(t, a, "GET", "/api/v1/projects/p1/canvas/svg?theme=purple", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestAPI_DOT(t *testing.T) {
	a := newTestAPI(t)
	w := do(t, a, "GET", "/api/v1/projects/p1/canvas/dot?view=containers", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "digraph")
	assert.Contains(t, w.Body.String(), "web")

	w = do(t, a, "GET", "/api/v1/projects/empty/canvas/dot", nil)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}

func TestAPI_Keys(t *testing.T) {
	a := newTestAPI(t)
	const path = "/api/v1/organizations/o1/projects/p1/keys"
	listKeys := func(user string) (ids []string) {
		a.user = user
		w := do(t, a, "GET", path, nil)
		require.Equal(t, 200, w.Code, w.Body.String())
		var state keys.State
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &state))
		for _, k := range state.Keys {
			ids = append(ids, k.ID)
		}
		return ids
	}
	assert.ElementsMatch(t, []string{"k1", "k2"}, listKeys("alice"))
	assert.ElementsMatch(t, []string{"k2"}, listKeys("carol"), "contributors only see their own keys")

	a.user = "carol"
	w := do(t, a, "POST", path, CreateKey{TargetMemberID: "m-contrib"})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
	w = do(t, a, "DELETE", path+"/k2", nil)
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	a.user = "alice"
	w = do(t, a, "POST", path, CreateKey{TargetMemberID: "m-contrib"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.APIKeyWithSecret
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, "m-contrib", created.MemberID)
	assert.True(t, strings.HasPrefix(created.Secret, created.Prefix))
	w = do(t, a, "POST", path, CreateKey{TargetMemberID: "nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code, w.Body.String())

	a.user = "bob"
	w = do(t, a, "DELETE", path+"/k1", nil)
	assert.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	assert.ElementsMatch(t, []string{"k2", created.ID}, listKeys("alice"))

	a.user = ""
	w = do(t, a, "GET", path, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code, w.Body.String())
}

func TestAPI_KeyMembers(t *testing.T) {
	a := newTestAPI(t)
	a.user = "bob"
	w := do(t, a, "GET", "/api/v1/organizations/o1/projects/p1/keys/members", nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var members []model.Member
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &members))
	assert.NotEmpty(t, members)
}

func TestDebug_metrics(t *testing.T) {
	a := newTestAPI(t)
	_ = getCanvas(t, a, "/api/v1/projects/p1/canvas")
	w := do(t, a, "GET", MetricsPath, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), `archcanvas_layouts_total{mode="auto"} 1`)
	assert.Contains(t, w.Body.String(), "archcanvas_sessions 1")
}

func ginEngine() *gin.Engine {
	if os.Getenv(gin.EnvGinMode) == "" { // Don't override an explicit env setting.
		gin.SetMode(gin.TestMode)
	}
	r := gin.New()
	return r
}

type testAPI struct {
	*API
	Router *gin.Engine
	store  *memory.Store
	clock  *clocktesting.FakeClock
	user   string // Sent as the UserHeader if not empty.
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()
	store, err := memory.LoadFile("../backend/memory/testdata/shop.yaml")
	require.NoError(t, err)
	r := ginEngine()
	reg := prometheus.NewRegistry()
	fc := clocktesting.NewFakeClock(time.Now())
	a, err := New(store, Options{Metrics: metrics.New(reg), Clock: fc}, r)
	require.NoError(t, err)
	Debug(r, reg)
	t.Cleanup(a.Close)
	return &testAPI{API: a, Router: r, store: store, clock: fc, user: "alice"}
}

func do(t *testing.T, a *testAPI, method, url string, body any) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var r io.Reader
	if body != nil {
		r = strings.NewReader(test.JSONString(body))
	}
	req, err := http.NewRequest(method, url, r)
	if err != nil {
		w.Code = http.StatusBadRequest
		fmt.Fprintln(w, err.Error())
		return w
	}
	if a.user != "" {
		req.Header.Set(UserHeader, a.user)
	}
	a.Router.ServeHTTP(w, req)
	return w
}

func assertDo[T any](t *testing.T, a *testAPI, method, url string, req any, code int, want T) {
	t.Helper()
	w := do(t, a, method, url, req)
	if assert.Equal(t, code, w.Code, w.Body.String()) {
		var got T
		if assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), "body: %v", w.Body.String()) {
			if assert.JSONEq(t, test.JSONPretty(want), test.JSONPretty(got)) {
				return
			}
		}
	}
	t.Logf("request: %v", test.JSONString(req)) // Log the request body on error.
}

func getCanvas(t *testing.T, a *testAPI, url string) Canvas {
	t.Helper()
	w := do(t, a, "GET", url, nil)
	require.Equal(t, 200, w.Code, w.Body.String())
	var got Canvas
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got), w.Body.String())
	return got
}

func node(t *testing.T, c Canvas, id string) layout.Node {
	t.Helper()
	for _, n := range c.Nodes {
		if n.ID == id {
			return n
		}
	}
	require.Failf(t, "node not found", "%v", id)
	return layout.Node{}
}
