// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package memory

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	clocktesting "k8s.io/utils/clock/testing"
)

func load(t *testing.T) *Store {
	t.Helper()
	s, err := LoadFile("testdata/shop.yaml")
	require.NoError(t, err)
	return s
}

func TestStore_Views(t *testing.T) {
	s, ctx := load(t), context.Background()
	m, err := s.GetModel(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "Shop", m.Name)
	_, err = s.GetModel(ctx, "nope")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	views, err := s.GetViewSummaries(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, []model.ViewSummary{
		{ID: "context", Type: model.ContextView, Name: "Shop context"},
		{ID: "containers", Type: model.ContainerView, Name: "Shop containers"},
	}, views)
	views, err = s.GetViewSummaries(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, views)

	v, err := s.GetView(ctx, "p1", "containers")
	require.NoError(t, err)
	assert.True(t, v.Positioned())
	assert.Equal(t, model.WebApplication, v.Nodes[0].Type)
	_, err = s.GetView(ctx, "p1", "nope")
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestStore_UpdateNodePosition(t *testing.T) {
	s, ctx := load(t), context.Background()
	before, err := s.GetView(ctx, "p1", "context")
	require.NoError(t, err)
	v, err := s.UpdateNodePosition(ctx, "p1", "context", "pay", model.Point{X: 10, Y: 20})
	require.NoError(t, err)
	assert.Equal(t, &model.Point{X: 10, Y: 20}, v.Node("pay").Position)
	assert.Nil(t, before.Node("pay").Position, "earlier results are copies")

	// Returned views do not alias the store.
	v.Node("pay").Position.X = 99
	again, err := s.GetView(ctx, "p1", "context")
	require.NoError(t, err)
	assert.Equal(t, &model.Point{X: 10, Y: 20}, again.Node("pay").Position)

	_, err = s.UpdateNodePosition(ctx, "p1", "context", "ghost", model.Point{X: 1, Y: 1})
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestStore_Keys(t *testing.T) {
	s, ctx := load(t), context.Background()
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	s.Clock = clocktesting.NewFakePassiveClock(now)

	keys, err := s.ListAPIKeys(ctx, "o1", "p1")
	require.NoError(t, err)
	assert.Len(t, keys, 2)
	_, err = s.ListAPIKeys(ctx, "o2", "p1")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	k, err := s.CreateAPIKey(ctx, "o1", "p1", "m-admin")
	require.NoError(t, err)
	assert.Equal(t, "m-admin", k.MemberID)
	assert.Equal(t, now, k.CreatedAt)
	assert.True(t, strings.HasPrefix(k.Secret, k.Prefix))
	keys, err = s.ListAPIKeys(ctx, "o1", "p1")
	require.NoError(t, err)
	assert.Len(t, keys, 3)
	assert.Equal(t, k.APIKey, keys[2])

	_, err = s.CreateAPIKey(ctx, "o1", "p1", "nobody")
	assert.ErrorIs(t, err, backend.ErrNotFound)

	require.NoError(t, s.RevokeAPIKey(ctx, "o1", "p1", "k1"))
	assert.ErrorIs(t, s.RevokeAPIKey(ctx, "o1", "p1", "k1"), backend.ErrNotFound)
	keys, err = s.ListAPIKeys(ctx, "o1", "p1")
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	members, err := s.ListMembers(ctx, "o1")
	require.NoError(t, err)
	assert.Len(t, members, 3)
}

func TestLoad_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown field":   "viewz: []",
		"bad node type":   "views: [{id: v, type: CONTEXT, nodes: [{id: a, type: BLOB}]}]",
		"bad view type":   "views: [{id: v, type: LANDSCAPE}]",
		"duplicate node":  "views: [{id: v, type: CONTEXT, nodes: [{id: a, type: PERSON}], externalNodes: [{id: a, type: PERSON}]}]",
		"duplicate views": "views: [{id: v, projectId: p, type: CONTEXT}, {id: v, projectId: p, type: CONTEXT}]",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Load(strings.NewReader(doc))
			assert.Error(t, err)
		})
	}
}

func TestStore_Write(t *testing.T) {
	s := load(t)
	var b bytes.Buffer
	require.NoError(t, s.Write(&b))
	s2, err := Load(&b)
	require.NoError(t, err)
	assert.Equal(t, s.Data(), s2.Data())
}
