// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package keys

import (
	"context"
	"testing"

	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/backend/memory"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPanel(t *testing.T) *Panel {
	t.Helper()
	s, err := memory.New(memory.Data{
		Organizations: []memory.Organization{{
			ID: "o1",
			Members: []model.Member{
				{ID: "m-owner", UserID: "alice", Role: model.Owner},
				{ID: "m-admin", UserID: "bob", Role: model.Admin},
				{ID: "m-admin2", UserID: "dave", Role: model.Admin},
				{ID: "m-contrib", UserID: "carol", Role: model.Contributor},
			},
			Keys: []memory.Key{
				{APIKey: model.APIKey{ID: "k1", MemberID: "m-owner"}, ProjectID: "p1"},
				{APIKey: model.APIKey{ID: "k2", MemberID: "m-contrib"}, ProjectID: "p1"},
				{APIKey: model.APIKey{ID: "k3", MemberID: "m-contrib"}, ProjectID: "other"},
			},
		}},
	})
	require.NoError(t, err)
	return &Panel{Keys: s, Members: s}
}

func viewer(user string) Viewer { return Viewer{OrganizationID: "o1", ProjectID: "p1", UserID: user} }

func ids(keys []model.APIKey) (ids []string) {
	for _, k := range keys {
		ids = append(ids, k.ID)
	}
	return ids
}

func TestPanel_List(t *testing.T) {
	p, ctx := newPanel(t), context.Background()
	for _, x := range []struct {
		user      string
		keys      []string
		canCreate bool
	}{
		{"alice", []string{"k1", "k2"}, true},
		{"bob", []string{"k1", "k2"}, true},
		{"carol", []string{"k2"}, false},
		{"stranger", nil, false},
	} {
		t.Run(x.user, func(t *testing.T) {
			s, err := p.List(ctx, viewer(x.user))
			require.NoError(t, err)
			assert.Equal(t, x.keys, ids(s.Keys))
			assert.Equal(t, x.canCreate, s.CanCreate)
			assert.Equal(t, x.canCreate, s.CanRevoke)
		})
	}
	_, err := p.List(ctx, Viewer{OrganizationID: "nope", UserID: "alice"})
	assert.ErrorIs(t, err, backend.ErrNotFound)
}

func TestPanel_AvailableMembers(t *testing.T) {
	p, ctx := newPanel(t), context.Background()
	m, err := p.AvailableMembers(ctx, viewer("alice"))
	require.NoError(t, err)
	assert.Len(t, m, 4)
	m, err = p.AvailableMembers(ctx, viewer("bob"))
	require.NoError(t, err)
	assert.Equal(t, []model.Member{{ID: "m-contrib", UserID: "carol", Role: model.Contributor}}, m)
	m, err = p.AvailableMembers(ctx, viewer("carol"))
	require.NoError(t, err)
	assert.Empty(t, m)
}

func TestPanel_Create(t *testing.T) {
	p, ctx := newPanel(t), context.Background()
	k, err := p.Create(ctx, viewer("bob"), "m-contrib")
	require.NoError(t, err)
	assert.NotEmpty(t, k.Secret)
	assert.Equal(t, "m-contrib", k.MemberID)

	_, err = p.Create(ctx, viewer("bob"), "m-admin2")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = p.Create(ctx, viewer("carol"), "m-contrib")
	assert.ErrorIs(t, err, ErrForbidden)
	_, err = p.Create(ctx, viewer("alice"), "nobody")
	assert.ErrorIs(t, err, backend.ErrNotFound)
	_, err = p.Create(ctx, viewer("alice"), "m-owner")
	require.NoError(t, err)

	s, err := p.List(ctx, viewer("alice"))
	require.NoError(t, err)
	assert.Len(t, s.Keys, 4)
}

func TestPanel_Revoke(t *testing.T) {
	p, ctx := newPanel(t), context.Background()
	assert.ErrorIs(t, p.Revoke(ctx, viewer("carol"), "k2"), ErrForbidden)
	require.NoError(t, p.Revoke(ctx, viewer("bob"), "k2"))
	assert.ErrorIs(t, p.Revoke(ctx, viewer("bob"), "k2"), backend.ErrNotFound)
	s, err := p.List(ctx, viewer("carol"))
	require.NoError(t, err)
	assert.Empty(t, s.Keys)
}
