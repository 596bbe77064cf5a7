// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package permission

import (
	"fmt"
	"testing"

	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/stretchr/testify/assert"
)

var (
	members = []model.Member{
		{ID: "m-owner", UserID: "u-owner", Role: model.Owner},
		{ID: "m-admin", UserID: "u-admin", Role: model.Admin},
		{ID: "m-contrib", UserID: "u-contrib", Role: model.Contributor},
		{ID: "m-contrib2", UserID: "u-contrib2", Role: model.Contributor},
	}
	keys = []model.APIKey{
		{ID: "k1", MemberID: "m-owner"},
		{ID: "k2", MemberID: "m-admin"},
		{ID: "k3", MemberID: "m-contrib"},
		{ID: "k4", MemberID: "m-contrib2"},
	}
)

func TestRoleRights(t *testing.T) {
	for _, x := range []struct {
		role                    model.Role
		viewAll, create, revoke bool
	}{
		{model.Owner, true, true, true},
		{model.Admin, true, true, true},
		{model.Contributor, false, false, false},
		{"", false, false, false},
		{"STRANGER", false, false, false},
	} {
		t.Run(string(x.role), func(t *testing.T) {
			assert.Equal(t, x.viewAll, CanViewAllKeys(x.role))
			assert.Equal(t, x.create, CanCreateKeys(x.role))
			assert.Equal(t, x.revoke, CanRevokeKey(x.role))
		})
	}
}

func TestCanCreateKeyForRole(t *testing.T) {
	roles := []model.Role{model.Owner, model.Admin, model.Contributor}
	want := map[[2]model.Role]bool{
		{model.Owner, model.Owner}:       true,
		{model.Owner, model.Admin}:       true,
		{model.Owner, model.Contributor}: true,
		{model.Admin, model.Contributor}: true,
	}
	for _, actor := range roles {
		for _, target := range roles {
			t.Run(fmt.Sprintf("%v-%v", actor, target), func(t *testing.T) {
				assert.Equal(t, want[[2]model.Role{actor, target}], CanCreateKeyForRole(actor, target))
			})
		}
	}
	assert.False(t, CanCreateKeyForRole("ADMIN", "ADMIN"))
	assert.True(t, CanCreateKeyForRole("ADMIN", "CONTRIBUTOR"))
	assert.True(t, CanCreateKeyForRole("OWNER", "OWNER"))
}

func TestFilterVisibleKeys(t *testing.T) {
	assert.Equal(t, keys, FilterVisibleKeys(keys, model.Owner, "u-owner", members))
	assert.Equal(t, keys, FilterVisibleKeys(keys, model.Admin, "u-admin", members))
	assert.Equal(t, []model.APIKey{keys[2]}, FilterVisibleKeys(keys, model.Contributor, "u-contrib", members))
	assert.Equal(t, []model.APIKey{keys[3]}, FilterVisibleKeys(keys, model.Contributor, "u-contrib2", members))
	assert.Empty(t, FilterVisibleKeys(keys, model.Contributor, "nobody", members))
	assert.NotNil(t, FilterVisibleKeys(keys, model.Contributor, "nobody", members))
	assert.Empty(t, FilterVisibleKeys(nil, model.Contributor, "u-contrib", members))
}

func TestFilterAvailableMembers(t *testing.T) {
	assert.Equal(t, members, FilterAvailableMembers(members, model.Owner))
	assert.Equal(t, members[2:], FilterAvailableMembers(members, model.Admin))
	assert.Empty(t, FilterAvailableMembers(members, model.Contributor))
}

func TestRoleOf(t *testing.T) {
	assert.Equal(t, model.Admin, RoleOf(members, "u-admin"))
	assert.Equal(t, model.Role(""), RoleOf(members, "nobody"))
	assert.Nil(t, MemberOf(nil, "u-admin"))
}
