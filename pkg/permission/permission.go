// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package permission decides which API keys and members a viewer may see or act on.
//
// All functions are pure: the result depends only on the arguments.
package permission

import (
	"github.com/archcanvas/archcanvas/pkg/model"
)

type rights struct{ viewAll, create, revoke bool }

var roleRights = map[model.Role]rights{
	model.Owner:       {viewAll: true, create: true, revoke: true},
	model.Admin:       {viewAll: true, create: true, revoke: true},
	model.Contributor: {},
}

// CanViewAllKeys is true if role sees every key in the project.
func CanViewAllKeys(role model.Role) bool { return roleRights[role].viewAll }

// CanCreateKeys is true if role may create keys for at least some members.
func CanCreateKeys(role model.Role) bool { return roleRights[role].create }

// CanRevokeKey is true if role may revoke keys.
func CanRevokeKey(role model.Role) bool { return roleRights[role].revoke }

// CanCreateKeyForRole is true if a member with role actor may create a key for a member with role target.
// Owner may target any role, Admin only Contributor, Contributor nobody.
func CanCreateKeyForRole(actor, target model.Role) bool {
	switch actor {
	case model.Owner:
		return true
	case model.Admin:
		return target == model.Contributor
	default:
		return false
	}
}

// FilterVisibleKeys returns the keys visible to a viewer with role and user ID viewerID.
// Owner and Admin see all keys. Anyone else sees only keys of their own member record,
// nothing if they have no member record.
func FilterVisibleKeys(keys []model.APIKey, role model.Role, viewerID string, members []model.Member) []model.APIKey {
	if CanViewAllKeys(role) {
		return keys
	}
	self := MemberOf(members, viewerID)
	visible := []model.APIKey{}
	if self == nil {
		return visible
	}
	for _, k := range keys {
		if k.MemberID == self.ID {
			visible = append(visible, k)
		}
	}
	return visible
}

// FilterAvailableMembers returns the members a viewer with role may create keys for.
func FilterAvailableMembers(members []model.Member, role model.Role) []model.Member {
	available := []model.Member{}
	for _, m := range members {
		if CanCreateKeyForRole(role, m.Role) {
			available = append(available, m)
		}
	}
	return available
}

// MemberOf returns the member record for userID, nil if there is none.
func MemberOf(members []model.Member, userID string) *model.Member {
	for i := range members {
		if members[i].UserID == userID {
			return &members[i]
		}
	}
	return nil
}

// RoleOf returns the role of userID, or "" if userID is not a member.
// The empty role has no rights.
func RoleOf(members []model.Member, userID string) model.Role {
	if m := MemberOf(members, userID); m != nil {
		return m.Role
	}
	return ""
}
