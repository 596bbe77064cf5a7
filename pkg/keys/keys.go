// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package keys implements the API key panel of a project, applying the rules of package permission.
package keys

import (
	"context"
	"errors"
	"fmt"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/model"
	"github.com/archcanvas/archcanvas/pkg/permission"
)

var log = logging.Log()

// ErrForbidden is returned when the viewer's role does not allow an operation.
var ErrForbidden = errors.New("forbidden")

// Viewer identifies the user looking at the panel.
type Viewer struct {
	OrganizationID string
	ProjectID      string
	UserID         string
}

// Panel lists, creates and revokes the API keys of a project on behalf of a viewer.
type Panel struct {
	Keys    backend.KeyService
	Members backend.MemberService
}

// State of the panel as seen by one viewer.
type State struct {
	Role       model.Role     `json:"role,omitempty"`
	Keys       []model.APIKey `json:"keys"`
	CanCreate  bool           `json:"canCreate"`
	CanRevoke  bool           `json:"canRevoke"`
	CanViewAll bool           `json:"canViewAll"`
}

// members fetches the organization members and the viewer's role.
func (p *Panel) members(ctx context.Context, v Viewer) ([]model.Member, model.Role, error) {
	members, err := p.Members.ListMembers(ctx, v.OrganizationID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load members: %w", err)
	}
	return members, permission.RoleOf(members, v.UserID), nil
}

// List the keys visible to the viewer.
func (p *Panel) List(ctx context.Context, v Viewer) (*State, error) {
	members, role, err := p.members(ctx, v)
	if err != nil {
		return nil, err
	}
	keys, err := p.Keys.ListAPIKeys(ctx, v.OrganizationID, v.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("failed to load API keys: %w", err)
	}
	return &State{
		Role:       role,
		Keys:       permission.FilterVisibleKeys(keys, role, v.UserID, members),
		CanCreate:  permission.CanCreateKeys(role),
		CanRevoke:  permission.CanRevokeKey(role),
		CanViewAll: permission.CanViewAllKeys(role),
	}, nil
}

// AvailableMembers returns the members the viewer may create keys for.
func (p *Panel) AvailableMembers(ctx context.Context, v Viewer) ([]model.Member, error) {
	members, role, err := p.members(ctx, v)
	if err != nil {
		return nil, err
	}
	return permission.FilterAvailableMembers(members, role), nil
}

// Create a key for the member targetMemberID. The secret is only returned here.
func (p *Panel) Create(ctx context.Context, v Viewer, targetMemberID string) (*model.APIKeyWithSecret, error) {
	members, role, err := p.members(ctx, v)
	if err != nil {
		return nil, err
	}
	if !permission.CanCreateKeys(role) {
		return nil, fmt.Errorf("%w: role %q cannot create keys", ErrForbidden, role)
	}
	var target *model.Member
	for i := range members {
		if members[i].ID == targetMemberID {
			target = &members[i]
		}
	}
	if target == nil {
		return nil, fmt.Errorf("member %q: %w", targetMemberID, backend.ErrNotFound)
	}
	if !permission.CanCreateKeyForRole(role, target.Role) {
		return nil, fmt.Errorf("%w: role %q cannot create keys for role %q", ErrForbidden, role, target.Role)
	}
	k, err := p.Keys.CreateAPIKey(ctx, v.OrganizationID, v.ProjectID, targetMemberID)
	if err != nil {
		return nil, fmt.Errorf("failed to create API key: %w", err)
	}
	log.V(2).Info("Created API key", "project", v.ProjectID, "key", k.ID, "member", targetMemberID, "by", v.UserID)
	return k, nil
}

// Revoke the key keyID.
func (p *Panel) Revoke(ctx context.Context, v Viewer, keyID string) error {
	_, role, err := p.members(ctx, v)
	if err != nil {
		return err
	}
	if !permission.CanRevokeKey(role) {
		return fmt.Errorf("%w: role %q cannot revoke keys", ErrForbidden, role)
	}
	if err := p.Keys.RevokeAPIKey(ctx, v.OrganizationID, v.ProjectID, keyID); err != nil {
		return fmt.Errorf("failed to revoke API key: %w", err)
	}
	log.V(2).Info("Revoked API key", "project", v.ProjectID, "key", keyID, "by", v.UserID)
	return nil
}
