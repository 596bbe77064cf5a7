// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package backend defines the services the canvas consumes.
//
// The services own persistence of models, views, members and API keys.
// Implementations: [Client] calls a remote backend over HTTP,
// package [github.com/archcanvas/archcanvas/pkg/backend/memory] holds a model in memory.
package backend

import (
	"context"
	"errors"

	"github.com/archcanvas/archcanvas/pkg/model"
)

// ErrNotFound is returned (possibly wrapped) when a model, view, key or organization does not exist.
var ErrNotFound = errors.New("not found")

// ModelService reads views and persists node positions.
type ModelService interface {
	// GetModel returns the model of a project, ErrNotFound if the project has none.
	GetModel(ctx context.Context, projectID string) (*model.Info, error)
	// GetViewSummaries lists the views of a project.
	GetViewSummaries(ctx context.Context, projectID string) ([]model.ViewSummary, error)
	// GetView returns the full contents of a view.
	GetView(ctx context.Context, projectID, viewID string) (*model.View, error)
	// UpdateNodePosition persists the position of one node, idempotent.
	UpdateNodePosition(ctx context.Context, projectID, viewID, nodeID string, p model.Point) (*model.View, error)
}

// KeyService manages project API keys.
type KeyService interface {
	ListAPIKeys(ctx context.Context, orgID, projectID string) ([]model.APIKey, error)
	// CreateAPIKey creates a key owned by targetMemberID, the secret is only returned here.
	CreateAPIKey(ctx context.Context, orgID, projectID, targetMemberID string) (*model.APIKeyWithSecret, error)
	RevokeAPIKey(ctx context.Context, orgID, projectID, keyID string) error
}

// MemberService lists organization members.
type MemberService interface {
	ListMembers(ctx context.Context, orgID string) ([]model.Member, error)
}

// Backend provides all services.
type Backend interface {
	ModelService
	KeyService
	MemberService
}
