// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/archcanvas/archcanvas/internal/pkg/logging"
	"github.com/archcanvas/archcanvas/pkg/backend/auth"
	"github.com/archcanvas/archcanvas/pkg/model"
)

var log = logging.Log()

// Client is a [Backend] that calls a remote JSON REST backend.
//
// Authorization from a context created by [auth.Context] is forwarded on every request.
type Client struct {
	base *url.URL
	hc   *http.Client
}

var _ Backend = &Client{}

// NewClient for the backend at base URL. If hc is nil a default client is used.
func NewClient(base string, hc *http.Client) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("backend URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", base)
	}
	if hc == nil {
		hc = &http.Client{}
	}
	hc2 := *hc
	hc2.Transport = auth.Wrap(hc.Transport)
	return &Client{base: u, hc: &hc2}, nil
}

func (c *Client) GetModel(ctx context.Context, projectID string) (*model.Info, error) {
	return call[*model.Info](ctx, c, http.MethodGet, nil, "projects", projectID, "model")
}

func (c *Client) GetViewSummaries(ctx context.Context, projectID string) ([]model.ViewSummary, error) {
	return call[[]model.ViewSummary](ctx, c, http.MethodGet, nil, "projects", projectID, "views")
}

func (c *Client) GetView(ctx context.Context, projectID, viewID string) (*model.View, error) {
	return call[*model.View](ctx, c, http.MethodGet, nil, "projects", projectID, "views", viewID)
}

func (c *Client) UpdateNodePosition(ctx context.Context, projectID, viewID, nodeID string, p model.Point) (*model.View, error) {
	return call[*model.View](ctx, c, http.MethodPatch, p, "projects", projectID, "views", viewID, "nodes", nodeID, "position")
}

func (c *Client) ListAPIKeys(ctx context.Context, orgID, projectID string) ([]model.APIKey, error) {
	return call[[]model.APIKey](ctx, c, http.MethodGet, nil, "organizations", orgID, "projects", projectID, "api-keys")
}

// CreateKeyRequest is the body of a create key request.
type CreateKeyRequest struct {
	TargetMemberID string `json:"targetMemberId"`
}

func (c *Client) CreateAPIKey(ctx context.Context, orgID, projectID, targetMemberID string) (*model.APIKeyWithSecret, error) {
	return call[*model.APIKeyWithSecret](ctx, c, http.MethodPost, CreateKeyRequest{TargetMemberID: targetMemberID},
		"organizations", orgID, "projects", projectID, "api-keys")
}

func (c *Client) RevokeAPIKey(ctx context.Context, orgID, projectID, keyID string) error {
	return c.do(ctx, http.MethodDelete, nil, nil, "organizations", orgID, "projects", projectID, "api-keys", keyID)
}

func (c *Client) ListMembers(ctx context.Context, orgID string) ([]model.Member, error) {
	return call[[]model.Member](ctx, c, http.MethodGet, nil, "organizations", orgID, "members")
}

// call is do with a typed result.
func call[T any](ctx context.Context, c *Client, method string, body any, path ...string) (result T, err error) {
	err = c.do(ctx, method, body, &result, path...)
	return result, err
}

// do sends body as JSON (if not nil) and decodes the response into result (if not nil).
// A 404 response returns an error wrapping ErrNotFound.
func (c *Client) do(ctx context.Context, method string, body, result any, path ...string) error {
	u := c.base.JoinPath(escape(path)...)
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		r = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), r)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	log.V(3).Info("backend request", "method", method, "url", u)
	resp, err := c.hc.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%v %v: %w", method, u.Path, ErrNotFound)
	case resp.StatusCode/100 != 2:
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("%v %v: %v: %v", method, u.Path, resp.Status, strings.TrimSpace(string(msg)))
	case result == nil || resp.StatusCode == http.StatusNoContent:
		return nil
	default:
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("%v %v: decoding response: %w", method, u.Path, err)
		}
		return nil
	}
}

func escape(path []string) []string {
	escaped := make([]string, len(path))
	for i, p := range path {
		escaped[i] = url.PathEscape(p)
	}
	return escaped
}
