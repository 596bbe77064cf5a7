// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package rest

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/canvas"
	"github.com/archcanvas/archcanvas/pkg/keys"
	"github.com/archcanvas/archcanvas/pkg/model"
	"golang.org/x/sync/singleflight"
)

// session is the canvas of one user on one project.
type session struct {
	*canvas.Canvas
	notices  *canvas.NoticeQueue
	location *canvas.Query
}

type sessionKey struct{ user, project string }

func (k sessionKey) String() string { return fmt.Sprintf("%q/%q", k.user, k.project) }

// sessionRequest identifies the session and the view to open if it is created.
type sessionRequest struct {
	sessionKey
	org  string
	view string
}

// opened is the result of creating and opening a session.
type opened struct {
	*session
	err error // Error opening the first view, the session is usable.
}

// sessions holds canvas sessions, created on first use.
//
// No lock is held during backend calls, concurrent first requests for the same
// user and project share one creation.
type sessions struct {
	// newOptions returns the base options for a new canvas.
	newOptions func() canvas.Options
	models     backend.ModelService
	keys       *keys.Panel
	creating   singleflight.Group

	m   sync.Mutex
	all map[sessionKey]*session
}

func newSessions(models backend.ModelService, panel *keys.Panel, newOptions func() canvas.Options) *sessions {
	return &sessions{models: models, keys: panel, newOptions: newOptions, all: map[sessionKey]*session{}}
}

func (s *sessions) lookup(key sessionKey) *session {
	s.m.Lock()
	defer s.m.Unlock()
	return s.all[key]
}

// get returns the session for r, creating it and opening r.view if needed.
// created is true if this call created the session, then o.err is the error opening r.view.
func (s *sessions) get(ctx context.Context, r sessionRequest) (o opened, created bool, err error) {
	if ss := s.lookup(r.sessionKey); ss != nil {
		return opened{session: ss}, false, nil
	}
	v, err, _ := s.creating.Do(r.sessionKey.String(), func() (any, error) {
		if ss := s.lookup(r.sessionKey); ss != nil {
			return opened{session: ss}, nil // Created by an earlier flight.
		}
		ss, err := s.create(ctx, r)
		if err != nil {
			return nil, err
		}
		s.m.Lock()
		s.all[r.sessionKey] = ss
		s.m.Unlock()
		created = true
		return opened{session: ss, err: ss.Open(ctx, r.view)}, nil
	})
	if err != nil {
		return opened{}, false, err
	}
	o = v.(opened)
	if !created {
		o.err = nil // Only the creator asked for r.view.
	}
	return o, created, nil
}

// create a session without opening a view.
func (s *sessions) create(ctx context.Context, r sessionRequest) (*session, error) {
	info, err := s.models.GetModel(ctx, r.project)
	switch {
	case errors.Is(err, backend.ErrNotFound):
		info = nil // Canvas shows the model-not-found empty state.
	case err != nil:
		return nil, fmt.Errorf("failed to load model: %w", err)
	}
	var views []model.ViewSummary
	if info != nil {
		if views, err = s.models.GetViewSummaries(ctx, r.project); err != nil {
			return nil, fmt.Errorf("failed to load views: %w", err)
		}
	}
	ss := &session{notices: &canvas.NoticeQueue{}, location: &canvas.Query{}}
	opts := s.newOptions()
	opts.ProjectID = r.project
	opts.OrganizationID = r.org
	opts.UserID = r.user
	opts.Model = info
	opts.Views = views
	opts.APIKeys = s.apiKeys(ctx, r)
	opts.Models = s.models
	opts.Notifier = ss.notices
	opts.Location = ss.location
	if ss.Canvas, err = canvas.New(opts); err != nil {
		return nil, err
	}
	if opts.Metrics != nil {
		opts.Metrics.Sessions.Inc()
	}
	log.V(2).Info("New canvas session", "user", r.user, "project", r.project, "org", r.org)
	return ss, nil
}

// apiKeys returns the keys visible to the user, none if the organization or user is unknown.
// Failures are logged, the canvas works without keys.
func (s *sessions) apiKeys(ctx context.Context, r sessionRequest) []model.APIKey {
	if s.keys == nil || r.org == "" || r.user == "" {
		return nil
	}
	state, err := s.keys.List(ctx, keys.Viewer{OrganizationID: r.org, ProjectID: r.project, UserID: r.user})
	if err != nil {
		log.Error(err, "Failed to load API keys", "org", r.org, "project", r.project)
		return nil
	}
	return state.Keys
}

// close all sessions.
func (s *sessions) close() {
	s.m.Lock()
	defer s.m.Unlock()
	for k, ss := range s.all {
		ss.Close()
		delete(s.all, k)
	}
}

// response builds the response for a session, draining its notices.
func (ss *session) response() Canvas {
	return Canvas{
		Snapshot: ss.Snapshot(),
		Notices:  ss.notices.Drain(),
		Location: ss.location.Encode(),
	}
}
