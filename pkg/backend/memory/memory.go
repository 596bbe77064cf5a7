// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package memory is a [backend.Backend] holding architecture models in memory.
//
// A store is loaded from a YAML or JSON document like this:
//
//	models:
//	  - {id: m1, projectId: p1, name: Shop}
//	views:
//	  - id: v1
//	    projectId: p1
//	    type: CONTEXT
//	    name: Shop context
//	    nodes:
//	      - {id: u1, type: PERSON, name: Customer}
//	      - {id: s1, type: SYSTEM, name: Shop, position: {x: 100, y: 300}}
//	    relations:
//	      - {sourceId: u1, targetId: s1, description: Uses}
//	organizations:
//	  - id: o1
//	    members:
//	      - {id: m-1, userId: alice, role: OWNER}
//	    keys:
//	      - {id: k1, projectId: p1, memberId: m-1, name: ci}
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"slices"
	"sync"

	"github.com/archcanvas/archcanvas/pkg/backend"
	"github.com/archcanvas/archcanvas/pkg/model"
	"k8s.io/utils/clock"
	"sigs.k8s.io/yaml"
)

// Data is the serialized form of a store.
type Data struct {
	Models        []model.Info   `json:"models,omitempty"`
	Views         []model.View   `json:"views,omitempty"`
	Organizations []Organization `json:"organizations,omitempty"`
}

// Organization with its members and the API keys of all its projects.
type Organization struct {
	ID      string         `json:"id"`
	Members []model.Member `json:"members,omitempty"`
	Keys    []Key          `json:"keys,omitempty"`
}

// Key is an API key of one project.
type Key struct {
	model.APIKey
	ProjectID string `json:"projectId"`
}

// Store is an in-memory backend, safe for concurrent use.
type Store struct {
	// Clock for key creation times.
	Clock clock.PassiveClock

	m      sync.Mutex
	data   Data
	nextID int
}

var _ backend.Backend = &Store{}

// New store containing a copy of data.
func New(data Data) (*Store, error) {
	s := &Store{Clock: clock.RealClock{}}
	seen := map[[2]string]bool{}
	for i := range data.Views {
		v := &data.Views[i]
		if err := v.Validate(); err != nil {
			return nil, err
		}
		if k := [2]string{v.ProjectID, v.ID}; seen[k] {
			return nil, fmt.Errorf("duplicate view %q in project %q", v.ID, v.ProjectID)
		} else {
			seen[k] = true
		}
	}
	s.data = copyData(data)
	return s, nil
}

// Load a store from YAML or JSON.
func Load(r io.Reader) (*Store, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var data Data
	if err := yaml.UnmarshalStrict(b, &data); err != nil {
		return nil, err
	}
	return New(data)
}

// LoadFile loads a store from a YAML or JSON file.
func LoadFile(path string) (*Store, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	s, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%v: %w", path, err)
	}
	return s, nil
}

// Data returns a copy of the store contents.
func (s *Store) Data() Data {
	s.m.Lock()
	defer s.m.Unlock()
	return copyData(s.data)
}

// Write the store contents to w as YAML.
func (s *Store) Write(w io.Writer) error {
	b, err := yaml.Marshal(s.Data())
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

func (s *Store) GetModel(_ context.Context, projectID string) (*model.Info, error) {
	s.m.Lock()
	defer s.m.Unlock()
	i := slices.IndexFunc(s.data.Models, func(m model.Info) bool { return m.ProjectID == projectID })
	if i < 0 {
		return nil, fmt.Errorf("model for project %q: %w", projectID, backend.ErrNotFound)
	}
	m := s.data.Models[i]
	return &m, nil
}

func (s *Store) GetViewSummaries(_ context.Context, projectID string) ([]model.ViewSummary, error) {
	s.m.Lock()
	defer s.m.Unlock()
	summaries := []model.ViewSummary{}
	for i := range s.data.Views {
		if v := &s.data.Views[i]; v.ProjectID == projectID {
			summaries = append(summaries, v.Summary())
		}
	}
	return summaries, nil
}

func (s *Store) GetView(_ context.Context, projectID, viewID string) (*model.View, error) {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.view(projectID, viewID)
	if err != nil {
		return nil, err
	}
	return copyView(v), nil
}

func (s *Store) UpdateNodePosition(_ context.Context, projectID, viewID, nodeID string, p model.Point) (*model.View, error) {
	s.m.Lock()
	defer s.m.Unlock()
	v, err := s.view(projectID, viewID)
	if err != nil {
		return nil, err
	}
	n := v.Node(nodeID)
	if n == nil {
		return nil, fmt.Errorf("node %q in view %q: %w", nodeID, viewID, backend.ErrNotFound)
	}
	n.Position = &p
	return copyView(v), nil
}

func (s *Store) view(projectID, viewID string) (*model.View, error) {
	for i := range s.data.Views {
		if v := &s.data.Views[i]; v.ProjectID == projectID && v.ID == viewID {
			return v, nil
		}
	}
	return nil, fmt.Errorf("view %q in project %q: %w", viewID, projectID, backend.ErrNotFound)
}

func (s *Store) ListAPIKeys(_ context.Context, orgID, projectID string) ([]model.APIKey, error) {
	s.m.Lock()
	defer s.m.Unlock()
	o, err := s.org(orgID)
	if err != nil {
		return nil, err
	}
	keys := []model.APIKey{}
	for _, k := range o.Keys {
		if k.ProjectID == projectID {
			keys = append(keys, k.APIKey)
		}
	}
	return keys, nil
}

func (s *Store) CreateAPIKey(_ context.Context, orgID, projectID, targetMemberID string) (*model.APIKeyWithSecret, error) {
	s.m.Lock()
	defer s.m.Unlock()
	o, err := s.org(orgID)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(o.Members, func(m model.Member) bool { return m.ID == targetMemberID })
	if i < 0 {
		return nil, fmt.Errorf("member %q: %w", targetMemberID, backend.ErrNotFound)
	}
	secret, err := newSecret()
	if err != nil {
		return nil, err
	}
	s.nextID++
	k := Key{
		APIKey: model.APIKey{
			ID:        fmt.Sprintf("key-%d", s.nextID),
			MemberID:  targetMemberID,
			Name:      o.Members[i].Name,
			Prefix:    secret[:8],
			CreatedAt: s.Clock.Now().UTC(),
		},
		ProjectID: projectID,
	}
	o.Keys = append(o.Keys, k)
	return &model.APIKeyWithSecret{APIKey: k.APIKey, Secret: secret}, nil
}

func (s *Store) RevokeAPIKey(_ context.Context, orgID, projectID, keyID string) error {
	s.m.Lock()
	defer s.m.Unlock()
	o, err := s.org(orgID)
	if err != nil {
		return err
	}
	i := slices.IndexFunc(o.Keys, func(k Key) bool { return k.ID == keyID && k.ProjectID == projectID })
	if i < 0 {
		return fmt.Errorf("key %q: %w", keyID, backend.ErrNotFound)
	}
	o.Keys = slices.Delete(o.Keys, i, i+1)
	return nil
}

func (s *Store) ListMembers(_ context.Context, orgID string) ([]model.Member, error) {
	s.m.Lock()
	defer s.m.Unlock()
	o, err := s.org(orgID)
	if err != nil {
		return nil, err
	}
	return slices.Clone(o.Members), nil
}

func (s *Store) org(orgID string) (*Organization, error) {
	for i := range s.data.Organizations {
		if o := &s.data.Organizations[i]; o.ID == orgID {
			return o, nil
		}
	}
	return nil, fmt.Errorf("organization %q: %w", orgID, backend.ErrNotFound)
}

func newSecret() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return "ac_" + hex.EncodeToString(b), nil
}

func copyView(v *model.View) *model.View {
	c := *v
	c.Nodes = copyNodes(v.Nodes)
	c.ExternalNodes = copyNodes(v.ExternalNodes)
	c.Relations = slices.Clone(v.Relations)
	return &c
}

func copyNodes(nodes []model.Node) []model.Node {
	c := slices.Clone(nodes)
	for i := range c {
		if p := c[i].Position; p != nil {
			p2 := *p
			c[i].Position = &p2
		}
	}
	return c
}

func copyData(d Data) Data {
	c := Data{Models: slices.Clone(d.Models)}
	for i := range d.Views {
		c.Views = append(c.Views, *copyView(&d.Views[i]))
	}
	for _, o := range d.Organizations {
		o.Members = slices.Clone(o.Members)
		o.Keys = slices.Clone(o.Keys)
		c.Organizations = append(c.Organizations, o)
	}
	return c
}
