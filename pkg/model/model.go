// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

// package model contains the architecture model types shared by the layout, rendering and canvas packages.
//
// A model is authored server-side and is read-only here, except for node positions
// which change when a user drags a node on the canvas.
//
// A [View] is one C4 diagram (context, container or component) containing internal nodes,
// external nodes and the relations between them.
package model

import (
	"fmt"
	"time"
)

// Point is a position in canvas pixels.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// IsZero is true for the origin, which the backend uses to mean "never positioned".
func (p Point) IsZero() bool { return p.X == 0 && p.Y == 0 }

// Node is one architectural element in a view.
type Node struct {
	ID          string   `json:"id"`                    // ID is unique within the internal and external nodes of a view.
	Type        NodeType `json:"type"`                  // Type selects shape, size and annotation.
	Name        string   `json:"name"`                  // Name is the display name.
	Description string   `json:"description,omitempty"` // Description is shown clamped to 2 lines.
	Technology  string   `json:"technology,omitempty"`  // Technology label, e.g. "Go" or "PostgreSQL".
	Position    *Point   `json:"position,omitempty"`    // Position is the persisted top-left corner, if any.
	ViewID      string   `json:"viewId,omitempty"`      // ViewID of the owning view, if any.
}

// Positioned is true if the node has a persisted, non-zero position.
func (n *Node) Positioned() bool { return n.Position != nil && !n.Position.IsZero() }

// Relation is a directed, labeled connection between two nodes.
type Relation struct {
	ID          string `json:"id,omitempty"`
	SourceID    string `json:"sourceId"`
	TargetID    string `json:"targetId"`
	Description string `json:"description,omitempty"`
	Technology  string `json:"technology,omitempty"`
}

// View is a named diagram over a subset of the model.
type View struct {
	ID            string     `json:"id"`
	ProjectID     string     `json:"projectId,omitempty"`
	Type          ViewType   `json:"type"`
	Name          string     `json:"name"`
	Nodes         []Node     `json:"nodes"`                 // Nodes inside the scope of the view.
	ExternalNodes []Node     `json:"externalNodes"`         // ExternalNodes are outside the scope, drawn outside the group wrapper.
	Relations     []Relation `json:"relations"`             // Relations between any nodes of the view.
	ContainerID   string     `json:"containerId,omitempty"` // ContainerID scopes container and component views to a parent.
}

// Summary of the view.
func (v *View) Summary() ViewSummary { return ViewSummary{ID: v.ID, Type: v.Type, Name: v.Name} }

// Positioned is true if every node in the view has a persisted position.
// A view with no nodes is not positioned.
func (v *View) Positioned() bool {
	if len(v.Nodes)+len(v.ExternalNodes) == 0 {
		return false
	}
	for _, nodes := range [][]Node{v.Nodes, v.ExternalNodes} {
		for i := range nodes {
			if !nodes[i].Positioned() {
				return false
			}
		}
	}
	return true
}

// Node returns the node with id, internal or external, or nil.
func (v *View) Node(id string) *Node {
	for _, nodes := range [][]Node{v.Nodes, v.ExternalNodes} {
		for i := range nodes {
			if nodes[i].ID == id {
				return &nodes[i]
			}
		}
	}
	return nil
}

// Validate checks that node IDs are unique across internal and external nodes.
// Relations with dangling references are legal, they are not rendered.
func (v *View) Validate() error {
	seen := map[string]bool{}
	for _, nodes := range [][]Node{v.Nodes, v.ExternalNodes} {
		for _, n := range nodes {
			if n.ID == "" {
				return fmt.Errorf("view %q: node with empty id", v.ID)
			}
			if seen[n.ID] {
				return fmt.Errorf("view %q: duplicate node id %q", v.ID, n.ID)
			}
			seen[n.ID] = true
		}
	}
	return nil
}

// ViewSummary identifies a view without its contents.
type ViewSummary struct {
	ID   string   `json:"id"`
	Type ViewType `json:"type"`
	Name string   `json:"name"`
}

// Member of an organization.
type Member struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Email  string `json:"email,omitempty"`
	Role   Role   `json:"role"`
}

// APIKey is the visible projection of a project API key, without the secret.
type APIKey struct {
	ID         string     `json:"id"`
	MemberID   string     `json:"memberId"`
	Name       string     `json:"name,omitempty"`
	Prefix     string     `json:"prefix,omitempty"` // Prefix of the secret, safe to display.
	CreatedAt  time.Time  `json:"createdAt"`
	LastUsedAt *time.Time `json:"lastUsedAt,omitempty"`
}

// APIKeyWithSecret is returned only once, when the key is created.
type APIKeyWithSecret struct {
	APIKey `json:",inline"`
	Secret string `json:"secret"`
}

// Info describes the architecture model of a project.
type Info struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
}
