// Copyright: This file is part of archcanvas, released under https://github.com/archcanvas/archcanvas/blob/main/LICENSE

package model

import (
	"encoding/json"
	"fmt"
)

// NodeType is the closed set of C4 element kinds.
// The zero value is not a valid type.
type NodeType int

const (
	Person NodeType = iota + 1
	SoftwareSystem
	ExternalSystem
	Database
	WebApplication
	Container
	Component

	numNodeTypes = iota + 1
)

// NumNodeTypes is the size of an array indexed by NodeType.
const NumNodeTypes = numNodeTypes

var nodeTypeNames = [NumNodeTypes]string{
	Person:         "PERSON",
	SoftwareSystem: "SYSTEM",
	ExternalSystem: "EXTERNAL_SYSTEM",
	Database:       "DATABASE",
	WebApplication: "WEB_APP",
	Container:      "CONTAINER",
	Component:      "COMPONENT",
}

var nodeTypeTitles = [NumNodeTypes]string{
	Person:         "Person",
	SoftwareSystem: "Software System",
	ExternalSystem: "External System",
	Database:       "Database",
	WebApplication: "Web Application",
	Container:      "Container",
	Component:      "Component",
}

// NodeTypes lists every valid node type in declaration order.
func NodeTypes() []NodeType {
	types := make([]NodeType, 0, NumNodeTypes-1)
	for t := Person; t < NumNodeTypes; t++ {
		types = append(types, t)
	}
	return types
}

// Valid is true for the declared node types.
func (t NodeType) Valid() bool { return t >= Person && t < NumNodeTypes }

// String returns the wire name, e.g. "PERSON".
func (t NodeType) String() string {
	if !t.Valid() {
		return fmt.Sprintf("NodeType(%d)", int(t))
	}
	return nodeTypeNames[t]
}

// Title is the human readable name, e.g. "Software System".
func (t NodeType) Title() string {
	if !t.Valid() {
		return t.String()
	}
	return nodeTypeTitles[t]
}

// ShowsTechnology is false for types whose annotation never includes a technology.
func (t NodeType) ShowsTechnology() bool {
	switch t {
	case Person, SoftwareSystem, ExternalSystem:
		return false
	default:
		return true
	}
}

// ParseNodeType parses a wire name.
func ParseNodeType(s string) (NodeType, error) {
	for t := Person; t < NumNodeTypes; t++ {
		if nodeTypeNames[t] == s {
			return t, nil
		}
	}
	return 0, fmt.Errorf("invalid node type: %q", s)
}

func (t NodeType) MarshalText() ([]byte, error) {
	if !t.Valid() {
		return nil, fmt.Errorf("invalid node type: %d", int(t))
	}
	return []byte(t.String()), nil
}

func (t *NodeType) UnmarshalText(b []byte) (err error) {
	*t, err = ParseNodeType(string(b))
	return err
}

// ViewType is the C4 level of a view.
type ViewType string

const (
	ContextView   ViewType = "CONTEXT"
	ContainerView ViewType = "CONTAINER"
	ComponentView ViewType = "COMPONENT"
)

func (t *ViewType) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch v := ViewType(s); v {
	case ContextView, ContainerView, ComponentView:
		*t = v
		return nil
	default:
		return fmt.Errorf("invalid view type: %q", s)
	}
}

// Role of an organization member.
type Role string

const (
	Owner       Role = "OWNER"
	Admin       Role = "ADMIN"
	Contributor Role = "CONTRIBUTOR"
)
