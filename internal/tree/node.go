/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package tree

// This file defines the node data model for the canvas component tree.
// A node is one placed visual element; parent/child relationships are id
// references, never nested ownership, so reparenting and traversal are
// map lookups rather than structural surgery.

import (
	"github.com/google/uuid"

	"pageforge/internal/geometry"
)

// NodeType is the closed set of placeable element kinds. The type selects
// default geometry and which props are meaningful; prop validity itself is
// the renderer's concern, not the tree's.
type NodeType string

const (
	TypeContainer  NodeType = "container"
	TypeText       NodeType = "text"
	TypeButton     NodeType = "button"
	TypeImage      NodeType = "image"
	TypeHero       NodeType = "hero"
	TypeCard       NodeType = "card"
	TypeForm       NodeType = "form"
	TypeNavigation NodeType = "navigation"
)

// ValidType reports whether t is one of the known node types.
func ValidType(t NodeType) bool {
	switch t {
	case TypeContainer, TypeText, TypeButton, TypeImage, TypeHero, TypeCard, TypeForm, TypeNavigation:
		return true
	}
	return false
}

// IsContainer reports whether nodes of type t may hold children and
// therefore act as drop zones.
func (t NodeType) IsContainer() bool {
	switch t {
	case TypeContainer, TypeHero, TypeCard, TypeForm, TypeNavigation:
		return true
	case TypeText, TypeButton, TypeImage:
		return false
	}
	return false
}

// DefaultSize returns the design-unit size a freshly dropped node of type t
// starts with.
func DefaultSize(t NodeType) geometry.Size {
	switch t {
	case TypeContainer:
		return geometry.Size{Width: 400, Height: 300}
	case TypeText:
		return geometry.Size{Width: 200, Height: 40}
	case TypeButton:
		return geometry.Size{Width: 120, Height: 40}
	case TypeImage:
		return geometry.Size{Width: 240, Height: 180}
	case TypeHero:
		return geometry.Size{Width: 800, Height: 400}
	case TypeCard:
		return geometry.Size{Width: 300, Height: 200}
	case TypeForm:
		return geometry.Size{Width: 360, Height: 320}
	case TypeNavigation:
		return geometry.Size{Width: 800, Height: 60}
	}
	return geometry.Size{Width: 100, Height: 100}
}

// DefaultProps returns the starting semantic props for a node of type t.
func DefaultProps(t NodeType) map[string]string {
	switch t {
	case TypeContainer:
		return map[string]string{}
	case TypeText:
		return map[string]string{"content": "Text"}
	case TypeButton:
		return map[string]string{"content": "Button", "href": ""}
	case TypeImage:
		return map[string]string{"src": "", "alt": ""}
	case TypeHero:
		return map[string]string{"content": "Hero headline"}
	case TypeCard:
		return map[string]string{"content": "Card"}
	case TypeForm:
		return map[string]string{"action": ""}
	case TypeNavigation:
		return map[string]string{"content": "Navigation"}
	}
	return map[string]string{}
}

// Override is a per-breakpoint partial prop/style map. Keys absent from an
// override fall through to the next lower breakpoint or the node base maps.
type Override struct {
	Props map[string]string `json:"props,omitempty"`
	Style map[string]string `json:"style,omitempty"`
}

// Node is one placed element on the canvas.
// Position and Size are absolute canvas coordinates in design units.
// ParentID empty means the node is a root attached directly to the canvas.
// Order defines the sibling sequence under the same parent and is kept
// contiguous and unique by the tree.
type Node struct {
	ID          string              `json:"id"`
	Type        NodeType            `json:"type"`
	Name        string              `json:"name"`
	Props       map[string]string   `json:"props,omitempty"`
	Style       map[string]string   `json:"style,omitempty"`
	Position    geometry.Pt         `json:"position"`
	Size        geometry.Size       `json:"size"`
	ParentID    string              `json:"parentId,omitempty"`
	Order       int                 `json:"order"`
	Overrides   map[string]Override `json:"responsiveOverrides,omitempty"`
	WorkflowRef string              `json:"workflowRef,omitempty"`
}

// NewNode builds a node of the given type with a fresh id, default size and
// props, placed at pos. Order is assigned by the tree on Add.
func NewNode(t NodeType, pos geometry.Pt) *Node {
	return &Node{
		ID:       uuid.NewString(),
		Type:     t,
		Name:     string(t),
		Props:    DefaultProps(t),
		Style:    map[string]string{},
		Position: pos,
		Size:     DefaultSize(t),
	}
}

// Rect returns the node's canvas-space bounding rectangle.
func (n *Node) Rect() geometry.Rect {
	return geometry.Rect{X: n.Position.X, Y: n.Position.Y, Width: n.Size.Width, Height: n.Size.Height}
}

// Connected reports whether the node references an automation workflow.
func (n *Node) Connected() bool { return n.WorkflowRef != "" }

// Clone returns a deep copy of the node. Map fields are copied so the clone
// shares no mutable state with the original.
func (n *Node) Clone() Node {
	c := *n
	c.Props = cloneMap(n.Props)
	c.Style = cloneMap(n.Style)
	if n.Overrides != nil {
		c.Overrides = make(map[string]Override, len(n.Overrides))
		for bp, ov := range n.Overrides {
			c.Overrides[bp] = Override{Props: cloneMap(ov.Props), Style: cloneMap(ov.Style)}
		}
	}
	return c
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
