/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package tree is the authoritative in-memory store for canvas nodes. It is
// the sole mutator: collaborators read through query methods that return
// copies and write through the typed API. The engine is single-threaded and
// cooperatively scheduled, so the tree takes no locks; every mutation runs
// to completion before the next event is processed and either fully succeeds
// or has no effect.
package tree

import (
	"fmt"
	"log/slog"
	"sort"

	applog "pageforge/internal/log"

	"pageforge/internal/geometry"
)

// OrderAppend passed as an order to Add/Reparent appends the node after the
// last existing sibling.
const OrderAppend = -1

// Tree owns all nodes exclusively, keyed by id in an arena map.
type Tree struct {
	nodes map[string]*Node
	// usedIDs holds every id ever added this session; ids are not reused
	// even after deletion.
	usedIDs map[string]struct{}
	log     *slog.Logger
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{
		nodes:   make(map[string]*Node),
		usedIDs: make(map[string]struct{}),
		log:     applog.WithComponent("tree"),
	}
}

// Len returns the number of live nodes.
func (t *Tree) Len() int { return len(t.nodes) }

// Get returns a copy of the node with the given id.
func (t *Tree) Get(id string) (Node, bool) {
	n, ok := t.nodes[id]
	if !ok {
		return Node{}, false
	}
	return n.Clone(), true
}

// Exists reports whether id names a live node.
func (t *Tree) Exists(id string) bool {
	_, ok := t.nodes[id]
	return ok
}

// Add inserts the node. The id must be unused for the whole session and the
// parent must exist (or be empty for a canvas root). If node.Order is
// OrderAppend the node goes after the last sibling; otherwise it is inserted
// at that position and siblings are renumbered to stay contiguous.
func (t *Tree) Add(n *Node) error {
	if n == nil || n.ID == "" {
		return fmt.Errorf("add: %w: empty id", ErrNotFound)
	}
	if _, seen := t.usedIDs[n.ID]; seen {
		return fmt.Errorf("add %s: %w", n.ID, ErrDuplicateID)
	}
	if n.ParentID != "" {
		if _, ok := t.nodes[n.ParentID]; !ok {
			return fmt.Errorf("add %s under %s: %w", n.ID, n.ParentID, ErrInvalidParent)
		}
	}
	siblings := t.siblings(n.ParentID)
	pos := n.Order
	if pos == OrderAppend || pos > len(siblings) {
		pos = len(siblings)
	}
	if pos < 0 {
		pos = 0
	}
	// Store a private copy; a caller retaining n must not hold a live
	// reference into the tree.
	c := n.Clone()
	t.nodes[c.ID] = &c
	t.usedIDs[c.ID] = struct{}{}
	siblings = append(siblings[:pos], append([]*Node{&c}, siblings[pos:]...)...)
	renumber(siblings)
	t.log.Debug("node added",
		slog.String("id", c.ID),
		slog.String("type", string(c.Type)),
		slog.String("parent", c.ParentID),
		slog.Int("order", c.Order))
	return nil
}

// Remove deletes the node. Its children are re-parented to the deleted
// node's parent, spliced in at the deleted node's sibling position with
// their relative order preserved. Accidental deletions therefore never
// silently destroy subtrees. Removing an unknown id is a benign no-op.
func (t *Tree) Remove(id string) {
	victim, ok := t.nodes[id]
	if !ok {
		t.log.Debug("remove of unknown id ignored", slog.String("id", id))
		return
	}
	children := t.siblings(id)
	siblings := t.siblings(victim.ParentID)
	pos := len(siblings)
	for i, s := range siblings {
		if s.ID == id {
			pos = i
			break
		}
	}
	delete(t.nodes, id)
	merged := make([]*Node, 0, len(siblings)-1+len(children))
	merged = append(merged, siblings[:pos]...)
	for _, c := range children {
		c.ParentID = victim.ParentID
		merged = append(merged, c)
	}
	if pos+1 <= len(siblings) {
		merged = append(merged, siblings[pos+1:]...)
	}
	renumber(merged)
	t.log.Debug("node removed",
		slog.String("id", id),
		slog.Int("reparented_children", len(children)))
}

// Patch carries the partial fields accepted by Update. Nil pointers and nil
// maps leave the corresponding field untouched; prop and style entries are
// shallow-merged into the existing maps. The same shape is used for manual
// edits and AI-supplied payloads.
type Patch struct {
	Name        *string
	Props       map[string]string
	Style       map[string]string
	Position    *geometry.Pt
	Size        *geometry.Size
	WorkflowRef *string
	Overrides   map[string]Override
}

// Update shallow-merges the patch into the node. An unknown id is treated
// as a benign race (the node may have been deleted while an edit was in
// flight) and logged rather than surfaced.
func (t *Tree) Update(id string, p Patch) {
	n, ok := t.nodes[id]
	if !ok {
		t.log.Debug("update of unknown id ignored", slog.String("id", id))
		return
	}
	if p.Name != nil {
		n.Name = *p.Name
	}
	if p.Position != nil {
		n.Position = *p.Position
	}
	if p.Size != nil {
		n.Size = *p.Size
	}
	if p.WorkflowRef != nil {
		n.WorkflowRef = *p.WorkflowRef
	}
	if len(p.Props) > 0 {
		if n.Props == nil {
			n.Props = make(map[string]string, len(p.Props))
		}
		for k, v := range p.Props {
			n.Props[k] = v
		}
	}
	if len(p.Style) > 0 {
		if n.Style == nil {
			n.Style = make(map[string]string, len(p.Style))
		}
		for k, v := range p.Style {
			n.Style[k] = v
		}
	}
	if len(p.Overrides) > 0 {
		if n.Overrides == nil {
			n.Overrides = make(map[string]Override, len(p.Overrides))
		}
		for bp, ov := range p.Overrides {
			cur := n.Overrides[bp]
			if len(ov.Props) > 0 {
				if cur.Props == nil {
					cur.Props = make(map[string]string, len(ov.Props))
				}
				for k, v := range ov.Props {
					cur.Props[k] = v
				}
			}
			if len(ov.Style) > 0 {
				if cur.Style == nil {
					cur.Style = make(map[string]string, len(ov.Style))
				}
				for k, v := range ov.Style {
					cur.Style[k] = v
				}
			}
			n.Overrides[bp] = cur
		}
	}
}

// Reparent moves the node under newParentID at sibling position newOrder.
// It fails with ErrCycle when newParentID is the node itself or one of its
// descendants, with ErrInvalidParent when the parent does not exist, and
// with ErrNotFound for an unknown id. On any failure the tree is unchanged.
func (t *Tree) Reparent(id, newParentID string, newOrder int) error {
	n, ok := t.nodes[id]
	if !ok {
		return fmt.Errorf("reparent %s: %w", id, ErrNotFound)
	}
	if newParentID != "" {
		if _, ok := t.nodes[newParentID]; !ok {
			return fmt.Errorf("reparent %s under %s: %w", id, newParentID, ErrInvalidParent)
		}
	}
	if t.WouldCycle(id, newParentID) {
		return fmt.Errorf("reparent %s under %s: %w", id, newParentID, ErrCycle)
	}

	old := t.siblings(n.ParentID)
	remaining := old[:0:0]
	for _, s := range old {
		if s.ID != id {
			remaining = append(remaining, s)
		}
	}
	// Same-parent move: the node was just taken out of this very list.
	var dest []*Node
	if newParentID == n.ParentID {
		dest = remaining
	} else {
		renumber(remaining)
		dest = t.siblings(newParentID)
	}
	pos := newOrder
	if pos == OrderAppend || pos > len(dest) {
		pos = len(dest)
	}
	if pos < 0 {
		pos = 0
	}
	n.ParentID = newParentID
	dest = append(dest[:pos], append([]*Node{n}, dest[pos:]...)...)
	renumber(dest)
	t.log.Debug("node reparented",
		slog.String("id", id),
		slog.String("parent", newParentID),
		slog.Int("order", n.Order))
	return nil
}

// Duplicate deep-clones the node under a fresh id with the position offset
// by a fixed 20,20 delta, appended after its original's siblings. The copy
// is shallow: children of the original are not duplicated.
func (t *Tree) Duplicate(id string) (Node, error) {
	src, ok := t.nodes[id]
	if !ok {
		return Node{}, fmt.Errorf("duplicate %s: %w", id, ErrNotFound)
	}
	c := src.Clone()
	c.ID = newUniqueID(t.usedIDs)
	c.Position.X += 20
	c.Position.Y += 20
	c.Order = OrderAppend
	if err := t.Add(&c); err != nil {
		return Node{}, err
	}
	out, _ := t.Get(c.ID)
	return out, nil
}

// WouldCycle reports whether attaching id under candidateParentID would make
// id its own ancestor. Exposed so interactive callers can validate a move
// before attempting it.
func (t *Tree) WouldCycle(id, candidateParentID string) bool {
	for cur := candidateParentID; cur != ""; {
		if cur == id {
			return true
		}
		p, ok := t.nodes[cur]
		if !ok {
			return false
		}
		cur = p.ParentID
	}
	return false
}

// ChildrenOf returns copies of the children of parentID ordered by ascending
// sibling order.
func (t *Tree) ChildrenOf(parentID string) []Node {
	sibs := t.siblings(parentID)
	out := make([]Node, len(sibs))
	for i, s := range sibs {
		out[i] = s.Clone()
	}
	return out
}

// Roots returns copies of all canvas-root nodes in sibling order.
func (t *Tree) Roots() []Node { return t.ChildrenOf("") }

// EachRect calls f with every live node's id and canvas rectangle. Used by
// the virtualizer and drag hit-testing without exposing mutable nodes.
func (t *Tree) EachRect(f func(id string, r geometry.Rect)) {
	for id, n := range t.nodes {
		f(id, n.Rect())
	}
}

// siblings returns the live child pointers of parentID sorted by order.
func (t *Tree) siblings(parentID string) []*Node {
	var out []*Node
	for _, n := range t.nodes {
		if n.ParentID == parentID {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Order != out[j].Order {
			return out[i].Order < out[j].Order
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// renumber rewrites Order to the contiguous sequence 0..len-1.
func renumber(siblings []*Node) {
	for i, s := range siblings {
		s.Order = i
	}
}
