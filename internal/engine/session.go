/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package engine owns one editing session: the component tree, its
// undo/redo history, the drag controller and the viewport virtualizer.
// Every mutation flows gesture → tree → history record → virtualizer
// invalidation; the renderer and the persistence layer only ever see
// copies. The session is single-threaded by contract: callers deliver one
// UI event at a time.
package engine

import (
	"encoding/json"
	"log/slog"
	"time"

	"pageforge/internal/dragdrop"
	"pageforge/internal/geometry"
	"pageforge/internal/history"
	applog "pageforge/internal/log"
	"pageforge/internal/responsive"
	"pageforge/internal/tree"
	"pageforge/internal/viewport"
)

// Options assembles the per-component tuning knobs.
type Options struct {
	Canvas   geometry.Size
	Drag     dragdrop.Options
	Viewport viewport.Options
	History  history.Config
	Now      func() time.Time
}

// Session is the live editing state for one document.
type Session struct {
	t    *tree.Tree
	hist *history.Manager
	virt *viewport.Virtualizer
	drag *dragdrop.Controller
	log  *slog.Logger
	now  func() time.Time
}

// RenderNode is one entry of the renderer feed: a node copy plus its
// breakpoint-resolved props and style.
type RenderNode struct {
	Node tree.Node
	View responsive.View
}

// NewSession starts an empty session on a canvas of the given size.
func NewSession(opts Options) *Session {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Canvas.Width <= 0 || opts.Canvas.Height <= 0 {
		opts.Canvas = geometry.Size{Width: 1280, Height: 800}
	}
	t := tree.New()
	virt := viewport.New(t, opts.Canvas, opts.Viewport)
	if opts.Drag.CanvasExtent == nil {
		// Drops are bounded by the auto-grown canvas.
		opts.Drag.CanvasExtent = virt.CanvasSize
	}
	s := &Session{
		t:    t,
		virt: virt,
		drag: dragdrop.New(t, opts.Drag),
		log:  applog.WithComponent("engine"),
		now:  opts.Now,
	}
	s.hist = history.NewManager(opts.History, history.Snapshot{Blob: s.encode(), TS: opts.Now()})
	return s
}

// LoadSession starts a session from a persisted snapshot.
func LoadSession(snap tree.Snapshot, canvas geometry.Size, opts Options) *Session {
	s := NewSession(Options{
		Canvas:   canvas,
		Drag:     opts.Drag,
		Viewport: opts.Viewport,
		History:  opts.History,
		Now:      opts.Now,
	})
	s.t.Restore(snap)
	s.hist = history.NewManager(opts.History, history.Snapshot{Blob: s.encode(), TS: s.now()})
	s.virt.Invalidate()
	return s
}

func (s *Session) encode() []byte {
	b, err := json.Marshal(s.t.Snapshot())
	if err != nil {
		// Snapshot marshals plain structs and string maps; this cannot fail
		// short of memory corruption.
		s.log.Error("snapshot encode failed", slog.Any("err", err))
		return []byte("{}")
	}
	return b
}

// commit records the post-mutation state and invalidates the render set.
func (s *Session) commit() {
	s.hist.Record(history.Snapshot{Blob: s.encode(), TS: s.now()})
	s.virt.Invalidate()
}

// AddNode inserts a prepared node and records history.
func (s *Session) AddNode(n *tree.Node) error {
	if err := s.t.Add(n); err != nil {
		return err
	}
	s.commit()
	return nil
}

// RemoveNode deletes a node (children re-parented) and records history.
// Unknown ids are a no-op and record nothing.
func (s *Session) RemoveNode(id string) {
	if !s.t.Exists(id) {
		return
	}
	s.t.Remove(id)
	s.commit()
}

// UpdateNode applies a partial update and records history. Unknown ids are
// swallowed without a history entry.
func (s *Session) UpdateNode(id string, p tree.Patch) {
	if !s.t.Exists(id) {
		s.log.Debug("update raced a deletion, ignored", slog.String("id", id))
		return
	}
	s.t.Update(id, p)
	s.commit()
}

// ApplyPatch is the entry point for externally supplied partial updates
// (the AI suggestion layer). It is deliberately identical to UpdateNode:
// the engine cannot distinguish an AI edit from a manual one.
func (s *Session) ApplyPatch(id string, p tree.Patch) { s.UpdateNode(id, p) }

// Reparent moves a node and records history on success.
func (s *Session) Reparent(id, newParentID string, newOrder int) error {
	if err := s.t.Reparent(id, newParentID, newOrder); err != nil {
		return err
	}
	s.commit()
	return nil
}

// Duplicate shallow-copies a node and records history.
func (s *Session) Duplicate(id string) (tree.Node, error) {
	n, err := s.t.Duplicate(id)
	if err != nil {
		return tree.Node{}, err
	}
	s.commit()
	return n, nil
}

// StartTemplateDrag begins a palette drag.
func (s *Session) StartTemplateDrag(t tree.NodeType) error { return s.drag.StartTemplateDrag(t) }

// StartNodeDrag begins moving an existing node.
func (s *Session) StartNodeDrag(id string) error { return s.drag.StartNodeDrag(id) }

// PointerMove feeds a throttled pointer position to the drag machine.
func (s *Session) PointerMove(p geometry.Pt) { s.drag.PointerMove(p) }

// DragState exposes the gesture state for UI feedback.
func (s *Session) DragState() dragdrop.State { return s.drag.State() }

// DragGuides returns the alignment guides for the current drag hover.
func (s *Session) DragGuides() []geometry.GuideLine { return s.drag.ActiveGuides() }

// Drop completes the gesture; a mutating drop records one history entry.
func (s *Session) Drop(p geometry.Pt) (dragdrop.Result, error) {
	res, err := s.drag.Drop(p)
	if err != nil {
		return res, err
	}
	if res.Action != dragdrop.ActionNone {
		s.commit()
	}
	return res, nil
}

// CancelDrag aborts the gesture with no mutation and no history entry.
func (s *Session) CancelDrag() { s.drag.Cancel() }

// Nudge moves a node one grid step via the keyboard path.
func (s *Session) Nudge(id string, dx, dy int) {
	if !s.t.Exists(id) {
		return
	}
	s.drag.Nudge(id, dx, dy)
	s.commit()
}

// Undo steps the tree back one recorded state.
func (s *Session) Undo() bool {
	snap, ok := s.hist.Undo()
	if !ok {
		s.log.Debug("nothing to undo")
		return false
	}
	s.restore(snap.Blob)
	return true
}

// Redo re-applies the most recently undone state.
func (s *Session) Redo() bool {
	snap, ok := s.hist.Redo()
	if !ok {
		s.log.Debug("nothing to redo")
		return false
	}
	s.restore(snap.Blob)
	return true
}

func (s *Session) restore(blob []byte) {
	var snap tree.Snapshot
	if err := json.Unmarshal(blob, &snap); err != nil {
		s.log.Error("history blob decode failed", slog.Any("err", err))
		return
	}
	s.t.Restore(snap)
	s.virt.Invalidate()
}

// CanUndo reports whether an undo step exists.
func (s *Session) CanUndo() bool { return s.hist.CanUndo() }

// CanRedo reports whether a redo step exists.
func (s *Session) CanRedo() bool { return s.hist.CanRedo() }

// SetViewport updates the visible window.
func (s *Session) SetViewport(vp viewport.Viewport) { s.virt.SetViewport(vp) }

// ResolveVisible returns the renderer feed for the active breakpoint: the
// virtualized node subset, each with its resolved prop/style maps.
func (s *Session) ResolveVisible(b responsive.Breakpoint) []RenderNode {
	ids := s.virt.VisibleIDs()
	out := make([]RenderNode, 0, len(ids))
	for _, id := range ids {
		n, ok := s.t.Get(id)
		if !ok {
			continue
		}
		out = append(out, RenderNode{Node: n, View: responsive.Resolve(n, b)})
	}
	return out
}

// Node returns a copy of one node.
func (s *Session) Node(id string) (tree.Node, bool) { return s.t.Get(id) }

// Children returns ordered copies of a parent's children.
func (s *Session) Children(parentID string) []tree.Node { return s.t.ChildrenOf(parentID) }

// Roots returns the ordered canvas roots.
func (s *Session) Roots() []tree.Node { return s.t.Roots() }

// WouldCycle lets the UI validate a prospective reparent before trying it.
func (s *Session) WouldCycle(id, candidateParentID string) bool {
	return s.t.WouldCycle(id, candidateParentID)
}

// DocumentSnapshot returns a complete, self-consistent copy of the tree and
// the settled canvas size for the persistence and export collaborators.
func (s *Session) DocumentSnapshot() (tree.Snapshot, geometry.Size) {
	s.virt.FlushResize()
	return s.t.Snapshot(), s.virt.CanvasSize()
}
