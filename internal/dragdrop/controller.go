/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package dragdrop turns pointer and keyboard gestures into tree mutations.
// The controller is a small state machine: Idle → Dragging → (Hovering*) →
// {Dropped | Cancelled} → Idle. Leaving Dragging for any reason other than a
// successful drop performs no mutation at all.
package dragdrop

import (
	"fmt"
	"log/slog"
	"time"

	"pageforge/internal/geometry"
	applog "pageforge/internal/log"
	"pageforge/internal/tree"
)

// State of the gesture machine.
type State int

const (
	Idle State = iota
	Dragging
	Hovering // Dragging with a resolved drop target
)

func (s State) String() string {
	switch s {
	case Dragging:
		return "dragging"
	case Hovering:
		return "hovering"
	}
	return "idle"
}

// SourceKind distinguishes a palette template (creates on drop) from an
// existing canvas node (moves on drop).
type SourceKind int

const (
	SourceTemplate SourceKind = iota
	SourceNode
)

// Source describes what is being dragged.
type Source struct {
	Kind     SourceKind
	Template tree.NodeType // set for SourceTemplate
	NodeID   string        // set for SourceNode
}

// Target is the current best drop resolution. ParentID empty means the
// canvas root. Order is the sibling position the drop would land at.
type Target struct {
	ParentID string
	Order    int
	Valid    bool
}

// Action reports what a completed drop did to the tree.
type Action int

const (
	ActionNone Action = iota
	ActionAdded
	ActionMoved
)

// Result of a successful drop.
type Result struct {
	Action Action
	NodeID string
	Target Target
}

// Options tunes the controller. The zero value gets sane defaults.
type Options struct {
	// GridSize is the snap grid pitch in design units.
	GridSize float64
	// SnapEnabled applies geometry.Snap to drop and nudge positions.
	SnapEnabled bool
	// ThrottleInterval is the minimum time between drop-target
	// recomputations while dragging. Later pointer moves overwrite earlier
	// unprocessed ones, so recomputation cost is bounded regardless of
	// pointer event rate.
	ThrottleInterval time.Duration
	// Now is the clock used for throttling; tests inject their own.
	Now func() time.Time
	// GuideThreshold is the alignment-guide distance in design units.
	// Zero keeps the geometry package default.
	GuideThreshold float64
	// CanvasExtent reports the live canvas size. When set, pointer
	// positions outside the canvas rect resolve to no drop zone and the
	// gesture cancels on drop. Nil keeps the canvas root as a catch-all.
	CanvasExtent func() geometry.Size
}

// Controller interprets gestures against one tree.
type Controller struct {
	t    *tree.Tree
	opts Options
	log  *slog.Logger

	state       State
	source      Source
	pending     geometry.Pt // coalesced last pointer position
	hasPending  bool
	lastResolve time.Time
	target      Target
	guides      []geometry.GuideLine
}

// New builds a controller over t.
func New(t *tree.Tree, opts Options) *Controller {
	if opts.GridSize <= 0 {
		opts.GridSize = 10
	}
	if opts.ThrottleInterval <= 0 {
		opts.ThrottleInterval = 16 * time.Millisecond
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{t: t, opts: opts, log: applog.WithComponent("dragdrop")}
}

// State returns the current machine state.
func (c *Controller) State() State { return c.state }

// CurrentTarget returns the latest resolved drop target.
func (c *Controller) CurrentTarget() Target { return c.target }

// ActiveGuides returns the alignment guides for the latest resolved pointer
// position. Empty unless a node drag is hovering near a sibling edge or
// center.
func (c *Controller) ActiveGuides() []geometry.GuideLine { return c.guides }

// StartTemplateDrag enters Dragging with a palette template as the source.
func (c *Controller) StartTemplateDrag(t tree.NodeType) error {
	if c.state != Idle {
		return fmt.Errorf("drag already in progress (%s)", c.state)
	}
	if !tree.ValidType(t) {
		return fmt.Errorf("unknown template type %q", t)
	}
	c.begin(Source{Kind: SourceTemplate, Template: t})
	return nil
}

// StartNodeDrag enters Dragging with an existing canvas node as the source.
func (c *Controller) StartNodeDrag(id string) error {
	if c.state != Idle {
		return fmt.Errorf("drag already in progress (%s)", c.state)
	}
	if !c.t.Exists(id) {
		return fmt.Errorf("drag source %s: %w", id, tree.ErrNotFound)
	}
	c.begin(Source{Kind: SourceNode, NodeID: id})
	return nil
}

func (c *Controller) begin(s Source) {
	c.state = Dragging
	c.source = s
	c.hasPending = false
	c.lastResolve = time.Time{}
	c.target = Target{}
	c.guides = nil
	c.log.Debug("drag started", slog.Int("kind", int(s.Kind)), slog.String("node", s.NodeID))
}

// PointerMove records the pointer position. Positions arriving faster than
// ThrottleInterval overwrite the pending slot and are resolved on the next
// tick — last pointer position wins.
func (c *Controller) PointerMove(p geometry.Pt) {
	if c.state == Idle {
		return
	}
	c.pending = p
	c.hasPending = true
	now := c.opts.Now()
	if !c.lastResolve.IsZero() && now.Sub(c.lastResolve) < c.opts.ThrottleInterval {
		return
	}
	c.resolve(now)
}

func (c *Controller) resolve(now time.Time) {
	if !c.hasPending {
		return
	}
	c.lastResolve = now
	c.hasPending = false
	c.target = c.resolveTarget(c.pending)
	c.guides = c.resolveGuides(c.pending, c.target)
	if c.target.Valid {
		c.state = Hovering
	} else {
		c.state = Dragging
	}
}

// resolveGuides computes alignment guides for a node drag: the dragged node's
// rect at the pointer position against its prospective siblings and the
// target container itself. Template drags have no size yet and get none.
func (c *Controller) resolveGuides(p geometry.Pt, target Target) []geometry.GuideLine {
	if c.source.Kind != SourceNode || !target.Valid {
		return nil
	}
	n, ok := c.t.Get(c.source.NodeID)
	if !ok {
		return nil
	}
	moving := geometry.R(p.X, p.Y, n.Size.Width, n.Size.Height)
	var anchors []geometry.Anchor
	for _, ch := range c.t.ChildrenOf(target.ParentID) {
		if ch.ID == c.source.NodeID {
			continue
		}
		anchors = append(anchors, geometry.Anchor{
			Rect:   geometry.R(ch.Position.X, ch.Position.Y, ch.Size.Width, ch.Size.Height),
			Weight: 1,
		})
	}
	if target.ParentID != "" {
		if parent, ok := c.t.Get(target.ParentID); ok {
			anchors = append(anchors, geometry.Anchor{
				Rect:   geometry.R(parent.Position.X, parent.Position.Y, parent.Size.Width, parent.Size.Height),
				Weight: 2,
			})
		}
	}
	if len(anchors) == 0 {
		return nil
	}
	_, guides := geometry.AlignmentGuides(moving, anchors, geometry.GuideOptions{
		Threshold:      c.opts.GuideThreshold,
		AlignToEdges:   true,
		AlignToCenters: true,
	})
	return guides
}

// resolveTarget finds the drop zone under p: the innermost container whose
// rect contains p, or the canvas root. Points beyond the canvas extent are
// no drop zone at all. A node drag may not target itself or one of its
// descendants.
func (c *Controller) resolveTarget(p geometry.Pt) Target {
	if c.opts.CanvasExtent != nil {
		ext := c.opts.CanvasExtent()
		canvas := geometry.Rect{Width: ext.Width, Height: ext.Height}
		if !canvas.Contains(p) {
			return Target{}
		}
	}
	bestID := ""
	bestArea := 0.0
	c.t.EachRect(func(id string, r geometry.Rect) {
		if !r.Contains(p) {
			return
		}
		n, ok := c.t.Get(id)
		if !ok || !n.Type.IsContainer() {
			return
		}
		if c.source.Kind == SourceNode {
			if id == c.source.NodeID || c.t.WouldCycle(c.source.NodeID, id) {
				return
			}
		}
		area := r.Width * r.Height
		if bestID == "" || area < bestArea {
			bestID, bestArea = id, area
		}
	})
	return Target{ParentID: bestID, Order: c.orderAt(bestID, p), Valid: true}
}

// orderAt derives the sibling position from the drop Y relative to the
// vertical centers of the target's existing children. The dragged node
// itself is not counted when reordering within its current parent.
func (c *Controller) orderAt(parentID string, p geometry.Pt) int {
	order := 0
	for _, ch := range c.t.ChildrenOf(parentID) {
		if c.source.Kind == SourceNode && ch.ID == c.source.NodeID {
			continue
		}
		if p.Y > ch.Position.Y+ch.Size.Height/2 {
			order++
		}
	}
	return order
}

// Drop completes the gesture at p. A template source adds a new node; a
// node source reparents and repositions the dragged node. The drop position
// is snapped when grid snap is enabled. Without a valid target the gesture
// cancels with no mutation.
func (c *Controller) Drop(p geometry.Pt) (Result, error) {
	if c.state == Idle {
		return Result{}, fmt.Errorf("no drag in progress")
	}
	c.pending = p
	c.hasPending = true
	c.resolve(c.opts.Now())
	target := c.target
	source := c.source
	c.reset()
	if !target.Valid {
		c.log.Debug("drop outside any zone, cancelled")
		return Result{Action: ActionNone}, nil
	}

	pos := p
	if c.opts.SnapEnabled {
		pos = geometry.Snap(pos, c.opts.GridSize)
	}

	switch source.Kind {
	case SourceTemplate:
		n := tree.NewNode(source.Template, pos)
		n.ParentID = target.ParentID
		n.Order = target.Order
		if err := c.t.Add(n); err != nil {
			return Result{}, err
		}
		return Result{Action: ActionAdded, NodeID: n.ID, Target: target}, nil
	case SourceNode:
		if err := c.t.Reparent(source.NodeID, target.ParentID, target.Order); err != nil {
			return Result{}, err
		}
		c.t.Update(source.NodeID, tree.Patch{Position: &pos})
		return Result{Action: ActionMoved, NodeID: source.NodeID, Target: target}, nil
	}
	return Result{Action: ActionNone}, nil
}

// Cancel aborts the gesture (escape key, focus loss). No mutation occurs.
func (c *Controller) Cancel() {
	if c.state == Idle {
		return
	}
	c.log.Debug("drag cancelled")
	c.reset()
}

func (c *Controller) reset() {
	c.state = Idle
	c.source = Source{}
	c.hasPending = false
	c.target = Target{}
	c.guides = nil
}

// Nudge moves the node by steps of one grid unit (or one design unit when
// snapping is off) along each axis. This is the keyboard fallback and never
// touches the pointer state machine; unknown ids are the usual benign no-op.
func (c *Controller) Nudge(id string, dxSteps, dySteps int) {
	n, ok := c.t.Get(id)
	if !ok {
		c.log.Debug("nudge of unknown id ignored", slog.String("id", id))
		return
	}
	step := 1.0
	if c.opts.SnapEnabled {
		step = c.opts.GridSize
	}
	pos := geometry.Pt{
		X: n.Position.X + float64(dxSteps)*step,
		Y: n.Position.Y + float64(dySteps)*step,
	}
	c.t.Update(id, tree.Patch{Position: &pos})
}
