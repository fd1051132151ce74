/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dragdrop

import (
	"encoding/json"
	"testing"
	"time"

	"pageforge/internal/geometry"
	"pageforge/internal/tree"
)

// fakeClock lets tests drive the throttle deterministically.
type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time                 { return f.now }
func (f *fakeClock) advance(d time.Duration)        { f.now = f.now.Add(d) }
func newClock() *fakeClock                          { return &fakeClock{now: time.Unix(0, 0)} }
func opts(clk *fakeClock, snap bool) Options {
	return Options{GridSize: 10, SnapEnabled: snap, ThrottleInterval: 16 * time.Millisecond, Now: clk.Now}
}

func addContainer(t *testing.T, tr *tree.Tree, id string, x, y, w, h float64) {
	t.Helper()
	n := tree.NewNode(tree.TypeContainer, geometry.Pt{X: x, Y: y})
	n.ID = id
	n.Size = geometry.Size{Width: w, Height: h}
	n.Order = tree.OrderAppend
	if err := tr.Add(n); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func TestTemplateDropCreatesNodeUnderContainer(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	clk := newClock()
	c := New(tr, opts(clk, true))

	if err := c.StartTemplateDrag(tree.TypeButton); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 103, Y: 97})
	if c.State() != Hovering {
		t.Fatalf("expected Hovering after resolve, got %s", c.State())
	}
	res, err := c.Drop(geometry.Pt{X: 103, Y: 97})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionAdded || res.Target.ParentID != "c1" {
		t.Fatalf("unexpected result: %+v", res)
	}
	n, ok := tr.Get(res.NodeID)
	if !ok {
		t.Fatalf("dropped node missing")
	}
	if n.Position.X != 100 || n.Position.Y != 100 {
		t.Fatalf("position not snapped to grid: %+v", n.Position)
	}
	if n.Type != tree.TypeButton || n.Props["content"] != "Button" {
		t.Fatalf("type defaults not applied: %+v", n)
	}
	if c.State() != Idle {
		t.Fatalf("controller should return to Idle")
	}
}

func TestTemplateDropOnEmptyCanvasTargetsRoot(t *testing.T) {
	tr := tree.New()
	clk := newClock()
	c := New(tr, opts(clk, false))
	if err := c.StartTemplateDrag(tree.TypeHero); err != nil {
		t.Fatalf("start: %v", err)
	}
	res, err := c.Drop(geometry.Pt{X: 7, Y: 3})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Target.ParentID != "" {
		t.Fatalf("expected canvas root target, got %q", res.Target.ParentID)
	}
	n, _ := tr.Get(res.NodeID)
	if n.Position.X != 7 || n.Position.Y != 3 {
		t.Fatalf("snap disabled: position must be exact, got %+v", n.Position)
	}
}

func TestNodeDropReparentsAndOrders(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	addContainer(t, tr, "c2", 500, 0, 400, 400)
	a := tree.NewNode(tree.TypeText, geometry.Pt{X: 520, Y: 20})
	a.ID = "a"
	a.ParentID = "c2"
	a.Order = tree.OrderAppend
	if err := tr.Add(a); err != nil {
		t.Fatalf("add a: %v", err)
	}
	b := tree.NewNode(tree.TypeText, geometry.Pt{X: 520, Y: 200})
	b.ID = "b"
	b.ParentID = "c2"
	b.Order = tree.OrderAppend
	if err := tr.Add(b); err != nil {
		t.Fatalf("add b: %v", err)
	}

	mv := tree.NewNode(tree.TypeText, geometry.Pt{X: 10, Y: 10})
	mv.ID = "mv"
	mv.ParentID = "c1"
	mv.Order = tree.OrderAppend
	if err := tr.Add(mv); err != nil {
		t.Fatalf("add mv: %v", err)
	}

	clk := newClock()
	c := New(tr, opts(clk, false))
	if err := c.StartNodeDrag("mv"); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Drop between a (center y=40) and b (center y=220).
	res, err := c.Drop(geometry.Pt{X: 600, Y: 100})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionMoved || res.Target.ParentID != "c2" || res.Target.Order != 1 {
		t.Fatalf("unexpected result: %+v", res)
	}
	kids := tr.ChildrenOf("c2")
	if len(kids) != 3 || kids[0].ID != "a" || kids[1].ID != "mv" || kids[2].ID != "b" {
		t.Fatalf("unexpected sibling order: %+v", kids)
	}
}

func TestNodeDragNeverTargetsOwnSubtree(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "outer", 0, 0, 1000, 1000)
	addContainer(t, tr, "drag", 100, 100, 400, 400)
	if err := tr.Reparent("drag", "outer", 0); err != nil {
		t.Fatalf("setup reparent: %v", err)
	}
	addContainer(t, tr, "inner", 150, 150, 100, 100)
	if err := tr.Reparent("inner", "drag", 0); err != nil {
		t.Fatalf("setup reparent: %v", err)
	}

	clk := newClock()
	c := New(tr, opts(clk, false))
	if err := c.StartNodeDrag("drag"); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Pointer inside "inner" (and "drag"); both excluded, so target must be "outer".
	res, err := c.Drop(geometry.Pt{X: 180, Y: 180})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Target.ParentID != "outer" {
		t.Fatalf("expected outer as target, got %q", res.Target.ParentID)
	}
}

func TestCancelPerformsNoMutation(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	before, _ := json.Marshal(tr.Snapshot())

	clk := newClock()
	c := New(tr, opts(clk, true))
	if err := c.StartTemplateDrag(tree.TypeCard); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 50, Y: 50})
	c.Cancel()
	if c.State() != Idle {
		t.Fatalf("cancel should return to Idle")
	}
	after, _ := json.Marshal(tr.Snapshot())
	if string(before) != string(after) {
		t.Fatalf("cancel mutated the tree")
	}
}

func TestPointerMoveThrottleLastPositionWins(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "left", 0, 0, 100, 100)
	addContainer(t, tr, "right", 200, 0, 100, 100)

	clk := newClock()
	c := New(tr, opts(clk, false))
	if err := c.StartTemplateDrag(tree.TypeText); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 50, Y: 50}) // first move resolves immediately
	if c.CurrentTarget().ParentID != "left" {
		t.Fatalf("expected left, got %q", c.CurrentTarget().ParentID)
	}
	// Burst of moves inside the throttle window: only the slot is updated.
	c.PointerMove(geometry.Pt{X: 60, Y: 60})
	c.PointerMove(geometry.Pt{X: 250, Y: 50})
	if c.CurrentTarget().ParentID != "left" {
		t.Fatalf("throttled move must not recompute target yet")
	}
	clk.advance(20 * time.Millisecond)
	c.PointerMove(geometry.Pt{X: 250, Y: 50})
	if c.CurrentTarget().ParentID != "right" {
		t.Fatalf("after interval the last position must win, got %q", c.CurrentTarget().ParentID)
	}
}

func TestStartWhileDraggingRejected(t *testing.T) {
	tr := tree.New()
	clk := newClock()
	c := New(tr, opts(clk, false))
	if err := c.StartTemplateDrag(tree.TypeText); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := c.StartTemplateDrag(tree.TypeText); err == nil {
		t.Fatalf("second start must fail while dragging")
	}
	if err := c.StartNodeDrag("whatever"); err == nil {
		t.Fatalf("node drag must fail while dragging")
	}
}

func TestNudgeMovesByGridStep(t *testing.T) {
	tr := tree.New()
	n := tree.NewNode(tree.TypeImage, geometry.Pt{X: 40, Y: 40})
	n.ID = "img"
	n.Order = tree.OrderAppend
	if err := tr.Add(n); err != nil {
		t.Fatalf("add: %v", err)
	}

	clk := newClock()
	snapped := New(tr, opts(clk, true))
	snapped.Nudge("img", 1, -2)
	got, _ := tr.Get("img")
	if got.Position.X != 50 || got.Position.Y != 20 {
		t.Fatalf("grid nudge wrong: %+v", got.Position)
	}

	free := New(tr, opts(clk, false))
	free.Nudge("img", -1, 1)
	got, _ = tr.Get("img")
	if got.Position.X != 49 || got.Position.Y != 21 {
		t.Fatalf("unit nudge wrong: %+v", got.Position)
	}

	free.Nudge("ghost", 1, 1) // benign no-op
	if tr.Len() != 1 {
		t.Fatalf("nudge of unknown id changed the tree")
	}
}

func TestDropBeyondCanvasExtentCancels(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	clk := newClock()
	o := opts(clk, false)
	o.CanvasExtent = func() geometry.Size { return geometry.Size{Width: 500, Height: 500} }
	c := New(tr, o)

	if err := c.StartTemplateDrag(tree.TypeButton); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 650, Y: 100})
	if tgt := c.CurrentTarget(); tgt.Valid {
		t.Fatalf("pointer beyond canvas must not resolve a zone: %+v", tgt)
	}
	res, err := c.Drop(geometry.Pt{X: 650, Y: 100})
	if err != nil {
		t.Fatalf("drop: %v", err)
	}
	if res.Action != ActionNone {
		t.Fatalf("expected cancelled drop, got %+v", res)
	}
	if tr.Len() != 1 {
		t.Fatalf("cancelled drop must not mutate the tree, len=%d", tr.Len())
	}
	if c.State() != Idle {
		t.Fatalf("controller must return to Idle, got %s", c.State())
	}

	// In-bounds drops keep working with the extent set.
	if err := c.StartTemplateDrag(tree.TypeButton); err != nil {
		t.Fatalf("restart: %v", err)
	}
	res, err = c.Drop(geometry.Pt{X: 100, Y: 100})
	if err != nil || res.Action != ActionAdded {
		t.Fatalf("in-bounds drop failed: %+v %v", res, err)
	}
}
