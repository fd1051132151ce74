/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package dragdrop

import (
	"testing"
	"time"

	"pageforge/internal/geometry"
	"pageforge/internal/tree"
)

func addButton(t *testing.T, tr *tree.Tree, id, parentID string, x, y, w, h float64) {
	t.Helper()
	n := tree.NewNode(tree.TypeButton, geometry.Pt{X: x, Y: y})
	n.ID = id
	n.ParentID = parentID
	n.Size = geometry.Size{Width: w, Height: h}
	n.Order = tree.OrderAppend
	if err := tr.Add(n); err != nil {
		t.Fatalf("add %s: %v", id, err)
	}
}

func TestNodeDragExposesAlignmentGuides(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	addButton(t, tr, "b1", "c1", 50, 50, 120, 40)
	addButton(t, tr, "b2", "c1", 200, 200, 120, 40)
	clk := newClock()
	c := New(tr, opts(clk, false))

	if err := c.StartNodeDrag("b2"); err != nil {
		t.Fatalf("start: %v", err)
	}
	// Hover so b2's left edge lands within threshold of b1's left edge.
	c.PointerMove(geometry.Pt{X: 53, Y: 200})
	guides := c.ActiveGuides()
	if len(guides) == 0 {
		t.Fatalf("expected alignment guides near sibling edge")
	}
	var vertAt50 bool
	for _, g := range guides {
		if g.Orientation == "vertical" && g.Position == 50 {
			vertAt50 = true
		}
	}
	if !vertAt50 {
		t.Fatalf("expected vertical guide at x=50, got %+v", guides)
	}
}

func TestGuidesClearedOnDropAndCancel(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	addButton(t, tr, "b1", "c1", 50, 50, 120, 40)
	addButton(t, tr, "b2", "c1", 200, 200, 120, 40)
	clk := newClock()
	c := New(tr, opts(clk, false))

	if err := c.StartNodeDrag("b2"); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 53, Y: 200})
	if len(c.ActiveGuides()) == 0 {
		t.Fatalf("expected guides while hovering")
	}
	c.Cancel()
	if len(c.ActiveGuides()) != 0 {
		t.Fatalf("expected guides cleared after cancel")
	}

	if err := c.StartNodeDrag("b2"); err != nil {
		t.Fatalf("restart: %v", err)
	}
	clk.advance(20 * time.Millisecond) // past throttle
	c.PointerMove(geometry.Pt{X: 53, Y: 200})
	if _, err := c.Drop(geometry.Pt{X: 53, Y: 200}); err != nil {
		t.Fatalf("drop: %v", err)
	}
	if len(c.ActiveGuides()) != 0 {
		t.Fatalf("expected guides cleared after drop")
	}
}

func TestTemplateDragHasNoGuides(t *testing.T) {
	tr := tree.New()
	addContainer(t, tr, "c1", 0, 0, 400, 400)
	addButton(t, tr, "b1", "c1", 50, 50, 120, 40)
	clk := newClock()
	c := New(tr, opts(clk, false))

	if err := c.StartTemplateDrag(tree.TypeText); err != nil {
		t.Fatalf("start: %v", err)
	}
	c.PointerMove(geometry.Pt{X: 53, Y: 52})
	if len(c.ActiveGuides()) != 0 {
		t.Fatalf("template drags have no size and should expose no guides")
	}
}
