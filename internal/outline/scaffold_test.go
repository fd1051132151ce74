/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"testing"

	"pageforge/internal/geometry"
	"pageforge/internal/tree"
)

func TestScaffoldBuildsSectionsAndChildren(t *testing.T) {
	src := `# Hero
heading: Build pages faster
button: Get started

# Features
card: Visual editing
; skipped note
`
	o, _ := Parse(src)
	nodes := Scaffold(o, geometry.Size{Width: 1440, Height: 1024})

	// 2 sections + 2 hero children + 1 feature child; the note is dropped.
	if len(nodes) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(nodes))
	}
	hero := nodes[0]
	if hero.Type != tree.TypeContainer || hero.Name != "Hero" || hero.ParentID != "" {
		t.Fatalf("unexpected hero section: %+v", hero)
	}
	if hero.Size.Width != 1440-2*sectionMargin {
		t.Fatalf("section should span the canvas width, got %v", hero.Size.Width)
	}
	for _, ch := range nodes[1:3] {
		if ch.ParentID != hero.ID {
			t.Fatalf("hero child parent = %q", ch.ParentID)
		}
	}
	if nodes[1].Type != tree.TypeText || nodes[1].Props["text"] != "Build pages faster" {
		t.Fatalf("unexpected heading node: %+v", nodes[1])
	}
	if nodes[2].Type != tree.TypeButton {
		t.Fatalf("unexpected button node: %+v", nodes[2])
	}

	features := nodes[3]
	if features.Name != "Features" {
		t.Fatalf("unexpected second section: %+v", features)
	}
	if features.Position.Y <= hero.Position.Y+hero.Size.Height {
		t.Fatalf("sections must stack vertically: hero %v+%v, features at %v",
			hero.Position.Y, hero.Size.Height, features.Position.Y)
	}

	// Scaffolded nodes must insert cleanly into a live tree.
	tr := tree.New()
	for i := range nodes {
		n := nodes[i]
		if err := tr.Add(&n); err != nil {
			t.Fatalf("add node %d: %v", i, err)
		}
	}
	if got := len(tr.ChildrenOf(hero.ID)); got != 2 {
		t.Fatalf("expected 2 hero children in tree, got %d", got)
	}
}

func TestScaffoldEmptySectionGetsDefaultHeight(t *testing.T) {
	o, _ := Parse("# Footer\n")
	nodes := Scaffold(o, geometry.Size{Width: 1440, Height: 1024})
	if len(nodes) != 1 {
		t.Fatalf("expected one section, got %d", len(nodes))
	}
	if nodes[0].Size.Height != tree.DefaultSize(tree.TypeContainer).Height {
		t.Fatalf("empty section should fall back to the default container height, got %v", nodes[0].Size.Height)
	}
}

func TestScaffoldTagsBecomeProps(t *testing.T) {
	o, _ := Parse("# Hero\nbutton: Go @primary @wide\n")
	nodes := Scaffold(o, geometry.Size{Width: 800, Height: 600})
	if len(nodes) != 2 {
		t.Fatalf("expected 2 nodes, got %d", len(nodes))
	}
	btn := nodes[1]
	if btn.Props["tag:primary"] != "true" || btn.Props["tag:wide"] != "true" {
		t.Fatalf("tags should land in props: %+v", btn.Props)
	}
}
