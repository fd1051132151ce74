/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package responsive

import (
	"reflect"
	"testing"

	"pageforge/internal/tree"
)

func nodeWithOverrides() tree.Node {
	return tree.Node{
		ID:    "n1",
		Type:  tree.TypeText,
		Props: map[string]string{"content": "base"},
		Style: map[string]string{"color": "black", "padding": "8"},
		Overrides: map[string]tree.Override{
			"tablet":  {Style: map[string]string{"padding": "16"}},
			"desktop": {Props: map[string]string{"content": "desktop"}, Style: map[string]string{"color": "blue"}},
			"wide":    {Style: map[string]string{"padding": "32"}},
		},
	}
}

func TestResolveMobileUsesBaseOnly(t *testing.T) {
	v := Resolve(nodeWithOverrides(), Mobile)
	if v.Props["content"] != "base" || v.Style["color"] != "black" || v.Style["padding"] != "8" {
		t.Fatalf("mobile must see base values only: %+v", v)
	}
}

func TestResolveCascadesUpward(t *testing.T) {
	n := nodeWithOverrides()

	v := Resolve(n, Tablet)
	if v.Style["padding"] != "16" || v.Style["color"] != "black" {
		t.Fatalf("tablet cascade wrong: %+v", v.Style)
	}

	v = Resolve(n, Desktop)
	if v.Style["padding"] != "16" {
		t.Fatalf("tablet override must remain visible at desktop: %+v", v.Style)
	}
	if v.Style["color"] != "blue" || v.Props["content"] != "desktop" {
		t.Fatalf("desktop override must win: %+v", v)
	}

	v = Resolve(n, Wide)
	if v.Style["padding"] != "32" || v.Style["color"] != "blue" {
		t.Fatalf("wide must layer on top of desktop: %+v", v.Style)
	}
}

func TestResolveIgnoresHigherBreakpoints(t *testing.T) {
	n := nodeWithOverrides()
	for _, b := range []Breakpoint{Mobile, Tablet} {
		v := Resolve(n, b)
		if v.Style["color"] == "blue" {
			t.Fatalf("desktop override leaked down to %s", b)
		}
	}
}

func TestResolveDeterministic(t *testing.T) {
	n := nodeWithOverrides()
	a := Resolve(n, Desktop)
	b := Resolve(n, Desktop)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("resolve not deterministic: %+v vs %+v", a, b)
	}
}

func TestResolveReturnsCopies(t *testing.T) {
	n := nodeWithOverrides()
	v := Resolve(n, Mobile)
	v.Props["content"] = "mutated"
	v.Style["color"] = "mutated"
	if n.Props["content"] != "base" || n.Style["color"] != "black" {
		t.Fatalf("resolve leaked mutable references to the node")
	}
}

func TestParseBreakpoint(t *testing.T) {
	cases := map[string]Breakpoint{
		"mobile": Mobile, "tablet": Tablet, "desktop": Desktop, "wide": Wide, "bogus": Mobile,
	}
	for in, want := range cases {
		if got := ParseBreakpoint(in); got != want {
			t.Fatalf("parse %q: got %v want %v", in, got, want)
		}
	}
}
