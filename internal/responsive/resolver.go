/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package responsive resolves a node's effective props and style for a
// viewport breakpoint. Resolution is a mobile-first cascade: the base maps
// are overlaid with every override at or below the requested breakpoint,
// lowest first, so a higher override wins by last-write. Overrides above
// the requested breakpoint never apply. Resolve is a pure function of
// (node, breakpoint).
package responsive

import "pageforge/internal/tree"

// Breakpoint is a named viewport-size bucket. The zero value is Mobile.
type Breakpoint int

const (
	Mobile Breakpoint = iota
	Tablet
	Desktop
	Wide
)

// ordered lists breakpoints ascending; cascade order.
var ordered = [...]Breakpoint{Mobile, Tablet, Desktop, Wide}

func (b Breakpoint) String() string {
	switch b {
	case Mobile:
		return "mobile"
	case Tablet:
		return "tablet"
	case Desktop:
		return "desktop"
	case Wide:
		return "wide"
	}
	return "mobile"
}

// Breakpoints returns all breakpoints in ascending order.
func Breakpoints() []Breakpoint {
	out := make([]Breakpoint, len(ordered))
	copy(out, ordered[:])
	return out
}

// ParseBreakpoint maps a breakpoint name to its value. Unknown names fall
// back to Mobile, the safest bucket.
func ParseBreakpoint(s string) Breakpoint {
	switch s {
	case "tablet":
		return Tablet
	case "desktop":
		return Desktop
	case "wide":
		return Wide
	}
	return Mobile
}

// View is the resolved effective prop/style pair handed to the renderer.
type View struct {
	Props map[string]string
	Style map[string]string
}

// Resolve computes the effective props and style of n at breakpoint b.
// The returned maps are fresh copies; mutating them does not touch the node.
func Resolve(n tree.Node, b Breakpoint) View {
	v := View{
		Props: make(map[string]string, len(n.Props)),
		Style: make(map[string]string, len(n.Style)),
	}
	for k, val := range n.Props {
		v.Props[k] = val
	}
	for k, val := range n.Style {
		v.Style[k] = val
	}
	if len(n.Overrides) == 0 {
		return v
	}
	for _, bp := range ordered {
		if bp > b {
			break
		}
		ov, ok := n.Overrides[bp.String()]
		if !ok {
			continue
		}
		for k, val := range ov.Props {
			v.Props[k] = val
		}
		for k, val := range ov.Style {
			v.Style[k] = val
		}
	}
	return v
}
