/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package export renders document manifests to SVG, PNG and PDF.
// All exporters resolve nodes at a chosen breakpoint first, so the output
// matches what the canvas shows for that device class.
package export

import (
	"sort"
	"strconv"
	"strings"

	"pageforge/internal/responsive"
	"pageforge/internal/storage"
	"pageforge/internal/tree"
)

// Color is an 8-bit RGBA color parsed from node styles.
type Color struct {
	R, G, B, A uint8
}

// renderItem is one node resolved at the export breakpoint, in paint order.
type renderItem struct {
	Node tree.Node
	View responsive.View
}

// defaultFills gives each node type a recognizable wireframe fill when the
// style carries no background of its own.
var defaultFills = map[tree.NodeType]Color{
	tree.TypeContainer:  {R: 245, G: 245, B: 245, A: 255},
	tree.TypeText:       {R: 255, G: 255, B: 255, A: 255},
	tree.TypeButton:     {R: 59, G: 130, B: 246, A: 255},
	tree.TypeImage:      {R: 209, G: 213, B: 219, A: 255},
	tree.TypeHero:       {R: 224, G: 231, B: 255, A: 255},
	tree.TypeCard:       {R: 255, G: 255, B: 255, A: 255},
	tree.TypeForm:       {R: 250, G: 250, B: 250, A: 255},
	tree.TypeNavigation: {R: 31, G: 41, B: 55, A: 255},
}

// buildRenderList resolves every node at the breakpoint and orders them for
// painting: parents before children, siblings by order.
func buildRenderList(doc storage.Document, bp responsive.Breakpoint) []renderItem {
	byParent := make(map[string][]tree.Node)
	for _, n := range doc.Nodes {
		byParent[n.ParentID] = append(byParent[n.ParentID], n)
	}
	for _, sibs := range byParent {
		sort.Slice(sibs, func(i, j int) bool {
			if sibs[i].Order != sibs[j].Order {
				return sibs[i].Order < sibs[j].Order
			}
			return sibs[i].ID < sibs[j].ID
		})
	}
	out := make([]renderItem, 0, len(doc.Nodes))
	var walk func(parentID string)
	walk = func(parentID string) {
		for _, n := range byParent[parentID] {
			out = append(out, renderItem{Node: n, View: responsive.Resolve(n, bp)})
			walk(n.ID)
		}
	}
	walk("")
	return out
}

// fillColor resolves the paint fill for a node: the resolved style's
// "background" wins, then the per-type wireframe default.
func fillColor(n tree.Node, v responsive.View) Color {
	if c, ok := parseHexColor(v.Style["background"]); ok {
		return c
	}
	if c, ok := defaultFills[n.Type]; ok {
		return c
	}
	return Color{R: 255, G: 255, B: 255, A: 255}
}

// strokeColor resolves the border color; dark gray by default.
func strokeColor(v responsive.View) Color {
	if c, ok := parseHexColor(v.Style["borderColor"]); ok {
		return c
	}
	return Color{R: 55, G: 65, B: 81, A: 255}
}

func strokeWidth(v responsive.View) float64 {
	if s := strings.TrimSpace(v.Style["borderWidth"]); s != "" {
		if f, err := strconv.ParseFloat(strings.TrimSuffix(s, "px"), 64); err == nil && f >= 0 {
			return f
		}
	}
	return 1
}

// labelText picks the text painted inside a node box: resolved text prop,
// then the user-given name, then the type.
func labelText(n tree.Node, v responsive.View) string {
	if s := strings.TrimSpace(v.Props["text"]); s != "" {
		return s
	}
	if s := strings.TrimSpace(v.Props["label"]); s != "" {
		return s
	}
	if s := strings.TrimSpace(n.Name); s != "" {
		return s
	}
	return string(n.Type)
}

// parseHexColor accepts #rgb, #rrggbb and #rrggbbaa.
func parseHexColor(s string) (Color, bool) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "#") {
		return Color{}, false
	}
	hexs := s[1:]
	switch len(hexs) {
	case 3:
		r, okR := hexNibble(hexs[0])
		g, okG := hexNibble(hexs[1])
		b, okB := hexNibble(hexs[2])
		if !okR || !okG || !okB {
			return Color{}, false
		}
		return Color{R: r * 17, G: g * 17, B: b * 17, A: 255}, true
	case 6, 8:
		v, err := strconv.ParseUint(hexs, 16, 64)
		if err != nil {
			return Color{}, false
		}
		if len(hexs) == 6 {
			return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, true
		}
		return Color{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, true
	}
	return Color{}, false
}

func hexNibble(c byte) (uint8, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
