/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"strings"

	"pageforge/internal/geometry"
	"pageforge/internal/tree"
)

// Scaffold layout constants, in design units.
const (
	sectionMargin  = 40
	sectionPadding = 24
	itemGap        = 16
)

// Scaffold turns a parsed outline into a flat node list ready for tree.Add:
// one container per section, stacked vertically across the canvas width,
// with the section's elements stacked inside. Notes are skipped. The returned
// slice lists parents before children.
func Scaffold(o Outline, canvas geometry.Size) []tree.Node {
	var out []tree.Node
	y := float64(sectionMargin)
	width := canvas.Width - 2*sectionMargin
	if width <= 0 {
		width = 800
	}

	for _, sec := range o.Sections {
		section := tree.NewNode(tree.TypeContainer, geometry.Pt{X: sectionMargin, Y: y})
		if t := strings.TrimSpace(sec.Title); t != "" {
			section.Name = t
		}
		section.Order = tree.OrderAppend

		cursor := y + sectionPadding
		var children []tree.Node
		for _, it := range sec.Items {
			if it.Kind == ItemNote {
				continue
			}
			n := tree.NewNode(elementType(it), geometry.Pt{X: sectionMargin + sectionPadding, Y: cursor})
			n.ParentID = section.ID
			n.Order = tree.OrderAppend
			if it.Text != "" {
				n.Props["text"] = it.Text
			}
			for _, tag := range it.Tags {
				n.Props["tag:"+tag] = "true"
			}
			children = append(children, *n)
			cursor += n.Size.Height + itemGap
		}

		height := cursor - y + sectionPadding - itemGap
		if len(children) == 0 {
			height = tree.DefaultSize(tree.TypeContainer).Height
		}
		section.Size = geometry.Size{Width: width, Height: height}

		out = append(out, *section)
		out = append(out, children...)
		y += height + sectionMargin
	}
	return out
}

// elementType maps an outline label to the canvas node type. Unknown and
// unlabeled items degrade to plain text so no content is lost.
func elementType(it Item) tree.NodeType {
	switch it.Label {
	case "TEXT", "HEADING":
		return tree.TypeText
	case "BUTTON":
		return tree.TypeButton
	case "IMAGE":
		return tree.TypeImage
	case "CARD":
		return tree.TypeCard
	case "FORM":
		return tree.TypeForm
	case "NAV", "NAVIGATION":
		return tree.TypeNavigation
	case "HERO":
		return tree.TypeHero
	}
	return tree.TypeText
}
