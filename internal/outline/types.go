/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

// Outline represents a parsed page outline with sections and items.
// The text format is a quick way to scaffold a page skeleton before
// arranging it on the canvas.

type Outline struct {
	Sections []Section
}

type Section struct {
	Title string
	Items []Item
}

// ItemKind indicates the kind of an outline item.
// Element: KIND: text, where KIND names a canvas element (text, button, ...)
// Note:    lines starting with ";" are author notes and skipped by Scaffold
// Unknown: unlabeled lines, preserved as plain text items

type ItemKind int

const (
	ItemUnknown ItemKind = iota
	ItemElement
	ItemNote
)

// Item captures a single logical line (possibly with continuations) in a
// section. For Element items, Label holds the element keyword (upper-cased by
// the parser) and Text the content. Tags collects @tag annotations.

type Item struct {
	Kind   ItemKind
	Label  string
	Text   string
	Tags   []string
	LineNo int // 1-based starting line number in the source
}

// Error represents a parse error with position context.

type Error struct {
	Line    int
	Column  int
	Message string
}
