/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package outline

import (
	"bufio"
	"regexp"
	"strings"
)

// Parse parses an outline text into a structured Outline.
// Supported syntax (minimal):
// - Section headings:
//   - Lines starting with "#" or "Section:" introduce a new section. The rest of the line is the title.
//
// - Elements: KIND: text, where KIND is one of text, heading, button, image,
//   card, form, nav, navigation, hero (case-insensitive).
//   - Continuation lines indented by 2+ spaces are appended to the previous element.
//
// - Tags: @tag-name annotations anywhere in an element line.
// - Notes: lines starting with ';' are ItemNote and skipped by Scaffold.
// Blank lines are separators and not represented as items.
func Parse(input string) (Outline, []Error) {
	o := Outline{Sections: []Section{}}
	var errs []Error

	scanner := bufio.NewScanner(strings.NewReader(input))
	lineNo := 0
	currentSection := Section{}
	var lastItem *Item

	// Patterns
	reSection := regexp.MustCompile(`^(#+)\s*(.*)$`)
	reSectionAlt := regexp.MustCompile(`^(?i)\s*Section:\s*(.+)$`)
	reElement := regexp.MustCompile(`^(?i)\s*(text|heading|button|image|card|form|nav|navigation|hero)\s*:\s*(.*)$`)
	reTag := regexp.MustCompile(`(?i)@([a-z0-9_\-]+)`) // tags like @tag-name

	extractTags := func(s string) []string {
		found := reTag.FindAllStringSubmatch(s, -1)
		if len(found) == 0 {
			return nil
		}
		m := map[string]struct{}{}
		for _, f := range found {
			if len(f) > 1 {
				t := strings.ToLower(strings.TrimSpace(f[1]))
				if t != "" {
					m[t] = struct{}{}
				}
			}
		}
		if len(m) == 0 {
			return nil
		}
		out := make([]string, 0, len(m))
		for k := range m {
			out = append(out, k)
		}
		return out
	}

	flushSection := func() {
		if strings.TrimSpace(currentSection.Title) != "" || len(currentSection.Items) > 0 {
			o.Sections = append(o.Sections, currentSection)
		}
	}

	for scanner.Scan() {
		lineNo++
		raw := scanner.Text()
		line := strings.TrimRight(raw, "\r\n")

		// Continuation line (indented) -> append to last element
		if strings.HasPrefix(line, "  ") && lastItem != nil && lastItem.Kind == ItemElement {
			cont := strings.TrimSpace(line)
			if cont != "" {
				lastItem.Text += "\n" + cont
				// Extract any tags from continuation and merge
				if tags := extractTags(cont); len(tags) > 0 {
					m := map[string]struct{}{}
					for _, t := range lastItem.Tags {
						m[t] = struct{}{}
					}
					for _, t := range tags {
						m[t] = struct{}{}
					}
					merged := make([]string, 0, len(m))
					for k := range m {
						merged = append(merged, k)
					}
					lastItem.Tags = merged
				}
			}
			continue
		}

		trim := strings.TrimSpace(line)
		if trim == "" {
			lastItem = nil
			continue
		}

		// Section heading
		if m := reSection.FindStringSubmatch(trim); m != nil {
			flushSection()
			currentSection = Section{Title: strings.TrimSpace(m[2])}
			lastItem = nil
			continue
		}
		if m := reSectionAlt.FindStringSubmatch(trim); m != nil {
			flushSection()
			currentSection = Section{Title: strings.TrimSpace(m[1])}
			lastItem = nil
			continue
		}

		// Note line
		if strings.HasPrefix(trim, ";") {
			currentSection.Items = append(currentSection.Items, Item{Kind: ItemNote, Text: strings.TrimSpace(strings.TrimPrefix(trim, ";")), LineNo: lineNo})
			lastItem = nil
			continue
		}

		// KIND: text
		if m := reElement.FindStringSubmatch(trim); m != nil {
			label := strings.ToUpper(strings.TrimSpace(m[1]))
			text := strings.TrimSpace(m[2])
			tags := extractTags(text)
			it := Item{Kind: ItemElement, Label: label, Text: text, Tags: tags, LineNo: lineNo}
			currentSection.Items = append(currentSection.Items, it)
			lastItem = &currentSection.Items[len(currentSection.Items)-1]
			continue
		}

		// If we reach here and we have no section yet, start an implicit one
		if len(o.Sections) == 0 && strings.TrimSpace(currentSection.Title) == "" && len(currentSection.Items) == 0 {
			currentSection.Title = "Untitled"
		}
		// Otherwise treat as unknown, accumulate as plain text to avoid data loss
		currentSection.Items = append(currentSection.Items, Item{Kind: ItemUnknown, Text: trim, Tags: extractTags(trim), LineNo: lineNo})
		lastItem = &currentSection.Items[len(currentSection.Items)-1]
	}
	// Append last section
	flushSection()

	if err := scanner.Err(); err != nil {
		errs = append(errs, Error{Line: lineNo, Column: 1, Message: err.Error()})
	}
	return o, errs
}
