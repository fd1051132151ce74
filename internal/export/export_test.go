/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"pageforge/internal/geometry"
	"pageforge/internal/responsive"
	"pageforge/internal/storage"
	"pageforge/internal/tree"
)

func testHandle(t *testing.T) *storage.DocumentHandle {
	t.Helper()
	hero := tree.Node{
		ID:       "hero-1",
		Type:     tree.TypeHero,
		Name:     "Hero",
		Position: geometry.Pt{X: 0, Y: 0},
		Size:     geometry.Size{Width: 400, Height: 120},
		Order:    0,
	}
	btn := tree.Node{
		ID:       "btn-1",
		Type:     tree.TypeButton,
		Name:     "CTA",
		Props:    map[string]string{"text": "Sign up"},
		Style:    map[string]string{"background": "#3b82f6"},
		Position: geometry.Pt{X: 40, Y: 60},
		Size:     geometry.Size{Width: 120, Height: 40},
		ParentID: "hero-1",
		Order:    0,
		Overrides: map[string]tree.Override{
			"desktop": {Props: map[string]string{"text": "Sign up free"}},
		},
	}
	doc := storage.Document{
		SchemaVersion: storage.DocumentSchemaVersion,
		Name:          "Landing Page",
		Canvas:        geometry.Size{Width: 400, Height: 200},
		Nodes:         []tree.Node{hero, btn},
	}
	dh, err := storage.InitDocument(filepath.Join(t.TempDir(), "doc"), doc)
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	return dh
}

func TestExportDocumentSVG(t *testing.T) {
	dh := testHandle(t)
	if err := ExportDocumentSVG(dh, "out.svg", SVGOptions{Breakpoint: responsive.Desktop}); err != nil {
		t.Fatalf("ExportDocumentSVG: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dh.Root, "exports", "out.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	s := string(b)
	if !strings.Contains(s, `id="hero-1"`) || !strings.Contains(s, `id="btn-1"`) {
		t.Fatalf("svg missing node rects:\n%s", s)
	}
	// The desktop override must win over the base text prop.
	if !strings.Contains(s, "Sign up free") {
		t.Fatalf("svg missing resolved desktop label:\n%s", s)
	}
	if !strings.Contains(s, `fill="#3b82f6"`) {
		t.Fatalf("svg missing styled button fill:\n%s", s)
	}
}

func TestExportDocumentSVGMobileBase(t *testing.T) {
	dh := testHandle(t)
	if err := ExportDocumentSVG(dh, "m.svg", SVGOptions{Breakpoint: responsive.Mobile}); err != nil {
		t.Fatalf("ExportDocumentSVG: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dh.Root, "exports", "m.svg"))
	if err != nil {
		t.Fatalf("read svg: %v", err)
	}
	if strings.Contains(string(b), "Sign up free") {
		t.Fatalf("desktop override leaked into mobile export")
	}
}

func TestExportDocumentPNG(t *testing.T) {
	dh := testHandle(t)
	if err := ExportDocumentPNG(dh, "out.png", PNGOptions{Breakpoint: responsive.Mobile, Scale: 2, IncludeLabels: true}); err != nil {
		t.Fatalf("ExportDocumentPNG: %v", err)
	}
	f, err := os.Open(filepath.Join(dh.Root, "exports", "out.png"))
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode png: %v", err)
	}
	if img.Bounds().Dx() != 800 || img.Bounds().Dy() != 400 {
		t.Fatalf("png size = %v, want 800x400", img.Bounds())
	}
}

func TestExportDocumentPDF(t *testing.T) {
	dh := testHandle(t)
	if err := ExportDocumentPDF(dh, "out.pdf", PDFOptions{Breakpoint: responsive.Wide, IncludeLabels: true}); err != nil {
		t.Fatalf("ExportDocumentPDF: %v", err)
	}
	b, err := os.ReadFile(filepath.Join(dh.Root, "exports", "out.pdf"))
	if err != nil {
		t.Fatalf("read pdf: %v", err)
	}
	if !bytes.HasPrefix(b, []byte("%PDF")) {
		t.Fatalf("output is not a PDF (prefix %q)", b[:min(8, len(b))])
	}
}

func TestBatchExportWebPreset(t *testing.T) {
	dh := testHandle(t)
	opt := BatchOptions{
		Preset:      PresetWeb,
		Breakpoints: []responsive.Breakpoint{responsive.Mobile, responsive.Desktop},
	}
	if err := BatchExport(dh, opt); err != nil {
		t.Fatalf("BatchExport: %v", err)
	}
	for _, p := range []string{
		filepath.Join("png", "landing-page-mobile.png"),
		filepath.Join("png", "landing-page-desktop.png"),
		filepath.Join("svg", "landing-page-mobile.svg"),
		filepath.Join("svg", "landing-page-desktop.svg"),
	} {
		full := filepath.Join(dh.Root, "exports", "web", p)
		if _, err := os.Stat(full); err != nil {
			t.Fatalf("missing batch output %s: %v", p, err)
		}
	}
}

func TestBatchExportRejectsUnknownFormat(t *testing.T) {
	dh := testHandle(t)
	err := BatchExport(dh, BatchOptions{Formats: []string{"docx"}, Breakpoints: []responsive.Breakpoint{responsive.Mobile}})
	if err == nil {
		t.Fatalf("expected error for unknown format")
	}
}

func TestParseHexColor(t *testing.T) {
	cases := []struct {
		in   string
		want Color
		ok   bool
	}{
		{"#fff", Color{255, 255, 255, 255}, true},
		{"#3b82f6", Color{59, 130, 246, 255}, true},
		{"#11223344", Color{0x11, 0x22, 0x33, 0x44}, true},
		{"red", Color{}, false},
		{"#zz0000", Color{}, false},
	}
	for _, c := range cases {
		got, ok := parseHexColor(c.in)
		if ok != c.ok || got != c.want {
			t.Fatalf("parseHexColor(%q) = %v,%v want %v,%v", c.in, got, ok, c.want, c.ok)
		}
	}
}
