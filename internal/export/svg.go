/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"pageforge/internal/responsive"
	"pageforge/internal/storage"
)

// SVGOptions controls SVG export behavior.
// The coordinate system matches the canvas (units); a viewBox is provided to scale.
//
//nolint:revive // clarity is preferred
type SVGOptions struct {
	Breakpoint  responsive.Breakpoint
	IncludeGrid bool
	GridSize    float64
	GridColor   Color
}

// ExportDocumentSVG writes the document as a single SVG file at outPath.
// A relative outPath is placed under the document's exports folder.
func ExportDocumentSVG(dh *storage.DocumentHandle, outPath string, opt SVGOptions) error {
	if dh == nil {
		return fmt.Errorf("document handle is nil")
	}
	doc := dh.Document
	w := doc.Canvas.Width
	h := doc.Canvas.Height

	grid := opt.GridSize
	if grid <= 0 {
		grid = 10
	}
	gridCol := opt.GridColor
	if gridCol == (Color{}) {
		gridCol = Color{R: 229, G: 231, B: 235, A: 255}
	}

	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n", w, h, w, h)
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#ffffff\"/>\n", w, h)

	if opt.IncludeGrid {
		gc := svgColor(gridCol)
		for x := grid; x < w; x += grid {
			wf("  <line x1=\"%g\" y1=\"0\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.2\"/>\n", x, x, h, gc)
		}
		for y := grid; y < h; y += grid {
			wf("  <line x1=\"0\" y1=\"%g\" x2=\"%g\" y2=\"%g\" stroke=\"%s\" stroke-width=\"0.2\"/>\n", y, w, y, gc)
		}
	}

	for _, it := range buildRenderList(doc, opt.Breakpoint) {
		n := it.Node
		fc := svgColor(fillColor(n, it.View))
		sc := svgColor(strokeColor(it.View))
		sw := strokeWidth(it.View)
		wf("  <rect id=\"%s\" x=\"%g\" y=\"%g\" width=\"%g\" height=\"%g\" fill=\"%s\" stroke=\"%s\" stroke-width=\"%g\"/>\n",
			escAttr(n.ID), n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height, fc, sc, sw)
		if !n.Type.IsContainer() {
			tx := n.Position.X + 6
			ty := n.Position.Y + 16
			wf("  <text x=\"%g\" y=\"%g\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"12\" fill=\"#111\">%s</text>\n",
				tx, ty, escText(labelText(n, it.View)))
		}
	}

	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("build svg: %w", werr)
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := os.WriteFile(outPath, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func svgColor(c Color) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func escAttr(s string) string {
	// naive escaping sufficient for our simple usage
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '"':
			out = append(out, '&', 'q', 'u', 'o', 't', ';')
		case '\n':
			out = append(out, ' ')
		case '\r':
			// skip
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}

func escText(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		ch := s[i]
		switch ch {
		case '&':
			out = append(out, '&', 'a', 'm', 'p', ';')
		case '<':
			out = append(out, '&', 'l', 't', ';')
		case '>':
			out = append(out, '&', 'g', 't', ';')
		default:
			out = append(out, ch)
		}
	}
	return string(out)
}
