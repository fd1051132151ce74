/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"pageforge/internal/responsive"
	"pageforge/internal/storage"
)

// PDFOptions controls PDF export behavior.
// Canvas units map 1:1 to PDF points. Vector text uses built-in Helvetica
// for portability; font embedding can be added later with TTFs.
//
//nolint:revive // keep options grouped and explicit for clarity
type PDFOptions struct {
	Breakpoint    responsive.Breakpoint
	IncludeLabels bool
}

// ExportDocumentPDF writes the document as a single-page PDF at outPath.
// A relative outPath is placed under the document's exports folder.
func ExportDocumentPDF(dh *storage.DocumentHandle, outPath string, opt PDFOptions) error {
	if dh == nil {
		return fmt.Errorf("document handle is nil")
	}
	doc := dh.Document
	w := doc.Canvas.Width
	h := doc.Canvas.Height
	if w <= 0 || h <= 0 {
		return fmt.Errorf("canvas has no area: %gx%g", w, h)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: w, Ht: h},
		OrientationStr: "",
	})
	pdf.SetTitle(fmt.Sprintf("%s — %s", doc.Name, opt.Breakpoint), false)
	pdf.SetAuthor("PageForge", false)
	pdf.SetFont("Helvetica", "", 12)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	for _, it := range buildRenderList(doc, opt.Breakpoint) {
		n := it.Node
		fc := fillColor(n, it.View)
		sc := strokeColor(it.View)
		pdf.SetFillColor(int(fc.R), int(fc.G), int(fc.B))
		pdf.SetDrawColor(int(sc.R), int(sc.G), int(sc.B))
		pdf.SetLineWidth(strokeWidth(it.View))
		pdf.Rect(n.Position.X, n.Position.Y, n.Size.Width, n.Size.Height, "FD")
		if opt.IncludeLabels && !n.Type.IsContainer() {
			pdf.SetTextColor(17, 17, 17)
			pdf.Text(n.Position.X+6, n.Position.Y+16, labelText(n, it.View))
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(outPath); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
