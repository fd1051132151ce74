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
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"pageforge/internal/responsive"
	"pageforge/internal/storage"
)

// PNGOptions controls PNG export behavior.
// - Scale: output pixels per canvas unit; <= 0 means 1.
// - IncludeLabels: paint the resolved text/name inside leaf boxes.
//
//nolint:revive // clarity is preferred
type PNGOptions struct {
	Breakpoint    responsive.Breakpoint
	Scale         float64
	IncludeLabels bool
}

// ExportDocumentPNG rasterizes the document at a breakpoint and writes a PNG at outPath.
// A relative outPath is placed under the document's exports folder.
func ExportDocumentPNG(dh *storage.DocumentHandle, outPath string, opt PNGOptions) error {
	if dh == nil {
		return fmt.Errorf("document handle is nil")
	}
	doc := dh.Document
	scale := opt.Scale
	if scale <= 0 {
		scale = 1
	}
	pixW := int(math.Round(doc.Canvas.Width * scale))
	pixH := int(math.Round(doc.Canvas.Height * scale))
	if pixW <= 0 || pixH <= 0 {
		return fmt.Errorf("canvas has no area: %gx%g", doc.Canvas.Width, doc.Canvas.Height)
	}

	img := image.NewRGBA(image.Rect(0, 0, pixW, pixH))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.RGBA{255, 255, 255, 255}}, image.Point{}, draw.Src)

	for _, it := range buildRenderList(doc, opt.Breakpoint) {
		n := it.Node
		x := int(math.Round(n.Position.X * scale))
		y := int(math.Round(n.Position.Y * scale))
		w := int(math.Round(n.Size.Width * scale))
		h := int(math.Round(n.Size.Height * scale))
		if w <= 0 || h <= 0 {
			continue
		}
		fillRect(img, x, y, x+w-1, y+h-1, toRGBA(fillColor(n, it.View)))
		strokeRect(img, x, y, x+w-1, y+h-1, toRGBA(strokeColor(it.View)))
		if opt.IncludeLabels && !n.Type.IsContainer() {
			drawLabel(img, x+4, y+14, labelText(n, it.View))
		}
	}

	if !filepath.IsAbs(outPath) {
		outPath = filepath.Join(dh.Root, "exports", outPath)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create png: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("encode png: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close png: %w", err)
	}
	return nil
}

func toRGBA(c Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A}
}

// drawLabel paints a single line of text with the fixed 7x13 face.
func drawLabel(img *image.RGBA, x, y int, s string) {
	d := font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{17, 17, 17, 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}

// strokeRect draws a 1px axis-aligned rectangle border inclusive of endpoints.
func strokeRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	for x := x0; x <= x1; x++ {
		img.SetRGBA(x, y0, col)
		img.SetRGBA(x, y1, col)
	}
	for y := y0; y <= y1; y++ {
		img.SetRGBA(x0, y, col)
		img.SetRGBA(x1, y, col)
	}
}

func fillRect(img *image.RGBA, x0, y0, x1, y1 int, col color.RGBA) {
	if x1 < x0 {
		x0, x1 = x1, x0
	}
	if y1 < y0 {
		y0, y1 = y1, y0
	}
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			img.SetRGBA(x, y, col)
		}
	}
}
