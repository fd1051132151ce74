/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0
 */

package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"pageforge/internal/responsive"
	"pageforge/internal/storage"
)

// PresetName represents a named export preset.
type PresetName string

const (
	PresetWeb   PresetName = "web"
	PresetPrint PresetName = "print"
)

// BatchOptions controls batch export across formats and breakpoints.
//
// Path semantics:
//   - If OutDir is empty or relative, it will be created under <document>/exports/<preset>/.
//   - Per-format outputs land in subfolders svg/, png/, pdf/ inside OutDir,
//     named <doc>-<breakpoint>.<ext>.
//
//nolint:revive // keep fields explicit for clarity
type BatchOptions struct {
	Preset      PresetName
	Formats     []string                // allowed: pdf, png, svg; empty means preset defaults
	Breakpoints []responsive.Breakpoint // empty means all four
	Scale       float64                 // raster scale override; <= 0 means preset default
	OutDir      string
}

// BatchExport runs exports according to the given preset.
func BatchExport(dh *storage.DocumentHandle, opt BatchOptions) error {
	if dh == nil {
		return fmt.Errorf("document handle is nil")
	}

	formats := opt.Formats
	if len(formats) == 0 {
		formats = presetDefaultFormats(opt.Preset)
	}
	for i := range formats {
		formats[i] = strings.ToLower(strings.TrimSpace(formats[i]))
	}

	bps := opt.Breakpoints
	if len(bps) == 0 {
		bps = responsive.Breakpoints()
	}

	scale := opt.Scale
	if scale <= 0 {
		scale = presetScale(opt.Preset)
	}

	baseOut := opt.OutDir
	if baseOut == "" {
		baseOut = string(opt.Preset)
	}
	if !filepath.IsAbs(baseOut) {
		baseOut = filepath.Join(dh.Root, "exports", baseOut)
	}

	name := sanitizeName(dh.Document.Name)
	for _, bp := range bps {
		for _, f := range formats {
			switch f {
			case "pdf":
				out := filepath.Join(baseOut, "pdf", fmt.Sprintf("%s-%s.pdf", name, bp))
				if err := ExportDocumentPDF(dh, out, PDFOptions{Breakpoint: bp, IncludeLabels: true}); err != nil {
					return fmt.Errorf("pdf %s: %w", bp, err)
				}
			case "png":
				out := filepath.Join(baseOut, "png", fmt.Sprintf("%s-%s.png", name, bp))
				if err := ExportDocumentPNG(dh, out, PNGOptions{Breakpoint: bp, Scale: scale, IncludeLabels: true}); err != nil {
					return fmt.Errorf("png %s: %w", bp, err)
				}
			case "svg":
				out := filepath.Join(baseOut, "svg", fmt.Sprintf("%s-%s.svg", name, bp))
				if err := ExportDocumentSVG(dh, out, SVGOptions{Breakpoint: bp}); err != nil {
					return fmt.Errorf("svg %s: %w", bp, err)
				}
			default:
				return fmt.Errorf("unknown format: %s", f)
			}
		}
	}
	return nil
}

func presetDefaultFormats(p PresetName) []string {
	switch p {
	case PresetWeb:
		return []string{"png", "svg"}
	case PresetPrint:
		return []string{"pdf"}
	default:
		return []string{"svg"}
	}
}

func presetScale(p PresetName) float64 {
	switch p {
	case PresetPrint:
		return 2 // print wants denser rasters
	default:
		return 1
	}
}

func sanitizeName(s string) string {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return "document"
	}
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "document"
	}
	return b.String()
}
