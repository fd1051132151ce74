/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * Licensed under the Apache License, Version 2.0.
 */

// Package kit manages reusable component templates: named node subtrees saved
// under a document's templates directory, packable into a single zip for
// sharing between documents.
package kit

import (
	"archive/zip"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	applog "pageforge/internal/log"
	"pageforge/internal/tree"
)

// TemplatesDirName is the per-document folder holding template JSON files.
const TemplatesDirName = "templates"

const manifestName = "kit.manifest.txt"

// Template is a named, self-contained node subtree. Node ParentID values
// reference other nodes inside the template; roots have an empty ParentID.
type Template struct {
	Name  string      `json:"name"`
	Nodes []tree.Node `json:"nodes"`
}

// SaveTemplate writes the template as <docRoot>/templates/<name>.json.
// The name becomes the file name and must be a plain identifier.
func SaveTemplate(docRoot string, tpl Template) error {
	if strings.TrimSpace(docRoot) == "" {
		return errors.New("docRoot is required")
	}
	if err := validName(tpl.Name); err != nil {
		return err
	}
	if len(tpl.Nodes) == 0 {
		return errors.New("template has no nodes")
	}
	dir := filepath.Join(docRoot, TemplatesDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("ensure templates dir: %w", err)
	}
	b, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal template: %w", err)
	}
	path := filepath.Join(dir, tpl.Name+".json")
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	return nil
}

// LoadTemplate reads <docRoot>/templates/<name>.json.
func LoadTemplate(docRoot, name string) (Template, error) {
	if err := validName(name); err != nil {
		return Template{}, err
	}
	path := filepath.Join(docRoot, TemplatesDirName, name+".json")
	b, err := os.ReadFile(path)
	if err != nil {
		return Template{}, fmt.Errorf("read template: %w", err)
	}
	var tpl Template
	if err := json.Unmarshal(b, &tpl); err != nil {
		return Template{}, fmt.Errorf("parse template %s: %w", name, err)
	}
	return tpl, nil
}

// ListTemplates returns the template names found under the document's
// templates directory, sorted. A missing directory yields an empty list.
func ListTemplates(docRoot string) ([]string, error) {
	dir := filepath.Join(docRoot, TemplatesDirName)
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names, nil
}

// Instantiate deep-copies the template's nodes with fresh ids, remapping
// internal ParentID references so the copy can be added to any tree without
// id collisions. Positions are absolute canvas coordinates, so every node is
// shifted by (dx, dy); root nodes get the given parent and append ordering.
func Instantiate(tpl Template, parentID string, dx, dy float64) []tree.Node {
	ids := make(map[string]string, len(tpl.Nodes))
	for _, n := range tpl.Nodes {
		ids[n.ID] = uuid.NewString()
	}
	out := make([]tree.Node, 0, len(tpl.Nodes))
	for i := range tpl.Nodes {
		c := tpl.Nodes[i].Clone()
		c.ID = ids[tpl.Nodes[i].ID]
		c.Position.X += dx
		c.Position.Y += dy
		if mapped, ok := ids[c.ParentID]; ok {
			c.ParentID = mapped
		} else {
			c.ParentID = parentID
			c.Order = tree.OrderAppend
		}
		out = append(out, c)
	}
	return out
}

// ExportKit zips the document's templates directory into a single .zip file.
// The archive preserves the directory structure and adds a small manifest at
// the root for quick human inspection. An empty templates directory still
// produces an archive with only the manifest.
func ExportKit(docRoot string, destZipPath string) error {
	l := applog.WithOperation(applog.WithComponent("kit"), "export").With(slog.String("document", docRoot))
	if strings.TrimSpace(docRoot) == "" {
		return errors.New("docRoot is required")
	}
	if strings.TrimSpace(destZipPath) == "" {
		return errors.New("destZipPath is required")
	}
	templatesDir := filepath.Join(docRoot, TemplatesDirName)
	if _, err := os.Stat(templatesDir); os.IsNotExist(err) {
		if err := os.MkdirAll(templatesDir, 0o755); err != nil {
			return fmt.Errorf("ensure templates dir: %w", err)
		}
	}

	if err := os.MkdirAll(filepath.Dir(destZipPath), 0o755); err != nil {
		return fmt.Errorf("ensure zip dir: %w", err)
	}
	// On Windows, remove destination if present before create
	_ = os.Remove(destZipPath)

	zf, err := os.Create(destZipPath)
	if err != nil {
		return fmt.Errorf("create zip: %w", err)
	}
	defer func() { _ = zf.Close() }()
	zw := zip.NewWriter(zf)
	defer func() { _ = zw.Close() }()

	manifest := fmt.Sprintf("PageForge Component Kit\nCreated: %s\nDocument: %s\n\nContents mirror the document's /templates directory.\n",
		time.Now().Format(time.RFC3339), docRoot)
	w, err := zw.Create(manifestName)
	if err != nil {
		return fmt.Errorf("add manifest: %w", err)
	}
	if _, err := w.Write([]byte(manifest)); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}

	added := 0
	err = filepath.Walk(templatesDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(docRoot, path)
		if err != nil {
			return err
		}
		// Forward slashes inside the archive
		zipName := filepath.ToSlash(rel)
		fw, err := zw.Create(zipName)
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()
		if _, err := io.Copy(fw, f); err != nil {
			return err
		}
		added++
		return nil
	})
	if err != nil {
		l.Error("zip build failed", slog.Any("err", err))
		return fmt.Errorf("build zip: %w", err)
	}
	l.Info("component kit exported", slog.Int("files", added), slog.String("zip", destZipPath))
	return nil
}

// InstallKit extracts the given .zip kit into the document's templates
// directory. Existing files are not overwritten; if a file already exists,
// it is skipped. Returns the count of files installed (skipped files are not
// counted).
func InstallKit(docRoot string, kitZipPath string) (int, error) {
	l := applog.WithOperation(applog.WithComponent("kit"), "install").With(slog.String("document", docRoot))
	if strings.TrimSpace(docRoot) == "" {
		return 0, errors.New("docRoot is required")
	}
	if strings.TrimSpace(kitZipPath) == "" {
		return 0, errors.New("kitZipPath is required")
	}
	templatesDir := filepath.Join(docRoot, TemplatesDirName)
	if err := os.MkdirAll(templatesDir, 0o755); err != nil {
		return 0, fmt.Errorf("ensure templates dir: %w", err)
	}

	r, err := zip.OpenReader(kitZipPath)
	if err != nil {
		return 0, fmt.Errorf("open kit: %w", err)
	}
	defer func() { _ = r.Close() }()

	installed := 0
	for _, f := range r.File {
		name := f.Name
		if name == manifestName {
			continue
		}
		// Accept either paths starting with "templates/" or any other
		// structure, which gets placed under templates/.
		targetRel := name
		if !strings.HasPrefix(targetRel, TemplatesDirName+"/") {
			targetRel = filepath.ToSlash(filepath.Join(TemplatesDirName, targetRel))
		}
		targetPath := filepath.Join(docRoot, filepath.FromSlash(targetRel))
		if _, err := os.Stat(targetPath); err == nil {
			l.Warn("skip existing file", slog.String("path", targetPath))
			continue
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(targetPath, 0o755); err != nil {
				return installed, err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(targetPath), 0o755); err != nil {
			return installed, err
		}
		rc, err := f.Open()
		if err != nil {
			return installed, err
		}
		out, err := os.OpenFile(targetPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			_ = rc.Close()
			return installed, err
		}
		if _, err := io.Copy(out, rc); err != nil {
			_ = out.Close()
			_ = rc.Close()
			return installed, err
		}
		_ = out.Close()
		_ = rc.Close()
		installed++
	}
	l.Info("component kit installed", slog.Int("files", installed))
	return installed, nil
}

func validName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.New("template name is required")
	}
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
		default:
			return fmt.Errorf("invalid template name %q", name)
		}
	}
	return nil
}
