/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"pageforge/internal/geometry"
	"pageforge/internal/tree"
)

const (
	ManifestFileName = "page.json"
	BackupsDirName   = "backups"

	// DocumentSchemaVersion is embedded in every manifest; bump on breaking changes.
	DocumentSchemaVersion = 1
)

// Standard subfolders created alongside the manifest.
var standardSubDirs = []string{
	"assets",
	"exports",
	BackupsDirName,
}

// Document is the canonical on-disk representation of a page design:
// the canvas extent plus the flat node list (the tree is encoded via parentId/order).
type Document struct {
	SchemaVersion int           `json:"schemaVersion"`
	Name          string        `json:"name"`
	Canvas        geometry.Size `json:"canvas"`
	Nodes         []tree.Node   `json:"nodes"`
}

// DocumentHandle keeps track of the document state loaded/saved from disk.
// Root is the document directory containing page.json and subfolders.
type DocumentHandle struct {
	Root         string
	ManifestPath string
	Document     Document
}

// InitDocument creates a new document directory at root (creating it if it doesn't exist),
// scaffolds the standard subfolders, and writes the given manifest file transactionally.
func InitDocument(root string, doc Document) (*DocumentHandle, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("root path is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create document root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(root, d), 0o755); err != nil {
			return nil, fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	if doc.SchemaVersion == 0 {
		doc.SchemaVersion = DocumentSchemaVersion
	}
	dh := &DocumentHandle{
		Root:         root,
		ManifestPath: filepath.Join(root, ManifestFileName),
		Document:     doc,
	}
	if err := Save(dh); err != nil {
		return nil, err
	}
	return dh, nil
}

// Open loads an existing document from the given root directory.
// If the current manifest cannot be read, parsed, or validated, it will attempt the last backup.
func Open(root string) (*DocumentHandle, error) {
	mpath := filepath.Join(root, ManifestFileName)
	b, err := os.ReadFile(mpath)
	if err != nil {
		doc, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("open manifest: %w; backup attempt: %v", err, berr)
		}
		return &DocumentHandle{Root: root, ManifestPath: mpath, Document: *doc}, nil
	}
	doc, perr := parseAndValidate(b)
	if perr != nil {
		bdoc, berr := openFromLatestBackup(root)
		if berr != nil {
			return nil, fmt.Errorf("parse manifest: %w; backup attempt: %v", perr, berr)
		}
		return &DocumentHandle{Root: root, ManifestPath: mpath, Document: *bdoc}, nil
	}
	return &DocumentHandle{Root: root, ManifestPath: mpath, Document: *doc}, nil
}

// Save writes the current DocumentHandle.Document to disk with transactional semantics
// and a timestamped backup of the previous manifest (if present).
// The manifest is validated against the document schema before anything touches disk.
func Save(dh *DocumentHandle) error {
	if dh == nil {
		return errors.New("nil DocumentHandle")
	}
	if dh.Root == "" || dh.ManifestPath == "" {
		return errors.New("invalid DocumentHandle: missing paths")
	}
	data, err := json.MarshalIndent(dh.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')
	if err := ValidateDocumentJSON(data); err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}

	bdir := filepath.Join(dh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return fmt.Errorf("ensure backups dir: %w", err)
	}

	// If a current manifest exists, copy it to a timestamped backup before replacing
	if _, statErr := os.Stat(dh.ManifestPath); statErr == nil {
		stamp := time.Now().Format("20060102-150405")
		bname := fmt.Sprintf("%s.%s.bak", ManifestFileName, stamp)
		bpath := filepath.Join(bdir, bname)
		if cerr := copyFile(dh.ManifestPath, bpath); cerr != nil {
			return fmt.Errorf("backup current manifest: %w", cerr)
		}
	}

	// Transactional write: to temp file in same directory, then rename over target
	dir := filepath.Dir(dh.ManifestPath)
	temp := filepath.Join(dir, fmt.Sprintf(".%s.tmp-%d-%d", ManifestFileName, os.Getpid(), rand.Int()))
	if werr := writeFileSync(temp, data); werr != nil {
		return fmt.Errorf("write temp manifest: %w", werr)
	}
	// On Windows, replace by removing destination first if needed
	if _, err := os.Stat(dh.ManifestPath); err == nil {
		_ = os.Remove(dh.ManifestPath)
	}
	if rerr := os.Rename(temp, dh.ManifestPath); rerr != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace manifest: %w", rerr)
	}
	return nil
}

// SaveAs writes the manifest to a new root folder, scaffolding structure if needed, and updates the handle.
func SaveAs(dh *DocumentHandle, newRoot string) error {
	if dh == nil {
		return errors.New("nil DocumentHandle")
	}
	if newRoot == "" {
		return errors.New("new root is empty")
	}
	if err := os.MkdirAll(newRoot, 0o755); err != nil {
		return fmt.Errorf("create new root: %w", err)
	}
	for _, d := range standardSubDirs {
		if err := os.MkdirAll(filepath.Join(newRoot, d), 0o755); err != nil {
			return fmt.Errorf("create subdir %s: %w", d, err)
		}
	}
	dh.Root = newRoot
	dh.ManifestPath = filepath.Join(newRoot, ManifestFileName)
	return Save(dh)
}

func parseAndValidate(b []byte) (*Document, error) {
	if err := ValidateDocumentJSON(b); err != nil {
		return nil, err
	}
	var d Document
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// AutosaveCrashSnapshot writes the in-memory document to a timestamped file
// in the backups folder without touching the main manifest. It is called from
// the panic handler, so it must not assume a healthy handle.
func AutosaveCrashSnapshot(dh *DocumentHandle) (string, error) {
	if dh == nil || dh.Root == "" {
		return "", errors.New("no document to snapshot")
	}
	data, err := json.MarshalIndent(dh.Document, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal crash snapshot: %w", err)
	}
	bdir := filepath.Join(dh.Root, BackupsDirName)
	if err := os.MkdirAll(bdir, 0o755); err != nil {
		return "", fmt.Errorf("ensure backups dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(bdir, fmt.Sprintf("%s.crash-%s.json", ManifestFileName, stamp))
	if err := writeFileSync(path, append(data, '\n')); err != nil {
		return "", fmt.Errorf("write crash snapshot: %w", err)
	}
	return path, nil
}

// writeFileSync writes data to a file, ensures it is flushed to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	if err := f.Sync(); err != nil {
		return err
	}
	return nil
}

// copyFile copies a file from src to dst (overwrites dst if exists).
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	if err := df.Sync(); err != nil {
		return err
	}
	return nil
}

// openFromLatestBackup walks backups newest-first and returns the first one
// that still parses and validates.
func openFromLatestBackup(root string) (*Document, error) {
	bdir := filepath.Join(root, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	var candidates []string
	for _, e := range ents {
		name := e.Name()
		if strings.HasPrefix(name, ManifestFileName+".") && strings.HasSuffix(name, ".bak") {
			candidates = append(candidates, filepath.Join(bdir, name))
		}
	}
	if len(candidates) == 0 {
		return nil, errors.New("no backups found")
	}
	sort.Strings(candidates) // timestamp in name yields lexicographic order
	var lastErr error
	for i := len(candidates) - 1; i >= 0; i-- {
		b, rerr := os.ReadFile(candidates[i])
		if rerr != nil {
			lastErr = rerr
			continue
		}
		d, perr := parseAndValidate(b)
		if perr != nil {
			lastErr = perr
			continue
		}
		return d, nil
	}
	return nil, fmt.Errorf("no usable backup: %w", lastErr)
}
