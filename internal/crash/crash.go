/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic into a crash report, a recovery snapshot of
// the open document, and a clean non-zero exit.
package crash

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"time"

	applog "pageforge/internal/log"
	"pageforge/internal/storage"
	"pageforge/internal/telemetry"
	"pageforge/internal/version"
)

// exitFn is swapped out in tests so Recover can be exercised without
// terminating the process.
var exitFn = os.Exit

// Recover is meant to run as a deferred function at the top of a command:
//
//	defer func() { crash.Recover(dh) }()
//
// On panic it logs the stack, writes a report file, snapshots the open
// document next to its backups, prints where the report went, and exits 2.
func Recover(dh *storage.DocumentHandle) {
	r := recover()
	if r == nil {
		return
	}
	l := applog.WithComponent("crash")
	stack := debug.Stack()
	l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

	reportPath, err := writeReport(dh, r, stack)
	if err != nil {
		l.Error("crash report write failed", slog.Any("err", err))
	}
	if dh != nil {
		if path, err := storage.AutosaveCrashSnapshot(dh); err != nil {
			l.Error("crash snapshot failed", slog.Any("err", err))
		} else {
			l.Info("crash snapshot written", slog.String("path", path))
		}
	}

	fmt.Fprintf(os.Stderr,
		"A fatal error occurred. A crash report was saved to: %s\nVersion: %s\nOS/Arch: %s/%s\n",
		reportPath, version.String(), runtime.GOOS, runtime.GOARCH)
	exitFn(2)
}

// writeReport renders and stores the crash report. With a document open it
// lands in the document's backups dir, otherwise in the system temp dir.
func writeReport(dh *storage.DocumentHandle, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if dh != nil && dh.Root != "" {
		dir = filepath.Join(dh.Root, storage.BackupsDirName)
		_ = os.MkdirAll(dir, 0o755)
	}
	path := filepath.Join(dir, "crash-"+time.Now().Format("20060102-150405")+".log")

	report := renderReport(dh, panicVal, stack)
	if err := os.WriteFile(path, report, 0o644); err != nil {
		return path, err
	}
	// crash uploads are opt-in, see telemetry.FromEnv
	telemetry.UploadCrash(report)
	return path, nil
}

func renderReport(dh *storage.DocumentHandle, panicVal any, stack []byte) []byte {
	var b strings.Builder
	b.WriteString("PageForge Crash Report\n")
	fmt.Fprintf(&b, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	fmt.Fprintf(&b, "Version: %s\n", version.String())
	fmt.Fprintf(&b, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if dh != nil {
		fmt.Fprintf(&b, "Document: %s (%d nodes)\n", dh.Document.Name, len(dh.Document.Nodes))
		fmt.Fprintf(&b, "DocumentRoot: %s\n", dh.Root)
		fmt.Fprintf(&b, "Manifest: %s\n", dh.ManifestPath)
	}
	fmt.Fprintf(&b, "\nPanic: %v\n\nStack:\n%s\n", panicVal, stack)
	return []byte(b.String())
}
