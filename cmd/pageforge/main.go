/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"pageforge/internal/backend"
	"pageforge/internal/config"
	"pageforge/internal/crash"
	"pageforge/internal/export"
	"pageforge/internal/geometry"
	"pageforge/internal/kit"
	applog "pageforge/internal/log"
	"pageforge/internal/outline"
	"pageforge/internal/responsive"
	"pageforge/internal/storage"
	"pageforge/internal/telemetry"
	"pageforge/internal/version"
)

func usage() {
	fmt.Println("PageForge — visual page builder engine")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  pageforge version|-v|--version               Show version")
	fmt.Println("  pageforge init <dir> <name>                   Create a new document at <dir> with name <name>")
	fmt.Println("  pageforge open <dir>                          Open document at <dir> and print summary")
	fmt.Println("  pageforge save <dir>                          Save document at <dir> (creates backup)")
	fmt.Println("  pageforge export <dir> [web|print]            Batch-export the document (default preset: web)")
	fmt.Println("  pageforge import <dir> <outline.txt>          Scaffold sections from a text outline")
	fmt.Println("  pageforge kit export <dir> <zip>              Pack the document's component templates")
	fmt.Println("  pageforge kit install <dir> <zip>             Install a component kit into the document")
	fmt.Println("  pageforge publish <dir> <stable-id>           Publish the document to the configured backend")
	fmt.Println("  pageforge search <query>                      Search published pages on the backend")
	fmt.Println("  pageforge serve                               Run the publish backend HTTP server")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	var dh *storage.DocumentHandle
	defer func() { crash.Recover(dh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("PageForge — visual page builder engine")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init document", slog.String("root", abs), slog.String("name", name))
			doc := storage.Document{
				SchemaVersion: storage.DocumentSchemaVersion,
				Name:          name,
				Canvas:        geometry.Size{Width: 1440, Height: 1024},
			}
			h, err := storage.InitDocument(abs, doc)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			dh = h
			fmt.Println("Created document at", abs)
			return
		case "open":
			h := mustOpen(l, args)
			dh = h
			telemetry.DocumentOpened(len(h.Document.Nodes))
			fmt.Printf("Opened document: %s\n", h.Document.Name)
			fmt.Printf("Canvas: %.0fx%.0f\n", h.Document.Canvas.Width, h.Document.Canvas.Height)
			fmt.Printf("Nodes: %d\n", len(h.Document.Nodes))
			fmt.Println("Root:", h.Root)
			return
		case "save":
			h := mustOpen(l, args)
			dh = h
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			fmt.Println("Saved document and created a backup of previous manifest (if any).")
			return
		case "export":
			h := mustOpen(l, args)
			dh = h
			preset := export.PresetWeb
			if len(args) >= 4 {
				preset = export.PresetName(args[3])
			}
			l.Info("export document", slog.String("root", h.Root), slog.String("preset", string(preset)))
			if err := export.BatchExport(h, export.BatchOptions{Preset: preset}); err != nil {
				l.Error("export failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.ExportCompleted(string(preset), len(responsive.Breakpoints()))
			fmt.Printf("Exported %q for breakpoints %v under %s\n",
				h.Document.Name, responsive.Breakpoints(), filepath.Join(h.Root, "exports", string(preset)))
			return
		case "import":
			if len(args) < 4 {
				fmt.Println("import requires <dir> and <outline.txt>")
				usage()
				os.Exit(2)
			}
			h := mustOpen(l, args)
			dh = h
			src, err := os.ReadFile(args[3])
			if err != nil {
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			parsed, errs := outline.Parse(string(src))
			for _, e := range errs {
				fmt.Printf("outline %s:%d: %s\n", args[3], e.Line, e.Message)
			}
			nodes := outline.Scaffold(parsed, h.Document.Canvas)
			h.Document.Nodes = append(h.Document.Nodes, nodes...)
			if err := storage.Save(h); err != nil {
				l.Error("save after import failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.OutlineImported(len(parsed.Sections), len(nodes))
			fmt.Printf("Imported %d section(s), %d node(s) into %q\n", len(parsed.Sections), len(nodes), h.Document.Name)
			return
		case "kit":
			if len(args) < 5 {
				fmt.Println("kit requires export|install, <dir> and <zip>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[3])
			switch args[2] {
			case "export":
				if err := kit.ExportKit(abs, args[4]); err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Println("Exported component kit to", args[4])
			case "install":
				n, err := kit.InstallKit(abs, args[4])
				if err != nil {
					fmt.Println("Error:", err)
					os.Exit(1)
				}
				fmt.Printf("Installed %d template file(s)\n", n)
			default:
				fmt.Println("kit requires export or install")
				os.Exit(2)
			}
			return
		case "publish":
			if len(args) < 4 {
				fmt.Println("publish requires <dir> and <stable-id>")
				usage()
				os.Exit(2)
			}
			h := mustOpen(l, args)
			dh = h
			stableID := args[3]
			cfg, token, err := config.Load()
			if err != nil {
				l.Warn("config load failed, using defaults", slog.Any("err", err))
				cfg = config.Defaults()
			}
			cl := backend.NewClient(cfg.Backend.BaseURL, token)
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond)
			defer cancel()
			res, err := cl.Publish(ctx, stableID, h.Document)
			if err != nil {
				l.Error("publish failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.PublishCompleted(res.Version)
			fmt.Printf("Published %q as %s version %d\n", h.Document.Name, res.StableID, res.Version)
			return
		case "search":
			if len(args) < 3 {
				fmt.Println("search requires <query>")
				usage()
				os.Exit(2)
			}
			query := args[2]
			cfg, token, err := config.Load()
			if err != nil {
				l.Warn("config load failed, using defaults", slog.Any("err", err))
				cfg = config.Defaults()
			}
			cl := backend.NewClient(cfg.Backend.BaseURL, token)
			ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Backend.TimeoutMs)*time.Millisecond)
			defer cancel()
			hits, err := cl.SearchPublished(ctx, query, 25)
			if err != nil {
				l.Error("search failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, p := range hits {
				fmt.Printf("%s\tv%d\t%s\n", p.StableID, p.Version, p.Name)
			}
			fmt.Printf("%d page(s)\n", len(hits))
			return
		case "serve":
			l.Info("starting publish backend")
			if err := backend.Start(); err != nil {
				l.Error("serve failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			return
		}
	}

	usage()
}

// mustOpen opens the document at args[2] or exits with usage.
func mustOpen(l *slog.Logger, args []string) *storage.DocumentHandle {
	if len(args) < 3 {
		fmt.Printf("%s requires <dir>\n", args[1])
		usage()
		os.Exit(2)
	}
	abs, _ := filepath.Abs(args[2])
	l.Info("open document", slog.String("root", abs))
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	return h
}
