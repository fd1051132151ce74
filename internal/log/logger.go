/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package log configures slog for the application: a human-friendly console
// handler, an optional rotated JSON file, and helpers that tag loggers with
// the component, operation, and document they act on.
package log

import (
	"context"
	"io"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	"pageforge/internal/version"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Options controls logger initialization. FromEnv reads the same fields from:
//
//	PF_LOG_LEVEL   debug|info|warn|error (default info)
//	PF_LOG_FORMAT  console|json (default console)
//	PF_LOG_FILE    path; enables a rotated JSON log file
//	PF_LOG_SOURCE  true to include source locations
type Options struct {
	Level     string
	Format    string
	AddSource bool
	File      string
}

var (
	defaultLoggerMu sync.RWMutex
	defaultLogger   *slog.Logger
)

// L returns the shared application logger, initializing from env on first use.
func L() *slog.Logger {
	defaultLoggerMu.RLock()
	l := defaultLogger
	defaultLoggerMu.RUnlock()
	if l == nil {
		Init(FromEnv())
		defaultLoggerMu.RLock()
		l = defaultLogger
		defaultLoggerMu.RUnlock()
	}
	return l
}

// Init installs the configured logger as both the package and slog default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)

	var console slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		console = &prettyTextHandler{opts: prettyOpts{Level: lvl, AddSource: opts.AddSource}, w: os.Stderr}
	}

	h := console
	if path := strings.TrimSpace(opts.File); path != "" {
		rot := &lj.Logger{Filename: path, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		file := slog.NewJSONHandler(rot, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
		h = fanout(console, file)
	}

	logger := slog.New(h).With(
		slog.String("app", "pageforge"),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)

	defaultLoggerMu.Lock()
	defaultLogger = logger
	defaultLoggerMu.Unlock()
	slog.SetDefault(logger)
}

// FromEnv builds Options from PF_LOG_* environment variables.
func FromEnv() Options {
	return Options{
		Level:     getenv("PF_LOG_LEVEL", "info"),
		Format:    getenv("PF_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(getenv("PF_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("PF_LOG_FILE"),
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// WithComponent returns a logger tagged with the subsystem that emits it.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation tags the logger with the operation in flight.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

// WithDocument tags the logger with the document root it operates on.
func WithDocument(l *slog.Logger, root string) *slog.Logger {
	return l.With(slog.String("document", root))
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// fanout duplicates records to every handler; used for console plus file.
func fanout(handlers ...slog.Handler) slog.Handler { return &teeHandler{hs: handlers} }

type teeHandler struct{ hs []slog.Handler }

func (t *teeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.hs {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *teeHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range t.hs {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

func (t *teeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.hs))
	for i, h := range t.hs {
		next[i] = h.WithAttrs(attrs)
	}
	return &teeHandler{hs: next}
}

func (t *teeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.hs))
	for i, h := range t.hs {
		next[i] = h.WithGroup(name)
	}
	return &teeHandler{hs: next}
}

// prettyTextHandler writes one line per record for the console:
// ts LEVEL msg key=val key=val. Attrs added via WithAttrs are rendered once,
// up front, with the group prefix that was open at the time.
type prettyTextHandler struct {
	opts   prettyOpts
	w      io.Writer
	prefix string   // preformatted WithAttrs output, leading space included
	groups []string // open groups, applied to record attrs
}

type prettyOpts struct {
	Level     slog.Leveler
	AddSource bool
}

func (h *prettyTextHandler) Enabled(_ context.Context, level slog.Level) bool {
	min := slog.LevelInfo
	if h.opts.Level != nil {
		min = h.opts.Level.Level()
	}
	return level >= min
}

func (h *prettyTextHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.Grow(256)
	b.WriteString(time.Now().Format(time.RFC3339))
	b.WriteByte(' ')
	b.WriteString(levelTag(r.Level))
	b.WriteByte(' ')
	b.WriteString(r.Message)
	b.WriteString(h.prefix)

	keyPrefix := h.groupPrefix()
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, keyPrefix, a)
		return true
	})

	if h.opts.AddSource && r.PC != 0 {
		frame, _ := runtime.CallersFrames([]uintptr{r.PC}).Next()
		if frame.File != "" {
			b.WriteString(" src=")
			b.WriteString(frame.File)
			b.WriteByte(':')
			b.WriteString(strconv.Itoa(frame.Line))
		}
	}
	b.WriteByte('\n')
	_, err := io.WriteString(h.w, b.String())
	return err
}

func (h *prettyTextHandler) groupPrefix() string {
	if len(h.groups) == 0 {
		return ""
	}
	return strings.Join(h.groups, ".") + "."
}

func (h *prettyTextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	var b strings.Builder
	b.WriteString(h.prefix)
	keyPrefix := h.groupPrefix()
	for _, a := range attrs {
		appendAttr(&b, keyPrefix, a)
	}
	return &prettyTextHandler{opts: h.opts, w: h.w, prefix: b.String(), groups: h.groups}
}

func (h *prettyTextHandler) WithGroup(name string) slog.Handler {
	groups := append(append([]string(nil), h.groups...), name)
	return &prettyTextHandler{opts: h.opts, w: h.w, prefix: h.prefix, groups: groups}
}

func appendAttr(b *strings.Builder, keyPrefix string, a slog.Attr) {
	b.WriteByte(' ')
	b.WriteString(keyPrefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	b.WriteString(fmtValue(a.Value))
}

func levelTag(l slog.Level) string {
	switch {
	case l >= slog.LevelError:
		return "ERR"
	case l >= slog.LevelWarn:
		return "WRN"
	case l >= slog.LevelInfo:
		return "INF"
	default:
		return "DBG"
	}
}

func fmtValue(v slog.Value) string {
	switch v.Kind() {
	case slog.KindInt64:
		return strconv.FormatInt(v.Int64(), 10)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.FormatBool(v.Bool())
	default:
		return v.String()
	}
}
