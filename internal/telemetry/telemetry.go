/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package telemetry sends anonymous, opt-in usage events and crash uploads.
// Everything here is fire-and-forget: a full queue or a failed POST never
// surfaces to the caller.
package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"
	"time"

	applog "pageforge/internal/log"
	"pageforge/internal/version"
)

const (
	queueCapacity  = 64
	defaultTimeout = 1500 * time.Millisecond
)

// Config controls event and crash uploads. Telemetry stays off unless the
// user opts in AND an endpoint is configured.
//
// FromEnv reads:
//
//	PF_TELEMETRY_OPT_IN      "1"/"true"/"yes"/"on" enables metrics
//	PF_TELEMETRY_URL         endpoint for JSON usage events
//	PF_CRASH_UPLOAD_URL      endpoint for plain-text crash reports
//	PF_TELEMETRY_TIMEOUT_MS  per-request timeout (default 1500)
//	PF_TELEMETRY_DEBUG       log send attempts when set
type Config struct {
	OptIn        bool
	EventsURL    string
	CrashURL     string
	Timeout      time.Duration
	DebugLogging bool
}

// FromEnv builds a Config from PF_TELEMETRY_* environment variables.
func FromEnv() Config {
	cfg := Config{
		OptIn:        envBool("PF_TELEMETRY_OPT_IN"),
		EventsURL:    strings.TrimSpace(os.Getenv("PF_TELEMETRY_URL")),
		CrashURL:     strings.TrimSpace(os.Getenv("PF_CRASH_UPLOAD_URL")),
		Timeout:      defaultTimeout,
		DebugLogging: os.Getenv("PF_TELEMETRY_DEBUG") != "",
	}
	if raw := strings.TrimSpace(os.Getenv("PF_TELEMETRY_TIMEOUT_MS")); raw != "" {
		if ms, err := strconv.Atoi(raw); err == nil && ms > 0 {
			cfg.Timeout = time.Duration(ms) * time.Millisecond
		}
	}
	return cfg
}

func envBool(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}

// Client posts events from a background goroutine through a bounded queue.
// When the queue is full, new events are dropped rather than blocking the
// editor loop.
type Client struct {
	cfg      Config
	log      *slog.Logger
	httpc    *http.Client
	queue    chan []byte
	stopOnce sync.Once
	done     chan struct{}
}

var (
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault lazily installs the env-configured default client.
func InitDefault() {
	defaultOnce.Do(func() { NewDefault(FromEnv()) })
}

// NewDefault installs cfg as the package default client.
func NewDefault(cfg Config) {
	defaultClient = New(cfg)
}

// New starts a client and its sender goroutine.
func New(cfg Config) *Client {
	c := &Client{
		cfg:   cfg,
		log:   applog.WithComponent("telemetry"),
		httpc: &http.Client{Timeout: cfg.Timeout},
		queue: make(chan []byte, queueCapacity),
		done:  make(chan struct{}),
	}
	go func() {
		for {
			select {
			case <-c.done:
				return
			case body := <-c.queue:
				c.post(c.cfg.EventsURL, "application/json", body, "telemetry event")
			}
		}
	}()
	return c
}

// Enabled reports whether usage events would actually be sent.
func (c *Client) Enabled() bool { return c != nil && c.cfg.OptIn && c.cfg.EventsURL != "" }

// Enabled reports whether the default client would send usage events.
func Enabled() bool {
	InitDefault()
	return defaultClient.Enabled()
}

// Event enqueues a named usage event. Props are merged into the envelope and
// must contain counters only, never document content.
func (c *Client) Event(name string, props map[string]any) {
	if !c.Enabled() || name == "" {
		return
	}
	envelope := map[string]any{
		"app":     "pageforge",
		"name":    name,
		"ts":      time.Now().UTC().Format(time.RFC3339Nano),
		"version": version.String(),
		"os":      runtime.GOOS,
		"arch":    runtime.GOARCH,
	}
	for k, v := range props {
		envelope[k] = v
	}
	body, err := json.Marshal(envelope)
	if err != nil {
		return
	}
	select {
	case c.queue <- body:
	default:
		if c.cfg.DebugLogging {
			c.log.Debug("telemetry queue full, event dropped", slog.String("name", name))
		}
	}
}

// Event enqueues a named usage event on the default client.
func Event(name string, props map[string]any) { InitDefault(); defaultClient.Event(name, props) }

// Flush waits up to half a second for the queue to drain. Used on shutdown.
func (c *Client) Flush(ctx context.Context) {
	deadline := time.Now().Add(500 * time.Millisecond)
	for len(c.queue) > 0 && time.Now().Before(deadline) {
		select {
		case <-ctx.Done():
			return
		case <-time.After(25 * time.Millisecond):
		}
	}
}

// Close stops the sender goroutine. Queued events are discarded.
func (c *Client) Close() { c.stopOnce.Do(func() { close(c.done) }) }

// UploadCrash posts a serialized crash report in the background. Crash
// uploads share the opt-in flag but use their own endpoint.
func (c *Client) UploadCrash(report []byte) {
	if c == nil || !c.cfg.OptIn || c.cfg.CrashURL == "" {
		return
	}
	body := append([]byte(nil), report...)
	go c.post(c.cfg.CrashURL, "text/plain; charset=utf-8", body, "crash report")
}

// UploadCrash posts a crash report via the default client.
func UploadCrash(report []byte) { InitDefault(); defaultClient.UploadCrash(report) }

func (c *Client) post(url, contentType string, body []byte, what string) {
	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", contentType)
	resp, err := c.httpc.Do(req)
	if err != nil {
		if c.cfg.DebugLogging {
			c.log.Debug("send failed", slog.String("what", what), slog.Any("err", err))
		}
		return
	}
	_ = resp.Body.Close()
	if c.cfg.DebugLogging {
		c.log.Debug("sent", slog.String("what", what), slog.Int("status", resp.StatusCode))
	}
}
