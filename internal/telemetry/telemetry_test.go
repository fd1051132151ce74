/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package telemetry

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// collector is a tiny capture server for event and crash payloads.
type collector struct {
	mu      sync.Mutex
	events  [][]byte
	crashes [][]byte
	srv     *httptest.Server
}

func newCollector(t *testing.T) *collector {
	t.Helper()
	c := &collector{}
	mux := http.NewServeMux()
	mux.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		c.mu.Lock()
		c.events = append(c.events, append([]byte(nil), b...))
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/crash", func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		_ = r.Body.Close()
		c.mu.Lock()
		c.crashes = append(c.crashes, append([]byte(nil), b...))
		c.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	})
	c.srv = httptest.NewServer(mux)
	t.Cleanup(c.srv.Close)
	return c
}

func (c *collector) counts() (int, int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.events), len(c.crashes)
}

func TestEventCarriesEnvelopeFields(t *testing.T) {
	col := newCollector(t)
	c := New(Config{OptIn: true, EventsURL: col.srv.URL + "/events", CrashURL: col.srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	if !c.Enabled() {
		t.Fatalf("expected client to be enabled")
	}
	c.Event("export_completed", map[string]any{"preset": "web", "breakpoints": 4})
	c.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)

	ec, _ := col.counts()
	if ec == 0 {
		t.Fatalf("expected at least one event to be sent")
	}
	var m map[string]any
	if err := json.Unmarshal(col.events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["app"] != "pageforge" || m["name"] != "export_completed" {
		t.Fatalf("unexpected envelope: %v", m)
	}
	if m["preset"] != "web" {
		t.Fatalf("event props lost: %v", m)
	}
	if _, ok := m["ts"].(string); !ok {
		t.Fatalf("missing ts field")
	}
}

func TestCrashUpload(t *testing.T) {
	col := newCollector(t)
	c := New(Config{OptIn: true, EventsURL: col.srv.URL + "/events", CrashURL: col.srv.URL + "/crash", Timeout: 2 * time.Second})
	defer c.Close()

	c.UploadCrash([]byte("STACKTRACE"))
	time.Sleep(50 * time.Millisecond)
	if _, cc := col.counts(); cc == 0 {
		t.Fatalf("expected crash upload to be sent")
	}
}

func TestDisabledClientSendsNothing(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := New(Config{OptIn: false, EventsURL: srv.URL, CrashURL: srv.URL, Timeout: time.Second})
	defer c.Close()
	if c.Enabled() {
		t.Fatalf("expected disabled client")
	}
	c.Event("document_opened", nil)
	c.UploadCrash([]byte("ignored"))
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests when opted out")
	}

	// Enabled but nameless events are dropped too.
	c2 := New(Config{OptIn: true, EventsURL: srv.URL, Timeout: time.Second})
	defer c2.Close()
	c2.Event("", nil)
	c2.Flush(context.Background())
	time.Sleep(50 * time.Millisecond)
	if atomic.LoadInt32(&hits) != 0 {
		t.Fatalf("expected no requests for empty event name")
	}
}

func TestSendFailureIsSilent(t *testing.T) {
	// Unroutable address exercises the error/log paths without panicking.
	c := New(Config{
		OptIn:        true,
		EventsURL:    "http://127.0.0.1:1/events",
		CrashURL:     "http://127.0.0.1:1/crash",
		Timeout:      50 * time.Millisecond,
		DebugLogging: true,
	})
	defer c.Close()
	c.Event("publish_completed", map[string]any{"revision": 3})
	c.Flush(context.Background())
	c.UploadCrash([]byte("oops"))
	time.Sleep(50 * time.Millisecond)
}

func TestFromEnvAndDefaultClient(t *testing.T) {
	t.Setenv("PF_TELEMETRY_OPT_IN", "true")
	t.Setenv("PF_TELEMETRY_URL", "http://127.0.0.1:0")
	t.Setenv("PF_CRASH_UPLOAD_URL", "")
	t.Setenv("PF_TELEMETRY_TIMEOUT_MS", "100")

	cfg := FromEnv()
	if !cfg.OptIn || cfg.EventsURL == "" || cfg.Timeout != 100*time.Millisecond {
		t.Fatalf("FromEnv did not parse correctly: %+v", cfg)
	}
	NewDefault(cfg)
	if !Enabled() {
		t.Fatalf("default Enabled should be true with env config")
	}
}

func TestNamedEventsUseDefaultClient(t *testing.T) {
	col := newCollector(t)
	// Consume the lazy env init first so NewDefault below is not replaced.
	InitDefault()
	NewDefault(Config{OptIn: true, EventsURL: col.srv.URL + "/events", Timeout: time.Second})

	DocumentOpened(12)
	ExportCompleted("print", 1)
	OutlineImported(3, 9)
	PublishCompleted(7)
	defaultClient.Flush(context.Background())
	time.Sleep(100 * time.Millisecond)

	ec, _ := col.counts()
	if ec != 4 {
		t.Fatalf("expected 4 events, got %d", ec)
	}
	var m map[string]any
	if err := json.Unmarshal(col.events[0], &m); err != nil {
		t.Fatalf("bad event json: %v", err)
	}
	if m["name"] != "document_opened" || m["nodes"] != float64(12) {
		t.Fatalf("unexpected first event: %v", m)
	}
}
