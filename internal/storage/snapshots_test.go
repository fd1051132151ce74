/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestAutosaveRoundTrip(t *testing.T) {
	root := filepath.Join(t.TempDir(), "doc")
	dh, err := InitDocument(root, sampleDocument())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	ctx := context.Background()
	blob := []byte(`{"nodes":[]}`)
	ts := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	if err := SaveAutosave(ctx, dh, blob, ts); err != nil {
		t.Fatalf("SaveAutosave: %v", err)
	}
	got, gotTS, err := GetLatestAutosave(ctx, dh)
	if err != nil {
		t.Fatalf("GetLatestAutosave: %v", err)
	}
	if !bytes.Equal(got, blob) {
		t.Fatalf("blob mismatch: got %q", got)
	}
	if !gotTS.Equal(ts) {
		t.Fatalf("ts = %v, want %v", gotTS, ts)
	}
}

func TestGetLatestAutosaveEmpty(t *testing.T) {
	root := filepath.Join(t.TempDir(), "doc")
	dh, err := InitDocument(root, sampleDocument())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	blob, ts, err := GetLatestAutosave(context.Background(), dh)
	if err != nil {
		t.Fatalf("GetLatestAutosave: %v", err)
	}
	if blob != nil || !ts.IsZero() {
		t.Fatalf("expected no autosave, got blob=%v ts=%v", blob, ts)
	}
}

func TestPruneOldAutosaves(t *testing.T) {
	root := filepath.Join(t.TempDir(), "doc")
	dh, err := InitDocument(root, sampleDocument())
	if err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		if err := SaveAutosave(ctx, dh, []byte{byte(i)}, base.Add(time.Duration(i)*time.Minute)); err != nil {
			t.Fatalf("SaveAutosave %d: %v", i, err)
		}
	}
	deleted, err := PruneOldAutosaves(ctx, dh, 2)
	if err != nil {
		t.Fatalf("PruneOldAutosaves: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("deleted = %d, want 3", deleted)
	}
	list, err := ListAutosaves(ctx, dh, 10)
	if err != nil {
		t.Fatalf("ListAutosaves: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	// Newest first.
	if list[0].TS.Before(list[1].TS) {
		t.Fatalf("autosaves not sorted newest first: %v, %v", list[0].TS, list[1].TS)
	}
}

func TestDetectAndRebuildIndexHealthy(t *testing.T) {
	root := filepath.Join(t.TempDir(), "doc")
	if _, err := InitDocument(root, sampleDocument()); err != nil {
		t.Fatalf("InitDocument: %v", err)
	}
	if db, err := InitOrOpenIndex(root); err != nil {
		t.Fatalf("InitOrOpenIndex: %v", err)
	} else {
		_ = db.Close()
	}
	rebuilt, err := DetectAndRebuildIndex(context.Background(), root)
	if err != nil {
		t.Fatalf("DetectAndRebuildIndex: %v", err)
	}
	if rebuilt {
		t.Fatalf("healthy database should not be rebuilt")
	}
}
