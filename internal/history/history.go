/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package history provides a linear undo/redo stack over opaque tree
// snapshots with memory and depth safeguards. Blob content is opaque to the
// manager; size is estimated as len(Blob).
package history

import (
	"sync"
	"time"
)

// Snapshot is a reversible state blob captured at TS.
type Snapshot struct {
	Blob []byte
	TS   time.Time
}

// Config controls memory and depth caps and coalescing behavior.
type Config struct {
	// MaxBytes is a soft cap over past+future; oldest past entries are
	// pruned when exceeded.
	MaxBytes int
	// MaxDepth limits the number of undoable steps kept (0 means unlimited).
	MaxDepth int
	// MinInterval coalesces records captured within the interval, replacing
	// the present instead of pushing a new undo step. Rapid drag scrubbing
	// collapses into a single step this way.
	MinInterval time.Duration
}

// Manager holds past (most-recent last), present, and future (most-recent
// undone first). Any new record after an undo discards the redo branch:
// history is strictly linear. It is safe for concurrent use.
type Manager struct {
	cfg        Config
	mu         sync.Mutex
	past       []Snapshot
	present    Snapshot
	future     []Snapshot
	lastRecord time.Time
	totalBytes int
}

// NewManager starts a history at the given initial state.
func NewManager(cfg Config, initial Snapshot) *Manager {
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 16 * 1024 * 1024 // 16 MiB
	}
	return &Manager{cfg: cfg, present: initial}
}

// Record makes s the new present. The previous present becomes undoable and
// the redo branch is discarded. Records within MinInterval of the previous
// one replace the present without adding an undo step.
func (m *Manager) Record(s Snapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.discardFutureLocked()
	if m.cfg.MinInterval > 0 && !m.lastRecord.IsZero() && s.TS.Sub(m.lastRecord) < m.cfg.MinInterval {
		m.present = s
		m.lastRecord = s.TS
		return
	}
	m.past = append(m.past, m.present)
	m.totalBytes += len(m.present.Blob)
	m.present = s
	m.lastRecord = s.TS
	m.enforceCapsLocked()
}

// discardFutureLocked drops the redo branch, returning its bytes to the
// accounting so MaxBytes pruning keeps measuring what is actually held.
func (m *Manager) discardFutureLocked() {
	for _, s := range m.future {
		m.totalBytes -= len(s.Blob)
	}
	m.future = nil
}

// Undo steps back one state. It returns the new present and false when
// there is nothing to undo.
func (m *Manager) Undo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.past) == 0 {
		return Snapshot{}, false
	}
	m.future = append(m.future, m.present)
	m.totalBytes += len(m.present.Blob)
	last := len(m.past) - 1
	m.present = m.past[last]
	m.past = m.past[:last]
	m.totalBytes -= len(m.present.Blob)
	return m.present, true
}

// Redo steps forward one previously undone state; symmetric with Undo.
func (m *Manager) Redo() (Snapshot, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.future) == 0 {
		return Snapshot{}, false
	}
	m.past = append(m.past, m.present)
	m.totalBytes += len(m.present.Blob)
	last := len(m.future) - 1
	m.present = m.future[last]
	m.future = m.future[:last]
	m.totalBytes -= len(m.present.Blob)
	return m.present, true
}

// Present returns the current state.
func (m *Manager) Present() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.present
}

// CanUndo reports whether an undo step exists.
func (m *Manager) CanUndo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.past) > 0
}

// CanRedo reports whether a redo step exists.
func (m *Manager) CanRedo() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.future) > 0
}

// Stats returns current sizes for diagnostics.
func (m *Manager) Stats() (totalBytes, pastDepth, futureDepth int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.totalBytes, len(m.past), len(m.future)
}

func (m *Manager) enforceCapsLocked() {
	if m.cfg.MaxDepth > 0 && len(m.past) > m.cfg.MaxDepth {
		toDrop := len(m.past) - m.cfg.MaxDepth
		for i := 0; i < toDrop; i++ {
			m.totalBytes -= len(m.past[i].Blob)
		}
		m.past = append([]Snapshot{}, m.past[toDrop:]...)
	}
	for m.cfg.MaxBytes > 0 && m.totalBytes > m.cfg.MaxBytes && len(m.past) > 0 {
		m.totalBytes -= len(m.past[0].Blob)
		m.past = m.past[1:]
	}
}
