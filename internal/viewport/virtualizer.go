/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package viewport computes the subset of nodes that must be rendered for
// the current viewport and maintains the auto-grown canvas size. Below a
// node-count threshold every node is returned; virtualization overhead is
// not worth paying for small trees.
package viewport

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"pageforge/internal/geometry"
	applog "pageforge/internal/log"
	"pageforge/internal/tree"
)

// Options tunes the virtualizer. The zero value gets sane defaults.
type Options struct {
	// Threshold is the node count below which all nodes render.
	Threshold int
	// Buffer inflates the viewport on every side so nodes do not pop in at
	// scroll boundaries.
	Buffer float64
	// ResizeDebounce is the trailing quiet period before the canvas size is
	// recomputed after mutations.
	ResizeDebounce time.Duration
	// ResizeMargin is the extra canvas space kept beyond the farthest node.
	ResizeMargin float64
}

// Viewport is the visible canvas window in design units at the current zoom.
type Viewport struct {
	Origin geometry.Pt
	Size   geometry.Size
	Zoom   float64
}

// Virtualizer caches the visible node set, recomputing it only when the
// viewport changes; node mutations invalidate the cache without computing
// anything until the next query.
type Virtualizer struct {
	t    *tree.Tree
	opts Options
	log  *slog.Logger

	mu         sync.Mutex
	vp         Viewport
	visible    []string
	stale      bool
	canvasSize geometry.Size
	resizeTm   *time.Timer
}

// New builds a virtualizer over t with the given initial canvas size.
func New(t *tree.Tree, canvas geometry.Size, opts Options) *Virtualizer {
	if opts.Threshold <= 0 {
		opts.Threshold = 20
	}
	if opts.Buffer <= 0 {
		opts.Buffer = 200
	}
	if opts.ResizeDebounce <= 0 {
		opts.ResizeDebounce = 100 * time.Millisecond
	}
	if opts.ResizeMargin <= 0 {
		opts.ResizeMargin = 100
	}
	return &Virtualizer{
		t:          t,
		opts:       opts,
		log:        applog.WithComponent("viewport"),
		vp:         Viewport{Size: canvas, Zoom: 1},
		stale:      true,
		canvasSize: canvas,
	}
}

// SetViewport moves or rescales the visible window and invalidates the
// cached visible set.
func (v *Virtualizer) SetViewport(vp Viewport) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if vp.Zoom <= 0 {
		vp.Zoom = 1
	}
	if vp == v.vp {
		return
	}
	v.vp = vp
	v.stale = true
}

// Invalidate marks the visible set dirty after a tree mutation and kicks
// the debounced canvas resize. The visible recompute happens lazily on the
// next VisibleIDs call so rapid multi-node edits stay cheap. Node rects are
// snapshotted here, on the event thread; the resize timer goroutine never
// touches the tree.
func (v *Virtualizer) Invalidate() {
	rects := v.collectRects()
	v.mu.Lock()
	v.stale = true
	if v.resizeTm != nil {
		v.resizeTm.Stop()
	}
	v.resizeTm = time.AfterFunc(v.opts.ResizeDebounce, func() { v.applyCanvasSize(rects) })
	v.mu.Unlock()
}

// VisibleIDs returns the ids of nodes whose rectangles intersect the
// buffered viewport, sorted for determinism. With Threshold or fewer nodes
// present every id is returned unconditionally.
func (v *Virtualizer) VisibleIDs() []string {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.stale {
		return append([]string(nil), v.visible...)
	}
	var ids []string
	if v.t.Len() <= v.opts.Threshold {
		v.t.EachRect(func(id string, _ geometry.Rect) { ids = append(ids, id) })
	} else {
		window := geometry.Rect{
			X:      v.vp.Origin.X - v.opts.Buffer,
			Y:      v.vp.Origin.Y - v.opts.Buffer,
			Width:  v.vp.Size.Width + 2*v.opts.Buffer,
			Height: v.vp.Size.Height + 2*v.opts.Buffer,
		}
		v.t.EachRect(func(id string, r geometry.Rect) {
			if window.Intersects(r) {
				ids = append(ids, id)
			}
		})
	}
	sort.Strings(ids)
	v.visible = ids
	v.stale = false
	return append([]string(nil), ids...)
}

// CanvasSize returns the current auto-grown canvas size.
func (v *Virtualizer) CanvasSize() geometry.Size {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.canvasSize
}

// FlushResize recomputes the canvas size immediately, bypassing the
// debounce. Persistence uses this so a snapshot always carries a settled
// size.
func (v *Virtualizer) FlushResize() {
	v.mu.Lock()
	if v.resizeTm != nil {
		v.resizeTm.Stop()
		v.resizeTm = nil
	}
	v.mu.Unlock()
	v.applyCanvasSize(v.collectRects())
}

func (v *Virtualizer) collectRects() []geometry.Rect {
	var rects []geometry.Rect
	v.t.EachRect(func(_ string, r geometry.Rect) { rects = append(rects, r) })
	return rects
}

func (v *Virtualizer) applyCanvasSize(rects []geometry.Rect) {
	v.mu.Lock()
	before := v.canvasSize
	v.canvasSize = geometry.BoundingBox(rects, v.canvasSize, v.opts.ResizeMargin)
	after := v.canvasSize
	v.mu.Unlock()
	if after != before {
		v.log.Debug("canvas auto-grown",
			slog.Float64("width", after.Width),
			slog.Float64("height", after.Height))
	}
}
