/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geometry provides pure 2D math for the canvas: grid snapping,
// zoom transforms, hit rectangles and bounding-box aggregation. Everything
// here is stateless and deterministic so it can be unit tested and reused
// across frontends. Coordinates are design units (pre-zoom) as float64.
package geometry

import "math"

// Pt is a 2D point in design units.
type Pt struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Size is a width/height pair in design units.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, Width: w, Height: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.Width, r.Y + r.Height} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.Width && p.Y <= r.Y+r.Height
}

// Intersects reports whether r and o share any area (touching edges count).
func (r Rect) Intersects(o Rect) bool {
	return r.X <= o.X+o.Width && o.X <= r.X+r.Width &&
		r.Y <= o.Y+o.Height && o.Y <= r.Y+r.Height
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width - 2*dx, Height: r.Height - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.Width, o.X+o.Width)
	maxY := math.Max(r.Y+r.Height, o.Y+o.Height)
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Snap rounds each coordinate of p to the nearest multiple of grid.
// Snapping is idempotent: Snap(Snap(p, g), g) == Snap(p, g).
// A non-positive grid leaves the point untouched.
func Snap(p Pt, grid float64) Pt {
	if grid <= 0 {
		return p
	}
	return Pt{
		X: math.Round(p.X/grid) * grid,
		Y: math.Round(p.Y/grid) * grid,
	}
}

// ToScreen converts a canvas point to screen space at the given zoom factor.
func ToScreen(p Pt, zoom float64) Pt {
	return Pt{X: p.X * zoom, Y: p.Y * zoom}
}

// ToCanvas converts a screen point back to canvas space. Inverse of ToScreen
// within floating-point tolerance. A non-positive zoom is treated as 1 so the
// transform stays invertible.
func ToCanvas(p Pt, zoom float64) Pt {
	if zoom <= 0 {
		zoom = 1
	}
	return Pt{X: p.X / zoom, Y: p.Y / zoom}
}

// BoundingBox returns the minimal canvas size containing every rect plus a
// fixed margin on the far edges, never smaller than current. Used to
// auto-grow the canvas as nodes are placed near or past its edges.
func BoundingBox(rects []Rect, current Size, margin float64) Size {
	out := current
	for _, r := range rects {
		if needW := r.X + r.Width + margin; needW > out.Width {
			out.Width = needW
		}
		if needH := r.Y + r.Height + margin; needH > out.Height {
			out.Height = needH
		}
	}
	return out
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
