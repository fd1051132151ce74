/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

// Alignment guides for interactive dragging. These helpers are UI-agnostic
// and deterministic so they can be unit tested and reused by any frontend.

import "math"

// GuideOptions controls which guide candidates are considered and the threshold.
type GuideOptions struct {
	// Threshold is the maximum distance (in design units) at which alignment
	// occurs. Typical UI values are 6-8 units.
	Threshold float64
	// Align to edges (left, right, top, bottom)
	AlignToEdges bool
	// Align to centers (cx, cy)
	AlignToCenters bool
}

// Anchor is a static reference rect (a sibling node or the target container).
// Weight biases selection when distances tie (higher = preferred). When
// uncertain, set Weight to 1.
type Anchor struct {
	Rect   Rect
	Weight float64
}

// GuideLine describes a visual guide generated during an alignment.
// Orientation is "vertical" or "horizontal". Kind indicates which features
// aligned: "edge" or "center". From and To denote the guide extents for
// rendering. Position is the x (vertical) or y (horizontal) coordinate.
// Values are rounded to 3 decimal places for deterministic output.
type GuideLine struct {
	Orientation string
	Kind        string
	Position    float64
	From        Pt
	To          Pt
}

// AlignmentGuides computes alignment adjustments for a moving rectangle
// against a set of anchors. It returns the aligned rectangle and any guide
// lines to render for visual feedback. Alignment happens independently in
// X and Y.
func AlignmentGuides(moving Rect, anchors []Anchor, opts GuideOptions) (Rect, []GuideLine) {
	if opts.Threshold <= 0 {
		opts.Threshold = 6
	}
	var guides []GuideLine

	// X candidates: left, centerX, right. Y: top, centerY, bottom.
	bestDX, bestDXDist, bestDXGuide := 0.0, math.Inf(1), GuideLine{}
	bestDY, bestDYDist, bestDYGuide := 0.0, math.Inf(1), GuideLine{}

	mL, mR := moving.X, moving.X+moving.Width
	mT, mB := moving.Y, moving.Y+moving.Height
	mCX, mCY := moving.X+moving.Width/2, moving.Y+moving.Height/2

	for _, a := range anchors {
		aL, aR := a.Rect.X, a.Rect.X+a.Rect.Width
		aT, aB := a.Rect.Y, a.Rect.Y+a.Rect.Height
		aCX, aCY := a.Rect.X+a.Rect.Width/2, a.Rect.Y+a.Rect.Height/2

		if opts.AlignToEdges {
			// left-to-left, right-to-right, then abutting edges
			consider(&bestDX, &bestDXDist, &bestDXGuide, mL-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXDist, &bestDXGuide, mR-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXDist, &bestDXGuide, mL-aR, opts.Threshold, a.Weight, verticalGuide(aR, moving, a.Rect, "edge"))
			consider(&bestDX, &bestDXDist, &bestDXGuide, mR-aL, opts.Threshold, a.Weight, verticalGuide(aL, moving, a.Rect, "edge"))

			consider(&bestDY, &bestDYDist, &bestDYGuide, mT-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mB-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mT-aB, opts.Threshold, a.Weight, horizontalGuide(aB, moving, a.Rect, "edge"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mB-aT, opts.Threshold, a.Weight, horizontalGuide(aT, moving, a.Rect, "edge"))
		}
		if opts.AlignToCenters {
			consider(&bestDX, &bestDXDist, &bestDXGuide, mCX-aCX, opts.Threshold, a.Weight, verticalGuide(aCX, moving, a.Rect, "center"))
			consider(&bestDY, &bestDYDist, &bestDYGuide, mCY-aCY, opts.Threshold, a.Weight, horizontalGuide(aCY, moving, a.Rect, "center"))
		}
	}

	aligned := moving
	if bestDXDist <= opts.Threshold {
		aligned.X = FloatRound(moving.X-bestDX, 3)
		guides = append(guides, bestDXGuide)
	}
	if bestDYDist <= opts.Threshold {
		aligned.Y = FloatRound(moving.Y-bestDY, 3)
		guides = append(guides, bestDYGuide)
	}
	return aligned, guides
}

func consider(bestDelta, bestDist *float64, bestGuide *GuideLine, delta, threshold, weight float64, g GuideLine) {
	dist := math.Abs(delta)
	if dist > threshold {
		return
	}
	score := dist / math.Max(1, weight)
	if score < *bestDist {
		*bestDist = dist
		*bestDelta = delta
		*bestGuide = g
	}
}

func verticalGuide(x float64, a, b Rect, kind string) GuideLine {
	minY := math.Min(a.Y, b.Y)
	maxY := math.Max(a.Y+a.Height, b.Y+b.Height)
	x = FloatRound(x, 3)
	return GuideLine{
		Orientation: "vertical",
		Kind:        kind,
		Position:    x,
		From:        Pt{X: x, Y: minY},
		To:          Pt{X: x, Y: maxY},
	}
}

func horizontalGuide(y float64, a, b Rect, kind string) GuideLine {
	minX := math.Min(a.X, b.X)
	maxX := math.Max(a.X+a.Width, b.X+b.Width)
	y = FloatRound(y, 3)
	return GuideLine{
		Orientation: "horizontal",
		Kind:        kind,
		Position:    y,
		From:        Pt{X: minX, Y: y},
		To:          Pt{X: maxX, Y: y},
	}
}
