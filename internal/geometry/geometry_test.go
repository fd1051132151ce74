/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geometry

import (
	"math"
	"testing"
)

func TestSnapRoundsToGrid(t *testing.T) {
	p := Snap(Pt{X: 13, Y: 27}, 10)
	if p.X != 10 || p.Y != 30 {
		t.Fatalf("unexpected snap result: %+v", p)
	}
	if q := Snap(Pt{X: 15, Y: -15}, 10); q.X != 20 || q.Y != -10 {
		// math.Round ties away from zero
		t.Fatalf("unexpected tie handling: %+v", q)
	}
}

func TestSnapIdempotent(t *testing.T) {
	grids := []float64{1, 2, 5, 8, 10, 16, 25}
	points := []Pt{{0, 0}, {3.3, 7.9}, {-12.4, 99.99}, {1e6 + 0.4, -1e6 - 0.6}}
	for _, g := range grids {
		for _, p := range points {
			once := Snap(p, g)
			twice := Snap(once, g)
			if once != twice {
				t.Fatalf("snap not idempotent for p=%+v g=%v: %+v vs %+v", p, g, once, twice)
			}
		}
	}
}

func TestSnapZeroGridNoop(t *testing.T) {
	p := Pt{X: 13.7, Y: 2.1}
	if Snap(p, 0) != p {
		t.Fatalf("zero grid should leave point unchanged")
	}
}

func TestToScreenToCanvasRoundTrip(t *testing.T) {
	zooms := []float64{0.25, 0.5, 1, 1.5, 2, 4}
	p := Pt{X: 123.45, Y: -67.8}
	for _, z := range zooms {
		back := ToCanvas(ToScreen(p, z), z)
		if math.Abs(back.X-p.X) > 1e-9 || math.Abs(back.Y-p.Y) > 1e-9 {
			t.Fatalf("round trip failed at zoom %v: %+v", z, back)
		}
	}
}

func TestRectIntersects(t *testing.T) {
	a := R(0, 0, 100, 100)
	if !a.Intersects(R(50, 50, 10, 10)) {
		t.Fatalf("contained rect should intersect")
	}
	if !a.Intersects(R(100, 0, 10, 10)) {
		t.Fatalf("edge-touching rect should intersect")
	}
	if a.Intersects(R(200, 200, 10, 10)) {
		t.Fatalf("distant rect should not intersect")
	}
}

func TestRectUnionAndContains(t *testing.T) {
	u := R(10, 10, 10, 10).Union(R(40, 5, 10, 10))
	if u.X != 10 || u.Y != 5 || u.Width != 40 || u.Height != 15 {
		t.Fatalf("unexpected union: %+v", u)
	}
	if !u.Contains(Pt{10, 5}) || !u.Contains(Pt{50, 20}) {
		t.Fatalf("union should contain both corners")
	}
}

func TestBoundingBoxGrowsOnly(t *testing.T) {
	cur := Size{Width: 800, Height: 600}
	small := []Rect{R(10, 10, 50, 50)}
	if got := BoundingBox(small, cur, 100); got != cur {
		t.Fatalf("small content should not shrink canvas: %+v", got)
	}
	big := []Rect{R(900, 100, 100, 50), R(0, 700, 10, 10)}
	got := BoundingBox(big, cur, 100)
	if got.Width != 1100 || got.Height != 810 {
		t.Fatalf("unexpected grown size: %+v", got)
	}
}
