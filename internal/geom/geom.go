/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package geom holds the small 2D value types shared by the transform and
// spatial packages.
package geom

import "math"

// Pt is a 2D point or offset.
type Pt struct{ X, Y float64 }

// P is shorthand for Pt{X: x, Y: y}.
func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Add(o Pt) Pt { return Pt{p.X + o.X, p.Y + o.Y} }
func (p Pt) Sub(o Pt) Pt { return Pt{p.X - o.X, p.Y - o.Y} }

// Dist returns the Euclidean distance between p and o.
func (p Pt) Dist(o Pt) float64 { return math.Hypot(p.X-o.X, p.Y-o.Y) }

// Finite reports whether both coordinates are neither NaN nor infinite.
func (p Pt) Finite() bool { return IsFinite(p.X) && IsFinite(p.Y) }

// Size is an integer width/height pair. It satisfies the Width/Height
// capability used for viewports and background images.
type Size struct{ W, H int }

func (s Size) Width() int  { return s.W }
func (s Size) Height() int { return s.H }

// Empty reports whether either dimension is not positive.
func (s Size) Empty() bool { return s.W <= 0 || s.H <= 0 }

// Rect is an axis-aligned rectangle stored by its min and max corners.
// Edges are kept as given, never rebuilt from a width, so containment
// tests compare against the exact corner values.
type Rect struct {
	Min, Max Pt
}

// R builds a rectangle from its min corner and size.
func R(x, y, w, h float64) Rect { return Rect{Min: Pt{x, y}, Max: Pt{x + w, y + h}} }

// RectFromCorners builds a rectangle from two opposite corners given in any
// order. Infinite corners are kept and give an unbounded side.
func RectFromCorners(x1, y1, x2, y2 float64) Rect {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Rect{Min: Pt{x1, y1}, Max: Pt{x2, y2}}
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

// Contains reports whether p lies inside r. All four edges are inclusive.
func (r Rect) Contains(p Pt) bool {
	return p.X >= r.Min.X && p.Y >= r.Min.Y && p.X <= r.Max.X && p.Y <= r.Max.Y
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		Min: Pt{math.Min(r.Min.X, o.Min.X), math.Min(r.Min.Y, o.Min.Y)},
		Max: Pt{math.Max(r.Max.X, o.Max.X), math.Max(r.Max.Y, o.Max.Y)},
	}
}

// IsFinite reports whether v is neither NaN nor ±Inf.
func IsFinite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

// Quantize rounds v to the nearest multiple of step. NaN and ±Inf map to 0.
// Values at or beyond 2^50 steps are returned unchanged; past that point the
// rounding error of v/step can reach half a step and a second pass would
// move the result. step must be positive; callers validate it.
func Quantize(v, step float64) float64 {
	if !IsFinite(v) {
		return 0
	}
	n := v / step
	if math.Abs(n) >= 1<<50 {
		return v
	}
	q := math.Round(n) * step
	if !IsFinite(q) {
		return 0
	}
	return q
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Number converts any built-in integer or float value to float64. ok is
// false for every other type.
func Number(v any) (f float64, ok bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
