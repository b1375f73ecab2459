/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package spatial

import "curveeditor/internal/geom"

// Status is the optional tracking status of a point. The empty status
// means none was recorded.
type Status string

const (
	StatusNone         Status = ""
	StatusNormal       Status = "normal"
	StatusKeyframe     Status = "keyframe"
	StatusInterpolated Status = "interpolated"
	StatusTracked      Status = "tracked"
	StatusEndframe     Status = "endframe"
)

// Point is one tracked sample in data space.
type Point struct {
	Frame  int
	X, Y   float64
	Status Status
}

// PointSource is an indexed, read-only point collection. At reports ok=false
// for entries that cannot be placed; those are skipped by the index while
// the remaining indices keep referring to the caller's collection.
type PointSource interface {
	Len() int
	At(i int) (x, y float64, ok bool)
}

// Points is the regular point collection.
type Points []Point

func (p Points) Len() int { return len(p) }

func (p Points) At(i int) (float64, float64, bool) { return p[i].X, p[i].Y, true }

// LegacyPoints holds variable-length (frame, x, y[, status]) rows as
// produced by older importers. Rows with fewer than three fields, or with
// non-numeric coordinates, are reported as unplaceable.
type LegacyPoints [][]any

func (l LegacyPoints) Len() int { return len(l) }

func (l LegacyPoints) At(i int) (float64, float64, bool) {
	p, ok := l.Point(i)
	return p.X, p.Y, ok
}

// Point decodes row i. ok is false when the row is malformed.
func (l LegacyPoints) Point(i int) (Point, bool) {
	row := l[i]
	if len(row) < 3 {
		return Point{}, false
	}
	frame, ok := geom.Number(row[0])
	if !ok {
		return Point{}, false
	}
	x, okX := geom.Number(row[1])
	y, okY := geom.Number(row[2])
	if !okX || !okY {
		return Point{}, false
	}
	p := Point{Frame: int(frame), X: x, Y: y}
	if len(row) > 3 {
		switch s := row[3].(type) {
		case string:
			p.Status = Status(s)
		case Status:
			p.Status = s
		}
	}
	return p, true
}

// Points converts the well-formed rows, dropping malformed ones. The result
// no longer shares indices with l.
func (l LegacyPoints) Points() Points {
	out := make(Points, 0, len(l))
	for i := range l {
		if p, ok := l.Point(i); ok {
			out = append(out, p)
		}
	}
	return out
}
