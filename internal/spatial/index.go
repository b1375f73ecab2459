/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package spatial provides a uniform-grid index over point collections in
// screen space, for nearest-point picking and rectangular selection.
//
// The index stores point indices, never point data. It is keyed on the
// stability hash of the transform and the collection length, and rebuilds
// only when either changes.
package spatial

import (
	"context"
	"log/slog"
	"math"
	"sync"
	"time"

	"curveeditor/internal/geom"
	applog "curveeditor/internal/log"
	"curveeditor/internal/transform"
)

// Viewport is the on-screen area the index covers.
type Viewport interface {
	Width() int
	Height() int
}

// Mapper converts data coordinates to screen coordinates.
// *transform.Transform satisfies it.
type Mapper interface {
	DataToScreen(x, y float64) (float64, float64, error)
	StabilityHash() transform.Hash
}

// Options configures a PointIndex. Zero fields take the defaults from
// DefaultOptions.
type Options struct {
	InitialWidth         float64
	InitialHeight        float64
	TargetCellSize       float64 // screen pixels per cell
	MinGridSize          int     // cells per axis
	MaxGridSize          int
	ResizeThresholdPx    float64 // viewport changes below both thresholds
	ResizeThresholdRatio float64 // keep the current grid
	Logger               *slog.Logger
}

// DefaultOptions returns the tuned defaults.
func DefaultOptions() Options {
	return Options{
		InitialWidth:         800,
		InitialHeight:        600,
		TargetCellSize:       45,
		MinGridSize:          10,
		MaxGridSize:          50,
		ResizeThresholdPx:    100,
		ResizeThresholdRatio: 0.10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.InitialWidth <= 0 {
		o.InitialWidth = d.InitialWidth
	}
	if o.InitialHeight <= 0 {
		o.InitialHeight = d.InitialHeight
	}
	if !(o.TargetCellSize > 0) {
		o.TargetCellSize = d.TargetCellSize
	}
	if o.MinGridSize <= 0 {
		o.MinGridSize = d.MinGridSize
	}
	if o.MaxGridSize <= 0 {
		o.MaxGridSize = d.MaxGridSize
	}
	if o.MaxGridSize < o.MinGridSize {
		o.MaxGridSize = o.MinGridSize
	}
	if !(o.ResizeThresholdPx > 0) {
		o.ResizeThresholdPx = d.ResizeThresholdPx
	}
	if !(o.ResizeThresholdRatio > 0) {
		o.ResizeThresholdRatio = d.ResizeThresholdRatio
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("spatial")
	}
	return o
}

// Stats describes the current grid. Every field is computed on request.
type Stats struct {
	GridWidth         int
	GridHeight        int
	ScreenWidth       float64
	ScreenHeight      float64
	CellWidth         float64
	CellHeight        float64
	OccupiedCells     int
	TotalCells        int
	Occupancy         float64
	TotalPoints       int
	AvgPointsPerCell  float64
	LastTransformHash transform.Hash
	Rebuilds          int
}

// PointIndex is a uniform grid over screen space. It is safe for concurrent
// use; the lock is held across the whole rebuild-or-use decision of each
// query, so readers never observe a partially built grid.
type PointIndex struct {
	opts Options
	log  *slog.Logger

	mu               sync.Mutex
	gridW, gridH     int
	cellW, cellH     float64
	screenW, screenH float64
	cells            [][]int   // row-major, gridW*gridH
	screen           []geom.Pt // screen position by point index
	indexed          int
	lastHash         transform.Hash
	lastCount        int
	rebuilds         int
}

// NewPointIndex returns an empty index sized for the initial viewport.
func NewPointIndex(opts Options) *PointIndex {
	opts = opts.withDefaults()
	idx := &PointIndex{opts: opts, log: opts.Logger}
	idx.resizeLocked(opts.InitialWidth, opts.InitialHeight)
	return idx
}

// RebuildIndex brings the grid up to date with points as mapped by m. It
// does nothing when the transform hash and point count match the last
// build and the grid holds points.
func (idx *PointIndex) RebuildIndex(points PointSource, vp Viewport, m Mapper) {
	if points == nil || points.Len() == 0 {
		return
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildLocked(points, vp, m)
}

// FindPointAt returns the index of the point closest to the screen
// position (x, y) within threshold pixels, or -1. Equal distances resolve
// to the lowest index.
func (idx *PointIndex) FindPointAt(points PointSource, m Mapper, x, y, threshold float64, vp Viewport) int {
	if points == nil || points.Len() == 0 || !(threshold >= 0) || !geom.IsFinite(x) || !geom.IsFinite(y) {
		return -1
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildLocked(points, vp, m)
	if idx.indexed == 0 {
		return -1
	}

	qx, qy := idx.cellLocked(x, y)
	reach := math.Ceil(threshold/math.Min(idx.cellW, idx.cellH)) + 1
	r := max(idx.gridW, idx.gridH)
	if reach < float64(r) {
		r = int(reach)
	}
	x0, x1 := geom.Clamp(qx-r, 0, idx.gridW-1), geom.Clamp(qx+r, 0, idx.gridW-1)
	y0, y1 := geom.Clamp(qy-r, 0, idx.gridH-1), geom.Clamp(qy+r, 0, idx.gridH-1)

	q := geom.P(x, y)
	best, bestDist := -1, math.Inf(1)
	for cy := y0; cy <= y1; cy++ {
		row := cy * idx.gridW
		for cx := x0; cx <= x1; cx++ {
			for _, i := range idx.cells[row+cx] {
				d := idx.screen[i].Dist(q)
				if d > threshold {
					continue
				}
				if d < bestDist || (d == bestDist && i < best) {
					best, bestDist = i, d
				}
			}
		}
	}
	return best
}

// PointsInRect returns the indices of the points whose screen position lies
// inside the rectangle spanned by (x1, y1) and (x2, y2), edges included.
// The corners may be given in any order. Results follow grid scan order.
func (idx *PointIndex) PointsInRect(points PointSource, m Mapper, x1, y1, x2, y2 float64, vp Viewport) []int {
	if points == nil || points.Len() == 0 {
		return nil
	}
	for _, v := range [...]float64{x1, y1, x2, y2} {
		if math.IsNaN(v) {
			return nil
		}
	}
	rect := geom.RectFromCorners(x1, y1, x2, y2)

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.rebuildLocked(points, vp, m)
	if idx.indexed == 0 {
		return nil
	}

	c0, r0 := idx.cellLocked(rect.Min.X, rect.Min.Y)
	c1, r1 := idx.cellLocked(rect.Max.X, rect.Max.Y)
	var out []int
	for cy := r0; cy <= r1; cy++ {
		row := cy * idx.gridW
		for cx := c0; cx <= c1; cx++ {
			for _, i := range idx.cells[row+cx] {
				if rect.Contains(idx.screen[i]) {
					out = append(out, i)
				}
			}
		}
	}
	return out
}

// Stats reports the current grid state.
func (idx *PointIndex) Stats() Stats {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	st := Stats{
		GridWidth:         idx.gridW,
		GridHeight:        idx.gridH,
		ScreenWidth:       idx.screenW,
		ScreenHeight:      idx.screenH,
		CellWidth:         idx.cellW,
		CellHeight:        idx.cellH,
		TotalCells:        idx.gridW * idx.gridH,
		LastTransformHash: idx.lastHash,
		Rebuilds:          idx.rebuilds,
	}
	for _, c := range idx.cells {
		if len(c) > 0 {
			st.OccupiedCells++
			st.TotalPoints += len(c)
		}
	}
	if st.TotalCells > 0 {
		st.Occupancy = float64(st.OccupiedCells) / float64(st.TotalCells)
	}
	if st.OccupiedCells > 0 {
		st.AvgPointsPerCell = float64(st.TotalPoints) / float64(st.OccupiedCells)
	}
	return st
}

// ClearCache empties the grid and forgets the last build, forcing a full
// rebuild on the next query.
func (idx *PointIndex) ClearCache() {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.clearCellsLocked()
	idx.screen = idx.screen[:0]
	idx.lastHash = transform.Hash{}
	idx.lastCount = 0
}

func (idx *PointIndex) rebuildLocked(points PointSource, vp Viewport, m Mapper) {
	n := points.Len()
	hash := m.StabilityHash()
	if hash == idx.lastHash && n == idx.lastCount && idx.indexed > 0 {
		return
	}
	start := time.Now()

	if vp != nil {
		w, h := float64(vp.Width()), float64(vp.Height())
		if idx.exceedsThreshold(w, idx.screenW) || idx.exceedsThreshold(h, idx.screenH) {
			idx.resizeLocked(w, h)
		}
	}
	idx.clearCellsLocked()
	idx.updateCellSizeLocked()

	if cap(idx.screen) < n {
		idx.screen = make([]geom.Pt, n)
	}
	idx.screen = idx.screen[:n]
	for i := 0; i < n; i++ {
		idx.screen[i] = geom.P(math.NaN(), math.NaN())
		x, y, ok := points.At(i)
		if !ok {
			continue
		}
		sx, sy, err := m.DataToScreen(x, y)
		if err != nil {
			continue
		}
		s := geom.P(sx, sy)
		if !s.Finite() {
			continue
		}
		idx.screen[i] = s
		cx, cy := idx.cellLocked(sx, sy)
		c := cy*idx.gridW + cx
		idx.cells[c] = append(idx.cells[c], i)
		idx.indexed++
	}

	idx.lastHash = hash
	idx.lastCount = n
	idx.rebuilds++
	if idx.log.Enabled(context.Background(), slog.LevelDebug) {
		idx.log.Debug("index rebuilt",
			slog.Int("points", n),
			slog.Int("indexed", idx.indexed),
			slog.Int("grid_w", idx.gridW),
			slog.Int("grid_h", idx.gridH),
			slog.Duration("took", time.Since(start)),
		)
	}
}

// exceedsThreshold reports whether a viewport dimension moved far enough
// from the current one to justify a new grid.
func (idx *PointIndex) exceedsThreshold(next, cur float64) bool {
	limit := math.Max(idx.opts.ResizeThresholdPx, idx.opts.ResizeThresholdRatio*cur)
	return math.Abs(next-cur) > limit
}

func (idx *PointIndex) resizeLocked(w, h float64) {
	idx.screenW, idx.screenH = math.Max(w, 0), math.Max(h, 0)
	gw := geom.Clamp(int(idx.screenW/idx.opts.TargetCellSize), idx.opts.MinGridSize, idx.opts.MaxGridSize)
	gh := geom.Clamp(int(idx.screenH/idx.opts.TargetCellSize), idx.opts.MinGridSize, idx.opts.MaxGridSize)
	if gw != idx.gridW || gh != idx.gridH || idx.cells == nil {
		idx.gridW, idx.gridH = gw, gh
		idx.cells = make([][]int, gw*gh)
		idx.indexed = 0
	}
	idx.updateCellSizeLocked()
}

func (idx *PointIndex) updateCellSizeLocked() {
	idx.cellW = idx.screenW / float64(idx.gridW)
	idx.cellH = idx.screenH / float64(idx.gridH)
	if !(idx.cellW > 0) {
		idx.cellW = 1
	}
	if !(idx.cellH > 0) {
		idx.cellH = 1
	}
}

func (idx *PointIndex) clearCellsLocked() {
	for i := range idx.cells {
		idx.cells[i] = idx.cells[i][:0]
	}
	idx.indexed = 0
}

// cellLocked maps a screen position to its clamped cell coordinates.
func (idx *PointIndex) cellLocked(x, y float64) (int, int) {
	return cellCoord(x, idx.cellW, idx.gridW), cellCoord(y, idx.cellH, idx.gridH)
}

func cellCoord(v, size float64, n int) int {
	f := math.Floor(v / size)
	switch {
	case math.IsNaN(f) || f < 0:
		return 0
	case f >= float64(n):
		return n - 1
	}
	return int(f)
}
