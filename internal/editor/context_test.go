/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"errors"
	"slices"
	"testing"

	"curveeditor/internal/config"
	applog "curveeditor/internal/log"
	"curveeditor/internal/spatial"
	"curveeditor/internal/transform"

	"github.com/google/go-cmp/cmp"
)

func newTestContext(t *testing.T, mutate func(*config.AppConfig)) *Context {
	t.Helper()
	cfg := config.Defaults()
	cfg.View.Validation = "production"
	if mutate != nil {
		mutate(&cfg)
	}
	return New(cfg, applog.Discard())
}

// view maps data coordinates 1:1 onto an 800x600 widget, shifted by pan.
func view(panX, panY float64) transform.MapView {
	return transform.MapView{W: 800, H: 600, Attrs: map[string]any{
		transform.AttrImageWidth:  800,
		transform.AttrImageHeight: 600,
		transform.AttrOffsetX:     panX,
		transform.AttrOffsetY:     panY,
	}}
}

var samplePoints = spatial.Points{
	{Frame: 1, X: 100, Y: 150, Status: spatial.StatusKeyframe},
	{Frame: 2, X: 300, Y: 250},
	{Frame: 3, X: 700, Y: 550},
}

func TestPickAndSelect(t *testing.T) {
	c := newTestContext(t, nil)
	v := view(10, 20)

	i, err := c.Pick(v, samplePoints, 110, 170, 3)
	if err != nil {
		t.Fatalf("Pick() error: %v", err)
	}
	if i != 0 {
		t.Fatalf("Pick() = %d, want 0", i)
	}
	if i, _ := c.Pick(v, samplePoints, 500, 500, 3); i != -1 {
		t.Fatalf("Pick() on empty space = %d, want -1", i)
	}

	got, err := c.Select(v, samplePoints, 0, 0, 400, 300)
	if err != nil {
		t.Fatalf("Select() error: %v", err)
	}
	slices.Sort(got)
	if d := cmp.Diff([]int{0, 1}, got); d != "" {
		t.Fatalf("Select() mismatch (-want +got):\n%s", d)
	}

	st := c.Stats()
	if st.Cache.Misses != 1 || st.Cache.Hits != 2 {
		t.Fatalf("cache stats = %+v, want 1 miss 2 hits", st.Cache)
	}
	if st.Index.Rebuilds != 1 || st.Index.TotalPoints != 3 {
		t.Fatalf("index stats = %+v", st.Index)
	}
}

func TestPanChangeRebuildsIndex(t *testing.T) {
	c := newTestContext(t, nil)
	if i, _ := c.Pick(view(0, 0), samplePoints, 100, 150, 1); i != 0 {
		t.Fatalf("Pick() = %d, want 0", i)
	}
	if i, _ := c.Pick(view(50, 0), samplePoints, 100, 150, 1); i != -1 {
		t.Fatalf("Pick() after pan = %d, want -1", i)
	}
	if i, _ := c.Pick(view(50, 0), samplePoints, 150, 150, 1); i != 0 {
		t.Fatalf("Pick() at panned position = %d, want 0", i)
	}
	if n := c.Stats().Index.Rebuilds; n != 2 {
		t.Fatalf("rebuilds = %d, want 2", n)
	}
}

func TestDataAt(t *testing.T) {
	c := newTestContext(t, nil)
	x, y, err := c.DataAt(view(10, 20), 110, 170)
	if err != nil {
		t.Fatalf("DataAt() error: %v", err)
	}
	if x != 100 || y != 150 {
		t.Fatalf("DataAt() = (%v, %v), want (100, 150)", x, y)
	}
}

func TestPickPropagatesViewErrors(t *testing.T) {
	c := newTestContext(t, nil)
	bad := transform.MapView{W: 800, H: 600, Attrs: map[string]any{transform.AttrZoomFactor: "big"}}
	i, err := c.Pick(bad, samplePoints, 0, 0, 5)
	var te *transform.TypeError
	if !errors.As(err, &te) || !errors.Is(err, transform.ErrType) {
		t.Fatalf("Pick() error = %v, want TypeError", err)
	}
	if i != -1 {
		t.Fatalf("Pick() = %d on error, want -1", i)
	}
	if _, err := c.Select(bad, samplePoints, 0, 0, 1, 1); err == nil {
		t.Fatalf("Select() should fail")
	}
}

func TestConfigReachesComponents(t *testing.T) {
	c := newTestContext(t, func(cfg *config.AppConfig) {
		cfg.View.Validation = "strict"
		cfg.View.CacheSize = 3
		cfg.Index.TargetCellSize = 100
		cfg.Index.MinGrid = 2
	})
	if c.Validation() != transform.Strict {
		t.Fatalf("Validation() = %v, want strict", c.Validation())
	}
	st := c.Stats()
	if st.Cache.MaxSize != 3 {
		t.Fatalf("cache max = %d, want 3", st.Cache.MaxSize)
	}
	if st.Index.GridWidth != 8 || st.Index.GridHeight != 6 {
		t.Fatalf("grid = %dx%d, want 8x6", st.Index.GridWidth, st.Index.GridHeight)
	}
}

func TestReset(t *testing.T) {
	c := newTestContext(t, nil)
	if _, err := c.Pick(view(0, 0), samplePoints, 100, 150, 1); err != nil {
		t.Fatalf("Pick() error: %v", err)
	}
	c.Reset()
	st := c.Stats()
	if st.Cache.CurrentSize != 0 || st.Index.TotalPoints != 0 {
		t.Fatalf("Reset left state: %+v", st)
	}
	if _, err := c.Pick(view(0, 0), samplePoints, 100, 150, 1); err != nil {
		t.Fatalf("Pick() error: %v", err)
	}
	if n := c.Stats().Index.Rebuilds; n != 2 {
		t.Fatalf("rebuilds = %d, want 2", n)
	}
}
