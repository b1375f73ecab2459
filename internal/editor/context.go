/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor ties the view core together: one transform Service and one
// PointIndex configured from the user config, with the picking and
// selection calls an interactive curve view makes.
package editor

import (
	"context"
	"log/slog"

	"curveeditor/internal/config"
	applog "curveeditor/internal/log"
	"curveeditor/internal/spatial"
	"curveeditor/internal/transform"
)

// Context owns the transform cache and point index of one curve view. It is
// safe for concurrent use.
type Context struct {
	log     *slog.Logger
	service *transform.Service
	index   *spatial.PointIndex
}

// Stats combines the cache and index statistics.
type Stats struct {
	Cache transform.CacheStats
	Index spatial.Stats
}

// New builds a Context from cfg. logger is shared by the service and the
// index; when nil each uses its own component logger.
func New(cfg config.AppConfig, logger *slog.Logger) *Context {
	c := &Context{
		log:     logger,
		service: transform.NewService(ServiceOptions(cfg, logger)),
		index:   spatial.NewPointIndex(IndexOptions(cfg, logger)),
	}
	if c.log == nil {
		c.log = applog.WithComponent("editor")
	}
	return c
}

// ServiceOptions maps the view section of cfg onto transform.Options.
func ServiceOptions(cfg config.AppConfig, logger *slog.Logger) transform.Options {
	return transform.Options{
		MaxCacheSize: cfg.View.CacheSize,
		Validation:   cfg.View.ValidationMode(),
		Precision:    cfg.View.QuantizePrecision,
		Logger:       logger,
	}
}

// IndexOptions maps the index section of cfg onto spatial.Options.
func IndexOptions(cfg config.AppConfig, logger *slog.Logger) spatial.Options {
	ic := cfg.Index
	return spatial.Options{
		InitialWidth:         ic.InitialWidth,
		InitialHeight:        ic.InitialHeight,
		TargetCellSize:       ic.TargetCellSize,
		MinGridSize:          ic.MinGrid,
		MaxGridSize:          ic.MaxGrid,
		ResizeThresholdPx:    ic.ResizeThresholdPx,
		ResizeThresholdRatio: ic.ResizeThresholdRatio,
		Logger:               logger,
	}
}

func (c *Context) Service() *transform.Service { return c.service }

func (c *Context) Index() *spatial.PointIndex { return c.index }

// Validation is the mode every transform of this context is built with.
func (c *Context) Validation() transform.ValidationMode { return c.service.Validation() }

// Transform returns the (cached) transform for view.
func (c *Context) Transform(view transform.CurveView) (*transform.Transform, error) {
	return c.service.GetTransform(view)
}

// DataAt maps a screen position in view back to data space.
func (c *Context) DataAt(view transform.CurveView, x, y float64) (float64, float64, error) {
	t, err := c.Transform(view)
	if err != nil {
		return 0, 0, err
	}
	return t.ScreenToData(x, y)
}

// Pick returns the index of the point nearest to the screen position (x, y)
// within threshold pixels, or -1. The widget size of view is the viewport.
func (c *Context) Pick(view transform.CurveView, points spatial.PointSource, x, y, threshold float64) (int, error) {
	t, err := c.Transform(view)
	if err != nil {
		return -1, err
	}
	i := c.index.FindPointAt(points, t, x, y, threshold, view)
	if c.log.Enabled(context.Background(), slog.LevelDebug) {
		c.log.Debug("pick", slog.Float64("x", x), slog.Float64("y", y), slog.Int("hit", i))
	}
	return i, nil
}

// Select returns the indices of the points inside the screen rectangle
// spanned by the two corners, edges included.
func (c *Context) Select(view transform.CurveView, points spatial.PointSource, x1, y1, x2, y2 float64) ([]int, error) {
	t, err := c.Transform(view)
	if err != nil {
		return nil, err
	}
	return c.index.PointsInRect(points, t, x1, y1, x2, y2, view), nil
}

// Stats reports the cache and index statistics.
func (c *Context) Stats() Stats {
	return Stats{Cache: c.service.CacheStats(), Index: c.index.Stats()}
}

// Reset drops cached transforms and the built grid.
func (c *Context) Reset() {
	c.service.ClearCache()
	c.index.ClearCache()
}
