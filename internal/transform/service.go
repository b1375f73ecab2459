/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"log/slog"
	"sync"

	"curveeditor/internal/geom"
	applog "curveeditor/internal/log"

	"github.com/hashicorp/golang-lru/v2/simplelru"
)

// DefaultCacheSize is the number of transforms a Service keeps by default.
const DefaultCacheSize = 128

// Options configures a Service.
type Options struct {
	// MaxCacheSize bounds the transform cache; values <= 0 use DefaultCacheSize.
	MaxCacheSize int
	// Validation is applied to every transform the service builds.
	Validation ValidationMode
	// Precision is the cache quantization step; values <= 0 use
	// DefaultQuantizePrecision.
	Precision float64
	// Logger defaults to the "transform" component logger.
	Logger *slog.Logger
}

// CacheStats is a snapshot of the transform cache counters.
type CacheStats struct {
	Hits        int
	Misses      int
	CurrentSize int
	MaxSize     int
	HitRate     float64
}

// Service builds ViewStates and Transforms and caches transforms keyed on
// the quantized view. Transforms are always built from the quantized view,
// so a cache hit and a fresh build return identical mappings.
//
// A Service is safe for concurrent use.
type Service struct {
	validation ValidationMode
	precision  float64
	maxSize    int
	log        *slog.Logger

	mu     sync.Mutex
	cache  *simplelru.LRU[cacheKey, *Transform]
	hits   int
	misses int
}

// NewService returns a Service configured by opts.
func NewService(opts Options) *Service {
	if opts.MaxCacheSize <= 0 {
		opts.MaxCacheSize = DefaultCacheSize
	}
	if !(opts.Precision > 0) {
		opts.Precision = DefaultQuantizePrecision
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("transform")
	}
	s := &Service{
		validation: opts.Validation,
		precision:  opts.Precision,
		maxSize:    opts.MaxCacheSize,
		log:        opts.Logger,
	}
	s.cache, _ = simplelru.NewLRU[cacheKey, *Transform](opts.MaxCacheSize, s.onEvict)
	return s
}

func (s *Service) onEvict(_ cacheKey, t *Transform) {
	s.log.Debug("transform evicted", slog.String("hash", t.StabilityHash().String()))
}

// Validation returns the mode applied to every transform the service builds.
func (s *Service) Validation() ValidationMode { return s.validation }

// CreateViewState builds a ViewState from a view-like source.
func (s *Service) CreateViewState(src CurveView) (ViewState, error) {
	return FromCurveView(src)
}

// CreateTransformFromViewState returns the cached transform for the
// quantized form of v, building and caching it on a miss.
func (s *Service) CreateTransformFromViewState(v ViewState) (*Transform, error) {
	q, err := v.QuantizedForCache(s.precision)
	if err != nil {
		return nil, err
	}
	k := q.key()

	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.cache.Get(k); ok {
		s.hits++
		return t, nil
	}
	s.misses++
	t, err := FromViewState(q, s.validation)
	if err != nil {
		return nil, err
	}
	s.cache.Add(k, t)
	return t, nil
}

// GetTransform is the one-call path from a view-like source to a Transform.
func (s *Service) GetTransform(src CurveView) (*Transform, error) {
	v, err := s.CreateViewState(src)
	if err != nil {
		return nil, err
	}
	return s.CreateTransformFromViewState(v)
}

// CreateTransform builds a transform directly from its main parameters,
// bypassing the cache. Image scale defaults to 1; opts may override any
// parameter.
func (s *Service) CreateTransform(scale float64, center, pan geom.Pt, opts ...func(*Params)) (*Transform, error) {
	p := IdentityParams()
	p.Scale = scale
	p.CenterOffsetX, p.CenterOffsetY = center.X, center.Y
	p.PanOffsetX, p.PanOffsetY = pan.X, pan.Y
	for _, o := range opts {
		o(&p)
	}
	return New(p, s.validation)
}

// UpdateTransform is shorthand for t.WithUpdates.
func (s *Service) UpdateTransform(t *Transform, update func(*Params)) (*Transform, error) {
	return t.WithUpdates(update)
}

// UpdateViewState is shorthand for v.WithUpdates.
func (s *Service) UpdateViewState(v ViewState, update func(*ViewState)) ViewState {
	return v.WithUpdates(update)
}

// ClearCache drops every cached transform. Counters are kept.
func (s *Service) ClearCache() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.cache.Len()
	s.cache.Purge()
	s.log.Debug("transform cache cleared", slog.Int("dropped", n))
}

// CacheStats returns the current cache counters.
func (s *Service) CacheStats() CacheStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := CacheStats{
		Hits:        s.hits,
		Misses:      s.misses,
		CurrentSize: s.cache.Len(),
		MaxSize:     s.maxSize,
	}
	if total := s.hits + s.misses; total > 0 {
		st.HitRate = float64(s.hits) / float64(total)
	}
	return st
}
