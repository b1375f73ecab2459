/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"math"

	"curveeditor/internal/geom"
)

// DefaultQuantizePrecision is the cache quantization step for offsets.
// Zoom uses a step one hundred times finer.
const DefaultQuantizePrecision = 0.1

// Sized is anything with pixel dimensions, typically a background image.
type Sized interface {
	Width() int
	Height() int
}

// ViewState is an immutable snapshot of every parameter that affects a
// coordinate transform. It is a value type: copies never alias, and the
// methods below return new values instead of changing the receiver.
//
// Background is only consulted for its size and never takes part in cache
// keys.
type ViewState struct {
	DisplayWidth  float64
	DisplayHeight float64
	WidgetWidth   int
	WidgetHeight  int
	ZoomFactor    float64
	OffsetX       float64
	OffsetY       float64
	ScaleToImage  bool
	FlipYAxis     bool
	ManualXOffset float64
	ManualYOffset float64
	Background    Sized
	ImageWidth    int
	ImageHeight   int
}

// NewViewState returns a view of the given display and widget sizes with
// default zoom, no offsets, scale-to-image enabled and the default image size.
func NewViewState(displayW, displayH float64, widgetW, widgetH int) ViewState {
	return ViewState{
		DisplayWidth:  displayW,
		DisplayHeight: displayH,
		WidgetWidth:   widgetW,
		WidgetHeight:  widgetH,
		ZoomFactor:    defaultZoom,
		ScaleToImage:  true,
		ImageWidth:    defaultImageW,
		ImageHeight:   defaultImageH,
	}
}

// WithUpdates returns a copy of v with update applied. v is unchanged.
func (v ViewState) WithUpdates(update func(*ViewState)) ViewState {
	if update != nil {
		update(&v)
	}
	return v
}

// QuantizedForCache rounds zoom to precision/100 and all offsets to
// precision, replacing NaN and ±Inf with 0 first. Views whose values fall in
// the same rounding bucket quantize to identical values, and quantizing a
// quantized view is a no-op.
func (v ViewState) QuantizedForCache(precision float64) (ViewState, error) {
	if !(precision > 0) || math.IsInf(precision, 0) {
		return ViewState{}, validationErrorf("quantize", "precision must be positive and finite, got %v", precision)
	}
	zoomStep := precision / 100
	q := v
	q.ZoomFactor = geom.Quantize(v.ZoomFactor, zoomStep)
	q.OffsetX = geom.Quantize(v.OffsetX, precision)
	q.OffsetY = geom.Quantize(v.OffsetY, precision)
	q.ManualXOffset = geom.Quantize(v.ManualXOffset, precision)
	q.ManualYOffset = geom.Quantize(v.ManualYOffset, precision)
	return q, nil
}

// ToMap returns a debug snapshot of v. Paired values are grouped in arrays.
func (v ViewState) ToMap() map[string]any {
	m := map[string]any{
		"display_dimensions": [2]float64{v.DisplayWidth, v.DisplayHeight},
		"widget_dimensions":  [2]int{v.WidgetWidth, v.WidgetHeight},
		"image_dimensions":   [2]int{v.ImageWidth, v.ImageHeight},
		"zoom_factor":        v.ZoomFactor,
		"offset":             [2]float64{v.OffsetX, v.OffsetY},
		"manual_offset":      [2]float64{v.ManualXOffset, v.ManualYOffset},
		"scale_to_image":     v.ScaleToImage,
		"flip_y_axis":        v.FlipYAxis,
		"has_background":     v.Background != nil,
	}
	return m
}

// cacheKey is the comparable part of a ViewState.
type cacheKey struct {
	displayW, displayH float64
	widgetW, widgetH   int
	zoom               float64
	offX, offY         float64
	manX, manY         float64
	scaleToImage       bool
	flip               bool
	imageW, imageH     int
}

func (v ViewState) key() cacheKey {
	return cacheKey{
		displayW: v.DisplayWidth, displayH: v.DisplayHeight,
		widgetW: v.WidgetWidth, widgetH: v.WidgetHeight,
		zoom: v.ZoomFactor,
		offX: v.OffsetX, offY: v.OffsetY,
		manX: v.ManualXOffset, manY: v.ManualYOffset,
		scaleToImage: v.ScaleToImage,
		flip:         v.FlipYAxis,
		imageW:       v.ImageWidth, imageH: v.ImageHeight,
	}
}
