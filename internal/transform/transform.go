/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package transform maps between data space, image space and screen space.
//
// A ViewState captures the view parameters of one frame; FromViewState
// resolves it into an immutable Transform whose DataToScreen and
// ScreenToData are exact inverses. Service adds an LRU cache keyed on the
// quantized ViewState.
package transform

import (
	"math"

	"curveeditor/internal/geom"

	"golang.org/x/image/math/f64"
)

// Params are the resolved parameters of a Transform.
type Params struct {
	Scale         float64
	CenterOffsetX float64
	CenterOffsetY float64
	PanOffsetX    float64
	PanOffsetY    float64
	ManualOffsetX float64
	ManualOffsetY float64
	FlipY         bool
	DisplayHeight int
	ImageScaleX   float64
	ImageScaleY   float64
	ScaleToImage  bool
}

// IdentityParams maps data coordinates to identical screen coordinates.
func IdentityParams() Params {
	return Params{Scale: 1, ImageScaleX: 1, ImageScaleY: 1}
}

// Transform is an immutable data-to-screen mapping. It is safe for
// concurrent use.
type Transform struct {
	p    Params
	mode ValidationMode
	hash Hash
}

// New builds a Transform from p. DisplayHeight is taken as an absolute value
// and capped at 1,000,000. In Strict mode a scale outside [1e-10, 1e10]
// is rejected; Production never fails.
func New(p Params, mode ValidationMode) (*Transform, error) {
	if p.DisplayHeight < 0 {
		p.DisplayHeight = -p.DisplayHeight
	}
	if p.DisplayHeight > maxDisplayH || p.DisplayHeight < 0 {
		p.DisplayHeight = maxDisplayH
	}
	if mode == Strict {
		switch {
		case math.IsNaN(p.Scale):
			return nil, validationErrorf("transform", "scale factor is NaN")
		case math.Abs(p.Scale) < minScale:
			return nil, validationErrorf("transform", "scale factor too small: %g", p.Scale)
		case math.Abs(p.Scale) > maxScale:
			return nil, validationErrorf("transform", "scale factor too large: %g", p.Scale)
		}
	}
	return &Transform{p: p, mode: mode, hash: hashParams(p, mode)}, nil
}

// FromViewState resolves v into a Transform.
//
// The data is first scaled into image pixel space (when ScaleToImage is
// set), then fitted into the widget while preserving aspect ratio, zoomed,
// and centred. Non-positive or non-finite zoom falls back to 1, and missing
// display or image sizes fall back to each other.
func FromViewState(v ViewState, mode ValidationMode) (*Transform, error) {
	zoom := v.ZoomFactor
	if !(zoom > 0) || math.IsInf(zoom, 0) {
		zoom = defaultZoom
	}

	displayW, displayH := v.DisplayWidth, v.DisplayHeight
	imageW, imageH := float64(v.ImageWidth), float64(v.ImageHeight)
	if !(displayW > 0) || math.IsInf(displayW, 0) {
		displayW = imageW
	}
	if !(displayH > 0) || math.IsInf(displayH, 0) {
		displayH = imageH
	}
	if imageW <= 0 {
		imageW = displayW
	}
	if imageH <= 0 {
		imageH = displayH
	}

	imageScaleX, imageScaleY := 1.0, 1.0
	if v.ScaleToImage && imageW > 0 && imageH > 0 && displayW > 0 && displayH > 0 {
		imageScaleX = displayW / imageW
		imageScaleY = displayH / imageH
	}

	fit := 1.0
	if v.WidgetWidth > 0 && v.WidgetHeight > 0 && displayW > 0 && displayH > 0 {
		fit = math.Min(float64(v.WidgetWidth)/displayW, float64(v.WidgetHeight)/displayH)
	}
	scale := fit * zoom

	var centerX, centerY float64
	if displayW > 0 && displayH > 0 {
		centerX = (float64(v.WidgetWidth) - displayW*scale) / 2
		centerY = (float64(v.WidgetHeight) - displayH*scale) / 2
	}

	height := 0.0
	if geom.IsFinite(v.DisplayHeight) {
		height = math.Min(math.Abs(v.DisplayHeight), maxDisplayH)
	}

	return New(Params{
		Scale:         scale,
		CenterOffsetX: centerX,
		CenterOffsetY: centerY,
		PanOffsetX:    finiteOr(v.OffsetX, 0),
		PanOffsetY:    finiteOr(v.OffsetY, 0),
		ManualOffsetX: finiteOr(v.ManualXOffset, 0),
		ManualOffsetY: finiteOr(v.ManualYOffset, 0),
		FlipY:         v.FlipYAxis,
		DisplayHeight: int(math.Round(height)),
		ImageScaleX:   imageScaleX,
		ImageScaleY:   imageScaleY,
		ScaleToImage:  v.ScaleToImage,
	}, mode)
}

// Params returns a copy of the resolved parameters.
func (t *Transform) Params() Params { return t.p }

// Mode returns the validation mode the transform was built with.
func (t *Transform) Mode() ValidationMode { return t.mode }

// StabilityHash is a content hash of every parameter. Equal hashes mean
// equal mappings.
func (t *Transform) StabilityHash() Hash { return t.hash }

// WithUpdates returns a new Transform with update applied to a copy of the
// parameters.
func (t *Transform) WithUpdates(update func(*Params)) (*Transform, error) {
	p := t.p
	if update != nil {
		update(&p)
	}
	return New(p, t.mode)
}

// DataToScreen maps a data-space point to screen space. The order of the
// steps is fixed: image scale, scale, center offset, pan offset, manual
// offset, then the Y flip.
func (t *Transform) DataToScreen(x, y float64) (float64, float64, error) {
	if t.mode == Strict {
		if err := checkCoords("data_to_screen", x, y); err != nil {
			return 0, 0, err
		}
	}
	p := &t.p
	if p.ScaleToImage {
		x *= p.ImageScaleX
		y *= p.ImageScaleY
	}
	x *= p.Scale
	y *= p.Scale
	x += p.CenterOffsetX
	y += p.CenterOffsetY
	x += p.PanOffsetX
	y += p.PanOffsetY
	x += p.ManualOffsetX
	y += p.ManualOffsetY
	if p.FlipY && p.DisplayHeight > 0 {
		y = float64(p.DisplayHeight) - y
	}
	return x, y, nil
}

// ScreenToData is the exact inverse of DataToScreen. Division by a zero
// scale or image scale is skipped.
func (t *Transform) ScreenToData(x, y float64) (float64, float64, error) {
	if t.mode == Strict {
		if err := checkCoords("screen_to_data", x, y); err != nil {
			return 0, 0, err
		}
	}
	p := &t.p
	if p.FlipY && p.DisplayHeight > 0 {
		y = float64(p.DisplayHeight) - y
	}
	x -= p.ManualOffsetX
	y -= p.ManualOffsetY
	x -= p.PanOffsetX
	y -= p.PanOffsetY
	x -= p.CenterOffsetX
	y -= p.CenterOffsetY
	if p.Scale != 0 {
		x /= p.Scale
		y /= p.Scale
	}
	if p.ScaleToImage {
		if p.ImageScaleX != 0 {
			x /= p.ImageScaleX
		}
		if p.ImageScaleY != 0 {
			y /= p.ImageScaleY
		}
	}
	return x, y, nil
}

// Affine returns the forward mapping as a row-major affine matrix:
//
//	screenX = m[0]*x + m[1]*y + m[2]
//	screenY = m[3]*x + m[4]*y + m[5]
func (t *Transform) Affine() f64.Aff3 {
	p := &t.p
	sx, sy := p.Scale, p.Scale
	if p.ScaleToImage {
		sx *= p.ImageScaleX
		sy *= p.ImageScaleY
	}
	tx := p.CenterOffsetX + p.PanOffsetX + p.ManualOffsetX
	ty := p.CenterOffsetY + p.PanOffsetY + p.ManualOffsetY
	if p.FlipY && p.DisplayHeight > 0 {
		sy = -sy
		ty = float64(p.DisplayHeight) - ty
	}
	return f64.Aff3{sx, 0, tx, 0, sy, ty}
}

func checkCoords(op string, x, y float64) error {
	if math.Abs(x) > maxCoordinate || math.Abs(y) > maxCoordinate {
		return validationErrorf(op, "input coordinates too large: (%g, %g)", x, y)
	}
	return nil
}

func finiteOr(v, def float64) float64 {
	if geom.IsFinite(v) {
		return v
	}
	return def
}
