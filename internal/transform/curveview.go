/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import "curveeditor/internal/geom"

// Attribute names understood by FromCurveView.
const (
	AttrZoomFactor      = "zoom_factor"
	AttrOffsetX         = "offset_x"
	AttrOffsetY         = "offset_y"
	AttrManualXOffset   = "manual_x_offset"
	AttrManualYOffset   = "manual_y_offset"
	AttrFlipYAxis       = "flip_y_axis"
	AttrScaleToImage    = "scale_to_image"
	AttrImageWidth      = "image_width"
	AttrImageHeight     = "image_height"
	AttrBackgroundImage = "background_image"
)

// CurveView is the minimal capability of a view-like source: its widget size.
type CurveView interface {
	Width() int
	Height() int
}

// ViewAttributes is the optional capability through which a CurveView
// exposes the remaining view parameters by name. Absent attributes take
// their documented defaults:
//
//	zoom_factor       1.0 (must be numeric when present)
//	offset_x/y        0
//	manual_x/y_offset 0
//	flip_y_axis       false
//	scale_to_image    true
//	image_width/height 1920x1080
//	background_image  none (any Sized value)
type ViewAttributes interface {
	Attr(name string) (any, bool)
}

// MapView is a CurveView backed by a plain attribute map.
type MapView struct {
	W, H  int
	Attrs map[string]any
}

func (m MapView) Width() int  { return m.W }
func (m MapView) Height() int { return m.H }

func (m MapView) Attr(name string) (any, bool) {
	v, ok := m.Attrs[name]
	return v, ok
}

// FromCurveView builds a ViewState from src. The widget size comes from
// src.Width/Height. When a background image with a positive size is
// present, it becomes the display size; otherwise the image size is used.
func FromCurveView(src CurveView) (ViewState, error) {
	attrs, _ := src.(ViewAttributes)
	lookup := func(name string) (any, bool) {
		if attrs == nil {
			return nil, false
		}
		v, ok := attrs.Attr(name)
		if ok && v == nil {
			return nil, false
		}
		return v, ok
	}

	zoom := defaultZoom
	if raw, ok := lookup(AttrZoomFactor); ok {
		f, isNum := geom.Number(raw)
		if !isNum {
			return ViewState{}, &TypeError{Field: AttrZoomFactor, Got: raw}
		}
		zoom = f
	}

	num := func(name string, def float64) float64 {
		if raw, ok := lookup(name); ok {
			if f, isNum := geom.Number(raw); isNum {
				return f
			}
		}
		return def
	}
	flag := func(name string, def bool) bool {
		if raw, ok := lookup(name); ok {
			if b, isBool := raw.(bool); isBool {
				return b
			}
		}
		return def
	}

	imageW := int(num(AttrImageWidth, defaultImageW))
	imageH := int(num(AttrImageHeight, defaultImageH))
	v := ViewState{
		DisplayWidth:  float64(imageW),
		DisplayHeight: float64(imageH),
		WidgetWidth:   src.Width(),
		WidgetHeight:  src.Height(),
		ZoomFactor:    zoom,
		OffsetX:       num(AttrOffsetX, 0),
		OffsetY:       num(AttrOffsetY, 0),
		ScaleToImage:  flag(AttrScaleToImage, true),
		FlipYAxis:     flag(AttrFlipYAxis, false),
		ManualXOffset: num(AttrManualXOffset, 0),
		ManualYOffset: num(AttrManualYOffset, 0),
		ImageWidth:    imageW,
		ImageHeight:   imageH,
	}
	if raw, ok := lookup(AttrBackgroundImage); ok {
		if bg, isSized := raw.(Sized); isSized {
			v.Background = bg
			if bg.Width() > 0 && bg.Height() > 0 {
				v.DisplayWidth = float64(bg.Width())
				v.DisplayHeight = float64(bg.Height())
			}
		}
	}
	return v, nil
}
