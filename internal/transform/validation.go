/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"os"
	"strings"
)

// EnvFullValidation toggles strict validation for every transform built by
// a Service that resolves its mode from the environment.
const EnvFullValidation = "CURVE_EDITOR_FULL_VALIDATION"

// ValidationMode selects how much checking transforms perform.
type ValidationMode uint8

const (
	// Production never fails on extreme numbers; degenerate input degrades
	// to best-effort results.
	Production ValidationMode = iota
	// Strict rejects degenerate scales and absurd coordinate magnitudes.
	Strict
)

func (m ValidationMode) String() string {
	if m == Strict {
		return "strict"
	}
	return "production"
}

// Strict-mode bounds.
const (
	minScale      = 1e-10
	maxScale      = 1e10
	maxCoordinate = 1e14
	maxDisplayH   = 1_000_000
	defaultImageW = 1920
	defaultImageH = 1080
	defaultZoom   = 1.0
)

// ParseValidationMode interprets s as a strictness toggle. "true", "yes"
// and "1" select Strict, "false", "no" and "0" select Production, matched
// case-insensitively. ok is false for anything else.
func ParseValidationMode(s string) (mode ValidationMode, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1":
		return Strict, true
	case "false", "no", "0":
		return Production, true
	case "strict":
		return Strict, true
	case "production":
		return Production, true
	}
	return Production, false
}

// ValidationFromEnv resolves the mode from EnvFullValidation, falling back
// to Strict only for binaries built with the debug tag.
func ValidationFromEnv() ValidationMode {
	if m, ok := ParseValidationMode(os.Getenv(EnvFullValidation)); ok {
		return m
	}
	if debugBuild {
		return Strict
	}
	return Production
}
