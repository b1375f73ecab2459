/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package transform

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks programmer or configuration errors detected by
	// precondition checks.
	ErrValidation = errors.New("validation error")
	// ErrType marks a view attribute of the wrong kind.
	ErrType = errors.New("type error")
)

// ValidationError reports a rejected input. It matches ErrValidation.
type ValidationError struct {
	Op  string
	Msg string
}

func (e *ValidationError) Error() string { return e.Op + ": " + e.Msg }

func (e *ValidationError) Unwrap() error { return ErrValidation }

func validationErrorf(op, format string, args ...any) error {
	return &ValidationError{Op: op, Msg: fmt.Sprintf(format, args...)}
}

// TypeError reports a view attribute whose value has an unusable type.
// It matches ErrType.
type TypeError struct {
	Field string
	Got   any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("%s must be numeric, got %T", e.Field, e.Got)
}

func (e *TypeError) Unwrap() error { return ErrType }
