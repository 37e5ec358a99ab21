/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package element

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidElement   = errors.New("invalid element")
	ErrInvalidAttribute = errors.New("invalid attribute")
)

// InvalidElementError reports an element that violates the model invariants.
type InvalidElementError struct {
	ID     string
	Kind   Kind
	Reason string
}

func (e *InvalidElementError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s %s %q: %s", ErrInvalidElement, e.Kind, e.ID, e.Reason)
}

func (e *InvalidElementError) Unwrap() error { return ErrInvalidElement }

func invalid(el Element, reason string) error {
	return &InvalidElementError{ID: el.ID, Kind: el.Kind, Reason: reason}
}

// InvalidAttributeError reports an attribute that does not apply to a variant,
// or a value outside its permitted range.
type InvalidAttributeError struct {
	Kind   Kind
	Attr   string
	Reason string
}

func (e *InvalidAttributeError) Error() string {
	if e == nil {
		return ""
	}
	if e.Reason == "" {
		return fmt.Sprintf("%s: %q does not apply to %s elements", ErrInvalidAttribute, e.Attr, e.Kind)
	}
	return fmt.Sprintf("%s: %s on %s: %s", ErrInvalidAttribute, e.Attr, e.Kind, e.Reason)
}

func (e *InvalidAttributeError) Unwrap() error { return ErrInvalidAttribute }
