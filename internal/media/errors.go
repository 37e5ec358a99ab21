/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package media

import (
	"errors"
	"fmt"
)

// ErrMediaLoad is matched by every *MediaLoadError.
var ErrMediaLoad = errors.New("media load failed")

// ErrUnsupportedFormat is wrapped when no decoder recognizes the payload.
var ErrUnsupportedFormat = errors.New("unsupported format")

// MediaLoadError reports why a source could not be turned into a handle.
// Reason is one of "fetch", "too large", "decode" or "unsupported format".
type MediaLoadError struct {
	Source string
	Reason string
	Err    error
}

func (e *MediaLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Source, e.Reason)
}

func (e *MediaLoadError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrMediaLoad, e.Err}
	}
	return []error{ErrMediaLoad}
}
