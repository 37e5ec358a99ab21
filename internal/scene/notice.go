/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import "fmt"

// NoticeKind classifies user-visible events.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSaved
	NoticeLoaded
	NoticeNothingToLoad
	NoticeCorruptDocument
	NoticeMediaFailed
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSaved:
		return "saved"
	case NoticeLoaded:
		return "loaded"
	case NoticeNothingToLoad:
		return "nothing-to-load"
	case NoticeCorruptDocument:
		return "corrupt-document"
	case NoticeMediaFailed:
		return "media-failed"
	case NoticeError:
		return "error"
	default:
		return "info"
	}
}

// Notice is one event on the store's notification channel. Failures that
// the user must see (corrupt loads, media failures) arrive here instead of
// being returned across the mutation boundary.
type Notice struct {
	Kind       NoticeKind
	Message    string
	Source     string
	ElementIDs []string
	Err        error
}

// IsFailure reports whether the notice describes a failure.
func (n Notice) IsFailure() bool {
	return n.Kind == NoticeCorruptDocument || n.Kind == NoticeMediaFailed || n.Kind == NoticeError
}

func (n Notice) String() string {
	if n.Err != nil {
		return fmt.Sprintf("%s: %s: %v", n.Kind, n.Message, n.Err)
	}
	return fmt.Sprintf("%s: %s", n.Kind, n.Message)
}
