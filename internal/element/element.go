/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package element defines the placeable content of a scene: raster images,
// styled text and video frames. Elements are plain values; copying an
// Element copies everything except the runtime media handle, which is
// immutable and shared.
package element

import (
	"strings"

	"gocanvas/internal/geom"
	"gocanvas/internal/textlayout"
)

// Kind tags the variant of an Element.
type Kind string

const (
	KindImage Kind = "image"
	KindText  Kind = "text"
	KindVideo Kind = "video"
)

// ParseKind maps a persisted type tag to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindImage, KindText, KindVideo:
		return Kind(s), true
	}
	return "", false
}

// HasMedia reports whether elements of this kind carry a media reference.
func (k Kind) HasMedia() bool { return k == KindImage || k == KindVideo }

// MediaState tracks whether a media reference has a drawable handle yet.
type MediaState int

const (
	MediaPending MediaState = iota
	MediaResolved
	MediaFailed
)

func (s MediaState) String() string {
	switch s {
	case MediaResolved:
		return "resolved"
	case MediaFailed:
		return "failed"
	default:
		return "pending"
	}
}

// Handle is the runtime-only drawable produced by the media loader.
// Handles are never persisted and never mutated once attached.
type Handle interface {
	Size() (w, h int)
}

// Media is the two-part media reference: a stable, serializable Source
// locator plus the runtime resolution state.
type Media struct {
	Source string
	State  MediaState
	Handle Handle
	// Reason is set when State is MediaFailed.
	Reason string
}

// Pending returns an unresolved reference to source.
func Pending(source string) Media { return Media{Source: source, State: MediaPending} }

// Drawable reports whether the reference has a resolved handle.
func (m Media) Drawable() bool { return m.State == MediaResolved && m.Handle != nil }

// Element is one placeable item. Kind selects which fields apply:
//
//	image: X, Y, Width, Height, Rotation, Media
//	text:  X, Y, Width?, Height?, Text, FontSize, Rotation?
//	video: X, Y, Width, Height, Media
//
// Text width/height are optional; zero means "use the laid out text size".
// A set text width wraps the text at word boundaries.
type Element struct {
	ID       string
	Kind     Kind
	X, Y     float64
	Width    float64
	Height   float64
	Rotation float64
	Text     string
	FontSize float64
	Media    Media
}

// NewImage builds an image element referencing source.
func NewImage(id string, x, y, width, height float64, source string) (Element, error) {
	el := Element{ID: id, Kind: KindImage, X: x, Y: y, Width: width, Height: height, Media: Pending(source)}
	return el, Validate(el)
}

// NewText builds a text element. Width and height start unset.
func NewText(id string, x, y float64, text string, fontSize float64) (Element, error) {
	el := Element{ID: id, Kind: KindText, X: x, Y: y, Text: text, FontSize: fontSize}
	return el, Validate(el)
}

// NewVideo builds a video element referencing source.
func NewVideo(id string, x, y, width, height float64, source string) (Element, error) {
	el := Element{ID: id, Kind: KindVideo, X: x, Y: y, Width: width, Height: height, Media: Pending(source)}
	return el, Validate(el)
}

// Validate checks the invariants every element must satisfy.
func Validate(el Element) error {
	if strings.TrimSpace(el.ID) == "" {
		return invalid(el, "id is empty")
	}
	switch el.Kind {
	case KindImage, KindVideo:
		if el.Width <= 0 || el.Height <= 0 {
			return invalid(el, "width and height must be > 0")
		}
		if strings.TrimSpace(el.Media.Source) == "" {
			return invalid(el, "media source is empty")
		}
		if el.Kind == KindVideo && el.Rotation != 0 {
			return invalid(el, "video elements cannot be rotated")
		}
		if el.Text != "" || el.FontSize != 0 {
			return invalid(el, "text attributes on a media element")
		}
	case KindText:
		if el.Width < 0 || el.Height < 0 {
			return invalid(el, "width and height must be > 0 when set")
		}
		if el.FontSize <= 0 {
			return invalid(el, "font size must be > 0")
		}
		if el.Media.Source != "" || el.Media.Handle != nil {
			return invalid(el, "text elements carry no media")
		}
	default:
		return invalid(el, "unknown kind")
	}
	return nil
}

// WithMedia returns el with its media reference replaced.
// It fails for elements that do not carry media.
func WithMedia(el Element, m Media) (Element, error) {
	if !el.Kind.HasMedia() {
		return el, &InvalidAttributeError{Kind: el.Kind, Attr: "media"}
	}
	el.Media = m
	return el, nil
}

// Translatable reports whether arrow-key moves apply to the element.
// Only text is nudged; media is positioned by dragging.
func (el Element) Translatable() bool { return el.Kind == KindText }

// Box returns the element's placement. Text without an explicit size is
// measured from its content.
func (el Element) Box() geom.Box {
	w, h := el.Width, el.Height
	if el.Kind == KindText && (w == 0 || h == 0) {
		tb := textlayout.Layout(el.Text, el.FontSize, w)
		if w == 0 {
			w = tb.Width
		}
		if h == 0 {
			h = tb.Height
		}
	}
	return geom.Box{X: el.X, Y: el.Y, Width: w, Height: h, Rotation: el.Rotation}
}
