/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"slices"
	"time"

	"gocanvas/internal/element"
	"gocanvas/internal/geom"
	"gocanvas/internal/media"
	"gocanvas/internal/scene"
)

// sceneView returns the elements to draw: the published frame with the
// element under an active gesture replaced by its preview.
func sceneView(f *scene.Frame, g *gesture) []element.Element {
	ghost, ok := g.preview()
	if !ok {
		return f.Elements
	}
	_, idx, found := f.Find(ghost.ID)
	if !found {
		return f.Elements
	}
	els := slices.Clone(f.Elements)
	els[idx] = ghost
	return els
}

// selection returns the selected element as drawn, honouring a gesture preview.
func selection(f *scene.Frame, g *gesture) (element.Element, bool) {
	if ghost, ok := g.preview(); ok && ghost.ID == f.Selected {
		return ghost, true
	}
	if f.Selected == "" {
		return element.Element{}, false
	}
	el, _, ok := f.Find(f.Selected)
	return el, ok
}

// videoSeq fingerprints the visible frame of every decoded video at now, so
// the poll loop redraws only when playback actually advanced.
func videoSeq(els []element.Element, now time.Time) uint64 {
	var h uint64
	for _, el := range els {
		if el.Kind != element.KindVideo || !el.Media.Drawable() {
			continue
		}
		if v, ok := el.Media.Handle.(*media.Video); ok {
			_, seq := v.Frame(now)
			h = h*31 + seq + 1
		}
	}
	return h
}

// anchorsFor returns what a moving element snaps to: the page and the
// bounds of every other element.
func anchorsFor(els []element.Element, moving string, page geom.Rect) []geom.Rect {
	out := []geom.Rect{page}
	for _, el := range els {
		if el.ID != moving {
			out = append(out, el.Box().Bounds())
		}
	}
	return out
}
