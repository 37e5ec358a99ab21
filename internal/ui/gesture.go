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
	"math"

	"gocanvas/internal/element"
	"gocanvas/internal/geom"
)

// dragMode represents the current pointer gesture on the scene canvas.
type dragMode int

const (
	dragNone dragMode = iota
	dragMove
	dragScale
	dragRotate
)

const (
	handleSize   = 10 // side of the resize handle, canvas units
	rotateOffset = 24 // distance of the rotate handle above the top edge
	minExtent    = 4  // smallest width/height a resize may produce
	snapDistance = 6  // moves snap to neighbour edges and centres within this range
)

// gesture buffers an interactive move/resize/rotate locally. The scene only
// sees the final state, through a single CommitTransform at DragEnd.
type gesture struct {
	mode   dragMode
	origin element.Element
	start  geom.Pt
	t      element.Transform

	// anchors are what a move snaps to; guides are the lines it snapped on.
	anchors []geom.Rect
	guides  []geom.Guide
}

func identity(el element.Element) element.Transform {
	return element.Transform{X: el.X, Y: el.Y, Rotation: el.Rotation, ScaleX: 1, ScaleY: 1}
}

func rotatable(el element.Element) bool { return el.Kind != element.KindVideo }

// handles returns the resize handle centre and rotate handle centre of el in
// canvas coordinates.
func handles(el element.Element) (resize, rotate geom.Pt) {
	b := el.Box()
	m := b.Transform()
	return m.Apply(geom.Pt{X: b.Width, Y: b.Height}), m.Apply(geom.Pt{X: b.Width / 2, Y: -rotateOffset})
}

func near(a, b geom.Pt) bool {
	return math.Abs(a.X-b.X) <= handleSize/2 && math.Abs(a.Y-b.Y) <= handleSize/2
}

// modeAt picks the gesture a press at p on the selected element el starts.
func modeAt(el element.Element, p geom.Pt) dragMode {
	rs, rt := handles(el)
	switch {
	case near(p, rs):
		return dragScale
	case rotatable(el) && near(p, rt):
		return dragRotate
	case el.Box().Contains(p):
		return dragMove
	}
	return dragNone
}

func (g *gesture) active() bool { return g.mode != dragNone }

func (g *gesture) begin(el element.Element, p geom.Pt, mode dragMode) {
	g.mode = mode
	g.origin = el
	g.start = p
	g.t = identity(el)
}

// update recomputes the buffered transform for pointer position p.
func (g *gesture) update(p geom.Pt) {
	el := g.origin
	b := el.Box()
	switch g.mode {
	case dragMove:
		g.t.X = el.X + p.X - g.start.X
		g.t.Y = el.Y + p.Y - g.start.Y
		g.guides = nil
		if len(g.anchors) > 0 {
			moved := b
			moved.X, moved.Y = g.t.X, g.t.Y
			bounds := moved.Bounds()
			snapped, guides := geom.Snap(bounds, g.anchors, snapDistance)
			g.t.X += snapped.X - bounds.X
			g.t.Y += snapped.Y - bounds.Y
			g.guides = guides
		}
	case dragScale:
		q := b.Transform().Invert().Apply(p)
		g.t.ScaleX = math.Max(q.X, minExtent) / b.Width
		g.t.ScaleY = math.Max(q.Y, minExtent) / b.Height
	case dragRotate:
		c := b.Transform().Apply(geom.Pt{X: b.Width / 2, Y: b.Height / 2})
		a0 := math.Atan2(g.start.Y-c.Y, g.start.X-c.X)
		a1 := math.Atan2(p.Y-c.Y, p.X-c.X)
		rot := el.Rotation + (a1-a0)*180/math.Pi
		// keep the centre fixed while the box turns about its origin
		off := geom.Rotate(rot * math.Pi / 180).Apply(geom.Pt{X: b.Width / 2, Y: b.Height / 2})
		g.t.Rotation = rot
		g.t.X = c.X - off.X
		g.t.Y = c.Y - off.Y
	}
}

// preview returns the element as it would look if the gesture ended now.
func (g *gesture) preview() (element.Element, bool) {
	if !g.active() {
		return element.Element{}, false
	}
	el, err := element.WithAttributes(g.origin, element.CommitAttrs(g.origin, g.t))
	if err != nil {
		return g.origin, true
	}
	return el, true
}

// end finishes the gesture and reports the transform to commit. It reports
// false when nothing was dragged or the pointer never moved.
func (g *gesture) end() (string, element.Transform, bool) {
	if !g.active() {
		return "", element.Transform{}, false
	}
	id, t := g.origin.ID, g.t
	moved := t != identity(g.origin)
	*g = gesture{}
	return id, t, moved
}
