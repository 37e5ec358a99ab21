/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package scene owns the editable scene: the ordered element list, the
// selection, and every mutation of them. Mutations route through the undo
// history according to their class (discrete commands snapshot first,
// continuous gesture commits do not). Readers get immutable Frames and may
// read from any goroutine; mutations must be serialized by the caller.
package scene

import "gocanvas/internal/element"

// Frame is an immutable view of the scene. Elements is ordered bottom to
// top (index 0 painted first). A Frame is never modified after it has been
// published; do not modify its slice.
type Frame struct {
	Elements []element.Element
	Selected string
	Version  uint64
}

// Find returns the element with id and its index.
func (f *Frame) Find(id string) (element.Element, int, bool) {
	if f == nil || id == "" {
		return element.Element{}, -1, false
	}
	for i, el := range f.Elements {
		if el.ID == id {
			return el, i, true
		}
	}
	return element.Element{}, -1, false
}

// SelectedElement returns the selected element, if any.
func (f *Frame) SelectedElement() (element.Element, bool) {
	el, _, ok := f.Find(f.Selected)
	return el, ok
}

// Direction is an arrow-key move direction.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// ParseDirection maps "up", "down", "left", "right".
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return 0, false
}

// ZDirection selects the neighbour a reorder swaps with.
type ZDirection int

const (
	// Forward moves towards the top (later paint).
	Forward ZDirection = iota
	// Backward moves towards the bottom.
	Backward
)

// DefaultStep is the arrow-key move distance in canvas units.
const DefaultStep = 5.0
