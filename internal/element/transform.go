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

// Transform is the node state a render bridge reports at the end of a drag
// or resize gesture. ScaleX/ScaleY are the interactive resize factors
// applied on top of the element's committed width/height.
type Transform struct {
	X, Y           float64
	Rotation       float64
	ScaleX, ScaleY float64
}

// CommitAttrs folds the gesture's scale into width/height and returns the
// Attrs for a single update. The result never carries a non-unit scale:
// callers reset their node scale to 1 after committing. Text font size is
// scaled by ScaleY. Rotation is only reported for variants that rotate.
func CommitAttrs(el Element, t Transform) Attrs {
	sx, sy := t.ScaleX, t.ScaleY
	if sx == 0 {
		sx = 1
	}
	if sy == 0 {
		sy = 1
	}
	a := Position(t.X, t.Y)
	if permitted[el.Kind]["rotation"] {
		a.Rotation = Float(t.Rotation)
	}
	if sx == 1 && sy == 1 {
		return a
	}
	box := el.Box()
	if box.Width > 0 {
		a.Width = Float(box.Width * abs(sx))
	}
	if box.Height > 0 {
		a.Height = Float(box.Height * abs(sy))
	}
	if el.Kind == KindText {
		a.FontSize = Float(el.FontSize * abs(sy))
	}
	return a
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
