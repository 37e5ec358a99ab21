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

// Attrs is a partial update. Nil fields are left untouched.
type Attrs struct {
	X        *float64
	Y        *float64
	Width    *float64
	Height   *float64
	Rotation *float64
	Text     *string
	FontSize *float64
}

// Float returns a pointer to v for building Attrs literals.
func Float(v float64) *float64 { return &v }

// String returns a pointer to s for building Attrs literals.
func String(s string) *string { return &s }

// Position is the Attrs of a drag commit.
func Position(x, y float64) Attrs { return Attrs{X: Float(x), Y: Float(y)} }

// IsZero reports whether no attribute is set.
func (a Attrs) IsZero() bool { return a == Attrs{} }

// permitted lists which attributes each variant accepts.
var permitted = map[Kind]map[string]bool{
	KindImage: {"x": true, "y": true, "width": true, "height": true, "rotation": true},
	KindText:  {"x": true, "y": true, "width": true, "height": true, "rotation": true, "text": true, "fontSize": true},
	KindVideo: {"x": true, "y": true, "width": true, "height": true},
}

// set returns the names of the attributes present in a.
func (a Attrs) set() []string {
	var names []string
	if a.X != nil {
		names = append(names, "x")
	}
	if a.Y != nil {
		names = append(names, "y")
	}
	if a.Width != nil {
		names = append(names, "width")
	}
	if a.Height != nil {
		names = append(names, "height")
	}
	if a.Rotation != nil {
		names = append(names, "rotation")
	}
	if a.Text != nil {
		names = append(names, "text")
	}
	if a.FontSize != nil {
		names = append(names, "fontSize")
	}
	return names
}

// WithAttributes returns a new element with the attributes in a merged in.
// el itself is never modified. Attributes that do not apply to el's variant
// fail with *InvalidAttributeError, as do sizes that are not positive.
func WithAttributes(el Element, a Attrs) (Element, error) {
	allowed := permitted[el.Kind]
	for _, name := range a.set() {
		if !allowed[name] {
			return el, &InvalidAttributeError{Kind: el.Kind, Attr: name}
		}
	}
	if a.Width != nil && *a.Width <= 0 {
		return el, &InvalidAttributeError{Kind: el.Kind, Attr: "width", Reason: "must be > 0"}
	}
	if a.Height != nil && *a.Height <= 0 {
		return el, &InvalidAttributeError{Kind: el.Kind, Attr: "height", Reason: "must be > 0"}
	}
	if a.FontSize != nil && *a.FontSize <= 0 {
		return el, &InvalidAttributeError{Kind: el.Kind, Attr: "fontSize", Reason: "must be > 0"}
	}
	out := el
	if a.X != nil {
		out.X = *a.X
	}
	if a.Y != nil {
		out.Y = *a.Y
	}
	if a.Width != nil {
		out.Width = *a.Width
	}
	if a.Height != nil {
		out.Height = *a.Height
	}
	if a.Rotation != nil {
		out.Rotation = *a.Rotation
	}
	if a.Text != nil {
		out.Text = *a.Text
	}
	if a.FontSize != nil {
		out.FontSize = *a.FontSize
	}
	return out, nil
}
