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

import "testing"

func TestCommitAttrsFoldsScaleIntoSize(t *testing.T) {
	img, _ := NewImage("a", 50, 50, 120, 120, "lion.png")
	a := CommitAttrs(img, Transform{X: 70, Y: 40, Rotation: 15, ScaleX: 1.5, ScaleY: 0.5})
	out, err := WithAttributes(img, a)
	if err != nil {
		t.Fatalf("WithAttributes: %v", err)
	}
	if out.X != 70 || out.Y != 40 || out.Rotation != 15 {
		t.Fatalf("position/rotation not committed: %+v", out)
	}
	if out.Width != 180 || out.Height != 60 {
		t.Fatalf("scale not folded: %vx%v", out.Width, out.Height)
	}
}

func TestCommitAttrsDragOnly(t *testing.T) {
	vid, _ := NewVideo("v", 100, 100, 240, 140, "clip.gif")
	a := CommitAttrs(vid, Transform{X: 1, Y: 2, ScaleX: 1, ScaleY: 1})
	if a.Width != nil || a.Height != nil || a.Rotation != nil {
		t.Fatalf("drag commit should only carry position: %+v", a)
	}
	if _, err := WithAttributes(vid, a); err != nil {
		t.Fatalf("video drag commit rejected: %v", err)
	}
}

func TestCommitAttrsScalesTextFont(t *testing.T) {
	txt, _ := NewText("t", 0, 0, "Hi", 24)
	a := CommitAttrs(txt, Transform{ScaleX: 2, ScaleY: 2})
	out, err := WithAttributes(txt, a)
	if err != nil {
		t.Fatalf("WithAttributes: %v", err)
	}
	if out.FontSize != 48 {
		t.Fatalf("font size = %v, want 48", out.FontSize)
	}
	if out.Width <= 0 || out.Height != 48 {
		t.Fatalf("measured size should be folded: %vx%v", out.Width, out.Height)
	}
}

func TestCommitAttrsZeroScaleMeansUnit(t *testing.T) {
	img, _ := NewImage("a", 0, 0, 10, 10, "lion.png")
	a := CommitAttrs(img, Transform{X: 3, Y: 4})
	if a.Width != nil || a.Height != nil {
		t.Fatalf("unset scale must not resize: %+v", a)
	}
}
