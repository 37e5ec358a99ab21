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
	"testing"
)

type fakeHandle struct{ w, h int }

func (f *fakeHandle) Size() (int, int) { return f.w, f.h }

func TestConstructorsValidate(t *testing.T) {
	cases := []struct {
		name string
		make func() (Element, error)
		ok   bool
	}{
		{"image ok", func() (Element, error) { return NewImage("a", 0, 0, 10, 10, "lion.png") }, true},
		{"image zero width", func() (Element, error) { return NewImage("a", 0, 0, 0, 10, "lion.png") }, false},
		{"image negative height", func() (Element, error) { return NewImage("a", 0, 0, 10, -1, "lion.png") }, false},
		{"image empty id", func() (Element, error) { return NewImage(" ", 0, 0, 10, 10, "lion.png") }, false},
		{"image empty source", func() (Element, error) { return NewImage("a", 0, 0, 10, 10, "") }, false},
		{"text ok", func() (Element, error) { return NewText("t", -5, -5, "Hi", 24) }, true},
		{"text zero font", func() (Element, error) { return NewText("t", 0, 0, "Hi", 0) }, false},
		{"text empty id", func() (Element, error) { return NewText("", 0, 0, "Hi", 24) }, false},
		{"video ok", func() (Element, error) { return NewVideo("v", 100, 100, 240, 140, "flower.gif") }, true},
		{"video zero size", func() (Element, error) { return NewVideo("v", 0, 0, 240, 0, "flower.gif") }, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := c.make()
			if c.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !c.ok {
				var ie *InvalidElementError
				if !errors.As(err, &ie) || !errors.Is(err, ErrInvalidElement) {
					t.Fatalf("expected InvalidElementError, got %v", err)
				}
			}
		})
	}
}

func TestNewMediaElementsStartPending(t *testing.T) {
	img, _ := NewImage("a", 0, 0, 10, 10, "lion.png")
	if img.Media.State != MediaPending || img.Media.Drawable() {
		t.Fatalf("new image should be pending: %+v", img.Media)
	}
	if img.Media.Source != "lion.png" {
		t.Fatalf("source not kept: %q", img.Media.Source)
	}
}

func TestWithAttributesMergesPermittedKeys(t *testing.T) {
	txt, _ := NewText("t", 60, 60, "Hi", 24)
	out, err := WithAttributes(txt, Attrs{X: Float(65), FontSize: Float(30), Text: String("Hello")})
	if err != nil {
		t.Fatalf("WithAttributes: %v", err)
	}
	if out.X != 65 || out.Y != 60 || out.FontSize != 30 || out.Text != "Hello" {
		t.Fatalf("merge wrong: %+v", out)
	}
	// the input value is untouched
	if txt.X != 60 || txt.Text != "Hi" {
		t.Fatalf("input mutated: %+v", txt)
	}
}

func TestWithAttributesRejectsForeignKeys(t *testing.T) {
	img, _ := NewImage("a", 0, 0, 10, 10, "lion.png")
	vid, _ := NewVideo("v", 0, 0, 10, 10, "clip.gif")
	cases := []struct {
		name string
		el   Element
		a    Attrs
		attr string
	}{
		{"fontSize on image", img, Attrs{FontSize: Float(12)}, "fontSize"},
		{"text on video", vid, Attrs{Text: String("x")}, "text"},
		{"rotation on video", vid, Attrs{Rotation: Float(45)}, "rotation"},
		{"zero width", img, Attrs{Width: Float(0)}, "width"},
		{"negative height", vid, Attrs{Height: Float(-3)}, "height"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := WithAttributes(c.el, c.a)
			var ae *InvalidAttributeError
			if !errors.As(err, &ae) || ae.Attr != c.attr {
				t.Fatalf("expected InvalidAttributeError on %s, got %v", c.attr, err)
			}
			if !errors.Is(err, ErrInvalidAttribute) {
				t.Fatalf("errors.Is(ErrInvalidAttribute) failed for %v", err)
			}
		})
	}
}

func TestWithMedia(t *testing.T) {
	img, _ := NewImage("a", 0, 0, 10, 10, "lion.png")
	h := &fakeHandle{w: 4, h: 4}
	out, err := WithMedia(img, Media{Source: "lion.png", State: MediaResolved, Handle: h})
	if err != nil {
		t.Fatalf("WithMedia: %v", err)
	}
	if !out.Media.Drawable() || img.Media.Drawable() {
		t.Fatalf("media attach should only affect the copy")
	}
	txt, _ := NewText("t", 0, 0, "x", 10)
	if _, err := WithMedia(txt, Media{Source: "x"}); err == nil {
		t.Fatalf("text must reject media")
	}
}

func TestTranslatableOnlyText(t *testing.T) {
	img, _ := NewImage("a", 0, 0, 10, 10, "lion.png")
	txt, _ := NewText("t", 0, 0, "x", 10)
	if img.Translatable() || !txt.Translatable() {
		t.Fatalf("only text should be translatable")
	}
}

func TestParseKind(t *testing.T) {
	for _, s := range []string{"image", "text", "video"} {
		if k, ok := ParseKind(s); !ok || string(k) != s {
			t.Fatalf("ParseKind(%q) = %q, %v", s, k, ok)
		}
	}
	if _, ok := ParseKind("rect"); ok {
		t.Fatalf("unknown kind accepted")
	}
}
