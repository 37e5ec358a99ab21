package textlayout

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestLayoutScalesWithFont(t *testing.T) {
	b13 := Layout("Hi", 13, 0)
	if b13.Width != 14 || b13.Height != 13 {
		t.Fatalf("layout at reference size = %v x %v", b13.Width, b13.Height)
	}
	b26 := Layout("Hi", 26, 0)
	if !approx(b26.Width, 2*b13.Width) || !approx(b26.Height, 2*b13.Height) {
		t.Fatalf("layout should scale linearly: %v x %v", b26.Width, b26.Height)
	}
	if b := Layout("x", 0, 0); b.Width != 0 || b.Height != 0 || len(b.Lines) != 0 {
		t.Fatalf("zero font size should measure zero: %+v", b)
	}
}

func TestLayoutNewlines(t *testing.T) {
	b := Layout("a\nbb\n", 10, 0)
	if len(b.Lines) != 3 || b.Height != 30 {
		t.Fatalf("got %d lines, height %v", len(b.Lines), b.Height)
	}
	if b.Lines[1].Text != "bb" || b.Lines[2].Text != "" {
		t.Fatalf("unexpected lines %+v", b.Lines)
	}
}

func TestLayoutWrapsAtWidth(t *testing.T) {
	// 7px per glyph at the reference size
	b := Layout("one two three", ReferenceSize, 7*8)
	want := []string{"one two", "three"}
	if len(b.Lines) != len(want) {
		t.Fatalf("got %+v", b.Lines)
	}
	for i, w := range want {
		if b.Lines[i].Text != w {
			t.Fatalf("line %d = %q, want %q", i, b.Lines[i].Text, w)
		}
	}
	if b.Width != 49 || b.Height != 2*ReferenceSize {
		t.Fatalf("box = %v x %v", b.Width, b.Height)
	}
}

func TestLayoutKeepsLongWords(t *testing.T) {
	b := Layout("supercalifragilistic", ReferenceSize, 20)
	if len(b.Lines) != 1 || b.Width <= 20 {
		t.Fatalf("a single word must not be split: %+v", b)
	}
}

func TestLayoutUnwrappedPreservesSpaces(t *testing.T) {
	b := Layout("a  b", ReferenceSize, 0)
	if b.Lines[0].Text != "a  b" || b.Width != 28 {
		t.Fatalf("got %+v", b.Lines[0])
	}
}
