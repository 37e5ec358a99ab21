/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package geom

import (
	"math"
	"testing"
)

func approx(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestBoxContainsAxisAligned(t *testing.T) {
	b := Box{X: 10, Y: 20, Width: 100, Height: 50}
	cases := []struct {
		p    Pt
		want bool
	}{
		{Pt{10, 20}, true},
		{Pt{60, 45}, true},
		{Pt{110, 70}, true},
		{Pt{9, 20}, false},
		{Pt{60, 71}, false},
	}
	for _, c := range cases {
		if got := b.Contains(c.p); got != c.want {
			t.Fatalf("Contains(%v) = %v, want %v", c.p, got, c.want)
		}
	}
}

func TestBoxContainsRotated(t *testing.T) {
	// rotated 90° clockwise around (0,0): local x axis points down
	b := Box{Width: 100, Height: 10, Rotation: 90}
	if !b.Contains(Pt{-5, 50}) {
		t.Fatalf("expected point inside rotated box")
	}
	if b.Contains(Pt{50, 5}) {
		t.Fatalf("point of unrotated footprint must miss")
	}
	r := b.Bounds()
	if !approx(r.W, 10) || !approx(r.H, 100) {
		t.Fatalf("rotated bounds = %+v", r)
	}
}

func TestInvertRoundTrip(t *testing.T) {
	m := Translate(3, -7).Mul(Rotate(0.7)).Mul(Scale(2, 0.5))
	p := Pt{12.5, -4}
	q := m.Invert().Apply(m.Apply(p))
	if !approx(geomRound(q.X), p.X) || !approx(geomRound(q.Y), p.Y) {
		t.Fatalf("inverse round trip: got %v want %v", q, p)
	}
}

func geomRound(v float64) float64 { return FloatRound(v, 6) }

func TestUnion(t *testing.T) {
	u := R(0, 0, 10, 10).Union(R(5, -5, 10, 10))
	if u != R(0, -5, 15, 15) {
		t.Fatalf("Union = %+v", u)
	}
}
