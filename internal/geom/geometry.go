/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package geom holds the small amount of 2D geometry the scene needs:
// element bounds, rotation about an element origin, and point hit tests.
package geom

import "math"

// Pt is a 2D point in canvas coordinates.
type Pt struct{ X, Y float64 }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

func (r Rect) Min() Pt { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt { return Pt{r.X + r.W, r.Y + r.H} }

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

// Invert returns the inverse transform, or Identity when m is singular.
func (m Affine2D) Invert() Affine2D {
	det := m.A*m.D - m.B*m.C
	if det == 0 {
		return Identity
	}
	inv := 1 / det
	return Affine2D{
		A: m.D * inv,
		B: -m.B * inv,
		C: -m.C * inv,
		D: m.A * inv,
		E: (m.C*m.F - m.D*m.E) * inv,
		F: (m.B*m.E - m.A*m.F) * inv,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c, s := math.Cos(rad), math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// Box is a rectangle placed at (X, Y) and rotated by Rotation degrees
// around its top-left corner, the way canvas nodes are positioned.
type Box struct {
	X, Y          float64
	Width, Height float64
	Rotation      float64 // degrees, clockwise
}

// Transform maps local box coordinates to canvas coordinates.
func (b Box) Transform() Affine2D {
	return Translate(b.X, b.Y).Mul(Rotate(b.Rotation * math.Pi / 180))
}

// Contains reports whether canvas point p lies inside the rotated box.
func (b Box) Contains(p Pt) bool {
	q := b.Transform().Invert().Apply(p)
	return Rect{W: b.Width, H: b.Height}.Contains(q)
}

// Bounds returns the axis-aligned bounds of the rotated box.
func (b Box) Bounds() Rect {
	m := b.Transform()
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, c := range []Pt{{0, 0}, {b.Width, 0}, {0, b.Height}, {b.Width, b.Height}} {
		p := m.Apply(c)
		minX, minY = math.Min(minX, p.X), math.Min(minY, p.Y)
		maxX, maxY = math.Max(maxX, p.X), math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
