/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package export

import (
	"fmt"
	"image"
	"image/png"
	"io"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"gocanvas/internal/element"
	"gocanvas/internal/geom"
	"gocanvas/internal/textlayout"
)

// Rasterize draws the scene onto an RGBA image of the page size.
func Rasterize(els []element.Element, opt Options) *image.RGBA {
	opt = opt.resolve(els)
	dst := image.NewRGBA(image.Rect(0, 0, int(opt.Width), int(opt.Height)))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(opt.Background), image.Point{}, xdraw.Src)

	for _, el := range els {
		b := el.Box()
		switch el.Kind {
		case element.KindText:
			drawText(dst, b, textlayout.Layout(el.Text, el.FontSize, el.Width), el.FontSize)
		default:
			src := pixels(el, opt.Now)
			if src == nil {
				// a 1x1 uniform scaled up to the box
				m := b.Transform().Mul(geom.Scale(b.Width, b.Height))
				xdraw.NearestNeighbor.Transform(dst, aff3(m), image.NewUniform(placeholder), image.Rect(0, 0, 1, 1), xdraw.Over, nil)
				continue
			}
			sb := src.Bounds()
			if sb.Empty() {
				continue
			}
			m := b.Transform().
				Mul(geom.Scale(b.Width/float64(sb.Dx()), b.Height/float64(sb.Dy()))).
				Mul(geom.Translate(-float64(sb.Min.X), -float64(sb.Min.Y)))
			xdraw.CatmullRom.Transform(dst, aff3(m), src, sb, xdraw.Over, nil)
		}
	}
	return dst
}

// PNG writes the rasterized scene.
func PNG(w io.Writer, els []element.Element, opt Options) error {
	if err := png.Encode(w, Rasterize(els, opt)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// drawText renders each laid out line with the 7x13 bitmap face and scales
// it to the requested font size, one line height per line.
func drawText(dst *image.RGBA, b geom.Box, tb textlayout.Box, fontSize float64) {
	face := basicfont.Face7x13
	k := fontSize / float64(face.Height)
	for i, ln := range tb.Lines {
		w := font.MeasureString(face, ln.Text).Ceil()
		if w == 0 || fontSize <= 0 {
			continue
		}
		tmp := image.NewRGBA(image.Rect(0, 0, w, face.Height))
		d := font.Drawer{Dst: tmp, Src: image.Black, Face: face, Dot: fixed.P(0, face.Ascent)}
		d.DrawString(ln.Text)

		m := b.Transform().Mul(geom.Translate(0, float64(i)*fontSize)).Mul(geom.Scale(k, k))
		xdraw.ApproxBiLinear.Transform(dst, aff3(m), tmp, tmp.Bounds(), xdraw.Over, nil)
	}
}

func aff3(m geom.Affine2D) f64.Aff3 {
	return f64.Aff3{m.A, m.C, m.E, m.B, m.D, m.F}
}
