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
	"bytes"
	"fmt"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"gocanvas/internal/element"
	"gocanvas/internal/textlayout"
	"gocanvas/internal/version"
)

// PDF writes the scene as a single-page PDF. Units are points, one point
// per canvas pixel, origin top-left. Media is embedded as PNG; text stays
// vector in built-in Helvetica.
func PDF(w io.Writer, els []element.Element, opt Options) error {
	opt = opt.resolve(els)
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: opt.Width, Ht: opt.Height},
	})
	pdf.SetTitle("gocanvas scene", false)
	pdf.SetCreator("gocanvas "+version.String(), false)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	bg := opt.Background
	pdf.SetFillColor(int(bg.R), int(bg.G), int(bg.B))
	pdf.Rect(0, 0, opt.Width, opt.Height, "F")

	for i, el := range els {
		b := el.Box()
		pdf.TransformBegin()
		if b.Rotation != 0 {
			// gofpdf rotates counter-clockwise; canvas rotation is clockwise
			pdf.TransformRotate(-b.Rotation, b.X, b.Y)
		}
		switch el.Kind {
		case element.KindText:
			pdf.SetFont("Helvetica", "", el.FontSize)
			pdf.SetTextColor(0, 0, 0)
			// baseline sits at ~80% of the line box
			for j, ln := range textlayout.Layout(el.Text, el.FontSize, el.Width).Lines {
				pdf.Text(b.X, b.Y+el.FontSize*(float64(j)+0.8), tr(ln.Text))
			}
		default:
			img := pixels(el, opt.Now)
			if img == nil {
				pdf.SetFillColor(int(placeholder.R), int(placeholder.G), int(placeholder.B))
				pdf.Rect(b.X, b.Y, b.Width, b.Height, "F")
				break
			}
			var buf bytes.Buffer
			if err := png.Encode(&buf, img); err != nil {
				pdf.TransformEnd()
				return fmt.Errorf("encode %s: %w", el.ID, err)
			}
			name := fmt.Sprintf("el-%d", i)
			opts := gofpdf.ImageOptions{ImageType: "PNG"}
			pdf.RegisterImageOptionsReader(name, opts, &buf)
			pdf.ImageOptions(name, b.X, b.Y, b.Width, b.Height, false, opts, 0, "")
		}
		pdf.TransformEnd()
	}
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
