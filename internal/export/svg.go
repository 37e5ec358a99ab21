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
	"encoding/base64"
	"fmt"
	"image/png"
	"io"
	"strings"

	"gocanvas/internal/element"
	"gocanvas/internal/media"
	"gocanvas/internal/textlayout"
)

// SVG writes the scene as an SVG document. Images reference their source
// locator; the current video frame is inlined as a PNG data URI.
func SVG(w io.Writer, els []element.Element, opt Options) error {
	opt = opt.resolve(els)
	var buf bytes.Buffer
	var werr error
	wf := func(format string, args ...any) {
		if werr != nil {
			return
		}
		_, werr = fmt.Fprintf(&buf, format, args...)
	}

	wf("<?xml version=\"1.0\" encoding=\"UTF-8\"?>\n")
	wf("<svg xmlns=\"http://www.w3.org/2000/svg\" xmlns:xlink=\"http://www.w3.org/1999/xlink\" version=\"1.1\" width=\"%g\" height=\"%g\" viewBox=\"0 0 %g %g\">\n",
		opt.Width, opt.Height, opt.Width, opt.Height)
	bg := opt.Background
	wf("  <rect x=\"0\" y=\"0\" width=\"%g\" height=\"%g\" fill=\"#%02x%02x%02x\"/>\n", opt.Width, opt.Height, bg.R, bg.G, bg.B)

	for _, el := range els {
		b := el.Box()
		tf := fmt.Sprintf("translate(%g %g)", b.X, b.Y)
		if b.Rotation != 0 {
			tf += fmt.Sprintf(" rotate(%g)", b.Rotation)
		}
		switch el.Kind {
		case element.KindText:
			wf("  <text id=\"%s\" transform=\"%s\" font-family=\"Helvetica, Arial, sans-serif\" font-size=\"%g\">", escAttr(el.ID), tf, el.FontSize)
			for j, ln := range textlayout.Layout(el.Text, el.FontSize, el.Width).Lines {
				wf("<tspan x=\"0\" y=\"%g\">%s</tspan>", el.FontSize*(float64(j)+0.8), escText(ln.Text))
			}
			wf("</text>\n")
		case element.KindImage:
			wf("  <image id=\"%s\" transform=\"%s\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" xlink:href=\"%s\"/>\n",
				escAttr(el.ID), tf, b.Width, b.Height, escAttr(el.Media.Source))
		case element.KindVideo:
			href, err := videoFrameURI(el, opt)
			if err != nil {
				return err
			}
			if href == "" {
				wf("  <rect id=\"%s\" transform=\"%s\" width=\"%g\" height=\"%g\" fill=\"#dddddd\"/>\n", escAttr(el.ID), tf, b.Width, b.Height)
				continue
			}
			wf("  <image id=\"%s\" transform=\"%s\" width=\"%g\" height=\"%g\" preserveAspectRatio=\"none\" xlink:href=\"%s\"/>\n",
				escAttr(el.ID), tf, b.Width, b.Height, href)
		}
	}
	wf("</svg>\n")
	if werr != nil {
		return fmt.Errorf("write svg: %w", werr)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("write svg: %w", err)
	}
	return nil
}

func videoFrameURI(el element.Element, opt Options) (string, error) {
	if _, ok := el.Media.Handle.(*media.Video); !ok {
		return "", nil
	}
	img := pixels(el, opt.Now)
	if img == nil {
		return "", nil
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return "", fmt.Errorf("encode frame %s: %w", el.ID, err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

var attrEscaper = strings.NewReplacer("&", "&amp;", "\"", "&quot;", "<", "&lt;", ">", "&gt;")
var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escAttr(s string) string { return attrEscaper.Replace(s) }
func escText(s string) string { return textEscaper.Replace(s) }
