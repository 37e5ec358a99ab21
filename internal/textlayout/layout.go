/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package textlayout breaks text element content into lines and measures it
// with the fixed 7x13 bitmap face scaled to the requested font size. Every
// renderer and the hit-test geometry share these numbers.
package textlayout

import (
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
)

// ReferenceSize is the pixel height basicfont.Face7x13 is drawn at.
const ReferenceSize = 13.0

// Line is a single laid out line.
type Line struct {
	Text  string
	Width float64
}

// Box is the result of laying out text, in canvas units.
type Box struct {
	Lines  []Line
	Width  float64
	Height float64
}

// Layout splits text at newlines and, when maxWidth > 0, word-wraps each
// paragraph so no line exceeds maxWidth unless a single word does. Line
// height equals fontSize.
func Layout(text string, fontSize, maxWidth float64) Box {
	var b Box
	if fontSize <= 0 {
		return b
	}
	scale := fontSize / ReferenceSize
	for _, para := range strings.Split(text, "\n") {
		for _, ln := range wrap(para, maxWidth/scale) {
			w := measure(ln) * scale
			b.Lines = append(b.Lines, Line{Text: ln, Width: w})
			b.Width = max(b.Width, w)
		}
	}
	b.Height = float64(len(b.Lines)) * fontSize
	return b
}

// wrap breaks para on spaces; limit is in reference pixels. Wrapped
// paragraphs collapse runs of spaces.
func wrap(para string, limit float64) []string {
	if limit <= 0 || measure(para) <= limit {
		return []string{para}
	}
	words := strings.Fields(para)
	if len(words) == 0 {
		return []string{""}
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		if measure(cur+" "+w) > limit {
			out = append(out, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(out, cur)
}

func measure(s string) float64 {
	return float64(font.MeasureString(basicfont.Face7x13, s).Round())
}
