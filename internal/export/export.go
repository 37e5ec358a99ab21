/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package export renders a scene to PDF, PNG or SVG.
package export

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gocanvas/internal/element"
	"gocanvas/internal/media"
)

// Options controls the page all exporters draw on.
// A zero Width or Height is derived from the scene bounds, never smaller
// than the 800x500 editing surface.
type Options struct {
	Width, Height float64
	Background    color.RGBA
	// Now picks the video frame; zero means time.Now().
	Now time.Time
}

const (
	minPageWidth  = 800
	minPageHeight = 500
	pageMargin    = 20
)

var placeholder = color.RGBA{R: 0xdd, G: 0xdd, B: 0xdd, A: 0xff}

func (o Options) resolve(els []element.Element) Options {
	if o.Background == (color.RGBA{}) {
		o.Background = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	}
	if o.Now.IsZero() {
		o.Now = time.Now()
	}
	if o.Width > 0 && o.Height > 0 {
		return o
	}
	w, h := float64(minPageWidth), float64(minPageHeight)
	for _, el := range els {
		b := el.Box().Bounds()
		w = math.Max(w, b.X+b.W+pageMargin)
		h = math.Max(h, b.Y+b.H+pageMargin)
	}
	if o.Width <= 0 {
		o.Width = math.Ceil(w)
	}
	if o.Height <= 0 {
		o.Height = math.Ceil(h)
	}
	return o
}

// pixels returns the drawable picture of a media element at now, or nil
// while the media is pending or failed.
func pixels(el element.Element, now time.Time) image.Image {
	if !el.Media.Drawable() {
		return nil
	}
	switch h := el.Media.Handle.(type) {
	case *media.Image:
		return h.Image()
	case *media.Video:
		img, _ := h.Frame(now)
		return img
	}
	return nil
}

// ToFile exports els to path, picking the format from the extension.
func ToFile(els []element.Element, path string, opt Options) error {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" && ext != ".png" && ext != ".svg" {
		return fmt.Errorf("unsupported export format %q", ext)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", ext, err)
	}
	switch ext {
	case ".pdf":
		err = PDF(f, els, opt)
	case ".png":
		err = PNG(f, els, opt)
	case ".svg":
		err = SVG(f, els, opt)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
	}
	return err
}
