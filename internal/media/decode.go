/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/gif"
	"time"

	// Still image formats beyond the standard library.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// DecodeImage decodes a still picture in any registered format. Animated
// GIFs decode to their first frame.
func DecodeImage(source string, data []byte) (*Image, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if errors.Is(err, image.ErrFormat) {
		return nil, &MediaLoadError{Source: source, Reason: "unsupported format", Err: ErrUnsupportedFormat}
	}
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}
	return NewImage(img), nil
}

// IsGIF reports whether data starts with a GIF signature.
func IsGIF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))
}

// VideoDecoder turns container bytes into a clip. ffmpeg may be empty, in
// which case only animated GIFs are understood.
type VideoDecoder struct {
	FFmpegPath string
	MaxFrames  int
	FPS        int
}

// Decode builds a Video from data.
func (d VideoDecoder) Decode(ctx context.Context, source string, data []byte) (*Video, error) {
	if IsGIF(data) {
		return decodeGIF(source, data, d.MaxFrames)
	}
	if d.FFmpegPath == "" {
		return nil, &MediaLoadError{Source: source, Reason: "unsupported format", Err: ErrUnsupportedFormat}
	}
	return d.decodeFFmpeg(ctx, source, data)
}

// decodeGIF composes every GIF frame onto the logical screen, honoring the
// disposal method of the previous frame.
func decodeGIF(source string, data []byte, maxFrames int) (*Video, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}
	n := len(g.Image)
	if maxFrames > 0 && n > maxFrames {
		n = maxFrames
	}
	if n == 0 {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: errors.New("no frames")}
	}
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		bounds = g.Image[0].Bounds()
	}
	canvas := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, n)
	delays := make([]time.Duration, 0, n)
	for i := 0; i < n; i++ {
		fr := g.Image[i]
		var prev *image.RGBA
		disposal := byte(0)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		if disposal == gif.DisposalPrevious {
			prev = image.NewRGBA(bounds)
			xdraw.Draw(prev, bounds, canvas, bounds.Min, xdraw.Src)
		}
		xdraw.Draw(canvas, fr.Bounds(), fr, fr.Bounds().Min, xdraw.Over)

		out := image.NewRGBA(bounds)
		xdraw.Draw(out, bounds, canvas, bounds.Min, xdraw.Src)
		frames = append(frames, out)
		delays = append(delays, time.Duration(g.Delay[i])*10*time.Millisecond)

		switch disposal {
		case gif.DisposalBackground:
			xdraw.Draw(canvas, fr.Bounds(), image.Transparent, image.Point{}, xdraw.Src)
		case gif.DisposalPrevious:
			canvas = prev
		}
	}
	return NewVideo(frames, delays), nil
}
