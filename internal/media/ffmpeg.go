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
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"os/exec"
	"strconv"
	"time"
)

// decodeFFmpeg pipes the clip through ffmpeg, which emits one PNG per frame
// on stdout. The payload goes through a temp file because most containers
// need a seekable input.
func (d VideoDecoder) decodeFFmpeg(ctx context.Context, source string, data []byte) (*Video, error) {
	fps := d.FPS
	if fps <= 0 {
		fps = 25
	}
	tmp, err := os.CreateTemp("", "gocanvas-media-*")
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}
	if err := tmp.Close(); err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}

	args := []string{"-hide_banner", "-loglevel", "error", "-i", tmp.Name(),
		"-an", "-r", strconv.Itoa(fps), "-f", "image2pipe", "-vcodec", "png"}
	if d.MaxFrames > 0 {
		args = append(args, "-frames:v", strconv.Itoa(d.MaxFrames))
	}
	args = append(args, "pipe:1")
	cmd := exec.CommandContext(ctx, d.FFmpegPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &MediaLoadError{Source: source, Reason: "decode", Err: fmt.Errorf("start ffmpeg: %w", err)}
	}
	frames, readErr := readPNGStream(stdout, d.MaxFrames)
	// drain so ffmpeg can exit if we stopped early
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()
	if len(frames) == 0 {
		err := readErr
		if waitErr != nil {
			err = fmt.Errorf("ffmpeg: %w: %s", waitErr, bytes.TrimSpace(stderr.Bytes()))
		}
		if err == nil {
			err = errors.New("no frames")
		}
		return nil, &MediaLoadError{Source: source, Reason: "unsupported format", Err: errors.Join(ErrUnsupportedFormat, err)}
	}
	delays := make([]time.Duration, len(frames))
	for i := range delays {
		delays[i] = time.Second / time.Duration(fps)
	}
	return NewVideo(frames, delays), nil
}

// readPNGStream decodes concatenated PNG images until EOF or max frames.
func readPNGStream(r io.Reader, max int) ([]image.Image, error) {
	br := bufio.NewReader(r)
	var frames []image.Image
	for max <= 0 || len(frames) < max {
		if _, err := br.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				return frames, nil
			}
			return frames, err
		}
		img, err := png.Decode(br)
		if err != nil {
			return frames, err
		}
		frames = append(frames, img)
	}
	return frames, nil
}
