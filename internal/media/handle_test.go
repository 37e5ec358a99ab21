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
	"image"
	"testing"
	"time"
)

func solidFrames(n int) []image.Image {
	out := make([]image.Image, n)
	for i := range out {
		out[i] = image.NewRGBA(image.Rect(0, 0, 4, 3))
	}
	return out
}

func TestVideoStoppedShowsFirstFrame(t *testing.T) {
	v := NewVideo(solidFrames(3), []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond})
	if w, h := v.Size(); w != 4 || h != 3 {
		t.Fatalf("Size = %dx%d", w, h)
	}
	if v.Duration() != 60*time.Millisecond || v.Len() != 3 {
		t.Fatalf("Duration/Len = %v/%d", v.Duration(), v.Len())
	}
	now := time.Unix(100, 0)
	if _, seq := v.Frame(now.Add(time.Hour)); seq != 0 {
		t.Fatalf("stopped video advanced to seq %d", seq)
	}
}

func TestVideoPlaybackClock(t *testing.T) {
	v := NewVideo(solidFrames(3), []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 30 * time.Millisecond})
	t0 := time.Unix(100, 0)
	ms := func(n int) time.Time { return t0.Add(time.Duration(n) * time.Millisecond) }

	v.Play(t0)
	cases := []struct {
		at   int
		want uint64
	}{
		{0, 0}, {9, 0}, {10, 1}, {29, 1}, {30, 2}, {59, 2}, {60, 3}, {75, 4},
	}
	for _, c := range cases {
		if _, seq := v.Frame(ms(c.at)); seq != c.want {
			t.Fatalf("at %dms seq = %d, want %d", c.at, seq, c.want)
		}
	}

	if playing := v.Toggle(ms(35)); playing {
		t.Fatalf("toggle should pause")
	}
	if _, seq := v.Frame(ms(500)); seq != 2 {
		t.Fatalf("paused at 35ms, seq = %d", seq)
	}
	if playing := v.Toggle(ms(1000)); !playing {
		t.Fatalf("toggle should resume")
	}
	// resumed at position 35ms; 30ms later we are at 65ms = loop 1, frame 0
	if _, seq := v.Frame(ms(1030)); seq != 3 {
		t.Fatalf("after resume seq = %d, want 3", seq)
	}

	v.Stop()
	if v.Playing() {
		t.Fatalf("Stop left video playing")
	}
	if _, seq := v.Frame(ms(5000)); seq != 0 {
		t.Fatalf("Stop did not rewind, seq = %d", seq)
	}
}

func TestVideoDefaultDelay(t *testing.T) {
	v := NewVideo(solidFrames(2), nil)
	if v.Duration() != 2*defaultDelay {
		t.Fatalf("Duration = %v", v.Duration())
	}
}

func TestImageSize(t *testing.T) {
	img := NewImage(image.NewRGBA(image.Rect(0, 0, 7, 5)))
	if w, h := img.Size(); w != 7 || h != 5 {
		t.Fatalf("Size = %dx%d", w, h)
	}
}
