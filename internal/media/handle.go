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
	"sync"
	"time"
)

// Image is a decoded still picture.
type Image struct {
	img image.Image
}

// NewImage wraps an already decoded picture.
func NewImage(img image.Image) *Image { return &Image{img: img} }

// Size reports the pixel dimensions.
func (i *Image) Size() (int, int) {
	b := i.img.Bounds()
	return b.Dx(), b.Dy()
}

// Image returns the decoded picture.
func (i *Image) Image() image.Image { return i.img }

// defaultDelay is used for frames that declare no delay.
const defaultDelay = 100 * time.Millisecond

// Video is a decoded clip: fully composed frames with their display delays
// and a playback clock. Frames never change after decoding; only the clock
// does, so the handle can be shared by every element and snapshot that
// references the same source.
type Video struct {
	frames []image.Image
	delays []time.Duration
	total  time.Duration

	mu      sync.Mutex
	playing bool
	started time.Time     // when the current play run began
	offset  time.Duration // playback position accumulated before started
}

// NewVideo builds a stopped clip. delays[i] is how long frames[i] stays up;
// missing or non-positive delays fall back to 100ms.
func NewVideo(frames []image.Image, delays []time.Duration) *Video {
	v := &Video{frames: frames, delays: make([]time.Duration, len(frames))}
	for i := range frames {
		d := defaultDelay
		if i < len(delays) && delays[i] > 0 {
			d = delays[i]
		}
		v.delays[i] = d
		v.total += d
	}
	return v
}

// Size reports the frame dimensions.
func (v *Video) Size() (int, int) {
	if len(v.frames) == 0 {
		return 0, 0
	}
	b := v.frames[0].Bounds()
	return b.Dx(), b.Dy()
}

// Len returns the number of frames.
func (v *Video) Len() int { return len(v.frames) }

// Duration returns the length of one loop.
func (v *Video) Duration() time.Duration { return v.total }

// Playing reports whether the clock is running.
func (v *Video) Playing() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.playing
}

// Play starts or resumes playback at now.
func (v *Video) Play(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.playing {
		return
	}
	v.playing = true
	v.started = now
}

// Pause freezes playback at now.
func (v *Video) Pause(now time.Time) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.playing {
		return
	}
	v.offset += now.Sub(v.started)
	v.playing = false
}

// Toggle flips between playing and paused and reports the new state.
func (v *Video) Toggle(now time.Time) bool {
	if v.Playing() {
		v.Pause(now)
		return false
	}
	v.Play(now)
	return true
}

// Stop pauses and rewinds to the first frame.
func (v *Video) Stop() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.playing = false
	v.offset = 0
}

// Frame returns the frame showing at now and its sequence number. The
// sequence counts frame advances since the start, looping included, so a
// caller redraws only when it differs from the last value seen.
func (v *Video) Frame(now time.Time) (image.Image, uint64) {
	if len(v.frames) == 0 {
		return nil, 0
	}
	v.mu.Lock()
	pos := v.offset
	if v.playing {
		pos += now.Sub(v.started)
	}
	v.mu.Unlock()
	if pos < 0 || v.total <= 0 {
		pos = 0
	}

	loops := uint64(pos / v.total)
	rem := pos % v.total
	idx := 0
	for idx < len(v.delays)-1 && rem >= v.delays[idx] {
		rem -= v.delays[idx]
		idx++
	}
	return v.frames[idx], loops*uint64(len(v.frames)) + uint64(idx)
}
