/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package editor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gocanvas/internal/element"
	"gocanvas/internal/media"
	"gocanvas/internal/scene"
	"gocanvas/internal/storage"
)

// AddImage places an image at the default spot. An empty source uses the
// configured default.
func (e *Editor) AddImage(ctx context.Context, source string) (string, error) {
	if source == "" {
		source = e.defaults.Image
	}
	return e.addMedia(ctx, "add_image", element.KindImage, scene.Init{X: 50, Y: 50, Width: 120, Height: 120, Source: source})
}

// AddVideo places a video at the default spot. Playback starts once the
// clip is decoded.
func (e *Editor) AddVideo(ctx context.Context, source string) (string, error) {
	if source == "" {
		source = e.defaults.Video
	}
	return e.addMedia(ctx, "add_video", element.KindVideo, scene.Init{X: 100, Y: 100, Width: 240, Height: 140, Source: source})
}

func (e *Editor) addMedia(ctx context.Context, name string, kind element.Kind, in scene.Init) (string, error) {
	var id string
	err := e.Do(ctx, name, func(ctx context.Context) error {
		var err error
		id, err = e.store.AddElement(kind, in)
		if err != nil {
			return err
		}
		e.startLoad(storage.PendingLoad{Source: in.Source, Kind: kind, IDs: []string{id}})
		return nil
	})
	return id, err
}

// AddText places typed text and selects it. Blank text is ignored.
func (e *Editor) AddText(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", nil
	}
	var id string
	err := e.Do(ctx, "add_text", func(ctx context.Context) error {
		var err error
		id, err = e.store.AddElement(element.KindText, scene.Init{X: 60, Y: 60, Text: text, FontSize: 24, Interactive: true})
		return err
	})
	return id, err
}

// Select makes id the selection; unknown ids are ignored.
func (e *Editor) Select(ctx context.Context, id string) error {
	return e.Do(ctx, "select", func(context.Context) error {
		e.store.Select(id)
		return nil
	})
}

// BackgroundClick clears the selection.
func (e *Editor) BackgroundClick(ctx context.Context) error {
	return e.Do(ctx, "background_click", func(context.Context) error {
		e.store.ClearSelectionOnBackgroundClick()
		return nil
	})
}

// Drag applies a continuous position change without recording history.
func (e *Editor) Drag(ctx context.Context, id string, x, y float64) error {
	return e.Do(ctx, "drag", func(context.Context) error {
		return e.store.UpdateElement(id, element.Position(x, y))
	})
}

// CommitTransform ends a transform gesture.
func (e *Editor) CommitTransform(ctx context.Context, id string, t element.Transform) error {
	return e.Do(ctx, "commit_transform", func(context.Context) error {
		return e.store.CommitTransform(id, t)
	})
}

// Move nudges the selection one step and reports whether anything moved.
func (e *Editor) Move(ctx context.Context, dir scene.Direction) (bool, error) {
	var moved bool
	err := e.Do(ctx, "move", func(context.Context) error {
		moved = e.store.MoveSelected(dir, scene.DefaultStep)
		return nil
	})
	return moved, err
}

// Undo restores the previous snapshot.
func (e *Editor) Undo(ctx context.Context) (bool, error) {
	var ok bool
	err := e.Do(ctx, "undo", func(context.Context) error {
		ok = e.store.Undo()
		return nil
	})
	return ok, err
}

// Redo reapplies the last undone snapshot.
func (e *Editor) Redo(ctx context.Context) (bool, error) {
	var ok bool
	err := e.Do(ctx, "redo", func(context.Context) error {
		ok = e.store.Redo()
		return nil
	})
	return ok, err
}

// BringForward moves the selection one step up the z-order.
func (e *Editor) BringForward(ctx context.Context) (bool, error) {
	return e.reorder(ctx, "bring_forward", scene.Forward)
}

// SendBackward moves the selection one step down the z-order.
func (e *Editor) SendBackward(ctx context.Context) (bool, error) {
	return e.reorder(ctx, "send_backward", scene.Backward)
}

func (e *Editor) reorder(ctx context.Context, name string, z scene.ZDirection) (bool, error) {
	var ok bool
	err := e.Do(ctx, name, func(context.Context) error {
		ok = e.store.Reorder(e.store.Selected(), z)
		return nil
	})
	return ok, err
}

// Remove deletes the selected element.
func (e *Editor) Remove(ctx context.Context) (bool, error) {
	var ok bool
	err := e.Do(ctx, "remove", func(context.Context) error {
		ok = e.store.RemoveElement(e.store.Selected())
		return nil
	})
	return ok, err
}

// PlayPause toggles the active video and reports whether it now plays.
// Without a decoded active video it does nothing.
func (e *Editor) PlayPause(ctx context.Context) (bool, error) {
	var playing bool
	err := e.Do(ctx, "play_pause", func(context.Context) error {
		if v := e.videoHandle(); v != nil {
			playing = v.Toggle(e.now())
		}
		return nil
	})
	return playing, err
}

// StopVideo pauses the active video and rewinds it.
func (e *Editor) StopVideo(ctx context.Context) error {
	return e.Do(ctx, "stop_video", func(context.Context) error {
		if v := e.videoHandle(); v != nil {
			v.Stop()
		}
		return nil
	})
}

// ActiveVideo returns the id of the most recently decoded video still in
// the scene, or "".
func (e *Editor) ActiveVideo(ctx context.Context) (string, error) {
	var id string
	err := e.Do(ctx, "active_video", func(context.Context) error {
		if e.videoHandle() != nil {
			id = e.activeVideo
		}
		return nil
	})
	return id, err
}

func (e *Editor) videoHandle() *media.Video {
	if e.activeVideo == "" {
		return nil
	}
	el, _, ok := e.store.Frame().Find(e.activeVideo)
	if !ok || !el.Media.Drawable() {
		return nil
	}
	v, _ := el.Media.Handle.(*media.Video)
	return v
}

// Save writes the scene to the configured slot.
func (e *Editor) Save(ctx context.Context) error {
	return e.Do(ctx, "save", func(ctx context.Context) error {
		if e.slots == nil {
			return errors.New("no slot storage configured")
		}
		data, err := storage.Marshal(e.store.Elements())
		if err == nil {
			err = e.slots.Save(ctx, e.slot, data)
		}
		if err != nil {
			e.store.Notify(scene.Notice{Kind: scene.NoticeError, Message: "save failed", Source: e.slot, Err: err})
			return err
		}
		e.store.Notify(scene.Notice{Kind: scene.NoticeSaved, Message: "Canvas saved!", Source: e.slot})
		return nil
	})
}

// Load replaces the scene with the saved slot and starts loading its media.
// It reports false when the slot is empty. A corrupt slot leaves the scene
// untouched; the failure is both returned and published as a notice.
func (e *Editor) Load(ctx context.Context) (bool, error) {
	var loaded bool
	err := e.Do(ctx, "load", func(ctx context.Context) error {
		if e.slots == nil {
			return errors.New("no slot storage configured")
		}
		data, ok, err := e.slots.Load(ctx, e.slot)
		if err != nil {
			e.store.Notify(scene.Notice{Kind: scene.NoticeError, Message: "load failed", Source: e.slot, Err: err})
			return err
		}
		if !ok {
			e.store.Notify(scene.Notice{Kind: scene.NoticeNothingToLoad, Message: "nothing to load", Source: e.slot})
			return nil
		}
		els, pending, err := storage.Deserialize(data)
		if err == nil {
			if rerr := e.store.Replace(els); rerr != nil {
				err = &storage.CorruptDocumentError{Reason: "rejected by scene", Err: rerr}
			}
		}
		if err != nil {
			e.store.Notify(scene.Notice{Kind: scene.NoticeCorruptDocument, Message: "saved canvas is corrupt", Source: e.slot, Err: err})
			return err
		}
		for _, p := range pending {
			e.startLoad(p)
		}
		loaded = true
		e.store.Notify(scene.Notice{Kind: scene.NoticeLoaded, Message: fmt.Sprintf("loaded %d elements", len(els)), Source: e.slot})
		return nil
	})
	return loaded, err
}

// startLoad must run on the loop goroutine.
func (e *Editor) startLoad(p storage.PendingLoad) {
	req := media.Request{Source: p.Source, Kind: p.Kind, IDs: p.IDs}
	e.loader.Load(e.mediaCtx, req, func(r media.Result) {
		e.Post("media_result", func(context.Context) error {
			e.applyResult(r)
			return nil
		})
	})
}

func (e *Editor) applyResult(r media.Result) {
	if r.Err != nil {
		e.store.FailMedia(r.IDs, r.Source, r.Err)
		return
	}
	n := e.store.AttachMedia(r.IDs, r.Source, r.Handle)
	if n == 0 {
		e.log.Debug("media result for removed elements discarded", slog.String("source", r.Source))
		return
	}
	v, ok := r.Handle.(*media.Video)
	if !ok {
		return
	}
	f := e.store.Frame()
	for i := len(r.IDs) - 1; i >= 0; i-- {
		if _, _, present := f.Find(r.IDs[i]); present {
			e.activeVideo = r.IDs[i]
			break
		}
	}
	v.Play(e.now())
}
