/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package scene

import (
	"fmt"
	"log/slog"
	"slices"
	"sync/atomic"

	"github.com/google/uuid"

	"gocanvas/internal/element"
	"gocanvas/internal/geom"
	applog "gocanvas/internal/log"
	"gocanvas/internal/undo"
)

// Init carries the initial attributes of a new element.
type Init struct {
	X, Y          float64
	Width, Height float64
	Text          string
	FontSize      float64
	Source        string
	// Interactive marks content the user just created by hand (typed text).
	// Only interactive content becomes the selection when added.
	Interactive bool
}

// Options configures a Store.
type Options struct {
	History undo.Config
	// NewID generates element ids. Defaults to time-ordered UUIDv7.
	NewID func() string
	// NoticeBuffer is the capacity of the notification channel (default 64).
	NoticeBuffer int
	Logger       *slog.Logger
}

// Store owns the scene. Frame and the read accessors are safe from any
// goroutine; mutating methods are not and must be called from one
// goroutine at a time (see internal/editor).
type Store struct {
	frame   atomic.Pointer[Frame]
	history *undo.Manager[[]element.Element]
	newID   func() string
	notices chan Notice
	log     *slog.Logger
	// media remembers the latest media state per element id so that states
	// restored by undo/redo get their handles back without reloading.
	media map[string]element.Media
	// mediaHigh is the map size that triggers the next prune.
	mediaHigh int
}

// minMediaHigh is the smallest prune watermark for the media map.
const minMediaHigh = 64

// NewStore returns an empty scene.
func NewStore(opts Options) *Store {
	if opts.NewID == nil {
		opts.NewID = func() string { return uuid.Must(uuid.NewV7()).String() }
	}
	if opts.NoticeBuffer <= 0 {
		opts.NoticeBuffer = 64
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("scene")
	}
	s := &Store{
		history:   undo.NewManager(opts.History, cloneElements),
		newID:     opts.NewID,
		notices:   make(chan Notice, opts.NoticeBuffer),
		log:       opts.Logger,
		media:     make(map[string]element.Media),
		mediaHigh: minMediaHigh,
	}
	s.frame.Store(&Frame{})
	return s
}

func cloneElements(els []element.Element) []element.Element { return slices.Clone(els) }

// Frame returns the current immutable view.
func (s *Store) Frame() *Frame { return s.frame.Load() }

// Elements returns the current ordered element list. Do not modify it.
func (s *Store) Elements() []element.Element { return s.Frame().Elements }

// Selected returns the selected id or "".
func (s *Store) Selected() string { return s.Frame().Selected }

// HistoryDepth returns the undo and redo stack sizes.
func (s *Store) HistoryDepth() (undo, redo int) { return s.history.Depth() }

// Notices is the single channel on which user-visible events are reported.
func (s *Store) Notices() <-chan Notice { return s.notices }

// Notify publishes n without blocking. If nobody drains the channel and it
// is full, the notice is logged and dropped.
func (s *Store) Notify(n Notice) {
	select {
	case s.notices <- n:
	default:
		s.log.Warn("notice dropped, channel full", slog.String("kind", n.Kind.String()), slog.String("msg", n.Message))
	}
}

// publish installs a new frame. A selection that no longer references an
// element is cleared.
func (s *Store) publish(els []element.Element, selected string) {
	prev := s.Frame()
	f := &Frame{Elements: els, Selected: selected, Version: prev.Version + 1}
	if _, _, ok := f.Find(selected); !ok {
		f.Selected = ""
	}
	s.frame.Store(f)
}

// AddElement appends a new element of kind with a fresh id and returns the id.
// The pre-mutation scene is snapshotted first. Interactive content becomes
// the selection; background content leaves the selection alone.
func (s *Store) AddElement(kind element.Kind, in Init) (string, error) {
	cur := s.Frame()
	id := s.newID()
	if _, _, dup := cur.Find(id); dup {
		return "", &element.InvalidElementError{ID: id, Kind: kind, Reason: "duplicate id"}
	}
	var (
		el  element.Element
		err error
	)
	switch kind {
	case element.KindImage:
		el, err = element.NewImage(id, in.X, in.Y, in.Width, in.Height, in.Source)
	case element.KindVideo:
		el, err = element.NewVideo(id, in.X, in.Y, in.Width, in.Height, in.Source)
	case element.KindText:
		el, err = element.NewText(id, in.X, in.Y, in.Text, in.FontSize)
		if err == nil && (in.Width > 0 || in.Height > 0) {
			el.Width, el.Height = in.Width, in.Height
		}
	default:
		err = &element.InvalidElementError{ID: id, Kind: kind, Reason: "unknown kind"}
	}
	if err != nil {
		return "", err
	}
	s.history.Snapshot(cur.Elements)
	els := append(slices.Clone(cur.Elements), el)
	selected := cur.Selected
	if in.Interactive {
		selected = id
	}
	s.publish(els, selected)
	s.log.Debug("element added", slog.String("id", id), slog.String("kind", string(kind)), slog.Bool("selected", in.Interactive))
	return id, nil
}

// UpdateElement replaces the element id with its updated form. It belongs to
// the continuous class and never snapshots history: a drag or resize commits
// through here exactly once, at gesture end. A missing id is a no-op.
func (s *Store) UpdateElement(id string, a element.Attrs) error {
	cur := s.Frame()
	el, idx, ok := cur.Find(id)
	if !ok {
		s.log.Debug("update of missing element ignored", slog.String("id", id))
		return nil
	}
	next, err := element.WithAttributes(el, a)
	if err != nil {
		return err
	}
	els := slices.Clone(cur.Elements)
	els[idx] = next
	s.publish(els, cur.Selected)
	return nil
}

// CommitTransform applies the final node state of a drag/resize gesture,
// folding any resize scale into width/height.
func (s *Store) CommitTransform(id string, t element.Transform) error {
	el, _, ok := s.Frame().Find(id)
	if !ok {
		return nil
	}
	return s.UpdateElement(id, element.CommitAttrs(el, t))
}

// Select sets the selection. An empty id clears it; an id that is not in
// the scene leaves the selection unchanged.
func (s *Store) Select(id string) {
	cur := s.Frame()
	if id == "" {
		s.ClearSelection()
		return
	}
	if _, _, ok := cur.Find(id); !ok || cur.Selected == id {
		return
	}
	s.publish(cur.Elements, id)
}

// ClearSelection drops the selection.
func (s *Store) ClearSelection() {
	cur := s.Frame()
	if cur.Selected == "" {
		return
	}
	s.publish(cur.Elements, "")
}

// ClearSelectionOnBackgroundClick is called by the render bridge when the
// pointer goes down on an empty canvas area.
func (s *Store) ClearSelectionOnBackgroundClick() { s.ClearSelection() }

// MoveSelected nudges the selected element by step along dir, snapshotting
// first. It does nothing when nothing is selected or the selection is not
// translatable. A step <= 0 uses DefaultStep.
func (s *Store) MoveSelected(dir Direction, step float64) bool {
	if step <= 0 {
		step = DefaultStep
	}
	cur := s.Frame()
	el, idx, ok := cur.Find(cur.Selected)
	if !ok || !el.Translatable() {
		return false
	}
	switch dir {
	case Up:
		el.Y -= step
	case Down:
		el.Y += step
	case Left:
		el.X -= step
	case Right:
		el.X += step
	default:
		return false
	}
	s.history.Snapshot(cur.Elements)
	els := slices.Clone(cur.Elements)
	els[idx] = el
	s.publish(els, cur.Selected)
	return true
}

// Reorder swaps element id with its neighbour in direction z. At the top
// (Forward) or bottom (Backward) it is a no-op, as is a missing id or an
// unknown direction.
// Z-order changes do not enter the undo history.
func (s *Store) Reorder(id string, z ZDirection) bool {
	cur := s.Frame()
	_, idx, ok := cur.Find(id)
	if !ok {
		return false
	}
	var swap int
	switch z {
	case Forward:
		swap = idx + 1
	case Backward:
		swap = idx - 1
	default:
		return false
	}
	if swap < 0 || swap >= len(cur.Elements) {
		return false
	}
	els := slices.Clone(cur.Elements)
	els[idx], els[swap] = els[swap], els[idx]
	s.publish(els, cur.Selected)
	return true
}

// RemoveElement deletes id, snapshotting first. The selection is cleared
// if it referenced id. Missing ids are a no-op.
func (s *Store) RemoveElement(id string) bool {
	cur := s.Frame()
	_, idx, ok := cur.Find(id)
	if !ok {
		return false
	}
	s.history.Snapshot(cur.Elements)
	els := slices.Delete(slices.Clone(cur.Elements), idx, idx+1)
	s.publish(els, cur.Selected)
	s.pruneMedia()
	return true
}

// Undo restores the previous snapshot. It returns false when there is
// nothing to undo.
func (s *Store) Undo() bool {
	cur := s.Frame()
	prev, ok := s.history.Undo(cur.Elements)
	if !ok {
		return false
	}
	s.publish(s.rehydrate(prev), cur.Selected)
	return true
}

// Redo re-applies the most recently undone state.
func (s *Store) Redo() bool {
	cur := s.Frame()
	next, ok := s.history.Redo(cur.Elements)
	if !ok {
		return false
	}
	s.publish(s.rehydrate(next), cur.Selected)
	return true
}

// Replace swaps in a whole new document (load). The current scene is
// snapshotted first so the load can be undone. The elements must be valid
// and carry unique ids; on error the scene is untouched.
func (s *Store) Replace(els []element.Element) error {
	seen := make(map[string]bool, len(els))
	for _, el := range els {
		if err := element.Validate(el); err != nil {
			return err
		}
		if seen[el.ID] {
			return &element.InvalidElementError{ID: el.ID, Kind: el.Kind, Reason: "duplicate id"}
		}
		seen[el.ID] = true
	}
	cur := s.Frame()
	s.history.Snapshot(cur.Elements)
	s.publish(slices.Clone(els), "")
	s.pruneMedia()
	return nil
}

// AttachMedia attaches a resolved handle to every listed element that is
// still in the scene and still references source. Elements are matched by
// id; ids that are gone are skipped. It returns the number of elements
// updated. It does not touch history.
func (s *Store) AttachMedia(ids []string, source string, h element.Handle) int {
	m := element.Media{Source: source, State: element.MediaResolved, Handle: h}
	n := s.applyMedia(ids, m)
	s.log.Debug("media attached", slog.String("source", source), slog.Int("elements", n))
	return n
}

// FailMedia marks the listed elements as permanently undrawable and emits a
// NoticeMediaFailed. A failure for elements that no longer exist is
// discarded silently.
func (s *Store) FailMedia(ids []string, source string, err error) int {
	reason := "media load failed"
	if err != nil {
		reason = err.Error()
	}
	m := element.Media{Source: source, State: element.MediaFailed, Reason: reason}
	n := s.applyMedia(ids, m)
	if n > 0 {
		s.Notify(Notice{
			Kind:       NoticeMediaFailed,
			Message:    fmt.Sprintf("could not load %s", source),
			Source:     source,
			ElementIDs: slices.Clone(ids),
			Err:        err,
		})
	}
	return n
}

func (s *Store) applyMedia(ids []string, m element.Media) int {
	for _, id := range ids {
		s.media[id] = m
	}
	if len(s.media) > s.mediaHigh {
		s.pruneMedia()
	}
	cur := s.Frame()
	var els []element.Element
	n := 0
	for _, id := range ids {
		el, idx, ok := cur.Find(id)
		if !ok || !el.Kind.HasMedia() || el.Media.Source != m.Source {
			continue
		}
		if els == nil {
			els = slices.Clone(cur.Elements)
		}
		els[idx].Media = m
		n++
	}
	if n > 0 {
		s.publish(els, cur.Selected)
	}
	return n
}

// pruneMedia forgets media states of ids that neither the live scene nor
// any history entry references any more.
func (s *Store) pruneMedia() {
	if len(s.media) == 0 {
		return
	}
	live := make(map[string]bool, len(s.media))
	mark := func(els []element.Element) {
		for _, el := range els {
			if el.Kind.HasMedia() {
				live[el.ID] = true
			}
		}
	}
	mark(s.Frame().Elements)
	s.history.Each(mark)
	for id := range s.media {
		if !live[id] {
			delete(s.media, id)
		}
	}
	s.mediaHigh = max(minMediaHigh, 2*len(s.media))
}

// rehydrate reattaches the last known media state to elements of a
// restored snapshot.
func (s *Store) rehydrate(els []element.Element) []element.Element {
	for i, el := range els {
		if !el.Kind.HasMedia() {
			continue
		}
		if m, ok := s.media[el.ID]; ok && m.Source == el.Media.Source {
			els[i].Media = m
		}
	}
	return els
}

// HitTest returns the topmost element containing canvas point (x, y).
func (s *Store) HitTest(x, y float64) (string, bool) {
	els := s.Elements()
	p := geom.Pt{X: x, Y: y}
	for i := len(els) - 1; i >= 0; i-- { // top-most first
		if els[i].Box().Contains(p) {
			return els[i].ID, true
		}
	}
	return "", false
}
