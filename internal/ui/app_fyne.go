//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"gocanvas/internal/crash"
	"gocanvas/internal/editor"
	"gocanvas/internal/element"
	"gocanvas/internal/export"
	"gocanvas/internal/geom"
	applog "gocanvas/internal/log"
	"gocanvas/internal/scene"
	"gocanvas/internal/storage"
)

// pollInterval paces the redraw check; frames are only re-rasterized when
// the scene version or a playing video's frame changed.
const pollInterval = 33 * time.Millisecond

// Run opens the editor window on opts.Editor and blocks until it is closed.
func Run(ctx context.Context, opts Options) error {
	defer crash.Recover(opts.Crash)
	if opts.Editor == nil {
		return errors.New("ui: no editor")
	}
	l := opts.logger()
	l.Info("starting UI")

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	ed := opts.Editor
	store := ed.Store()

	fyneApp := app.NewWithID("gocanvas")
	w := fyneApp.NewWindow("GoCanvas")
	// Restore window size from preferences (with sane minimums)
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1100)
	winH := prefs.IntWithFallback("window.height", 700)
	if winW < 820 {
		winW = 820
	}
	if winH < 560 {
		winH = 560
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel("Ready")
	sc := NewSceneCanvas(ctx, ed)
	sc.OnError = func(err error) { report(l, status, err) }

	// intent runs one editor intent on the UI goroutine. The editor loop never
	// calls back into Fyne, so waiting on it cannot deadlock.
	intent := func(name string, fn func(ctx context.Context) error) {
		if err := fn(applog.ContextWithIntent(ctx, name)); err != nil {
			report(l, status, err)
		}
		sc.Refresh()
	}

	textEntry := widget.NewEntry()
	textEntry.SetPlaceHolder("Text to add…")
	addText := func() {
		intent("add_text", func(ctx context.Context) error {
			_, err := ed.AddText(ctx, textEntry.Text)
			return err
		})
		textEntry.SetText("")
	}
	textEntry.OnSubmitted = func(string) { addText() }

	addImage := func(source string) {
		intent("add_image", func(ctx context.Context) error { _, err := ed.AddImage(ctx, source); return err })
	}
	addVideo := func(source string) {
		intent("add_video", func(ctx context.Context) error { _, err := ed.AddVideo(ctx, source); return err })
	}
	undo := func() {
		intent("undo", func(ctx context.Context) error {
			ok, err := ed.Undo(ctx)
			if err == nil && !ok {
				status.SetText("Nothing to undo.")
			}
			return err
		})
	}
	redo := func() {
		intent("redo", func(ctx context.Context) error {
			ok, err := ed.Redo(ctx)
			if err == nil && !ok {
				status.SetText("Nothing to redo.")
			}
			return err
		})
	}
	save := func() { intent("save", ed.Save) }
	load := func() {
		intent("load", func(ctx context.Context) error {
			_, err := ed.Load(ctx)
			if errors.Is(err, storage.ErrCorruptDocument) {
				return nil // already published as a notice
			}
			return err
		})
	}
	remove := func() {
		intent("remove", func(ctx context.Context) error { _, err := ed.Remove(ctx); return err })
	}
	move := func(dir scene.Direction) {
		intent("move", func(ctx context.Context) error { _, err := ed.Move(ctx, dir); return err })
	}
	exportPDF := func() {
		path := filepath.Join(opts.ExportDir, "canvas-"+time.Now().Format("20060102-150405")+".pdf")
		if err := export.ToFile(store.Elements(), path, export.Options{}); err != nil {
			report(l, status, fmt.Errorf("export pdf: %w", err))
			return
		}
		l.Info("exported pdf", slog.String("path", path))
		status.SetText("Exported " + path)
	}
	pickFile := func(title string, add func(string)) {
		dialog.ShowFileOpen(func(rc fyne.URIReadCloser, err error) {
			if err != nil {
				report(l, status, err)
				return
			}
			if rc == nil {
				return
			}
			path := rc.URI().Path()
			_ = rc.Close()
			add(path)
		}, w)
		status.SetText(title)
	}

	toolbar := container.NewHBox(
		widget.NewButton("Add Image", func() { addImage("") }),
		container.NewGridWrap(fyne.NewSize(180, textEntry.MinSize().Height), textEntry),
		widget.NewButton("Add Text", addText),
		widget.NewButton("Add Video", func() { addVideo("") }),
		widget.NewButton("Play/Pause", func() {
			intent("play_pause", func(ctx context.Context) error {
				playing, err := ed.PlayPause(ctx)
				if err == nil && playing {
					status.SetText("Playing")
				} else if err == nil {
					status.SetText("Paused")
				}
				return err
			})
		}),
		widget.NewButton("Stop", func() { intent("stop_video", ed.StopVideo) }),
		widget.NewSeparator(),
		widget.NewButton("Undo", undo),
		widget.NewButton("Redo", redo),
		widget.NewButton("Forward", func() {
			intent("bring_forward", func(ctx context.Context) error { _, err := ed.BringForward(ctx); return err })
		}),
		widget.NewButton("Backward", func() {
			intent("send_backward", func(ctx context.Context) error { _, err := ed.SendBackward(ctx); return err })
		}),
		widget.NewButton("Remove", remove),
		widget.NewSeparator(),
		widget.NewButton("Save", save),
		widget.NewButton("Load", load),
		widget.NewButton("Export PDF", exportPDF),
	)

	// Menu and keyboard shortcuts
	openImage := fyne.NewMenuItem("Insert Image…", func() { pickFile("Choose an image", addImage) })
	openVideo := fyne.NewMenuItem("Insert Video…", func() { pickFile("Choose a video", addVideo) })
	saveItem := fyne.NewMenuItem("Save", save)
	loadItem := fyne.NewMenuItem("Load", load)
	exportItem := fyne.NewMenuItem("Export PDF", exportPDF)
	saveItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierShortcutDefault}
	loadItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierShortcutDefault}
	undoItem := fyne.NewMenuItem("Undo", undo)
	redoItem := fyne.NewMenuItem("Redo", redo)
	undoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyZ, Modifier: fyne.KeyModifierShortcutDefault}
	redoItem.Shortcut = &desktop.CustomShortcut{KeyName: fyne.KeyY, Modifier: fyne.KeyModifierShortcutDefault}
	w.SetMainMenu(fyne.NewMainMenu(
		fyne.NewMenu("File", openImage, openVideo, fyne.NewMenuItemSeparator(), saveItem, loadItem, exportItem),
		fyne.NewMenu("Edit", undoItem, redoItem),
	))
	sc.OnKey = func(k fyne.KeyName) {
		switch k {
		case fyne.KeyUp:
			move(scene.Up)
		case fyne.KeyDown:
			move(scene.Down)
		case fyne.KeyLeft:
			move(scene.Left)
		case fyne.KeyRight:
			move(scene.Right)
		case fyne.KeyDelete, fyne.KeyBackspace:
			remove()
		}
	}

	go pumpNotices(ctx, store, w, status)
	go sc.watch(ctx)

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, sc))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		cancel()
	})
	w.ShowAndRun()
	l.Info("UI closed")
	return nil
}

// pumpNotices shows store notices: failures as dialogs, the rest in the status bar.
func pumpNotices(ctx context.Context, store *scene.Store, w fyne.Window, status *widget.Label) {
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-store.Notices():
			fyne.Do(func() {
				status.SetText(n.Message)
				if n.IsFailure() {
					err := n.Err
					if err == nil {
						err = errors.New(n.Message)
					}
					dialog.ShowError(fmt.Errorf("%s: %w", n.Message, err), w)
				}
			})
		}
	}
}

func report(l *slog.Logger, status *widget.Label, err error) {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, editor.ErrStopped) {
		return
	}
	l.Error("intent failed", slog.Any("err", err))
	status.SetText("Error: " + err.Error())
}

// SceneCanvas draws the published scene frame and turns pointer and key
// input into editor intents. Drags are previewed locally and committed once.
type SceneCanvas struct {
	widget.BaseWidget

	ctx   context.Context
	ed    *editor.Editor
	store *scene.Store

	g gesture

	// OnError receives failed intents; OnKey receives keys while focused.
	OnError func(error)
	OnKey   func(fyne.KeyName)

	// touched only by watch
	lastVersion uint64
	lastSeq     uint64
}

func NewSceneCanvas(ctx context.Context, ed *editor.Editor) *SceneCanvas {
	sc := &SceneCanvas{ctx: ctx, ed: ed, store: ed.Store()}
	sc.ExtendBaseWidget(sc)
	return sc
}

// PreferredSize is the editing surface of the original canvas.
func (s *SceneCanvas) PreferredSize() fyne.Size { return fyne.NewSize(800, 500) }

func (s *SceneCanvas) CreateRenderer() fyne.WidgetRenderer {
	bg := canvas.NewRectangle(color.RGBA{R: 30, G: 30, B: 34, A: 255})

	raster := canvas.NewImageFromImage(image.NewRGBA(image.Rect(0, 0, 1, 1)))
	raster.FillMode = canvas.ImageFillStretch

	bbox := canvas.NewRectangle(color.RGBA{})
	bbox.StrokeColor = color.RGBA{R: 0, G: 170, B: 255, A: 255}
	bbox.StrokeWidth = 1
	bbox.Hide()
	resize := canvas.NewRectangle(color.RGBA{R: 0, G: 170, B: 255, A: 255})
	resize.Hide()
	rot := canvas.NewCircle(color.RGBA{R: 255, G: 170, B: 0, A: 255})
	rot.Hide()

	r := &sceneCanvasRenderer{sc: s, bg: bg, raster: raster, bbox: bbox, resize: resize, rot: rot}
	r.objects = []fyne.CanvasObject{bg, raster}
	for i := range r.guides {
		g := canvas.NewLine(color.RGBA{R: 255, G: 0, B: 170, A: 220})
		g.StrokeWidth = 1
		g.Hide()
		r.guides[i] = g
		r.objects = append(r.objects, g)
	}
	r.objects = append(r.objects, bbox, resize, rot)
	r.render()
	return r
}

func (s *SceneCanvas) fail(err error) {
	if err != nil && s.OnError != nil {
		s.OnError(err)
	}
}

// watch refreshes the widget whenever the scene or a playing video changed.
func (s *SceneCanvas) watch(ctx context.Context) {
	t := time.NewTicker(pollInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			f := s.store.Frame()
			seq := videoSeq(f.Elements, now)
			if f.Version == s.lastVersion && seq == s.lastSeq {
				continue
			}
			s.lastVersion, s.lastSeq = f.Version, seq
			fyne.Do(s.Refresh)
		}
	}
}

func toScene(p fyne.Position) geom.Pt { return geom.Pt{X: float64(p.X), Y: float64(p.Y)} }

func (s *SceneCanvas) Tapped(e *fyne.PointEvent) {
	if c := fyne.CurrentApp().Driver().CanvasForObject(s); c != nil {
		c.Focus(s)
	}
	p := toScene(e.Position)
	ctx := applog.ContextWithIntent(s.ctx, "select")
	if id, ok := s.store.HitTest(p.X, p.Y); ok {
		s.fail(s.ed.Select(ctx, id))
	} else {
		s.fail(s.ed.BackgroundClick(ctx))
	}
	s.Refresh()
}

func (s *SceneCanvas) Dragged(e *fyne.DragEvent) {
	p := toScene(e.Position)
	if !s.g.active() {
		start := geom.Pt{X: p.X - float64(e.Dragged.DX), Y: p.Y - float64(e.Dragged.DY)}
		if !s.beginGesture(start) {
			return
		}
	}
	s.g.update(p)
	s.Refresh()
}

// beginGesture starts a handle gesture on the selection, or a move of the
// element under start (selecting it first).
func (s *SceneCanvas) beginGesture(start geom.Pt) bool {
	f := s.store.Frame()
	if sel, ok := f.SelectedElement(); ok {
		if mode := modeAt(sel, start); mode != dragNone {
			s.g.begin(sel, start, mode)
			if mode == dragMove {
				s.snapAnchors(f.Elements)
			}
			return true
		}
	}
	id, ok := s.store.HitTest(start.X, start.Y)
	if !ok {
		return false
	}
	if err := s.ed.Select(applog.ContextWithIntent(s.ctx, "select"), id); err != nil {
		s.fail(err)
		return false
	}
	el, _, ok := s.store.Frame().Find(id)
	if !ok {
		return false
	}
	s.g.begin(el, start, dragMove)
	s.snapAnchors(f.Elements)
	return true
}

func (s *SceneCanvas) snapAnchors(els []element.Element) {
	page := s.Size().Max(s.PreferredSize())
	s.g.anchors = anchorsFor(els, s.g.origin.ID, geom.R(0, 0, float64(page.Width), float64(page.Height)))
}

func (s *SceneCanvas) DragEnd() {
	if id, t, ok := s.g.end(); ok {
		s.fail(s.ed.CommitTransform(applog.ContextWithIntent(s.ctx, "commit_transform"), id, t))
	}
	s.Refresh()
}

func (s *SceneCanvas) FocusGained()     {}
func (s *SceneCanvas) FocusLost()       {}
func (s *SceneCanvas) TypedRune(r rune) {}
func (s *SceneCanvas) TypedKey(e *fyne.KeyEvent) {
	if s.OnKey != nil {
		s.OnKey(e.Name)
	}
}

type sceneCanvasRenderer struct {
	sc      *SceneCanvas
	objects []fyne.CanvasObject
	bg      *canvas.Rectangle
	raster  *canvas.Image
	// selection visuals
	bbox, resize *canvas.Rectangle
	rot          *canvas.Circle
	// one snap guide per axis
	guides [2]*canvas.Line
}

func (r *sceneCanvasRenderer) Destroy()                     {}
func (r *sceneCanvasRenderer) Objects() []fyne.CanvasObject { return r.objects }
func (r *sceneCanvasRenderer) MinSize() fyne.Size           { return r.sc.PreferredSize() }
func (r *sceneCanvasRenderer) Refresh() {
	r.render()
	r.Layout(r.sc.Size())
	canvas.Refresh(r.sc)
}

// render rasterizes the current view of the scene onto the page image.
func (r *sceneCanvasRenderer) render() {
	size := r.sc.Size().Max(r.sc.PreferredSize())
	f := r.sc.store.Frame()
	r.raster.Image = export.Rasterize(sceneView(f, &r.sc.g), export.Options{
		Width:  float64(size.Width),
		Height: float64(size.Height),
	})
	r.raster.Refresh()
}

func (r *sceneCanvasRenderer) Layout(size fyne.Size) {
	r.bg.Resize(size)
	r.bg.Move(fyne.NewPos(0, 0))

	page := size.Max(r.sc.PreferredSize())
	r.raster.Resize(page)
	r.raster.Move(fyne.NewPos(0, 0))

	r.layoutGuides()
	el, ok := selection(r.sc.store.Frame(), &r.sc.g)
	if !ok {
		r.bbox.Hide()
		r.resize.Hide()
		r.rot.Hide()
		return
	}
	b := el.Box().Bounds()
	r.bbox.Move(fyne.NewPos(float32(b.X), float32(b.Y)))
	r.bbox.Resize(fyne.NewSize(float32(b.W), float32(b.H)))
	r.bbox.Show()

	rs, rt := handles(el)
	hs := float32(handleSize)
	r.resize.Move(fyne.NewPos(float32(rs.X)-hs/2, float32(rs.Y)-hs/2))
	r.resize.Resize(fyne.NewSize(hs, hs))
	r.resize.Show()
	if rotatable(el) {
		r.rot.Move(fyne.NewPos(float32(rt.X)-hs/2, float32(rt.Y)-hs/2))
		r.rot.Resize(fyne.NewSize(hs, hs))
		r.rot.Show()
	} else {
		r.rot.Hide()
	}
}

func (r *sceneCanvasRenderer) layoutGuides() {
	for i, line := range r.guides {
		if i >= len(r.sc.g.guides) {
			line.Hide()
			continue
		}
		g := r.sc.g.guides[i]
		if g.Vertical {
			line.Position1 = fyne.NewPos(float32(g.Pos), float32(g.From))
			line.Position2 = fyne.NewPos(float32(g.Pos), float32(g.To))
		} else {
			line.Position1 = fyne.NewPos(float32(g.From), float32(g.Pos))
			line.Position2 = fyne.NewPos(float32(g.To), float32(g.Pos))
		}
		line.Show()
	}
}

var (
	_ fyne.Focusable = (*SceneCanvas)(nil)
	_ fyne.Draggable = (*SceneCanvas)(nil)
	_ fyne.Tappable  = (*SceneCanvas)(nil)
)
