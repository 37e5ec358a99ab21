//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// These tests validate the Fyne-based scene canvas. They are gated behind the
// "fyne" build tag so CI (which is headless) does not need Fyne or a display.
// To run locally:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"context"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"

	"gocanvas/internal/editor"
	"gocanvas/internal/element"
	"gocanvas/internal/scene"
)

func almostEqual(a, b, eps float32) bool {
	if a > b {
		return a-b <= eps
	}
	return b-a <= eps
}

func newCanvas(t *testing.T) (*SceneCanvas, *scene.Store, string) {
	t.Helper()
	test.NewTempApp(t)
	store := scene.NewStore(scene.Options{})
	id, err := store.AddElement(element.KindImage, scene.Init{X: 10, Y: 10, Width: 100, Height: 50, Source: "a.png"})
	if err != nil {
		t.Fatal(err)
	}
	ed := editor.New(editor.Options{Store: store})
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = ed.Run(ctx) }()
	t.Cleanup(cancel)
	sc := NewSceneCanvas(ctx, ed)
	sc.OnError = func(err error) { t.Errorf("intent failed: %v", err) }
	sc.Resize(fyne.NewSize(800, 500))
	return sc, store, id
}

func TestSceneCanvas_Defaults(t *testing.T) {
	sc, _, _ := newCanvas(t)
	sz := sc.PreferredSize()
	if sz.Width != 800 || sz.Height != 500 {
		t.Fatalf("unexpected PreferredSize: %v", sz)
	}
	r, ok := sc.CreateRenderer().(*sceneCanvasRenderer)
	if !ok {
		t.Fatalf("expected sceneCanvasRenderer, got %T", sc.CreateRenderer())
	}
	if r.raster.Image == nil || r.raster.Image.Bounds().Dx() != 800 {
		t.Fatalf("raster not sized to the page: %v", r.raster.Image)
	}
	r.Layout(fyne.NewSize(800, 500))
	if r.bbox.Visible() {
		t.Fatal("selection outline shown with nothing selected")
	}
}

func TestSceneCanvas_SelectionOverlay(t *testing.T) {
	sc, store, id := newCanvas(t)
	store.Select(id)
	r := sc.CreateRenderer().(*sceneCanvasRenderer)
	r.Layout(fyne.NewSize(800, 500))
	if !r.bbox.Visible() {
		t.Fatal("selection outline hidden")
	}
	pos, size := r.bbox.Position(), r.bbox.Size()
	if !almostEqual(pos.X, 10, 0.01) || !almostEqual(pos.Y, 10, 0.01) || !almostEqual(size.Width, 100, 0.01) || !almostEqual(size.Height, 50, 0.01) {
		t.Fatalf("unexpected outline %v %v", pos, size)
	}
	if !r.rot.Visible() {
		t.Fatal("images carry a rotate handle")
	}
}

func TestSceneCanvas_TapSelectsAndBackgroundClears(t *testing.T) {
	sc, store, id := newCanvas(t)
	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(20, 20)})
	if got := store.Frame().Selected; got != id {
		t.Fatalf("selected %q, want %q", got, id)
	}
	sc.Tapped(&fyne.PointEvent{Position: fyne.NewPos(600, 400)})
	if got := store.Frame().Selected; got != "" {
		t.Fatalf("background click kept selection %q", got)
	}
}

func TestSceneCanvas_DragCommitsOnceWithoutHistory(t *testing.T) {
	sc, store, id := newCanvas(t)
	undoBefore, _ := store.HistoryDepth()

	for i := 1; i <= 5; i++ {
		sc.Dragged(&fyne.DragEvent{
			PointEvent: fyne.PointEvent{Position: fyne.NewPos(20+float32(i)*10, 20)},
			Dragged:    fyne.Delta{DX: 10},
		})
		if el, _, _ := store.Frame().Find(id); el.X != 10 {
			t.Fatalf("scene changed mid-gesture: x=%v", el.X)
		}
	}
	sc.DragEnd()

	el, _, _ := store.Frame().Find(id)
	if el.X != 60 || el.Y != 10 {
		t.Fatalf("unexpected final position (%v,%v)", el.X, el.Y)
	}
	if undoAfter, _ := store.HistoryDepth(); undoAfter != undoBefore {
		t.Fatalf("drag pushed history: %d -> %d", undoBefore, undoAfter)
	}
	if store.Frame().Selected != id {
		t.Fatal("dragged element should be selected")
	}
}
