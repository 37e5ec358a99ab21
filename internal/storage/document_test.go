/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocanvas/internal/element"
)

type fakeHandle struct{ w, h int }

func (f fakeHandle) Size() (int, int) { return f.w, f.h }

func mustEl(t *testing.T) func(element.Element, error) element.Element {
	return func(el element.Element, err error) element.Element {
		t.Helper()
		if err != nil {
			t.Fatalf("build element: %v", err)
		}
		return el
	}
}

func TestRoundTripTextIsValueEqual(t *testing.T) {
	a := mustEl(t)(element.NewText("t1", 60, 60, "Hello", 24))
	b := mustEl(t)(element.NewText("t2", 10, 20, "", 12))
	b.Width, b.Rotation = 90, 30
	in := []element.Element{a, b}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, loads, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(loads) != 0 {
		t.Fatalf("expected no pending loads, got %v", loads)
	}
	if !reflect.DeepEqual(got, in) {
		t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, in)
	}
}

func TestSerializeStoresLocatorNotHandle(t *testing.T) {
	img := mustEl(t)(element.NewImage("i1", 50, 50, 120, 120, "https://example.test/lion.png"))
	img.Media = element.Media{Source: img.Media.Source, State: element.MediaResolved, Handle: fakeHandle{4, 4}}

	doc := Serialize([]element.Element{img})
	if doc.Version != DocumentVersion || len(doc.Elements) != 1 {
		t.Fatalf("unexpected document: %+v", doc)
	}
	r := doc.Elements[0]
	if r.Type != "image" || r.Src != "https://example.test/lion.png" || r.Text != nil {
		t.Fatalf("unexpected record: %+v", r)
	}
	b, err := json.Marshal(doc)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(b), "Handle") || strings.Contains(string(b), "resolved") {
		t.Fatalf("runtime state leaked into document: %s", b)
	}
}

func TestDeserializeMediaComesBackPendingAndGrouped(t *testing.T) {
	const lion = "https://example.test/lion.png"
	const clip = "https://example.test/flower.mp4"
	in := []element.Element{
		mustEl(t)(element.NewImage("a", 0, 0, 10, 10, lion)),
		mustEl(t)(element.NewVideo("v", 100, 100, 240, 140, clip)),
		mustEl(t)(element.NewImage("b", 5, 5, 10, 10, lion)),
	}
	in[0].Rotation = 45
	in[0].Media = element.Media{Source: lion, State: element.MediaResolved, Handle: fakeHandle{1, 1}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	got, loads, err := Deserialize(data)
	if err != nil {
		t.Fatalf("Deserialize: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 elements, got %d", len(got))
	}
	for _, el := range got {
		if el.Media.State != element.MediaPending || el.Media.Handle != nil {
			t.Fatalf("element %s not pending: %+v", el.ID, el.Media)
		}
	}
	if got[0].Rotation != 45 {
		t.Fatalf("image rotation lost: %v", got[0].Rotation)
	}
	want := []PendingLoad{
		{Source: lion, Kind: element.KindImage, IDs: []string{"a", "b"}},
		{Source: clip, Kind: element.KindVideo, IDs: []string{"v"}},
	}
	if !reflect.DeepEqual(loads, want) {
		t.Fatalf("loads mismatch:\n got %+v\nwant %+v", loads, want)
	}
}

func TestDeserializeLegacyArray(t *testing.T) {
	legacy := `[
	  {"id":"image1","type":"image","x":50,"y":50,"width":120,"height":120,"draggable":true,"imageUrl":"https://konvajs.org/assets/lion.png"},
	  {"id":"text1","type":"text","x":60,"y":60,"text":"Hello","fontSize":24,"draggable":true},
	  {"id":"video1","type":"video","x":100,"y":100,"width":240,"height":140}
	]`
	got, loads, err := Deserialize([]byte(legacy))
	if err != nil {
		t.Fatalf("Deserialize legacy: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("want 3 elements, got %d", len(got))
	}
	if got[0].Media.Source != "https://konvajs.org/assets/lion.png" {
		t.Fatalf("legacy imageUrl not mapped: %q", got[0].Media.Source)
	}
	if got[2].Media.Source != LegacyVideoSource {
		t.Fatalf("legacy video source: %q", got[2].Media.Source)
	}
	if got[1].Text != "Hello" || got[1].FontSize != 24 {
		t.Fatalf("legacy text: %+v", got[1])
	}
	if len(loads) != 2 {
		t.Fatalf("want 2 pending loads, got %d", len(loads))
	}
}

func TestDeserializeEmpty(t *testing.T) {
	for _, in := range []string{`[]`, `{"version":1,"elements":[]}`} {
		got, loads, err := Deserialize([]byte(in))
		if err != nil {
			t.Fatalf("Deserialize(%s): %v", in, err)
		}
		if len(got) != 0 || len(loads) != 0 {
			t.Fatalf("Deserialize(%s) = %v, %v", in, got, loads)
		}
	}
}

func TestDeserializeCorrupt(t *testing.T) {
	cases := map[string]string{
		"not json":        `{"version":1,`,
		"null":            `null`,
		"unknown type":    `[{"id":"x","type":"shape","x":0,"y":0}]`,
		"image no size":   `[{"id":"x","type":"image","x":0,"y":0,"src":"a.png"}]`,
		"image no src":    `[{"id":"x","type":"image","x":0,"y":0,"width":1,"height":1}]`,
		"zero width":      `[{"id":"x","type":"video","x":0,"y":0,"width":0,"height":1,"src":"a.gif"}]`,
		"text no size":    `[{"id":"x","type":"text","x":0,"y":0,"text":"hi"}]`,
		"missing id":      `[{"type":"text","x":0,"y":0,"text":"hi","fontSize":3}]`,
		"string x":        `[{"id":"x","type":"text","x":"1","y":0,"text":"hi","fontSize":3}]`,
		"rotated video":   `[{"id":"x","type":"video","x":0,"y":0,"width":1,"height":1,"rotation":5,"src":"a.gif"}]`,
		"duplicate ids":   `[{"id":"x","type":"text","x":0,"y":0,"text":"a","fontSize":3},{"id":"x","type":"text","x":0,"y":0,"text":"b","fontSize":3}]`,
		"future version":  `{"version":99,"elements":[]}`,
		"envelope no els": `{"version":1}`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			els, loads, err := Deserialize([]byte(in))
			if err == nil {
				t.Fatalf("expected error, got %v %v", els, loads)
			}
			if !errors.Is(err, ErrCorruptDocument) {
				t.Fatalf("error %v does not match ErrCorruptDocument", err)
			}
			var cde *CorruptDocumentError
			if !errors.As(err, &cde) || cde.Reason == "" {
				t.Fatalf("expected *CorruptDocumentError with reason, got %T %v", err, err)
			}
		})
	}
}

func TestSavedDocumentConformsToSchema(t *testing.T) {
	els := []element.Element{
		mustEl(t)(element.NewImage("i", 50, 50, 120, 120, "lion.png")),
		mustEl(t)(element.NewText("t", 60, 60, "Hello", 24)),
		mustEl(t)(element.NewVideo("v", 100, 100, 240, 140, "flower.gif")),
	}
	data, err := Marshal(els)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(documentSchema), gojsonschema.NewBytesLoader(data))
	if err != nil {
		t.Fatalf("schema validate error: %v", err)
	}
	if !res.Valid() {
		for _, e := range res.Errors() {
			t.Logf("schema error: %s", e)
		}
		t.Fatalf("document does not conform to schema")
	}
}
