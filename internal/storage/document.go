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
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	gojsonschema "github.com/xeipuuv/gojsonschema"

	"gocanvas/internal/element"
)

// DocumentVersion is written into every saved envelope.
const DocumentVersion = 1

// LegacyVideoSource is used for video records of bare-array documents, which
// never stored a locator for the clip.
const LegacyVideoSource = "https://interactive-examples.mdn.mozilla.net/media/cc0-videos/flower.mp4"

//go:embed schema/document.schema.json
var documentSchema []byte

// ErrCorruptDocument is matched by every *CorruptDocumentError.
var ErrCorruptDocument = errors.New("corrupt document")

// CorruptDocumentError reports a payload that could not be turned into a scene.
type CorruptDocumentError struct {
	Reason string
	Err    error
}

func (e *CorruptDocumentError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("corrupt document: %s: %v", e.Reason, e.Err)
	}
	return "corrupt document: " + e.Reason
}

func (e *CorruptDocumentError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrCorruptDocument, e.Err}
	}
	return []error{ErrCorruptDocument}
}

// Document is the persisted form of a scene.
type Document struct {
	Version  int       `json:"version"`
	SavedAt  time.Time `json:"savedAt"`
	Elements []Record  `json:"elements"`
}

// Record is one element of a Document. Media elements store their locator in
// Src; runtime handles are never written.
type Record struct {
	ID       string  `json:"id"`
	Type     string  `json:"type"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Width    float64 `json:"width,omitempty"`
	Height   float64 `json:"height,omitempty"`
	Rotation float64 `json:"rotation,omitempty"`
	Text     *string `json:"text,omitempty"`
	FontSize float64 `json:"fontSize,omitempty"`
	Src      string  `json:"src,omitempty"`

	// ImageURL is the image locator of bare-array documents.
	ImageURL string `json:"imageUrl,omitempty"`
}

// PendingLoad groups the ids of loaded elements that share one media source.
type PendingLoad struct {
	Source string
	Kind   element.Kind
	IDs    []string
}

// Serialize converts elements, in z-order, into a Document.
func Serialize(els []element.Element) Document {
	doc := Document{
		Version:  DocumentVersion,
		SavedAt:  time.Now().UTC(),
		Elements: make([]Record, 0, len(els)),
	}
	for _, el := range els {
		r := Record{
			ID:       el.ID,
			Type:     string(el.Kind),
			X:        el.X,
			Y:        el.Y,
			Width:    el.Width,
			Height:   el.Height,
			Rotation: el.Rotation,
		}
		switch el.Kind {
		case element.KindText:
			txt := el.Text
			r.Text = &txt
			r.FontSize = el.FontSize
		case element.KindImage, element.KindVideo:
			r.Src = el.Media.Source
		}
		doc.Elements = append(doc.Elements, r)
	}
	return doc
}

// Marshal serializes elements and encodes them as indented JSON.
func Marshal(els []element.Element) ([]byte, error) {
	data, err := json.MarshalIndent(Serialize(els), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal document: %w", err)
	}
	return append(data, '\n'), nil
}

var (
	schemaOnce sync.Once
	schema     *gojsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schema, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(documentSchema))
	})
	return schema, schemaErr
}

// Validate checks data against the embedded document schema.
func Validate(data []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("compile document schema: %w", err)
	}
	res, err := s.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &CorruptDocumentError{Reason: "not JSON", Err: err}
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return &CorruptDocumentError{Reason: "schema: " + strings.Join(msgs, "; ")}
	}
	return nil
}

// Deserialize parses a saved payload. It accepts the versioned envelope and
// the bare record array. Media elements come back pending, and every distinct
// source is reported once in the returned loads, in first-seen order.
func Deserialize(data []byte) ([]element.Element, []PendingLoad, error) {
	if err := Validate(data); err != nil {
		return nil, nil, err
	}
	recs, err := decodeRecords(data)
	if err != nil {
		return nil, nil, err
	}

	els := make([]element.Element, 0, len(recs))
	seen := make(map[string]struct{}, len(recs))
	var loads []PendingLoad
	index := map[string]int{}
	for i, r := range recs {
		el, err := r.element()
		if err != nil {
			return nil, nil, &CorruptDocumentError{Reason: fmt.Sprintf("record %d", i), Err: err}
		}
		if _, dup := seen[el.ID]; dup {
			return nil, nil, &CorruptDocumentError{Reason: fmt.Sprintf("duplicate id %q", el.ID)}
		}
		seen[el.ID] = struct{}{}
		els = append(els, el)

		if !el.Kind.HasMedia() {
			continue
		}
		key := string(el.Kind) + "\x00" + el.Media.Source
		if j, ok := index[key]; ok {
			loads[j].IDs = append(loads[j].IDs, el.ID)
			continue
		}
		index[key] = len(loads)
		loads = append(loads, PendingLoad{Source: el.Media.Source, Kind: el.Kind, IDs: []string{el.ID}})
	}
	return els, loads, nil
}

func decodeRecords(data []byte) ([]Record, error) {
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "[") {
		var recs []Record
		if err := json.Unmarshal(data, &recs); err != nil {
			return nil, &CorruptDocumentError{Reason: "decode records", Err: err}
		}
		return recs, nil
	}
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &CorruptDocumentError{Reason: "decode envelope", Err: err}
	}
	if doc.Version > DocumentVersion {
		return nil, &CorruptDocumentError{Reason: fmt.Sprintf("unsupported version %d", doc.Version)}
	}
	return doc.Elements, nil
}

func (r Record) element() (element.Element, error) {
	kind, ok := element.ParseKind(r.Type)
	if !ok {
		return element.Element{}, fmt.Errorf("unknown type %q", r.Type)
	}
	var (
		el  element.Element
		err error
	)
	switch kind {
	case element.KindImage:
		src := r.Src
		if src == "" {
			src = r.ImageURL
		}
		el, err = element.NewImage(r.ID, r.X, r.Y, r.Width, r.Height, src)
		if err == nil && r.Rotation != 0 {
			el.Rotation = r.Rotation
		}
	case element.KindVideo:
		src := r.Src
		if src == "" {
			src = LegacyVideoSource
		}
		if r.Rotation != 0 {
			return element.Element{}, fmt.Errorf("video %q is rotated", r.ID)
		}
		el, err = element.NewVideo(r.ID, r.X, r.Y, r.Width, r.Height, src)
	case element.KindText:
		txt := ""
		if r.Text != nil {
			txt = *r.Text
		}
		el, err = element.NewText(r.ID, r.X, r.Y, txt, r.FontSize)
		el.Width, el.Height, el.Rotation = r.Width, r.Height, r.Rotation
	}
	if err != nil {
		return element.Element{}, err
	}
	return el, nil
}
