/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"gocanvas/internal/config"
	"gocanvas/internal/crash"
	"gocanvas/internal/editor"
	"gocanvas/internal/media"
	"gocanvas/internal/scene"
	"gocanvas/internal/storage"
	"gocanvas/internal/undo"
)

// workspace is everything one CLI invocation needs, built from the config.
type workspace struct {
	cfg    config.AppConfig
	db     *sql.DB            // nil unless sqlite slots or the media cache are on
	files  *storage.FileSlots // nil for the sqlite backend
	slots  storage.Slots
	store  *scene.Store
	loader *media.Loader
	ed     *editor.Editor
}

func openWorkspace(cfg config.AppConfig, token string) (*workspace, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	dataDir := cfg.General.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	w := &workspace{cfg: cfg}
	if cfg.Storage.Backend == "sqlite" || cfg.Media.Cache {
		db, err := storage.OpenDB(storage.DBPath(dataDir))
		if err != nil {
			return nil, err
		}
		w.db = db
	}
	if cfg.Storage.Backend == "sqlite" {
		w.slots = storage.NewSQLiteSlots(w.db)
	} else {
		w.files = storage.NewFileSlots(filepath.Join(dataDir, "slots"), cfg.Storage.KeepBackups)
		w.slots = w.files
	}

	var cache media.Cache
	if cfg.Media.Cache {
		cache = storage.NewMediaCache(w.db, cfg.Media.CacheMaxBytes)
	}
	w.loader = media.NewLoader(media.Options{
		Fetcher:       media.NewFetcher(cfg.Media.Timeout(), token, cfg.Media.MaxBytes),
		Video:         media.VideoDecoder{FFmpegPath: cfg.Media.FFmpegPath, MaxFrames: cfg.Media.MaxFrames},
		Cache:         cache,
		MaxConcurrent: cfg.Media.MaxConcurrent,
	})
	w.store = scene.NewStore(scene.Options{History: undo.Config{MaxDepth: cfg.History.MaxDepth}})
	w.ed = editor.New(editor.Options{
		Store:    w.store,
		Slots:    w.slots,
		Slot:     cfg.Storage.Slot,
		Loader:   w.loader,
		Defaults: editor.Defaults{Image: cfg.Media.DefaultImage, Video: cfg.Media.DefaultVideo},
	})
	return w, nil
}

// fill points a pre-deferred crash session at this workspace's scene.
func (w *workspace) fill(s *crash.Session) {
	s.DataDir = w.cfg.General.DataDir
	s.Store = w.store
	s.Slots = w.slots
}

func (w *workspace) Close() error {
	w.loader.Wait()
	if w.db != nil {
		return w.db.Close()
	}
	return nil
}

var errNoBackups = errors.New("backups are only kept by the file storage backend")

// drain yields the notices queued so far without waiting for more.
func drain(w *workspace) iter.Seq[scene.Notice] {
	return func(yield func(scene.Notice) bool) {
		for {
			select {
			case n := <-w.store.Notices():
				if !yield(n) {
					return
				}
			default:
				return
			}
		}
	}
}
