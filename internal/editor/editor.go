/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package editor serializes user intents against one scene.
//
// Every toolbar command, pointer gesture and media completion runs as a job
// on a single goroutine, so the scene store never sees concurrent
// mutations. Renderers read the store's published frames directly.
package editor

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	applog "gocanvas/internal/log"
	"gocanvas/internal/media"
	"gocanvas/internal/scene"
	"gocanvas/internal/storage"
)

// ErrStopped is returned by Do once the run loop has exited.
var ErrStopped = errors.New("editor stopped")

// Defaults are the sources used when an add intent names none.
type Defaults struct {
	Image string
	Video string
}

// Options configures an Editor.
type Options struct {
	Store    *scene.Store
	Slots    storage.Slots
	Slot     string
	Loader   *media.Loader
	Defaults Defaults
	// QueueSize bounds pending jobs (default 256).
	QueueSize int
	Logger    *slog.Logger
	// Now is the playback clock (default time.Now).
	Now func() time.Time
}

type job struct {
	name string
	fn   func(ctx context.Context) error
	done chan error // nil for posted jobs
}

// Editor owns the intent queue.
type Editor struct {
	store    *scene.Store
	slots    storage.Slots
	slot     string
	loader   *media.Loader
	defaults Defaults
	log      *slog.Logger
	now      func() time.Time

	q       chan job
	stopped chan struct{}
	once    sync.Once

	// mediaCtx outlives individual intents; loads are never canceled.
	mediaCtx context.Context

	// touched only on the loop goroutine
	activeVideo string
}

// New builds an Editor. Call Run before issuing intents.
func New(opts Options) *Editor {
	if opts.Store == nil {
		opts.Store = scene.NewStore(scene.Options{})
	}
	if opts.Loader == nil {
		opts.Loader = media.NewLoader(media.Options{})
	}
	if opts.Slot == "" {
		opts.Slot = "savedCanvas"
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("editor")
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Editor{
		store:    opts.Store,
		slots:    opts.Slots,
		slot:     opts.Slot,
		loader:   opts.Loader,
		defaults: opts.Defaults,
		log:      opts.Logger,
		now:      opts.Now,
		q:        make(chan job, opts.QueueSize),
		stopped:  make(chan struct{}),
		mediaCtx: context.Background(),
	}
}

// Store exposes the scene for read access (frames, notices).
func (e *Editor) Store() *scene.Store { return e.store }

// Run consumes jobs until ctx is done. It must be called exactly once.
func (e *Editor) Run(ctx context.Context) error {
	e.mediaCtx = context.WithoutCancel(ctx)
	defer e.once.Do(func() { close(e.stopped) })
	e.log.Debug("editor loop started")
	for {
		select {
		case <-ctx.Done():
			e.log.Debug("editor loop stopped")
			return ctx.Err()
		case j := <-e.q:
			e.exec(ctx, j)
		}
	}
}

func (e *Editor) exec(ctx context.Context, j job) {
	jctx := applog.ContextWithIntent(ctx, j.name)
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				e.log.ErrorContext(jctx, "intent panicked", slog.Any("panic", r))
				err = errors.New("intent panicked")
			}
		}()
		err = j.fn(jctx)
	}()
	if err != nil {
		e.log.DebugContext(jctx, "intent failed", slog.Any("err", err))
	}
	if j.done != nil {
		j.done <- err
	}
}

// Do runs fn on the loop goroutine and waits for it.
func (e *Editor) Do(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	j := job{name: name, fn: fn, done: make(chan error, 1)}
	select {
	case e.q <- j:
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}
	select {
	case err := <-j.done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	case <-e.stopped:
		return ErrStopped
	}
}

// Post enqueues fn without waiting. When the queue is full the job is
// handed to a goroutine that delivers it as soon as there is room.
func (e *Editor) Post(name string, fn func(ctx context.Context) error) {
	j := job{name: name, fn: fn}
	select {
	case e.q <- j:
	default:
		go func() {
			select {
			case e.q <- j:
			case <-e.stopped:
			}
		}()
	}
}

// Settle waits for in-flight media loads and for their results to be applied.
func (e *Editor) Settle(ctx context.Context) error {
	e.loader.Wait()
	return e.Do(ctx, "settle", func(context.Context) error { return nil })
}
