/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package media resolves media source locators into drawable handles.
//
// Loads run on their own goroutines and report through a callback; callers
// never block. Concurrency is bounded, concurrent loads of the same source
// share one fetch, and fetched bytes may be cached across runs.
package media

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"gocanvas/internal/element"
	applog "gocanvas/internal/log"
)

// Cache keeps fetched bytes by source.
type Cache interface {
	Get(ctx context.Context, source string) ([]byte, bool, error)
	Put(ctx context.Context, source string, data []byte) error
}

// Request asks for the handle behind Source on behalf of the element IDs.
type Request struct {
	Source string
	Kind   element.Kind
	IDs    []string
}

// Result is delivered once per Request. Exactly one of Handle and Err is set.
type Result struct {
	Source string
	Kind   element.Kind
	IDs    []string
	Handle element.Handle
	Err    error
	Took   time.Duration
}

// Options configures a Loader.
type Options struct {
	Fetcher       *Fetcher
	Video         VideoDecoder
	Cache         Cache // optional
	MaxConcurrent int
	Logger        *slog.Logger
}

// Loader resolves requests out of band.
type Loader struct {
	fetcher *Fetcher
	video   VideoDecoder
	cache   Cache
	sem     *semaphore.Weighted
	group   singleflight.Group
	wg      sync.WaitGroup
	log     *slog.Logger
}

// NewLoader builds a Loader. A nil Fetcher gets a 15s timeout and no size cap.
func NewLoader(opts Options) *Loader {
	if opts.Fetcher == nil {
		opts.Fetcher = NewFetcher(15*time.Second, "", 0)
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = 4
	}
	if opts.Logger == nil {
		opts.Logger = applog.WithComponent("media")
	}
	return &Loader{
		fetcher: opts.Fetcher,
		video:   opts.Video,
		cache:   opts.Cache,
		sem:     semaphore.NewWeighted(int64(opts.MaxConcurrent)),
		log:     opts.Logger,
	}
}

// Load starts resolving req and returns immediately. done runs on the
// loader's goroutine; a load is never retried or canceled once started.
func (l *Loader) Load(ctx context.Context, req Request, done func(Result)) {
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		start := time.Now()
		h, err := l.Resolve(ctx, req.Source, req.Kind)
		res := Result{Source: req.Source, Kind: req.Kind, IDs: req.IDs, Handle: h, Err: err, Took: time.Since(start)}
		if err != nil {
			l.log.Warn("media load failed", slog.String("source", req.Source), slog.Any("err", err))
		} else {
			l.log.Debug("media loaded", slog.String("source", req.Source), slog.Duration("took", res.Took))
		}
		if done != nil {
			done(res)
		}
	}()
}

// Wait blocks until every started load has delivered its result.
func (l *Loader) Wait() { l.wg.Wait() }

// Resolve fetches and decodes source synchronously.
func (l *Loader) Resolve(ctx context.Context, source string, kind element.Kind) (element.Handle, error) {
	if !kind.HasMedia() {
		return nil, &MediaLoadError{Source: source, Reason: "unsupported format", Err: fmt.Errorf("%w: kind %q", ErrUnsupportedFormat, kind)}
	}
	v, err, shared := l.group.Do(string(kind)+"|"+source, func() (any, error) {
		if err := l.sem.Acquire(ctx, 1); err != nil {
			return nil, &MediaLoadError{Source: source, Reason: "fetch", Err: err}
		}
		defer l.sem.Release(1)

		data, err := l.bytes(ctx, source)
		if err != nil {
			return nil, err
		}
		if kind == element.KindVideo {
			return l.video.Decode(ctx, source, data)
		}
		return DecodeImage(source, data)
	})
	if shared {
		l.log.Debug("media load shared", slog.String("source", source))
	}
	if err != nil {
		return nil, err
	}
	return v.(element.Handle), nil
}

func (l *Loader) bytes(ctx context.Context, source string) ([]byte, error) {
	cacheable := l.cache != nil && IsRemote(source)
	if cacheable {
		if b, ok, err := l.cache.Get(ctx, source); err != nil {
			l.log.Warn("media cache read failed", slog.String("source", source), slog.Any("err", err))
		} else if ok {
			return b, nil
		}
	}
	b, err := l.fetcher.Fetch(ctx, source)
	if err != nil {
		return nil, err
	}
	if cacheable {
		if err := l.cache.Put(ctx, source, b); err != nil {
			l.log.Warn("media cache write failed", slog.String("source", source), slog.Any("err", err))
		}
	}
	return b, nil
}
