/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package log

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
)

// fanout sends every record to each handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// enriched copies the slot and intent carried on the context onto records.
func enriched(next slog.Handler) slog.Handler { return enricher{next} }

type enricher struct{ next slog.Handler }

func (e enricher) Enabled(ctx context.Context, level slog.Level) bool {
	return e.next.Enabled(ctx, level)
}

func (e enricher) Handle(ctx context.Context, r slog.Record) error {
	if ctx != nil {
		if f, ok := ctx.Value(fieldsKey{}).(fields); ok {
			if f.slot != "" {
				r.AddAttrs(slog.String("slot", f.slot))
			}
			if f.intent != "" {
				r.AddAttrs(slog.String("intent", f.intent))
			}
		}
	}
	return e.next.Handle(ctx, r)
}

func (e enricher) WithAttrs(attrs []slog.Attr) slog.Handler {
	return enricher{e.next.WithAttrs(attrs)}
}
func (e enricher) WithGroup(name string) slog.Handler { return enricher{e.next.WithGroup(name)} }

// recentSize is how many console lines the in-memory tail keeps.
const recentSize = 64

// tail is a fixed-size ring of formatted log lines.
type tail struct {
	mu    sync.Mutex
	lines []string
	next  int
	full  bool
}

var recent = &tail{lines: make([]string, recentSize)}

// Write stores one console line; the console handler writes whole lines.
func (t *tail) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.lines[t.next] = strings.TrimRight(string(p), "\n")
	t.next = (t.next + 1) % len(t.lines)
	if t.next == 0 {
		t.full = true
	}
	return len(p), nil
}

func (t *tail) snapshot() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.full {
		return append([]string(nil), t.lines[:t.next]...)
	}
	out := make([]string, 0, len(t.lines))
	out = append(out, t.lines[t.next:]...)
	return append(out, t.lines[:t.next]...)
}

// Recent returns the latest log lines at debug level and above, oldest
// first, whatever the configured output level.
func Recent() []string { return recent.snapshot() }
