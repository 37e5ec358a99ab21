/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package log configures the application's slog logger: a compact console
// handler, optional JSON output, an optional rotated log file, and a small
// in-memory tail of recent records that crash reports include. Records are
// enriched with the document slot and editor intent carried on the context.
package log

import (
	"context"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	lj "gopkg.in/natefinch/lumberjack.v2"

	"gocanvas/internal/version"
)

// Options controls logger initialization.
// Values can be provided directly or via environment variables:
//   - GCV_LOG_LEVEL=debug|info|warn|error
//   - GCV_LOG_FORMAT=console|json
//   - GCV_LOG_FILE=<path> (enables file logging with rotation)
//   - GCV_LOG_SOURCE=true|false (include source)
type Options struct {
	Level     string
	Format    string // "console" or "json"
	AddSource bool
	File      string // optional path for file logging (rotated)
}

var (
	mu     sync.RWMutex
	logger *slog.Logger
)

// L returns the application logger, initializing it from the environment
// on first use.
func L() *slog.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l == nil {
		Init(FromEnv())
		mu.RLock()
		l = logger
		mu.RUnlock()
	}
	return l
}

// Init replaces the application logger and slog's default.
func Init(opts Options) {
	lvl := parseLevel(opts.Level)

	var out slog.Handler
	if strings.EqualFold(strings.TrimSpace(opts.Format), "json") {
		out = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource})
	} else {
		out = newConsoleHandler(os.Stderr, lvl, opts.AddSource)
	}
	hs := []slog.Handler{out, newConsoleHandler(recent, slog.LevelDebug, false)}
	if f := strings.TrimSpace(opts.File); f != "" {
		w := &lj.Logger{Filename: f, MaxSize: 10, MaxBackups: 3, MaxAge: 28, Compress: true}
		hs = append(hs, slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl, AddSource: opts.AddSource}))
	}

	l := slog.New(enriched(fanout(hs))).With(
		slog.String("app", "gocanvas"),
		slog.String("ver", version.Version),
		slog.Time("ts_init", time.Now()),
	)
	mu.Lock()
	logger = l
	mu.Unlock()
	slog.SetDefault(l)
}

// FromEnv builds Options from environment variables.
func FromEnv() Options {
	return Options{
		Level:     envOr("GCV_LOG_LEVEL", "info"),
		Format:    envOr("GCV_LOG_FORMAT", "console"),
		AddSource: strings.EqualFold(envOr("GCV_LOG_SOURCE", "false"), "true"),
		File:      os.Getenv("GCV_LOG_FILE"),
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}

// WithComponent returns a logger with the component attribute pre-set.
func WithComponent(name string) *slog.Logger { return L().With(slog.String("component", name)) }

// WithOperation annotates the logger with an operation name.
func WithOperation(l *slog.Logger, op string) *slog.Logger { return l.With(slog.String("op", op)) }

type fieldsKey struct{}

type fields struct{ slot, intent string }

// ContextWithSlot returns a context whose log records carry the document slot name.
func ContextWithSlot(ctx context.Context, slot string) context.Context {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	f.slot = slot
	return context.WithValue(ctx, fieldsKey{}, f)
}

// ContextWithIntent returns a context whose log records carry the editor intent name.
func ContextWithIntent(ctx context.Context, intent string) context.Context {
	f, _ := ctx.Value(fieldsKey{}).(fields)
	f.intent = intent
	return context.WithValue(ctx, fieldsKey{}, f)
}
