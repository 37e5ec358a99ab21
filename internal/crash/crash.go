/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package crash turns a panic at the CLI or UI boundary into a crash report
// plus an autosave of the scene.
package crash

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	applog "gocanvas/internal/log"
	"gocanvas/internal/scene"
	"gocanvas/internal/storage"
	"gocanvas/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session is what a crash handler can rescue. Any field may be zero.
type Session struct {
	// DataDir receives crash reports under crash/; empty uses the temp dir.
	DataDir string
	Store   *scene.Store
	Slots   storage.Slots
}

// Recover captures a panic, logs it with its stack, writes a report and
// autosaves the scene to a crash-<stamp> slot.
//
// Usage: defer crash.Recover(sess)
func Recover(s *Session) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, _ := writeReport(s, r, stack)
		if s != nil && s.Store != nil && s.Slots != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			if slot, err := Autosave(ctx, s); err != nil {
				l.Error("autosave crash snapshot failed", slog.Any("err", err))
			} else {
				l.Info("autosave crash snapshot written", slog.String("slot", slot))
			}
			cancel()
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

// Autosave writes the current scene to a fresh crash-<stamp> slot and
// returns the slot name. Frames are immutable, so this is safe from any
// goroutine.
func Autosave(ctx context.Context, s *Session) (string, error) {
	if s == nil || s.Store == nil || s.Slots == nil {
		return "", errors.New("nothing to autosave")
	}
	data, err := storage.Marshal(s.Store.Elements())
	if err != nil {
		return "", err
	}
	slot := "crash-" + time.Now().Format("20060102-150405")
	if err := s.Slots.Save(ctx, slot, data); err != nil {
		return "", err
	}
	return slot, nil
}

func writeReport(s *Session, panicVal any, stack []byte) (string, error) {
	dir := os.TempDir()
	if s != nil && s.DataDir != "" {
		dir = filepath.Join(s.DataDir, "crash")
		_ = os.MkdirAll(dir, 0o755)
	}
	stamp := time.Now().Format("20060102-150405")
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", stamp))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "GoCanvas Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s != nil && s.Store != nil {
		f := s.Store.Frame()
		_, _ = fmt.Fprintf(&buf, "Scene: %d elements, version %d, selected %q\n", len(f.Elements), f.Version, f.Selected)
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))
	if lines := applog.Recent(); len(lines) > 0 {
		_, _ = fmt.Fprintf(&buf, "\nRecent log:\n")
		for _, ln := range lines {
			_, _ = fmt.Fprintf(&buf, "  %s\n", ln)
		}
	}

	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
