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
	"log/slog"

	"gocanvas/internal/crash"
	"gocanvas/internal/editor"
	applog "gocanvas/internal/log"
)

// Options wires the window to a running editor.
type Options struct {
	// Editor must already be running; every gesture becomes one of its intents.
	Editor *editor.Editor
	// Crash is autosaved if the UI panics. Optional.
	Crash *crash.Session
	// ExportDir is where "Export PDF" writes canvas-<stamp>.pdf. Empty means
	// the working directory.
	ExportDir string
	Logger    *slog.Logger
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return applog.WithComponent("ui")
}
