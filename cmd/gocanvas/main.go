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
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"gocanvas/internal/config"
	"gocanvas/internal/crash"
	"gocanvas/internal/element"
	"gocanvas/internal/export"
	applog "gocanvas/internal/log"
	"gocanvas/internal/storage"
	"gocanvas/internal/ui"
	"gocanvas/internal/version"
)

func usage() {
	fmt.Println("GoCanvas: editable 2D scene")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gocanvas version|-v|--version      Show version")
	fmt.Println("  gocanvas show                      Print the elements of the saved canvas")
	fmt.Println("  gocanvas export <file.pdf|.png|.svg>  Render the saved canvas, media included")
	fmt.Println("  gocanvas restore                   Restore the saved canvas from its latest backup")
	fmt.Println("  gocanvas ui                        Launch desktop UI (build with -tags fyne for full UI)")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	sess := &crash.Session{}
	defer crash.Recover(sess)

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	switch args[1] {
	case "version", "--version", "-v":
		fmt.Println("GoCanvas")
		fmt.Println(version.String())
		return
	case "show", "export", "restore", "ui":
	default:
		usage()
		os.Exit(2)
	}
	if args[1] == "export" && len(args) < 3 {
		fmt.Println("export requires <file>")
		usage()
		os.Exit(2)
	}

	cfg, token, err := config.Load()
	if err != nil {
		l.Error("load config failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	applog.Init(applog.Options{Level: cfg.Logging.Level, Format: cfg.Logging.Format, AddSource: cfg.Logging.Source, File: cfg.Logging.File})
	l = applog.WithComponent("cli")

	ws, err := openWorkspace(cfg, token)
	if err != nil {
		l.Error("open workspace failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	ws.fill(sess)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	ctx = applog.ContextWithSlot(ctx, cfg.Storage.Slot)
	go func() { _ = ws.ed.Run(ctx) }()

	switch args[1] {
	case "show":
		err = show(ctx, ws, os.Stdout)
	case "export":
		err = exportTo(ctx, ws, args[2])
	case "restore":
		err = restore(ctx, ws)
	case "ui":
		err = ui.Run(ctx, ui.Options{Editor: ws.ed, Crash: sess})
	}
	stop()
	if cerr := ws.Close(); cerr != nil {
		l.Warn("close workspace", slog.Any("err", cerr))
	}
	if err != nil {
		l.Error(args[1]+" failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

// show prints the saved slot without resolving any media.
func show(ctx context.Context, ws *workspace, out io.Writer) error {
	data, ok, err := ws.slots.Load(ctx, ws.cfg.Storage.Slot)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Nothing to load.")
		return nil
	}
	els, pending, err := storage.Deserialize(data)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Slot: %s\n", ws.cfg.Storage.Slot)
	fmt.Fprintf(out, "Elements: %d (media sources: %d)\n", len(els), len(pending))
	for i, el := range els {
		switch el.Kind {
		case element.KindText:
			fmt.Fprintf(out, "%3d  %-5s %s  at (%.0f,%.0f) size %.0f  %q\n", i, el.Kind, el.ID, el.X, el.Y, el.FontSize, el.Text)
		default:
			fmt.Fprintf(out, "%3d  %-5s %s  at (%.0f,%.0f) %.0fx%.0f  %s\n", i, el.Kind, el.ID, el.X, el.Y, el.Width, el.Height, el.Media.Source)
		}
	}
	return nil
}

// exportTo loads the saved slot, waits for its media, then renders it.
func exportTo(ctx context.Context, ws *workspace, path string) error {
	ok, err := ws.ed.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("slot %q is empty", ws.cfg.Storage.Slot)
	}
	if err := ws.ed.Settle(ctx); err != nil {
		return err
	}
	for n := range drain(ws) {
		if n.IsFailure() {
			fmt.Println("Warning:", n.String())
		}
	}
	if err := export.ToFile(ws.store.Elements(), path, export.Options{}); err != nil {
		return err
	}
	fmt.Println("Exported", path)
	return nil
}

func restore(ctx context.Context, ws *workspace) error {
	if ws.files == nil {
		return errNoBackups
	}
	ok, err := ws.files.RestoreLatestBackup(ctx, ws.cfg.Storage.Slot)
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("No backups found for", ws.cfg.Storage.Slot)
		return nil
	}
	fmt.Println("Restored", ws.files.Path(ws.cfg.Storage.Slot))
	return nil
}
