/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	keyring "github.com/zalando/go-keyring"
)

// isolate points the per-user config path at a temp dir and mocks the keyring.
func isolate(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Setenv("AppData", t.TempDir())
	} else {
		t.Setenv("HOME", t.TempDir())
	}
	keyring.MockInit()
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	isolate(t)
	cfg, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "" {
		t.Fatalf("expected empty token, got %q", tok)
	}
	if cfg.Storage.Backend != "file" || cfg.Storage.Slot != "savedCanvas" {
		t.Fatalf("unexpected storage defaults: %#v", cfg.Storage)
	}
	if cfg.General.DataDir == "" {
		t.Fatalf("expected a resolved data dir")
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
}

func TestEnvOverridesStorage(t *testing.T) {
	isolate(t)
	t.Setenv(EnvStorageBackend, "SQLite")
	t.Setenv(EnvSlot, "scratch")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got, want := cfg.Storage.Backend, "sqlite"; got != want {
		t.Fatalf("Storage.Backend = %q, want %q", got, want)
	}
	if got, want := cfg.Storage.Slot, "scratch"; got != want {
		t.Fatalf("Storage.Slot = %q, want %q", got, want)
	}
	if env, ok := EnvOverrideFor("storage.slot"); !ok || env != EnvSlot {
		t.Fatalf("EnvOverrideFor(storage.slot) = %q, %v", env, ok)
	}
}

func TestEnvOverridesMedia(t *testing.T) {
	isolate(t)
	t.Setenv(EnvMediaTimeoutMs, "250")
	t.Setenv(EnvMediaCache, "off")
	t.Setenv(EnvFFmpegPath, "/usr/bin/ffmpeg")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Media.Timeout() != 250*time.Millisecond {
		t.Fatalf("Media.Timeout() = %v", cfg.Media.Timeout())
	}
	if cfg.Media.Cache {
		t.Fatalf("expected media cache disabled by env")
	}
	if cfg.Media.FFmpegPath != "/usr/bin/ffmpeg" {
		t.Fatalf("FFmpegPath = %q", cfg.Media.FFmpegPath)
	}
}

func TestSaveAndLoadRoundTripWithToken(t *testing.T) {
	isolate(t)
	cfg := Defaults()
	cfg.Storage.Backend = "sqlite"
	cfg.History.MaxDepth = 50
	cfg.Media.MaxConcurrent = 2
	if err := Save(cfg, "secret-token"); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	path, _ := ConfigPath()
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	got, tok, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if tok != "secret-token" {
		t.Fatalf("token = %q, want secret-token", tok)
	}
	if got.Storage.Backend != "sqlite" || got.History.MaxDepth != 50 || got.Media.MaxConcurrent != 2 {
		t.Fatalf("values not persisted: %#v", got)
	}
	if err := ForgetToken(); err != nil {
		t.Fatalf("ForgetToken() error: %v", err)
	}
	if _, tok, _ = Load(); tok != "" {
		t.Fatalf("token should be gone, got %q", tok)
	}
}

func TestMergeIncludesLogging(t *testing.T) {
	dst := Defaults()
	src := Defaults()
	src.Logging.Level = "debug"
	src.Logging.Format = "json"
	src.Logging.Source = true
	src.Logging.File = "C:/tmp/gcv.log"
	mergeInto(&dst, &src)
	if dst.Logging.Level != "debug" || dst.Logging.Format != "json" || !dst.Logging.Source || dst.Logging.File != "C:/tmp/gcv.log" {
		t.Fatalf("logging fields not merged correctly: %#v", dst.Logging)
	}
}

func TestEnvOverridesLogging(t *testing.T) {
	isolate(t)
	t.Setenv(EnvLogLevel, "error")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvLogSource, "1")
	t.Setenv(EnvLogFile, "X:/gcv.log")
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Logging.Level != "error" || cfg.Logging.Format != "json" || !cfg.Logging.Source || cfg.Logging.File != "X:/gcv.log" {
		t.Fatalf("env overrides not applied to logging: %#v", cfg.Logging)
	}
}

func TestFileValuesMergedFromYAML(t *testing.T) {
	isolate(t)
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	yml := "storage:\n  slot: board\nmedia:\n  cache: false\n  default_image: file:///tmp/a.png\n"
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.Slot != "board" || cfg.Media.Cache || cfg.Media.DefaultImage != "file:///tmp/a.png" {
		t.Fatalf("yaml values not merged: %#v", cfg)
	}
	// untouched values keep their defaults
	if cfg.Storage.Backend != "file" {
		t.Fatalf("Storage.Backend = %q, want default file", cfg.Storage.Backend)
	}
}

func TestFileWithoutBooleansKeepsDefaults(t *testing.T) {
	isolate(t)
	path, err := ConfigPath()
	if err != nil {
		t.Fatalf("ConfigPath: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte("media:\n  timeout_ms: 5000\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, _, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if !cfg.Media.Cache {
		t.Fatalf("media cache disabled by a file that does not mention it")
	}
	if cfg.Media.TimeoutMs != 5000 {
		t.Fatalf("TimeoutMs = %d, want 5000", cfg.Media.TimeoutMs)
	}
}

func TestValidateRejectsUnknownBackend(t *testing.T) {
	cfg := Defaults()
	cfg.Storage.Backend = "postgres"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for unknown backend")
	}
}
