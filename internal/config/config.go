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
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted to a YAML file in the user scope.
// Environment variables are treated as read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
// Unknown fields are ignored on unmarshal.

type GeneralConfig struct {
	// DataDir holds saved slots, backups, the SQLite database and crash reports.
	DataDir string `yaml:"data_dir"`
}

type StorageConfig struct {
	Backend     string `yaml:"backend"` // "file" | "sqlite"
	Slot        string `yaml:"slot"`
	KeepBackups int    `yaml:"keep_backups"`
}

type MediaConfig struct {
	TimeoutMs     int    `yaml:"timeout_ms"`
	MaxBytes      int64  `yaml:"max_bytes"`
	MaxConcurrent int    `yaml:"max_concurrent"`
	Cache         bool   `yaml:"cache"`
	CacheMaxBytes int64  `yaml:"cache_max_bytes"`
	FFmpegPath    string `yaml:"ffmpeg_path"`
	MaxFrames     int    `yaml:"max_frames"`
	DefaultImage  string `yaml:"default_image"`
	DefaultVideo  string `yaml:"default_video"`
	// Token is not stored on disk; it lives in the OS keychain.
}

type HistoryConfig struct {
	// MaxDepth caps the undo stack; 0 keeps every entry.
	MaxDepth int `yaml:"max_depth"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	General       GeneralConfig `yaml:"general"`
	Storage       StorageConfig `yaml:"storage"`
	Media         MediaConfig   `yaml:"media"`
	History       HistoryConfig `yaml:"history"`
	Logging       LoggingConfig `yaml:"logging"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		General:       GeneralConfig{DataDir: ""},
		Storage:       StorageConfig{Backend: "file", Slot: "savedCanvas", KeepBackups: 10},
		Media: MediaConfig{
			TimeoutMs:     15000,
			MaxBytes:      64 << 20,
			MaxConcurrent: 4,
			Cache:         true,
			CacheMaxBytes: 256 << 20,
			MaxFrames:     300,
			DefaultImage:  "https://konvajs.org/assets/lion.png",
			DefaultVideo:  "https://interactive-examples.mdn.mozilla.net/media/cc0-videos/flower.mp4",
		},
		History: HistoryConfig{MaxDepth: 0},
		Logging: LoggingConfig{Level: "info", Format: "console", Source: false, File: ""},
	}
}

// Env var names used as overrides.
const (
	EnvDataDir        = "GCV_DATA_DIR"
	EnvStorageBackend = "GCV_STORAGE_BACKEND"
	EnvSlot           = "GCV_SLOT"
	EnvMediaTimeoutMs = "GCV_MEDIA_TIMEOUT_MS"
	EnvMediaCache     = "GCV_MEDIA_CACHE"
	EnvFFmpegPath     = "GCV_FFMPEG"
	EnvHistoryDepth   = "GCV_HISTORY_MAX_DEPTH"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "GCV_LOG_LEVEL"
	EnvLogFormat = "GCV_LOG_FORMAT"
	EnvLogSource = "GCV_LOG_SOURCE"
	EnvLogFile   = "GCV_LOG_FILE"
)

// Service/keys for OS keyring.
const (
	keyringService = "GoCanvas"
	keyringToken   = "media_token"
)

// tokenStore abstracts keyring, so we can stub in tests.
var tokenStore TokenStore = &osKeyring{}

type TokenStore interface {
	Get(service, key string) (string, error)
	Set(service, key, value string) error
	Delete(service, key string) error
}

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	base, err := userDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "config.yaml"), nil
}

func userDir() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" { // fallback
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "GoCanvas")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "GoCanvas")
	default: // linux and others
		base = filepath.Join(os.Getenv("HOME"), ".config", "gocanvas")
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return base, nil
}

// Load reads user config file (if present), applies defaults, and merges environment overrides.
// It also loads the media token from keyring (not kept inside the struct; returned separately).
func Load() (AppConfig, string, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, "", err
	}
	if data, err := os.ReadFile(path); err == nil {
		// booleans absent from the file keep their defaults
		fileCfg := AppConfig{
			Media:   MediaConfig{Cache: cfg.Media.Cache},
			Logging: LoggingConfig{Source: cfg.Logging.Source},
		}
		if err := yaml.Unmarshal(data, &fileCfg); err == nil {
			mergeInto(&cfg, &fileCfg)
		}
	}
	applyEnvOverrides(&cfg)
	if cfg.General.DataDir == "" {
		if base, err := userDir(); err == nil {
			cfg.General.DataDir = filepath.Join(base, "data")
		}
	}
	// token from keyring
	tok, _ := tokenStore.Get(keyringService, keyringToken)
	return cfg, tok, nil
}

// Save writes the user config YAML and persists the token into OS keyring (if non-empty).
func Save(cfg AppConfig, token string) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return err
	}
	if token != "" {
		if err := tokenStore.Set(keyringService, keyringToken, token); err != nil {
			return err
		}
	}
	return nil
}

// ForgetToken removes the media token from the OS keyring.
func ForgetToken() error {
	return tokenStore.Delete(keyringService, keyringToken)
}

func mergeInto(dst *AppConfig, src *AppConfig) {
	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if strings.TrimSpace(src.General.DataDir) != "" {
		dst.General.DataDir = strings.TrimSpace(src.General.DataDir)
	}
	// storage
	if b := strings.ToLower(strings.TrimSpace(src.Storage.Backend)); b != "" {
		dst.Storage.Backend = b
	}
	if strings.TrimSpace(src.Storage.Slot) != "" {
		dst.Storage.Slot = strings.TrimSpace(src.Storage.Slot)
	}
	if src.Storage.KeepBackups != 0 {
		dst.Storage.KeepBackups = src.Storage.KeepBackups
	}
	// media
	if src.Media.TimeoutMs != 0 {
		dst.Media.TimeoutMs = src.Media.TimeoutMs
	}
	if src.Media.MaxBytes != 0 {
		dst.Media.MaxBytes = src.Media.MaxBytes
	}
	if src.Media.MaxConcurrent != 0 {
		dst.Media.MaxConcurrent = src.Media.MaxConcurrent
	}
	// booleans: src already carries the defaults for keys the file omits
	dst.Media.Cache = src.Media.Cache
	if src.Media.CacheMaxBytes != 0 {
		dst.Media.CacheMaxBytes = src.Media.CacheMaxBytes
	}
	if strings.TrimSpace(src.Media.FFmpegPath) != "" {
		dst.Media.FFmpegPath = strings.TrimSpace(src.Media.FFmpegPath)
	}
	if src.Media.MaxFrames != 0 {
		dst.Media.MaxFrames = src.Media.MaxFrames
	}
	if strings.TrimSpace(src.Media.DefaultImage) != "" {
		dst.Media.DefaultImage = strings.TrimSpace(src.Media.DefaultImage)
	}
	if strings.TrimSpace(src.Media.DefaultVideo) != "" {
		dst.Media.DefaultVideo = strings.TrimSpace(src.Media.DefaultVideo)
	}
	if src.History.MaxDepth != 0 {
		dst.History.MaxDepth = src.History.MaxDepth
	}
	// logging
	if strings.TrimSpace(src.Logging.Level) != "" {
		dst.Logging.Level = strings.ToLower(strings.TrimSpace(src.Logging.Level))
	}
	if strings.TrimSpace(src.Logging.Format) != "" {
		dst.Logging.Format = strings.ToLower(strings.TrimSpace(src.Logging.Format))
	}
	dst.Logging.Source = src.Logging.Source
	if strings.TrimSpace(src.Logging.File) != "" {
		dst.Logging.File = strings.TrimSpace(src.Logging.File)
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		cfg.General.DataDir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorageBackend)); v != "" {
		cfg.Storage.Backend = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSlot)); v != "" {
		cfg.Storage.Slot = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvMediaTimeoutMs)); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Media.TimeoutMs = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvMediaCache)); v != "" {
		cfg.Media.Cache = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvFFmpegPath)); v != "" {
		cfg.Media.FFmpegPath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvHistoryDepth)); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.History.MaxDepth = n
		}
	}
	// logging overrides
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

func parseBool(v string) bool {
	lv := strings.ToLower(strings.TrimSpace(v))
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

// EnvOverrideFor returns the env var name if the field is overridden by environment variables.
func EnvOverrideFor(key string) (string, bool) {
	names := map[string]string{
		"general.data_dir":  EnvDataDir,
		"storage.backend":   EnvStorageBackend,
		"storage.slot":      EnvSlot,
		"media.timeout_ms":  EnvMediaTimeoutMs,
		"media.cache":       EnvMediaCache,
		"media.ffmpeg_path": EnvFFmpegPath,
		"history.max_depth": EnvHistoryDepth,
		"logging.level":     EnvLogLevel,
		"logging.format":    EnvLogFormat,
		"logging.source":    EnvLogSource,
		"logging.file":      EnvLogFile,
	}
	if env, ok := names[key]; ok && os.Getenv(env) != "" {
		return env, true
	}
	return "", false
}

// Timeout returns the media fetch timeout, falling back to the default when unset.
func (m MediaConfig) Timeout() time.Duration {
	if m.TimeoutMs <= 0 {
		return time.Duration(Defaults().Media.TimeoutMs) * time.Millisecond
	}
	return time.Duration(m.TimeoutMs) * time.Millisecond
}

// Validate reports configuration values the application cannot run with.
func (c AppConfig) Validate() error {
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.Storage.Slot) == "" {
		return errors.New("storage.slot is required")
	}
	if c.History.MaxDepth < 0 {
		return fmt.Errorf("history.max_depth must be >= 0, got %d", c.History.MaxDepth)
	}
	return nil
}
