/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	applog "gocanvas/internal/log"
)

// BackupsDirName holds the timestamped copies FileSlots keeps of replaced slots.
const BackupsDirName = "backups"

// renameFile is swapped in tests to observe the replace step.
var renameFile = os.Rename

// ErrInvalidSlot is returned for slot names that cannot be stored.
var ErrInvalidSlot = errors.New("invalid slot name")

// Slots stores serialized documents under names.
// Load reports ok=false for a slot that was never written.
type Slots interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) (data []byte, ok bool, err error)
}

// ValidSlotName rejects names that would escape the slot directory.
func ValidSlotName(name string) error {
	if strings.TrimSpace(name) == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\:`) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidSlot, name)
	}
	return nil
}

// backupStamp names backup files; it sorts lexicographically by time.
const backupStamp = "20060102-150405.000000000"

// FileSlots keeps each slot as <Dir>/<name>.json.
// Replacing a slot first copies the old file to Dir/backups; at most
// KeepBackups copies per slot survive (0 disables backups).
type FileSlots struct {
	Dir         string
	KeepBackups int
}

// NewFileSlots returns FileSlots rooted at dir.
func NewFileSlots(dir string, keepBackups int) *FileSlots {
	return &FileSlots{Dir: dir, KeepBackups: keepBackups}
}

// Path returns the file backing a slot.
func (s *FileSlots) Path(name string) string {
	return filepath.Join(s.Dir, name+".json")
}

// Save writes data transactionally: temp file in the same directory, then rename.
func (s *FileSlots) Save(ctx context.Context, name string, data []byte) error {
	if err := ValidSlotName(name); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	l := applog.WithOperation(applog.WithComponent("storage"), "slot_save").With(slog.String("slot", name))
	if err := os.MkdirAll(s.Dir, 0o755); err != nil {
		return fmt.Errorf("create slot dir: %w", err)
	}
	path := s.Path(name)

	if s.KeepBackups > 0 {
		if _, statErr := os.Stat(path); statErr == nil {
			bdir := filepath.Join(s.Dir, BackupsDirName)
			stamp := time.Now().UTC().Format(backupStamp)
			bpath := filepath.Join(bdir, fmt.Sprintf("%s.json.%s.bak", name, stamp))
			if cerr := copyFile(path, bpath); cerr != nil {
				return fmt.Errorf("backup slot: %w", cerr)
			}
			if n, perr := s.pruneBackups(name); perr != nil {
				l.Warn("prune backups failed", slog.Any("err", perr))
			} else if n > 0 {
				l.Debug("pruned backups", slog.Int("removed", n))
			}
		}
	}

	temp := filepath.Join(s.Dir, fmt.Sprintf(".%s.json.tmp-%d-%d", name, os.Getpid(), rand.Int()))
	if err := writeFileSync(temp, data); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("write temp slot: %w", err)
	}
	// Windows cannot rename over an existing file.
	if runtime.GOOS == "windows" {
		if _, err := os.Stat(path); err == nil {
			_ = os.Remove(path)
		}
	}
	if err := renameFile(temp, path); err != nil {
		_ = os.Remove(temp)
		return fmt.Errorf("replace slot: %w", err)
	}
	l.Info("slot saved", slog.Int("bytes", len(data)))
	return nil
}

// Load reads a slot. A missing file is not an error.
func (s *FileSlots) Load(ctx context.Context, name string) ([]byte, bool, error) {
	if err := ValidSlotName(name); err != nil {
		return nil, false, err
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(s.Path(name))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read slot: %w", err)
	}
	return b, true, nil
}

// Backups lists the backup files of a slot, oldest first.
func (s *FileSlots) Backups(name string) ([]string, error) {
	if err := ValidSlotName(name); err != nil {
		return nil, err
	}
	bdir := filepath.Join(s.Dir, BackupsDirName)
	ents, err := os.ReadDir(bdir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backups dir: %w", err)
	}
	prefix := name + ".json."
	var out []string
	for _, e := range ents {
		n := e.Name()
		stamp, ok := strings.CutPrefix(n, prefix)
		if !ok {
			continue
		}
		stamp, ok = strings.CutSuffix(stamp, ".bak")
		// "a.json" backups share the "a.json." prefix; only an exact stamp belongs to "a"
		if !ok || len(stamp) != len(backupStamp) {
			continue
		}
		if _, err := time.Parse(backupStamp, stamp); err != nil {
			continue
		}
		out = append(out, filepath.Join(bdir, n))
	}
	// timestamp in the name sorts lexicographically
	sort.Strings(out)
	return out, nil
}

// RestoreLatestBackup replaces a slot with its most recent backup.
// It reports false when the slot has no backups.
func (s *FileSlots) RestoreLatestBackup(ctx context.Context, name string) (bool, error) {
	backups, err := s.Backups(name)
	if err != nil {
		return false, err
	}
	if len(backups) == 0 {
		return false, nil
	}
	b, err := os.ReadFile(backups[len(backups)-1])
	if err != nil {
		return false, fmt.Errorf("read latest backup: %w", err)
	}
	if err := s.Save(ctx, name, b); err != nil {
		return false, err
	}
	return true, nil
}

func (s *FileSlots) pruneBackups(name string) (int, error) {
	backups, err := s.Backups(name)
	if err != nil {
		return 0, err
	}
	removed := 0
	for len(backups)-removed > s.KeepBackups {
		if err := os.Remove(backups[removed]); err != nil {
			return removed, err
		}
		removed++
	}
	return removed, nil
}

// writeFileSync writes data to a file and flushes it to disk.
func writeFileSync(path string, data []byte) (err error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := f.Write(data); err != nil {
		return err
	}
	return f.Sync()
}

// copyFile copies src to dst, overwriting dst.
func copyFile(src, dst string) (err error) {
	sf, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := sf.Close(); err == nil {
			err = cerr
		}
	}()
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return err
	}
	df, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := df.Close(); err == nil {
			err = cerr
		}
	}()
	if _, err := io.Copy(df, sf); err != nil {
		return err
	}
	return df.Sync()
}
