/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

// Package undo keeps the undo/redo history of a document as two stacks of
// immutable full-state snapshots.
package undo

import (
	"sync"
	"time"
)

// Entry is one captured state. TS is when it was captured.
type Entry[S any] struct {
	State S
	TS    time.Time
}

// Config controls depth caps.
type Config struct {
	// MaxDepth limits the undo stack; the oldest entries are dropped first.
	// 0 means unbounded.
	MaxDepth int
}

// Manager provides an in-memory undo/redo stack pair.
// Every state handed to it is copied with the clone function, so later
// mutation of the live state never alters a stored entry.
// It is safe for concurrent use.
type Manager[S any] struct {
	cfg   Config
	clone func(S) S
	now   func() time.Time
	mu    sync.Mutex
	undo  []Entry[S]
	redo  []Entry[S]
}

// NewManager returns an empty manager. clone must return a deep,
// independent copy of its argument.
func NewManager[S any](cfg Config, clone func(S) S) *Manager[S] {
	if cfg.MaxDepth < 0 {
		cfg.MaxDepth = 0
	}
	if clone == nil {
		clone = func(s S) S { return s }
	}
	return &Manager[S]{cfg: cfg, clone: clone, now: time.Now}
}

// Snapshot records current as the state to return to on the next Undo.
// Any new snapshot invalidates the redo stack.
func (m *Manager[S]) Snapshot(current S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = append(m.undo, Entry[S]{State: m.clone(current), TS: m.now()})
	m.redo = nil
	m.enforceCapsLocked()
}

// Undo pops the most recent snapshot and pushes current onto the redo
// stack. It returns false and leaves both stacks untouched when there is
// nothing to undo.
func (m *Manager[S]) Undo(current S) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero S
	if len(m.undo) == 0 {
		return zero, false
	}
	e := m.undo[len(m.undo)-1]
	m.undo = m.undo[:len(m.undo)-1]
	m.redo = append(m.redo, Entry[S]{State: m.clone(current), TS: m.now()})
	return m.clone(e.State), true
}

// Redo is the mirror of Undo.
func (m *Manager[S]) Redo(current S) (S, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var zero S
	if len(m.redo) == 0 {
		return zero, false
	}
	e := m.redo[len(m.redo)-1]
	m.redo = m.redo[:len(m.redo)-1]
	m.undo = append(m.undo, Entry[S]{State: m.clone(current), TS: m.now()})
	m.enforceCapsLocked()
	return m.clone(e.State), true
}

// Depth returns the sizes of the undo and redo stacks.
func (m *Manager[S]) Depth() (undo, redo int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.undo), len(m.redo)
}

// CanUndo reports whether Undo would succeed.
func (m *Manager[S]) CanUndo() bool { u, _ := m.Depth(); return u > 0 }

// CanRedo reports whether Redo would succeed.
func (m *Manager[S]) CanRedo() bool { _, r := m.Depth(); return r > 0 }

// Each calls fn for every stored state on both stacks. The states are not
// copied; fn must not modify them or call back into m.
func (m *Manager[S]) Each(fn func(S)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, e := range m.undo {
		fn(e.State)
	}
	for _, e := range m.redo {
		fn(e.State)
	}
}

// Clear drops both stacks.
func (m *Manager[S]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.undo = nil
	m.redo = nil
}

func (m *Manager[S]) enforceCapsLocked() {
	if m.cfg.MaxDepth > 0 && len(m.undo) > m.cfg.MaxDepth {
		// drop the oldest extras
		toDrop := len(m.undo) - m.cfg.MaxDepth
		m.undo = append([]Entry[S]{}, m.undo[toDrop:]...)
	}
}
