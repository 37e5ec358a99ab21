/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package undo

import (
	"slices"
	"testing"
)

func newIntManager(depth int) *Manager[[]int] {
	return NewManager(Config{MaxDepth: depth}, func(s []int) []int { return slices.Clone(s) })
}

func TestUndoRedoBasic(t *testing.T) {
	m := newIntManager(0)
	cur := []int{}
	m.Snapshot(cur)
	cur = append(cur, 1)
	m.Snapshot(cur)
	cur = append(cur, 2)

	if u, r := m.Depth(); u != 2 || r != 0 {
		t.Fatalf("depth = %d/%d, want 2/0", u, r)
	}
	prev, ok := m.Undo(cur)
	if !ok || !slices.Equal(prev, []int{1}) {
		t.Fatalf("undo expected [1], got ok=%v %v", ok, prev)
	}
	if u, r := m.Depth(); u != 1 || r != 1 {
		t.Fatalf("depth after undo = %d/%d, want 1/1", u, r)
	}
	next, ok := m.Redo(prev)
	if !ok || !slices.Equal(next, []int{1, 2}) {
		t.Fatalf("redo expected [1 2], got ok=%v %v", ok, next)
	}
}

func TestEmptyStacksAreNoOps(t *testing.T) {
	m := newIntManager(0)
	if _, ok := m.Undo([]int{9}); ok {
		t.Fatalf("undo on empty stack must fail")
	}
	if _, ok := m.Redo([]int{9}); ok {
		t.Fatalf("redo on empty stack must fail")
	}
	if u, r := m.Depth(); u != 0 || r != 0 {
		t.Fatalf("no-op changed depth: %d/%d", u, r)
	}
}

func TestSnapshotClearsRedo(t *testing.T) {
	m := newIntManager(0)
	m.Snapshot([]int{})
	prev, _ := m.Undo([]int{1})
	if !m.CanRedo() {
		t.Fatalf("expected redo available after undo")
	}
	m.Snapshot(prev)
	if m.CanRedo() {
		t.Fatalf("new snapshot must clear redo")
	}
	if _, ok := m.Redo([]int{5}); ok {
		t.Fatalf("redo after new mutation must be a no-op")
	}
}

func TestSnapshotIsIndependentCopy(t *testing.T) {
	m := newIntManager(0)
	live := []int{1, 2, 3}
	m.Snapshot(live)
	live[0] = 99
	got, _ := m.Undo(live)
	if got[0] != 1 {
		t.Fatalf("stored snapshot was mutated through the live slice: %v", got)
	}
	// mutating the returned value must not affect the redo entry either
	got[1] = 42
	again, _ := m.Redo(got)
	if again[0] != 99 {
		t.Fatalf("redo entry should be the pre-undo live state, got %v", again)
	}
}

func TestUndoThenRedoRestoresValue(t *testing.T) {
	m := newIntManager(0)
	before := []int{1}
	m.Snapshot(before)
	after := []int{1, 2}
	undone, _ := m.Undo(after)
	redone, ok := m.Redo(undone)
	if !ok || !slices.Equal(redone, after) {
		t.Fatalf("undo+redo should restore %v, got %v", after, redone)
	}
}

func TestMaxDepthDropsOldest(t *testing.T) {
	m := newIntManager(2)
	for i := 0; i < 5; i++ {
		m.Snapshot([]int{i})
	}
	if u, _ := m.Depth(); u != 2 {
		t.Fatalf("expected depth cap 2, got %d", u)
	}
	s, _ := m.Undo(nil)
	if s[0] != 4 {
		t.Fatalf("newest entry should survive, got %v", s)
	}
	s, _ = m.Undo(s)
	if s[0] != 3 {
		t.Fatalf("second newest entry should survive, got %v", s)
	}
	if m.CanUndo() {
		t.Fatalf("older entries should have been dropped")
	}
}

func TestClear(t *testing.T) {
	m := newIntManager(0)
	m.Snapshot([]int{1})
	m.Undo([]int{2})
	m.Snapshot([]int{3})
	m.Clear()
	if u, r := m.Depth(); u != 0 || r != 0 {
		t.Fatalf("Clear left %d/%d entries", u, r)
	}
}

func TestEachVisitsBothStacks(t *testing.T) {
	m := NewManager[int](Config{}, nil)
	m.Snapshot(1)
	m.Snapshot(2)
	if _, ok := m.Undo(3); !ok {
		t.Fatal("undo failed")
	}
	var seen []int
	m.Each(func(v int) { seen = append(seen, v) })
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 3 {
		t.Fatalf("Each visited %v, want [1 3]", seen)
	}
}
