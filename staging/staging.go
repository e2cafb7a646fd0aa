// Package staging buffers configuration edits in host memory until they
// are applied to the device. Nothing here touches hardware: a staged
// change is only a pending intent, keyed by its target, and re-staging
// a target replaces the previous intent.
//
// The store keeps a bounded undo/redo history of staging operations.
// Entries leave the store in exactly two ways: an explicit discard, or
// the transaction controller clearing the targets it actually applied.
package staging

import (
	"fmt"
	"sort"
	"sync"

	"github.com/openperiph/venus/binding"
	"github.com/openperiph/venus/flashmap"
	"github.com/openperiph/venus/macro"
)

// TargetKind discriminates what a staged change addresses.
type TargetKind int

const (
	TargetButton TargetKind = iota
	TargetMacroSlot
	TargetGlobal
)

// Setting names a profile-global value.
type Setting int

const (
	SettingLED Setting = iota
	SettingPolling
	SettingDPIStage
)

// Target identifies one configurable entity. It is a comparable value
// used as the staging key: staging the same target twice keeps only the
// later change.
type Target struct {
	Kind    TargetKind
	Profile flashmap.Profile

	// Index is the button index, macro slot, or DPI stage depending on
	// Kind/Setting.
	Index int

	// Setting is meaningful for TargetGlobal only.
	Setting Setting
}

// Button builds a button target.
func Button(p flashmap.Profile, index int) Target {
	return Target{Kind: TargetButton, Profile: p, Index: index}
}

// MacroSlot builds a macro slot target. Macro slots are shared across
// profiles.
func MacroSlot(slot int) Target {
	return Target{Kind: TargetMacroSlot, Index: slot}
}

// Global builds a profile-global setting target. Index is the DPI stage
// for SettingDPIStage and ignored otherwise.
func Global(p flashmap.Profile, s Setting, index int) Target {
	return Target{Kind: TargetGlobal, Profile: p, Setting: s, Index: index}
}

func (t Target) String() string {
	switch t.Kind {
	case TargetButton:
		return fmt.Sprintf("%s/button%d", t.Profile, t.Index)
	case TargetMacroSlot:
		return fmt.Sprintf("macro%d", t.Index)
	case TargetGlobal:
		switch t.Setting {
		case SettingLED:
			return fmt.Sprintf("%s/led", t.Profile)
		case SettingPolling:
			return fmt.Sprintf("%s/polling", t.Profile)
		case SettingDPIStage:
			return fmt.Sprintf("%s/dpi%d", t.Profile, t.Index)
		}
	}
	return fmt.Sprintf("target(%d/%d)", t.Kind, t.Index)
}

// Change is the pending value for a target. Exactly one field is set,
// matching the target kind: Binding for buttons, Macro for macro slots,
// Data for global settings (raw bytes for the setting's flash record).
type Change struct {
	Binding binding.Binding
	Macro   *macro.Macro
	Data    []byte
}

// historyCap bounds the undo stack.
const historyCap = 50

// Store is the in-memory staging area. It is safe for concurrent
// readers, though the write path is expected to be the single UI/intent
// goroutine.
type Store struct {
	mu     sync.Mutex
	staged map[Target]Change
	undo   []map[Target]Change
	redo   []map[Target]Change
}

// NewStore returns an empty staging store.
func NewStore() *Store {
	return &Store{staged: make(map[Target]Change)}
}

func cloneState(m map[Target]Change) map[Target]Change {
	out := make(map[Target]Change, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (s *Store) pushHistory() {
	s.undo = append(s.undo, cloneState(s.staged))
	if len(s.undo) > historyCap {
		s.undo = s.undo[1:]
	}
	s.redo = nil
}

// Stage records a pending change, replacing any prior change for the
// same target.
func (s *Store) Stage(t Target, c Change) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistory()
	s.staged[t] = c
}

// Unstage drops the pending change for one target, if any.
func (s *Store) Unstage(t Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.staged[t]; !ok {
		return
	}
	s.pushHistory()
	delete(s.staged, t)
}

// Discard drops every pending change. The discard itself is undoable.
func (s *Store) Discard() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushHistory()
	s.staged = make(map[Target]Change)
}

// Undo reverts the most recent staging operation. It reports whether
// anything was undone.
func (s *Store) Undo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.undo) == 0 {
		return false
	}
	s.redo = append(s.redo, s.staged)
	s.staged = s.undo[len(s.undo)-1]
	s.undo = s.undo[:len(s.undo)-1]
	return true
}

// Redo re-applies the most recently undone operation.
func (s *Store) Redo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.redo) == 0 {
		return false
	}
	s.undo = append(s.undo, s.staged)
	s.staged = s.redo[len(s.redo)-1]
	s.redo = s.redo[:len(s.redo)-1]
	return true
}

// CanUndo reports whether Undo would do anything.
func (s *Store) CanUndo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.undo) > 0
}

// CanRedo reports whether Redo would do anything.
func (s *Store) CanRedo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.redo) > 0
}

// Get returns the pending change for a target.
func (s *Store) Get(t Target) (Change, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.staged[t]
	return c, ok
}

// Len returns the number of pending changes.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.staged)
}

// Snapshot returns a copy of the pending changes, in a deterministic
// target order. Mutating the store afterwards does not affect the
// snapshot; this is what a transaction is built from.
func (s *Store) Snapshot() []Staged {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Staged, 0, len(s.staged))
	for t, c := range s.staged {
		out = append(out, Staged{Target: t, Change: c})
	}
	sort.Slice(out, func(i, j int) bool { return less(out[i].Target, out[j].Target) })
	return out
}

// Staged is one snapshot entry.
type Staged struct {
	Target Target
	Change Change
}

// less orders targets: macro slots first (their buffers must be in
// flash before a binding references them), then buttons, then globals.
func less(a, b Target) bool {
	if a.Kind != b.Kind {
		return order(a.Kind) < order(b.Kind)
	}
	if a.Profile != b.Profile {
		return a.Profile < b.Profile
	}
	if a.Setting != b.Setting {
		return a.Setting < b.Setting
	}
	return a.Index < b.Index
}

func order(k TargetKind) int {
	switch k {
	case TargetMacroSlot:
		return 0
	case TargetButton:
		return 1
	}
	return 2
}

// ClearApplied removes exactly the given targets, without touching any
// other pending change and without entering the undo history: the
// device state has moved on, so re-staging them by undo would lie.
func (s *Store) ClearApplied(targets []Target) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range targets {
		delete(s.staged, t)
	}
}
