package staging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openperiph/venus/binding"
	"github.com/openperiph/venus/flashmap"
	"github.com/openperiph/venus/macro"
)

func TestStageReplacesSameTarget(t *testing.T) {
	s := NewStore()
	target := Button(flashmap.Wired, 0)

	s.Stage(target, Change{Binding: binding.MouseButton{Button: binding.MouseLeft}})
	s.Stage(target, Change{Binding: binding.MouseButton{Button: binding.MouseRight}})

	require.Equal(t, 1, s.Len())
	c, ok := s.Get(target)
	require.True(t, ok)
	assert.Equal(t, binding.MouseButton{Button: binding.MouseRight}, c.Binding)
}

func TestDistinctTargetsCoexist(t *testing.T) {
	s := NewStore()
	s.Stage(Button(flashmap.Wired, 0), Change{Binding: binding.Disabled{}})
	s.Stage(Button(flashmap.Wireless, 0), Change{Binding: binding.Disabled{}})
	s.Stage(MacroSlot(3), Change{Macro: &macro.Macro{Name: "m"}})
	s.Stage(Global(flashmap.Wired, SettingPolling, 0), Change{Data: []byte{0x01}})

	assert.Equal(t, 4, s.Len())
}

func TestUndoRedo(t *testing.T) {
	s := NewStore()
	target := Button(flashmap.Wired, 2)

	assert.False(t, s.CanUndo())
	assert.False(t, s.Undo())

	s.Stage(target, Change{Binding: binding.DPIStep{Direction: binding.DPIUp}})
	s.Stage(target, Change{Binding: binding.DPIStep{Direction: binding.DPIDown}})

	require.True(t, s.Undo())
	c, ok := s.Get(target)
	require.True(t, ok)
	assert.Equal(t, binding.DPIStep{Direction: binding.DPIUp}, c.Binding)

	require.True(t, s.Undo())
	assert.Equal(t, 0, s.Len())
	assert.False(t, s.CanUndo())

	require.True(t, s.Redo())
	require.True(t, s.Redo())
	assert.False(t, s.CanRedo())
	c, _ = s.Get(target)
	assert.Equal(t, binding.DPIStep{Direction: binding.DPIDown}, c.Binding)
}

func TestStageClearsRedo(t *testing.T) {
	s := NewStore()
	target := Button(flashmap.Wired, 0)

	s.Stage(target, Change{Binding: binding.Disabled{}})
	require.True(t, s.Undo())
	require.True(t, s.CanRedo())

	s.Stage(target, Change{Binding: binding.PollingToggle{}})
	assert.False(t, s.CanRedo())
}

func TestDiscardIsUndoable(t *testing.T) {
	s := NewStore()
	s.Stage(Button(flashmap.Wired, 0), Change{Binding: binding.Disabled{}})
	s.Stage(MacroSlot(1), Change{Macro: &macro.Macro{Name: "m"}})

	s.Discard()
	assert.Equal(t, 0, s.Len())

	require.True(t, s.Undo())
	assert.Equal(t, 2, s.Len())
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore()
	s.Stage(Button(flashmap.Wired, 0), Change{Binding: binding.Disabled{}})

	snap := s.Snapshot()
	require.Len(t, snap, 1)

	s.Discard()
	assert.Len(t, snap, 1)
	assert.Equal(t, 0, s.Len())
}

func TestSnapshotOrdersMacrosFirst(t *testing.T) {
	s := NewStore()
	s.Stage(Button(flashmap.Wired, 4), Change{Binding: binding.MacroRef{Slot: 2}})
	s.Stage(Global(flashmap.Wired, SettingLED, 0), Change{Data: make([]byte, 8)})
	s.Stage(MacroSlot(2), Change{Macro: &macro.Macro{Name: "m"}})

	snap := s.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, TargetMacroSlot, snap[0].Target.Kind)
	assert.Equal(t, TargetButton, snap[1].Target.Kind)
	assert.Equal(t, TargetGlobal, snap[2].Target.Kind)
}

func TestClearAppliedLeavesOthers(t *testing.T) {
	s := NewStore()
	b0 := Button(flashmap.Wired, 0)
	b1 := Button(flashmap.Wired, 1)
	s.Stage(b0, Change{Binding: binding.Disabled{}})
	s.Stage(b1, Change{Binding: binding.Disabled{}})

	s.ClearApplied([]Target{b0})

	_, ok := s.Get(b0)
	assert.False(t, ok)
	_, ok = s.Get(b1)
	assert.True(t, ok)

	// The clear itself is not a history entry: one undo steps back to
	// before b1 was staged, not to before the clear.
	require.True(t, s.Undo())
	_, ok = s.Get(b0)
	assert.True(t, ok)
	_, ok = s.Get(b1)
	assert.False(t, ok)
}

func TestHistoryBounded(t *testing.T) {
	s := NewStore()
	target := Button(flashmap.Wired, 0)
	for i := 0; i < historyCap+20; i++ {
		s.Stage(target, Change{Binding: binding.FireKey{DelayMS: byte(i), Repeat: 1}})
	}

	n := 0
	for s.Undo() {
		n++
	}
	assert.Equal(t, historyCap, n)
}

func TestTargetStrings(t *testing.T) {
	assert.Equal(t, "wired/button3", Button(flashmap.Wired, 3).String())
	assert.Equal(t, "macro7", MacroSlot(7).String())
	assert.Equal(t, "wireless/polling", Global(flashmap.Wireless, SettingPolling, 0).String())
	assert.Equal(t, "alt/dpi2", Global(flashmap.Alt, SettingDPIStage, 2).String())
}
