package flashmap

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestButtonMouseAddress(t *testing.T) {
	tests := []struct {
		profile Profile
		button  int
		want    Address
	}{
		{Wired, 0, Address{0x00, 0x60}},
		{Wired, 11, Address{0x00, 0x9C}},
		{Wired, 15, Address{0x00, 0xBC}},
		{Wireless, 0, Address{0x80, 0x60}},
		{Alt, 3, Address{0xC0, 0x6C}},
	}
	for _, tt := range tests {
		got, err := ButtonMouseAddress(tt.profile, tt.button)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "profile=%s button=%d", tt.profile, tt.button)
	}
}

func TestButtonMouseAddressInvalid(t *testing.T) {
	_, err := ButtonMouseAddress(Wired, 16)
	assert.ErrorIs(t, err, ErrInvalidButton)
	_, err = ButtonMouseAddress(Wired, -1)
	assert.ErrorIs(t, err, ErrInvalidButton)
}

func TestButtonExtendedAddress(t *testing.T) {
	tests := []struct {
		profile Profile
		button  int
		want    Address
	}{
		{Wired, 0, Address{0x01, 0x00}},
		{Wired, 7, Address{0x01, 0xE0}},
		{Wired, 8, Address{0x02, 0x00}},
		{Wired, 15, Address{0x02, 0xE0}},
		{Wireless, 0, Address{0x81, 0x00}},
		{Alt, 9, Address{0xC2, 0x20}},
	}
	for _, tt := range tests {
		got, err := ButtonExtendedAddress(tt.profile, tt.button)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "profile=%s button=%d", tt.profile, tt.button)
	}
}

// Mouse-region and extended slots must never overlap across buttons
// within a profile.
func TestButtonAddressesDisjoint(t *testing.T) {
	for _, p := range []Profile{Wired, Wireless, Alt} {
		type span struct{ start, end int }
		var spans []span
		for b := 0; b < ButtonCount; b++ {
			m, err := ButtonMouseAddress(p, b)
			require.NoError(t, err)
			e, err := ButtonExtendedAddress(p, b)
			require.NoError(t, err)
			ms := int(m.Page)<<8 + int(m.Offset)
			es := int(e.Page)<<8 + int(e.Offset)
			spans = append(spans,
				span{ms, ms + MouseSlotLen},
				span{es, es + ExtendedSlotLen})
		}
		for i := range spans {
			for j := i + 1; j < len(spans); j++ {
				a, b := spans[i], spans[j]
				assert.True(t, a.end <= b.start || b.end <= a.start,
					"profile %s: span %#x-%#x overlaps %#x-%#x", p, a.start, a.end, b.start, b.end)
			}
		}
	}
}

func TestMacroSlotRange(t *testing.T) {
	tests := []struct {
		slot int
		want Address
	}{
		{0, Address{0x03, 0x00}},
		{1, Address{0x04, 0x80}},
		{2, Address{0x06, 0x00}},
		{3, Address{0x07, 0x80}},
		{11, Address{0x13, 0x80}},
	}
	for _, tt := range tests {
		addr, capacity, err := MacroSlotRange(tt.slot)
		require.NoError(t, err)
		assert.Equal(t, tt.want, addr, "slot=%d", tt.slot)
		assert.Equal(t, MacroSlotCapacity, capacity)
	}
}

func TestMacroSlotRangeInvalid(t *testing.T) {
	_, _, err := MacroSlotRange(MacroSlotCount)
	assert.ErrorIs(t, err, ErrInvalidSlot)
	_, _, err = MacroSlotRange(-1)
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

// Macro slots are 384 bytes each; consecutive slots must tile flash
// without gaps or overlap.
func TestMacroSlotsContiguous(t *testing.T) {
	for slot := 1; slot < MacroSlotCount; slot++ {
		prev, capacity, err := MacroSlotRange(slot - 1)
		require.NoError(t, err)
		cur, _, err := MacroSlotRange(slot)
		require.NoError(t, err)
		prevEnd := int(prev.Page)<<8 + int(prev.Offset) + capacity
		curStart := int(cur.Page)<<8 + int(cur.Offset)
		assert.Equal(t, prevEnd, curStart, "slot %d", slot)
	}
}

func TestFixedAddresses(t *testing.T) {
	assert.Equal(t, Address{0x00, 0x54}, LEDAddress(Wired))
	assert.Equal(t, Address{0x80, 0x54}, LEDAddress(Wireless))
	assert.Equal(t, Address{0x00, 0x00}, PollingAddress(Wired))

	stage2, err := DPIStageAddress(Wired, 2)
	require.NoError(t, err)
	assert.Equal(t, Address{0x00, 0x14}, stage2)

	_, err = DPIStageAddress(Wired, 5)
	assert.ErrorIs(t, err, ErrInvalidStage)
}

func TestAdvanceCarriesPage(t *testing.T) {
	assert.Equal(t, Address{0x04, 0x00}, Advance(Address{0x03, 0xF6}, 10))
	assert.Equal(t, Address{0x03, 0x8A}, Advance(Address{0x03, 0x80}, 10))
}
