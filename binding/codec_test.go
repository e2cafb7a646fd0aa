package binding

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTripAllVariants(t *testing.T) {
	bindings := []Binding{
		Disabled{},
		MouseButton{Button: MouseLeft},
		MouseButton{Button: MouseForward},
		KeyboardKey{Scancode: 0x04},
		KeyboardKey{Scancode: 0x1E, Modifiers: ModShift},
		KeyboardKey{Scancode: 0x24, Modifiers: ModCtrl | ModAlt},
		MediaKey{Code: 0xCD},
		MacroRef{Slot: 0, Repeat: RepeatOnce},
		MacroRef{Slot: 11, Repeat: RepeatToggle},
		DPIStep{Direction: DPIUp},
		DPIStep{Direction: DPIDown},
		DPILoop{},
		PollingToggle{},
		RGBToggle{},
		FireKey{DelayMS: 50, Repeat: 3},
	}
	for _, b := range bindings {
		enc, err := Encode(b)
		require.NoError(t, err, "%#v", b)
		dec, err := Decode(enc)
		require.NoError(t, err, "%#v", b)
		assert.Equal(t, b, dec)
	}
}

func TestKeyboardRecordBytes(t *testing.T) {
	// Shift+A, from a Windows driver dump: the extended stream is
	// [4][ModDn 02][KeyDn 04][ModUp 02][KeyUp 04] with guard 0xC3.
	enc, err := Encode(KeyboardKey{Scancode: 0x04, Modifiers: ModShift})
	require.NoError(t, err)
	assert.Equal(t, [4]byte{TypeKeyboard, 0x02, 0x00, 0x04}, enc.MouseRegion)
	assert.Equal(t, []byte{
		4,
		0x80, 0x02, 0x00,
		0x81, 0x04, 0x00,
		0x40, 0x02, 0x00,
		0x41, 0x04, 0x00,
		0xC3,
	}, enc.Extended)
}

func TestSimpleKeyboardGuard(t *testing.T) {
	// Guard for an unmodified key is 0x91 - 2*scancode.
	enc, err := Encode(KeyboardKey{Scancode: 0x1E})
	require.NoError(t, err)
	require.Len(t, enc.Extended, 8)
	assert.Equal(t, byte(0x91-2*0x1E), enc.Extended[7])
	assert.Equal(t, byte(2), enc.Extended[0])
}

func TestKeyboardWithoutModifiersOmitsNothingRequired(t *testing.T) {
	// An unmodified key decodes correctly from the mouse region alone.
	enc, err := Encode(KeyboardKey{Scancode: 0x29})
	require.NoError(t, err)
	dec, err := Decode(Encoded{MouseRegion: enc.MouseRegion})
	require.NoError(t, err)
	assert.Equal(t, KeyboardKey{Scancode: 0x29}, dec)
}

func TestMacroRecordBytes(t *testing.T) {
	// Captures: slot 0 binds as 06 01 4E <mode>, slot 14-equivalent
	// records decrement the guard per slot.
	enc, err := Encode(MacroRef{Slot: 0, Repeat: RepeatOnce})
	require.NoError(t, err)
	assert.Equal(t, [4]byte{TypeMacro, 0x01, 0x4E, 0x01}, enc.MouseRegion)

	enc, err = Encode(MacroRef{Slot: 5, Repeat: RepeatHold})
	require.NoError(t, err)
	assert.Equal(t, [4]byte{TypeMacro, 0x06, 0x49, 0xFE}, enc.MouseRegion)
}

func TestEncodeInvalidParameters(t *testing.T) {
	tests := []struct {
		name string
		b    Binding
	}{
		{"scancode zero", KeyboardKey{Scancode: 0x00}},
		{"scancode out of range", KeyboardKey{Scancode: 0xF0}},
		{"bad modifier mask", KeyboardKey{Scancode: 0x04, Modifiers: 0x80}},
		{"macro slot out of range", MacroRef{Slot: 12, Repeat: RepeatOnce}},
		{"macro slot negative", MacroRef{Slot: -1, Repeat: RepeatOnce}},
		{"bad repeat mode", MacroRef{Slot: 0, Repeat: RepeatMode(0x02)}},
		{"bad dpi direction", DPIStep{Direction: DPIDirection(0x09)}},
		{"bad mouse code", MouseButton{Button: MouseCode(0x20)}},
		{"fire zero repeat", FireKey{DelayMS: 10, Repeat: 0}},
		{"media zero code", MediaKey{Code: 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Encode(tt.b)
			assert.ErrorIs(t, err, ErrInvalidParameter)
		})
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := Decode(Encoded{MouseRegion: [4]byte{0x0A, 0, 0, 0}})
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestDecodeMediaZeroCode(t *testing.T) {
	// A consumer-page record with code 0 is nothing Encode can emit;
	// decoding it must fail rather than produce an unencodable value.
	_, err := Decode(Encoded{MouseRegion: [4]byte{TypeKeyboard, 0x00, 0x01, 0x00}})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestDecodeGuardMismatch(t *testing.T) {
	tests := []struct {
		name string
		e    Encoded
	}{
		{"disabled bad guard", Encoded{MouseRegion: [4]byte{TypeDisabled, 0, 0, 0x00}}},
		{"macro bad guard", Encoded{MouseRegion: [4]byte{TypeMacro, 0x01, 0x4D, 0x01}}},
		{"mouse bad action", Encoded{MouseRegion: [4]byte{TypeMouse, 0x01, 0, 0x00}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(tt.e)
			assert.ErrorIs(t, err, ErrGuardMismatch)
		})
	}
}

func TestDecodeExtendedGuardMismatch(t *testing.T) {
	enc, err := Encode(KeyboardKey{Scancode: 0x04, Modifiers: ModShift})
	require.NoError(t, err)
	enc.Extended[len(enc.Extended)-1] ^= 0xFF
	_, err = Decode(enc)
	assert.ErrorIs(t, err, ErrGuardMismatch)
}
