package binding

import (
	"errors"
	"fmt"

	"github.com/openperiph/venus/flashmap"
)

var (
	// ErrUnknownType is returned when Decode sees a type tag outside the
	// variant set.
	ErrUnknownType = errors.New("unknown binding type")

	// ErrGuardMismatch is returned when a record's guard byte does not
	// match its parameters.
	ErrGuardMismatch = errors.New("guard byte mismatch")

	// ErrInvalidParameter is returned by Encode for parameter values the
	// firmware cannot represent. Nothing is clamped.
	ErrInvalidParameter = errors.New("invalid binding parameter")
)

// Scancode range accepted by the firmware (HID keyboard page, A..Menu
// plus keypad).
const (
	minScancode = 0x04
	maxScancode = 0xA4
)

// Guard corrections, from memory dump analysis. A simple keyboard
// record's extended guard is 0x91 - 2*scancode; modifier streams add
// 0x3A for the extra event pair.
const (
	keyGuardBase       = 0x91
	modifierGuardShift = 0x3A
	macroGuardBase     = 0x4E
	disabledGuard      = 0x55
)

// Encoded is a binding rendered to flash bytes. MouseRegion always
// holds the 4-byte record; Extended is nil unless the variant writes an
// event stream to the button's extended slot.
type Encoded struct {
	MouseRegion [4]byte
	Extended    []byte
}

func keyGuard(scancode byte) byte {
	return byte(keyGuardBase - 2*int(scancode))
}

// Encode renders a binding to its canonical byte form. Parameter values
// the firmware cannot represent fail with ErrInvalidParameter before
// anything reaches the wire.
func Encode(b Binding) (Encoded, error) {
	switch v := b.(type) {
	case Disabled:
		return Encoded{MouseRegion: [4]byte{TypeDisabled, 0x00, 0x00, disabledGuard}}, nil

	case MouseButton:
		code, ok := mouseActionCode(v.Button)
		if !ok {
			return Encoded{}, fmt.Errorf("%w: mouse code 0x%02X", ErrInvalidParameter, byte(v.Button))
		}
		return Encoded{MouseRegion: [4]byte{TypeMouse, byte(v.Button), 0x00, code}}, nil

	case KeyboardKey:
		if v.Scancode < minScancode || v.Scancode > maxScancode {
			return Encoded{}, fmt.Errorf("%w: scancode 0x%02X", ErrInvalidParameter, v.Scancode)
		}
		if v.Modifiers&^(ModCtrl|ModShift|ModAlt|ModWin) != 0 {
			return Encoded{}, fmt.Errorf("%w: modifier mask 0x%02X", ErrInvalidParameter, byte(v.Modifiers))
		}
		return Encoded{
			MouseRegion: [4]byte{TypeKeyboard, byte(v.Modifiers), 0x00, v.Scancode},
			Extended:    keyboardStream(v.Scancode, v.Modifiers),
		}, nil

	case MediaKey:
		if v.Code == 0 {
			return Encoded{}, fmt.Errorf("%w: zero consumer code", ErrInvalidParameter)
		}
		return Encoded{MouseRegion: [4]byte{TypeKeyboard, 0x00, 0x01, v.Code}}, nil

	case MacroRef:
		if v.Slot < 0 || v.Slot >= flashmap.MacroSlotCount {
			return Encoded{}, fmt.Errorf("%w: macro slot %d", ErrInvalidParameter, v.Slot)
		}
		if !v.Repeat.valid() {
			return Encoded{}, fmt.Errorf("%w: repeat mode 0x%02X", ErrInvalidParameter, byte(v.Repeat))
		}
		// D1 is the 1-based slot index, D2 the derived guard.
		return Encoded{MouseRegion: [4]byte{
			TypeMacro, byte(v.Slot + 1), byte(macroGuardBase - v.Slot), byte(v.Repeat),
		}}, nil

	case DPIStep:
		if !v.Direction.valid() {
			return Encoded{}, fmt.Errorf("%w: dpi direction 0x%02X", ErrInvalidParameter, byte(v.Direction))
		}
		return Encoded{MouseRegion: [4]byte{TypeDPI, byte(v.Direction), 0x00, 0x00}}, nil

	case DPILoop:
		return Encoded{MouseRegion: [4]byte{TypeDPI, 0x00, 0x00, 0x00}}, nil

	case PollingToggle:
		return Encoded{MouseRegion: [4]byte{TypePolling, 0x00, 0x00, 0x00}}, nil

	case RGBToggle:
		return Encoded{MouseRegion: [4]byte{TypeRGB, 0x00, 0x00, 0x00}}, nil

	case FireKey:
		if v.Repeat == 0 {
			return Encoded{}, fmt.Errorf("%w: fire repeat count 0", ErrInvalidParameter)
		}
		return Encoded{MouseRegion: [4]byte{TypeFire, v.DelayMS, v.Repeat, 0x00}}, nil
	}
	return Encoded{}, fmt.Errorf("%w: %T", ErrUnknownType, b)
}

// keyboardStream builds the extended-slot event stream: down/up events
// for the key, bracketed by modifier down/up when modifiers are held,
// with the guard byte last.
func keyboardStream(scancode byte, mods Modifier) []byte {
	if mods == 0 {
		return []byte{
			2,
			eventKeyDown, scancode, 0x00,
			eventKeyUp, scancode, 0x00,
			keyGuard(scancode),
		}
	}
	return []byte{
		4,
		eventModifierDown, byte(mods), 0x00,
		eventKeyDown, scancode, 0x00,
		eventModifierUp, byte(mods), 0x00,
		eventKeyUp, scancode, 0x00,
		keyGuard(scancode) + modifierGuardShift,
	}
}

// Decode is the inverse of Encode. It reconstructs the variant from the
// 4-byte mouse-region record and, for keyboard bindings, verifies the
// extended stream's guard byte when one is present.
func Decode(e Encoded) (Binding, error) {
	r := e.MouseRegion
	switch r[0] {
	case TypeDisabled:
		if r[3] != disabledGuard {
			return nil, fmt.Errorf("%w: disabled record D3 0x%02X", ErrGuardMismatch, r[3])
		}
		return Disabled{}, nil

	case TypeMouse:
		code, ok := mouseCodeFromAction(r[1])
		if !ok {
			return nil, fmt.Errorf("%w: mouse mask 0x%02X", ErrInvalidParameter, r[1])
		}
		want, _ := mouseActionCode(code)
		if r[3] != want {
			return nil, fmt.Errorf("%w: mouse action 0x%02X, want 0x%02X", ErrGuardMismatch, r[3], want)
		}
		return MouseButton{Button: code}, nil

	case TypeKeyboard:
		if r[2] == 0x01 {
			if r[3] == 0 {
				return nil, fmt.Errorf("%w: zero consumer code", ErrInvalidParameter)
			}
			return MediaKey{Code: r[3]}, nil
		}
		k := KeyboardKey{Scancode: r[3], Modifiers: Modifier(r[1])}
		if len(e.Extended) > 0 {
			if err := verifyStream(e.Extended, k); err != nil {
				return nil, err
			}
		}
		return k, nil

	case TypeMacro:
		slot := int(r[1]) - 1
		if slot < 0 || slot >= flashmap.MacroSlotCount {
			return nil, fmt.Errorf("%w: macro slot byte 0x%02X", ErrInvalidParameter, r[1])
		}
		if r[2] != byte(macroGuardBase-slot) {
			return nil, fmt.Errorf("%w: macro guard 0x%02X, want 0x%02X",
				ErrGuardMismatch, r[2], byte(macroGuardBase-slot))
		}
		mode := RepeatMode(r[3])
		if !mode.valid() {
			return nil, fmt.Errorf("%w: repeat mode 0x%02X", ErrInvalidParameter, r[3])
		}
		return MacroRef{Slot: slot, Repeat: mode}, nil

	case TypeDPI:
		switch {
		case r[1] == 0x00:
			return DPILoop{}, nil
		case DPIDirection(r[1]).valid():
			return DPIStep{Direction: DPIDirection(r[1])}, nil
		}
		return nil, fmt.Errorf("%w: dpi code 0x%02X", ErrInvalidParameter, r[1])

	case TypePolling:
		return PollingToggle{}, nil

	case TypeRGB:
		return RGBToggle{}, nil

	case TypeFire:
		if r[2] == 0 {
			return nil, fmt.Errorf("%w: fire repeat count 0", ErrInvalidParameter)
		}
		return FireKey{DelayMS: r[1], Repeat: r[2]}, nil
	}
	return nil, fmt.Errorf("%w: tag 0x%02X", ErrUnknownType, r[0])
}

// verifyStream checks an extended event stream against the keyboard
// record it belongs to.
func verifyStream(stream []byte, k KeyboardKey) error {
	want := keyboardStream(k.Scancode, k.Modifiers)
	if len(stream) < len(want) {
		return fmt.Errorf("%w: extended stream %d bytes, want %d", ErrGuardMismatch, len(stream), len(want))
	}
	if stream[len(want)-1] != want[len(want)-1] {
		return fmt.Errorf("%w: extended guard 0x%02X, want 0x%02X",
			ErrGuardMismatch, stream[len(want)-1], want[len(want)-1])
	}
	return nil
}
