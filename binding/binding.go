// Package binding encodes button actions into the device's flash
// records and back.
//
// A binding occupies a 4-byte record in the profile's mouse region:
//
//	[TYPE][D1][D2][D3]
//
// Keyboard bindings additionally write an event stream to the button's
// extended slot (count byte, 3-byte down/up events, trailing guard
// byte). The guard bytes are firmware-checked derivations of the other
// fields; Decode verifies them and fails with ErrGuardMismatch on
// disagreement, which catches corrupted read-backs.
package binding

import "fmt"

// Record type tags, from wired USB captures.
const (
	TypeDisabled = 0x00
	TypeMouse    = 0x01
	TypeDPI      = 0x02
	TypeFire     = 0x04
	TypeKeyboard = 0x05 // also carries consumer-page (media) bindings
	TypeMacro    = 0x06
	TypePolling  = 0x07
	TypeRGB      = 0x08
)

// Event stream status tags used in extended slots.
const (
	eventModifierUp   = 0x40
	eventKeyUp        = 0x41
	eventModifierDown = 0x80
	eventKeyDown      = 0x81
)

// Modifier is the standard HID modifier bitmask.
type Modifier byte

const (
	ModCtrl  Modifier = 0x01
	ModShift Modifier = 0x02
	ModAlt   Modifier = 0x04
	ModWin   Modifier = 0x08
)

// MouseCode identifies a physical mouse button action.
type MouseCode byte

const (
	MouseLeft    MouseCode = 0x01
	MouseRight   MouseCode = 0x02
	MouseMiddle  MouseCode = 0x04
	MouseBack    MouseCode = 0x08
	MouseForward MouseCode = 0x10
)

// DPIDirection selects which way a DPI step binding moves.
type DPIDirection byte

const (
	DPIUp   DPIDirection = 0x03
	DPIDown DPIDirection = 0x04
)

// RepeatMode controls macro playback for a macro binding.
type RepeatMode byte

const (
	RepeatOnce   RepeatMode = 0x01
	RepeatHold   RepeatMode = 0xFE
	RepeatToggle RepeatMode = 0xFF
)

// Binding is the closed set of actions assignable to a button. Each
// variant has exactly one canonical byte encoding; Encode/Decode switch
// over the set exhaustively so a new variant is a compile-visible
// change.
type Binding interface {
	isBinding()
}

// Disabled turns the button off.
type Disabled struct{}

// MouseButton emits an ordinary mouse button.
type MouseButton struct {
	Button MouseCode
}

// KeyboardKey emits a HID keyboard usage, optionally with modifiers
// held. Bindings with modifiers always carry an extended event stream.
type KeyboardKey struct {
	Scancode  byte
	Modifiers Modifier
}

// MacroRef plays the macro stored in Slot.
type MacroRef struct {
	Slot   int
	Repeat RepeatMode
}

// DPIStep moves one DPI stage up or down.
type DPIStep struct {
	Direction DPIDirection
}

// DPILoop cycles through the DPI stages.
type DPILoop struct{}

// PollingToggle cycles the polling rate.
type PollingToggle struct{}

// RGBToggle toggles the LED.
type RGBToggle struct{}

// FireKey repeats a left click Repeat times with DelayMS between
// clicks. Covers the fire key and triple-click presets.
type FireKey struct {
	DelayMS byte
	Repeat  byte
}

// MediaKey emits a consumer-page usage (play/pause, volume, ...). It
// shares firmware type 0x05 with KeyboardKey and is distinguished by
// the D2 subtype byte.
type MediaKey struct {
	Code byte
}

func (Disabled) isBinding()      {}
func (MouseButton) isBinding()   {}
func (KeyboardKey) isBinding()   {}
func (MacroRef) isBinding()      {}
func (DPIStep) isBinding()       {}
func (DPILoop) isBinding()       {}
func (PollingToggle) isBinding() {}
func (RGBToggle) isBinding()     {}
func (FireKey) isBinding()       {}
func (MediaKey) isBinding()      {}

func (d DPIDirection) valid() bool {
	return d == DPIUp || d == DPIDown
}

func (m RepeatMode) valid() bool {
	return m == RepeatOnce || m == RepeatHold || m == RepeatToggle
}

// mouseActionCode maps the mouse button mask to the firmware's D3 code.
// Forward/back codes are from captures; left/right/middle follow the
// same record shape.
func mouseActionCode(c MouseCode) (byte, bool) {
	switch c {
	case MouseLeft:
		return 0xF0, true
	case MouseRight:
		return 0xF1, true
	case MouseMiddle:
		return 0xF2, true
	case MouseBack:
		return 0x4C, true
	case MouseForward:
		return 0x44, true
	}
	return 0, false
}

func mouseCodeFromAction(d1 byte) (MouseCode, bool) {
	c := MouseCode(d1)
	if _, ok := mouseActionCode(c); ok {
		return c, true
	}
	return 0, false
}

func (m Modifier) String() string {
	if m == 0 {
		return "none"
	}
	s := ""
	if m&ModCtrl != 0 {
		s += "+ctrl"
	}
	if m&ModShift != 0 {
		s += "+shift"
	}
	if m&ModAlt != 0 {
		s += "+alt"
	}
	if m&ModWin != 0 {
		s += "+win"
	}
	return s[1:]
}

func (d DPIDirection) String() string {
	switch d {
	case DPIUp:
		return "up"
	case DPIDown:
		return "down"
	}
	return fmt.Sprintf("dpi-direction(0x%02X)", byte(d))
}
