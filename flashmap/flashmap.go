// Package flashmap is the single source of truth for the device's flash
// memory layout: which page and offset a profile's button slot, macro
// slot, LED block, DPI stage or polling byte lives at. Everything here
// is deterministic arithmetic with no I/O; the binding and macro codecs
// take addresses from this package instead of carrying offsets of their
// own.
package flashmap

import (
	"errors"
	"fmt"
)

// Profile identifies one of the device's mirrored configuration banks.
// The banks are structurally identical; only the flash page base
// differs.
type Profile byte

const (
	Wired    Profile = iota // page base 0x00
	Wireless                // page base 0x80
	Alt                     // page base 0xC0
)

// BasePage returns the flash page base for the profile.
func (p Profile) BasePage() byte {
	switch p {
	case Wired:
		return 0x00
	case Wireless:
		return 0x80
	case Alt:
		return 0xC0
	}
	return 0x00
}

func (p Profile) String() string {
	switch p {
	case Wired:
		return "wired"
	case Wireless:
		return "wireless"
	case Alt:
		return "alt"
	}
	return fmt.Sprintf("profile(%d)", byte(p))
}

// Valid reports whether p names a known profile.
func (p Profile) Valid() bool {
	return p == Wired || p == Wireless || p == Alt
}

// Address is an absolute flash location.
type Address struct {
	Page   byte
	Offset byte
}

func (a Address) String() string {
	return fmt.Sprintf("0x%02X:0x%02X", a.Page, a.Offset)
}

// Layout constants.
const (
	// ButtonCount is the number of physical buttons (12 side buttons,
	// fire key, left, middle, right).
	ButtonCount = 16

	// MouseRegionBase is the per-profile offset of the 4-byte button
	// binding records.
	MouseRegionBase = 0x60

	// MouseSlotLen is the width of one mouse-region binding record.
	MouseSlotLen = 4

	// ExtendedSlotLen is the width of one extended (keyboard event
	// stream) slot. Two extended pages follow the profile base, eight
	// slots each.
	ExtendedSlotLen = 0x20

	// MacroSlotCount is the number of macro slots.
	MacroSlotCount = 12

	// MacroSlotCapacity is the byte budget of one macro slot (one and a
	// half pages).
	MacroSlotCapacity = 384

	// macroBasePage is the first flash page holding macro slots.
	macroBasePage = 0x03

	// LEDOffset is the per-profile offset of the 8-byte LED block
	// (R, G, B, mode, speed, brightness, two reserved).
	LEDOffset = 0x54

	// LEDLen is the width of the LED block.
	LEDLen = 8

	// DPIStageBase is the per-profile offset of the DPI stage records.
	DPIStageBase = 0x0C

	// DPIStageLen is the width of one DPI stage record.
	DPIStageLen = 4

	// DPIStageCount is the number of DPI stages.
	DPIStageCount = 5

	// PollingOffset is the per-profile offset of the polling rate code.
	PollingOffset = 0x00
)

var (
	// ErrInvalidButton is returned for button indexes outside
	// 0..ButtonCount-1.
	ErrInvalidButton = errors.New("button index out of range")

	// ErrInvalidSlot is returned for macro slot indexes outside
	// 0..MacroSlotCount-1.
	ErrInvalidSlot = errors.New("macro slot index out of range")

	// ErrInvalidStage is returned for DPI stage indexes outside
	// 0..DPIStageCount-1.
	ErrInvalidStage = errors.New("dpi stage index out of range")
)

// ButtonMouseAddress returns the address of button's 4-byte binding
// record in the profile's mouse region: base page, offset 0x60 + 4*i.
func ButtonMouseAddress(p Profile, button int) (Address, error) {
	if button < 0 || button >= ButtonCount {
		return Address{}, fmt.Errorf("%w: %d", ErrInvalidButton, button)
	}
	return Address{
		Page:   p.BasePage(),
		Offset: byte(MouseRegionBase + MouseSlotLen*button),
	}, nil
}

// ButtonExtendedAddress returns the address of button's 32-byte extended
// slot. The sixteen slots fill the two pages after the profile base,
// eight per page.
func ButtonExtendedAddress(p Profile, button int) (Address, error) {
	if button < 0 || button >= ButtonCount {
		return Address{}, fmt.Errorf("%w: %d", ErrInvalidButton, button)
	}
	return Address{
		Page:   p.BasePage() + 1 + byte(button/8),
		Offset: byte((button % 8) * ExtendedSlotLen),
	}, nil
}

// MacroSlotRange returns the start address and byte capacity of a macro
// slot. Slots are 384 bytes each, packed from page 0x03: even slots
// start at offset 0x00, odd slots at 0x80 of the page after the
// preceding slot's last full page.
func MacroSlotRange(slot int) (Address, int, error) {
	if slot < 0 || slot >= MacroSlotCount {
		return Address{}, 0, fmt.Errorf("%w: %d", ErrInvalidSlot, slot)
	}
	addr := Address{
		Page:   byte(macroBasePage + (slot*3)/2),
		Offset: byte((slot % 2) * 0x80),
	}
	return addr, MacroSlotCapacity, nil
}

// LEDAddress returns the address of the profile's LED block.
func LEDAddress(p Profile) Address {
	return Address{Page: p.BasePage(), Offset: LEDOffset}
}

// DPIStageAddress returns the address of one of the profile's DPI stage
// records.
func DPIStageAddress(p Profile, stage int) (Address, error) {
	if stage < 0 || stage >= DPIStageCount {
		return Address{}, fmt.Errorf("%w: %d", ErrInvalidStage, stage)
	}
	return Address{
		Page:   p.BasePage(),
		Offset: byte(DPIStageBase + DPIStageLen*stage),
	}, nil
}

// PollingAddress returns the address of the profile's polling rate
// code.
func PollingAddress(p Profile) Address {
	return Address{Page: p.BasePage(), Offset: PollingOffset}
}

// Advance returns the address n bytes past a, carrying into the page
// number. It is used when a multi-chunk buffer spans page boundaries.
func Advance(a Address, n int) Address {
	abs := int(a.Page)<<8 + int(a.Offset) + n
	return Address{Page: byte(abs >> 8), Offset: byte(abs)}
}
