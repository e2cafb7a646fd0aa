// Package macro encodes recorded macros into their flash slot format.
//
// A slot buffer is a 31-byte name header (length byte plus UTF-16LE
// name padded to 30 bytes), an event count byte at offset 0x1F, the
// event records, and a terminator carrying a checksum over the event
// bytes.
//
// Two details of the format are still disputed between independent
// reverse-engineering passes: the terminator checksum formula, and
// whether event records are logically 3 or physically 5 bytes wide.
// Both are therefore strategies on Codec rather than constants baked
// into the encoder; see TerminatorChecksum and the EventWidth values.
package macro

import (
	"errors"
	"fmt"
	"unicode/utf16"

	"github.com/openperiph/venus/flashmap"
)

// EventKind tags a macro event.
type EventKind byte

const (
	ModifierUp   EventKind = 0x40
	KeyUp        EventKind = 0x41
	ModifierDown EventKind = 0x80
	KeyDown      EventKind = 0x81
)

// Valid reports whether k is a known event tag.
func (k EventKind) Valid() bool {
	switch k {
	case ModifierUp, KeyUp, ModifierDown, KeyDown:
		return true
	}
	return false
}

// Event is one step of a macro.
type Event struct {
	Kind    EventKind
	Code    byte
	DelayMS uint16
}

// Macro is a named, ordered event sequence.
type Macro struct {
	Name   string
	Events []Event
}

// Buffer layout constants.
const (
	// NameFieldLen is the padded width of the UTF-16LE name field.
	NameFieldLen = 30

	// MaxNameUnits is the name limit in UTF-16 code units.
	MaxNameUnits = 15

	// headerLen is the name header width: length byte plus name field.
	// The event count byte sits directly after it, at offset 0x1F.
	headerLen = 1 + NameFieldLen

	// terminatorLen is the width of the trailing checksum record.
	terminatorLen = 4

	// LastDelayMarkerMS is the delay value the firmware expects on the
	// final event of every macro. It marks the end of playback; the
	// authored delay of the last event is discarded.
	LastDelayMarkerMS = 3
)

// Event record widths. The dumps are unambiguous that the slot layout
// strides 5 bytes per event; one analysis pass reads the last two bytes
// as padding rather than a delay, which EventWidth3 reproduces.
const (
	EventWidth5 = 5 // [TAG][CODE][00][DELAY_HI][DELAY_LO]
	EventWidth3 = 3 // [TAG][CODE][00], no delay encoded
)

var (
	// ErrNameTooLong is returned when the macro name exceeds
	// MaxNameUnits UTF-16 code units.
	ErrNameTooLong = errors.New("macro name too long")

	// ErrMacroTooLarge is returned when the encoded buffer would exceed
	// the slot capacity. Events are never silently dropped.
	ErrMacroTooLarge = errors.New("macro exceeds slot capacity")

	// ErrTruncated is returned by Decode when the declared event count
	// runs past the available bytes.
	ErrTruncated = errors.New("truncated macro buffer")

	// ErrInvalidEvent is returned for events with an unknown tag.
	ErrInvalidEvent = errors.New("invalid macro event")

	// ErrEmpty is returned when encoding a macro with no events.
	ErrEmpty = errors.New("macro has no events")
)

// Codec encodes and decodes slot buffers. The zero value uses the
// defaults: 5-byte events and the base-0x68 terminator checksum.
type Codec struct {
	// EventWidth is EventWidth5 or EventWidth3.
	EventWidth int

	// Terminator computes the terminator checksum. See
	// TerminatorChecksum; nil selects DefaultTerminator.
	Terminator TerminatorChecksum
}

func (c *Codec) width() int {
	if c == nil || c.EventWidth == 0 {
		return EventWidth5
	}
	return c.EventWidth
}

func (c *Codec) terminator() TerminatorChecksum {
	if c == nil || c.Terminator == nil {
		return DefaultTerminator
	}
	return c.Terminator
}

// Encode renders a macro to its slot buffer. The final event's delay is
// rewritten to LastDelayMarkerMS regardless of its authored value.
func (c *Codec) Encode(m Macro) ([]byte, error) {
	if len(m.Events) == 0 {
		return nil, ErrEmpty
	}
	if len(m.Events) > 0xFF {
		return nil, fmt.Errorf("%w: %d events", ErrMacroTooLarge, len(m.Events))
	}
	name := utf16.Encode([]rune(m.Name))
	if len(name) > MaxNameUnits {
		return nil, fmt.Errorf("%w: %d UTF-16 units", ErrNameTooLong, len(name))
	}

	width := c.width()
	total := headerLen + 1 + len(m.Events)*width + terminatorLen
	if total > flashmap.MacroSlotCapacity {
		return nil, fmt.Errorf("%w: %d > %d bytes", ErrMacroTooLarge, total, flashmap.MacroSlotCapacity)
	}

	buf := make([]byte, 0, total)
	buf = append(buf, byte(2*len(name)))
	for _, u := range name {
		buf = append(buf, byte(u), byte(u>>8))
	}
	for len(buf) < headerLen {
		buf = append(buf, 0x00)
	}
	buf = append(buf, byte(len(m.Events)))

	eventStart := len(buf)
	for i, ev := range m.Events {
		if !ev.Kind.Valid() {
			return nil, fmt.Errorf("%w: tag 0x%02X at %d", ErrInvalidEvent, byte(ev.Kind), i)
		}
		delay := ev.DelayMS
		if i == len(m.Events)-1 {
			delay = LastDelayMarkerMS
		}
		switch width {
		case EventWidth5:
			buf = append(buf, byte(ev.Kind), ev.Code, 0x00, byte(delay>>8), byte(delay))
		case EventWidth3:
			buf = append(buf, byte(ev.Kind), ev.Code, 0x00)
		default:
			return nil, fmt.Errorf("unsupported event width %d", width)
		}
	}

	sum := c.terminator().Sum(buf[eventStart:], len(m.Events))
	buf = append(buf, sum, 0x00, 0x00, 0x00)
	return buf, nil
}

// Decode reconstructs a macro from a slot buffer. It is the read-back
// inverse of Encode; the last event's delay always decodes as the
// LastDelayMarkerMS marker, per the encoding rule.
func (c *Codec) Decode(buf []byte) (Macro, error) {
	if len(buf) < headerLen+1 {
		return Macro{}, fmt.Errorf("%w: %d bytes", ErrTruncated, len(buf))
	}
	nameLen := int(buf[0])
	if nameLen > 2*MaxNameUnits || nameLen%2 != 0 {
		return Macro{}, fmt.Errorf("%w: name length byte 0x%02X", ErrTruncated, buf[0])
	}
	units := make([]uint16, nameLen/2)
	for i := range units {
		units[i] = uint16(buf[1+2*i]) | uint16(buf[2+2*i])<<8
	}

	count := int(buf[headerLen])
	width := c.width()
	if headerLen+1+count*width > len(buf) {
		return Macro{}, fmt.Errorf("%w: %d events declared, %d bytes available",
			ErrTruncated, count, len(buf)-headerLen-1)
	}

	events := make([]Event, 0, count)
	for i := 0; i < count; i++ {
		rec := buf[headerLen+1+i*width:]
		ev := Event{Kind: EventKind(rec[0]), Code: rec[1]}
		if !ev.Kind.Valid() {
			return Macro{}, fmt.Errorf("%w: tag 0x%02X at %d", ErrInvalidEvent, rec[0], i)
		}
		if width == EventWidth5 {
			ev.DelayMS = uint16(rec[3])<<8 | uint16(rec[4])
		}
		events = append(events, ev)
	}
	return Macro{Name: string(utf16.Decode(units)), Events: events}, nil
}
