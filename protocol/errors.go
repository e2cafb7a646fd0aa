package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrPayloadTooLong is returned when a payload exceeds the frame's
	// fixed payload capacity.
	ErrPayloadTooLong = errors.New("payload exceeds frame capacity")

	// ErrMalformedFrame is returned when a frame has the wrong length or
	// an unexpected report ID.
	ErrMalformedFrame = errors.New("malformed frame")

	// ErrChecksumMismatch is returned when a frame's trailing byte does
	// not satisfy the checksum convention.
	ErrChecksumMismatch = errors.New("checksum mismatch")
)

// StatusError is returned when the device echoed a command with an error
// status marker instead of the ready marker.
type StatusError struct {
	Command byte
	Status  byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("command 0x%02X rejected with status 0x%02X", e.Command, e.Status)
}
