package protocol

import "fmt"

// Frame lengths observed across firmware revisions. The length is fixed
// per transport variant; it is never negotiated on the wire.
const (
	FrameLen17 = 17
	FrameLen24 = 24
)

// Report IDs used by the configuration channel. Older firmware accepts
// commands on the feature-report pipe (0x08), newer revisions only act
// on output reports (0x09). Flash read responses always arrive on the
// interrupt endpoint with the output report ID.
const (
	ReportFeature = 0x08
	ReportOutput  = 0x09
)

// FrameConfig selects the frame width and report ID for one transport
// variant. The zero value is not valid; use one of the predefined
// configs or NewFrameConfig.
type FrameConfig struct {
	ReportID byte
	Length   int
}

// Predefined transport variants.
var (
	// Feature17 is the legacy feature-report transport (wired Venus Pro).
	Feature17 = FrameConfig{ReportID: ReportFeature, Length: FrameLen17}

	// Output17 is the output-report transport accepted by current
	// firmware. This is the default for the Venus Pro family.
	Output17 = FrameConfig{ReportID: ReportOutput, Length: FrameLen17}

	// Output24 is the wide-frame transport used by the 24-byte protocol
	// revision found on some dongles.
	Output24 = FrameConfig{ReportID: ReportOutput, Length: FrameLen24}
)

// NewFrameConfig builds a FrameConfig for a non-standard pairing of
// report ID and frame length.
func NewFrameConfig(reportID byte, length int) (FrameConfig, error) {
	if length != FrameLen17 && length != FrameLen24 {
		return FrameConfig{}, fmt.Errorf("unsupported frame length %d", length)
	}
	return FrameConfig{ReportID: reportID, Length: length}, nil
}

// PayloadLen returns the fixed payload width: the frame minus report ID,
// command byte and checksum byte.
func (c FrameConfig) PayloadLen() int {
	return c.Length - 3
}

// Encode builds a complete frame for the given command. The payload is
// zero padded to the fixed width; payloads longer than PayloadLen fail
// with ErrPayloadTooLong.
func (c FrameConfig) Encode(cmd byte, payload []byte) ([]byte, error) {
	if len(payload) > c.PayloadLen() {
		return nil, fmt.Errorf("%w: %d > %d", ErrPayloadTooLong, len(payload), c.PayloadLen())
	}
	frame := make([]byte, c.Length)
	frame[0] = c.ReportID
	frame[1] = cmd
	copy(frame[2:], payload)
	frame[c.Length-1] = Checksum(frame[:c.Length-1])
	return frame, nil
}

// EncodeSimple builds a frame for a command with an all-zero payload
// (handshake, commit, factory reset).
func (c FrameConfig) EncodeSimple(cmd byte) []byte {
	frame, _ := c.Encode(cmd, nil)
	return frame
}

// Verify reports whether a frame has the configured length and a valid
// trailing checksum.
func (c FrameConfig) Verify(frame []byte) bool {
	if len(frame) != c.Length {
		return false
	}
	return frame[c.Length-1] == Checksum(frame[:c.Length-1])
}

// Response is a parsed device response frame. The firmware echoes the
// command byte and places a status marker in the first payload byte.
type Response struct {
	Command byte
	Status  byte
	Data    []byte
}

// Status markers echoed by the firmware.
const (
	StatusReady  = 0x01
	StatusBusy   = 0x02
	StatusFailed = 0xFF
)

// Ready reports whether the response carries the ready/acknowledge
// marker.
func (r Response) Ready() bool {
	return r.Status == StatusReady
}

// ParseResponse validates and decomposes a response frame. It fails with
// ErrMalformedFrame on a bad length or report ID and ErrChecksumMismatch
// on a bad trailing byte.
func (c FrameConfig) ParseResponse(frame []byte) (Response, error) {
	if len(frame) != c.Length {
		return Response{}, fmt.Errorf("%w: got %d bytes, want %d", ErrMalformedFrame, len(frame), c.Length)
	}
	if frame[0] != c.ReportID {
		return Response{}, fmt.Errorf("%w: report ID 0x%02X, want 0x%02X", ErrMalformedFrame, frame[0], c.ReportID)
	}
	if frame[c.Length-1] != Checksum(frame[:c.Length-1]) {
		return Response{}, fmt.Errorf("%w: got 0x%02X, want 0x%02X",
			ErrChecksumMismatch, frame[c.Length-1], Checksum(frame[:c.Length-1]))
	}
	data := make([]byte, c.PayloadLen()-1)
	copy(data, frame[3:c.Length-1])
	return Response{
		Command: frame[1],
		Status:  frame[2],
		Data:    data,
	}, nil
}
