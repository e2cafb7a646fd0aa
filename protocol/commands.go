package protocol

import "fmt"

// Command numbers understood by the configuration firmware.
const (
	// CmdHandshake unlocks the write session. The device echoes it with
	// a ready marker once flash is writable.
	CmdHandshake = 0x03

	// CmdCommit finalizes a write session.
	CmdCommit = 0x04

	// CmdFlashWrite writes up to WriteChunkLen bytes to one flash page.
	CmdFlashWrite = 0x07

	// CmdFlashRead requests a flash read; the data comes back on the
	// interrupt endpoint (see ParseReadResponse).
	CmdFlashRead = 0x08

	// CmdFactoryReset restores the factory configuration.
	CmdFactoryReset = 0x09
)

// WriteChunkLen is the largest data slice one CmdFlashWrite frame can
// carry. Larger buffers are split into chunks by the callers.
const WriteChunkLen = 10

// writeHeaderLen is the flash write payload prefix: reserved byte, page,
// offset and length.
const writeHeaderLen = 4

// EncodeFlashWrite builds a flash write frame for data at (page,
// offset). The data slice is padded to WriteChunkLen inside the fixed
// payload; slices longer than WriteChunkLen fail with ErrPayloadTooLong,
// and writes that would run past the end of the page are rejected.
func (c FrameConfig) EncodeFlashWrite(page, offset byte, data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("flash write: empty data")
	}
	if len(data) > WriteChunkLen {
		return nil, fmt.Errorf("%w: flash write data %d > %d", ErrPayloadTooLong, len(data), WriteChunkLen)
	}
	if int(offset)+len(data) > 256 {
		return nil, fmt.Errorf("flash write at 0x%02X:0x%02X crosses page boundary", page, offset)
	}
	payload := make([]byte, writeHeaderLen+WriteChunkLen)
	payload[1] = page
	payload[2] = offset
	payload[3] = byte(len(data))
	copy(payload[writeHeaderLen:], data)
	return c.Encode(CmdFlashWrite, payload)
}

// EncodeFlashRead builds a flash read request for length bytes at
// (page, offset). The firmware serves at most WriteChunkLen bytes per
// request reliably.
func (c FrameConfig) EncodeFlashRead(page, offset, length byte) ([]byte, error) {
	if length == 0 || int(length) > WriteChunkLen {
		return nil, fmt.Errorf("flash read length %d out of range 1..%d", length, WriteChunkLen)
	}
	if int(offset)+int(length) > 256 {
		return nil, fmt.Errorf("flash read at 0x%02X:0x%02X crosses page boundary", page, offset)
	}
	return c.Encode(CmdFlashRead, []byte{0x00, page, offset, length})
}

// ReadResponse is the parsed interrupt-endpoint answer to a flash read:
//
//	[REPORT_OUTPUT][CMD_FLASH_READ][00][PAGE][OFFSET][LEN][DATA...]
type ReadResponse struct {
	Page   byte
	Offset byte
	Data   []byte
}

// ParseReadResponse decodes a flash read response. Read responses arrive
// on the interrupt endpoint and are not checksummed on all firmware
// revisions, so only the structure is validated.
func ParseReadResponse(buf []byte) (ReadResponse, error) {
	const header = 6
	if len(buf) < header {
		return ReadResponse{}, fmt.Errorf("%w: read response %d bytes", ErrMalformedFrame, len(buf))
	}
	if buf[0] != ReportOutput || buf[1] != CmdFlashRead {
		return ReadResponse{}, fmt.Errorf("%w: unexpected read response header %02X %02X",
			ErrMalformedFrame, buf[0], buf[1])
	}
	n := int(buf[5])
	if header+n > len(buf) {
		return ReadResponse{}, fmt.Errorf("%w: declared %d data bytes, have %d",
			ErrMalformedFrame, n, len(buf)-header)
	}
	data := make([]byte, n)
	copy(data, buf[header:header+n])
	return ReadResponse{Page: buf[3], Offset: buf[4], Data: data}, nil
}
