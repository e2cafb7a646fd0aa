package venus

import (
	"context"
	"fmt"
	"time"

	"github.com/openperiph/venus/internal/rawusb"
	"github.com/openperiph/venus/protocol"
)

// RawChannel drives the configuration protocol over the receiver's raw
// interrupt endpoints, for hosts where the OS input stack has claimed
// the HID interface and refuses to share it.
type RawChannel struct {
	dev     *rawusb.Device
	frame   protocol.FrameConfig
	timeout time.Duration
}

// OpenRaw opens the receiver over raw USB.
func OpenRaw(frame protocol.FrameConfig) (*RawChannel, error) {
	dev, err := rawusb.Open(VendorID, ProductIDReceiver)
	if err != nil {
		return nil, err
	}
	return &RawChannel{dev: dev, frame: frame, timeout: 2 * time.Second}, nil
}

// Close releases the device.
func (c *RawChannel) Close() error { return c.dev.Close() }

// Send writes one command frame and polls the IN endpoint for its
// reply, discarding interleaved input reports.
func (c *RawChannel) Send(ctx context.Context, frame []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := c.dev.Write(frame); err != nil {
		return nil, err
	}

	cmd := frame[1]
	for skipped := 0; skipped <= maxSkipped; skipped++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		buf, err := c.dev.Read(c.timeout)
		if err != nil {
			return nil, err
		}
		if matchReply(c.frame, cmd, buf) {
			return buf, nil
		}
	}
	return nil, fmt.Errorf("no reply to command 0x%02X after %d packets", cmd, maxSkipped)
}

func matchReply(frame protocol.FrameConfig, cmd byte, buf []byte) bool {
	if len(buf) < 2 {
		return false
	}
	if cmd == protocol.CmdFlashRead {
		return buf[0] == protocol.ReportOutput && buf[1] == protocol.CmdFlashRead
	}
	return buf[0] == frame.ReportID && buf[1] == cmd
}
