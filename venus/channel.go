package venus

import (
	"context"
	"fmt"

	"github.com/openperiph/venus/internal/hid"
	"github.com/openperiph/venus/protocol"
)

// maxSkipped bounds how many unrelated input reports Send will discard
// while waiting for a configuration reply. The mouse interleaves
// motion and key reports on the same endpoint.
const maxSkipped = 32

// Channel adapts a HID device to the transaction controller's
// transport. One Send is one command round-trip: write the frame, then
// read input reports until one answers it.
type Channel struct {
	dev   hid.Device
	frame protocol.FrameConfig
}

// NewChannel wraps an opened configuration interface.
func NewChannel(dev hid.Device, frame protocol.FrameConfig) *Channel {
	return &Channel{dev: dev, frame: frame}
}

// Close closes the underlying device.
func (c *Channel) Close() error { return c.dev.Close() }

type readResult struct {
	buf []byte
	err error
}

// Send writes one command frame and returns the device's reply. Frames
// carrying the feature report ID go out through SET_REPORT; everything
// else is an output report. Replies arrive on the interrupt endpoint
// either way, the flash read ones always under the output report ID.
// Cancellation is honored while waiting for the reply; the underlying
// HID read itself cannot be interrupted, so a cancelled Send may leave
// one read in flight that the next call drains.
func (c *Channel) Send(ctx context.Context, frame []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := c.write(frame); err != nil {
		return nil, err
	}

	cmd := frame[1]
	for skipped := 0; skipped <= maxSkipped; skipped++ {
		buf, err := c.read(ctx)
		if err != nil {
			return nil, err
		}
		if matchReply(c.frame, cmd, buf) {
			return buf, nil
		}
	}
	return nil, fmt.Errorf("no reply to command 0x%02X after %d reports", cmd, maxSkipped)
}

func (c *Channel) write(frame []byte) error {
	if len(frame) == 0 || frame[0] != protocol.ReportFeature {
		if _, err := c.dev.Write(frame); err != nil {
			return fmt.Errorf("hid write: %w", err)
		}
		return nil
	}
	adv, ok := c.dev.(hid.Advanced)
	if !ok {
		return fmt.Errorf("feature-report frames need a backend with feature report support")
	}
	if err := adv.WriteFeature(frame[0], frame[1:]); err != nil {
		return fmt.Errorf("hid feature write: %w", err)
	}
	return nil
}

func (c *Channel) read(ctx context.Context) ([]byte, error) {
	ch := make(chan readResult, 1)
	go func() {
		buf := make([]byte, 64)
		n, err := c.dev.Read(buf)
		ch <- readResult{buf: buf[:n], err: err}
	}()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		if r.err != nil {
			return nil, fmt.Errorf("hid read: %w", r.err)
		}
		return r.buf, nil
	}
}

