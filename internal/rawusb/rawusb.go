// Package rawusb is the fallback transport for wireless receivers
// whose HID interface is claimed by the OS input stack: it talks to the
// vendor interface's interrupt endpoints directly instead of going
// through a HID driver.
package rawusb

import (
	"fmt"
	"time"

	"github.com/karalabe/usb"
)

// Device represents a receiver opened on its raw interrupt endpoints.
type Device struct {
	dev      usb.Device
	readSize int
}

// Open finds and opens the first device matching vid/pid. The vendor
// interface's endpoints are fixed by the firmware (IN 0x82, OUT 0x02,
// 64-byte packets), so no descriptor walk is needed.
func Open(vid, pid uint16) (*Device, error) {
	infos, err := usb.Enumerate(vid, pid)
	if err != nil {
		return nil, fmt.Errorf("usb enumerate: %w", err)
	}
	if len(infos) == 0 {
		return nil, fmt.Errorf("device not found (VID:0x%04X PID:0x%04X)", vid, pid)
	}

	dev, err := infos[0].Open()
	if err != nil {
		return nil, fmt.Errorf("open device: %w", err)
	}

	return &Device{dev: dev, readSize: 64}, nil
}

// Close releases the device.
func (d *Device) Close() error {
	return d.dev.Close()
}

// Write sends one frame on the OUT endpoint.
func (d *Device) Write(frame []byte) (int, error) {
	n, err := d.dev.Write(frame)
	if err != nil {
		return n, fmt.Errorf("usb write: %w", err)
	}
	return n, nil
}

// Read blocks for the next IN packet, polling until deadline. The
// receiver interleaves configuration replies with input reports, so
// callers filter by report ID.
func (d *Device) Read(deadline time.Duration) ([]byte, error) {
	buf := make([]byte, d.readSize)
	start := time.Now()
	for {
		n, err := d.dev.Read(buf)
		if err != nil {
			return nil, fmt.Errorf("usb read: %w", err)
		}
		if n > 0 {
			return buf[:n], nil
		}
		if time.Since(start) > deadline {
			return nil, fmt.Errorf("usb read: no packet within %s", deadline)
		}
		time.Sleep(5 * time.Millisecond)
	}
}
