// Package hid abstracts the platform HID stacks behind one small
// surface. The mouse exposes several HID interfaces; the configuration
// channel is the vendor-defined one, so enumeration carries enough
// descriptor detail (usage page, interface number) for callers to pick
// it out.
package hid

// Device represents an opened HID device capable of report I/O.
type Device interface {
	Write([]byte) (int, error) // send output report, report ID at p[0]
	Read([]byte) (int, error)  // read input report
	Close() error
}

// Advanced exposes report-specific operations and lengths when available.
// Implementations may choose to support only a subset.
type Advanced interface {
	WriteOutput(reportID byte, data []byte) error
	ReadInput() ([]byte, error)
	WriteFeature(reportID byte, data []byte) error
	ReadFeature(reportID byte) ([]byte, error)
	ReportLens() (inLen, outLen, featLen int)
}

// Info represents a HID device descriptor.
type Info struct {
	Path         string
	VendorID     uint16
	ProductID    uint16
	Product      string
	Manufacturer string

	// UsagePage of the interface's top-level collection. Vendor-defined
	// pages are >= 0xFF00. Zero when the backend cannot report it.
	UsagePage uint16

	// Interface is the USB interface number, or -1 when the backend
	// cannot report it.
	Interface int
}

// VendorDefined reports whether the descriptor's usage page is in the
// vendor-defined range. Backends that cannot read usage pages return
// false; callers fall back to interface-number matching.
func (i Info) VendorDefined() bool {
	return i.UsagePage >= 0xFF00
}

// Manager enumerates and opens HID devices.
type Manager interface {
	List() ([]Info, error)
	Open(info Info) (Device, error)
	OpenVIDPID(vendorID, productID uint16) (Device, error)
}

// NewManager returns the OS-specific HID manager.
func NewManager() (Manager, error) {
	return newManager()
}
