//go:build windows

package hid

import (
	"fmt"
	"sync"
	"time"

	gohid "github.com/sstallion/go-hid"
)

// Windows backend built on hidapi via go-hid. hidapi splits composite
// devices per interface and reports usage pages, which the vendor
// channel selection relies on.

var initOnce sync.Once

func hidInit() error {
	var err error
	initOnce.Do(func() { err = gohid.Init() })
	return err
}

type winManager struct{}

func newManager() (Manager, error) {
	if err := hidInit(); err != nil {
		return nil, fmt.Errorf("hidapi init: %w", err)
	}
	return &winManager{}, nil
}

func (m *winManager) List() ([]Info, error) {
	var out []Info
	err := gohid.Enumerate(gohid.VendorIDAny, gohid.ProductIDAny, func(info *gohid.DeviceInfo) error {
		out = append(out, Info{
			Path:         info.Path,
			VendorID:     info.VendorID,
			ProductID:    info.ProductID,
			Product:      info.ProductStr,
			Manufacturer: info.MfrStr,
			UsagePage:    info.UsagePage,
			Interface:    info.InterfaceNbr,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *winManager) Open(info Info) (Device, error) {
	d, err := gohid.OpenPath(info.Path)
	if err != nil {
		return nil, err
	}
	return &winDevice{d: d}, nil
}

func (m *winManager) OpenVIDPID(vendorID, productID uint16) (Device, error) {
	d, err := gohid.OpenFirst(vendorID, productID)
	if err != nil {
		return nil, err
	}
	return &winDevice{d: d}, nil
}

type winDevice struct{ d *gohid.Device }

func (d *winDevice) Write(p []byte) (int, error) {
	return d.d.Write(p)
}

func (d *winDevice) Read(p []byte) (int, error) {
	return d.d.Read(p)
}

// Advanced
func (d *winDevice) WriteOutput(reportID byte, data []byte) error {
	buf := append([]byte{reportID}, data...)
	_, err := d.d.Write(buf)
	return err
}

func (d *winDevice) ReadInput() ([]byte, error) {
	buf := make([]byte, 64)
	n, err := d.d.ReadWithTimeout(buf, 2*time.Second)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func (d *winDevice) WriteFeature(reportID byte, data []byte) error {
	buf := append([]byte{reportID}, data...)
	_, err := d.d.SendFeatureReport(buf)
	return err
}

func (d *winDevice) ReadFeature(reportID byte) ([]byte, error) {
	buf := make([]byte, 64)
	buf[0] = reportID
	n, err := d.d.GetFeatureReport(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// ReportLens is not exposed by hidapi; callers fall back to the frame
// dialect's fixed lengths.
func (d *winDevice) ReportLens() (int, int, int) { return 0, 0, 0 }

func (d *winDevice) Close() error { return d.d.Close() }
