// Package venus carries the device-specific knowledge for the Venus
// mouse family: USB identities, frame dialect per variant, the physical
// button catalog, and the capture-derived preset tables for DPI,
// polling and lighting. The protocol, layout and transaction packages
// are device-shape-agnostic; this is where the shapes live.
package venus

import (
	"fmt"
	"strings"

	"github.com/openperiph/venus/internal/hid"
	"github.com/openperiph/venus/protocol"
)

// USB identity of the family. Both the wired mouse and the wireless
// receiver expose the configuration channel on interface 1.
const (
	VendorID          = 0x25A7
	ProductIDWired    = 0xFA07
	ProductIDReceiver = 0xFA08
	ConfigInterface   = 1
)

// Variant describes one hardware front-end for the configuration
// channel.
type Variant struct {
	Name      string
	ProductID uint16

	// Frame is the dialect the variant speaks.
	Frame protocol.FrameConfig

	// FlashRead reports whether the variant answers flash read
	// requests. The wireless receiver does not, so verification and
	// dumps are unavailable through it.
	FlashRead bool
}

var (
	// Wired is the mouse on its own cable.
	Wired = Variant{
		Name:      "wired",
		ProductID: ProductIDWired,
		Frame:     protocol.Output17,
		FlashRead: true,
	}

	// Receiver is the wireless dongle.
	Receiver = Variant{
		Name:      "receiver",
		ProductID: ProductIDReceiver,
		Frame:     protocol.Output17,
		FlashRead: false,
	}
)

// Variants lists the supported hardware front-ends.
var Variants = []Variant{Wired, Receiver}

// VariantForProduct resolves a product ID to its variant.
func VariantForProduct(pid uint16) (Variant, bool) {
	for _, v := range Variants {
		if v.ProductID == pid {
			return v, true
		}
	}
	return Variant{}, false
}

// Discover enumerates the HID manager for configuration interfaces of
// known variants. Receivers are included; callers that need flash
// reads filter on Variant.FlashRead.
func Discover(mgr hid.Manager) ([]hid.Info, error) {
	infos, err := mgr.List()
	if err != nil {
		return nil, err
	}
	var out []hid.Info
	for _, info := range infos {
		if info.VendorID != VendorID {
			continue
		}
		if _, ok := VariantForProduct(info.ProductID); !ok {
			continue
		}
		if !configInterface(info) {
			continue
		}
		out = append(out, info)
	}
	return out, nil
}

// configInterface picks the vendor configuration interface out of the
// device's HID interfaces. Backends that report neither usage pages
// nor interface numbers match everything; the firmware ignores
// configuration frames on the input interfaces, so a wrong pick shows
// up as a handshake timeout rather than corruption.
func configInterface(info hid.Info) bool {
	if info.Interface >= 0 {
		return info.Interface == ConfigInterface
	}
	if info.UsagePage != 0 {
		return info.VendorDefined()
	}
	return true
}

// Open opens the first discovered configuration interface and returns
// it with its variant.
func Open(mgr hid.Manager) (hid.Device, Variant, error) {
	infos, err := Discover(mgr)
	if err != nil {
		return nil, Variant{}, err
	}
	if len(infos) == 0 {
		return nil, Variant{}, fmt.Errorf("no Venus device found (VID 0x%04X)", VendorID)
	}
	info := infos[0]
	// Prefer the wired mouse when both it and its receiver are
	// plugged in.
	for _, cand := range infos {
		if cand.ProductID == ProductIDWired && !strings.Contains(cand.Product, "Receiver") {
			info = cand
			break
		}
	}
	v, _ := VariantForProduct(info.ProductID)
	dev, err := mgr.Open(info)
	if err != nil {
		return nil, Variant{}, err
	}
	return dev, v, nil
}
