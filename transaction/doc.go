// Package transaction turns a batch of staged configuration changes
// into the device's handshake / write / verify / commit sequence, and
// reports exactly how far it got.
//
// The controller owns the ordering rules: macro buffers are flashed
// before the bindings that reference them, every write is acknowledged
// before the next one is sent, and the staging store only loses the
// targets that actually reached the device. A failed run is not rolled
// back on the device side; the firmware keeps whatever pages were
// written before the commit, and the report says which targets those
// were.
//
// Controllers talk to hardware through the small DeviceChannel
// interface so tests (and the dongle fallback transport) can substitute
// their own channel.
package transaction
