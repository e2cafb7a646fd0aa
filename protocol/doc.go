// Package protocol implements the wire framing for the Venus vendor HID
// configuration channel.
//
// Every exchange with the firmware is a fixed-length frame:
//
//	[REPORT_ID][CMD][PAYLOAD...][CHECKSUM]
//
// The payload region is zero padded to the frame's fixed width and the
// trailing checksum byte is (0x55 - sum(all preceding bytes)) mod 256.
// Two frame widths exist in the field (17 and 24 bytes) and two report
// IDs (0x08 via feature reports, 0x09 via output reports); which pair a
// device expects is a property of the deployment, so it is selected by a
// FrameConfig rather than sniffed from traffic.
//
// This package is pure framing. It knows command numbers and the flash
// read/write payload shapes, but nothing about what lives at any flash
// address; see the flashmap, binding and macro packages for that.
package protocol
