package protocol

// ChecksumBase is the firmware's additive checksum seed. The trailing
// byte of every frame satisfies sum(frame) mod 256 == ChecksumBase.
const ChecksumBase = 0x55

// Checksum computes the trailing checksum byte for a frame prefix
// (every byte of the frame except the checksum itself).
func Checksum(prefix []byte) byte {
	var sum byte
	for _, b := range prefix {
		sum += b
	}
	return ChecksumBase - sum
}
