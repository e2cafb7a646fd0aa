package macro

import "github.com/openperiph/venus/protocol"

// Fragment is one transport-sized piece of a slot buffer. Offset is
// relative to the start of the buffer.
type Fragment struct {
	Offset int
	Data   []byte
}

// Chunk splits a slot buffer into write-sized fragments with strictly
// increasing offsets. Concatenating the fragments in order reproduces
// the buffer exactly; each fragment fits one flash write frame.
func Chunk(buf []byte) []Fragment {
	if len(buf) == 0 {
		return nil
	}
	frags := make([]Fragment, 0, (len(buf)+protocol.WriteChunkLen-1)/protocol.WriteChunkLen)
	for off := 0; off < len(buf); off += protocol.WriteChunkLen {
		end := off + protocol.WriteChunkLen
		if end > len(buf) {
			end = len(buf)
		}
		frags = append(frags, Fragment{Offset: off, Data: buf[off:end]})
	}
	return frags
}
