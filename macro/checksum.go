package macro

// TerminatorChecksum computes the checksum byte of a macro slot
// terminator from the raw event bytes and the event count.
//
// The reverse-engineering record holds two candidate formulas and the
// live devices accept writes under both without observable playback
// difference, so the formula is a calibration point, not a fact: pick
// the strategy that matches your firmware revision's read-backs.
type TerminatorChecksum interface {
	Sum(events []byte, count int) byte
}

// BaseComplement is the formula recovered from working captures:
// base - sum(events), with base 0x68.
type BaseComplement struct {
	Base byte
}

func (b BaseComplement) Sum(events []byte, _ int) byte {
	var sum byte
	for _, by := range events {
		sum += by
	}
	return b.Base - sum
}

// CountAdjusted is the alternative reading of the dump terminators:
// the complement of the event sum, shifted by the event count and a
// fixed correction constant.
type CountAdjusted struct {
	Correction byte
}

func (c CountAdjusted) Sum(events []byte, count int) byte {
	var sum byte
	for _, by := range events {
		sum += by
	}
	return ^sum - byte(count) + c.Correction
}

// DefaultTerminator is the strategy used when a Codec has none set.
var DefaultTerminator TerminatorChecksum = BaseComplement{Base: 0x68}
