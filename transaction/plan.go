package transaction

import (
	"fmt"

	"github.com/openperiph/venus/binding"
	"github.com/openperiph/venus/flashmap"
	"github.com/openperiph/venus/macro"
	"github.com/openperiph/venus/protocol"
	"github.com/openperiph/venus/staging"
)

// writeStep is one acknowledged flash write: up to WriteChunkLen bytes
// at a single address, never crossing a page boundary.
type writeStep struct {
	addr flashmap.Address
	data []byte
}

// planEntry is the ordered write list for one staged target.
type planEntry struct {
	target staging.Target
	steps  []writeStep
}

// buildPlan encodes every staged change into flash writes. Any encoding
// error aborts the whole plan here, before the device is touched. The
// snapshot order (macros first) is preserved.
func buildPlan(snap []staging.Staged, codec *macro.Codec) ([]planEntry, error) {
	plan := make([]planEntry, 0, len(snap))
	for _, s := range snap {
		steps, err := encodeTarget(s, codec)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", s.Target, err)
		}
		plan = append(plan, planEntry{target: s.Target, steps: steps})
	}
	return plan, nil
}

func encodeTarget(s staging.Staged, codec *macro.Codec) ([]writeStep, error) {
	t := s.Target
	switch t.Kind {
	case staging.TargetButton:
		return encodeButton(t, s.Change.Binding)
	case staging.TargetMacroSlot:
		return encodeMacro(t, s.Change.Macro, codec)
	case staging.TargetGlobal:
		return encodeGlobal(t, s.Change.Data)
	}
	return nil, fmt.Errorf("unknown target kind %d", t.Kind)
}

func encodeButton(t staging.Target, b binding.Binding) ([]writeStep, error) {
	if b == nil {
		return nil, fmt.Errorf("no binding staged")
	}
	enc, err := binding.Encode(b)
	if err != nil {
		return nil, err
	}
	mouse, err := flashmap.ButtonMouseAddress(t.Profile, t.Index)
	if err != nil {
		return nil, err
	}
	steps := []writeStep{{addr: mouse, data: enc.MouseRegion[:]}}
	if len(enc.Extended) > 0 {
		ext, err := flashmap.ButtonExtendedAddress(t.Profile, t.Index)
		if err != nil {
			return nil, err
		}
		steps = append(steps, chunkWrites(ext, enc.Extended)...)
	}
	return steps, nil
}

func encodeMacro(t staging.Target, m *macro.Macro, codec *macro.Codec) ([]writeStep, error) {
	if m == nil {
		return nil, fmt.Errorf("no macro staged")
	}
	base, capacity, err := flashmap.MacroSlotRange(t.Index)
	if err != nil {
		return nil, err
	}
	buf, err := codec.Encode(*m)
	if err != nil {
		return nil, err
	}
	if len(buf) > capacity {
		return nil, fmt.Errorf("%w: %d bytes into slot of %d", macro.ErrMacroTooLarge, len(buf), capacity)
	}
	return chunkWrites(base, buf), nil
}

func encodeGlobal(t staging.Target, data []byte) ([]writeStep, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("no data staged")
	}
	var addr flashmap.Address
	switch t.Setting {
	case staging.SettingLED:
		addr = flashmap.LEDAddress(t.Profile)
	case staging.SettingPolling:
		addr = flashmap.PollingAddress(t.Profile)
	case staging.SettingDPIStage:
		a, err := flashmap.DPIStageAddress(t.Profile, t.Index)
		if err != nil {
			return nil, err
		}
		addr = a
	default:
		return nil, fmt.Errorf("unknown setting %d", t.Setting)
	}
	return chunkWrites(addr, data), nil
}

// chunkWrites splits data into write steps of at most WriteChunkLen
// bytes each, clipping at page boundaries. Macro slots span pages, so
// a chunk that would straddle one is cut short and the remainder
// continues on the next page at offset zero.
func chunkWrites(base flashmap.Address, data []byte) []writeStep {
	var steps []writeStep
	addr := base
	for len(data) > 0 {
		n := protocol.WriteChunkLen
		if n > len(data) {
			n = len(data)
		}
		if room := 256 - int(addr.Offset); n > room {
			n = room
		}
		steps = append(steps, writeStep{addr: addr, data: data[:n]})
		data = data[n:]
		addr = flashmap.Advance(addr, n)
	}
	return steps
}
