package venus

import (
	"fmt"
	"sort"
)

// DPIPreset pairs a resolution with the firmware's value/tweak record
// bytes. The pairs come from captures of the vendor software; the
// mapping is not linear, so arbitrary resolutions cannot be derived.
type DPIPreset struct {
	DPI   int
	Value byte
	Tweak byte
}

var dpiPresets = map[int]DPIPreset{
	1600:  {1600, 0x12, 0x31},
	2400:  {2400, 0x1B, 0x1F},
	4900:  {4900, 0x3A, 0xE1},
	8900:  {8900, 0x6A, 0x81},
	14100: {14100, 0xA8, 0x05},
}

// DPIPresets returns the known presets in ascending resolution order.
func DPIPresets() []DPIPreset {
	out := make([]DPIPreset, 0, len(dpiPresets))
	for _, p := range dpiPresets {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DPI < out[j].DPI })
	return out
}

// DPIRecord builds the 4-byte flash record for one DPI stage.
func DPIRecord(dpi int) ([]byte, error) {
	p, ok := dpiPresets[dpi]
	if !ok {
		return nil, fmt.Errorf("no preset for %d DPI", dpi)
	}
	return []byte{p.Value, p.Value, 0x00, p.Tweak}, nil
}

// pollingCodes maps rate in Hz to the firmware code, code =
// log2(1000/rate) except 125 Hz which captures show as 0x04.
var pollingCodes = map[int]byte{
	1000: 0x00,
	500:  0x01,
	250:  0x02,
	125:  0x04,
}

// PollingRates returns the supported rates in descending order.
func PollingRates() []int {
	out := make([]int, 0, len(pollingCodes))
	for rate := range pollingCodes {
		out = append(out, rate)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(out)))
	return out
}

// PollingRecord builds the 2-byte flash record for a polling rate: the
// code and its 0x55 complement.
func PollingRecord(rate int) ([]byte, error) {
	code, ok := pollingCodes[rate]
	if !ok {
		return nil, fmt.Errorf("unsupported polling rate %d Hz", rate)
	}
	return []byte{code, 0x55 - code}, nil
}

// LEDMode selects the lighting animation.
type LEDMode byte

const (
	LEDSteady LEDMode = 0x56
	LEDNeon   LEDMode = 0x57
)

// LEDRecord builds the 8-byte lighting record: color, mode and the
// brightness pair. Brightness is a percentage; the firmware wants
// 3 x percent (floor 1) and its 0x55 complement.
func LEDRecord(r, g, b byte, mode LEDMode, brightness int) ([]byte, error) {
	if mode != LEDSteady && mode != LEDNeon {
		return nil, fmt.Errorf("unknown LED mode 0x%02X", byte(mode))
	}
	if brightness < 0 || brightness > 100 {
		return nil, fmt.Errorf("brightness %d%% out of range", brightness)
	}
	b1 := brightness * 3
	if b1 < 1 {
		b1 = 1
	}
	if b1 > 255 {
		b1 = 255
	}
	b2 := byte(0x55 - byte(b1))
	return []byte{r, g, b, byte(mode), 0x01, 0x54, byte(b1), b2}, nil
}
