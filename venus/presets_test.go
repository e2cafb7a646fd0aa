package venus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPollingRecords(t *testing.T) {
	for _, tc := range []struct {
		rate int
		code byte
	}{
		{1000, 0x00},
		{500, 0x01},
		{250, 0x02},
		{125, 0x04},
	} {
		rec, err := PollingRecord(tc.rate)
		require.NoError(t, err)
		assert.Equal(t, []byte{tc.code, 0x55 - tc.code}, rec, "rate %d", tc.rate)
	}

	_, err := PollingRecord(2000)
	assert.Error(t, err)
}

func TestDPIRecord(t *testing.T) {
	rec, err := DPIRecord(1600)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x12, 0x12, 0x00, 0x31}, rec)

	rec, err = DPIRecord(14100)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xA8, 0xA8, 0x00, 0x05}, rec)

	_, err = DPIRecord(800)
	assert.Error(t, err)
}

func TestDPIPresetsSorted(t *testing.T) {
	presets := DPIPresets()
	require.Len(t, presets, 5)
	for i := 1; i < len(presets); i++ {
		assert.Greater(t, presets[i].DPI, presets[i-1].DPI)
	}
}

func TestLEDRecord(t *testing.T) {
	// Full-brightness steady red, as seen in captures.
	rec, err := LEDRecord(0xFF, 0x00, 0x00, LEDSteady, 100)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xFF, 0x00, 0x00, 0x56, 0x01, 0x54, 0xFF, 0x56}, rec)

	// 20% brightness: b1 = 60, b2 complements to 0x55.
	rec, err = LEDRecord(0x00, 0xFF, 0x00, LEDNeon, 20)
	require.NoError(t, err)
	assert.Equal(t, byte(0x3C), rec[6])
	assert.Equal(t, byte(0x55-0x3C), rec[7])
	assert.Equal(t, byte(0x57), rec[3])

	// Zero brightness floors at 1, it never emits a zero byte.
	rec, err = LEDRecord(1, 2, 3, LEDSteady, 0)
	require.NoError(t, err)
	assert.Equal(t, byte(0x01), rec[6])

	_, err = LEDRecord(0, 0, 0, LEDMode(0x99), 50)
	assert.Error(t, err)
	_, err = LEDRecord(0, 0, 0, LEDSteady, 101)
	assert.Error(t, err)
}

func TestBrightnessComplementLaw(t *testing.T) {
	for pct := 0; pct <= 100; pct += 5 {
		rec, err := LEDRecord(0, 0, 0, LEDSteady, pct)
		require.NoError(t, err)
		assert.Equal(t, byte(0x55), rec[6]+rec[7], "brightness %d%%", pct)
	}
}

func TestButtonCatalog(t *testing.T) {
	require.Len(t, Buttons, 16)
	for i, b := range Buttons {
		assert.Equal(t, i, b.Index)
	}

	right, err := ButtonByLabel("right mouse button")
	require.NoError(t, err)
	assert.Equal(t, 6, right.Index)

	left, err := ButtonByLabel("Left Mouse Button")
	require.NoError(t, err)
	assert.Equal(t, 7, left.Index)

	fire, err := ButtonByLabel("Fire Key")
	require.NoError(t, err)
	assert.Equal(t, 11, fire.Index)

	s7, err := SideButton(7)
	require.NoError(t, err)
	assert.Equal(t, 8, s7.Index)

	_, err = SideButton(13)
	assert.Error(t, err)
	_, err = ButtonByLabel("DPI Button")
	assert.Error(t, err)
}

func TestVariantLookup(t *testing.T) {
	v, ok := VariantForProduct(ProductIDWired)
	require.True(t, ok)
	assert.True(t, v.FlashRead)

	v, ok = VariantForProduct(ProductIDReceiver)
	require.True(t, ok)
	assert.False(t, v.FlashRead)

	_, ok = VariantForProduct(0x1234)
	assert.False(t, ok)
}
