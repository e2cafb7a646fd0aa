package venus

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openperiph/venus/binding"
)

func TestKeyUsage(t *testing.T) {
	for name, want := range map[string]byte{
		"a":      0x04,
		"Z":      0x1D,
		"1":      0x1E,
		"9":      0x26,
		"0":      0x27,
		"f1":     0x3A,
		"F12":    0x45,
		"Enter":  0x28,
		"space":  0x2C,
		"PageUp": 0x4B,
	} {
		got, err := KeyUsage(name)
		require.NoError(t, err, name)
		assert.Equal(t, want, got, name)
	}

	for _, bad := range []string{"", "f13", "f0", "f1x", "hyper", "aa"} {
		_, err := KeyUsage(bad)
		assert.Error(t, err, bad)
	}
}

func TestMediaUsage(t *testing.T) {
	code, err := MediaUsage("PlayPause")
	require.NoError(t, err)
	assert.Equal(t, byte(0xCD), code)

	_, err = MediaUsage("eject")
	assert.Error(t, err)
}

func TestParseKeyCombo(t *testing.T) {
	k, err := ParseKeyCombo("ctrl+shift+a")
	require.NoError(t, err)
	assert.Equal(t, binding.KeyboardKey{Scancode: 0x04, Modifiers: binding.ModCtrl | binding.ModShift}, k)

	k, err = ParseKeyCombo("F5")
	require.NoError(t, err)
	assert.Equal(t, binding.KeyboardKey{Scancode: 0x3E}, k)

	_, err = ParseKeyCombo("hyper+a")
	assert.Error(t, err)
	_, err = ParseKeyCombo("ctrl+")
	assert.Error(t, err)
}
