package venus

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/openperiph/venus/binding"
)

// keyUsage maps key names (lowercase) to HID keyboard page usages.
var keyUsage = map[string]byte{
	"enter": 0x28, "escape": 0x29, "backspace": 0x2A, "tab": 0x2B,
	"space": 0x2C, "minus": 0x2D, "equal": 0x2E,
	"leftbracket": 0x2F, "rightbracket": 0x30, "backslash": 0x31,
	"semicolon": 0x33, "quote": 0x34, "grave": 0x35,
	"comma": 0x36, "period": 0x37, "slash": 0x38,
	"printscreen": 0x46, "scrolllock": 0x47, "pause": 0x48,
	"insert": 0x49, "home": 0x4A, "pageup": 0x4B,
	"delete": 0x4C, "end": 0x4D, "pagedown": 0x4E,
	"right": 0x4F, "left": 0x50, "down": 0x51, "up": 0x52,
	"numlock": 0x53, "menu": 0x65,
}

// mediaUsage maps media key names to consumer page usages.
var mediaUsage = map[string]byte{
	"playpause":  0xCD,
	"nexttrack":  0xB5,
	"prevtrack":  0xB6,
	"mute":       0xE2,
	"volumeup":   0xE9,
	"volumedown": 0xEA,
}

// KeyUsage resolves a key name to its HID scancode. Single letters,
// digits, F1-F12 and the named specials are accepted.
func KeyUsage(name string) (byte, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	switch {
	case len(n) == 1 && n[0] >= 'a' && n[0] <= 'z':
		return 0x04 + n[0] - 'a', nil
	case n == "0":
		return 0x27, nil
	case len(n) == 1 && n[0] >= '1' && n[0] <= '9':
		return 0x1E + n[0] - '1', nil
	case len(n) >= 2 && n[0] == 'f' && n[1] >= '0' && n[1] <= '9':
		if fn, err := strconv.Atoi(n[1:]); err == nil && fn >= 1 && fn <= 12 {
			return byte(0x3A + fn - 1), nil
		}
	}
	if code, ok := keyUsage[n]; ok {
		return code, nil
	}
	return 0, fmt.Errorf("unknown key %q", name)
}

// MediaUsage resolves a media key name to its consumer page usage.
func MediaUsage(name string) (byte, error) {
	code, ok := mediaUsage[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown media key %q", name)
	}
	return code, nil
}

// ParseKeyCombo turns a combo like "ctrl+shift+a" into a keyboard
// binding. Everything before the final segment must be a modifier.
func ParseKeyCombo(combo string) (binding.KeyboardKey, error) {
	parts := strings.Split(combo, "+")
	var mods binding.Modifier
	for _, part := range parts[:len(parts)-1] {
		switch strings.ToLower(strings.TrimSpace(part)) {
		case "ctrl", "control":
			mods |= binding.ModCtrl
		case "shift":
			mods |= binding.ModShift
		case "alt":
			mods |= binding.ModAlt
		case "win", "super", "meta":
			mods |= binding.ModWin
		default:
			return binding.KeyboardKey{}, fmt.Errorf("unknown modifier %q", part)
		}
	}
	code, err := KeyUsage(parts[len(parts)-1])
	if err != nil {
		return binding.KeyboardKey{}, err
	}
	return binding.KeyboardKey{Scancode: code, Modifiers: mods}, nil
}
