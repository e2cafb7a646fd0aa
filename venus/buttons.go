package venus

import (
	"fmt"
	"strings"
)

// Button is one physical control mapped to its flash slot. The flash
// order does not follow the printed button numbers: the main buttons
// are interleaved with the side grid, as recovered from memory dumps.
type Button struct {
	// Index is the flash slot (0..15) used with the layout package.
	Index int

	// Label is the physical name printed in the vendor software.
	Label string
}

// Buttons lists all sixteen controls in flash slot order.
var Buttons = []Button{
	{0, "Side Button 1"},
	{1, "Side Button 2"},
	{2, "Side Button 3"},
	{3, "Side Button 4"},
	{4, "Side Button 5"},
	{5, "Side Button 6"},
	{6, "Right Mouse Button"},
	{7, "Left Mouse Button"},
	{8, "Side Button 7"},
	{9, "Side Button 8"},
	{10, "Middle Mouse Button"},
	{11, "Fire Key"},
	{12, "Side Button 9"},
	{13, "Side Button 10"},
	{14, "Side Button 11"},
	{15, "Side Button 12"},
}

// ButtonByLabel finds a button by its physical name, case-insensitively.
func ButtonByLabel(label string) (Button, error) {
	for _, b := range Buttons {
		if strings.EqualFold(b.Label, label) {
			return b, nil
		}
	}
	return Button{}, fmt.Errorf("unknown button %q", label)
}

// SideButton returns the flash slot for side grid button n (1..12).
func SideButton(n int) (Button, error) {
	if n < 1 || n > 12 {
		return Button{}, fmt.Errorf("side button %d out of range 1..12", n)
	}
	return ButtonByLabel(fmt.Sprintf("Side Button %d", n))
}
