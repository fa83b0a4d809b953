package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// Fit truncates or right-pads s to exactly width terminal columns.
func Fit(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.FillRight(runewidth.Truncate(s, width, ""), width)
}

// PadLeft right-aligns s in width columns. Longer strings are returned as is.
func PadLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// PadRight left-aligns s in width columns. Longer strings are returned as is.
func PadRight(s string, width int) string {
	return runewidth.FillRight(s, width)
}

// PadCenter centers s in width columns; the extra column of an odd gap goes
// to the left.
func PadCenter(s string, width int) string {
	w := runewidth.StringWidth(s)
	if w >= width {
		return s
	}
	gap := width - w
	left := gap - gap/2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", gap/2)
}

// Width is the number of terminal columns s occupies.
func Width(s string) int {
	return runewidth.StringWidth(s)
}
