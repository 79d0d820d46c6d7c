package routing

import (
	"fmt"
	"strings"
	"unicode"
)

const DefaultHotlineNumber = "+1-800-VOICE-PILOT"

// FormatPhoneNumber renders a number for display.
//
// Vanity numbers drop the leading "+" (+1-800-VOICE-PILOT -> 1-800-VOICE-PILOT).
// Numbers with exactly ten digits render as (XXX) XXX-XXXX.
// Anything else is returned unchanged.
func FormatPhoneNumber(number string) string {
	hasLetter := strings.IndexFunc(number, unicode.IsLetter) >= 0
	if hasLetter {
		return strings.TrimPrefix(number, "+")
	}

	var digits strings.Builder
	for _, r := range number {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return number
	}
	return fmt.Sprintf("(%s) %s-%s", d[:3], d[3:6], d[6:])
}

// FormatDuration renders whole seconds as m:ss.
func FormatDuration(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%d:%02d", seconds/60, seconds%60)
}
