package layout

import (
	"fmt"
	"strconv"
	"strings"
)

// Lighten shifts each RGB channel up by pct percent of the full range
// (pct·2.55 per channel, additive, clamped). Color math is per-channel,
// not perceptual; callers wanting HSL-uniform shades should configure
// colors directly.
func Lighten(hex string, pct float64) string {
	return shift(hex, pct*2.55)
}

// Darken shifts each RGB channel down by pct percent of the full range.
func Darken(hex string, pct float64) string {
	return shift(hex, -pct*2.55)
}

func shift(hex string, delta float64) string {
	r, g, b, ok := parseHex(hex)
	if !ok {
		return hex
	}
	return fmt.Sprintf("#%02x%02x%02x",
		clampChannel(float64(r)+delta),
		clampChannel(float64(g)+delta),
		clampChannel(float64(b)+delta))
}

func parseHex(hex string) (r, g, b int, ok bool) {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) != 6 {
		return 0, 0, 0, false
	}
	rv, err1 := strconv.ParseInt(s[0:2], 16, 0)
	gv, err2 := strconv.ParseInt(s[2:4], 16, 0)
	bv, err3 := strconv.ParseInt(s[4:6], 16, 0)
	if err1 != nil || err2 != nil || err3 != nil {
		return 0, 0, 0, false
	}
	return int(rv), int(gv), int(bv), true
}

func clampChannel(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return int(v)
}
