package theme

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/garyjia/invoice-layout/internal/surface"
)

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ParseHex parses #RGB or #RRGGBB (the leading # is optional).
func ParseHex(s string) (surface.Color, bool) {
	s = strings.TrimSpace(s)
	m := hexColorRe.FindStringSubmatch(s)
	if m == nil {
		return surface.Color{}, false
	}
	digits := m[1]
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return surface.Color{}, false
	}
	return surface.Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true
}

// NormalizeHex returns s as upper-case #RRGGBB, or false when s is not a color.
func NormalizeHex(s string) (string, bool) {
	c, ok := ParseHex(s)
	if !ok {
		return "", false
	}
	return c.Hex(), true
}
