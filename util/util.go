package util

import (
	"fmt"
	"strconv"
	"strings"
)

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsHexDigit(b byte) bool {
	return IsNumber(b) || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

// IsHexByte reports whether cell is exactly two hex digits, which is the form every
// resolved image cell takes.
func IsHexByte(cell string) bool {
	return len(cell) == 2 && IsHexDigit(cell[0]) && IsHexDigit(cell[1])
}

// FormatByte formats value as two upper case hex digits. Values outside a byte wrap around,
// so -3 becomes FD. Branch offsets rely on that.
func FormatByte(value int) string {
	return fmt.Sprintf("%02X", value&0xFF)
}

// ParseByte parses a two digit hex cell, a leading '$' or '#$' is accepted.
func ParseByte(cell string) (int, error) {
	cell = strings.TrimPrefix(strings.TrimPrefix(cell, "#"), "$")
	if len(cell) == 0 || len(cell) > 2 {
		return 0, fmt.Errorf("%q is not a byte", cell)
	}
	value, err := strconv.ParseUint(cell, 16, 8)
	if err != nil {
		return 0, fmt.Errorf("%q is not a byte", cell)
	}
	return int(value), nil
}

// HexOfChar returns the ascii code of b as a hex cell.
func HexOfChar(b byte) string {
	return FormatByte(int(b))
}
