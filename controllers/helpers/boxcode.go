package helpers

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// MaxBoxOrdinal is the box ordinal ceiling.
const MaxBoxOrdinal = 999999

// Accepted spellings: bare digits, or B / B- / B_ / "B " followed by
// 1-6 digits, case-insensitive.
var boxCodeRe = regexp.MustCompile(`^(?i)(?:B[-_ ]?)?(\d{1,6})$`)

// DecodeBoxCode returns the ordinal for any accepted spelling of a box
// code, or 0 when the input is not a box code.
func DecodeBoxCode(input string) int {
	m := boxCodeRe.FindStringSubmatch(strings.TrimSpace(input))
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n < 1 || n > MaxBoxOrdinal {
		return 0
	}
	return n
}

// EncodeBoxCode formats an ordinal as the canonical code, zero-padded to
// at least 4 digits (B-0001). Ordinals above 9999 widen the field.
func EncodeBoxCode(ordinal int) string {
	return fmt.Sprintf("B-%04d", ordinal)
}
