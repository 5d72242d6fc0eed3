package utils

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// ParseByte parses a byte written in decimal, hex ("0x2c"), octal ("0o54") or binary ("0b101100").
func ParseByte(s string) (byte, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 0, 8)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid byte %q", s)
	}
	return byte(v), nil
}

// ParseBytes parses every element of ss with ParseByte.
func ParseBytes(ss []string) ([]byte, error) {
	out := make([]byte, 0, len(ss))
	for _, s := range ss {
		b, err := ParseByte(s)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, nil
}
