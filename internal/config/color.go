package config

import (
	"encoding/hex"
	"image/color"
	"strings"

	"golang.org/x/xerrors"
)

// ParseHexColor parses "#rrggbb" or "#rrggbbaa" (the leading '#' is optional).
// Alpha defaults to 0xff.
func ParseHexColor(s string) (color.NRGBA, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 && len(s) != 8 {
		return color.NRGBA{}, xerrors.Errorf("invalid color %q: want rrggbb or rrggbbaa", s)
	}

	b, err := hex.DecodeString(s)
	if err != nil {
		return color.NRGBA{}, xerrors.Errorf("invalid color %q: %w", s, err)
	}

	c := color.NRGBA{R: b[0], G: b[1], B: b[2], A: 0xff}
	if len(b) == 4 {
		c.A = b[3]
	}
	return c, nil
}
