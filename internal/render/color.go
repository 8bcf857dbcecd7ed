// Package render builds the trajectory overlay and composites it onto a
// provider background map.
package render

import (
	"encoding/hex"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strings"
)

// ErrInvalidColor is returned for anything other than 6 or 8 hex digits
var ErrInvalidColor = errors.New("invalid color")

// Color is a parsed stroke color
type Color struct {
	R, G, B uint8
	Opacity float64 // alpha/255 rounded to 3 decimals
	Hex6    string  // "#rrggbb"
	Raw     string  // normalised input, no prefix, lower case
}

// ParseColor accepts rrggbb or rrggbbaa with an optional 0x or # prefix,
// case-insensitive
func ParseColor(s string) (Color, error) {
	raw := strings.ToLower(strings.TrimSpace(s))
	raw = strings.TrimPrefix(raw, "0x")
	raw = strings.TrimPrefix(raw, "#")
	if len(raw) != 6 && len(raw) != 8 {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	b, err := hex.DecodeString(raw)
	if err != nil {
		return Color{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}

	c := Color{R: b[0], G: b[1], B: b[2], Opacity: 1, Hex6: "#" + raw[:6], Raw: raw}
	if len(b) == 4 {
		c.Opacity = math.Floor(float64(b[3])/255*1000+0.5) / 1000
	}
	return c, nil
}

// NRGBA returns the color with its opacity applied as alpha
func (c Color) NRGBA() color.NRGBA {
	return color.NRGBA{R: c.R, G: c.G, B: c.B, A: uint8(math.Floor(c.Opacity*255 + 0.5))}
}
