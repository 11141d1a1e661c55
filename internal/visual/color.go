package visual

import (
	"fmt"
	"image/color"
	"strings"
)

var namedColors = map[string]color.RGBA{
	"blue":   {R: 31, G: 119, B: 180, A: 255},
	"green":  {R: 44, G: 160, B: 44, A: 255},
	"purple": {R: 148, G: 103, B: 189, A: 255},
	"red":    {R: 214, G: 39, B: 40, A: 255},
	"orange": {R: 255, G: 127, B: 14, A: 255},
	"gray":   {R: 127, G: 127, B: 127, A: 255},
	"black":  {A: 255},
}

// parseColor resolves a color name or #rrggbb. Empty means blue.
func parseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return namedColors["blue"], nil
	}
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if strings.HasPrefix(s, "#") && len(s) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(s, "#%02x%02x%02x", &r, &g, &b); err == nil {
			return color.RGBA{R: r, G: g, B: b, A: 255}, nil
		}
	}
	return color.RGBA{}, fmt.Errorf("%w: %q", ErrUnknownColor, s)
}

func withAlpha(c color.RGBA, a uint8) color.RGBA {
	// color.RGBA is alpha-premultiplied.
	return color.RGBA{
		R: uint8(uint16(c.R) * uint16(a) / 255),
		G: uint8(uint16(c.G) * uint16(a) / 255),
		B: uint8(uint16(c.B) * uint16(a) / 255),
		A: a,
	}
}
