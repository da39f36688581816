package coursedoc

import (
	"encoding/json"
	"image/color"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an RGB color with 8 bits per channel.
type Color struct {
	R, G, B uint8
}

// RGB creates a color from its channels.
func RGB(r, g, b uint8) Color {
	return Color{r, g, b}
}

// RGBA converts to an opaque color.RGBA.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 255}
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}.Hex()
}

// MarshalJSON writes the color as [r, g, b].
func (c Color) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]int{int(c.R), int(c.G), int(c.B)})
}

// UnmarshalJSON reads a color from [r, g, b] with channels in [0, 255].
func (c *Color) UnmarshalJSON(data []byte) error {
	var v []int
	err := json.Unmarshal(data, &v)
	if err != nil {
		return NewValidationError("color must be an array of three integers: %v", err)
	}
	if len(v) != 3 {
		return NewValidationError("color must have three channels, found %d", len(v))
	}
	for _, ch := range v {
		if ch < 0 || ch > 255 {
			return NewValidationError("color channel %d out of range [0, 255]", ch)
		}
	}
	*c = Color{uint8(v[0]), uint8(v[1]), uint8(v[2])}
	return nil
}

// Palette holds the named title colors offered to users.
var Palette = map[string]Color{
	"blue":   {0, 102, 204},
	"red":    {204, 51, 51},
	"green":  {51, 153, 51},
	"violet": {102, 51, 153},
	"orange": {255, 128, 0},
	"black":  {0, 0, 0},
}

// ParseColor reads a color from a palette name or a #rrggbb hex string.
func ParseColor(s string) (Color, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if c, ok := Palette[s]; ok {
		return c, nil
	}
	if !strings.HasPrefix(s, "#") {
		s = "#" + s
	}
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, NewValidationError("invalid color %q", s)
	}
	r, g, b := cf.RGB255()
	return Color{r, g, b}, nil
}
