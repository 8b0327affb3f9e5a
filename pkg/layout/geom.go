package layout

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/matzehuels/timeline/pkg/errors"
)

// Point is a position on the page. Y grows downwards.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned box. W may be negative for jobs whose end precedes
// their start; backends draw it mirrored.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Right returns the x coordinate of the box's right edge.
func (r Rect) Right() float64 { return r.X + r.W }

// Color is an opaque RGB color.
type Color struct {
	R, G, B uint8
}

var (
	Black = Color{}
	White = Color{R: 0xff, G: 0xff, B: 0xff}
)

// String returns the color as "#rrggbb".
func (c Color) String() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// MarshalText encodes the color as "#rrggbb".
func (c Color) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText accepts "#rrggbb" or "#rgb".
func (c *Color) UnmarshalText(text []byte) error {
	parsed, err := ParseColor(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseColor parses a hex color in "#rrggbb" or "#rgb" form.
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return Color{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q (want #rrggbb)", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color{}, errors.New(errors.ErrCodeInvalidConfig, "invalid color %q (want #rrggbb)", s)
	}
	return Color{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, nil
}

// Style is the paint applied by a single rectangle command. A nil Stroke
// skips the outline; a nil Fill skips the interior.
type Style struct {
	Stroke *Color `json:"stroke,omitempty"`
	Fill   *Color `json:"fill,omitempty"`
}

// Stroked returns a style that outlines with c.
func Stroked(c Color) Style { return Style{Stroke: &c} }

// Filled returns a style that fills with c.
func Filled(c Color) Style { return Style{Fill: &c} }
