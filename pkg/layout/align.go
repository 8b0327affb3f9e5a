package layout

import "github.com/matzehuels/timeline/pkg/errors"

// Align is the horizontal alignment of text inside a box.
type Align string

const (
	AlignLeft   Align = "left"
	AlignCenter Align = "center"
	AlignRight  Align = "right"
)

// ParseAlign parses an alignment keyword.
func ParseAlign(s string) (Align, error) {
	switch a := Align(s); a {
	case AlignLeft, AlignCenter, AlignRight:
		return a, nil
	}
	return "", errors.New(errors.ErrCodeInvalidInput, "invalid alignment: %s", s)
}

// PlaceText returns the drawing origin (baseline start) for text with the
// given ink extents inside box.
//
// The ink box is centered vertically. Horizontally, left alignment offsets
// the box edge by the bearing, center alignment centers the ink width and
// right alignment puts the ink's right edge on the box's right edge. Unknown
// alignments fall back to left.
func PlaceText(ext Extents, box Rect, align Align) Point {
	y := box.Y + box.H/2.0 - ext.Height/2.0 - ext.YBearing

	var x float64
	switch align {
	case AlignCenter:
		x = box.X + box.W/2.0 - ext.Width/2.0 - ext.XBearing
	case AlignRight:
		x = box.X + box.W - ext.Width - ext.XBearing
	default:
		x = box.X + ext.XBearing
	}
	return Point{X: x, Y: y}
}
