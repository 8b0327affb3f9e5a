package render

import (
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
)

// Surface is a page that accepts drawing commands. Coordinates are in page
// units with the origin at the top-left corner and Y growing downwards.
type Surface interface {
	// Rect paints r with the stroke and/or fill in style.
	Rect(r layout.Rect, style layout.Style)
	// Text draws s with its baseline origin at p.
	Text(s string, p layout.Point, c layout.Color)
	// Close finalizes the page and returns the encoded output.
	Close() ([]byte, error)
}

// Draw replays the layout's commands onto s and closes it.
func Draw(l layout.Layout, s Surface) ([]byte, error) {
	for i, c := range l.Commands() {
		switch c.Op {
		case layout.OpRect:
			s.Rect(c.Rect, c.Style)
		case layout.OpText:
			s.Text(c.Text, c.At, c.Color)
		default:
			return nil, errors.New(errors.ErrCodeInternal, "command %d: unknown op %v", i, c.Op)
		}
	}
	return s.Close()
}

// minPageSide is the smallest page dimension a backend is asked to create.
// A timeline without nodes has zero height, which PDF and PNG cannot
// represent; their pages are 1 unit high while the layout keeps height 0.
const minPageSide = 1.0

func pageSize(l layout.Layout) (w, h float64) {
	return max(l.Width, minPageSide), max(l.Height, minPageSide)
}

// normalized returns r with a non-negative width and height, covering the
// same area. Inverted jobs produce negative widths.
func normalized(r layout.Rect) layout.Rect {
	if r.W < 0 {
		r.X, r.W = r.X+r.W, -r.W
	}
	if r.H < 0 {
		r.Y, r.H = r.Y+r.H, -r.H
	}
	return r
}

func backendError(format string, err error) error {
	return errors.Wrap(errors.ErrCodeInternal, err, "render %s", format)
}
