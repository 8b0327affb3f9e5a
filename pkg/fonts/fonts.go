// Package fonts provides the embedded font used to measure and draw text.
//
// The Go Regular TrueType font is compiled into the binary (via
// golang.org/x/image/font/gofont), so text extents computed during layout
// match the glyphs the PDF, SVG and PNG backends draw, independent of the
// fonts installed on the host.
package fonts

import (
	"encoding/base64"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
)

// FontFamily is the family name the backends register the font under.
const FontFamily = "Go"

// FallbackFontFamily lists CSS fallbacks for SVG viewers that ignore
// embedded fonts.
const FallbackFontFamily = `'Go', 'Helvetica', 'Arial', sans-serif`

// TTF returns the TrueType font data.
func TTF() []byte {
	return goregular.TTF
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// TTFBase64 returns the TrueType font data as a base64 string.
// The result is cached after first computation.
func TTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(goregular.TTF)
	})
	return ttfBase64
}

var (
	parsed     *opentype.Font
	parsedErr  error
	parsedOnce sync.Once
)

func openType() (*opentype.Font, error) {
	parsedOnce.Do(func() {
		parsed, parsedErr = opentype.Parse(goregular.TTF)
	})
	return parsed, parsedErr
}

// Measurer reports ink extents of text set in the embedded font at a fixed
// size, one page unit per point. It is safe for concurrent use.
type Measurer struct {
	mu   sync.Mutex
	face font.Face
	size float64
}

// NewMeasurer returns a measurer for the given font size in points.
func NewMeasurer(size float64) (*Measurer, error) {
	f, err := openType()
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded font")
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "create font face")
	}
	return &Measurer{face: face, size: size}, nil
}

// Size returns the font size in points.
func (m *Measurer) Size() float64 { return m.size }

// Extents implements layout.Measurer.
func (m *Measurer) Extents(text string) layout.Extents {
	m.mu.Lock()
	bounds, advance := font.BoundString(m.face, text)
	m.mu.Unlock()

	return layout.Extents{
		XBearing: toFloat(bounds.Min.X),
		YBearing: toFloat(bounds.Min.Y),
		Width:    toFloat(bounds.Max.X - bounds.Min.X),
		Height:   toFloat(bounds.Max.Y - bounds.Min.Y),
		XAdvance: toFloat(advance),
	}
}

var _ layout.Measurer = (*Measurer)(nil)

// TrueTypeFace returns a freetype face of the embedded font for raster
// backends. dpi scales points to pixels.
func TrueTypeFace(size, dpi float64) (font.Face, error) {
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "parse embedded font")
	}
	return truetype.NewFace(f, &truetype.Options{
		Size:    size,
		DPI:     dpi,
		Hinting: font.HintingNone,
	}), nil
}

func toFloat(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
