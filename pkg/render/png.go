package render

import (
	"bytes"
	"image/color"
	"math"

	"github.com/fogleman/gg"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/fonts"
	"github.com/matzehuels/timeline/pkg/layout"
)

// DefaultPNGScale renders PNGs at twice the page size.
const DefaultPNGScale = 2.0

// Raster limits. A 60-byte document can describe a page millions of units
// wide, so the pixel size is checked before anything is allocated.
const (
	maxPNGSide   = 32768
	maxPNGPixels = 64 << 20
)

type pngSurface struct {
	dc        *gg.Context
	scale     float64
	lineWidth float64
	err       error
}

// NewPNGSurface creates a white raster page sized to the layout times
// scale. Pages beyond the raster limits are rejected with INVALID_INPUT.
func NewPNGSurface(l layout.Layout, scale float64) (Surface, error) {
	if scale <= 0 {
		scale = DefaultPNGScale
	}
	w, h := pageSize(l)
	pw, ph := math.Ceil(w*scale), math.Ceil(h*scale)
	if !(pw <= maxPNGSide && ph <= maxPNGSide && pw*ph <= maxPNGPixels) {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"png page of %.0f x %.0f pixels exceeds the raster limit (%d per side, %d total); lower --png-scale or render pdf/svg",
			pw, ph, maxPNGSide, maxPNGPixels)
	}
	dc := gg.NewContext(int(pw), int(ph))
	dc.SetColor(color.White)
	dc.Clear()
	dc.Scale(scale, scale)

	s := &pngSurface{dc: dc, scale: scale, lineWidth: l.LineWidth}
	// gg draws glyphs in device pixels, so the face is sized for the scale.
	face, err := fonts.TrueTypeFace(l.FontSize, 72*scale)
	if err != nil {
		s.err = err
		return s, nil
	}
	dc.SetFontFace(face)
	return s, nil
}

func (s *pngSurface) Rect(r layout.Rect, style layout.Style) {
	if style.Fill != nil {
		s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		s.dc.SetColor(rgba(*style.Fill))
		s.dc.Fill()
	}
	if style.Stroke != nil {
		s.dc.DrawRectangle(r.X, r.Y, r.W, r.H)
		s.dc.SetColor(rgba(*style.Stroke))
		s.dc.SetLineWidth(s.lineWidth * s.scale)
		s.dc.Stroke()
	}
}

func (s *pngSurface) Text(text string, p layout.Point, c layout.Color) {
	if text == "" || s.err != nil {
		return
	}
	s.dc.SetColor(rgba(c))
	s.dc.DrawString(text, p.X, p.Y)
}

func (s *pngSurface) Close() ([]byte, error) {
	if s.err != nil {
		return nil, backendError(FormatPNG, s.err)
	}
	var buf bytes.Buffer
	if err := s.dc.EncodePNG(&buf); err != nil {
		return nil, backendError(FormatPNG, err)
	}
	return buf.Bytes(), nil
}

func rgba(c layout.Color) color.RGBA {
	return color.RGBA{R: c.R, G: c.G, B: c.B, A: 0xff}
}
