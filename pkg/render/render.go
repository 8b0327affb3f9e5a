package render

import (
	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/layout"
)

// Format constants for output formats.
const (
	FormatPDF  = "pdf"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatJSON = "json"
)

// DefaultFormat is the format used when none is requested.
const DefaultFormat = FormatPDF

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPDF:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatJSON: true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatPDF:  "application/pdf",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatJSON: "application/json",
}

// Option configures rendering.
type Option func(*options)

type options struct {
	pngScale float64
}

// WithPNGScale sets the PNG scale factor (default 2.0 for 2x resolution).
func WithPNGScale(s float64) Option {
	return func(o *options) { o.pngScale = s }
}

// NewSurface creates an empty surface for format sized to l.
func NewSurface(l layout.Layout, format string, opts ...Option) (Surface, error) {
	o := options{pngScale: DefaultPNGScale}
	for _, opt := range opts {
		opt(&o)
	}

	switch format {
	case FormatPDF:
		return NewPDFSurface(l), nil
	case FormatSVG:
		return NewSVGSurface(l), nil
	case FormatPNG:
		return NewPNGSurface(l, o.pngScale)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported output format: %s", format)
}

// Render encodes l in the requested format.
func Render(l layout.Layout, format string, opts ...Option) ([]byte, error) {
	if format == FormatJSON {
		data, err := layout.MarshalLayout(l)
		if err != nil {
			return nil, backendError(format, err)
		}
		return data, nil
	}

	s, err := NewSurface(l, format, opts...)
	if err != nil {
		return nil, err
	}
	return Draw(l, s)
}
