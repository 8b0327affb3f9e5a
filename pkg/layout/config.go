package layout

import (
	"fmt"

	"github.com/matzehuels/timeline/pkg/errors"
)

// LabelPolicy selects how the label column width is determined.
type LabelPolicy string

const (
	PolicyAutoFit LabelPolicy = "auto" // widest measured label
	PolicyFixed   LabelPolicy = "fixed"
)

// ParseLabelPolicy parses a policy name. The empty string selects the
// default auto-fit policy.
func ParseLabelPolicy(s string) (LabelPolicy, error) {
	switch LabelPolicy(s) {
	case "", PolicyAutoFit:
		return PolicyAutoFit, nil
	case PolicyFixed:
		return PolicyFixed, nil
	}
	return "", errors.New(errors.ErrCodeInvalidPolicy, "invalid label policy: %s (must be 'auto' or 'fixed')", s)
}

// Default layout metrics, in page units (points).
const (
	DefaultScale            = 0.00015 // page units per µs
	DefaultRowHeight        = 20.0
	DefaultRowSpacing       = 10.0
	DefaultLabelMargin      = 15.0
	DefaultHighlightPadding = 3.0
	DefaultFixedLabelWidth  = 150.0
	DefaultFontSize         = 10.0
	DefaultLineWidth        = 2.0
)

// Config holds the layout metrics and colors. It is passed by value and
// never modified by the layout, so concurrent renders cannot observe each
// other's settings.
type Config struct {
	Scale            float64     `json:"scale"`
	RowHeight        float64     `json:"row_height"`
	RowSpacing       float64     `json:"row_spacing"`
	LabelMargin      float64     `json:"label_margin"`
	HighlightPadding float64     `json:"highlight_padding"`
	FixedLabelWidth  float64     `json:"fixed_label_width"`
	LabelPolicy      LabelPolicy `json:"label_policy"`
	FontSize         float64     `json:"font_size"`
	LineWidth        float64     `json:"line_width"`
	Theme            Theme       `json:"theme"`
}

// Theme holds the colors used by the drawing commands.
type Theme struct {
	Text      Color `json:"text"`
	Highlight Color `json:"highlight"` // row background band
	JobStroke Color `json:"job_stroke"`
	JobFill   Color `json:"job_fill"`
}

// DefaultTheme returns black text and outlines, white job boxes and a light
// gray row band.
func DefaultTheme() Theme {
	return Theme{
		Text:      Black,
		Highlight: Color{R: 0xe6, G: 0xe6, B: 0xe6},
		JobStroke: Black,
		JobFill:   White,
	}
}

// Default returns the standard configuration.
func Default() Config {
	return Config{
		Scale:            DefaultScale,
		RowHeight:        DefaultRowHeight,
		RowSpacing:       DefaultRowSpacing,
		LabelMargin:      DefaultLabelMargin,
		HighlightPadding: DefaultHighlightPadding,
		FixedLabelWidth:  DefaultFixedLabelWidth,
		LabelPolicy:      PolicyAutoFit,
		FontSize:         DefaultFontSize,
		LineWidth:        DefaultLineWidth,
		Theme:            DefaultTheme(),
	}
}

// RowPitch is the vertical distance between the tops of consecutive rows.
func (c Config) RowPitch() float64 {
	return c.RowHeight + c.RowSpacing
}

// Validate reports the first invalid metric.
func (c Config) Validate() error {
	checks := []struct {
		name string
		v    float64
		ok   bool
	}{
		{"scale", c.Scale, c.Scale > 0},
		{"row_height", c.RowHeight, c.RowHeight > 0},
		{"row_spacing", c.RowSpacing, c.RowSpacing >= 0},
		{"label_margin", c.LabelMargin, c.LabelMargin >= 0},
		{"highlight_padding", c.HighlightPadding, c.HighlightPadding >= 0},
		{"font_size", c.FontSize, c.FontSize > 0},
		{"line_width", c.LineWidth, c.LineWidth > 0},
	}
	for _, ch := range checks {
		if !ch.ok {
			return errors.New(errors.ErrCodeInvalidConfig, "%s: invalid value %v", ch.name, ch.v)
		}
	}
	if _, err := ParseLabelPolicy(string(c.LabelPolicy)); err != nil {
		return err
	}
	if c.LabelPolicy == PolicyFixed && c.FixedLabelWidth < 2*c.LabelMargin {
		return errors.New(errors.ErrCodeInvalidConfig,
			"fixed_label_width: %v is narrower than both label margins (%v)", c.FixedLabelWidth, 2*c.LabelMargin)
	}
	return nil
}

// String returns a compact description used in cache keys and debug logs.
func (c Config) String() string {
	return fmt.Sprintf("scale=%g row=%g+%g margin=%g pad=%g fixed=%g policy=%s font=%g line=%g theme=%s/%s/%s/%s",
		c.Scale, c.RowHeight, c.RowSpacing, c.LabelMargin, c.HighlightPadding, c.FixedLabelWidth,
		c.LabelPolicy, c.FontSize, c.LineWidth,
		c.Theme.Text, c.Theme.Highlight, c.Theme.JobStroke, c.Theme.JobFill)
}
