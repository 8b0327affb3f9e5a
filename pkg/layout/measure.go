package layout

// Extents are the ink extents of a run of text, in page units, following
// the cairo convention: the bearings are offsets from the drawing origin on
// the baseline to the top-left corner of the ink box, with Y growing
// downwards, so YBearing is negative for text above the baseline.
type Extents struct {
	XBearing float64 `json:"x_bearing"`
	YBearing float64 `json:"y_bearing"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height"`
	XAdvance float64 `json:"x_advance"`
	YAdvance float64 `json:"y_advance"`
}

// Measurer reports text extents under the active font. Implementations must
// be deterministic: the same text always yields the same extents.
type Measurer interface {
	Extents(text string) Extents
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(text string) Extents

// Extents calls f(text).
func (f MeasurerFunc) Extents(text string) Extents { return f(text) }
