package layout

import (
	"encoding/json"

	"github.com/matzehuels/timeline/pkg/timeline"
)

// Layout is the complete geometry of one chart page.
type Layout struct {
	Width      float64     `json:"width"`
	Height     float64     `json:"height"`
	LabelWidth float64     `json:"label_width"`
	Policy     LabelPolicy `json:"policy"`
	FontSize   float64     `json:"font_size"`
	LineWidth  float64     `json:"line_width"`
	Theme      Theme       `json:"theme"`
	Rows       []Row       `json:"rows"`
}

// Row is the geometry of one node.
type Row struct {
	Index      int      `json:"index"`
	Y          float64  `json:"y"`
	Label      Text     `json:"label"`
	Background *Rect    `json:"background,omitempty"`
	Jobs       []JobBox `json:"jobs"`
}

// JobBox is the geometry of one job.
type JobBox struct {
	Rect    Rect `json:"rect"`
	Caption Text `json:"caption"`
}

// Text is a run of text placed inside a box.
type Text struct {
	Text    string  `json:"text"`
	Box     Rect    `json:"box"`
	Align   Align   `json:"align"`
	Extents Extents `json:"extents"`
	At      Point   `json:"at"` // baseline origin
}

// LabelColumnWidth returns the width of the label column. Under the
// auto-fit policy it is the widest measured label plus both margins, which
// does not depend on the order of the nodes. The column is deliberately not
// the bare text width: labels are placed in the box
// [LabelMargin, width-2*LabelMargin], which would then be narrower than the
// widest label and clip it.
func LabelColumnWidth(tl *timeline.Timeline, cfg Config, m Measurer) float64 {
	if cfg.LabelPolicy == PolicyFixed {
		return cfg.FixedLabelWidth
	}
	var widest float64
	for _, n := range tl.Nodes {
		widest = max(widest, m.Extents(n.Label()).Width)
	}
	return widest + 2*cfg.LabelMargin
}

// PageSize returns the page dimensions for a label column of labelWidth.
func PageSize(tl *timeline.Timeline, cfg Config, labelWidth float64) (width, height float64) {
	width = labelWidth + tl.Duration*cfg.Scale
	height = float64(len(tl.Nodes)) * cfg.RowPitch()
	return width, height
}

// Compute lays out tl. Nodes and jobs keep their input order. The document
// is not validated beyond what [timeline.Parse] already checked; jobs past
// the duration extend beyond the page and inverted jobs get negative widths.
func Compute(tl *timeline.Timeline, cfg Config, m Measurer) Layout {
	labelWidth := LabelColumnWidth(tl, cfg, m)
	width, height := PageSize(tl, cfg, labelWidth)

	l := Layout{
		Width:      width,
		Height:     height,
		LabelWidth: labelWidth,
		Policy:     cfg.LabelPolicy,
		FontSize:   cfg.FontSize,
		LineWidth:  cfg.LineWidth,
		Theme:      cfg.Theme,
		Rows:       make([]Row, 0, len(tl.Nodes)),
	}

	for i, n := range tl.Nodes {
		y := float64(i) * cfg.RowPitch()
		row := Row{
			Index: i,
			Y:     y,
			Label: place(m, n.Label(), Rect{
				X: cfg.LabelMargin,
				Y: y,
				W: labelWidth - 2*cfg.LabelMargin,
				H: cfg.RowHeight,
			}, AlignRight),
			Jobs: make([]JobBox, 0, len(n.Jobs)),
		}

		if cfg.LabelPolicy == PolicyAutoFit {
			row.Background = &Rect{
				X: labelWidth,
				Y: y - cfg.HighlightPadding,
				W: tl.Duration * cfg.Scale,
				H: cfg.RowHeight + 2*cfg.HighlightPadding,
			}
		}

		for _, j := range n.Jobs {
			x0 := labelWidth + j.From*cfg.Scale
			x1 := labelWidth + j.To*cfg.Scale
			box := Rect{X: x0, Y: y, W: x1 - x0, H: cfg.RowHeight}
			row.Jobs = append(row.Jobs, JobBox{
				Rect:    box,
				Caption: place(m, j.Tag.String(), box, AlignCenter),
			})
		}

		l.Rows = append(l.Rows, row)
	}
	return l
}

func place(m Measurer, s string, box Rect, align Align) Text {
	ext := m.Extents(s)
	return Text{Text: s, Box: box, Align: align, Extents: ext, At: PlaceText(ext, box, align)}
}

// JobCount returns the number of job boxes in the layout.
func (l Layout) JobCount() int {
	n := 0
	for _, r := range l.Rows {
		n += len(r.Jobs)
	}
	return n
}

// MarshalLayout encodes a layout as indented JSON.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout decodes a layout produced by [MarshalLayout].
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	err := json.Unmarshal(data, &l)
	return l, err
}
