// Package layout computes the geometry of a timeline chart.
//
// The layout is a pure function of a [timeline.Timeline], an immutable
// [Config] and a [Measurer] that reports the ink extents of text under the
// active font. It produces a [Layout]: the page size, the label column
// width, and for every node a row holding the placed label, an optional
// background band and one box per job with its placed caption.
//
// # Geometry
//
// Rows are stacked from the top of the page at
//
//	y = index * (RowHeight + RowSpacing)
//
// Jobs are positioned on a shared horizontal axis to the right of the label
// column:
//
//	x0 = labelWidth + job.From * Scale
//	x1 = labelWidth + job.To   * Scale
//
// and the page measures labelWidth + Duration*Scale by
// len(Nodes) * (RowHeight + RowSpacing).
//
// # Label column
//
// Two policies exist. [PolicyFixed] uses FixedLabelWidth (150 units) and
// draws the minimal chart: stroked job outlines only. [PolicyAutoFit]
// measures every label and sizes the column so the widest label exactly
// fills its box; it also draws a light band behind each row and fills job
// boxes white so they stand out from the band.
//
// # Text placement
//
// [PlaceText] positions text inside a box from its ink extents (not its
// advance width), vertically centered and aligned left, center or right.
//
// # Drawing
//
// [Layout.Commands] flattens a layout into the ordered list of drawing
// commands a backend replays. Every command carries its own [Style]; no
// drawing state is shared between commands.
package layout
