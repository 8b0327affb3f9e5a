// Package render draws a computed timeline [layout.Layout] onto a page.
//
// # Overview
//
// Rendering is a replay of [layout.Layout.Commands] onto a [Surface]. A
// surface is created at the exact page size of the layout, receives one
// call per drawing command, and is finalized by Close, which returns the
// encoded page:
//
//	l := layout.Compute(tl, cfg, measurer)
//	pdf, err := render.Render(l, render.FormatPDF)
//
// Every rectangle command carries its own [layout.Style], so surfaces never
// depend on color state left behind by an earlier command.
//
// # Formats
//
//   - pdf: single-page vector PDF (go-pdf/fpdf) with the embedded Go font
//   - svg: standalone SVG with the font embedded as a data URL
//   - png: raster image (fogleman/gg), 2x scale by default
//   - json: the layout itself, for debugging and external renderers
//
// PDF output is deterministic: the same layout always produces the same
// bytes.
//
// Pages are created at the layout's exact size with one exception: a
// timeline without nodes has height 0, and PDF and PNG pages are then
// clamped to 1 unit because neither backend can create an empty page. The
// layout itself, and the SVG and JSON outputs, keep height 0.
//
// PNG pages are limited to 32768 pixels per side and 64 Mi pixels in
// total; larger pages fail with INVALID_INPUT instead of allocating.
package render
