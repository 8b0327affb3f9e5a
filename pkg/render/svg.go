package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/timeline/pkg/fonts"
	"github.com/matzehuels/timeline/pkg/layout"
)

type svgSurface struct {
	buf       bytes.Buffer
	lineWidth float64
}

// NewSVGSurface creates a standalone SVG document sized to the layout.
func NewSVGSurface(l layout.Layout) Surface {
	s := &svgSurface{lineWidth: l.LineWidth}
	w, h := l.Width, l.Height

	fmt.Fprintf(&s.buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.2f" height="%.2f">`+"\n",
		w, h, w, h)
	s.buf.WriteString("  <defs>\n    <style>\n")
	fmt.Fprintf(&s.buf, "      @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }\n",
		fonts.FontFamily, fonts.TTFBase64())
	fmt.Fprintf(&s.buf, "      text { font-family: %s; font-size: %.2fpx; white-space: pre; }\n",
		fonts.FallbackFontFamily, l.FontSize)
	s.buf.WriteString("    </style>\n  </defs>\n")
	fmt.Fprintf(&s.buf, `  <rect x="0" y="0" width="%.2f" height="%.2f" fill="#ffffff"/>`+"\n", w, h)
	return s
}

func (s *svgSurface) Rect(r layout.Rect, style layout.Style) {
	if style.Fill == nil && style.Stroke == nil {
		return
	}
	r = normalized(r)
	fill, stroke := "none", "none"
	if style.Fill != nil {
		fill = style.Fill.String()
	}
	if style.Stroke != nil {
		stroke = style.Stroke.String()
	}
	fmt.Fprintf(&s.buf, `  <rect x="%.2f" y="%.2f" width="%.2f" height="%.2f" fill="%s" stroke="%s" stroke-width="%.2f"/>`+"\n",
		r.X, r.Y, r.W, r.H, fill, stroke, s.lineWidth)
}

func (s *svgSurface) Text(text string, p layout.Point, c layout.Color) {
	if text == "" {
		return
	}
	fmt.Fprintf(&s.buf, `  <text x="%.2f" y="%.2f" fill="%s">%s</text>`+"\n", p.X, p.Y, c, escapeXML(text))
}

func (s *svgSurface) Close() ([]byte, error) {
	s.buf.WriteString("</svg>\n")
	return s.buf.Bytes(), nil
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
