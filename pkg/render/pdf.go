package render

import (
	"bytes"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/matzehuels/timeline/pkg/fonts"
	"github.com/matzehuels/timeline/pkg/layout"
)

// pdfEpoch is stamped as creation and modification date so identical
// layouts produce identical files.
var pdfEpoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

type pdfSurface struct {
	pdf       *fpdf.Fpdf
	lineWidth float64
}

// NewPDFSurface creates a single-page PDF sized to the layout, in points.
func NewPDFSurface(l layout.Layout) Surface {
	w, h := pageSize(l)
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           fpdf.SizeType{Wd: w, Ht: h},
	})
	pdf.SetCreationDate(pdfEpoch)
	pdf.SetModificationDate(pdfEpoch)
	pdf.SetCatalogSort(true)
	pdf.SetCreator("timeline", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddUTF8FontFromBytes(fonts.FontFamily, "", fonts.TTF())
	pdf.AddPage()
	pdf.SetFont(fonts.FontFamily, "", l.FontSize)
	pdf.SetLineWidth(l.LineWidth)

	return &pdfSurface{pdf: pdf, lineWidth: l.LineWidth}
}

func (s *pdfSurface) Rect(r layout.Rect, style layout.Style) {
	op := ""
	if style.Fill != nil {
		c := *style.Fill
		s.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
		op += "F"
	}
	if style.Stroke != nil {
		c := *style.Stroke
		s.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
		op += "D"
	}
	if op == "" {
		return
	}
	s.pdf.Rect(r.X, r.Y, r.W, r.H, op)
}

func (s *pdfSurface) Text(text string, p layout.Point, c layout.Color) {
	if text == "" {
		return
	}
	s.pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
	s.pdf.Text(p.X, p.Y, text)
}

func (s *pdfSurface) Close() ([]byte, error) {
	var buf bytes.Buffer
	if err := s.pdf.Output(&buf); err != nil {
		return nil, backendError(FormatPDF, err)
	}
	return buf.Bytes(), nil
}
