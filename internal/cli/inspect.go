package cli

import (
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/ledongthuc/pdf"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/matzehuels/timeline/pkg/errors"
)

const mmPerPoint = 25.4 / 72

// pdfInfo is what inspect reports about a PDF file.
type pdfInfo struct {
	Producer string
	Pages    []pageInfo
}

// pageInfo describes one page. Sizes are in points.
type pageInfo struct {
	Number int
	Width  float64
	Height float64
	Fonts  []string
}

// inspectCommand creates the inspect command.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <file.pdf>",
		Short: "Show page count, page size and fonts of a rendered PDF",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			if err := errors.ValidatePath(path); err != nil {
				return err
			}
			data, err := os.ReadFile(path)
			if err != nil {
				if os.IsNotExist(err) {
					return errors.Wrap(errors.ErrCodeFileNotFound, err, "%s", path)
				}
				return errors.Wrap(errors.ErrCodeIO, err, "read %s", path)
			}
			info, err := readPDFInfo(data)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			c.Logger.Debug("inspected", "path", path, "pages", len(info.Pages))
			printPDFInfo(path, info)
			return nil
		},
	}
}

// readPDFInfo parses data as a PDF and collects its page geometry.
func readPDFInfo(data []byte) (info *pdfInfo, err error) {
	// The reader panics on malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			info, err = nil, errors.New(errors.ErrCodeInvalidInput, "malformed PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "not a PDF")
	}

	info = &pdfInfo{
		Producer: r.Trailer().Key("Info").Key("Producer").Text(),
	}
	for i := 1; i <= r.NumPage(); i++ {
		p := r.Page(i)
		if p.V.IsNull() {
			continue
		}
		w, h := mediaBoxSize(p)
		info.Pages = append(info.Pages, pageInfo{
			Number: i,
			Width:  w,
			Height: h,
			Fonts:  pageFonts(p),
		})
	}
	return info, nil
}

// mediaBoxSize returns the page size from its MediaBox, which may be
// inherited from any ancestor in the page tree.
func mediaBoxSize(p pdf.Page) (w, h float64) {
	for v := p.V; !v.IsNull(); v = v.Key("Parent") {
		box := v.Key("MediaBox")
		if box.Len() == 4 {
			return box.Index(2).Float64() - box.Index(0).Float64(),
				box.Index(3).Float64() - box.Index(1).Float64()
		}
	}
	return 0, 0
}

// pageFonts returns the base font names used by a page, falling back to
// the resource name when a font has no BaseFont.
func pageFonts(p pdf.Page) []string {
	keys := p.Fonts()
	fonts := make([]string, 0, len(keys))
	for _, k := range keys {
		name := p.Font(k).BaseFont()
		if name == "" {
			name = k
		}
		fonts = append(fonts, name)
	}
	return fonts
}

func printPDFInfo(path string, info *pdfInfo) {
	printer := message.NewPrinter(language.English)

	printKeyValue("File", path)
	if info.Producer != "" {
		printKeyValue("Producer", info.Producer)
	}
	printKeyValue("Pages", printer.Sprintf("%d", len(info.Pages)))
	if len(info.Pages) == 0 {
		return
	}
	printNewline()

	rows := make([][]string, 0, len(info.Pages))
	for _, p := range info.Pages {
		rows = append(rows, []string{
			strconv.Itoa(p.Number),
			printer.Sprintf("%.2f × %.2f pt", p.Width, p.Height),
			printer.Sprintf("%.1f × %.1f mm", p.Width*mmPerPoint, p.Height*mmPerPoint),
			strings.Join(p.Fonts, ", "),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Page", "Size", "Metric", "Fonts").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 1 {
				return StyleNumber
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})
	fmt.Println(t.Render())
}
