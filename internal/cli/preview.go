package cli

import (
	"fmt"
	"math"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/timeline/pkg/errors"
	"github.com/matzehuels/timeline/pkg/timeline"
)

// Preview styles
var (
	previewLabelStyle = lipgloss.NewStyle().Foreground(colorWhite)
	previewEmptyStyle = lipgloss.NewStyle().Foreground(colorDim)
	previewJobStyles  = [2]lipgloss.Style{
		lipgloss.NewStyle().Background(colorCyan).Foreground(lipgloss.Color("16")),
		lipgloss.NewStyle().Background(colorBlue).Foreground(lipgloss.Color("16")),
	}
)

const (
	previewMaxLabel  = 32
	previewChrome    = 6 // title, help, blank, axis, blank, status
	previewMaxZoom   = 1024
	previewPanFactor = 0.1
)

// previewCommand creates the preview command.
func (c *CLI) previewCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "preview <input.json>",
		Short: "Browse a timeline as a Gantt chart in the terminal",
		Long: `Preview draws the timeline in the terminal, one row per node.

Keys: ↑/↓ scroll rows, ←/→ pan, +/- zoom, 0 reset, q quit.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := errors.ValidatePath(args[0]); err != nil {
				return err
			}
			tl, err := timeline.ImportJSON(args[0])
			if err != nil {
				return err
			}
			m := newPreviewModel(filepath.Base(args[0]), tl)
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("preview: %w", err)
			}
			return nil
		},
	}
}

// =============================================================================
// previewModel - Interactive Gantt chart
// =============================================================================

// previewModel is the bubbletea model of the terminal preview. The visible
// time window is [start, start+duration/zoom).
type previewModel struct {
	title    string
	tl       *timeline.Timeline
	duration float64
	width    int
	height   int
	offset   int // first visible row
	zoom     float64
	start    float64
}

func newPreviewModel(title string, tl *timeline.Timeline) previewModel {
	d := tl.Duration
	for _, n := range tl.Nodes {
		for _, j := range n.Jobs {
			d = max(d, j.From, j.To)
		}
	}
	if d <= 0 {
		d = 1
	}
	return previewModel{
		title:    title,
		tl:       tl,
		duration: d,
		width:    80,
		height:   24,
		zoom:     1,
	}
}

func (m previewModel) Init() tea.Cmd {
	return nil
}

func (m previewModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			m.offset--
		case "down", "j":
			m.offset++
		case "pgup":
			m.offset -= m.visibleRows()
		case "pgdown":
			m.offset += m.visibleRows()
		case "left", "h":
			m.start -= m.span() * previewPanFactor
		case "right", "l":
			m.start += m.span() * previewPanFactor
		case "+", "=":
			m.zoomBy(2)
		case "-", "_":
			m.zoomBy(0.5)
		case "0":
			m.zoom, m.start = 1, 0
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
	}
	m.clamp()
	return m, nil
}

// zoomBy scales the zoom factor around the centre of the visible window.
func (m *previewModel) zoomBy(f float64) {
	centre := m.start + m.span()/2
	m.zoom = math.Min(math.Max(m.zoom*f, 1), previewMaxZoom)
	m.start = centre - m.span()/2
}

func (m *previewModel) clamp() {
	m.offset = min(m.offset, len(m.tl.Nodes)-m.visibleRows())
	m.offset = max(m.offset, 0)
	m.start = math.Min(m.start, m.duration-m.span())
	m.start = math.Max(m.start, 0)
}

func (m previewModel) span() float64 {
	return m.duration / m.zoom
}

func (m previewModel) visibleRows() int {
	return max(m.height-previewChrome, 1)
}

func (m previewModel) labelWidth() int {
	w := 0
	for _, n := range m.tl.Nodes {
		w = max(w, lipgloss.Width(n.Label()))
	}
	return min(w, previewMaxLabel)
}

// barColumns is the number of cells available to the time axis.
func (m previewModel) barColumns() int {
	return max(m.width-m.labelWidth()-1, 10)
}

func (m previewModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.title))
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d nodes · %s · zoom %gx",
		len(m.tl.Nodes), formatMicros(m.duration), m.zoom)))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ rows  ←/→ pan  +/- zoom  0 reset  q quit"))
	b.WriteString("\n\n")

	lw := m.labelWidth()
	cols := m.barColumns()
	b.WriteString(strings.Repeat(" ", lw+1))
	b.WriteString(StyleDim.Render(axisLine(formatMicros(m.start), formatMicros(m.start+m.span()), cols)))
	b.WriteString("\n")

	end := min(m.offset+m.visibleRows(), len(m.tl.Nodes))
	for i := m.offset; i < end; i++ {
		n := m.tl.Nodes[i]
		b.WriteString(previewLabelStyle.Render(padLabel(n.Label(), lw)))
		b.WriteString(" ")
		b.WriteString(renderBar(n.Jobs, m.start, m.span(), cols))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if len(m.tl.Nodes) > 0 {
		b.WriteString(StyleDim.Render(fmt.Sprintf("  [%d-%d/%d]", m.offset+1, end, len(m.tl.Nodes))))
	} else {
		b.WriteString(StyleDim.Render("  (no nodes)"))
	}
	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// barSpan maps the interval [from, to) onto cols cells of the window
// [start, start+span). Inverted intervals are drawn from to to from. Any
// job that intersects the window occupies at least one cell; ok is false
// when the job lies entirely outside.
func barSpan(from, to, start, span float64, cols int) (lo, hi int, ok bool) {
	if to < from {
		from, to = to, from
	}
	if to < start || from >= start+span {
		return 0, 0, false
	}
	scale := float64(cols) / span
	lo = int(math.Floor((from - start) * scale))
	hi = int(math.Ceil((to - start) * scale))
	lo = max(lo, 0)
	hi = min(hi, cols)
	if hi <= lo {
		if lo >= cols {
			lo = cols - 1
		}
		hi = lo + 1
	}
	return lo, hi, true
}

// renderBar draws one row of jobs. Adjacent jobs alternate colours and a
// job's tag is written into its bar when it fits.
func renderBar(jobs []timeline.Job, start, span float64, cols int) string {
	cells := make([]rune, cols)
	owner := make([]int, cols)
	for i := range cells {
		cells[i] = '·'
		owner[i] = -1
	}
	for idx, j := range jobs {
		lo, hi, ok := barSpan(j.From, j.To, start, span, cols)
		if !ok {
			continue
		}
		for c := lo; c < hi; c++ {
			cells[c] = ' '
			owner[c] = idx
		}
		if tag := []rune(j.Tag.String()); len(tag) > 0 && len(tag)+2 <= hi-lo {
			copy(cells[lo+(hi-lo-len(tag))/2:], tag)
		}
	}

	var b strings.Builder
	for c := 0; c < cols; {
		end := c + 1
		for end < cols && owner[end] == owner[c] {
			end++
		}
		run := string(cells[c:end])
		if owner[c] < 0 {
			b.WriteString(previewEmptyStyle.Render(run))
		} else {
			b.WriteString(previewJobStyles[owner[c]%2].Render(run))
		}
		c = end
	}
	return b.String()
}

// axisLine places left and right time labels at both ends of a cols-wide ruler.
func axisLine(left, right string, cols int) string {
	gap := cols - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return left
	}
	return left + strings.Repeat("─", gap) + right
}

// padLabel truncates or pads s to exactly w cells.
func padLabel(s string, w int) string {
	r := []rune(s)
	if len(r) > w {
		if w <= 1 {
			return string(r[:w])
		}
		return string(r[:w-1]) + "…"
	}
	return s + strings.Repeat(" ", w-lipgloss.Width(s))
}

// formatMicros renders a µs offset as a rounded duration ("1.5s", "250ms").
func formatMicros(us float64) string {
	d := time.Duration(us * float64(time.Microsecond))
	switch {
	case d >= time.Second:
		return d.Round(10 * time.Millisecond).String()
	case d >= time.Millisecond:
		return d.Round(10 * time.Microsecond).String()
	default:
		return d.String()
	}
}
