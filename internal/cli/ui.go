package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/timeline/pkg/pipeline"
)

// Terminal palette (ANSI 256).
var (
	colorCyan   = lipgloss.Color("36")
	colorGreen  = lipgloss.Color("35")
	colorYellow = lipgloss.Color("220")
	colorRed    = lipgloss.Color("167")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
)

var (
	// StyleTitle is used for headings such as the preview title bar.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim is used for secondary text: stats, help lines, the time axis.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue is used for file paths and key/value values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber is used for page sizes and other measurements.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning is used for the text of warnings about the document.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
	styleKey         = lipgloss.NewStyle().Foreground(colorGray).Width(12)

	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)

	styleCommand = lipgloss.NewStyle().Foreground(colorBlue)
)

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	labelCached = "cached"
	labelFresh  = "fresh"
)

func printSuccess(format string, args ...any) {
	fmt.Println(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

func printError(format string, args ...any) {
	fmt.Println(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

func printWarning(format string, args ...any) {
	fmt.Println(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

func printInfo(format string, args ...any) {
	fmt.Println(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// printDetail prints an indented secondary line.
func printDetail(format string, args ...any) {
	fmt.Println("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// printFile prints "→ path" for a written artifact.
func printFile(path string) {
	fmt.Println("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

func printKeyValue(key, value string) {
	fmt.Println(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// printStats prints the render summary on one line, followed by a warning
// for each kind of job that does not fit the timeline.
func printStats(s pipeline.Stats, cached bool) {
	fmt.Println(statsLine(s, cached))
	if s.Overflow > 0 {
		printWarning("%d job(s) end after the timeline duration and run past the page edge", s.Overflow)
	}
	if s.Inverted > 0 {
		printWarning("%d job(s) end before they start", s.Inverted)
	}
}

// statsLine formats "  3 nodes · 12 jobs · 4ms · fresh".
func statsLine(s pipeline.Stats, cached bool) string {
	parts := []string{
		StyleDim.Render(plural(s.NodeCount, "node")),
		StyleDim.Render(plural(s.JobCount, "job")),
	}
	if total := s.ParseTime + s.LayoutTime + s.RenderTime; total > 0 {
		parts = append(parts, StyleDim.Render(total.Round(time.Millisecond/10).String()))
	}
	if cached {
		parts = append(parts, styleCached.Render(labelCached))
	} else {
		parts = append(parts, styleComputed.Render(labelFresh))
	}
	return "  " + strings.Join(parts, StyleDim.Render(" · "))
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}

// printNextStep prints a suggested follow-up command.
func printNextStep(description, cmd string) {
	fmt.Println(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

func printNewline() {
	fmt.Println()
}
