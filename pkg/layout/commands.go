package layout

// Op identifies the kind of a drawing command.
type Op int

const (
	OpRect Op = iota // paint a rectangle with Style
	OpText           // draw Text with its baseline origin at At
)

func (o Op) String() string {
	switch o {
	case OpRect:
		return "rect"
	case OpText:
		return "text"
	}
	return "unknown"
}

// Command is one drawing instruction. Rect commands use Rect and Style;
// text commands use Text, At and Color.
type Command struct {
	Op    Op
	Rect  Rect
	Style Style
	Text  string
	At    Point
	Color Color
}

// Commands returns the drawing commands for the layout in paint order.
//
// For every row the label is drawn first. Under the auto-fit policy the row
// band follows, then each job is outlined, filled on top to hide the band,
// and captioned. Under the fixed policy jobs are only outlined and
// captioned.
func (l Layout) Commands() []Command {
	th := l.Theme
	cmds := make([]Command, 0, len(l.Rows)*2+l.JobCount()*3)

	for _, row := range l.Rows {
		cmds = append(cmds, textCommand(row.Label, th.Text))
		if row.Background != nil {
			cmds = append(cmds, Command{Op: OpRect, Rect: *row.Background, Style: Filled(th.Highlight)})
		}
		for _, jb := range row.Jobs {
			cmds = append(cmds, Command{Op: OpRect, Rect: jb.Rect, Style: Stroked(th.JobStroke)})
			if l.Policy == PolicyAutoFit {
				cmds = append(cmds, Command{Op: OpRect, Rect: jb.Rect, Style: Filled(th.JobFill)})
			}
			cmds = append(cmds, textCommand(jb.Caption, th.Text))
		}
	}
	return cmds
}

func textCommand(t Text, c Color) Command {
	return Command{Op: OpText, Text: t.Text, At: t.At, Color: c}
}
