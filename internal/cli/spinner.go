package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/timeline/pkg/observability"
)

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

const (
	spinnerInterval = 80 * time.Millisecond
	// spinnerShowElapsed is how long a render runs before the elapsed time
	// is appended to the status line.
	spinnerShowElapsed = time.Second
)

// spinner animates a one-line status on w until it is stopped or its
// context ends.
type spinner struct {
	w       io.Writer
	start   time.Time
	ctx     context.Context
	cancel  context.CancelFunc
	stopped chan struct{}
	once    sync.Once

	mu      sync.Mutex
	message string
	width   int // widest line drawn so far
}

// startSpinner starts animating message on w.
func startSpinner(ctx context.Context, w io.Writer, message string) *spinner {
	ctx, cancel := context.WithCancel(ctx)
	s := &spinner{
		w:       w,
		start:   time.Now(),
		ctx:     ctx,
		cancel:  cancel,
		stopped: make(chan struct{}),
		message: message,
	}
	go s.run()
	return s
}

func (s *spinner) run() {
	defer close(s.stopped)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for i := 0; ; i++ {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.draw(spinnerFrames[i%len(spinnerFrames)])
		}
	}
}

func (s *spinner) draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := styleIconSpinner.Render(frame) + " " + StyleDim.Render(s.message)
	if elapsed := time.Since(s.start); elapsed >= spinnerShowElapsed {
		line += StyleDim.Render(" " + elapsed.Round(100*time.Millisecond).String())
	}
	// Pad over the remains of a longer previous line.
	w := lipgloss.Width(line)
	if w < s.width {
		line += strings.Repeat(" ", s.width-w)
	}
	s.width = max(s.width, w)
	fmt.Fprintf(s.w, "\r%s", line)
}

// setMessage replaces the text shown next to the animation.
func (s *spinner) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// stop halts the animation and clears the line. It may be called more
// than once.
func (s *spinner) stop() {
	s.once.Do(func() {
		s.cancel()
		<-s.stopped
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.width > 0 {
			fmt.Fprintf(s.w, "\r%s\r", strings.Repeat(" ", s.width))
		}
	})
}

// fail stops the spinner and prints message as an error line.
func (s *spinner) fail(message string) {
	s.stop()
	printError("%s", message)
}

// spinnerHooks reports pipeline stages on a spinner.
type spinnerHooks struct {
	observability.NoopPipelineHooks
	s *spinner
}

func (h spinnerHooks) OnParseStart(ctx context.Context, source string) {
	h.s.setMessage("Parsing " + filepath.Base(source) + "...")
}

func (h spinnerHooks) OnLayoutStart(ctx context.Context, policy string, nodeCount int) {
	h.s.setMessage(fmt.Sprintf("Laying out %s (%s labels)...", plural(nodeCount, "node"), policy))
}

func (h spinnerHooks) OnRenderStart(ctx context.Context, formats []string) {
	h.s.setMessage("Rendering " + strings.Join(formats, ", ") + "...")
}
