package progress

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/trebuchet-org/treb-deploy/internal/domain/config"
	"github.com/trebuchet-org/treb-deploy/internal/usecase"
)

// Terminal stage names emitted by the use cases
const (
	stageComplete = "complete"
	stageFailed   = "failed"
)

// SpinnerSink renders progress as a spinner followed by one line per finished stage.
// Everything goes to out, which is stderr in practice.
type SpinnerSink struct {
	out     io.Writer
	spinner *spinner.Spinner

	mu      sync.Mutex
	current *stageInfo
}

type stageInfo struct {
	Stage     string
	Message   string
	StartTime time.Time
}

// NewSpinnerSink creates a spinner sink writing to out
func NewSpinnerSink(out *os.File) *SpinnerSink {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriterFile(out))
	s.HideCursor = false

	return &SpinnerSink{
		out:     out,
		spinner: s,
	}
}

// NewProgressSink picks the sink for this invocation: a spinner on an interactive
// terminal, nothing otherwise
func NewProgressSink(cfg *config.RuntimeConfig, stderr io.Writer) usecase.ProgressSink {
	if cfg.JSON || cfg.NonInteractive {
		return NewNopSink()
	}
	f, ok := stderr.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return NewNopSink()
	}
	return NewSpinnerSink(f)
}

// OnProgress handles progress events
func (r *SpinnerSink) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.spinner.Active() {
		r.spinner.Stop()
	}

	if r.current != nil {
		r.finishStage(event.Stage != stageFailed)
	}

	if event.Spinner {
		r.current = &stageInfo{Stage: event.Stage, Message: event.Message, StartTime: time.Now()}
		r.spinner.Suffix = " " + event.Message
		r.spinner.Start()
	}
}

// finishStage prints the outcome line of the running stage
func (r *SpinnerSink) finishStage(ok bool) {
	icon, c := "✓", color.New(color.FgGreen)
	if !ok {
		icon, c = "✗", color.New(color.FgRed)
	}

	duration := time.Since(r.current.StartTime).Round(time.Millisecond)
	fmt.Fprintf(r.out, "%s %s %s\n", c.Sprint(icon), r.current.Message, color.New(color.Faint).Sprintf("(%s)", duration))
	r.current = nil
}

// Info prints an info message
func (r *SpinnerSink) Info(message string) {
	r.print(color.New(color.FgCyan), message)
}

// Error prints an error message
func (r *SpinnerSink) Error(message string) {
	r.print(color.New(color.FgRed), message)
}

// print writes a line without tearing the spinner
func (r *SpinnerSink) print(c *color.Color, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	wasActive := r.spinner.Active()
	if wasActive {
		r.spinner.Stop()
	}

	c.Fprintln(r.out, message)

	if wasActive {
		r.spinner.Start()
	}
}

// Ensure SpinnerSink implements ProgressSink
var _ usecase.ProgressSink = (*SpinnerSink)(nil)
