package progress

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/fractional-company/vaultctl/internal/domain"
	"github.com/fractional-company/vaultctl/internal/usecase"
)

// ConsoleProgress reports deploy and verify progress. Interactive terminals
// get a spinner for the running step, otherwise one line per event.
// Verification reports from several goroutines, so every method locks.
type ConsoleProgress struct {
	out         io.Writer
	interactive bool

	mu        sync.Mutex
	spinner   *spinner.Spinner
	stepStart time.Time
	verified  int
}

// NewConsoleProgress creates a console progress sink
func NewConsoleProgress(out io.Writer, interactive bool) *ConsoleProgress {
	return &ConsoleProgress{out: out, interactive: interactive}
}

// OnProgress handles progress events
func (p *ConsoleProgress) OnProgress(ctx context.Context, event usecase.ProgressEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()

	counter := ""
	if event.Total > 0 {
		counter = fmt.Sprintf("[%d/%d] ", event.Current, event.Total)
	}

	switch event.Stage {
	case usecase.StageBuilding:
		p.start(event.Message + "...")

	case usecase.StageDeploying:
		p.stepStart = time.Now()
		p.start(fmt.Sprintf("%sDeploying %s...", counter, event.Message))

	case usecase.StageDeployed:
		p.stop()
		line := fmt.Sprintf("%s%s", counter, event.Message)
		if record, ok := event.Metadata.(domain.DeploymentRecord); ok {
			line += " " + color.New(color.FgWhite, color.Faint).Sprint(record.Address.Hex())
		}
		color.New(color.FgGreen).Fprint(p.out, "✓ ")
		fmt.Fprintf(p.out, "%s (%s)\n", line, time.Since(p.stepStart).Round(time.Millisecond))

	case usecase.StageDeployFail:
		p.stop()
		color.New(color.FgRed).Fprintf(p.out, "✗ %s%s\n", counter, event.Message)

	case usecase.StageVerifying:
		// concurrent steps overwrite each other's suffix; the spinner only shows liveness
		p.start(fmt.Sprintf("Verifying %s...", event.Message))

	case usecase.StageVerified:
		res, ok := event.Metadata.(*usecase.ComponentVerification)
		if !ok {
			return
		}
		p.pause(func() {
			if res.Status == usecase.StatusVerified {
				color.New(color.FgGreen).Fprint(p.out, "✓ ")
			} else {
				color.New(color.FgRed).Fprint(p.out, "✗ ")
			}
			fmt.Fprintf(p.out, "%s%s\n", counter, res.Component)
		})
		p.verified++
		if p.verified >= event.Total {
			p.verified = 0
			p.stop()
		}

	default:
		if event.Message != "" {
			p.pause(func() { fmt.Fprintln(p.out, event.Message) })
		}
	}
}

// Info prints an info message
func (p *ConsoleProgress) Info(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pause(func() { color.New(color.FgCyan).Fprintln(p.out, message) })
}

// Error prints an error message
func (p *ConsoleProgress) Error(message string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pause(func() { color.New(color.FgRed).Fprintln(p.out, message) })
}

// start shows msg on the spinner, or prints it when not interactive
func (p *ConsoleProgress) start(msg string) {
	if !p.interactive {
		fmt.Fprintln(p.out, msg)
		return
	}
	if p.spinner == nil {
		p.spinner = spinner.New(spinner.CharSets[14], 100*time.Millisecond)
		p.spinner.Writer = p.out
		_ = p.spinner.Color("cyan", "bold")
	}
	p.spinner.Suffix = " " + msg
	if !p.spinner.Active() {
		p.spinner.Start()
	}
}

func (p *ConsoleProgress) stop() {
	if p.spinner != nil && p.spinner.Active() {
		p.spinner.Stop()
	}
}

// pause stops the spinner around fn so the line is not overdrawn
func (p *ConsoleProgress) pause(fn func()) {
	wasActive := p.spinner != nil && p.spinner.Active()
	if wasActive {
		p.spinner.Stop()
	}
	fn()
	if wasActive {
		p.spinner.Start()
	}
}

var _ usecase.ProgressSink = (*ConsoleProgress)(nil)
