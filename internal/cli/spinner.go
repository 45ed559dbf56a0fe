package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"
)

// spinnerFrames are the braille animation frames.
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner shows an animated progress indicator on stderr.
type Spinner struct {
	message string
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewSpinner creates and starts a spinner with the given message.
func NewSpinner(message string) *Spinner {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Spinner{
		message: message,
		cancel:  cancel,
		done:    make(chan struct{}),
	}
	go s.run(ctx)
	return s
}

func (s *Spinner) run(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(80 * time.Millisecond)
	defer ticker.Stop()

	frame := 0
	for {
		select {
		case <-ctx.Done():
			s.clearLine()
			return
		case <-ticker.C:
			icon := styleIconSpinner.Render(spinnerFrames[frame%len(spinnerFrames)])
			fmt.Fprintf(os.Stderr, "\r%s %s", icon, s.message)
			frame++
		}
	}
}

// Stop halts the spinner and clears the line.
func (s *Spinner) Stop() {
	s.cancel()
	<-s.done
}

// StopWithSuccess halts the spinner and prints a success message.
func (s *Spinner) StopWithSuccess(format string, args ...any) {
	s.Stop()
	printSuccess(format, args...)
}

// StopWithError halts the spinner and prints an error message.
func (s *Spinner) StopWithError(format string, args ...any) {
	s.Stop()
	printError(format, args...)
}

func (s *Spinner) clearLine() {
	width := len(s.message) + 4
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", width))
}
