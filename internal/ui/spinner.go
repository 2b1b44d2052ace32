package ui

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const spinnerInterval = 80 * time.Millisecond

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// Spinner animates a message on stderr while a search runs. Stdout stays
// clean for piping. Nothing is drawn when stderr is not a terminal.
type Spinner struct {
	message string
	out     io.Writer
	enabled bool

	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	started  bool
}

// NewSpinner returns a spinner for message on stderr.
func NewSpinner(message string) *Spinner {
	return newSpinner(message, os.Stderr, isatty.IsTerminal(os.Stderr.Fd()))
}

func newSpinner(message string, out io.Writer, enabled bool) *Spinner {
	return &Spinner{
		message: message,
		out:     out,
		enabled: enabled,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins drawing. It must be called at most once.
func (s *Spinner) Start() {
	if !s.enabled {
		return
	}
	s.started = true
	go s.loop()
}

func (s *Spinner) loop() {
	defer close(s.done)
	ticker := time.NewTicker(spinnerInterval)
	defer ticker.Stop()

	for frame := 0; ; frame++ {
		select {
		case <-s.stop:
			fmt.Fprint(s.out, "\r\033[K")
			return
		case <-ticker.C:
			fmt.Fprintf(s.out, "\r%s %s", Bold.Render(spinnerFrames[frame%len(spinnerFrames)]), s.message)
		}
	}
}

// Stop clears the spinner line and waits for the animation to end. It is
// safe to call more than once.
func (s *Spinner) Stop() {
	s.stopOnce.Do(func() {
		close(s.stop)
		if s.started {
			<-s.done
		}
	})
}
