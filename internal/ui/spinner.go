package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
)

// Spinner shows the text of the running AI call. On a terminal it animates
// in place; otherwise every new text is printed once on its own line.
type Spinner struct {
	out     io.Writer
	animate bool
	frames  []string
	fps     time.Duration

	mu      sync.Mutex
	text    string
	running bool
	stop    chan struct{}
	done    chan struct{}
}

// NewSpinner creates a Spinner on w using the bubbles dot frames.
func NewSpinner(w io.Writer, animate bool) *Spinner {
	return &Spinner{
		out:     w,
		animate: animate,
		frames:  spinner.Dot.Frames,
		fps:     spinner.Dot.FPS,
	}
}

// Start shows text. Calling Start on a running spinner only replaces the text.
func (s *Spinner) Start(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.text = text
	if s.running {
		return
	}
	s.running = true

	if !s.animate {
		fmt.Fprintln(s.out, LightPurple.Render("… "+text))
		return
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)
}

// Update replaces the text of a running spinner.
func (s *Spinner) Update(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if text == s.text {
		return
	}
	s.text = text
	if s.running && !s.animate {
		fmt.Fprintln(s.out, LightPurple.Render("… "+text))
	}
}

// Stop halts the animation and clears the line. It is safe to call twice.
func (s *Spinner) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	stop, done := s.stop, s.done
	s.mu.Unlock()

	if stop == nil {
		return
	}
	close(stop)
	<-done
	fmt.Fprint(s.out, "\r\x1b[2K")
}

// Text returns the current text.
func (s *Spinner) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

func (s *Spinner) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.fps)
	defer ticker.Stop()

	for i := 0; ; i++ {
		s.mu.Lock()
		text := s.text
		s.mu.Unlock()
		fmt.Fprintf(s.out, "\r\x1b[2K%s%s", Lavender.Render(s.frames[i%len(s.frames)]), text)

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}
