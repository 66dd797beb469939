// Package prompt asks the operator questions, either through bubbletea
// widgets on a terminal or through plain line input on pipes.
package prompt

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/mattn/go-isatty"
)

// ErrInterrupted is returned when the operator cancels a prompt with
// Ctrl+C or closes the input stream.
var ErrInterrupted = errors.New("prompt interrupted")

// Prompter asks the operator questions.
type Prompter interface {
	// Confirm asks a yes/no question.
	Confirm(ctx context.Context, message string, def bool) (bool, error)
	// Select returns the index of the chosen option.
	Select(ctx context.Context, message string, choices []string, def int) (int, error)
	// Input reads one line of text. Empty input returns def.
	Input(ctx context.Context, message string, def string) (string, error)
	// Secret reads one line without echoing it.
	Secret(ctx context.Context, message string) (string, error)
}

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New picks the bubbletea prompter when both streams are terminals and the
// line prompter otherwise.
func New(in *os.File, out *os.File) Prompter {
	if IsTerminal(in) && IsTerminal(out) {
		return NewTeaPrompter(in, out)
	}
	return NewLinePrompter(in, out)
}

func orStdout(w io.Writer) io.Writer {
	if w == nil {
		return os.Stdout
	}
	return w
}

var (
	_ Prompter = (*LinePrompter)(nil)
	_ Prompter = (*TeaPrompter)(nil)
)
