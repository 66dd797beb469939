// Package cli wires the firstvibe commands together.
package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/kstost/firstvibe/internal/generator"
	"github.com/kstost/firstvibe/internal/prompt"
)

// Env is what commands need from the outside world. Tests replace the
// streams, the prompter and the invoker.
type Env struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer

	Logger *slog.Logger
	// Level is raised to debug by --verbose.
	Level *slog.LevelVar

	// Interactive reports whether In is a terminal.
	Interactive bool
	Prompter    prompt.Prompter
	// Invoker replaces the AI dispatcher when set.
	Invoker generator.Invoker
}

// DefaultEnv binds the process streams.
func DefaultEnv(logger *slog.Logger, level *slog.LevelVar) *Env {
	return &Env{
		In:          os.Stdin,
		Out:         os.Stdout,
		Err:         os.Stderr,
		Logger:      logger,
		Level:       level,
		Interactive: prompt.IsTerminal(os.Stdin),
		Prompter:    prompt.New(os.Stdin, os.Stdout),
	}
}

func (e *Env) fill() {
	if e.In == nil {
		e.In = os.Stdin
	}
	if e.Out == nil {
		e.Out = os.Stdout
	}
	if e.Err == nil {
		e.Err = os.Stderr
	}
	if e.Logger == nil {
		e.Logger = slog.Default()
	}
	if e.Level == nil {
		e.Level = new(slog.LevelVar)
	}
	if e.Prompter == nil {
		e.Prompter = prompt.NewLinePrompter(e.In, e.Out)
	}
}
