package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
)

// LinePrompter reads answers line by line. It serves pipes and tests.
// A single goroutine owns the reader, so a cancelled prompt never leaves
// a second reader behind.
type LinePrompter struct {
	r     *bufio.Reader
	out   io.Writer
	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// NewLinePrompter creates a LinePrompter reading from in and writing
// questions to out.
func NewLinePrompter(in io.Reader, out io.Writer) *LinePrompter {
	return &LinePrompter{r: bufio.NewReader(in), out: orStdout(out)}
}

// Confirm asks until the answer is yes, no or empty.
func (p *LinePrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	for {
		fmt.Fprintf(p.out, "? %s (%s) ", message, hint)
		line, err := p.readLine(ctx)
		if err != nil {
			return false, err
		}
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "":
			return def, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}
		fmt.Fprintln(p.out, "Please answer y or n.")
	}
}

// Select lists choices numbered from 1 and asks for a number.
func (p *LinePrompter) Select(ctx context.Context, message string, choices []string, def int) (int, error) {
	if len(choices) == 0 {
		return 0, errors.New("prompt: no choices")
	}
	if def < 0 || def >= len(choices) {
		def = 0
	}

	fmt.Fprintf(p.out, "? %s\n", message)
	for i, c := range choices {
		marker := " "
		if i == def {
			marker = ">"
		}
		fmt.Fprintf(p.out, "%s %d) %s\n", marker, i+1, c)
	}
	for {
		fmt.Fprintf(p.out, "Enter a number [%d]: ", def+1)
		line, err := p.readLine(ctx)
		if err != nil {
			return 0, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return def, nil
		}
		n, err := strconv.Atoi(line)
		if err == nil && n >= 1 && n <= len(choices) {
			return n - 1, nil
		}
		fmt.Fprintf(p.out, "Please enter a number between 1 and %d.\n", len(choices))
	}
}

// Input reads one line.
func (p *LinePrompter) Input(ctx context.Context, message string, def string) (string, error) {
	if def != "" {
		fmt.Fprintf(p.out, "? %s (%s) ", message, def)
	} else {
		fmt.Fprintf(p.out, "? %s ", message)
	}
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(line) == "" {
		return def, nil
	}
	return line, nil
}

// Secret reads one line. Pipes cannot hide input, so it behaves like Input.
func (p *LinePrompter) Secret(ctx context.Context, message string) (string, error) {
	return p.Input(ctx, message, "")
}

// readLine returns the next line without its terminator. A final line
// without a newline is still returned; a closed stream is ErrInterrupted.
// A line that arrives after ctx is cancelled is kept for the next call.
func (p *LinePrompter) readLine(ctx context.Context) (string, error) {
	p.once.Do(func() {
		p.lines = make(chan lineResult, 1)
		go p.pump()
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res, ok := <-p.lines:
		if !ok {
			return "", ErrInterrupted
		}
		if res.err != nil {
			if errors.Is(res.err, io.EOF) && res.line != "" {
				return strings.TrimRight(res.line, "\r\n"), nil
			}
			if errors.Is(res.err, io.EOF) {
				return "", ErrInterrupted
			}
			return "", res.err
		}
		return strings.TrimRight(res.line, "\r\n"), nil
	}
}

// pump feeds lines until the first read error, then closes the channel.
func (p *LinePrompter) pump() {
	defer close(p.lines)
	for {
		line, err := p.r.ReadString('\n')
		p.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}
