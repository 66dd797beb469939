package prompt

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func TestLinePrompter_Confirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   bool
		want  bool
	}{
		{name: "yes", input: "y\n", want: true},
		{name: "no word", input: "no\n", def: true, want: false},
		{name: "empty takes default", input: "\n", def: true, want: true},
		{name: "retries on garbage", input: "maybe\nYES\n", want: true},
		{name: "last line without newline", input: "y", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLinePrompter(strings.NewReader(tt.input), io.Discard)
			got, err := p.Confirm(context.Background(), "Continue?", tt.def)
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLinePrompter_Select(t *testing.T) {
	tests := []struct {
		name  string
		input string
		def   int
		want  int
	}{
		{name: "number", input: "2\n", want: 1},
		{name: "default", input: "\n", def: 2, want: 2},
		{name: "out of range then valid", input: "9\nabc\n3\n", want: 2},
		{name: "bad default clamps", input: "\n", def: 7, want: 0},
	}

	choices := []string{"Web", "Mobile", "Desktop"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewLinePrompter(strings.NewReader(tt.input), io.Discard)
			got, err := p.Select(context.Background(), "Platform?", choices, tt.def)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Select() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLinePrompter_Input(t *testing.T) {
	p := NewLinePrompter(strings.NewReader("first line\r\n\n"), io.Discard)

	got, err := p.Input(context.Background(), "Describe", "")
	if err != nil || got != "first line" {
		t.Errorf("Input() = %q, %v, want %q", got, err, "first line")
	}
	got, err = p.Input(context.Background(), "Describe", "fallback")
	if err != nil || got != "fallback" {
		t.Errorf("Input() = %q, %v, want fallback", got, err)
	}
}

func TestLinePrompter_EOF(t *testing.T) {
	p := NewLinePrompter(strings.NewReader(""), io.Discard)
	if _, err := p.Confirm(context.Background(), "Continue?", false); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Confirm() error = %v, want ErrInterrupted", err)
	}
}

func TestLinePrompter_Cancelled(t *testing.T) {
	r, _ := io.Pipe()
	p := NewLinePrompter(r, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Input(ctx, "Describe", ""); !errors.Is(err, context.Canceled) {
		t.Errorf("Input() error = %v, want context.Canceled", err)
	}
}

func TestLinePrompter_ReadsAfterCancel(t *testing.T) {
	r, w := io.Pipe()
	p := NewLinePrompter(r, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := p.Input(ctx, "Describe", ""); !errors.Is(err, context.Canceled) {
		t.Fatalf("Input() error = %v, want context.Canceled", err)
	}

	go func() {
		_, _ = io.WriteString(w, "second\n")
		_ = w.Close()
	}()

	got, err := p.Input(context.Background(), "Describe", "")
	if err != nil {
		t.Fatalf("Input() error = %v", err)
	}
	if got != "second" {
		t.Errorf("Input() = %q, want second", got)
	}
	if _, err := p.Input(context.Background(), "Describe", ""); !errors.Is(err, ErrInterrupted) {
		t.Errorf("Input() after close error = %v, want ErrInterrupted", err)
	}
}

func TestSelectModel_Update(t *testing.T) {
	m := selectModel{message: "Platform?", choices: []string{"Web", "Mobile", "Desktop"}}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("j")})
	updated, cmd := updated.Update(tea.KeyMsg{Type: tea.KeyEnter})

	sm := updated.(selectModel)
	if sm.cursor != 2 || !sm.done {
		t.Errorf("cursor = %d, done = %v, want 2, true", sm.cursor, sm.done)
	}
	if cmd == nil {
		t.Error("enter should quit")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyUp})
	if got := updated.(selectModel).cursor; got != 2 {
		t.Errorf("up from top = %d, want wrap to 2", got)
	}
}

func TestConfirmModel_Update(t *testing.T) {
	m := confirmModel{message: "Continue?"}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("y")})
	if cm := updated.(confirmModel); !cm.value || !cm.done {
		t.Errorf("after y = %+v", cm)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !updated.(confirmModel).cancelled {
		t.Error("ctrl+c should cancel")
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cm := updated.(confirmModel); !cm.value {
		t.Errorf("toggle + enter = %v, want true", cm.value)
	}
}

func TestInputModel_Update(t *testing.T) {
	m := newInputModel("Describe", "default text", false)

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("habit tracker")})
	updated, _ = updated.Update(tea.KeyMsg{Type: tea.KeyEnter})

	im := updated.(inputModel)
	if got := im.result(); got != "habit tracker" {
		t.Errorf("result() = %q, want %q", got, "habit tracker")
	}
	if !strings.Contains(im.View(), "habit tracker") {
		t.Errorf("View() = %q", im.View())
	}

	empty, _ := newInputModel("Describe", "default text", false).Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := empty.(inputModel).result(); got != "default text" {
		t.Errorf("empty result() = %q, want default", got)
	}
}
