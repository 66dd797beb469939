package prompt

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	questionStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#D7AFFF"))
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAFD7"))
	choiceStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B3E5FC"))
	answerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#BAFFC9"))
	helpStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// TeaPrompter renders prompts as bubbletea programs.
type TeaPrompter struct {
	in  io.Reader
	out io.Writer
}

// NewTeaPrompter creates a TeaPrompter on the given terminal streams.
func NewTeaPrompter(in io.Reader, out io.Writer) *TeaPrompter {
	return &TeaPrompter{in: in, out: orStdout(out)}
}

// Confirm shows a yes/no toggle.
func (p *TeaPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	m, err := p.run(ctx, confirmModel{message: message, value: def})
	if err != nil {
		return false, err
	}
	cm := m.(confirmModel)
	if cm.cancelled {
		return false, ErrInterrupted
	}
	return cm.value, nil
}

// Select shows an arrow-key list.
func (p *TeaPrompter) Select(ctx context.Context, message string, choices []string, def int) (int, error) {
	if len(choices) == 0 {
		return 0, errors.New("prompt: no choices")
	}
	if def < 0 || def >= len(choices) {
		def = 0
	}
	m, err := p.run(ctx, selectModel{message: message, choices: choices, cursor: def})
	if err != nil {
		return 0, err
	}
	sm := m.(selectModel)
	if sm.cancelled {
		return 0, ErrInterrupted
	}
	return sm.cursor, nil
}

// Input shows a text field.
func (p *TeaPrompter) Input(ctx context.Context, message string, def string) (string, error) {
	return p.input(ctx, newInputModel(message, def, false))
}

// Secret shows a masked text field.
func (p *TeaPrompter) Secret(ctx context.Context, message string) (string, error) {
	return p.input(ctx, newInputModel(message, "", true))
}

func (p *TeaPrompter) input(ctx context.Context, model inputModel) (string, error) {
	m, err := p.run(ctx, model)
	if err != nil {
		return "", err
	}
	im := m.(inputModel)
	if im.cancelled {
		return "", ErrInterrupted
	}
	return im.result(), nil
}

func (p *TeaPrompter) run(ctx context.Context, m tea.Model) (tea.Model, error) {
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(p.in),
		tea.WithOutput(p.out),
	)
	final, err := prog.Run()
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil {
		return nil, fmt.Errorf("prompt: %w", err)
	}
	return final, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// CONFIRM
// ══════════════════════════════════════════════════════════════════════════════

type confirmModel struct {
	message   string
	value     bool
	done      bool
	cancelled bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab", "h", "l":
		m.value = !m.value
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done {
		answer := "No"
		if m.value {
			answer = "Yes"
		}
		return questionStyle.Render("? "+m.message) + " " + answerStyle.Render(answer) + "\n"
	}
	yes, no := "Yes", "No"
	if m.value {
		yes = cursorStyle.Render("[Yes]")
	} else {
		no = cursorStyle.Render("[No]")
	}
	return questionStyle.Render("? "+m.message) + " " + yes + " / " + no + "\n"
}

// ══════════════════════════════════════════════════════════════════════════════
// SELECT
// ══════════════════════════════════════════════════════════════════════════════

type selectModel struct {
	message   string
	choices   []string
	cursor    int
	done      bool
	cancelled bool
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		} else {
			m.cursor = len(m.choices) - 1
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		} else {
			m.cursor = 0
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	var b strings.Builder
	b.WriteString(questionStyle.Render("? " + m.message))
	if m.done {
		b.WriteString(" " + answerStyle.Render(m.choices[m.cursor]) + "\n")
		return b.String()
	}
	b.WriteString("\n")
	for i, c := range m.choices {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("❯ " + c))
		} else {
			b.WriteString(choiceStyle.Render("  " + c))
		}
		b.WriteString("\n")
	}
	b.WriteString(helpStyle.Render("↑/↓ to move, enter to select"))
	b.WriteString("\n")
	return b.String()
}

// ══════════════════════════════════════════════════════════════════════════════
// INPUT
// ══════════════════════════════════════════════════════════════════════════════

type inputModel struct {
	message   string
	def       string
	input     textinput.Model
	secret    bool
	done      bool
	cancelled bool
}

func newInputModel(message, def string, secret bool) inputModel {
	ti := textinput.New()
	ti.Prompt = "❯ "
	ti.Placeholder = def
	ti.CharLimit = 0
	ti.Width = 60
	if secret {
		ti.EchoMode = textinput.EchoPassword
		ti.EchoCharacter = '*'
	}
	ti.Focus()
	return inputModel{message: message, def: def, input: ti, secret: secret}
}

func (m inputModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.cancelled = true
			return m, tea.Quit
		case tea.KeyEnter:
			m.done = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done {
		shown := m.result()
		if m.secret {
			shown = strings.Repeat("*", len(shown))
		}
		return questionStyle.Render("? "+m.message) + " " + answerStyle.Render(shown) + "\n"
	}
	return questionStyle.Render("? "+m.message) + "\n" + m.input.View() + "\n"
}

func (m inputModel) result() string {
	v := m.input.Value()
	if strings.TrimSpace(v) == "" {
		return m.def
	}
	return v
}
