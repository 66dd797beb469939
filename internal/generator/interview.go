package generator

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/ui"
)

const (
	otherChoice = "Other (type your own)"
	backChoice  = "⬅️  Back"
)

var reviewActions = []string{
	"✅ Confirm and generate the PRD",
	"✏️  Edit an answer",
	"🔄 Start over",
}

// describe returns the project description from opts, piped input or an
// interactive multi-line prompt.
func (g *Generator) describe(ctx context.Context, opts RunOptions, piped io.Reader) (string, error) {
	if desc := strings.TrimSpace(opts.Description); desc != "" {
		g.console.Styled(ui.Mint, "📝 Project description: "+desc)
		return desc, nil
	}

	if piped != nil {
		data, err := io.ReadAll(piped)
		if err != nil {
			return "", fmt.Errorf("failed to read description from stdin: %w", err)
		}
		desc := strings.TrimSpace(string(data))
		if desc == "" {
			return "", ErrEmptyDescription
		}
		g.console.Styled(ui.Mint, "📝 Project description (stdin): "+desc)
		return desc, nil
	}

	g.console.Styled(ui.Pink.Bold(true), "🎯 Describe the project you want to build.")
	g.console.Muted("Enter as many lines as you like. Submit an empty line to finish.")
	desc, err := g.readLines(ctx, "")
	if err != nil {
		return "", err
	}
	if desc == "" {
		return "", ErrEmptyDescription
	}
	return desc, nil
}

// readLines collects lines until an empty one. When nothing is entered it
// returns fallback.
func (g *Generator) readLines(ctx context.Context, fallback string) (string, error) {
	var lines []string
	for {
		line, err := g.prompter.Input(ctx, "❯", "")
		if err != nil {
			return "", err
		}
		line = strings.TrimRight(line, " \t")
		if strings.TrimSpace(line) == "" {
			break
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		return fallback, nil
	}
	return strings.Join(lines, "\n"), nil
}

// interview asks up to total questions, each generated from the answers so
// far.
func (g *Generator) interview(ctx context.Context, description string, total int, auto bool) (*Session, error) {
	s := NewSession(description, g.now())
	g.console.Styled(headingStyle, fmt.Sprintf("\n🤔 I will ask up to %d questions to sharpen the requirements.", total))

	for turn := 1; turn <= total; turn++ {
		q, ok, err := g.nextQuestion(ctx, s, total)
		if err != nil {
			return nil, err
		}
		if !ok {
			g.logger.Warn("model returned no question, skipping turn", "turn", turn)
			continue
		}
		if auto && len(q.Choices) == 0 {
			g.logger.Warn("question has no choices to auto-select, skipping turn", "turn", turn, "question", q.Question)
			continue
		}
		answer, err := g.ask(ctx, q, turn, total, "", auto)
		if err != nil {
			return nil, err
		}
		s.Add(q, answer)
	}
	return s, nil
}

// nextQuestion requests the next question. Only the first returned question
// is used; ok is false when the model returned none.
func (g *Generator) nextQuestion(ctx context.Context, s *Session, total int) (Question, bool, error) {
	req := domain.Request{
		Purpose: domain.PurposeQuestion,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Text: questionSystemPrompt(total)},
			{Role: domain.RoleUser, Text: conversationHistory(s)},
		},
		OutputSchema: QuestionSchema(),
	}
	resp, err := g.invoke(ctx, req)
	if err != nil {
		return Question{}, false, err
	}

	var out struct {
		Questions []Question `json:"questions"`
	}
	if err := resp.Decode(&out); err != nil {
		return Question{}, false, err
	}
	if len(out.Questions) == 0 || strings.TrimSpace(out.Questions[0].Question) == "" {
		return Question{}, false, nil
	}
	q := out.Questions[0]
	q.Choices = slices.DeleteFunc(slices.Clone(q.Choices), func(c string) bool {
		return strings.TrimSpace(c) == ""
	})
	return q, true, nil
}

// ask shows one question and returns the chosen or typed answer. current is
// the previous answer when editing.
func (g *Generator) ask(ctx context.Context, q Question, turn, total int, current string, auto bool) (string, error) {
	choices := append(slices.Clone(q.Choices), otherChoice)
	def := 0
	if current != "" {
		if i := slices.Index(q.Choices, current); i >= 0 {
			def = i
		} else {
			def = len(choices) - 1
		}
	}

	header := fmt.Sprintf("[%d/%d] %s", turn, total, q.Question)
	if auto {
		g.console.Styled(ui.LightPurple.Bold(true), "\n"+header)
		answer := choices[def]
		if answer == otherChoice {
			answer = current
		}
		g.console.Styled(ui.Yellow, "🤖 Auto-selected: "+answer)
		return answer, nil
	}

	message := header
	if current != "" {
		message += "\n  Current answer: " + ui.Truncate(current, 60)
	}
	for {
		idx, err := g.prompter.Select(ctx, message, choices, def)
		if err != nil {
			return "", err
		}
		if choices[idx] != otherChoice {
			return choices[idx], nil
		}

		g.console.Muted("Type your answer. Submit an empty line to finish.")
		fallback := ""
		if current != "" && !slices.Contains(q.Choices, current) {
			fallback = current
		}
		custom, err := g.readLines(ctx, fallback)
		if err != nil {
			return "", err
		}
		if custom != "" {
			return custom, nil
		}
		g.console.Warn("Please enter an answer.")
	}
}

// review shows the answers and lets the operator confirm, edit or restart.
// It returns false when the interview should start over.
func (g *Generator) review(ctx context.Context, s *Session, total int, auto bool) (bool, error) {
	if auto {
		g.console.Summary(s.Project.Description, summaryOf(s))
		g.console.Styled(ui.Yellow, "\n📋 Non-interactive mode: answers confirmed automatically.")
		return true, nil
	}

	for {
		g.console.Summary(s.Project.Description, summaryOf(s))
		action, err := g.prompter.Select(ctx, "Review the answers above. What would you like to do?", reviewActions, 0)
		if err != nil {
			return false, err
		}

		switch action {
		case 0:
			return true, nil
		case 1:
			if err := g.edit(ctx, s, total); err != nil {
				return false, err
			}
		case 2:
			restart, err := g.prompter.Confirm(ctx, "Really start over? All current answers will be lost.", false)
			if err != nil {
				return false, err
			}
			if restart {
				return false, nil
			}
		}
	}
}

func (g *Generator) edit(ctx context.Context, s *Session, total int) error {
	if total < len(s.History) {
		total = len(s.History)
	}
	choices := make([]string, 0, len(s.History)+1)
	for i, qa := range s.History {
		choices = append(choices, fmt.Sprintf("❓ [%d] %s → %q",
			i+1, ui.Truncate(qa.Question, 40), ui.Truncate(qa.Answer, 30)))
	}
	choices = append(choices, backChoice)

	idx, err := g.prompter.Select(ctx, "Which answer do you want to change?", choices, 0)
	if err != nil {
		return err
	}
	if idx == len(s.History) {
		return nil
	}

	qa := &s.History[idx]
	answer, err := g.ask(ctx, Question{Question: qa.Question, Choices: qa.Choices}, idx+1, total, qa.Answer, false)
	if err != nil {
		return err
	}
	qa.Answer = answer
	g.console.Success(fmt.Sprintf("Answer %d updated.", idx+1))
	return nil
}

func summaryOf(s *Session) []ui.QA {
	qas := make([]ui.QA, 0, len(s.History))
	for _, qa := range s.History {
		qas = append(qas, ui.QA{Question: qa.Question, Answer: qa.Answer})
	}
	return qas
}

// conversationHistory renders the session for the question generator.
func conversationHistory(s *Session) string {
	children := []Tag{Elem("project_description", Text(s.Project.Description))}
	for _, qa := range s.History {
		children = append(children, Elem("qa",
			Elem("question", Text(qa.Question)),
			Elem("answer", Text(qa.Answer)),
		))
	}
	return Tagify(Elem("conversation_history", children...))
}
