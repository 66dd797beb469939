package generator

import (
	"context"
	"fmt"
	"strings"

	"github.com/kstost/firstvibe/internal/domain"
)

// requirements renders the interview as the PRD prompt.
func requirements(s *Session) string {
	children := []Tag{Elem("project_description", Text(s.Project.Description))}
	for _, qa := range s.History {
		children = append(children, Elem("requirement",
			Elem("question", Text(qa.Question)),
			Elem("answer", Text(qa.Answer)),
		))
	}
	return Tagify(Elem("project_requirements", children...))
}

func (g *Generator) writePRD(ctx context.Context, s *Session) (string, error) {
	g.console.Styled(headingStyle, "\n📄 Generating the PRD...")
	text, err := g.document(ctx, domain.PurposePRD, prdSystemPrompt, requirements(s))
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(g.path(PRDFile), []byte(text), 0o644); err != nil {
		return "", err
	}
	return text, nil
}

func (g *Generator) writeTRD(ctx context.Context, prd string) (string, error) {
	g.console.Styled(headingStyle, "\n🔧 Generating the TRD...")
	text, err := g.document(ctx, domain.PurposeTRD, trdSystemPrompt, Tagify(Elem("prd", Text(prd))))
	if err != nil {
		return "", err
	}
	if err := WriteFileAtomic(g.path(TRDFile), []byte(text), 0o644); err != nil {
		return "", err
	}
	return text, nil
}

func (g *Generator) writeTODO(ctx context.Context, trd string) (*TodoList, error) {
	g.console.Styled(headingStyle, "\n📝 Generating the TODO list...")
	req := domain.Request{
		Purpose: domain.PurposeTODO,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Text: todoSystemPrompt},
			{Role: domain.RoleUser, Text: Tagify(Elem("trd", Text(trd)))},
		},
		OutputSchema: TodoSchema(),
	}
	resp, err := g.invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	var todo TodoList
	if err := resp.Decode(&todo); err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(g.path(TODOFile), []byte(todo.Markdown()), 0o644); err != nil {
		return nil, err
	}
	data, err := todo.YAML()
	if err != nil {
		return nil, err
	}
	if err := WriteFileAtomic(g.path(TODOYAMLFile), data, 0o644); err != nil {
		return nil, err
	}
	return &todo, nil
}

// document performs a free-text call and returns the trimmed text.
func (g *Generator) document(ctx context.Context, purpose domain.Purpose, system, user string) (string, error) {
	req := domain.Request{
		Purpose: purpose,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Text: system},
			{Role: domain.RoleUser, Text: user},
		},
	}
	resp, err := g.invoke(ctx, req)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("%s: model returned an empty document", purpose)
	}
	return text + "\n", nil
}
