package generator

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// TodoList is the structured result of a TODO call.
type TodoList struct {
	Title  string      `json:"title" yaml:"title"`
	Phases []TodoPhase `json:"phases" yaml:"phases"`
}

// TodoPhase groups tasks.
type TodoPhase struct {
	Name  string     `json:"name" yaml:"name"`
	Tasks []TodoTask `json:"tasks" yaml:"tasks"`
}

// TodoTask is one unit of work.
type TodoTask struct {
	Title       string `json:"title" yaml:"title"`
	Description string `json:"description" yaml:"description"`
	Priority    string `json:"priority" yaml:"priority"`
	Done        bool   `json:"-" yaml:"done"`
}

// TaskCount returns the number of tasks over all phases.
func (l TodoList) TaskCount() int {
	n := 0
	for _, p := range l.Phases {
		n += len(p.Tasks)
	}
	return n
}

// Markdown renders the list as a GitHub task list.
func (l TodoList) Markdown() string {
	var b strings.Builder
	title := l.Title
	if title == "" {
		title = "Project"
	}
	fmt.Fprintf(&b, "# TODO: %s\n", title)

	for i, p := range l.Phases {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", i+1, p.Name)
		for _, t := range p.Tasks {
			fmt.Fprintf(&b, "- [ ] **%s**", t.Title)
			if t.Priority != "" {
				fmt.Fprintf(&b, " `%s`", t.Priority)
			}
			b.WriteString("\n")
			if d := strings.TrimSpace(t.Description); d != "" {
				fmt.Fprintf(&b, "  %s\n", d)
			}
		}
	}
	return b.String()
}

// YAML renders the list for tools that track task state.
func (l TodoList) YAML() ([]byte, error) {
	data, err := yaml.Marshal(l)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal todo list: %w", err)
	}
	return data, nil
}
