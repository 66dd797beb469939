package generator

import "github.com/kstost/firstvibe/internal/schema"

// QuestionSchema constrains a QUESTION call to a list of questions with
// short answer choices. Only the first question is asked per turn.
func QuestionSchema() *schema.Descriptor {
	return &schema.Descriptor{
		Name:   "prd_interrogator",
		Strict: true,
		Root: schema.Object(map[string]*schema.Node{
			"questions": withDescription(schema.ArrayOf(schema.Object(map[string]*schema.Node{
				"question": schema.String("A short, clear, and focused question relevant to a PRD element."),
				"choices": withDescription(
					schema.ArrayOf(schema.String("")),
					"Short, clear choice options (4-5 options) that are easy to understand and select.",
				),
			})), "A list of short, clear PRD-related questions to ask the user. Each question should be concise and easy to understand."),
		}),
	}
}

// TodoSchema constrains a TODO call to phases of prioritized tasks.
func TodoSchema() *schema.Descriptor {
	return &schema.Descriptor{
		Name:   "todo_list",
		Strict: true,
		Root: schema.Object(map[string]*schema.Node{
			"title": schema.String("Short name of the project."),
			"phases": withDescription(schema.ArrayOf(schema.Object(map[string]*schema.Node{
				"name": schema.String("Phase name, e.g. Setup, Core features, Release."),
				"tasks": schema.ArrayOf(schema.Object(map[string]*schema.Node{
					"title":       schema.String("Imperative task title."),
					"description": schema.String("One or two sentences on what done looks like."),
					"priority":    schema.StringEnum("Task priority.", "high", "medium", "low"),
				})),
			})), "Development phases in execution order."),
		}),
	}
}

func withDescription(n *schema.Node, desc string) *schema.Node {
	n.Description = desc
	return n
}
