package providertest

import (
	"encoding/json"

	"github.com/kstost/firstvibe/internal/domain"
)

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(b)
}

// OpenAIText is a Responses API body whose message holds text.
func OpenAIText(text string) string {
	return mustJSON(map[string]any{
		"id":     "resp_test",
		"status": "completed",
		"output": []any{
			map[string]any{"type": "reasoning", "summary": []any{}},
			map[string]any{
				"type": "message",
				"role": "assistant",
				"content": []any{
					map[string]any{"type": "output_text", "text": text},
				},
			},
		},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 20, "total_tokens": 30},
	})
}

// GeminiText is a generateContent body whose first candidate holds text.
func GeminiText(text string) string {
	return mustJSON(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
		"usageMetadata": map[string]any{"promptTokenCount": 10, "candidatesTokenCount": 20, "totalTokenCount": 30},
	})
}

// ClaudeText is a Messages API body with a single text block.
func ClaudeText(text string) string {
	return mustJSON(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"stop_reason": "end_turn",
		"content":     []any{map[string]any{"type": "text", "text": text}},
		"usage":       map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
}

// ClaudeTool is a Messages API body with a forced tool_use block.
func ClaudeTool(input any) string {
	return mustJSON(map[string]any{
		"id":          "msg_test",
		"type":        "message",
		"stop_reason": "tool_use",
		"content": []any{
			map[string]any{"type": "tool_use", "id": "toolu_1", "name": "emit_structured_json", "input": input},
		},
		"usage": map[string]any{"input_tokens": 10, "output_tokens": 20},
	})
}

// Text returns the text envelope for p.
func Text(p domain.ProviderType, text string) string {
	switch p {
	case domain.ProviderGemini:
		return GeminiText(text)
	case domain.ProviderClaude:
		return ClaudeText(text)
	default:
		return OpenAIText(text)
	}
}

// Structured returns the envelope p produces for schema-constrained output:
// a tool_use block for Claude, JSON text for the others.
func Structured(p domain.ProviderType, value any) string {
	if p == domain.ProviderClaude {
		return ClaudeTool(value)
	}
	return Text(p, mustJSON(value))
}
