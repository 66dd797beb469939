package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kstost/firstvibe/internal/auditlog"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/normalize"
	"github.com/kstost/firstvibe/internal/schema"
)

// DefaultOpenAIBaseURL is the default OpenAI API endpoint.
const DefaultOpenAIBaseURL = "https://api.openai.com/v1"

// OpenAIAdapter implements AIProvider for the OpenAI Responses API.
type OpenAIAdapter struct {
	client
}

// NewOpenAIAdapter creates a new OpenAIAdapter with the given API key.
func NewOpenAIAdapter(apiKey string, opts ...Option) *OpenAIAdapter {
	return &OpenAIAdapter{client: newClient(apiKey, DefaultOpenAIBaseURL, opts)}
}

// Name returns the provider identifier.
func (o *OpenAIAdapter) Name() domain.ProviderType {
	return domain.ProviderOpenAI
}

// Dialect returns the schema flavor used in text.format.
func (o *OpenAIAdapter) Dialect() schema.Dialect {
	return schema.DialectOpenAI
}

// Generate posts one request to /responses.
func (o *OpenAIAdapter) Generate(ctx context.Context, call Call) (*Result, error) {
	body := o.buildRequest(call)
	call.record(o.Name(), auditlog.DirectionRequest, body)

	raw, err := o.postJSON(ctx, o.Name(), o.baseURL+"/responses", map[string]string{
		"Authorization": "Bearer " + o.apiKey,
	}, body)
	if err != nil {
		return nil, err
	}
	call.record(o.Name(), auditlog.DirectionResponse, rawPayload(raw))

	result := &Result{Provider: o.Name(), Raw: raw}
	if isEmptyBody(raw) {
		return result, nil
	}
	var resp OpenAIResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: openai: %v", normalize.ErrUndecodable, err)
	}
	result.Envelope = &resp
	return result, nil
}

// buildRequest maps the canonical request to the Responses API format.
// System messages are sent with the developer role.
func (o *OpenAIAdapter) buildRequest(call Call) OpenAIRequest {
	req := call.Request
	out := OpenAIRequest{
		Model: req.Model,
		Input: make([]OpenAIInputMessage, 0, len(req.Messages)),
		Tools: []any{},
		Store: true,
	}

	for _, m := range req.Messages {
		role, kind := "user", "input_text"
		switch m.Role {
		case domain.RoleSystem:
			role = "developer"
		case domain.RoleAssistant:
			role, kind = "assistant", "output_text"
		}
		out.Input = append(out.Input, OpenAIInputMessage{
			Role:    role,
			Content: []OpenAIContent{{Type: kind, Text: m.Text}},
		})
	}

	text := &OpenAIText{
		Format:    OpenAIFormat{Type: "text"},
		Verbosity: req.Options.Verbosity,
	}
	if call.Schema != nil {
		strict := req.OutputSchema.Strict
		text.Format = OpenAIFormat{
			Type:   "json_schema",
			Name:   call.SchemaName(),
			Strict: &strict,
			Schema: call.Schema,
		}
	}
	out.Text = text

	if req.Options.ReasoningEffort != "" {
		out.Reasoning = &OpenAIReasoning{Effort: req.Options.ReasoningEffort}
	}

	return out
}

// ============================================================================
// OpenAI Responses API Types
// ============================================================================

// OpenAIRequest represents a POST /responses body.
type OpenAIRequest struct {
	Model     string               `json:"model"`
	Input     []OpenAIInputMessage `json:"input"`
	Text      *OpenAIText          `json:"text,omitempty"`
	Reasoning *OpenAIReasoning     `json:"reasoning,omitempty"`
	Tools     []any                `json:"tools"`
	Store     bool                 `json:"store"`
}

// OpenAIInputMessage is one input turn.
type OpenAIInputMessage struct {
	Role    string          `json:"role"`
	Content []OpenAIContent `json:"content"`
}

// OpenAIContent is a typed text part, used for both input and output.
type OpenAIContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// OpenAIText configures the output format and verbosity.
type OpenAIText struct {
	Format    OpenAIFormat `json:"format"`
	Verbosity string       `json:"verbosity,omitempty"`
}

// OpenAIFormat selects free text or a JSON schema.
type OpenAIFormat struct {
	Type   string         `json:"type"`
	Name   string         `json:"name,omitempty"`
	Strict *bool          `json:"strict,omitempty"`
	Schema map[string]any `json:"schema,omitempty"`
}

// OpenAIReasoning sets the reasoning effort.
type OpenAIReasoning struct {
	Effort string `json:"effort"`
}

// OpenAIResponse represents a Responses API result.
type OpenAIResponse struct {
	ID         string             `json:"id"`
	Status     string             `json:"status"`
	OutputText *string            `json:"output_text,omitempty"`
	Output     []OpenAIOutputItem `json:"output"`
	TokenUsage *OpenAIUsage       `json:"usage,omitempty"`
}

// OpenAIOutputItem is one element of the output array.
type OpenAIOutputItem struct {
	Type      string          `json:"type"`
	Role      string          `json:"role,omitempty"`
	Content   []OpenAIContent `json:"content,omitempty"`
	Name      string          `json:"name,omitempty"`
	Arguments string          `json:"arguments,omitempty"`
}

// OpenAIUsage contains token usage information.
type OpenAIUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// FlatText returns output_text when the API populated it.
func (r *OpenAIResponse) FlatText() (string, bool) {
	if r.OutputText == nil {
		return "", false
	}
	return *r.OutputText, true
}

// Blocks flattens message contents and function calls in output order.
func (r *OpenAIResponse) Blocks() ([]normalize.Block, bool) {
	if r.Output == nil {
		return nil, false
	}
	blocks := make([]normalize.Block, 0, len(r.Output))
	for _, item := range r.Output {
		switch item.Type {
		case "message":
			for _, c := range item.Content {
				if c.Type == "output_text" {
					blocks = append(blocks, normalize.Block{Kind: normalize.BlockText, Text: c.Text})
				} else {
					blocks = append(blocks, normalize.Block{Kind: normalize.BlockOther})
				}
			}
		case "function_call":
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockToolInput, Input: json.RawMessage(item.Arguments)})
		default:
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockOther})
		}
	}
	return blocks, true
}

// Usage returns token counts.
func (r *OpenAIResponse) Usage() normalize.Usage {
	if r.TokenUsage == nil {
		return normalize.Usage{}
	}
	return normalize.Usage{InputTokens: r.TokenUsage.InputTokens, OutputTokens: r.TokenUsage.OutputTokens}
}
