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

const (
	// DefaultAnthropicBaseURL is the default Anthropic API endpoint.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// AnthropicVersion is sent in the anthropic-version header.
	AnthropicVersion = "2023-06-01"

	// AnthropicMaxTokens caps the length of a single answer.
	AnthropicMaxTokens = 4000

	// StructuredToolName is the forced tool used for schema output.
	StructuredToolName = "emit_structured_json"
)

// AnthropicAdapter implements AIProvider for the Anthropic Messages API.
// Structured output is obtained by forcing a single tool whose
// input_schema is the requested schema.
type AnthropicAdapter struct {
	client
}

// NewAnthropicAdapter creates a new AnthropicAdapter with the given API key.
func NewAnthropicAdapter(apiKey string, opts ...Option) *AnthropicAdapter {
	return &AnthropicAdapter{client: newClient(apiKey, DefaultAnthropicBaseURL, opts)}
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() domain.ProviderType {
	return domain.ProviderClaude
}

// Dialect returns the schema flavor accepted by input_schema.
func (a *AnthropicAdapter) Dialect() schema.Dialect {
	return schema.DialectAnthropic
}

// Generate posts one request to /v1/messages.
func (a *AnthropicAdapter) Generate(ctx context.Context, call Call) (*Result, error) {
	body := a.buildRequest(call)
	call.record(a.Name(), auditlog.DirectionRequest, body)

	raw, err := a.postJSON(ctx, a.Name(), a.baseURL+"/v1/messages", map[string]string{
		"x-api-key":         a.apiKey,
		"anthropic-version": AnthropicVersion,
	}, body)
	if err != nil {
		return nil, err
	}
	call.record(a.Name(), auditlog.DirectionResponse, rawPayload(raw))

	result := &Result{Provider: a.Name(), Raw: raw}
	if isEmptyBody(raw) {
		return result, nil
	}
	var resp AnthropicResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: claude: %v", normalize.ErrUndecodable, err)
	}
	result.Envelope = &resp
	return result, nil
}

func (a *AnthropicAdapter) buildRequest(call Call) AnthropicRequest {
	req := call.Request
	out := AnthropicRequest{
		Model:     req.Model,
		MaxTokens: AnthropicMaxTokens,
		Messages:  make([]AnthropicMessage, 0, len(req.Messages)),
	}

	if system := req.System(); system != "" {
		out.System = []AnthropicTextBlock{{Type: "text", Text: system}}
	}
	for _, m := range req.Conversation() {
		role := "user"
		if m.Role == domain.RoleAssistant {
			role = "assistant"
		}
		out.Messages = append(out.Messages, AnthropicMessage{
			Role:    role,
			Content: []AnthropicTextBlock{{Type: "text", Text: m.Text}},
		})
	}

	if call.Schema != nil {
		out.Tools = []AnthropicTool{{
			Name:        StructuredToolName,
			Description: "Return structured data as JSON according to the schema.",
			InputSchema: call.Schema,
		}}
		out.ToolChoice = &AnthropicToolChoice{Type: "tool", Name: StructuredToolName}
	}

	return out
}

// ============================================================================
// Anthropic Messages API Types
// ============================================================================

// AnthropicRequest represents a POST /v1/messages body.
type AnthropicRequest struct {
	Model      string               `json:"model"`
	MaxTokens  int                  `json:"max_tokens"`
	System     []AnthropicTextBlock `json:"system,omitempty"`
	Messages   []AnthropicMessage   `json:"messages"`
	Tools      []AnthropicTool      `json:"tools,omitempty"`
	ToolChoice *AnthropicToolChoice `json:"tool_choice,omitempty"`
}

// AnthropicTextBlock is a text content block.
type AnthropicTextBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// AnthropicMessage is one conversation turn.
type AnthropicMessage struct {
	Role    string               `json:"role"`
	Content []AnthropicTextBlock `json:"content"`
}

// AnthropicTool declares a tool the model may call.
type AnthropicTool struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	InputSchema map[string]any `json:"input_schema"`
}

// AnthropicToolChoice forces a specific tool.
type AnthropicToolChoice struct {
	Type string `json:"type"`
	Name string `json:"name"`
}

// AnthropicResponse represents a Messages API result.
type AnthropicResponse struct {
	ID         string                  `json:"id"`
	StopReason string                  `json:"stop_reason"`
	Content    []AnthropicContentBlock `json:"content"`
	TokenUsage *AnthropicUsage         `json:"usage,omitempty"`
}

// AnthropicContentBlock is a text or tool_use block in a response.
type AnthropicContentBlock struct {
	Type  string          `json:"type"`
	Text  string          `json:"text,omitempty"`
	Name  string          `json:"name,omitempty"`
	Input json.RawMessage `json:"input,omitempty"`
}

// AnthropicUsage contains token usage information.
type AnthropicUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// FlatText is never available for Anthropic.
func (r *AnthropicResponse) FlatText() (string, bool) {
	return "", false
}

// Blocks maps text and tool_use blocks in order.
func (r *AnthropicResponse) Blocks() ([]normalize.Block, bool) {
	if r.Content == nil {
		return nil, false
	}
	blocks := make([]normalize.Block, 0, len(r.Content))
	for _, c := range r.Content {
		switch c.Type {
		case "text":
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockText, Text: c.Text})
		case "tool_use":
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockToolInput, Input: c.Input})
		default:
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockOther})
		}
	}
	return blocks, true
}

// Usage returns token counts.
func (r *AnthropicResponse) Usage() normalize.Usage {
	if r.TokenUsage == nil {
		return normalize.Usage{}
	}
	return normalize.Usage{InputTokens: r.TokenUsage.InputTokens, OutputTokens: r.TokenUsage.OutputTokens}
}
