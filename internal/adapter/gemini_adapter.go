package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/kstost/firstvibe/internal/auditlog"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/normalize"
	"github.com/kstost/firstvibe/internal/schema"
)

// DefaultGeminiBaseURL is the default Gemini API endpoint.
const DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// GeminiAdapter implements AIProvider for the Google Gemini API.
type GeminiAdapter struct {
	client
}

// NewGeminiAdapter creates a new GeminiAdapter with the given API key.
func NewGeminiAdapter(apiKey string, opts ...Option) *GeminiAdapter {
	return &GeminiAdapter{client: newClient(apiKey, DefaultGeminiBaseURL, opts)}
}

// Name returns the provider identifier.
func (g *GeminiAdapter) Name() domain.ProviderType {
	return domain.ProviderGemini
}

// Dialect returns the schema flavor accepted by responseSchema.
func (g *GeminiAdapter) Dialect() schema.Dialect {
	return schema.DialectGemini
}

// Generate posts one generateContent request.
func (g *GeminiAdapter) Generate(ctx context.Context, call Call) (*Result, error) {
	body := g.mapToGeminiRequest(call)
	call.record(g.Name(), auditlog.DirectionRequest, body)

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, url.PathEscape(call.Request.Model))
	raw, err := g.postJSON(ctx, g.Name(), endpoint, map[string]string{
		"x-goog-api-key": g.apiKey,
	}, body)
	if err != nil {
		return nil, err
	}
	call.record(g.Name(), auditlog.DirectionResponse, rawPayload(raw))

	result := &Result{Provider: g.Name(), Raw: raw}
	if isEmptyBody(raw) {
		return result, nil
	}
	var resp GeminiResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("%w: gemini: %v", normalize.ErrUndecodable, err)
	}
	result.Envelope = &resp
	return result, nil
}

// mapToGeminiRequest converts the canonical request to Gemini format.
func (g *GeminiAdapter) mapToGeminiRequest(call Call) GeminiRequest {
	req := call.Request
	geminiReq := GeminiRequest{
		Contents: make([]GeminiContent, 0, len(req.Messages)),
	}

	for _, msg := range req.Conversation() {
		role := "user"
		if msg.Role == domain.RoleAssistant {
			// Gemini calls the assistant "model"
			role = "model"
		}
		geminiReq.Contents = append(geminiReq.Contents, GeminiContent{
			Role:  role,
			Parts: []GeminiPart{{Text: msg.Text}},
		})
	}

	if system := req.System(); system != "" {
		geminiReq.SystemInstruction = &GeminiContent{
			Parts: []GeminiPart{{Text: system}},
		}
	}

	if call.Schema != nil {
		geminiReq.GenerationConfig = &GeminiGenerationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   call.Schema,
		}
	}

	return geminiReq
}

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents          []GeminiContent         `json:"contents"`
	SystemInstruction *GeminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *GeminiGenerationConfig `json:"generationConfig,omitempty"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text    string `json:"text,omitempty"`
	Thought bool   `json:"thought,omitempty"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

// GeminiResponse represents a Gemini generateContent response.
type GeminiResponse struct {
	Candidates    []GeminiCandidate    `json:"candidates"`
	UsageMetadata *GeminiUsageMetadata `json:"usageMetadata,omitempty"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// GeminiUsageMetadata contains token usage information.
type GeminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

// FlatText is never available for Gemini.
func (r *GeminiResponse) FlatText() (string, bool) {
	return "", false
}

// Blocks returns the parts of the first candidate.
func (r *GeminiResponse) Blocks() ([]normalize.Block, bool) {
	if r.Candidates == nil {
		return nil, false
	}
	if len(r.Candidates) == 0 {
		return []normalize.Block{}, true
	}
	parts := r.Candidates[0].Content.Parts
	if parts == nil {
		return nil, false
	}
	blocks := make([]normalize.Block, 0, len(parts))
	for _, p := range parts {
		if p.Thought {
			blocks = append(blocks, normalize.Block{Kind: normalize.BlockOther})
			continue
		}
		blocks = append(blocks, normalize.Block{Kind: normalize.BlockText, Text: p.Text})
	}
	return blocks, true
}

// Usage returns token counts.
func (r *GeminiResponse) Usage() normalize.Usage {
	if r.UsageMetadata == nil {
		return normalize.Usage{}
	}
	return normalize.Usage{
		InputTokens:  r.UsageMetadata.PromptTokenCount,
		OutputTokens: r.UsageMetadata.CandidatesTokenCount,
	}
}
