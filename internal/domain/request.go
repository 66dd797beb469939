package domain

import (
	"encoding/json"
	"fmt"

	"github.com/kstost/firstvibe/internal/schema"
)

// Purpose tags the document-generation phase a call serves.
type Purpose string

const (
	PurposeQuestion Purpose = "QUESTION"
	PurposePRD      Purpose = "PRD"
	PurposeTRD      Purpose = "TRD"
	PurposeTODO     Purpose = "TODO"
)

// Role is the author of a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single turn of the conversation sent to a provider.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}

// GenerationOptions carries optional knobs. Adapters ignore the ones their
// provider does not support.
type GenerationOptions struct {
	Verbosity       string `json:"verbosity,omitempty"`
	ReasoningEffort string `json:"reasoningEffort,omitempty"`
}

// Request is the canonical, provider-independent description of one AI call.
// It is built by a caller and never modified afterwards.
type Request struct {
	Purpose      Purpose
	Model        string
	Messages     []Message
	OutputSchema *schema.Descriptor
	Options      GenerationOptions
}

// Structured reports whether the caller asked for schema-constrained output.
func (r Request) Structured() bool {
	return r.OutputSchema != nil
}

// System returns the concatenated system instruction text.
func (r Request) System() string {
	var out string
	for _, m := range r.Messages {
		if m.Role != RoleSystem {
			continue
		}
		if out != "" {
			out += "\n\n"
		}
		out += m.Text
	}
	return out
}

// Conversation returns the non-system messages in order.
func (r Request) Conversation() []Message {
	msgs := make([]Message, 0, len(r.Messages))
	for _, m := range r.Messages {
		if m.Role != RoleSystem {
			msgs = append(msgs, m)
		}
	}
	return msgs
}

// Response is the normalized result of a successful call. Exactly one of
// Text or Data is meaningful: Data is set for structured calls.
type Response struct {
	Text string
	Data any
}

// IsStructured reports whether the response holds a parsed JSON value.
func (r Response) IsStructured() bool {
	return r.Data != nil
}

// Decode copies the structured payload into v.
func (r Response) Decode(v any) error {
	if r.Data == nil {
		return fmt.Errorf("response is free text, not structured data")
	}
	raw, err := json.Marshal(r.Data)
	if err != nil {
		return fmt.Errorf("failed to re-encode structured response: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to decode structured response: %w", err)
	}
	return nil
}

// Purposes lists every purpose in generation order.
func Purposes() []Purpose {
	return []Purpose{PurposeQuestion, PurposePRD, PurposeTRD, PurposeTODO}
}
