// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to hide each provider's wire contract behind a
// common interface.
package adapter

import (
	"context"
	"fmt"

	"github.com/kstost/firstvibe/internal/auditlog"
	"github.com/kstost/firstvibe/internal/domain"
	"github.com/kstost/firstvibe/internal/normalize"
	"github.com/kstost/firstvibe/internal/schema"
)

// AIProvider defines the interface for AI provider adapters.
// All provider implementations must satisfy this interface.
type AIProvider interface {
	// Name returns the provider this adapter speaks to.
	Name() domain.ProviderType

	// Dialect returns the structured-output schema flavor the provider accepts.
	Dialect() schema.Dialect

	// Generate performs exactly one outbound call. Transport and status
	// failures are returned as-is; the caller decides whether to retry.
	// When call.Schema is set the provider is forced into
	// schema-constrained generation.
	Generate(ctx context.Context, call Call) (*Result, error)
}

// Call is the input of a single provider attempt.
type Call struct {
	Request domain.Request

	// Schema is Request.OutputSchema already translated to the adapter's
	// dialect. Nil means free text.
	Schema map[string]any

	// Recorder receives request/response audit entries. Nil disables it.
	Recorder auditlog.Recorder
}

// SchemaName returns the schema name sent to the provider.
func (c Call) SchemaName() string {
	if c.Request.OutputSchema != nil && c.Request.OutputSchema.Name != "" {
		return c.Request.OutputSchema.Name
	}
	return "structured_output"
}

// Result is the provider's native response. Raw is the unmodified body.
// Envelope is nil when the body was empty.
type Result struct {
	Provider domain.ProviderType
	Raw      []byte
	Envelope normalize.Envelope
}

// StatusError is returned for any non-2xx provider response.
type StatusError struct {
	Provider   domain.ProviderType
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error [%d]: %s", e.Provider, e.StatusCode, e.Message)
}

func (c Call) record(provider domain.ProviderType, direction auditlog.Direction, payload any) {
	if c.Recorder == nil {
		return
	}
	c.Recorder.Record(auditlog.Entry{
		Purpose:   string(c.Request.Purpose),
		Direction: direction,
		Provider:  string(provider),
		Model:     c.Request.Model,
		Payload:   payload,
	})
}
