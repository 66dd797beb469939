package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/kstost/firstvibe/internal/domain"
)

// ErrUnknownProvider is returned when no factory is registered for a provider.
var ErrUnknownProvider = errors.New("no adapter registered for provider")

// Settings carries the per-attempt values a factory needs.
type Settings struct {
	APIKey     string
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger
}

func (s Settings) options() []Option {
	return []Option{
		WithBaseURL(s.BaseURL),
		WithHTTPClient(s.HTTPClient),
		WithLogger(s.Logger),
	}
}

// Factory builds an adapter for one attempt.
type Factory func(Settings) AIProvider

// Registry is the lookup table from provider to adapter factory.
type Registry struct {
	factories map[domain.ProviderType]Factory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[domain.ProviderType]Factory)}
}

// DefaultRegistry returns a registry with every built-in provider.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(domain.ProviderOpenAI, func(s Settings) AIProvider {
		return NewOpenAIAdapter(s.APIKey, s.options()...)
	})
	r.Register(domain.ProviderGemini, func(s Settings) AIProvider {
		return NewGeminiAdapter(s.APIKey, s.options()...)
	})
	r.Register(domain.ProviderClaude, func(s Settings) AIProvider {
		return NewAnthropicAdapter(s.APIKey, s.options()...)
	})
	return r
}

// Register adds or replaces the factory for p.
func (r *Registry) Register(p domain.ProviderType, f Factory) {
	r.factories[p] = f
}

// Build returns an adapter for p.
func (r *Registry) Build(p domain.ProviderType, s Settings) (AIProvider, error) {
	f, ok := r.factories[p]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, p)
	}
	return f(s), nil
}
