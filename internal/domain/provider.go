// Package domain contains the core entities shared by the invocation layer.
// These types are framework-agnostic and carry no transport details.
package domain

import (
	"fmt"
	"strings"
)

// ProviderType identifies an AI backend. Its string value is the name used in
// the configuration file.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderGemini ProviderType = "gemini"
	ProviderClaude ProviderType = "claude"
)

// Providers lists every supported provider in display order.
func Providers() []ProviderType {
	return []ProviderType{ProviderOpenAI, ProviderGemini, ProviderClaude}
}

// ParseProvider converts a configuration value into a ProviderType.
func ParseProvider(s string) (ProviderType, error) {
	p := ProviderType(strings.ToLower(strings.TrimSpace(s)))
	if p.IsValid() {
		return p, nil
	}
	return "", fmt.Errorf("unknown provider %q (expected openai, gemini or claude)", s)
}

// IsValid reports whether p is one of the supported providers.
func (p ProviderType) IsValid() bool {
	switch p {
	case ProviderOpenAI, ProviderGemini, ProviderClaude:
		return true
	}
	return false
}

// DisplayName returns a human-readable provider name.
func (p ProviderType) DisplayName() string {
	switch p {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderGemini:
		return "Google Gemini"
	case ProviderClaude:
		return "Anthropic Claude"
	}
	return string(p)
}
