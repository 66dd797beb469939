// Package normalize reduces provider response envelopes to plain text or a
// parsed JSON value.
package normalize

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/kstost/firstvibe/internal/domain"
)

// Malformed response signals. Each is distinct so logs and tests can tell
// them apart; all of them are retried as malformed output.
var (
	ErrEmptyEnvelope  = errors.New("empty response envelope")
	ErrUndecodable    = errors.New("response body is not valid JSON")
	ErrMissingContent = errors.New("response has no content array")
	ErrEmptyContent   = errors.New("response content array is empty")
	ErrNoText         = errors.New("response contains no usable text")
	ErrNoJSON         = errors.New("response contains no valid JSON value")
)

// BlockKind distinguishes content block types.
type BlockKind int

const (
	BlockText BlockKind = iota
	BlockToolInput
	BlockOther
)

// Block is one provider content block in provider order.
type Block struct {
	Kind  BlockKind
	Text  string
	Input json.RawMessage
}

// Usage holds token counts reported by the provider, zero when unknown.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Envelope is implemented by each provider's decoded response type.
type Envelope interface {
	// FlatText returns a single flattened text field if the provider
	// exposes one.
	FlatText() (string, bool)
	// Blocks returns the content blocks. The boolean is false when the
	// content array is absent from the response altogether.
	Blocks() ([]Block, bool)
	// Usage returns token accounting for the call.
	Usage() Usage
}

// IsMalformed reports whether err is one of the normalizer's signals.
func IsMalformed(err error) bool {
	return errors.Is(err, ErrEmptyEnvelope) ||
		errors.Is(err, ErrUndecodable) ||
		errors.Is(err, ErrMissingContent) ||
		errors.Is(err, ErrEmptyContent) ||
		errors.Is(err, ErrNoText) ||
		errors.Is(err, ErrNoJSON)
}

// Extract applies the extraction rules to env. For structured calls the
// result always carries a parsed value in Data; otherwise it carries Text.
func Extract(env Envelope, structured bool) (domain.Response, error) {
	if env == nil {
		return domain.Response{}, ErrEmptyEnvelope
	}

	blocks, present := env.Blocks()

	if structured {
		for _, b := range blocks {
			if b.Kind != BlockToolInput || len(b.Input) == 0 {
				continue
			}
			var v any
			if err := json.Unmarshal(b.Input, &v); err != nil || v == nil {
				return domain.Response{}, fmt.Errorf("%w: tool input: %v", ErrNoJSON, err)
			}
			return domain.Response{Data: v}, nil
		}
	}

	text, err := pickText(env, blocks, present)
	if err != nil {
		return domain.Response{}, err
	}

	if !structured {
		return domain.Response{Text: text}, nil
	}

	v := ExtractJSON(text)
	if v == nil {
		return domain.Response{}, ErrNoJSON
	}
	return domain.Response{Data: v}, nil
}

func pickText(env Envelope, blocks []Block, present bool) (string, error) {
	if flat, ok := env.FlatText(); ok && strings.TrimSpace(flat) != "" {
		return flat, nil
	}
	if !present {
		return "", ErrMissingContent
	}
	if len(blocks) == 0 {
		return "", ErrEmptyContent
	}
	for _, b := range blocks {
		if b.Kind == BlockText && strings.TrimSpace(b.Text) != "" {
			return b.Text, nil
		}
	}
	return "", ErrNoText
}
