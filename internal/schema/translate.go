package schema

import (
	"maps"
	"slices"
	"strings"
)

// Dialect selects the schema flavor a provider accepts.
type Dialect int

const (
	// DialectOpenAI keeps the tree as-is, including additionalProperties.
	DialectOpenAI Dialect = iota
	// DialectGemini drops strict and additionalProperties, uppercases
	// type names and pins propertyOrdering.
	DialectGemini
	// DialectAnthropic keeps the tree as a tool input_schema.
	DialectAnthropic
)

func (d Dialect) String() string {
	switch d {
	case DialectGemini:
		return "gemini"
	case DialectAnthropic:
		return "anthropic"
	default:
		return "openai"
	}
}

// Translate renders d.Root into the given dialect. The result is a fresh
// map tree; d is never modified. The same input always yields the same
// output, and encoding/json sorts map keys, so the encoded form is stable.
func Translate(d *Descriptor, dialect Dialect) map[string]any {
	if d == nil || d.Root == nil {
		return nil
	}
	return translateNode(d.Root, dialect)
}

func translateNode(n *Node, dialect Dialect) map[string]any {
	out := make(map[string]any)

	typ := n.Type
	if dialect == DialectGemini {
		typ = strings.ToUpper(typ)
	}
	out["type"] = typ

	if n.Description != "" {
		out["description"] = n.Description
	}
	if len(n.Enum) > 0 {
		out["enum"] = append([]string(nil), n.Enum...)
	}
	if len(n.Properties) > 0 {
		props := make(map[string]any, len(n.Properties))
		for name, child := range n.Properties {
			props[name] = translateNode(child, dialect)
		}
		out["properties"] = props
		if dialect == DialectGemini {
			out["propertyOrdering"] = slices.Sorted(maps.Keys(n.Properties))
		}
	}
	if n.Items != nil {
		out["items"] = translateNode(n.Items, dialect)
	}
	if len(n.Required) > 0 {
		out["required"] = append([]string(nil), n.Required...)
	}
	if n.AdditionalProperties != nil && dialect != DialectGemini {
		out["additionalProperties"] = *n.AdditionalProperties
	}

	return out
}
