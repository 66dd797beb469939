// Package schema holds the canonical structured-output description and
// translates it into the dialect each AI provider accepts.
package schema

import "slices"

// Primitive type names used in the canonical tree.
const (
	TypeObject  = "object"
	TypeArray   = "array"
	TypeString  = "string"
	TypeNumber  = "number"
	TypeInteger = "integer"
	TypeBoolean = "boolean"
)

// Node is one level of a JSON-Schema-like tree.
type Node struct {
	Type                 string           `json:"type"`
	Description          string           `json:"description,omitempty"`
	Enum                 []string         `json:"enum,omitempty"`
	Properties           map[string]*Node `json:"properties,omitempty"`
	Items                *Node            `json:"items,omitempty"`
	Required             []string         `json:"required,omitempty"`
	AdditionalProperties *bool            `json:"additionalProperties,omitempty"`
}

// Descriptor names a schema and carries the strict flag for providers that
// support strict schema adherence.
type Descriptor struct {
	Name   string
	Strict bool
	Root   *Node
}

// Object builds a closed object node where every property is required.
func Object(props map[string]*Node) *Node {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	slices.Sort(required)
	closed := false
	return &Node{
		Type:                 TypeObject,
		Properties:           props,
		Required:             required,
		AdditionalProperties: &closed,
	}
}

// ArrayOf builds an array node.
func ArrayOf(items *Node) *Node {
	return &Node{Type: TypeArray, Items: items}
}

// String builds a string node with an optional description.
func String(description string) *Node {
	return &Node{Type: TypeString, Description: description}
}

// StringEnum builds a string node restricted to values.
func StringEnum(description string, values ...string) *Node {
	return &Node{Type: TypeString, Description: description, Enum: values}
}
