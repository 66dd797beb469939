package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
)

func questionDescriptor() *Descriptor {
	return &Descriptor{
		Name:   "prd_interrogator",
		Strict: true,
		Root: Object(map[string]*Node{
			"questions": ArrayOf(Object(map[string]*Node{
				"question": String("the question"),
				"choices":  ArrayOf(String("")),
			})),
		}),
	}
}

func TestTranslate_Gemini(t *testing.T) {
	got := Translate(questionDescriptor(), DialectGemini)

	if got["type"] != "OBJECT" {
		t.Errorf("type = %v, want OBJECT", got["type"])
	}
	if _, ok := got["additionalProperties"]; ok {
		t.Error("additionalProperties should be dropped for gemini")
	}
	if !reflect.DeepEqual(got["required"], []string{"questions"}) {
		t.Errorf("required = %v, want [questions]", got["required"])
	}

	questions := got["properties"].(map[string]any)["questions"].(map[string]any)
	if questions["type"] != "ARRAY" {
		t.Errorf("questions.type = %v, want ARRAY", questions["type"])
	}
	item := questions["items"].(map[string]any)
	if item["type"] != "OBJECT" {
		t.Errorf("items.type = %v, want OBJECT", item["type"])
	}
	if _, ok := item["additionalProperties"]; ok {
		t.Error("nested additionalProperties should be dropped for gemini")
	}
	if !reflect.DeepEqual(item["required"], []string{"choices", "question"}) {
		t.Errorf("items.required = %v", item["required"])
	}
	if !reflect.DeepEqual(item["propertyOrdering"], []string{"choices", "question"}) {
		t.Errorf("items.propertyOrdering = %v, want [choices question]", item["propertyOrdering"])
	}
	if !reflect.DeepEqual(got["propertyOrdering"], []string{"questions"}) {
		t.Errorf("propertyOrdering = %v, want [questions]", got["propertyOrdering"])
	}
	choices := item["properties"].(map[string]any)["choices"].(map[string]any)
	if choices["items"].(map[string]any)["type"] != "STRING" {
		t.Errorf("choices.items.type = %v, want STRING", choices["items"])
	}
}

func TestTranslate_OpenAIKeepsClosedObjects(t *testing.T) {
	got := Translate(questionDescriptor(), DialectOpenAI)

	if got["type"] != "object" {
		t.Errorf("type = %v, want object", got["type"])
	}
	if got["additionalProperties"] != false {
		t.Errorf("additionalProperties = %v, want false", got["additionalProperties"])
	}
	if _, ok := got["propertyOrdering"]; ok {
		t.Error("propertyOrdering is gemini-only")
	}
}

func TestTranslate_DoesNotMutateInput(t *testing.T) {
	d := questionDescriptor()
	before, _ := json.Marshal(d.Root)

	for _, dialect := range []Dialect{DialectOpenAI, DialectGemini, DialectAnthropic} {
		out := Translate(d, dialect)
		out["type"] = "changed"
		out["required"].([]string)[0] = "changed"
	}

	after, _ := json.Marshal(d.Root)
	if !bytes.Equal(before, after) {
		t.Errorf("descriptor mutated:\nbefore %s\nafter  %s", before, after)
	}
}

func TestTranslate_Idempotent(t *testing.T) {
	d := questionDescriptor()
	for _, dialect := range []Dialect{DialectOpenAI, DialectGemini, DialectAnthropic} {
		t.Run(dialect.String(), func(t *testing.T) {
			a, err := json.Marshal(Translate(d, dialect))
			if err != nil {
				t.Fatal(err)
			}
			b, err := json.Marshal(Translate(d, dialect))
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.Equal(a, b) {
				t.Errorf("translations differ:\n%s\n%s", a, b)
			}
		})
	}
}

func TestTranslate_Nil(t *testing.T) {
	if Translate(nil, DialectGemini) != nil {
		t.Error("Translate(nil) should be nil")
	}
}

func TestCheckShape(t *testing.T) {
	d := questionDescriptor()

	tests := []struct {
		name    string
		value   any
		wantErr bool
	}{
		{
			name:  "valid",
			value: map[string]any{"questions": []any{map[string]any{"question": "Q", "choices": []any{"a"}}}},
		},
		{
			name:    "nested item not an object",
			value:   map[string]any{"questions": []any{"not an object"}},
			wantErr: true,
		},
		{
			name:    "nested choices not an array",
			value:   map[string]any{"questions": []any{map[string]any{"question": "Q", "choices": "a, b"}}},
			wantErr: true,
		},
		{
			name:    "nested required key missing",
			value:   map[string]any{"questions": []any{map[string]any{"question": "Q"}}},
			wantErr: true,
		},
		{
			name:    "nested extra key",
			value:   map[string]any{"questions": []any{map[string]any{"question": "Q", "choices": []any{}, "hint": "x"}}},
			wantErr: true,
		},
		{
			name:    "missing required key",
			value:   map[string]any{"other": 1},
			wantErr: true,
		},
		{
			name:    "wrong type",
			value:   map[string]any{"questions": "none"},
			wantErr: true,
		},
		{
			name:    "not an object",
			value:   []any{1, 2},
			wantErr: true,
		},
		{
			name:    "null",
			value:   nil,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := CheckShape(d, tt.value)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckShape() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				var se *ShapeError
				if !errors.As(err, &se) {
					t.Errorf("CheckShape() error type = %T, want *ShapeError", err)
				}
			}
		})
	}
}
