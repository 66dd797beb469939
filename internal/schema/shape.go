package schema

import (
	"fmt"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// ShapeError lists why a structured value does not fit its schema.
type ShapeError struct {
	Schema string
	Issues []string
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("response does not match schema %q: %s", e.Schema, strings.Join(e.Issues, "; "))
}

// CheckShape validates value against the full canonical tree of d: types,
// required keys, enums and closed objects at every depth.
func CheckShape(d *Descriptor, value any) error {
	if d == nil || d.Root == nil {
		return nil
	}
	if value == nil {
		return &ShapeError{Schema: d.Name, Issues: []string{"value is null"}}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(translateNode(d.Root, DialectOpenAI)),
		gojsonschema.NewGoLoader(value),
	)
	if err != nil {
		return fmt.Errorf("shape check for %q failed: %w", d.Name, err)
	}
	if result.Valid() {
		return nil
	}

	issues := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		issues = append(issues, e.String())
	}
	return &ShapeError{Schema: d.Name, Issues: issues}
}
