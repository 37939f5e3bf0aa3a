package common

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/xeipuuv/gojsonschema"
)

// ValidateOutput checks structured against schema. It returns one message
// per violation, or nil when the payload conforms.
func ValidateOutput(schema *jsonschema.Schema, structured any) ([]string, error) {
	if schema == nil || structured == nil {
		return nil, nil
	}

	rawSchema, err := json.Marshal(schema)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal schema: %w", err)
	}
	rawDoc, err := json.Marshal(structured)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal output: %w", err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(rawSchema),
		gojsonschema.NewBytesLoader(rawDoc),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to validate output: %w", err)
	}
	if result.Valid() {
		return nil, nil
	}

	violations := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		violations = append(violations, e.String())
	}
	return violations, nil
}

// joinViolations renders violations on one line for logging.
func joinViolations(v []string) string {
	return strings.Join(v, "; ")
}
