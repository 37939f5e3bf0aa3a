package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
)

// Recurrence is the human-readable recurrence rule of a task ("every
// monday"). It serialises as false when the task does not recur.
type Recurrence string

// MarshalJSON implements json.Marshaler.
func (r Recurrence) MarshalJSON() ([]byte, error) {
	if r == "" {
		return []byte("false"), nil
	}
	return json.Marshal(string(r))
}

// UnmarshalJSON implements json.Unmarshaler.
func (r *Recurrence) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("false")), bytes.Equal(data, []byte("null")):
		*r = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Recurrence(s)
		return nil
	default:
		return fmt.Errorf("recurring must be false or a string, got %s", data)
	}
}

// JSONSchema describes the false-or-string shape for output schemas.
func (Recurrence) JSONSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		OneOf: []*jsonschema.Schema{
			{Type: "boolean", Const: false},
			{Type: "string", Description: "Recurrence rule, e.g. \"every monday\""},
		},
	}
}
