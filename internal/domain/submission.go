package domain

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// ErrNotJSONObject is returned when a request body is not a single JSON object.
var ErrNotJSONObject = errors.New("request body must be a JSON object")

// Submission is a caller-supplied JSON object stamped with a sequential ID and
// a creation time. Fields are kept verbatim; no field is required.
type Submission struct {
	ID        int
	Timestamp time.Time
	Fields    map[string]json.RawMessage
}

// NewSubmission stamps fields with id and the current time.
func NewSubmission(id int, fields map[string]json.RawMessage) Submission {
	return Submission{ID: id, Timestamp: now(), Fields: fields}
}

// ParseSubmission decodes a request body into submission fields.
func ParseSubmission(body []byte) (map[string]json.RawMessage, error) {
	return decodeObject(body)
}

// MarshalJSON renders the caller's fields with "timestamp" and "id" set by the
// server, overriding any values the caller supplied under those keys.
func (s Submission) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(s.Fields)+2)
	for k, v := range s.Fields {
		out[k] = v
	}
	out["timestamp"] = s.Timestamp.Format(time.RFC3339Nano)
	out["id"] = s.ID
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *Submission) UnmarshalJSON(data []byte) error {
	fields, err := decodeObject(data)
	if err != nil {
		return err
	}

	var id int
	if raw, ok := fields["id"]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			return fmt.Errorf("submission id: %w", err)
		}
	}
	var ts time.Time
	if raw, ok := fields["timestamp"]; ok {
		if err := json.Unmarshal(raw, &ts); err != nil {
			return fmt.Errorf("submission timestamp: %w", err)
		}
	}
	delete(fields, "id")
	delete(fields, "timestamp")

	*s = Submission{ID: id, Timestamp: ts, Fields: fields}
	return nil
}

// decodeObject parses body as exactly one JSON object.
func decodeObject(body []byte) (map[string]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: body is empty", ErrNotJSONObject)
	}
	if trimmed[0] != '{' {
		return nil, ErrNotJSONObject
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("decode JSON body: %w", err)
	}
	return fields, nil
}

// stringField returns the string value at key, or "" when it is absent or not a string.
func stringField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	return stringValue(raw)
}

func stringValue(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case bool:
		return "boolean"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return fmt.Sprintf("%T", v)
	}
}
