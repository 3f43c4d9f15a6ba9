package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Ref is a reference to another entity as it arrives from clients: either the bare id or
// the populated object. Unmarshalling resolves it to the canonical id once so nothing
// downstream has to inspect the shape again.
type Ref string

// String returns the resolved id.
func (r Ref) String() string { return string(r) }

// UnmarshalJSON accepts "id", {"_id": "id"}, {"id": "id"} and objects whose _id is itself
// a populated object.
func (r *Ref) UnmarshalJSON(data []byte) error {
	id, err := resolveRef(data, 0)
	if err != nil {
		return err
	}
	*r = Ref(id)
	return nil
}

// MarshalJSON always writes the canonical id.
func (r Ref) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(r))
}

const maxRefDepth = 4

func resolveRef(data []byte, depth int) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}
	if depth > maxRefDepth {
		return "", fmt.Errorf("reference nested too deeply")
	}

	switch trimmed[0] {
	case '"':
		var id string
		if err := json.Unmarshal(trimmed, &id); err != nil {
			return "", fmt.Errorf("decode reference: %w", err)
		}
		return id, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return "", fmt.Errorf("decode reference object: %w", err)
		}
		for _, key := range []string{"_id", "id", "$oid"} {
			if raw, ok := obj[key]; ok {
				return resolveRef(raw, depth+1)
			}
		}
		return "", fmt.Errorf("reference object has no id")
	default:
		return "", fmt.Errorf("unsupported reference value %s", string(trimmed))
	}
}
