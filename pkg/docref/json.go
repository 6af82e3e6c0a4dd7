package docref

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Parse normalizes a raw JSON reference into a Reference using the
// precedence rules documented on the package.
func Parse(data []byte) (Reference, error) {
	var r Reference
	if err := r.UnmarshalJSON(data); err != nil {
		return Reference{}, err
	}
	return r, nil
}

// MarshalJSON implements json.Marshaler. The zero reference serializes
// as null; id and path references serialize as single-field objects so
// they round-trip through UnmarshalJSON.
func (r Reference) MarshalJSON() ([]byte, error) {
	switch r.kind {
	case KindID:
		return json.Marshal(map[string]uint{"id": r.id})
	case KindRouteID:
		return json.Marshal(map[string]uint{"documentId": r.id})
	case KindPath:
		return json.Marshal(map[string]string{"path": r.path})
	default:
		return []byte("null"), nil
	}
}

// UnmarshalJSON implements json.Unmarshaler.
//
// A string becomes a path reference, an integral positive number an id
// reference, and an object resolves by precedence id > documentId >
// path. Objects with none of these fields normalize to the zero
// Reference. Everything else fails with ErrInvalidReference.
func (r *Reference) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("%w: empty input", ErrInvalidReference)
	}

	switch data[0] {
	case '"':
		var path string
		if err := json.Unmarshal(data, &path); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidReference, err)
		}
		*r = ByPath(path)
		return nil

	case '{':
		return r.unmarshalObject(data)

	case '[', 't', 'f', 'n':
		return fmt.Errorf("%w: expected string, number or object, got %s",
			ErrInvalidReference, jsonTypeName(data[0]))

	default:
		id, err := parseID(json.Number(data))
		if err != nil {
			return err
		}
		*r = ByID(id)
		return nil
	}
}

func (r *Reference) unmarshalObject(data []byte) error {
	// Raw messages keep the quotes on string values, so a string-typed
	// id fails parseID instead of sneaking through json.Number's
	// tolerance for quoted numbers.
	var obj struct {
		ID         json.RawMessage `json:"id"`
		DocumentID json.RawMessage `json:"documentId"`
		Path       json.RawMessage `json:"path"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReference, err)
	}

	switch {
	case fieldPresent(obj.ID):
		id, err := parseID(json.Number(obj.ID))
		if err != nil {
			return err
		}
		*r = ByID(id)
	case fieldPresent(obj.DocumentID):
		id, err := parseID(json.Number(obj.DocumentID))
		if err != nil {
			return err
		}
		*r = ByRouteID(id)
	case fieldPresent(obj.Path):
		var path string
		if err := json.Unmarshal(obj.Path, &path); err != nil {
			return fmt.Errorf("%w: path must be a string: %v", ErrInvalidReference, err)
		}
		*r = ByPath(path)
	default:
		// An object with no recognized field is the empty reference,
		// never an error: only unusable shapes fail.
		*r = Reference{}
	}
	return nil
}

// fieldPresent distinguishes a field that arrived with a value from one
// that is absent or explicitly null.
func fieldPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && !bytes.Equal(raw, []byte("null"))
}

func parseID(n json.Number) (uint, error) {
	id, err := strconv.ParseUint(n.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: id must be a positive integer, got %s",
			ErrInvalidReference, n.String())
	}
	if id == 0 {
		return 0, fmt.Errorf("%w: id must be a positive integer, got 0",
			ErrInvalidReference)
	}
	return uint(id), nil
}

func jsonTypeName(b byte) string {
	switch b {
	case '[':
		return "array"
	case 't', 'f':
		return "boolean"
	case 'n':
		return "null"
	default:
		return "unknown"
	}
}
