package content

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Technologies is an ordered list of technology names.
//
// Stored data carries three encodings: a JSON array of strings, a JSON array
// of {"value": ...} objects (from the old tag-input widget, sometimes itself
// stored as a JSON string), and a comma-separated string. All of them decode
// to trimmed, non-empty names; encoding always writes a plain string array.
type Technologies []string

// technologyItem is the object form written by the tag-input widget.
type technologyItem struct {
	Value string `json:"value"`
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Technologies) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*t = Technologies{}
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = ParseTechnologies(s)
		return nil
	case '[':
		items, err := decodeTechnologyArray(data)
		if err != nil {
			return err
		}
		*t = items
		return nil
	default:
		return fmt.Errorf("technologies: unsupported JSON value %.20s", data)
	}
}

// MarshalJSON implements json.Marshaler. A nil list encodes as [].
func (t Technologies) MarshalJSON() ([]byte, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]string(t))
}

// ParseTechnologies normalizes the string encodings: a JSON array literal
// or a comma-separated list.
func ParseTechnologies(s string) Technologies {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if items, err := decodeTechnologyArray([]byte(s)); err == nil {
			return items
		}
	}
	return cleanTechnologies(strings.Split(s, ","))
}

// decodeTechnologyArray decodes an array whose elements are strings or
// {"value"} objects. Other element types are rejected.
func decodeTechnologyArray(data []byte) (Technologies, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, err
	}

	names := make([]string, 0, len(raw))
	for i, elem := range raw {
		elem = bytes.TrimSpace(elem)
		if len(elem) == 0 || bytes.Equal(elem, []byte("null")) {
			continue
		}
		switch elem[0] {
		case '"':
			var s string
			if err := json.Unmarshal(elem, &s); err != nil {
				return nil, err
			}
			names = append(names, s)
		case '{':
			var item technologyItem
			if err := json.Unmarshal(elem, &item); err != nil {
				return nil, err
			}
			names = append(names, item.Value)
		default:
			return nil, fmt.Errorf("technologies[%d]: expected string or {value} object", i)
		}
	}
	return cleanTechnologies(names), nil
}

// cleanTechnologies trims each name and drops empties, keeping order.
func cleanTechnologies(names []string) Technologies {
	out := make(Technologies, 0, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n != "" {
			out = append(out, n)
		}
	}
	return out
}
