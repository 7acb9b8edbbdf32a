package providers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Flex decodes upstream fields that may be absent, a scalar, or a
// singleton list. The upstream payloads are loosely typed and the same key
// has shipped in all three shapes across generations; every call site
// normalizes through this one primitive instead of ad hoc checks.
type Flex string

// String returns the normalized scalar value.
func (f Flex) String() string { return string(f) }

// IsZero reports whether the field was absent or empty.
func (f Flex) IsZero() bool { return f == "" }

// Int parses the value as an integer, returning nil when absent or
// unparseable.
func (f Flex) Int() *int {
	if f == "" {
		return nil
	}
	n, err := strconv.Atoi(string(f))
	if err != nil {
		return nil
	}
	return &n
}

// UnmarshalJSON accepts null, a string, a number, a bool, or a list whose
// first element is any of those.
func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	switch data[0] {
	case '[':
		var list []json.RawMessage
		if err := json.Unmarshal(data, &list); err != nil {
			return err
		}
		if len(list) == 0 {
			*f = ""
			return nil
		}
		return f.UnmarshalJSON(list[0])
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = Flex(s)
		return nil
	case '{':
		return fmt.Errorf("flex: cannot normalize object value")
	default:
		// Number or bool; keep the literal text.
		*f = Flex(string(data))
		return nil
	}
}

// MarshalJSON round-trips the scalar form.
func (f Flex) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(f))
}

// First returns the first non-empty value of a repeated XML element. The
// legacy servlets sometimes wrap team abbreviations in a single-element
// list; decoding into a slice and unwrapping here is the XML side of the
// same normalization.
func First(values []string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
