package httpclient

import (
	"bytes"
	"encoding/json"
	"strings"

	"webshop/pkg/errors"
)

// listEnvelopeKeys are the wrapper fields different endpoints put arrays under.
var listEnvelopeKeys = []string{"items", "data", "content"}

func marshalJSON(v interface{}) ([]byte, error) {
	return json.Marshal(v)
}

// ErrorMessage reduces an error body to something a user can read: the
// "error" or "message" field of a JSON object, or the trimmed text.
func ErrorMessage(body []byte) string {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return ""
	}
	if trimmed[0] == '{' {
		var obj map[string]interface{}
		if err := json.Unmarshal(trimmed, &obj); err == nil {
			for _, key := range []string{"error", "message"} {
				if s, ok := obj[key].(string); ok && strings.TrimSpace(s) != "" {
					return strings.TrimSpace(s)
				}
			}
		}
	}
	text := string(trimmed)
	if len(text) > 300 {
		text = text[:300]
	}
	return text
}

// DecodeList accepts a bare JSON array or an object wrapping the array under
// items, data or content. Any other shape yields an empty list.
func DecodeList[T any](body []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(body)
	out := []T{}
	if len(trimmed) == 0 {
		return out, nil
	}

	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, errors.Internal("unexpected list payload", err)
		}
		return out, nil
	case '{':
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &obj); err != nil {
			return nil, errors.Internal("unexpected list payload", err)
		}
		for _, key := range listEnvelopeKeys {
			raw, ok := obj[key]
			if !ok {
				continue
			}
			raw = bytes.TrimSpace(raw)
			if len(raw) == 0 || raw[0] != '[' {
				continue
			}
			if err := json.Unmarshal(raw, &out); err != nil {
				return nil, errors.Internal("unexpected list payload", err)
			}
			return out, nil
		}
	}
	return out, nil
}

// DecodeObject decodes an object, unwrapping a "data" envelope when present.
func DecodeObject(body []byte, v interface{}) error {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return errors.Internal("unexpected object payload", nil)
	}

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &envelope); err == nil {
		_, hasID := envelope["id"]
		if inner, ok := envelope["data"]; ok && !hasID {
			inner = bytes.TrimSpace(inner)
			if len(inner) > 0 && inner[0] == '{' {
				trimmed = inner
			}
		}
	}

	if err := json.Unmarshal(trimmed, v); err != nil {
		return errors.Internal("unexpected object payload", err)
	}
	return nil
}

// HasField reports whether the top-level JSON object in body carries key at
// all, null included. Used to tell a trimmed response from a cleared field.
func HasField(body []byte, key string) bool {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(bytes.TrimSpace(body), &obj); err != nil {
		return false
	}
	if inner, ok := obj["data"]; ok {
		var nested map[string]json.RawMessage
		if json.Unmarshal(inner, &nested) == nil {
			if _, ok := nested[key]; ok {
				return true
			}
		}
	}
	_, ok := obj[key]
	return ok
}
