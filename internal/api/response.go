package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// Kind tags what a response body turned out to be.
type Kind int

const (
	// KindEmpty is an empty body or a JSON null.
	KindEmpty Kind = iota
	// KindList is a JSON array.
	KindList
	// KindPayload is any other JSON value (object, string, number, bool).
	KindPayload
	// KindText is a body that is not valid JSON.
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindList:
		return "list"
	case KindPayload:
		return "payload"
	case KindText:
		return "text"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Response is a backend response decoded once at the network boundary.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int

	// Kind tags which of Items, Value or Raw carries the body.
	Kind Kind

	// Items holds the elements of a KindList body.
	Items []any

	// Value holds a decoded KindPayload body.
	Value any

	// Raw is the body text exactly as received.
	Raw string
}

// DecodeResponse reads a body as text first, then tries JSON, then falls back
// to the raw text. It never fails: an empty body is a valid response.
func DecodeResponse(statusCode int, body []byte) Response {
	r := Response{StatusCode: statusCode, Raw: string(body)}

	if len(bytes.TrimSpace(body)) == 0 {
		r.Kind = KindEmpty
		return r
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil || dec.More() {
		r.Kind = KindText
		return r
	}

	switch val := v.(type) {
	case nil:
		r.Kind = KindEmpty
	case []any:
		r.Kind = KindList
		r.Items = val
	default:
		r.Kind = KindPayload
		r.Value = val
	}
	return r
}

// OK reports whether the status code is 2xx.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// ErrorMessages derives the human-readable failure list for a non-2xx response.
//
//   - a list body is used as-is, element by element (an empty list yields no messages)
//   - an object with a non-empty "message" or "error" field yields that field
//   - any other non-empty body yields its text
//   - an empty body yields "Erro {status}"
func (r Response) ErrorMessages() []string {
	switch r.Kind {
	case KindList:
		msgs := make([]string, 0, len(r.Items))
		for _, item := range r.Items {
			msgs = append(msgs, stringify(item))
		}
		return msgs
	case KindPayload:
		if obj, ok := r.Value.(map[string]any); ok {
			for _, key := range []string{"message", "error"} {
				if msg, ok := truthy(obj[key]); ok {
					return []string{msg}
				}
			}
			return []string{strings.TrimSpace(r.Raw)}
		}
		if msg, ok := truthy(r.Value); ok {
			return []string{msg}
		}
	case KindText:
		if text := strings.TrimSpace(r.Raw); text != "" {
			return []string{text}
		}
	}
	return []string{fmt.Sprintf("Erro %d", r.StatusCode)}
}

// SuccessData builds the data handed to a step's success handler: the
// payload's fields plus the locally parsed header list under "columns".
// A payload that is not an object is kept under "data".
func (r Response) SuccessData(columns []string) map[string]any {
	data := make(map[string]any)
	switch r.Kind {
	case KindPayload:
		if obj, ok := r.Value.(map[string]any); ok {
			for k, v := range obj {
				data[k] = v
			}
		} else {
			data["data"] = r.Value
		}
	case KindList:
		data["data"] = r.Items
	case KindText:
		data["data"] = r.Raw
	}
	if columns == nil {
		columns = []string{}
	}
	data["columns"] = columns
	return data
}

// truthy returns v as a message when it carries one: non-empty strings,
// non-zero numbers, true, and any non-empty container.
func truthy(v any) (string, bool) {
	switch val := v.(type) {
	case nil:
		return "", false
	case string:
		return val, val != ""
	case bool:
		return "true", val
	case json.Number:
		if f, err := val.Float64(); err == nil && f == 0 {
			return "", false
		}
		return val.String(), true
	default:
		return stringify(val), true
	}
}

func stringify(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}
