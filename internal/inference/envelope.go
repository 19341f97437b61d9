package inference

import (
	"encoding/json"
	"strings"
)

// envelopeKeys are the reply fields tried, in order, on a response envelope.
var envelopeKeys = []string{"response", "output", "text"}

// ExtractReplyText pulls the single reply string out of a response envelope.
// An array envelope is read through its first element. When no known key
// holds a value the whole envelope is returned serialized, and a body that is
// not JSON is returned as-is.
func ExtractReplyText(body []byte) string {
	var envelope any
	if err := json.Unmarshal(body, &envelope); err != nil {
		return string(body)
	}
	if list, ok := envelope.([]any); ok && len(list) > 0 {
		envelope = list[0]
	}

	obj, ok := envelope.(map[string]any)
	if !ok {
		if s, isString := envelope.(string); isString {
			return s
		}
		return strings.TrimSpace(string(body))
	}
	for _, key := range envelopeKeys {
		v, present := obj[key]
		if !present || v == nil {
			continue
		}
		if s, isString := v.(string); isString {
			if s != "" {
				return s
			}
			continue
		}
		if out, err := json.Marshal(v); err == nil {
			return string(out)
		}
	}
	out, err := json.Marshal(envelope)
	if err != nil {
		return string(body)
	}
	return string(out)
}
