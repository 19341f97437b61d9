package normalize

import (
	"encoding/json"
	"errors"
	"io"
	"strings"
)

// maxCandidates bounds how many opening braces are tried as payload starts.
const maxCandidates = 32

// Reply is an upstream reply classified once: either StrictPayload or ProseOnly.
type Reply interface {
	isReply()
}

// StrictPayload is a JSON object recovered from the reply text.
type StrictPayload struct {
	Fields map[string]any
}

// ProseOnly is a reply that carried no usable JSON object.
type ProseOnly struct {
	Text string
}

func (StrictPayload) isReply() {}
func (ProseOnly) isReply()     {}

// payloadKeys are top-level keys that identify an analysis payload, in both
// the upstream schema naming and the record's own naming.
var payloadKeys = []string{
	"productDetails", "product",
	"variantsNarrative",
	"comparisonTable", "comparisonRows",
	"recommendations",
	"confidence",
}

// Classify locates a structured payload inside raw.
//
// Each '{' is tried in order as the start of exactly one JSON value, so prose
// and stray braces around the payload are tolerated. The first decoded object
// that carries a known payload key wins. A candidate that fails to decode
// rules out every '{' inside it, so fragments of a malformed object are never
// taken for the payload. Failing that, the span between the first '{' and the
// last '}' is accepted if it is a JSON object on its own.
func Classify(raw string) Reply {
	start := 0
scan:
	for tried := 0; tried < maxCandidates; tried++ {
		i := strings.IndexByte(raw[start:], '{')
		if i < 0 {
			break
		}
		pos := start + i
		obj, err := decodeObject(raw[pos:], false)
		switch {
		case err == nil:
			if hasPayloadKey(obj) {
				return StrictPayload{Fields: obj}
			}
			start = pos + 1
		default:
			n, ok := failedLength(err)
			if !ok {
				break scan
			}
			start = pos + n
		}
	}

	first := strings.IndexByte(raw, '{')
	last := strings.LastIndexByte(raw, '}')
	if first >= 0 && last > first {
		if obj, err := decodeObject(raw[first:last+1], true); err == nil {
			return StrictPayload{Fields: obj}
		}
	}
	return ProseOnly{Text: raw}
}

var errTrailingContent = errors.New("normalize: trailing content after object")

// decodeObject decodes the leading JSON value of s. With exact set, trailing
// content other than whitespace rejects the value.
func decodeObject(s string, exact bool) (map[string]any, error) {
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	if exact {
		if _, err := dec.Token(); !errors.Is(err, io.EOF) {
			return nil, errTrailingContent
		}
	}
	obj, _ := v.(map[string]any)
	return obj, nil
}

// failedLength reports how many bytes a failed decode consumed before the
// error. A value cut off by the end of input consumed everything, so no
// later candidate can start outside it.
func failedLength(err error) (int, bool) {
	var syn *json.SyntaxError
	if errors.As(err, &syn) {
		return max(int(syn.Offset), 1), true
	}
	return 0, false
}

func hasPayloadKey(obj map[string]any) bool {
	for _, k := range payloadKeys {
		if _, ok := obj[k]; ok {
			return true
		}
	}
	return false
}
