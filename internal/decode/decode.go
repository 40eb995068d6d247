// Package decode turns free-form model output into structured data.
//
// Model replies are untrusted: the JSON payload may be wrapped in prose or a
// fenced block, and any field may be missing or carry the wrong type. Decode
// locates and parses the payload; the coercion helpers (Number, String,
// Objects) read fields without ever failing.
package decode

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Payload is a decoded JSON object.
type Payload map[string]any

// DecodeError reports model output whose selected JSON could not be parsed.
type DecodeError struct {
	Excerpt string
	Err     error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode model output: %v (near %q)", e.Err, e.Excerpt)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var fenceRe = regexp.MustCompile("(?is)```json(.*?)```")

const excerptLen = 120

// Extract picks the JSON candidate out of raw model text. First match wins:
// the interior of a ```json fence, then the span from the first '{' to the last
// '}', then raw unchanged.
func Extract(raw string) string {
	if m := fenceRe.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

// Decode extracts and parses the JSON object embedded in raw. It does not retry
// or repair: malformed JSON is a *DecodeError.
func Decode(raw string) (Payload, error) {
	candidate := Extract(raw)
	var v any
	if err := json.Unmarshal([]byte(candidate), &v); err != nil {
		return nil, &DecodeError{Excerpt: excerpt(candidate), Err: err}
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, &DecodeError{Excerpt: excerpt(candidate), Err: fmt.Errorf("payload is %T, not an object", v)}
	}
	return Payload(obj), nil
}

func excerpt(s string) string {
	s = strings.TrimSpace(s)
	if utf8.RuneCountInString(s) <= excerptLen {
		return s
	}
	return string([]rune(s)[:excerptLen]) + "..."
}
