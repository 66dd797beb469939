package normalize

import (
	"encoding/json"
	"strings"
)

const fence = "```"

// StripFence removes a fenced code block that wraps the entire trimmed
// text. Any text before the opening fence or after the closing fence, or a
// second fence inside, leaves the input untouched.
func StripFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, fence) || !strings.HasSuffix(trimmed, fence) || len(trimmed) < 2*len(fence) {
		return text
	}

	body := trimmed[len(fence) : len(trimmed)-len(fence)]
	nl := strings.IndexByte(body, '\n')
	if nl < 0 {
		return text
	}
	// info string such as "json" may follow the opening fence
	if info := strings.TrimSpace(body[:nl]); strings.ContainsAny(info, " \t`") {
		return text
	}
	inner := body[nl+1:]
	if strings.Contains(inner, fence) {
		return text
	}
	return strings.TrimSpace(inner)
}

// ExtractJSON returns the first complete JSON object or array found in
// text, or nil if there is none. Wrapping fences are stripped first.
// Trailing commentary after the value is ignored. It never panics.
func ExtractJSON(text string) any {
	text = StripFence(text)

	for i := 0; i < len(text); i++ {
		if text[i] != '{' && text[i] != '[' {
			continue
		}
		if v, ok := decodePrefix(text[i:]); ok {
			return v
		}
	}
	return nil
}

// decodePrefix parses the shortest prefix of s that forms a JSON value.
// json.Decoder stops at the end of the first value, which is the same as
// growing the candidate one character at a time until it parses.
func decodePrefix(s string) (any, bool) {
	dec := json.NewDecoder(strings.NewReader(s))
	var v any
	if err := dec.Decode(&v); err != nil || v == nil {
		return nil, false
	}
	return v, true
}
