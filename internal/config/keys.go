package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// AvailableKeys lists every key accepted by Get and Set, in display order.
func AvailableKeys() []string {
	keys := []string{"provider"}
	for _, section := range []string{"openai", "gemini", "claude"} {
		keys = append(keys,
			section+".apiKey",
			section+".baseUrl",
			section+".questionModel",
			section+".prdModel",
			section+".trdModel",
			section+".todoModel",
		)
		if section == "openai" {
			keys = append(keys,
				"openai.questionVerbosity",
				"openai.prdVerbosity",
				"openai.trdVerbosity",
				"openai.todoVerbosity",
				"openai.questionReasoningEffort",
				"openai.prdReasoningEffort",
				"openai.trdReasoningEffort",
				"openai.todoReasoningEffort",
			)
		}
	}
	return append(keys,
		"app.defaultQuestions",
		"app.verbose",
		"app.skipTrd",
		"app.skipTodo",
		"app.log",
		"app.logDir",
		"app.metricsFile",
		"app.requestTimeoutSeconds",
		"app.rateLimitMaxRetries",
		"app.rateLimitDelaySeconds",
		"app.malformedMaxRetries",
	)
}

// CanonicalKey matches key case-insensitively against AvailableKeys.
func CanonicalKey(key string) (string, error) {
	for _, k := range AvailableKeys() {
		if strings.EqualFold(k, key) {
			return k, nil
		}
	}
	return "", &UnknownKeyError{Key: key}
}

// IsSecretKey reports whether a key holds credentials.
func IsSecretKey(key string) bool {
	return strings.HasSuffix(strings.ToLower(key), ".apikey")
}

// Get returns the effective value of key, including defaults and
// environment overrides.
func Get(path, key string) (any, error) {
	canonical, err := CanonicalKey(key)
	if err != nil {
		return nil, err
	}
	v, err := newViper(path, true)
	if err != nil {
		return nil, err
	}
	return v.Get(canonical), nil
}

// Set stores value under key and saves the file. "true"/"false" become
// booleans and numeric strings become numbers; the typed configuration
// decides the final type.
func Set(path, key, value string) (any, error) {
	canonical, err := CanonicalKey(key)
	if err != nil {
		return nil, err
	}
	v, err := newViper(path, false)
	if err != nil {
		return nil, err
	}

	parsed := parseValue(value)
	v.Set(canonical, parsed)

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	if err := Save(path, cfg); err != nil {
		return nil, err
	}
	return parsed, nil
}

// Flatten returns every key with its effective value.
func Flatten(cfg *Configuration) (map[string]any, error) {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	var tree map[string]any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}

	out := make(map[string]any)
	for _, k := range AvailableKeys() {
		parts := strings.SplitN(k, ".", 2)
		if len(parts) == 1 {
			out[k] = tree[k]
			continue
		}
		if section, ok := tree[parts[0]].(map[string]any); ok {
			out[k] = section[parts[1]]
		}
	}
	return out, nil
}

func parseValue(s string) any {
	switch s {
	case "true":
		return true
	case "false":
		return false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	return s
}

// FormatValue renders a value for terminal output, masking secrets.
func FormatValue(key string, v any, mask func(string) string) string {
	s := fmt.Sprint(v)
	if IsSecretKey(key) && mask != nil {
		return mask(s)
	}
	return s
}
