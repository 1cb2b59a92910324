package backend

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseValue reads a criterion value written on a command line or in a query
// string, so that "5" matches an integer attribute and "true" a boolean one.
// Anything YAML cannot read is kept as the raw string.
func ParseValue(s string) any {
	var v any
	if err := yaml.Unmarshal([]byte(s), &v); err != nil || v == nil {
		return s
	}
	return v
}

// ParseCriterion splits "key=value" into a key and a parsed value.
func ParseCriterion(s string) (string, any, error) {
	key, value, ok := strings.Cut(s, "=")
	key = strings.TrimSpace(key)
	if !ok || key == "" {
		return "", nil, fmt.Errorf("criterion %q: expected key=value", s)
	}
	return key, ParseValue(value), nil
}
