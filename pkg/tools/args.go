package tools

import (
	"fmt"
	"strings"
)

// stringArg extracts a mandatory string argument.
func stringArg(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", fmt.Errorf("missing string parameter '%s'", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("parameter '%s' must be a string", key)
	}
	return s, nil
}

// optionalStringArg extracts an optional string argument, returning def when
// absent.
func optionalStringArg(args map[string]any, key, def string) string {
	if v, ok := args[key].(string); ok && v != "" {
		return v
	}
	return def
}

// intArg extracts a mandatory integer argument. JSON numbers arrive as
// float64, so both forms are accepted.
func intArg(args map[string]any, key string) (int, error) {
	v, ok := args[key]
	if !ok {
		return 0, fmt.Errorf("missing integer parameter '%s'", key)
	}
	switch n := v.(type) {
	case float64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, fmt.Errorf("parameter '%s' must be an integer", key)
	}
}

// optionalIntArg extracts an optional integer argument.
func optionalIntArg(args map[string]any, key string, def int) int {
	switch n := args[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	default:
		return def
	}
}

// stringSliceArg extracts a mandatory array-of-strings argument.
func stringSliceArg(args map[string]any, key string) ([]string, error) {
	v, ok := args[key]
	if !ok {
		return nil, fmt.Errorf("missing array parameter '%s'", key)
	}
	raw, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("parameter '%s' must be an array of strings", key)
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		s, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("parameter '%s' must contain only strings", key)
		}
		out = append(out, s)
	}
	return out, nil
}

// offloadObservation builds the short transcript observation for content
// parked in the artifact store: artifact name, size, and the first line,
// capped at 200 characters total.
func offloadObservation(artifact string, size int, content string) string {
	firstLine := content
	if idx := strings.IndexByte(firstLine, '\n'); idx >= 0 {
		firstLine = firstLine[:idx]
	}

	obs := fmt.Sprintf("Saved to artifact %q (%d chars). First line: %s", artifact, size, firstLine)
	if len(obs) > 200 {
		obs = obs[:197] + "..."
	}
	return obs
}
