package tools

import (
	"encoding/json"
	"fmt"
	"time"

	"stevedore/internal/api"
)

// TimeoutSource supplies the current lock acquisition bounds. The
// config store implements it; the bounds can change at runtime, so
// providers read them per call instead of capturing them at startup.
type TimeoutSource interface {
	LockTimeout() time.Duration
	BuildLockTimeout() time.Duration
}

// textResult creates a successful result with plain text content.
func textResult(text string) *api.CallToolResult {
	return &api.CallToolResult{
		Content: []interface{}{text},
		IsError: false,
	}
}

// errorResult creates an error result.
func errorResult(message string) *api.CallToolResult {
	return &api.CallToolResult{
		Content: []interface{}{message},
		IsError: true,
	}
}

// jsonResult serializes v as indented JSON text content.
func jsonResult(v interface{}) *api.CallToolResult {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(fmt.Sprintf("Failed to serialize result: %v", err))
	}
	return textResult(string(data))
}

// --- argument extraction ---

func stringArg(args map[string]interface{}, name string) string {
	value, _ := args[name].(string)
	return value
}

func boolArg(args map[string]interface{}, name string) bool {
	value, _ := args[name].(bool)
	return value
}

// intArg reads a numeric argument; JSON numbers arrive as float64.
func intArg(args map[string]interface{}, name string, fallback int) int {
	switch value := args[name].(type) {
	case float64:
		return int(value)
	case int:
		return value
	default:
		return fallback
	}
}

func stringSliceArg(args map[string]interface{}, name string) []string {
	raw, ok := args[name].([]interface{})
	if !ok {
		return nil
	}
	values := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			values = append(values, s)
		}
	}
	return values
}

func stringMapArg(args map[string]interface{}, name string) map[string]string {
	raw, ok := args[name].(map[string]interface{})
	if !ok {
		return nil
	}
	values := make(map[string]string, len(raw))
	for key, item := range raw {
		if s, ok := item.(string); ok {
			values[key] = s
		}
	}
	return values
}
