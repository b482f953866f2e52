package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"saltbox-mcp/internal/mcp"
	"saltbox-mcp/internal/saltbox"
)

// callRemote performs exactly one remote round trip and translates the
// outcome into a tool result. Adapter failures are logged and returned
// as error results; nothing propagates past this boundary.
func callRemote(ctx context.Context, log *slog.Logger, c Caller, method string, params map[string]any) mcp.ToolResult {
	result, err := c.CallMethod(ctx, method, params)
	if err != nil {
		log.Error("remote call failed", "method", method, "session", mcp.SessionFrom(ctx), "error", err)
		return mcp.ErrorResult("%v", err)
	}
	return wrapRemoteResult(result)
}

// wrapRemoteResult renders the decoded remote payload as pretty-printed
// JSON in a single text block. When the payload itself carries a
// success flag, isError mirrors it.
func wrapRemoteResult(result any) mcp.ToolResult {
	payload := saltbox.UnwrapMessage(result)

	isErr := false
	if m, ok := payload.(map[string]any); ok {
		if success, ok := m["success"].(bool); ok && !success {
			isErr = true
		}
	}

	text, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return mcp.ErrorResult("encode remote result: %v", err)
	}
	return mcp.ToolResult{
		Content: []mcp.ContentBlock{{Type: "text", Text: string(text)}},
		IsError: isErr,
	}
}

// Argument helpers. Dispatch has already validated types against the
// tool's input schema, so these only pick values out of the map.

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func mapArg(args map[string]any, key string) map[string]any {
	m, _ := args[key].(map[string]any)
	return m
}

func mapArgOr(args map[string]any, key string, def map[string]any) map[string]any {
	if m, ok := args[key].(map[string]any); ok {
		return m
	}
	return def
}

func stringArgOr(args map[string]any, key, def string) string {
	if s, ok := args[key].(string); ok && s != "" {
		return s
	}
	return def
}

// defaultFilters is applied whenever a list-style tool is called
// without explicit filters.
func defaultFilters() map[string]any {
	return map[string]any{"is_active": 1}
}
