package tools

import (
	"context"
	"log/slog"

	"saltbox-mcp/internal/hints"
	"saltbox-mcp/internal/mcp"
)

// HintSource serves the static usage hints loaded at startup.
// *hints.Loader satisfies it.
type HintSource interface {
	ForDocType(name string) []hints.Hint
	ForWorkflow(name string) []hints.Hint
}

// HelperGroup exposes diagnostics, messaging sends, and the static
// hint lookup.
func HelperGroup(c Caller, hintSource HintSource, log *slog.Logger) Group {
	return Group{
		Name: "helper",
		Tools: []mcp.Tool{
			{
				Name:        "check_connection",
				Description: "Verify connectivity and credentials by asking Saltbox for the logged-in user.",
				InputSchema: objectSchema(nil, nil),
			},
			{
				Name:        "get_version",
				Description: "Fetch the Saltbox platform version.",
				InputSchema: objectSchema(nil, nil),
			},
			{
				Name:        "send_whatsapp_message",
				Description: "Send a WhatsApp message through the platform's messaging integration.",
				InputSchema: objectSchema([]string{"to", "message"}, map[string]any{
					"to":           stringProp("Recipient phone number in international format."),
					"message":      stringProp("Message body."),
					"content_type": stringProp("Message content type. Defaults to \"text\"."),
				}),
			},
			{
				Name:        "send_instagram_message",
				Description: "Send an Instagram direct message through the platform's messaging integration.",
				InputSchema: objectSchema([]string{"to", "message"}, map[string]any{
					"to":      stringProp("Recipient Instagram handle or ID."),
					"message": stringProp("Message body."),
				}),
			},
			{
				Name:        "get_hints",
				Description: "Look up static usage hints for a DocType or a workflow. Served locally; no remote call.",
				InputSchema: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"doctype":  stringProp("DocType to look up hints for."),
						"workflow": stringProp("Workflow to look up hints for."),
					},
					"additionalProperties": false,
					"anyOf": []any{
						map[string]any{"required": []string{"doctype"}},
						map[string]any{"required": []string{"workflow"}},
					},
				},
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "check_connection":
				return callRemote(ctx, log, c, "saltbox.auth.get_logged_user", nil)
			case "get_version":
				return callRemote(ctx, log, c, "saltbox.utils.get_version", nil)
			case "send_whatsapp_message":
				return callRemote(ctx, log, c, "saltbox.messaging.send_whatsapp", map[string]any{
					"to":           stringArg(args, "to"),
					"message":      stringArg(args, "message"),
					"content_type": stringArgOr(args, "content_type", "text"),
				})
			case "send_instagram_message":
				return callRemote(ctx, log, c, "saltbox.messaging.send_instagram", map[string]any{
					"to":      stringArg(args, "to"),
					"message": stringArg(args, "message"),
				})
			case "get_hints":
				if doctype := stringArg(args, "doctype"); doctype != "" {
					return wrapRemoteResult(map[string]any{"doctype": doctype, "hints": hintSource.ForDocType(doctype)})
				}
				workflow := stringArg(args, "workflow")
				return wrapRemoteResult(map[string]any{"workflow": workflow, "hints": hintSource.ForWorkflow(workflow)})
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}
