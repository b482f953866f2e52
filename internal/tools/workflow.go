package tools

import (
	"context"
	"log/slog"

	"saltbox-mcp/internal/mcp"
)

// WorkflowGroup exposes Blueprint execution and run inspection.
func WorkflowGroup(c Caller, log *slog.Logger) Group {
	return Group{
		Name: "workflow",
		Tools: []mcp.Tool{
			{
				Name:        "execute_blueprint",
				Description: "Execute a Blueprint immediately with an optional context object.",
				InputSchema: objectSchema([]string{"name"}, map[string]any{
					"name":    stringProp("Blueprint to execute."),
					"context": objectProp("Execution context passed to the Blueprint."),
				}),
			},
			{
				Name:        "get_workflow_state",
				Description: "Fetch the current workflow state of a document.",
				InputSchema: objectSchema([]string{"doctype", "name"}, map[string]any{
					"doctype": stringProp("DocType of the document."),
					"name":    stringProp("Unique name of the document."),
				}),
			},
			{
				Name:        "list_workflow_runs",
				Description: "List recent workflow runs, optionally scoped to one Blueprint.",
				InputSchema: objectSchema(nil, map[string]any{
					"blueprint": stringProp("Only return runs of this Blueprint."),
					"limit":     integerProp("Maximum number of runs to return."),
				}),
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "execute_blueprint":
				return callRemote(ctx, log, c, "saltbox.workflow.execute", map[string]any{
					"name":    stringArg(args, "name"),
					"context": mapArg(args, "context"),
				})
			case "get_workflow_state":
				return callRemote(ctx, log, c, "saltbox.workflow.get_state", map[string]any{
					"doctype": stringArg(args, "doctype"),
					"name":    stringArg(args, "name"),
				})
			case "list_workflow_runs":
				params := map[string]any{}
				if v := stringArg(args, "blueprint"); v != "" {
					params["blueprint"] = v
				}
				if v, ok := args["limit"]; ok {
					params["limit"] = v
				}
				return callRemote(ctx, log, c, "saltbox.workflow.list_runs", params)
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}
