package tools

import (
	"context"
	"log/slog"

	"saltbox-mcp/internal/mcp"
)

// triggerSchema and actionSchema describe blueprint building blocks as
// structured values. Older clients passed these as JSON-encoded
// strings; that double-encoding and its parse-failure path are gone.
func triggerSchema() map[string]any {
	return objectSchema([]string{"event"}, map[string]any{
		"event":     stringProp("Platform event that fires the trigger, e.g. after_insert."),
		"doctype":   stringProp("DocType the trigger listens on."),
		"condition": stringProp("Optional condition expression evaluated by the platform."),
	})
}

func actionSchema() map[string]any {
	return objectSchema([]string{"type"}, map[string]any{
		"type":   stringProp("Action kind, e.g. update_field, send_message, run_method."),
		"params": objectProp("Action parameters, interpreted by the platform."),
	})
}

// BlueprintGroup exposes CRUD, listing, and validation for Blueprints,
// the platform's business-logic workflows.
func BlueprintGroup(c Caller, log *slog.Logger) Group {
	return Group{
		Name: "blueprint",
		Tools: []mcp.Tool{
			{
				Name:        "create_blueprint",
				Description: "Create a Blueprint from structured triggers and ordered actions.",
				InputSchema: objectSchema([]string{"name", "doctype", "triggers", "actions"}, map[string]any{
					"name":     stringProp("Unique Blueprint name."),
					"doctype":  stringProp("DocType the Blueprint operates on."),
					"triggers": arrayProp("Events that start the Blueprint.", triggerSchema()),
					"actions":  arrayProp("Ordered actions executed when a trigger fires.", actionSchema()),
					"enabled":  booleanProp("Whether the Blueprint is active. Defaults to true."),
				}),
			},
			{
				Name:        "get_blueprint",
				Description: "Fetch a Blueprint by name.",
				InputSchema: objectSchema([]string{"name"}, map[string]any{
					"name": stringProp("Blueprint name."),
				}),
			},
			{
				Name:        "update_blueprint",
				Description: "Update a Blueprint's triggers, actions, or enabled state.",
				InputSchema: objectSchema([]string{"name"}, map[string]any{
					"name":     stringProp("Blueprint name."),
					"triggers": arrayProp("Replacement trigger list.", triggerSchema()),
					"actions":  arrayProp("Replacement action list.", actionSchema()),
					"enabled":  booleanProp("Whether the Blueprint is active."),
				}),
			},
			{
				Name:        "delete_blueprint",
				Description: "Delete a Blueprint by name.",
				InputSchema: objectSchema([]string{"name"}, map[string]any{
					"name": stringProp("Blueprint name."),
				}),
			},
			{
				Name:        "list_blueprints",
				Description: "List Blueprints. Filters default to {\"is_active\": 1}.",
				InputSchema: objectSchema(nil, map[string]any{
					"filters": objectProp("Saltbox filter object. Defaults to {\"is_active\": 1}."),
				}),
			},
			{
				Name:        "validate_blueprint",
				Description: "Ask the platform to validate a Blueprint definition without saving it.",
				InputSchema: objectSchema([]string{"definition"}, map[string]any{
					"definition": objectProp("Complete Blueprint definition to validate."),
				}),
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "create_blueprint":
				enabled := true
				if v, ok := args["enabled"].(bool); ok {
					enabled = v
				}
				return callRemote(ctx, log, c, "saltbox.blueprint.create", map[string]any{
					"name":     stringArg(args, "name"),
					"doctype":  stringArg(args, "doctype"),
					"triggers": args["triggers"],
					"actions":  args["actions"],
					"enabled":  enabled,
				})

			case "get_blueprint":
				return callRemote(ctx, log, c, "saltbox.blueprint.get", map[string]any{
					"name": stringArg(args, "name"),
				})

			case "update_blueprint":
				params := map[string]any{"name": stringArg(args, "name")}
				for _, key := range []string{"triggers", "actions", "enabled"} {
					if v, ok := args[key]; ok {
						params[key] = v
					}
				}
				return callRemote(ctx, log, c, "saltbox.blueprint.update", params)

			case "delete_blueprint":
				return callRemote(ctx, log, c, "saltbox.blueprint.delete", map[string]any{
					"name": stringArg(args, "name"),
				})

			case "list_blueprints":
				return callRemote(ctx, log, c, "saltbox.blueprint.list", map[string]any{
					"filters": mapArgOr(args, "filters", defaultFilters()),
				})

			case "validate_blueprint":
				return callRemote(ctx, log, c, "saltbox.blueprint.validate", map[string]any{
					"definition": mapArg(args, "definition"),
				})
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}
