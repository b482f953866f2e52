package tools

import (
	"context"
	"log/slog"

	"saltbox-mcp/internal/mcp"
)

func fieldDefinitionSchema() map[string]any {
	return objectSchema([]string{"fieldname", "fieldtype"}, map[string]any{
		"fieldname": stringProp("Machine name of the field."),
		"fieldtype": stringProp("Field type, e.g. Data, Int, Link, Select."),
		"label":     stringProp("Human-readable label."),
		"options":   stringProp("Type-specific options: target DocType for Link, newline-separated values for Select."),
		"required":  booleanProp("Whether the field is mandatory."),
	})
}

// DoctypeGroup exposes structure mutation of custom entity
// definitions: creating, extending, and deleting DocTypes.
func DoctypeGroup(c Caller, log *slog.Logger) Group {
	return Group{
		Name: "doctype",
		Tools: []mcp.Tool{
			{
				Name:        "create_doctype",
				Description: "Create a custom DocType with the given field definitions.",
				InputSchema: objectSchema([]string{"name", "fields"}, map[string]any{
					"name":   stringProp("Name of the new DocType."),
					"fields": arrayProp("Field definitions for the DocType.", fieldDefinitionSchema()),
					"module": stringProp("Module the DocType belongs to. Defaults to \"Custom\"."),
				}),
			},
			{
				Name:        "add_doctype_fields",
				Description: "Append field definitions to an existing DocType.",
				InputSchema: objectSchema([]string{"doctype", "fields"}, map[string]any{
					"doctype": stringProp("DocType to extend."),
					"fields":  arrayProp("Field definitions to append.", fieldDefinitionSchema()),
				}),
			},
			{
				Name:        "delete_doctype",
				Description: "Delete a custom DocType and its schema.",
				InputSchema: objectSchema([]string{"doctype"}, map[string]any{
					"doctype": stringProp("DocType to delete."),
				}),
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "create_doctype":
				return callRemote(ctx, log, c, "saltbox.doctype.create", map[string]any{
					"name":   stringArg(args, "name"),
					"fields": args["fields"],
					"module": stringArgOr(args, "module", "Custom"),
				})
			case "add_doctype_fields":
				return callRemote(ctx, log, c, "saltbox.doctype.extend", map[string]any{
					"doctype": stringArg(args, "doctype"),
					"fields":  args["fields"],
				})
			case "delete_doctype":
				return callRemote(ctx, log, c, "saltbox.doctype.delete", map[string]any{
					"doctype": stringArg(args, "doctype"),
				})
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}
