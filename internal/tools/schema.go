package tools

import (
	"context"
	"log/slog"
	"strings"

	"saltbox-mcp/internal/mcp"
	"saltbox-mcp/internal/saltbox"
)

// SchemaGroup exposes DocType schema introspection. These are the only
// handlers that chain more than one remote call; the sequence is
// strictly sequential with light post-processing in between.
func SchemaGroup(c Caller, log *slog.Logger) Group {
	return Group{
		Name: "schema",
		Tools: []mcp.Tool{
			{
				Name:        "get_doctype_schema",
				Description: "Fetch the full schema of a DocType, including its field definitions and permissions.",
				InputSchema: objectSchema([]string{"doctype"}, map[string]any{
					"doctype": stringProp("DocType to introspect."),
				}),
			},
			{
				Name:        "list_doctypes",
				Description: "List DocTypes known to the platform. Filters default to {\"is_active\": 1}.",
				InputSchema: objectSchema(nil, map[string]any{
					"filters": objectProp("Saltbox filter object. Defaults to {\"is_active\": 1}."),
				}),
			},
			{
				Name:        "get_field_options",
				Description: "Resolve the selectable options of a Link or Select field on a DocType.",
				InputSchema: objectSchema([]string{"doctype", "fieldname"}, map[string]any{
					"doctype":   stringProp("DocType owning the field."),
					"fieldname": stringProp("Name of the field to resolve."),
				}),
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "get_doctype_schema":
				return getDoctypeSchema(ctx, log, c, stringArg(args, "doctype"))
			case "list_doctypes":
				return callRemote(ctx, log, c, "saltbox.schema.list_doctypes", map[string]any{
					"filters": mapArgOr(args, "filters", defaultFilters()),
				})
			case "get_field_options":
				return getFieldOptions(ctx, log, c, stringArg(args, "doctype"), stringArg(args, "fieldname"))
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}

func getDoctypeSchema(ctx context.Context, log *slog.Logger, c Caller, doctype string) mcp.ToolResult {
	meta, err := c.CallMethod(ctx, "saltbox.schema.get_meta", map[string]any{"doctype": doctype})
	if err != nil {
		log.Error("remote call failed", "method", "saltbox.schema.get_meta", "error", err)
		return mcp.ErrorResult("%v", err)
	}
	perms, err := c.CallMethod(ctx, "saltbox.schema.get_permissions", map[string]any{"doctype": doctype})
	if err != nil {
		log.Error("remote call failed", "method", "saltbox.schema.get_permissions", "error", err)
		return mcp.ErrorResult("%v", err)
	}
	return wrapRemoteResult(map[string]any{
		"doctype":     doctype,
		"meta":        saltbox.UnwrapMessage(meta),
		"permissions": saltbox.UnwrapMessage(perms),
	})
}

func getFieldOptions(ctx context.Context, log *slog.Logger, c Caller, doctype, fieldname string) mcp.ToolResult {
	meta, err := c.CallMethod(ctx, "saltbox.schema.get_meta", map[string]any{"doctype": doctype})
	if err != nil {
		log.Error("remote call failed", "method", "saltbox.schema.get_meta", "error", err)
		return mcp.ErrorResult("%v", err)
	}

	field := findField(saltbox.UnwrapMessage(meta), fieldname)
	if field == nil {
		return mcp.ErrorResult("Field %s not found on DocType %s", fieldname, doctype)
	}

	fieldtype, _ := field["fieldtype"].(string)
	options, _ := field["options"].(string)

	switch fieldtype {
	case "Select":
		values := []any{}
		for _, line := range strings.Split(options, "\n") {
			if line = strings.TrimSpace(line); line != "" {
				values = append(values, line)
			}
		}
		return wrapRemoteResult(map[string]any{"fieldtype": fieldtype, "options": values})

	case "Link":
		if options == "" {
			return mcp.ErrorResult("Link field %s on DocType %s has no target DocType", fieldname, doctype)
		}
		linked, err := c.CallMethod(ctx, "saltbox.client.get_list", map[string]any{
			"doctype": options,
			"fields":  []any{"name"},
			"limit":   50,
		})
		if err != nil {
			log.Error("remote call failed", "method", "saltbox.client.get_list", "error", err)
			return mcp.ErrorResult("%v", err)
		}
		return wrapRemoteResult(map[string]any{
			"fieldtype": fieldtype,
			"target":    options,
			"options":   saltbox.UnwrapMessage(linked),
		})
	}

	return mcp.ErrorResult("Field %s on DocType %s is of type %q, which has no resolvable options", fieldname, doctype, fieldtype)
}

// findField walks a tolerant path through the meta payload looking for
// the named field definition.
func findField(meta any, fieldname string) map[string]any {
	m, ok := meta.(map[string]any)
	if !ok {
		return nil
	}
	fields, ok := m["fields"].([]any)
	if !ok {
		return nil
	}
	for _, f := range fields {
		def, ok := f.(map[string]any)
		if !ok {
			continue
		}
		if name, _ := def["fieldname"].(string); name == fieldname {
			return def
		}
	}
	return nil
}
