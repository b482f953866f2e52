package tools

import (
	"context"
	"log/slog"

	"saltbox-mcp/internal/mcp"
)

// DocumentGroup exposes document CRUD plus the generic RPC passthrough.
func DocumentGroup(c Caller, log *slog.Logger) Group {
	return Group{
		Name: "document",
		Tools: []mcp.Tool{
			{
				Name:        "call_method",
				Description: "Call any whitelisted Saltbox method by its fully-qualified dotted name.",
				InputSchema: objectSchema([]string{"method"}, map[string]any{
					"method": stringProp("Fully-qualified method name, e.g. saltbox.client.get_list."),
					"params": objectProp("Parameter object passed to the method."),
				}),
			},
			{
				Name:        "create_document",
				Description: "Create a new document of the given DocType.",
				InputSchema: objectSchema([]string{"doctype", "values"}, map[string]any{
					"doctype": stringProp("DocType of the document to create."),
					"values":  objectProp("Field values for the new document."),
				}),
			},
			{
				Name:        "get_document",
				Description: "Fetch a single document by DocType and name.",
				InputSchema: objectSchema([]string{"doctype", "name"}, map[string]any{
					"doctype": stringProp("DocType of the document."),
					"name":    stringProp("Unique name of the document."),
					"fields":  arrayProp("Optional list of fields to return.", stringProp("")),
				}),
			},
			{
				Name:        "list_documents",
				Description: "List documents of a DocType. Filters default to {\"is_active\": 1}.",
				InputSchema: objectSchema([]string{"doctype"}, map[string]any{
					"doctype": stringProp("DocType to list."),
					"filters": objectProp("Saltbox filter object. Defaults to {\"is_active\": 1}."),
					"fields":  arrayProp("Optional list of fields to return.", stringProp("")),
					"limit":   integerProp("Maximum number of documents to return."),
				}),
			},
			{
				Name:        "update_document",
				Description: "Update field values on an existing document.",
				InputSchema: objectSchema([]string{"doctype", "name", "values"}, map[string]any{
					"doctype": stringProp("DocType of the document."),
					"name":    stringProp("Unique name of the document."),
					"values":  objectProp("Field values to set."),
				}),
			},
			{
				Name:        "delete_document",
				Description: "Delete a document by DocType and name.",
				InputSchema: objectSchema([]string{"doctype", "name"}, map[string]any{
					"doctype": stringProp("DocType of the document."),
					"name":    stringProp("Unique name of the document."),
				}),
			},
		},
		Handle: func(ctx context.Context, name string, args map[string]any) mcp.ToolResult {
			switch name {
			case "call_method":
				return callRemote(ctx, log, c, stringArg(args, "method"), mapArg(args, "params"))

			case "create_document":
				return callRemote(ctx, log, c, "saltbox.client.insert", map[string]any{
					"doctype": stringArg(args, "doctype"),
					"values":  mapArg(args, "values"),
				})

			case "get_document":
				params := map[string]any{
					"doctype": stringArg(args, "doctype"),
					"name":    stringArg(args, "name"),
				}
				if fields, ok := args["fields"]; ok {
					params["fields"] = fields
				}
				return callRemote(ctx, log, c, "saltbox.client.get", params)

			case "list_documents":
				params := map[string]any{
					"doctype": stringArg(args, "doctype"),
					"filters": mapArgOr(args, "filters", defaultFilters()),
				}
				if fields, ok := args["fields"]; ok {
					params["fields"] = fields
				}
				if limit, ok := args["limit"]; ok {
					params["limit"] = limit
				}
				return callRemote(ctx, log, c, "saltbox.client.get_list", params)

			case "update_document":
				return callRemote(ctx, log, c, "saltbox.client.set_value", map[string]any{
					"doctype": stringArg(args, "doctype"),
					"name":    stringArg(args, "name"),
					"values":  mapArg(args, "values"),
				})

			case "delete_document":
				return callRemote(ctx, log, c, "saltbox.client.delete", map[string]any{
					"doctype": stringArg(args, "doctype"),
					"name":    stringArg(args, "name"),
				})
			}
			return mcp.ErrorResult("Unknown tool: %s", name)
		},
	}
}
