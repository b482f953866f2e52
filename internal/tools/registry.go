// Package tools declares the gateway's tool catalog and dispatches
// tool calls to the group that owns them.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"saltbox-mcp/internal/mcp"
)

// Caller issues one remote procedure call against the Saltbox
// platform. *saltbox.Client satisfies it; tests substitute fakes.
type Caller interface {
	CallMethod(ctx context.Context, method string, params map[string]any) (any, error)
}

// Handler executes one tool owned by a group. The registry validates
// arguments against the tool's input schema before invoking it.
type Handler func(ctx context.Context, name string, args map[string]any) mcp.ToolResult

// Group is a named, ordered set of tool descriptors plus the handler
// that executes them.
type Group struct {
	Name   string
	Tools  []mcp.Tool
	Handle Handler
}

// Registry maps every tool name to its owning handler. It is built
// once at startup and read-only afterwards.
type Registry struct {
	order    []mcp.Tool
	handlers map[string]Handler
	schemas  map[string]*jsonschema.Schema
	log      *slog.Logger
}

// NewRegistry aggregates the groups in the given order, appending the
// built-in ping tool last. It rejects duplicate tool names and input
// schemas that do not compile, so both bug classes fail at startup
// instead of silently shadowing each other at dispatch time.
func NewRegistry(log *slog.Logger, groups ...Group) (*Registry, error) {
	r := &Registry{
		handlers: make(map[string]Handler),
		schemas:  make(map[string]*jsonschema.Schema),
		log:      log,
	}
	owner := make(map[string]string)

	for _, g := range groups {
		for _, t := range g.Tools {
			if prev, dup := owner[t.Name]; dup {
				return nil, fmt.Errorf("duplicate tool name %q (declared by groups %q and %q)", t.Name, prev, g.Name)
			}
			owner[t.Name] = g.Name

			schema, err := compileInputSchema(t)
			if err != nil {
				return nil, fmt.Errorf("group %q tool %q: %w", g.Name, t.Name, err)
			}
			r.schemas[t.Name] = schema
			r.handlers[t.Name] = g.Handle
			r.order = append(r.order, t)
		}
	}

	ping := pingTool()
	if prev, dup := owner[ping.Name]; dup {
		return nil, fmt.Errorf("duplicate tool name %q (declared by groups %q and built-in)", ping.Name, prev)
	}
	r.handlers[ping.Name] = handlePing
	r.order = append(r.order, ping)

	return r, nil
}

// List returns every tool descriptor exactly once, in the fixed group
// concatenation order with ping last.
func (r *Registry) List() []mcp.Tool {
	out := make([]mcp.Tool, len(r.order))
	copy(out, r.order)
	return out
}

// Dispatch resolves the tool name, validates arguments against the
// tool's input schema, and runs the owning handler. Unknown names and
// invalid arguments are defined negative outcomes, not failures; both
// yield an error result without issuing any remote call.
func (r *Registry) Dispatch(ctx context.Context, req mcp.CallParams) mcp.ToolResult {
	handler, ok := r.handlers[req.Name]
	if !ok {
		r.log.Warn("unknown tool requested", "tool", req.Name, "session", mcp.SessionFrom(ctx))
		return mcp.ErrorResult("Unknown tool: %s", req.Name)
	}

	args := req.Arguments
	if args == nil {
		args = map[string]any{}
	}
	if schema := r.schemas[req.Name]; schema != nil {
		if err := schema.Validate(normalize(args)); err != nil {
			r.log.Warn("tool arguments rejected", "tool", req.Name, "session", mcp.SessionFrom(ctx), "error", err)
			return mcp.ErrorResult("Invalid arguments for %s: %v", req.Name, err)
		}
	}

	r.log.Info("dispatching tool call", "tool", req.Name, "session", mcp.SessionFrom(ctx))
	return handler(ctx, req.Name, args)
}

func pingTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ping",
		Description: "Liveness probe. Returns \"pong\" without contacting the Saltbox platform.",
		InputSchema: objectSchema(nil, nil),
	}
}

func handlePing(context.Context, string, map[string]any) mcp.ToolResult {
	return mcp.TextResult("pong")
}

func compileInputSchema(t mcp.Tool) (*jsonschema.Schema, error) {
	raw, err := json.Marshal(t.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("encode input schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	url := "mcp:///" + t.Name + ".schema.json"
	if err := compiler.AddResource(url, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	schema, err := compiler.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("invalid input schema: %w", err)
	}
	return schema, nil
}

// normalize round-trips arguments through encoding/json so handler
// tests may pass Go-native values (int, struct-free maps) and still
// get the types the schema validator expects.
func normalize(args map[string]any) any {
	raw, err := json.Marshal(args)
	if err != nil {
		return args
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return args
	}
	return v
}
