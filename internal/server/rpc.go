package server

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/google/uuid"

	"saltbox-mcp/internal/mcp"
)

// handleMCP processes one JSON-RPC framed MCP message. Each POST is a
// session of its own: a fresh session identifier is attached to the
// request context and discarded when the response closes. The request
// context also flows into any remote call, so a client that hangs up
// aborts its in-flight outbound call.
func (s *Server) handleMCP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		s.internalError(w, "read request body: "+err.Error())
		return
	}

	var req mcp.Request
	if err := json.Unmarshal(body, &req); err != nil {
		s.internalError(w, "parse JSON-RPC request: "+err.Error())
		return
	}

	session := uuid.NewString()
	ctx := mcp.WithSession(r.Context(), session)
	s.log.Debug("mcp request", "method", req.Method, "session", session)

	if req.IsNotification() {
		// Notifications expect no response body.
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp := mcp.Response{JSONRPC: "2.0", ID: req.ID}

	switch req.Method {
	case "initialize":
		resp.Result = map[string]any{
			"protocolVersion": mcp.ProtocolVersion,
			"capabilities": map[string]any{
				"tools": map[string]any{},
			},
			"serverInfo": map[string]string{
				"name":    serverName,
				"version": serverVersion,
			},
		}

	case "ping":
		resp.Result = map[string]any{}

	case "tools/list":
		resp.Result = map[string]any{"tools": s.registry.List()}

	case "tools/call":
		var params mcp.CallParams
		if err := json.Unmarshal(req.Params, &params); err != nil {
			resp.Error = &mcp.Error{
				Code:    mcp.CodeInvalidParams,
				Message: "invalid tool call params",
				Data:    err.Error(),
			}
			break
		}
		resp.Result = s.registry.Dispatch(ctx, params)

	default:
		resp.Error = &mcp.Error{
			Code:    mcp.CodeMethodNotFound,
			Message: "method not found",
			Data:    req.Method,
		}
	}

	s.writeRPC(w, http.StatusOK, resp)
}

// internalError reports a protocol-framing failure: HTTP 500 with a
// JSON-RPC error body and a null id.
func (s *Server) internalError(w http.ResponseWriter, detail string) {
	s.log.Warn("mcp framing error", "detail", detail)
	s.writeRPC(w, http.StatusInternalServerError, mcp.Response{
		JSONRPC: "2.0",
		ID:      json.RawMessage("null"),
		Error: &mcp.Error{
			Code:    mcp.CodeInternalError,
			Message: "Internal error.",
			Data:    detail,
		},
	})
}
