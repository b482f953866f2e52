package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"saltbox-mcp/internal/hints"
	"saltbox-mcp/internal/mcp"
	"saltbox-mcp/internal/tools"
)

type stubCaller struct {
	calls  int
	result any
}

func (s *stubCaller) CallMethod(context.Context, string, map[string]any) (any, error) {
	s.calls++
	return s.result, nil
}

func newTestServer(t *testing.T, caller tools.Caller, token string) *Server {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry, err := tools.NewRegistry(log,
		tools.DocumentGroup(caller, log),
		tools.SchemaGroup(caller, log),
		tools.HelperGroup(caller, hints.NewLoader("", log), log),
		tools.BlueprintGroup(caller, log),
		tools.DoctypeGroup(caller, log),
		tools.WorkflowGroup(caller, log),
	)
	require.NoError(t, err)
	return New(log, registry, token)
}

func postMCP(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte(body)))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	return rr
}

func decodeRPC(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	return resp
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestMalformedBodyReturns500WithInternalError(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, "{not json")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	resp := decodeRPC(t, rr)
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(mcp.CodeInternalError), errObj["code"])
	assert.Nil(t, resp["id"])
}

func TestGetAndDeleteReturn405WithJSONRPCBody(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		req := httptest.NewRequest(method, "/mcp", nil)
		rr := httptest.NewRecorder()
		s.Router().ServeHTTP(rr, req)

		assert.Equal(t, http.StatusMethodNotAllowed, rr.Code, method)
		resp := decodeRPC(t, rr)
		errObj, ok := resp["error"].(map[string]any)
		require.True(t, ok, method)
		assert.Equal(t, float64(mcp.CodeMethodNotAllowed), errObj["code"], method)
		assert.Equal(t, "Method not allowed.", errObj["message"], method)
		assert.Nil(t, resp["id"], method)
	}
}

func TestInitialize(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":1,"method":"initialize","params":{}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	assert.Equal(t, float64(1), resp["id"])
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, mcp.ProtocolVersion, result["protocolVersion"])
	serverInfo, ok := result["serverInfo"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, serverName, serverInfo["name"])
}

func TestNotificationAcknowledgedWithoutBody(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","method":"notifications/initialized"}`)
	assert.Equal(t, http.StatusAccepted, rr.Code)
	assert.Zero(t, rr.Body.Len())
}

func TestToolsList(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":"a","method":"tools/list"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	toolList, ok := result["tools"].([]any)
	require.True(t, ok)
	assert.NotEmpty(t, toolList)

	last, ok := toolList[len(toolList)-1].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "ping", last["name"])
}

func TestToolsCallPing(t *testing.T) {
	caller := &stubCaller{}
	s := newTestServer(t, caller, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"ping"}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	content, ok := result["content"].([]any)
	require.True(t, ok)
	require.Len(t, content, 1)
	block := content[0].(map[string]any)
	assert.Equal(t, "text", block["type"])
	assert.Equal(t, "pong", block["text"])
	assert.Nil(t, result["isError"])
	assert.Zero(t, caller.calls)
}

func TestToolsCallUnknownTool(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{"name":"unknown_tool_xyz"}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	result, ok := resp["result"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, result["isError"])
	content := result["content"].([]any)
	block := content[0].(map[string]any)
	assert.Contains(t, block["text"], "Unknown tool: unknown_tool_xyz")
}

func TestToolsCallReachesRemote(t *testing.T) {
	caller := &stubCaller{result: map[string]any{"name": "CUST-0001"}}
	s := newTestServer(t, caller, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":4,"method":"tools/call","params":{"name":"get_document","arguments":{"doctype":"Customer","name":"CUST-0001"}}}`)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, 1, caller.calls)

	resp := decodeRPC(t, rr)
	result := resp["result"].(map[string]any)
	content := result["content"].([]any)
	block := content[0].(map[string]any)

	var parsed map[string]any
	require.NoError(t, json.Unmarshal([]byte(block["text"].(string)), &parsed))
	assert.Equal(t, "CUST-0001", parsed["name"])
}

func TestUnknownRPCMethod(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":5,"method":"resources/list"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(mcp.CodeMethodNotFound), errObj["code"])
}

func TestInvalidToolCallParams(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "")
	rr := postMCP(t, s, `{"jsonrpc":"2.0","id":6,"method":"tools/call","params":"not-an-object"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	resp := decodeRPC(t, rr)
	errObj, ok := resp["error"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(mcp.CodeInvalidParams), errObj["code"])
}

func TestAuthTokenEnforcedWhenConfigured(t *testing.T) {
	s := newTestServer(t, &stubCaller{}, "sekrit")

	req := httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	req = httptest.NewRequest(http.MethodPost, "/mcp", bytes.NewReader([]byte(`{"jsonrpc":"2.0","id":1,"method":"ping"}`)))
	req.Header.Set("Authorization", "Bearer sekrit")
	rr = httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)
}
