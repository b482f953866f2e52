// Package saltbox provides a minimal client for the Saltbox platform's
// RPC surface. Every operation the gateway exposes ultimately funnels
// through CallMethod.
package saltbox

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// RemoteCallError describes a failed remote call: transport failures,
// non-2xx statuses, and undecodable response bodies all surface as one
// of these.
type RemoteCallError struct {
	Method     string
	StatusCode int
	Message    string
	Body       string
}

func (e *RemoteCallError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("saltbox call %s failed: status %d: %s", e.Method, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("saltbox call %s failed: %s", e.Method, e.Message)
}

// Client issues RPC calls against a Saltbox instance. Credentials are
// validated by the config layer before a Client is ever constructed.
type Client struct {
	BaseURL   string
	APIKey    string
	APISecret string
	HTTP      *http.Client
}

// New returns a new client. If httpClient is nil, a default with a 30s
// timeout is used.
func New(baseURL, apiKey, apiSecret string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL:   strings.TrimRight(baseURL, "/"),
		APIKey:    apiKey,
		APISecret: apiSecret,
		HTTP:      httpClient,
	}
}

// CallMethod invokes one fully-qualified dotted remote method with the
// given parameter object and returns the decoded JSON result. There is
// no retry or backoff: a failed call surfaces immediately.
func (c *Client) CallMethod(ctx context.Context, method string, params map[string]any) (any, error) {
	if params == nil {
		params = map[string]any{}
	}
	payload, err := json.Marshal(params)
	if err != nil {
		return nil, &RemoteCallError{Method: method, Message: fmt.Sprintf("encode params: %v", err)}
	}

	endpoint := c.BaseURL + "/api/method/" + url.PathEscape(method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, &RemoteCallError{Method: method, Message: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "token "+c.APIKey+":"+c.APISecret)

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return nil, &RemoteCallError{Method: method, Message: err.Error()}
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		return nil, &RemoteCallError{Method: method, StatusCode: resp.StatusCode, Message: fmt.Sprintf("read body: %v", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &RemoteCallError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Message:    remoteMessage(buf.Bytes(), resp.Status),
			Body:       snippet(buf.String()),
		}
	}

	var decoded any
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		return nil, &RemoteCallError{
			Method:     method,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("invalid JSON in response: %v", err),
			Body:       snippet(buf.String()),
		}
	}
	return decoded, nil
}

// UnwrapMessage prefers the payload nested under a "message" key when
// the remote result is an object carrying one, falling back to the raw
// result. Saltbox wraps some, but not all, responses this way; treat
// this as a compatibility shim rather than a guaranteed contract.
func UnwrapMessage(v any) any {
	if m, ok := v.(map[string]any); ok {
		if inner, ok := m["message"]; ok {
			return inner
		}
	}
	return v
}

// remoteMessage pulls a human-readable error out of a failure body,
// falling back to the HTTP status line.
func remoteMessage(body []byte, status string) string {
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err == nil {
		for _, key := range []string{"message", "exc_type", "exception", "error"} {
			if s, ok := decoded[key].(string); ok && s != "" {
				return s
			}
		}
	}
	return status
}

func snippet(s string) string {
	const max = 512
	if len(s) > max {
		return s[:max]
	}
	return s
}
