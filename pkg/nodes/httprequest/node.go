// Package httprequest provides the HTTP request node.
package httprequest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/forgeflow/forgeflow/pkg/log"
	"github.com/forgeflow/forgeflow/pkg/models"
	"github.com/forgeflow/forgeflow/pkg/nodes/nodeconfig"
	"github.com/forgeflow/forgeflow/pkg/protocol"
)

// ErrNoAttempts is returned when a request finished without any attempt being made.
var ErrNoAttempts = errors.New("no request attempted")

// HTTPRequestNode performs an HTTP request and returns the decoded response body.
type HTTPRequestNode struct {
	client *http.Client
}

// HTTPRequestConfig is the resolved configuration of one request.
type HTTPRequestConfig struct {
	URL     string
	Method  string
	Headers map[string]string
	Body    string
	Timeout time.Duration
	Retries RetryConfig
}

// RetryConfig defines retry behavior for HTTP requests.
type RetryConfig struct {
	Attempts int
	Delay    time.Duration
}

// HTTPError represents a response with an error status code.
type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Message)
}

// NewHTTPRequestNode creates the handler of action_http. A nil client uses http.DefaultClient.
func NewHTTPRequestNode(client *http.Client) *HTTPRequestNode {
	if client == nil {
		client = http.DefaultClient
	}

	return &HTTPRequestNode{client: client}
}

func (n *HTTPRequestNode) Handle(ctx context.Context, in protocol.Input) (any, error) {
	config, err := parseConfig(in.Data)
	if err != nil {
		return nil, err
	}

	in.Logf(models.LogLevelInfo, fmt.Sprintf("HTTP %s %s", config.Method, config.URL))

	var lastErr error

	for attempt := 1; attempt <= config.Retries.Attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(config.Retries.Delay):
			}
		}

		result, status, err := n.performRequest(ctx, config)
		if err == nil {
			in.Logf(models.LogLevelSuccess, fmt.Sprintf("Status: %d", status))

			return result, nil
		}

		lastErr = err

		log.FromContext(ctx).DebugContext(ctx, "HTTP request attempt failed",
			"node_id", in.NodeID, "attempt", attempt, "url", config.URL, "error", err)

		// Client errors are not retried.
		httpErr := &HTTPError{}
		if errors.As(err, &httpErr) && httpErr.StatusCode < http.StatusInternalServerError {
			break
		}

		if ctx.Err() != nil {
			break
		}
	}

	if lastErr == nil {
		lastErr = ErrNoAttempts
	}

	in.Logf(models.LogLevelError, "Request failed: "+lastErr.Error())

	return nil, lastErr
}

func (n *HTTPRequestNode) performRequest(ctx context.Context, config HTTPRequestConfig) (any, int, error) {
	var reqBody io.Reader
	if config.Body != "" && config.Method != http.MethodGet {
		reqBody = strings.NewReader(config.Body)
	}

	ctx, cancel := context.WithTimeout(ctx, config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, config.Method, config.URL, reqBody)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range config.Headers {
		req.Header.Set(key, value)
	}

	if reqBody != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, resp.StatusCode, &HTTPError{
			StatusCode: resp.StatusCode,
			Message:    string(respBody),
		}
	}

	var jsonBody any
	if err := json.Unmarshal(respBody, &jsonBody); err == nil {
		return jsonBody, resp.StatusCode, nil
	}

	return string(respBody), resp.StatusCode, nil
}

func parseConfig(data map[string]any) (HTTPRequestConfig, error) {
	config := HTTPRequestConfig{
		URL:     nodeconfig.String(data, "url", ""),
		Method:  strings.ToUpper(nodeconfig.String(data, "method", http.MethodGet)),
		Headers: make(map[string]string),
		Timeout: time.Duration(nodeconfig.Int(data, "timeout", 30)) * time.Second,
		Retries: RetryConfig{Attempts: 1},
	}

	if config.URL == "" {
		return config, errors.New("missing required field 'url'")
	}

	if headers, ok := nodeconfig.JSONValue(data["headers"]).(map[string]any); ok {
		for key, value := range headers {
			config.Headers[key] = nodeconfig.String(headers, key, fmt.Sprint(value))
		}
	}

	switch body := data["body"].(type) {
	case nil:
	case string:
		config.Body = body
	default:
		encoded, err := json.Marshal(body)
		if err != nil {
			return config, fmt.Errorf("failed to encode body: %w", err)
		}

		config.Body = string(encoded)
	}

	if retries, ok := data["retries"].(map[string]any); ok {
		config.Retries.Attempts = max(nodeconfig.Int(retries, "attempts", 1), 1)
		config.Retries.Delay = time.Duration(max(nodeconfig.Int(retries, "delay", 0), 0)) * time.Millisecond
	}

	return config, nil
}
