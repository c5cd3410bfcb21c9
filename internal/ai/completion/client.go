// Package completion is the client for the external text-generation service.
// The service receives the user's message, the active topic mode, and a
// bounded trailing history window, and returns generated markdown text. The
// client treats the response as opaque renderable text.
package completion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gracechapel/scripture-assistant/internal/types"
)

const defaultTimeout = 60 * time.Second

// Turn is one role/content pair of the history window. Mode is deliberately
// stripped: only the current submission's mode steers the service.
type Turn struct {
	Role    types.MessageRole `json:"role"`
	Content string            `json:"content"`
}

// Request is the request body for the completion endpoint.
type Request struct {
	Message string     `json:"message"`
	Mode    types.Mode `json:"mode"`
	History []Turn     `json:"history,omitempty"`
}

// Response is the response from the completion endpoint.
type Response struct {
	Text string `json:"text"`
}

// APIError represents a structured error from the completion service.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("completion: %s: %s", e.Code, e.Message)
}

// Client calls the completion service over HTTP.
type Client struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a new completion client.
func NewClient(endpoint, apiKey string) *Client {
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

// Complete sends a request to the completion service and returns the
// generated text.
func (c *Client) Complete(ctx context.Context, req *Request) (string, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error APIError `json:"error"`
		}
		if err := json.Unmarshal(respBody, &apiErr); err != nil || apiErr.Error.Message == "" {
			return "", fmt.Errorf("completion: status %d: %s", resp.StatusCode, string(respBody))
		}
		return "", &apiErr.Error
	}

	var result Response
	if err := json.Unmarshal(respBody, &result); err != nil {
		return "", fmt.Errorf("unmarshal response: %w", err)
	}
	if result.Text == "" {
		return "", fmt.Errorf("completion: empty response text")
	}

	return result.Text, nil
}
