// Package chat talks to the Langflow/DataStax conversational flow behind the
// dashboard's assistant widget and keeps the widget's conversation state.
package chat

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPClient interface for making HTTP requests (allows injection for testing).
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient HTTPClient) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithToken sends the token as a bearer Authorization header.
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithPayload selects the request body shape.
func WithPayload(p Payload) ClientOption {
	return func(c *Client) {
		c.payload = p
	}
}

// WithTweaks sets per-component overrides passed to the flow engine.
func WithTweaks(tweaks map[string]map[string]any) ClientOption {
	return func(c *Client) {
		c.tweaks = tweaks
	}
}

// WithSessionID pins the flow session so the engine keeps its own memory.
func WithSessionID(id string) ClientOption {
	return func(c *Client) {
		c.sessionID = id
	}
}

// Client posts user messages to a flow run endpoint.
type Client struct {
	endpoint   string
	token      string
	payload    Payload
	tweaks     map[string]map[string]any
	sessionID  string
	httpClient HTTPClient
}

// NewClient creates a client for the given flow run URL.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		payload:    PayloadSimple,
		httpClient: &http.Client{Timeout: defaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send posts text and returns the flow's reply.
func (c *Client) Send(ctx context.Context, text string) (string, error) {
	body, err := c.encode(text)
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.token))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &StatusError{StatusCode: resp.StatusCode, Body: string(raw)}
	}

	return decodeReply(raw)
}

func (c *Client) encode(text string) ([]byte, error) {
	if c.payload == PayloadFlow {
		return json.Marshal(flowRequest{
			InputValue: text,
			InputType:  "chat",
			OutputType: "chat",
			SessionID:  c.sessionID,
			Tweaks:     c.tweaks,
		})
	}
	return json.Marshal(simpleRequest{InputValue: text})
}

// decodeReply accepts a flow run response, a {"message": ...} proxy response
// or a bare JSON string.
func decodeReply(raw []byte) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("failed to parse response: %w", err)
		}
		if strings.TrimSpace(s) == "" {
			return "", ErrNoReply
		}
		return s, nil
	}

	var response flowResponse
	if err := json.Unmarshal(trimmed, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	text := response.text()
	if strings.TrimSpace(text) == "" {
		return "", ErrNoReply
	}
	return text, nil
}
