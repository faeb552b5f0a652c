// Package backend is the HTTP client for the deal agent API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"dealchat/api"
	"dealchat/config"
)

const defaultTimeout = 30 * time.Second

// Client talks to the agent backend over REST with JSON bodies.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
}

// ClientOption is a function for configuring the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the HTTP client timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		if timeout > 0 {
			c.httpClient.Timeout = timeout
		}
	}
}

// WithToken sends the token as a bearer Authorization header
func WithToken(token string) ClientOption {
	return func(c *Client) {
		c.token = token
	}
}

// WithUserAgent wraps the current transport with a fixed User-Agent
func WithUserAgent(agent string) ClientOption {
	return func(c *Client) {
		c.httpClient.Transport = &userAgentTransport{
			agent: agent,
			rt:    c.httpClient.Transport,
		}
	}
}

// NewClient creates a client for the backend rooted at baseURL
func NewClient(baseURL string, opts ...ClientOption) (*Client, error) {
	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	client := &Client{
		baseURL: parsedURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// APIError is returned for 4xx/5xx responses.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (%d): %s", e.StatusCode, e.Message)
}

// Chat sends one user turn: POST /chat
func (c *Client) Chat(ctx context.Context, req api.ChatRequest) (*api.ChatResponse, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []json.RawMessage{}
	}

	var resp api.ChatResponse
	if err := c.doRequest(ctx, http.MethodPost, "/chat", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to send message: %w", err)
	}
	return &resp, nil
}

// Confirm sends a decision on a proposed tool call: POST /confirm
func (c *Client) Confirm(ctx context.Context, req api.ConfirmRequest) (*api.ConfirmResponse, error) {
	if req.ConversationHistory == nil {
		req.ConversationHistory = []json.RawMessage{}
	}

	var resp api.ConfirmResponse
	if err := c.doRequest(ctx, http.MethodPost, "/confirm", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to send decision: %w", err)
	}
	return &resp, nil
}

// ListConversations lists persisted conversations: GET /conversations.
// Both a bare array and a {"conversations": [...]} envelope are accepted.
func (c *Client) ListConversations(ctx context.Context) ([]api.ConversationSummary, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, "/conversations", nil, &raw); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	if len(raw) == 0 {
		return nil, nil
	}

	var list []api.ConversationSummary
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, nil
	}

	var envelope struct {
		Conversations []api.ConversationSummary `json:"conversations"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("failed to list conversations: unmarshaling response: %w", err)
	}
	return envelope.Conversations, nil
}

// GetConversation fetches one conversation: GET /conversations/{id}
func (c *Client) GetConversation(ctx context.Context, id string) (*api.Conversation, error) {
	endpoint, err := conversationEndpoint(id)
	if err != nil {
		return nil, err
	}

	var conv api.Conversation
	if err := c.doRequest(ctx, http.MethodGet, endpoint, nil, &conv); err != nil {
		return nil, fmt.Errorf("failed to get conversation %s: %w", id, err)
	}
	if conv.ID == "" {
		conv.ID = id
	}
	return &conv, nil
}

// DeleteConversation removes one conversation: DELETE /conversations/{id}
func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	endpoint, err := conversationEndpoint(id)
	if err != nil {
		return err
	}

	if err := c.doRequest(ctx, http.MethodDelete, endpoint, nil, nil); err != nil {
		return fmt.Errorf("failed to delete conversation %s: %w", id, err)
	}
	return nil
}

// conversationEndpoint escapes id into a single path segment. Ids that
// would still be cleaned away as a segment are refused.
func conversationEndpoint(id string) (string, error) {
	if strings.TrimSpace(id) == "" || id == "." || id == ".." {
		return "", fmt.Errorf("invalid conversation id %q", id)
	}
	return "/conversations/" + url.PathEscape(id), nil
}

// doRequest performs an HTTP request and handles common response patterns
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body, result any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	// endpoint is already escaped; JoinPath keeps %2F inside a segment
	u := c.baseURL.JoinPath(endpoint)

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reqBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("performing request: %w", err)
	}
	defer resp.Body.Close()

	if config.DebugLog != nil {
		config.DebugLog.Printf("[Backend] %s %s -> %d (%s)", method, u.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response body: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp api.ErrorResponse
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
		}
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	if result != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshaling response: %w", err)
		}
	}

	return nil
}
