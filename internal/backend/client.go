// ABOUTME: HTTP client for the remote knowledge chat backend
// ABOUTME: Posts questions to /chat, /team_chat and /chat_agent and decodes their replies

package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// Endpoint paths served by the backend
const (
	PathChat      = "/chat"
	PathTeamChat  = "/team_chat"
	PathChatAgent = "/chat_agent"
)

// maxResponseBytes caps how much of a reply body is read
const maxResponseBytes = 4 << 20

// ErrMalformed is returned when a 2xx reply cannot be decoded into the expected shape
var ErrMalformed = errors.New("malformed backend response")

// StatusError is returned for any non-2xx reply. The body is not parsed.
type StatusError struct {
	Path       string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("backend %s returned status %d", e.Path, e.StatusCode)
}

// ChatRequest is the JSON body posted to every endpoint
type ChatRequest struct {
	Message string `json:"message"`
	Agent   string `json:"agent,omitempty"`
}

// ChatResponse is the reply shape of /chat and /chat_agent
type ChatResponse struct {
	Response string `json:"response"`
}

// AgentSources groups the sources one agent contributed to a team reply
type AgentSources struct {
	Agent   string   `json:"agent"`
	Sources []string `json:"sources"`
}

// TeamResponses holds the aggregated text of a team reply
type TeamResponses struct {
	Team string `json:"team,omitempty"`
}

// TeamResponse is the reply shape of /team_chat
type TeamResponse struct {
	Responses TeamResponses  `json:"responses"`
	Sources   []AgentSources `json:"sources"`
}

// Chatter is the set of backend calls the chat panels depend on
type Chatter interface {
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
	TeamChat(ctx context.Context, message string) (*TeamResponse, error)
	AgentChat(ctx context.Context, message string, agentNumber int) (*ChatResponse, error)
}

// Client talks to the backend over HTTP
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// NewClient creates a client for baseURL. A zero timeout disables the
// per-request deadline.
func NewClient(baseURL string, timeout time.Duration, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: slog.Default().With("component", "backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the configured backend origin
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Chat posts to /chat. The agent field is omitted when empty.
func (c *Client) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	var resp ChatResponse
	if err := c.post(ctx, PathChat, nil, req, &resp, requireField("response")); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TeamChat posts to /team_chat.
func (c *Client) TeamChat(ctx context.Context, message string) (*TeamResponse, error) {
	var resp TeamResponse
	if err := c.post(ctx, PathTeamChat, nil, ChatRequest{Message: message}, &resp, requireField("responses")); err != nil {
		return nil, err
	}
	return &resp, nil
}

// AgentChat posts to /chat_agent?id=<agentNumber>.
func (c *Client) AgentChat(ctx context.Context, message string, agentNumber int) (*ChatResponse, error) {
	q := url.Values{}
	q.Set("id", strconv.Itoa(agentNumber))

	var resp ChatResponse
	if err := c.post(ctx, PathChatAgent, q, ChatRequest{Message: message}, &resp, requireField("response")); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Ping checks that the backend origin answers at all. Any HTTP status counts
// as reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.baseURL+PathChat, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("reaching backend: %w", err)
	}
	resp.Body.Close()
	return nil
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body any, out any, check func(map[string]json.RawMessage) error) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("backend reply",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		return &StatusError{Path: path, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("reading %s reply: %w", path, err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if err := check(fields); err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// requireField rejects replies that lack the named top-level key or carry null
func requireField(name string) func(map[string]json.RawMessage) error {
	return func(fields map[string]json.RawMessage) error {
		raw, ok := fields[name]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("%w: missing %q", ErrMalformed, name)
		}
		return nil
	}
}

var _ Chatter = (*Client)(nil)
