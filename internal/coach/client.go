// Package coach is a thin JSON/HTTP client for the writing-coach backend.
// Every operation issues exactly one request: there are no retries and no
// timeouts beyond what the caller's context and http.Client impose.
package coach

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// DefaultBaseURL is where the backend listens unless configured otherwise.
const DefaultBaseURL = "http://127.0.0.1:8000"

// DefaultConversationTitle is used when creating a conversation without a title.
const DefaultConversationTitle = "New Conversation"

// maxErrorBodySize bounds how much of a failed response we read looking for an error field.
const maxErrorBodySize = 64 << 10

// Client talks to the writing-coach backend.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the http.Client used for requests.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

// WithLogger sets the logger requests are traced to.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	parsed, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "parsing base url")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.Errorf("unsupported base url scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return nil, errors.Errorf("base url %q has no host", baseURL)
	}

	c := &Client{
		baseURL:    parsed,
		httpClient: http.DefaultClient,
		log:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BaseURL returns the backend address this client targets.
func (c *Client) BaseURL() string { return c.baseURL.String() }

// ListConversations returns every conversation the backend knows about.
func (c *Client) ListConversations(ctx context.Context) ([]Conversation, error) {
	var conversations []Conversation
	if err := c.do(ctx, opListConversations, http.MethodGet, "/chats", nil, &conversations); err != nil {
		return nil, err
	}
	return conversations, nil
}

// GetConversation returns a conversation with its persisted messages.
func (c *Client) GetConversation(ctx context.Context, id int64) (*ConversationWithMessages, error) {
	conversation := &ConversationWithMessages{}
	if err := c.do(ctx, opGetConversation, http.MethodGet, fmt.Sprintf("/chats/%d", id), nil, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// CreateConversation creates an empty conversation.
func (c *Client) CreateConversation(ctx context.Context, title string) (*Conversation, error) {
	if title == "" {
		title = DefaultConversationTitle
	}
	request := struct {
		Title string `json:"title"`
	}{Title: title}
	conversation := &Conversation{}
	if err := c.do(ctx, opCreateConversation, http.MethodPost, "/chats", request, conversation); err != nil {
		return nil, err
	}
	return conversation, nil
}

// DeleteConversation deletes a conversation and its messages.
func (c *Client) DeleteConversation(ctx context.Context, id int64) error {
	return c.do(ctx, opDeleteConversation, http.MethodDelete, fmt.Sprintf("/chats/%d", id), nil, nil)
}

// Submit sends user text to the coach, optionally within an existing conversation.
func (c *Client) Submit(ctx context.Context, request *SubmitRequest) (*SubmitResponse, error) {
	response := &SubmitResponse{}
	if err := c.do(ctx, opSubmit, http.MethodPost, "/submit", request, response); err != nil {
		return nil, err
	}
	return response, nil
}

// Health returns the backend's agent readiness.
func (c *Client) Health(ctx context.Context) (*Health, error) {
	health := &Health{}
	if err := c.do(ctx, opHealth, http.MethodGet, "/health", nil, health); err != nil {
		return nil, err
	}
	return health, nil
}

func (c *Client) do(ctx context.Context, op operation, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &APIError{Op: op.name, Message: op.failure, Err: errors.Wrap(err, "marshaling request")}
		}
		reader = bytes.NewReader(payload)
	}

	endpoint := c.baseURL.JoinPath(path)
	request, err := http.NewRequestWithContext(ctx, method, endpoint.String(), reader)
	if err != nil {
		return &APIError{Op: op.name, Message: op.failure, Err: errors.Wrap(err, "building request")}
	}
	request.Header.Set("Accept", "application/json")
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.log.Warn("request failed", "op", op.name, "method", method, "path", path, "error", err)
		return &APIError{Op: op.name, Message: op.failure, Err: err}
	}
	defer response.Body.Close()
	c.log.Debug("request completed", "op", op.name, "method", method, "path", path,
		"status", response.StatusCode, "duration", time.Since(start))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		apiErr := &APIError{Op: op.name, StatusCode: response.StatusCode, Message: op.failure}
		if op.bodyError {
			if message := readErrorField(response.Body); message != "" {
				apiErr.Message = message
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return &APIError{Op: op.name, StatusCode: response.StatusCode, Message: op.failure, Err: errors.Wrap(err, "reading response")}
	}
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &APIError{Op: op.name, StatusCode: response.StatusCode, Message: op.failure, Err: errors.Wrap(err, "decoding response")}
	}
	return nil
}

// readErrorField extracts the `error` field of a JSON error body, if any.
func readErrorField(body io.Reader) string {
	payload, err := io.ReadAll(io.LimitReader(body, maxErrorBodySize))
	if err != nil {
		return ""
	}
	var errorBody struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(payload, &errorBody); err != nil {
		return ""
	}
	return strings.TrimSpace(errorBody.Error)
}
