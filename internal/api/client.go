// Package api talks to the remote todo collection over HTTP and JSON.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/idilsaglam/todos/internal/logging"
	"github.com/idilsaglam/todos/internal/model"
)

// DefaultBaseURL is the public collection the client talks to unless
// configured otherwise.
const DefaultBaseURL = "https://mate.academy/students-api"

const contentType = "application/json; charset=UTF-8"

// Collection is the CRUD surface of the remote todo collection.
type Collection interface {
	List(ctx context.Context, userID int) ([]model.Todo, error)
	Create(ctx context.Context, draft model.Draft) (model.Todo, error)
	Delete(ctx context.Context, id int) error
}

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Client implements Collection against a REST endpoint.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout bounds every request. Zero means no limit. It applies to a
// copy of the http.Client, whichever option order is used.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger used for request tracing.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New builds a client for the collection rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL: u,
		http:    &http.Client{},
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// List fetches every todo owned by userID.
func (c *Client) List(ctx context.Context, userID int) ([]model.Todo, error) {
	q := url.Values{"userId": {strconv.Itoa(userID)}}
	raw, err := c.do(ctx, http.MethodGet, "/todos", q, nil)
	if err != nil {
		return nil, err
	}
	if err := validateBody(raw, true); err != nil {
		return nil, err
	}
	var todos []model.Todo
	if err := json.Unmarshal(raw, &todos); err != nil {
		return nil, fmt.Errorf("decode todos: %w", err)
	}
	if todos == nil {
		todos = []model.Todo{}
	}
	return todos, nil
}

// Create posts draft and returns the stored todo with its server-assigned id.
func (c *Client) Create(ctx context.Context, draft model.Draft) (model.Todo, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return model.Todo{}, fmt.Errorf("encode draft: %w", err)
	}
	raw, err := c.do(ctx, http.MethodPost, "/todos", nil, body)
	if err != nil {
		return model.Todo{}, err
	}
	if err := validateBody(raw, false); err != nil {
		return model.Todo{}, err
	}
	var created model.Todo
	if err := json.Unmarshal(raw, &created); err != nil {
		return model.Todo{}, fmt.Errorf("decode todo: %w", err)
	}
	return created, nil
}

// Delete removes the todo with the given id. Any response body is ignored.
func (c *Client) Delete(ctx context.Context, id int) error {
	_, err := c.do(ctx, http.MethodDelete, "/todos/"+strconv.Itoa(id), nil, nil)
	return err
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "path", path, "err", err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.logger.Debug("request", "method", method, "path", path, "status", resp.StatusCode, "took", time.Since(start))
	if err != nil {
		return nil, fmt.Errorf("%s %s: read body: %w", method, path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method: method,
			Path:   path,
			Code:   resp.StatusCode,
			Body:   strings.TrimSpace(string(raw)),
		}
	}
	return raw, nil
}
