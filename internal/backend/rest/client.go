// Package rest implements the service.Service interface over a JSON task
// API such as json-server.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/service"
)

const (
	// APITimeout is the default timeout for API calls.
	APITimeout = 5 * time.Second

	// ResourcePath is the collection path under the base URL.
	ResourcePath = "/tasks"

	// maxErrorBody caps how much of an error response is logged.
	maxErrorBody = 512
)

// ErrNotFound is returned when the API answers 404.
var ErrNotFound = errors.New("not found")

// Client implements service.Service over HTTP.
type Client struct {
	http    *http.Client
	base    *url.URL
	timeout time.Duration
	log     *log.Logger
}

// New creates a client for the API at cfg.Settings.APIURL.
func New(cfg *config.Config) (*Client, error) {
	c, err := NewWithHTTPClient(cfg.Settings.APIURL, http.DefaultClient)
	if err != nil {
		return nil, err
	}
	if d := cfg.Settings.Timeout.Duration; d > 0 {
		c.timeout = d
	}
	c.log = cfg.Log()
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid api url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid api url: %q", baseURL)
	}
	return &Client{
		http:    httpClient,
		base:    u,
		timeout: APITimeout,
		log:     logging.Discard(),
	}, nil
}

// ListTasks returns all tasks in API order.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	var items []wireTask
	if err := c.do(ctx, http.MethodGet, ResourcePath, nil, &items); err != nil {
		return nil, err
	}

	// Tasks without an id cannot be addressed by later calls.
	result := make([]service.Task, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			c.log.Warn("skipping task without id", "title", item.Title)
			continue
		}
		result = append(result, item.task())
	}
	return result, nil
}

// CreateTask posts a new task and returns it with its assigned ID.
func (c *Client) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	var created wireTask
	if err := c.do(ctx, http.MethodPost, ResourcePath, draft, &created); err != nil {
		return service.Task{}, err
	}
	if created.ID == "" {
		return service.Task{}, fmt.Errorf("created task has no id")
	}
	return created.task(), nil
}

// UpdateTask patches the fields present in patch.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Patch, error) {
	var returned service.Patch
	if err := c.do(ctx, http.MethodPatch, taskPath(id), patch, &returned); err != nil {
		return service.Patch{}, err
	}
	return returned, nil
}

// DeleteTask deletes a task. The response body is ignored.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, taskPath(id), nil, nil)
}

func taskPath(id string) string {
	return ResourcePath + "/" + url.PathEscape(id)
}

// do sends one request. A nil body sends no payload; a nil out discards the
// response body.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(path).String(), payload)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return wrapError(err)
	}
	defer resp.Body.Close()
	c.log.Debug("api call", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.log.Warn("api error", "method", method, "path", path, "status", resp.StatusCode, "body", string(snippet))
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return wrapError(fmt.Errorf("decode response: %w", err))
	}
	return nil
}

// statusError maps a non-2xx response to a user-facing error.
func statusError(resp *http.Response) error {
	switch resp.StatusCode {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("access denied by task api (%s)", resp.Status)
	default:
		return fmt.Errorf("unexpected status: %s", resp.Status)
	}
}

// wrapError wraps transport errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}
	return err
}
