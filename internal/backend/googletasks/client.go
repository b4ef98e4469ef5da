// Package googletasks implements the service.Service interface using Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"tasklist/internal/config"
	"tasklist/internal/logging"
	"tasklist/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = config.DefaultListID

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for API calls.
	APITimeout = 5 * time.Second

	// TasksScope is the OAuth scope for Google Tasks.
	TasksScope = "https://www.googleapis.com/auth/tasks"

	statusCompleted   = "completed"
	statusNeedsAction = "needsAction"
)

// Client implements service.Service on one Google Tasks list.
type Client struct {
	svc     *tasks.Service
	listID  string
	timeout time.Duration
	log     *log.Logger
}

// New creates a new Google Tasks client for cfg.Settings.ListID.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, TasksScope)
	if err != nil {
		return nil, fmt.Errorf("invalid oauth_client.json: %w", err)
	}

	// Load token
	tokenData, err := os.ReadFile(cfg.TokenPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read token.json: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenData, &token); err != nil {
		return nil, fmt.Errorf("invalid token.json: %w", err)
	}

	// Create HTTP client with a token source that auto-refreshes
	httpClient := oauth2.NewClient(ctx, oauthConfig.TokenSource(ctx, &token))

	c, err := NewWithHTTPClient(ctx, httpClient, cfg.Settings.ListID)
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}
	if d := cfg.Settings.Timeout.Duration; d > 0 {
		c.timeout = d
	}
	c.log = cfg.Log()
	return c, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
// Extra options such as option.WithEndpoint are passed to the Tasks service.
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client, listID string, opts ...option.ClientOption) (*Client, error) {
	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, err
	}
	if listID == "" {
		listID = DefaultListID
	}
	return &Client{
		svc:     svc,
		listID:  listID,
		timeout: APITimeout,
		log:     logging.Discard(),
	}, nil
}

// ListTasks returns every task of the list in API order, completed and
// hidden ones included.
func (c *Client) ListTasks(ctx context.Context) ([]service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var result []service.Task
	err := c.svc.Tasks.List(c.listID).
		MaxResults(PageSize).
		ShowCompleted(true).
		ShowDeleted(false).
		ShowHidden(true).
		Pages(ctx, func(resp *tasks.Tasks) error {
			for _, task := range resp.Items {
				result = append(result, fromAPI(task))
			}
			return nil
		})
	if err != nil {
		return nil, wrapError(err)
	}

	c.log.Debug("listed tasks", "list", c.listID, "count", len(result))
	return result, nil
}

// CreateTask creates a new task in the list.
func (c *Client) CreateTask(ctx context.Context, draft service.Draft) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(c.listID, &tasks.Task{
		Title:  draft.Title,
		Status: status(draft.Completed),
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(created), nil
}

// UpdateTask patches the title and/or completion status of a task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch service.Patch) (service.Patch, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	body := &tasks.Task{}
	if patch.Title != nil {
		body.Title = *patch.Title
		// An empty title is still a change the API must see.
		body.ForceSendFields = append(body.ForceSendFields, "Title")
	}
	if patch.Completed != nil {
		body.Status = status(*patch.Completed)
		if !*patch.Completed {
			// Reopening a task also clears its completion time.
			body.NullFields = append(body.NullFields, "Completed")
		}
	}

	updated, err := c.svc.Tasks.Patch(c.listID, id, body).Context(ctx).Do()
	if err != nil {
		return service.Patch{}, wrapError(err)
	}

	task := fromAPI(updated)
	return service.Patch{Title: &task.Title, Completed: &task.Completed}, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(c.listID, id).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

func fromAPI(t *tasks.Task) service.Task {
	return service.Task{
		ID:        t.Id,
		Title:     t.Title,
		Completed: t.Status == statusCompleted,
	}
}

func status(completed bool) string {
	if completed {
		return statusCompleted
	}
	return statusNeedsAction
}

// wrapError wraps API errors with user-friendly messages.
func wrapError(err error) error {
	if err == nil {
		return nil
	}

	// Check for timeout
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("request timed out")
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("token expired or revoked (run: tasklist login)")
		case http.StatusNotFound:
			return fmt.Errorf("not found")
		}
	}

	return err
}
