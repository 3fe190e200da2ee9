// Package googletasks implements the service.Service interface using the
// Google Tasks API.
package googletasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"thingsync/internal/config"
	"thingsync/internal/service"
)

const (
	// DefaultListID is the special ID for the default list.
	DefaultListID = "@default"

	// PageSize is the number of tasks per page.
	PageSize = 100

	// APITimeout is the timeout for a single API call.
	APITimeout = 10 * time.Second

	// OAuth scope for Google Tasks
	tasksScope = "https://www.googleapis.com/auth/tasks"
)

// Client implements service.Service using the Google Tasks API.
type Client struct {
	svc *tasks.Service
	cfg *config.Config
}

// New creates a new Google Tasks client.
// Requires oauth_client.json and token.json to exist.
func New(ctx context.Context, cfg *config.Config) (*Client, error) {
	// Load OAuth client config
	clientJSON, err := os.ReadFile(cfg.OAuthClientPath())
	if err != nil {
		return nil, fmt.Errorf("failed to read oauth_client.json: %w", err)
	}

	oauthConfig, err := google.ConfigFromJSON(clientJSON, tasksScope)
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

	// Create token source that auto-refreshes
	tokenSource := oauthConfig.TokenSource(ctx, &token)

	// Create HTTP client with token source
	httpClient := oauth2.NewClient(ctx, tokenSource)

	// Create Tasks service
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create tasks service: %w", err)
	}

	return &Client{svc: svc, cfg: cfg}, nil
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(ctx context.Context, httpClient *http.Client) (*Client, error) {
	svc, err := tasks.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// ListLists returns all task lists in API order.
func (c *Client) ListLists(ctx context.Context) ([]service.TaskList, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	// Get the default list first to know its real ID
	defaultList, err := c.svc.Tasklists.Get(DefaultListID).Context(ctx).Do()
	if err != nil {
		return nil, wrapError(err)
	}
	defaultRealID := defaultList.Id

	var result []service.TaskList
	err = c.svc.Tasklists.List().MaxResults(100).Pages(ctx, func(resp *tasks.TaskLists) error {
		for _, list := range resp.Items {
			result = append(result, service.TaskList{
				ID:        list.Id,
				Title:     list.Title,
				IsDefault: list.Id == defaultRealID,
			})
		}
		return nil
	})
	if err != nil {
		return nil, wrapError(err)
	}

	return result, nil
}

// ResolveList finds a list by name (case-insensitive, trimmed).
func (c *Client) ResolveList(ctx context.Context, name string) (service.TaskList, error) {
	name = strings.TrimSpace(name)
	nameLower := strings.ToLower(name)

	lists, err := c.ListLists(ctx)
	if err != nil {
		return service.TaskList{}, err
	}

	var matches []service.TaskList
	for _, list := range lists {
		if strings.ToLower(strings.TrimSpace(list.Title)) == nameLower {
			matches = append(matches, list)
		}
	}

	switch len(matches) {
	case 0:
		return service.TaskList{}, fmt.Errorf("%w: list %s", service.ErrNotFound, name)
	case 1:
		return matches[0], nil
	default:
		return service.TaskList{}, fmt.Errorf("ambiguous list name: %s", name)
	}
}

// ListAllTasks returns every task in a list, following page tokens until
// the backend reports no more pages.
func (c *Client) ListAllTasks(ctx context.Context, listID string, includeCompleted bool) ([]service.Task, error) {
	var result []service.Task
	pageToken := ""

	for {
		callCtx, cancel := context.WithTimeout(ctx, APITimeout)
		call := c.svc.Tasks.List(listID).
			MaxResults(PageSize).
			ShowCompleted(includeCompleted).
			ShowHidden(includeCompleted).
			ShowDeleted(false).
			Context(callCtx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		resp, err := call.Do()
		cancel()
		if err != nil {
			return nil, wrapError(err)
		}

		for _, t := range resp.Items {
			result = append(result, fromAPI(t))
		}

		pageToken = resp.NextPageToken
		if pageToken == "" {
			return result, nil
		}
	}
}

// InsertTask creates a task in the given list.
func (c *Client) InsertTask(ctx context.Context, listID string, t service.Task) (service.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	created, err := c.svc.Tasks.Insert(listID, &tasks.Task{
		Title: t.Title,
		Notes: t.Notes,
		Due:   t.Due,
	}).Context(ctx).Do()
	if err != nil {
		return service.Task{}, wrapError(err)
	}
	return fromAPI(created), nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, listID, taskID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasks.Delete(listID, taskID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// DeleteList deletes a task list by ID.
func (c *Client) DeleteList(ctx context.Context, listID string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	if err := c.svc.Tasklists.Delete(listID).Context(ctx).Do(); err != nil {
		return wrapError(err)
	}
	return nil
}

// RenameList updates a task list's title.
func (c *Client) RenameList(ctx context.Context, listID, title string) error {
	ctx, cancel := context.WithTimeout(ctx, APITimeout)
	defer cancel()

	_, err := c.svc.Tasklists.Patch(listID, &tasks.TaskList{Title: title}).Context(ctx).Do()
	if err != nil {
		return wrapError(err)
	}
	return nil
}

// fromAPI converts an API task to the service type.
func fromAPI(t *tasks.Task) service.Task {
	return service.Task{
		ID:      t.Id,
		Title:   t.Title,
		Notes:   t.Notes,
		Status:  t.Status,
		Due:     t.Due,
		Updated: t.Updated,
	}
}
