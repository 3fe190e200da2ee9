// Package service defines the backend-agnostic interface for cloud task
// operations.
package service

import (
	"context"
	"errors"
)

// Sentinel errors used to classify backend failures. Backends wrap the
// underlying error so callers can match with errors.Is.
var (
	// ErrAuth marks expired or invalid credentials. Fatal to a pass.
	ErrAuth = errors.New("auth error")

	// ErrNotFound marks a resource that no longer exists. Callers treat
	// a delete of a missing task as already done.
	ErrNotFound = errors.New("not found")

	// ErrTransient marks a timeout, 5xx or connection failure. Retried
	// at most once per operation within a pass.
	ErrTransient = errors.New("transient error")
)

// Service defines the interface for cloud task backend operations.
// All Google Tasks API calls go through this interface; the engine and
// commands never import the Google SDK directly.
type Service interface {
	// ListLists returns all task lists in API order.
	ListLists(ctx context.Context) ([]TaskList, error)

	// ResolveList finds a list by name (case-insensitive, trimmed).
	// Returns an error if not found or ambiguous.
	ResolveList(ctx context.Context, name string) (TaskList, error)

	// ListAllTasks returns every task in a list, following pagination
	// until no next-page token is returned. When includeCompleted is
	// true, completed and hidden tasks are included.
	ListAllTasks(ctx context.Context, listID string, includeCompleted bool) ([]Task, error)

	// InsertTask creates a task in the given list and returns it with
	// the cloud-assigned identifier filled in.
	InsertTask(ctx context.Context, listID string, t Task) (Task, error)

	// DeleteTask deletes a task.
	DeleteTask(ctx context.Context, listID, taskID string) error

	// DeleteList deletes a task list by ID.
	DeleteList(ctx context.Context, listID string) error

	// RenameList updates a task list's title.
	RenameList(ctx context.Context, listID, title string) error
}
