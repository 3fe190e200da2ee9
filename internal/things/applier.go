// Package things talks to the Things3 task manager on macOS: effects go
// out through the things:/// URL scheme, reads come back through
// AppleScript. Both surfaces are fire-and-forget; the only success
// signal is the invoking process's exit status.
package things

import "context"

// AddParams describes a task creation effect.
type AddParams struct {
	Title    string
	Notes    string
	When     string // e.g. "today"; empty leaves scheduling to Things
	Deadline string // YYYY-MM-DD, empty for none
}

// Update describes a partial task update effect. Nil pointer fields are
// left untouched; an empty *Deadline clears the deadline.
type Update struct {
	Completed *bool
	Deadline  *string
	Canceled  bool
}

// Empty reports whether the update carries no fields.
func (u Update) Empty() bool {
	return u.Completed == nil && u.Deadline == nil && !u.Canceled
}

// Applier is the effect capability the sync engine holds on the local
// store. Implementations report only whether the effect was accepted for
// delivery; Things offers no readback to verify what was applied.
type Applier interface {
	// Add creates a new task.
	Add(ctx context.Context, p AddParams) error

	// Update applies a partial update to the task with the given UUID.
	Update(ctx context.Context, id string, u Update) error

	// Cancel archives the task with the given UUID. Things has no
	// hard-delete through the URL scheme, so cancellation stands in
	// for removal.
	Cancel(ctx context.Context, id string) error
}
