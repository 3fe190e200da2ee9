package engine

import (
	"fmt"
	"time"

	"thingsync/internal/service"
	"thingsync/internal/state"
)

// Changeset is the minimal set of field updates derived by comparing a
// cloud task against its last-observed state.
type Changeset struct {
	// Completed toggles the local task's completion. Nil means no change.
	Completed *bool

	// Deadline replaces the local task's deadline (YYYY-MM-DD). An empty
	// value clears it. Nil means no change.
	Deadline *string

	// MarkForDeletion flags the cloud task for deletion after the local
	// update succeeds. Only ever set together with a completion, never
	// on a reopen.
	MarkForDeletion bool
}

// Empty reports whether the changeset carries no field updates.
func (c Changeset) Empty() bool {
	return c.Completed == nil && c.Deadline == nil
}

// Detect compares a cloud task against its last-observed state and
// returns the field-level changes to forward to the local store. The
// returned error is a non-fatal warning: an unparsable due date skips
// only the deadline field, the rest of the changeset still applies.
//
// Callers must overwrite the observed state with the task's current
// fields after calling Detect, whether or not the changeset is empty,
// so the next pass compares against the latest observation.
func Detect(task service.Task, prior state.TaskState, hadPrior bool) (Changeset, error) {
	var cs Changeset
	var warn error

	status := task.Status
	if status == "" {
		status = service.StatusNeedsAction
	}

	switch {
	case status == service.StatusCompleted && (!hadPrior || prior.Status != service.StatusCompleted):
		done := true
		cs.Completed = &done
		cs.MarkForDeletion = true
	case hadPrior && prior.Status == service.StatusCompleted && status == service.StatusNeedsAction:
		reopened := false
		cs.Completed = &reopened
	}

	priorDue := ""
	if hadPrior {
		priorDue = prior.Due
	}
	if task.Due != priorDue {
		if task.Due == "" {
			cleared := ""
			cs.Deadline = &cleared
		} else if d, err := localDate(task.Due); err != nil {
			warn = err
		} else {
			cs.Deadline = &d
		}
	}

	return cs, warn
}

// localDate converts a cloud due timestamp (RFC 3339) to the bare
// calendar date the local store expects. The cloud store encodes
// date-only due dates as midnight UTC; the date is taken as-is, without
// timezone conversion, because shifting would move it off by a day.
func localDate(due string) (string, error) {
	t, err := time.Parse(time.RFC3339, due)
	if err != nil {
		return "", fmt.Errorf("unexpected due date %q: %w", due, err)
	}
	return t.UTC().Format("2006-01-02"), nil
}

// Observed builds the state record to store for a fetched task.
func Observed(task service.Task) state.TaskState {
	status := task.Status
	if status == "" {
		status = service.StatusNeedsAction
	}
	return state.TaskState{
		Status:  status,
		Due:     task.Due,
		Title:   task.Title,
		Updated: task.Updated,
	}
}
