package service

// Task status values as reported by the cloud store.
const (
	StatusNeedsAction = "needsAction"
	StatusCompleted   = "completed"
)

// Task represents a single cloud task.
type Task struct {
	ID      string
	Title   string
	Notes   string
	Status  string // StatusNeedsAction or StatusCompleted
	Due     string // RFC 3339, empty if no due date; date-only by convention (midnight UTC)
	Updated string // RFC 3339 last-modified timestamp
}

// TaskList represents a cloud task list.
type TaskList struct {
	ID        string
	Title     string
	IsDefault bool
}
