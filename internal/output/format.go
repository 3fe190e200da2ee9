// Package output provides formatters for CLI output.
package output

import (
	"fmt"
	"io"
	"strings"

	"thingsync/internal/engine"
	"thingsync/internal/service"
)

// FormatSummary prints the result of one sync pass.
func FormatSummary(w io.Writer, s engine.Summary) {
	fmt.Fprintf(w, "updated %d, deleted from cloud %d, removed from local %d\n",
		s.Updated, s.DeletedFromCloud, s.RemovedFromLocal)
}

// FormatListHeader prints a list section header for audit output.
func FormatListHeader(w io.Writer, list service.TaskList, taskCount int) {
	title := normalizeTitle(list.Title)
	if list.IsDefault {
		title += " [default]"
	}
	fmt.Fprintf(w, "%s (%d tasks)\n", title, taskCount)
}

// Duplicate is a task title found more than once.
type Duplicate struct {
	Title string
	Lists []string // lists the title appears in, with repetition
}

// FormatDuplicate prints one duplicate finding.
func FormatDuplicate(w io.Writer, d Duplicate) {
	fmt.Fprintf(w, "duplicate: %s\n", normalizeTitle(d.Title))
	for _, list := range d.Lists {
		fmt.Fprintf(w, "    in %s\n", normalizeTitle(list))
	}
}

// normalizeTitle normalizes a title for display.
// - Empty or whitespace-only titles become "(untitled)"
// - Newlines are replaced with spaces
func normalizeTitle(title string) string {
	title = strings.ReplaceAll(title, "\r", " ")
	title = strings.ReplaceAll(title, "\n", " ")
	if strings.TrimSpace(title) == "" {
		return "(untitled)"
	}
	return title
}
