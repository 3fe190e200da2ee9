package things

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// QueryTimeout bounds a single osascript invocation. Property reads on a
// busy Things library can take a few seconds each.
const QueryTimeout = 30 * time.Second

// RunScript executes an AppleScript and returns its trimmed output. It
// is the injection point for tests.
type RunScript func(ctx context.Context, script string) (string, error)

// Query reads task data out of Things3 via AppleScript. All queries are
// read-only; concurrent calls are safe because each addresses a disjoint
// task index.
type Query struct {
	run RunScript
}

// NewQuery creates a Query backed by osascript.
func NewQuery() *Query {
	return &Query{run: runOsascript}
}

// NewQueryWithRunner creates a Query with a custom script runner (for
// testing).
func NewQueryWithRunner(run RunScript) *Query {
	return &Query{run: run}
}

func runOsascript(ctx context.Context, script string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, QueryTimeout)
	defer cancel()

	out, err := exec.CommandContext(ctx, "osascript", "-e", script).Output()
	if err != nil {
		return "", fmt.Errorf("osascript: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

// TaskCount returns the number of to-dos in a Things list.
func (q *Query) TaskCount(ctx context.Context, list string) (int, error) {
	out, err := q.run(ctx, fmt.Sprintf(`tell application "Things3" to count to dos of list %q`, list))
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(out)
	if err != nil {
		return 0, fmt.Errorf("unexpected task count %q: %w", out, err)
	}
	return n, nil
}

// TaskProperty returns a simple string property of the task at a 1-based
// index. Missing values come back as the empty string.
func (q *Query) TaskProperty(ctx context.Context, index int, property, list string) (string, error) {
	script := fmt.Sprintf(`tell application "Things3" to %s of item %d of to dos of list %q`, property, index, list)
	out, err := q.run(ctx, script)
	if err != nil {
		return "", err
	}
	if out == "missing value" {
		return "", nil
	}
	return out, nil
}

// TaskUUID returns the stable Things identifier of the task at index.
func (q *Query) TaskUUID(ctx context.Context, index int, list string) (string, error) {
	return q.TaskProperty(ctx, index, "id", list)
}

// TaskTags returns the task's tag names joined with "; ".
func (q *Query) TaskTags(ctx context.Context, index int, list string) (string, error) {
	script := fmt.Sprintf(`
tell application "Things3"
	set theTags to tags of item %d of to dos of list %q
	set tagList to ""
	repeat with aTag in theTags
		set tagList to tagList & name of aTag & "; "
	end repeat
	return tagList
end tell`, index, list)
	out, err := q.run(ctx, script)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(strings.TrimSpace(out), ";"), nil
}

// TaskProject returns the name of the project containing the task, or
// "None" when the task lives outside any project.
func (q *Query) TaskProject(ctx context.Context, index int, list string) (string, error) {
	script := fmt.Sprintf(`
tell application "Things3"
	set theTask to item %d of to dos of list %q
	if project of theTask is not missing value then
		return name of project of theTask
	else
		return ""
	end if
end tell`, index, list)
	out, err := q.run(ctx, script)
	if err != nil {
		return "", err
	}
	if out == "" {
		return "None", nil
	}
	return out, nil
}

// FormattedDate returns a Things date property as YYYY-MM-DD, or the
// empty string when unset. The script returns numeric year, month and
// day components so the result is locale independent.
func (q *Query) FormattedDate(ctx context.Context, index int, property, list string) (string, error) {
	script := fmt.Sprintf(`
tell application "Things3"
	set theDate to %s of item %d of to dos of list %q
	if theDate is missing value then
		return ""
	else
		set y to year of theDate as integer
		set m to month of theDate as integer
		set d to day of theDate as integer
		return (y as string) & "," & (m as string) & "," & (d as string)
	end if
end tell`, property, index, list)
	out, err := q.run(ctx, script)
	if err != nil || out == "" {
		return "", err
	}
	return formatDateParts(out)
}

// FormattedTime returns the time component of a Things date property as
// HH:MM, or the empty string when unset.
func (q *Query) FormattedTime(ctx context.Context, index int, property, list string) (string, error) {
	script := fmt.Sprintf(`
tell application "Things3"
	set theDate to %s of item %d of to dos of list %q
	if theDate is missing value then
		return ""
	else
		set h to hours of theDate as integer
		set m to minutes of theDate as integer
		set mm to text -2 thru -1 of ("0" & m as string)
		return (h as string) & ":" & mm
	end if
end tell`, property, index, list)
	return q.run(ctx, script)
}

// formatDateParts turns "y,m,d" output into YYYY-MM-DD.
func formatDateParts(raw string) (string, error) {
	parts := strings.Split(raw, ",")
	if len(parts) != 3 {
		return "", fmt.Errorf("unexpected date output %q", raw)
	}
	nums := make([]int, 3)
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return "", fmt.Errorf("unexpected date output %q: %w", raw, err)
		}
		nums[i] = n
	}
	return fmt.Sprintf("%04d-%02d-%02d", nums[0], nums[1], nums[2]), nil
}
