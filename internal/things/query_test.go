package things_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"thingsync/internal/things"
)

// scriptedRunner returns canned output keyed by a substring of the script.
func scriptedRunner(t *testing.T, outputs map[string]string) things.RunScript {
	return func(ctx context.Context, script string) (string, error) {
		for key, out := range outputs {
			if strings.Contains(script, key) {
				return out, nil
			}
		}
		t.Fatalf("unexpected script: %s", script)
		return "", nil
	}
}

func TestTaskCount(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"count to dos": "42",
	}))
	n, err := q.TaskCount(context.Background(), "Today")
	if err != nil {
		t.Fatal(err)
	}
	if n != 42 {
		t.Errorf("TaskCount = %d", n)
	}
}

func TestTaskCountGarbageOutput(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"count to dos": "missing value",
	}))
	if _, err := q.TaskCount(context.Background(), "Today"); err == nil {
		t.Fatal("expected error for non-numeric count")
	}
}

func TestTaskPropertyMissingValue(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"notes of item": "missing value",
	}))
	out, err := q.TaskProperty(context.Background(), 1, "notes", "Today")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("missing value should map to empty string, got %q", out)
	}
}

func TestTaskProjectNone(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"project of theTask": "",
	}))
	out, err := q.TaskProject(context.Background(), 1, "Today")
	if err != nil {
		t.Fatal(err)
	}
	if out != "None" {
		t.Errorf("TaskProject = %q, want None", out)
	}
}

func TestTaskTagsTrimsTrailingSeparator(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"set theTags": "errands; home; ",
	}))
	out, err := q.TaskTags(context.Background(), 1, "Today")
	if err != nil {
		t.Fatal(err)
	}
	if out != "errands; home" {
		t.Errorf("TaskTags = %q", out)
	}
}

func TestFormattedDate(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"normal", "2026,3,7", "2026-03-07"},
		{"single digits padded", "2026,12,31", "2026-12-31"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
				"due date of item": tt.raw,
			}))
			out, err := q.FormattedDate(context.Background(), 1, "due date", "Today")
			if err != nil {
				t.Fatal(err)
			}
			if out != tt.want {
				t.Errorf("FormattedDate = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestFormattedDateUnset(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"due date of item": "",
	}))
	out, err := q.FormattedDate(context.Background(), 1, "due date", "Today")
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("unset date should be empty, got %q", out)
	}
}

func TestFormattedDateGarbage(t *testing.T) {
	q := things.NewQueryWithRunner(scriptedRunner(t, map[string]string{
		"due date of item": "not,a",
	}))
	if _, err := q.FormattedDate(context.Background(), 1, "due date", "Today"); err == nil {
		t.Fatal("expected error for malformed date output")
	}
}

func TestQueryRunnerErrorPropagates(t *testing.T) {
	boom := errors.New("osascript failed")
	q := things.NewQueryWithRunner(func(ctx context.Context, script string) (string, error) {
		return "", boom
	})
	if _, err := q.TaskCount(context.Background(), "Today"); !errors.Is(err, boom) {
		t.Fatalf("expected runner error, got %v", err)
	}
}
