package commands_test

import (
	"strings"
	"testing"

	"thingsync/internal/commands"
	"thingsync/internal/exitcode"
	"thingsync/internal/service"
	"thingsync/internal/testutil"
)

func TestCleanupCommand_RefusesWithoutForce(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "Keep me"})

	cmd := &commands.CleanupCmd{}
	_, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.UserError {
		t.Fatalf("expected UserError, got %d", code)
	}
	if !strings.Contains(stderr, "--force") {
		t.Errorf("refusal should mention --force: %q", stderr)
	}
	if len(svc.Tasks("@default")) != 1 {
		t.Error("tasks touched without --force")
	}
}

func TestCleanupCommand_DeletesEverything(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("up", "Upcoming")
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "a"})
	svc.AddTask("@default", service.Task{ID: "g-2", Title: "b", Status: service.StatusCompleted})
	svc.AddTask("up", service.Task{ID: "g-3", Title: "c"})

	cmd := &commands.CleanupCmd{}
	cmd.SetForce(true)
	stdout, stderr, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("exit code %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "deleted 3 tasks") {
		t.Errorf("output: %q", stdout)
	}

	lists := svc.Lists()
	if len(lists) != 1 {
		t.Fatalf("expected only the default list to remain, got %+v", lists)
	}
	if !lists[0].IsDefault || lists[0].Title != "Today" {
		t.Errorf("default list should be renamed to Today: %+v", lists[0])
	}
	if len(svc.Tasks("@default")) != 0 {
		t.Error("default list still has tasks")
	}
}

func TestCleanupCommand_ContinuesPastDeleteFailures(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("up", "Upcoming")
	svc.AddTask("up", service.Task{ID: "g-1", Title: "a"})
	svc.DeleteTaskErr = service.ErrTransient

	cmd := &commands.CleanupCmd{}
	cmd.SetForce(true)
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "deleted 0 tasks") {
		t.Errorf("output: %q", stdout)
	}
	// List deletion still attempted.
	if len(svc.Lists()) != 1 {
		t.Errorf("lists remaining: %+v", svc.Lists())
	}
}
