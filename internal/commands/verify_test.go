package commands_test

import (
	"strings"
	"testing"

	"thingsync/internal/commands"
	"thingsync/internal/exitcode"
	"thingsync/internal/service"
	"thingsync/internal/testutil"
)

func TestVerifyCommand_NoDuplicates(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "Buy milk"})
	svc.AddTask("@default", service.Task{ID: "g-2", Title: "Buy eggs"})

	cmd := &commands.VerifyCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("exit code %d", code)
	}
	if strings.Contains(stdout, "duplicate:") {
		t.Errorf("unexpected duplicate report: %q", stdout)
	}
	if !strings.Contains(stdout, "2 tasks, 2 unique titles, 0 duplicated") {
		t.Errorf("summary missing: %q", stdout)
	}
}

func TestVerifyCommand_CrossListDuplicate(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddList("up", "Upcoming")
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "Buy  Milk"})
	svc.AddTask("up", service.Task{ID: "g-2", Title: "buy milk"})

	cmd := &commands.VerifyCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("exit code %d", code)
	}
	if !strings.Contains(stdout, "duplicate: Buy  Milk") {
		t.Errorf("duplicate not reported: %q", stdout)
	}
	if !strings.Contains(stdout, "in Today") || !strings.Contains(stdout, "in Upcoming") {
		t.Errorf("lists not named: %q", stdout)
	}
	if !strings.Contains(stdout, "2 tasks, 1 unique titles, 1 duplicated") {
		t.Errorf("summary missing: %q", stdout)
	}
}

func TestVerifyCommand_ExcludesCompleted(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "Buy milk"})
	svc.AddTask("@default", service.Task{ID: "g-2", Title: "Buy milk", Status: service.StatusCompleted})

	cmd := &commands.VerifyCmd{}
	stdout, _, code := runCommand(t, cmd, svc, nil, false)

	if code != exitcode.Success {
		t.Fatalf("exit code %d", code)
	}
	if strings.Contains(stdout, "duplicate:") {
		t.Errorf("completed task must not count: %q", stdout)
	}
}

func TestVerifyCommand_BackendError(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = service.ErrTransient

	cmd := &commands.VerifyCmd{}
	_, _, code := runCommand(t, cmd, svc, nil, false)
	if code != exitcode.BackendError {
		t.Fatalf("expected BackendError, got %d", code)
	}
}
