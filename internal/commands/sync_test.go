package commands_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"thingsync/internal/commands"
	"thingsync/internal/config"
	"thingsync/internal/exitcode"
	"thingsync/internal/service"
	"thingsync/internal/state"
	"thingsync/internal/testutil"
)

func syncConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Dir:      t.TempDir(),
		StateDir: t.TempDir(),
		Logger:   slog.New(slog.DiscardHandler),
	}
}

func TestSyncCommand_CompletionRoundTrip(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.AddTask("@default", service.Task{ID: "g-1", Title: "Buy milk", Status: service.StatusCompleted})
	applier := testutil.NewFakeApplier()

	cfg := syncConfig(t)

	// Seed an existing mapping on disk.
	st, err := state.Load(cfg.MappingPath(), cfg.SyncStatePath())
	if err != nil {
		t.Fatal(err)
	}
	st.SetMapping("local-1", state.MappingEntry{GoogleID: "g-1", Title: "Buy milk", LastSynced: "2026-02-01T00:00:00Z"})
	if err := st.Save(); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(applier)
	cmd.SetLists("Today")

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.Success {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}

	if !strings.Contains(out.String(), "updated 1") {
		t.Errorf("summary missing: %q", out.String())
	}
	if len(applier.Updates) != 1 || applier.Updates[0].ID != "local-1" {
		t.Errorf("local update missing: %+v", applier.Updates)
	}
	if len(svc.Deleted) != 1 {
		t.Errorf("cloud delete missing: %v", svc.Deleted)
	}

	// The pass must persist the pruned mapping.
	reloaded, err := state.Load(cfg.MappingPath(), cfg.SyncStatePath())
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.MappingCount() != 0 {
		t.Errorf("mapping not persisted, %d entries remain", reloaded.MappingCount())
	}
}

func TestSyncCommand_RequiresThingsToken(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := syncConfig(t)

	cmd := &commands.SyncCmd{}

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.AuthError {
		t.Fatalf("expected AuthError without %s, got %d", config.ThingsTokenEnv, code)
	}
	if !strings.Contains(errOut.String(), config.ThingsTokenEnv) {
		t.Errorf("error should name the env var: %q", errOut.String())
	}
}

func TestSyncCommand_RefusesWhenLocked(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := syncConfig(t)

	lock, err := state.Acquire(cfg.LockPath())
	if err != nil {
		t.Fatal(err)
	}
	defer lock.Release()

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(testutil.NewFakeApplier())

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("expected UserError for a held lock, got %d", code)
	}
}

func TestSyncCommand_ReleasesLock(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := syncConfig(t)

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(testutil.NewFakeApplier())
	cmd.SetLists("Today")

	var out, errOut bytes.Buffer
	if code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut); code != exitcode.Success {
		t.Fatalf("exit code %d, stderr: %s", code, errOut.String())
	}

	if _, err := os.Stat(cfg.LockPath()); !os.IsNotExist(err) {
		t.Error("lock file not released after the pass")
	}
}

func TestSyncCommand_CorruptStateIsFatal(t *testing.T) {
	svc := testutil.NewFakeService()
	cfg := syncConfig(t)
	if err := os.WriteFile(cfg.MappingPath(), []byte("{broken"), 0600); err != nil {
		t.Fatal(err)
	}

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(testutil.NewFakeApplier())

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.UserError {
		t.Fatalf("expected UserError for corrupt state, got %d", code)
	}

	// The corrupt file must not be overwritten.
	data, err := os.ReadFile(cfg.MappingPath())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "{broken" {
		t.Error("corrupt state file was rewritten")
	}
	if _, err := os.Stat(filepath.Join(cfg.StateDir, config.SyncStateFile)); err == nil {
		t.Error("sync state written despite the aborted pass")
	}
}

func TestSyncCommand_AuthErrorExitCode(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = service.ErrAuth
	cfg := syncConfig(t)

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(testutil.NewFakeApplier())

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.AuthError {
		t.Fatalf("expected AuthError, got %d", code)
	}
}

func TestSyncCommand_BackendErrorExitCode(t *testing.T) {
	svc := testutil.NewFakeService()
	svc.ListListsErr = service.ErrTransient
	cfg := syncConfig(t)

	cmd := &commands.SyncCmd{}
	cmd.SetApplier(testutil.NewFakeApplier())

	var out, errOut bytes.Buffer
	code := cmd.Run(context.Background(), cfg, svc, nil, &out, &errOut)
	if code != exitcode.BackendError {
		t.Fatalf("expected BackendError, got %d", code)
	}
}
