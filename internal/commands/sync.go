package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"thingsync/internal/config"
	"thingsync/internal/engine"
	"thingsync/internal/exitcode"
	"thingsync/internal/output"
	"thingsync/internal/service"
	"thingsync/internal/state"
	"thingsync/internal/things"
)

func init() {
	Register(&SyncCmd{})
}

// SyncCmd implements the sync command: one reconciliation pass, or a
// pass every N seconds with --every.
type SyncCmd struct {
	every   int
	lists   string
	applier things.Applier
}

// SetApplier overrides the local-store applier (for testing).
func (c *SyncCmd) SetApplier(a things.Applier) {
	c.applier = a
}

// SetLists sets the tracked list names (for testing).
func (c *SyncCmd) SetLists(lists string) {
	c.lists = lists
}

func (c *SyncCmd) Name() string      { return "sync" }
func (c *SyncCmd) Aliases() []string { return nil }
func (c *SyncCmd) Synopsis() string  { return "Run a reconciliation pass" }
func (c *SyncCmd) Usage() string {
	return "thingsync sync [common flags] [--every <seconds>] [--lists <names>]"
}
func (c *SyncCmd) NeedsAuth() bool { return true }

func (c *SyncCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&c.every, "every", 0, "")
	fs.StringVar(&c.lists, "lists", "", "")
}

func (c *SyncCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	applier := c.applier
	if applier == nil {
		if cfg.ThingsToken == "" {
			fmt.Fprintf(errOut, "error: %s not set (Things → Settings → General → Enable Things URLs → Manage)\n", config.ThingsTokenEnv)
			return exitcode.AuthError
		}
		applier = things.NewURLApplier(cfg.ThingsToken)
	}

	if err := cfg.EnsureStateDir(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	lists := splitLists(c.lists)

	if c.every <= 0 {
		return c.runPass(ctx, cfg, svc, applier, lists, out, errOut)
	}

	interval := time.Duration(c.every) * time.Second
	for {
		code := c.runPass(ctx, cfg, svc, applier, lists, out, errOut)
		if code == exitcode.AuthError {
			return code
		}
		select {
		case <-time.After(interval):
		case <-ctx.Done():
			return exitcode.Success
		}
	}
}

// runPass takes the lock, loads state, runs one pass and releases.
func (c *SyncCmd) runPass(ctx context.Context, cfg *config.Config, svc service.Service, applier things.Applier, lists []string, out, errOut io.Writer) int {
	lock, err := state.Acquire(cfg.LockPath())
	if err != nil {
		if errors.Is(err, state.ErrLocked) {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer lock.Release()

	st, err := state.Load(cfg.MappingPath(), cfg.SyncStatePath())
	if err != nil {
		// Loading an empty state over a corrupt file would recreate
		// every task on the next pass. Refuse to proceed.
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	eng := engine.New(svc, applier, st, lists, cfg.Logger)
	sum, err := eng.RunPass(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		if errors.Is(err, service.ErrAuth) {
			return exitcode.AuthError
		}
		return exitcode.BackendError
	}

	if !cfg.Quiet {
		output.FormatSummary(out, sum)
	}
	return exitcode.Success
}

// splitLists parses a comma-separated list of tracked list names.
// An empty value means the default set.
func splitLists(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var lists []string
	for _, name := range strings.Split(s, ",") {
		if name = strings.TrimSpace(name); name != "" {
			lists = append(lists, name)
		}
	}
	return lists
}
