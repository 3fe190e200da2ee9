package commands

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"

	"thingsync/internal/canon"
	"thingsync/internal/config"
	"thingsync/internal/engine"
	"thingsync/internal/exitcode"
	"thingsync/internal/extract"
	"thingsync/internal/service"
	"thingsync/internal/state"
)

func init() {
	Register(&PushCmd{})
}

// PushCmd implements the push command: ingest extracted view CSVs into
// the matching cloud lists through the deduplicator.
type PushCmd struct {
	view string
}

// SetView selects a single view (for testing).
func (c *PushCmd) SetView(view string) {
	c.view = view
}

func (c *PushCmd) Name() string      { return "push" }
func (c *PushCmd) Aliases() []string { return nil }
func (c *PushCmd) Synopsis() string  { return "Push extracted view CSVs to the cloud store" }
func (c *PushCmd) Usage() string     { return "thingsync push [common flags] [--view <name>]" }
func (c *PushCmd) NeedsAuth() bool   { return true }

func (c *PushCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.view, "view", "", "")
}

func (c *PushCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	views, code := selectViews(c.view, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := cfg.EnsureStateDir(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	lock, err := state.Acquire(cfg.LockPath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}
	defer lock.Release()

	st, err := state.Load(cfg.MappingPath(), cfg.SyncStatePath())
	if err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	// Seed the dedup set with every title already pushed in earlier
	// runs, so a previously ingested task extracted again without its
	// stable identifier is still dropped.
	seen := make(map[string]struct{})
	st.EachMapping(func(_ string, e state.MappingEntry) {
		seen[canon.Title(e.Title)] = struct{}{}
	})

	eng := engine.New(svc, nil, st, nil, cfg.Logger)
	total := 0
	for _, view := range views {
		records, err := extract.ReadCSV(cfg.ViewCSVPath(view.Name))
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
		n, err := eng.Ingest(ctx, view.List, records, seen)
		total += n
		if err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			if errors.Is(err, service.ErrAuth) {
				return exitcode.AuthError
			}
			return exitcode.BackendError
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "pushed %d tasks\n", total)
	}
	return exitcode.Success
}

// selectViews returns the views to process: all of them, or the one
// named by the --view flag.
func selectViews(name string, errOut io.Writer) ([]extract.View, int) {
	if name == "" {
		return extract.Views, exitcode.Success
	}
	view, ok := extract.ViewByName(name)
	if !ok {
		fmt.Fprintf(errOut, "error: unknown view: %s\n", name)
		return nil, exitcode.UserError
	}
	return []extract.View{view}, exitcode.Success
}
