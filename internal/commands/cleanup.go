package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"thingsync/internal/config"
	"thingsync/internal/exitcode"
	"thingsync/internal/service"
)

func init() {
	Register(&CleanupCmd{})
}

// CleanupCmd implements the cleanup command: delete every task from
// every cloud list, delete the non-default lists, and rename the default
// list "Today". One-time reset before re-seeding from extraction.
type CleanupCmd struct {
	force bool
}

// SetForce sets the force flag (for testing).
func (c *CleanupCmd) SetForce(force bool) {
	c.force = force
}

func (c *CleanupCmd) Name() string      { return "cleanup" }
func (c *CleanupCmd) Aliases() []string { return nil }
func (c *CleanupCmd) Synopsis() string  { return "Delete all cloud tasks and lists" }
func (c *CleanupCmd) Usage() string     { return "thingsync cleanup [common flags] --force" }
func (c *CleanupCmd) NeedsAuth() bool   { return true }

func (c *CleanupCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.BoolVar(&c.force, "force", false, "")
}

func (c *CleanupCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	if !c.force {
		fmt.Fprintln(errOut, "error: cleanup deletes every cloud task and list (use --force)")
		return exitcode.UserError
	}

	lists, err := svc.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	log := cfg.Logger
	deleted := 0
	for _, list := range lists {
		tasks, err := svc.ListAllTasks(ctx, list.ID, true)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		for _, t := range tasks {
			if err := svc.DeleteTask(ctx, list.ID, t.ID); err != nil {
				log.Error("delete task failed", "task", t.ID, "title", t.Title, "err", err)
				continue
			}
			deleted++
		}

		if list.IsDefault {
			// The default list cannot be deleted; it becomes "Today".
			if err := svc.RenameList(ctx, list.ID, "Today"); err != nil {
				log.Error("rename default list failed", "err", err)
			}
			continue
		}
		if err := svc.DeleteList(ctx, list.ID); err != nil {
			log.Error("delete list failed", "list", list.Title, "err", err)
		}
	}

	if !cfg.Quiet {
		fmt.Fprintf(out, "deleted %d tasks\n", deleted)
	}
	return exitcode.Success
}
