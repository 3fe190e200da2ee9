package commands

import (
	"context"
	"flag"
	"fmt"
	"io"
	"sort"

	"thingsync/internal/canon"
	"thingsync/internal/config"
	"thingsync/internal/exitcode"
	"thingsync/internal/output"
	"thingsync/internal/service"
)

func init() {
	Register(&VerifyCmd{})
}

// VerifyCmd implements the verify command: audit the cloud lists for
// duplicate tasks by canonical title, within and across lists.
type VerifyCmd struct{}

func (c *VerifyCmd) Name() string      { return "verify" }
func (c *VerifyCmd) Aliases() []string { return nil }
func (c *VerifyCmd) Synopsis() string  { return "Check cloud lists for duplicate tasks" }
func (c *VerifyCmd) Usage() string     { return "thingsync verify [common flags]" }
func (c *VerifyCmd) NeedsAuth() bool   { return true }

func (c *VerifyCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *VerifyCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	lists, err := svc.ListLists(ctx)
	if err != nil {
		fmt.Fprintf(errOut, "error: backend error: %v\n", err)
		return exitcode.BackendError
	}

	type occurrence struct {
		title string
		list  string
	}
	byKey := make(map[string][]occurrence)
	totalTasks := 0

	for _, list := range lists {
		tasks, err := svc.ListAllTasks(ctx, list.ID, false)
		if err != nil {
			fmt.Fprintf(errOut, "error: backend error: %v\n", err)
			return exitcode.BackendError
		}
		output.FormatListHeader(out, list, len(tasks))
		totalTasks += len(tasks)
		for _, t := range tasks {
			key := canon.Title(t.Title)
			byKey[key] = append(byKey[key], occurrence{title: t.Title, list: list.Title})
		}
	}

	keys := make([]string, 0, len(byKey))
	for key := range byKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	duplicates := 0
	for _, key := range keys {
		occ := byKey[key]
		if len(occ) < 2 {
			continue
		}
		duplicates++
		d := output.Duplicate{Title: occ[0].title}
		for _, o := range occ {
			d.Lists = append(d.Lists, o.list)
		}
		output.FormatDuplicate(out, d)
	}

	fmt.Fprintf(out, "%d tasks, %d unique titles, %d duplicated\n",
		totalTasks, len(byKey), duplicates)
	return exitcode.Success
}
