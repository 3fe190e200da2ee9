package commands

import (
	"context"
	"flag"
	"fmt"
	"io"

	"thingsync/internal/config"
	"thingsync/internal/exitcode"
	"thingsync/internal/extract"
	"thingsync/internal/service"
	"thingsync/internal/things"
)

func init() {
	Register(&ExtractCmd{})
}

// ExtractCmd implements the extract command: read the Things3 views via
// AppleScript and write the per-view CSV files.
type ExtractCmd struct {
	view   string
	source extract.Source
}

// SetSource overrides the task source (for testing).
func (c *ExtractCmd) SetSource(src extract.Source) {
	c.source = src
}

// SetView selects a single view (for testing).
func (c *ExtractCmd) SetView(view string) {
	c.view = view
}

func (c *ExtractCmd) Name() string      { return "extract" }
func (c *ExtractCmd) Aliases() []string { return nil }
func (c *ExtractCmd) Synopsis() string  { return "Extract Things3 views to CSV" }
func (c *ExtractCmd) Usage() string     { return "thingsync extract [common flags] [--view <name>]" }
func (c *ExtractCmd) NeedsAuth() bool   { return false }

func (c *ExtractCmd) RegisterFlags(fs *flag.FlagSet) {
	fs.StringVar(&c.view, "view", "", "")
}

func (c *ExtractCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	views, code := selectViews(c.view, errOut)
	if code != exitcode.Success {
		return code
	}

	if err := cfg.EnsureStateDir(); err != nil {
		fmt.Fprintf(errOut, "error: %s\n", err)
		return exitcode.UserError
	}

	src := c.source
	if src == nil {
		src = &extract.SourceQuery{Q: things.NewQuery()}
	}

	for _, view := range views {
		// Later views skip titles an earlier view already produced.
		prior := make(map[string]struct{})
		for _, earlier := range extract.Views {
			if earlier.Name == view.Name {
				break
			}
			titles, err := extract.LoadTitles(cfg.ViewCSVPath(earlier.Name))
			if err != nil {
				fmt.Fprintf(errOut, "error: %s\n", err)
				return exitcode.UserError
			}
			for t := range titles {
				prior[t] = struct{}{}
			}
		}

		records, err := extract.Run(ctx, src, view, prior)
		if err != nil {
			fmt.Fprintf(errOut, "error: extract %s: %s\n", view.Name, err)
			return exitcode.BackendError
		}
		if err := extract.WriteCSV(cfg.ViewCSVPath(view.Name), records); err != nil {
			fmt.Fprintf(errOut, "error: %s\n", err)
			return exitcode.UserError
		}
		if !cfg.Quiet {
			fmt.Fprintf(out, "%s: %d tasks\n", view.Name, len(records))
		}
	}

	return exitcode.Success
}
