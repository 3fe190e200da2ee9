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
	Register(&HelpCmd{})
}

// HelpCmd implements the help command.
type HelpCmd struct{}

func (c *HelpCmd) Name() string      { return "help" }
func (c *HelpCmd) Aliases() []string { return nil }
func (c *HelpCmd) Synopsis() string  { return "Print usage" }
func (c *HelpCmd) Usage() string     { return "thingsync help" }
func (c *HelpCmd) NeedsAuth() bool   { return false }

func (c *HelpCmd) RegisterFlags(fs *flag.FlagSet) {}

func (c *HelpCmd) Run(ctx context.Context, cfg *config.Config, svc service.Service, args []string, out, errOut io.Writer) int {
	fmt.Fprint(out, helpText)
	return exitcode.Success
}

const helpText = `Usage:
  thingsync sync [common flags] [--every <seconds>] [--lists <a,b,...>]
                                                     Pull completions and due dates
                                                     from Google Tasks into Things
  thingsync extract [common flags] [--view <name>]   Export Things views to CSV
  thingsync push [common flags] [--view <name>]      Push extracted tasks to Google
  thingsync verify [common flags]                    Report cross-list duplicate titles
  thingsync cleanup [common flags] --force           Delete all cloud tasks and lists
  thingsync login [common flags]
  thingsync logout [common flags]
  thingsync help
  thingsync version

Views: today, upcoming, anytime, someday

Common flags:
  --config <dir>   Override config directory
  --quiet          Suppress informational output
  --debug          Print debug logs to stderr
`
