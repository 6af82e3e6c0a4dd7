package operator

import (
	"github.com/mitchellh/cli"

	"github.com/papyrusworks/papyrus/internal/cmd/base"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Perform operator-specific tasks"
}

func (c *Command) Help() string {
	return `Usage: papyrus operator <subcommand> [options] [args]

  This command groups subcommands for operators maintaining a Papyrus
  deployment.`
}

func (c *Command) Run(args []string) int {
	return cli.RunResultHelp
}
