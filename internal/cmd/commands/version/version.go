package version

import (
	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/version"
)

type Command struct {
	*base.Command
}

func (c *Command) Synopsis() string {
	return "Print the version"
}

func (c *Command) Help() string {
	return `Usage: papyrus version

  Prints the version of this binary.`
}

func (c *Command) Run(args []string) int {
	c.UI.Output(version.Version)
	return 0
}
