package cmd

import (
	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/cli"

	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/cmd/commands/migrate"
	"github.com/papyrusworks/papyrus/internal/cmd/commands/operator"
	"github.com/papyrusworks/papyrus/internal/cmd/commands/seed"
	"github.com/papyrusworks/papyrus/internal/cmd/commands/serve"
	"github.com/papyrusworks/papyrus/internal/cmd/commands/version"
)

// Commands is the mapping of all available CLI commands.
var Commands map[string]cli.CommandFactory

// initCommands populates the Commands map.
func initCommands(log hclog.Logger, ui cli.Ui) {
	baseCommand := base.NewCommand(log, ui)

	Commands = map[string]cli.CommandFactory{
		"serve": func() (cli.Command, error) {
			return &serve.Command{
				Command: baseCommand,
			}, nil
		},
		"migrate": func() (cli.Command, error) {
			return &migrate.Command{
				Command: baseCommand,
			}, nil
		},
		"seed": func() (cli.Command, error) {
			return &seed.Command{
				Command: baseCommand,
			}, nil
		},
		"operator": func() (cli.Command, error) {
			return &operator.Command{
				Command: baseCommand,
			}, nil
		},
		"operator purge-records": func() (cli.Command, error) {
			return &operator.PurgeRecordsCommand{
				Command: baseCommand,
			}, nil
		},
		"version": func() (cli.Command, error) {
			return &version.Command{
				Command: baseCommand,
			}, nil
		},
	}
}
