package migrate

import (
	"flag"
	"fmt"

	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/internal/migrate"
	"github.com/papyrusworks/papyrus/pkg/database"
)

type Command struct {
	*base.Command

	flagConfig string
	flagDown   bool
	flagStatus bool
}

func (c *Command) Synopsis() string {
	return "Apply database schema migrations"
}

func (c *Command) Help() string {
	return `Usage: papyrus migrate -config=config.hcl

  Apply all pending database schema migrations. With -down, roll back
  the most recent migration instead. With -status, print the current
  migration version without changing anything.
` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("migrate", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to config file. Omit to use the embedded SQLite database.",
	)
	f.BoolVar(
		&c.flagDown, "down", false,
		"Roll back the most recent migration.",
	)
	f.BoolVar(
		&c.flagStatus, "status", false,
		"Print the current migration version and exit.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	ui := c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagDown && c.flagStatus {
		ui.Error("-down and -status are mutually exclusive")
		return 1
	}

	var (
		cfg *config.Config
		err error
	)
	if c.flagConfig != "" {
		cfg, err = config.NewConfig(c.flagConfig)
		if err != nil {
			ui.Error(fmt.Sprintf("error parsing config file: %v", err))
			return 1
		}
	} else {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		ui.Error(fmt.Sprintf("error validating config: %v", err))
		return 1
	}

	db, err := database.Connect(cfg.DatabaseConfig(), c.Log)
	if err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}
	sqlDB, err := db.DB()
	if err != nil {
		ui.Error(fmt.Sprintf("error getting database handle: %v", err))
		return 1
	}

	driver := cfg.Database.Driver

	switch {
	case c.flagStatus:
		version, dirty, err := migrate.GetMigrationVersion(sqlDB, driver)
		if err != nil {
			ui.Error(fmt.Sprintf("error reading migration version: %v", err))
			return 1
		}
		ui.Output(fmt.Sprintf("version: %d, dirty: %t", version, dirty))

	case c.flagDown:
		if err := migrate.RollbackMigration(sqlDB, driver); err != nil {
			ui.Error(fmt.Sprintf("error rolling back migration: %v", err))
			return 1
		}
		ui.Info("Rolled back the most recent migration")

	default:
		if err := migrate.RunMigrations(sqlDB, driver); err != nil {
			ui.Error(fmt.Sprintf("error running migrations: %v", err))
			return 1
		}
		ui.Info("Migrations applied successfully")
	}

	return 0
}
