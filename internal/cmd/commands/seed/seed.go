package seed

import (
	"context"
	"flag"
	"fmt"

	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/internal/migrate"
	"github.com/papyrusworks/papyrus/internal/seed"
	"github.com/papyrusworks/papyrus/pkg/database"
	"github.com/papyrusworks/papyrus/pkg/store"
)

type Command struct {
	*base.Command

	flagConfig string
	flagFile   string
}

func (c *Command) Synopsis() string {
	return "Import documents from a YAML seed file"
}

func (c *Command) Help() string {
	return `Usage: papyrus seed -file=documents.yml

  Import documents from a YAML seed file. Entries that fail to import
  are reported and skipped; the rest of the file still imports.

  Seed file format:

    documents:
      - path: /welcome        # optional, derived from title when absent
        title: Welcome
        content: "# Welcome"
        published: true
        created_at: 2024-01-15
        redirects:
          - /home
` + c.Flags().Help()
}

func (c *Command) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("seed", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to config file. Omit to use the embedded SQLite database.",
	)
	f.StringVar(
		&c.flagFile, "file", "",
		"(Required) Path to the YAML seed file.",
	)

	return f
}

func (c *Command) Run(args []string) int {
	logger, ui := c.Log, c.UI

	f := c.Flags()
	if err := f.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
		return 1
	}
	if c.flagFile == "" {
		ui.Error("file flag is required")
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

	db, err := database.Connect(cfg.DatabaseConfig(), logger)
	if err != nil {
		ui.Error(fmt.Sprintf("error connecting to database: %v", err))
		return 1
	}

	if cfg.Database.AutoMigrate != nil && *cfg.Database.AutoMigrate {
		sqlDB, err := db.DB()
		if err != nil {
			ui.Error(fmt.Sprintf("error getting database handle: %v", err))
			return 1
		}
		if err := migrate.RunMigrations(sqlDB, cfg.Database.Driver); err != nil {
			ui.Error(fmt.Sprintf("error running migrations: %v", err))
			return 1
		}
	}

	importer := seed.NewImporter(store.New(db, logger), db, logger)
	summary, err := importer.ImportFile(context.Background(), c.flagFile)
	if err != nil {
		if summary == nil {
			ui.Error(fmt.Sprintf("error importing seed file: %v", err))
			return 1
		}
		// Partial success: report what imported and what failed.
		ui.Warn(fmt.Sprintf("some entries failed to import: %v", err))
	}

	ui.Info(fmt.Sprintf(
		"Imported %d documents and %d redirects (%d skipped)",
		summary.Documents, summary.Redirects, summary.Skipped,
	))

	if summary.Skipped > 0 {
		return 1
	}
	return 0
}
