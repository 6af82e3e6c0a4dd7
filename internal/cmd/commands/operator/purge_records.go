package operator

import (
	"context"
	"flag"
	"fmt"

	"github.com/papyrusworks/papyrus/internal/cmd/base"
	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/pkg/database"
	"github.com/papyrusworks/papyrus/pkg/models"
	"github.com/papyrusworks/papyrus/pkg/store"
)

type PurgeRecordsCommand struct {
	*base.Command

	flagConfig string
	flagDryRun bool
}

func (c *PurgeRecordsCommand) Synopsis() string {
	return "Delete content records no document references"
}

func (c *PurgeRecordsCommand) Help() string {
	return `Usage: papyrus operator purge-records

  Delete document content records that no document references as its
  current or draft record. Deleting a document removes its records
  inline, so orphans only accumulate after interrupted mutations; this
  command sweeps them.` +
		c.Flags().Help()
}

func (c *PurgeRecordsCommand) Flags() *base.FlagSet {
	f := base.NewFlagSet(
		flag.NewFlagSet("purge-records", flag.ExitOnError))

	f.StringVar(
		&c.flagConfig, "config", "",
		"Path to config file. Omit to use the embedded SQLite database.",
	)
	f.BoolVar(
		&c.flagDryRun, "dry-run", false,
		"Only print what would be done without making changes.",
	)

	return f
}

func (c *PurgeRecordsCommand) Run(args []string) int {
	logger, ui := c.Log, c.UI

	flags := c.Flags()
	if err := flags.Parse(args); err != nil {
		ui.Error(fmt.Sprintf("error parsing flags: %v", err))
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

	if c.flagDryRun {
		var count int64
		err := db.Model(&models.DocumentRecord{}).
			Where(`id NOT IN (
				SELECT current_record_id FROM documents WHERE current_record_id IS NOT NULL
				UNION
				SELECT draft_record_id FROM documents WHERE draft_record_id IS NOT NULL
			)`).
			Count(&count).
			Error
		if err != nil {
			ui.Error(fmt.Sprintf("error counting orphan records: %v", err))
			return 1
		}
		ui.Info(fmt.Sprintf("DRY RUN: would delete %d orphan records", count))
		return 0
	}

	s := store.New(db, logger)
	purged, err := s.PurgeOrphanRecords(context.Background())
	if err != nil {
		ui.Error(fmt.Sprintf("error purging orphan records: %v", err))
		return 1
	}

	ui.Info(fmt.Sprintf("Deleted %d orphan records", purged))
	return 0
}
