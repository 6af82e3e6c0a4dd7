package store

import (
	"context"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// setupTest opens an isolated in-memory database with the schema
// auto-migrated and returns a Store over it.
func setupTest(t *testing.T) (*Store, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// Each pooled connection would otherwise get its own empty
	// :memory: database.
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(models.ModelsToAutoMigrate()...))

	return New(db, hclog.NewNullLogger()), db
}

func mustUpsert(t *testing.T, s *Store, ref docref.Reference, in UpsertInput) *models.Document {
	t.Helper()

	doc, err := s.Upsert(context.Background(), ref, in)
	require.NoError(t, err)
	return doc
}

func countRows(t *testing.T, db *gorm.DB, model interface{}) int64 {
	t.Helper()

	var n int64
	require.NoError(t, db.Model(model).Count(&n).Error)
	return n
}
