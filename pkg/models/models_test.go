package models

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB opens an isolated in-memory database with the schema
// auto-migrated.
func setupTestDB(t *testing.T) *gorm.DB {
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

	require.NoError(t, db.AutoMigrate(ModelsToAutoMigrate()...))

	return db
}

// mustCreateRecord inserts a content snapshot for use by model tests.
func mustCreateRecord(t *testing.T, db *gorm.DB, title, content string, published bool) *DocumentRecord {
	t.Helper()

	rec := &DocumentRecord{Title: title, Content: content, Published: published}
	require.NoError(t, rec.Create(db))
	return rec
}
