package api

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// newTestServer builds a server.Server backed by an in-memory SQLite
// database.
func newTestServer(t *testing.T) server.Server {
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

	return server.Server{
		Config: config.DefaultConfig(),
		DB:     db,
		Store:  store.New(db, hclog.NewNullLogger()),
		Logger: hclog.NewNullLogger(),
	}
}

// do runs a request against the handler and returns the response.
func do(t *testing.T, handler http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	r := httptest.NewRequest(method, target, reader)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)
	return w
}

// decodeBody unmarshals the response body into v.
func decodeBody(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v))
}

// seedDocument creates a document directly through the store.
func seedDocument(t *testing.T, srv server.Server, in store.UpsertInput) *models.Document {
	t.Helper()

	doc, err := srv.Store.Upsert(context.Background(), docref.Reference{}, in)
	require.NoError(t, err)
	return doc
}
