//go:build integration
// +build integration

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	api "github.com/papyrusworks/papyrus/internal/api/v1"
	"github.com/papyrusworks/papyrus/internal/config"
	"github.com/papyrusworks/papyrus/internal/migrate"
	"github.com/papyrusworks/papyrus/internal/seed"
	"github.com/papyrusworks/papyrus/internal/server"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
	"github.com/papyrusworks/papyrus/pkg/store"
)

// TestContentStoreOnPostgres exercises the store, the migrations, the
// seed importer, and the HTTP surface against a real PostgreSQL server.
// The subtests share one container and run in order; the schema
// rollback runs last.
func TestContentStoreOnPostgres(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	db := startPostgres(t)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	require.NoError(t, migrate.RunMigrations(sqlDB, "postgres"))

	s := store.New(db, hclog.NewNullLogger())

	t.Run("migrations report their version", func(t *testing.T) {
		version, dirty, err := migrate.GetMigrationVersion(sqlDB, "postgres")
		require.NoError(t, err)
		assert.EqualValues(t, 1, version)
		assert.False(t, dirty)

		// Reapplying is a no-op, not an error.
		require.NoError(t, migrate.RunMigrations(sqlDB, "postgres"))
	})

	t.Run("schema rejects a document with no content pointers", func(t *testing.T) {
		err := db.Exec(`INSERT INTO documents (path) VALUES ('/broken')`).Error
		require.Error(t, err)
		assert.Contains(t, err.Error(), "documents_content_state_check")
	})

	t.Run("document lifecycle", func(t *testing.T) {
		doc, err := s.Upsert(ctx, docref.Reference{}, store.UpsertInput{
			Path: "/guides/intro", Title: "Intro", Content: "v1", Published: true,
		})
		require.NoError(t, err)
		assert.Equal(t, models.ContentStatePublishedOnly, doc.ContentState())

		// Draft edits stay invisible.
		drafted, err := s.Upsert(ctx, docref.ByID(doc.ID), store.UpsertInput{
			Title: "Intro", Content: "v2 draft",
		})
		require.NoError(t, err)
		assert.Equal(t, models.ContentStatePublishedWithDraft, drafted.ContentState())
		assert.Equal(t, "v1", drafted.CurrentRecord.Content)

		// Renaming leaves a working redirect behind.
		_, err = s.Upsert(ctx, docref.ByID(doc.ID), store.UpsertInput{
			Path: "/guides/introduction", Title: "Intro", Content: "v2 draft", Published: true,
		})
		require.NoError(t, err)

		res, err := s.FetchByReference(ctx, docref.ByPath("/guides/intro"))
		require.NoError(t, err)
		assert.True(t, res.IsRedirect())
		assert.Equal(t, "/guides/introduction", res.Document.Path)
		assert.Equal(t, "v2 draft", res.Document.CurrentRecord.Content)

		// The namespace spans documents and redirects.
		_, err = s.Upsert(ctx, docref.Reference{}, store.UpsertInput{
			Path: "/guides/intro", Title: "Squatter", Published: true,
		})
		require.Error(t, err)
		assert.ErrorIs(t, err, store.ErrPathConflict)

		_, err = s.AddRedirect(ctx, docref.ByID(doc.ID), "/guides/start")
		require.NoError(t, err)
		redirects, err := s.ListRedirects(ctx, docref.ByID(doc.ID))
		require.NoError(t, err)
		assert.Len(t, redirects, 2)

		// Unpublish retires the content without freeing the path.
		retired, err := s.Unpublish(ctx, docref.ByID(doc.ID))
		require.NoError(t, err)
		assert.False(t, retired.IsVisible())

		// Delete frees every path the document held.
		require.NoError(t, s.Delete(ctx, docref.ByID(doc.ID)))
		for _, path := range []string{"/guides/intro", "/guides/introduction", "/guides/start"} {
			_, err := s.FetchByReference(ctx, docref.ByPath(path))
			assert.ErrorIs(t, err, store.ErrNotFound, path)
		}
	})

	t.Run("concurrent claims on one path elect a single winner", func(t *testing.T) {
		const racers = 8

		var wg sync.WaitGroup
		errs := make(chan error, racers)
		for n := 0; n < racers; n++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				_, err := s.Upsert(ctx, docref.Reference{}, store.UpsertInput{
					Path:      "/contested",
					Title:     fmt.Sprintf("Racer %d", n),
					Published: true,
				})
				errs <- err
			}(n)
		}
		wg.Wait()
		close(errs)

		var wins, conflicts int
		for err := range errs {
			switch {
			case err == nil:
				wins++
			case errors.Is(err, store.ErrPathConflict):
				conflicts++
			default:
				t.Fatalf("unexpected racer error: %v", err)
			}
		}
		assert.Equal(t, 1, wins, "exactly one claim wins")
		assert.Equal(t, racers-1, conflicts, "the rest fail deterministically")
	})

	t.Run("seed import", func(t *testing.T) {
		importer := seed.NewImporter(s, db, hclog.NewNullLogger())
		summary, err := importer.Import(ctx, []byte(`
documents:
  - path: /seeded/welcome
    title: Welcome
    content: Welcome aboard.
    published: true
    redirects:
      - /seeded/hello
  - title: Seeded Release Notes
    content: Changes.
`))
		require.NoError(t, err)
		assert.Equal(t, 2, summary.Documents)
		assert.Equal(t, 1, summary.Redirects)
		assert.Zero(t, summary.Skipped)

		res, err := s.FetchByReference(ctx, docref.ByPath("/seeded-release-notes"))
		require.NoError(t, err)
		assert.Equal(t, "Seeded Release Notes", res.Document.DraftRecord.Title)
	})

	t.Run("http round trip", func(t *testing.T) {
		srv := server.Server{
			Config: config.DefaultConfig(),
			DB:     db,
			Store:  s,
			Logger: hclog.NewNullLogger(),
		}

		mux := http.NewServeMux()
		mux.Handle("/api/v1/documents", api.DocumentsHandler(srv))
		mux.Handle("/api/v1/documents/", api.DocumentHandler(srv))
		mux.Handle("/api/v1/pages", api.PagesHandler(srv))
		mux.Handle("/api/v1/health", api.HealthHandler(srv))

		ts := httptest.NewServer(mux)
		defer ts.Close()

		post := func(t *testing.T, body string) *models.Document {
			t.Helper()
			resp, err := http.Post(ts.URL+"/api/v1/documents", "application/json",
				bytes.NewReader([]byte(body)))
			require.NoError(t, err)
			defer resp.Body.Close()
			require.Equal(t, http.StatusOK, resp.StatusCode)

			doc := &models.Document{}
			require.NoError(t, json.NewDecoder(resp.Body).Decode(doc))
			return doc
		}

		doc := post(t, `{"path": "/via-api", "title": "Via API", "content": "hello", "published": true}`)
		require.NotZero(t, doc.ID)

		// Rename through the API, then resolve the old path as a reader.
		post(t, fmt.Sprintf(
			`{"document": %d, "path": "/via-api-moved", "title": "Via API", "content": "hello", "published": true}`,
			doc.ID))

		resp, err := http.Get(ts.URL + "/api/v1/pages?path=/via-api")
		require.NoError(t, err)
		defer resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		var page api.PagesResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
		require.NotNil(t, page.Redirect)
		assert.Equal(t, "/via-api", page.Redirect.From)
		assert.Equal(t, "/via-api-moved", page.Redirect.To)

		health, err := http.Get(ts.URL + "/api/v1/health")
		require.NoError(t, err)
		defer health.Body.Close()
		assert.Equal(t, http.StatusOK, health.StatusCode)
	})

	t.Run("orphan purge", func(t *testing.T) {
		for _, title := range []string{"Stray A", "Stray B"} {
			rec := &models.DocumentRecord{Title: title}
			require.NoError(t, rec.Create(db))
		}

		purged, err := s.PurgeOrphanRecords(ctx)
		require.NoError(t, err)
		assert.EqualValues(t, 2, purged)
	})

	t.Run("rollback and reapply", func(t *testing.T) {
		require.NoError(t, migrate.RollbackMigration(sqlDB, "postgres"))

		version, dirty, err := migrate.GetMigrationVersion(sqlDB, "postgres")
		require.NoError(t, err)
		assert.Zero(t, version)
		assert.False(t, dirty)
		assert.False(t, db.Migrator().HasTable("documents"))

		require.NoError(t, migrate.RunMigrations(sqlDB, "postgres"))
		assert.True(t, db.Migrator().HasTable("documents"))
	})
}
