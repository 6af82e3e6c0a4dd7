package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/papyrusworks/papyrus/pkg/docpath"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

func TestAddRedirect(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/canonical", Title: "Canonical", Published: true,
	})

	redirect, err := s.AddRedirect(ctx, docref.ByID(doc.ID), "/legacy")
	require.NoError(t, err)
	assert.Equal(t, doc.ID, redirect.DocumentID)
	assert.Equal(t, "/legacy", redirect.Path)

	res, err := s.FetchByReference(ctx, docref.ByPath("/legacy"))
	require.NoError(t, err)
	assert.True(t, res.IsRedirect())
	assert.Equal(t, doc.ID, res.Document.ID)

	// The alias claims its spot in the shared namespace.
	reservation := &models.PathReservation{}
	require.NoError(t, reservation.GetByPath(db, "/legacy"))
	assert.Equal(t, models.ReservationKindRedirect, reservation.Kind)
	assert.Equal(t, doc.ID, reservation.DocumentID)
}

func TestAddRedirect_MultiplePerDocument(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/hub", Title: "Hub", Published: true,
	})

	for _, alias := range []string{"/spoke-one", "/spoke-two", "/spoke-three"} {
		_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), alias)
		require.NoError(t, err)
	}

	redirects, err := s.ListRedirects(ctx, docref.ByID(doc.ID))
	require.NoError(t, err)
	require.Len(t, redirects, 3)
	assert.Equal(t, "/spoke-one", redirects[0].Path, "oldest first")
	assert.Equal(t, "/spoke-three", redirects[2].Path)
}

func TestAddRedirect_DocumentNotFound(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	tests := []struct {
		name string
		ref  docref.Reference
	}{
		{name: "missing id", ref: docref.ByID(404)},
		{name: "missing path", ref: docref.ByPath("/ghost")},
		{name: "empty reference", ref: docref.Reference{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddRedirect(ctx, tt.ref, "/somewhere")
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrDocumentNotFound)
		})
	}
}

func TestAddRedirect_InvalidPath(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/valid", Title: "Valid", Published: true,
	})

	tests := []struct {
		name     string
		path     string
		wantRule docpath.Rule
	}{
		{name: "empty", path: "", wantRule: docpath.RuleRequired},
		{name: "reserved prefix", path: "/_internal", wantRule: docpath.RuleReservedPrefix},
		{name: "trailing underscore", path: "/alias_", wantRule: docpath.RuleTrailingUnderscore},
		{name: "trailing slash", path: "/alias/", wantRule: docpath.RuleTrailingSlash},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidPath)

			var ruleErr *docpath.RuleError
			require.ErrorAs(t, err, &ruleErr)
			assert.Equal(t, tt.wantRule, ruleErr.Rule)
		})
	}
}

func TestAddRedirect_Conflicts(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/owner", Title: "Owner", Published: true,
	})
	other := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/other", Title: "Other", Published: true,
	})
	_, err := s.AddRedirect(ctx, docref.ByID(other.ID), "/other-alias")
	require.NoError(t, err)

	tests := []struct {
		name string
		path string
	}{
		{name: "own live path", path: "/owner"},
		{name: "another document's live path", path: "/other"},
		{name: "another document's redirect", path: "/other-alias"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), tt.path)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrPathConflict)
		})
	}

	t.Run("duplicate of an existing own redirect", func(t *testing.T) {
		_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), "/owner-alias")
		require.NoError(t, err)
		_, err = s.AddRedirect(ctx, docref.ByID(doc.ID), "/owner-alias")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrPathConflict)
	})

	t.Run("failed adds leave the redirect set unchanged", func(t *testing.T) {
		redirects, err := s.ListRedirects(ctx, docref.ByID(doc.ID))
		require.NoError(t, err)
		require.Len(t, redirects, 1)
		assert.Equal(t, "/owner-alias", redirects[0].Path)
	})
}

func TestRemoveRedirect(t *testing.T) {
	s, db := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/main", Title: "Main", Published: true,
	})
	_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), "/retired")
	require.NoError(t, err)

	require.NoError(t, s.RemoveRedirect(ctx, docref.ByID(doc.ID), "/retired"))

	_, err = s.FetchByReference(ctx, docref.ByPath("/retired"))
	assert.ErrorIs(t, err, ErrNotFound)
	assert.EqualValues(t, 0, countRows(t, db, &models.Redirect{}))

	t.Run("released path is claimable again", func(t *testing.T) {
		squatter := mustUpsert(t, s, docref.Reference{}, UpsertInput{
			Path: "/retired", Title: "Squatter", Published: true,
		})
		assert.Equal(t, "/retired", squatter.Path)
	})
}

func TestRemoveRedirect_NotFound(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/present", Title: "Present", Published: true,
	})
	other := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/bystander", Title: "Bystander", Published: true,
	})
	_, err := s.AddRedirect(ctx, docref.ByID(other.ID), "/bystander-alias")
	require.NoError(t, err)

	t.Run("document owns no such redirect", func(t *testing.T) {
		err := s.RemoveRedirect(ctx, docref.ByID(doc.ID), "/never-added")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("redirect owned by a different document", func(t *testing.T) {
		err := s.RemoveRedirect(ctx, docref.ByID(doc.ID), "/bystander-alias")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("missing document", func(t *testing.T) {
		err := s.RemoveRedirect(ctx, docref.ByID(404), "/present")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})
}

func TestListRedirects(t *testing.T) {
	s, _ := setupTest(t)
	ctx := context.Background()

	doc := mustUpsert(t, s, docref.Reference{}, UpsertInput{
		Path: "/entry", Title: "Entry", Published: true,
	})

	t.Run("fresh document has none", func(t *testing.T) {
		redirects, err := s.ListRedirects(ctx, docref.ByID(doc.ID))
		require.NoError(t, err)
		assert.Empty(t, redirects)
	})

	t.Run("missing document", func(t *testing.T) {
		_, err := s.ListRedirects(ctx, docref.ByID(404))
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDocumentNotFound)
	})

	t.Run("rename-created and explicit redirects mix", func(t *testing.T) {
		mustUpsert(t, s, docref.ByID(doc.ID), UpsertInput{
			Path: "/entry-renamed", Title: "Entry", Published: true,
		})
		_, err := s.AddRedirect(ctx, docref.ByID(doc.ID), "/entry-extra")
		require.NoError(t, err)

		redirects, err := s.ListRedirects(ctx, docref.ByID(doc.ID))
		require.NoError(t, err)
		require.Len(t, redirects, 2)
		assert.Equal(t, "/entry", redirects[0].Path)
		assert.Equal(t, "/entry-extra", redirects[1].Path)
	})
}
