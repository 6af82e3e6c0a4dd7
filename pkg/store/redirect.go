package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docpath"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// AddRedirect points a new alias path at the document docRef resolves
// to. The document must exist (ErrDocumentNotFound), the path must pass
// the lexical rules (ErrInvalidPath naming the violated rule), and no
// live document or redirect may already own it (ErrPathConflict). A
// failed add leaves the document's redirect set unchanged.
//
// Redirects always point directly at a document, never at another
// redirect, so chains cannot form. Multiple redirects per document are
// permitted and independent.
func (s *Store) AddRedirect(ctx context.Context, docRef docref.Reference, path string) (*models.Redirect, error) {
	const op = "AddRedirect"

	var out *models.Redirect
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := resolveForWrite(tx, docRef)
		if err != nil {
			return notFoundAs(err, docRef, ErrDocumentNotFound)
		}

		if err := docpath.Validate(path); err != nil {
			return err
		}

		if err := reservePath(tx, path, doc.ID, models.ReservationKindRedirect); err != nil {
			return err
		}

		redirect := &models.Redirect{DocumentID: doc.ID, Path: path}
		if err := redirect.Create(tx); err != nil {
			return translateUnique(err, path)
		}

		out = redirect
		s.logger.Info("added redirect", "document_id", doc.ID, "path", path)
		return nil
	})
	if err != nil {
		return nil, wrapOp(op, err)
	}
	return out, nil
}

// RemoveRedirect deletes the alias at path owned by the document docRef
// resolves to, releasing its path claim. Fails with ErrNotFound when
// the document owns no such redirect.
func (s *Store) RemoveRedirect(ctx context.Context, docRef docref.Reference, path string) error {
	const op = "RemoveRedirect"

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := resolveForWrite(tx, docRef)
		if err != nil {
			return notFoundAs(err, docRef, ErrDocumentNotFound)
		}

		result := tx.
			Where("document_id = ? AND path = ?", doc.ID, path).
			Delete(&models.Redirect{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("redirect %q: %w", path, ErrNotFound)
		}

		if err := tx.
			Where("path = ? AND kind = ?", path, models.ReservationKindRedirect).
			Delete(&models.PathReservation{}).
			Error; err != nil {
			return err
		}

		s.logger.Info("removed redirect", "document_id", doc.ID, "path", path)
		return nil
	})
	if err != nil {
		return wrapOp(op, err)
	}
	return nil
}

// ListRedirects enumerates the redirects owned by the document docRef
// resolves to, oldest first.
func (s *Store) ListRedirects(ctx context.Context, docRef docref.Reference) ([]models.Redirect, error) {
	const op = "ListRedirects"
	db := s.db.WithContext(ctx)

	doc, err := resolveForWrite(db, docRef)
	if err != nil {
		return nil, wrapOp(op, notFoundAs(err, docRef, ErrDocumentNotFound))
	}

	redirects, err := models.GetRedirectsForDocument(db, doc.ID)
	if err != nil {
		return nil, wrapOp(op, err)
	}
	return redirects, nil
}
