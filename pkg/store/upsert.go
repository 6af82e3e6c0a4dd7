package store

import (
	"context"
	"errors"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docpath"
	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// UpsertInput carries the writable document fields.
type UpsertInput struct {
	// Path is the live path for a created document, or the new path
	// for a rename. Empty on update means "keep the current path".
	Path string

	Title   string
	Content string

	// Published selects the write target: true promotes the content to
	// the public current record, false touches only the draft.
	Published bool
}

// Validate checks the input fields that every upsert requires.
func (in UpsertInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Title, validation.Required),
	)
}

// Upsert updates the document the reference resolves to, or creates a
// new one when the reference is empty or resolves to nothing.
//
// A path differing from the document's current path is a rename: the
// new path is validated and claimed, the old path flips into a redirect
// pointing back at this document, and fetching the old path afterwards
// yields a redirect result. An upsert with an unchanged path never
// creates a redirect.
//
// Content writes target the record selected by Published. Unchanged
// content inserts no new record; publishing content equal to the
// pending draft promotes that draft record in place. A published write
// supersedes any pending draft.
//
// The returned document has both content views materialized.
func (s *Store) Upsert(ctx context.Context, ref docref.Reference, in UpsertInput) (*models.Document, error) {
	const op = "Upsert"

	if err := in.Validate(); err != nil {
		return nil, wrapOp(op, err)
	}

	var out *models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := resolveForWrite(tx, ref)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			// A reference resolving to nothing creates, matching the
			// upsert contract.
			doc, err = s.create(tx, in)
			if err != nil {
				return err
			}
		} else if err := s.update(tx, doc, in); err != nil {
			return err
		}

		// Reload inside the transaction so both content views reflect
		// exactly what was committed.
		out = &models.Document{}
		return out.Get(tx, doc.ID)
	})
	if err != nil {
		return nil, wrapOp(op, err)
	}

	s.logger.Debug("upserted document",
		"id", out.ID,
		"path", out.Path,
		"state", out.ContentState(),
	)
	return out, nil
}

// create inserts a document, its first record, and its path claim.
func (s *Store) create(tx *gorm.DB, in UpsertInput) (*models.Document, error) {
	// Lexical validation always precedes uniqueness checks.
	if err := docpath.Validate(in.Path); err != nil {
		return nil, err
	}

	claimed := &models.PathReservation{}
	err := claimed.GetByPath(tx, in.Path)
	if err == nil {
		return nil, fmt.Errorf("path %q: %w", in.Path, ErrPathConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	rec := &models.DocumentRecord{
		Title:     in.Title,
		Content:   in.Content,
		Published: in.Published,
	}
	if err := rec.Create(tx); err != nil {
		return nil, err
	}

	doc := &models.Document{Path: in.Path}
	if in.Published {
		doc.CurrentRecordID = &rec.ID
	} else {
		doc.DraftRecordID = &rec.ID
	}
	if err := doc.Create(tx); err != nil {
		return nil, translateUnique(err, in.Path)
	}

	res := &models.PathReservation{
		Path:       in.Path,
		DocumentID: doc.ID,
		Kind:       models.ReservationKindDocument,
	}
	if err := res.Create(tx); err != nil {
		return nil, translateUnique(err, in.Path)
	}

	return doc, nil
}

// update applies a path rename and/or a content write to an existing
// document, then persists it and drops any superseded records.
func (s *Store) update(tx *gorm.DB, doc *models.Document, in UpsertInput) error {
	if in.Path != "" && in.Path != doc.Path {
		if err := s.rename(tx, doc, in.Path); err != nil {
			return err
		}
	}

	superseded, err := applyContent(tx, doc, in)
	if err != nil {
		return err
	}

	if err := doc.Save(tx); err != nil {
		return translateUnique(err, doc.Path)
	}

	// Superseded records are unreferenced once the document row is
	// repointed; dropping them here keeps history at one generation.
	for _, id := range superseded {
		if err := tx.Delete(&models.DocumentRecord{}, id).Error; err != nil {
			return err
		}
	}
	return nil
}

// rename moves the document to newPath: claim the new path, flip the
// old path's claim into a redirect claim, and insert the Redirect row
// so existing inbound links keep resolving.
func (s *Store) rename(tx *gorm.DB, doc *models.Document, newPath string) error {
	if err := docpath.Validate(newPath); err != nil {
		return err
	}

	claimed := &models.PathReservation{}
	err := claimed.GetByPath(tx, newPath)
	switch {
	case err == nil && claimed.DocumentID == doc.ID && claimed.Kind == models.ReservationKindRedirect:
		// Renaming back onto one of this document's own redirects
		// reclaims the path.
		if err := tx.
			Where("document_id = ? AND path = ?", doc.ID, newPath).
			Delete(&models.Redirect{}).
			Error; err != nil {
			return err
		}
		if err := claimed.SetKind(tx, models.ReservationKindDocument); err != nil {
			return err
		}
	case err == nil:
		return fmt.Errorf("path %q: %w", newPath, ErrPathConflict)
	case errors.Is(err, gorm.ErrRecordNotFound):
		res := &models.PathReservation{
			Path:       newPath,
			DocumentID: doc.ID,
			Kind:       models.ReservationKindDocument,
		}
		if err := res.Create(tx); err != nil {
			return translateUnique(err, newPath)
		}
	default:
		return err
	}

	oldPath := doc.Path

	oldClaim := &models.PathReservation{}
	err = oldClaim.GetByPath(tx, oldPath)
	switch {
	case err == nil:
		if err := oldClaim.SetKind(tx, models.ReservationKindRedirect); err != nil {
			return err
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		res := &models.PathReservation{
			Path:       oldPath,
			DocumentID: doc.ID,
			Kind:       models.ReservationKindRedirect,
		}
		if err := res.Create(tx); err != nil {
			return translateUnique(err, oldPath)
		}
	default:
		return err
	}

	redirect := &models.Redirect{DocumentID: doc.ID, Path: oldPath}
	if err := redirect.Create(tx); err != nil {
		return translateUnique(err, oldPath)
	}

	doc.Path = newPath

	s.logger.Info("renamed document",
		"id", doc.ID,
		"from", oldPath,
		"to", newPath,
	)
	return nil
}

// applyContent repoints the document's record pointers per the
// published flag and returns the ids of records left unreferenced by
// the repointing. It writes nothing to the document row itself.
func applyContent(tx *gorm.DB, doc *models.Document, in UpsertInput) ([]uint, error) {
	current, draft := doc.CurrentRecord, doc.DraftRecord

	if in.Published {
		// Publishing identical content is a no-op.
		if current != nil && current.ContentEquals(in.Title, in.Content) {
			return nil, nil
		}

		// Publishing the pending draft promotes its record in place:
		// no new row, the published flag flips.
		if draft != nil && draft.ContentEquals(in.Title, in.Content) {
			if err := draft.MarkPublished(tx); err != nil {
				return nil, err
			}
			superseded := supersededBy(doc.CurrentRecordID, doc.DraftRecordID)
			doc.CurrentRecordID = doc.DraftRecordID
			doc.CurrentRecord = draft
			doc.DraftRecordID = nil
			doc.DraftRecord = nil
			return superseded, nil
		}

		rec := &models.DocumentRecord{
			Title:     in.Title,
			Content:   in.Content,
			Published: true,
		}
		if err := rec.Create(tx); err != nil {
			return nil, err
		}
		superseded := supersededBy(doc.CurrentRecordID, &rec.ID)
		superseded = append(superseded, supersededBy(doc.DraftRecordID, &rec.ID)...)
		doc.CurrentRecordID = &rec.ID
		doc.CurrentRecord = rec
		doc.DraftRecordID = nil
		doc.DraftRecord = nil
		return superseded, nil
	}

	// Draft write: the published record and its public visibility stay
	// untouched until an explicit publish.
	if draft != nil && draft.ContentEquals(in.Title, in.Content) {
		return nil, nil
	}
	if draft == nil && current != nil && current.ContentEquals(in.Title, in.Content) {
		// A draft identical to the published content adds nothing.
		return nil, nil
	}

	rec := &models.DocumentRecord{
		Title:     in.Title,
		Content:   in.Content,
		Published: false,
	}
	if err := rec.Create(tx); err != nil {
		return nil, err
	}
	superseded := supersededBy(doc.DraftRecordID, doc.CurrentRecordID)
	doc.DraftRecordID = &rec.ID
	doc.DraftRecord = rec
	return superseded, nil
}

// supersededBy returns old as a deletion candidate unless it is nil or
// still referenced by keep.
func supersededBy(old, keep *uint) []uint {
	if old == nil {
		return nil
	}
	if keep != nil && *keep == *old {
		return nil
	}
	return []uint{*old}
}
