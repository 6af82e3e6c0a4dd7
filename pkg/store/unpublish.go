package store

import (
	"context"

	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// Unpublish retires a document's published record, making the document
// invisible to anonymous readers while keeping it addressable by id and
// live path. Without a pending draft the retired content becomes the
// draft, so nothing is lost; with one, the pending draft stays and the
// retired record is dropped. Unpublishing a document with no published
// record is a no-op.
func (s *Store) Unpublish(ctx context.Context, ref docref.Reference) (*models.Document, error) {
	const op = "Unpublish"

	var out *models.Document
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := resolveForWrite(tx, ref)
		if err != nil {
			return notFoundAs(err, ref, ErrNotFound)
		}

		if doc.CurrentRecordID == nil {
			out = doc
			return nil
		}

		if doc.DraftRecordID == nil {
			if err := doc.CurrentRecord.MarkUnpublished(tx); err != nil {
				return err
			}
			doc.DraftRecordID = doc.CurrentRecordID
			doc.DraftRecord = doc.CurrentRecord
			doc.CurrentRecordID = nil
			doc.CurrentRecord = nil
			if err := doc.Save(tx); err != nil {
				return err
			}
		} else {
			superseded := *doc.CurrentRecordID
			doc.CurrentRecordID = nil
			doc.CurrentRecord = nil
			if err := doc.Save(tx); err != nil {
				return err
			}
			if err := tx.Delete(&models.DocumentRecord{}, superseded).Error; err != nil {
				return err
			}
		}

		out = &models.Document{}
		return out.Get(tx, doc.ID)
	})
	if err != nil {
		return nil, wrapOp(op, err)
	}

	s.logger.Info("unpublished document", "id", out.ID, "path", out.Path)
	return out, nil
}
