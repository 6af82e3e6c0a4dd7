package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// Delete removes the document a reference resolves to, cascading to its
// redirects, its path claims, and its now-unreferenced content records.
// Only ids and live paths resolve for deletion; fails with ErrNotFound
// when nothing matches.
func (s *Store) Delete(ctx context.Context, ref docref.Reference) error {
	const op = "Delete"

	if ref.IsZero() {
		return &Error{Op: op, Err: fmt.Errorf("empty reference: %w", ErrNotFound)}
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		doc, err := resolveForWrite(tx, ref)
		if err != nil {
			return notFoundAs(err, ref, ErrNotFound)
		}

		recordIDs := doc.RecordIDs()

		// The schema cascades are the backstop; SQLite runs with
		// foreign keys off by default, so cascade explicitly.
		if err := tx.
			Where("document_id = ?", doc.ID).
			Delete(&models.Redirect{}).
			Error; err != nil {
			return err
		}
		if err := tx.
			Where("document_id = ?", doc.ID).
			Delete(&models.PathReservation{}).
			Error; err != nil {
			return err
		}
		if err := tx.Delete(&models.Document{}, doc.ID).Error; err != nil {
			return err
		}
		if len(recordIDs) > 0 {
			if err := tx.Delete(&models.DocumentRecord{}, recordIDs).Error; err != nil {
				return err
			}
		}

		s.logger.Info("deleted document", "id", doc.ID, "path", doc.Path)
		return nil
	})
	if err != nil {
		return wrapOp(op, err)
	}
	return nil
}
