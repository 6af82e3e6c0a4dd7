package store

import (
	"context"

	"gorm.io/gorm"
)

// PurgeOrphanRecords deletes content records referenced by no document
// and returns how many were removed. Mutations drop superseded records
// as they go, so this sweep normally finds leftovers only from older
// data or interrupted cleanups.
func (s *Store) PurgeOrphanRecords(ctx context.Context) (int64, error) {
	const op = "PurgeOrphanRecords"

	var purged int64
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Exec(`
DELETE FROM document_records
WHERE id NOT IN (
	SELECT current_record_id FROM documents WHERE current_record_id IS NOT NULL
	UNION
	SELECT draft_record_id FROM documents WHERE draft_record_id IS NOT NULL
)`)
		if result.Error != nil {
			return result.Error
		}
		purged = result.RowsAffected
		return nil
	})
	if err != nil {
		return 0, wrapOp(op, err)
	}

	s.logger.Info("purged orphan records", "count", purged)
	return purged, nil
}
