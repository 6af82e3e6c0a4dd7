package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// DocumentRecord is an immutable content snapshot. Every content change
// creates a new record and repoints the owning document; records are
// never rewritten in place. The published flag is pointer metadata: it
// flips when a draft record is promoted to current, and that is the only
// mutation a record ever sees.
type DocumentRecord struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	Title   string `gorm:"type:varchar(500);not null" json:"title"`
	Content string `gorm:"type:text" json:"content"`

	// Published records whether this snapshot is (or was) publicly
	// visible as some document's current record.
	Published bool `gorm:"not null;default:false" json:"published"`
}

// TableName specifies the table name.
func (DocumentRecord) TableName() string {
	return "document_records"
}

// Create inserts the record.
func (r *DocumentRecord) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.Create(r).Error
}

// Get retrieves a record by id.
func (r *DocumentRecord) Get(db *gorm.DB, id uint) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return err
	}
	return db.First(r, id).Error
}

// MarkPublished flips the published flag when this record is promoted
// to a document's current record.
func (r *DocumentRecord) MarkPublished(db *gorm.DB) error {
	r.Published = true
	return db.Model(r).Update("published", true).Error
}

// MarkUnpublished flips the published flag back when this record is
// retired to draft by an unpublish.
func (r *DocumentRecord) MarkUnpublished(db *gorm.DB) error {
	r.Published = false
	return db.Model(r).Update("published", false).Error
}

// ContentEquals reports whether a candidate title/content pair matches
// this snapshot, which is how upsert detects a no-op content write.
func (r *DocumentRecord) ContentEquals(title, content string) bool {
	return r.Title == title && r.Content == content
}
