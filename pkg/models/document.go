package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/papyrusworks/papyrus/pkg/docpath"
)

// ContentState classifies the draft/current pointer pair of a Document.
// The pair is a small state machine; exposing it as an enum keeps the
// illegal state (a persisted document with no content at all) visible
// and rejectable.
type ContentState string

const (
	// ContentStateEmpty is the illegal state: neither pointer set.
	ContentStateEmpty ContentState = "empty"

	// ContentStateDraftOnly has unpublished content only; invisible to
	// anonymous readers.
	ContentStateDraftOnly ContentState = "draft-only"

	// ContentStatePublishedOnly has published content and no pending
	// draft.
	ContentStatePublishedOnly ContentState = "published-only"

	// ContentStatePublishedWithDraft has published content plus a
	// pending unpublished draft.
	ContentStatePublishedWithDraft ContentState = "published-with-draft"
)

// Document is the stable, addressable entity. Its id is immutable; its
// path is the current canonical live path, unique among all live
// documents and disjoint from every redirect path (see PathReservation).
//
// Content lives in DocumentRecords: CurrentRecordID points at the
// published snapshot, DraftRecordID at a pending unpublished one.
// A document with only a draft is invisible to anonymous readers.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Path is the live path. The uniqueIndex here is a local guard;
	// the authoritative constraint spans documents and redirects via
	// path_reservations.
	Path string `gorm:"uniqueIndex;not null" json:"path"`

	// CurrentRecordID references the published content snapshot.
	CurrentRecordID *uint           `json:"currentRecordId,omitempty"`
	CurrentRecord   *DocumentRecord `gorm:"foreignKey:CurrentRecordID" json:"current,omitempty"`

	// DraftRecordID references a pending unpublished snapshot.
	DraftRecordID *uint           `json:"draftRecordId,omitempty"`
	DraftRecord   *DocumentRecord `gorm:"foreignKey:DraftRecordID" json:"draft,omitempty"`

	// Redirects are the historical/explicit aliases owned by this
	// document. Deleting the document cascades to them.
	Redirects []Redirect `gorm:"constraint:OnDelete:CASCADE" json:"redirects,omitempty"`
}

// TableName specifies the table name.
func (Document) TableName() string {
	return "documents"
}

// ContentState derives the state machine position from the pointer pair.
func (d *Document) ContentState() ContentState {
	switch {
	case d.CurrentRecordID == nil && d.DraftRecordID == nil:
		return ContentStateEmpty
	case d.CurrentRecordID == nil:
		return ContentStateDraftOnly
	case d.DraftRecordID == nil:
		return ContentStatePublishedOnly
	default:
		return ContentStatePublishedWithDraft
	}
}

// IsVisible reports whether anonymous readers may resolve this document
// at its path.
func (d *Document) IsVisible() bool {
	return d.CurrentRecordID != nil
}

// Validate checks the relational invariants before a write.
func (d *Document) Validate() error {
	if err := validation.ValidateStruct(d,
		validation.Field(&d.Path, validation.Required, docpath.ValidationRule()),
	); err != nil {
		return err
	}
	if d.ContentState() == ContentStateEmpty {
		return fmt.Errorf("document %d has neither a current nor a draft record", d.ID)
	}
	return nil
}

// BeforeSave rejects persisting a document in the empty content state.
func (d *Document) BeforeSave(tx *gorm.DB) error {
	if d.ContentState() == ContentStateEmpty {
		return fmt.Errorf("refusing to save document %d with no content records", d.ID)
	}
	return nil
}

// Create inserts the document.
func (d *Document) Create(db *gorm.DB) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.
		Omit(clause.Associations).
		Create(d).
		Error
}

// Get retrieves a document by id with both content views materialized.
func (d *Document) Get(db *gorm.DB, id uint) error {
	if err := validation.Validate(id, validation.Required); err != nil {
		return err
	}
	return db.
		Preload("CurrentRecord").
		Preload("DraftRecord").
		First(d, id).
		Error
}

// GetByPath retrieves a document by its live path with both content
// views materialized. Redirect paths do not resolve here.
func (d *Document) GetByPath(db *gorm.DB, path string) error {
	if err := validation.Validate(path, validation.Required); err != nil {
		return err
	}
	return db.
		Where("path = ?", path).
		Preload("CurrentRecord").
		Preload("DraftRecord").
		First(d).
		Error
}

// Save persists all fields of an already-loaded document.
func (d *Document) Save(db *gorm.DB) error {
	if err := d.Validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.
		Omit(clause.Associations).
		Save(d).
		Error
}

// RecordIDs returns the distinct record ids this document points at.
func (d *Document) RecordIDs() []uint {
	var ids []uint
	if d.CurrentRecordID != nil {
		ids = append(ids, *d.CurrentRecordID)
	}
	if d.DraftRecordID != nil && (d.CurrentRecordID == nil || *d.DraftRecordID != *d.CurrentRecordID) {
		ids = append(ids, *d.DraftRecordID)
	}
	return ids
}
