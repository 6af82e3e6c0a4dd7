package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docpath"
)

// Redirect maps a historical or explicitly added path to a document.
// A redirect always points directly at a document, never at another
// redirect, so chains are unrepresentable. Redirects are exclusively
// owned: deleting the document deletes its redirects.
type Redirect struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"createdAt"`

	DocumentID uint      `gorm:"not null;index:idx_redirects_document" json:"documentId"`
	Document   *Document `json:"-"`

	// Path is the alias. The uniqueIndex here is a local guard; the
	// authoritative constraint spans documents and redirects via
	// path_reservations.
	Path string `gorm:"uniqueIndex;not null" json:"path"`
}

// TableName specifies the table name.
func (Redirect) TableName() string {
	return "redirects"
}

// Create inserts the redirect.
func (r *Redirect) Create(db *gorm.DB) error {
	if err := validation.ValidateStruct(r,
		validation.Field(&r.DocumentID, validation.Required),
		validation.Field(&r.Path, validation.Required, docpath.ValidationRule()),
	); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.Create(r).Error
}

// GetByPath retrieves a redirect by its alias path.
func (r *Redirect) GetByPath(db *gorm.DB, path string) error {
	if err := validation.Validate(path, validation.Required); err != nil {
		return err
	}
	return db.
		Where("path = ?", path).
		First(r).
		Error
}

// GetRedirectsForDocument lists a document's redirects, oldest first.
func GetRedirectsForDocument(db *gorm.DB, documentID uint) ([]Redirect, error) {
	var redirects []Redirect
	err := db.
		Where("document_id = ?", documentID).
		Order("created_at ASC, id ASC").
		Find(&redirects).
		Error
	return redirects, err
}
