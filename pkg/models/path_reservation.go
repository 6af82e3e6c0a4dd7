package models

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gorm.io/gorm"
)

// ReservationKind constants. A reservation either backs a document's
// live path or a redirect's alias path.
const (
	ReservationKindDocument = "document"
	ReservationKindRedirect = "redirect"
)

// PathReservation makes the global path namespace a single uniqueness
// domain. Live document paths and redirect paths are drawn from one
// namespace (at any instant a path string resolves to at most one
// target), and that invariant is enforceable only if both kinds of
// claim land in one constraint. Every documents.path row and every
// redirects.path row has exactly one reservation, inserted in the same
// transaction as the claim it backs; the primary key on Path is the
// authoritative backstop for concurrent writers.
type PathReservation struct {
	Path      string    `gorm:"primaryKey" json:"path"`
	CreatedAt time.Time `json:"createdAt"`

	DocumentID uint      `gorm:"not null;index:idx_path_reservations_document" json:"documentId"`
	Document   *Document `json:"-"`

	// Kind is ReservationKindDocument or ReservationKindRedirect.
	Kind string `gorm:"type:varchar(20);not null" json:"kind"`
}

// TableName specifies the table name.
func (PathReservation) TableName() string {
	return "path_reservations"
}

// Create inserts the reservation. A unique violation here means another
// live document or redirect already owns the path.
func (pr *PathReservation) Create(db *gorm.DB) error {
	if err := pr.validate(); err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	return db.Create(pr).Error
}

// GetByPath retrieves the reservation owning a path.
func (pr *PathReservation) GetByPath(db *gorm.DB, path string) error {
	if err := validation.Validate(path, validation.Required); err != nil {
		return err
	}
	return db.
		Where("path = ?", path).
		First(pr).
		Error
}

// SetKind re-tags a reservation in place, keeping the claim while its
// backing row moves between documents.path and redirects.path (path
// rename flips the old claim to a redirect; reclaiming one flips it
// back).
func (pr *PathReservation) SetKind(db *gorm.DB, kind string) error {
	if err := validation.Validate(kind, validation.Required,
		validation.In(ReservationKindDocument, ReservationKindRedirect)); err != nil {
		return err
	}
	pr.Kind = kind
	return db.
		Model(&PathReservation{}).
		Where("path = ?", pr.Path).
		Update("kind", kind).
		Error
}

// Delete releases the reservation.
func (pr *PathReservation) Delete(db *gorm.DB) error {
	return db.
		Where("path = ?", pr.Path).
		Delete(&PathReservation{}).
		Error
}

func (pr *PathReservation) validate() error {
	return validation.ValidateStruct(pr,
		validation.Field(&pr.Path, validation.Required),
		validation.Field(&pr.DocumentID, validation.Required),
		validation.Field(&pr.Kind, validation.Required,
			validation.In(ReservationKindDocument, ReservationKindRedirect)),
	)
}
