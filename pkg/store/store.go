// Package store implements the document store: upsert with publish and
// rename semantics, reference resolution with redirect fallback, delete
// with cascade, and redirect management.
//
// Every mutating operation runs in a single database transaction
// spanning its uniqueness checks and its writes, so two concurrent
// upserts racing on the same new path cannot both succeed: the loser
// fails deterministically with ErrPathConflict, raised either by the
// application-level pre-check or by the path_reservations primary key.
// The store never retries a mutation, since retrying a conflicting
// write would not change the outcome, and performs no scheduling of its
// own; cancellation arrives through the caller's context.
package store

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-hclog"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// Store owns the Document/DocumentRecord/Redirect entities and their
// relational invariants.
type Store struct {
	db     *gorm.DB
	logger hclog.Logger
}

// New returns a Store backed by db.
func New(db *gorm.DB, logger hclog.Logger) *Store {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Store{
		db:     db,
		logger: logger.Named("store"),
	}
}

// Result is the outcome of resolving a reference: the resolved document
// plus, when resolution went through a redirect, the redirect followed.
type Result struct {
	Document *models.Document
	Redirect *models.Redirect
}

// IsRedirect reports whether the reference resolved via a redirect
// rather than an id or a live path. Callers issue a redirect response
// instead of rendering in that case.
func (r *Result) IsRedirect() bool {
	return r.Redirect != nil
}

// resolveForWrite locates the document a mutation targets: by id, or by
// live path. Redirect paths never resolve for writes. Returns
// gorm.ErrRecordNotFound when nothing matches, including for the zero
// reference.
func resolveForWrite(tx *gorm.DB, ref docref.Reference) (*models.Document, error) {
	doc := &models.Document{}
	if id, ok := ref.ID(); ok {
		if err := doc.Get(tx, id); err != nil {
			return nil, err
		}
		return doc, nil
	}
	if path, ok := ref.Path(); ok {
		if err := doc.GetByPath(tx, path); err != nil {
			return nil, err
		}
		return doc, nil
	}
	return nil, gorm.ErrRecordNotFound
}

// reservePath claims a path in the global namespace for a document.
// The lookup is the fast-fail layer; the primary key on
// path_reservations stays authoritative when concurrent claims race
// past it.
func reservePath(tx *gorm.DB, path string, documentID uint, kind string) error {
	existing := &models.PathReservation{}
	err := existing.GetByPath(tx, path)
	if err == nil {
		return fmt.Errorf("path %q: %w", path, ErrPathConflict)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	res := &models.PathReservation{
		Path:       path,
		DocumentID: documentID,
		Kind:       kind,
	}
	if err := res.Create(tx); err != nil {
		return translateUnique(err, path)
	}
	return nil
}

// translateUnique converts an engine uniqueness violation into
// ErrPathConflict; anything else passes through for the caller's own
// retry policy.
func translateUnique(err error, path string) error {
	if err == nil {
		return nil
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("path %q: %w", path, ErrPathConflict)
	}
	return err
}

// isUniqueViolation detects unique-constraint failures across the
// supported engines: gorm's translated error, the Postgres 23505 code,
// and the SQLite constraint message.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
