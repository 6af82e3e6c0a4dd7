package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/papyrusworks/papyrus/pkg/docref"
	"github.com/papyrusworks/papyrus/pkg/models"
)

// FetchByReference resolves a reference to a document: by id, or by
// live path, or, when no live document owns the path, through an
// active redirect. A redirect hit is marked on the Result so callers
// can issue a redirect response instead of rendering.
//
// Draft-only documents are returned with a nil current view; whether
// anonymous readers may see them is the HTTP layer's call, not the
// store's. Fails with ErrNotFound when nothing matches.
func (s *Store) FetchByReference(ctx context.Context, ref docref.Reference) (*Result, error) {
	const op = "FetchByReference"
	db := s.db.WithContext(ctx)

	if ref.IsZero() {
		return nil, &Error{Op: op, Err: fmt.Errorf("empty reference: %w", ErrNotFound)}
	}

	if id, ok := ref.ID(); ok {
		doc := &models.Document{}
		if err := doc.Get(db, id); err != nil {
			return nil, wrapOp(op, notFoundAs(err, ref, ErrNotFound))
		}
		return &Result{Document: doc}, nil
	}

	path, _ := ref.Path()

	doc := &models.Document{}
	err := doc.GetByPath(db, path)
	if err == nil {
		return &Result{Document: doc}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, wrapOp(op, err)
	}

	// No live document owns the path; an active redirect may.
	redirect := &models.Redirect{}
	if err := redirect.GetByPath(db, path); err != nil {
		return nil, wrapOp(op, notFoundAs(err, ref, ErrNotFound))
	}

	target := &models.Document{}
	if err := target.Get(db, redirect.DocumentID); err != nil {
		return nil, wrapOp(op, err)
	}

	return &Result{Document: target, Redirect: redirect}, nil
}

// notFoundAs translates gorm's record-not-found into the given sentinel
// annotated with the reference; other errors pass through.
func notFoundAs(err error, ref docref.Reference, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", ref, sentinel)
	}
	return err
}
