package docref

import (
	"errors"
	"fmt"
)

// Kind identifies which variant a Reference carries.
type Kind string

const (
	// KindNone is the zero Reference, carrying no identity.
	KindNone Kind = ""

	// KindID references a document by its immutable numeric identity.
	KindID Kind = "id"

	// KindPath references a document by its live path.
	KindPath Kind = "path"

	// KindRouteID references a document by a numeric identity that
	// arrived through routing data (a URL segment or a route-level
	// document id field) rather than an explicit caller resolution.
	// It resolves exactly like KindID.
	KindRouteID Kind = "route-id"
)

// ErrInvalidReference reports a reference shape that cannot identify a
// document: null, booleans, arrays, fractional or non-positive numbers,
// or a recognized field carrying the wrong type.
var ErrInvalidReference = errors.New("invalid document reference")

// Reference identifies a document by exactly one of: numeric id, live
// path, or nothing. The zero value is the empty reference.
//
// References are immutable once created.
type Reference struct {
	kind Kind
	id   uint
	path string
}

// ByID references a document by numeric identity.
func ByID(id uint) Reference {
	return Reference{kind: KindID, id: id}
}

// ByPath references a document by its live path.
func ByPath(path string) Reference {
	return Reference{kind: KindPath, path: path}
}

// ByRouteID references a document by an id obtained from routing data.
// Lookup semantics match ByID; the distinct kind records where the
// identity came from.
func ByRouteID(id uint) Reference {
	return Reference{kind: KindRouteID, id: id}
}

// Kind returns the variant this reference carries.
func (r Reference) Kind() Kind {
	return r.kind
}

// ID returns the numeric identity and true when the reference is
// id-like (KindID or KindRouteID).
func (r Reference) ID() (uint, bool) {
	if r.kind == KindID || r.kind == KindRouteID {
		return r.id, true
	}
	return 0, false
}

// Path returns the path and true when the reference is a path reference.
func (r Reference) Path() (string, bool) {
	if r.kind == KindPath {
		return r.path, true
	}
	return "", false
}

// IsZero reports whether the reference carries no identity.
func (r Reference) IsZero() bool {
	return r.kind == KindNone
}

// Equal reports whether two references identify the same document the
// same way.
func (r Reference) Equal(other Reference) bool {
	return r.kind == other.kind && r.id == other.id && r.path == other.path
}

// String returns the canonical "kind:value" representation, or "" for
// the zero reference.
func (r Reference) String() string {
	switch r.kind {
	case KindID, KindRouteID:
		return fmt.Sprintf("%s:%d", r.kind, r.id)
	case KindPath:
		return fmt.Sprintf("%s:%s", r.kind, r.path)
	default:
		return ""
	}
}
