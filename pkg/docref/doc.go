// Package docref provides type-safe document references for Papyrus.
//
// A Reference identifies a document by exactly one of: its immutable
// numeric id, its live path, or nothing at all (the zero Reference).
// Callers construct references explicitly instead of passing loosely
// shaped values around:
//
//	ref := docref.ByID(42)
//	ref := docref.ByPath("/getting-started")
//	ref := docref.ByRouteID(routeID) // id taken from a URL segment
//
// # JSON Boundary
//
// The wire API accepts heterogeneous reference shapes: a bare string, a
// bare number, or a composite object. Parse and UnmarshalJSON normalize
// those shapes with a fixed precedence:
//
//   - a JSON string is always a path
//   - a JSON number is always an id (must be a positive integer)
//   - in an object, "id" wins over "documentId", which wins over
//     "path"; a caller that already resolved identity treats the path
//     as advisory/display-only
//   - an object carrying none of the recognized fields normalizes to
//     the zero Reference
//
// Shapes that cannot possibly identify a document (null, booleans,
// arrays, fractional or non-positive numbers, recognized fields of the
// wrong type) fail with ErrInvalidReference. That class marks a caller
// programming error, not a user-facing condition.
package docref
