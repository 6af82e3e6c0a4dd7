// Package docpath enforces the lexical rules for document and redirect
// paths. Validation is purely lexical and runs before any uniqueness
// check, so malformed input never reaches the datastore.
package docpath

import (
	"errors"
	"fmt"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidPath is the sentinel wrapped by every rule violation. Match
// it with errors.Is; recover the specific rule with errors.As on
// *RuleError.
var ErrInvalidPath = errors.New("invalid document path")

// ReservedPrefix is the path namespace reserved for internal routes.
const ReservedPrefix = "/_"

// Rule identifies one lexical rule a candidate path can violate.
type Rule string

const (
	// RuleRequired rejects the empty path.
	RuleRequired Rule = "required"

	// RuleReservedPrefix rejects paths under the internal "/_" namespace.
	RuleReservedPrefix Rule = "reserved-prefix"

	// RuleTrailingUnderscore rejects paths ending in "_".
	RuleTrailingUnderscore Rule = "trailing-underscore"

	// RuleTrailingSlash rejects paths ending in "/", except the root
	// path "/" itself.
	RuleTrailingSlash Rule = "trailing-slash"
)

// RuleError reports which rule a candidate path violated.
type RuleError struct {
	Rule Rule
	Path string
}

// Error returns a message naming the violated rule.
func (e *RuleError) Error() string {
	switch e.Rule {
	case RuleRequired:
		return "path is required"
	case RuleReservedPrefix:
		return fmt.Sprintf("path %q uses the reserved prefix %q", e.Path, ReservedPrefix)
	case RuleTrailingUnderscore:
		return fmt.Sprintf("path %q must not end with an underscore", e.Path)
	case RuleTrailingSlash:
		return fmt.Sprintf("path %q must not end with a trailing slash", e.Path)
	default:
		return fmt.Sprintf("path %q is invalid", e.Path)
	}
}

// Unwrap ties every rule violation to ErrInvalidPath.
func (e *RuleError) Unwrap() error {
	return ErrInvalidPath
}

// Validate checks a candidate path against the lexical rules. It
// returns nil for a valid path and a *RuleError identifying the first
// violated rule otherwise.
func Validate(path string) error {
	switch {
	case path == "":
		return &RuleError{Rule: RuleRequired, Path: path}
	case strings.HasPrefix(path, ReservedPrefix):
		return &RuleError{Rule: RuleReservedPrefix, Path: path}
	case strings.HasSuffix(path, "_"):
		return &RuleError{Rule: RuleTrailingUnderscore, Path: path}
	case path != "/" && strings.HasSuffix(path, "/"):
		return &RuleError{Rule: RuleTrailingSlash, Path: path}
	}
	return nil
}

// ValidationRule adapts the path rules for use inside
// validation.ValidateStruct field lists.
func ValidationRule() validation.Rule {
	return validation.By(func(value interface{}) error {
		s, _ := value.(string)
		return Validate(s)
	})
}
