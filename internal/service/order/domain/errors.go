package domain

import "github.com/pkg/errors"

// Error taxonomy for the order service. Infrastructure wraps causes around
// these sentinels; the HTTP layer maps them with errors.Is.
var (
	// ErrNotFound: the addressed entity (order, user, SKU) does not exist.
	ErrNotFound = errors.New("not found")
	// ErrConflict: an entity with the same identity already exists.
	ErrConflict = errors.New("already exists")
	// ErrForbidden: the caller is neither the owner nor an admin.
	ErrForbidden = errors.New("forbidden")
	// ErrValidation: malformed or business-rule-violating input, including
	// insufficient stock reported by the inventory participant.
	ErrValidation = errors.New("validation failed")
	// ErrDependencyUnavailable: a participant could not be reached or
	// answered with a server error. Callers should retry later.
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
