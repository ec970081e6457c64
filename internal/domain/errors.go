package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrNoLogged signals a request without a resolved viewer identity.
	ErrNoLogged = errors.New("not logged in")
	// ErrNoPermission signals an operation the viewer is not allowed to perform.
	ErrNoPermission = errors.New("no permission")
	// ErrBlockedContent signals content authored by a person the viewer has blocked.
	ErrBlockedContent = errors.New("blocked content")
	// ErrSelfSave signals an attempt to save one's own experience.
	ErrSelfSave = errors.New("cannot save own experience")
	// ErrInvalidEntity signals a validation failure on an entity's fields.
	ErrInvalidEntity = errors.New("invalid entity")
)
