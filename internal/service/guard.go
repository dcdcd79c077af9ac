package service

import (
	appErrors "github.com/tutoria-app/tutoria-api/pkg/errors"
)

// ensureOwner is the single authorization gate for entity-scoped
// operations: the entity exists, so a mismatch is a 403, never a 404.
// Every service calls it before reading or mutating owned data.
func ensureOwner(userID, ownerID string) error {
	if userID == "" {
		return appErrors.ErrUnauthorized
	}
	if userID != ownerID {
		return appErrors.Clone(appErrors.ErrForbidden, "resource belongs to another account")
	}
	return nil
}
