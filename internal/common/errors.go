package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound      = errors.New("not found")
	ErrorAlreadyExists = errors.New("already exists")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("invalid credentials")
	ErrorValidation   = errors.New("validation error")

	// ErrAccountDisabled is returned on login once the password has matched
	// but the account is deactivated.
	ErrAccountDisabled = errors.New("account is deactivated")

	// ErrSelfModification rejects role or status changes an admin attempts
	// on their own record.
	ErrSelfModification = errors.New("cannot modify own account")

	// ErrNotOwner rejects edits of a document by someone other than its
	// author (admins excepted).
	ErrNotOwner = errors.New("not the owner of this resource")
)
