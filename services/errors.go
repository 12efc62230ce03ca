package services

import "errors"

// Service layer errors, also used for HTTP status mapping.
var (
	ErrEntryNotFound = errors.New("entry not found")

	// Client-fixable: the submission broke one or more rules. Carried by *ValidationError.
	ErrValidationFailed = errors.New("validation failed")

	// A referenced member disappeared between validation and commit; resubmitting may succeed.
	ErrMemberReferenceInvalid = errors.New("a selected member no longer exists")

	// Storage unavailable or rejected the write.
	ErrPersistence = errors.New("persistence failure")
)
