package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotImplemented indicates functionality is not yet available.
	ErrNotImplemented = errors.New("not implemented")

	// Authentication Errors.

	// ErrAuthRequired indicates an operation needs credentials but none are configured.
	ErrAuthRequired = errors.New("authentication required")

	// ErrAuthInvalid indicates the authentication credentials are invalid
	// or the identity endpoint refused to issue a token.
	ErrAuthInvalid = errors.New("authentication invalid")

	// ErrForbidden indicates the application lacks the Graph permission for the call.
	ErrForbidden = errors.New("forbidden")

	// Remote API Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")

	// ErrPaginationLoop indicates the server returned the same continuation link twice.
	ErrPaginationLoop = errors.New("pagination loop detected")

	// Attachment Errors.

	// ErrAttachmentSource indicates an attachment was given both a path and bytes, or neither.
	ErrAttachmentSource = errors.New("attachment requires exactly one of path or bytes")

	// ErrAttachmentName indicates a byte attachment was given without a filename.
	ErrAttachmentName = errors.New("attachment filename is required")

	// ErrAttachmentContentType indicates the content type was missing or could not be guessed.
	ErrAttachmentContentType = errors.New("attachment content type is required")
)
