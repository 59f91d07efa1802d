package domain

import "errors"

// Error taxonomy shared across services and handlers. Handlers map these to
// HTTP statuses; everything else surfaces as a generic upstream failure.
var (
	// ErrInvalidInput marks user-correctable request problems (bad MIME type,
	// missing question, wrong type).
	ErrInvalidInput = errors.New("invalid input")

	// ErrSessionNotFound is returned when a session id has no recorded history.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionLimit is returned when an owner already holds the maximum
	// number of concurrent sessions.
	ErrSessionLimit = errors.New("session limit exceeded")

	// ErrDocumentTooLarge is returned when a document would produce more
	// chunks than the hard ceiling. This is a cost control, enforced before
	// any indexing happens.
	ErrDocumentTooLarge = errors.New("document too large to process")

	// ErrUnknownRole indicates a stored conversation turn with a role that is
	// neither human nor ai. That means storage corruption and is never
	// silently coerced.
	ErrUnknownRole = errors.New("unknown message role")
)
