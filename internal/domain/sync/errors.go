package sync

import "errors"

var (
	// Job errors
	ErrJobNotFound     = errors.New("sync: job not found")
	ErrJobInvalidKind  = errors.New("sync: invalid job kind")
	ErrJobTerminal     = errors.New("sync: job is in a terminal state")
	ErrJobNotRunning   = errors.New("sync: job is not running")
	ErrJobInvalidTotal = errors.New("sync: job total cannot be negative")

	// Pull cursor errors
	ErrCursorNotFound     = errors.New("sync: pull cursor not found")
	ErrPullAlreadyRunning = errors.New("sync: a pull with the same filters is already running")
	ErrCursorCollision    = errors.New("sync: cursor fingerprint collision with different filters")
	ErrCursorInvalid      = errors.New("sync: invalid pull cursor")

	// Mapping errors
	ErrMappingNotFound      = errors.New("sync: entity mapping not found")
	ErrMappingInvalidKind   = errors.New("sync: invalid mapping kind")
	ErrMappingInvalidSource = errors.New("sync: source entity ID is required")
	ErrMappingNotLinked     = errors.New("sync: entity has no target counterpart")
	ErrMappingAlreadyLinked = errors.New("sync: entity is already linked to a target")

	// Location mapping errors
	ErrLocationInvalid  = errors.New("sync: warehouse and location IDs are required")
	ErrLocationNotFound = errors.New("sync: location mapping not found")

	// Target errors surfaced by client collaborators
	ErrTargetRateLimited = errors.New("sync: rate limited by target")
	ErrTargetUnavailable = errors.New("sync: target temporarily unavailable")
	ErrSourceUnavailable = errors.New("sync: source temporarily unavailable")
)
