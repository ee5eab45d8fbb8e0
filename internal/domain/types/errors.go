package types

import "errors"

var (
	ErrNotFound       = errors.New("requested item not found")
	ErrJobNotFound    = errors.New("job not found")
	ErrDriverNotFound = errors.New("driver not found")
	ErrTrackingNotFound = errors.New("no tracking state for job")

	ErrInvalidCoordinates     = errors.New("coordinates out of valid range")
	ErrInvalidSpeed           = errors.New("speed must be non-negative")
	ErrInvalidHeading         = errors.New("heading must be within 0-360")
	ErrInvalidTimestamp       = errors.New("sample timestamp is missing or invalid")
	ErrJobNotAssignedToDriver = errors.New("job is not assigned to this driver")
	ErrSessionNotActive       = errors.New("no active tracking session for this job")
	ErrSessionAlreadyActive   = errors.New("tracking session already active for this job")

	ErrTopicForbidden    = errors.New("connection is not allowed to join this topic")
	ErrUnknownTopic      = errors.New("unknown topic format")
	ErrInvalidToken      = errors.New("invalid or expired token")
	ErrMissingToken      = errors.New("missing bearer token")
)
