package models

import (
	"time"

	"github.com/google/uuid"
)

// Driver is the tracked actor. Long-lived, never deleted, only deactivated.
type Driver struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string

	Active bool
	Online bool

	LastLocation *Location
	LastSeenAt   *time.Time

	// At most one job is tracked at a time.
	CurrentJobID *uuid.UUID
}
