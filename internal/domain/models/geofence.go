package models

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

// Geofence is a company-scoped named zone, independent of any single job.
// Circle fences use Center+RadiusM, polygon fences use Ring.
type Geofence struct {
	ID        uuid.UUID
	CompanyID uuid.UUID
	Name      string
	Kind      types.GeofenceKind

	Center  *Location
	RadiusM float64
	Ring    []Location

	Active    bool
	CreatedAt time.Time
}

// GeofenceEvent is one containment edge transition. Append-only; the
// current containment state for a (driver, geofence) pair is derived from
// the most recent event, not stored redundantly.
type GeofenceEvent struct {
	ID         uuid.UUID
	DriverID   uuid.UUID
	JobID      *uuid.UUID
	GeofenceID uuid.UUID
	Type       types.GeofenceEventType
	Location   Location
	Confidence string
	CreatedAt  time.Time
}
