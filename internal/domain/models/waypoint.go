package models

import (
	"time"

	"github.com/fleetgate/fleet-tracking-system/internal/domain/types"
	"github.com/google/uuid"
)

// DefaultWaypointRadiusM is used when a waypoint carries no explicit geofence radius.
const DefaultWaypointRadiusM = 150.0

// Waypoint is an ordered stop belonging to exactly one job.
type Waypoint struct {
	ID       uuid.UUID
	JobID    uuid.UUID
	Sequence int
	Type     types.WaypointType
	Name     string

	// Optional geofence. A nil center disables automated detection.
	Center  *Location
	RadiusM float64

	Completed   bool
	CompletedAt *time.Time
}

// EffectiveRadiusM returns the detection radius, falling back to the default.
func (w *Waypoint) EffectiveRadiusM() float64 {
	if w.RadiusM > 0 {
		return w.RadiusM
	}
	return DefaultWaypointRadiusM
}
